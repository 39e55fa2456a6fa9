package memstore

import (
	"context"
	"fmt"
	"pms/internal/domains/staff/model"
	"pms/internal/domains/staff/repository"
	"pms/shared/failure"
	"time"
)

type staffRepo struct {
	*Store
}

func (s *Store) Staff() repository.Staff {
	return staffRepo{s}
}

func (r staffRepo) Get(_ context.Context, id string) (model.Staff, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.staff[id], nil
}

func (r staffRepo) GetByEmail(_ context.Context, email string) (model.Staff, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	email = model.NormalizeEmail(email)

	for _, member := range r.staff {
		if member.Email == email {
			return member, nil
		}
	}

	return model.Staff{}, nil
}

func (r staffRepo) Insert(_ context.Context, staff model.Staff) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, member := range r.staff {
		if member.Email == staff.Email {
			return failure.Conflict(fmt.Sprintf("staff with email %s already exists", staff.Email)) //nolint:wrapcheck
		}
	}

	r.staff[staff.ID] = staff

	return nil
}

func (r staffRepo) UpdatePassword(_ context.Context, id, hash, actor string, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	member, ok := r.staff[id]
	if !ok {
		return failure.NotFound(fmt.Sprintf("staff %s not found", id)) //nolint:wrapcheck
	}

	member.Password = hash
	member.Touch(actor, now)
	r.staff[id] = member

	return nil
}

func (r staffRepo) TouchLogin(_ context.Context, id string, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if member, ok := r.staff[id]; ok {
		member.LastLogin = &now
		r.staff[id] = member
	}

	return nil
}
