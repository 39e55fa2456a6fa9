package memstore

import (
	"context"
	"fmt"
	"pms/internal/domains/guest/model"
	"pms/internal/domains/guest/repository"
	"pms/shared/failure"
	"slices"
	"strings"
	"time"
)

type guestRepo struct {
	*Store
}

func (s *Store) Guests() repository.Guest {
	return guestRepo{s}
}

func (g guestRepo) Get(_ context.Context, id string) (model.Guest, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.guests[id], nil
}

func (g guestRepo) GetByDocument(_ context.Context, documentType model.DocumentType, documentNumber string) (model.Guest, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.byDocument(documentType, documentNumber), nil
}

func (g guestRepo) byDocument(documentType model.DocumentType, documentNumber string) model.Guest {
	for _, guest := range g.guests {
		if guest.DocumentType == documentType && guest.DocumentNumber == documentNumber {
			return guest
		}
	}

	return model.Guest{}
}

func (g guestRepo) Search(_ context.Context, term string, limit int) ([]model.Guest, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	term = strings.ToLower(term)
	result := []model.Guest{}

	for _, guest := range g.guests {
		if strings.Contains(strings.ToLower(guest.FullName), term) || strings.Contains(strings.ToLower(guest.DocumentNumber), term) {
			result = append(result, guest)
		}
	}

	slices.SortFunc(result, func(a, b model.Guest) int {
		return strings.Compare(a.FullName, b.FullName)
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}

	return result, nil
}

func (g guestRepo) Insert(_ context.Context, guest model.Guest) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.insert(guest)
}

func (g guestRepo) insert(guest model.Guest) error {
	if _, ok := g.guests[guest.ID]; ok {
		return failure.Conflict(fmt.Sprintf("guest %s already exists", guest.ID)) //nolint:wrapcheck
	}

	if guest.HasDocument() && g.byDocument(guest.DocumentType, guest.DocumentNumber).ID != "" {
		return failure.Conflict(fmt.Sprintf("guest with document %s %s already exists", guest.DocumentType, guest.DocumentNumber)) //nolint:wrapcheck
	}

	g.guests[guest.ID] = guest

	return nil
}

func (g guestRepo) UpdateContact(_ context.Context, id string, contact model.Contact, actor string, now time.Time) (model.Guest, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	guest, ok := g.guests[id]
	if !ok {
		return model.Guest{}, failure.NotFound(fmt.Sprintf("guest %s not found", id)) //nolint:wrapcheck
	}

	if contact.Phone != nil {
		guest.Phone = *contact.Phone
	}

	if contact.Email != nil {
		email := *contact.Email
		guest.Email = &email
	}

	guest.Touch(actor, now)
	g.guests[id] = guest

	return guest, nil
}
