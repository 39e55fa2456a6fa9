package memstore

import (
	"context"
	"fmt"
	"pms/internal/domains/room/model"
	"pms/internal/domains/room/repository"
	"pms/shared/failure"
	"time"
)

type roomRepo struct {
	*Store
}

func (s *Store) Rooms() repository.Room {
	return roomRepo{s}
}

func (r roomRepo) Get(_ context.Context, id string) (model.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.rooms[id], nil
}

func (r roomRepo) GetAllByBranch(_ context.Context, branchID string) ([]model.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := []model.Room{}

	for _, room := range r.rooms {
		if room.BranchID == branchID {
			result = append(result, room)
		}
	}

	model.SortByNumber(result)

	return result, nil
}

func (r roomRepo) Insert(_ context.Context, room model.Room) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.rooms {
		if existing.ID == room.ID || (existing.BranchID == room.BranchID && existing.Number == room.Number) {
			return failure.Conflict(fmt.Sprintf("room %s already exists in branch", room.Number)) //nolint:wrapcheck
		}
	}

	r.rooms[room.ID] = room

	return nil
}

func (r roomRepo) UpdateStatus(_ context.Context, id string, status model.Status, actor string, now time.Time) (model.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[id]
	if !ok {
		return model.Room{}, failure.NotFound(fmt.Sprintf("room %s not found", id)) //nolint:wrapcheck
	}

	room.Status = status
	room.Touch(actor, now)
	r.rooms[id] = room

	return room, nil
}
