package memstore

import (
	"context"
	"fmt"
	"pms/internal/domains/reservation/model"
	"pms/internal/domains/reservation/repository"
	"pms/shared/failure"
	"slices"
)

type reservationRepo struct {
	*Store
}

func (s *Store) Reservations() repository.Reservation {
	return reservationRepo{s}
}

func (r reservationRepo) Get(_ context.Context, id string) (model.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, ok := r.reservations[id]
	if !ok {
		return model.Reservation{}, nil
	}

	return r.joined(res), nil
}

// GetPrimary is Get: the store has a single copy of every row.
func (r reservationRepo) GetPrimary(ctx context.Context, id string) (model.Reservation, error) {
	return r.Get(ctx, id)
}

func (r reservationRepo) GetAllByBranch(_ context.Context, branchID string, filter model.ListFilter) ([]model.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := []model.Reservation{}

	for _, id := range r.order {
		res := r.reservations[id]

		if res.BranchID != branchID || !matches(res, filter) {
			continue
		}

		result = append(result, r.joined(res))
	}

	slices.SortStableFunc(result, func(a, b model.Reservation) int {
		return a.CheckIn.Compare(b.CheckIn)
	})

	return result, nil
}

func matches(res model.Reservation, filter model.ListFilter) bool {
	switch {
	case filter.Status != "" && res.Status != filter.Status:
		return false
	case filter.Source != "" && res.Source != filter.Source:
		return false
	case !filter.CheckInFrom.IsZero() && res.CheckIn.Before(filter.CheckInFrom):
		return false
	case !filter.CheckInTo.IsZero() && res.CheckIn.After(filter.CheckInTo):
		return false
	default:
		return true
	}
}

func (r reservationRepo) GetBlocking(_ context.Context, query repository.BlockingQuery) ([]model.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.blocking(query), nil
}

func (r reservationRepo) blocking(query repository.BlockingQuery) []model.Reservation {
	result := []model.Reservation{}

	for _, id := range r.order {
		res := r.reservations[id]

		switch {
		case !res.Status.IsBlocking() || !res.Range().Overlaps(query.Range):
			continue
		case query.BranchID != "" && res.BranchID != query.BranchID:
			continue
		case query.RoomID != "" && res.RoomID != query.RoomID:
			continue
		case query.ExcludeID != "" && res.ID == query.ExcludeID:
			continue
		}

		result = append(result, r.joined(res))
	}

	return result
}

func (r reservationRepo) Create(_ context.Context, booking model.Booking) (model.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	res := booking.Reservation

	if err := r.checkRoom(res); err != nil {
		return model.Reservation{}, err
	}

	guests := guestRepo{r.Store}

	switch {
	case res.GuestID != "":
		if _, ok := r.guests[res.GuestID]; !ok {
			return model.Reservation{}, failure.NotFound(fmt.Sprintf("guest %s not found", res.GuestID)) //nolint:wrapcheck
		}
	case booking.Guest == nil:
		return model.Reservation{}, failure.BadRequestFromString("a guest id or guest details are required") //nolint:wrapcheck
	default:
		var existing string
		if booking.Guest.HasDocument() {
			existing = guests.byDocument(booking.Guest.DocumentType, booking.Guest.DocumentNumber).ID
		}

		if existing == "" {
			if err := guests.insert(*booking.Guest); err != nil {
				return model.Reservation{}, err
			}

			existing = booking.Guest.ID
		}

		res.GuestID = existing
	}

	prefix := booking.ConfirmationPrefix
	if prefix == "" {
		prefix = model.DefaultConfirmationPrefix
	}

	year := res.CreatedAt.Year()
	key := counterKey(prefix, year)
	r.counters[key]++

	res.ConfirmationCode = model.ConfirmationCode(prefix, year, r.counters[key])

	r.reservations[res.ID] = res
	r.order = append(r.order, res.ID)

	return r.joined(res), nil
}

// checkRoom verifies the room exists in the reservation branch and is free. Callers hold mu.
func (r reservationRepo) checkRoom(res model.Reservation) error {
	room, ok := r.rooms[res.RoomID]
	if !ok || room.BranchID != res.BranchID {
		return failure.NotFound(fmt.Sprintf("room %s not found", res.RoomID)) //nolint:wrapcheck
	}

	conflicts := r.blocking(repository.BlockingQuery{RoomID: res.RoomID, Range: res.Range(), ExcludeID: res.ID})
	if len(conflicts) == 0 {
		return nil
	}

	ids := make([]string, len(conflicts))
	for i, conflict := range conflicts {
		ids[i] = conflict.ID
	}

	return &model.RoomUnavailableError{RoomID: res.RoomID, ConflictingIDs: ids}
}

func (r reservationRepo) UpdateStatus(_ context.Context, reservation model.Reservation) (model.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.reservations[reservation.ID]
	if !ok || current.Version != reservation.Version {
		return model.Reservation{}, model.ErrConcurrentUpdate
	}

	current.Status = reservation.Status
	current.CheckedInAt = reservation.CheckedInAt
	current.CheckedOutAt = reservation.CheckedOutAt
	current.CancelledAt = reservation.CancelledAt
	current.CancellationReason = reservation.CancellationReason
	current.ModifiedAt = reservation.ModifiedAt
	current.ModifiedBy = reservation.ModifiedBy
	current.Version++

	r.reservations[current.ID] = current

	return r.joined(current), nil
}

func (r reservationRepo) Reschedule(_ context.Context, reservation model.Reservation) (model.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkRoom(reservation); err != nil {
		return model.Reservation{}, err
	}

	current, ok := r.reservations[reservation.ID]
	if !ok || current.Version != reservation.Version {
		return model.Reservation{}, model.ErrConcurrentUpdate
	}

	current.RoomID = reservation.RoomID
	current.CheckIn = reservation.CheckIn
	current.CheckOut = reservation.CheckOut
	current.Nights = reservation.Nights
	current.TotalAmount = reservation.TotalAmount
	current.ModifiedAt = reservation.ModifiedAt
	current.ModifiedBy = reservation.ModifiedBy
	current.Version++

	r.reservations[current.ID] = current

	return r.joined(current), nil
}
