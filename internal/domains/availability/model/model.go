// Package model is the pure availability engine. It performs no I/O; callers
// load the rooms and reservations of a branch and ask which rooms are free.
package model

import (
	resModel "pms/internal/domains/reservation/model"
	roomModel "pms/internal/domains/room/model"
	"slices"
	"time"
)

// Query is an ephemeral availability request. ExcludeReservationID lets a
// reservation being rescheduled ignore its own occupancy.
type Query struct {
	BranchID             string
	RoomID               string
	CheckIn              time.Time
	CheckOut             time.Time
	ExcludeReservationID string
}

func (q Query) Range() (resModel.DateRange, error) {
	return resModel.NewDateRange(q.CheckIn, q.CheckOut)
}

// Conflicts returns the ids of the blocking reservations of roomID overlapping rng.
func Conflicts(reservations []resModel.Reservation, roomID string, rng resModel.DateRange, excludeID string) []string {
	ids := []string{}

	for _, r := range reservations {
		if r.ID == excludeID && excludeID != "" {
			continue
		}

		if r.Blocks(roomID, rng) {
			ids = append(ids, r.ID)
		}
	}

	return ids
}

// FreeRooms returns the rooms without a blocking reservation overlapping rng,
// ordered by room number.
func FreeRooms(rooms []roomModel.Room, reservations []resModel.Reservation, rng resModel.DateRange, excludeID string) []roomModel.Room {
	occupied := map[string]bool{}

	for _, r := range reservations {
		if r.ID == excludeID && excludeID != "" {
			continue
		}

		if r.Status.IsBlocking() && r.Range().Overlaps(rng) {
			occupied[r.RoomID] = true
		}
	}

	free := make([]roomModel.Room, 0, len(rooms))

	for _, room := range rooms {
		if !occupied[room.ID] {
			free = append(free, room)
		}
	}

	roomModel.SortByNumber(free)

	return slices.Clip(free)
}
