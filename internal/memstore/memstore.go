// Package memstore keeps every repository of the service in memory behind one
// mutex. It gives the same atomicity as the Postgres repositories and backs the
// scenario tests and local runs without a database.
package memstore

import (
	"fmt"
	guestModel "pms/internal/domains/guest/model"
	paymentModel "pms/internal/domains/payment/model"
	resModel "pms/internal/domains/reservation/model"
	roomModel "pms/internal/domains/room/model"
	staffModel "pms/internal/domains/staff/model"
	"sync"
)

type Store struct {
	mu           sync.Mutex
	guests       map[string]guestModel.Guest
	rooms        map[string]roomModel.Room
	reservations map[string]resModel.Reservation
	payments     map[string][]paymentModel.Payment
	staff        map[string]staffModel.Staff
	counters     map[string]int64
	order        []string
	paymentSeq   int64
}

func New() *Store {
	return &Store{
		guests:       map[string]guestModel.Guest{},
		rooms:        map[string]roomModel.Room{},
		reservations: map[string]resModel.Reservation{},
		payments:     map[string][]paymentModel.Payment{},
		staff:        map[string]staffModel.Staff{},
		counters:     map[string]int64{},
	}
}

func (s *Store) SeedRooms(rooms ...roomModel.Room) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, room := range rooms {
		s.rooms[room.ID] = room
	}
}

func (s *Store) SeedStaff(staff ...staffModel.Staff) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, member := range staff {
		s.staff[member.ID] = member
	}
}

func (s *Store) SeedGuests(guests ...guestModel.Guest) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, guest := range guests {
		s.guests[guest.ID] = guest
	}
}

// SeedReservations stores reservations as given, bypassing every check.
func (s *Store) SeedReservations(reservations ...resModel.Reservation) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, res := range reservations {
		if _, ok := s.reservations[res.ID]; !ok {
			s.order = append(s.order, res.ID)
		}

		s.reservations[res.ID] = res
	}
}

// joined fills the read-side fields the Postgres join provides. Callers hold mu.
func (s *Store) joined(res resModel.Reservation) resModel.Reservation {
	res.GuestName = s.guests[res.GuestID].FullName
	res.RoomNumber = s.rooms[res.RoomID].Number

	return res
}

func counterKey(prefix string, year int) string {
	return fmt.Sprintf("%s:%d", prefix, year)
}
