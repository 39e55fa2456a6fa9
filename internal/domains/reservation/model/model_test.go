package model_test

import (
	"pms/internal/domains/reservation/model"
	"pms/shared/failure"
	"pms/shared/money"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func failureCode(err error) int {
	return failure.GetCode(err)
}

func TestDateRange(t *testing.T) {
	rng, err := model.ParseDateRange("2024-07-15", "2024-07-20")
	require.NoError(t, err)
	assert.Equal(t, 5, rng.Nights())
	assert.Equal(t, "2024-07-15/2024-07-20", rng.String())

	tests := []struct {
		name     string
		checkIn  string
		checkOut string
	}{
		{name: "same day", checkIn: "2024-07-15", checkOut: "2024-07-15"},
		{name: "reversed", checkIn: "2024-07-20", checkOut: "2024-07-15"},
		{name: "unparsable check-in", checkIn: "15/07/2024", checkOut: "2024-07-20"},
		{name: "unparsable check-out", checkIn: "2024-07-15", checkOut: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := model.ParseDateRange(tt.checkIn, tt.checkOut)
			assert.ErrorIs(t, err, model.ErrInvalidDateRange)
			assert.Equal(t, 400, failureCode(err))
		})
	}
}

func TestNewDateRange_TruncatesToDates(t *testing.T) {
	rng, err := model.NewDateRange(
		time.Date(2024, 7, 15, 23, 0, 0, 0, time.UTC),
		time.Date(2024, 7, 16, 1, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	assert.Equal(t, 1, rng.Nights())
	assert.Equal(t, date(2024, 7, 15), rng.CheckIn)
}

func TestDateRange_Overlaps(t *testing.T) {
	base := model.DateRange{CheckIn: date(2024, 7, 15), CheckOut: date(2024, 7, 20)}

	tests := []struct {
		name     string
		other    model.DateRange
		expected bool
	}{
		{name: "inside", other: model.DateRange{CheckIn: date(2024, 7, 17), CheckOut: date(2024, 7, 18)}, expected: true},
		{name: "covering", other: model.DateRange{CheckIn: date(2024, 7, 10), CheckOut: date(2024, 7, 25)}, expected: true},
		{name: "starts on checkout", other: model.DateRange{CheckIn: date(2024, 7, 20), CheckOut: date(2024, 7, 22)}},
		{name: "ends on checkin", other: model.DateRange{CheckIn: date(2024, 7, 12), CheckOut: date(2024, 7, 15)}},
		{name: "straddles checkin", other: model.DateRange{CheckIn: date(2024, 7, 14), CheckOut: date(2024, 7, 16)}, expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, base.Overlaps(tt.other))
			assert.Equal(t, tt.expected, tt.other.Overlaps(base))
		})
	}
}

func TestReservation_Balance(t *testing.T) {
	res := model.Reservation{TotalAmount: money.FromUnits(750), PaidAmount: money.FromUnits(800)}

	assert.Equal(t, money.FromUnits(-50), res.Balance())
	assert.Equal(t, money.Money(0), res.DisplayBalance())

	res.PaidAmount = money.FromUnits(100)
	assert.Equal(t, money.FromUnits(650), res.DisplayBalance())
}

func TestReservation_Blocks(t *testing.T) {
	res := newReservation(model.StatusConfirmed)
	overlap := model.DateRange{CheckIn: date(2024, 7, 17), CheckOut: date(2024, 7, 18)}

	assert.True(t, res.Blocks("room-101", overlap))
	assert.False(t, res.Blocks("room-102", overlap))

	res.Status = model.StatusCheckedOut
	assert.False(t, res.Blocks("room-101", overlap))
}

func TestConfirmationCode(t *testing.T) {
	assert.Equal(t, "RES-2024-007", model.ConfirmationCode("", 2024, 7))
	assert.Equal(t, "LIM-2024-123", model.ConfirmationCode(" lim ", 2024, 123))
	assert.Equal(t, "RES-2025-1042", model.ConfirmationCode("RES", 2025, 1042))
}

func TestJoinQuery(t *testing.T) {
	expected := "INNER JOIN guests ON guests.id = reservations.guest_id INNER JOIN rooms ON rooms.id = reservations.room_id"

	if diff := cmp.Diff(expected, model.Reservation{}.GetJoinQuery()); diff != "" {
		t.Errorf("unexpected join (-want +got):\n%s", diff)
	}
}

func TestBooking_Validate(t *testing.T) {
	valid := func() model.Booking {
		res := newReservation(model.StatusPending)
		res.GuestID = "g-1"
		res.Source = model.SourceDirect

		return model.Booking{Reservation: res}
	}

	tests := []struct {
		name    string
		mutate  func(b *model.Booking)
		wantErr error
	}{
		{name: "valid", mutate: func(*model.Booking) {}},
		{name: "checkout before checkin", mutate: func(b *model.Booking) { b.Reservation.CheckOut = b.Reservation.CheckIn }, wantErr: model.ErrInvalidDateRange},
		{name: "no adults", mutate: func(b *model.Booking) { b.Reservation.Adults = 0 }, wantErr: failure.ErrBadRequest},
		{name: "negative children", mutate: func(b *model.Booking) { b.Reservation.Children = -1 }, wantErr: failure.ErrBadRequest},
		{name: "unknown source", mutate: func(b *model.Booking) { b.Reservation.Source = "fax" }, wantErr: failure.ErrBadRequest},
		{name: "no guest", mutate: func(b *model.Booking) { b.Reservation.GuestID = "" }, wantErr: failure.ErrBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			booking := valid()
			tt.mutate(&booking)

			err := booking.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)

				return
			}

			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
