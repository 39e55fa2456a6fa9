package model_test

import (
	"errors"
	"pms/internal/domains/reservation/model"
	"pms/shared/money"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func newReservation(status model.Status) model.Reservation {
	return model.Reservation{
		ID:          "r-1",
		RoomID:      "room-101",
		CheckIn:     date(2024, 7, 15),
		CheckOut:    date(2024, 7, 20),
		Nights:      5,
		Adults:      2,
		Status:      status,
		TotalAmount: money.FromUnits(750),
		Version:     1,
	}
}

// Every pair outside the transition table fails and leaves the reservation unchanged.
func TestTransition_StatusGrid(t *testing.T) {
	allowed := map[[2]model.Status]bool{
		{model.StatusPending, model.StatusConfirmed}:    true,
		{model.StatusPending, model.StatusCancelled}:    true,
		{model.StatusConfirmed, model.StatusCancelled}:  true,
		{model.StatusConfirmed, model.StatusCheckedIn}:  true,
		{model.StatusConfirmed, model.StatusNoShow}:     true,
		{model.StatusCheckedIn, model.StatusCheckedOut}: true,
	}

	// guards of every allowed edge pass at this instant with a settled balance
	opts := model.TransitionOptions{Now: time.Date(2024, 7, 16, 12, 0, 0, 0, time.UTC), Actor: "u-1"}

	for _, from := range model.Statuses() {
		for _, to := range model.Statuses() {
			t.Run(string(from)+"->"+string(to), func(t *testing.T) {
				res := newReservation(from)
				res.PaidAmount = res.TotalAmount
				before := res

				err := res.Transition(to, opts)

				if allowed[[2]model.Status{from, to}] {
					require.NoError(t, err)
					assert.Equal(t, to, res.Status)
					assert.Equal(t, "u-1", res.ModifiedBy)

					return
				}

				require.Error(t, err)
				assert.ErrorIs(t, err, model.ErrInvalidTransition)

				var transitionErr *model.InvalidTransitionError
				require.ErrorAs(t, err, &transitionErr)
				assert.Equal(t, from, transitionErr.From)
				assert.Equal(t, to, transitionErr.To)
				assert.Equal(t, before, res)
			})
		}
	}
}

func TestTransition_Guards(t *testing.T) {
	checkInDay := time.Date(2024, 7, 15, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		status    model.Status
		paid      money.Money
		checkedIn bool
		to        model.Status
		opts      model.TransitionOptions
		wantErr   bool
	}{
		{
			name:    "check in before the check-in date",
			status:  model.StatusConfirmed,
			to:      model.StatusCheckedIn,
			opts:    model.TransitionOptions{Now: checkInDay.AddDate(0, 0, -1)},
			wantErr: true,
		},
		{
			name:   "check in on the check-in date",
			status: model.StatusConfirmed,
			to:     model.StatusCheckedIn,
			opts:   model.TransitionOptions{Now: checkInDay},
		},
		{
			name:    "check out with balance outstanding",
			status:  model.StatusCheckedIn,
			paid:    money.FromUnits(700),
			to:      model.StatusCheckedOut,
			opts:    model.TransitionOptions{Now: checkInDay.AddDate(0, 0, 5)},
			wantErr: true,
		},
		{
			name:   "check out with balance and override",
			status: model.StatusCheckedIn,
			paid:   money.FromUnits(700),
			to:     model.StatusCheckedOut,
			opts:   model.TransitionOptions{Now: checkInDay.AddDate(0, 0, 5), Override: true},
		},
		{
			name:    "no show on the check-in date",
			status:  model.StatusConfirmed,
			to:      model.StatusNoShow,
			opts:    model.TransitionOptions{Now: checkInDay},
			wantErr: true,
		},
		{
			name:   "no show the day after check-in date",
			status: model.StatusConfirmed,
			to:     model.StatusNoShow,
			opts:   model.TransitionOptions{Now: checkInDay.AddDate(0, 0, 1)},
		},
		{
			name:      "no show after a recorded check-in",
			status:    model.StatusConfirmed,
			checkedIn: true,
			to:        model.StatusNoShow,
			opts:      model.TransitionOptions{Now: checkInDay.AddDate(0, 0, 1)},
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := newReservation(tt.status)
			res.PaidAmount = tt.paid

			if tt.checkedIn {
				at := checkInDay
				res.CheckedInAt = &at
			}

			err := res.Transition(tt.to, tt.opts)

			if tt.wantErr {
				var transitionErr *model.InvalidTransitionError
				require.ErrorAs(t, err, &transitionErr)
				assert.NotEmpty(t, transitionErr.Reason)
				assert.Equal(t, tt.status, res.Status)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.to, res.Status)
		})
	}
}

func TestTransition_Effects(t *testing.T) {
	now := time.Date(2024, 7, 15, 14, 30, 0, 0, time.UTC)

	res := newReservation(model.StatusConfirmed)
	require.NoError(t, res.Transition(model.StatusCheckedIn, model.TransitionOptions{Now: now, Actor: "desk"}))
	require.NotNil(t, res.CheckedInAt)
	assert.True(t, res.CheckedInAt.Equal(now))

	res.PaidAmount = res.TotalAmount
	require.NoError(t, res.Transition(model.StatusCheckedOut, model.TransitionOptions{Now: now.AddDate(0, 0, 5)}))
	require.NotNil(t, res.CheckedOutAt)

	cancelled := newReservation(model.StatusPending)
	require.NoError(t, cancelled.Transition(model.StatusCancelled, model.TransitionOptions{Now: now, Reason: "guest request"}))
	require.NotNil(t, cancelled.CancelledAt)
	assert.Equal(t, "guest request", cancelled.CancellationReason)
	assert.False(t, cancelled.Status.IsBlocking())
}

func TestStatus(t *testing.T) {
	assert.ElementsMatch(t, []model.Status{model.StatusPending, model.StatusConfirmed, model.StatusCheckedIn}, model.BlockingStatuses())
	assert.True(t, model.StatusCheckedOut.IsTerminal())
	assert.True(t, model.StatusNoShow.IsTerminal())
	assert.False(t, model.StatusPending.IsTerminal())
	assert.False(t, model.Status("archived").IsTerminal())
	assert.Equal(t, "Checked in", model.StatusCheckedIn.Label())
	assert.Equal(t, "archived", model.Status("archived").Label())
	assert.Equal(t, "red", model.StatusCancelled.Color())

	for _, status := range model.Statuses() {
		assert.True(t, status.IsValid())
		assert.NotEqual(t, string(status), status.Label())
	}
}

func TestErrors(t *testing.T) {
	err := &model.RoomUnavailableError{RoomID: "room-101", ConflictingIDs: []string{"r-1", "r-2"}}

	assert.True(t, errors.Is(err, model.ErrRoomUnavailable))
	assert.Contains(t, err.Error(), "r-1, r-2")
	assert.Equal(t, 409, failureCode(err))
}
