package model

import (
	"pms/shared/timezone"
	"time"
)

type TransitionOptions struct {
	Now    time.Time
	Actor  string
	Reason string
	// Override lets a guest check out with an outstanding balance.
	Override bool
}

// Transition moves the reservation to the requested status. On error the
// reservation is left untouched.
func (r *Reservation) Transition(to Status, opts TransitionOptions) error {
	if !r.Status.CanTransition(to) {
		return &InvalidTransitionError{From: r.Status, To: to}
	}

	if reason := r.guard(to, opts); reason != "" {
		return &InvalidTransitionError{From: r.Status, To: to, Reason: reason}
	}

	now := opts.Now

	switch to {
	case StatusCheckedIn:
		r.CheckedInAt = &now
	case StatusCheckedOut:
		r.CheckedOutAt = &now
	case StatusCancelled:
		r.CancelledAt = &now
		r.CancellationReason = opts.Reason
	}

	r.Status = to
	r.Touch(opts.Actor, now)

	return nil
}

func (r *Reservation) guard(to Status, opts TransitionOptions) string {
	today := timezone.DateOf(opts.Now)

	switch to {
	case StatusCheckedIn:
		if today.Before(r.CheckIn) {
			return "check-in date " + timezone.FormatDate(r.CheckIn) + " has not been reached"
		}
	case StatusCheckedOut:
		if r.Balance() != 0 && !opts.Override {
			return "balance of " + r.Balance().String() + " is outstanding"
		}
	case StatusNoShow:
		if !today.After(r.CheckIn) {
			return "check-in date " + timezone.FormatDate(r.CheckIn) + " has not passed"
		}

		if r.CheckedInAt != nil {
			return "guest already checked in"
		}
	}

	return ""
}
