package model

import (
	guestModel "pms/internal/domains/guest/model"
	"pms/shared/failure"
)

// Booking is everything the persistence layer needs to create a reservation in one
// transaction. When Reservation.GuestID is empty, Guest is looked up by document and
// inserted if missing.
type Booking struct {
	Reservation        Reservation
	Guest              *guestModel.Guest
	ConfirmationPrefix string
}

// Validate checks the booking before any persistence call.
func (b Booking) Validate() error {
	res := b.Reservation

	if !res.CheckOut.After(res.CheckIn) {
		return ErrInvalidDateRange
	}

	if res.Adults < 1 {
		return failure.BadRequestFromString("at least one adult is required") //nolint:wrapcheck
	}

	if res.Children < 0 {
		return failure.BadRequestFromString("children cannot be negative") //nolint:wrapcheck
	}

	if !res.Source.IsValid() {
		return failure.BadRequestFromString("unknown reservation source " + string(res.Source)) //nolint:wrapcheck
	}

	if res.TotalAmount < 0 {
		return failure.BadRequestFromString("total amount cannot be negative") //nolint:wrapcheck
	}

	if res.GuestID == "" && b.Guest == nil {
		return failure.BadRequestFromString("a guest id or guest details are required") //nolint:wrapcheck
	}

	return nil
}
