package model

import (
	"fmt"
	"pms/shared/model"
	"pms/shared/money"
	"time"
)

const (
	TableName  = "reservations"
	EntityName = "reservation"

	FieldID                 = "id"
	FieldConfirmationCode   = "confirmation_code"
	FieldBranchID           = "branch_id"
	FieldGuestID            = "guest_id"
	FieldRoomID             = "room_id"
	FieldCheckIn            = "check_in"
	FieldCheckOut           = "check_out"
	FieldNights             = "nights"
	FieldAdults             = "adults"
	FieldChildren           = "children"
	FieldStatus             = "status"
	FieldTotalAmount        = "total_amount"
	FieldPaidAmount         = "paid_amount"
	FieldSpecialRequests    = "special_requests"
	FieldSource             = "source"
	FieldCheckedInAt        = "checked_in_at"
	FieldCheckedOutAt       = "checked_out_at"
	FieldCancelledAt        = "cancelled_at"
	FieldCancellationReason = "cancellation_reason"
	FieldVersion            = "version"

	guestTable = "guests"
	roomTable  = "rooms"
)

type Source string

const (
	SourceDirect  Source = "direct"
	SourceBooking Source = "booking"
	SourceExpedia Source = "expedia"
	SourceAirbnb  Source = "airbnb"
	SourcePhone   Source = "phone"
	SourceWalkIn  Source = "walk_in"
	SourceOther   Source = "other"
)

func (s Source) IsValid() bool {
	switch s {
	case SourceDirect, SourceBooking, SourceExpedia, SourceAirbnb, SourcePhone, SourceWalkIn, SourceOther:
		return true
	default:
		return false
	}
}

type Reservation struct {
	ID                 string      `db:"id"`
	ConfirmationCode   string      `db:"confirmation_code"`
	BranchID           string      `db:"branch_id"`
	GuestID            string      `db:"guest_id"`
	RoomID             string      `db:"room_id"`
	CheckIn            time.Time   `db:"check_in"`
	CheckOut           time.Time   `db:"check_out"`
	Nights             int         `db:"nights"`
	Adults             int         `db:"adults"`
	Children           int         `db:"children"`
	Status             Status      `db:"status"`
	TotalAmount        money.Money `db:"total_amount"`
	PaidAmount         money.Money `db:"paid_amount"`
	SpecialRequests    string      `db:"special_requests"`
	Source             Source      `db:"source"`
	CheckedInAt        *time.Time  `db:"checked_in_at"`
	CheckedOutAt       *time.Time  `db:"checked_out_at"`
	CancelledAt        *time.Time  `db:"cancelled_at"`
	CancellationReason string      `db:"cancellation_reason"`
	Version            int         `db:"version"`
	GuestName          string      `db:"guest_name"  table:"guests" column:"full_name"`
	RoomNumber         string      `db:"room_number" table:"rooms"  column:"number"`
	model.Metadata
}

func (Reservation) GetJoinQuery() string {
	return fmt.Sprintf("INNER JOIN %[1]s ON %[1]s.id = %[3]s.%[4]s INNER JOIN %[2]s ON %[2]s.id = %[3]s.%[5]s",
		guestTable, roomTable, TableName, FieldGuestID, FieldRoomID)
}

func (r Reservation) Range() DateRange {
	return DateRange{CheckIn: r.CheckIn, CheckOut: r.CheckOut}
}

// Balance is total minus paid. A negative value means the reservation was overpaid.
func (r Reservation) Balance() money.Money {
	return r.TotalAmount - r.PaidAmount
}

// DisplayBalance is the balance floored at zero.
func (r Reservation) DisplayBalance() money.Money {
	return r.Balance().Floor()
}

// Blocks reports whether the reservation occupies its room for rng.
func (r Reservation) Blocks(roomID string, rng DateRange) bool {
	return r.Status.IsBlocking() && r.RoomID == roomID && r.Range().Overlaps(rng)
}
