package dto

import (
	"net/http"
	guestModel "pms/internal/domains/guest/model"
	guestDto "pms/internal/domains/guest/model/dto"
	"pms/internal/domains/reservation/model"
	roomModel "pms/internal/domains/room/model"
	"pms/shared/constant"
	gDto "pms/shared/dto"
	gModel "pms/shared/model"
	"pms/shared/money"
	"pms/shared/timezone"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Dates are validated by the domain so that malformed dates surface as an invalid date range.
type CreateReservationRequest struct {
	RoomID          string                       `json:"room_id"          validate:"required"`
	GuestID         string                       `json:"guest_id"         validate:"required_without=Guest"`
	Guest           *guestDto.CreateGuestRequest `json:"guest"            validate:"required_without=GuestID"`
	CheckIn         string                       `json:"check_in"`
	CheckOut        string                       `json:"check_out"`
	Adults          int                          `json:"adults"           validate:"gte=1,lte=20"`
	Children        int                          `json:"children"         validate:"gte=0,lte=20"`
	TotalAmount     *float64                     `json:"total_amount"     validate:"omitempty,money"`
	SpecialRequests string                       `json:"special_requests" validate:"max=1000"`
	Source          string                       `json:"source"           validate:"omitempty,oneof=direct booking expedia airbnb phone walk_in other"`
}

func (c *CreateReservationRequest) Range() (model.DateRange, error) {
	return model.ParseDateRange(c.CheckIn, c.CheckOut)
}

// ToBooking prices the stay at the room rate unless a total is supplied.
func (c *CreateReservationRequest) ToBooking(rng model.DateRange, room roomModel.Room, actor, prefix string, now time.Time) model.Booking {
	source := model.Source(c.Source)
	if source == "" {
		source = model.SourceDirect
	}

	res := model.Reservation{
		ID:              uuid.NewString(),
		BranchID:        room.BranchID,
		GuestID:         strings.TrimSpace(c.GuestID),
		RoomID:          room.ID,
		CheckIn:         rng.CheckIn,
		CheckOut:        rng.CheckOut,
		Nights:          rng.Nights(),
		Adults:          c.Adults,
		Children:        c.Children,
		Status:          model.StatusPending,
		TotalAmount:     totalOf(c.TotalAmount, room, rng),
		SpecialRequests: strings.TrimSpace(c.SpecialRequests),
		Source:          source,
		Version:         1,
		Metadata:        gModel.NewMetadata(actor, now),
	}

	var guest *guestModel.Guest

	if c.Guest != nil && res.GuestID == constant.Empty {
		draft := c.Guest.ToModel(actor, now)
		guest = &draft
	}

	return model.Booking{Reservation: res, Guest: guest, ConfirmationPrefix: prefix}
}

type RescheduleRequest struct {
	RoomID      string   `json:"room_id"`
	CheckIn     string   `json:"check_in"`
	CheckOut    string   `json:"check_out"`
	TotalAmount *float64 `json:"total_amount" validate:"omitempty,money"`
}

func (r *RescheduleRequest) Range() (model.DateRange, error) {
	return model.ParseDateRange(r.CheckIn, r.CheckOut)
}

// Apply moves the reservation to the new stay and room, repricing it unless a total is supplied.
func (r *RescheduleRequest) Apply(res model.Reservation, rng model.DateRange, room roomModel.Room, actor string, now time.Time) model.Reservation {
	res.RoomID = room.ID
	res.CheckIn = rng.CheckIn
	res.CheckOut = rng.CheckOut
	res.Nights = rng.Nights()
	res.TotalAmount = totalOf(r.TotalAmount, room, rng)
	res.Touch(actor, now)

	return res
}

func totalOf(explicit *float64, room roomModel.Room, rng model.DateRange) money.Money {
	if explicit != nil {
		return money.FromMajor(*explicit)
	}

	return room.BaseRate.Times(rng.Nights())
}

type CancelRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

type CheckOutRequest struct {
	Override bool `json:"override"`
}

type TransitionRequest struct {
	Status   string `json:"status"   validate:"required,oneof=pending confirmed checked_in checked_out cancelled no_show"`
	Reason   string `json:"reason"   validate:"max=500"`
	Override bool   `json:"override"`
}

type SearchRequest struct {
	Status    string `json:"status"`
	DateRange string `json:"date_range"`
	Guest     string `json:"guest"`
	Source    string `json:"source"`
}

func (s *SearchRequest) FromRequest(r *http.Request) {
	query := r.URL.Query()

	s.Status = query.Get(constant.RequestParamStatus)
	s.DateRange = query.Get(constant.RequestParamDateRange)
	s.Guest = query.Get(constant.RequestParamGuest)
	s.Source = query.Get(constant.RequestParamSource)
}

func (s *SearchRequest) ToCriteria() model.Criteria {
	return model.Criteria{
		Status:    model.Status(s.Status),
		DateRange: model.DateRangePreset(s.DateRange),
		GuestName: s.Guest,
		Source:    model.Source(s.Source),
	}
}

type ReservationResponse struct {
	ID                 string  `json:"id"`
	ConfirmationCode   string  `json:"confirmation_code"`
	BranchID           string  `json:"branch_id"`
	GuestID            string  `json:"guest_id"`
	GuestName          string  `json:"guest_name"`
	RoomID             string  `json:"room_id"`
	RoomNumber         string  `json:"room_number"`
	CheckIn            string  `json:"check_in"`
	CheckOut           string  `json:"check_out"`
	Nights             int     `json:"nights"`
	Adults             int     `json:"adults"`
	Children           int     `json:"children"`
	Status             string  `json:"status"`
	StatusLabel        string  `json:"status_label"`
	StatusColor        string  `json:"status_color"`
	TotalAmount        float64 `json:"total_amount"`
	PaidAmount         float64 `json:"paid_amount"`
	Balance            float64 `json:"balance"`
	SpecialRequests    string  `json:"special_requests,omitempty"`
	Source             string  `json:"source"`
	CheckedInAt        *string `json:"checked_in_at,omitempty"`
	CheckedOutAt       *string `json:"checked_out_at,omitempty"`
	CancelledAt        *string `json:"cancelled_at,omitempty"`
	CancellationReason string  `json:"cancellation_reason,omitempty"`
	Version            int     `json:"version"`
	gDto.Metadata
}

func (r *ReservationResponse) FromModel(model model.Reservation) {
	r.ID = model.ID
	r.ConfirmationCode = model.ConfirmationCode
	r.BranchID = model.BranchID
	r.GuestID = model.GuestID
	r.GuestName = model.GuestName
	r.RoomID = model.RoomID
	r.RoomNumber = model.RoomNumber
	r.CheckIn = timezone.FormatDate(model.CheckIn)
	r.CheckOut = timezone.FormatDate(model.CheckOut)
	r.Nights = model.Nights
	r.Adults = model.Adults
	r.Children = model.Children
	r.Status = string(model.Status)
	r.StatusLabel = model.Status.Label()
	r.StatusColor = model.Status.Color()
	r.TotalAmount = model.TotalAmount.Major()
	r.PaidAmount = model.PaidAmount.Major()
	r.Balance = model.DisplayBalance().Major()
	r.SpecialRequests = model.SpecialRequests
	r.Source = string(model.Source)
	r.CheckedInAt = formatTime(model.CheckedInAt)
	r.CheckedOutAt = formatTime(model.CheckedOutAt)
	r.CancelledAt = formatTime(model.CancelledAt)
	r.CancellationReason = model.CancellationReason
	r.Version = model.Version
	r.Metadata.FromModel(model.Metadata)
}

type ListReservationsResponse struct {
	Reservations []ReservationResponse `json:"reservations"`
	Total        int                   `json:"total"`
}

func (r *ListReservationsResponse) FromModels(models []model.Reservation) {
	r.Total = len(models)

	r.Reservations = make([]ReservationResponse, len(models))
	for i, mod := range models {
		r.Reservations[i].FromModel(mod)
	}
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}

	formatted := timezone.Format(*t, constant.DateFormat)

	return &formatted
}
