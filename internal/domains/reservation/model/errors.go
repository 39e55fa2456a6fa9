package model

import (
	"fmt"
	"net/http"
	"pms/shared/failure"
	"strings"
)

const (
	KindInvalidDateRange  = "invalid_date_range"
	KindRoomUnavailable   = "room_unavailable"
	KindInvalidTransition = "invalid_transition"
	KindConcurrentUpdate  = "concurrent_update"
)

var (
	ErrInvalidDateRange  = failure.New(http.StatusBadRequest, KindInvalidDateRange, "check-out must be after check-in")
	ErrRoomUnavailable   = failure.New(http.StatusConflict, KindRoomUnavailable, "room is not available for the requested dates")
	ErrInvalidTransition = failure.New(http.StatusConflict, KindInvalidTransition, "status transition is not allowed")
	ErrConcurrentUpdate  = failure.New(http.StatusConflict, KindConcurrentUpdate, "reservation was modified concurrently")
)

type RoomUnavailableError struct {
	RoomID         string
	ConflictingIDs []string
}

func (e *RoomUnavailableError) Error() string {
	if len(e.ConflictingIDs) == 0 {
		return fmt.Sprintf("room %s is not available for the requested dates", e.RoomID)
	}

	return fmt.Sprintf("room %s is not available for the requested dates, conflicts with %s",
		e.RoomID, strings.Join(e.ConflictingIDs, ", "))
}

func (e *RoomUnavailableError) Unwrap() error {
	return ErrRoomUnavailable
}

type InvalidTransitionError struct {
	From   Status
	To     Status
	Reason string
}

func (e *InvalidTransitionError) Error() string {
	msg := fmt.Sprintf("cannot change reservation status from %s to %s", e.From, e.To)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}

	return msg
}

func (e *InvalidTransitionError) Unwrap() error {
	return ErrInvalidTransition
}
