package model

import "slices"

// Status is the canonical reservation status. Display strings derive from it.
type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusCheckedIn  Status = "checked_in"
	StatusCheckedOut Status = "checked_out"
	StatusCancelled  Status = "cancelled"
	StatusNoShow     Status = "no_show"
)

var statuses = []Status{
	StatusPending,
	StatusConfirmed,
	StatusCheckedIn,
	StatusCheckedOut,
	StatusCancelled,
	StatusNoShow,
}

var transitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCheckedIn, StatusCancelled, StatusNoShow},
	StatusCheckedIn: {StatusCheckedOut},
}

var labels = map[Status]string{
	StatusPending:    "Pending",
	StatusConfirmed:  "Confirmed",
	StatusCheckedIn:  "Checked in",
	StatusCheckedOut: "Checked out",
	StatusCancelled:  "Cancelled",
	StatusNoShow:     "No show",
}

var colors = map[Status]string{
	StatusPending:    "yellow",
	StatusConfirmed:  "blue",
	StatusCheckedIn:  "green",
	StatusCheckedOut: "gray",
	StatusCancelled:  "red",
	StatusNoShow:     "orange",
}

func Statuses() []Status {
	return slices.Clone(statuses)
}

// BlockingStatuses are the statuses that hold a room.
func BlockingStatuses() []Status {
	return []Status{StatusPending, StatusConfirmed, StatusCheckedIn}
}

func (s Status) IsValid() bool {
	return slices.Contains(statuses, s)
}

func (s Status) IsBlocking() bool {
	return slices.Contains(BlockingStatuses(), s)
}

func (s Status) IsTerminal() bool {
	return s.IsValid() && len(transitions[s]) == 0
}

// CanTransition reports whether the edge from s to next exists, ignoring guards.
func (s Status) CanTransition(next Status) bool {
	return slices.Contains(transitions[s], next)
}

func (s Status) Label() string {
	if label, ok := labels[s]; ok {
		return label
	}

	return string(s)
}

func (s Status) Color() string {
	if color, ok := colors[s]; ok {
		return color
	}

	return "gray"
}
