package model

import (
	"pms/shared/failure"
	"pms/shared/timezone"
	"strings"
	"time"
)

type DateRangePreset string

const (
	PresetToday    DateRangePreset = "today"
	PresetTomorrow DateRangePreset = "tomorrow"
	PresetThisWeek DateRangePreset = "this_week"
	PresetNextWeek DateRangePreset = "next_week"

	daysPerWeek = 7
)

func (p DateRangePreset) IsValid() bool {
	switch p {
	case PresetToday, PresetTomorrow, PresetThisWeek, PresetNextWeek:
		return true
	default:
		return false
	}
}

// Window resolves the preset to an inclusive [from, to] of calendar days relative to now.
// Weeks run Monday to Sunday.
func (p DateRangePreset) Window(now time.Time) (from, to time.Time, ok bool) {
	today := timezone.DateOf(now)
	monday := today.AddDate(0, 0, -((int(today.Weekday()) + 6) % daysPerWeek))

	switch p {
	case PresetToday:
		return today, today, true
	case PresetTomorrow:
		tomorrow := today.AddDate(0, 0, 1)

		return tomorrow, tomorrow, true
	case PresetThisWeek:
		return monday, monday.AddDate(0, 0, daysPerWeek-1), true
	case PresetNextWeek:
		next := monday.AddDate(0, 0, daysPerWeek)

		return next, next.AddDate(0, 0, daysPerWeek-1), true
	default:
		return time.Time{}, time.Time{}, false
	}
}

// Criteria filters reservations. Zero values do not filter.
type Criteria struct {
	Status    Status
	DateRange DateRangePreset
	GuestName string
	Source    Source
}

func (c Criteria) Validate() error {
	if c.Status != "" && !c.Status.IsValid() {
		return failure.BadRequestFromString("unknown reservation status " + string(c.Status)) //nolint:wrapcheck
	}

	if c.DateRange != "" && !c.DateRange.IsValid() {
		return failure.BadRequestFromString("unknown date range " + string(c.DateRange)) //nolint:wrapcheck
	}

	if c.Source != "" && !c.Source.IsValid() {
		return failure.BadRequestFromString("unknown reservation source " + string(c.Source)) //nolint:wrapcheck
	}

	return nil
}

func (c Criteria) Match(r Reservation, now time.Time) bool {
	if c.Status != "" && r.Status != c.Status {
		return false
	}

	if c.Source != "" && r.Source != c.Source {
		return false
	}

	if from, to, ok := c.DateRange.Window(now); ok {
		checkIn := timezone.DateOf(r.CheckIn)
		if checkIn.Before(from) || checkIn.After(to) {
			return false
		}
	}

	if name := strings.TrimSpace(c.GuestName); name != "" {
		if !strings.Contains(strings.ToLower(r.GuestName), strings.ToLower(name)) {
			return false
		}
	}

	return true
}

// Search keeps the reservations matching every criterion, preserving order.
func Search(reservations []Reservation, c Criteria, now time.Time) []Reservation {
	result := make([]Reservation, 0, len(reservations))

	for _, r := range reservations {
		if c.Match(r, now) {
			result = append(result, r)
		}
	}

	return result
}

// ListFilter is the part of Criteria pushed down to persistence. Zero values do not filter.
type ListFilter struct {
	Status      Status
	Source      Source
	CheckInFrom time.Time
	CheckInTo   time.Time
}

func (c Criteria) ListFilter(now time.Time) ListFilter {
	filter := ListFilter{Status: c.Status, Source: c.Source}

	if from, to, ok := c.DateRange.Window(now); ok {
		filter.CheckInFrom = from
		filter.CheckInTo = to
	}

	return filter
}
