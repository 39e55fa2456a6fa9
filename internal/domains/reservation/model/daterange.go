package model

import (
	"fmt"
	"pms/shared/timezone"
	"time"
)

const hoursPerDay = 24

// DateRange is a half-open stay [CheckIn, CheckOut) of calendar dates.
type DateRange struct {
	CheckIn  time.Time
	CheckOut time.Time
}

func NewDateRange(checkIn, checkOut time.Time) (DateRange, error) {
	rng := DateRange{CheckIn: timezone.DateOf(checkIn), CheckOut: timezone.DateOf(checkOut)}

	if !rng.CheckOut.After(rng.CheckIn) {
		return DateRange{}, ErrInvalidDateRange
	}

	return rng, nil
}

func ParseDateRange(checkIn, checkOut string) (DateRange, error) {
	in, err := timezone.ParseDate(checkIn)
	if err != nil {
		return DateRange{}, fmt.Errorf("%w: check-in %q is not a date", ErrInvalidDateRange, checkIn)
	}

	out, err := timezone.ParseDate(checkOut)
	if err != nil {
		return DateRange{}, fmt.Errorf("%w: check-out %q is not a date", ErrInvalidDateRange, checkOut)
	}

	return NewDateRange(in, out)
}

// Nights counts whole days between the dates, at least one.
func (r DateRange) Nights() int {
	nights := int(timezone.DateOf(r.CheckOut).Sub(timezone.DateOf(r.CheckIn)).Hours() / hoursPerDay)
	if nights < 1 {
		return 1
	}

	return nights
}

// Overlaps uses half-open semantics: a check-out on the day of another check-in does not overlap.
func (r DateRange) Overlaps(other DateRange) bool {
	return r.CheckIn.Before(other.CheckOut) && r.CheckOut.After(other.CheckIn)
}

func (r DateRange) String() string {
	return timezone.FormatDate(r.CheckIn) + "/" + timezone.FormatDate(r.CheckOut)
}
