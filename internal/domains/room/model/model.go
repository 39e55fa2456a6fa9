package model

import (
	"pms/shared/model"
	"pms/shared/money"
	"slices"

	"github.com/lib/pq"
)

const (
	TableName  = "rooms"
	EntityName = "room"

	FieldID       = "id"
	FieldBranchID = "branch_id"
	FieldNumber   = "number"
	FieldFloor    = "floor"
	FieldType     = "type"
	FieldCapacity = "capacity"
	FieldBaseRate = "base_rate"
	FieldFeatures = "features"
	FieldStatus   = "status"
)

type Type string

const (
	TypeSingle Type = "single"
	TypeDouble Type = "double"
	TypeTwin   Type = "twin"
	TypeSuite  Type = "suite"
	TypeFamily Type = "family"
)

func (t Type) IsValid() bool {
	switch t {
	case TypeSingle, TypeDouble, TypeTwin, TypeSuite, TypeFamily:
		return true
	default:
		return false
	}
}

// Status is the housekeeping state of the room. It does not take part in
// availability, which depends on reservations only.
type Status string

const (
	StatusAvailable   Status = "available"
	StatusOccupied    Status = "occupied"
	StatusCleaning    Status = "cleaning"
	StatusMaintenance Status = "maintenance"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusAvailable, StatusOccupied, StatusCleaning, StatusMaintenance:
		return true
	default:
		return false
	}
}

type Room struct {
	ID       string         `db:"id"`
	BranchID string         `db:"branch_id"`
	Number   string         `db:"number"`
	Floor    int            `db:"floor"`
	Type     Type           `db:"type"`
	Capacity int            `db:"capacity"`
	BaseRate money.Money    `db:"base_rate"`
	Features pq.StringArray `db:"features"`
	Status   Status         `db:"status"`
	model.Metadata
}

// Fits reports whether the party fits the room.
func (r Room) Fits(adults, children int) bool {
	return r.Capacity <= 0 || adults+children <= r.Capacity
}

// SortByNumber orders rooms by number, numeric-aware.
func SortByNumber(rooms []Room) {
	slices.SortStableFunc(rooms, func(a, b Room) int {
		return CompareNumbers(a.Number, b.Number)
	})
}

// CompareNumbers compares room numbers so that "9" < "10" < "10A" < "10B" < "B1".
// Leading digit runs compare by value; the rest compares as text.
func CompareNumbers(a, b string) int {
	aDigits, aRest := splitLeadingDigits(a)
	bDigits, bRest := splitLeadingDigits(b)

	switch {
	case aDigits != "" && bDigits == "":
		return -1
	case aDigits == "" && bDigits != "":
		return 1
	case aDigits != "" && bDigits != "":
		if c := compareDigits(aDigits, bDigits); c != 0 {
			return c
		}
	}

	switch {
	case aRest < bRest:
		return -1
	case aRest > bRest:
		return 1
	default:
		return 0
	}
}

func splitLeadingDigits(s string) (digits, rest string) {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}

	return s[:i], s[i:]
}

func compareDigits(a, b string) int {
	a = trimZeros(a)
	b = trimZeros(b)

	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}

		return 1
	}

	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func trimZeros(s string) string {
	for len(s) > 1 && s[0] == '0' {
		s = s[1:]
	}

	return s
}
