// Package money holds amounts as integer minor units (cents) so that sums and
// balance comparisons are exact.
package money

import (
	"fmt"
	"math"
)

const centsPerUnit = 100

type Money int64

// FromMajor converts a decimal amount (150.5) to cents, rounding half away from zero.
func FromMajor(amount float64) Money {
	return Money(math.Round(amount * centsPerUnit))
}

// FromUnits converts whole currency units to cents.
func FromUnits(units int64) Money {
	return Money(units * centsPerUnit)
}

func (m Money) Cents() int64 {
	return int64(m)
}

func (m Money) Major() float64 {
	return float64(m) / centsPerUnit
}

func (m Money) Times(n int) Money {
	return m * Money(n)
}

func (m Money) IsPositive() bool {
	return m > 0
}

// Floor returns m, or zero when m is negative.
func (m Money) Floor() Money {
	if m < 0 {
		return 0
	}

	return m
}

func (m Money) String() string {
	sign := ""
	cents := int64(m)

	if cents < 0 {
		sign = "-"
		cents = -cents
	}

	return fmt.Sprintf("%s%d.%02d", sign, cents/centsPerUnit, cents%centsPerUnit)
}

// HasSubCentPrecision reports whether amount carries more than two decimals.
func HasSubCentPrecision(amount float64) bool {
	scaled := amount * centsPerUnit

	return math.Abs(scaled-math.Round(scaled)) > 1e-6
}
