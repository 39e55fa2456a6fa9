package money_test

import (
	"pms/shared/money"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromMajor(t *testing.T) {
	tests := []struct {
		name  string
		input float64
		want  money.Money
	}{
		{name: "whole amount", input: 150, want: 15000},
		{name: "two decimals", input: 99.99, want: 9999},
		{name: "binary float noise", input: 0.1 + 0.2, want: 30},
		{name: "negative", input: -12.5, want: -1250},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, money.FromMajor(tt.input))
		})
	}
}

func TestMoney_Arithmetic(t *testing.T) {
	rate := money.FromUnits(150)

	assert.Equal(t, money.FromUnits(750), rate.Times(5))
	assert.Equal(t, 750.0, rate.Times(5).Major())
	assert.Equal(t, money.Money(0), money.Money(-500).Floor())
	assert.Equal(t, money.Money(500), money.Money(500).Floor())
	assert.True(t, rate.IsPositive())
	assert.False(t, money.Money(0).IsPositive())
}

func TestMoney_String(t *testing.T) {
	assert.Equal(t, "750.00", money.FromUnits(750).String())
	assert.Equal(t, "0.05", money.Money(5).String())
	assert.Equal(t, "-12.30", money.Money(-1230).String())
}

func TestHasSubCentPrecision(t *testing.T) {
	assert.False(t, money.HasSubCentPrecision(100))
	assert.False(t, money.HasSubCentPrecision(100.25))
	assert.True(t, money.HasSubCentPrecision(100.255))
}
