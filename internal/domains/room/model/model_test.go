package model_test

import (
	"pms/internal/domains/room/model"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestCompareNumbers(t *testing.T) {
	tests := []struct {
		a, b     string
		expected int
	}{
		{a: "9", b: "10", expected: -1},
		{a: "10", b: "10A", expected: -1},
		{a: "10A", b: "10B", expected: -1},
		{a: "010", b: "10", expected: 0},
		{a: "201", b: "B1", expected: -1},
		{a: "PH", b: "B1", expected: 1},
		{a: "101", b: "101", expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.expected, model.CompareNumbers(tt.a, tt.b))
			assert.Equal(t, -tt.expected, model.CompareNumbers(tt.b, tt.a))
		})
	}
}

func TestSortByNumber(t *testing.T) {
	rooms := []model.Room{{Number: "10A"}, {Number: "B1"}, {Number: "102"}, {Number: "9"}, {Number: "10"}}

	model.SortByNumber(rooms)

	got := make([]string, len(rooms))
	for i, room := range rooms {
		got[i] = room.Number
	}

	if diff := cmp.Diff([]string{"9", "10", "10A", "102", "B1"}, got); diff != "" {
		t.Errorf("unexpected order (-want +got):\n%s", diff)
	}
}

func TestRoom_Fits(t *testing.T) {
	room := model.Room{Capacity: 3}

	assert.True(t, room.Fits(2, 1))
	assert.False(t, room.Fits(2, 2))
	assert.True(t, model.Room{}.Fits(6, 0))
}

func TestEnums(t *testing.T) {
	assert.True(t, model.TypeSuite.IsValid())
	assert.False(t, model.Type("penthouse").IsValid())
	assert.True(t, model.StatusCleaning.IsValid())
	assert.False(t, model.Status("dirty").IsValid())
}
