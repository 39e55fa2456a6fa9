package shared_test

import (
	"context"
	"errors"
	"pms/shared"
	"pms/shared/cache/mocks"
	"pms/shared/constant"
	"pms/shared/dto"
	"reflect"
	"testing"
	"time"

	"go.uber.org/mock/gomock"
)

func TestConvertStringToBool(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected *bool
	}{
		{name: "empty string returns nil", input: "", expected: nil},
		{name: "valid true string", input: "true", expected: boolPtr(true)},
		{name: "valid false string", input: "false", expected: boolPtr(false)},
		{name: "valid 1 string", input: "1", expected: boolPtr(true)},
		{name: "valid F string", input: "F", expected: boolPtr(false)},
		{name: "invalid string returns nil", input: "override", expected: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := shared.ConvertStringToBool(tt.input)

			if tt.expected == nil {
				if result != nil {
					t.Errorf("expected nil, got %v", *result)
				}

				return
			}

			if result == nil {
				t.Errorf("expected %v, got nil", *tt.expected)
			} else if *result != *tt.expected {
				t.Errorf("expected %v, got %v", *tt.expected, *result)
			}
		})
	}
}

func TestCalculateTotalPage(t *testing.T) {
	tests := []struct {
		name     string
		total    int
		limit    int
		expected int
	}{
		{name: "zero total returns 1", total: 0, limit: 10, expected: 1},
		{name: "zero limit returns 1", total: 100, limit: 0, expected: 1},
		{name: "negative limit returns 1", total: 100, limit: -5, expected: 1},
		{name: "exact division", total: 100, limit: 10, expected: 10},
		{name: "division with remainder", total: 101, limit: 10, expected: 11},
		{name: "limit greater than total", total: 5, limit: 10, expected: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := shared.CalculateTotalPage(tt.total, tt.limit)
			if result != tt.expected {
				t.Errorf("expected %d, got %d", tt.expected, result)
			}
		})
	}
}

func TestBuildCacheKey(t *testing.T) {
	tests := []struct {
		name     string
		prefix   string
		parts    []string
		expected string
	}{
		{name: "prefix only", prefix: "room:list", expected: "room:list"},
		{name: "with parts", prefix: "room:list", parts: []string{"b-1", "1", "10"}, expected: "room:list:b-1:1:10"},
		{name: "empty parts skipped", prefix: "reservation:get", parts: []string{"", "r-1", ""}, expected: "reservation:get:r-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := shared.BuildCacheKey(tt.prefix, tt.parts...); result != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, result)
			}
		})
	}
}

func TestInvalidateCaches(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	redisCache := mocks.NewMockRedisCache(ctrl)
	redisCache.EXPECT().Clear(gomock.Any(), "reservation:get:*").Return(nil)
	redisCache.EXPECT().Clear(gomock.Any(), "reservation:list:*").Return(errors.New("redis down"))

	// second failure is logged, not returned
	shared.InvalidateCaches(context.Background(), redisCache, "reservation:get", "reservation:list")
}

func TestTransformFields(t *testing.T) {
	type roomPatch struct {
		ID         string  `db:"id"`
		Number     string  `db:"number"`
		Floor      int     `db:"floor"`
		Status     *string `db:"status"`
		NoDBTag    string
		EmptyField string `db:"empty_field"`
	}

	now := time.Date(2024, 7, 15, 9, 0, 0, 0, time.UTC)
	status := "cleaning"

	tests := []struct {
		name     string
		data     any
		actor    string
		expected map[string]any
	}{
		{
			name: "populated fields with pointer dereferenced",
			data: roomPatch{
				ID:      "room-1",
				Number:  "101",
				Floor:   1,
				Status:  &status,
				NoDBTag: "ignored",
			},
			actor: "u-1",
			expected: map[string]any{
				"id":     "room-1",
				"number": "101",
				"floor":  1,
				"status": "cleaning",
			},
		},
		{
			name:     "zero values only stamp metadata",
			data:     roomPatch{},
			actor:    "u-2",
			expected: map[string]any{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := shared.TransformFields(tt.data, tt.actor, now)

			if result[constant.FieldModifiedBy] != tt.actor {
				t.Errorf("expected modified_by to be %s, got %v", tt.actor, result[constant.FieldModifiedBy])
			}

			if modifiedAt, ok := result[constant.FieldModifiedAt].(time.Time); !ok || !modifiedAt.Equal(now) {
				t.Errorf("expected modified_at to be %v, got %v", now, result[constant.FieldModifiedAt])
			}

			for key, expectedValue := range tt.expected {
				if actualValue, exists := result[key]; !exists {
					t.Errorf("expected field %s to exist", key)
				} else if !reflect.DeepEqual(actualValue, expectedValue) {
					t.Errorf("expected field %s to be %v, got %v", key, expectedValue, actualValue)
				}
			}

			for key := range result {
				if key == constant.FieldModifiedAt || key == constant.FieldModifiedBy {
					continue
				}

				if _, expected := tt.expected[key]; !expected {
					t.Errorf("unexpected field %s in result", key)
				}
			}
		})
	}
}

func TestFilterByID(t *testing.T) {
	result := shared.FilterByID("r-1", "id", "reservations")

	expected := dto.FilterGroup{
		Operator: dto.FilterGroupOperatorAnd,
		Filters: []any{
			dto.Filter{Field: "id", Value: "r-1", Operator: dto.FilterOperatorEq, Table: "reservations"},
		},
	}

	if !reflect.DeepEqual(result, expected) {
		t.Errorf("expected %+v, got %+v", expected, result)
	}

	where, args := result.GetWhereClause()
	if where != "(reservations.id = :id)" {
		t.Errorf("unexpected where clause %s", where)
	}

	if args["id"] != "r-1" {
		t.Errorf("expected id arg r-1, got %v", args["id"])
	}
}

func boolPtr(b bool) *bool {
	return &b
}
