package dto_test

import (
	"net/http"
	"net/url"
	"pms/shared/constant"
	"pms/shared/dto"
	"pms/shared/model"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMetadata_FromModel(t *testing.T) {
	createdAt := time.Date(2023, 1, 1, 12, 0, 0, 0, time.UTC)
	modifiedAt := time.Date(2023, 1, 2, 12, 0, 0, 0, time.UTC)

	metadata := &dto.Metadata{}
	metadata.FromModel(model.Metadata{
		CreatedAt:  createdAt,
		ModifiedAt: modifiedAt,
		CreatedBy:  "creator",
		ModifiedBy: "modifier",
	})

	createdParsed, err := time.Parse(constant.DateFormat, metadata.CreatedAt)
	assert.NoError(t, err)
	assert.True(t, createdParsed.Equal(createdAt))

	modifiedParsed, err := time.Parse(constant.DateFormat, metadata.ModifiedAt)
	assert.NoError(t, err)
	assert.True(t, modifiedParsed.Equal(modifiedAt))

	assert.Equal(t, "creator", metadata.CreatedBy)
	assert.Equal(t, "modifier", metadata.ModifiedBy)
}

func TestQueryParams_FromRequest(t *testing.T) {
	tests := []struct {
		name           string
		queryParams    map[string]string
		defaultRequest bool
		expected       dto.QueryParams
	}{
		{
			name: "with all valid parameters",
			queryParams: map[string]string{
				"page":     "2",
				"limit":    "20",
				"sort_by":  "check_in",
				"sort_dir": "asc",
			},
			expected: dto.QueryParams{Page: 2, Limit: 20, SortBy: "check_in", SortDir: "ASC"},
		},
		{
			name:           "with default request enabled and no parameters",
			queryParams:    map[string]string{},
			defaultRequest: true,
			expected:       dto.QueryParams{Page: constant.DefaultValuePage, Limit: constant.DefaultValueLimit},
		},
		{
			name:        "invalid numbers and direction are ignored",
			queryParams: map[string]string{"page": "-1", "limit": "abc", "sort_dir": "sideways"},
			expected:    dto.QueryParams{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values := url.Values{}
			for key, value := range tt.queryParams {
				values.Set(key, value)
			}

			req := &http.Request{URL: &url.URL{RawQuery: values.Encode()}}

			params := dto.QueryParams{}
			params.FromRequest(req, tt.defaultRequest)

			assert.Equal(t, tt.expected, params)
		})
	}
}

func TestQueryParams_Sanitize(t *testing.T) {
	params := dto.QueryParams{SortBy: "1; DROP TABLE reservations", SortDir: dto.SortDirDesc}
	params.Sanitize("check_in", "created_at")

	assert.Empty(t, params.SortBy)
	assert.Empty(t, params.SortDir)

	params = dto.QueryParams{SortBy: "check_in"}
	params.Sanitize("check_in")

	assert.Equal(t, "check_in", params.SortBy)
	assert.Equal(t, dto.SortDirAsc, params.SortDir)
}

func TestQueryParams_Offset(t *testing.T) {
	assert.Equal(t, 0, dto.QueryParams{}.Offset())
	assert.Equal(t, 20, dto.QueryParams{Page: 3, Limit: 10}.Offset())
}

func TestFilterGroup_GetWhereClause(t *testing.T) {
	group := dto.FilterGroup{}
	group.Add(
		dto.Filter{Field: "branch_id", Value: "b-1", Operator: dto.FilterOperatorEq, Table: "reservations"},
		dto.Filter{Field: "status", Value: []string{"pending", "confirmed"}, Operator: dto.FilterOperatorIn, Table: "reservations"},
		dto.Filter{Field: "check_in", Value: "2024-07-20", Operator: dto.FilterOperatorLess},
		dto.Filter{Field: "check_out", Value: "2024-07-15", Operator: dto.FilterOperatorGreater},
	)

	where, args := group.GetWhereClause()

	assert.Equal(t,
		"(reservations.branch_id = :branch_id AND reservations.status IN (:status_0, :status_1) AND check_in < :check_in AND check_out > :check_out)",
		where,
	)
	assert.Equal(t, map[string]any{
		"branch_id": "b-1",
		"status_0":  "pending",
		"status_1":  "confirmed",
		"check_in":  "2024-07-20",
		"check_out": "2024-07-15",
	}, args)
}

func TestFilterGroup_NestedAndEmpty(t *testing.T) {
	empty := dto.FilterGroup{}
	where, args := empty.GetWhereClause()
	assert.Empty(t, where)
	assert.Empty(t, args)

	group := dto.FilterGroup{
		Operator: dto.FilterGroupOperatorOr,
		Filters: []any{
			dto.Filter{Field: "full_name", Value: "ana", Operator: dto.FilterOperatorLike},
			dto.Filter{Field: "document_number", Value: "ana", ArgName: "document", Operator: dto.FilterOperatorLike},
		},
	}

	where, args = group.GetWhereClause()
	assert.Equal(t, "(LOWER(full_name) LIKE LOWER(:full_name) OR LOWER(document_number) LIKE LOWER(:document))", where)
	assert.Equal(t, "%ana%", args["full_name"])
	assert.Equal(t, "%ana%", args["document"])

	emptyIn := dto.Filter{Field: "status", Value: []string{}, Operator: dto.FilterOperatorIn}
	where, _ = emptyIn.GetWhereClause()
	assert.Equal(t, "FALSE", where)
}
