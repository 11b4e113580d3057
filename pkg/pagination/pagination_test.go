// Copyright (c) 2026 Etalage. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package pagination_test

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/etalage/pkg/pagination"
)

/*
TestFromRequest clamps malformed paging parameters instead of failing.
*/
func TestFromRequest(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		page   int
		limit  int
		offset int
	}{
		{"defaults", "", 1, 20, 0},
		{"explicit", "?page=3&limit=50", 3, 50, 100},
		{"malformed", "?page=two&limit=x", 1, 20, 0},
		{"out_of_range", "?page=-4&limit=500", 1, 20, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := pagination.FromRequest(httptest.NewRequest("GET", "/api/v1/listings"+tt.query, nil))
			assert.Equal(t, tt.page, params.Page)
			assert.Equal(t, tt.limit, params.Limit)
			assert.Equal(t, tt.offset, params.Offset())
		})
	}
}

/*
TestParams_Meta rounds the page count up and flags a following page.
*/
func TestParams_Meta(t *testing.T) {
	tests := []struct {
		name   string
		params pagination.Params
		total  int
		want   pagination.Meta
	}{
		{"middle_page", pagination.Params{Page: 2, Limit: 20}, 41, pagination.Meta{Page: 2, Limit: 20, Total: 41, TotalPages: 3, HasNext: true}},
		{"last_page", pagination.Params{Page: 3, Limit: 20}, 41, pagination.Meta{Page: 3, Limit: 20, Total: 41, TotalPages: 3}},
		{"empty", pagination.Params{Page: 1, Limit: 20}, 0, pagination.Meta{Page: 1, Limit: 20}},
		{"zero_limit", pagination.Params{Page: 1}, 10, pagination.Meta{Page: 1, Total: 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.params.Meta(tt.total))
		})
	}
}
