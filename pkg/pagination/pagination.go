// Copyright (c) 2026 Etalage. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package pagination reads page windows from list requests (categories,
// manufacturers, listings) and describes them back in the response meta.
package pagination

import (
	"net/http"

	"github.com/taibuivan/etalage/pkg/convert"
)

const (
	// DefaultLimit applies when the client sends no usable limit.
	DefaultLimit = 20
	// MaxLimit caps a page. Listing rows carry their grouped products, so
	// larger pages are refused rather than honoured.
	MaxLimit = 100
	// DefaultPage is the first page; pages are 1-indexed.
	DefaultPage = 1
)

// Params is the page window requested through ?page= and ?limit=.
type Params struct {
	Page  int
	Limit int
}

// FromRequest reads the window from the query string. Malformed or
// out-of-range values are replaced by the defaults; paging never fails a request.
func FromRequest(request *http.Request) Params {
	query := request.URL.Query()

	params := Params{
		Page:  convert.ToIntD(query.Get("page"), DefaultPage),
		Limit: convert.ToIntD(query.Get("limit"), DefaultLimit),
	}
	if params.Page < 1 {
		params.Page = DefaultPage
	}
	if params.Limit < 1 || params.Limit > MaxLimit {
		params.Limit = DefaultLimit
	}

	return params
}

// Offset is the number of rows skipped before this page (SQL OFFSET).
func (params Params) Offset() int {
	if params.Page <= 1 {
		return 0
	}
	return (params.Page - 1) * params.Limit
}

// Meta describes this window once the total row count is known.
func (params Params) Meta(total int) Meta {
	meta := Meta{Page: params.Page, Limit: params.Limit, Total: total}
	if params.Limit > 0 {
		meta.TotalPages = (total + params.Limit - 1) / params.Limit
	}
	meta.HasNext = params.Page < meta.TotalPages
	return meta
}

// Meta is the "meta" object of a paginated response envelope.
type Meta struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
}
