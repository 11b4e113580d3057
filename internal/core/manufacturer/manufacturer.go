// Copyright (c) 2026 Etalage. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package manufacturer manages the producers behind catalog listings.
package manufacturer

import (
	"time"

	"github.com/taibuivan/etalage/internal/core/image"
)

// UnknownName is the manufacturer attached to listings ingested without one.
const UnknownName = "Unknown"

// Manufacturer represents the producer of a listing.
type Manufacturer struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	PhoneNumber *string        `json:"phone_number"`
	Description *string        `json:"description"`
	Pictures    []*image.Image `json:"pictures"`
	CreatedAt   time.Time      `json:"created_at"`
}

// Filter holds the parameters for a paginated manufacturer search.
type Filter struct {
	Query string // Case-insensitive substring of the name
}

// Input carries the fields of a create or a partial update. Nil fields are
// left unchanged on update; a non-nil Pictures replaces the whole set.
type Input struct {
	Name        *string        `json:"name"`
	PhoneNumber *string        `json:"phone_number" validate:"omitempty,max=32"`
	Description *string        `json:"description"`
	Pictures    *[]image.Input `json:"pictures"`
}

// Global field names for validation
const (
	FieldName        = "name"
	FieldPhoneNumber = "phone_number"
	FieldPictures    = "pictures"
)

const maxNameLength = 255
