// Copyright (c) 2026 Etalage. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package category manages the two-level catalog taxonomy.

Root categories have no parent and sub-categories point directly at a root.
Deeper nesting is refused, so the parent chain can never cycle. Deleting a
root cascades to its children.

The taxonomy is usually seeded once from a spreadsheet export (see
[BuildTree] and [Service.Bootstrap]) and then maintained through CRUD.
*/
package category

import "time"

// Category is a node of the catalog taxonomy.
type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	ImageRef    *string   `json:"image_ref"`
	Slug        string    `json:"slug"`
	ParentID    *string   `json:"parent_id"`
	Language    string    `json:"language"`
	CreatedAt   time.Time `json:"created_at"`

	// Children is only populated by tree reads.
	Children []*Category `json:"children,omitempty"`
}

// IsRoot reports whether the category sits at the top level.
func (category *Category) IsRoot() bool {
	return category.ParentID == nil
}

// Filter holds the parameters for a paginated category search.
type Filter struct {
	Name        string // Case-insensitive substring
	Description string // Case-insensitive substring
	Language    string // Exact ISO 639-3 code
	ParentID    string // Children of this category
	RootOnly    bool   // Only top-level categories
}

// Patch carries the fields of a partial update. Nil fields are left unchanged.
type Patch struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	ImageRef    *string `json:"image_ref"`
	Language    *string `json:"language"`

	// ParentID set to "" turns the category into a root.
	ParentID *string `json:"parent_id"`
}

// Global field names for validation
const (
	FieldName        = "name"
	FieldDescription = "description"
	FieldImageRef    = "image_ref"
	FieldParentID    = "parent_id"
	FieldLanguage    = "language"
	FieldRows        = "rows"
)

const (
	maxNameLength = 255
	// fallbackSlug is used when a name has no sluggable characters.
	fallbackSlug = "category"
)
