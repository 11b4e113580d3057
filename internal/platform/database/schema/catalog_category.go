// Copyright (c) 2026 Etalage. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package schema names every table and column of the catalog database.

Repositories build SQL from these definitions instead of string literals, so a
renamed column is a compile error rather than a runtime failure. Column names
follow the house convention: lowercase, no separators.
*/
package schema

// CatalogCategoryTable represents the 'catalog.category' table
type CatalogCategoryTable struct {
	Table       string
	ID          string
	Name        string
	Description string
	ImageRef    string
	Slug        string
	ParentID    string
	Language    string
	CreatedAt   string
}

// CatalogCategory is the schema definition for catalog.category
var CatalogCategory = CatalogCategoryTable{
	Table:       "catalog.category",
	ID:          "id",
	Name:        "name",
	Description: "description",
	ImageRef:    "imageref",
	Slug:        "slug",
	ParentID:    "parentid",
	Language:    "language",
	CreatedAt:   "createdat",
}

func (t CatalogCategoryTable) Columns() []string {
	return []string{t.ID, t.Name, t.Description, t.ImageRef, t.Slug, t.ParentID, t.Language, t.CreatedAt}
}
