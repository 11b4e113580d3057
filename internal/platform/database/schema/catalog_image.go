// Copyright (c) 2026 Etalage. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// CatalogImageTable represents the 'catalog.image' table
type CatalogImageTable struct {
	Table     string
	ID        string
	Ref       string
	Checksum  string
	CreatedAt string
}

// CatalogImage is the schema definition for catalog.image
var CatalogImage = CatalogImageTable{
	Table:     "catalog.image",
	ID:        "id",
	Ref:       "ref",
	Checksum:  "checksum",
	CreatedAt: "createdat",
}

func (t CatalogImageTable) Columns() []string {
	return []string{t.ID, t.Ref, t.Checksum, t.CreatedAt}
}
