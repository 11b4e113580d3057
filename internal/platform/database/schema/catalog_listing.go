// Copyright (c) 2026 Etalage. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// CatalogListingTable represents the 'catalog.listing' table
type CatalogListingTable struct {
	Table          string
	ID             string
	Name           string
	Description    string
	Price          string
	Weight         string
	Conservation   string
	Kind           string
	Language       string
	ManufacturerID string
	IsActive       string
	Version        string
	CreatedAt      string
	UpdatedAt      string
}

// CatalogListing is the schema definition for catalog.listing
var CatalogListing = CatalogListingTable{
	Table:          "catalog.listing",
	ID:             "id",
	Name:           "name",
	Description:    "description",
	Price:          "price",
	Weight:         "weight",
	Conservation:   "conservation",
	Kind:           "kind",
	Language:       "language",
	ManufacturerID: "manufacturerid",
	IsActive:       "isactive",
	Version:        "version",
	CreatedAt:      "createdat",
	UpdatedAt:      "updatedat",
}

func (t CatalogListingTable) Columns() []string {
	return []string{
		t.ID, t.Name, t.Description, t.Price, t.Weight, t.Conservation, t.Kind,
		t.Language, t.ManufacturerID, t.IsActive, t.Version, t.CreatedAt, t.UpdatedAt,
	}
}

// ListingCategoryTable represents the 'catalog.listing_category' junction
type ListingCategoryTable struct {
	Table      string
	ListingID  string
	CategoryID string
}

// ListingCategory is the schema definition for catalog.listing_category
var ListingCategory = ListingCategoryTable{
	Table:      "catalog.listing_category",
	ListingID:  "listingid",
	CategoryID: "categoryid",
}
