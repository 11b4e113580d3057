// Copyright (c) 2026 Etalage. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// CatalogProductUnitTable represents the 'catalog.productunit' table
type CatalogProductUnitTable struct {
	Table           string
	ID              string
	ListingID       string
	Label           string
	Value           string
	AdditionalPrice string
	IsCustomized    string
	IsSold          string
	SoldAt          string
	IsAvailable     string
	IsActive        string
	InOrder         string
	CreatedAt       string
}

// CatalogProductUnit is the schema definition for catalog.productunit
var CatalogProductUnit = CatalogProductUnitTable{
	Table:           "catalog.productunit",
	ID:              "id",
	ListingID:       "listingid",
	Label:           "label",
	Value:           "value",
	AdditionalPrice: "additionalprice",
	IsCustomized:    "iscustomized",
	IsSold:          "issold",
	SoldAt:          "soldat",
	IsAvailable:     "isavailable",
	IsActive:        "isactive",
	InOrder:         "inorder",
	CreatedAt:       "createdat",
}

func (t CatalogProductUnitTable) Columns() []string {
	return []string{
		t.ID, t.ListingID, t.Label, t.Value, t.AdditionalPrice, t.IsCustomized,
		t.IsSold, t.SoldAt, t.IsAvailable, t.IsActive, t.InOrder, t.CreatedAt,
	}
}

// ProductUnitImageTable represents the 'catalog.productunit_image' junction
type ProductUnitImageTable struct {
	Table         string
	ProductUnitID string
	ImageID       string
}

// ProductUnitImage is the schema definition for catalog.productunit_image
var ProductUnitImage = ProductUnitImageTable{
	Table:         "catalog.productunit_image",
	ProductUnitID: "productunitid",
	ImageID:       "imageid",
}
