// Copyright (c) 2026 Etalage. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// CatalogManufacturerTable represents the 'catalog.manufacturer' table
type CatalogManufacturerTable struct {
	Table       string
	ID          string
	Name        string
	PhoneNumber string
	Description string
	CreatedAt   string
}

// CatalogManufacturer is the schema definition for catalog.manufacturer
var CatalogManufacturer = CatalogManufacturerTable{
	Table:       "catalog.manufacturer",
	ID:          "id",
	Name:        "name",
	PhoneNumber: "phonenumber",
	Description: "description",
	CreatedAt:   "createdat",
}

func (t CatalogManufacturerTable) Columns() []string {
	return []string{t.ID, t.Name, t.PhoneNumber, t.Description, t.CreatedAt}
}

// ManufacturerPictureTable represents the 'catalog.manufacturer_picture' junction
type ManufacturerPictureTable struct {
	Table          string
	ManufacturerID string
	ImageID        string
}

// ManufacturerPicture is the schema definition for catalog.manufacturer_picture
var ManufacturerPicture = ManufacturerPictureTable{
	Table:          "catalog.manufacturer_picture",
	ManufacturerID: "manufacturerid",
	ImageID:        "imageid",
}
