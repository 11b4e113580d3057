// Copyright (c) 2026 Etalage. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package listing composes sellable catalog entries from their declared options.

A [Listing] owns a set of [ProductUnit] rows. Sellers describe a listing with
sparse option declarations ("Color/Red, stock 2") that [Expand] turns into one
unit per stock count. Reads never show raw units: [Flat] and [Grouped] reshape
them into one representative per distinct characteristic.

Units referenced by an order are never removed. Deleting a sold unit archives
it instead, which keeps order history intact.
*/
package listing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/taibuivan/etalage/internal/core/category"
	"github.com/taibuivan/etalage/internal/core/image"
	"github.com/taibuivan/etalage/internal/core/manufacturer"
	"github.com/taibuivan/etalage/pkg/slice"
)

// Kind classifies a listing for storage and shipping rules.
type Kind string

const (
	KindOther Kind = "other"
	KindFood  Kind = "food"
)

// Listing defaults applied on create.
const (
	DefaultWeight = 25
	DefaultKind   = KindOther

	// DefaultLabel names the characteristic of options declared without one.
	DefaultLabel = "input"
)

// Listing is one product page of the catalog.
type Listing struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	Weight       int             `json:"weight"`
	Conservation string          `json:"conservation"`
	Kind         Kind            `json:"kind"`
	Language     string          `json:"language"`

	ManufacturerID *string                    `json:"manufacturer_id"`
	Manufacturer   *manufacturer.Manufacturer `json:"manufacturer,omitempty"`
	Categories     []*category.Category       `json:"categories"`

	IsActive  bool      `json:"is_active"`
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Products is only populated by writes and detail reads.
	Products []*ProductUnit `json:"products,omitempty"`
}

// CategoryIDs returns the ids of the attached categories.
func (listing *Listing) CategoryIDs() []string {
	return slice.Map(listing.Categories, func(attached *category.Category) string { return attached.ID })
}

// Characteristics identifies the option combination a unit represents.
type Characteristics struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// ProductUnit is one purchasable item of a listing.
type ProductUnit struct {
	ID              string          `json:"id"`
	ListingID       string          `json:"listing_id"`
	Characteristics Characteristics `json:"characteristics"`
	AdditionalPrice decimal.Decimal `json:"additional_price"`
	IsCustomized    bool            `json:"is_customized"`
	IsSold          bool            `json:"is_sold"`
	SoldAt          *time.Time      `json:"sold_at"`
	IsAvailable     bool            `json:"is_available"`
	IsActive        bool            `json:"is_active"`
	InOrder         *string         `json:"in_order"`
	Images          []*image.Image  `json:"images"`
	CreatedAt       time.Time       `json:"created_at"`
}

// PurchasePrice is what a buyer pays for unit under listing.
func (unit *ProductUnit) PurchasePrice(listing *Listing) decimal.Decimal {
	return listing.Price.Add(unit.AdditionalPrice)
}

// Filter holds the parameters for a paginated listing search. Only active
// listings are ever returned.
type Filter struct {
	Name         string // Case-insensitive substring
	CategoryName string // Substring of any attached category name
	CategoryIDs  []string
	Manufacturer string // Substring of the manufacturer name
	PriceMin     *decimal.Decimal
	PriceMax     *decimal.Decimal
	Language     string
	Kind         Kind
}

// Payload carries a create or a partial update.
//
// Nil scalar fields are left unchanged on update. A non-nil Categories or
// Options replaces the previous set.
type Payload struct {
	Name         *string          `json:"name" validate:"omitempty,max=255"`
	Description  *string          `json:"description"`
	Price        *decimal.Decimal `json:"price"`
	Weight       *int             `json:"weight" validate:"omitempty,gte=0"`
	Conservation *string          `json:"conservation"`
	Kind         *Kind            `json:"kind" validate:"omitempty,oneof=other food"`
	Language     *string          `json:"language"`

	// ManufacturerID must exist. ManufacturerName is created when missing.
	ManufacturerID   *string `json:"manufacturer_id" validate:"omitempty,uuid"`
	ManufacturerName *string `json:"manufacturer_name" validate:"omitempty,max=255"`

	Categories *[]string     `json:"categories"`
	Options    *[]OptionSpec `json:"options"`

	// Version enables optimistic concurrency on update when set.
	Version *int `json:"version"`
}

// Result is the outcome of a listing write.
type Result struct {
	Listing *Listing `json:"listing"`

	// RejectedOptions lists the options skipped by a partial expansion.
	RejectedOptions []Rejection `json:"rejected_options"`

	// ArchivedUnits counts sold units retired by archival, DeletedUnits the
	// units removed outright.
	ArchivedUnits int `json:"archived_units"`
	DeletedUnits  int `json:"deleted_units"`
}

// Removal reports what the delete contract did with one unit.
type Removal struct {
	ID       string `json:"id"`
	Archived bool   `json:"archived"`
}

// SaleInput records the order that sold a unit.
type SaleInput struct {
	OrderID string     `json:"order_id" validate:"required,uuid"`
	SoldAt  *time.Time `json:"sold_at"`
}

// Global field names for validation
const (
	FieldName         = "name"
	FieldDescription  = "description"
	FieldPrice        = "price"
	FieldWeight       = "weight"
	FieldKind         = "kind"
	FieldLanguage     = "language"
	FieldManufacturer = "manufacturer_id"
	FieldCategories   = "categories"
	FieldOptions      = "options"
	FieldVersion      = "version"
)

const (
	maxNameLength  = 255
	maxLabelLength = 100
	maxValueLength = 255
)
