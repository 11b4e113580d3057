// Copyright (c) 2026 Etalage. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package listing

import (
	"context"
	"time"

	"github.com/taibuivan/etalage/internal/core/image"
	"github.com/taibuivan/etalage/internal/core/manufacturer"
)

// # Listing Data Access

// Repository defines the persistence contract for listings.
type Repository interface {
	/*
		List returns a filtered, paginated slice of active listings.

		Returns:
		  - []*Listing: Listings with categories and manufacturer, without products
		  - int: Total count matching filter
		  - error: Database retrieval failures
	*/
	List(context context.Context, filter Filter, limit, offset int) ([]*Listing, int, error)

	// FindByID returns the listing, active or not. apperr.NotFound when missing.
	FindByID(context context.Context, id string) (*Listing, error)

	// ListUnits returns the units of a listing with their images.
	ListUnits(context context.Context, listingID string, activeOnly bool) ([]*ProductUnit, error)

	// Transaction runs fn inside one transaction. Returning an error from fn
	// rolls back every write made through the given store.
	Transaction(context context.Context, fn func(store TxStore) error) error
}

// TxStore is the transaction-scoped surface of the Listing Synchronizer.
type TxStore interface {
	image.Store

	// LockListing reads the listing row with SELECT ... FOR UPDATE.
	LockListing(context context.Context, id string) (*Listing, error)
	FindListing(context context.Context, id string) (*Listing, error)
	CreateListing(context context.Context, listing *Listing) error

	// UpdateListing writes the scalar fields, increments the version and
	// stores the new version and timestamp back into listing.
	UpdateListing(context context.Context, listing *Listing) error

	FindManufacturer(context context.Context, id string) (*manufacturer.Manufacturer, error)
	GetOrCreateManufacturer(context context.Context, name string) (*manufacturer.Manufacturer, error)

	// MissingCategories returns the ids among ids with no category row.
	MissingCategories(context context.Context, ids []string) ([]string, error)
	ReplaceCategories(context context.Context, listingID string, categoryIDs []string) error

	ListUnits(context context.Context, listingID string, activeOnly bool) ([]*ProductUnit, error)

	// LockUnit reads the unit row with SELECT ... FOR UPDATE.
	LockUnit(context context.Context, id string) (*ProductUnit, error)

	// InsertUnits persists units and their image links.
	InsertUnits(context context.Context, units []*ProductUnit) error

	// ArchiveUnits deactivates units and detaches their images.
	ArchiveUnits(context context.Context, ids []string) error
	DeleteUnits(context context.Context, ids []string) error

	MarkSold(context context.Context, id, orderID string, soldAt time.Time) error

	// DeleteUnreferencedImages drops the listed images nothing points to any
	// more and returns their refs.
	DeleteUnreferencedImages(context context.Context, ids []string) ([]string, error)
}

// # Variant Cache

// VariantCache keeps the flat projection of listings. It only ever holds
// derived data; every method may fail without affecting correctness.
type VariantCache interface {
	// Get returns the representatives of listingID, or ok=false on a miss.
	Get(context context.Context, listingID string) (representatives []*ProductUnit, ok bool, err error)
	Set(context context.Context, listingID string, representatives []*ProductUnit) error
	Invalidate(context context.Context, listingIDs ...string) error
}
