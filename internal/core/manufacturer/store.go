// Copyright (c) 2026 Etalage. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package manufacturer

import (
	"context"

	"github.com/taibuivan/etalage/internal/core/image"
)

// Repository defines the persistence contract for manufacturers.
type Repository interface {
	List(context context.Context, filter Filter, limit, offset int) ([]*Manufacturer, int, error)
	FindByID(context context.Context, id string) (*Manufacturer, error)

	// Transaction runs fn inside one transaction. Returning an error from fn
	// rolls back every write made through the given store.
	Transaction(context context.Context, fn func(store TxStore) error) error
}

// TxStore is the transaction-scoped write surface.
type TxStore interface {
	image.Store

	FindByID(context context.Context, id string) (*Manufacturer, error)
	Create(context context.Context, manufacturer *Manufacturer) error
	Update(context context.Context, manufacturer *Manufacturer) error
	Delete(context context.Context, id string) error

	// ReplacePictures links exactly imageIDs to the manufacturer.
	ReplacePictures(context context.Context, manufacturerID string, imageIDs []string) error

	// DeleteUnreferencedImages drops the listed images nothing points to any
	// more and returns their refs.
	DeleteUnreferencedImages(context context.Context, ids []string) ([]string, error)
}
