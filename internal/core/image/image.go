// Copyright (c) 2026 Etalage. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package image turns the many shapes an image can take in a request into one
stored [Image] record.

Clients send images as data URIs, bare base64, external URLs or ids of images
the catalog already holds. [ParseInput] decides the kind once at the API
boundary and [Resolver] handles each kind exhaustively. Byte payloads are
sniffed, checksummed and written to blob storage at most once per distinct
content.
*/
package image

import (
	"context"
	"time"

	"github.com/taibuivan/etalage/pkg/slice"
)

// Image is an opaque handle to stored binary content.
//
// Ref is a blob URL or an external URL. It never changes after creation; a new
// picture is a new Image. Only rows with a Checksum own the blob behind Ref.
type Image struct {
	ID        string    `json:"id"`
	Ref       string    `json:"ref"`
	Checksum  *string   `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// # Collaborators

// Store is the persistence surface the [Resolver] needs. It is satisfied by
// [PostgresRepository] on either the pool or an open transaction.
type Store interface {
	// FindImage returns apperr.NotFound when id is unknown.
	FindImage(context context.Context, id string) (*Image, error)

	// FindImageByChecksum returns nil and no error when nothing matches.
	FindImageByChecksum(context context.Context, checksum string) (*Image, error)

	// FindImageByRef returns nil and no error when nothing matches. Stored
	// content wins over remote rows sharing the ref.
	FindImageByRef(context context.Context, ref string) (*Image, error)

	// CreateImage inserts image. When another row already holds the same
	// checksum, image is overwritten with that row instead.
	CreateImage(context context.Context, image *Image) error
}

// BlobStore persists raw bytes and returns the reference recorded on the Image.
type BlobStore interface {
	Put(context context.Context, name string, data []byte) (string, error)
	Delete(context context.Context, ref string) error
}

// IDs returns the ids of images in order.
func IDs(images []*Image) []string {
	return slice.Map(images, func(image *Image) string { return image.ID })
}
