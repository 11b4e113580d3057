// Copyright (c) 2026 Etalage. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package image

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"

	"github.com/taibuivan/etalage/internal/platform/apperr"
	uuidv7 "github.com/taibuivan/etalage/pkg/uuid"
)

// dataURIMarker separates the media type of a data URI from its payload.
const dataURIMarker = ";base64,"

// Resolver normalizes an [Input] into a stored [Image].
type Resolver struct {
	blobs  BlobStore
	logger *slog.Logger
}

// NewResolver constructs a resolver writing new content to blobs.
func NewResolver(blobs BlobStore, logger *slog.Logger) *Resolver {
	return &Resolver{blobs: blobs, logger: logger}
}

/*
Resolve returns the stored image for input.

Description: Stored inputs are looked up and returned as is, without any
write. Remote URLs are recorded by reference and never fetched; a URL that
is already recorded, including one of our own blob URLs, resolves to that row. Byte payloads
are decoded and sniffed, then deduplicated by content checksum, so sending the
same picture twice writes one blob and returns one Image.

Parameters:
  - context: context.Context
  - store: Store (pool or transaction scoped)
  - field: string (JSON path reported on validation failures)
  - input: Input

Returns:
  - *Image: The resolved record
  - error: apperr.ValidationError on field for unusable input, storage errors otherwise
*/
func (resolver *Resolver) Resolve(context context.Context, store Store, field string, input Input) (*Image, error) {
	switch input.Kind() {
	case KindStored:
		return resolver.resolveStored(context, store, field, input.Text())

	case KindRemoteURL:
		return resolver.resolveRemote(context, store, input.Text())

	case KindDataURI:
		_, payload, found := strings.Cut(input.Text(), dataURIMarker)
		if !found {
			return nil, apperr.FieldInvalid(field, "Data URI must be base64 encoded")
		}
		data, err := decodeBase64(payload)
		if err != nil {
			return nil, apperr.FieldInvalid(field, "Malformed base64 image payload")
		}
		return resolver.resolveBytes(context, store, field, data)

	case KindBase64:
		data, err := decodeBase64(input.Text())
		if err != nil {
			return nil, apperr.FieldInvalid(field, "Malformed base64 image payload")
		}
		return resolver.resolveBytes(context, store, field, data)

	case KindRaw:
		return resolver.resolveBytes(context, store, field, input.data)
	}

	return nil, apperr.FieldInvalid(field, "Unsupported image value")
}

func (resolver *Resolver) resolveStored(context context.Context, store Store, field, id string) (*Image, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperr.FieldInvalid(field, "Unknown image")
	}

	image, err := store.FindImage(context, id)
	if err != nil {
		if apperr.HasCode(err, apperr.CodeNotFound) {
			return nil, apperr.FieldInvalid(field, "Unknown image")
		}
		return nil, err
	}

	return image, nil
}

// resolveRemote shares the row already recorded under ref, so a URL pointing
// at stored content keeps that content alive instead of shadowing it.
func (resolver *Resolver) resolveRemote(context context.Context, store Store, ref string) (*Image, error) {
	existing, err := store.FindImageByRef(context, ref)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	image := &Image{ID: uuidv7.New(), Ref: ref}
	if err := store.CreateImage(context, image); err != nil {
		return nil, err
	}
	return image, nil
}

func (resolver *Resolver) resolveBytes(context context.Context, store Store, field string, data []byte) (*Image, error) {
	if len(data) == 0 {
		return nil, apperr.FieldInvalid(field, "Image payload is empty")
	}

	extension, ok := imageExtension(data)
	if !ok {
		return nil, apperr.FieldInvalid(field, "Payload is not a recognized image")
	}

	sum := blake2b.Sum256(data)
	checksum := hex.EncodeToString(sum[:])

	existing, err := store.FindImageByChecksum(context, checksum)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	id := uuidv7.New()
	ref, err := resolver.blobs.Put(context, id+"."+extension, data)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("image: failed to store blob: %w", err))
	}

	image := &Image{ID: id, Ref: ref, Checksum: &checksum}
	if err := store.CreateImage(context, image); err != nil {
		return nil, err
	}

	// A concurrent upload of the same bytes won the insert.
	if image.Ref != ref {
		if err := resolver.blobs.Delete(context, ref); err != nil {
			resolver.logger.Warn("image_blob_cleanup_failed", slog.String("ref", ref), slog.Any("error", err))
		}
		return image, nil
	}

	resolver.logger.Debug("image_stored",
		slog.String("image_id", image.ID),
		slog.String("ref", image.Ref),
		slog.Int("bytes", len(data)),
	)

	return image, nil
}

// imageExtension sniffs data and returns its file extension without the dot.
func imageExtension(data []byte) (string, bool) {
	detected := mimetype.Detect(data)
	if !strings.HasPrefix(detected.String(), "image/") {
		return "", false
	}

	extension := strings.TrimPrefix(detected.Extension(), ".")
	switch extension {
	case "":
		return "", false
	case "jpeg":
		extension = "jpg"
	}

	return extension, true
}

// decodeBase64 accepts padded and unpadded standard encodings, with or
// without embedded line breaks.
func decodeBase64(payload string) ([]byte, error) {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '\n', '\r', ' ', '\t':
			return -1
		}
		return r
	}, payload)

	if data, err := base64.StdEncoding.DecodeString(cleaned); err == nil {
		return data, nil
	}
	return base64.RawStdEncoding.DecodeString(cleaned)
}

// Purge deletes the blobs behind refs once the rows pointing at them are gone.
// Failures are logged; a leftover blob is harmless.
func (resolver *Resolver) Purge(context context.Context, refs []string) {
	for _, ref := range refs {
		if err := resolver.blobs.Delete(context, ref); err != nil {
			resolver.logger.Warn("image_blob_purge_failed", slog.String("ref", ref), slog.Any("error", err))
			continue
		}
		resolver.logger.Debug("image_blob_purged", slog.String("ref", ref))
	}
}
