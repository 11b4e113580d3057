// Copyright (c) 2026 Etalage. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package listing_test

import (
	"cmp"
	"context"
	"errors"
	"maps"
	"slices"
	"time"

	"github.com/taibuivan/etalage/internal/core/category"
	"github.com/taibuivan/etalage/internal/core/image"
	"github.com/taibuivan/etalage/internal/core/listing"
	"github.com/taibuivan/etalage/internal/core/manufacturer"
	"github.com/taibuivan/etalage/internal/platform/apperr"
	"github.com/taibuivan/etalage/pkg/uuid"
)

// memoryState is the whole catalog as seen by the listing package.
type memoryState struct {
	listings      map[string]listing.Listing
	categories    map[string]bool
	attached      map[string][]string
	manufacturers map[string]manufacturer.Manufacturer
	units         map[string]listing.ProductUnit
	images        map[string]*image.Image
}

func (state *memoryState) clone() *memoryState {
	attached := make(map[string][]string, len(state.attached))
	for id, categoryIDs := range state.attached {
		attached[id] = slices.Clone(categoryIDs)
	}
	return &memoryState{
		listings:      maps.Clone(state.listings),
		categories:    maps.Clone(state.categories),
		attached:      attached,
		manufacturers: maps.Clone(state.manufacturers),
		units:         maps.Clone(state.units),
		images:        maps.Clone(state.images),
	}
}

func (state *memoryState) findListing(id string) (*listing.Listing, error) {
	found, ok := state.listings[id]
	if !ok {
		return nil, apperr.NotFound("Listing")
	}
	found.Categories = []*category.Category{}
	for _, categoryID := range state.attached[id] {
		found.Categories = append(found.Categories, &category.Category{ID: categoryID})
	}
	found.Products = nil
	return &found, nil
}

func (state *memoryState) listUnits(listingID string, activeOnly bool) []*listing.ProductUnit {
	units := []*listing.ProductUnit{}
	for _, stored := range state.units {
		if stored.ListingID != listingID || (activeOnly && !stored.IsActive) {
			continue
		}
		copied := stored
		units = append(units, &copied)
	}
	slices.SortFunc(units, func(a, b *listing.ProductUnit) int {
		return cmp.Or(
			cmp.Compare(a.Characteristics.Label, b.Characteristics.Label),
			cmp.Compare(a.Characteristics.Value, b.Characteristics.Value),
			cmp.Compare(a.ID, b.ID),
		)
	})
	return units
}

// memoryRepository implements listing.Repository. A transaction works on a
// clone that replaces the state only when fn succeeds.
type memoryRepository struct {
	state *memoryState
	reads int
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{state: &memoryState{
		listings:      map[string]listing.Listing{},
		categories:    map[string]bool{},
		attached:      map[string][]string{},
		manufacturers: map[string]manufacturer.Manufacturer{},
		units:         map[string]listing.ProductUnit{},
		images:        map[string]*image.Image{},
	}}
}

func (repository *memoryRepository) List(_ context.Context, _ listing.Filter, _, _ int) ([]*listing.Listing, int, error) {
	var listings []*listing.Listing
	for id, stored := range repository.state.listings {
		if stored.IsActive {
			found, _ := repository.state.findListing(id)
			listings = append(listings, found)
		}
	}
	return listings, len(listings), nil
}

func (repository *memoryRepository) FindByID(_ context.Context, id string) (*listing.Listing, error) {
	return repository.state.findListing(id)
}

func (repository *memoryRepository) ListUnits(_ context.Context, listingID string, activeOnly bool) ([]*listing.ProductUnit, error) {
	repository.reads++
	return repository.state.listUnits(listingID, activeOnly), nil
}

func (repository *memoryRepository) Transaction(_ context.Context, fn func(store listing.TxStore) error) error {
	working := repository.state.clone()
	if err := fn(&memoryTx{state: working}); err != nil {
		return err
	}
	repository.state = working
	return nil
}

// unitsOf returns every stored unit of a listing, archived ones included.
func (repository *memoryRepository) unitsOf(listingID string) []*listing.ProductUnit {
	return repository.state.listUnits(listingID, false)
}

type memoryTx struct {
	state *memoryState
}

func (tx *memoryTx) FindImage(_ context.Context, id string) (*image.Image, error) {
	if found, ok := tx.state.images[id]; ok {
		return found, nil
	}
	return nil, apperr.NotFound("Image")
}

func (tx *memoryTx) FindImageByChecksum(_ context.Context, checksum string) (*image.Image, error) {
	for _, candidate := range tx.state.images {
		if candidate.Checksum != nil && *candidate.Checksum == checksum {
			return candidate, nil
		}
	}
	return nil, nil
}

func (tx *memoryTx) CreateImage(_ context.Context, created *image.Image) error {
	tx.state.images[created.ID] = created
	return nil
}

func (tx *memoryTx) FindImageByRef(_ context.Context, ref string) (*image.Image, error) {
	var match *image.Image
	for _, candidate := range tx.state.images {
		if candidate.Ref != ref {
			continue
		}
		if match == nil || (match.Checksum == nil && candidate.Checksum != nil) {
			match = candidate
		}
	}
	return match, nil
}

func (tx *memoryTx) LockListing(_ context.Context, id string) (*listing.Listing, error) {
	return tx.state.findListing(id)
}

func (tx *memoryTx) FindListing(_ context.Context, id string) (*listing.Listing, error) {
	return tx.state.findListing(id)
}

func (tx *memoryTx) CreateListing(_ context.Context, created *listing.Listing) error {
	created.CreatedAt = time.Now()
	created.UpdatedAt = created.CreatedAt
	tx.state.listings[created.ID] = *created
	return nil
}

func (tx *memoryTx) UpdateListing(_ context.Context, updated *listing.Listing) error {
	stored, ok := tx.state.listings[updated.ID]
	if !ok {
		return apperr.NotFound("Listing")
	}
	updated.Version = stored.Version + 1
	updated.UpdatedAt = time.Now()
	tx.state.listings[updated.ID] = *updated
	return nil
}

func (tx *memoryTx) FindManufacturer(_ context.Context, id string) (*manufacturer.Manufacturer, error) {
	found, ok := tx.state.manufacturers[id]
	if !ok {
		return nil, apperr.NotFound("Manufacturer")
	}
	return &found, nil
}

func (tx *memoryTx) GetOrCreateManufacturer(_ context.Context, name string) (*manufacturer.Manufacturer, error) {
	for _, existing := range tx.state.manufacturers {
		if existing.Name == name {
			return &existing, nil
		}
	}
	created := manufacturer.Manufacturer{ID: uuid.New(), Name: name}
	tx.state.manufacturers[created.ID] = created
	return &created, nil
}

func (tx *memoryTx) MissingCategories(_ context.Context, ids []string) ([]string, error) {
	var missing []string
	for _, id := range ids {
		if !tx.state.categories[id] {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

func (tx *memoryTx) ReplaceCategories(_ context.Context, listingID string, categoryIDs []string) error {
	tx.state.attached[listingID] = slices.Clone(categoryIDs)
	return nil
}

func (tx *memoryTx) ListUnits(_ context.Context, listingID string, activeOnly bool) ([]*listing.ProductUnit, error) {
	return tx.state.listUnits(listingID, activeOnly), nil
}

func (tx *memoryTx) LockUnit(_ context.Context, id string) (*listing.ProductUnit, error) {
	stored, ok := tx.state.units[id]
	if !ok {
		return nil, apperr.NotFound("Product")
	}
	return &stored, nil
}

func (tx *memoryTx) InsertUnits(_ context.Context, units []*listing.ProductUnit) error {
	for _, inserted := range units {
		tx.state.units[inserted.ID] = *inserted
	}
	return nil
}

func (tx *memoryTx) ArchiveUnits(_ context.Context, ids []string) error {
	for _, id := range ids {
		stored := tx.state.units[id]
		stored.IsActive = false
		stored.Images = nil
		tx.state.units[id] = stored
	}
	return nil
}

func (tx *memoryTx) DeleteUnits(_ context.Context, ids []string) error {
	for _, id := range ids {
		if tx.state.units[id].IsSold {
			return errors.New("memory: refusing to delete a sold unit")
		}
		delete(tx.state.units, id)
	}
	return nil
}

func (tx *memoryTx) MarkSold(_ context.Context, id, orderID string, soldAt time.Time) error {
	stored := tx.state.units[id]
	stored.IsSold = true
	stored.SoldAt = &soldAt
	stored.InOrder = &orderID
	tx.state.units[id] = stored
	return nil
}

func (tx *memoryTx) DeleteUnreferencedImages(_ context.Context, ids []string) ([]string, error) {
	var refs []string
	for _, id := range ids {
		referenced := false
		for _, stored := range tx.state.units {
			for _, attached := range stored.Images {
				referenced = referenced || attached.ID == id
			}
		}
		if found, ok := tx.state.images[id]; ok && !referenced {
			if found.Checksum != nil {
				refs = append(refs, found.Ref)
			}
			delete(tx.state.images, id)
		}
	}
	return refs, nil
}

// memoryCache implements listing.VariantCache.
type memoryCache struct {
	entries map[string][]*listing.ProductUnit
	broken  bool
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string][]*listing.ProductUnit{}}
}

func (cache *memoryCache) Get(_ context.Context, listingID string) ([]*listing.ProductUnit, bool, error) {
	if cache.broken {
		return nil, false, errors.New("cache unavailable")
	}
	entry, ok := cache.entries[listingID]
	return entry, ok, nil
}

func (cache *memoryCache) Set(_ context.Context, listingID string, representatives []*listing.ProductUnit) error {
	if cache.broken {
		return errors.New("cache unavailable")
	}
	cache.entries[listingID] = representatives
	return nil
}

func (cache *memoryCache) Invalidate(_ context.Context, listingIDs ...string) error {
	if cache.broken {
		return errors.New("cache unavailable")
	}
	for _, listingID := range listingIDs {
		delete(cache.entries, listingID)
	}
	return nil
}

// memoryBlobs records blob traffic.
type memoryBlobs struct {
	puts    []string
	deleted []string
}

func (blobs *memoryBlobs) Put(_ context.Context, name string, _ []byte) (string, error) {
	blobs.puts = append(blobs.puts, name)
	return "/media/" + name, nil
}

func (blobs *memoryBlobs) Delete(_ context.Context, ref string) error {
	blobs.deleted = append(blobs.deleted, ref)
	return nil
}
