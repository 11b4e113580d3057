// Copyright (c) 2026 Etalage. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package listing_test

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/etalage/internal/core/image"
	"github.com/taibuivan/etalage/internal/core/listing"
	"github.com/taibuivan/etalage/internal/core/manufacturer"
	"github.com/taibuivan/etalage/internal/platform/apperr"
	"github.com/taibuivan/etalage/internal/platform/blob"
	"github.com/taibuivan/etalage/pkg/pointer"
)

var (
	pngBytes  = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")
	jpegBytes = []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00\x01\x01\x00\x00\x01\x00\x01\x00\x00")
)

const knownCategory = "0190f5a4-7b5e-7cc1-8a9e-3b1f2c3d4e5f"

type fixture struct {
	service    *listing.Service
	repository *memoryRepository
	cache      *memoryCache
	blobs      *memoryBlobs
}

func newFixture() *fixture {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repository := newMemoryRepository()
	repository.state.categories[knownCategory] = true
	cache := newMemoryCache()
	blobs := &memoryBlobs{}

	return &fixture{
		service:    listing.NewService(repository, image.NewResolver(blobs, logger), cache, "fra", logger),
		repository: repository,
		cache:      cache,
		blobs:      blobs,
	}
}

func option(label, value string, stock int) listing.OptionSpec {
	return listing.OptionSpec{Label: label, Value: value, Stock: pointer.To(stock)}
}

func basePayload(options ...listing.OptionSpec) listing.Payload {
	return listing.Payload{
		Name:        pointer.To("  Confiture de fraises  "),
		Description: pointer.To(" Maison "),
		Price:       pointer.To(decimal.RequireFromString("6.50")),
		Options:     &options,
	}
}

func colorSizeOptions() []listing.OptionSpec {
	return []listing.OptionSpec{
		option("Color", "Red", 2),
		option("Color", "Blue", 3),
		option("Size", "Small", 1),
		option("Size", "Large", 4),
	}
}

func values(units []*listing.ProductUnit) []string {
	result := make([]string, 0, len(units))
	for _, unit := range units {
		result = append(result, unit.Characteristics.Value)
	}
	return result
}

func validationFields(t *testing.T, err error) []string {
	t.Helper()
	appErr := apperr.As(err)
	require.NotNil(t, appErr, "expected an AppError, got %v", err)
	require.Equal(t, apperr.CodeValidation, appErr.Code)

	fields := make([]string, 0, len(appErr.Details))
	for _, detail := range appErr.Details {
		fields = append(fields, detail.Field)
	}
	return fields
}

/*
TestService_CreateListing expands ten units from four options and projects four representatives.
*/
func TestService_CreateListing(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	result, err := f.service.CreateListing(ctx, basePayload(colorSizeOptions()...))
	require.NoError(t, err)

	created := result.Listing
	assert.Equal(t, "Confiture de fraises", created.Name)
	assert.Equal(t, "Maison", created.Description)
	assert.Equal(t, listing.DefaultWeight, created.Weight)
	assert.Equal(t, listing.KindOther, created.Kind)
	assert.Equal(t, "fra", created.Language)
	assert.Equal(t, 1, created.Version)
	assert.Len(t, created.Products, 10)
	assert.Empty(t, result.RejectedOptions)

	// No manufacturer given: the listing is attached to "Unknown".
	require.NotNil(t, created.ManufacturerID)
	assert.Equal(t, manufacturer.UnknownName, f.repository.state.manufacturers[*created.ManufacturerID].Name)

	flat, err := f.service.ListVariants(ctx, created.ID, listing.ModeFlat)
	require.NoError(t, err)
	assert.Len(t, flat.Representatives, 4)

	grouped := listing.Grouped(flat.Representatives)
	require.Len(t, grouped, 2)
	assert.Equal(t, []string{"Blue", "Red"}, values(grouped["Color"]))
	assert.Equal(t, []string{"Large", "Small"}, values(grouped["Size"]))
}

/*
TestService_CreateListing_Failures aborts without persisting anything.
*/
func TestService_CreateListing_Failures(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		payload func() listing.Payload
		fields  []string
	}{
		{"missing_name_and_price", func() listing.Payload { return listing.Payload{} }, []string{"name", "price"}},
		{"negative_price", func() listing.Payload {
			payload := basePayload()
			payload.Price = pointer.To(decimal.NewFromInt(-1))
			return payload
		}, []string{"price"}},
		{"unknown_category", func() listing.Payload {
			payload := basePayload(option("Color", "Red", 1))
			payload.Categories = &[]string{knownCategory, "0190f5a4-7b5e-7cc1-8a9e-000000000000"}
			return payload
		}, []string{"categories[1]"}},
		{"malformed_category", func() listing.Payload {
			payload := basePayload()
			payload.Categories = &[]string{"epicerie"}
			return payload
		}, []string{"categories[0]"}},
		{"unknown_manufacturer", func() listing.Payload {
			payload := basePayload()
			payload.ManufacturerID = pointer.To("0190f5a4-7b5e-7cc1-8a9e-000000000000")
			return payload
		}, []string{"manufacturer_id"}},
		{"every_option_rejected", func() listing.Payload {
			return basePayload(
				option("Color", "Red", -1),
				listing.OptionSpec{Label: "Color", Images: []image.Input{image.Raw([]byte("not an image"))}},
			)
		}, []string{"options[0].stock", "options[1].images[0]"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()

			_, err := f.service.CreateListing(ctx, tt.payload())
			assert.Equal(t, tt.fields, validationFields(t, err))
			assert.Empty(t, f.repository.state.listings)
			assert.Empty(t, f.repository.state.units)
			assert.Empty(t, f.repository.state.manufacturers)
		})
	}
}

/*
TestService_CreateListing_Partial commits the valid options and reports the others.
*/
func TestService_CreateListing_Partial(t *testing.T) {
	f := newFixture()

	payload := basePayload(option("Color", "Red", 2), option("Color", "Blue", -3))
	payload.ManufacturerName = pointer.To("Rucher du Val")
	payload.Categories = &[]string{knownCategory}

	result, err := f.service.CreateListing(context.Background(), payload)
	require.NoError(t, err)

	assert.Len(t, result.Listing.Products, 2)
	require.Len(t, result.RejectedOptions, 1)
	assert.Equal(t, 1, result.RejectedOptions[0].Index)
	assert.Equal(t, []string{knownCategory}, result.Listing.CategoryIDs())
	assert.Equal(t, "Rucher du Val", f.repository.state.manufacturers[*result.Listing.ManufacturerID].Name)
}

/*
TestService_CreateListing_Images shares one stored image across sibling units.
*/
func TestService_CreateListing_Images(t *testing.T) {
	f := newFixture()

	withImage := option("Color", "Red", 3)
	withImage.Images = []image.Input{image.Raw(pngBytes)}

	result, err := f.service.CreateListing(context.Background(), basePayload(withImage))
	require.NoError(t, err)

	require.Len(t, result.Listing.Products, 3)
	assert.Len(t, f.blobs.puts, 1)
	assert.Len(t, f.repository.state.images, 1)

	imageID := result.Listing.Products[0].Images[0].ID
	for _, unit := range result.Listing.Products {
		require.Len(t, unit.Images, 1)
		assert.Equal(t, imageID, unit.Images[0].ID)
	}
}

/*
TestService_UpdateListing_ReplaceOptions hard-deletes unsold units and expands the new set.
*/
func TestService_UpdateListing_ReplaceOptions(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	created, err := f.service.CreateListing(ctx, basePayload(colorSizeOptions()...))
	require.NoError(t, err)
	listingID := created.Listing.ID

	replacement := []listing.OptionSpec{option("Size", "Medium", 2), option("Size", "Large", 3)}
	result, err := f.service.UpdateListing(ctx, listingID, listing.Payload{Options: &replacement})
	require.NoError(t, err)

	assert.Equal(t, 10, result.DeletedUnits)
	assert.Equal(t, 0, result.ArchivedUnits)
	assert.Len(t, result.Listing.Products, 5)
	assert.Len(t, f.repository.unitsOf(listingID), 5)
	assert.Equal(t, 2, result.Listing.Version)

	flat, err := f.service.ListVariants(ctx, listingID, listing.ModeFlat)
	require.NoError(t, err)
	assert.Equal(t, []string{"Large", "Medium"}, values(flat.Representatives))
}

/*
TestService_UpdateListing_ArchivesSold retains sold units as inactive history.
*/
func TestService_UpdateListing_ArchivesSold(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	created, err := f.service.CreateListing(ctx, basePayload(colorSizeOptions()...))
	require.NoError(t, err)
	listingID := created.Listing.ID

	sold := 0
	for _, unit := range created.Listing.Products {
		if unit.Characteristics.Value == "Red" || unit.Characteristics.Value == "Small" {
			_, err := f.service.MarkSold(ctx, unit.ID, listing.SaleInput{OrderID: "0190f5a4-7b5e-7cc1-8a9e-aaaaaaaaaaaa"})
			require.NoError(t, err)
			sold++
		}
	}
	require.Equal(t, 3, sold)

	replacement := []listing.OptionSpec{option("Size", "Medium", 2), option("Size", "Large", 3)}
	result, err := f.service.UpdateListing(ctx, listingID, listing.Payload{Options: &replacement})
	require.NoError(t, err)

	assert.Equal(t, sold, result.ArchivedUnits)
	assert.Equal(t, 10-sold, result.DeletedUnits)
	assert.Len(t, result.Listing.Products, 5)

	retained := 0
	for _, unit := range f.repository.unitsOf(listingID) {
		if !unit.IsActive {
			assert.True(t, unit.IsSold)
			assert.NotNil(t, unit.SoldAt)
			retained++
		}
	}
	assert.Equal(t, sold, retained)
}

/*
TestService_UpdateListing_Partial changes only present fields and leaves units alone.
*/
func TestService_UpdateListing_Partial(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	created, err := f.service.CreateListing(ctx, basePayload(option("Color", "Red", 2)))
	require.NoError(t, err)
	listingID := created.Listing.ID
	unitIDs := []string{created.Listing.Products[0].ID, created.Listing.Products[1].ID}

	result, err := f.service.UpdateListing(ctx, listingID, listing.Payload{
		Price:      pointer.To(decimal.RequireFromString("7.20")),
		Kind:       pointer.To(listing.KindFood),
		Language:   pointer.To("en"),
		Categories: &[]string{knownCategory},
		Version:    pointer.To(1),
	})
	require.NoError(t, err)

	updated := result.Listing
	assert.Equal(t, "Confiture de fraises", updated.Name)
	assert.Equal(t, "7.2", updated.Price.String())
	assert.Equal(t, listing.KindFood, updated.Kind)
	assert.Equal(t, "eng", updated.Language)
	assert.Equal(t, 2, updated.Version)
	assert.Equal(t, []string{knownCategory}, updated.CategoryIDs())
	assert.ElementsMatch(t, unitIDs, []string{updated.Products[0].ID, updated.Products[1].ID})

	t.Run("stale_version", func(t *testing.T) {
		_, err := f.service.UpdateListing(ctx, listingID, listing.Payload{Name: pointer.To("Autre"), Version: pointer.To(1)})
		assert.True(t, apperr.HasCode(err, apperr.CodeConflict))
		assert.Equal(t, "Confiture de fraises", f.repository.state.listings[listingID].Name)
	})

	t.Run("clear_categories", func(t *testing.T) {
		result, err := f.service.UpdateListing(ctx, listingID, listing.Payload{Categories: &[]string{}})
		require.NoError(t, err)
		assert.Empty(t, result.Listing.CategoryIDs())
	})

	t.Run("rollback_on_rejection", func(t *testing.T) {
		bad := []listing.OptionSpec{option("Color", "Blue", -1)}
		_, err := f.service.UpdateListing(ctx, listingID, listing.Payload{Name: pointer.To("Autre"), Options: &bad})
		require.Error(t, err)

		assert.Equal(t, "Confiture de fraises", f.repository.state.listings[listingID].Name)
		assert.Len(t, f.repository.unitsOf(listingID), 2)
	})

	t.Run("unknown_listing", func(t *testing.T) {
		_, err := f.service.UpdateListing(ctx, "0190f5a4-7b5e-7cc1-8a9e-000000000000", listing.Payload{})
		assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))
	})
}

/*
TestService_UpdateListing_Images reuses stored images and purges the ones left behind.
*/
func TestService_UpdateListing_Images(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	first := option("Color", "Red", 2)
	first.Images = []image.Input{image.Raw(pngBytes)}
	created, err := f.service.CreateListing(ctx, basePayload(first))
	require.NoError(t, err)
	listingID := created.Listing.ID
	stored := created.Listing.Products[0].Images[0]

	t.Run("same_image_by_id", func(t *testing.T) {
		again := option("Color", "Red", 1)
		again.Images = []image.Input{image.Stored(stored.ID)}

		result, err := f.service.UpdateListing(ctx, listingID, listing.Payload{Options: &[]listing.OptionSpec{again}})
		require.NoError(t, err)

		assert.Equal(t, stored.ID, result.Listing.Products[0].Images[0].ID)
		assert.Len(t, f.blobs.puts, 1)
		assert.Empty(t, f.blobs.deleted)
	})

	t.Run("same_bytes", func(t *testing.T) {
		again := option("Color", "Red", 1)
		again.Images = []image.Input{image.Raw(pngBytes)}

		result, err := f.service.UpdateListing(ctx, listingID, listing.Payload{Options: &[]listing.OptionSpec{again}})
		require.NoError(t, err)

		assert.Equal(t, stored.ID, result.Listing.Products[0].Images[0].ID)
		assert.Len(t, f.blobs.puts, 1)
		assert.Empty(t, f.blobs.deleted)
	})

	t.Run("new_image", func(t *testing.T) {
		replaced := option("Color", "Red", 1)
		replaced.Images = []image.Input{image.Raw(jpegBytes)}

		_, err := f.service.UpdateListing(ctx, listingID, listing.Payload{Options: &[]listing.OptionSpec{replaced}})
		require.NoError(t, err)

		assert.Len(t, f.blobs.puts, 2)
		assert.Equal(t, []string{stored.Ref}, f.blobs.deleted)
		assert.NotContains(t, f.repository.state.images, stored.ID)
	})
}

/*
TestService_DeleteUnit archives sold units and removes unsold ones.
*/
func TestService_DeleteUnit(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	created, err := f.service.CreateListing(ctx, basePayload(option("Color", "Red", 2)))
	require.NoError(t, err)
	soldUnit, freeUnit := created.Listing.Products[0], created.Listing.Products[1]

	_, err = f.service.MarkSold(ctx, soldUnit.ID, listing.SaleInput{OrderID: "0190f5a4-7b5e-7cc1-8a9e-aaaaaaaaaaaa"})
	require.NoError(t, err)

	removal, err := f.service.DeleteUnit(ctx, soldUnit.ID)
	require.NoError(t, err)
	assert.True(t, removal.Archived)

	archived, ok := f.repository.state.units[soldUnit.ID]
	require.True(t, ok)
	assert.False(t, archived.IsActive)

	removal, err = f.service.DeleteUnit(ctx, freeUnit.ID)
	require.NoError(t, err)
	assert.False(t, removal.Archived)
	assert.NotContains(t, f.repository.state.units, freeUnit.ID)

	t.Run("archived_again", func(t *testing.T) {
		removal, err := f.service.DeleteUnit(ctx, soldUnit.ID)
		require.NoError(t, err)
		assert.True(t, removal.Archived)
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := f.service.DeleteUnit(ctx, freeUnit.ID)
		assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))
	})
}

/*
TestService_MarkSold refuses to sell a unit twice.
*/
func TestService_MarkSold(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	created, err := f.service.CreateListing(ctx, basePayload(option("Color", "Red", 1)))
	require.NoError(t, err)
	unitID := created.Listing.Products[0].ID

	sold, err := f.service.MarkSold(ctx, unitID, listing.SaleInput{OrderID: "0190f5a4-7b5e-7cc1-8a9e-aaaaaaaaaaaa"})
	require.NoError(t, err)
	assert.True(t, sold.IsSold)
	assert.Equal(t, "0190f5a4-7b5e-7cc1-8a9e-aaaaaaaaaaaa", pointer.Val(sold.InOrder))
	require.NotNil(t, sold.SoldAt)

	_, err = f.service.MarkSold(ctx, unitID, listing.SaleInput{OrderID: "0190f5a4-7b5e-7cc1-8a9e-bbbbbbbbbbbb"})
	assert.True(t, apperr.HasCode(err, apperr.CodeConflict))
	assert.Equal(t, "0190f5a4-7b5e-7cc1-8a9e-aaaaaaaaaaaa", pointer.Val(f.repository.state.units[unitID].InOrder))
}

/*
TestService_DeleteListing deactivates the listing and hides it from reads.
*/
func TestService_DeleteListing(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	created, err := f.service.CreateListing(ctx, basePayload(option("Color", "Red", 2), option("Color", "Blue", 1)))
	require.NoError(t, err)
	listingID := created.Listing.ID

	_, err = f.service.MarkSold(ctx, created.Listing.Products[0].ID, listing.SaleInput{OrderID: "0190f5a4-7b5e-7cc1-8a9e-aaaaaaaaaaaa"})
	require.NoError(t, err)

	result, err := f.service.DeleteListing(ctx, listingID)
	require.NoError(t, err)
	assert.False(t, result.Listing.IsActive)
	assert.Equal(t, 1, result.ArchivedUnits)
	assert.Equal(t, 2, result.DeletedUnits)
	assert.Len(t, f.repository.unitsOf(listingID), 1)

	_, err = f.service.GetListing(ctx, listingID, listing.ModeFlat)
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))

	_, err = f.service.ListVariants(ctx, listingID, listing.ModeGrouped)
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))

	_, err = f.service.DeleteListing(ctx, listingID)
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))

	t.Run("update_after_delete", func(t *testing.T) {
		revived := []listing.OptionSpec{option("Color", "Green", 1)}
		_, err := f.service.UpdateListing(ctx, listingID, listing.Payload{Name: pointer.To("Autre"), Options: &revived})
		assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))

		assert.Equal(t, "Confiture de fraises", f.repository.state.listings[listingID].Name)
		assert.Len(t, f.repository.unitsOf(listingID), 1)
	})
}

/*
TestService_DeleteListing_SharedBlob keeps a stored picture on disk while
another listing still points at it through its public URL.
*/
func TestService_DeleteListing_SharedBlob(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	root := t.TempDir()

	files, err := blob.NewFileStore(root, "http://shop.test/media")
	require.NoError(t, err)

	repository := newMemoryRepository()
	service := listing.NewService(repository, image.NewResolver(files, logger), newMemoryCache(), "fra", logger)

	owner := option("Color", "Red", 1)
	owner.Images = []image.Input{image.Raw(pngBytes)}
	first, err := service.CreateListing(ctx, basePayload(owner))
	require.NoError(t, err)

	stored := first.Listing.Products[0].Images[0]
	onDisk := filepath.Join(root, path.Base(stored.Ref))

	borrower := option("Color", "Blue", 1)
	borrower.Images = []image.Input{image.ParseInput(stored.Ref)}
	second, err := service.CreateListing(ctx, basePayload(borrower))
	require.NoError(t, err)
	assert.Equal(t, stored.ID, second.Listing.Products[0].Images[0].ID)

	_, err = service.DeleteListing(ctx, second.Listing.ID)
	require.NoError(t, err)

	_, err = os.Stat(onDisk)
	require.NoError(t, err)
	assert.Contains(t, repository.state.images, stored.ID)

	_, err = service.DeleteListing(ctx, first.Listing.ID)
	require.NoError(t, err)

	_, err = os.Stat(onDisk)
	assert.True(t, os.IsNotExist(err))
	assert.NotContains(t, repository.state.images, stored.ID)
}

/*
TestService_DeleteListing_RemoteImage drops external image rows without touching blob storage.
*/
func TestService_DeleteListing_RemoteImage(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	remote := option("Color", "Red", 1)
	remote.Images = []image.Input{image.RemoteURL("https://cdn.example.com/jam.jpg")}
	created, err := f.service.CreateListing(ctx, basePayload(remote))
	require.NoError(t, err)
	imageID := created.Listing.Products[0].Images[0].ID

	_, err = f.service.DeleteListing(ctx, created.Listing.ID)
	require.NoError(t, err)

	assert.NotContains(t, f.repository.state.images, imageID)
	assert.Empty(t, f.blobs.deleted)
}

/*
TestService_VariantCache serves repeated reads from the cache and drops entries on writes.
*/
func TestService_VariantCache(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	created, err := f.service.CreateListing(ctx, basePayload(colorSizeOptions()...))
	require.NoError(t, err)
	listingID := created.Listing.ID

	_, err = f.service.ListVariants(ctx, listingID, listing.ModeFlat)
	require.NoError(t, err)
	detail, err := f.service.GetListing(ctx, listingID, listing.ModeGrouped)
	require.NoError(t, err)
	assert.Len(t, detail.Variants.Representatives, 4)
	assert.Equal(t, 1, f.repository.reads)

	replacement := []listing.OptionSpec{option("Size", "Medium", 1)}
	_, err = f.service.UpdateListing(ctx, listingID, listing.Payload{Options: &replacement})
	require.NoError(t, err)
	assert.NotContains(t, f.cache.entries, listingID)

	variants, err := f.service.ListVariants(ctx, listingID, listing.ModeFlat)
	require.NoError(t, err)
	assert.Equal(t, []string{"Medium"}, values(variants.Representatives))
	assert.Equal(t, 2, f.repository.reads)

	t.Run("outage_falls_back", func(t *testing.T) {
		f.cache.broken = true
		variants, err := f.service.ListVariants(ctx, listingID, listing.ModeFlat)
		require.NoError(t, err)
		assert.Equal(t, []string{"Medium"}, values(variants.Representatives))
		assert.Equal(t, 3, f.repository.reads)
	})
}
