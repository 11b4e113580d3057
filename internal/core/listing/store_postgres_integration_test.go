// Copyright (c) 2026 Etalage. All rights reserved.
// Author: tai.buivan.jp@gmail.com

//go:build integration

package listing_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/taibuivan/etalage/internal/core/category"
	"github.com/taibuivan/etalage/internal/core/image"
	"github.com/taibuivan/etalage/internal/core/listing"
	"github.com/taibuivan/etalage/internal/platform/apperr"
	"github.com/taibuivan/etalage/internal/platform/blob"
	"github.com/taibuivan/etalage/internal/platform/migration"
	"github.com/taibuivan/etalage/internal/platform/postgres"
	"github.com/taibuivan/etalage/internal/platform/redis"
	"github.com/taibuivan/etalage/pkg/pointer"
	"github.com/taibuivan/etalage/pkg/uuid"
)

// Run with: go test -tags integration ./internal/core/listing/...

type integrationEnv struct {
	service    *listing.Service
	repository *listing.PostgresRepository
	categoryID string
}

func setupIntegration(t *testing.T) *integrationEnv {
	t.Helper()
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	pgContainer, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("etalage_test"),
		tcpostgres.WithUsername("etalage"),
		tcpostgres.WithPassword("etalage"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgContainer.Terminate(ctx) })

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	require.NoError(t, migration.RunUp(dsn, migration.Source(""), logger))

	pool, err := postgres.NewPool(ctx, dsn, logger)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	redisContainer, err := tcredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() { _ = redisContainer.Terminate(ctx) })

	redisURL, err := redisContainer.ConnectionString(ctx)
	require.NoError(t, err)

	client, err := redis.NewClient(ctx, redisURL, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	blobs, err := blob.NewFileStore(t.TempDir(), "/media")
	require.NoError(t, err)

	groceries := &category.Category{ID: uuid.New(), Name: "Epicerie", Slug: "epicerie", Language: "fra"}
	require.NoError(t, category.NewPostgresRepository(pool).Create(ctx, groceries))

	repository := listing.NewPostgresRepository(pool)
	service := listing.NewService(
		repository,
		image.NewResolver(blobs, logger),
		listing.NewRedisVariantCache(client, time.Minute),
		"fra",
		logger,
	)

	return &integrationEnv{service: service, repository: repository, categoryID: groceries.ID}
}

/*
TestPostgres_Synchronizer runs the create, replace and archive cycle against
PostgreSQL and Redis.
*/
func TestPostgres_Synchronizer(t *testing.T) {
	ctx := context.Background()
	env := setupIntegration(t)

	red := option("Color", "Red", 2)
	red.Images = []image.Input{image.Raw(pngBytes)}

	payload := basePayload(red, option("Color", "Blue", 3), option("Size", "Small", 1))
	payload.Categories = &[]string{env.categoryID}
	payload.ManufacturerName = pointer.To("Rucher du Val")

	created, err := env.service.CreateListing(ctx, payload)
	require.NoError(t, err)

	listingID := created.Listing.ID
	assert.Len(t, created.Listing.Products, 6)
	assert.Equal(t, []string{env.categoryID}, created.Listing.CategoryIDs())
	require.NotNil(t, created.Listing.Manufacturer)
	assert.Equal(t, "Rucher du Val", created.Listing.Manufacturer.Name)
	assert.Equal(t, "6.5", created.Listing.Price.String())

	detail, err := env.service.GetListing(ctx, listingID, listing.ModeGrouped)
	require.NoError(t, err)
	assert.Len(t, detail.Variants.Representatives, 3)

	// Served from Redis the second time, with the shared image intact.
	variants, err := env.service.ListVariants(ctx, listingID, listing.ModeFlat)
	require.NoError(t, err)
	require.Len(t, variants.Representatives, 3)

	var sold *listing.ProductUnit
	for _, unit := range created.Listing.Products {
		if unit.Characteristics.Value == "Red" {
			sold = unit
			break
		}
	}
	require.NotNil(t, sold)
	require.Len(t, sold.Images, 1)

	_, err = env.service.MarkSold(ctx, sold.ID, listing.SaleInput{OrderID: uuid.New()})
	require.NoError(t, err)

	t.Run("stale_version", func(t *testing.T) {
		_, err := env.service.UpdateListing(ctx, listingID, listing.Payload{
			Price:   pointer.To(decimal.RequireFromString("9.90")),
			Version: pointer.To(42),
		})
		assert.True(t, apperr.HasCode(err, apperr.CodeConflict))
	})

	replacement := []listing.OptionSpec{option("Size", "Medium", 2), option("Size", "Large", 3)}
	updated, err := env.service.UpdateListing(ctx, listingID, listing.Payload{
		Options: &replacement,
		Version: pointer.To(created.Listing.Version),
	})
	require.NoError(t, err)

	assert.Equal(t, 1, updated.ArchivedUnits)
	assert.Equal(t, 5, updated.DeletedUnits)
	assert.Len(t, updated.Listing.Products, 5)
	assert.Equal(t, created.Listing.Version+1, updated.Listing.Version)

	all, err := env.repository.ListUnits(ctx, listingID, false)
	require.NoError(t, err)
	assert.Len(t, all, 6)

	for _, unit := range all {
		if unit.ID == sold.ID {
			assert.False(t, unit.IsActive)
			assert.True(t, unit.IsSold)
			assert.Empty(t, unit.Images)
		}
	}

	variants, err = env.service.ListVariants(ctx, listingID, listing.ModeFlat)
	require.NoError(t, err)
	assert.Equal(t, []string{"Large", "Medium"}, values(variants.Representatives))

	removal, err := env.service.DeleteUnit(ctx, sold.ID)
	require.NoError(t, err)
	assert.True(t, removal.Archived)

	deleted, err := env.service.DeleteListing(ctx, listingID)
	require.NoError(t, err)
	assert.Equal(t, 5, deleted.DeletedUnits)

	_, err = env.service.GetListing(ctx, listingID, listing.ModeFlat)
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))
}

/*
TestPostgres_ListListings filters by category and price.
*/
func TestPostgres_ListListings(t *testing.T) {
	ctx := context.Background()
	env := setupIntegration(t)

	honey := basePayload(option("Size", "500g", 1))
	honey.Name = pointer.To("Miel de lavande")
	honey.Price = pointer.To(decimal.RequireFromString("12.00"))
	honey.Categories = &[]string{env.categoryID}

	_, err := env.service.CreateListing(ctx, honey)
	require.NoError(t, err)
	_, err = env.service.CreateListing(ctx, basePayload(option("Size", "250g", 1)))
	require.NoError(t, err)

	tests := []struct {
		name   string
		filter listing.Filter
		want   []string
	}{
		{"all", listing.Filter{}, []string{"Confiture de fraises", "Miel de lavande"}},
		{"by_name", listing.Filter{Name: "miel"}, []string{"Miel de lavande"}},
		{"by_category", listing.Filter{CategoryIDs: []string{env.categoryID}}, []string{"Miel de lavande"}},
		{"by_category_name", listing.Filter{CategoryName: "epic"}, []string{"Miel de lavande"}},
		{"by_price", listing.Filter{PriceMax: pointer.To(decimal.NewFromInt(10))}, []string{"Confiture de fraises"}},
		{"by_manufacturer", listing.Filter{Manufacturer: "unknown"}, []string{"Confiture de fraises", "Miel de lavande"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			listings, total, err := env.service.ListListings(ctx, tt.filter, 20, 0)
			require.NoError(t, err)
			assert.Equal(t, len(tt.want), total)

			names := make([]string, 0, len(listings))
			for _, found := range listings {
				names = append(names, found.Name)
			}
			assert.ElementsMatch(t, tt.want, names)
		})
	}
}
