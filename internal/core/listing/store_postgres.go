// Copyright (c) 2026 Etalage. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package listing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/etalage/internal/core/image"
	"github.com/taibuivan/etalage/internal/core/manufacturer"
	"github.com/taibuivan/etalage/internal/platform/apperr"
	"github.com/taibuivan/etalage/internal/platform/database/schema"
	"github.com/taibuivan/etalage/internal/platform/dberr"
	"github.com/taibuivan/etalage/internal/platform/postgres"
)

// # PostgreSQL Repositories

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs a PostgreSQL backed listing store.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// txRepository implements [TxStore] on an open transaction. Manufacturer and
// image statements are delegated to their own packages on the same transaction.
type txRepository struct {
	*image.PostgresRepository
	manufacturers *manufacturer.TxRepository
	db            postgres.DBTX
}

func newTxRepository(db postgres.DBTX) *txRepository {
	return &txRepository{
		PostgresRepository: image.NewPostgresRepository(db),
		manufacturers:      manufacturer.NewTxRepository(db),
		db:                 db,
	}
}

// selectListing reads a listing with its categories and manufacturer
// aggregated as JSON in one round-trip.
var selectListing = fmt.Sprintf(`
	SELECT
		l.%s, l.%s, l.%s, l.%s, l.%s, l.%s, l.%s,
		l.%s, l.%s, l.%s, l.%s, l.%s, l.%s,
		COALESCE((
			SELECT json_agg(json_build_object(
				'id', c.%s, 'name', c.%s, 'slug', c.%s, 'parent_id', c.%s, 'language', c.%s, 'created_at', c.%s
			) ORDER BY c.%s)
			FROM %s c
			JOIN %s lc ON c.%s = lc.%s
			WHERE lc.%s = l.%s
		), '[]') AS categories,
		(
			SELECT json_build_object(
				'id', m.%s, 'name', m.%s, 'phone_number', m.%s, 'description', m.%s, 'created_at', m.%s
			)
			FROM %s m
			WHERE m.%s = l.%s
		) AS manufacturer
	FROM %s l
`,
	schema.CatalogListing.ID, schema.CatalogListing.Name, schema.CatalogListing.Description,
	schema.CatalogListing.Price, schema.CatalogListing.Weight, schema.CatalogListing.Conservation,
	schema.CatalogListing.Kind, schema.CatalogListing.Language, schema.CatalogListing.ManufacturerID,
	schema.CatalogListing.IsActive, schema.CatalogListing.Version, schema.CatalogListing.CreatedAt,
	schema.CatalogListing.UpdatedAt,
	schema.CatalogCategory.ID, schema.CatalogCategory.Name, schema.CatalogCategory.Slug,
	schema.CatalogCategory.ParentID, schema.CatalogCategory.Language, schema.CatalogCategory.CreatedAt,
	schema.CatalogCategory.Name,
	schema.CatalogCategory.Table,
	schema.ListingCategory.Table, schema.CatalogCategory.ID, schema.ListingCategory.CategoryID,
	schema.ListingCategory.ListingID, schema.CatalogListing.ID,
	schema.CatalogManufacturer.ID, schema.CatalogManufacturer.Name, schema.CatalogManufacturer.PhoneNumber,
	schema.CatalogManufacturer.Description, schema.CatalogManufacturer.CreatedAt,
	schema.CatalogManufacturer.Table,
	schema.CatalogManufacturer.ID, schema.CatalogListing.ManufacturerID,
	schema.CatalogListing.Table,
)

// selectUnit reads product units with their images aggregated as JSON.
var selectUnit = fmt.Sprintf(`
	SELECT
		u.%s, u.%s, u.%s, u.%s, u.%s, u.%s,
		u.%s, u.%s, u.%s, u.%s, u.%s, u.%s,
		COALESCE((
			SELECT json_agg(json_build_object('id', i.%s, 'ref', i.%s, 'created_at', i.%s) ORDER BY i.%s, i.%s)
			FROM %s i
			JOIN %s ui ON i.%s = ui.%s
			WHERE ui.%s = u.%s
		), '[]') AS images
	FROM %s u
`,
	schema.CatalogProductUnit.ID, schema.CatalogProductUnit.ListingID, schema.CatalogProductUnit.Label,
	schema.CatalogProductUnit.Value, schema.CatalogProductUnit.AdditionalPrice, schema.CatalogProductUnit.IsCustomized,
	schema.CatalogProductUnit.IsSold, schema.CatalogProductUnit.SoldAt, schema.CatalogProductUnit.IsAvailable,
	schema.CatalogProductUnit.IsActive, schema.CatalogProductUnit.InOrder, schema.CatalogProductUnit.CreatedAt,
	schema.CatalogImage.ID, schema.CatalogImage.Ref, schema.CatalogImage.CreatedAt,
	schema.CatalogImage.CreatedAt, schema.CatalogImage.ID,
	schema.CatalogImage.Table,
	schema.ProductUnitImage.Table, schema.CatalogImage.ID, schema.ProductUnitImage.ImageID,
	schema.ProductUnitImage.ProductUnitID, schema.CatalogProductUnit.ID,
	schema.CatalogProductUnit.Table,
)

func scanListing(row pgx.Row, extra ...any) (*Listing, error) {
	listing := &Listing{}
	var categoriesJSON, manufacturerJSON []byte

	targets := []any{
		&listing.ID,
		&listing.Name,
		&listing.Description,
		&listing.Price,
		&listing.Weight,
		&listing.Conservation,
		&listing.Kind,
		&listing.Language,
		&listing.ManufacturerID,
		&listing.IsActive,
		&listing.Version,
		&listing.CreatedAt,
		&listing.UpdatedAt,
		&categoriesJSON,
		&manufacturerJSON,
	}
	if err := row.Scan(append(targets, extra...)...); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(categoriesJSON, &listing.Categories); err != nil {
		return nil, fmt.Errorf("postgres: failed to unmarshal categories: %w", err)
	}

	if manufacturerJSON != nil {
		listing.Manufacturer = &manufacturer.Manufacturer{}
		if err := json.Unmarshal(manufacturerJSON, listing.Manufacturer); err != nil {
			return nil, fmt.Errorf("postgres: failed to unmarshal manufacturer: %w", err)
		}
	}

	return listing, nil
}

func scanUnit(row pgx.Row) (*ProductUnit, error) {
	unit := &ProductUnit{}
	var imagesJSON []byte

	err := row.Scan(
		&unit.ID,
		&unit.ListingID,
		&unit.Characteristics.Label,
		&unit.Characteristics.Value,
		&unit.AdditionalPrice,
		&unit.IsCustomized,
		&unit.IsSold,
		&unit.SoldAt,
		&unit.IsAvailable,
		&unit.IsActive,
		&unit.InOrder,
		&unit.CreatedAt,
		&imagesJSON,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(imagesJSON, &unit.Images); err != nil {
		return nil, fmt.Errorf("postgres: failed to unmarshal unit images: %w", err)
	}

	return unit, nil
}

func findListing(context context.Context, db postgres.DBTX, id string) (*Listing, error) {
	query := selectListing + fmt.Sprintf(" WHERE l.%s = $1", schema.CatalogListing.ID)

	listing, err := scanListing(db.QueryRow(context, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Listing")
		}
		return nil, fmt.Errorf("postgres: failed to find listing: %w", err)
	}

	return listing, nil
}

func listUnits(context context.Context, db postgres.DBTX, listingID string, activeOnly bool) ([]*ProductUnit, error) {
	query := selectUnit + fmt.Sprintf(" WHERE u.%s = $1", schema.CatalogProductUnit.ListingID)
	if activeOnly {
		query += fmt.Sprintf(" AND u.%s", schema.CatalogProductUnit.IsActive)
	}
	query += fmt.Sprintf(" ORDER BY u.%s, u.%s, u.%s",
		schema.CatalogProductUnit.Label, schema.CatalogProductUnit.Value, schema.CatalogProductUnit.ID,
	)

	rows, err := db.Query(context, query, listingID)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to list units: %w", err)
	}
	defer rows.Close()

	units := []*ProductUnit{}
	for rows.Next() {
		unit, err := scanUnit(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: failed to scan unit: %w", err)
		}
		units = append(units, unit)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: failed to iterate units: %w", err)
	}

	return units, nil
}

// # Pool Operations

/*
List returns a filtered, paginated slice of active listings and the total count.

Description: Category and manufacturer filters are EXISTS sub-queries so a
listing attached to several matching categories is returned once. The total
comes from a window function over the filtered page source.
*/
func (repository *PostgresRepository) List(context context.Context, filter Filter, limit, offset int) ([]*Listing, int, error) {
	var queryBuilder strings.Builder
	var args []any
	argID := 1

	queryBuilder.WriteString(selectListing)
	queryBuilder.WriteString(fmt.Sprintf(" WHERE l.%s", schema.CatalogListing.IsActive))

	if filter.Name != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND l.%s ILIKE $%d", schema.CatalogListing.Name, argID))
		args = append(args, "%"+filter.Name+"%")
		argID++
	}

	// Category name filtering
	if filter.CategoryName != "" {
		queryBuilder.WriteString(fmt.Sprintf(` AND EXISTS (
			SELECT 1 FROM %s lc JOIN %s c ON c.%s = lc.%s
			WHERE lc.%s = l.%s AND c.%s ILIKE $%d
		)`,
			schema.ListingCategory.Table, schema.CatalogCategory.Table,
			schema.CatalogCategory.ID, schema.ListingCategory.CategoryID,
			schema.ListingCategory.ListingID, schema.CatalogListing.ID,
			schema.CatalogCategory.Name, argID,
		))
		args = append(args, "%"+filter.CategoryName+"%")
		argID++
	}

	// Category id filtering (any of)
	if len(filter.CategoryIDs) > 0 {
		queryBuilder.WriteString(fmt.Sprintf(` AND EXISTS (
			SELECT 1 FROM %s lc WHERE lc.%s = l.%s AND lc.%s = ANY($%d::uuid[])
		)`,
			schema.ListingCategory.Table, schema.ListingCategory.ListingID, schema.CatalogListing.ID,
			schema.ListingCategory.CategoryID, argID,
		))
		args = append(args, filter.CategoryIDs)
		argID++
	}

	if filter.Manufacturer != "" {
		queryBuilder.WriteString(fmt.Sprintf(` AND EXISTS (
			SELECT 1 FROM %s m WHERE m.%s = l.%s AND m.%s ILIKE $%d
		)`,
			schema.CatalogManufacturer.Table, schema.CatalogManufacturer.ID, schema.CatalogListing.ManufacturerID,
			schema.CatalogManufacturer.Name, argID,
		))
		args = append(args, "%"+filter.Manufacturer+"%")
		argID++
	}

	if filter.PriceMin != nil {
		queryBuilder.WriteString(fmt.Sprintf(" AND l.%s >= $%d", schema.CatalogListing.Price, argID))
		args = append(args, *filter.PriceMin)
		argID++
	}

	if filter.PriceMax != nil {
		queryBuilder.WriteString(fmt.Sprintf(" AND l.%s <= $%d", schema.CatalogListing.Price, argID))
		args = append(args, *filter.PriceMax)
		argID++
	}

	if filter.Language != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND l.%s = $%d", schema.CatalogListing.Language, argID))
		args = append(args, filter.Language)
		argID++
	}

	if filter.Kind != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND l.%s = $%d", schema.CatalogListing.Kind, argID))
		args = append(args, string(filter.Kind))
		argID++
	}

	query := fmt.Sprintf(`SELECT page.*, COUNT(*) OVER() AS total_count FROM (%s) page ORDER BY page.%s DESC, page.%s LIMIT $%d OFFSET $%d`,
		queryBuilder.String(), schema.CatalogListing.CreatedAt, schema.CatalogListing.ID, argID, argID+1,
	)
	args = append(args, limit, offset)

	rows, err := repository.pool.Query(context, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres: failed to list listings: %w", err)
	}
	defer rows.Close()

	listings := []*Listing{}
	var totalCount int

	for rows.Next() {
		listing, err := scanListing(rows, &totalCount)
		if err != nil {
			return nil, 0, fmt.Errorf("postgres: failed to scan listing: %w", err)
		}
		listings = append(listings, listing)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("postgres: failed to iterate listings: %w", err)
	}

	return listings, totalCount, nil
}

func (repository *PostgresRepository) FindByID(context context.Context, id string) (*Listing, error) {
	return findListing(context, repository.pool, id)
}

func (repository *PostgresRepository) ListUnits(context context.Context, listingID string, activeOnly bool) ([]*ProductUnit, error) {
	return listUnits(context, repository.pool, listingID, activeOnly)
}

func (repository *PostgresRepository) Transaction(context context.Context, fn func(store TxStore) error) error {
	return postgres.InTx(context, repository.pool, func(transaction pgx.Tx) error {
		return fn(newTxRepository(transaction))
	})
}

// # Transaction Operations

func (repository *txRepository) LockListing(context context.Context, id string) (*Listing, error) {
	lock := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 FOR UPDATE`,
		schema.CatalogListing.ID, schema.CatalogListing.Table, schema.CatalogListing.ID,
	)

	var lockedID string
	if err := repository.db.QueryRow(context, lock, id).Scan(&lockedID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Listing")
		}
		return nil, fmt.Errorf("postgres: failed to lock listing: %w", err)
	}

	return findListing(context, repository.db, id)
}

func (repository *txRepository) FindListing(context context.Context, id string) (*Listing, error) {
	return findListing(context, repository.db, id)
}

func (repository *txRepository) CreateListing(context context.Context, listing *Listing) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING %s, %s
	`,
		schema.CatalogListing.Table,
		schema.CatalogListing.ID, schema.CatalogListing.Name, schema.CatalogListing.Description,
		schema.CatalogListing.Price, schema.CatalogListing.Weight, schema.CatalogListing.Conservation,
		schema.CatalogListing.Kind, schema.CatalogListing.Language, schema.CatalogListing.ManufacturerID,
		schema.CatalogListing.IsActive, schema.CatalogListing.Version,
		schema.CatalogListing.CreatedAt, schema.CatalogListing.UpdatedAt,
	)

	err := repository.db.QueryRow(context, query,
		listing.ID, listing.Name, listing.Description, listing.Price, listing.Weight, listing.Conservation,
		string(listing.Kind), listing.Language, listing.ManufacturerID, listing.IsActive, listing.Version,
	).Scan(&listing.CreatedAt, &listing.UpdatedAt)

	return dberr.Wrap(err, "create_listing")
}

func (repository *txRepository) UpdateListing(context context.Context, listing *Listing) error {
	query := fmt.Sprintf(`
		UPDATE %s SET
			%s = $2, %s = $3, %s = $4, %s = $5, %s = $6, %s = $7, %s = $8, %s = $9, %s = $10,
			%s = %s + 1, %s = NOW()
		WHERE %s = $1
		RETURNING %s, %s
	`,
		schema.CatalogListing.Table,
		schema.CatalogListing.Name, schema.CatalogListing.Description, schema.CatalogListing.Price,
		schema.CatalogListing.Weight, schema.CatalogListing.Conservation, schema.CatalogListing.Kind,
		schema.CatalogListing.Language, schema.CatalogListing.ManufacturerID, schema.CatalogListing.IsActive,
		schema.CatalogListing.Version, schema.CatalogListing.Version, schema.CatalogListing.UpdatedAt,
		schema.CatalogListing.ID,
		schema.CatalogListing.Version, schema.CatalogListing.UpdatedAt,
	)

	err := repository.db.QueryRow(context, query,
		listing.ID, listing.Name, listing.Description, listing.Price, listing.Weight, listing.Conservation,
		string(listing.Kind), listing.Language, listing.ManufacturerID, listing.IsActive,
	).Scan(&listing.Version, &listing.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound("Listing")
	}
	return dberr.Wrap(err, "update_listing")
}

func (repository *txRepository) FindManufacturer(context context.Context, id string) (*manufacturer.Manufacturer, error) {
	return repository.manufacturers.FindByID(context, id)
}

func (repository *txRepository) GetOrCreateManufacturer(context context.Context, name string) (*manufacturer.Manufacturer, error) {
	return repository.manufacturers.GetOrCreateByName(context, name)
}

func (repository *txRepository) MissingCategories(context context.Context, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf(`
		SELECT requested.id::text
		FROM unnest($1::uuid[]) AS requested(id)
		WHERE NOT EXISTS (SELECT 1 FROM %s c WHERE c.%s = requested.id)
	`, schema.CatalogCategory.Table, schema.CatalogCategory.ID)

	rows, err := repository.db.Query(context, query, ids)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to check categories: %w", err)
	}

	missing, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to collect missing categories: %w", err)
	}
	return missing, nil
}

/*
ReplaceCategories clears the category junction of a listing and inserts
categoryIDs with a single batch.
*/
func (repository *txRepository) ReplaceCategories(context context.Context, listingID string, categoryIDs []string) error {
	clearQuery := fmt.Sprintf("DELETE FROM %s WHERE %s = $1",
		schema.ListingCategory.Table, schema.ListingCategory.ListingID,
	)
	if _, err := repository.db.Exec(context, clearQuery, listingID); err != nil {
		return fmt.Errorf("postgres: failed to clear %s: %w", schema.ListingCategory.Table, err)
	}

	if len(categoryIDs) == 0 {
		return nil
	}

	insertQuery := fmt.Sprintf("INSERT INTO %s (%s, %s) VALUES ($1, $2) ON CONFLICT DO NOTHING",
		schema.ListingCategory.Table, schema.ListingCategory.ListingID, schema.ListingCategory.CategoryID,
	)

	batch := &pgx.Batch{}
	for _, categoryID := range categoryIDs {
		batch.Queue(insertQuery, listingID, categoryID)
	}

	if err := repository.db.SendBatch(context, batch).Close(); err != nil {
		return dberr.Wrap(err, "attach_categories")
	}

	return nil
}

// ListUnits locks the units of the listing before reading them, so a
// concurrent sale cannot slip between the read and the delete contract.
func (repository *txRepository) ListUnits(context context.Context, listingID string, activeOnly bool) ([]*ProductUnit, error) {
	lock := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 FOR UPDATE`,
		schema.CatalogProductUnit.ID, schema.CatalogProductUnit.Table, schema.CatalogProductUnit.ListingID,
	)
	if _, err := repository.db.Exec(context, lock, listingID); err != nil {
		return nil, fmt.Errorf("postgres: failed to lock units: %w", err)
	}

	return listUnits(context, repository.db, listingID, activeOnly)
}

func (repository *txRepository) LockUnit(context context.Context, id string) (*ProductUnit, error) {
	query := selectUnit + fmt.Sprintf(" WHERE u.%s = $1", schema.CatalogProductUnit.ID)
	lock := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 FOR UPDATE`,
		schema.CatalogProductUnit.ID, schema.CatalogProductUnit.Table, schema.CatalogProductUnit.ID,
	)

	var lockedID string
	if err := repository.db.QueryRow(context, lock, id).Scan(&lockedID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Product")
		}
		return nil, fmt.Errorf("postgres: failed to lock unit: %w", err)
	}

	unit, err := scanUnit(repository.db.QueryRow(context, query, id))
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to read unit: %w", err)
	}
	return unit, nil
}

/*
InsertUnits persists units and their image links in one batch.

Description: Sibling units share image records, so the same image id may be
linked to many units; each link is its own junction row.
*/
func (repository *txRepository) InsertUnits(context context.Context, units []*ProductUnit) error {
	if len(units) == 0 {
		return nil
	}

	unitQuery := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		schema.CatalogProductUnit.Table,
		schema.CatalogProductUnit.ID, schema.CatalogProductUnit.ListingID, schema.CatalogProductUnit.Label,
		schema.CatalogProductUnit.Value, schema.CatalogProductUnit.AdditionalPrice,
		schema.CatalogProductUnit.IsCustomized, schema.CatalogProductUnit.IsAvailable,
		schema.CatalogProductUnit.IsActive,
	)
	linkQuery := fmt.Sprintf("INSERT INTO %s (%s, %s) VALUES ($1, $2) ON CONFLICT DO NOTHING",
		schema.ProductUnitImage.Table, schema.ProductUnitImage.ProductUnitID, schema.ProductUnitImage.ImageID,
	)

	batch := &pgx.Batch{}
	for _, unit := range units {
		batch.Queue(unitQuery,
			unit.ID, unit.ListingID, unit.Characteristics.Label, unit.Characteristics.Value,
			unit.AdditionalPrice, unit.IsCustomized, unit.IsAvailable, unit.IsActive,
		)
		for _, linked := range unit.Images {
			batch.Queue(linkQuery, unit.ID, linked.ID)
		}
	}

	if err := repository.db.SendBatch(context, batch).Close(); err != nil {
		return dberr.Wrap(err, "insert_units")
	}

	return nil
}

func (repository *txRepository) ArchiveUnits(context context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	archive := fmt.Sprintf(`UPDATE %s SET %s = FALSE WHERE %s = ANY($1::uuid[])`,
		schema.CatalogProductUnit.Table, schema.CatalogProductUnit.IsActive, schema.CatalogProductUnit.ID,
	)
	detach := fmt.Sprintf(`DELETE FROM %s WHERE %s = ANY($1::uuid[])`,
		schema.ProductUnitImage.Table, schema.ProductUnitImage.ProductUnitID,
	)

	batch := &pgx.Batch{}
	batch.Queue(archive, ids)
	batch.Queue(detach, ids)

	if err := repository.db.SendBatch(context, batch).Close(); err != nil {
		return fmt.Errorf("postgres: failed to archive units: %w", err)
	}
	return nil
}

// DeleteUnits removes unsold units. A sold unit is never matched, so the
// statement cannot break order history even if a caller gets it wrong.
func (repository *txRepository) DeleteUnits(context context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = ANY($1::uuid[]) AND NOT %s`,
		schema.CatalogProductUnit.Table, schema.CatalogProductUnit.ID, schema.CatalogProductUnit.IsSold,
	)

	result, err := repository.db.Exec(context, query, ids)
	if err != nil {
		return fmt.Errorf("postgres: failed to delete units: %w", err)
	}

	if int(result.RowsAffected()) != len(ids) {
		return apperr.Conflict("Some products were sold in the meantime")
	}
	return nil
}

func (repository *txRepository) MarkSold(context context.Context, id, orderID string, soldAt time.Time) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = TRUE, %s = $2, %s = $3 WHERE %s = $1 AND NOT %s`,
		schema.CatalogProductUnit.Table,
		schema.CatalogProductUnit.IsSold, schema.CatalogProductUnit.SoldAt, schema.CatalogProductUnit.InOrder,
		schema.CatalogProductUnit.ID, schema.CatalogProductUnit.IsSold,
	)

	result, err := repository.db.Exec(context, query, id, soldAt, orderID)
	if err != nil {
		return fmt.Errorf("postgres: failed to mark unit sold: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperr.Conflict("Product is already sold")
	}
	return nil
}

func (repository *txRepository) DeleteUnreferencedImages(context context.Context, ids []string) ([]string, error) {
	return repository.DeleteUnreferenced(context, ids)
}
