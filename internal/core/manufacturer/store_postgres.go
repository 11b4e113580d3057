// Copyright (c) 2026 Etalage. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package manufacturer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/etalage/internal/core/image"
	"github.com/taibuivan/etalage/internal/platform/apperr"
	"github.com/taibuivan/etalage/internal/platform/database/schema"
	"github.com/taibuivan/etalage/internal/platform/dberr"
	"github.com/taibuivan/etalage/internal/platform/postgres"
	"github.com/taibuivan/etalage/pkg/uuid"
)

// # PostgreSQL Repositories

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs a PostgreSQL backed manufacturer store.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// TxRepository runs manufacturer statements on a caller-owned transaction.
// Other aggregates use it to resolve manufacturers inside their own writes.
type TxRepository struct {
	*image.PostgresRepository
	db postgres.DBTX
}

// NewTxRepository binds the manufacturer statements to db.
func NewTxRepository(db postgres.DBTX) *TxRepository {
	return &TxRepository{PostgresRepository: image.NewPostgresRepository(db), db: db}
}

// selectManufacturer reads a manufacturer with its pictures aggregated as JSON.
var selectManufacturer = fmt.Sprintf(`
	SELECT
		m.%s, m.%s, m.%s, m.%s, m.%s,
		COALESCE((
			SELECT json_agg(json_build_object('id', i.%s, 'ref', i.%s, 'created_at', i.%s) ORDER BY i.%s)
			FROM %s i
			JOIN %s mp ON i.%s = mp.%s
			WHERE mp.%s = m.%s
		), '[]') AS pictures
	FROM %s m
`,
	schema.CatalogManufacturer.ID, schema.CatalogManufacturer.Name, schema.CatalogManufacturer.PhoneNumber,
	schema.CatalogManufacturer.Description, schema.CatalogManufacturer.CreatedAt,
	schema.CatalogImage.ID, schema.CatalogImage.Ref, schema.CatalogImage.CreatedAt, schema.CatalogImage.CreatedAt,
	schema.CatalogImage.Table,
	schema.ManufacturerPicture.Table, schema.CatalogImage.ID, schema.ManufacturerPicture.ImageID,
	schema.ManufacturerPicture.ManufacturerID, schema.CatalogManufacturer.ID,
	schema.CatalogManufacturer.Table,
)

func scanManufacturer(row pgx.Row, extra ...any) (*Manufacturer, error) {
	manufacturer := &Manufacturer{}
	var picturesJSON []byte

	targets := []any{
		&manufacturer.ID,
		&manufacturer.Name,
		&manufacturer.PhoneNumber,
		&manufacturer.Description,
		&manufacturer.CreatedAt,
		&picturesJSON,
	}
	if err := row.Scan(append(targets, extra...)...); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(picturesJSON, &manufacturer.Pictures); err != nil {
		return nil, fmt.Errorf("postgres: failed to unmarshal pictures: %w", err)
	}

	return manufacturer, nil
}

func findManufacturer(context context.Context, db postgres.DBTX, id string) (*Manufacturer, error) {
	query := selectManufacturer + fmt.Sprintf(" WHERE m.%s = $1", schema.CatalogManufacturer.ID)

	manufacturer, err := scanManufacturer(db.QueryRow(context, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Manufacturer")
		}
		return nil, fmt.Errorf("postgres: failed to find manufacturer: %w", err)
	}

	return manufacturer, nil
}

// # Pool Operations

func (repository *PostgresRepository) List(context context.Context, filter Filter, limit, offset int) ([]*Manufacturer, int, error) {
	var queryBuilder strings.Builder
	var args []any
	argID := 1

	queryBuilder.WriteString(selectManufacturer)
	queryBuilder.WriteString(" WHERE TRUE")

	if filter.Query != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND m.%s ILIKE $%d", schema.CatalogManufacturer.Name, argID))
		args = append(args, "%"+filter.Query+"%")
		argID++
	}

	query := fmt.Sprintf(`SELECT page.*, COUNT(*) OVER() AS total_count FROM (%s) page ORDER BY page.%s ASC LIMIT $%d OFFSET $%d`,
		queryBuilder.String(), schema.CatalogManufacturer.Name, argID, argID+1,
	)
	args = append(args, limit, offset)

	rows, err := repository.pool.Query(context, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres: failed to list manufacturers: %w", err)
	}
	defer rows.Close()

	manufacturers := []*Manufacturer{}
	var totalCount int

	for rows.Next() {
		manufacturer, err := scanManufacturer(rows, &totalCount)
		if err != nil {
			return nil, 0, fmt.Errorf("postgres: failed to scan manufacturer: %w", err)
		}
		manufacturers = append(manufacturers, manufacturer)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("postgres: failed to iterate manufacturers: %w", err)
	}

	return manufacturers, totalCount, nil
}

func (repository *PostgresRepository) FindByID(context context.Context, id string) (*Manufacturer, error) {
	return findManufacturer(context, repository.pool, id)
}

func (repository *PostgresRepository) Transaction(context context.Context, fn func(store TxStore) error) error {
	return postgres.InTx(context, repository.pool, func(transaction pgx.Tx) error {
		return fn(NewTxRepository(transaction))
	})
}

// # Transaction Operations

func (repository *TxRepository) FindByID(context context.Context, id string) (*Manufacturer, error) {
	return findManufacturer(context, repository.db, id)
}

func (repository *TxRepository) Create(context context.Context, manufacturer *Manufacturer) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s)
		VALUES ($1, $2, $3, $4)
		RETURNING %s
	`,
		schema.CatalogManufacturer.Table,
		schema.CatalogManufacturer.ID, schema.CatalogManufacturer.Name,
		schema.CatalogManufacturer.PhoneNumber, schema.CatalogManufacturer.Description,
		schema.CatalogManufacturer.CreatedAt,
	)

	err := repository.db.QueryRow(context, query,
		manufacturer.ID, manufacturer.Name, manufacturer.PhoneNumber, manufacturer.Description,
	).Scan(&manufacturer.CreatedAt)

	return dberr.Wrap(err, "create_manufacturer")
}

func (repository *TxRepository) Update(context context.Context, manufacturer *Manufacturer) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = $3, %s = $4 WHERE %s = $1`,
		schema.CatalogManufacturer.Table,
		schema.CatalogManufacturer.Name, schema.CatalogManufacturer.PhoneNumber, schema.CatalogManufacturer.Description,
		schema.CatalogManufacturer.ID,
	)

	result, err := repository.db.Exec(context, query,
		manufacturer.ID, manufacturer.Name, manufacturer.PhoneNumber, manufacturer.Description,
	)
	if err != nil {
		return dberr.Wrap(err, "update_manufacturer")
	}

	if result.RowsAffected() == 0 {
		return apperr.NotFound("Manufacturer")
	}
	return nil
}

// Delete removes a manufacturer. Listings keep their rows with a NULL
// manufacturer through ON DELETE SET NULL.
func (repository *TxRepository) Delete(context context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, schema.CatalogManufacturer.Table, schema.CatalogManufacturer.ID)

	result, err := repository.db.Exec(context, query, id)
	if err != nil {
		return fmt.Errorf("postgres: failed to delete manufacturer: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperr.NotFound("Manufacturer")
	}
	return nil
}

/*
ReplacePictures clears the picture junction of a manufacturer and inserts
imageIDs with a single batch.
*/
func (repository *TxRepository) ReplacePictures(context context.Context, manufacturerID string, imageIDs []string) error {
	clearQuery := fmt.Sprintf("DELETE FROM %s WHERE %s = $1",
		schema.ManufacturerPicture.Table, schema.ManufacturerPicture.ManufacturerID,
	)
	if _, err := repository.db.Exec(context, clearQuery, manufacturerID); err != nil {
		return fmt.Errorf("postgres: failed to clear %s: %w", schema.ManufacturerPicture.Table, err)
	}

	if len(imageIDs) == 0 {
		return nil
	}

	insertQuery := fmt.Sprintf("INSERT INTO %s (%s, %s) VALUES ($1, $2) ON CONFLICT DO NOTHING",
		schema.ManufacturerPicture.Table, schema.ManufacturerPicture.ManufacturerID, schema.ManufacturerPicture.ImageID,
	)

	batch := &pgx.Batch{}
	for _, imageID := range imageIDs {
		batch.Queue(insertQuery, manufacturerID, imageID)
	}

	if err := repository.db.SendBatch(context, batch).Close(); err != nil {
		return fmt.Errorf("postgres: failed to batch insert into %s: %w", schema.ManufacturerPicture.Table, err)
	}

	return nil
}

func (repository *TxRepository) DeleteUnreferencedImages(context context.Context, ids []string) ([]string, error) {
	return repository.DeleteUnreferenced(context, ids)
}

/*
GetOrCreateByName returns the manufacturer called name, creating it when
missing. Concurrent callers converge on one row through the unique name.
*/
func (repository *TxRepository) GetOrCreateByName(context context.Context, name string) (*Manufacturer, error) {
	insert := fmt.Sprintf(`
		INSERT INTO %s (%s, %s)
		VALUES ($1, $2)
		ON CONFLICT (%s) DO NOTHING
	`,
		schema.CatalogManufacturer.Table, schema.CatalogManufacturer.ID, schema.CatalogManufacturer.Name,
		schema.CatalogManufacturer.Name,
	)
	if _, err := repository.db.Exec(context, insert, uuid.New(), name); err != nil {
		return nil, fmt.Errorf("postgres: failed to upsert manufacturer: %w", err)
	}

	query := selectManufacturer + fmt.Sprintf(" WHERE m.%s = $1", schema.CatalogManufacturer.Name)
	manufacturer, err := scanManufacturer(repository.db.QueryRow(context, query, name))
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to load manufacturer by name: %w", err)
	}

	return manufacturer, nil
}
