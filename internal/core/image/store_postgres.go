// Copyright (c) 2026 Etalage. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package image

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/taibuivan/etalage/internal/platform/apperr"
	"github.com/taibuivan/etalage/internal/platform/database/schema"
	"github.com/taibuivan/etalage/internal/platform/postgres"
)

// PostgresRepository stores image rows. It runs on the pool or on a
// transaction handed in by the caller.
type PostgresRepository struct {
	db postgres.DBTX
}

func NewPostgresRepository(db postgres.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (repository *PostgresRepository) FindImage(context context.Context, id string) (*Image, error) {
	query := fmt.Sprintf(`SELECT %s, %s, %s, %s FROM %s WHERE %s = $1`,
		schema.CatalogImage.ID, schema.CatalogImage.Ref, schema.CatalogImage.Checksum, schema.CatalogImage.CreatedAt,
		schema.CatalogImage.Table, schema.CatalogImage.ID,
	)

	image := &Image{}
	err := repository.db.QueryRow(context, query, id).Scan(&image.ID, &image.Ref, &image.Checksum, &image.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Image")
		}
		return nil, fmt.Errorf("postgres: failed to find image: %w", err)
	}

	return image, nil
}

func (repository *PostgresRepository) FindImageByChecksum(context context.Context, checksum string) (*Image, error) {
	query := fmt.Sprintf(`SELECT %s, %s, %s, %s FROM %s WHERE %s = $1`,
		schema.CatalogImage.ID, schema.CatalogImage.Ref, schema.CatalogImage.Checksum, schema.CatalogImage.CreatedAt,
		schema.CatalogImage.Table, schema.CatalogImage.Checksum,
	)

	image := &Image{}
	err := repository.db.QueryRow(context, query, checksum).Scan(&image.ID, &image.Ref, &image.Checksum, &image.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("postgres: failed to find image by checksum: %w", err)
	}

	return image, nil
}

func (repository *PostgresRepository) FindImageByRef(context context.Context, ref string) (*Image, error) {
	query := fmt.Sprintf(`SELECT %s, %s, %s, %s FROM %s WHERE %s = $1 ORDER BY %s IS NULL, %s LIMIT 1`,
		schema.CatalogImage.ID, schema.CatalogImage.Ref, schema.CatalogImage.Checksum, schema.CatalogImage.CreatedAt,
		schema.CatalogImage.Table, schema.CatalogImage.Ref,
		schema.CatalogImage.Checksum, schema.CatalogImage.CreatedAt,
	)

	image := &Image{}
	err := repository.db.QueryRow(context, query, ref).Scan(&image.ID, &image.Ref, &image.Checksum, &image.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("postgres: failed to find image by ref: %w", err)
	}

	return image, nil
}

/*
CreateImage inserts image.

Description: Rows with a checksum are unique on it. When a concurrent
transaction committed the same content first, the insert is skipped and image
is filled from the winning row.
*/
func (repository *PostgresRepository) CreateImage(context context.Context, image *Image) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s)
		VALUES ($1, $2, $3)
		ON CONFLICT (%s) WHERE %s IS NOT NULL DO NOTHING
		RETURNING %s
	`,
		schema.CatalogImage.Table, schema.CatalogImage.ID, schema.CatalogImage.Ref, schema.CatalogImage.Checksum,
		schema.CatalogImage.Checksum, schema.CatalogImage.Checksum,
		schema.CatalogImage.CreatedAt,
	)

	err := repository.db.QueryRow(context, query, image.ID, image.Ref, image.Checksum).Scan(&image.CreatedAt)
	if err == nil {
		return nil
	}

	if !errors.Is(err, pgx.ErrNoRows) || image.Checksum == nil {
		return fmt.Errorf("postgres: failed to create image: %w", err)
	}

	existing, err := repository.FindImageByChecksum(context, *image.Checksum)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("postgres: image checksum conflict without a row")
	}

	*image = *existing
	return nil
}

/*
DeleteUnreferenced removes the images among ids that no product unit and no
manufacturer picture points to any more.

Returns:
  - []string: The refs of deleted rows that own their blob (checksum set),
    for cleanup after commit. Remote rows never surface a ref.
  - error: Database execution errors
*/
func (repository *PostgresRepository) DeleteUnreferenced(context context.Context, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf(`
		WITH deleted AS (
			DELETE FROM %s i
			WHERE i.%s = ANY($1::uuid[])
			  AND NOT EXISTS (SELECT 1 FROM %s pi WHERE pi.%s = i.%s)
			  AND NOT EXISTS (SELECT 1 FROM %s mp WHERE mp.%s = i.%s)
			RETURNING i.%s, i.%s
		)
		SELECT %s FROM deleted WHERE %s IS NOT NULL
	`,
		schema.CatalogImage.Table,
		schema.CatalogImage.ID,
		schema.ProductUnitImage.Table, schema.ProductUnitImage.ImageID, schema.CatalogImage.ID,
		schema.ManufacturerPicture.Table, schema.ManufacturerPicture.ImageID, schema.CatalogImage.ID,
		schema.CatalogImage.Ref, schema.CatalogImage.Checksum,
		schema.CatalogImage.Ref, schema.CatalogImage.Checksum,
	)

	rows, err := repository.db.Query(context, query, ids)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to delete unreferenced images: %w", err)
	}

	refs, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to collect deleted image refs: %w", err)
	}

	return refs, nil
}
