// Copyright (c) 2026 Etalage. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package category

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/etalage/internal/platform/apperr"
	"github.com/taibuivan/etalage/internal/platform/database/schema"
	"github.com/taibuivan/etalage/internal/platform/dberr"
	"github.com/taibuivan/etalage/internal/platform/postgres"
)

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs a PostgreSQL backed category store.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// selectColumns is the projection shared by every read.
var selectColumns = strings.Join(schema.CatalogCategory.Columns(), ", ")

func scanCategory(row pgx.Row) (*Category, error) {
	category := &Category{}
	err := row.Scan(
		&category.ID,
		&category.Name,
		&category.Description,
		&category.ImageRef,
		&category.Slug,
		&category.ParentID,
		&category.Language,
		&category.CreatedAt,
	)
	return category, err
}

/*
List returns a filtered, paginated slice of categories and the total count.

Parameters:
  - context: context.Context
  - filter: Filter (name, description, language, parent, root only)
  - limit: int
  - offset: int

Returns:
  - []*Category: Matching categories ordered by name
  - int: Total count matching filters
  - error: Database execution errors
*/
func (repository *PostgresRepository) List(context context.Context, filter Filter, limit, offset int) ([]*Category, int, error) {
	var queryBuilder strings.Builder
	var args []any
	argID := 1

	queryBuilder.WriteString(fmt.Sprintf(`SELECT %s, COUNT(*) OVER() AS total_count FROM %s WHERE TRUE`,
		selectColumns, schema.CatalogCategory.Table,
	))

	if filter.Name != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND %s ILIKE $%d", schema.CatalogCategory.Name, argID))
		args = append(args, "%"+filter.Name+"%")
		argID++
	}

	if filter.Description != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND %s ILIKE $%d", schema.CatalogCategory.Description, argID))
		args = append(args, "%"+filter.Description+"%")
		argID++
	}

	if filter.Language != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND %s = $%d", schema.CatalogCategory.Language, argID))
		args = append(args, filter.Language)
		argID++
	}

	if filter.ParentID != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND %s = $%d", schema.CatalogCategory.ParentID, argID))
		args = append(args, filter.ParentID)
		argID++
	}

	if filter.RootOnly {
		queryBuilder.WriteString(fmt.Sprintf(" AND %s IS NULL", schema.CatalogCategory.ParentID))
	}

	queryBuilder.WriteString(fmt.Sprintf(" ORDER BY %s ASC, %s ASC LIMIT $%d OFFSET $%d",
		schema.CatalogCategory.Name, schema.CatalogCategory.ID, argID, argID+1,
	))
	args = append(args, limit, offset)

	rows, err := repository.pool.Query(context, queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres: failed to list categories: %w", err)
	}
	defer rows.Close()

	categories := []*Category{}
	var totalCount int

	for rows.Next() {
		category := &Category{}
		err := rows.Scan(
			&category.ID,
			&category.Name,
			&category.Description,
			&category.ImageRef,
			&category.Slug,
			&category.ParentID,
			&category.Language,
			&category.CreatedAt,
			&totalCount,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("postgres: failed to scan category: %w", err)
		}
		categories = append(categories, category)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("postgres: failed to iterate categories: %w", err)
	}

	return categories, totalCount, nil
}

func (repository *PostgresRepository) ListAll(context context.Context) ([]*Category, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY %s IS NOT NULL, %s ASC`,
		selectColumns, schema.CatalogCategory.Table, schema.CatalogCategory.ParentID, schema.CatalogCategory.Name,
	)

	rows, err := repository.pool.Query(context, query)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to list category tree: %w", err)
	}
	defer rows.Close()

	categories := []*Category{}
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: failed to scan category: %w", err)
		}
		categories = append(categories, category)
	}

	return categories, rows.Err()
}

func (repository *PostgresRepository) FindByID(context context.Context, id string) (*Category, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		selectColumns, schema.CatalogCategory.Table, schema.CatalogCategory.ID,
	)

	category, err := scanCategory(repository.pool.QueryRow(context, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Category")
		}
		return nil, fmt.Errorf("postgres: failed to find category: %w", err)
	}

	return category, nil
}

func (repository *PostgresRepository) SlugExists(context context.Context, slug string) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1)`,
		schema.CatalogCategory.Table, schema.CatalogCategory.Slug,
	)

	var exists bool
	if err := repository.pool.QueryRow(context, query, slug).Scan(&exists); err != nil {
		return false, fmt.Errorf("postgres: failed to check category slug: %w", err)
	}
	return exists, nil
}

func (repository *PostgresRepository) HasChildren(context context.Context, id string) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1)`,
		schema.CatalogCategory.Table, schema.CatalogCategory.ParentID,
	)

	var exists bool
	if err := repository.pool.QueryRow(context, query, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("postgres: failed to check category children: %w", err)
	}
	return exists, nil
}

func (repository *PostgresRepository) Create(context context.Context, category *Category) error {
	return dberr.Wrap(insertCategory(context, repository.pool, category), "create_category")
}

func (repository *PostgresRepository) Update(context context.Context, category *Category) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $3, %s = $4, %s = $5, %s = $6, %s = $7
		WHERE %s = $1
	`,
		schema.CatalogCategory.Table,
		schema.CatalogCategory.Name, schema.CatalogCategory.Description, schema.CatalogCategory.ImageRef,
		schema.CatalogCategory.Slug, schema.CatalogCategory.ParentID, schema.CatalogCategory.Language,
		schema.CatalogCategory.ID,
	)

	result, err := repository.pool.Exec(context, query,
		category.ID, category.Name, category.Description, category.ImageRef,
		category.Slug, category.ParentID, category.Language,
	)
	if err != nil {
		return dberr.Wrap(err, "update_category")
	}

	if result.RowsAffected() == 0 {
		return apperr.NotFound("Category")
	}
	return nil
}

// Delete removes a category. Children and listing links go with it through
// ON DELETE CASCADE.
func (repository *PostgresRepository) Delete(context context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, schema.CatalogCategory.Table, schema.CatalogCategory.ID)

	result, err := repository.pool.Exec(context, query, id)
	if err != nil {
		return fmt.Errorf("postgres: failed to delete category: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperr.NotFound("Category")
	}
	return nil
}

/*
CreateTree inserts a whole taxonomy at once.

Description: The table is locked against concurrent writers for the duration
of the transaction and must be empty, so two bootstraps racing each other
cannot interleave. Rows are inserted in slice order; callers put roots before
their children.
*/
func (repository *PostgresRepository) CreateTree(context context.Context, categories []*Category) error {
	return postgres.InTx(context, repository.pool, func(transaction pgx.Tx) error {
		lock := fmt.Sprintf(`LOCK TABLE %s IN SHARE ROW EXCLUSIVE MODE`, schema.CatalogCategory.Table)
		if _, err := transaction.Exec(context, lock); err != nil {
			return fmt.Errorf("postgres: failed to lock categories: %w", err)
		}

		var existing int
		count := fmt.Sprintf(`SELECT COUNT(*) FROM %s`, schema.CatalogCategory.Table)
		if err := transaction.QueryRow(context, count).Scan(&existing); err != nil {
			return fmt.Errorf("postgres: failed to count categories: %w", err)
		}
		if existing > 0 {
			return apperr.Conflict("Categories already exist")
		}

		for _, category := range categories {
			if err := insertCategory(context, transaction, category); err != nil {
				return dberr.Wrap(err, "bootstrap_category")
			}
		}

		return nil
	})
}

func insertCategory(context context.Context, db postgres.DBTX, category *Category) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING %s
	`,
		schema.CatalogCategory.Table,
		schema.CatalogCategory.ID, schema.CatalogCategory.Name, schema.CatalogCategory.Description,
		schema.CatalogCategory.ImageRef, schema.CatalogCategory.Slug, schema.CatalogCategory.ParentID,
		schema.CatalogCategory.Language,
		schema.CatalogCategory.CreatedAt,
	)

	return db.QueryRow(context, query,
		category.ID, category.Name, category.Description, category.ImageRef,
		category.Slug, category.ParentID, category.Language,
	).Scan(&category.CreatedAt)
}
