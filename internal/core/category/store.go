// Copyright (c) 2026 Etalage. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package category

import "context"

// Repository defines the persistence contract for categories.
type Repository interface {
	List(context context.Context, filter Filter, limit, offset int) ([]*Category, int, error)

	// ListAll returns every category, roots first, ordered by name.
	ListAll(context context.Context) ([]*Category, error)

	FindByID(context context.Context, id string) (*Category, error)
	SlugExists(context context.Context, slug string) (bool, error)
	HasChildren(context context.Context, id string) (bool, error)

	Create(context context.Context, category *Category) error
	Update(context context.Context, category *Category) error
	Delete(context context.Context, id string) error

	// CreateTree inserts categories in the given order inside one transaction.
	// It fails with apperr.Conflict unless the table is empty.
	CreateTree(context context.Context, categories []*Category) error
}
