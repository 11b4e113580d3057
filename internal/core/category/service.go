// Copyright (c) 2026 Etalage. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package category

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/taibuivan/etalage/internal/platform/apperr"
	"github.com/taibuivan/etalage/internal/platform/validate"
	"github.com/taibuivan/etalage/pkg/slug"
	"github.com/taibuivan/etalage/pkg/uuid"
)

// # Service Layer

// Service orchestrates the business rules of the taxonomy.
type Service struct {
	repo            Repository
	defaultLanguage string
	logger          *slog.Logger
}

// NewService constructs a category [Service]. defaultLanguage applies to
// categories created without one.
func NewService(repo Repository, defaultLanguage string, logger *slog.Logger) *Service {
	return &Service{
		repo:            repo,
		defaultLanguage: defaultLanguage,
		logger:          logger,
	}
}

// # Lookups

func (service *Service) ListCategories(context context.Context, filter Filter, limit, offset int) ([]*Category, int, error) {
	return service.repo.List(context, filter, limit, offset)
}

func (service *Service) GetCategory(context context.Context, id string) (*Category, error) {
	return service.repo.FindByID(context, id)
}

// Tree returns every root category with its children attached.
func (service *Service) Tree(context context.Context) ([]*Category, error) {
	categories, err := service.repo.ListAll(context)
	if err != nil {
		return nil, err
	}
	return nest(categories), nil
}

// # Management

/*
CreateCategory validates and persists a new category.

Description: The slug is derived from the name. A sub-category must point at
an existing root; pointing at another sub-category would open a third level.

Parameters:
  - context: context.Context
  - category: *Category (Name required; ID, Slug and CreatedAt are assigned)

Returns:
  - error: Validation, not found or persistence errors
*/
func (service *Service) CreateCategory(context context.Context, category *Category) error {
	category.Name = strings.TrimSpace(category.Name)
	if category.Language == "" {
		category.Language = service.defaultLanguage
	}

	if err := service.validate(category); err != nil {
		return err
	}

	var parent *Category
	if category.ParentID != nil {
		found, err := service.parentFor(context, "", *category.ParentID)
		if err != nil {
			return err
		}
		parent = found
	}

	category.ID = uuid.New()
	generated, err := service.uniqueSlug(context, category.Name, parent, "")
	if err != nil {
		return err
	}
	category.Slug = generated

	if err := service.repo.Create(context, category); err != nil {
		return err
	}

	service.logger.Info("category_created",
		slog.String("category_id", category.ID),
		slog.String("slug", category.Slug),
	)
	return nil
}

/*
UpdateCategory applies a partial update.

Description: Renaming regenerates the slug. Moving a category under a parent
is refused when the category has children of its own.

Parameters:
  - context: context.Context
  - id: string
  - patch: Patch

Returns:
  - *Category: The updated category
  - error: Validation, not found or persistence errors
*/
func (service *Service) UpdateCategory(context context.Context, id string, patch Patch) (*Category, error) {
	category, err := service.repo.FindByID(context, id)
	if err != nil {
		return nil, err
	}

	renamed := false
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		renamed = name != category.Name
		category.Name = name
	}
	if patch.Description != nil {
		category.Description = patch.Description
	}
	if patch.ImageRef != nil {
		category.ImageRef = patch.ImageRef
		if *patch.ImageRef == "" {
			category.ImageRef = nil
		}
	}
	if patch.Language != nil {
		category.Language = *patch.Language
	}

	moved := false
	if patch.ParentID != nil {
		if *patch.ParentID == "" {
			moved = category.ParentID != nil
			category.ParentID = nil
		} else {
			moved = category.ParentID == nil || *category.ParentID != *patch.ParentID
			parentID := *patch.ParentID
			category.ParentID = &parentID
		}
	}

	if err := service.validate(category); err != nil {
		return nil, err
	}

	var parent *Category
	if category.ParentID != nil {
		parent, err = service.parentFor(context, category.ID, *category.ParentID)
		if err != nil {
			return nil, err
		}
	}

	if moved && parent != nil {
		hasChildren, err := service.repo.HasChildren(context, category.ID)
		if err != nil {
			return nil, err
		}
		if hasChildren {
			return nil, apperr.FieldInvalid(FieldParentID, "A category with sub-categories cannot become a sub-category")
		}
	}

	if renamed || moved {
		generated, err := service.uniqueSlug(context, category.Name, parent, category.Slug)
		if err != nil {
			return nil, err
		}
		category.Slug = generated
	}

	if err := service.repo.Update(context, category); err != nil {
		return nil, err
	}

	service.logger.Info("category_updated", slog.String("category_id", category.ID))
	return category, nil
}

// DeleteCategory removes a category and, for a root, all of its children.
func (service *Service) DeleteCategory(context context.Context, id string) error {
	if err := service.repo.Delete(context, id); err != nil {
		return err
	}

	service.logger.Warn("category_deleted", slog.String("category_id", id))
	return nil
}

/*
Bootstrap seeds the taxonomy from denormalized export rows.

Description: Rows are grouped by [BuildTree]. Every root is persisted before
its children inside a single transaction. The repository refuses to run
against a non-empty table, so a second bootstrap is a conflict rather than a
silent duplicate.

Parameters:
  - context: context.Context
  - rows: []TreeRow
  - language: string (Optional; the service default when empty)

Returns:
  - []*Category: The created roots with their children attached
  - error: apperr.Conflict when categories already exist or no slug is free
*/
func (service *Service) Bootstrap(context context.Context, rows []TreeRow, language string) ([]*Category, error) {
	if language == "" {
		language = service.defaultLanguage
	}

	normalized, err := validate.NormalizeLanguage(language)
	if err != nil {
		return nil, apperr.FieldInvalid(FieldLanguage, "Must be an ISO 639 language code")
	}

	nodes := BuildTree(rows)
	if len(nodes) == 0 {
		return nil, apperr.FieldInvalid(FieldRows, "At least one row with a category is required")
	}

	validator := &validate.Validator{}
	for index, node := range nodes {
		validator.MaxLen(fmt.Sprintf("%s[%d].category", FieldRows, index), node.Name, maxNameLength)
		for _, child := range node.Children {
			validator.MaxLen(fmt.Sprintf("%s[%d].sub_category", FieldRows, index), child, maxNameLength)
		}
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	taken := make(map[string]struct{})
	claim := func(category *Category, parent *Category) error {
		chosen, err := claimSlug(category.Name, parent, func(candidate string) (bool, error) {
			_, used := taken[candidate]
			return used, nil
		})
		if err != nil {
			return err
		}
		taken[chosen] = struct{}{}
		category.Slug = chosen
		return nil
	}

	var ordered []*Category
	roots := make([]*Category, 0, len(nodes))

	for _, node := range nodes {
		root := &Category{ID: uuid.New(), Name: node.Name, Language: normalized, Children: []*Category{}}
		if err := claim(root, nil); err != nil {
			return nil, err
		}
		roots = append(roots, root)
		ordered = append(ordered, root)
	}

	for index, node := range nodes {
		root := roots[index]
		for _, childName := range node.Children {
			parentID := root.ID
			child := &Category{ID: uuid.New(), Name: childName, ParentID: &parentID, Language: normalized}
			if err := claim(child, root); err != nil {
				return nil, err
			}
			root.Children = append(root.Children, child)
			ordered = append(ordered, child)
		}
	}

	if err := service.repo.CreateTree(context, ordered); err != nil {
		return nil, err
	}

	service.logger.Info("categories_bootstrapped",
		slog.Int("roots", len(roots)),
		slog.Int("total", len(ordered)),
	)
	return roots, nil
}

// # Helpers

func (service *Service) validate(category *Category) error {
	validator := &validate.Validator{}
	validator.Required(FieldName, category.Name).MaxLen(FieldName, category.Name, maxNameLength)
	if category.ImageRef != nil {
		validator.URL(FieldImageRef, *category.ImageRef)
	}
	if category.ParentID != nil {
		validator.UUID(FieldParentID, *category.ParentID)
	}

	normalized, err := validate.NormalizeLanguage(category.Language)
	if err != nil {
		validator.Custom(FieldLanguage, true, "Must be an ISO 639 language code")
	} else {
		category.Language = normalized
	}

	return validator.Err()
}

// parentFor loads the requested parent and checks that it is a root other
// than the category itself.
func (service *Service) parentFor(context context.Context, selfID, parentID string) (*Category, error) {
	if parentID == selfID {
		return nil, apperr.FieldInvalid(FieldParentID, "A category cannot be its own parent")
	}

	parent, err := service.repo.FindByID(context, parentID)
	if err != nil {
		if apperr.HasCode(err, apperr.CodeNotFound) {
			return nil, apperr.FieldInvalid(FieldParentID, "Parent category does not exist")
		}
		return nil, err
	}

	if !parent.IsRoot() {
		return nil, apperr.FieldInvalid(FieldParentID, "Parent must be a top-level category")
	}

	return parent, nil
}

func (service *Service) uniqueSlug(context context.Context, name string, parent *Category, own string) (string, error) {
	return claimSlug(name, parent, func(candidate string) (bool, error) {
		if candidate == own {
			return false, nil
		}
		return service.repo.SlugExists(context, candidate)
	})
}

// maxSlugAttempts bounds the random suffix retries.
const maxSlugAttempts = 5

/*
claimSlug derives a free slug for name.

The plain slug is tried first, then the slug suffixed with the parent slug
("tomates" under "bio" becomes "tomates-bio"), then with a short random
suffix.
*/
func claimSlug(name string, parent *Category, taken func(string) (bool, error)) (string, error) {
	base := slug.From(name)
	if base == "" {
		base = fallbackSlug
	}

	candidates := []string{base}
	if parent != nil {
		candidates = append(candidates, base+"-"+parent.Slug)
	}
	for range maxSlugAttempts {
		id := uuid.New()
		candidates = append(candidates, base+"-"+id[len(id)-6:])
	}

	for _, candidate := range candidates {
		used, err := taken(candidate)
		if err != nil {
			return "", err
		}
		if !used {
			return candidate, nil
		}
	}

	return "", apperr.Conflict(fmt.Sprintf("No free slug for %q", name))
}
