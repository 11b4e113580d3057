// Copyright (c) 2026 Etalage. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package category

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/taibuivan/etalage/internal/platform/apperr"
	"github.com/taibuivan/etalage/internal/platform/middleware"
	requestutil "github.com/taibuivan/etalage/internal/platform/request"
	"github.com/taibuivan/etalage/internal/platform/respond"
	"github.com/taibuivan/etalage/internal/platform/sec"
	"github.com/taibuivan/etalage/internal/platform/validate"
	"github.com/taibuivan/etalage/pkg/pagination"
)

// Handler implements the HTTP layer for the category taxonomy.
type Handler struct {
	service *Service
}

// NewHandler constructs a category [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the category endpoints.
//
// # Routing Strategy
//
//   - Browsing (Public): list, tree and detail.
//   - Editing (Seller): create and patch.
//   - Structure (Admin): delete with cascade and bootstrap.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.listCategories)
	router.Get("/tree", handler.getTree)
	router.Get("/{id}", handler.getCategory)

	router.Group(func(seller chi.Router) {
		seller.Use(middleware.RequireRole(sec.RoleSeller))

		seller.Post("/", handler.createCategory)
		seller.Patch("/{id}", handler.updateCategory)
	})

	router.Group(func(admin chi.Router) {
		admin.Use(middleware.RequireRole(sec.RoleAdmin))

		admin.Delete("/{id}", handler.deleteCategory)
		admin.Post("/tree", handler.bootstrap)
	})

	return router
}

/*
GET /api/v1/categories.

Request:
  - name: string (substring)
  - description: string (substring)
  - language: string (ISO 639 code)
  - parent: string (UUID of the parent)
  - root: bool (only top-level categories)
  - page, limit: int

Response:
  - 200: []Category
  - 400: Malformed filter value
*/
func (handler *Handler) listCategories(writer http.ResponseWriter, request *http.Request) {
	paginationParams := pagination.FromRequest(request)
	queryParams := request.URL.Query()

	filter := Filter{
		Name:        queryParams.Get("name"),
		Description: queryParams.Get("description"),
	}

	if language := queryParams.Get("language"); language != "" {
		normalized, err := validate.NormalizeLanguage(language)
		if err != nil {
			respond.Error(writer, request, apperr.FieldInvalid("language", "Must be an ISO 639 language code"))
			return
		}
		filter.Language = normalized
	}

	if parent := queryParams.Get("parent"); parent != "" {
		parsed, err := uuid.Parse(parent)
		if err != nil {
			respond.Error(writer, request, apperr.FieldInvalid("parent", "Must be a valid UUID"))
			return
		}
		filter.ParentID = parsed.String()
	}

	if root := queryParams.Get("root"); root != "" {
		isRoot, err := strconv.ParseBool(root)
		if err != nil {
			respond.Error(writer, request, apperr.FieldInvalid("root", "Must be true or false"))
			return
		}
		filter.RootOnly = isRoot
	}

	categories, total, err := handler.service.ListCategories(request.Context(), filter, paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, categories, paginationParams.Meta(total))
}

/*
GET /api/v1/categories/tree.

Response:
  - 200: []Category: Roots with their children
*/
func (handler *Handler) getTree(writer http.ResponseWriter, request *http.Request) {
	roots, err := handler.service.Tree(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, roots)
}

func (handler *Handler) getCategory(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.UUIDParam(request, "id", "Category")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	category, err := handler.service.GetCategory(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, category)
}

// createCategoryRequest defines the inbound JSON schema for category creation.
type createCategoryRequest struct {
	Name        string  `json:"name" validate:"required,max=255"`
	Description *string `json:"description"`
	ImageRef    *string `json:"image_ref" validate:"omitempty,url"`
	ParentID    *string `json:"parent_id" validate:"omitempty,uuid"`
	Language    string  `json:"language" validate:"omitempty,min=2,max=12"`
}

/*
POST /api/v1/categories.

Response:
  - 201: Category
  - 400: Validation failure (unknown parent, third level, bad language)
  - 403: Seller role required
*/
func (handler *Handler) createCategory(writer http.ResponseWriter, request *http.Request) {
	var input createCategoryRequest
	if err := requestutil.DecodeValid(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	category := &Category{
		Name:        input.Name,
		Description: input.Description,
		ImageRef:    input.ImageRef,
		ParentID:    input.ParentID,
		Language:    input.Language,
	}

	if err := handler.service.CreateCategory(request.Context(), category); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, category)
}

/*
PATCH /api/v1/categories/{id}.

Request (Body):
  - Patch: only present fields change; "parent_id": "" makes a root

Response:
  - 200: Category
  - 404: Category not found
*/
func (handler *Handler) updateCategory(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.UUIDParam(request, "id", "Category")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var patch Patch
	if err := requestutil.DecodeJSON(request, &patch); err != nil {
		respond.Error(writer, request, err)
		return
	}

	category, err := handler.service.UpdateCategory(request.Context(), id, patch)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, category)
}

func (handler *Handler) deleteCategory(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.UUIDParam(request, "id", "Category")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.DeleteCategory(request.Context(), id); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

// bootstrapRequest carries export rows for the initial taxonomy.
type bootstrapRequest struct {
	Language string    `json:"language"`
	Rows     []TreeRow `json:"rows" validate:"required,min=1"`
}

/*
POST /api/v1/categories/tree.

Description: Seeds an empty taxonomy from {category, sub_category} rows.

Response:
  - 201: []Category: The created roots with children
  - 409: Categories already exist
*/
func (handler *Handler) bootstrap(writer http.ResponseWriter, request *http.Request) {
	var input bootstrapRequest
	if err := requestutil.DecodeValid(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	roots, err := handler.service.Bootstrap(request.Context(), input.Rows, input.Language)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, roots)
}
