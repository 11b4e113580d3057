// Copyright (c) 2026 Etalage. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package listing

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/etalage/internal/platform/apperr"
	"github.com/taibuivan/etalage/internal/platform/middleware"
	requestutil "github.com/taibuivan/etalage/internal/platform/request"
	"github.com/taibuivan/etalage/internal/platform/respond"
	"github.com/taibuivan/etalage/internal/platform/sec"
	"github.com/taibuivan/etalage/pkg/pagination"
)

// Handler implements the HTTP layer for listings.
type Handler struct {
	service *Service
}

// NewHandler constructs a listing [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the listing endpoints.
//
// # Routing Strategy
//
//   - Storefront (Public): search, detail and variant projections.
//   - Catalog management (Seller): create, update and soft delete.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.listListings)
	router.Get("/{id}", handler.getListing)
	router.Get("/{id}/variants", handler.listVariants)

	router.Group(func(seller chi.Router) {
		seller.Use(middleware.RequireRole(sec.RoleSeller))

		seller.Post("/", handler.createListing)
		seller.Patch("/{id}", handler.updateListing)
		seller.Delete("/{id}", handler.deleteListing)
	})

	return router
}

/*
GET /api/v1/listings.

Request:
  - name, category_name, manufacturer: string
  - categories: comma separated UUIDs
  - price_min, price_max: decimal
  - language, kind: string
  - page, limit: int

Response:
  - 200: []Listing
  - 400: A malformed filter, naming the parameter
*/
func (handler *Handler) listListings(writer http.ResponseWriter, request *http.Request) {
	paginationParams := pagination.FromRequest(request)

	filter, err := ParseFilter(request.URL.Query())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	listings, total, err := handler.service.ListListings(request.Context(), filter, paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, listings, paginationParams.Meta(total))
}

/*
GET /api/v1/listings/{id}.

Request:
  - group_by: "characteristics__label" embeds the grouped projection

Response:
  - 200: Listing with "variants"
  - 404: Listing not found or inactive
*/
func (handler *Handler) getListing(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.UUIDParam(request, "id", "Listing")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	mode := ModeFlat
	switch request.URL.Query().Get("group_by") {
	case "":
	case GroupByLabel:
		mode = ModeGrouped
	default:
		respond.Error(writer, request, apperr.FieldInvalid("group_by", "Must be "+GroupByLabel))
		return
	}

	detail, err := handler.service.GetListing(request.Context(), id, mode)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, detail)
}

/*
GET /api/v1/listings/{id}/variants.

Request:
  - mode: flat (default) | grouped

Response:
  - 200: []ProductUnit (flat) or {label: []ProductUnit} (grouped)
*/
func (handler *Handler) listVariants(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.UUIDParam(request, "id", "Listing")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	mode, err := ParseMode(request.URL.Query().Get("mode"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	variants, err := handler.service.ListVariants(request.Context(), id, mode)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, variants)
}

/*
POST /api/v1/listings.

Request (Body):
  - Payload: name and price required; options expand into units

Response:
  - 201: Result (listing, rejected_options)
  - 400: Validation failure, including every option rejected
  - 403: Seller role required
*/
func (handler *Handler) createListing(writer http.ResponseWriter, request *http.Request) {
	var payload Payload
	if err := requestutil.DecodeValid(request, &payload); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.service.CreateListing(request.Context(), payload)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, result)
}

/*
PATCH /api/v1/listings/{id}.

Response:
  - 200: Result (listing, rejected_options, archived_units, deleted_units)
  - 404: Listing not found
  - 409: Version mismatch
*/
func (handler *Handler) updateListing(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.UUIDParam(request, "id", "Listing")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var payload Payload
	if err := requestutil.DecodeValid(request, &payload); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.service.UpdateListing(request.Context(), id, payload)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, result)
}

func (handler *Handler) deleteListing(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.UUIDParam(request, "id", "Listing")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.service.DeleteListing(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, result)
}

// # Product Units

// ProductHandler exposes the unit level operations.
type ProductHandler struct {
	service *Service
}

// NewProductHandler constructs a [ProductHandler].
func NewProductHandler(service *Service) *ProductHandler {
	return &ProductHandler{service: service}
}

// Routes returns the product unit endpoints, all seller only.
func (handler *ProductHandler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireRole(sec.RoleSeller))

	router.Delete("/{id}", handler.deleteUnit)
	router.Post("/{id}/sold", handler.markSold)

	return router
}

/*
DELETE /api/v1/products/{id}.

Response:
  - 200: Removal: "archived": true when the unit was sold and retained
  - 404: Product not found
*/
func (handler *ProductHandler) deleteUnit(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.UUIDParam(request, "id", "Product")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	removal, err := handler.service.DeleteUnit(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, removal)
}

/*
POST /api/v1/products/{id}/sold.

Request (Body):
  - order_id: string (UUID)
  - sold_at: RFC 3339 timestamp, defaults to now

Response:
  - 200: ProductUnit
  - 409: Already sold or archived
*/
func (handler *ProductHandler) markSold(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.UUIDParam(request, "id", "Product")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input SaleInput
	if err := requestutil.DecodeValid(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	unit, err := handler.service.MarkSold(request.Context(), id, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, unit)
}
