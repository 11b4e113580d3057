// Copyright (c) 2026 Etalage. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package manufacturer

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/etalage/internal/platform/middleware"
	requestutil "github.com/taibuivan/etalage/internal/platform/request"
	"github.com/taibuivan/etalage/internal/platform/respond"
	"github.com/taibuivan/etalage/internal/platform/sec"
	"github.com/taibuivan/etalage/pkg/pagination"
)

// Handler implements the HTTP layer for manufacturers.
type Handler struct {
	service *Service
}

// NewHandler constructs a manufacturer [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the manufacturer endpoints. Reads are public; writes require
// the seller role.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.listManufacturers)
	router.Get("/{id}", handler.getManufacturer)

	router.Group(func(seller chi.Router) {
		seller.Use(middleware.RequireRole(sec.RoleSeller))

		seller.Post("/", handler.createManufacturer)
		seller.Patch("/{id}", handler.updateManufacturer)
		seller.Delete("/{id}", handler.deleteManufacturer)
	})

	return router
}

/*
GET /api/v1/manufacturers.

Request:
  - q: string (name substring)
  - page, limit: int

Response:
  - 200: []Manufacturer
*/
func (handler *Handler) listManufacturers(writer http.ResponseWriter, request *http.Request) {
	paginationParams := pagination.FromRequest(request)
	filter := Filter{Query: request.URL.Query().Get("q")}

	manufacturers, total, err := handler.service.ListManufacturers(request.Context(), filter, paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, manufacturers, paginationParams.Meta(total))
}

func (handler *Handler) getManufacturer(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.UUIDParam(request, "id", "Manufacturer")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	manufacturer, err := handler.service.GetManufacturer(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, manufacturer)
}

/*
POST /api/v1/manufacturers.

Request (Body):
  - name: string (required, unique)
  - phone_number, description: string
  - pictures: []image (data URI, base64, URL or {"id": ...})

Response:
  - 201: Manufacturer
  - 400: Validation failure
  - 409: Name already taken
*/
func (handler *Handler) createManufacturer(writer http.ResponseWriter, request *http.Request) {
	var input Input
	if err := requestutil.DecodeValid(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	manufacturer, err := handler.service.CreateManufacturer(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, manufacturer)
}

func (handler *Handler) updateManufacturer(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.UUIDParam(request, "id", "Manufacturer")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input Input
	if err := requestutil.DecodeValid(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	manufacturer, err := handler.service.UpdateManufacturer(request.Context(), id, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, manufacturer)
}

func (handler *Handler) deleteManufacturer(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.UUIDParam(request, "id", "Manufacturer")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.DeleteManufacturer(request.Context(), id); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}
