// Copyright (c) 2026 Etalage. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package listing_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/etalage/internal/core/listing"
	"github.com/taibuivan/etalage/internal/platform/middleware"
	"github.com/taibuivan/etalage/internal/platform/sec"
)

type stubVerifier struct{}

func (stubVerifier) VerifyToken(token string) (*sec.AuthClaims, error) {
	switch token {
	case "seller-token":
		return &sec.AuthClaims{UserID: "s", Role: string(sec.RoleSeller)}, nil
	case "customer-token":
		return &sec.AuthClaims{UserID: "c", Role: string(sec.RoleCustomer)}, nil
	}
	return nil, errors.New("bad token")
}

func newRouter(f *fixture) http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.Authenticate(stubVerifier{}))
	router.Mount("/listings", listing.NewHandler(f.service).Routes())
	router.Mount("/products", listing.NewProductHandler(f.service).Routes())
	return router
}

func serve(t *testing.T, router http.Handler, method, target, token, body string) (int, map[string]any) {
	t.Helper()

	request := httptest.NewRequest(method, target, strings.NewReader(body))
	request.Header.Set("Content-Type", "application/json")
	if token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)

	var envelope map[string]any
	if recorder.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
	}
	return recorder.Code, envelope
}

const createBody = `{
	"name": "Miel de lavande",
	"price": "12.50",
	"options": [
		{"label": "Size", "value": "500g", "stock": 2},
		{"label": "Size", "value": "250g", "stock": 1},
		{"label": "Color", "value": "Ambre", "stock": -1}
	]
}`

/*
TestHandler_Listings covers the listing routes end to end over the in-memory store.
*/
func TestHandler_Listings(t *testing.T) {
	router := newRouter(newFixture())

	t.Run("create_requires_seller", func(t *testing.T) {
		status, _ := serve(t, router, http.MethodPost, "/listings", "", createBody)
		assert.Equal(t, http.StatusUnauthorized, status)

		status, _ = serve(t, router, http.MethodPost, "/listings", "customer-token", createBody)
		assert.Equal(t, http.StatusForbidden, status)
	})

	status, envelope := serve(t, router, http.MethodPost, "/listings", "seller-token", createBody)
	require.Equal(t, http.StatusCreated, status)

	result := envelope["data"].(map[string]any)
	created := result["listing"].(map[string]any)
	listingID := created["id"].(string)
	assert.Len(t, created["products"], 3)
	assert.Len(t, result["rejected_options"], 1)

	t.Run("detail_grouped", func(t *testing.T) {
		status, envelope := serve(t, router, http.MethodGet, "/listings/"+listingID+"?group_by="+listing.GroupByLabel, "", "")
		require.Equal(t, http.StatusOK, status)

		variants := envelope["data"].(map[string]any)["variants"].(map[string]any)
		assert.Len(t, variants["Size"], 2)
	})

	t.Run("detail_bad_group_by", func(t *testing.T) {
		status, _ := serve(t, router, http.MethodGet, "/listings/"+listingID+"?group_by=value", "", "")
		assert.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("variants_flat", func(t *testing.T) {
		status, envelope := serve(t, router, http.MethodGet, "/listings/"+listingID+"/variants", "", "")
		require.Equal(t, http.StatusOK, status)
		assert.Len(t, envelope["data"], 2)
	})

	t.Run("variants_bad_mode", func(t *testing.T) {
		status, _ := serve(t, router, http.MethodGet, "/listings/"+listingID+"/variants?mode=tree", "", "")
		assert.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("list_bad_filter", func(t *testing.T) {
		status, _ := serve(t, router, http.MethodGet, "/listings?price_min=cheap", "", "")
		assert.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("update_stale_version", func(t *testing.T) {
		status, _ := serve(t, router, http.MethodPatch, "/listings/"+listingID, "seller-token", `{"name": "Miel", "version": 7}`)
		assert.Equal(t, http.StatusConflict, status)
	})

	t.Run("delete", func(t *testing.T) {
		status, envelope := serve(t, router, http.MethodDelete, "/listings/"+listingID, "seller-token", "")
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, float64(3), envelope["data"].(map[string]any)["deleted_units"])

		status, _ = serve(t, router, http.MethodGet, "/listings/"+listingID, "", "")
		assert.Equal(t, http.StatusNotFound, status)
	})
}

/*
TestHandler_Products sells a unit and then applies the delete contract to it.
*/
func TestHandler_Products(t *testing.T) {
	f := newFixture()
	router := newRouter(f)

	status, envelope := serve(t, router, http.MethodPost, "/listings", "seller-token", createBody)
	require.Equal(t, http.StatusCreated, status)

	products := envelope["data"].(map[string]any)["listing"].(map[string]any)["products"].([]any)
	unitID := products[0].(map[string]any)["id"].(string)

	status, _ = serve(t, router, http.MethodPost, "/products/"+unitID+"/sold", "seller-token", `{}`)
	assert.Equal(t, http.StatusBadRequest, status)

	sale := `{"order_id": "0190f5a4-7b5e-7cc1-8a9e-aaaaaaaaaaaa"}`
	status, envelope = serve(t, router, http.MethodPost, "/products/"+unitID+"/sold", "seller-token", sale)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, envelope["data"].(map[string]any)["is_sold"])

	status, _ = serve(t, router, http.MethodPost, "/products/"+unitID+"/sold", "seller-token", sale)
	assert.Equal(t, http.StatusConflict, status)

	status, envelope = serve(t, router, http.MethodDelete, "/products/"+unitID, "seller-token", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, envelope["data"].(map[string]any)["archived"])

	status, _ = serve(t, router, http.MethodDelete, "/products/not-a-uuid", "seller-token", "")
	assert.Equal(t, http.StatusNotFound, status)
}
