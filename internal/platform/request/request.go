// Copyright (c) 2026 Etalage. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package requestutil provides utilities for extracting data from HTTP requests.

It hides the router's parameter extraction and the JSON decoding pattern so
that every handler reports malformed input the same way.
*/
package requestutil

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/taibuivan/etalage/internal/platform/apperr"
	"github.com/taibuivan/etalage/internal/platform/ctxutil"
	"github.com/taibuivan/etalage/internal/platform/sec"
	"github.com/taibuivan/etalage/internal/platform/validate"
)

/*
DecodeJSON reads the request body and decodes it into the target structure.

Parameters:
  - request: *http.Request
  - target: any (Pointer to the destination struct)

Returns:
  - error: validate.ErrInvalidJSON if decoding fails, a 400 naming the body
    when it exceeds the configured size limit, otherwise nil
*/
func DecodeJSON(request *http.Request, target any) error {
	if err := json.NewDecoder(request.Body).Decode(target); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperr.FieldInvalid("body", "Request body is too large")
		}
		return validate.ErrInvalidJSON
	}
	return nil
}

/*
DecodeValid decodes the body like [DecodeJSON] and then checks the struct
tags of target with [validate.Struct].
*/
func DecodeValid(request *http.Request, target any) error {
	if err := DecodeJSON(request, target); err != nil {
		return err
	}
	return validate.Struct(target)
}

/*
Param retrieves a named URL parameter from the request.
*/
func Param(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

/*
UUIDParam retrieves a named URL parameter that must be a UUID.

Returns:
  - string: The canonical lower-case UUID
  - error: apperr.NotFound for the given resource if the value is not a UUID
*/
func UUIDParam(request *http.Request, name, resource string) (string, error) {
	parsed, err := uuid.Parse(chi.URLParam(request, name))
	if err != nil {
		return "", apperr.NotFound(resource)
	}
	return parsed.String(), nil
}

/*
Claims extracts the authenticated user claims from the request context.

Returns nil if the request is not authenticated.
*/
func Claims(request *http.Request) *sec.AuthClaims {
	return ctxutil.GetAuthUser(request.Context())
}
