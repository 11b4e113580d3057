// Copyright (c) 2026 Etalage. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package dberr translates PostgreSQL driver errors into [apperr.AppError] values.
package dberr

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/taibuivan/etalage/internal/platform/apperr"
)

var (
	// ErrNotFound is a standard error returned when a queried row doesn't exist.
	ErrNotFound = apperr.NotFound("Resource")
)

// Wrap inspects a database error and wraps it into a meaningful [apperr.AppError].
//
// The action names the failed operation (e.g. "create_listing") and is kept
// in the cause for logs. Errors that already are [apperr.AppError] pass through.
func Wrap(err error, action string) error {
	if err == nil {
		return nil
	}

	if apperr.IsAppError(err) {
		return err
	}

	// 1. Not Found mapping
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}

	// 2. Constraint violations carry a SQLSTATE worth surfacing
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			conflict := apperr.Conflict("Resource already exists")
			conflict.Cause = wrapped{action: action, err: err}
			return conflict
		case pgerrcode.ForeignKeyViolation:
			invalid := apperr.ValidationError("Referenced resource does not exist")
			invalid.Cause = wrapped{action: action, err: err}
			return invalid
		case pgerrcode.InvalidTextRepresentation:
			malformed := apperr.ValidationError("Malformed identifier or value")
			malformed.Cause = wrapped{action: action, err: err}
			return malformed
		case pgerrcode.QueryCanceled:
			// Raised when statement_timeout fires.
			busy := apperr.ServiceUnavailable("Catalog is busy, retry shortly")
			busy.Cause = wrapped{action: action, err: err}
			return busy
		}
	}

	// 3. Everything else is an unexpected server error
	return apperr.Internal(wrapped{action: action, err: err})
}

// IsUniqueViolation reports whether err is a PostgreSQL unique_violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

// wrapped prefixes a driver error with the failed action for log correlation.
type wrapped struct {
	action string
	err    error
}

func (w wrapped) Error() string { return "postgres: " + w.action + ": " + w.err.Error() }
func (w wrapped) Unwrap() error { return w.err }
