// Copyright (c) 2026 Etalage. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package ctxutil stores and reads the request-scoped values the middleware
// chain attaches: the correlation id, the request logger and the verified
// token claims of the seller or admin making a catalog change.
package ctxutil

import (
	"context"
	"log/slog"

	"github.com/taibuivan/etalage/internal/platform/ctxkey"
	"github.com/taibuivan/etalage/internal/platform/sec"
)

// anonymousActor labels catalog changes made without a token (tests, bootstrap).
const anonymousActor = "anonymous"

// valueOf reads key as T, reporting false for a missing or typed-nil value.
func valueOf[T comparable](ctx context.Context, key any) (T, bool) {
	var zero T
	value, ok := ctx.Value(key).(T)
	if !ok || value == zero {
		return zero, false
	}
	return value, true
}

// WithRequestID attaches the X-Request-ID correlation value.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxkey.KeyRequestID, id)
}

// GetRequestID returns the correlation value, or "" outside a request.
func GetRequestID(ctx context.Context) string {
	id, _ := valueOf[string](ctx, ctxkey.KeyRequestID)
	return id
}

// WithLogger attaches the request-scoped logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxkey.KeyLogger, logger)
}

// GetLogger returns the request logger, falling back to [slog.Default].
func GetLogger(ctx context.Context) *slog.Logger {
	if logger, ok := valueOf[*slog.Logger](ctx, ctxkey.KeyLogger); ok {
		return logger
	}
	return slog.Default()
}

// WithAuthUser attaches the claims of a verified bearer token.
func WithAuthUser(ctx context.Context, user *sec.AuthClaims) context.Context {
	return context.WithValue(ctx, ctxkey.KeyUser, user)
}

// GetAuthUser returns the verified claims, or nil for an anonymous request.
func GetAuthUser(ctx context.Context) *sec.AuthClaims {
	claims, _ := valueOf[*sec.AuthClaims](ctx, ctxkey.KeyUser)
	return claims
}

// Actor names who is changing the catalog, for audit log entries.
func Actor(ctx context.Context) string {
	if claims := GetAuthUser(ctx); claims != nil && claims.UserID != "" {
		return claims.UserID
	}
	return anonymousActor
}
