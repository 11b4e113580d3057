// Copyright (c) 2026 Etalage. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package ctxkey holds the context keys shared by middleware and ctxutil.
package ctxkey

// key is unexported so no other package can forge one.
type key uint8

const (
	// KeyRequestID carries the X-Request-ID correlation value (string).
	KeyRequestID key = iota + 1

	// KeyUser carries the verified token claims (*sec.AuthClaims).
	KeyUser

	// KeyLogger carries the request-scoped *slog.Logger.
	KeyLogger
)
