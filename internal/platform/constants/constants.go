// Copyright (c) 2026 Etalage. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package constants provides the fixed values shared across layers: server
timings, rate limits, header names, envelope field names and cache key
prefixes.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "etalage-api"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	// Listing payloads may carry base64 images, hence the generous value.
	DefaultReadTimeout = 15 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 20 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 30 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second

	// MaxRequestBodyBytes bounds JSON bodies (images travel inline as base64).
	MaxRequestBodyBytes = 32 << 20
)

// # Rate Limiting

const (
	// DefaultRateLimitRPS is the catalog read rate allowed per IP.
	DefaultRateLimitRPS = 100.0

	// DefaultRateLimitBurst is the read burst allowed per IP.
	DefaultRateLimitBurst = 150

	// WriteRateLimitRPS is the create/update/delete rate allowed per IP.
	// Listing writes carry images and expand into product units.
	WriteRateLimitRPS = 5.0

	// WriteRateLimitBurst is the write burst allowed per IP.
	WriteRateLimitBurst = 20

	// RateLimitCleanupInterval is how often old IP entries are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its entry is deleted.
	RateLimitClientTTL = 3 * time.Minute
)

// # Authentication

const (
	// AuthIssuer is the expected 'iss' claim in JWTs.
	AuthIssuer = "etalage.shop"

	// OriginSuffix is the production domain accepted by CORS.
	OriginSuffix = "etalage.shop"
)

// # HTTP Headers

const (
	HeaderAuthorization = "Authorization"
	HeaderContentType   = "Content-Type"
	HeaderOrigin        = "Origin"
	HeaderRetryAfter    = "Retry-After"
	HeaderXRequestID    = "X-Request-ID"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
)

// # JSON Field Identifiers

const (
	FieldData    = "data"
	FieldMeta    = "meta"
	FieldError   = "error"
	FieldCode    = "code"
	FieldDetails = "details"
	FieldStatus  = "status"
	FieldChecks  = "checks"
)

// # Database Schemas

const (
	SchemaCatalog = "catalog"
)

// # Redis Prefixes (Cache Taxonomy)

const (
	RedisPrefixVariants = "catalog:variants:"
)
