// Copyright (c) 2026 Etalage. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/taibuivan/etalage/internal/platform/constants"
)

// AppConfig is the part of the configuration CORS depends on.
type AppConfig interface {
	IsDevelopment() bool
	AllowedOrigins() []string
}

var (
	corsMethods = strings.Join([]string{
		http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions,
	}, ", ")
	corsHeaders = strings.Join([]string{
		"Accept", constants.HeaderAuthorization, constants.HeaderContentType, constants.HeaderXRequestID,
	}, ", ")
)

/*
CORS admits the storefront and seller back office origins.

In development every origin is admitted. Otherwise an origin must be a host
under the shop domain (constants.OriginSuffix) or appear verbatim in
CORS_ALLOWED_ORIGINS. Preflight requests end here with 204.
*/
func CORS(cfg AppConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			origin := request.Header.Get(constants.HeaderOrigin)

			if origin != "" && (cfg.IsDevelopment() || isShopOrigin(origin) || slices.Contains(cfg.AllowedOrigins(), origin)) {
				header := writer.Header()
				header.Set("Access-Control-Allow-Origin", origin)
				header.Set("Access-Control-Allow-Methods", corsMethods)
				header.Set("Access-Control-Allow-Headers", corsHeaders)
				header.Set("Access-Control-Expose-Headers", constants.HeaderXRequestID+", "+constants.HeaderRetryAfter)
				header.Set("Access-Control-Allow-Credentials", "true")
				header.Set("Access-Control-Max-Age", "600")
				header.Add("Vary", constants.HeaderOrigin)
			}

			if origin != "" && request.Method == http.MethodOptions {
				writer.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}

// isShopOrigin matches https://etalage.shop and its subdomains, but not
// look-alikes such as https://notetalage.shop.
func isShopOrigin(origin string) bool {
	parsed, err := url.Parse(origin)
	if err != nil || parsed.Scheme != "https" {
		return false
	}

	host := parsed.Hostname()
	return host == constants.OriginSuffix || strings.HasSuffix(host, "."+constants.OriginSuffix)
}
