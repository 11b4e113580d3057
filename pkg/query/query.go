// Copyright (c) 2026 Etalage. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package query decodes URL query parameters into typed values.

A [Decoder] records every malformed parameter instead of dropping it, so a
handler can answer with a field-level error rather than an empty result set.

	decoder := query.NewDecoder(request.URL.Query())
	minimum := decoder.Decimal("price_min")
	if err := decoder.Err(); err != nil {
	    // err is query.Errors
	}
*/
package query

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FieldError names one malformed query parameter.
type FieldError struct {
	Field   string
	Message string
}

// Errors is the set of failures collected by a [Decoder].
type Errors []FieldError

func (errs Errors) Error() string {
	parts := make([]string, 0, len(errs))
	for _, fieldError := range errs {
		parts = append(parts, fieldError.Field+": "+fieldError.Message)
	}
	return "query: " + strings.Join(parts, "; ")
}

// Decoder reads typed parameters from url.Values.
type Decoder struct {
	values url.Values
	errs   Errors
}

// NewDecoder wraps values.
func NewDecoder(values url.Values) *Decoder {
	return &Decoder{values: values}
}

// String returns the trimmed parameter, or "" when absent.
func (decoder *Decoder) String(name string) string {
	return strings.TrimSpace(decoder.values.Get(name))
}

// Int returns nil when name is absent.
func (decoder *Decoder) Int(name string) *int {
	raw := decoder.String(name)
	if raw == "" {
		return nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		decoder.Fail(name, "Must be an integer")
		return nil
	}
	return &value
}

// Bool accepts the forms understood by strconv.ParseBool.
func (decoder *Decoder) Bool(name string) *bool {
	raw := decoder.String(name)
	if raw == "" {
		return nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		decoder.Fail(name, "Must be true or false")
		return nil
	}
	return &value
}

// Decimal parses an exact decimal number such as "12.50".
func (decoder *Decoder) Decimal(name string) *decimal.Decimal {
	raw := decoder.String(name)
	if raw == "" {
		return nil
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		decoder.Fail(name, "Must be a decimal number")
		return nil
	}
	return &value
}

// UUIDs reads a comma separated list of UUIDs in canonical form.
func (decoder *Decoder) UUIDs(name string) []string {
	var ids []string
	for index, raw := range StringSlice(decoder.values.Get(name)) {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			decoder.Fail(fmt.Sprintf("%s[%d]", name, index), "Must be a valid UUID")
			continue
		}
		ids = append(ids, parsed.String())
	}
	return ids
}

// OneOf returns the parameter when it is one of allowed, "" when absent.
func (decoder *Decoder) OneOf(name string, allowed ...string) string {
	raw := decoder.String(name)
	if raw == "" {
		return ""
	}
	for _, candidate := range allowed {
		if raw == candidate {
			return raw
		}
	}
	decoder.Fail(name, "Must be one of: "+strings.Join(allowed, ", "))
	return ""
}

// Fail records a failure for checks the decoder does not know about.
func (decoder *Decoder) Fail(name, message string) {
	decoder.errs = append(decoder.errs, FieldError{Field: name, Message: message})
}

// Err returns the collected [Errors], or nil.
func (decoder *Decoder) Err() error {
	if len(decoder.errs) == 0 {
		return nil
	}
	return decoder.errs
}

// StringSlice parses a single comma-separated query string
// into a trimmed slice of strings.
func StringSlice(val string) []string {
	if val == "" {
		return nil
	}
	var res []string
	for _, v := range strings.Split(val, ",") {
		clean := strings.TrimSpace(v)
		if clean != "" {
			res = append(res, clean)
		}
	}
	return res
}
