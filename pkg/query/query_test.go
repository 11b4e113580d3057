// Copyright (c) 2026 Etalage. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package query_test

import (
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/etalage/pkg/query"
)

/*
TestDecoder_Valid reads every supported type.
*/
func TestDecoder_Valid(t *testing.T) {
	values := url.Values{
		"limit":      {"20"},
		"active":     {"true"},
		"price_min":  {"12.50"},
		"categories": {" 0190F5A4-7B5E-7CC1-8A9E-3B1F2C3D4E5F , "},
		"kind":       {"food"},
		"name":       {"  miel "},
	}

	decoder := query.NewDecoder(values)

	assert.Equal(t, 20, *decoder.Int("limit"))
	assert.True(t, *decoder.Bool("active"))
	assert.Equal(t, "12.5", decoder.Decimal("price_min").String())
	assert.Equal(t, []string{"0190f5a4-7b5e-7cc1-8a9e-3b1f2c3d4e5f"}, decoder.UUIDs("categories"))
	assert.Equal(t, "food", decoder.OneOf("kind", "other", "food"))
	assert.Equal(t, "miel", decoder.String("name"))
	assert.Nil(t, decoder.Decimal("price_max"))
	assert.NoError(t, decoder.Err())
}

/*
TestDecoder_Invalid reports each malformed parameter by name.
*/
func TestDecoder_Invalid(t *testing.T) {
	values := url.Values{
		"limit":      {"ten"},
		"active":     {"maybe"},
		"price_min":  {"12,50"},
		"categories": {"nope"},
		"kind":       {"toy"},
	}

	decoder := query.NewDecoder(values)
	assert.Nil(t, decoder.Int("limit"))
	assert.Nil(t, decoder.Bool("active"))
	assert.Nil(t, decoder.Decimal("price_min"))
	assert.Empty(t, decoder.UUIDs("categories"))
	assert.Empty(t, decoder.OneOf("kind", "other", "food"))

	var errs query.Errors
	require.True(t, errors.As(decoder.Err(), &errs))

	fields := make([]string, 0, len(errs))
	for _, fieldError := range errs {
		fields = append(fields, fieldError.Field)
	}
	assert.Equal(t, []string{"limit", "active", "price_min", "categories[0]", "kind"}, fields)
}

/*
TestStringSlice splits and trims comma separated values.
*/
func TestStringSlice(t *testing.T) {
	assert.Nil(t, query.StringSlice(""))
	assert.Equal(t, []string{"a", "b"}, query.StringSlice(" a, ,b ,"))
}
