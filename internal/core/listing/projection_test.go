// Copyright (c) 2026 Etalage. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package listing_test

import (
	"encoding/json"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/etalage/internal/core/listing"
)

func unit(id, label, value string, customized, active bool) *listing.ProductUnit {
	return &listing.ProductUnit{
		ID:              id,
		Characteristics: listing.Characteristics{Label: label, Value: value},
		IsCustomized:    customized,
		IsActive:        active,
	}
}

func sampleUnits() []*listing.ProductUnit {
	return []*listing.ProductUnit{
		unit("07", "Size", "Small", false, true),
		unit("03", "Color", "Red", false, true),
		unit("02", "Color", "Red", false, true),
		unit("09", "Gravure", "", true, true),
		unit("05", "Color", "Blue", false, true),
		unit("08", "Gravure", "", true, true),
		unit("04", "Color", "Blue", false, false),
		unit("06", "Color", "Blue", false, true),
		unit("01", "Size", "Large", false, true),
		unit("10", "Color", "Green", false, false),
	}
}

func ids(units []*listing.ProductUnit) []string {
	result := make([]string, 0, len(units))
	for _, unit := range units {
		result = append(result, unit.ID)
	}
	return result
}

/*
TestFlat keeps one representative per characteristic, customized units last.
*/
func TestFlat(t *testing.T) {
	units := sampleUnits()
	before := ids(units)

	flat := listing.Flat(units)

	// Blue-05, Red-02, Large-01, Small-07, then the customized Gravure-08.
	assert.Equal(t, []string{"05", "02", "01", "07", "08"}, ids(flat))
	assert.Equal(t, before, ids(units), "input order must not change")

	t.Run("idempotent", func(t *testing.T) {
		assert.Equal(t, ids(flat), ids(listing.Flat(units)))
		assert.Equal(t, ids(flat), ids(listing.Flat(flat)))
	})

	t.Run("empty", func(t *testing.T) {
		assert.Empty(t, listing.Flat(nil))
	})
}

/*
TestGrouped checks that every label appears once and that groups cover the flat projection.
*/
func TestGrouped(t *testing.T) {
	units := sampleUnits()

	grouped := listing.Grouped(units)
	require.Len(t, grouped, 3)

	assert.Equal(t, []string{"05", "02"}, ids(grouped["Color"]))
	assert.Equal(t, []string{"01", "07"}, ids(grouped["Size"]))
	assert.Equal(t, []string{"08"}, ids(grouped["Gravure"]))

	var union []string
	for _, group := range grouped {
		union = append(union, ids(group)...)
	}
	flat := ids(listing.Flat(units))
	slices.Sort(union)
	slices.Sort(flat)
	assert.Equal(t, flat, union)
}

/*
TestVariants_MarshalJSON encodes a list in flat mode and an object in grouped mode.
*/
func TestVariants_MarshalJSON(t *testing.T) {
	units := []*listing.ProductUnit{unit("01", "Color", "Red", false, true)}

	flat, err := json.Marshal(listing.NewVariants(units, listing.ModeFlat))
	require.NoError(t, err)
	assert.True(t, json.Valid(flat))
	assert.Equal(t, byte('['), flat[0])

	grouped, err := json.Marshal(listing.NewVariants(units, listing.ModeGrouped))
	require.NoError(t, err)

	var decoded map[string][]listing.ProductUnit
	require.NoError(t, json.Unmarshal(grouped, &decoded))
	require.Len(t, decoded["Color"], 1)
	assert.Equal(t, "01", decoded["Color"][0].ID)

	empty, err := json.Marshal(listing.Variants{Mode: listing.ModeFlat})
	require.NoError(t, err)
	assert.Equal(t, "[]", string(empty))
}

/*
TestParseMode accepts flat, grouped and the empty default.
*/
func TestParseMode(t *testing.T) {
	tests := []struct {
		raw     string
		want    listing.Mode
		isValid bool
	}{
		{"", listing.ModeFlat, true},
		{"flat", listing.ModeFlat, true},
		{"grouped", listing.ModeGrouped, true},
		{"tree", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			mode, err := listing.ParseMode(tt.raw)
			if !tt.isValid {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, mode)
		})
	}
}
