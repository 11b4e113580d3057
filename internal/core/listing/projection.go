// Copyright (c) 2026 Etalage. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package listing

import (
	"cmp"
	"encoding/json"
	"slices"

	"github.com/taibuivan/etalage/internal/platform/apperr"
	"github.com/taibuivan/etalage/pkg/slice"
)

// Mode selects the shape of a variant projection.
type Mode string

const (
	ModeFlat    Mode = "flat"
	ModeGrouped Mode = "grouped"
)

// GroupByLabel is the legacy listing detail switch for the grouped shape.
const GroupByLabel = "characteristics__label"

// ParseMode maps the mode query parameter; empty means flat.
func ParseMode(raw string) (Mode, error) {
	switch Mode(raw) {
	case "", ModeFlat:
		return ModeFlat, nil
	case ModeGrouped:
		return ModeGrouped, nil
	}
	return "", apperr.FieldInvalid("mode", "Must be one of: flat, grouped")
}

// representativeKey identifies the units a single representative stands for.
type representativeKey struct {
	customized bool
	label      string
	value      string
}

/*
Flat returns one representative per distinct characteristic among the active
units.

Description: Non-customized units come first, then customized ones. Within
each partition units are ordered by label then value, and the representative
of a pair is the unit with the smallest id. units is never modified.
*/
func Flat(units []*ProductUnit) []*ProductUnit {
	active := slice.Filter(units, func(unit *ProductUnit) bool {
		return unit.IsActive
	})
	slices.SortFunc(active, compareUnits)

	standard := make([]*ProductUnit, 0, len(active))
	customized := make([]*ProductUnit, 0)
	seen := make(map[representativeKey]struct{}, len(active))

	for _, unit := range active {
		key := representativeKey{
			customized: unit.IsCustomized,
			label:      unit.Characteristics.Label,
			value:      unit.Characteristics.Value,
		}
		if _, duplicate := seen[key]; duplicate {
			continue
		}
		seen[key] = struct{}{}

		if unit.IsCustomized {
			customized = append(customized, unit)
		} else {
			standard = append(standard, unit)
		}
	}

	return append(standard, customized...)
}

// Grouped buckets the [Flat] representatives by label, each bucket sorted by
// value.
func Grouped(units []*ProductUnit) map[string][]*ProductUnit {
	groups := make(map[string][]*ProductUnit)
	for _, unit := range Flat(units) {
		label := unit.Characteristics.Label
		groups[label] = append(groups[label], unit)
	}

	for _, group := range groups {
		slices.SortStableFunc(group, func(a, b *ProductUnit) int {
			return cmp.Compare(a.Characteristics.Value, b.Characteristics.Value)
		})
	}

	return groups
}

func compareUnits(a, b *ProductUnit) int {
	return cmp.Or(
		cmp.Compare(a.Characteristics.Label, b.Characteristics.Label),
		cmp.Compare(a.Characteristics.Value, b.Characteristics.Value),
		cmp.Compare(a.ID, b.ID),
	)
}

// Variants is a projection of a listing's units in a given mode.
//
// Representatives always holds the flat projection. It encodes to JSON as a
// list in flat mode and as a label keyed object in grouped mode.
type Variants struct {
	Mode            Mode
	Representatives []*ProductUnit
}

// NewVariants projects units for mode.
func NewVariants(units []*ProductUnit, mode Mode) Variants {
	return Variants{Mode: mode, Representatives: Flat(units)}
}

func (variants Variants) MarshalJSON() ([]byte, error) {
	if variants.Mode == ModeGrouped {
		return json.Marshal(Grouped(variants.Representatives))
	}
	if variants.Representatives == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(variants.Representatives)
}
