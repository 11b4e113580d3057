// Copyright (c) 2026 Etalage. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package listing

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/taibuivan/etalage/internal/core/image"
	"github.com/taibuivan/etalage/internal/platform/apperr"
	"github.com/taibuivan/etalage/pkg/pointer"
	"github.com/taibuivan/etalage/pkg/uuid"
)

// maxStock bounds the units a single option may create.
const maxStock = 1000

// OptionSpec declares one option value of a listing and its stock.
type OptionSpec struct {
	Label           string          `json:"label"`
	Value           string          `json:"value"`
	Stock           *int            `json:"stock"`
	Images          []image.Input   `json:"images"`
	IsCustomized    bool            `json:"is_customized"`
	IsAvailable     *bool           `json:"is_available"`
	AdditionalPrice decimal.Decimal `json:"additional_price"`

	// Characteristics overrides Label and Value when present.
	Characteristics *Characteristics `json:"characteristics"`
}

// ResolveFunc turns an image input into a stored image. field is the JSON
// path reported when the input is unusable.
type ResolveFunc func(context context.Context, field string, input image.Input) (*image.Image, error)

// Rejection reports an option skipped by [Expand].
type Rejection struct {
	Index  int    `json:"index"`
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// Expansion is the outcome of [Expand]: the units to persist and the options
// that could not produce any.
type Expansion struct {
	Units    []*ProductUnit
	Rejected []Rejection
}

/*
Expand materializes options into product units.

Description: Each option yields Stock sibling units carrying the same
characteristics. A missing or zero stock yields exactly one unit. Images are
resolved once per option and the resulting records are shared by every
sibling. An option failing validation is recorded in Rejected and skipped;
the remaining options are still expanded.

Parameters:
  - context: context.Context
  - options: []OptionSpec
  - resolve: ResolveFunc (bound to the caller's transaction)

Returns:
  - Expansion: Units in option order, then ordinal
  - error: Only infrastructure failures; validation problems become rejections
*/
func Expand(context context.Context, options []OptionSpec, resolve ResolveFunc) (Expansion, error) {
	expansion := Expansion{Units: []*ProductUnit{}, Rejected: []Rejection{}}

	for index, option := range options {
		prefix := fmt.Sprintf("%s[%d]", FieldOptions, index)

		characteristics, stock, rejection := normalizeOption(index, prefix, option)
		if rejection != nil {
			expansion.Rejected = append(expansion.Rejected, *rejection)
			continue
		}

		images, err := resolveImages(context, prefix, option.Images, resolve)
		if err != nil {
			rejection, ok := rejectionFrom(index, prefix+".images", err)
			if !ok {
				return Expansion{}, err
			}
			expansion.Rejected = append(expansion.Rejected, rejection)
			continue
		}

		isAvailable := pointer.Fallback(option.IsAvailable, true)
		for range stock {
			expansion.Units = append(expansion.Units, &ProductUnit{
				ID:              uuid.New(),
				Characteristics: characteristics,
				AdditionalPrice: option.AdditionalPrice,
				IsCustomized:    option.IsCustomized,
				IsAvailable:     isAvailable,
				IsActive:        true,
				Images:          images,
			})
		}
	}

	return expansion, nil
}

// normalizeOption applies the option defaults and returns the unit count.
func normalizeOption(index int, prefix string, option OptionSpec) (Characteristics, int, *Rejection) {
	reject := func(field, reason string) (Characteristics, int, *Rejection) {
		return Characteristics{}, 0, &Rejection{Index: index, Field: prefix + "." + field, Reason: reason}
	}

	characteristics := Characteristics{Label: option.Label, Value: option.Value}
	if option.Characteristics != nil {
		characteristics = *option.Characteristics
	}

	characteristics.Label = strings.TrimSpace(characteristics.Label)
	if characteristics.Label == "" {
		characteristics.Label = DefaultLabel
	}

	// The buyer supplies the value of a customized unit at order time.
	characteristics.Value = strings.TrimSpace(characteristics.Value)
	if option.IsCustomized {
		characteristics.Value = ""
	}

	if utf8.RuneCountInString(characteristics.Label) > maxLabelLength {
		return reject("label", fmt.Sprintf("Maximum %d characters", maxLabelLength))
	}
	if utf8.RuneCountInString(characteristics.Value) > maxValueLength {
		return reject("value", fmt.Sprintf("Maximum %d characters", maxValueLength))
	}

	stock := pointer.Val(option.Stock)
	switch {
	case stock < 0:
		return reject("stock", "Must be zero or more")
	case stock > maxStock:
		return reject("stock", fmt.Sprintf("Must be at most %d", maxStock))
	case stock == 0:
		stock = 1
	}

	if option.AdditionalPrice.IsNegative() {
		return reject("additional_price", "Must be zero or more")
	}

	return characteristics, stock, nil
}

func resolveImages(context context.Context, prefix string, inputs []image.Input, resolve ResolveFunc) ([]*image.Image, error) {
	images := make([]*image.Image, 0, len(inputs))
	seen := make(map[string]struct{}, len(inputs))

	for index, input := range inputs {
		resolved, err := resolve(context, fmt.Sprintf("%s.images[%d]", prefix, index), input)
		if err != nil {
			return nil, err
		}
		if _, duplicate := seen[resolved.ID]; duplicate {
			continue
		}
		seen[resolved.ID] = struct{}{}
		images = append(images, resolved)
	}

	return images, nil
}

// rejectionFrom converts a validation failure into a [Rejection]. Any other
// error is reported as not ok and must abort the caller.
func rejectionFrom(index int, field string, err error) (Rejection, bool) {
	appErr := apperr.As(err)
	if appErr == nil || appErr.Code != apperr.CodeValidation {
		return Rejection{}, false
	}

	rejection := Rejection{Index: index, Field: field, Reason: appErr.Message}
	if len(appErr.Details) > 0 {
		rejection.Field = appErr.Details[0].Field
		rejection.Reason = appErr.Details[0].Message
	}
	return rejection, true
}
