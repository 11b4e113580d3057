// Copyright (c) 2026 Etalage. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package listing

import (
	"errors"
	"net/url"

	"github.com/taibuivan/etalage/internal/platform/apperr"
	"github.com/taibuivan/etalage/internal/platform/validate"
	"github.com/taibuivan/etalage/pkg/query"
)

/*
ParseFilter decodes the listing search parameters.

Request:
  - name, category_name, manufacturer: string (substrings)
  - categories: string (comma separated UUIDs)
  - price_min, price_max: decimal
  - language: string (ISO 639 code)
  - kind: other | food

Returns:
  - Filter: The typed filter
  - error: A VALIDATION_ERROR naming every malformed parameter
*/
func ParseFilter(values url.Values) (Filter, error) {
	decoder := query.NewDecoder(values)

	filter := Filter{
		Name:         decoder.String("name"),
		CategoryName: decoder.String("category_name"),
		CategoryIDs:  decoder.UUIDs("categories"),
		Manufacturer: decoder.String("manufacturer"),
		PriceMin:     decoder.Decimal("price_min"),
		PriceMax:     decoder.Decimal("price_max"),
		Kind:         Kind(decoder.OneOf("kind", string(KindOther), string(KindFood))),
	}

	if language := decoder.String("language"); language != "" {
		normalized, err := validate.NormalizeLanguage(language)
		if err != nil {
			decoder.Fail("language", "Must be an ISO 639 language code")
		}
		filter.Language = normalized
	}

	if filter.PriceMin != nil && filter.PriceMin.IsNegative() {
		decoder.Fail("price_min", "Must be zero or more")
	}
	if filter.PriceMin != nil && filter.PriceMax != nil && filter.PriceMax.LessThan(*filter.PriceMin) {
		decoder.Fail("price_max", "Must not be below price_min")
	}

	if err := decoder.Err(); err != nil {
		return Filter{}, toValidationError(err)
	}
	return filter, nil
}

func toValidationError(err error) error {
	var fieldErrors query.Errors
	if !errors.As(err, &fieldErrors) {
		return apperr.Internal(err)
	}

	details := make([]apperr.FieldError, 0, len(fieldErrors))
	for _, fieldError := range fieldErrors {
		details = append(details, apperr.FieldError{Field: fieldError.Field, Message: fieldError.Message})
	}
	return apperr.ValidationError("Invalid query parameters", details...)
}
