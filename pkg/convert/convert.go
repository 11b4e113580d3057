// Copyright (c) 2026 Etalage. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package convert provides lenient string conversions for query parameters
that fall back to a default instead of failing the request.

Filters that must reject malformed input go through [query.Decoder] instead.
*/
package convert

import "strconv"

// ToIntD converts a string to an int, returning def if it is empty or malformed.
func ToIntD(str string, def int) int {
	if str == "" {
		return def
	}

	if v, err := strconv.Atoi(str); err == nil {
		return v
	}

	return def
}
