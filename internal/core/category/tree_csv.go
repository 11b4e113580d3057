// Copyright (c) 2026 Etalage. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package category

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Column names recognized in the header of a category export.
const (
	columnCategory    = "category"
	columnSubCategory = "sub_category"
)

/*
ReadTreeCSV parses a category export with a "category,sub_category" header.

Column order is taken from the header and extra columns are ignored. Rows
with an empty category are kept; [BuildTree] skips them.

Returns:
  - []TreeRow: One row per data line
  - error: A missing column or malformed CSV
*/
func ReadTreeCSV(reader io.Reader) ([]TreeRow, error) {
	records := csv.NewReader(reader)
	records.FieldsPerRecord = -1
	records.TrimLeadingSpace = true

	header, err := records.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("category: export is empty")
		}
		return nil, fmt.Errorf("category: failed to read header: %w", err)
	}

	categoryColumn, subCategoryColumn := -1, -1
	for index, name := range header {
		switch strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))) {
		case columnCategory:
			categoryColumn = index
		case columnSubCategory:
			subCategoryColumn = index
		}
	}
	if categoryColumn < 0 {
		return nil, fmt.Errorf("category: header has no %q column", columnCategory)
	}

	var rows []TreeRow
	for {
		record, err := records.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, fmt.Errorf("category: failed to read export: %w", err)
		}

		row := TreeRow{Category: cell(record, categoryColumn)}
		if subCategoryColumn >= 0 {
			row.SubCategory = cell(record, subCategoryColumn)
		}
		rows = append(rows, row)
	}
}

func cell(record []string, index int) string {
	if index >= len(record) {
		return ""
	}
	return record[index]
}
