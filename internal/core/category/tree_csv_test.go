// Copyright (c) 2026 Etalage. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package category_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/etalage/internal/core/category"
)

/*
TestReadTreeCSV reads exports in any column order.
*/
func TestReadTreeCSV(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []category.TreeRow
	}{
		{
			name:  "standard",
			input: "category,sub_category\nEpicerie,Confitures\nEpicerie,Miels\nBoissons,\n",
			want: []category.TreeRow{
				{Category: "Epicerie", SubCategory: "Confitures"},
				{Category: "Epicerie", SubCategory: "Miels"},
				{Category: "Boissons", SubCategory: ""},
			},
		},
		{
			name:  "reordered_with_extra_column",
			input: "\ufeffSub_Category,notes,Category\nThés,bio,Boissons\n",
			want:  []category.TreeRow{{Category: "Boissons", SubCategory: "Thés"}},
		},
		{
			name:  "short_record",
			input: "category,sub_category\nEpicerie\n",
			want:  []category.TreeRow{{Category: "Epicerie"}},
		},
		{
			name:  "header_only",
			input: "category,sub_category\n",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := category.ReadTreeCSV(strings.NewReader(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, rows)
		})
	}
}

/*
TestReadTreeCSV_Invalid rejects exports without a category column.
*/
func TestReadTreeCSV_Invalid(t *testing.T) {
	for _, input := range []string{"", "name,parent\nEpicerie,\n", "category\n\"unterminated\n"} {
		_, err := category.ReadTreeCSV(strings.NewReader(input))
		assert.Error(t, err)
	}
}
