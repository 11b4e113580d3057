// Copyright (c) 2026 Etalage. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package category

import "strings"

// TreeRow is one denormalized row of a category export.
type TreeRow struct {
	Category    string `json:"category"`
	SubCategory string `json:"sub_category"`
}

// TreeNode is a root category name with the names of its children.
type TreeNode struct {
	Name     string   `json:"name"`
	Children []string `json:"children"`
}

/*
BuildTree groups rows into root categories and their distinct children.

Roots appear in the order their name is first seen, and so do the children
within a root. Names are trimmed; rows with a blank category and blank
sub-category values are skipped.
*/
func BuildTree(rows []TreeRow) []TreeNode {
	var nodes []TreeNode
	rootIndex := make(map[string]int)
	seenChild := make(map[string]map[string]struct{})

	for _, row := range rows {
		rootName := strings.TrimSpace(row.Category)
		if rootName == "" {
			continue
		}

		index, exists := rootIndex[rootName]
		if !exists {
			index = len(nodes)
			rootIndex[rootName] = index
			seenChild[rootName] = make(map[string]struct{})
			nodes = append(nodes, TreeNode{Name: rootName, Children: []string{}})
		}

		childName := strings.TrimSpace(row.SubCategory)
		if childName == "" {
			continue
		}
		if _, duplicate := seenChild[rootName][childName]; duplicate {
			continue
		}

		seenChild[rootName][childName] = struct{}{}
		nodes[index].Children = append(nodes[index].Children, childName)
	}

	return nodes
}

// nest arranges a flat category list into roots carrying their children.
// Children whose parent is not in the list are dropped.
func nest(categories []*Category) []*Category {
	roots := make([]*Category, 0)
	byID := make(map[string]*Category, len(categories))

	for _, category := range categories {
		if category.IsRoot() {
			category.Children = []*Category{}
			roots = append(roots, category)
			byID[category.ID] = category
		}
	}

	for _, category := range categories {
		if category.IsRoot() {
			continue
		}
		if parent, ok := byID[*category.ParentID]; ok {
			parent.Children = append(parent.Children, category)
		}
	}

	return roots
}
