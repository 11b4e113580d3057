// Copyright (c) 2026 Etalage. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package migrations embeds the catalog schema so binaries and tests carry
// their own copy of it.
package migrations

import "embed"

// FS holds the numbered golang-migrate files ("000001_catalog.up.sql", ...).
//
//go:embed *.sql
var FS embed.FS
