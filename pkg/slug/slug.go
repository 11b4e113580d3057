// Copyright (c) 2026 Etalage. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package slug turns category names into the ASCII path segments used in
// storefront URLs ("Épicerie fine" -> "epicerie-fine").
package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxLength keeps generated slugs well inside the VARCHAR(255) column even
// after a parent slug and a random suffix are appended.
const MaxLength = 80

// ligatures are letters NFD does not decompose but catalog names use
// ("Bœuf", "Smørrebrød", "Weißwurst").
var ligatures = strings.NewReplacer(
	"œ", "oe", "Œ", "oe",
	"æ", "ae", "Æ", "ae",
	"ß", "ss",
	"ø", "o", "Ø", "o",
	"ł", "l", "Ł", "l",
	"đ", "d", "Đ", "d",
)

/*
From folds name to lowercase ASCII words joined by single hyphens.

Accents are stripped, ligatures are spelled out and every run of other
characters becomes one hyphen. The result is cut at a word boundary when it
exceeds [MaxLength]. A name with no letters or digits yields "".
*/
func From(name string) string {
	stripped, _, err := transform.String(
		transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC),
		ligatures.Replace(name),
	)
	if err != nil {
		stripped = name
	}

	var builder strings.Builder
	pendingHyphen := false

	for _, r := range strings.ToLower(stripped) {
		if r > unicode.MaxASCII || !(unicode.IsLetter(r) || unicode.IsDigit(r)) {
			pendingHyphen = builder.Len() > 0
			continue
		}
		if pendingHyphen {
			builder.WriteByte('-')
			pendingHyphen = false
		}
		builder.WriteRune(r)
	}

	return truncate(builder.String())
}

func truncate(value string) string {
	if len(value) <= MaxLength {
		return value
	}

	cut := value[:MaxLength]
	if boundary := strings.LastIndexByte(cut, '-'); boundary > 0 {
		cut = cut[:boundary]
	}
	return strings.TrimRight(cut, "-")
}
