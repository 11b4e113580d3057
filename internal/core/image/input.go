// Copyright (c) 2026 Etalage. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package image

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"
)

// Kind tells the [Resolver] how to interpret an [Input].
type Kind int

const (
	KindRaw Kind = iota + 1
	KindDataURI
	KindBase64
	KindRemoteURL
	KindStored
)

func (k Kind) String() string {
	switch k {
	case KindRaw:
		return "raw"
	case KindDataURI:
		return "data_uri"
	case KindBase64:
		return "base64"
	case KindRemoteURL:
		return "remote_url"
	case KindStored:
		return "stored"
	}
	return "unknown"
}

// Input is an image as supplied by a caller, already classified.
//
// The zero value is invalid; build one with [Raw], [DataURI], [Base64],
// [RemoteURL], [Stored] or [ParseInput].
type Input struct {
	kind Kind
	data []byte
	text string
}

// Raw wraps image bytes.
func Raw(data []byte) Input { return Input{kind: KindRaw, data: data} }

// DataURI wraps a "data:image/...;base64,..." string.
func DataURI(value string) Input { return Input{kind: KindDataURI, text: value} }

// Base64 wraps base64 image bytes without a data URI prefix.
func Base64(value string) Input { return Input{kind: KindBase64, text: value} }

// RemoteURL wraps an externally hosted http(s) image.
func RemoteURL(value string) Input { return Input{kind: KindRemoteURL, text: value} }

// Stored references an image the catalog already holds.
func Stored(id string) Input { return Input{kind: KindStored, text: id} }

// Kind reports how the input will be resolved.
func (input Input) Kind() Kind { return input.kind }

// Text returns the string payload (URI, base64, URL or id). It is empty for raw input.
func (input Input) Text() string { return input.text }

/*
ParseInput classifies a string image value received over the API.

  - "data:" prefix: data URI
  - "http://" or "https://" prefix: remote URL
  - a UUID: an image id returned by an earlier response
  - anything else: bare base64
*/
func ParseInput(value string) Input {
	trimmed := strings.TrimSpace(value)
	lower := strings.ToLower(trimmed)

	switch {
	case strings.HasPrefix(lower, "data:"):
		return DataURI(trimmed)
	case strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "https://"):
		return RemoteURL(trimmed)
	}

	if id, err := uuid.Parse(trimmed); err == nil {
		return Stored(id.String())
	}

	return Base64(trimmed)
}

// UnmarshalJSON accepts either a string (see [ParseInput]) or an object
// carrying the id of a stored image: {"id": "..."}.
func (input *Input) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*input = ParseInput(text)
		return nil
	}

	var reference struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(data, &reference); err != nil {
		return err
	}

	*input = Stored(strings.TrimSpace(reference.ID))
	return nil
}
