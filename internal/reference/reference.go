// Copyright (c) 2026 Mangaden. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package reference manages the catalogue's lookup entities: authors and
genres.

Both share one shape (name + slug), so a single service covers them,
parameterised by [Kind]. The entries form the vocabulary the catalogue
attaches to manga for discovery and filtering.
*/
package reference

import "time"

// # Lookup Domain

// Kind selects which lookup table an operation targets.
type Kind string

const (
	KindAuthor Kind = "author"
	KindGenre  Kind = "genre"
)

// Entry is a single author or genre.
type Entry struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Global field names for validation
const (
	FieldName = "name"
)
