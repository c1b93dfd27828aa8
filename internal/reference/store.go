// Copyright (c) 2026 Mangaden. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package reference

import "context"

// # Lookup Data Access

// Repository defines the data access contract for lookup entries.
type Repository interface {

	// List returns a page of entries ordered by name.
	List(context context.Context, kind Kind, limit, offset int) ([]*Entry, int, error)

	// FindBySlug returns the entry with the given slug.
	FindBySlug(context context.Context, kind Kind, slug string) (*Entry, error)

	// Create persists a new entry.
	Create(context context.Context, kind Kind, entry *Entry) error

	// Update persists name/slug changes on an existing entry.
	Update(context context.Context, kind Kind, entry *Entry) error

	// SlugExists reports whether the slug is taken, excluding excludeID
	// when non-empty.
	SlugExists(context context.Context, kind Kind, slug, excludeID string) (bool, error)
}
