// Copyright (c) 2026 Mangaden. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package manga defines the core catalogue domain for Mangaden.

It manages the lifecycle of serialised publications including metadata,
relations to authors and genres, and reading metrics.

Core Responsibility:

  - Catalogue: Defines publication statuses (Ongoing, Completed, Hiatus, Cancelled).
  - Discovery: Keyword search, popularity and recency rankings.
  - Analytics: Tracks view counts for ranking.

This package acts as the source of truth for all content-related data models.
*/
package manga

import "time"

// # Domain Enums

// Status represents the publication status of a manga.
type Status string

const (
	// StatusOngoing indicates the publication is actively updating.
	StatusOngoing Status = "ongoing"

	// StatusCompleted indicates no further chapters are expected.
	StatusCompleted Status = "completed"

	// StatusHiatus indicates the publication is paused indefinitely.
	StatusHiatus Status = "hiatus"

	// StatusCancelled indicates the publication has been permanently discontinued.
	StatusCancelled Status = "cancelled"
)

// IsValid reports whether s is a recognised [Status] value.
func (s Status) IsValid() bool {
	switch s {
	case StatusOngoing, StatusCompleted, StatusHiatus, StatusCancelled:
		return true
	}
	return false
}

// # Core Entities

// Manga is the central aggregate of the Mangaden catalogue.
type Manga struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Slug        string `json:"slug"` // URL-safe identifier
	Description string `json:"description"`
	Status      Status `json:"status"`
	CoverImage  string `json:"cover_image,omitempty"`

	// AltTitles maps a locale tag to alternative titles in that locale
	// (e.g. "ja" -> romanised and native variants).
	AltTitles map[string][]string `json:"alt_titles,omitempty"`

	// # Junction IDs (Input only)
	AuthorIDs []string `json:"author_ids,omitempty"`
	GenreIDs  []string `json:"genre_ids,omitempty"`

	// # Computed Metrics
	ViewCount     int64   `json:"view_count"`
	AverageRating float64 `json:"average_rating"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// IsDeleted reports whether the manga has been soft-deleted.
func (m *Manga) IsDeleted() bool {
	return m.DeletedAt != nil
}

// # Query Types

// Filter narrows catalogue listings.
type Filter struct {

	// Query matches against title, description, and alternative titles.
	// Blank means unfiltered.
	Query string

	// Status restricts to one publication status when set.
	Status Status

	// GenreSlug restricts to manga attached to the given genre.
	GenreSlug string
}

// UpdateInput carries a partial update. Nil pointers leave the column
// untouched; a non-nil relation slice (even empty) syncs to exactly that set.
type UpdateInput struct {
	Title       *string
	Description *string
	Status      *Status
	CoverImage  *string
	AltTitles   map[string][]string

	AuthorIDs []string
	GenreIDs  []string

	// SyncAuthors / SyncGenres distinguish "absent" from "empty set".
	SyncAuthors bool
	SyncGenres  bool
}
