// Copyright (c) 2026 Mangaden. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package chapter manages the chapter upload and moderation workflow.

Every chapter enters the system as a pending submission and only becomes
publicly readable once a moderator approves it. Page images live in the
image store; the database keeps ordered references only.

Lifecycle:

	pending --Approve--> approved
	pending --Reject---> removed
	any     --Delete---> removed

There is no path back from approved to pending.
*/
package chapter

import "time"

// # Core Entities

// Chapter is a single uploaded chapter of a manga.
type Chapter struct {
	ID         string  `json:"id"`
	MangaID    string  `json:"manga_id"`
	UploaderID string  `json:"uploader_id"`
	Number     float64 `json:"number"` // Fractional numbers (363.5) are valid
	Title      *string `json:"title,omitempty"`
	Slug       string  `json:"slug"`
	IsApproved bool    `json:"is_approved"`

	// Images are hydrated on detail reads, ordered by position.
	Images []*Image `json:"images,omitempty"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// Image is one page of a chapter.
type Image struct {
	ID        string `json:"id"`
	ChapterID string `json:"chapter_id"`

	// Position is the 1-indexed reading order, derived from the upload's
	// original input position.
	Position int `json:"position"`

	// Path is the relative storage path; never exposed directly.
	Path string `json:"-"`

	// URL is resolved from Path at read time via the image store.
	URL string `json:"url,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
