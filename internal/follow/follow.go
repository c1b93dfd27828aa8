// Copyright (c) 2026 Mangaden. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package follow manages reading-list subscriptions between users and manga.
//
// The (user, manga) pair is the whole identity of a follow; the composite
// primary key in the database is the real concurrency guard, so concurrent
// toggles can never produce duplicate rows.
package follow

import "time"

// Follow is a user's subscription to a manga.
type Follow struct {
	UserID    string    `json:"user_id"`
	MangaID   string    `json:"manga_id"`
	CreatedAt time.Time `json:"created_at"`
}
