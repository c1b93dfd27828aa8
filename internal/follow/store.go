// Copyright (c) 2026 Mangaden. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package follow

import (
	"context"

	"github.com/taibuivan/mangaden/internal/manga"
)

// # Follow Data Access

// Repository defines the data access contract for follows.
type Repository interface {

	/*
		Insert records a follow. Duplicate pairs are conflict no-ops, so
		the call is idempotent.
	*/
	Insert(context context.Context, userID, mangaID string) error

	/*
		Delete removes a follow. Removing an absent pair is not an error.
	*/
	Delete(context context.Context, userID, mangaID string) error

	/*
		Exists reports whether the user currently follows the manga.
	*/
	Exists(context context.Context, userID, mangaID string) (bool, error)

	/*
		ListByUser returns the user's followed manga, most recently
		followed first.

		Returns:
		  - []*manga.Manga: Followed catalogue entries
		  - int: Total followed count
		  - error: Storage failures
	*/
	ListByUser(context context.Context, userID string, limit, offset int) ([]*manga.Manga, int, error)
}
