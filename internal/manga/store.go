// Copyright (c) 2026 Mangaden. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package manga

import "context"

// # Catalogue Data Access

// Repository defines the data access contract for the manga catalogue.
type Repository interface {

	/*
		Create persists a new manga together with its author/genre relations
		in one transaction. Duplicate relation rows are ignored.

		Parameters:
		  - context: context.Context
		  - manga: *Manga (AuthorIDs/GenreIDs attached as junction rows)

		Returns:
		  - error: Storage failures
	*/
	Create(context context.Context, manga *Manga) error

	/*
		Update persists scalar metadata changes on an existing manga.

		Returns:
		  - error: apperr.NotFound if the row is missing or soft-deleted
	*/
	Update(context context.Context, manga *Manga) error

	/*
		SyncAuthors replaces the manga's author set with exactly authorIDs.
		An empty slice detaches all authors.
	*/
	SyncAuthors(context context.Context, mangaID string, authorIDs []string) error

	/*
		SyncGenres replaces the manga's genre set with exactly genreIDs.
	*/
	SyncGenres(context context.Context, mangaID string, genreIDs []string) error

	/*
		List returns a filtered catalogue page ordered newest-created first.
		A non-blank filter.Query switches to keyword matching across title,
		description, and alternative titles.

		Returns:
		  - []*Manga: Matching page
		  - int: Total matching rows
		  - error: Storage failures
	*/
	List(context context.Context, filter Filter, limit, offset int) ([]*Manga, int, error)

	/*
		Popular returns the most viewed manga.
	*/
	Popular(context context.Context, limit int) ([]*Manga, error)

	/*
		Latest returns the most recently updated manga.
	*/
	Latest(context context.Context, limit int) ([]*Manga, error)

	/*
		FindBySlug returns the manga with the given slug. Soft-deleted rows
		are excluded unless includeDeleted is set.

		Returns:
		  - *Manga: Hydrated entity with relation IDs
		  - error: apperr.NotFound if missing
	*/
	FindBySlug(context context.Context, slug string, includeDeleted bool) (*Manga, error)

	/*
		FindByID returns the manga with the given ID, excluding soft-deleted rows.
	*/
	FindByID(context context.Context, id string) (*Manga, error)

	/*
		IncrementViewCount atomically bumps the view counter.
	*/
	IncrementViewCount(context context.Context, id string) error

	/*
		SoftDelete marks a manga as deleted without physical row removal.
	*/
	SoftDelete(context context.Context, id string) error

	/*
		SlugExists reports whether any row (deleted or not) holds the slug.
	*/
	SlugExists(context context.Context, slug string) (bool, error)
}
