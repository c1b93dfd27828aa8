// Copyright (c) 2026 Mangaden. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package chapter

import "context"

// # Chapter & Image Data Access

// Repository defines the data access contract for chapters and their images.
type Repository interface {

	/*
		CreateWithImages persists a new chapter and its image rows in one
		transaction. Either everything lands or nothing does.

		Parameters:
		  - context: context.Context
		  - chapter: *Chapter
		  - images: []*Image (Ordered page references)

		Returns:
		  - error: Storage failures; Conflict on duplicate (manga, number)
	*/
	CreateWithImages(context context.Context, chapter *Chapter, images []*Image) error

	/*
		UpdateMeta persists number/title/slug changes on an existing chapter.

		Returns:
		  - error: apperr.NotFound if the row is missing
	*/
	UpdateMeta(context context.Context, chapter *Chapter) error

	/*
		UpdateWithImages persists number/title/slug changes and swaps the full
		image set in one transaction. A failed swap rolls the metadata back
		with it.

		Parameters:
		  - context: context.Context
		  - chapter: *Chapter (Merged state to persist)
		  - images: []*Image (Full replacement page set)

		Returns:
		  - error: apperr.NotFound if the row is missing; storage failures
	*/
	UpdateWithImages(context context.Context, chapter *Chapter, images []*Image) error

	/*
		Delete hard-deletes the chapter row and its image rows in one
		transaction.

		Returns:
		  - error: apperr.NotFound if the chapter is missing
	*/
	Delete(context context.Context, chapterID string) error

	/*
		SetApproved flips the moderation flag to approved.
	*/
	SetApproved(context context.Context, chapterID string) error

	/*
		FindByID returns a chapter with its images regardless of moderation
		state. Used by the moderation surface.
	*/
	FindByID(context context.Context, id string) (*Chapter, error)

	/*
		FindByNumber returns the chapter of a manga by its number. When
		approvedOnly is set, pending chapters are invisible.
	*/
	FindByNumber(context context.Context, mangaID string, number float64, approvedOnly bool) (*Chapter, error)

	/*
		ListApproved returns a manga's approved chapters ordered by number
		ascending, without images.
	*/
	ListApproved(context context.Context, mangaID string) ([]*Chapter, error)

	/*
		ListPending returns the moderation queue, newest submissions first.

		Returns:
		  - []*Chapter: Pending page
		  - int: Total pending count
		  - error: Storage failures
	*/
	ListPending(context context.Context, limit, offset int) ([]*Chapter, int, error)

	/*
		NumberExists reports whether the manga already has a chapter with the
		given number, excluding excludeID when non-empty.
	*/
	NumberExists(context context.Context, mangaID string, number float64, excludeID string) (bool, error)

	/*
		ListImages returns a chapter's image rows ordered by position.
	*/
	ListImages(context context.Context, chapterID string) ([]*Image, error)
}
