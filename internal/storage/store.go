// Copyright (c) 2026 Mangaden. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package storage abstracts binary image storage for chapter pages.

It decouples the chapter workflow from the physical location of page images.
The default backend writes to local disk; the [Store] interface leaves
S3-compatible backends pluggable without touching the domain layer.

Layout:

	chapters/{mangaID}/{chapterID}/{page:%03d}.{ext}

Paths stored in the database are always relative storage paths, never public
URLs. URL resolution happens at read time via [Store.URL] so the serving host
can change without a data migration.
*/
package storage

import (
	"context"
	"io"
)

// Upload is a single incoming page image, decoupled from net/http multipart
// types so workflows and tests can construct uploads directly.
type Upload struct {

	// Filename is the client-provided name; only its extension is kept.
	Filename string

	// Open returns a fresh reader over the upload's content.
	Open func() (io.ReadCloser, error)
}

// Store is the contract every image storage backend must satisfy.
type Store interface {

	/*
		StoreMany persists a batch of page images for a chapter.

		The file at input index i is written as page number i+1 (zero-padded
		to three digits). The extension is taken from the original filename
		with a jpg fallback. Invalid uploads (blank filename, unreadable
		content) are skipped and absent from the result.

		Parameters:
		  - context: context.Context
		  - uploads: []Upload (Raw incoming files, input order preserved)
		  - mangaID: string (UUID)
		  - chapterID: string (UUID)

		Returns:
		  - map[int]string: Input index to stored relative path
		  - error: Backend write failures
	*/
	StoreMany(context context.Context, uploads []Upload, mangaID, chapterID string) (map[int]string, error)

	/*
		DeleteMany removes the given relative paths. An empty input succeeds
		trivially. Missing files are not an error.
	*/
	DeleteMany(context context.Context, paths []string) error

	/*
		DeleteChapterDirectory removes a chapter's entire image directory.
	*/
	DeleteChapterDirectory(context context.Context, mangaID, chapterID string) error

	// URL resolves a stored relative path to a public URL.
	URL(path string) string

	// DiskName identifies the backend ("local", "s3", ...).
	DiskName() string
}
