// Copyright (c) 2026 Mangaden. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package storage_test

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/mangaden/internal/storage"
)

func newTestStore(t *testing.T) (*storage.LocalStore, string) {
	t.Helper()

	baseDir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	store, err := storage.NewLocalStore(baseDir, "http://localhost:8080/static", logger)
	require.NoError(t, err)

	return store, baseDir
}

func upload(filename, content string) storage.Upload {
	return storage.Upload{
		Filename: filename,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(content)), nil
		},
	}
}

/*
TestLocalStore_StoreMany verifies paths, page numbering, and content round-trip.
*/
func TestLocalStore_StoreMany(t *testing.T) {
	store, baseDir := newTestStore(t)
	ctx := context.Background()

	uploads := []storage.Upload{
		upload("cover.PNG", "first-page"),
		upload("page2.jpeg", "second-page"),
	}

	stored, err := store.StoreMany(ctx, uploads, "manga-1", "chapter-1")
	require.NoError(t, err)
	require.Len(t, stored, 2)

	// 1. Paths follow the chapters/{manga}/{chapter}/{page}.{ext} layout,
	//    with extensions lowercased
	assert.Equal(t, "chapters/manga-1/chapter-1/001.png", stored[0])
	assert.Equal(t, "chapters/manga-1/chapter-1/002.jpeg", stored[1])

	// 2. Content actually landed on disk
	content, err := os.ReadFile(filepath.Join(baseDir, filepath.FromSlash(stored[0])))
	require.NoError(t, err)
	assert.Equal(t, "first-page", string(content))
}

/*
TestLocalStore_StoreMany_SkipsInvalid verifies that invalid uploads are
absent from the result while valid files keep their input position.
*/
func TestLocalStore_StoreMany_SkipsInvalid(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	uploads := []storage.Upload{
		upload("", "nameless"),
		upload("kept.png", "kept-content"),
	}

	stored, err := store.StoreMany(ctx, uploads, "manga-1", "chapter-1")
	require.NoError(t, err)

	// Index 0 is skipped; index 1 keeps page number 2
	assert.Len(t, stored, 1)
	assert.NotContains(t, stored, 0)
	assert.Equal(t, "chapters/manga-1/chapter-1/002.png", stored[1])
}

/*
TestLocalStore_StoreMany_ExtensionFallback verifies the jpg fallback for
filenames without an extension.
*/
func TestLocalStore_StoreMany_ExtensionFallback(t *testing.T) {
	store, _ := newTestStore(t)

	stored, err := store.StoreMany(context.Background(), []storage.Upload{upload("raw-scan", "bytes")}, "m", "c")
	require.NoError(t, err)

	assert.Equal(t, "chapters/m/c/001.jpg", stored[0])
}

/*
TestLocalStore_DeleteMany verifies single-file deletion and tolerance of
missing paths.
*/
func TestLocalStore_DeleteMany(t *testing.T) {
	store, baseDir := newTestStore(t)
	ctx := context.Background()

	stored, err := store.StoreMany(ctx, []storage.Upload{upload("a.png", "a")}, "m", "c")
	require.NoError(t, err)

	// 1. Empty input trivially succeeds
	assert.NoError(t, store.DeleteMany(ctx, nil))

	// 2. Deleting stored and already-missing paths succeeds
	err = store.DeleteMany(ctx, []string{stored[0], "chapters/m/c/999.png"})
	require.NoError(t, err)

	_, statErr := os.Stat(filepath.Join(baseDir, filepath.FromSlash(stored[0])))
	assert.True(t, os.IsNotExist(statErr))
}

/*
TestLocalStore_DeleteChapterDirectory verifies whole-directory teardown.
*/
func TestLocalStore_DeleteChapterDirectory(t *testing.T) {
	store, baseDir := newTestStore(t)
	ctx := context.Background()

	_, err := store.StoreMany(ctx, []storage.Upload{upload("a.png", "a"), upload("b.png", "b")}, "m", "c")
	require.NoError(t, err)

	require.NoError(t, store.DeleteChapterDirectory(ctx, "m", "c"))

	_, statErr := os.Stat(filepath.Join(baseDir, "chapters", "m", "c"))
	assert.True(t, os.IsNotExist(statErr))
}

/*
TestLocalStore_URL verifies public URL resolution from relative paths.
*/
func TestLocalStore_URL(t *testing.T) {
	store, _ := newTestStore(t)

	assert.Equal(t, "http://localhost:8080/static/chapters/m/c/001.png", store.URL("chapters/m/c/001.png"))
	assert.Equal(t, "local", store.DiskName())
}
