// Copyright (c) 2026 Mangaden. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// # Local Disk Backend

// LocalStore implements [Store] on the local filesystem.
type LocalStore struct {
	baseDir string
	baseURL string
	logger  *slog.Logger
}

// NewLocalStore constructs a disk-backed image store rooted at baseDir.
func NewLocalStore(baseDir, baseURL string, logger *slog.Logger) (*LocalStore, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: failed to create base directory: %w", err)
	}

	return &LocalStore{
		baseDir: baseDir,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}, nil
}

// # Store Implementation

func (store *LocalStore) StoreMany(context context.Context, uploads []Upload, mangaID, chapterID string) (map[int]string, error) {

	// Relative directory shared by every page of the chapter
	chapterDir := chapterRelativeDir(mangaID, chapterID)

	if err := os.MkdirAll(filepath.Join(store.baseDir, chapterDir), 0o755); err != nil {
		return nil, fmt.Errorf("storage: failed to create chapter directory: %w", err)
	}

	stored := make(map[int]string, len(uploads))

	for index, upload := range uploads {

		// Honour cancellation between files; page sets can be large
		if err := context.Err(); err != nil {
			return stored, err
		}

		// Skip invalid uploads; the page number of valid files must still
		// reflect the original input position
		if upload.Filename == "" || upload.Open == nil {
			continue
		}

		reader, err := upload.Open()
		if err != nil {
			store.logger.Warn("storage_upload_unreadable",
				slog.Int("index", index),
				slog.String("filename", upload.Filename),
			)
			continue
		}

		relativePath := fmt.Sprintf("%s/%03d.%s", chapterDir, index+1, extensionOf(upload.Filename))

		if err := store.writeFile(relativePath, reader); err != nil {
			_ = reader.Close()
			return stored, err
		}
		_ = reader.Close()

		stored[index] = relativePath
	}

	return stored, nil
}

func (store *LocalStore) DeleteMany(context context.Context, paths []string) error {
	for _, relativePath := range paths {
		if err := context.Err(); err != nil {
			return err
		}

		absolutePath := filepath.Join(store.baseDir, filepath.FromSlash(relativePath))
		if err := os.Remove(absolutePath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("storage: failed to delete %s: %w", relativePath, err)
		}
	}

	return nil
}

func (store *LocalStore) DeleteChapterDirectory(context context.Context, mangaID, chapterID string) error {
	if err := context.Err(); err != nil {
		return err
	}

	absoluteDir := filepath.Join(store.baseDir, filepath.FromSlash(chapterRelativeDir(mangaID, chapterID)))
	if err := os.RemoveAll(absoluteDir); err != nil {
		return fmt.Errorf("storage: failed to delete chapter directory: %w", err)
	}

	return nil
}

func (store *LocalStore) URL(path string) string {
	return store.baseURL + "/" + strings.TrimLeft(path, "/")
}

func (store *LocalStore) DiskName() string {
	return "local"
}

// # Internal Helpers

// writeFile streams a single upload to its final location on disk.
func (store *LocalStore) writeFile(relativePath string, reader io.Reader) error {
	absolutePath := filepath.Join(store.baseDir, filepath.FromSlash(relativePath))

	file, err := os.Create(absolutePath)
	if err != nil {
		return fmt.Errorf("storage: failed to create %s: %w", relativePath, err)
	}

	if _, err := io.Copy(file, reader); err != nil {
		_ = file.Close()
		_ = os.Remove(absolutePath)
		return fmt.Errorf("storage: failed to write %s: %w", relativePath, err)
	}

	if err := file.Close(); err != nil {
		return fmt.Errorf("storage: failed to close %s: %w", relativePath, err)
	}

	return nil
}

// chapterRelativeDir returns the slash-separated storage directory for a chapter.
func chapterRelativeDir(mangaID, chapterID string) string {
	return fmt.Sprintf("chapters/%s/%s", mangaID, chapterID)
}

// extensionOf extracts a lowercase extension from a filename, defaulting to jpg.
func extensionOf(filename string) string {
	extension := strings.TrimPrefix(filepath.Ext(filename), ".")
	if extension == "" {
		return "jpg"
	}
	return strings.ToLower(extension)
}
