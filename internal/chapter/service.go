// Copyright (c) 2026 Mangaden. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package chapter

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"

	"github.com/taibuivan/mangaden/internal/manga"
	"github.com/taibuivan/mangaden/internal/platform/apperr"
	"github.com/taibuivan/mangaden/internal/platform/constants"
	"github.com/taibuivan/mangaden/internal/platform/dberr"
	"github.com/taibuivan/mangaden/internal/platform/validate"
	"github.com/taibuivan/mangaden/internal/storage"
	"github.com/taibuivan/mangaden/pkg/slice"
	"github.com/taibuivan/mangaden/pkg/slug"
	"github.com/taibuivan/mangaden/pkg/uuid"
)

const (
	FieldNumber = "number"
	FieldImages = "images"
)

// # Input Types

// CreateInput carries a new chapter submission.
type CreateInput struct {
	Number     float64
	Title      *string
	UploaderID string
	Uploads    []storage.Upload
}

// UpdateInput carries a partial chapter edit. TitleProvided distinguishes
// "leave the title alone" from "clear the title" (provided but blank).
type UpdateInput struct {
	Number        *float64
	Title         *string
	TitleProvided bool

	// A non-empty upload set replaces every existing page. Empty leaves
	// the current pages untouched.
	Uploads []storage.Upload
}

// # Service Layer

// Service orchestrates the chapter upload and moderation workflow.
type Service struct {
	chapterRepo Repository
	imageStore  storage.Store
	logger      *slog.Logger
}

// NewService constructs a new [Service] with its repository and image store.
func NewService(chapterRepo Repository, imageStore storage.Store, logger *slog.Logger) *Service {
	return &Service{
		chapterRepo: chapterRepo,
		imageStore:  imageStore,
		logger:      logger,
	}
}

// # Submission

/*
Create registers a new chapter submission for a manga.

Description: The duplicate-number precondition is checked before anything
touches storage. Page files are stored first (the storage path embeds the
chapter ID, so the ID is generated up front), then the chapter row and its
image rows land in one transaction. Any failure after files were stored
triggers compensating deletion of exactly those files; the original error
is returned untouched.

Chapters are always created pending, whatever the caller's role. Approval
is a separate moderation act.

Parameters:
  - context: context.Context
  - owner: *manga.Manga (Resolved, non-deleted target)
  - input: CreateInput

Returns:
  - *Chapter: The persisted pending chapter with image URLs
  - error: Validation, Conflict, storage, or persistence errors
*/
func (service *Service) Create(context context.Context, owner *manga.Manga, input CreateInput) (*Chapter, error) {

	// Business attribute validation
	validator := &validate.Validator{}
	validator.Custom(FieldNumber, input.Number < 0, "Chapter number cannot be negative")
	validator.Custom(FieldImages, len(input.Uploads) == 0, "At least one page image is required")
	validator.Custom(FieldImages, len(input.Uploads) > constants.MaxPagesPerChapter, "Too many page images")

	if err := validator.Err(); err != nil {
		return nil, err
	}

	// Duplicate precondition BEFORE any storage mutation
	exists, err := service.chapterRepo.NumberExists(context, owner.ID, input.Number, "")
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperr.Conflict("Chapter number already exists for this manga")
	}

	// The storage layout needs the chapter identity before the row exists
	chapterID := uuid.New()

	storedPaths, err := service.imageStore.StoreMany(context, input.Uploads, owner.ID, chapterID)
	if err != nil {
		service.cleanupFiles(context, pathValues(storedPaths))
		return nil, err
	}
	if len(storedPaths) == 0 {
		return nil, validate.RequiredError(FieldImages, "No valid page images in upload")
	}

	chapter := &Chapter{
		ID:         chapterID,
		MangaID:    owner.ID,
		UploaderID: input.UploaderID,
		Number:     input.Number,
		Title:      input.Title,
		Slug:       chapterSlug(owner.Title, input.Number),
		IsApproved: false,
	}
	images := buildImages(chapterID, storedPaths)

	if err := service.chapterRepo.CreateWithImages(context, chapter, images); err != nil {
		service.cleanupFiles(context, pathValues(storedPaths))

		// A concurrent submission can slip past the precheck; the unique
		// constraint on (manga, number) is the backstop
		if dberr.IsUniqueViolation(err) {
			return nil, apperr.Conflict("Chapter number already exists for this manga")
		}
		return nil, err
	}

	chapter.Images = images
	service.hydrateURLs(chapter)

	service.logger.Info("chapter_created",
		slog.String("chapter_id", chapter.ID),
		slog.String("manga_id", owner.ID),
		slog.Float64("number", chapter.Number),
		slog.Int("pages", len(images)),
	)

	return chapter, nil
}

// # Editing

/*
Update applies a partial edit to an existing chapter.

Description: Number changes re-check uniqueness. A provided-but-blank title
clears it. A non-empty upload set fully replaces the page images: new files
are stored, then the metadata update and the row swap commit in one
transaction, and only after commit are the old files removed (minus any
path the new set reuses). A failed attempt cleans up the newly stored files
only and leaves the persisted chapter entirely untouched, metadata included.

Parameters:
  - context: context.Context
  - owner: *manga.Manga
  - chapter: *Chapter (Current state)
  - input: UpdateInput

Returns:
  - *Chapter: The updated chapter with image URLs
  - error: Validation, Conflict, storage, or persistence errors
*/
func (service *Service) Update(context context.Context, owner *manga.Manga, chapter *Chapter, input UpdateInput) (*Chapter, error) {

	// Metadata changes
	if input.Number != nil && *input.Number != chapter.Number {
		if *input.Number < 0 {
			return nil, validate.RequiredError(FieldNumber, "Chapter number cannot be negative")
		}

		exists, err := service.chapterRepo.NumberExists(context, chapter.MangaID, *input.Number, chapter.ID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, apperr.Conflict("Chapter number already exists for this manga")
		}

		chapter.Number = *input.Number
		chapter.Slug = chapterSlug(owner.Title, chapter.Number)
	}

	if input.TitleProvided {
		if input.Title == nil || *input.Title == "" {
			chapter.Title = nil
		} else {
			chapter.Title = input.Title
		}
	}

	// Page replacement rides the same transaction as the metadata, so a
	// failed swap never leaves a half-updated chapter behind
	if len(input.Uploads) > 0 {
		if len(input.Uploads) > constants.MaxPagesPerChapter {
			return nil, validate.RequiredError(FieldImages, "Too many page images")
		}

		oldImages, err := service.chapterRepo.ListImages(context, chapter.ID)
		if err != nil {
			return nil, err
		}

		storedPaths, err := service.imageStore.StoreMany(context, input.Uploads, chapter.MangaID, chapter.ID)
		if err != nil {
			service.cleanupFiles(context, pathValues(storedPaths))
			return nil, err
		}
		if len(storedPaths) == 0 {
			return nil, validate.RequiredError(FieldImages, "No valid page images in upload")
		}

		newImages := buildImages(chapter.ID, storedPaths)

		if err := service.chapterRepo.UpdateWithImages(context, chapter, newImages); err != nil {
			service.cleanupFiles(context, pathValues(storedPaths))
			return nil, err
		}

		// New pages reuse positional filenames, so only delete old paths
		// the replacement set does not occupy
		newPathSet := make(map[string]struct{}, len(newImages))
		for _, image := range newImages {
			newPathSet[image.Path] = struct{}{}
		}

		obsolete := slice.Filter(oldImages, func(image *Image) bool {
			_, reused := newPathSet[image.Path]
			return !reused
		})
		service.cleanupFiles(context, slice.Map(obsolete, func(image *Image) string {
			return image.Path
		}))

		chapter.Images = newImages
	} else {
		if err := service.chapterRepo.UpdateMeta(context, chapter); err != nil {
			return nil, err
		}

		if len(chapter.Images) == 0 {
			images, err := service.chapterRepo.ListImages(context, chapter.ID)
			if err != nil {
				return nil, err
			}
			chapter.Images = images
		}
	}

	service.hydrateURLs(chapter)

	service.logger.Info("chapter_updated", slog.String("chapter_id", chapter.ID))

	return chapter, nil
}

// # Removal & Moderation

/*
Delete removes a chapter permanently.

Description: Image rows and the chapter row go in one transaction. The
storage directory is torn down after commit; a storage failure at that
point is logged and swallowed, the deletion still counts as successful.
*/
func (service *Service) Delete(context context.Context, chapter *Chapter) error {

	if err := service.chapterRepo.Delete(context, chapter.ID); err != nil {
		return err
	}

	if err := service.imageStore.DeleteChapterDirectory(context, chapter.MangaID, chapter.ID); err != nil {
		service.logger.Warn("chapter_storage_cleanup_failed",
			slog.String("chapter_id", chapter.ID),
			slog.Any("error", err),
		)
	}

	service.logger.Info("chapter_deleted",
		slog.String("chapter_id", chapter.ID),
		slog.String("manga_id", chapter.MangaID),
	)

	return nil
}

/*
Approve publishes a pending chapter.

Returns:
  - error: Conflict if the chapter is already approved
*/
func (service *Service) Approve(context context.Context, chapter *Chapter) error {

	if chapter.IsApproved {
		return apperr.Conflict("Chapter is already approved")
	}

	if err := service.chapterRepo.SetApproved(context, chapter.ID); err != nil {
		return err
	}
	chapter.IsApproved = true

	service.logger.Info("chapter_approved", slog.String("chapter_id", chapter.ID))

	return nil
}

/*
Reject removes a pending chapter from the moderation queue.

Description: Rejection of an approved chapter is refused; published content
must go through Delete so the act is explicit. The optional reason is kept
in the moderation log only, never persisted.
*/
func (service *Service) Reject(context context.Context, chapter *Chapter, reason string) error {

	if chapter.IsApproved {
		return apperr.Conflict("Approved chapters cannot be rejected, delete instead")
	}

	service.logger.Info("chapter_rejected",
		slog.String("chapter_id", chapter.ID),
		slog.String("reason", reason),
	)

	return service.Delete(context, chapter)
}

// # Queries

/*
ListApproved returns a manga's readable chapters ordered by number.
*/
func (service *Service) ListApproved(context context.Context, owner *manga.Manga) ([]*Chapter, error) {
	return service.chapterRepo.ListApproved(context, owner.ID)
}

/*
ListPending returns the moderation queue, newest first.
*/
func (service *Service) ListPending(context context.Context, limit, offset int) ([]*Chapter, int, error) {
	return service.chapterRepo.ListPending(context, limit, offset)
}

/*
FindByNumber returns an approved chapter of a manga with image URLs.
Pending chapters stay invisible on this public path.
*/
func (service *Service) FindByNumber(context context.Context, owner *manga.Manga, number float64) (*Chapter, error) {
	chapter, err := service.chapterRepo.FindByNumber(context, owner.ID, number, true)
	if err != nil {
		return nil, err
	}

	service.hydrateURLs(chapter)
	return chapter, nil
}

/*
FindAnyByNumber returns a chapter of a manga regardless of moderation
state. Used by the admin edit/delete surface.
*/
func (service *Service) FindAnyByNumber(context context.Context, owner *manga.Manga, number float64) (*Chapter, error) {
	chapter, err := service.chapterRepo.FindByNumber(context, owner.ID, number, false)
	if err != nil {
		return nil, err
	}

	service.hydrateURLs(chapter)
	return chapter, nil
}

/*
FindByID returns a chapter regardless of moderation state.
*/
func (service *Service) FindByID(context context.Context, id string) (*Chapter, error) {
	chapter, err := service.chapterRepo.FindByID(context, id)
	if err != nil {
		return nil, err
	}

	service.hydrateURLs(chapter)
	return chapter, nil
}

// # Internal Helpers

// cleanupFiles best-effort deletes stored files after a failed write.
func (service *Service) cleanupFiles(context context.Context, paths []string) {
	if len(paths) == 0 {
		return
	}
	if err := service.imageStore.DeleteMany(context, paths); err != nil {
		service.logger.Warn("chapter_file_cleanup_failed",
			slog.Int("files", len(paths)),
			slog.Any("error", err),
		)
	}
}

// hydrateURLs resolves public URLs for every image of the chapter.
func (service *Service) hydrateURLs(chapter *Chapter) {
	for _, image := range chapter.Images {
		image.URL = service.imageStore.URL(image.Path)
	}
}

// buildImages converts the storage result into ordered image rows.
// The map key is the original input index; page order must reflect it.
func buildImages(chapterID string, storedPaths map[int]string) []*Image {
	indices := make([]int, 0, len(storedPaths))
	for index := range storedPaths {
		indices = append(indices, index)
	}
	sort.Ints(indices)

	images := make([]*Image, 0, len(indices))
	for _, index := range indices {
		images = append(images, &Image{
			ID:        uuid.New(),
			ChapterID: chapterID,
			Position:  index + 1,
			Path:      storedPaths[index],
		})
	}
	return images
}

// pathValues flattens the storage result into a path slice.
func pathValues(storedPaths map[int]string) []string {
	paths := make([]string, 0, len(storedPaths))
	for _, path := range storedPaths {
		paths = append(paths, path)
	}
	return paths
}

// chapterSlug derives the URL identity from the owner title and number.
func chapterSlug(mangaTitle string, number float64) string {
	return slug.From(fmt.Sprintf("%s %s", mangaTitle, formatNumber(number)))
}

// formatNumber renders a chapter number without trailing zeros (363.5, 12).
func formatNumber(number float64) string {
	return strconv.FormatFloat(number, 'f', -1, 64)
}
