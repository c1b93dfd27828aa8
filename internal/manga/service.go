// Copyright (c) 2026 Mangaden. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package manga

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/taibuivan/mangaden/internal/platform/validate"
	"github.com/taibuivan/mangaden/pkg/slug"
	"github.com/taibuivan/mangaden/pkg/uuid"
)

const (
	FieldTitle  = "title"
	FieldStatus = "status"
)

// maxSlugAttempts bounds the uniqueness retry loop before giving up.
const maxSlugAttempts = 50

// # Service Layer

// Service orchestrates the business logic for the manga catalogue.
type Service struct {
	mangaRepo Repository
	logger    *slog.Logger
}

// NewService constructs a new [Service] with its required repository.
func NewService(mangaRepo Repository, logger *slog.Logger) *Service {
	return &Service{
		mangaRepo: mangaRepo,
		logger:    logger,
	}
}

// # Catalogue Management

/*
Create registers a new manga in the catalogue.

Description: Applies validation, defaults the status to ongoing, generates
a unique slug from the title, and persists the manga with its author/genre
relations in one transaction.

Parameters:
  - context: context.Context
  - manga: *Manga (New catalogue entry; relation IDs optional)

Returns:
  - error: Validation or persistence errors
*/
func (service *Service) Create(context context.Context, manga *Manga) error {

	// Identity & Mandatory field generation
	if manga.ID == "" {
		manga.ID = uuid.New()
	}
	if manga.Status == "" {
		manga.Status = StatusOngoing
	}

	// Business attribute validation
	validator := &validate.Validator{}
	validator.Required(FieldTitle, manga.Title)
	validator.Custom(FieldStatus, !manga.Status.IsValid(), "Unknown publication status")

	if err := validator.Err(); err != nil {
		return err
	}

	// Unique URL identity
	uniqueSlug, err := service.uniqueSlug(context, manga.Title)
	if err != nil {
		return err
	}
	manga.Slug = uniqueSlug

	// Storage persistence
	if err := service.mangaRepo.Create(context, manga); err != nil {
		return err
	}

	service.logger.Info("manga_created",
		slog.String("manga_id", manga.ID),
		slog.String("slug", manga.Slug),
	)

	return nil
}

/*
Update applies a partial metadata update to an existing manga.

Description: Only the fields present in the input are touched. Relation
slices flagged for sync replace the existing set exactly; an empty synced
slice detaches everything.

Parameters:
  - context: context.Context
  - slugOrID: string (Current slug of the target)
  - input: UpdateInput

Returns:
  - *Manga: The updated entity
  - error: NotFound, validation, or persistence errors
*/
func (service *Service) Update(context context.Context, mangaSlug string, input UpdateInput) (*Manga, error) {

	manga, err := service.mangaRepo.FindBySlug(context, mangaSlug, false)
	if err != nil {
		return nil, err
	}

	// Apply scalar changes
	if input.Title != nil {
		manga.Title = *input.Title
	}
	if input.Description != nil {
		manga.Description = *input.Description
	}
	if input.Status != nil {
		manga.Status = *input.Status
	}
	if input.CoverImage != nil {
		manga.CoverImage = *input.CoverImage
	}
	if input.AltTitles != nil {
		manga.AltTitles = input.AltTitles
	}

	// Re-validate the merged state
	validator := &validate.Validator{}
	validator.Required(FieldTitle, manga.Title)
	validator.Custom(FieldStatus, !manga.Status.IsValid(), "Unknown publication status")

	if err := validator.Err(); err != nil {
		return nil, err
	}

	if err := service.mangaRepo.Update(context, manga); err != nil {
		return nil, err
	}

	// Relation sync: only when the caller supplied a set
	if input.SyncAuthors {
		if err := service.mangaRepo.SyncAuthors(context, manga.ID, input.AuthorIDs); err != nil {
			return nil, err
		}
		manga.AuthorIDs = input.AuthorIDs
	}
	if input.SyncGenres {
		if err := service.mangaRepo.SyncGenres(context, manga.ID, input.GenreIDs); err != nil {
			return nil, err
		}
		manga.GenreIDs = input.GenreIDs
	}

	service.logger.Info("manga_updated", slog.String("manga_id", manga.ID))

	return manga, nil
}

/*
SoftDelete hides a manga from the public catalogue.

Description: The row remains recoverable; chapters and relations are kept.
*/
func (service *Service) SoftDelete(context context.Context, mangaSlug string) error {

	manga, err := service.mangaRepo.FindBySlug(context, mangaSlug, false)
	if err != nil {
		return err
	}

	if err := service.mangaRepo.SoftDelete(context, manga.ID); err != nil {
		return err
	}

	service.logger.Info("manga_soft_deleted", slog.String("manga_id", manga.ID))

	return nil
}

// # Discovery

/*
List retrieves a filtered catalogue page, newest-created first.
*/
func (service *Service) List(context context.Context, filter Filter, limit, offset int) ([]*Manga, int, error) {
	return service.mangaRepo.List(context, filter, limit, offset)
}

/*
Search retrieves a keyword-matched catalogue page. A blank keyword behaves
exactly like an unfiltered [Service.List].
*/
func (service *Service) Search(context context.Context, keyword string, limit, offset int) ([]*Manga, int, error) {
	return service.mangaRepo.List(context, Filter{Query: keyword}, limit, offset)
}

// Popular returns the most viewed manga.
func (service *Service) Popular(context context.Context, limit int) ([]*Manga, error) {
	return service.mangaRepo.Popular(context, limit)
}

// Latest returns the most recently updated manga.
func (service *Service) Latest(context context.Context, limit int) ([]*Manga, error) {
	return service.mangaRepo.Latest(context, limit)
}

/*
FindBySlug retrieves a single manga by its slug.

Description: Soft-deleted entries stay hidden unless the caller explicitly
opts in (admin tooling). The flag is a parameter, not ambient state, so the
decision is visible at every call site.
*/
func (service *Service) FindBySlug(context context.Context, mangaSlug string, includeDeleted bool) (*Manga, error) {
	return service.mangaRepo.FindBySlug(context, mangaSlug, includeDeleted)
}

// FindByID retrieves a single manga by its ID, excluding soft-deleted rows.
func (service *Service) FindByID(context context.Context, id string) (*Manga, error) {
	return service.mangaRepo.FindByID(context, id)
}

/*
IncrementViews bumps the view counter. Fired on every public detail read;
failures are logged and swallowed so analytics never break a page view.
*/
func (service *Service) IncrementViews(context context.Context, manga *Manga) {
	if err := service.mangaRepo.IncrementViewCount(context, manga.ID); err != nil {
		service.logger.Warn("manga_view_increment_failed",
			slog.String("manga_id", manga.ID),
			slog.Any("error", err),
		)
	}
}

// # Internal Helpers

// uniqueSlug derives a slug from the title and appends -2, -3, ... until free.
func (service *Service) uniqueSlug(context context.Context, title string) (string, error) {
	base := slug.From(title)

	candidate := base
	for attempt := 2; attempt <= maxSlugAttempts; attempt++ {
		exists, err := service.mangaRepo.SlugExists(context, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, attempt)
	}

	return "", fmt.Errorf("manga: could not find a free slug for %q", base)
}
