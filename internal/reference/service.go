// Copyright (c) 2026 Mangaden. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package reference

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/taibuivan/mangaden/internal/platform/validate"
	"github.com/taibuivan/mangaden/pkg/slug"
	"github.com/taibuivan/mangaden/pkg/uuid"
)

// maxSlugAttempts bounds the uniqueness retry loop before giving up.
const maxSlugAttempts = 50

// # Service Layer

// Service orchestrates author and genre management.
type Service struct {
	referenceRepo Repository
	logger        *slog.Logger
}

// NewService constructs a new reference [Service].
func NewService(referenceRepo Repository, logger *slog.Logger) *Service {
	return &Service{
		referenceRepo: referenceRepo,
		logger:        logger,
	}
}

// # Queries

// List returns a page of entries ordered by name.
func (service *Service) List(context context.Context, kind Kind, limit, offset int) ([]*Entry, int, error) {
	return service.referenceRepo.List(context, kind, limit, offset)
}

// FindBySlug returns a single entry.
func (service *Service) FindBySlug(context context.Context, kind Kind, entrySlug string) (*Entry, error) {
	return service.referenceRepo.FindBySlug(context, kind, entrySlug)
}

// # Management

/*
Create registers a new entry with a unique slug derived from the name.

Parameters:
  - context: context.Context
  - kind: Kind (Target lookup table)
  - name: string (Display name; the slug source)

Returns:
  - *Entry: The persisted entry
  - error: Validation or persistence errors
*/
func (service *Service) Create(context context.Context, kind Kind, name string) (*Entry, error) {
	validator := &validate.Validator{}
	validator.Required(FieldName, name)
	validator.MaxLen(FieldName, name, 255)

	if err := validator.Err(); err != nil {
		return nil, err
	}

	uniqueSlug, err := service.uniqueSlug(context, kind, name, "")
	if err != nil {
		return nil, err
	}

	entry := &Entry{
		ID:   uuid.New(),
		Name: name,
		Slug: uniqueSlug,
	}

	if err := service.referenceRepo.Create(context, kind, entry); err != nil {
		return nil, err
	}

	service.logger.Info("reference_created",
		slog.String("kind", string(kind)),
		slog.String("id", entry.ID),
		slog.String("slug", entry.Slug),
	)

	return entry, nil
}

/*
Update renames an entry and re-derives its slug.

Parameters:
  - context: context.Context
  - kind: Kind
  - entrySlug: string (Current slug of the target)
  - name: string (New display name)

Returns:
  - *Entry: The updated entry
  - error: NotFound, validation, or persistence errors
*/
func (service *Service) Update(context context.Context, kind Kind, entrySlug, name string) (*Entry, error) {
	validator := &validate.Validator{}
	validator.Required(FieldName, name)
	validator.MaxLen(FieldName, name, 255)

	if err := validator.Err(); err != nil {
		return nil, err
	}

	entry, err := service.referenceRepo.FindBySlug(context, kind, entrySlug)
	if err != nil {
		return nil, err
	}

	entry.Name = name

	// The entry keeps its slug when the rename slugs to the same value
	newSlug, err := service.uniqueSlug(context, kind, name, entry.ID)
	if err != nil {
		return nil, err
	}
	entry.Slug = newSlug

	if err := service.referenceRepo.Update(context, kind, entry); err != nil {
		return nil, err
	}

	service.logger.Info("reference_updated",
		slog.String("kind", string(kind)),
		slog.String("id", entry.ID),
	)

	return entry, nil
}

// # Internal Helpers

// uniqueSlug appends -2, -3, ... until the slug is free for this kind.
func (service *Service) uniqueSlug(context context.Context, kind Kind, name, excludeID string) (string, error) {
	base := slug.From(name)

	candidate := base
	for attempt := 2; attempt <= maxSlugAttempts; attempt++ {
		exists, err := service.referenceRepo.SlugExists(context, kind, candidate, excludeID)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, attempt)
	}

	return "", fmt.Errorf("reference: could not find a free slug for %q", base)
}
