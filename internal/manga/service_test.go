// Copyright (c) 2026 Mangaden. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package manga

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/mangaden/internal/platform/apperr"
)

// # Test Fakes

// fakeRepository is an in-memory [Repository] for service tests.
type fakeRepository struct {
	mangas map[string]*Manga // keyed by ID

	viewIncrementErr error
	viewIncrements   int
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{mangas: make(map[string]*Manga)}
}

func (f *fakeRepository) Create(_ context.Context, manga *Manga) error {
	manga.CreatedAt = time.Now()
	manga.UpdatedAt = manga.CreatedAt
	f.mangas[manga.ID] = manga
	return nil
}

func (f *fakeRepository) Update(_ context.Context, manga *Manga) error {
	existing, ok := f.mangas[manga.ID]
	if !ok || existing.IsDeleted() {
		return apperr.NotFound("manga")
	}
	manga.UpdatedAt = time.Now()
	f.mangas[manga.ID] = manga
	return nil
}

func (f *fakeRepository) SyncAuthors(_ context.Context, mangaID string, authorIDs []string) error {
	f.mangas[mangaID].AuthorIDs = authorIDs
	return nil
}

func (f *fakeRepository) SyncGenres(_ context.Context, mangaID string, genreIDs []string) error {
	f.mangas[mangaID].GenreIDs = genreIDs
	return nil
}

func (f *fakeRepository) List(_ context.Context, filter Filter, limit, offset int) ([]*Manga, int, error) {
	var matched []*Manga
	for _, m := range f.mangas {
		if m.IsDeleted() {
			continue
		}
		if filter.Status != "" && m.Status != filter.Status {
			continue
		}
		if filter.Query != "" && !matchesKeyword(m, filter.Query) {
			continue
		}
		matched = append(matched, m)
	}
	return matched, len(matched), nil
}

// matchesKeyword mirrors the store's case-insensitive matching over title
// and description.
func matchesKeyword(m *Manga, keyword string) bool {
	needle := strings.ToLower(keyword)
	return strings.Contains(strings.ToLower(m.Title), needle) ||
		strings.Contains(strings.ToLower(m.Description), needle)
}

func (f *fakeRepository) Popular(_ context.Context, limit int) ([]*Manga, error) {
	var matched []*Manga
	for _, m := range f.mangas {
		if !m.IsDeleted() {
			matched = append(matched, m)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ViewCount > matched[j].ViewCount })
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func (f *fakeRepository) Latest(_ context.Context, limit int) ([]*Manga, error) { return nil, nil }

func (f *fakeRepository) FindBySlug(_ context.Context, slug string, includeDeleted bool) (*Manga, error) {
	for _, m := range f.mangas {
		if m.Slug != slug {
			continue
		}
		if m.IsDeleted() && !includeDeleted {
			return nil, apperr.NotFound("manga")
		}
		return m, nil
	}
	return nil, apperr.NotFound("manga")
}

func (f *fakeRepository) FindByID(_ context.Context, id string) (*Manga, error) {
	m, ok := f.mangas[id]
	if !ok || m.IsDeleted() {
		return nil, apperr.NotFound("manga")
	}
	return m, nil
}

func (f *fakeRepository) IncrementViewCount(_ context.Context, id string) error {
	if f.viewIncrementErr != nil {
		return f.viewIncrementErr
	}
	f.viewIncrements++
	return nil
}

func (f *fakeRepository) SoftDelete(_ context.Context, id string) error {
	m, ok := f.mangas[id]
	if !ok || m.IsDeleted() {
		return apperr.NotFound("manga")
	}
	now := time.Now()
	m.DeletedAt = &now
	return nil
}

func (f *fakeRepository) SlugExists(_ context.Context, slug string) (bool, error) {
	for _, m := range f.mangas {
		if m.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func newTestService(repo *fakeRepository) *Service {
	return NewService(repo, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// # Creation

/*
TestService_Create verifies defaults, slug generation, and persistence.
*/
func TestService_Create(t *testing.T) {
	repo := newFakeRepository()
	service := newTestService(repo)

	manga := &Manga{Title: "Berserk"}
	require.NoError(t, service.Create(context.Background(), manga))

	assert.NotEmpty(t, manga.ID)
	assert.Equal(t, StatusOngoing, manga.Status)
	assert.Equal(t, "berserk", manga.Slug)
}

/*
TestService_Create_SlugCollision verifies the -2, -3 retry suffix.
*/
func TestService_Create_SlugCollision(t *testing.T) {
	repo := newFakeRepository()
	service := newTestService(repo)
	ctx := context.Background()

	first := &Manga{Title: "One Piece"}
	second := &Manga{Title: "One Piece"}
	third := &Manga{Title: "One Piece"}

	require.NoError(t, service.Create(ctx, first))
	require.NoError(t, service.Create(ctx, second))
	require.NoError(t, service.Create(ctx, third))

	assert.Equal(t, "one-piece", first.Slug)
	assert.Equal(t, "one-piece-2", second.Slug)
	assert.Equal(t, "one-piece-3", third.Slug)
}

/*
TestService_Create_Validation verifies that a blank title and an unknown
status are rejected before persistence.
*/
func TestService_Create_Validation(t *testing.T) {
	repo := newFakeRepository()
	service := newTestService(repo)

	tests := []struct {
		name  string
		manga *Manga
	}{
		{name: "blank title", manga: &Manga{}},
		{name: "unknown status", manga: &Manga{Title: "x", Status: "paused"}},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			err := service.Create(context.Background(), testCase.manga)

			var appError *apperr.AppError
			require.ErrorAs(t, err, &appError)
			assert.Equal(t, 400, appError.HTTPStatus)
			assert.Empty(t, repo.mangas)
		})
	}
}

// # Updates

/*
TestService_Update verifies partial scalar updates and attach-vs-sync
relation semantics.
*/
func TestService_Update(t *testing.T) {
	repo := newFakeRepository()
	service := newTestService(repo)
	ctx := context.Background()

	seed := &Manga{Title: "Vinland Saga", AuthorIDs: []string{"author-1"}, GenreIDs: []string{"genre-1"}}
	require.NoError(t, service.Create(ctx, seed))

	// 1. Scalar-only update leaves relations untouched
	newDescription := "Thorfinn's tale"
	updated, err := service.Update(ctx, "vinland-saga", UpdateInput{Description: &newDescription})
	require.NoError(t, err)

	assert.Equal(t, "Thorfinn's tale", updated.Description)
	assert.Equal(t, []string{"author-1"}, repo.mangas[seed.ID].AuthorIDs)

	// 2. An explicitly empty synced set detaches everything
	updated, err = service.Update(ctx, "vinland-saga", UpdateInput{GenreIDs: []string{}, SyncGenres: true})
	require.NoError(t, err)

	assert.Empty(t, repo.mangas[seed.ID].GenreIDs)
	assert.Equal(t, []string{"author-1"}, repo.mangas[seed.ID].AuthorIDs)
	assert.NotNil(t, updated)
}

/*
TestService_Update_NotFound verifies the missing-target error path.
*/
func TestService_Update_NotFound(t *testing.T) {
	service := newTestService(newFakeRepository())

	_, err := service.Update(context.Background(), "missing", UpdateInput{})

	var appError *apperr.AppError
	require.ErrorAs(t, err, &appError)
	assert.Equal(t, 404, appError.HTTPStatus)
}

// # Soft Deletion

/*
TestService_SoftDelete verifies visibility rules around the deletion flag.
*/
func TestService_SoftDelete(t *testing.T) {
	repo := newFakeRepository()
	service := newTestService(repo)
	ctx := context.Background()

	seed := &Manga{Title: "Dropped Series"}
	require.NoError(t, service.Create(ctx, seed))
	require.NoError(t, service.SoftDelete(ctx, "dropped-series"))

	// 1. Hidden from normal reads
	_, err := service.FindBySlug(ctx, "dropped-series", false)
	var appError *apperr.AppError
	require.ErrorAs(t, err, &appError)
	assert.Equal(t, 404, appError.HTTPStatus)

	// 2. Visible with the explicit admin flag
	found, err := service.FindBySlug(ctx, "dropped-series", true)
	require.NoError(t, err)
	assert.True(t, found.IsDeleted())

	// 3. The slug stays reserved for new entries
	colliding := &Manga{Title: "Dropped Series"}
	require.NoError(t, service.Create(ctx, colliding))
	assert.Equal(t, "dropped-series-2", colliding.Slug)
}

// # Discovery

/*
TestService_Search verifies that a blank keyword behaves exactly like an
unfiltered List, and a non-blank one narrows the result.
*/
func TestService_Search(t *testing.T) {
	repo := newFakeRepository()
	service := newTestService(repo)
	ctx := context.Background()

	require.NoError(t, service.Create(ctx, &Manga{Title: "Berserk"}))
	require.NoError(t, service.Create(ctx, &Manga{Title: "Vinland Saga"}))
	require.NoError(t, service.Create(ctx, &Manga{Title: "Vagabond"}))

	// 1. Blank keyword is the full catalogue
	results, total, err := service.Search(ctx, "", 20, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, total)

	listed, listedTotal, err := service.List(ctx, Filter{}, 20, 0)
	require.NoError(t, err)
	assert.Equal(t, listedTotal, total)
	assert.Len(t, results, len(listed))

	// 2. A keyword narrows, case-insensitively
	results, total, err = service.Search(ctx, "berserk", 20, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, results, 1)
	assert.Equal(t, "Berserk", results[0].Title)
}

/*
TestService_Popular verifies the most-viewed ordering and the limit cut.
*/
func TestService_Popular(t *testing.T) {
	repo := newFakeRepository()
	service := newTestService(repo)
	ctx := context.Background()

	seeds := []*Manga{
		{Title: "Mid Tier", ViewCount: 50},
		{Title: "Chart Topper", ViewCount: 900},
		{Title: "Sleeper", ViewCount: 3},
	}
	for _, seed := range seeds {
		require.NoError(t, service.Create(ctx, seed))
	}

	popular, err := service.Popular(ctx, 2)
	require.NoError(t, err)

	require.Len(t, popular, 2)
	assert.Equal(t, "Chart Topper", popular[0].Title)
	assert.Equal(t, "Mid Tier", popular[1].Title)
}

// # Analytics

/*
TestService_IncrementViews verifies that counter failures never propagate.
*/
func TestService_IncrementViews(t *testing.T) {
	repo := newFakeRepository()
	service := newTestService(repo)
	ctx := context.Background()

	seed := &Manga{Title: "Popular One"}
	require.NoError(t, service.Create(ctx, seed))

	service.IncrementViews(ctx, seed)
	assert.Equal(t, 1, repo.viewIncrements)

	// Failure path: swallowed, not returned
	repo.viewIncrementErr = errors.New("db down")
	service.IncrementViews(ctx, seed)
	assert.Equal(t, 1, repo.viewIncrements)
}
