// Copyright (c) 2026 Mangaden. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package chapter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/mangaden/internal/manga"
	"github.com/taibuivan/mangaden/internal/platform/apperr"
	"github.com/taibuivan/mangaden/internal/platform/dberr"
	"github.com/taibuivan/mangaden/internal/storage"
)

// # Test Fakes

// fakeStore is an in-memory [storage.Store] mirroring the local backend's
// naming and skip semantics.
type fakeStore struct {
	files map[string]struct{}

	deleteDirErr error
	deletedDirs  []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{files: make(map[string]struct{})}
}

func (f *fakeStore) StoreMany(_ context.Context, uploads []storage.Upload, mangaID, chapterID string) (map[int]string, error) {
	stored := make(map[int]string)
	for index, upload := range uploads {
		if upload.Filename == "" || upload.Open == nil {
			continue
		}

		extension := strings.TrimPrefix(filepath.Ext(upload.Filename), ".")
		if extension == "" {
			extension = "jpg"
		}

		path := fmt.Sprintf("chapters/%s/%s/%03d.%s", mangaID, chapterID, index+1, strings.ToLower(extension))
		f.files[path] = struct{}{}
		stored[index] = path
	}
	return stored, nil
}

func (f *fakeStore) DeleteMany(_ context.Context, paths []string) error {
	for _, path := range paths {
		delete(f.files, path)
	}
	return nil
}

func (f *fakeStore) DeleteChapterDirectory(_ context.Context, mangaID, chapterID string) error {
	if f.deleteDirErr != nil {
		return f.deleteDirErr
	}

	prefix := fmt.Sprintf("chapters/%s/%s/", mangaID, chapterID)
	for path := range f.files {
		if strings.HasPrefix(path, prefix) {
			delete(f.files, path)
		}
	}
	f.deletedDirs = append(f.deletedDirs, prefix)
	return nil
}

func (f *fakeStore) URL(path string) string { return "http://test/static/" + path }
func (f *fakeStore) DiskName() string       { return "fake" }

// fakeChapterRepo is an in-memory [Repository]. Rows are stored as copies
// so a caller-side mutation never reaches the "database" without a write.
type fakeChapterRepo struct {
	chapters map[string]*Chapter
	images   map[string][]*Image // keyed by chapter ID

	createErr         error
	failReplaceImages bool
}

func newFakeChapterRepo() *fakeChapterRepo {
	return &fakeChapterRepo{
		chapters: make(map[string]*Chapter),
		images:   make(map[string][]*Image),
	}
}

func (f *fakeChapterRepo) CreateWithImages(_ context.Context, chapter *Chapter, images []*Image) error {
	if f.createErr != nil {
		return f.createErr
	}
	chapter.CreatedAt = time.Now()
	chapter.UpdatedAt = chapter.CreatedAt

	row := *chapter
	f.chapters[chapter.ID] = &row
	f.images[chapter.ID] = images
	return nil
}

func (f *fakeChapterRepo) UpdateMeta(_ context.Context, chapter *Chapter) error {
	if _, ok := f.chapters[chapter.ID]; !ok {
		return apperr.NotFound("chapter")
	}
	chapter.UpdatedAt = time.Now()

	row := *chapter
	f.chapters[chapter.ID] = &row
	return nil
}

func (f *fakeChapterRepo) UpdateWithImages(_ context.Context, chapter *Chapter, images []*Image) error {
	if _, ok := f.chapters[chapter.ID]; !ok {
		return apperr.NotFound("chapter")
	}
	if f.failReplaceImages {
		return errors.New("replace failed")
	}
	chapter.UpdatedAt = time.Now()

	row := *chapter
	f.chapters[chapter.ID] = &row
	f.images[chapter.ID] = images
	return nil
}

func (f *fakeChapterRepo) Delete(_ context.Context, chapterID string) error {
	if _, ok := f.chapters[chapterID]; !ok {
		return apperr.NotFound("chapter")
	}
	delete(f.chapters, chapterID)
	delete(f.images, chapterID)
	return nil
}

func (f *fakeChapterRepo) SetApproved(_ context.Context, chapterID string) error {
	chapter, ok := f.chapters[chapterID]
	if !ok {
		return apperr.NotFound("chapter")
	}
	chapter.IsApproved = true
	return nil
}

func (f *fakeChapterRepo) FindByID(_ context.Context, id string) (*Chapter, error) {
	chapter, ok := f.chapters[id]
	if !ok {
		return nil, apperr.NotFound("chapter")
	}
	chapter.Images = f.images[id]
	return chapter, nil
}

func (f *fakeChapterRepo) FindByNumber(_ context.Context, mangaID string, number float64, approvedOnly bool) (*Chapter, error) {
	for _, chapter := range f.chapters {
		if chapter.MangaID != mangaID || chapter.Number != number {
			continue
		}
		if approvedOnly && !chapter.IsApproved {
			return nil, apperr.NotFound("chapter")
		}
		chapter.Images = f.images[chapter.ID]
		return chapter, nil
	}
	return nil, apperr.NotFound("chapter")
}

func (f *fakeChapterRepo) ListApproved(_ context.Context, mangaID string) ([]*Chapter, error) {
	var chapters []*Chapter
	for _, chapter := range f.chapters {
		if chapter.MangaID == mangaID && chapter.IsApproved {
			chapters = append(chapters, chapter)
		}
	}
	return chapters, nil
}

func (f *fakeChapterRepo) ListPending(_ context.Context, limit, offset int) ([]*Chapter, int, error) {
	var chapters []*Chapter
	for _, chapter := range f.chapters {
		if !chapter.IsApproved {
			chapters = append(chapters, chapter)
		}
	}
	return chapters, len(chapters), nil
}

func (f *fakeChapterRepo) NumberExists(_ context.Context, mangaID string, number float64, excludeID string) (bool, error) {
	for _, chapter := range f.chapters {
		if chapter.MangaID == mangaID && chapter.Number == number && chapter.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeChapterRepo) ListImages(_ context.Context, chapterID string) ([]*Image, error) {
	return f.images[chapterID], nil
}

// # Test Setup

func newTestService(repo *fakeChapterRepo, store *fakeStore) *Service {
	return NewService(repo, store, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func testManga() *manga.Manga {
	return &manga.Manga{ID: "manga-1", Title: "Berserk", Slug: "berserk"}
}

func upload(filename string) storage.Upload {
	return storage.Upload{
		Filename: filename,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader("page-bytes")), nil
		},
	}
}

// # Submission

/*
TestService_Create verifies the happy path: forced pending state, slug
derivation, page positions from input order, and URL hydration.
*/
func TestService_Create(t *testing.T) {
	repo := newFakeChapterRepo()
	store := newFakeStore()
	service := newTestService(repo, store)

	chapter, err := service.Create(context.Background(), testManga(), CreateInput{
		Number:     363.5,
		UploaderID: "user-1",
		Uploads:    []storage.Upload{upload("fileA.jpg"), upload("fileB.png")},
	})
	require.NoError(t, err)

	// 1. Always pending on creation
	assert.False(t, chapter.IsApproved)

	// 2. Slug comes from the owner title and the number
	assert.Equal(t, "berserk-363-5", chapter.Slug)

	// 3. Pages keep input order with 1-indexed positions
	require.Len(t, chapter.Images, 2)
	assert.Equal(t, 1, chapter.Images[0].Position)
	assert.Equal(t, 2, chapter.Images[1].Position)
	assert.Equal(t, fmt.Sprintf("chapters/manga-1/%s/001.jpg", chapter.ID), chapter.Images[0].Path)
	assert.Equal(t, fmt.Sprintf("chapters/manga-1/%s/002.png", chapter.ID), chapter.Images[1].Path)

	// 4. URLs resolved through the store
	assert.Equal(t, "http://test/static/"+chapter.Images[0].Path, chapter.Images[0].URL)
}

/*
TestService_Create_SkipsInvalidUploads verifies that an invalid upload is
dropped while later pages keep their input-derived numbering.
*/
func TestService_Create_SkipsInvalidUploads(t *testing.T) {
	service := newTestService(newFakeChapterRepo(), newFakeStore())

	chapter, err := service.Create(context.Background(), testManga(), CreateInput{
		Number:     1,
		UploaderID: "user-1",
		Uploads:    []storage.Upload{{Filename: ""}, upload("fileB.png")},
	})
	require.NoError(t, err)

	// The surviving page keeps position 2 from its input index
	require.Len(t, chapter.Images, 1)
	assert.Equal(t, 2, chapter.Images[0].Position)
	assert.True(t, strings.HasSuffix(chapter.Images[0].Path, "/002.png"))
}

/*
TestService_Create_DuplicateNumber verifies the Conflict precondition fires
before anything reaches storage.
*/
func TestService_Create_DuplicateNumber(t *testing.T) {
	repo := newFakeChapterRepo()
	store := newFakeStore()
	service := newTestService(repo, store)
	ctx := context.Background()
	owner := testManga()

	_, err := service.Create(ctx, owner, CreateInput{
		Number: 1, UploaderID: "user-1", Uploads: []storage.Upload{upload("a.jpg")},
	})
	require.NoError(t, err)
	require.Len(t, store.files, 1)

	_, err = service.Create(ctx, owner, CreateInput{
		Number: 1, UploaderID: "user-1", Uploads: []storage.Upload{upload("b.jpg")},
	})

	var appError *apperr.AppError
	require.ErrorAs(t, err, &appError)
	assert.Equal(t, 409, appError.HTTPStatus)

	// No new files were stored for the rejected submission
	assert.Len(t, store.files, 1)
}

/*
TestService_Create_RacingDuplicateNumber verifies that a unique violation
slipping past the precheck surfaces as the same Conflict the precheck
produces, with the stored files compensated.
*/
func TestService_Create_RacingDuplicateNumber(t *testing.T) {
	repo := newFakeChapterRepo()
	repo.createErr = dberr.Wrap(&pgconn.PgError{Code: pgerrcode.UniqueViolation}, "create chapter")
	store := newFakeStore()
	service := newTestService(repo, store)

	_, err := service.Create(context.Background(), testManga(), CreateInput{
		Number: 1, UploaderID: "user-1", Uploads: []storage.Upload{upload("a.jpg")},
	})

	var appError *apperr.AppError
	require.ErrorAs(t, err, &appError)
	assert.Equal(t, 409, appError.HTTPStatus)
	assert.Equal(t, "Chapter number already exists for this manga", appError.Message)
	assert.Empty(t, store.files)
}

/*
TestService_Create_CompensatesOnPersistFailure verifies that stored files
are deleted when the database transaction fails, and the original error
surfaces.
*/
func TestService_Create_CompensatesOnPersistFailure(t *testing.T) {
	repo := newFakeChapterRepo()
	repo.createErr = errors.New("insert failed")
	store := newFakeStore()
	service := newTestService(repo, store)

	_, err := service.Create(context.Background(), testManga(), CreateInput{
		Number: 1, UploaderID: "user-1", Uploads: []storage.Upload{upload("a.jpg"), upload("b.jpg")},
	})

	require.EqualError(t, err, "insert failed")
	assert.Empty(t, store.files)
	assert.Empty(t, repo.chapters)
}

// # Editing

func seedChapter(t *testing.T, service *Service, owner *manga.Manga, number float64) *Chapter {
	t.Helper()

	chapter, err := service.Create(context.Background(), owner, CreateInput{
		Number:     number,
		UploaderID: "user-1",
		Uploads:    []storage.Upload{upload("a.jpg"), upload("b.jpg"), upload("c.jpg")},
	})
	require.NoError(t, err)
	return chapter
}

/*
TestService_Update_TitleSemantics verifies the absent / clear / set
trichotomy for the optional title.
*/
func TestService_Update_TitleSemantics(t *testing.T) {
	repo := newFakeChapterRepo()
	service := newTestService(repo, newFakeStore())
	ctx := context.Background()
	owner := testManga()

	chapter := seedChapter(t, service, owner, 1)

	// 1. Set a title
	title := "The Eclipse"
	updated, err := service.Update(ctx, owner, chapter, UpdateInput{Title: &title, TitleProvided: true})
	require.NoError(t, err)
	require.NotNil(t, updated.Title)
	assert.Equal(t, "The Eclipse", *updated.Title)

	// 2. Absent field leaves it alone
	updated, err = service.Update(ctx, owner, chapter, UpdateInput{})
	require.NoError(t, err)
	require.NotNil(t, updated.Title)

	// 3. Provided-but-blank clears it
	blank := ""
	updated, err = service.Update(ctx, owner, chapter, UpdateInput{Title: &blank, TitleProvided: true})
	require.NoError(t, err)
	assert.Nil(t, updated.Title)
}

/*
TestService_Update_NumberConflict verifies uniqueness on number changes and
that keeping the own number is never a conflict.
*/
func TestService_Update_NumberConflict(t *testing.T) {
	repo := newFakeChapterRepo()
	service := newTestService(repo, newFakeStore())
	ctx := context.Background()
	owner := testManga()

	first := seedChapter(t, service, owner, 1)
	seedChapter(t, service, owner, 2)

	// 1. Moving onto an occupied number is a conflict
	occupied := 2.0
	_, err := service.Update(ctx, owner, first, UpdateInput{Number: &occupied})
	var appError *apperr.AppError
	require.ErrorAs(t, err, &appError)
	assert.Equal(t, 409, appError.HTTPStatus)

	// 2. Re-submitting the current number is fine
	same := 1.0
	_, err = service.Update(ctx, owner, first, UpdateInput{Number: &same})
	assert.NoError(t, err)

	// 3. A free number updates and re-derives the slug
	free := 3.0
	updated, err := service.Update(ctx, owner, first, UpdateInput{Number: &free})
	require.NoError(t, err)
	assert.Equal(t, "berserk-3", updated.Slug)
}

/*
TestService_Update_ReplacesImages verifies full replacement: new rows in,
old files gone except paths the new set reuses.
*/
func TestService_Update_ReplacesImages(t *testing.T) {
	repo := newFakeChapterRepo()
	store := newFakeStore()
	service := newTestService(repo, store)
	ctx := context.Background()
	owner := testManga()

	chapter := seedChapter(t, service, owner, 1) // three pages: 001-003.jpg

	// Replace with two pages; 001.jpg and 002.jpg are reused names,
	// 003.jpg becomes obsolete
	updated, err := service.Update(ctx, owner, chapter, UpdateInput{
		Uploads: []storage.Upload{upload("x.jpg"), upload("y.jpg")},
	})
	require.NoError(t, err)

	require.Len(t, updated.Images, 2)
	assert.Len(t, repo.images[chapter.ID], 2)

	// Storage holds exactly the two current files
	assert.Len(t, store.files, 2)
	_, obsolete := store.files[fmt.Sprintf("chapters/manga-1/%s/003.jpg", chapter.ID)]
	assert.False(t, obsolete)
}

/*
TestService_Update_EmptyUploadsKeepPages verifies that a metadata-only
update leaves the existing pages untouched.
*/
func TestService_Update_EmptyUploadsKeepPages(t *testing.T) {
	repo := newFakeChapterRepo()
	store := newFakeStore()
	service := newTestService(repo, store)
	owner := testManga()

	chapter := seedChapter(t, service, owner, 1)

	updated, err := service.Update(context.Background(), owner, chapter, UpdateInput{})
	require.NoError(t, err)

	assert.Len(t, updated.Images, 3)
	assert.Len(t, store.files, 3)
}

/*
TestService_Update_CleansUpOnReplaceFailure verifies that a failed row swap
deletes only the newly stored files, keeps the old pages, and rolls the
metadata back with the images.
*/
func TestService_Update_CleansUpOnReplaceFailure(t *testing.T) {
	repo := newFakeChapterRepo()
	store := newFakeStore()
	service := newTestService(repo, store)
	owner := testManga()

	chapter := seedChapter(t, service, owner, 1)
	repo.failReplaceImages = true

	newNumber := 9.0
	_, err := service.Update(context.Background(), owner, chapter, UpdateInput{
		Number:  &newNumber,
		Uploads: []storage.Upload{upload("x.png"), upload("y.png")},
	})
	require.EqualError(t, err, "replace failed")

	// Old rows survive; the fresh .png files were rolled back
	assert.Len(t, repo.images[chapter.ID], 3)
	for path := range store.files {
		assert.True(t, strings.HasSuffix(path, ".jpg"))
	}

	// The number change failed together with the image swap
	assert.Equal(t, 1.0, repo.chapters[chapter.ID].Number)
}

// # Removal & Moderation

/*
TestService_Delete verifies transactional row removal plus directory
teardown, including the swallowed storage failure.
*/
func TestService_Delete(t *testing.T) {
	repo := newFakeChapterRepo()
	store := newFakeStore()
	service := newTestService(repo, store)
	ctx := context.Background()
	owner := testManga()

	// 1. Normal path removes rows and files
	chapter := seedChapter(t, service, owner, 1)
	require.NoError(t, service.Delete(ctx, chapter))
	assert.Empty(t, repo.chapters)
	assert.Empty(t, store.files)

	// 2. Storage failure after commit is swallowed
	chapter = seedChapter(t, service, owner, 2)
	store.deleteDirErr = errors.New("disk gone")

	assert.NoError(t, service.Delete(ctx, chapter))
	assert.Empty(t, repo.chapters)
}

/*
TestService_Approve verifies the pending -> approved transition and its
idempotency conflict.
*/
func TestService_Approve(t *testing.T) {
	repo := newFakeChapterRepo()
	service := newTestService(repo, newFakeStore())
	ctx := context.Background()

	chapter := seedChapter(t, service, testManga(), 1)

	require.NoError(t, service.Approve(ctx, chapter))
	assert.True(t, chapter.IsApproved)
	assert.True(t, repo.chapters[chapter.ID].IsApproved)

	// Approving twice is a conflict, not a silent no-op
	err := service.Approve(ctx, chapter)
	var appError *apperr.AppError
	require.ErrorAs(t, err, &appError)
	assert.Equal(t, 409, appError.HTTPStatus)
}

/*
TestService_Reject verifies that rejection removes pending chapters and
refuses approved ones.
*/
func TestService_Reject(t *testing.T) {
	repo := newFakeChapterRepo()
	store := newFakeStore()
	service := newTestService(repo, store)
	ctx := context.Background()
	owner := testManga()

	// 1. Pending chapters are removed entirely
	chapter := seedChapter(t, service, owner, 1)
	require.NoError(t, service.Reject(ctx, chapter, "low quality scan"))
	assert.Empty(t, repo.chapters)
	assert.Empty(t, store.files)

	// 2. Approved chapters must go through Delete
	chapter = seedChapter(t, service, owner, 2)
	require.NoError(t, service.Approve(ctx, chapter))

	err := service.Reject(ctx, chapter, "")
	var appError *apperr.AppError
	require.ErrorAs(t, err, &appError)
	assert.Equal(t, 409, appError.HTTPStatus)
	assert.Len(t, repo.chapters, 1)
}

// # Queries

/*
TestService_FindByNumber verifies the approved-only visibility split
between the public and admin lookups.
*/
func TestService_FindByNumber(t *testing.T) {
	repo := newFakeChapterRepo()
	service := newTestService(repo, newFakeStore())
	ctx := context.Background()
	owner := testManga()

	chapter := seedChapter(t, service, owner, 1)

	// Pending: invisible publicly, visible to admins
	_, err := service.FindByNumber(ctx, owner, 1)
	var appError *apperr.AppError
	require.ErrorAs(t, err, &appError)
	assert.Equal(t, 404, appError.HTTPStatus)

	found, err := service.FindAnyByNumber(ctx, owner, 1)
	require.NoError(t, err)
	assert.Equal(t, chapter.ID, found.ID)

	// Approved: public, with URLs hydrated
	require.NoError(t, service.Approve(ctx, chapter))

	found, err = service.FindByNumber(ctx, owner, 1)
	require.NoError(t, err)
	require.NotEmpty(t, found.Images)
	assert.True(t, strings.HasPrefix(found.Images[0].URL, "http://test/static/"))
}
