// Copyright (c) 2026 Mangaden. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
PostgreSQL implementation for the chapter workflow's data access.

It relies on a few Postgres features to keep uploads safe and fast:
  - ACID Transactions: chapter and image rows always move together.
  - Batching: image rows are pipelined to cut round-trips on large chapters.
  - Unique Constraints: (manga_id, number) duplicates surface as Conflict
    through the dberr bridge even under concurrent submissions.
*/
package chapter

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/mangaden/internal/platform/apperr"
	"github.com/taibuivan/mangaden/internal/platform/database/schema"
	"github.com/taibuivan/mangaden/internal/platform/dberr"
)

// # PostgreSQL Repository

// chapterRepository implements the [Repository] interface using pgx.
type chapterRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed chapter store.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &chapterRepository{pool: pool}
}

// # Repository Implementation

func (repository *chapterRepository) CreateWithImages(context context.Context, chapter *Chapter, images []*Image) error {
	t := schema.CoreChapter

	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return fmt.Errorf("postgres: failed to begin chapter create: %w", err)
	}
	defer func() { _ = transaction.Rollback(context) }()

	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		t.Table,
		t.ID, t.MangaID, t.UploaderID, t.Number, t.Title, t.Slug, t.IsApproved,
	)

	_, err = transaction.Exec(context, query,
		chapter.ID,
		chapter.MangaID,
		chapter.UploaderID,
		chapter.Number,
		chapter.Title,
		chapter.Slug,
		chapter.IsApproved,
	)
	if err != nil {
		return dberr.Wrap(err, "create chapter")
	}

	if err := insertImages(context, transaction, images); err != nil {
		return dberr.Wrap(err, "create chapter images")
	}

	if err := transaction.Commit(context); err != nil {
		return fmt.Errorf("postgres: failed to commit chapter create: %w", err)
	}

	return nil
}

func (repository *chapterRepository) UpdateMeta(context context.Context, chapter *Chapter) error {
	t := schema.CoreChapter

	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $1, %s = $2, %s = $3, %s = NOW()
		WHERE %s = $4
	`,
		t.Table,
		t.Number, t.Title, t.Slug, t.UpdatedAt,
		t.ID,
	)

	result, err := repository.pool.Exec(context, query,
		chapter.Number,
		chapter.Title,
		chapter.Slug,
		chapter.ID,
	)
	if err != nil {
		return dberr.Wrap(err, "update chapter")
	}

	if result.RowsAffected() == 0 {
		return apperr.NotFound("chapter")
	}

	return nil
}

func (repository *chapterRepository) UpdateWithImages(context context.Context, chapter *Chapter, images []*Image) error {
	t := schema.CoreChapter

	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return fmt.Errorf("postgres: failed to begin chapter update: %w", err)
	}
	defer func() { _ = transaction.Rollback(context) }()

	metaQuery := fmt.Sprintf(`
		UPDATE %s
		SET %s = $1, %s = $2, %s = $3, %s = NOW()
		WHERE %s = $4
	`,
		t.Table,
		t.Number, t.Title, t.Slug, t.UpdatedAt,
		t.ID,
	)

	result, err := transaction.Exec(context, metaQuery,
		chapter.Number,
		chapter.Title,
		chapter.Slug,
		chapter.ID,
	)
	if err != nil {
		return dberr.Wrap(err, "update chapter")
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound("chapter")
	}

	image := schema.CoreChapterImage
	deleteQuery := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, image.Table, image.ChapterID)
	if _, err := transaction.Exec(context, deleteQuery, chapter.ID); err != nil {
		return dberr.Wrap(err, "replace chapter images")
	}

	if err := insertImages(context, transaction, images); err != nil {
		return dberr.Wrap(err, "replace chapter images")
	}

	if err := transaction.Commit(context); err != nil {
		return fmt.Errorf("postgres: failed to commit chapter update: %w", err)
	}

	return nil
}

func (repository *chapterRepository) Delete(context context.Context, chapterID string) error {
	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return fmt.Errorf("postgres: failed to begin chapter delete: %w", err)
	}
	defer func() { _ = transaction.Rollback(context) }()

	imageQuery := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`,
		schema.CoreChapterImage.Table, schema.CoreChapterImage.ChapterID)
	if _, err := transaction.Exec(context, imageQuery, chapterID); err != nil {
		return dberr.Wrap(err, "delete chapter images")
	}

	chapterQuery := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`,
		schema.CoreChapter.Table, schema.CoreChapter.ID)
	result, err := transaction.Exec(context, chapterQuery, chapterID)
	if err != nil {
		return dberr.Wrap(err, "delete chapter")
	}

	if result.RowsAffected() == 0 {
		return apperr.NotFound("chapter")
	}

	if err := transaction.Commit(context); err != nil {
		return fmt.Errorf("postgres: failed to commit chapter delete: %w", err)
	}

	return nil
}

func (repository *chapterRepository) SetApproved(context context.Context, chapterID string) error {
	t := schema.CoreChapter

	query := fmt.Sprintf(`UPDATE %s SET %s = TRUE, %s = NOW() WHERE %s = $1`,
		t.Table, t.IsApproved, t.UpdatedAt, t.ID)

	result, err := repository.pool.Exec(context, query, chapterID)
	if err != nil {
		return dberr.Wrap(err, "approve chapter")
	}

	if result.RowsAffected() == 0 {
		return apperr.NotFound("chapter")
	}

	return nil
}

func (repository *chapterRepository) FindByID(context context.Context, id string) (*Chapter, error) {
	t := schema.CoreChapter

	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1
	`,
		t.ID, t.MangaID, t.UploaderID, t.Number, t.Title, t.Slug, t.IsApproved, t.CreatedAt, t.UpdatedAt,
		t.Table,
		t.ID,
	)

	chapter, err := scanChapter(repository.pool.QueryRow(context, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("chapter")
		}
		return nil, fmt.Errorf("postgres: failed to find chapter by id: %w", err)
	}

	chapter.Images, err = repository.ListImages(context, chapter.ID)
	if err != nil {
		return nil, err
	}

	return chapter, nil
}

func (repository *chapterRepository) FindByNumber(context context.Context, mangaID string, number float64, approvedOnly bool) (*Chapter, error) {
	t := schema.CoreChapter

	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1 AND %s = $2
	`,
		t.ID, t.MangaID, t.UploaderID, t.Number, t.Title, t.Slug, t.IsApproved, t.CreatedAt, t.UpdatedAt,
		t.Table,
		t.MangaID, t.Number,
	)
	if approvedOnly {
		query += fmt.Sprintf(" AND %s = TRUE", t.IsApproved)
	}

	chapter, err := scanChapter(repository.pool.QueryRow(context, query, mangaID, number))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("chapter")
		}
		return nil, fmt.Errorf("postgres: failed to find chapter by number: %w", err)
	}

	chapter.Images, err = repository.ListImages(context, chapter.ID)
	if err != nil {
		return nil, err
	}

	return chapter, nil
}

func (repository *chapterRepository) ListApproved(context context.Context, mangaID string) ([]*Chapter, error) {
	t := schema.CoreChapter

	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1 AND %s = TRUE
		ORDER BY %s ASC
	`,
		t.ID, t.MangaID, t.UploaderID, t.Number, t.Title, t.Slug, t.IsApproved, t.CreatedAt, t.UpdatedAt,
		t.Table,
		t.MangaID, t.IsApproved,
		t.Number,
	)

	rows, err := repository.pool.Query(context, query, mangaID)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to list chapters: %w", err)
	}
	defer rows.Close()

	var chapters []*Chapter
	for rows.Next() {
		chapter, err := scanChapter(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: failed to scan chapter: %w", err)
		}
		chapters = append(chapters, chapter)
	}

	return chapters, nil
}

func (repository *chapterRepository) ListPending(context context.Context, limit, offset int) ([]*Chapter, int, error) {
	t := schema.CoreChapter

	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s, %s, %s, %s,
			COUNT(*) OVER() AS total_count
		FROM %s
		WHERE %s = FALSE
		ORDER BY %s DESC
		LIMIT $1 OFFSET $2
	`,
		t.ID, t.MangaID, t.UploaderID, t.Number, t.Title, t.Slug, t.IsApproved, t.CreatedAt, t.UpdatedAt,
		t.Table,
		t.IsApproved,
		t.CreatedAt,
	)

	rows, err := repository.pool.Query(context, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres: failed to list pending chapters: %w", err)
	}
	defer rows.Close()

	var chapters []*Chapter
	var totalCount int

	for rows.Next() {
		var chapter Chapter
		err := rows.Scan(
			&chapter.ID, &chapter.MangaID, &chapter.UploaderID, &chapter.Number, &chapter.Title,
			&chapter.Slug, &chapter.IsApproved, &chapter.CreatedAt, &chapter.UpdatedAt,
			&totalCount,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("postgres: failed to scan pending chapter: %w", err)
		}
		chapters = append(chapters, &chapter)
	}

	return chapters, totalCount, nil
}

func (repository *chapterRepository) NumberExists(context context.Context, mangaID string, number float64, excludeID string) (bool, error) {
	query, args := numberExistsQuery(mangaID, number, excludeID)

	var exists bool
	if err := repository.pool.QueryRow(context, query, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("postgres: failed to check chapter number: %w", err)
	}

	return exists, nil
}

// numberExistsQuery builds the duplicate-number check. The id column is
// uuid-typed, so an empty excludeID must never reach the comparison:
// Postgres rejects '' as a uuid literal (SQLSTATE 22P02).
func numberExistsQuery(mangaID string, number float64, excludeID string) (string, []any) {
	t := schema.CoreChapter

	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1 AND %s = $2`,
		t.Table, t.MangaID, t.Number)
	args := []any{mangaID, number}

	if excludeID != "" {
		query += fmt.Sprintf(` AND %s <> $3`, t.ID)
		args = append(args, excludeID)
	}

	return query + `)`, args
}

func (repository *chapterRepository) ListImages(context context.Context, chapterID string) ([]*Image, error) {
	t := schema.CoreChapterImage

	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1
		ORDER BY %s ASC
	`,
		t.ID, t.ChapterID, t.Position, t.Path, t.CreatedAt, t.UpdatedAt,
		t.Table,
		t.ChapterID,
		t.Position,
	)

	rows, err := repository.pool.Query(context, query, chapterID)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to list chapter images: %w", err)
	}
	defer rows.Close()

	var images []*Image
	for rows.Next() {
		var image Image
		err := rows.Scan(&image.ID, &image.ChapterID, &image.Position, &image.Path, &image.CreatedAt, &image.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("postgres: failed to scan chapter image: %w", err)
		}
		images = append(images, &image)
	}

	return images, nil
}

// # Internal Helpers

// scanChapter hydrates one chapter row from the shared projection.
func scanChapter(row pgx.Row) (*Chapter, error) {
	var chapter Chapter
	err := row.Scan(
		&chapter.ID, &chapter.MangaID, &chapter.UploaderID, &chapter.Number, &chapter.Title,
		&chapter.Slug, &chapter.IsApproved, &chapter.CreatedAt, &chapter.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &chapter, nil
}

// insertImages pipelines image row inserts inside the given transaction.
func insertImages(context context.Context, transaction pgx.Tx, images []*Image) error {
	if len(images) == 0 {
		return nil
	}

	t := schema.CoreChapterImage

	batch := &pgx.Batch{}
	for _, image := range images {
		batch.Queue(fmt.Sprintf(`
			INSERT INTO %s (%s, %s, %s, %s)
			VALUES ($1, $2, $3, $4)
		`, t.Table, t.ID, t.ChapterID, t.Position, t.Path), image.ID, image.ChapterID, image.Position, image.Path)
	}

	result := transaction.SendBatch(context, batch)
	defer result.Close()

	for i := 0; i < len(images); i++ {
		if _, err := result.Exec(); err != nil {
			return fmt.Errorf("failed to batch insert image %d: %w", i, err)
		}
	}

	return nil
}
