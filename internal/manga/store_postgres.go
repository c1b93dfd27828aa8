// Copyright (c) 2026 Mangaden. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
PostgreSQL implementation for the catalogue's data access.

It leans on Postgres features to keep discovery fast:
  - ILIKE matching over title, description, and the alt-title JSONB payload.
  - Window Functions: COUNT(*) OVER() avoids a separate total query.
  - ACID Transactions: atomic writes for manga rows and their junction tables.

The repository follows an "Aggregate" pattern where junction rows are managed
through the main repository instance to maintain domain integrity.
*/
package manga

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/mangaden/internal/platform/apperr"
	"github.com/taibuivan/mangaden/internal/platform/database/schema"
	"github.com/taibuivan/mangaden/internal/platform/dberr"
)

// # PostgreSQL Repository

// mangaRepository implements the [Repository] interface using pgx.
type mangaRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed manga store.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &mangaRepository{pool: pool}
}

// selectColumns is the shared projection for manga reads.
func selectColumns(alias string) string {
	t := schema.CoreManga
	cols := []string{
		t.ID, t.Title, t.AltTitles, t.Slug, t.Description, t.Status,
		t.CoverImage, t.ViewCount, t.AverageRating, t.CreatedAt, t.UpdatedAt, t.DeletedAt,
	}
	for i, col := range cols {
		cols[i] = alias + "." + col
	}
	return strings.Join(cols, ", ")
}

// scanManga hydrates one manga row from the shared projection.
func scanManga(row pgx.Row, extra ...any) (*Manga, error) {
	var manga Manga

	targets := []any{
		&manga.ID, &manga.Title, &manga.AltTitles, &manga.Slug, &manga.Description, &manga.Status,
		&manga.CoverImage, &manga.ViewCount, &manga.AverageRating, &manga.CreatedAt, &manga.UpdatedAt, &manga.DeletedAt,
	}
	targets = append(targets, extra...)

	if err := row.Scan(targets...); err != nil {
		return nil, err
	}
	return &manga, nil
}

// # Repository Implementation

func (repository *mangaRepository) Create(context context.Context, manga *Manga) error {
	t := schema.CoreManga

	// Single transaction for the row plus its junction tables
	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return fmt.Errorf("postgres: failed to begin manga create: %w", err)
	}
	defer func() { _ = transaction.Rollback(context) }()

	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		t.Table,
		t.ID, t.Title, t.AltTitles, t.Slug, t.Description, t.Status, t.CoverImage,
	)

	_, err = transaction.Exec(context, query,
		manga.ID,
		manga.Title,
		manga.AltTitles,
		manga.Slug,
		manga.Description,
		manga.Status,
		manga.CoverImage,
	)
	if err != nil {
		return dberr.Wrap(err, "create manga")
	}

	// Duplicate relation IDs in the input are conflict no-ops
	if err := attachRelations(context, transaction, schema.CoreMangaAuthor.Table, schema.CoreMangaAuthor.MangaID, schema.CoreMangaAuthor.AuthorID, manga.ID, manga.AuthorIDs); err != nil {
		return dberr.Wrap(err, "attach manga authors")
	}
	if err := attachRelations(context, transaction, schema.CoreMangaGenre.Table, schema.CoreMangaGenre.MangaID, schema.CoreMangaGenre.GenreID, manga.ID, manga.GenreIDs); err != nil {
		return dberr.Wrap(err, "attach manga genres")
	}

	if err := transaction.Commit(context); err != nil {
		return fmt.Errorf("postgres: failed to commit manga create: %w", err)
	}

	return nil
}

func (repository *mangaRepository) Update(context context.Context, manga *Manga) error {
	t := schema.CoreManga

	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $1, %s = $2, %s = $3, %s = $4, %s = $5, %s = NOW()
		WHERE %s = $6 AND %s IS NULL
	`,
		t.Table,
		t.Title, t.AltTitles, t.Description, t.Status, t.CoverImage, t.UpdatedAt,
		t.ID, t.DeletedAt,
	)

	result, err := repository.pool.Exec(context, query,
		manga.Title,
		manga.AltTitles,
		manga.Description,
		manga.Status,
		manga.CoverImage,
		manga.ID,
	)
	if err != nil {
		return dberr.Wrap(err, "update manga")
	}

	if result.RowsAffected() == 0 {
		return apperr.NotFound("manga")
	}

	return nil
}

func (repository *mangaRepository) SyncAuthors(context context.Context, mangaID string, authorIDs []string) error {
	return repository.syncRelations(context,
		schema.CoreMangaAuthor.Table, schema.CoreMangaAuthor.MangaID, schema.CoreMangaAuthor.AuthorID,
		mangaID, authorIDs, "sync manga authors")
}

func (repository *mangaRepository) SyncGenres(context context.Context, mangaID string, genreIDs []string) error {
	return repository.syncRelations(context,
		schema.CoreMangaGenre.Table, schema.CoreMangaGenre.MangaID, schema.CoreMangaGenre.GenreID,
		mangaID, genreIDs, "sync manga genres")
}

func (repository *mangaRepository) List(context context.Context, filter Filter, limit, offset int) ([]*Manga, int, error) {
	t := schema.CoreManga

	// Query construction
	var queryBuilder strings.Builder
	var args []any
	argID := 1

	queryBuilder.WriteString(fmt.Sprintf(`
		SELECT %s, COUNT(*) OVER() AS total_count
		FROM %s m
		WHERE m.%s IS NULL
	`, selectColumns("m"), t.Table, t.DeletedAt))

	// Keyword matching over title, description, and alt-title JSONB text
	if filter.Query != "" {
		queryBuilder.WriteString(fmt.Sprintf(
			" AND (m.%s ILIKE $%d OR m.%s ILIKE $%d OR m.%s::text ILIKE $%d)",
			t.Title, argID, t.Description, argID, t.AltTitles, argID,
		))
		args = append(args, "%"+filter.Query+"%")
		argID++
	}

	if filter.Status != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND m.%s = $%d", t.Status, argID))
		args = append(args, filter.Status)
		argID++
	}

	// Genre filter routes through the junction and genre tables
	if filter.GenreSlug != "" {
		queryBuilder.WriteString(fmt.Sprintf(`
			AND EXISTS (
				SELECT 1 FROM %s mg
				JOIN %s g ON mg.%s = g.%s
				WHERE mg.%s = m.%s AND g.%s = $%d
			)
		`,
			schema.CoreMangaGenre.Table,
			schema.CoreGenre.Table, schema.CoreMangaGenre.GenreID, schema.CoreGenre.ID,
			schema.CoreMangaGenre.MangaID, t.ID, schema.CoreGenre.Slug, argID,
		))
		args = append(args, filter.GenreSlug)
		argID++
	}

	queryBuilder.WriteString(fmt.Sprintf(" ORDER BY m.%s DESC", t.CreatedAt))
	queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", argID, argID+1))
	args = append(args, limit, offset)

	// Query execution
	rows, err := repository.pool.Query(context, queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres: failed to list manga: %w", err)
	}
	defer rows.Close()

	// Entity hydration
	var mangas []*Manga
	var totalCount int

	for rows.Next() {
		manga, err := scanManga(rows, &totalCount)
		if err != nil {
			return nil, 0, fmt.Errorf("postgres: failed to scan manga: %w", err)
		}
		mangas = append(mangas, manga)
	}

	return mangas, totalCount, nil
}

func (repository *mangaRepository) Popular(context context.Context, limit int) ([]*Manga, error) {
	t := schema.CoreManga
	query := fmt.Sprintf(`
		SELECT %s FROM %s m
		WHERE m.%s IS NULL
		ORDER BY m.%s DESC
		LIMIT $1
	`, selectColumns("m"), t.Table, t.DeletedAt, t.ViewCount)

	return repository.queryMany(context, query, limit)
}

func (repository *mangaRepository) Latest(context context.Context, limit int) ([]*Manga, error) {
	t := schema.CoreManga
	query := fmt.Sprintf(`
		SELECT %s FROM %s m
		WHERE m.%s IS NULL
		ORDER BY m.%s DESC
		LIMIT $1
	`, selectColumns("m"), t.Table, t.DeletedAt, t.UpdatedAt)

	return repository.queryMany(context, query, limit)
}

func (repository *mangaRepository) FindBySlug(context context.Context, slug string, includeDeleted bool) (*Manga, error) {
	t := schema.CoreManga

	query := fmt.Sprintf(`SELECT %s FROM %s m WHERE m.%s = $1`, selectColumns("m"), t.Table, t.Slug)
	if !includeDeleted {
		query += fmt.Sprintf(" AND m.%s IS NULL", t.DeletedAt)
	}

	manga, err := scanManga(repository.pool.QueryRow(context, query, slug))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("manga")
		}
		return nil, fmt.Errorf("postgres: failed to find manga by slug: %w", err)
	}

	if err := repository.loadRelationIDs(context, manga); err != nil {
		return nil, err
	}

	return manga, nil
}

func (repository *mangaRepository) FindByID(context context.Context, id string) (*Manga, error) {
	t := schema.CoreManga

	query := fmt.Sprintf(`SELECT %s FROM %s m WHERE m.%s = $1 AND m.%s IS NULL`,
		selectColumns("m"), t.Table, t.ID, t.DeletedAt)

	manga, err := scanManga(repository.pool.QueryRow(context, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("manga")
		}
		return nil, fmt.Errorf("postgres: failed to find manga by id: %w", err)
	}

	return manga, nil
}

func (repository *mangaRepository) IncrementViewCount(context context.Context, id string) error {
	t := schema.CoreManga

	// Direct atomic increment to prevent race conditions during heavy traffic
	query := fmt.Sprintf(`UPDATE %s SET %s = %s + 1 WHERE %s = $1`,
		t.Table, t.ViewCount, t.ViewCount, t.ID)

	if _, err := repository.pool.Exec(context, query, id); err != nil {
		return fmt.Errorf("postgres: failed to increment manga view count: %w", err)
	}

	return nil
}

func (repository *mangaRepository) SoftDelete(context context.Context, id string) error {
	t := schema.CoreManga

	query := fmt.Sprintf(`UPDATE %s SET %s = NOW() WHERE %s = $1 AND %s IS NULL`,
		t.Table, t.DeletedAt, t.ID, t.DeletedAt)

	result, err := repository.pool.Exec(context, query, id)
	if err != nil {
		return fmt.Errorf("postgres: failed to soft delete manga: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperr.NotFound("manga")
	}

	return nil
}

func (repository *mangaRepository) SlugExists(context context.Context, slug string) (bool, error) {
	t := schema.CoreManga

	// Deleted rows still reserve their slug
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1)`, t.Table, t.Slug)

	var exists bool
	if err := repository.pool.QueryRow(context, query, slug).Scan(&exists); err != nil {
		return false, fmt.Errorf("postgres: failed to check manga slug: %w", err)
	}

	return exists, nil
}

// # Internal Helpers

// queryMany runs a relation-free manga projection query.
func (repository *mangaRepository) queryMany(context context.Context, query string, args ...any) ([]*Manga, error) {
	rows, err := repository.pool.Query(context, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query manga: %w", err)
	}
	defer rows.Close()

	var mangas []*Manga
	for rows.Next() {
		manga, err := scanManga(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: failed to scan manga: %w", err)
		}
		mangas = append(mangas, manga)
	}

	return mangas, nil
}

// loadRelationIDs hydrates the junction IDs for a single manga.
func (repository *mangaRepository) loadRelationIDs(context context.Context, manga *Manga) error {
	var err error

	manga.AuthorIDs, err = repository.relationIDs(context,
		schema.CoreMangaAuthor.Table, schema.CoreMangaAuthor.MangaID, schema.CoreMangaAuthor.AuthorID, manga.ID)
	if err != nil {
		return err
	}

	manga.GenreIDs, err = repository.relationIDs(context,
		schema.CoreMangaGenre.Table, schema.CoreMangaGenre.MangaID, schema.CoreMangaGenre.GenreID, manga.ID)
	return err
}

func (repository *mangaRepository) relationIDs(context context.Context, table, ownerCol, relatedCol, mangaID string) ([]string, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`, relatedCol, table, ownerCol)

	rows, err := repository.pool.Query(context, query, mangaID)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to load manga relations: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("postgres: failed to scan relation id: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, nil
}

// attachRelations inserts junction rows, ignoring duplicates.
func attachRelations(context context.Context, transaction pgx.Tx, table, ownerCol, relatedCol, mangaID string, relatedIDs []string) error {
	if len(relatedIDs) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, relatedID := range relatedIDs {
		batch.Queue(fmt.Sprintf(`
			INSERT INTO %s (%s, %s) VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, table, ownerCol, relatedCol), mangaID, relatedID)
	}

	result := transaction.SendBatch(context, batch)
	defer result.Close()

	for i := 0; i < len(relatedIDs); i++ {
		if _, err := result.Exec(); err != nil {
			return err
		}
	}

	return nil
}

// syncRelations replaces a manga's junction rows with exactly relatedIDs.
func (repository *mangaRepository) syncRelations(context context.Context, table, ownerCol, relatedCol, mangaID string, relatedIDs []string, action string) error {
	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return fmt.Errorf("postgres: failed to begin %s: %w", action, err)
	}
	defer func() { _ = transaction.Rollback(context) }()

	deleteQuery := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, table, ownerCol)
	if _, err := transaction.Exec(context, deleteQuery, mangaID); err != nil {
		return dberr.Wrap(err, action)
	}

	if err := attachRelations(context, transaction, table, ownerCol, relatedCol, mangaID, relatedIDs); err != nil {
		return dberr.Wrap(err, action)
	}

	if err := transaction.Commit(context); err != nil {
		return fmt.Errorf("postgres: failed to commit %s: %w", action, err)
	}

	return nil
}
