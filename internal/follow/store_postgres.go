// Copyright (c) 2026 Mangaden. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package follow

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/mangaden/internal/manga"
	"github.com/taibuivan/mangaden/internal/platform/database/schema"
	"github.com/taibuivan/mangaden/internal/platform/dberr"
)

// # PostgreSQL Repository

// followRepository implements the [Repository] interface using pgx.
type followRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed follow store.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &followRepository{pool: pool}
}

// # Repository Implementation

func (repository *followRepository) Insert(context context.Context, userID, mangaID string) error {
	t := schema.UsersFollow

	// Idempotent insertion; the composite PK absorbs concurrent toggles
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, t.Table, t.UserID, t.MangaID)

	if _, err := repository.pool.Exec(context, query, userID, mangaID); err != nil {
		return dberr.Wrap(err, "insert follow")
	}

	return nil
}

func (repository *followRepository) Delete(context context.Context, userID, mangaID string) error {
	t := schema.UsersFollow

	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND %s = $2`,
		t.Table, t.UserID, t.MangaID)

	if _, err := repository.pool.Exec(context, query, userID, mangaID); err != nil {
		return fmt.Errorf("postgres: failed to delete follow: %w", err)
	}

	return nil
}

func (repository *followRepository) Exists(context context.Context, userID, mangaID string) (bool, error) {
	t := schema.UsersFollow

	query := fmt.Sprintf(`
		SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1 AND %s = $2)
	`, t.Table, t.UserID, t.MangaID)

	var exists bool
	if err := repository.pool.QueryRow(context, query, userID, mangaID).Scan(&exists); err != nil {
		return false, fmt.Errorf("postgres: failed to check follow: %w", err)
	}

	return exists, nil
}

func (repository *followRepository) ListByUser(context context.Context, userID string, limit, offset int) ([]*manga.Manga, int, error) {
	f := schema.UsersFollow
	m := schema.CoreManga

	// Soft-deleted manga stay on the list row level but are hidden here
	query := fmt.Sprintf(`
		SELECT
			m.%s, m.%s, m.%s, m.%s, m.%s, m.%s, m.%s, m.%s, m.%s, m.%s,
			COUNT(*) OVER() AS total_count
		FROM %s f
		JOIN %s m ON f.%s = m.%s
		WHERE f.%s = $1 AND m.%s IS NULL
		ORDER BY f.%s DESC
		LIMIT $2 OFFSET $3
	`,
		m.ID, m.Title, m.AltTitles, m.Slug, m.Description, m.Status, m.CoverImage, m.ViewCount, m.CreatedAt, m.UpdatedAt,
		f.Table,
		m.Table, f.MangaID, m.ID,
		f.UserID, m.DeletedAt,
		f.CreatedAt,
	)

	rows, err := repository.pool.Query(context, query, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres: failed to list follows: %w", err)
	}
	defer rows.Close()

	var mangas []*manga.Manga
	var totalCount int

	for rows.Next() {
		var entry manga.Manga
		err := rows.Scan(
			&entry.ID, &entry.Title, &entry.AltTitles, &entry.Slug, &entry.Description, &entry.Status,
			&entry.CoverImage, &entry.ViewCount, &entry.CreatedAt, &entry.UpdatedAt,
			&totalCount,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("postgres: failed to scan followed manga: %w", err)
		}
		mangas = append(mangas, &entry)
	}

	return mangas, totalCount, nil
}
