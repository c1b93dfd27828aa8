// Copyright (c) 2026 Mangaden. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package reference

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

// referenceRepository implements the [Repository] interface using pgx.
// Authors and genres share one column shape; the kind picks the table.
type referenceRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed lookup store.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &referenceRepository{pool: pool}
}

// tableFor maps a kind to its schema definition. Both tables expose the
// same column set, so [schema.CoreAuthorTable] doubles as the shape.
func tableFor(kind Kind) schema.CoreAuthorTable {
	if kind == KindGenre {
		genre := schema.CoreGenre
		return schema.CoreAuthorTable{
			Table:     genre.Table,
			ID:        genre.ID,
			Name:      genre.Name,
			Slug:      genre.Slug,
			CreatedAt: genre.CreatedAt,
			UpdatedAt: genre.UpdatedAt,
		}
	}
	return schema.CoreAuthor
}

func (repository *referenceRepository) List(context context.Context, kind Kind, limit, offset int) ([]*Entry, int, error) {
	t := tableFor(kind)

	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, COUNT(*) OVER() AS total_count
		FROM %s
		ORDER BY %s ASC
		LIMIT $1 OFFSET $2
	`,
		t.ID, t.Name, t.Slug, t.CreatedAt, t.UpdatedAt,
		t.Table,
		t.Name,
	)

	rows, err := repository.pool.Query(context, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres: failed to list %s: %w", kind, err)
	}
	defer rows.Close()

	var entries []*Entry
	var totalCount int

	for rows.Next() {
		var entry Entry
		err := rows.Scan(&entry.ID, &entry.Name, &entry.Slug, &entry.CreatedAt, &entry.UpdatedAt, &totalCount)
		if err != nil {
			return nil, 0, fmt.Errorf("postgres: failed to scan %s: %w", kind, err)
		}
		entries = append(entries, &entry)
	}

	return entries, totalCount, nil
}

func (repository *referenceRepository) FindBySlug(context context.Context, kind Kind, slug string) (*Entry, error) {
	t := tableFor(kind)

	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s FROM %s WHERE %s = $1
	`, t.ID, t.Name, t.Slug, t.CreatedAt, t.UpdatedAt, t.Table, t.Slug)

	var entry Entry
	err := repository.pool.QueryRow(context, query, slug).Scan(
		&entry.ID, &entry.Name, &entry.Slug, &entry.CreatedAt, &entry.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(string(kind))
		}
		return nil, fmt.Errorf("postgres: failed to find %s by slug: %w", kind, err)
	}

	return &entry, nil
}

func (repository *referenceRepository) Create(context context.Context, kind Kind, entry *Entry) error {
	t := tableFor(kind)

	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s) VALUES ($1, $2, $3)
	`, t.Table, t.ID, t.Name, t.Slug)

	if _, err := repository.pool.Exec(context, query, entry.ID, entry.Name, entry.Slug); err != nil {
		return dberr.Wrap(err, fmt.Sprintf("create %s", kind))
	}

	return nil
}

func (repository *referenceRepository) Update(context context.Context, kind Kind, entry *Entry) error {
	t := tableFor(kind)

	query := fmt.Sprintf(`
		UPDATE %s SET %s = $1, %s = $2, %s = NOW() WHERE %s = $3
	`, t.Table, t.Name, t.Slug, t.UpdatedAt, t.ID)

	result, err := repository.pool.Exec(context, query, entry.Name, entry.Slug, entry.ID)
	if err != nil {
		return dberr.Wrap(err, fmt.Sprintf("update %s", kind))
	}

	if result.RowsAffected() == 0 {
		return apperr.NotFound(string(kind))
	}

	return nil
}

func (repository *referenceRepository) SlugExists(context context.Context, kind Kind, slug, excludeID string) (bool, error) {
	query, args := slugExistsQuery(kind, slug, excludeID)

	var exists bool
	if err := repository.pool.QueryRow(context, query, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("postgres: failed to check %s slug: %w", kind, err)
	}

	return exists, nil
}

// slugExistsQuery builds the duplicate-slug check. The id column is
// uuid-typed, so an empty excludeID must never reach the comparison:
// Postgres rejects '' as a uuid literal (SQLSTATE 22P02).
func slugExistsQuery(kind Kind, slug, excludeID string) (string, []any) {
	t := tableFor(kind)

	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1`, t.Table, t.Slug)
	args := []any{slug}

	if excludeID != "" {
		query += fmt.Sprintf(` AND %s <> $2`, t.ID)
		args = append(args, excludeID)
	}

	return query + `)`, args
}
