// Copyright (c) 2026 Mangaden. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/mangaden/internal/platform/apperr"
	"github.com/taibuivan/mangaden/internal/platform/database/schema"
	"github.com/taibuivan/mangaden/internal/platform/dberr"
)

// # PostgreSQL Repository

// userRepository implements the [Repository] interface using pgx.
type userRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed account store.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &userRepository{pool: pool}
}

// selectColumns returns the account column list for SELECT statements.
func selectColumns() string {
	return strings.Join(schema.UsersAccount.Columns(), ", ")
}

// scanUser hydrates a [User] from a row produced by [selectColumns].
func scanUser(row pgx.Row) (*User, error) {
	user := &User{}
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.DisplayName,
		&user.AvatarURL,
		&user.Bio,
		&user.Slug,
		&user.Role,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// # Repository Implementation

func (repository *userRepository) Create(context context.Context, user *User) error {
	t := schema.UsersAccount

	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, t.Table, selectColumns())

	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	_, err := repository.pool.Exec(context, query,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.DisplayName,
		user.AvatarURL,
		user.Bio,
		user.Slug,
		user.Role,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return dberr.Wrap(err, "create account")
	}

	return nil
}

func (repository *userRepository) FindByID(context context.Context, id string) (*User, error) {
	t := schema.UsersAccount

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		selectColumns(), t.Table, t.ID)

	user, err := scanUser(repository.pool.QueryRow(context, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, fmt.Errorf("postgres: failed to find account by id: %w", err)
	}

	return user, nil
}

func (repository *userRepository) FindByEmail(context context.Context, email string) (*User, error) {
	t := schema.UsersAccount

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		selectColumns(), t.Table, t.Email)

	user, err := scanUser(repository.pool.QueryRow(context, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, fmt.Errorf("postgres: failed to find account by email: %w", err)
	}

	return user, nil
}

func (repository *userRepository) FindByUsername(context context.Context, username string) (*User, error) {
	t := schema.UsersAccount

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		selectColumns(), t.Table, t.Username)

	user, err := scanUser(repository.pool.QueryRow(context, query, username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, fmt.Errorf("postgres: failed to find account by username: %w", err)
	}

	return user, nil
}

func (repository *userRepository) Update(context context.Context, user *User) error {
	t := schema.UsersAccount

	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $3, %s = $4, %s = $5
		WHERE %s = $1
	`, t.Table, t.DisplayName, t.AvatarURL, t.Bio, t.UpdatedAt, t.ID)

	user.UpdatedAt = time.Now()

	tag, err := repository.pool.Exec(context, query,
		user.ID,
		user.DisplayName,
		user.AvatarURL,
		user.Bio,
		user.UpdatedAt,
	)
	if err != nil {
		return dberr.Wrap(err, "update account")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("User")
	}

	return nil
}

func (repository *userRepository) SlugExists(context context.Context, slug string) (bool, error) {
	t := schema.UsersAccount

	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1)`,
		t.Table, t.Slug)

	var exists bool
	if err := repository.pool.QueryRow(context, query, slug).Scan(&exists); err != nil {
		return false, fmt.Errorf("postgres: failed to check profile slug: %w", err)
	}

	return exists, nil
}
