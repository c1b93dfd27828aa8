// Copyright (c) 2026 Mangaden. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package dberr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/mangaden/internal/platform/apperr"
)

/*
TestWrap verifies the SQLSTATE classification: racing writers losing to a
unique constraint get a Conflict, dangling references get Unprocessable,
missing rows get NotFound, and everything else stays an opaque Internal.
*/
func TestWrap(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "unique violation",
			err:        &pgconn.PgError{Code: pgerrcode.UniqueViolation},
			wantStatus: 409,
			wantCode:   "CONFLICT",
		},
		{
			name:       "foreign key violation",
			err:        &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation},
			wantStatus: 422,
			wantCode:   "UNPROCESSABLE",
		},
		{
			name:       "no rows",
			err:        pgx.ErrNoRows,
			wantStatus: 404,
			wantCode:   "NOT_FOUND",
		},
		{
			name:       "unknown database error",
			err:        errors.New("connection reset by peer"),
			wantStatus: 500,
			wantCode:   "INTERNAL_ERROR",
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {

			// Drivers hand back wrapped chains, never bare sentinel values
			wrapped := Wrap(fmt.Errorf("exec: %w", testCase.err), "create entry")

			appError := apperr.As(wrapped)
			require.NotNil(t, appError)
			assert.Equal(t, testCase.wantStatus, appError.HTTPStatus)
			assert.Equal(t, testCase.wantCode, appError.Code)
		})
	}
}

func TestWrap_Nil(t *testing.T) {
	assert.NoError(t, Wrap(nil, "noop"))
}

/*
TestIsUniqueViolation verifies detection both on the raw driver error and
after [Wrap] has already classified it.
*/
func TestIsUniqueViolation(t *testing.T) {
	raw := &pgconn.PgError{Code: pgerrcode.UniqueViolation}

	assert.True(t, IsUniqueViolation(raw))
	assert.True(t, IsUniqueViolation(Wrap(raw, "create chapter")))

	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: pgerrcode.ForeignKeyViolation}))
	assert.False(t, IsUniqueViolation(errors.New("connection reset by peer")))
	assert.False(t, IsUniqueViolation(nil))
}
