// Copyright (c) 2026 Mangaden. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package reference

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

/*
TestSlugExistsQuery verifies the two shapes of the duplicate-slug check.
Create passes no exclusion; an empty string bound against the uuid id column
would make Postgres reject the whole statement (SQLSTATE 22P02), so the
blank case must drop the comparison entirely.
*/
func TestSlugExistsQuery(t *testing.T) {

	// 1. Creation path: no exclusion clause, one parameter
	query, args := slugExistsQuery(KindAuthor, "kentaro-miura", "")

	assert.NotContains(t, query, "$2")
	assert.NotContains(t, query, "<>")
	require.Len(t, args, 1)
	assert.Equal(t, "kentaro-miura", args[0])

	// 2. Rename path: the entry under edit is excluded from the check
	query, args = slugExistsQuery(KindGenre, "seinen", "genre-1")

	assert.True(t, strings.Contains(query, "<> $2"))
	require.Len(t, args, 2)
	assert.Equal(t, "genre-1", args[1])
}
