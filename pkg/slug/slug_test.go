// Copyright (c) 2026 Mangaden. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package slug_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/mangaden/pkg/slug"
)

/*
TestFrom verifies the slug transformation pipeline across common title shapes.
*/
func TestFrom(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simple_title", "One Piece", "one-piece"},
		{"accents_stripped", "Akumetsu no Café", "akumetsu-no-cafe"},
		{"punctuation", "Dr. STONE: reboot!", "dr-stone-reboot"},
		{"fractional_chapter", "Berserk 363.5", "berserk-363-5"},
		{"collapsed_hyphens", "A  --  B", "a-b"},
		{"leading_trailing_trimmed", "  ~Special~  ", "special"},
		{"already_slug", "solo-leveling", "solo-leveling"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, slug.From(tt.input))
		})
	}
}
