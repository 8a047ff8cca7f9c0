package local

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Favorites", "favorites"},
		{"Watch Later", "watch-later"},
		{"  Crème brûlée films!! ", "creme-brulee-films"},
		{"Sci-Fi / Fantasy", "sci-fi-fantasy"},
		{"2024's best", "2024-s-best"},
		{"日本映画", "list"},
		{"!!!", "list"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.in))
		})
	}
}

func TestSlugifyLength(t *testing.T) {
	slug := Slugify(strings.Repeat("ab ", 50))
	assert.LessOrEqual(t, len(slug), maxSlugLen)
	assert.False(t, strings.HasSuffix(slug, "-"))
}

func TestUniqueSlug(t *testing.T) {
	taken := map[string]bool{"favorites": true, "favorites-2": true}
	got, err := uniqueSlug("favorites", func(s string) (bool, error) { return taken[s], nil })
	require.NoError(t, err)
	assert.Equal(t, "favorites-3", got)
}
