package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/marquee/internal/domain"
)

func TestFilterLists(t *testing.T) {
	lists := []domain.List{
		{Slug: "favorites", Name: "Favorites"},
		{Slug: "watch-later", Name: "Watch Later"},
		{Slug: "horror", Name: "Horror Night"},
	}

	all := FilterLists("  ", lists)
	require.Len(t, all, 3)
	assert.Equal(t, "favorites", all[0].List.Slug)

	got := FilterLists("hn", lists)
	require.Len(t, got, 1)
	assert.Equal(t, "horror", got[0].List.Slug)
	assert.NotEmpty(t, got[0].MatchedIndexes)

	assert.Empty(t, FilterLists("zzz", lists))
}

func TestFilterListsMatchedIndexesAreRunePositions(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []int
	}{
		{name: "Café Noir", query: "noir", want: []int{5, 6, 7, 8}},
		{name: "Émile", query: "MILE", want: []int{1, 2, 3, 4}},
		{name: "İstanbul", query: "ist", want: []int{0, 1, 2}},
		{name: "Heat", query: "eat", want: []int{1, 2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterLists(tt.query, []domain.List{{Slug: "l", Name: tt.name}})
			require.Len(t, got, 1)
			assert.Equal(t, tt.want, got[0].MatchedIndexes)

			runes := []rune(tt.name)
			for _, i := range got[0].MatchedIndexes {
				require.Less(t, i, len(runes))
			}
		})
	}
}

func TestSuggest(t *testing.T) {
	history := []string{"batman begins", "the batman", "alien", "Batman"}

	got := Suggest("batman", history, 0)
	assert.Equal(t, []string{"batman begins", "the batman"}, got)

	assert.Len(t, Suggest("bat", history, 1), 1)
	assert.Nil(t, Suggest("", history, 5))
}
