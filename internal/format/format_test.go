package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/marquee/internal/domain"
)

func ptr[T any](v T) *T { return &v }

func TestFormatters(t *testing.T) {
	tests := []struct {
		name   string
		fn     func(domain.Record) (domain.ListItem, bool)
		record domain.Record
		want   domain.ListItem
		ok     bool
	}{
		{
			name:   "movie uses title and poster",
			fn:     Movie,
			record: domain.Record{ID: ptr(550), Title: ptr("Fight Club"), PosterPath: ptr("/fc.jpg")},
			want:   domain.ListItem{TmdbID: 550, Type: domain.CategoryMovie, Title: "Fight Club", Poster: ptr("/fc.jpg")},
			ok:     true,
		},
		{
			name:   "movie without optional fields",
			fn:     Movie,
			record: domain.Record{ID: ptr(1)},
			want:   domain.ListItem{TmdbID: 1, Type: domain.CategoryMovie, Title: UnknownName},
			ok:     true,
		},
		{
			name:   "tv uses name",
			fn:     Tv,
			record: domain.Record{ID: ptr(1399), Name: ptr("Game of Thrones"), Title: ptr("ignored")},
			want:   domain.ListItem{TmdbID: 1399, Type: domain.CategoryTvShow, Title: "Game of Thrones"},
			ok:     true,
		},
		{
			name:   "person uses profile path",
			fn:     Person,
			record: domain.Record{ID: ptr(287), Name: ptr("Brad Pitt"), ProfilePath: ptr("/bp.jpg"), PosterPath: ptr("/nope.jpg")},
			want:   domain.ListItem{TmdbID: 287, Type: domain.CategoryPerson, Title: "Brad Pitt", Poster: ptr("/bp.jpg")},
			ok:     true,
		},
		{
			name:   "empty poster is absent",
			fn:     Tv,
			record: domain.Record{ID: ptr(2), Name: ptr("X"), PosterPath: ptr("")},
			want:   domain.ListItem{TmdbID: 2, Type: domain.CategoryTvShow, Title: "X"},
			ok:     true,
		},
		{
			name:   "missing id is dropped",
			fn:     Movie,
			record: domain.Record{Title: ptr("No id")},
			ok:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.fn(tt.record)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
				assert.Nil(t, got.SubTitle)
			}
		})
	}
}

func TestCastFallback(t *testing.T) {
	got := Cast(domain.Record{Name: ptr("Edward Norton"), Character: ptr("The Narrator")})
	assert.Equal(t, 0, got.TmdbID)
	assert.Equal(t, domain.CategoryPerson, got.Type)
	require.NotNil(t, got.SubTitle)
	assert.Equal(t, "The Narrator", *got.SubTitle)
	assert.Nil(t, got.Poster)

	got = Cast(domain.Record{ID: ptr(819)})
	assert.Equal(t, 819, got.TmdbID)
	assert.Equal(t, UnknownName, got.Title)
	assert.Nil(t, got.SubTitle)
}

func TestMultiFiltersUnrenderable(t *testing.T) {
	records := []domain.Record{
		{ID: ptr(1), MediaType: "movie", Title: ptr("A")},
		{ID: ptr(2), MediaType: "collection", Name: ptr("B")},
		{ID: ptr(3), MediaType: "tv", Name: ptr("C")},
		{ID: ptr(4), MediaType: "", Name: ptr("D")},
		{ID: ptr(5), MediaType: "person", Name: ptr("E")},
		{MediaType: "movie", Title: ptr("no id")},
	}

	assert.True(t, Renderable(records[0]))
	assert.False(t, Renderable(records[1]))
	assert.False(t, Renderable(records[3]))

	items := Results(domain.CategoryAll, records)
	require.Len(t, items, 3)
	assert.Equal(t, []domain.Category{domain.CategoryMovie, domain.CategoryTvShow, domain.CategoryPerson},
		[]domain.Category{items[0].Type, items[1].Type, items[2].Type})
	for _, it := range items {
		assert.NotEqual(t, domain.CategoryAll, it.Type)
	}
}

func TestResultsByCategory(t *testing.T) {
	records := []domain.Record{
		{ID: ptr(10), Name: ptr("Show")},
		{ID: ptr(11)},
	}
	items := Results(domain.CategoryTvShow, records)
	require.Len(t, items, 2)
	assert.Equal(t, "Show", items[0].Title)
	assert.Equal(t, UnknownName, items[1].Title)
}

func TestCredits(t *testing.T) {
	items := Credits([]domain.Record{{ID: ptr(1), Name: ptr("A")}, {Name: ptr("B")}})
	require.Len(t, items, 2)
	assert.Equal(t, 0, items[1].TmdbID)
}
