// Package format normalizes heterogeneous catalog records into domain.ListItem.
package format

import "github.com/mmcdole/marquee/internal/domain"

// UnknownName is the title used when a record carries no name
const UnknownName = "Unknown name"

// Movie formats a movie record. ok is false when the record has no id.
func Movie(r domain.Record) (domain.ListItem, bool) {
	if r.ID == nil {
		return domain.ListItem{}, false
	}
	return domain.ListItem{
		TmdbID: *r.ID,
		Type:   domain.CategoryMovie,
		Title:  titleOr(r.Title),
		Poster: nonEmpty(r.PosterPath),
	}, true
}

// Tv formats a TV show record. ok is false when the record has no id.
func Tv(r domain.Record) (domain.ListItem, bool) {
	if r.ID == nil {
		return domain.ListItem{}, false
	}
	return domain.ListItem{
		TmdbID: *r.ID,
		Type:   domain.CategoryTvShow,
		Title:  titleOr(r.Name),
		Poster: nonEmpty(r.PosterPath),
	}, true
}

// Person formats a person record. ok is false when the record has no id.
func Person(r domain.Record) (domain.ListItem, bool) {
	if r.ID == nil {
		return domain.ListItem{}, false
	}
	return domain.ListItem{
		TmdbID: *r.ID,
		Type:   domain.CategoryPerson,
		Title:  titleOr(r.Name),
		Poster: nonEmpty(r.ProfilePath),
	}, true
}

// Cast formats an entry of a nested credit list. The API sometimes omits ids
// there, so a missing id yields TmdbID 0 instead of dropping the entry.
func Cast(r domain.Record) domain.ListItem {
	id := 0
	if r.ID != nil {
		id = *r.ID
	}
	return domain.ListItem{
		TmdbID:   id,
		Type:     domain.CategoryPerson,
		Title:    titleOr(r.Name),
		SubTitle: nonEmpty(r.Character),
		Poster:   nonEmpty(r.ProfilePath),
	}
}

// Renderable reports whether a mixed result has a media type the UI can show
func Renderable(r domain.Record) bool {
	switch r.MediaType {
	case "movie", "tv", "person":
		return true
	default:
		return false
	}
}

// Multi formats a mixed ("all") result by its media type. Records with a
// type the UI cannot render are dropped.
func Multi(r domain.Record) (domain.ListItem, bool) {
	if !Renderable(r) {
		return domain.ListItem{}, false
	}
	switch r.MediaType {
	case "tv":
		return Tv(r)
	case "person":
		return Person(r)
	default:
		return Movie(r)
	}
}

// Results formats a page of records returned for the given category.
// Trending results are mixed and use the same path as CategoryAll.
func Results(category domain.Category, records []domain.Record) []domain.ListItem {
	var fn func(domain.Record) (domain.ListItem, bool)
	switch category {
	case domain.CategoryMovie:
		fn = Movie
	case domain.CategoryTvShow:
		fn = Tv
	case domain.CategoryPerson:
		fn = Person
	default:
		fn = Multi
	}

	items := make([]domain.ListItem, 0, len(records))
	for _, r := range records {
		if item, ok := fn(r); ok {
			items = append(items, item)
		}
	}
	return items
}

// Credits formats a nested cast list
func Credits(records []domain.Record) []domain.ListItem {
	items := make([]domain.ListItem, 0, len(records))
	for _, r := range records {
		items = append(items, Cast(r))
	}
	return items
}

func titleOr(s *string) string {
	if s == nil || *s == "" {
		return UnknownName
	}
	return *s
}

func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	v := *s
	return &v
}
