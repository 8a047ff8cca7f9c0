package domain

import (
	"fmt"
	"strings"
)

// Category partitions the catalog for search and browsing
type Category int

const (
	CategoryAll Category = iota
	CategoryMovie
	CategoryTvShow
	CategoryPerson
)

// Categories lists every category in tab order
var Categories = []Category{CategoryAll, CategoryMovie, CategoryTvShow, CategoryPerson}

// String returns the navigable parameter form ("all", "movie", "tv", "person")
func (c Category) String() string {
	switch c {
	case CategoryAll:
		return "all"
	case CategoryMovie:
		return "movie"
	case CategoryTvShow:
		return "tv"
	case CategoryPerson:
		return "person"
	default:
		return "unknown"
	}
}

// Label returns the human readable tab label
func (c Category) Label() string {
	switch c {
	case CategoryAll:
		return "All"
	case CategoryMovie:
		return "Movies"
	case CategoryTvShow:
		return "TV Shows"
	case CategoryPerson:
		return "People"
	default:
		return "Unknown"
	}
}

// ParseCategory converts a tab parameter into a Category
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return CategoryAll, nil
	case "movie", "movies":
		return CategoryMovie, nil
	case "tv", "show", "shows":
		return CategoryTvShow, nil
	case "person", "people":
		return CategoryPerson, nil
	default:
		return CategoryAll, fmt.Errorf("unknown category %q (want all, movie, tv or person)", s)
	}
}

// MarshalText encodes the category in its parameter form
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText decodes the parameter form
func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// SearchIntent is the user-controlled tuple that fully determines which
// remote search to perform. Two intents are equal when all fields match.
type SearchIntent struct {
	Query string
	Tab   Category
	Page  int
}

// Normalize trims the query and clamps the page to 1 or more
func (i SearchIntent) Normalize() SearchIntent {
	i.Query = strings.TrimSpace(i.Query)
	if i.Page < 1 {
		i.Page = 1
	}
	return i
}

// IsTrending reports whether the intent resolves to the trending feed
func (i SearchIntent) IsTrending() bool {
	return strings.TrimSpace(i.Query) == ""
}

// ResultPage is one page of catalog search results
type ResultPage struct {
	Results      []Record
	Page         int
	TotalPages   int
	TotalResults int
}
