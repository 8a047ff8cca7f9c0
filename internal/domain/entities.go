package domain

import "fmt"

// Record is a raw catalog record as returned by the search API.
// Pointer fields distinguish an absent value from a zero value.
type Record struct {
	ID                 *int     `json:"id,omitempty"`
	MediaType          string   `json:"media_type,omitempty"` // "movie", "tv", "person" (multi search only)
	Title              *string  `json:"title,omitempty"`      // movies
	Name               *string  `json:"name,omitempty"`       // tv shows and people
	PosterPath         *string  `json:"poster_path,omitempty"`
	ProfilePath        *string  `json:"profile_path,omitempty"`
	Character          *string  `json:"character,omitempty"` // cast credits only
	Overview           string   `json:"overview,omitempty"`
	ReleaseDate        string   `json:"release_date,omitempty"`
	FirstAirDate       string   `json:"first_air_date,omitempty"`
	KnownForDepartment string   `json:"known_for_department,omitempty"`
	VoteAverage        float64  `json:"vote_average,omitempty"`
	Popularity         float64  `json:"popularity,omitempty"`
	KnownFor           []Record `json:"known_for,omitempty"`
}

// ListItem is the uniform display-and-reference shape of a catalog record.
// Produced only by the format package; never hand-edited.
type ListItem struct {
	TmdbID   int      `json:"tmdbId"`
	Type     Category `json:"type"` // never CategoryAll
	Title    string   `json:"title"`
	SubTitle *string  `json:"subTitle,omitempty"`
	Poster   *string  `json:"poster,omitempty"`
}

// Key identifies the catalog entry this item references
func (i ListItem) Key() string {
	return fmt.Sprintf("%s:%d", i.Type, i.TmdbID)
}

// SameEntry reports whether both items reference the same catalog entry
func (i ListItem) SameEntry(other ListItem) bool {
	return i.TmdbID == other.TmdbID && i.Type == other.Type
}

// List is a user-owned named collection of catalog references
type List struct {
	ID    string     `json:"id"`   // Persistence-layer key
	Slug  string     `json:"slug"` // Unique, stable, derived from the name at creation
	Name  string     `json:"name"`
	Items []ListItem `json:"items"`
}

// Contains reports whether the list already holds the item's catalog entry
func (l List) Contains(item ListItem) bool {
	for _, it := range l.Items {
		if it.SameEntry(item) {
			return true
		}
	}
	return false
}

// Clone returns a copy that shares no item storage with l
func (l List) Clone() List {
	out := l
	out.Items = append([]ListItem(nil), l.Items...)
	return out
}

// User is an authenticated account
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// AuthUser is the resolved authentication state. Auth=false implies User=nil.
type AuthUser struct {
	Auth bool  `json:"auth"`
	User *User `json:"user,omitempty"`
}

// Anonymous returns the unauthenticated marker
func Anonymous() AuthUser {
	return AuthUser{}
}

// Authenticated returns an AuthUser for u
func Authenticated(u User) AuthUser {
	return AuthUser{Auth: true, User: &u}
}

// ModalMode selects whether the list modal adds or removes an item
type ModalMode int

const (
	ModeAdd ModalMode = iota
	ModeRemove
)

func (m ModalMode) String() string {
	if m == ModeRemove {
		return "remove"
	}
	return "add"
}

// ListModalState is the single, globally visible "add to list" modal
type ListModalState struct {
	Visible bool
	Mode    ModalMode
	Item    *ListItem
}

// Detail is the full record behind a detail screen
type Detail struct {
	Item     ListItem
	Overview string
	Date     string // Release, first air or birth date
	Genres   []string
	Runtime  int     // Minutes (movies) or episode runtime (tv)
	Rating   float64 // 0-10 vote average
	Seasons  int     // TV only
	Cast     []ListItem
	KnownFor []ListItem // People only
}

// Route names a top-level screen
type Route string

const (
	RouteHome   Route = "home"
	RouteLists  Route = "lists"
	RouteSignIn Route = "signin"
	RouteDetail Route = "detail"
)
