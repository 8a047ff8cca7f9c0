package tmdb

import "github.com/mmcdole/marquee/internal/domain"

// pagedResponse is the envelope of every search and trending endpoint
type pagedResponse struct {
	Page         int             `json:"page"`
	Results      []domain.Record `json:"results"`
	TotalPages   int             `json:"total_pages"`
	TotalResults int             `json:"total_results"`
}

// errorResponse is the body TMDB returns on failure
type errorResponse struct {
	StatusCode    int    `json:"status_code"`
	StatusMessage string `json:"status_message"`
	Success       bool   `json:"success"`
}

// Genre is a named genre tag
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// credits is the body of /{movie,tv}/{id}/credits and /person/{id}/combined_credits
type credits struct {
	ID   int             `json:"id"`
	Cast []domain.Record `json:"cast"`
}

// movieDetail is the body of /movie/{id}
type movieDetail struct {
	ID          *int    `json:"id"`
	Title       *string `json:"title"`
	Overview    string  `json:"overview"`
	ReleaseDate string  `json:"release_date"`
	Runtime     int     `json:"runtime"`
	VoteAverage float64 `json:"vote_average"`
	PosterPath  *string `json:"poster_path"`
	Genres      []Genre `json:"genres"`
	Tagline     string  `json:"tagline"`
}

// tvDetail is the body of /tv/{id}
type tvDetail struct {
	ID              *int    `json:"id"`
	Name            *string `json:"name"`
	Overview        string  `json:"overview"`
	FirstAirDate    string  `json:"first_air_date"`
	EpisodeRunTime  []int   `json:"episode_run_time"`
	NumberOfSeasons int     `json:"number_of_seasons"`
	VoteAverage     float64 `json:"vote_average"`
	PosterPath      *string `json:"poster_path"`
	Genres          []Genre `json:"genres"`
}

// personDetail is the body of /person/{id}
type personDetail struct {
	ID                 *int    `json:"id"`
	Name               *string `json:"name"`
	Biography          string  `json:"biography"`
	Birthday           string  `json:"birthday"`
	PlaceOfBirth       string  `json:"place_of_birth"`
	KnownForDepartment string  `json:"known_for_department"`
	ProfilePath        *string `json:"profile_path"`
	Popularity         float64 `json:"popularity"`
}
