package tmdb

import (
	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/format"
)

// maxCast bounds the cast shown on a detail screen
const maxCast = 20

// MapMovie converts a movie detail and its credits to a domain.Detail
func MapMovie(m movieDetail, c credits) (domain.Detail, bool) {
	item, ok := format.Movie(domain.Record{ID: m.ID, Title: m.Title, PosterPath: m.PosterPath})
	if !ok {
		return domain.Detail{}, false
	}
	return domain.Detail{
		Item:     item,
		Overview: m.Overview,
		Date:     m.ReleaseDate,
		Genres:   genreNames(m.Genres),
		Runtime:  m.Runtime,
		Rating:   m.VoteAverage,
		Cast:     format.Credits(head(c.Cast, maxCast)),
	}, true
}

// MapTv converts a TV show detail and its credits to a domain.Detail
func MapTv(t tvDetail, c credits) (domain.Detail, bool) {
	item, ok := format.Tv(domain.Record{ID: t.ID, Name: t.Name, PosterPath: t.PosterPath})
	if !ok {
		return domain.Detail{}, false
	}
	runtime := 0
	if len(t.EpisodeRunTime) > 0 {
		runtime = t.EpisodeRunTime[0]
	}
	return domain.Detail{
		Item:     item,
		Overview: t.Overview,
		Date:     t.FirstAirDate,
		Genres:   genreNames(t.Genres),
		Runtime:  runtime,
		Rating:   t.VoteAverage,
		Seasons:  t.NumberOfSeasons,
		Cast:     format.Credits(head(c.Cast, maxCast)),
	}, true
}

// MapPerson converts a person and their combined credits to a domain.Detail.
// Credits with a media type the UI cannot render are dropped.
func MapPerson(p personDetail, c credits) (domain.Detail, bool) {
	item, ok := format.Person(domain.Record{ID: p.ID, Name: p.Name, ProfilePath: p.ProfilePath})
	if !ok {
		return domain.Detail{}, false
	}
	knownFor := format.Results(domain.CategoryAll, c.Cast)
	if len(knownFor) > maxCast {
		knownFor = knownFor[:maxCast]
	}
	var genres []string
	if p.KnownForDepartment != "" {
		genres = []string{p.KnownForDepartment}
	}
	return domain.Detail{
		Item:     item,
		Overview: p.Biography,
		Date:     p.Birthday,
		Genres:   genres,
		KnownFor: knownFor,
	}, true
}

func genreNames(genres []Genre) []string {
	names := make([]string, 0, len(genres))
	for _, g := range genres {
		names = append(names, g.Name)
	}
	return names
}

func head(records []domain.Record, n int) []domain.Record {
	if len(records) > n {
		return records[:n]
	}
	return records
}
