package tmdb

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/marquee/internal/domain"
)

func newTestServer(t *testing.T, routes map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := routes[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"success":false,"status_code":34,"status_message":"The resource you requested could not be found."}`))
			return
		}
		if r.URL.Query().Get("api_key") != "key" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"success":false,"status_code":7,"status_message":"Invalid API key"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestSearchMovie(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search/movie", r.URL.Path)
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`{"page":2,"total_pages":5,"total_results":97,"results":[
			{"id":268,"title":"Batman","poster_path":"/b.jpg"},
			{"title":"No id"}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "key", nil, WithLanguage("en-US"))
	page, err := c.SearchMovie(context.Background(), "batman", 2)
	require.NoError(t, err)

	assert.Contains(t, gotQuery, "query=batman")
	assert.Contains(t, gotQuery, "page=2")
	assert.Contains(t, gotQuery, "language=en-US")
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 5, page.TotalPages)
	require.Len(t, page.Results, 2)
	require.NotNil(t, page.Results[0].ID)
	assert.Equal(t, 268, *page.Results[0].ID)
	assert.Nil(t, page.Results[1].ID)
}

func TestReadTokenUsesBearer(t *testing.T) {
	token := "eyJhbGciOiJIUzI1NiJ9.eyJhdWQiOiJ4In0.c2ln"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer "+token, r.Header.Get("Authorization"))
		assert.Empty(t, r.URL.Query().Get("api_key"))
		_, _ = w.Write([]byte(`{"page":1,"total_pages":1,"results":[]}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, token, nil).Trending(context.Background())
	require.NoError(t, err)
}

func TestErrorMapping(t *testing.T) {
	srv := newTestServer(t, map[string]string{"/trending/all/day": `{"results":[]}`})

	_, err := NewClient(srv.URL, "wrong", nil).Trending(context.Background())
	var apiErr *domain.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "Invalid API key", apiErr.Message)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = NewClient(srv.URL, "key", nil).Movie(context.Background(), 999)
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.NotFound())
	assert.True(t, domain.IsNotFound(err))
}

func TestServerOffline(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, "key", nil).SearchMulti(context.Background(), "x", 1)
	assert.True(t, errors.Is(err, domain.ErrServerOffline))
	assert.False(t, domain.IsNotFound(err))
}

func TestInvalidID(t *testing.T) {
	c := NewClient("http://127.0.0.1:0", "key", nil)
	for _, fn := range []func(context.Context, int) (domain.Detail, error){c.Movie, c.Tv, c.Person} {
		_, err := fn(context.Background(), 0)
		assert.ErrorIs(t, err, domain.ErrInvalidID)
		assert.True(t, domain.IsNotFound(err))
	}
}

func TestMovieDetail(t *testing.T) {
	srv := newTestServer(t, map[string]string{
		"/movie/550": `{"id":550,"title":"Fight Club","overview":"An insomniac...","release_date":"1999-10-15",
			"runtime":139,"vote_average":8.4,"genres":[{"id":18,"name":"Drama"}]}`,
		"/movie/550/credits": `{"id":550,"cast":[
			{"id":819,"name":"Edward Norton","character":"The Narrator","profile_path":"/en.jpg"},
			{"name":"Uncredited","character":"Extra"}]}`,
	})

	d, err := NewClient(srv.URL, "key", nil).Movie(context.Background(), 550)
	require.NoError(t, err)

	assert.Equal(t, domain.ListItem{TmdbID: 550, Type: domain.CategoryMovie, Title: "Fight Club"}, d.Item)
	assert.Equal(t, []string{"Drama"}, d.Genres)
	assert.Equal(t, 139, d.Runtime)
	require.Len(t, d.Cast, 2)
	assert.Equal(t, 819, d.Cast[0].TmdbID)
	require.NotNil(t, d.Cast[0].SubTitle)
	assert.Equal(t, "The Narrator", *d.Cast[0].SubTitle)
	assert.Equal(t, 0, d.Cast[1].TmdbID)
	assert.Equal(t, domain.CategoryPerson, d.Cast[1].Type)
}

func TestTvDetail(t *testing.T) {
	srv := newTestServer(t, map[string]string{
		"/tv/1399":         `{"id":1399,"name":"Game of Thrones","first_air_date":"2011-04-17","episode_run_time":[60],"number_of_seasons":8}`,
		"/tv/1399/credits": `{"id":1399,"cast":[]}`,
	})

	d, err := NewClient(srv.URL, "key", nil).Tv(context.Background(), 1399)
	require.NoError(t, err)
	assert.Equal(t, "Game of Thrones", d.Item.Title)
	assert.Equal(t, 60, d.Runtime)
	assert.Equal(t, 8, d.Seasons)
}

func TestPersonDetailFiltersCredits(t *testing.T) {
	srv := newTestServer(t, map[string]string{
		"/person/287": `{"id":287,"name":"Brad Pitt","birthday":"1963-12-18","known_for_department":"Acting","profile_path":"/bp.jpg"}`,
		"/person/287/combined_credits": `{"id":287,"cast":[
			{"id":550,"media_type":"movie","title":"Fight Club"},
			{"id":1,"media_type":"collection","name":"Nope"},
			{"id":2,"media_type":"tv","name":"Friends"}]}`,
	})

	d, err := NewClient(srv.URL, "key", nil).Person(context.Background(), 287)
	require.NoError(t, err)
	require.NotNil(t, d.Item.Poster)
	assert.Equal(t, "/bp.jpg", *d.Item.Poster)
	assert.Equal(t, []string{"Acting"}, d.Genres)
	require.Len(t, d.KnownFor, 2)
	assert.Equal(t, domain.CategoryTvShow, d.KnownFor[1].Type)
}

func TestImageURL(t *testing.T) {
	c := NewClient("", "key", nil, WithImageBaseURL("https://img.example/t/p/"))
	assert.Equal(t, "https://img.example/t/p/w342/x.jpg", c.ImageURL("/x.jpg", ""))
	assert.Empty(t, c.ImageURL("", "w92"))
}
