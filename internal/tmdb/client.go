// Package tmdb is the HTTP client for The Movie Database v3 API.
package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mmcdole/marquee/internal/domain"
)

const (
	DefaultBaseURL      = "https://api.themoviedb.org/3"
	DefaultImageBaseURL = "https://image.tmdb.org/t/p"
	defaultTimeout      = 30 * time.Second
	userAgent           = "Marquee/1.0"
)

// Client implements domain.SearchClient and domain.DetailClient against TMDB
type Client struct {
	baseURL      string
	imageBaseURL string
	apiKey       string
	language     string
	httpClient   *http.Client
	logger       *slog.Logger
}

// Option configures a Client
type Option func(*Client)

// WithLanguage sets the ISO 639-1 language for localized fields
func WithLanguage(lang string) Option {
	return func(c *Client) { c.language = lang }
}

// WithTimeout overrides the HTTP timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithImageBaseURL overrides the image CDN root
func WithImageBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.imageBaseURL = strings.TrimRight(u, "/")
		}
	}
}

// NewClient creates a new TMDB API client. apiKey may be a v3 API key or a
// v4 read access token.
func NewClient(baseURL, apiKey string, logger *slog.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		imageBaseURL: DefaultImageBaseURL,
		apiKey:       apiKey,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger: logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// isReadToken reports whether the key is a v4 bearer token (a JWT) rather
// than a v3 query-string key
func (c *Client) isReadToken() bool {
	return strings.Count(c.apiKey, ".") == 2
}

// doRequest performs an authenticated GET and decodes the JSON body into out
func (c *Client) doRequest(ctx context.Context, path string, query url.Values, out any) error {
	if query == nil {
		query = url.Values{}
	}
	if c.language != "" {
		query.Set("language", c.language)
	}
	if !c.isReadToken() {
		query.Set("api_key", c.apiKey)
	}
	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if c.isReadToken() {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	c.logger.Debug("tmdb request", "path", path, "query", redact(query))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("tmdb request failed", "error", err, "path", path)
		return &domain.APIError{Message: "catalog is unreachable", Err: domain.ErrServerOffline}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var e errorResponse
		_ = json.Unmarshal(body, &e)
		c.logger.Error("tmdb request error", "status", resp.StatusCode, "path", path, "message", e.StatusMessage)
		return domain.NewAPIError(resp.StatusCode, e.StatusMessage)
	}

	if err := json.Unmarshal(body, out); err != nil {
		c.logger.Error("JSON parse error", "error", err, "bodyLen", len(body))
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func (c *Client) search(ctx context.Context, kind, query string, page int) (domain.ResultPage, error) {
	q := url.Values{}
	q.Set("query", query)
	q.Set("page", strconv.Itoa(max(page, 1)))
	q.Set("include_adult", "false")

	var resp pagedResponse
	if err := c.doRequest(ctx, "/search/"+kind, q, &resp); err != nil {
		return domain.ResultPage{}, err
	}
	return toPage(resp), nil
}

// SearchMulti searches movies, TV shows and people at once
func (c *Client) SearchMulti(ctx context.Context, query string, page int) (domain.ResultPage, error) {
	return c.search(ctx, "multi", query, page)
}

// SearchMovie searches movies
func (c *Client) SearchMovie(ctx context.Context, query string, page int) (domain.ResultPage, error) {
	return c.search(ctx, "movie", query, page)
}

// SearchTv searches TV shows
func (c *Client) SearchTv(ctx context.Context, query string, page int) (domain.ResultPage, error) {
	return c.search(ctx, "tv", query, page)
}

// SearchPerson searches people
func (c *Client) SearchPerson(ctx context.Context, query string, page int) (domain.ResultPage, error) {
	return c.search(ctx, "person", query, page)
}

// Trending returns today's trending movies, shows and people
func (c *Client) Trending(ctx context.Context) (domain.ResultPage, error) {
	var resp pagedResponse
	if err := c.doRequest(ctx, "/trending/all/day", nil, &resp); err != nil {
		return domain.ResultPage{}, err
	}
	return toPage(resp), nil
}

// Movie returns a movie with its cast
func (c *Client) Movie(ctx context.Context, id int) (domain.Detail, error) {
	if id <= 0 {
		return domain.Detail{}, invalidID(id)
	}
	var (
		m  movieDetail
		cr credits
	)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return c.doRequest(ctx, fmt.Sprintf("/movie/%d", id), nil, &m) })
	g.Go(func() error { return c.doRequest(ctx, fmt.Sprintf("/movie/%d/credits", id), nil, &cr) })
	if err := g.Wait(); err != nil {
		return domain.Detail{}, err
	}

	d, ok := MapMovie(m, cr)
	if !ok {
		return domain.Detail{}, invalidID(id)
	}
	return d, nil
}

// Tv returns a TV show with its cast
func (c *Client) Tv(ctx context.Context, id int) (domain.Detail, error) {
	if id <= 0 {
		return domain.Detail{}, invalidID(id)
	}
	var (
		t  tvDetail
		cr credits
	)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return c.doRequest(ctx, fmt.Sprintf("/tv/%d", id), nil, &t) })
	g.Go(func() error { return c.doRequest(ctx, fmt.Sprintf("/tv/%d/credits", id), nil, &cr) })
	if err := g.Wait(); err != nil {
		return domain.Detail{}, err
	}

	d, ok := MapTv(t, cr)
	if !ok {
		return domain.Detail{}, invalidID(id)
	}
	return d, nil
}

// Person returns a person with the titles they are known for
func (c *Client) Person(ctx context.Context, id int) (domain.Detail, error) {
	if id <= 0 {
		return domain.Detail{}, invalidID(id)
	}
	var (
		p  personDetail
		cr credits
	)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return c.doRequest(ctx, fmt.Sprintf("/person/%d", id), nil, &p) })
	g.Go(func() error { return c.doRequest(ctx, fmt.Sprintf("/person/%d/combined_credits", id), nil, &cr) })
	if err := g.Wait(); err != nil {
		return domain.Detail{}, err
	}

	d, ok := MapPerson(p, cr)
	if !ok {
		return domain.Detail{}, invalidID(id)
	}
	return d, nil
}

// Detail dispatches to Movie, Tv or Person by category
func (c *Client) Detail(ctx context.Context, category domain.Category, id int) (domain.Detail, error) {
	switch category {
	case domain.CategoryMovie:
		return c.Movie(ctx, id)
	case domain.CategoryTvShow:
		return c.Tv(ctx, id)
	case domain.CategoryPerson:
		return c.Person(ctx, id)
	default:
		return domain.Detail{}, invalidID(id)
	}
}

// ImageURL builds a CDN URL for a poster or profile path
func (c *Client) ImageURL(path, size string) string {
	if path == "" {
		return ""
	}
	if size == "" {
		size = "w342"
	}
	return fmt.Sprintf("%s/%s%s", c.imageBaseURL, size, path)
}

func toPage(resp pagedResponse) domain.ResultPage {
	return domain.ResultPage{
		Results:      resp.Results,
		Page:         resp.Page,
		TotalPages:   resp.TotalPages,
		TotalResults: resp.TotalResults,
	}
}

func invalidID(id int) error {
	return &domain.APIError{
		Status:  http.StatusNotFound,
		Message: fmt.Sprintf("no catalog entry with id %d", id),
		Kind:    domain.KindNotFound,
		Err:     domain.ErrInvalidID,
	}
}

func redact(q url.Values) string {
	c := url.Values{}
	for k, v := range q {
		if k == "api_key" {
			continue
		}
		c[k] = v
	}
	return c.Encode()
}
