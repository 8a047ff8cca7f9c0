// Package remote is the HTTP client for a hosted account and list API.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/marquee/internal/domain"
)

const (
	defaultTimeout = 30 * time.Second
	userAgent      = "Marquee/1.0"
)

// Client implements domain.ListClient and domain.AuthClient over HTTP.
// Requests carry the credential held by the session store as a bearer token.
type Client struct {
	baseURL    string
	session    domain.SessionStore
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new account API client
func NewClient(baseURL string, session domain.SessionStore, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		session: session,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger: logger,
	}
}

// Close releases idle connections
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type nameBody struct {
	Name string `json:"name"`
}

type itemBody struct {
	Item domain.ListItem `json:"item"`
}

type credentialsBody struct {
	Email    string `json:"email"`
	Name     string `json:"name,omitempty"`
	Password string `json:"password"`
}

type tokenBody struct {
	Token string `json:"token"`
}

// doRequest sends a JSON request and decodes the JSON response into out.
// A non-empty credential overrides the stored one.
func (c *Client) doRequest(ctx context.Context, method, path, credential string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	reqURL := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if credential == "" {
		credential, _ = c.session.Credential()
	}
	if credential != "" {
		req.Header.Set("Authorization", "Bearer "+credential)
	}

	c.logger.Debug("account request", "method", method, "url", reqURL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("account request failed", "error", err)
		return &domain.APIError{Message: "account service is unreachable", Err: domain.ErrServerOffline}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e errorBody
		_ = json.Unmarshal(data, &e)
		msg := e.Message
		if msg == "" {
			msg = e.Error
		}
		c.logger.Error("account request error", "status", resp.StatusCode, "path", path, "message", msg)
		return domain.NewAPIError(resp.StatusCode, msg)
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		c.logger.Error("JSON parse error", "error", err, "bodyLen", len(data))
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func listPath(slug string) string {
	return "/api/lists/" + url.PathEscape(slug)
}

// GetAll returns the lists of the credential's user
func (c *Client) GetAll(ctx context.Context, credential string) ([]domain.List, error) {
	var lists []domain.List
	if err := c.doRequest(ctx, http.MethodGet, "/api/lists", credential, nil, &lists); err != nil {
		return nil, err
	}
	return lists, nil
}

// Create makes a new list; the server assigns id and slug
func (c *Client) Create(ctx context.Context, name string) (domain.List, error) {
	var l domain.List
	err := c.doRequest(ctx, http.MethodPost, "/api/lists", "", nameBody{Name: name}, &l)
	return l, err
}

// Update renames a list
func (c *Client) Update(ctx context.Context, slug, name string) (domain.List, error) {
	var l domain.List
	err := c.doRequest(ctx, http.MethodPatch, listPath(slug), "", nameBody{Name: name}, &l)
	return l, err
}

// Delete removes a list
func (c *Client) Delete(ctx context.Context, slug string) error {
	return c.doRequest(ctx, http.MethodDelete, listPath(slug), "", nil, nil)
}

// AddItem adds item to a list and returns the list as stored
func (c *Client) AddItem(ctx context.Context, slug string, item domain.ListItem) (domain.List, error) {
	var l domain.List
	err := c.doRequest(ctx, http.MethodPost, listPath(slug)+"/items", "", itemBody{Item: item}, &l)
	return l, err
}

// RemoveItem removes item from a list and returns the list as stored
func (c *Client) RemoveItem(ctx context.Context, slug string, item domain.ListItem) (domain.List, error) {
	var l domain.List
	path := fmt.Sprintf("%s/items/%s/%d", listPath(slug), item.Type, item.TmdbID)
	err := c.doRequest(ctx, http.MethodDelete, path, "", nil, &l)
	return l, err
}

// Resolve maps a credential to its user
func (c *Client) Resolve(ctx context.Context, credential string) (domain.AuthUser, error) {
	if credential == "" {
		return domain.Anonymous(), nil
	}
	var au domain.AuthUser
	if err := c.doRequest(ctx, http.MethodGet, "/api/auth/session", credential, nil, &au); err != nil {
		if apiErr := domain.AsAPIError(err); apiErr.Status == http.StatusUnauthorized {
			return domain.Anonymous(), nil
		}
		return domain.Anonymous(), err
	}
	if !au.Auth || au.User == nil {
		return domain.Anonymous(), nil
	}
	return au, nil
}

// SignOut ends the session on the server
func (c *Client) SignOut(ctx context.Context) error {
	if _, ok := c.session.Credential(); !ok {
		return nil
	}
	return c.doRequest(ctx, http.MethodPost, "/api/auth/signout", "", nil, nil)
}

// SignIn exchanges email and password for a session token
func (c *Client) SignIn(ctx context.Context, email, password string) (string, error) {
	var tok tokenBody
	err := c.doRequest(ctx, http.MethodPost, "/api/auth/signin", "", credentialsBody{Email: email, Password: password}, &tok)
	return tok.Token, err
}

// SignUp creates an account and returns a session token
func (c *Client) SignUp(ctx context.Context, email, name, password string) (string, error) {
	var tok tokenBody
	err := c.doRequest(ctx, http.MethodPost, "/api/auth/signup", "", credentialsBody{Email: email, Name: name, Password: password}, &tok)
	return tok.Token, err
}
