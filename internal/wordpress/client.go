// Package wordpress is a thin client for the WordPress REST API: posts,
// pages and custom post types, taxonomy terms with create-if-missing, user
// lookup, and media uploads. It authenticates with an application password.
package wordpress

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ediblesites/wp-poster/internal/logging"
)

var (
	// ErrUserNotFound reports an author lookup that matched no user.
	ErrUserNotFound = errors.New("wordpress: user not found")
	// ErrTermCreateFailed reports a taxonomy term that could not be created.
	ErrTermCreateFailed = errors.New("wordpress: term create failed")
)

// StatusError carries a non-success REST response.
type StatusError struct {
	StatusCode int
	Code       string
	Message    string
	Body       string
}

func (e *StatusError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("wordpress: %s (%d): %s", e.Code, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("wordpress: unexpected status %d: %s", e.StatusCode, e.Body)
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient overrides the request client, used by tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithUploadClient overrides the client used for media transfers, which
// carries a longer timeout than plain API calls.
func WithUploadClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.upload = hc
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger logging.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Client talks to a single WordPress site. It is safe for concurrent use;
// the taxonomy rest_base cache is guarded by the request path being
// idempotent (worst case a base is fetched twice).
type Client struct {
	apiURL   string
	username string
	password string
	http     *http.Client
	upload   *http.Client
	logger   logging.Logger

	taxonomyBases map[string]string
}

// New constructs a client for siteURL using application-password basic auth.
func New(siteURL, username, appPassword string, opts ...Option) *Client {
	c := &Client{
		apiURL:        strings.TrimRight(siteURL, "/") + "/wp-json/wp/v2",
		username:      username,
		password:      appPassword,
		http:          &http.Client{Timeout: 30 * time.Second},
		upload:        &http.Client{Timeout: 60 * time.Second},
		logger:        logging.NoOp(),
		taxonomyBases: map[string]string{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// PostResult is the subset of a created or updated post the caller needs.
type PostResult struct {
	ID    int    `json:"id"`
	Link  string `json:"link"`
	Title struct {
		Rendered string `json:"rendered"`
	} `json:"title"`
}

// CreatePost creates a post on the given endpoint (posts, pages, or a custom
// post type rest base).
func (c *Client) CreatePost(ctx context.Context, endpoint string, payload map[string]any) (*PostResult, error) {
	var result PostResult
	if err := c.doJSON(ctx, http.MethodPost, c.apiURL+"/"+endpoint, payload, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// UpdatePost updates an existing post by id on the given endpoint.
func (c *Client) UpdatePost(ctx context.Context, endpoint string, id int, payload map[string]any) (*PostResult, error) {
	var result PostResult
	if err := c.doJSON(ctx, http.MethodPost, fmt.Sprintf("%s/%s/%d", c.apiURL, endpoint, id), payload, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

type term struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Categories returns all categories indexed by both name and slug.
func (c *Client) Categories(ctx context.Context) (map[string]int, error) {
	return c.terms(ctx, "categories")
}

// Tags returns all tags indexed by both name and slug.
func (c *Client) Tags(ctx context.Context) (map[string]int, error) {
	return c.terms(ctx, "tags")
}

// CreateCategory creates a category and returns its id.
func (c *Client) CreateCategory(ctx context.Context, name string) (int, error) {
	return c.createTerm(ctx, "categories", name)
}

// CreateTag creates a tag and returns its id.
func (c *Client) CreateTag(ctx context.Context, name string) (int, error) {
	return c.createTerm(ctx, "tags", name)
}

// TaxonomyRestBase resolves the REST base for a custom taxonomy, which may
// differ from its slug. Lookups are cached per client; an unknown taxonomy
// falls back to its own slug.
func (c *Client) TaxonomyRestBase(ctx context.Context, taxonomy string) string {
	if base, ok := c.taxonomyBases[taxonomy]; ok {
		return base
	}
	var info struct {
		RestBase string `json:"rest_base"`
	}
	base := taxonomy
	if err := c.doJSON(ctx, http.MethodGet, c.apiURL+"/taxonomies/"+url.PathEscape(taxonomy), nil, &info); err == nil && info.RestBase != "" {
		base = info.RestBase
	}
	c.taxonomyBases[taxonomy] = base
	return base
}

// TaxonomyTerms returns all terms of a custom taxonomy indexed by name and
// slug.
func (c *Client) TaxonomyTerms(ctx context.Context, taxonomy string) (map[string]int, error) {
	return c.terms(ctx, c.TaxonomyRestBase(ctx, taxonomy))
}

// CreateTaxonomyTerm creates a term in a custom taxonomy and returns its id.
func (c *Client) CreateTaxonomyTerm(ctx context.Context, taxonomy, name string) (int, error) {
	return c.createTerm(ctx, c.TaxonomyRestBase(ctx, taxonomy), name)
}

func (c *Client) terms(ctx context.Context, restBase string) (map[string]int, error) {
	var list []term
	if err := c.doJSON(ctx, http.MethodGet, c.apiURL+"/"+restBase+"?per_page=100", nil, &list); err != nil {
		return nil, err
	}
	out := make(map[string]int, len(list)*2)
	for _, t := range list {
		out[t.Name] = t.ID
		out[t.Slug] = t.ID
	}
	return out, nil
}

func (c *Client) createTerm(ctx context.Context, restBase, name string) (int, error) {
	var created term
	if err := c.doJSON(ctx, http.MethodPost, c.apiURL+"/"+restBase, map[string]any{"name": name}, &created); err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrTermCreateFailed, name, err)
	}
	return created.ID, nil
}

// EnsureTerms resolves term names to ids in the given rest base, creating
// any that do not exist. Names that fail to create are skipped.
func (c *Client) EnsureTerms(ctx context.Context, restBase string, names []string) ([]int, error) {
	existing, err := c.terms(ctx, restBase)
	if err != nil {
		return nil, err
	}
	var ids []int
	for _, name := range names {
		if id, ok := existing[name]; ok {
			ids = append(ids, id)
			continue
		}
		id, err := c.createTerm(ctx, restBase, name)
		if err != nil {
			c.logger.Warn("term create failed, skipping", "term", name, "error", err)
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// UserID resolves an author reference: numeric strings pass through, names
// are searched and matched against user slug or display name.
func (c *Client) UserID(ctx context.Context, nameOrID string) (int, error) {
	if id, err := strconv.Atoi(nameOrID); err == nil {
		return id, nil
	}
	var users []struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
		Slug string `json:"slug"`
	}
	if err := c.doJSON(ctx, http.MethodGet, c.apiURL+"/users?search="+url.QueryEscape(nameOrID), nil, &users); err != nil {
		return 0, err
	}
	for _, u := range users {
		if u.Slug == nameOrID || u.Name == nameOrID {
			return u.ID, nil
		}
	}
	return 0, fmt.Errorf("%w: %s", ErrUserNotFound, nameOrID)
}

// Me fetches the authenticated user, used by the interactive setup to verify
// credentials.
func (c *Client) Me(ctx context.Context) (string, error) {
	var me struct {
		Name string `json:"name"`
	}
	if err := c.doJSON(ctx, http.MethodGet, c.apiURL+"/users/me", nil, &me); err != nil {
		return "", err
	}
	return me.Name, nil
}

func (c *Client) doJSON(ctx context.Context, method, rawURL string, payload any, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("wordpress: encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return fmt.Errorf("wordpress: build request: %w", err)
	}
	req.SetBasicAuth(c.username, c.password)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("wordpress: %s %s: %w", method, rawURL, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("wordpress: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return statusError(resp.StatusCode, data)
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("wordpress: decode response: %w", err)
		}
	}
	return nil
}

func statusError(status int, body []byte) error {
	se := &StatusError{StatusCode: status, Body: string(body)}
	var payload struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		se.Code = payload.Code
		se.Message = payload.Message
		if payload.Code == "rest_cannot_edit_others" {
			se.Message = "permission denied: cannot set author to another user. " + payload.Message
		}
	}
	return se
}
