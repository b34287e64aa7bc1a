// Package client implements the search backend contract against a remote
// hackfinder API server.
package client

import (
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

	"github.com/rubiojr/hackfinder/pkg/api"
	"github.com/rubiojr/hackfinder/pkg/core"
	"github.com/rubiojr/hackfinder/pkg/log"
	"github.com/rubiojr/hackfinder/pkg/search"
)

// DefaultTimeout bounds every request when no timeout is configured.
const DefaultTimeout = 10 * time.Second

var (
	_ search.Backend        = (*Client)(nil)
	_ search.CategoryLister = (*Client)(nil)
	_ search.SimilarFinder  = (*Client)(nil)
)

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d", e.Status)
	}
	return fmt.Sprintf("server returned %d: %s: %s", e.Status, e.Code, e.Message)
}

// IsNotFound reports whether err is a 404 from the server.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// Client talks to a hackfinder API server. It is safe for concurrent use.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	logger  *log.Logger
}

// New returns a client for the server at baseURL.
func New(baseURL string, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing backend url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("backend url %q: scheme must be http or https", baseURL)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: u,
		http:    &http.Client{Timeout: timeout},
		logger:  log.ForService("client"),
	}, nil
}

func (c *Client) SearchByText(ctx context.Context, query string, page, pageSize int) (*core.ResultPage, error) {
	q := pageQuery(page, pageSize)
	q.Set("query", query)
	return c.searchPage(ctx, "/api/search", q)
}

func (c *Client) SearchByCategory(ctx context.Context, category string, page, pageSize int) (*core.ResultPage, error) {
	return c.searchPage(ctx, "/api/categories/"+url.PathEscape(category), pageQuery(page, pageSize))
}

func (c *Client) TopCategories(ctx context.Context, limit int) ([]core.CategoryCount, error) {
	var resp api.CategoriesResponse
	if err := c.get(ctx, "/api/categories", limitQuery(limit), &resp); err != nil {
		return nil, err
	}
	return resp.Categories, nil
}

func (c *Client) Similar(ctx context.Context, id string, limit int) ([]core.Hack, error) {
	var resp api.HacksResponse
	if err := c.get(ctx, "/api/hacks/"+url.PathEscape(id)+"/similar", limitQuery(limit), &resp); err != nil {
		return nil, err
	}
	return resp.Hacks, nil
}

// Get fetches a single hack.
func (c *Client) Get(ctx context.Context, id string) (*core.Hack, error) {
	var h core.Hack
	if err := c.get(ctx, "/api/hacks/"+url.PathEscape(id), nil, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

func (c *Client) searchPage(ctx context.Context, path string, q url.Values) (*core.ResultPage, error) {
	var resp api.SearchResponse
	if err := c.get(ctx, path, q, &resp); err != nil {
		return nil, err
	}
	if resp.Total < 0 {
		return nil, fmt.Errorf("%w: negative total %d", search.ErrMalformedResponse, resp.Total)
	}
	return &core.ResultPage{Results: resp.Hits, Total: resp.Total}, nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values, dst any) error {
	u := c.baseURL.JoinPath(path)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("requesting %s: %w", path, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.Warnf("closing response body: %v", err)
		}
	}()
	c.logger.Debugf("GET %s -> %d (%s)", u.Redacted(), resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var body api.ErrorResponse
		if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&body); err == nil {
			apiErr.Code, apiErr.Message = body.Error, body.Message
		}
		return apiErr
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: decoding %s: %v", search.ErrMalformedResponse, path, err)
	}
	return nil
}

func pageQuery(page, pageSize int) url.Values {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("page_size", strconv.Itoa(pageSize))
	return q
}

func limitQuery(limit int) url.Values {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	return q
}
