package combell

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
	"time"

	"combell-mcp/pkg/logging"

	"github.com/google/uuid"
)

// DefaultBaseURL is the production API root.
const DefaultBaseURL = "https://api.combell.com/v2"

const (
	headerTotalResults = "X-Paging-TotalResults"
	maxErrorBody       = 4 << 10
	userAgent          = "combell-mcp"
)

// Observer receives one callback per upstream request. status is 0 when the
// request never got a response.
type Observer interface {
	ObserveUpstream(resource string, status int, elapsed time.Duration)
}

// Client talks to the Combell REST API with one credential pair. It holds no
// per-call state and is safe for concurrent use.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	creds      Credentials
	observer   Observer

	now   func() time.Time
	nonce func() string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithObserver hooks request metrics.
func WithObserver(o Observer) Option {
	return func(c *Client) { c.observer = o }
}

// NewClient returns a client for baseURL. An empty baseURL means DefaultBaseURL.
func NewClient(baseURL string, creds Credentials, opts ...Option) (*Client, error) {
	if !creds.Valid() {
		return nil, errors.New("combell API key and secret are required")
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid combell base URL %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid combell base URL %q: must be absolute", baseURL)
	}

	c := &Client{
		baseURL:    u,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		creds:      creds,
		now:        time.Now,
		nonce:      func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// list fetches one page from a listing endpoint.
func (c *Client) list(ctx context.Context, resource string, req PageRequest, segments ...string) (Page, error) {
	var items []Record
	header, err := c.do(ctx, http.MethodGet, resource, req.Query(), &items, segments...)
	if err != nil {
		return Page{}, err
	}

	page := Page{Items: items, Total: -1}
	if v := header.Get(headerTotalResults); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			page.Total = n
		}
	}
	return page, nil
}

// get fetches a single object. A 404 becomes a *NotFoundError keyed by key.
func (c *Client) get(ctx context.Context, resource, key string, segments ...string) (Record, error) {
	var rec Record
	if _, err := c.do(ctx, http.MethodGet, resource, nil, &rec, segments...); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
			return nil, &NotFoundError{Resource: resource, Key: key}
		}
		return nil, err
	}
	if rec == nil {
		return nil, &NotFoundError{Resource: resource, Key: key}
	}
	return rec, nil
}

func (c *Client) do(ctx context.Context, method, resource string, query url.Values, out any, segments ...string) (http.Header, error) {
	u := c.baseURL.JoinPath(segments...)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	pathAndQuery := u.EscapedPath()
	if u.RawQuery != "" {
		pathAndQuery += "?" + u.RawQuery
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s request: %w", resource, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Authorization", AuthorizationHeader(c.creds, method, pathAndQuery, nil, c.now(), c.nonce()))

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observe(resource, 0, start)
		return nil, fmt.Errorf("combell API %s %s: %w", method, pathAndQuery, err)
	}
	defer resp.Body.Close()
	c.observe(resource, resp.StatusCode, start)

	logging.Debug("Combell", "%s %s -> %d (%s)", method, pathAndQuery, resp.StatusCode, time.Since(start).Round(time.Millisecond))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &APIError{
			Method: method,
			Path:   pathAndQuery,
			Status: resp.StatusCode,
			Body:   string(bytes.TrimSpace(body)),
		}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", resource, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return resp.Header, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return nil, fmt.Errorf("failed to decode %s response: %w", resource, err)
	}
	return resp.Header, nil
}

func (c *Client) observe(resource string, status int, start time.Time) {
	if c.observer != nil {
		c.observer.ObserveUpstream(resource, status, time.Since(start))
	}
}
