// Package registry provides access to package indexes for verifying that
// manifest declarations name real packages and published versions.
//
// The shared [Client] handles HTTP requests with response caching, automatic
// retries for transient failures, and observability hooks. Index-specific
// clients (see the pypi subpackage) build on it.
package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/reqsmith/reqsmith/pkg/cache"
	"github.com/reqsmith/reqsmith/pkg/httputil"
	"github.com/reqsmith/reqsmith/pkg/observability"
)

// Sentinel errors for registry operations.
var (
	// ErrNotFound is returned when a package does not exist on the index.
	ErrNotFound = errors.New("not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection
	// errors, 5xx responses).
	ErrNetwork = errors.New("network error")

	// ErrOffline is returned in offline mode when the cache has no entry
	// for a request.
	ErrOffline = errors.New("offline and not cached")
)

// DefaultCacheTTL is how long index responses are cached.
const DefaultCacheTTL = 24 * time.Hour

// Client provides shared HTTP functionality for index API clients.
// It handles caching, retry logic, and common request headers.
//
// All methods are safe for concurrent use.
type Client struct {
	http    *http.Client
	cache   cache.Cache
	prefix  string
	ttl     time.Duration
	headers map[string]string
	offline bool
}

// NewClient creates a Client that caches responses in backend under the
// given key prefix (e.g., "pypi:"). Pass nil headers if no defaults are
// needed; a NullCache disables caching.
func NewClient(backend cache.Cache, prefix string, ttl time.Duration, headers map[string]string) *Client {
	if backend == nil {
		backend = cache.NewNullCache()
	}
	return &Client{
		http:    httputil.NewHTTPClient(),
		cache:   backend,
		prefix:  prefix,
		ttl:     ttl,
		headers: headers,
	}
}

// SetOffline toggles offline mode. When offline, Cached serves only from
// the cache and returns [ErrOffline] on a miss instead of fetching.
func (c *Client) SetOffline(offline bool) {
	c.offline = offline
}

// Cached retrieves a value from cache or executes fetch and caches the result.
// If refresh is true, the cache is bypassed and fetch is always called.
// The fetch function should populate v; on success, v is stored in the cache.
func (c *Client) Cached(ctx context.Context, key string, refresh bool, v any, fetch func() error) error {
	key = c.prefix + key
	if !refresh || c.offline {
		if data, hit, err := c.cache.Get(ctx, key); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, c.prefix)
			return json.Unmarshal(data, v)
		}
		observability.Cache().OnCacheMiss(ctx, c.prefix)
	}
	if c.offline {
		return fmt.Errorf("%w: %s", ErrOffline, key)
	}
	if err := httputil.RetryWithBackoff(ctx, fetch); err != nil {
		return err
	}
	if data, err := json.Marshal(v); err == nil {
		_ = c.cache.Set(ctx, key, data, c.ttl)
		observability.Cache().OnCacheSet(ctx, c.prefix, len(data))
	}
	return nil
}

// Get performs an HTTP GET request and JSON-decodes the response into v.
// It uses the client's default headers; retries are the caller's concern
// (wrap calls in [Cached] or [httputil.RetryWithBackoff]).
func (c *Client) Get(ctx context.Context, url string, v any) error {
	body, err := c.doRequest(ctx, url)
	if err != nil {
		return err
	}
	defer body.Close()
	return json.NewDecoder(body).Decode(v)
}

func (c *Client) doRequest(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	observability.HTTP().OnRequest(ctx, req.Method, req.URL.Host, req.URL.Path)

	resp, err := c.http.Do(req)
	if err != nil {
		observability.HTTP().OnError(ctx, req.Method, req.URL.Host, req.URL.Path, err)
		return nil, &httputil.RetryableError{Err: fmt.Errorf("%w: %v", ErrNetwork, err)}
	}
	observability.HTTP().OnResponse(ctx, req.Method, req.URL.Host, req.URL.Path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp.StatusCode); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp.Body, nil
}

func checkStatus(code int) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	case code >= 500:
		return &httputil.RetryableError{Err: fmt.Errorf("%w: status %d", ErrNetwork, code)}
	default:
		return fmt.Errorf("%w: status %d", ErrNetwork, code)
	}
}
