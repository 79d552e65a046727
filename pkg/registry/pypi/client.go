// Package pypi implements the [registry.Index] interface against the PyPI
// JSON API (https://pypi.org/pypi/<name>/json).
package pypi

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/reqsmith/reqsmith/pkg/cache"
	"github.com/reqsmith/reqsmith/pkg/manifest"
	"github.com/reqsmith/reqsmith/pkg/registry"
	"github.com/reqsmith/reqsmith/pkg/version"
)

// DefaultBaseURL is the production PyPI JSON API endpoint.
const DefaultBaseURL = "https://pypi.org/pypi"

// Client provides access to the PyPI package index.
// It handles HTTP requests with caching and automatic retries.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*registry.Client
	baseURL string
}

// NewClient creates a PyPI client with the given cache backend.
//
// Parameters:
//   - backend: cache backend for HTTP response caching (use a NullCache
//     for no caching)
//   - cacheTTL: how long responses are cached (typical: 1-24 hours)
//
// The returned Client is safe for concurrent use.
func NewClient(backend cache.Cache, cacheTTL time.Duration) *Client {
	return &Client{
		Client:  registry.NewClient(backend, "pypi:", cacheTTL, map[string]string{"Accept": "application/json"}),
		baseURL: DefaultBaseURL,
	}
}

// WithBaseURL overrides the API endpoint; used by tests and private mirrors.
func (c *Client) WithBaseURL(url string) *Client {
	c.baseURL = url
	return c
}

// FetchPackage retrieves metadata for a package from PyPI.
//
// The name is normalized automatically (PEP 503: case-insensitive,
// underscores and dots fold to hyphens). If refresh is true, the cache is
// bypassed and a fresh API call is made.
//
// Returns:
//   - [registry.Package] populated with the published release list
//   - [registry.ErrNotFound] if the package doesn't exist
//   - [registry.ErrNetwork] for HTTP failures (timeout, 5xx, etc.)
//
// This method is safe for concurrent use.
func (c *Client) FetchPackage(ctx context.Context, pkg string, refresh bool) (*registry.Package, error) {
	pkg = manifest.NormalizeName(pkg)

	var info registry.Package
	err := c.Cached(ctx, pkg, refresh, &info, func() error {
		return c.fetch(ctx, pkg, &info)
	})
	if err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *Client) fetch(ctx context.Context, pkg string, info *registry.Package) error {
	var data apiResponse
	if err := c.Get(ctx, fmt.Sprintf("%s/%s/json", c.baseURL, pkg), &data); err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			return fmt.Errorf("%w: pypi package %s", err, pkg)
		}
		return err
	}

	*info = registry.Package{
		Name:     manifest.NormalizeName(data.Info.Name),
		Latest:   data.Info.Version,
		Releases: sortedReleases(data.Releases),
		Summary:  data.Info.Summary,
	}
	return nil
}

// sortedReleases flattens the releases map into version order. Unparseable
// version strings (legacy uploads) sort first, in lexical order.
func sortedReleases(releases map[string][]releaseFile) []string {
	out := make([]string, 0, len(releases))
	for v := range releases {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		vi, ei := version.Parse(out[i])
		vj, ej := version.Parse(out[j])
		switch {
		case ei != nil && ej != nil:
			return out[i] < out[j]
		case ei != nil:
			return true
		case ej != nil:
			return false
		default:
			return version.Compare(vi, vj) < 0
		}
	})
	return out
}

type apiResponse struct {
	Info     apiInfo                  `json:"info"`
	Releases map[string][]releaseFile `json:"releases"`
}

type apiInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Summary string `json:"summary"`
}

// releaseFile is one uploaded artifact for a release; only its presence
// matters here.
type releaseFile struct {
	Filename string `json:"filename"`
	Yanked   bool   `json:"yanked"`
}

// Ensure Client implements the Index interface.
var _ registry.Index = (*Client)(nil)
