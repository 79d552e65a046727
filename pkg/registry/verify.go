package registry

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/reqsmith/reqsmith/pkg/manifest"
	"github.com/reqsmith/reqsmith/pkg/version"
)

const defaultWorkers = 8

// Package holds the index metadata needed to judge a declaration.
type Package struct {
	Name     string   // normalized package name
	Latest   string   // latest published version
	Releases []string // all published version strings
	Summary  string   // short description, may be empty
}

// Index fetches package metadata from a package index.
type Index interface {
	// FetchPackage retrieves metadata by normalized name. If refresh is
	// true, cached data is bypassed. Returns [ErrNotFound] for unknown
	// packages.
	FetchPackage(ctx context.Context, name string, refresh bool) (*Package, error)
}

// Status classifies the outcome of verifying one declaration.
type Status string

// Verification outcomes.
const (
	// StatusOK: the name resolves and, when pinned, the pin names a
	// published version.
	StatusOK Status = "ok"
	// StatusUnknownPackage: the index has no package with this name.
	StatusUnknownPackage Status = "unknown-package"
	// StatusUnknownVersion: the package exists but the pinned version was
	// never published.
	StatusUnknownVersion Status = "unknown-version"
	// StatusError: the index could not be consulted (network failure).
	StatusError Status = "error"
)

// Result is the verification outcome for one declaration.
type Result struct {
	Name   string `json:"name"`             // normalized package name
	Pin    string `json:"pin,omitempty"`    // exact pin, empty when unconstrained
	Line   int    `json:"line"`             // source line of the declaration
	Status Status `json:"status"`           // outcome
	Latest string `json:"latest,omitempty"` // latest published version, when known
	Err    error  `json:"-"`                // underlying error for StatusError
}

// Options configures pin verification.
type Options struct {
	Workers  int                  // concurrent index fetches (default: 8)
	Refresh  bool                 // bypass the response cache
	Logger   func(string, ...any) // progress/error callback (optional)
	OnResult func(Result)         // called as each result arrives (optional)
}

// WithDefaults returns a copy of Options with zero values replaced by defaults.
func (o Options) WithDefaults() Options {
	opts := o
	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}
	if opts.Logger == nil {
		opts.Logger = func(string, ...any) {}
	}
	return opts
}

// VerifyPins checks every declaration against the index: the name must
// resolve, and an exact pin must name a published version. Declarations are
// verified concurrently; results are returned in declaration order.
//
// A declaration the index cannot answer for (network failure) yields
// StatusError rather than failing the whole run, so one flaky fetch does not
// abort a large manifest. Context cancellation does abort the run.
func VerifyPins(ctx context.Context, idx Index, decls []*manifest.Declaration, opts Options) ([]Result, error) {
	opts = opts.WithDefaults()

	results := make([]Result, len(decls))
	jobs := make(chan int)

	var wg sync.WaitGroup
	var mu sync.Mutex
	for w := 0; w < opts.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				res := verifyOne(ctx, idx, decls[i], opts)
				mu.Lock()
				results[i] = res
				mu.Unlock()
				if opts.OnResult != nil {
					opts.OnResult(res)
				}
			}
		}()
	}

	for i := range decls {
		select {
		case jobs <- i:
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return nil, ctx.Err()
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func verifyOne(ctx context.Context, idx Index, decl *manifest.Declaration, opts Options) Result {
	res := Result{Name: decl.NormalizedName(), Line: decl.Line}
	if pin, ok := decl.Pinned(); ok {
		res.Pin = pin
	}

	pkg, err := idx.FetchPackage(ctx, res.Name, opts.Refresh)
	switch {
	case errors.Is(err, ErrNotFound):
		res.Status = StatusUnknownPackage
		return res
	case err != nil:
		opts.Logger("fetch failed: %s: %v", res.Name, err)
		res.Status = StatusError
		res.Err = err
		return res
	}

	res.Latest = pkg.Latest
	if res.Pin == "" {
		res.Status = StatusOK
		return res
	}

	if published(pkg.Releases, res.Pin) {
		res.Status = StatusOK
	} else {
		res.Status = StatusUnknownVersion
	}
	return res
}

// published reports whether pin matches one of the released versions under
// the ecosystem's version equality, falling back to string comparison for
// unparseable release strings.
func published(releases []string, pin string) bool {
	want, err := version.Parse(pin)
	if err != nil {
		for _, r := range releases {
			if r == pin {
				return true
			}
		}
		return false
	}
	for _, r := range releases {
		if v, err := version.Parse(r); err == nil {
			if v.Equal(want) {
				return true
			}
		} else if r == pin {
			return true
		}
	}
	return false
}

// Failures filters results down to those that violate the manifest's
// resolvability property, sorted by line.
func Failures(results []Result) []Result {
	var bad []Result
	for _, r := range results {
		if r.Status != StatusOK {
			bad = append(bad, r)
		}
	}
	sort.SliceStable(bad, func(i, j int) bool { return bad[i].Line < bad[j].Line })
	return bad
}
