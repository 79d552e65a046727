// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about manifest checks, cache operations, and registry calls.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// This approach:
//   - Avoids import cycles (hooks are registered by main, not by libraries)
//   - Keeps the core library dependency-free from observability frameworks
//   - Allows different backends (OpenTelemetry, Prometheus, DataDog, etc.)
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetCheckHooks(&myCheckHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Check().OnCheckStart(ctx, path)
//	// ... lint the manifest ...
//	observability.Check().OnCheckComplete(ctx, path, findings, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// CheckHooks receives events from manifest check and verify runs.
type CheckHooks interface {
	// OnCheckStart records the start of a manifest check.
	OnCheckStart(ctx context.Context, path string)

	// OnCheckComplete records a finished check with its finding count.
	OnCheckComplete(ctx context.Context, path string, findings int, duration time.Duration, err error)

	// OnVerifyStart records the start of an index verification run.
	OnVerifyStart(ctx context.Context, path string, pins int)

	// OnVerifyComplete records a finished verification run.
	OnVerifyComplete(ctx context.Context, path string, failures int, duration time.Duration, err error)
}

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// HTTPHooks receives events from HTTP client operations.
type HTTPHooks interface {
	// OnRequest records an outgoing HTTP request.
	OnRequest(ctx context.Context, method, host, path string)

	// OnResponse records an HTTP response.
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)

	// OnError records an HTTP error (network failure, timeout).
	OnError(ctx context.Context, method, host, path string, err error)
}

// NoopCheckHooks is a no-op implementation of CheckHooks.
type NoopCheckHooks struct{}

func (NoopCheckHooks) OnCheckStart(context.Context, string)                                {}
func (NoopCheckHooks) OnCheckComplete(context.Context, string, int, time.Duration, error)  {}
func (NoopCheckHooks) OnVerifyStart(context.Context, string, int)                          {}
func (NoopCheckHooks) OnVerifyComplete(context.Context, string, int, time.Duration, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

var (
	checkHooks CheckHooks = NoopCheckHooks{}
	cacheHooks CacheHooks = NoopCacheHooks{}
	httpHooks  HTTPHooks  = NoopHTTPHooks{}
	hooksMu    sync.RWMutex
)

// SetCheckHooks registers custom check hooks.
// This should be called once at application startup. Nil is ignored.
func SetCheckHooks(h CheckHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		checkHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup. Nil is ignored.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks.
// This should be called once at application startup. Nil is ignored.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Check returns the registered check hooks.
func Check() CheckHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return checkHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	checkHooks = NoopCheckHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
