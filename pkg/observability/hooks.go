// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about reconciliation passes, layout ticks, cache
// operations and API requests.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// Hooks are registered by main, not by libraries, so the scene core never
// imports a metrics backend.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetReconcileHooks(&myReconcileHooks{})
//	    observability.SetLayoutHooks(&myLayoutHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Reconcile().OnReconcile(stats)
//	observability.Layout().OnTick(tickStats)
//
// Reconcile and layout hooks are called from the host loop at up to the tick
// rate; implementations must be cheap and must not call back into the scene.
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Reconcile Hooks
// =============================================================================

// ReconcileStats summarises one reconciliation pass.
type ReconcileStats struct {
	Nodes        int // Nodes registered after the pass
	Edges        int // Edges registered after the pass
	NodesCreated int
	NodesRemoved int
	EdgesCreated int
	EdgesRemoved int
	Reparented   int
	Duration     time.Duration
	Err          error // Non-nil when the pass was short-circuited
}

// ReconcileHooks receives events from the reconciliation engine.
type ReconcileHooks interface {
	// OnReconcile is called once per pass, after subscribers are notified.
	OnReconcile(stats ReconcileStats)
}

// =============================================================================
// Layout Hooks
// =============================================================================

// TickStats summarises one layout tick.
type TickStats struct {
	Nodes    int     // Top-level nodes that took part
	Moved    int     // Nodes whose position changed
	Dropped  int     // Nodes whose displacement was NaN or infinite
	Energy   float64 // Sum of squared applied displacements
	Duration time.Duration
}

// LayoutHooks receives events from the layout simulator.
type LayoutHooks interface {
	// OnTick is called after each applied tick.
	OnTick(stats TickStats)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the HTTP API.
type HTTPHooks interface {
	// OnRequest records an incoming request.
	OnRequest(ctx context.Context, method, path string)

	// OnResponse records a completed response.
	OnResponse(ctx context.Context, method, path string, statusCode int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopReconcileHooks is a no-op implementation of ReconcileHooks.
type NoopReconcileHooks struct{}

func (NoopReconcileHooks) OnReconcile(ReconcileStats) {}

// NoopLayoutHooks is a no-op implementation of LayoutHooks.
type NoopLayoutHooks struct{}

func (NoopLayoutHooks) OnTick(TickStats) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	reconcileHooks ReconcileHooks = NoopReconcileHooks{}
	layoutHooks    LayoutHooks    = NoopLayoutHooks{}
	cacheHooks     CacheHooks     = NoopCacheHooks{}
	httpHooks      HTTPHooks      = NoopHTTPHooks{}
	hooksMu        sync.RWMutex
)

// SetReconcileHooks registers custom reconcile hooks.
// This should be called once at application startup.
func SetReconcileHooks(h ReconcileHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		reconcileHooks = h
	}
}

// SetLayoutHooks registers custom layout hooks.
// This should be called once at application startup.
func SetLayoutHooks(h LayoutHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		layoutHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks.
// This should be called once at application startup before the server starts.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Reconcile returns the registered reconcile hooks.
func Reconcile() ReconcileHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return reconcileHooks
}

// Layout returns the registered layout hooks.
func Layout() LayoutHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return layoutHooks
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
	reconcileHooks = NoopReconcileHooks{}
	layoutHooks = NoopLayoutHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
