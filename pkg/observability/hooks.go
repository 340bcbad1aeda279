// Package observability lets the application observe rendering, caching
// and survey activity without the libraries depending on a metrics or
// tracing backend.
//
// Each event category is a hook interface with a no-op default. The binary
// registers its own implementations at startup:
//
//	observability.SetRenderHooks(myRenderHooks{})
//	observability.SetSurveyHooks(mySurveyHooks{})
//
// and libraries emit events through the accessors:
//
//	observability.Render().OnRenderStart(ctx, "main")
//	// ... render ...
//	observability.Render().OnRenderComplete(ctx, "main", len(png), time.Since(start), err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Render Hooks
// =============================================================================

// RenderHooks receives events from the render pipeline. kind is "main" or
// "avatar".
type RenderHooks interface {
	OnRenderStart(ctx context.Context, kind string)
	OnRenderComplete(ctx context.Context, kind string, size int, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache lookups.
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// Survey Hooks
// =============================================================================

// SurveyHooks receives events from response collection.
type SurveyHooks interface {
	// OnResponse records an accepted response. userID is empty for
	// anonymous responses.
	OnResponse(ctx context.Context, questionID, userID, choice string)
	// OnDuplicate records a rejected second response.
	OnDuplicate(ctx context.Context, questionID, userID string)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopRenderHooks ignores every render event.
type NoopRenderHooks struct{}

func (NoopRenderHooks) OnRenderStart(context.Context, string)                               {}
func (NoopRenderHooks) OnRenderComplete(context.Context, string, int, time.Duration, error) {}

// NoopCacheHooks ignores every cache event.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopSurveyHooks ignores every survey event.
type NoopSurveyHooks struct{}

func (NoopSurveyHooks) OnResponse(context.Context, string, string, string) {}
func (NoopSurveyHooks) OnDuplicate(context.Context, string, string)        {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	renderHooks RenderHooks = NoopRenderHooks{}
	cacheHooks  CacheHooks  = NoopCacheHooks{}
	surveyHooks SurveyHooks = NoopSurveyHooks{}
	hooksMu     sync.RWMutex
)

// SetRenderHooks registers render hooks. A nil value is ignored.
func SetRenderHooks(h RenderHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		renderHooks = h
	}
}

// SetCacheHooks registers cache hooks. A nil value is ignored.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetSurveyHooks registers survey hooks. A nil value is ignored.
func SetSurveyHooks(h SurveyHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		surveyHooks = h
	}
}

// Render returns the registered render hooks.
func Render() RenderHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return renderHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Survey returns the registered survey hooks.
func Survey() SurveyHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return surveyHooks
}

// Reset restores the no-op defaults. Intended for tests.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	renderHooks = NoopRenderHooks{}
	cacheHooks = NoopCacheHooks{}
	surveyHooks = NoopSurveyHooks{}
}
