// Package observability provides hooks for metrics, tracing, and logging.
//
// Libraries in this module never import a metrics or tracing backend
// directly. Instead they report events through the hook interfaces below,
// which default to no-ops. The CLI registers implementations at startup
// (for example, hooks that log through charmbracelet/log in verbose mode).
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetLayoutHooks(&myLayoutHooks{})
//	    observability.SetStorageHooks(&myStorageHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Layout().OnCommit(ctx, "machines", "move", id)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Layout Hooks
// =============================================================================

// LayoutHooks receives events from layout stores and gesture controllers.
type LayoutHooks interface {
	// OnCommit records a successful mutation (add, move, resize, remove, update).
	OnCommit(ctx context.Context, board, op, id string)

	// OnReject records a placement that was refused and snapped back.
	OnReject(ctx context.Context, board, op, id string, reason error)

	// OnGridFull records an add that found no free slot.
	OnGridFull(ctx context.Context, board string)

	// OnRecover records a persisted record that could not be parsed and was reset.
	OnRecover(ctx context.Context, board string, err error)
}

// =============================================================================
// Storage Hooks
// =============================================================================

// StorageHooks receives events from persistence backends.
type StorageHooks interface {
	// OnRead records a record lookup.
	OnRead(ctx context.Context, backend, key string, hit bool)

	// OnWrite records a record write.
	OnWrite(ctx context.Context, backend, key string, size int, duration time.Duration, err error)
}

// =============================================================================
// Relay Hooks
// =============================================================================

// RelayHooks receives events from the desktop relay and the status monitor.
type RelayHooks interface {
	// OnCommand records a command round trip.
	OnCommand(ctx context.Context, target, command string, duration time.Duration, err error)

	// OnConnectionState records a push-channel state transition.
	OnConnectionState(ctx context.Context, state string)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopLayoutHooks is a no-op implementation of LayoutHooks.
type NoopLayoutHooks struct{}

func (NoopLayoutHooks) OnCommit(context.Context, string, string, string)        {}
func (NoopLayoutHooks) OnReject(context.Context, string, string, string, error) {}
func (NoopLayoutHooks) OnGridFull(context.Context, string)                      {}
func (NoopLayoutHooks) OnRecover(context.Context, string, error)                {}

// NoopStorageHooks is a no-op implementation of StorageHooks.
type NoopStorageHooks struct{}

func (NoopStorageHooks) OnRead(context.Context, string, string, bool) {}
func (NoopStorageHooks) OnWrite(context.Context, string, string, int, time.Duration, error) {
}

// NoopRelayHooks is a no-op implementation of RelayHooks.
type NoopRelayHooks struct{}

func (NoopRelayHooks) OnCommand(context.Context, string, string, time.Duration, error) {}
func (NoopRelayHooks) OnConnectionState(context.Context, string)                       {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	layoutHooks  LayoutHooks  = NoopLayoutHooks{}
	storageHooks StorageHooks = NoopStorageHooks{}
	relayHooks   RelayHooks   = NoopRelayHooks{}
	hooksMu      sync.RWMutex
)

// SetLayoutHooks registers custom layout hooks.
// This should be called once at application startup.
func SetLayoutHooks(h LayoutHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		layoutHooks = h
	}
}

// SetStorageHooks registers custom storage hooks.
func SetStorageHooks(h StorageHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		storageHooks = h
	}
}

// SetRelayHooks registers custom relay hooks.
func SetRelayHooks(h RelayHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		relayHooks = h
	}
}

// Layout returns the registered layout hooks.
func Layout() LayoutHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return layoutHooks
}

// Storage returns the registered storage hooks.
func Storage() StorageHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return storageHooks
}

// Relay returns the registered relay hooks.
func Relay() RelayHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return relayHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	layoutHooks = NoopLayoutHooks{}
	storageHooks = NoopStorageHooks{}
	relayHooks = NoopRelayHooks{}
}
