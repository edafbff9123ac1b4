// Package storage provides the persistence port behind layout stores.
//
// A layout is one named record (a JSON array of entities) stored under a
// key. [Backend] is the minimal key/value contract the layout store needs,
// with implementations for the places such a record can live:
//   - [Memory]: in-process map for tests and ephemeral boards
//   - [File]: one JSON file per key, for the CLI and the terminal board
//   - [Redis]: shared state for several API instances
//   - [Mongo]: document store, one document per key
//
// Wrappers compose on top of any backend:
//   - [Scoped]: key prefix for multi-tenant isolation
//   - [WriteBehind]: asynchronous last-write-wins writer so a slow backend
//     never blocks gesture handling
//
// Use [Open] to build a backend from configuration.
package storage

import (
	"context"
	"errors"
)

// ErrClosed is returned by operations on a closed backend.
var ErrClosed = errors.New("storage closed")

// Backend stores opaque records by key.
type Backend interface {
	// Get returns the record for key. ok is false when no record exists.
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)

	// Set replaces the record for key.
	Set(ctx context.Context, key string, data []byte) error

	// Delete removes the record for key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the backend.
	Close() error
}

// Namer is implemented by backends that report a short name for logs and hooks.
type Namer interface {
	Name() string
}

// NameOf returns the backend's name, or "custom".
func NameOf(b Backend) string {
	if n, ok := b.(Namer); ok {
		return n.Name()
	}
	return "custom"
}
