package storage

import (
	"context"
	"time"

	"github.com/wit-platform/witpanel/pkg/observability"
)

// Instrumented reports every read and write to the storage hooks.
type Instrumented struct {
	Backend
	name string
}

// Instrument wraps b so its traffic reaches [observability.Storage].
func Instrument(b Backend) *Instrumented {
	return &Instrumented{Backend: b, name: NameOf(b)}
}

func (i *Instrumented) Name() string { return i.name }

func (i *Instrumented) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, ok, err := i.Backend.Get(ctx, key)
	if err == nil {
		observability.Storage().OnRead(ctx, i.name, key, ok)
	}
	return data, ok, err
}

func (i *Instrumented) Set(ctx context.Context, key string, data []byte) error {
	start := time.Now()
	err := i.Backend.Set(ctx, key, data)
	observability.Storage().OnWrite(ctx, i.name, key, len(data), time.Since(start), err)
	return err
}

// Unwrap returns the wrapped backend.
func (i *Instrumented) Unwrap() Backend { return i.Backend }
