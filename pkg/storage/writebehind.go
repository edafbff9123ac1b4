package storage

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// WriteBehind queues writes and applies them to an inner backend on a
// background goroutine. Only the newest value per key is kept, so a burst of
// saves during a drag collapses into one write. Reads see queued values
// before they reach the inner backend.
//
// Failed writes are logged and remembered; [WriteBehind.Err] reports the
// most recent one. Call [WriteBehind.Flush] to wait for queued writes and
// [WriteBehind.Close] to flush and shut down.
type WriteBehind struct {
	inner   Backend
	logger  *log.Logger
	timeout time.Duration

	mu       sync.Mutex
	pending  map[string]pendingWrite
	inflight map[string]pendingWrite
	lastErr  error
	closed   bool

	writeMu sync.Mutex // serializes drains
	wake    chan struct{}
	done    chan struct{}
	stopped chan struct{}
}

type pendingWrite struct {
	data    []byte
	deleted bool
}

// WriteBehindOption configures a [WriteBehind].
type WriteBehindOption func(*WriteBehind)

// WithWriteLogger sets the logger used for write failures.
func WithWriteLogger(l *log.Logger) WriteBehindOption {
	return func(w *WriteBehind) { w.logger = l }
}

// WithWriteTimeout bounds each background write. Default is 10s.
func WithWriteTimeout(d time.Duration) WriteBehindOption {
	return func(w *WriteBehind) { w.timeout = d }
}

// NewWriteBehind starts a writer in front of inner.
func NewWriteBehind(inner Backend, opts ...WriteBehindOption) *WriteBehind {
	w := &WriteBehind{
		inner:    inner,
		timeout:  10 * time.Second,
		pending:  make(map[string]pendingWrite),
		inflight: make(map[string]pendingWrite),
		wake:     make(chan struct{}, 1),
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	go w.loop()
	return w
}

func (w *WriteBehind) Name() string { return NameOf(w.inner) }

// Get returns a queued value if one exists, otherwise reads through.
func (w *WriteBehind) Get(ctx context.Context, key string) ([]byte, bool, error) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil, false, ErrClosed
	}
	p, ok := w.pending[key]
	if !ok {
		p, ok = w.inflight[key]
	}
	w.mu.Unlock()
	if ok {
		if p.deleted {
			return nil, false, nil
		}
		return slices.Clone(p.data), true, nil
	}
	return w.inner.Get(ctx, key)
}

// Set queues data for key and returns immediately.
func (w *WriteBehind) Set(ctx context.Context, key string, data []byte) error {
	return w.enqueue(key, pendingWrite{data: slices.Clone(data)})
}

// Delete queues removal of key.
func (w *WriteBehind) Delete(ctx context.Context, key string) error {
	return w.enqueue(key, pendingWrite{deleted: true})
}

func (w *WriteBehind) enqueue(key string, p pendingWrite) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrClosed
	}
	w.pending[key] = p
	w.mu.Unlock()

	select {
	case w.wake <- struct{}{}:
	default:
	}
	return nil
}

// Flush writes every queued value before returning.
func (w *WriteBehind) Flush(ctx context.Context) error {
	w.drain(ctx)
	return w.Err()
}

// Err returns the most recent write failure, if any.
func (w *WriteBehind) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastErr
}

// Close flushes queued writes, stops the writer and closes the inner backend.
func (w *WriteBehind) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()

	close(w.done)
	<-w.stopped
	w.drain(context.Background())

	flushErr := w.Err()
	if err := w.inner.Close(); err != nil {
		return err
	}
	return flushErr
}

func (w *WriteBehind) loop() {
	defer close(w.stopped)
	for {
		select {
		case <-w.done:
			return
		case <-w.wake:
			w.drain(context.Background())
		}
	}
}

func (w *WriteBehind) drain(ctx context.Context) {
	w.writeMu.Lock()
	defer w.writeMu.Unlock()

	w.mu.Lock()
	if len(w.pending) == 0 {
		w.mu.Unlock()
		return
	}
	batch := w.pending
	w.pending = make(map[string]pendingWrite)
	w.inflight = batch
	w.mu.Unlock()

	keys := make([]string, 0, len(batch))
	for k := range batch {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var lastErr error
	for _, key := range keys {
		p := batch[key]
		wctx, cancel := context.WithTimeout(ctx, w.timeout)
		var err error
		if p.deleted {
			err = w.inner.Delete(wctx, key)
		} else {
			err = w.inner.Set(wctx, key, p.data)
		}
		cancel()
		if err != nil {
			lastErr = err
			if w.logger != nil {
				w.logger.Error("background write failed", "key", key, "error", err)
			}
		}
	}

	w.mu.Lock()
	w.inflight = make(map[string]pendingWrite)
	if lastErr != nil {
		w.lastErr = lastErr
	}
	w.mu.Unlock()
}

var _ Backend = (*WriteBehind)(nil)
