// Package status keeps machine status current from a push channel, with
// polling as the fallback.
//
// A [Monitor] connects to a [Stream]. While the stream is connected,
// reports arrive by push and polling is suspended. When the stream drops,
// the monitor polls the [Poller] while it reconnects with exponential
// backoff. After MaxReconnects consecutive failed attempts it reports
// [Failed] and keeps polling until its context ends; it never retries the
// stream again on its own.
package status

import (
	"context"
	"encoding/json"
	"time"
)

// Report is the latest status of one target.
type Report struct {
	TargetID string          `json:"target_id"`
	Status   string          `json:"status"`
	Data     json.RawMessage `json:"data,omitempty"`
	At       time.Time       `json:"at"`
}

// State is the push channel's connection state.
type State string

const (
	Connecting   State = "connecting"
	Connected    State = "connected"
	Disconnected State = "disconnected"
	Failed       State = "failed"
)

// Stream opens push subscriptions.
type Stream interface {
	Connect(ctx context.Context) (Subscription, error)
}

// Subscription is one live push connection.
type Subscription interface {
	// Reports delivers pushed reports.
	Reports() <-chan Report
	// Done is closed when the connection ends.
	Done() <-chan struct{}
	// Err explains why Done was closed.
	Err() error
	Close() error
}

// Poller fetches a full snapshot of reports.
type Poller interface {
	Poll(ctx context.Context) ([]Report, error)
}

// PollerFunc adapts a function to [Poller].
type PollerFunc func(ctx context.Context) ([]Report, error)

func (f PollerFunc) Poll(ctx context.Context) ([]Report, error) { return f(ctx) }

// Sink receives monitor output. Calls come from the monitor's goroutine.
type Sink interface {
	OnReport(r Report)
	// OnState is called on every transition. err explains Disconnected
	// and Failed.
	OnState(s State, err error)
}

// Funcs adapts optional functions to [Sink].
type Funcs struct {
	Report func(Report)
	State  func(State, error)
}

func (f Funcs) OnReport(r Report) {
	if f.Report != nil {
		f.Report(r)
	}
}

func (f Funcs) OnState(s State, err error) {
	if f.State != nil {
		f.State(s, err)
	}
}
