package status

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/wit-platform/witpanel/pkg/errors"
	"github.com/wit-platform/witpanel/pkg/observability"
	"github.com/wit-platform/witpanel/pkg/retry"
)

// Monitor drives a push stream with polling fallback.
type Monitor struct {
	// Stream is the push channel. Nil means poll only.
	Stream Stream
	// Poller is the fallback. Nil means push only.
	Poller Poller
	// Interval is the polling period. Defaults to 5s.
	Interval time.Duration
	// MaxReconnects is how many consecutive failed connects are tolerated
	// before the monitor gives up on the stream.
	MaxReconnects int
	// Backoff spaces reconnect attempts. Only Delay and MaxDelay are used.
	Backoff retry.Policy
	Logger  *log.Logger
}

const defaultInterval = 5 * time.Second

// Run blocks until ctx ends and returns ctx.Err().
func (m *Monitor) Run(ctx context.Context, sink Sink) error {
	if m.Interval <= 0 {
		m.Interval = defaultInterval
	}
	if m.Backoff.Delay <= 0 {
		m.Backoff = retry.Policy{Delay: time.Second, MaxDelay: 30 * time.Second}
	}
	if m.Logger == nil {
		m.Logger = log.Default()
	}

	if m.Stream == nil {
		m.pollUntil(ctx, sink, time.Time{})
		return ctx.Err()
	}

	failures := 0
	for {
		m.setState(ctx, sink, Connecting, nil)
		sub, err := m.Stream.Connect(ctx)
		if ctx.Err() != nil {
			if sub != nil {
				sub.Close()
			}
			return ctx.Err()
		}

		if err == nil {
			failures = 0
			m.setState(ctx, sink, Connected, nil)
			err = m.consume(ctx, sub, sink)
			sub.Close()
			if ctx.Err() != nil {
				return ctx.Err()
			}
		} else {
			failures++
		}

		if failures > m.MaxReconnects {
			exhausted := errors.Wrap(errors.ErrCodeReconnectExhausted, err,
				"gave up after %d failed connection attempts", failures)
			m.setState(ctx, sink, Failed, exhausted)
			m.pollUntil(ctx, sink, time.Time{})
			return ctx.Err()
		}

		m.setState(ctx, sink, Disconnected, err)
		wait := m.Backoff.Backoff(max(failures-1, 0))
		m.Logger.Debug("reconnecting", "in", wait, "attempt", failures+1)
		if m.pollUntil(ctx, sink, time.Now().Add(wait)) != nil {
			return ctx.Err()
		}
	}
}

func (m *Monitor) setState(ctx context.Context, sink Sink, s State, err error) {
	if err != nil {
		m.Logger.Warn("status channel", "state", s, "error", err)
	} else {
		m.Logger.Debug("status channel", "state", s)
	}
	observability.Relay().OnConnectionState(ctx, string(s))
	sink.OnState(s, err)
}

// consume forwards pushed reports until the subscription or ctx ends.
func (m *Monitor) consume(ctx context.Context, sub Subscription, sink Sink) error {
	reports := sub.Reports()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case r, ok := <-reports:
			if !ok {
				reports = nil
				continue
			}
			sink.OnReport(r)
		case <-sub.Done():
			// Drain what arrived before the drop.
			for {
				select {
				case r, ok := <-reports:
					if !ok {
						return sub.Err()
					}
					sink.OnReport(r)
				default:
					return sub.Err()
				}
			}
		}
	}
}

// pollUntil polls immediately and then every Interval until deadline
// passes or ctx ends. A zero deadline polls until ctx ends. It returns
// ctx.Err() when the context ended.
func (m *Monitor) pollUntil(ctx context.Context, sink Sink, deadline time.Time) error {
	var stop <-chan time.Time
	if !deadline.IsZero() {
		t := time.NewTimer(time.Until(deadline))
		defer t.Stop()
		stop = t.C
	}

	if m.Poller == nil {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		}
	}

	ticker := time.NewTicker(m.Interval)
	defer ticker.Stop()
	for {
		m.poll(ctx, sink)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		case <-ticker.C:
		}
	}
}

func (m *Monitor) poll(ctx context.Context, sink Sink) {
	reports, err := m.Poller.Poll(ctx)
	if err != nil {
		if ctx.Err() == nil {
			m.Logger.Warn("poll failed", "error", err)
		}
		return
	}
	for _, r := range reports {
		sink.OnReport(r)
	}
}
