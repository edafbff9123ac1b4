package status

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	werrors "github.com/wit-platform/witpanel/pkg/errors"
	"github.com/wit-platform/witpanel/pkg/retry"
)

type fakeSub struct {
	reports chan Report
	done    chan struct{}
	once    sync.Once
	err     error
}

func newFakeSub() *fakeSub {
	return &fakeSub{reports: make(chan Report, 8), done: make(chan struct{})}
}

func (s *fakeSub) Reports() <-chan Report { return s.reports }
func (s *fakeSub) Done() <-chan struct{}  { return s.done }
func (s *fakeSub) Err() error             { return s.err }
func (s *fakeSub) Close() error           { s.drop(nil); return nil }

func (s *fakeSub) drop(err error) {
	s.once.Do(func() {
		s.err = err
		close(s.done)
	})
}

// fakeStream hands out subscriptions from subs, then fails.
type fakeStream struct {
	mu    sync.Mutex
	subs  []*fakeSub
	calls int
}

func (f *fakeStream) Connect(ctx context.Context) (Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if len(f.subs) == 0 {
		return nil, errors.New("relay unreachable")
	}
	s := f.subs[0]
	f.subs = f.subs[1:]
	return s, nil
}

func (f *fakeStream) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type recordingSink struct {
	mu      sync.Mutex
	states  []State
	lastErr error
	reports []Report
	notify  chan struct{}
}

func newRecordingSink() *recordingSink {
	return &recordingSink{notify: make(chan struct{}, 64)}
}

func (s *recordingSink) OnReport(r Report) {
	s.mu.Lock()
	s.reports = append(s.reports, r)
	s.mu.Unlock()
	s.poke()
}

func (s *recordingSink) OnState(st State, err error) {
	s.mu.Lock()
	s.states = append(s.states, st)
	s.lastErr = err
	s.mu.Unlock()
	s.poke()
}

func (s *recordingSink) poke() {
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

// waitFor blocks until cond holds or the test times out.
func (s *recordingSink) waitFor(t *testing.T, what string, cond func(*recordingSink) bool) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		s.mu.Lock()
		ok := cond(s)
		s.mu.Unlock()
		if ok {
			return
		}
		select {
		case <-s.notify:
		case <-time.After(5 * time.Millisecond):
		case <-deadline:
			t.Fatalf("timed out waiting for %s; states %v", what, s.snapshotStates())
		}
	}
}

func (s *recordingSink) snapshotStates() []State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]State(nil), s.states...)
}

func countingPoller(n *atomic.Int32, status string) PollerFunc {
	return func(ctx context.Context) ([]Report, error) {
		n.Add(1)
		return []Report{{TargetID: "prusa", Status: status}}, nil
	}
}

func runMonitor(t *testing.T, m *Monitor, sink Sink) (cancel func()) {
	t.Helper()
	ctx, stop := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx, sink) }()
	return func() {
		stop()
		select {
		case err := <-done:
			if !errors.Is(err, context.Canceled) {
				t.Errorf("Run returned %v, want context.Canceled", err)
			}
		case <-time.After(2 * time.Second):
			t.Error("Run did not return after cancel")
		}
	}
}

func TestMonitorPollOnly(t *testing.T) {
	var polls atomic.Int32
	sink := newRecordingSink()
	m := &Monitor{Poller: countingPoller(&polls, "green"), Interval: 5 * time.Millisecond}
	stop := runMonitor(t, m, sink)
	defer stop()

	sink.waitFor(t, "three polled reports", func(s *recordingSink) bool { return len(s.reports) >= 3 })
	if states := sink.snapshotStates(); len(states) != 0 {
		t.Errorf("poll-only monitor reported states %v", states)
	}
}

func TestMonitorSuspendsPollingWhileConnected(t *testing.T) {
	var polls atomic.Int32
	sub := newFakeSub()
	stream := &fakeStream{subs: []*fakeSub{sub}}
	sink := newRecordingSink()
	m := &Monitor{Stream: stream, Poller: countingPoller(&polls, "green"), Interval: time.Millisecond}
	stop := runMonitor(t, m, sink)
	defer stop()

	sink.waitFor(t, "connected", func(s *recordingSink) bool {
		return len(s.states) > 0 && s.states[len(s.states)-1] == Connected
	})
	sub.reports <- Report{TargetID: "prusa", Status: "red"}
	sink.waitFor(t, "pushed report", func(s *recordingSink) bool { return len(s.reports) == 1 })

	time.Sleep(20 * time.Millisecond)
	if n := polls.Load(); n != 0 {
		t.Errorf("polled %d times while push channel was healthy", n)
	}
}

func TestMonitorFallsBackAndReconnects(t *testing.T) {
	var polls atomic.Int32
	first, second := newFakeSub(), newFakeSub()
	stream := &fakeStream{subs: []*fakeSub{first, second}}
	sink := newRecordingSink()
	m := &Monitor{
		Stream:        stream,
		Poller:        countingPoller(&polls, "yellow"),
		Interval:      time.Millisecond,
		MaxReconnects: 3,
		Backoff:       retry.Policy{Delay: 20 * time.Millisecond},
	}
	stop := runMonitor(t, m, sink)
	defer stop()

	sink.waitFor(t, "connected", func(s *recordingSink) bool { return len(s.states) == 2 })
	first.drop(errors.New("socket closed"))

	sink.waitFor(t, "reconnected", func(s *recordingSink) bool { return len(s.states) == 5 })
	want := []State{Connecting, Connected, Disconnected, Connecting, Connected}
	got := sink.snapshotStates()
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("states = %v, want %v", got, want)
		}
	}
	if polls.Load() == 0 {
		t.Error("no fallback polling while disconnected")
	}
}

func TestMonitorGivesUpAfterMaxReconnects(t *testing.T) {
	var polls atomic.Int32
	stream := &fakeStream{}
	sink := newRecordingSink()
	m := &Monitor{
		Stream:        stream,
		Poller:        countingPoller(&polls, "green"),
		Interval:      time.Millisecond,
		MaxReconnects: 2,
		Backoff:       retry.Policy{Delay: time.Millisecond},
	}
	stop := runMonitor(t, m, sink)
	defer stop()

	sink.waitFor(t, "failed", func(s *recordingSink) bool {
		return len(s.states) > 0 && s.states[len(s.states)-1] == Failed
	})
	want := []State{Connecting, Disconnected, Connecting, Disconnected, Connecting, Failed}
	got := sink.snapshotStates()
	if len(got) != len(want) {
		t.Fatalf("states = %v, want %v", got, want)
	}
	sink.mu.Lock()
	lastErr := sink.lastErr
	sink.mu.Unlock()
	if !werrors.Is(lastErr, werrors.ErrCodeReconnectExhausted) {
		t.Errorf("failure error = %v, want RECONNECT_EXHAUSTED", lastErr)
	}

	before := polls.Load()
	sink.waitFor(t, "polling after failure", func(*recordingSink) bool { return polls.Load() > before+2 })
	if n := stream.Calls(); n != 3 {
		t.Errorf("Connect called %d times, want 3", n)
	}
}

func TestHTTPPoller(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		if r.Header.Get("Authorization") != "Bearer t" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`[{"target_id":"prusa","status":"green","data":{"temp":210}}]`))
	}))
	defer srv.Close()

	p, err := NewHTTPPoller(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	p.Retry.Delay = time.Millisecond
	p.Headers = map[string]string{"Authorization": "Bearer t"}

	reports, err := p.Poll(context.Background())
	if err != nil {
		t.Fatalf("Poll: %v", err)
	}
	if len(reports) != 1 || reports[0].TargetID != "prusa" || string(reports[0].Data) != `{"temp":210}` {
		t.Errorf("reports = %+v", reports)
	}

	p.Headers = nil
	if _, err := p.Poll(context.Background()); !werrors.Is(err, werrors.ErrCodeNetwork) {
		t.Errorf("unauthorized poll = %v, want NETWORK_ERROR", err)
	}
}

func TestNewHTTPPollerValidatesURL(t *testing.T) {
	if _, err := NewHTTPPoller("ftp://x"); !werrors.Is(err, werrors.ErrCodeInvalidInput) {
		t.Errorf("NewHTTPPoller(ftp) = %v", err)
	}
}
