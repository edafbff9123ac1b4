package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestDo(t *testing.T) {
	transient := errors.New("transient")
	fatal := errors.New("fatal")
	fast := Policy{Attempts: 3, Delay: time.Millisecond}

	tests := []struct {
		name      string
		fails     []error
		wantCalls int
		wantErr   error
	}{
		{"first try", nil, 1, nil},
		{"recovers", []error{Retryable(transient)}, 2, nil},
		{"exhausted", []error{Retryable(transient), Retryable(transient), Retryable(transient)}, 3, transient},
		{"not retryable", []error{fatal}, 1, fatal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := Do(context.Background(), fast, func(attempt int) error {
				if attempt != calls {
					t.Errorf("attempt = %d, want %d", attempt, calls)
				}
				calls++
				if attempt < len(tt.fails) {
					return tt.fails[attempt]
				}
				return nil
			})
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
			if !errors.Is(err, tt.wantErr) && !(err == nil && tt.wantErr == nil) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDoCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Do(ctx, Policy{Attempts: 5, Delay: time.Hour}, func(int) error {
		return Retryable(errors.New("down"))
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestBackoff(t *testing.T) {
	p := Policy{Delay: 100 * time.Millisecond, MaxDelay: time.Second}
	want := []time.Duration{100, 200, 400, 800, 1000, 1000}
	for i, w := range want {
		if got := p.Backoff(i); got != w*time.Millisecond {
			t.Errorf("Backoff(%d) = %v, want %v", i, got, w*time.Millisecond)
		}
	}

	uncapped := Policy{Delay: time.Second}
	if got := uncapped.Backoff(4); got != 16*time.Second {
		t.Errorf("uncapped Backoff(4) = %v", got)
	}
}

func TestRetryable(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should be nil")
	}
	base := errors.New("x")
	err := Retryable(base)
	if !IsRetryable(err) || !errors.Is(err, base) {
		t.Error("Retryable should wrap and be detectable")
	}
	if IsRetryable(base) {
		t.Error("plain error reported as retryable")
	}
}
