package observability

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	l := NoopLayoutHooks{}
	l.OnCommit(ctx, "machines", "move", "m1")
	l.OnReject(ctx, "machines", "resize", "m1", errors.New("overlap"))
	l.OnGridFull(ctx, "projects")
	l.OnRecover(ctx, "projects", errors.New("bad json"))

	s := NoopStorageHooks{}
	s.OnRead(ctx, "file", "wit-machines", true)
	s.OnWrite(ctx, "redis", "wit-machines", 512, time.Millisecond, nil)

	r := NoopRelayHooks{}
	r.OnCommand(ctx, "docker", "list_containers", time.Second, nil)
	r.OnConnectionState(ctx, "connected")
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()
	defer Reset()

	if _, ok := Layout().(NoopLayoutHooks); !ok {
		t.Error("Layout() should return NoopLayoutHooks by default")
	}
	if _, ok := Storage().(NoopStorageHooks); !ok {
		t.Error("Storage() should return NoopStorageHooks by default")
	}
	if _, ok := Relay().(NoopRelayHooks); !ok {
		t.Error("Relay() should return NoopRelayHooks by default")
	}

	customLayout := &testLayoutHooks{}
	SetLayoutHooks(customLayout)
	if Layout() != customLayout {
		t.Error("SetLayoutHooks should set custom hooks")
	}

	customStorage := &testStorageHooks{}
	SetStorageHooks(customStorage)
	if Storage() != customStorage {
		t.Error("SetStorageHooks should set custom hooks")
	}

	customRelay := &testRelayHooks{}
	SetRelayHooks(customRelay)
	if Relay() != customRelay {
		t.Error("SetRelayHooks should set custom hooks")
	}

	// nil is ignored
	SetLayoutHooks(nil)
	if Layout() != customLayout {
		t.Error("SetLayoutHooks(nil) should keep the current hooks")
	}

	Reset()
	if _, ok := Layout().(NoopLayoutHooks); !ok {
		t.Error("Reset should restore NoopLayoutHooks")
	}
}

func TestCustomHooksReceiveEvents(t *testing.T) {
	Reset()
	defer Reset()

	h := &testLayoutHooks{}
	SetLayoutHooks(h)

	Layout().OnCommit(context.Background(), "machines", "add", "m1")
	Layout().OnGridFull(context.Background(), "machines")

	if h.commits != 1 || h.full != 1 {
		t.Errorf("commits=%d full=%d, want 1 and 1", h.commits, h.full)
	}
}

type testLayoutHooks struct {
	NoopLayoutHooks
	commits int
	full    int
}

func (h *testLayoutHooks) OnCommit(context.Context, string, string, string) { h.commits++ }
func (h *testLayoutHooks) OnGridFull(context.Context, string)               { h.full++ }

type testStorageHooks struct{ NoopStorageHooks }

type testRelayHooks struct{ NoopRelayHooks }
