package storage

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/wit-platform/witpanel/pkg/errors"
	"github.com/wit-platform/witpanel/pkg/observability"
)

// exerciseBackend runs the shared contract every backend must honour.
func exerciseBackend(t *testing.T, b Backend) {
	t.Helper()
	ctx := context.Background()

	data, ok, err := b.Get(ctx, "wit-machines")
	if err != nil {
		t.Fatalf("Get on empty backend: %v", err)
	}
	if ok || data != nil {
		t.Fatalf("Get on empty backend = %q, %v; want miss", data, ok)
	}

	record := []byte(`[{"id":"a","position":{"x":0,"y":0},"size":{"width":1,"height":1}}]`)
	if err := b.Set(ctx, "wit-machines", record); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, ok, err := b.Get(ctx, "wit-machines")
	if err != nil || !ok {
		t.Fatalf("Get after Set = %v, %v", ok, err)
	}
	if !bytes.Equal(got, record) {
		t.Errorf("Get = %s, want %s", got, record)
	}

	if err := b.Set(ctx, "wit-machines", []byte("[]")); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got, _, _ = b.Get(ctx, "wit-machines")
	if string(got) != "[]" {
		t.Errorf("Get after overwrite = %s, want []", got)
	}

	if err := b.Delete(ctx, "wit-machines"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := b.Get(ctx, "wit-machines"); ok {
		t.Error("Get after Delete should miss")
	}
	if err := b.Delete(ctx, "never-written"); err != nil {
		t.Errorf("Delete of missing key: %v", err)
	}
}

func TestMemory(t *testing.T) {
	m := NewMemory()
	exerciseBackend(t, m)

	ctx := context.Background()
	buf := []byte("abc")
	m.Set(ctx, "k", buf)
	buf[0] = 'z'
	got, _, _ := m.Get(ctx, "k")
	if string(got) != "abc" {
		t.Errorf("Memory should copy on Set, got %s", got)
	}

	m.Close()
	if _, _, err := m.Get(ctx, "k"); err != ErrClosed {
		t.Errorf("Get after Close = %v, want ErrClosed", err)
	}
}

func TestFile(t *testing.T) {
	dir := t.TempDir()
	f, err := NewFile(dir)
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}
	exerciseBackend(t, f)

	ctx := context.Background()
	if err := f.Set(ctx, "wit-projects", []byte("[]")); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "wit-projects.json")); err != nil {
		t.Errorf("record file missing: %v", err)
	}

	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".tmp" {
			t.Errorf("temporary file left behind: %s", e.Name())
		}
	}
}

func TestFileRejectsTraversal(t *testing.T) {
	f, err := NewFile(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	for _, key := range []string{"", "../escape", "a/b", `a\b`} {
		if err := f.Set(ctx, key, []byte("x")); !errors.Is(err, errors.ErrCodeInvalidKey) {
			t.Errorf("Set(%q) = %v, want INVALID_KEY", key, err)
		}
	}
}

func TestNewFileRequiresDir(t *testing.T) {
	if _, err := NewFile(""); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("NewFile(\"\") = %v, want INVALID_CONFIG", err)
	}
}

func TestRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	r := NewRedisWithClient(client, "witpanel:")
	defer r.Close()

	exerciseBackend(t, r)

	ctx := context.Background()
	r.Set(ctx, "wit-projects", []byte("[]"))
	if got, err := mr.Get("witpanel:wit-projects"); err != nil || got != "[]" {
		t.Errorf("raw redis value = %q, %v; want [] under prefixed key", got, err)
	}
}

func TestNewRedisPings(t *testing.T) {
	mr := miniredis.RunT(t)
	r, err := NewRedis(context.Background(), RedisConfig{Addr: mr.Addr()})
	if err != nil {
		t.Fatalf("NewRedis: %v", err)
	}
	r.Close()

	mr.RequireAuth("secret")
	if _, err := NewRedis(context.Background(), RedisConfig{Addr: mr.Addr()}); err == nil {
		t.Error("NewRedis without the password should fail")
	}
	r, err = NewRedis(context.Background(), RedisConfig{Addr: mr.Addr(), Password: "secret"})
	if err != nil {
		t.Fatalf("NewRedis with password: %v", err)
	}
	r.Close()
}

func TestMongo(t *testing.T) {
	uri := os.Getenv("WITPANEL_MONGO_URI")
	if uri == "" {
		t.Skip("WITPANEL_MONGO_URI not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	m, err := NewMongo(ctx, MongoConfig{URI: uri, Database: "witpanel_test", Collection: t.Name()})
	if err != nil {
		t.Fatalf("NewMongo: %v", err)
	}
	defer m.Close()
	exerciseBackend(t, m)
}

func TestScoped(t *testing.T) {
	ctx := context.Background()
	shared := NewMemory()
	alice := NewScoped(shared, "user-alice:")
	bob := NewScoped(shared, "user-bob:")

	exerciseBackend(t, alice)

	alice.Set(ctx, "wit-machines", []byte("alice"))
	bob.Set(ctx, "wit-machines", []byte("bob"))

	got, _, _ := alice.Get(ctx, "wit-machines")
	if string(got) != "alice" {
		t.Errorf("alice sees %q", got)
	}
	want := []string{"user-alice:wit-machines", "user-bob:wit-machines"}
	keys := shared.Keys()
	if len(keys) != len(want) || keys[0] != want[0] || keys[1] != want[1] {
		t.Errorf("shared keys = %v, want %v", keys, want)
	}

	nested := NewScoped(alice, "ws1:")
	if nested.Prefix() != "user-alice:ws1:" {
		t.Errorf("nested prefix = %q", nested.Prefix())
	}
}

// slowBackend counts writes and blocks each one until released.
type slowBackend struct {
	*Memory
	mu     sync.Mutex
	writes int
	gate   chan struct{}
}

func (s *slowBackend) Set(ctx context.Context, key string, data []byte) error {
	if s.gate != nil {
		<-s.gate
	}
	s.mu.Lock()
	s.writes++
	s.mu.Unlock()
	return s.Memory.Set(ctx, key, data)
}

func TestWriteBehind(t *testing.T) {
	w := NewWriteBehind(NewMemory())
	defer w.Close()
	exerciseBackend(t, w)
}

func TestWriteBehindReadsQueuedValue(t *testing.T) {
	ctx := context.Background()
	inner := &slowBackend{Memory: NewMemory(), gate: make(chan struct{})}
	w := NewWriteBehind(inner)

	for i := 0; i < 5; i++ {
		if err := w.Set(ctx, "k", []byte{byte('0' + i)}); err != nil {
			t.Fatal(err)
		}
	}
	got, ok, err := w.Get(ctx, "k")
	if err != nil || !ok || string(got) != "4" {
		t.Errorf("Get before flush = %q, %v, %v; want newest queued value", got, ok, err)
	}

	close(inner.gate)
	if err := w.Flush(ctx); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	stored, _, _ := inner.Memory.Get(ctx, "k")
	if string(stored) != "4" {
		t.Errorf("inner value = %q, want 4", stored)
	}
	inner.mu.Lock()
	writes := inner.writes
	inner.mu.Unlock()
	if writes > 2 {
		t.Errorf("writes = %d, queued values should collapse", writes)
	}
	w.Close()
}

func TestWriteBehindCloseFlushes(t *testing.T) {
	ctx := context.Background()
	inner := NewMemory()
	w := NewWriteBehind(&slowBackend{Memory: inner})

	w.Set(ctx, "a", []byte("1"))
	w.Delete(ctx, "b")
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := w.Set(ctx, "a", []byte("2")); err != ErrClosed {
		t.Errorf("Set after Close = %v, want ErrClosed", err)
	}
	if got := inner.records["a"]; string(got) != "1" {
		t.Errorf("value after Close = %q, want 1", got)
	}
}

type recordingStorageHooks struct {
	observability.NoopStorageHooks
	reads, writes int
}

func (h *recordingStorageHooks) OnRead(context.Context, string, string, bool) { h.reads++ }
func (h *recordingStorageHooks) OnWrite(context.Context, string, string, int, time.Duration, error) {
	h.writes++
}

func TestOpen(t *testing.T) {
	hooks := &recordingStorageHooks{}
	observability.SetStorageHooks(hooks)
	defer observability.Reset()

	ctx := context.Background()
	b, err := Open(ctx, Config{Backend: KindFile, Dir: t.TempDir(), Scope: "ws:"}, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer b.Close()

	if NameOf(b) != "file" {
		t.Errorf("NameOf = %q, want file", NameOf(b))
	}
	b.Set(ctx, "wit-machines", []byte("[]"))
	b.Get(ctx, "wit-machines")
	if hooks.reads != 1 || hooks.writes != 1 {
		t.Errorf("hooks saw %d reads, %d writes; want 1, 1", hooks.reads, hooks.writes)
	}

	if _, err := Open(ctx, Config{Backend: "sqlite"}, nil); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("Open(sqlite) = %v, want INVALID_CONFIG", err)
	}
}

func TestOpenRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	b, err := Open(context.Background(), Config{Backend: KindRedis, Redis: RedisConfig{Addr: mr.Addr()}, WriteBehind: true}, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	ctx := context.Background()
	b.Set(ctx, "wit-projects", []byte("[]"))
	if err := b.(*WriteBehind).Flush(ctx); err != nil {
		t.Fatal(err)
	}
	if got, _ := mr.Get("wit-projects"); got != "[]" {
		t.Errorf("redis value = %q", got)
	}
	b.Close()
}

func TestDefaultDir(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/tmp/xdg")
	dir, err := DefaultDir()
	if err != nil {
		t.Fatal(err)
	}
	if dir != filepath.Join("/tmp/xdg", "witpanel") {
		t.Errorf("DefaultDir = %q", dir)
	}
}
