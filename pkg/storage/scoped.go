package storage

import "context"

// Scoped prefixes every key before delegating to an inner backend.
// This keeps several users or workspaces apart on a shared Redis or Mongo:
//
//	alice := storage.NewScoped(shared, "user-alice:")
//	bob := storage.NewScoped(shared, "user-bob:")
type Scoped struct {
	inner  Backend
	prefix string
}

// NewScoped wraps inner with a key prefix.
// Scoping an already scoped backend concatenates the prefixes.
func NewScoped(inner Backend, prefix string) *Scoped {
	if s, ok := inner.(*Scoped); ok {
		return &Scoped{inner: s.inner, prefix: s.prefix + prefix}
	}
	return &Scoped{inner: inner, prefix: prefix}
}

func (s *Scoped) Name() string { return NameOf(s.inner) }

// Prefix returns the full key prefix.
func (s *Scoped) Prefix() string { return s.prefix }

func (s *Scoped) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return s.inner.Get(ctx, s.prefix+key)
}

func (s *Scoped) Set(ctx context.Context, key string, data []byte) error {
	return s.inner.Set(ctx, s.prefix+key, data)
}

func (s *Scoped) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, s.prefix+key)
}

func (s *Scoped) Close() error { return s.inner.Close() }

var _ Backend = (*Scoped)(nil)
