package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/wit-platform/witpanel/pkg/errors"
)

// Backend kinds accepted by [Config.Backend].
const (
	KindMemory = "memory"
	KindFile   = "file"
	KindRedis  = "redis"
	KindMongo  = "mongo"
)

// Config selects and configures a backend.
type Config struct {
	// Backend is one of memory, file, redis or mongo. Empty means file.
	Backend string `toml:"backend" json:"backend"`
	// Dir is the file backend directory. Empty means [DefaultDir].
	Dir string `toml:"dir" json:"dir,omitempty"`
	// Scope prefixes every key, see [Scoped].
	Scope string `toml:"scope" json:"scope,omitempty"`
	// WriteBehind moves writes onto a background goroutine.
	WriteBehind bool `toml:"write_behind" json:"write_behind"`

	Redis RedisConfig `toml:"redis" json:"redis"`
	Mongo MongoConfig `toml:"mongo" json:"mongo"`
}

// Validate checks the backend kind.
func (c Config) Validate() error {
	switch c.Backend {
	case "", KindMemory, KindFile, KindRedis, KindMongo:
		return nil
	}
	return errors.New(errors.ErrCodeInvalidConfig, "unknown storage backend %q (want memory, file, redis or mongo)", c.Backend)
}

// Open builds the backend described by cfg. The result is always wrapped
// with [Instrument]; Scope and WriteBehind add their wrappers on top.
func Open(ctx context.Context, cfg Config, logger *log.Logger) (Backend, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var (
		b   Backend
		err error
	)
	switch cfg.Backend {
	case KindMemory:
		b = NewMemory()
	case KindRedis:
		b, err = NewRedis(ctx, cfg.Redis)
	case KindMongo:
		b, err = NewMongo(ctx, cfg.Mongo)
	default:
		dir := cfg.Dir
		if dir == "" {
			if dir, err = DefaultDir(); err != nil {
				return nil, err
			}
		}
		b, err = NewFile(dir)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "open %s storage", kindOrDefault(cfg.Backend))
	}

	b = Instrument(b)
	if cfg.Scope != "" {
		b = NewScoped(b, cfg.Scope)
	}
	if cfg.WriteBehind {
		b = NewWriteBehind(b, WithWriteLogger(logger))
	}
	if logger != nil {
		logger.Debug("storage opened", "backend", NameOf(b), "scope", cfg.Scope, "write_behind", cfg.WriteBehind)
	}
	return b, nil
}

func kindOrDefault(kind string) string {
	if kind == "" {
		return KindFile
	}
	return kind
}

// DefaultDir returns the layout directory using the XDG standard
// (~/.local/share/witpanel/).
func DefaultDir() (string, error) {
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, "witpanel"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".local", "share", "witpanel"), nil
}
