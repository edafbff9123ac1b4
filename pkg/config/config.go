// Package config loads witpanel settings from a TOML file.
//
// The file lives at $XDG_CONFIG_HOME/witpanel/config.toml (by default
// ~/.config/witpanel/config.toml). Missing files and missing keys fall back
// to [Default]; command-line flags override both.
//
//	[grid]
//	cols = 4
//	rows = 3
//
//	[storage]
//	backend = "redis"
//	[storage.redis]
//	addr = "localhost:6379"
//
//	[relay]
//	url = "ws://localhost:8765/ws"
//
//	[status]
//	poll_url = "http://localhost:8000/api/v1/equipment/status"
//	interval = "5s"
//	max_reconnects = 5
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/wit-platform/witpanel/pkg/errors"
	"github.com/wit-platform/witpanel/pkg/grid"
	"github.com/wit-platform/witpanel/pkg/retry"
	"github.com/wit-platform/witpanel/pkg/storage"
)

// Config is the whole settings file.
type Config struct {
	Grid    grid.Config    `toml:"grid"`
	Board   Board          `toml:"board"`
	Storage storage.Config `toml:"storage"`
	Relay   Relay          `toml:"relay"`
	Status  Status         `toml:"status"`
	Server  Server         `toml:"server"`
}

// Board tunes the interactive terminal board. Sizes are in terminal
// character cells.
type Board struct {
	// CellWidth and CellHeight fix the size of one grid cell. Zero fits the
	// board to the terminal.
	CellWidth  int `toml:"cell_width"`
	CellHeight int `toml:"cell_height"`
	// EdgeThreshold is how close to a tile's edge a press starts a resize
	// instead of a drag. 0.5 means the border characters only.
	EdgeThreshold float64 `toml:"edge_threshold"`
}

// Relay locates the desktop controller.
type Relay struct {
	URL   string `toml:"url"`
	Token string `toml:"token"`
	// Dial retries the initial handshake.
	Dial         retry.Policy  `toml:"dial"`
	PingInterval time.Duration `toml:"ping_interval"`
	Timeout      time.Duration `toml:"timeout"`
}

// Status configures the status monitor.
type Status struct {
	// PollURL is the REST fallback. Empty disables polling.
	PollURL       string        `toml:"poll_url"`
	Interval      time.Duration `toml:"interval"`
	MaxReconnects int           `toml:"max_reconnects"`
	Backoff       retry.Policy  `toml:"backoff"`
}

// Server configures the HTTP API.
type Server struct {
	Addr string `toml:"addr"`
	// Scope isolates this server's boards on shared storage.
	Scope string `toml:"scope"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Grid:    grid.DefaultConfig,
		Board:   Board{EdgeThreshold: 0.5},
		Storage: storage.Config{Backend: storage.KindFile},
		Relay: Relay{
			URL:          "ws://localhost:8765/ws",
			Dial:         retry.Default,
			PingInterval: 30 * time.Second,
			Timeout:      30 * time.Second,
		},
		Status: Status{
			Interval:      5 * time.Second,
			MaxReconnects: 5,
			Backoff:       retry.Policy{Delay: time.Second, MaxDelay: 30 * time.Second},
		},
		Server: Server{Addr: "127.0.0.1:8080"},
	}
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.Grid.Validate(); err != nil {
		return err
	}
	if err := c.Storage.Validate(); err != nil {
		return err
	}
	if c.Board.CellWidth < 0 || c.Board.CellHeight < 0 || c.Board.EdgeThreshold < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "board cell sizes and edge_threshold must not be negative")
	}
	if c.Relay.URL != "" {
		if err := errors.ValidateURL(c.Relay.URL, "ws", "wss"); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "relay.url")
		}
	}
	if c.Status.PollURL != "" {
		if err := errors.ValidateURL(c.Status.PollURL); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "status.poll_url")
		}
	}
	if c.Status.Interval <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "status.interval must be positive")
	}
	if c.Status.MaxReconnects < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "status.max_reconnects must not be negative")
	}
	return nil
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return cfg, errors.New(errors.ErrCodeInvalidConfig, "unknown key %s in %s", undecoded[0], path)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Write saves cfg to path, creating parent directories.
func Write(path string, cfg Config) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	return os.WriteFile(path, buf.Bytes(), 0o600)
}

// Path returns the config file location using the XDG standard.
func Path() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, "witpanel", "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".config", "witpanel", "config.toml"), nil
}
