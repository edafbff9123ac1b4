// Package cli implements the witpanel command-line interface.
//
// The command tree manages the two W.I.T. boards (machines and projects),
// hosts them over HTTP, talks to the desktop relay and runs the
// interactive terminal board. The CLI is built using cobra and logs via
// charmbracelet/log.
//
// # Commands
//
// The main commands are:
//   - machines, projects: list, add, remove, move and resize board entities
//   - board: drag and resize entities with the mouse in the terminal
//   - serve: expose both boards as a JSON API
//   - relay, status: send commands to and watch the desktop relay
//   - export, import: snapshot boards as text, DOT, SVG, PNG or JSON
//   - storage, config: manage persisted state and settings
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Layout,
// storage and relay events are logged through observability hooks
// registered before each command runs.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/wit-platform/witpanel/pkg/observability"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time, e.g. "Rendered svg (1.234s)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

// =============================================================================
// Hooks
// =============================================================================

type layoutLogHooks struct{ logger *log.Logger }

func (h layoutLogHooks) OnCommit(_ context.Context, board, op, id string) {
	h.logger.Debug("committed", "board", board, "op", op, "id", id)
}

func (h layoutLogHooks) OnReject(_ context.Context, board, op, id string, err error) {
	if err == nil {
		h.logger.Debug("rejected", "board", board, "op", op, "id", id)
		return
	}
	h.logger.Debug("rejected", "board", board, "op", op, "id", id, "reason", err)
}

func (h layoutLogHooks) OnGridFull(_ context.Context, board string) {
	h.logger.Warn("grid full", "board", board)
}

func (h layoutLogHooks) OnRecover(_ context.Context, board string, err error) {
	h.logger.Warn("recovered corrupt layout", "board", board, "error", err)
}

type storageLogHooks struct{ logger *log.Logger }

func (h storageLogHooks) OnRead(_ context.Context, backend, key string, hit bool) {
	h.logger.Debug("storage read", "backend", backend, "key", key, "hit", hit)
}

func (h storageLogHooks) OnWrite(_ context.Context, backend, key string, size int, dur time.Duration, err error) {
	if err != nil {
		h.logger.Error("storage write failed", "backend", backend, "key", key, "error", err)
		return
	}
	h.logger.Debug("storage write", "backend", backend, "key", key, "bytes", size, "took", dur.Round(time.Microsecond))
}

type relayLogHooks struct{ logger *log.Logger }

func (h relayLogHooks) OnCommand(_ context.Context, target, cmd string, dur time.Duration, err error) {
	if err != nil {
		h.logger.Warn("relay command failed", "target", target, "command", cmd, "error", err)
		return
	}
	h.logger.Debug("relay command", "target", target, "command", cmd, "took", dur.Round(time.Millisecond))
}

func (h relayLogHooks) OnConnectionState(_ context.Context, state string) {
	h.logger.Info("relay connection", "state", state)
}

var (
	_ observability.LayoutHooks  = layoutLogHooks{}
	_ observability.StorageHooks = storageLogHooks{}
	_ observability.RelayHooks   = relayLogHooks{}
)
