package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, log.InfoLevel)

	logger.Info("test message")

	if buf.Len() == 0 {
		t.Error("logger should have written output")
	}
}

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		logFunc func(*log.Logger)
		wantLog bool
	}{
		{
			name:    "info at info level",
			level:   log.InfoLevel,
			logFunc: func(l *log.Logger) { l.Info("test") },
			wantLog: true,
		},
		{
			name:    "debug at info level",
			level:   log.InfoLevel,
			logFunc: func(l *log.Logger) { l.Debug("test") },
			wantLog: false,
		},
		{
			name:    "debug at debug level",
			level:   log.DebugLevel,
			logFunc: func(l *log.Logger) { l.Debug("test") },
			wantLog: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := newLogger(&buf, tt.level)
			tt.logFunc(logger)

			gotLog := buf.Len() > 0
			if gotLog != tt.wantLog {
				t.Errorf("got log output = %v, want %v", gotLog, tt.wantLog)
			}
		})
	}
}

func TestProgress(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, log.InfoLevel)

	prog := newProgress(logger)
	time.Sleep(10 * time.Millisecond)
	prog.done("Rendered svg")

	if !bytes.Contains(buf.Bytes(), []byte("Rendered svg")) {
		t.Errorf("progress output = %q", buf.String())
	}
}

func TestLogHooks(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		level log.Level
		fire  func(*log.Logger)
		want  string
	}{
		{
			name:  "grid full warns",
			level: log.InfoLevel,
			fire:  func(l *log.Logger) { layoutLogHooks{l}.OnGridFull(ctx, "wit-machines") },
			want:  "grid full",
		},
		{
			name:  "commit is debug only",
			level: log.InfoLevel,
			fire:  func(l *log.Logger) { layoutLogHooks{l}.OnCommit(ctx, "wit-machines", "move", "m1") },
			want:  "",
		},
		{
			name:  "commit at debug",
			level: log.DebugLevel,
			fire:  func(l *log.Logger) { layoutLogHooks{l}.OnCommit(ctx, "wit-machines", "move", "m1") },
			want:  "committed",
		},
		{
			name:  "failed write is an error",
			level: log.InfoLevel,
			fire: func(l *log.Logger) {
				storageLogHooks{l}.OnWrite(ctx, "redis", "wit-machines", 10, time.Millisecond, errors.New("boom"))
			},
			want: "storage write failed",
		},
		{
			name:  "relay state",
			level: log.InfoLevel,
			fire:  func(l *log.Logger) { relayLogHooks{l}.OnConnectionState(ctx, "connected") },
			want:  "connected",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.fire(newLogger(&buf, tt.level))
			got := buf.String()
			if tt.want == "" && got != "" {
				t.Errorf("unexpected output %q", got)
			}
			if tt.want != "" && !strings.Contains(got, tt.want) {
				t.Errorf("output %q does not contain %q", got, tt.want)
			}
		})
	}
}
