// Package server exposes the machine and project boards over HTTP.
//
// Routes, per board (machines, projects):
//
//	GET    /api/{board}                list (status, priority, sort, page, page_size)
//	POST   /api/{board}                add at the first free slot
//	GET    /api/{board}/grid           grid dimensions
//	PUT    /api/{board}/grid           change grid dimensions
//	GET    /api/{board}/snapshot.svg   board snapshot
//	GET    /api/{board}/snapshot.txt   board snapshot as plain text
//	GET    /api/{board}/{id}           one entity
//	PATCH  /api/{board}/{id}           merge payload fields
//	DELETE /api/{board}/{id}           remove
//	PUT    /api/{board}/{id}/position  move
//	PUT    /api/{board}/{id}/size      resize
//
// plus POST /api/relay/{target}/{command} when a relay is configured, and
// GET /healthz. Errors are JSON objects {"code": "...", "message": "..."}.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/wit-platform/witpanel/pkg/errors"
	"github.com/wit-platform/witpanel/pkg/layout"
	"github.com/wit-platform/witpanel/pkg/workshop"
)

// Commander sends commands through the relay.
type Commander interface {
	SendCommand(ctx context.Context, targetID, command string, args any) (json.RawMessage, error)
}

// Server routes HTTP requests to the board stores.
type Server struct {
	router   chi.Router
	logger   *log.Logger
	relay    Commander
	machines *layout.Store[workshop.Machine]
	projects *layout.Store[workshop.Project]
}

// Option configures a [Server].
type Option func(*Server)

// WithLogger sets the request and error logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithRelay enables the relay command route.
func WithRelay(c Commander) Option {
	return func(s *Server) { s.relay = c }
}

// New builds the router.
func New(machines *layout.Store[workshop.Machine], projects *layout.Store[workshop.Project], opts ...Option) *Server {
	s := &Server{logger: log.Default(), machines: machines, projects: projects}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/healthz"))

	r.Route("/api", func(r chi.Router) {
		r.Route("/"+string(workshop.KindMachines), newBoard(machines, "Machines", s.logger).routes)
		r.Route("/"+string(workshop.KindProjects), newBoard(projects, "Projects", s.logger).routes)
		r.Post("/relay/{target}/{command}", s.sendCommand)
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, s.logger, errors.New(errors.ErrCodeNotFound, "no route %s %s", r.Method, r.URL.Path))
	})

	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx ends, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return ctx.Err()
}

func (s *Server) sendCommand(w http.ResponseWriter, r *http.Request) {
	if s.relay == nil {
		writeError(w, s.logger, errors.New(errors.ErrCodeUnsupported, "no relay configured"))
		return
	}
	var args map[string]any
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &args); err != nil {
			writeError(w, s.logger, err)
			return
		}
	}
	result, err := s.relay.SendCommand(r.Context(), chi.URLParam(r, "target"), chi.URLParam(r, "command"), args)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]json.RawMessage{"result": result})
}

// requestLogger logs each request at debug level, and server errors at
// error level.
func requestLogger(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)

			fields := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"took", time.Since(start).Round(time.Microsecond),
				"request_id", middleware.GetReqID(r.Context()),
			}
			if ww.Status() >= 500 {
				logger.Error("request", fields...)
			} else {
				logger.Debug("request", fields...)
			}
		})
	}
}
