// Package server exposes wrangle sessions over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	chi "github.com/go-chi/chi/v5"

	"github.com/spektr-org/wrangle/executor"
	"github.com/spektr-org/wrangle/session"
	"github.com/spektr-org/wrangle/table"
)

// Options tunes the HTTP surface.
type Options struct {
	MaxUploadBytes int64
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	Logger         *slog.Logger
}

// Server routes requests to sessions held in a registry.
type Server struct {
	router   chi.Router
	sessions *session.Registry
	opts     Options
	log      *slog.Logger
}

// New creates a server over reg.
func New(reg *session.Registry, opts Options) *Server {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 32 << 20
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	s := &Server{
		router:   chi.NewRouter(),
		sessions: reg,
		opts:     opts,
		log:      log.With("component", "server"),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			s.log.Debug("request", "method", r.Method, "path", r.URL.Path, "dur", time.Since(start), "remote", r.RemoteAddr)
		})
	})

	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	s.router.Post("/v1/sessions", s.handleCreate)
	s.router.Route("/v1/sessions/{id}", func(r chi.Router) {
		r.Delete("/", s.handleDelete)
		r.Put("/file", s.handleUpload)
		r.Post("/apply", s.handleApply)
		r.Post("/reset", s.handleReset)
		r.Get("/summary", s.handleSummary)
		r.Get("/log", s.handleLog)
		r.Get("/preview", s.handlePreview)
		r.Get("/download", s.handleDownload)
		r.Get("/recipe", s.handleRecipe)
	})
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

// ============================================================================
// RESPONSES
// ============================================================================

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Warning bool   `json:"warning,omitempty"`
	Code    string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed", "status", status, "error", err)
	} else {
		s.log.Warn("request failed", "status", status, "error", err)
	}

	body := errorBody{
		Error:   err.Error(),
		Message: session.Message(err),
		Warning: session.IsWarning(err),
	}
	var execErr *executor.ExecutionError
	if errors.As(err, &execErr) {
		body.Code = execErr.Code
	}
	writeJSON(w, status, body)
}

func statusFor(err error) int {
	var execErr *executor.ExecutionError
	var parseErr *table.ParseError
	var maxErr *http.MaxBytesError
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrNoDataset):
		return http.StatusConflict
	case errors.Is(err, session.ErrEmptyInstruction), errors.As(err, &parseErr), errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.As(err, &maxErr):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, session.ErrNoCommand):
		return http.StatusBadGateway
	case errors.As(err, &execErr):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
