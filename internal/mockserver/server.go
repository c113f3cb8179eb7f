// Package mockserver serves synthetic metrics and logs over HTTP in the shape
// the mock telemetry client expects.
package mockserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/ricardonunez-io/ranger/internal/telemetry"
	"github.com/rs/zerolog/log"
)

const notFoundMessage = "Not Found: The requested path does not exist or is not configured."

type Server struct {
	gen *Generator
	now func() time.Time
}

type Option func(*Server)

func WithGenerator(g *Generator) Option {
	return func(s *Server) { s.gen = g }
}

func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

func New(opts ...Option) *Server {
	s := &Server{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	if s.gen == nil {
		s.gen = NewGenerator(nil)
	}
	return s
}

func (s *Server) Handler() http.Handler {
	router := mux.NewRouter()
	router.Use(recoverJSON, logRequests)

	router.HandleFunc("/metrics", s.handleMetrics).Methods(http.MethodGet)
	router.HandleFunc("/logs", s.handleLogs).Methods(http.MethodGet)

	// Middleware registered with Use does not run for unmatched routes.
	router.NotFoundHandler = recoverJSON(logRequests(http.HandlerFunc(notFound)))
	router.MethodNotAllowedHandler = recoverJSON(logRequests(http.HandlerFunc(methodNotAllowed)))
	return router
}

// ListenAndServe blocks until ctx is cancelled or the listener fails.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("Mock telemetry API listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	service, metric := q.Get("service_name"), q.Get("metric_name")
	if service == "" || metric == "" {
		badRequest(w, "Missing required query parameters: 'service_name' and 'metric_name'")
		return
	}

	end := s.now().UTC()
	start := end.Add(-time.Hour)
	var err error
	if v := q.Get("start_time"); v != "" {
		if start, err = parseISO(v); err != nil {
			badRequest(w, fmt.Sprintf("Invalid ISO date format for start_time: %q", v))
			return
		}
	}
	if v := q.Get("end_time"); v != "" {
		if end, err = parseISO(v); err != nil {
			badRequest(w, fmt.Sprintf("Invalid ISO date format for end_time: %q", v))
			return
		}
	}

	period := 300
	if v := q.Get("period"); v != "" {
		if period, err = strconv.Atoi(v); err != nil {
			badRequest(w, fmt.Sprintf("period must be an integer number of seconds, got %q", v))
			return
		}
	}

	respondJSON(w, http.StatusOK, s.gen.Metric(service, metric, start, end, period))
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	group := q.Get("log_group_name")
	if group == "" {
		badRequest(w, "Missing required query parameter: 'log_group_name'")
		return
	}

	endMs := s.now().UnixMilli()
	startMs := endMs - time.Hour.Milliseconds()
	var err error
	if v := q.Get("start_time"); v != "" {
		if startMs, err = strconv.ParseInt(v, 10, 64); err != nil {
			badRequest(w, fmt.Sprintf("start_time must be epoch milliseconds, got %q", v))
			return
		}
	}
	if v := q.Get("end_time"); v != "" {
		if endMs, err = strconv.ParseInt(v, 10, 64); err != nil {
			badRequest(w, fmt.Sprintf("end_time must be epoch milliseconds, got %q", v))
			return
		}
	}

	limit := 0
	if v := q.Get("limit"); v != "" {
		if limit, err = strconv.Atoi(v); err != nil {
			badRequest(w, fmt.Sprintf("limit must be an integer, got %q", v))
			return
		}
	}

	events := s.gen.Logs(group, startMs, endMs, q.Get("filter_pattern"), limit)
	respondJSON(w, http.StatusOK, telemetry.LogBatch{Events: events})
}

func parseISO(v string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, strings.Replace(v, " ", "+", 1))
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

func badRequest(w http.ResponseWriter, details string) {
	respondJSON(w, http.StatusBadRequest, map[string]string{"error": "Bad Request", "details": details})
}

func notFound(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusNotFound, map[string]string{"error": notFoundMessage, "received_path": r.URL.Path})
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "Method Not Allowed", "details": r.Method})
}

func recoverJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if p := recover(); p != nil {
				log.Error().Interface("panic", p).Str("path", r.URL.Path).Msg("Mock API handler panicked")
				respondJSON(w, http.StatusInternalServerError, map[string]string{
					"error":   "Internal server error",
					"details": fmt.Sprint(p),
				})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("query", r.URL.RawQuery).
			Dur("elapsed", time.Since(start)).
			Msg("Mock API request")
	})
}
