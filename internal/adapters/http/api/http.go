// Package api serves the JSON API of the fortune workflow plus the
// operational endpoints.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/wangcai/internal/domain/profile"
	"github.com/okian/wangcai/internal/domain/report"
	"github.com/okian/wangcai/internal/domain/workflow"
	"github.com/okian/wangcai/pkg/logger"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	CreateSession(ctx context.Context) (string, workflow.Snapshot, error)
	Session(ctx context.Context, id string) (workflow.Snapshot, error)
	StartSession(ctx context.Context, id string) (workflow.Snapshot, error)
	Submit(ctx context.Context, id string, fields profile.Fields) (workflow.Snapshot, error)
	Reset(ctx context.Context, id string) (workflow.Snapshot, error)
	Share(ctx context.Context, id string) (report.Share, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	sessionsHandler *SessionsHandler
	optionsHandler  *OptionsHandler
	logger          logger.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithPublicURL sets the link appended to copied share texts.
func WithPublicURL(u string) Option {
	return func(s *Server) {
		s.sessionsHandler.publicURL = u
	}
}

// WithLogger sets the logger used for unexpected errors.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
			s.sessionsHandler.logger = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		sessionsHandler: NewSessionsHandler(deps),
		optionsHandler:  NewOptionsHandler(),
		logger:          logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	sh := s.sessionsHandler
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("GET /api/options", MetricsMiddleware(s.optionsHandler.HandleOptions, "options"))
	mux.HandleFunc("POST /api/sessions", MetricsMiddleware(sh.HandleCreate, "sessions_create"))
	mux.HandleFunc("GET /api/sessions/{id}", MetricsMiddleware(sh.HandleGet, "sessions_get"))
	mux.HandleFunc("POST /api/sessions/{id}/start", MetricsMiddleware(sh.HandleStart, "sessions_start"))
	mux.HandleFunc("POST /api/sessions/{id}/submit", MetricsMiddleware(sh.HandleSubmit, "sessions_submit"))
	mux.HandleFunc("POST /api/sessions/{id}/reset", MetricsMiddleware(sh.HandleReset, "sessions_reset"))
	mux.HandleFunc("GET /api/sessions/{id}/share", MetricsMiddleware(sh.HandleShare, "sessions_share"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError sends the error body. Internal causes stay in the logs.
func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil && code != codeInternal {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
