package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/couchcryptid/tsunami-statement-service/internal/domain"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// StatementComposer composes a statement on request.
type StatementComposer interface {
	Compose(ctx context.Context, req domain.ComposeRequest) (domain.Statement, error)
}

// IssuanceLog is the record of the last broadcast per hazard kind.
type IssuanceLog interface {
	Overlaps(kinds []domain.HazardKind, zones []domain.ZoneCode) []domain.Overlap
	RecordStatement(s domain.Statement) error
	Records() []domain.IssuanceRecord
	Active() []domain.IssuanceRecord
	Reset() error
}

// Server exposes health, readiness and metrics endpoints, and the operator
// API for composing statements and managing the issuance log.
type Server struct {
	httpServer *http.Server
	composer   StatementComposer
	issuances  IssuanceLog
	logger     *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithComposer enables POST /v1/statements.
func WithComposer(c StatementComposer) Option {
	return func(s *Server) { s.composer = c }
}

// WithIssuanceLog enables the /v1/issuances routes and overlap warnings on
// composed statements.
func WithIssuanceLog(l IssuanceLog) Option {
	return func(s *Server) { s.issuances = l }
}

// NewServer creates an HTTP server with /healthz, /readyz and /metrics routes
// plus the API routes enabled by opts.
func NewServer(addr string, ready sharedobs.ReadinessChecker, logger *slog.Logger, opts ...Option) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	if s.composer != nil {
		mux.HandleFunc("POST /v1/statements", s.handleCompose)
	}
	if s.issuances != nil {
		mux.HandleFunc("GET /v1/issuances", s.handleListIssuances)
		mux.HandleFunc("POST /v1/issuances", s.handleRecordIssuance)
		mux.HandleFunc("POST /v1/issuances/reset", s.handleResetIssuances)
	}

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // client may have gone away
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
