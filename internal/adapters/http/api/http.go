// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"

	service "github.com/okian/assay/internal/app"
	"github.com/okian/assay/pkg/metrics"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	DirectoryDependencies
	ReportDependencies
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	directoryHandler *DirectoryHandler
	reportHandler    *ReportHandler
	dashboardHandler *dashboardHandler

	rps   float64
	burst int
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithRateLimit enables per-server token bucket limiting of the /api routes.
// rps <= 0 leaves them unlimited.
func WithRateLimit(rps float64, burst int) ServerOption {
	return func(s *Server) {
		s.rps = rps
		s.burst = burst
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...ServerOption) *Server {
	s := &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(statsProvider),
		directoryHandler: NewDirectoryHandler(deps),
		reportHandler:    NewReportHandler(deps),
		dashboardHandler: newDashboardHandler(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	limit := RateLimitMiddleware(s.rps, s.burst)
	api := func(endpoint string, h http.HandlerFunc) http.HandlerFunc {
		return MetricsMiddleware(limit(h, endpoint), endpoint)
	}

	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("GET /dashboard", s.dashboardHandler.HandleDashboard)

	const (
		company    = "/api/companies/{companyID}"
		department = company + "/departments/{departmentID}"
		opArea     = department + "/op-areas/{opAreaID}"
	)
	mux.HandleFunc("GET /api/companies", api("companies", s.directoryHandler.HandleCompanies))
	mux.HandleFunc("GET "+company, api("company", s.directoryHandler.HandleCompany))
	mux.HandleFunc("GET "+company+"/departments", api("departments", s.directoryHandler.HandleDepartments))
	mux.HandleFunc("GET "+department+"/op-areas", api("op_areas", s.directoryHandler.HandleOpAreas))
	mux.HandleFunc("GET "+opArea, api("op_area", s.reportHandler.HandleOpArea))
	mux.HandleFunc("GET "+opArea+"/aggregate", api("aggregate", s.reportHandler.HandleAggregate))
	mux.HandleFunc("GET "+opArea+"/assessments/{assessmentID}", api("assessment", s.reportHandler.HandleAssessment))
}

// Compile-time check that the service satisfies the handler contracts.
var _ Dependencies = (*service.Service)(nil)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeJSON encodes v before writing any header, so an unencodable value
// becomes a 500 instead of an empty 200.
func writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		metrics.RecordErrorByComponent("http", "encode_error")
		buf.Reset()
		status = http.StatusInternalServerError
		_ = json.NewEncoder(&buf).Encode(errorResponse{Code: "internal_error", Message: "encode response: " + err.Error()})
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeFailure classifies err and writes the matching error response.
func writeFailure(w http.ResponseWriter, op string, err error) {
	status, code := classify(err)
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		err = Wrap(op, err)
	}
	writeError(w, status, code, err)
}
