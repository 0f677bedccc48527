package api

import (
	"context"
	"net/http"

	service "github.com/okian/assay/internal/app"
	"github.com/okian/assay/internal/domain/report"
)

// ReportDependencies defines the operational area report operations.
type ReportDependencies interface {
	OpAreaDetails(ctx context.Context, companyID, departmentID, opAreaID string) (service.OpAreaDetails, error)
	AggregateReport(ctx context.Context, companyID, departmentID, opAreaID string) (service.AggregateView, error)
	Assessment(ctx context.Context, companyID, departmentID, opAreaID, assessmentID string) (report.AssessmentView, error)
}

// ReportHandler serves operational area details and reports.
type ReportHandler struct {
	deps ReportDependencies
}

// NewReportHandler creates a new report handler.
func NewReportHandler(deps ReportDependencies) *ReportHandler {
	return &ReportHandler{deps: deps}
}

// HandleOpArea handles GET .../op-areas/{opAreaID} requests.
func (h *ReportHandler) HandleOpArea(w http.ResponseWriter, r *http.Request) {
	out, err := h.deps.OpAreaDetails(r.Context(),
		r.PathValue("companyID"), r.PathValue("departmentID"), r.PathValue("opAreaID"))
	if err != nil {
		writeFailure(w, "api.op_area", err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleAggregate handles GET .../op-areas/{opAreaID}/aggregate requests.
func (h *ReportHandler) HandleAggregate(w http.ResponseWriter, r *http.Request) {
	out, err := h.deps.AggregateReport(r.Context(),
		r.PathValue("companyID"), r.PathValue("departmentID"), r.PathValue("opAreaID"))
	if err != nil {
		writeFailure(w, "api.aggregate", err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleAssessment handles GET .../op-areas/{opAreaID}/assessments/{assessmentID} requests.
func (h *ReportHandler) HandleAssessment(w http.ResponseWriter, r *http.Request) {
	out, err := h.deps.Assessment(r.Context(),
		r.PathValue("companyID"), r.PathValue("departmentID"), r.PathValue("opAreaID"), r.PathValue("assessmentID"))
	if err != nil {
		writeFailure(w, "api.assessment", err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
