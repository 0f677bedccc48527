package api

import (
	"context"
	"fmt"
	"net/http"
	"unicode/utf8"

	service "github.com/okian/assay/internal/app"
	"github.com/okian/assay/internal/domain/model"
)

const maxSearchLen = 128

// DirectoryDependencies defines the lookups behind the drill-down listings.
type DirectoryDependencies interface {
	Companies(ctx context.Context, search string) (service.CompanyListing, error)
	Company(ctx context.Context, companyID string) (model.Company, error)
	Departments(ctx context.Context, companyID, search string) (service.DepartmentListing, error)
	OpAreas(ctx context.Context, companyID, departmentID, search string) (service.OpAreaListing, error)
}

// DirectoryHandler serves companies, departments and operational areas.
type DirectoryHandler struct {
	deps DirectoryDependencies
}

// NewDirectoryHandler creates a new directory handler.
func NewDirectoryHandler(deps DirectoryDependencies) *DirectoryHandler {
	return &DirectoryHandler{deps: deps}
}

// searchTerm reads the optional ?search= query parameter.
func searchTerm(r *http.Request, op string) (string, error) {
	term := r.URL.Query().Get("search")
	if utf8.RuneCountInString(term) > maxSearchLen {
		return "", WrapKind(op, ErrBadRequest, fmt.Errorf("search longer than %d characters", maxSearchLen))
	}
	return term, nil
}

// HandleCompanies handles GET /api/companies requests.
func (h *DirectoryHandler) HandleCompanies(w http.ResponseWriter, r *http.Request) {
	const op = "api.companies"
	term, err := searchTerm(r, op)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	out, err := h.deps.Companies(r.Context(), term)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleCompany handles GET /api/companies/{companyID} requests.
func (h *DirectoryHandler) HandleCompany(w http.ResponseWriter, r *http.Request) {
	const op = "api.company"
	out, err := h.deps.Company(r.Context(), r.PathValue("companyID"))
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleDepartments handles GET /api/companies/{companyID}/departments requests.
func (h *DirectoryHandler) HandleDepartments(w http.ResponseWriter, r *http.Request) {
	const op = "api.departments"
	term, err := searchTerm(r, op)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	out, err := h.deps.Departments(r.Context(), r.PathValue("companyID"), term)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleOpAreas handles GET .../departments/{departmentID}/op-areas requests.
func (h *DirectoryHandler) HandleOpAreas(w http.ResponseWriter, r *http.Request) {
	const op = "api.op_areas"
	term, err := searchTerm(r, op)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	out, err := h.deps.OpAreas(r.Context(), r.PathValue("companyID"), r.PathValue("departmentID"), term)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
