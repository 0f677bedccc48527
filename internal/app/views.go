package service

import (
	"time"

	"github.com/okian/assay/internal/domain/model"
	"github.com/okian/assay/internal/domain/report"
)

// CompanyListing is the companies page.
type CompanyListing struct {
	Companies []model.Company `json:"companies"`
	// Suggestion is the closest company name when a search matched nothing.
	Suggestion string `json:"suggestion,omitempty"`
}

// DepartmentSummary is a department row with its operational area count.
type DepartmentSummary struct {
	model.Department
	OpAreaCount int `json:"op_area_count"`
}

// DepartmentListing is the departments page of one company.
type DepartmentListing struct {
	Company     model.Company       `json:"company"`
	Departments []DepartmentSummary `json:"departments"`
	Suggestion  string              `json:"suggestion,omitempty"`
}

// OpAreaSummary is an operational area row with its assessment count.
type OpAreaSummary struct {
	model.OpArea
	AssessmentCount int `json:"assessment_count"`
}

// OpAreaListing is the operational areas page of one department.
type OpAreaListing struct {
	Company    model.Company    `json:"company"`
	Department model.Department `json:"department"`
	OpAreas    []OpAreaSummary  `json:"op_areas"`
	Suggestion string           `json:"suggestion,omitempty"`
}

// AssessmentRow is one line of the assessments table.
type AssessmentRow struct {
	ID        string    `json:"id"`
	Label     string    `json:"label"`
	Date      time.Time `json:"date"`
	DateLabel string    `json:"date_label"`
	Role      string    `json:"role"`
	Score     float64   `json:"score"`
}

// OpAreaDetails is the operational area page: descriptive fields plus its
// assessments, newest first.
type OpAreaDetails struct {
	CompanyName    string          `json:"company_name"`
	DepartmentName string          `json:"department_name"`
	OpArea         model.OpArea    `json:"op_area"`
	Assessments    []AssessmentRow `json:"assessments"`
}

// AggregateView is the aggregate report of one operational area.
type AggregateView struct {
	CompanyName    string `json:"company_name"`
	DepartmentName string `json:"department_name"`
	OpAreaName     string `json:"op_area_name"`
	report.AggregateReport
}
