// Package model contains domain models passed between layers.
package model

import "time"

// QuestionType tags how a question is answered and scored.
type QuestionType string

// Known question types.
const (
	QuestionSingle QuestionType = "single" // exactly one ranked option
	QuestionMulti  QuestionType = "multi"  // one or more options, equally weighted
)

// Valid reports whether t is one of the known question types.
func (t QuestionType) Valid() bool {
	switch t {
	case QuestionSingle, QuestionMulti:
		return true
	default:
		return false
	}
}

// Response is one answered question within an assessment.
// Question text is the aggregation key; Answer holds selected option indices.
type Response struct {
	Question string       `json:"question" yaml:"question" validate:"required"`
	Answer   []int        `json:"answer" yaml:"answer" validate:"required,min=1,dive,min=0"`
	Score    float64      `json:"score" yaml:"score"`
	Options  []string     `json:"options" yaml:"options" validate:"required,min=1"`
	Type     QuestionType `json:"type" yaml:"type" validate:"required"`
}

// Assessment is a completed questionnaire tied to one employee and one
// operational area. Assessments are read-only once fetched.
type Assessment struct {
	ID                string     `json:"id" yaml:"id" validate:"required"`
	Date              time.Time  `json:"date" yaml:"date" validate:"required"`
	EmployeeID        string     `json:"employee_id" yaml:"employee_id"`
	CompanyID         string     `json:"company_id" yaml:"company_id" validate:"required"`
	DepartmentID      string     `json:"department_id" yaml:"department_id" validate:"required"`
	OperationalAreaID string     `json:"operational_area_id" yaml:"operational_area_id" validate:"required"`
	Score             float64    `json:"score" yaml:"score"`
	Responses         []Response `json:"responses" yaml:"responses" validate:"dive"`
}
