package model

// Company is the root of the organisational hierarchy.
// Score, Size and Years are kept as stored free text.
type Company struct {
	ID       string `json:"id" yaml:"id" validate:"required"`
	Name     string `json:"name" yaml:"name" validate:"required"`
	Address  string `json:"address" yaml:"address"`
	Industry string `json:"industry" yaml:"industry"`
	Score    string `json:"score,omitempty" yaml:"score,omitempty"`
	Size     string `json:"size,omitempty" yaml:"size,omitempty"`
	Years    string `json:"years,omitempty" yaml:"years,omitempty"`
}

// Department belongs to a company.
type Department struct {
	ID        string `json:"id" yaml:"id" validate:"required"`
	CompanyID string `json:"company_id" yaml:"company_id"`
	Name      string `json:"name" yaml:"name" validate:"required"`
}

// OpArea is an operational area, the level assessments are recorded against.
type OpArea struct {
	ID                 string   `json:"id" yaml:"id" validate:"required"`
	CompanyID          string   `json:"company_id" yaml:"company_id"`
	DepartmentID       string   `json:"department_id" yaml:"department_id"`
	Name               string   `json:"name" yaml:"name" validate:"required"`
	Description        string   `json:"description" yaml:"description"`
	KPIs               []string `json:"kpis,omitempty" yaml:"kpis,omitempty"`
	Projects           []string `json:"projects,omitempty" yaml:"projects,omitempty"`
	SpecialInitiatives []string `json:"special_initiatives,omitempty" yaml:"special_initiatives,omitempty"`
}

// Employee is the respondent behind an assessment.
type Employee struct {
	ID                string `json:"id" yaml:"id" validate:"required"`
	Name              string `json:"name" yaml:"name"`
	Phone             string `json:"phone,omitempty" yaml:"phone,omitempty"`
	Email             string `json:"email,omitempty" yaml:"email,omitempty" validate:"omitempty,email"`
	Role              string `json:"role" yaml:"role"`
	CompanyID         string `json:"company_id" yaml:"company_id"`
	DepartmentID      string `json:"department_id" yaml:"department_id"`
	OperationalAreaID string `json:"operational_area_id" yaml:"operational_area_id"`
}
