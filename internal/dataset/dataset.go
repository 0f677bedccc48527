// Package dataset reads, writes, checks and synthesises seed data for the
// assessment store.
package dataset

import (
	"errors"

	"github.com/okian/assay/internal/domain/model"
)

// Sentinel error kinds for this package.
var (
	ErrInvalidDataset = errors.New("invalid dataset")
	ErrDecode         = errors.New("decode dataset failed")
)

// Dataset is the on-disk seed layout: the organisational tree nested under
// companies, with employees and assessments kept flat.
type Dataset struct {
	Companies   []CompanyEntry     `yaml:"companies" validate:"dive"`
	Employees   []model.Employee   `yaml:"employees" validate:"dive"`
	Assessments []model.Assessment `yaml:"assessments" validate:"dive"`
}

// CompanyEntry is a company with its departments.
type CompanyEntry struct {
	model.Company `yaml:",inline"`
	Departments   []DepartmentEntry `yaml:"departments" validate:"dive"`
}

// DepartmentEntry is a department with its operational areas.
type DepartmentEntry struct {
	model.Department `yaml:",inline"`
	OperationalAreas []model.OpArea `yaml:"operational_areas" validate:"dive"`
}

// CompanyList returns the companies without their children.
func (d *Dataset) CompanyList() []model.Company {
	out := make([]model.Company, 0, len(d.Companies))
	for _, c := range d.Companies {
		out = append(out, c.Company)
	}
	return out
}

// DepartmentList returns every department with CompanyID filled from its parent.
func (d *Dataset) DepartmentList() []model.Department {
	var out []model.Department
	for _, c := range d.Companies {
		for _, dep := range c.Departments {
			v := dep.Department
			v.CompanyID = c.ID
			out = append(out, v)
		}
	}
	return out
}

// OpAreaList returns every operational area with parent ids filled in.
func (d *Dataset) OpAreaList() []model.OpArea {
	var out []model.OpArea
	for _, c := range d.Companies {
		for _, dep := range c.Departments {
			for _, op := range dep.OperationalAreas {
				op.CompanyID = c.ID
				op.DepartmentID = dep.ID
				out = append(out, op)
			}
		}
	}
	return out
}
