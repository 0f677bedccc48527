// Package repository defines the assessment store interfaces and backends.
package repository

import (
	"context"
	"fmt"

	"github.com/okian/assay/internal/dataset"
	"github.com/okian/assay/internal/domain/model"
)

// Store drivers.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Drivers lists the drivers Open accepts.
func Drivers() []string {
	return []string{DriverMemory, DriverSQLite, DriverPostgres}
}

// Store provides read access to the organisational tree and its assessments.
// Lookups scoped by parent ids return ErrNotFound when the child exists but
// belongs to another parent.
type Store interface {
	ListCompanies(ctx context.Context) ([]model.Company, error)
	GetCompany(ctx context.Context, companyID string) (model.Company, error)

	ListDepartments(ctx context.Context, companyID string) ([]model.Department, error)
	GetDepartment(ctx context.Context, companyID, departmentID string) (model.Department, error)

	ListOpAreas(ctx context.Context, companyID, departmentID string) ([]model.OpArea, error)
	GetOpArea(ctx context.Context, companyID, departmentID, opAreaID string) (model.OpArea, error)

	// ListAssessments returns every assessment recorded against the operational area.
	ListAssessments(ctx context.Context, opAreaID string) ([]model.Assessment, error)
	CountAssessments(ctx context.Context, opAreaID string) (int, error)

	GetEmployee(ctx context.Context, employeeID string) (model.Employee, error)

	Close() error
}

// Importer loads a dataset into a store, replacing records with the same id.
type Importer interface {
	Import(ctx context.Context, d *dataset.Dataset) error
}

// Backend is a Store that can also be seeded.
type Backend interface {
	Store
	Importer
}

// Open connects to the backend named by driver. dsn is ignored for memory.
func Open(ctx context.Context, driver, dsn string, opts ...Option) (Backend, error) {
	switch driver {
	case DriverMemory, "":
		return NewMemoryStore(), nil
	case DriverSQLite:
		s, err := OpenSQLite(ctx, dsn, opts...)
		if err != nil {
			return nil, err
		}
		return s, nil
	case DriverPostgres:
		s, err := OpenPostgres(ctx, dsn, opts...)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}
