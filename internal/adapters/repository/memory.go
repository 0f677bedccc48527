package repository

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/okian/assay/internal/dataset"
	"github.com/okian/assay/internal/domain/model"
)

// MemoryStore keeps the whole dataset in maps guarded by a RW mutex.
// List calls return records in import order. Assessment dates are kept in
// UTC like the SQL stores.
type MemoryStore struct {
	mu sync.RWMutex

	companies   *ordered[model.Company]
	departments *ordered[model.Department]
	opAreas     *ordered[model.OpArea]
	employees   map[string]model.Employee
	assessments *ordered[model.Assessment]
}

// ordered is an id-keyed set that remembers first-insertion order.
type ordered[T any] struct {
	ids  []string
	byID map[string]T
}

func newOrdered[T any]() *ordered[T] {
	return &ordered[T]{byID: make(map[string]T)}
}

func (o *ordered[T]) put(id string, v T) {
	if _, ok := o.byID[id]; !ok {
		o.ids = append(o.ids, id)
	}
	o.byID[id] = v
}

func (o *ordered[T]) filter(keep func(T) bool) []T {
	out := make([]T, 0)
	for _, id := range o.ids {
		if v := o.byID[id]; keep(v) {
			out = append(out, v)
		}
	}
	return out
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		companies:   newOrdered[model.Company](),
		departments: newOrdered[model.Department](),
		opAreas:     newOrdered[model.OpArea](),
		employees:   make(map[string]model.Employee),
		assessments: newOrdered[model.Assessment](),
	}
}

// Import implements Importer.
func (s *MemoryStore) Import(ctx context.Context, d *dataset.Dataset) (err error) {
	defer observe(DriverMemory, "import", time.Now(), &err)
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range d.CompanyList() {
		s.companies.put(c.ID, c)
	}
	for _, dep := range d.DepartmentList() {
		s.departments.put(dep.ID, dep)
	}
	for _, op := range d.OpAreaList() {
		s.opAreas.put(op.ID, cloneOpArea(op))
	}
	for _, e := range d.Employees {
		s.employees[e.ID] = e
	}
	for _, a := range d.Assessments {
		a.Date = a.Date.UTC()
		s.assessments.put(a.ID, cloneAssessment(a))
	}
	recordImport(DriverMemory, d)
	return nil
}

// ListCompanies implements Store.
func (s *MemoryStore) ListCompanies(_ context.Context) (out []model.Company, err error) {
	defer observe(DriverMemory, "list_companies", time.Now(), &err)
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.companies.filter(func(model.Company) bool { return true }), nil
}

// GetCompany implements Store.
func (s *MemoryStore) GetCompany(_ context.Context, companyID string) (c model.Company, err error) {
	defer observe(DriverMemory, "get_company", time.Now(), &err)
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.companies.byID[companyID]
	if !ok {
		return model.Company{}, notFound("company", companyID)
	}
	return c, nil
}

// ListDepartments implements Store.
func (s *MemoryStore) ListDepartments(_ context.Context, companyID string) (out []model.Department, err error) {
	defer observe(DriverMemory, "list_departments", time.Now(), &err)
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.departments.filter(func(d model.Department) bool { return d.CompanyID == companyID }), nil
}

// GetDepartment implements Store.
func (s *MemoryStore) GetDepartment(_ context.Context, companyID, departmentID string) (d model.Department, err error) {
	defer observe(DriverMemory, "get_department", time.Now(), &err)
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.departments.byID[departmentID]
	if !ok || d.CompanyID != companyID {
		return model.Department{}, notFound("department", departmentID)
	}
	return d, nil
}

// ListOpAreas implements Store.
func (s *MemoryStore) ListOpAreas(_ context.Context, companyID, departmentID string) (out []model.OpArea, err error) {
	defer observe(DriverMemory, "list_op_areas", time.Now(), &err)
	s.mu.RLock()
	defer s.mu.RUnlock()
	out = s.opAreas.filter(func(o model.OpArea) bool {
		return o.CompanyID == companyID && o.DepartmentID == departmentID
	})
	for i := range out {
		out[i] = cloneOpArea(out[i])
	}
	return out, nil
}

// GetOpArea implements Store.
func (s *MemoryStore) GetOpArea(_ context.Context, companyID, departmentID, opAreaID string) (o model.OpArea, err error) {
	defer observe(DriverMemory, "get_op_area", time.Now(), &err)
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.opAreas.byID[opAreaID]
	if !ok || o.CompanyID != companyID || o.DepartmentID != departmentID {
		return model.OpArea{}, notFound("operational area", opAreaID)
	}
	return cloneOpArea(o), nil
}

// ListAssessments implements Store.
func (s *MemoryStore) ListAssessments(_ context.Context, opAreaID string) (out []model.Assessment, err error) {
	defer observe(DriverMemory, "list_assessments", time.Now(), &err)
	s.mu.RLock()
	defer s.mu.RUnlock()
	out = s.assessments.filter(func(a model.Assessment) bool { return a.OperationalAreaID == opAreaID })
	for i := range out {
		out[i] = cloneAssessment(out[i])
	}
	return out, nil
}

// CountAssessments implements Store.
func (s *MemoryStore) CountAssessments(_ context.Context, opAreaID string) (n int, err error) {
	defer observe(DriverMemory, "count_assessments", time.Now(), &err)
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.assessments.byID {
		if a.OperationalAreaID == opAreaID {
			n++
		}
	}
	return n, nil
}

// GetEmployee implements Store.
func (s *MemoryStore) GetEmployee(_ context.Context, employeeID string) (e model.Employee, err error) {
	defer observe(DriverMemory, "get_employee", time.Now(), &err)
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.employees[employeeID]
	if !ok {
		return model.Employee{}, notFound("employee", employeeID)
	}
	return e, nil
}

// Close implements Store.
func (s *MemoryStore) Close() error { return nil }

func cloneOpArea(o model.OpArea) model.OpArea {
	o.KPIs = slices.Clone(o.KPIs)
	o.Projects = slices.Clone(o.Projects)
	o.SpecialInitiatives = slices.Clone(o.SpecialInitiatives)
	return o
}

func cloneAssessment(a model.Assessment) model.Assessment {
	if a.Responses == nil {
		return a
	}
	rs := make([]model.Response, len(a.Responses))
	for i, r := range a.Responses {
		r.Answer = slices.Clone(r.Answer)
		r.Options = slices.Clone(r.Options)
		rs[i] = r
	}
	a.Responses = rs
	return a
}
