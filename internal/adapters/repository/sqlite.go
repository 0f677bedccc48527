package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" database/sql driver

	"github.com/okian/assay/internal/dataset"
	"github.com/okian/assay/internal/domain/model"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS companies (
	id       TEXT PRIMARY KEY,
	name     TEXT NOT NULL,
	address  TEXT NOT NULL DEFAULT '',
	industry TEXT NOT NULL DEFAULT '',
	score    TEXT NOT NULL DEFAULT '',
	size     TEXT NOT NULL DEFAULT '',
	years    TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS departments (
	id         TEXT PRIMARY KEY,
	company_id TEXT NOT NULL,
	name       TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS op_areas (
	id                  TEXT PRIMARY KEY,
	company_id          TEXT NOT NULL,
	department_id       TEXT NOT NULL,
	name                TEXT NOT NULL,
	description         TEXT NOT NULL DEFAULT '',
	kpis                TEXT NOT NULL DEFAULT 'null',
	projects            TEXT NOT NULL DEFAULT 'null',
	special_initiatives TEXT NOT NULL DEFAULT 'null'
);
CREATE TABLE IF NOT EXISTS employees (
	id                  TEXT PRIMARY KEY,
	name                TEXT NOT NULL DEFAULT '',
	phone               TEXT NOT NULL DEFAULT '',
	email               TEXT NOT NULL DEFAULT '',
	role                TEXT NOT NULL DEFAULT '',
	company_id          TEXT NOT NULL DEFAULT '',
	department_id       TEXT NOT NULL DEFAULT '',
	operational_area_id TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS assessments (
	id                  TEXT PRIMARY KEY,
	date                TEXT NOT NULL,
	employee_id         TEXT NOT NULL DEFAULT '',
	company_id          TEXT NOT NULL,
	department_id       TEXT NOT NULL,
	operational_area_id TEXT NOT NULL,
	score               REAL NOT NULL DEFAULT 0,
	responses           TEXT NOT NULL DEFAULT 'null'
);
CREATE INDEX IF NOT EXISTS departments_company ON departments(company_id);
CREATE INDEX IF NOT EXISTS op_areas_parent ON op_areas(company_id, department_id);
CREATE INDEX IF NOT EXISTS assessments_op_area ON assessments(operational_area_id);
`

// SQLiteStore is a Store backed by a pure-Go SQLite database.
// Array and response fields are kept as JSON text; dates as RFC 3339 text.
type SQLiteStore struct {
	db   *sql.DB
	opts options
}

// OpenSQLite opens (or creates) the database at path and applies the schema.
func OpenSQLite(ctx context.Context, path string, opts ...Option) (*SQLiteStore, error) {
	o := newOptions(opts)
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: sqlite: %w", ErrOpen, err)
	}
	// SQLite serialises writers; one connection avoids SQLITE_BUSY on import.
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(ctx, o.queryTimeout)
	defer cancel()
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: sqlite schema: %w", ErrOpen, err)
	}
	return &SQLiteStore{db: db, opts: o}, nil
}

func (s *SQLiteStore) timeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.opts.queryTimeout)
}

// Import implements Importer. The dataset is written in one transaction.
func (s *SQLiteStore) Import(ctx context.Context, d *dataset.Dataset) (err error) {
	defer observe(DriverSQLite, "import", time.Now(), &err)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin import: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, c := range d.CompanyList() {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO companies (id, name, address, industry, score, size, years)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET name=excluded.name, address=excluded.address,
				industry=excluded.industry, score=excluded.score, size=excluded.size, years=excluded.years`,
			c.ID, c.Name, c.Address, c.Industry, c.Score, c.Size, c.Years); err != nil {
			return fmt.Errorf("import company %q: %w", c.ID, err)
		}
	}
	for _, dep := range d.DepartmentList() {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO departments (id, company_id, name) VALUES (?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET company_id=excluded.company_id, name=excluded.name`,
			dep.ID, dep.CompanyID, dep.Name); err != nil {
			return fmt.Errorf("import department %q: %w", dep.ID, err)
		}
	}
	for _, op := range d.OpAreaList() {
		kpis, projects, initiatives, encErr := encodeOpAreaLists(op)
		if encErr != nil {
			err = encErr
			return err
		}
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO op_areas (id, company_id, department_id, name, description, kpis, projects, special_initiatives)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET company_id=excluded.company_id, department_id=excluded.department_id,
				name=excluded.name, description=excluded.description, kpis=excluded.kpis,
				projects=excluded.projects, special_initiatives=excluded.special_initiatives`,
			op.ID, op.CompanyID, op.DepartmentID, op.Name, op.Description,
			string(kpis), string(projects), string(initiatives)); err != nil {
			return fmt.Errorf("import operational area %q: %w", op.ID, err)
		}
	}
	for _, e := range d.Employees {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO employees (id, name, phone, email, role, company_id, department_id, operational_area_id)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET name=excluded.name, phone=excluded.phone, email=excluded.email,
				role=excluded.role, company_id=excluded.company_id, department_id=excluded.department_id,
				operational_area_id=excluded.operational_area_id`,
			e.ID, e.Name, e.Phone, e.Email, e.Role, e.CompanyID, e.DepartmentID, e.OperationalAreaID); err != nil {
			return fmt.Errorf("import employee %q: %w", e.ID, err)
		}
	}
	for _, a := range d.Assessments {
		responses, encErr := marshalJSON(a.Responses)
		if encErr != nil {
			err = encErr
			return err
		}
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO assessments (id, date, employee_id, company_id, department_id, operational_area_id, score, responses)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET date=excluded.date, employee_id=excluded.employee_id,
				company_id=excluded.company_id, department_id=excluded.department_id,
				operational_area_id=excluded.operational_area_id, score=excluded.score, responses=excluded.responses`,
			a.ID, a.Date.UTC().Format(time.RFC3339Nano), a.EmployeeID, a.CompanyID, a.DepartmentID,
			a.OperationalAreaID, a.Score, string(responses)); err != nil {
			return fmt.Errorf("import assessment %q: %w", a.ID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit import: %w", err)
	}
	recordImport(DriverSQLite, d)
	return nil
}

// ListCompanies implements Store.
func (s *SQLiteStore) ListCompanies(ctx context.Context) (out []model.Company, err error) {
	defer observe(DriverSQLite, "list_companies", time.Now(), &err)
	ctx, cancel := s.timeout(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, address, industry, score, size, years FROM companies ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out = make([]model.Company, 0)
	for rows.Next() {
		var c model.Company
		if err = rows.Scan(&c.ID, &c.Name, &c.Address, &c.Industry, &c.Score, &c.Size, &c.Years); err != nil {
			return nil, fmt.Errorf("scan company: %w", err)
		}
		out = append(out, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	return out, nil
}

// GetCompany implements Store.
func (s *SQLiteStore) GetCompany(ctx context.Context, companyID string) (c model.Company, err error) {
	defer observe(DriverSQLite, "get_company", time.Now(), &err)
	ctx, cancel := s.timeout(ctx)
	defer cancel()

	err = s.db.QueryRowContext(ctx,
		`SELECT id, name, address, industry, score, size, years FROM companies WHERE id = ?`, companyID).
		Scan(&c.ID, &c.Name, &c.Address, &c.Industry, &c.Score, &c.Size, &c.Years)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Company{}, notFound("company", companyID)
	}
	if err != nil {
		return model.Company{}, fmt.Errorf("get company: %w", err)
	}
	return c, nil
}

// ListDepartments implements Store.
func (s *SQLiteStore) ListDepartments(ctx context.Context, companyID string) (out []model.Department, err error) {
	defer observe(DriverSQLite, "list_departments", time.Now(), &err)
	ctx, cancel := s.timeout(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, company_id, name FROM departments WHERE company_id = ? ORDER BY rowid`, companyID)
	if err != nil {
		return nil, fmt.Errorf("list departments: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out = make([]model.Department, 0)
	for rows.Next() {
		var d model.Department
		if err = rows.Scan(&d.ID, &d.CompanyID, &d.Name); err != nil {
			return nil, fmt.Errorf("scan department: %w", err)
		}
		out = append(out, d)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("list departments: %w", err)
	}
	return out, nil
}

// GetDepartment implements Store.
func (s *SQLiteStore) GetDepartment(ctx context.Context, companyID, departmentID string) (d model.Department, err error) {
	defer observe(DriverSQLite, "get_department", time.Now(), &err)
	ctx, cancel := s.timeout(ctx)
	defer cancel()

	err = s.db.QueryRowContext(ctx,
		`SELECT id, company_id, name FROM departments WHERE id = ? AND company_id = ?`, departmentID, companyID).
		Scan(&d.ID, &d.CompanyID, &d.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Department{}, notFound("department", departmentID)
	}
	if err != nil {
		return model.Department{}, fmt.Errorf("get department: %w", err)
	}
	return d, nil
}

const sqliteOpAreaColumns = `id, company_id, department_id, name, description, kpis, projects, special_initiatives`

func scanOpArea(scan func(dest ...any) error) (model.OpArea, error) {
	var (
		o                           model.OpArea
		kpis, projects, initiatives []byte
	)
	if err := scan(&o.ID, &o.CompanyID, &o.DepartmentID, &o.Name, &o.Description,
		&kpis, &projects, &initiatives); err != nil {
		return model.OpArea{}, err
	}
	if err := decodeOpAreaLists(&o, kpis, projects, initiatives); err != nil {
		return model.OpArea{}, err
	}
	return o, nil
}

// ListOpAreas implements Store.
func (s *SQLiteStore) ListOpAreas(ctx context.Context, companyID, departmentID string) (out []model.OpArea, err error) {
	defer observe(DriverSQLite, "list_op_areas", time.Now(), &err)
	ctx, cancel := s.timeout(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `SELECT `+sqliteOpAreaColumns+` FROM op_areas
		WHERE company_id = ? AND department_id = ? ORDER BY rowid`, companyID, departmentID)
	if err != nil {
		return nil, fmt.Errorf("list operational areas: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out = make([]model.OpArea, 0)
	for rows.Next() {
		o, scanErr := scanOpArea(rows.Scan)
		if scanErr != nil {
			err = fmt.Errorf("scan operational area: %w", scanErr)
			return nil, err
		}
		out = append(out, o)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("list operational areas: %w", err)
	}
	return out, nil
}

// GetOpArea implements Store.
func (s *SQLiteStore) GetOpArea(ctx context.Context, companyID, departmentID, opAreaID string) (o model.OpArea, err error) {
	defer observe(DriverSQLite, "get_op_area", time.Now(), &err)
	ctx, cancel := s.timeout(ctx)
	defer cancel()

	row := s.db.QueryRowContext(ctx, `SELECT `+sqliteOpAreaColumns+` FROM op_areas
		WHERE id = ? AND company_id = ? AND department_id = ?`, opAreaID, companyID, departmentID)
	o, err = scanOpArea(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return model.OpArea{}, notFound("operational area", opAreaID)
	}
	if err != nil {
		return model.OpArea{}, fmt.Errorf("get operational area: %w", err)
	}
	return o, nil
}

// ListAssessments implements Store.
func (s *SQLiteStore) ListAssessments(ctx context.Context, opAreaID string) (out []model.Assessment, err error) {
	defer observe(DriverSQLite, "list_assessments", time.Now(), &err)
	ctx, cancel := s.timeout(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, date, employee_id, company_id, department_id, operational_area_id, score, responses
		FROM assessments WHERE operational_area_id = ? ORDER BY rowid`, opAreaID)
	if err != nil {
		return nil, fmt.Errorf("list assessments: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out = make([]model.Assessment, 0)
	for rows.Next() {
		var (
			a         model.Assessment
			date      string
			responses []byte
		)
		if err = rows.Scan(&a.ID, &date, &a.EmployeeID, &a.CompanyID, &a.DepartmentID,
			&a.OperationalAreaID, &a.Score, &responses); err != nil {
			return nil, fmt.Errorf("scan assessment: %w", err)
		}
		if a.Date, err = time.Parse(time.RFC3339Nano, date); err != nil {
			return nil, fmt.Errorf("assessment %q date: %w", a.ID, err)
		}
		if err = unmarshalJSON(responses, &a.Responses); err != nil {
			return nil, fmt.Errorf("assessment %q responses: %w", a.ID, err)
		}
		out = append(out, a)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("list assessments: %w", err)
	}
	return out, nil
}

// CountAssessments implements Store.
func (s *SQLiteStore) CountAssessments(ctx context.Context, opAreaID string) (n int, err error) {
	defer observe(DriverSQLite, "count_assessments", time.Now(), &err)
	ctx, cancel := s.timeout(ctx)
	defer cancel()

	if err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM assessments WHERE operational_area_id = ?`, opAreaID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count assessments: %w", err)
	}
	return n, nil
}

// GetEmployee implements Store.
func (s *SQLiteStore) GetEmployee(ctx context.Context, employeeID string) (e model.Employee, err error) {
	defer observe(DriverSQLite, "get_employee", time.Now(), &err)
	ctx, cancel := s.timeout(ctx)
	defer cancel()

	err = s.db.QueryRowContext(ctx, `
		SELECT id, name, phone, email, role, company_id, department_id, operational_area_id
		FROM employees WHERE id = ?`, employeeID).
		Scan(&e.ID, &e.Name, &e.Phone, &e.Email, &e.Role, &e.CompanyID, &e.DepartmentID, &e.OperationalAreaID)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Employee{}, notFound("employee", employeeID)
	}
	if err != nil {
		return model.Employee{}, fmt.Errorf("get employee: %w", err)
	}
	return e, nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func encodeOpAreaLists(o model.OpArea) (kpis, projects, initiatives []byte, err error) {
	if kpis, err = marshalJSON(o.KPIs); err != nil {
		return nil, nil, nil, err
	}
	if projects, err = marshalJSON(o.Projects); err != nil {
		return nil, nil, nil, err
	}
	if initiatives, err = marshalJSON(o.SpecialInitiatives); err != nil {
		return nil, nil, nil, err
	}
	return kpis, projects, initiatives, nil
}

func decodeOpAreaLists(o *model.OpArea, kpis, projects, initiatives []byte) error {
	if err := unmarshalJSON(kpis, &o.KPIs); err != nil {
		return err
	}
	if err := unmarshalJSON(projects, &o.Projects); err != nil {
		return err
	}
	return unmarshalJSON(initiatives, &o.SpecialInitiatives)
}
