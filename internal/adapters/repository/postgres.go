package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/okian/assay/internal/dataset"
	"github.com/okian/assay/internal/domain/model"
)

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS companies (
		seq      BIGSERIAL,
		id       TEXT PRIMARY KEY,
		name     TEXT NOT NULL,
		address  TEXT NOT NULL DEFAULT '',
		industry TEXT NOT NULL DEFAULT '',
		score    TEXT NOT NULL DEFAULT '',
		size     TEXT NOT NULL DEFAULT '',
		years    TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS departments (
		seq        BIGSERIAL,
		id         TEXT PRIMARY KEY,
		company_id TEXT NOT NULL,
		name       TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS op_areas (
		seq                 BIGSERIAL,
		id                  TEXT PRIMARY KEY,
		company_id          TEXT NOT NULL,
		department_id       TEXT NOT NULL,
		name                TEXT NOT NULL,
		description         TEXT NOT NULL DEFAULT '',
		kpis                JSONB NOT NULL DEFAULT 'null',
		projects            JSONB NOT NULL DEFAULT 'null',
		special_initiatives JSONB NOT NULL DEFAULT 'null'
	)`,
	`CREATE TABLE IF NOT EXISTS employees (
		id                  TEXT PRIMARY KEY,
		name                TEXT NOT NULL DEFAULT '',
		phone               TEXT NOT NULL DEFAULT '',
		email               TEXT NOT NULL DEFAULT '',
		role                TEXT NOT NULL DEFAULT '',
		company_id          TEXT NOT NULL DEFAULT '',
		department_id       TEXT NOT NULL DEFAULT '',
		operational_area_id TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS assessments (
		seq                 BIGSERIAL,
		id                  TEXT PRIMARY KEY,
		date                TIMESTAMPTZ NOT NULL,
		employee_id         TEXT NOT NULL DEFAULT '',
		company_id          TEXT NOT NULL,
		department_id       TEXT NOT NULL,
		operational_area_id TEXT NOT NULL,
		score               DOUBLE PRECISION NOT NULL DEFAULT 0,
		responses           JSONB NOT NULL DEFAULT 'null'
	)`,
	`CREATE INDEX IF NOT EXISTS departments_company ON departments(company_id)`,
	`CREATE INDEX IF NOT EXISTS op_areas_parent ON op_areas(company_id, department_id)`,
	`CREATE INDEX IF NOT EXISTS assessments_op_area ON assessments(operational_area_id)`,
}

// PostgresStore is a Store backed by a pgx connection pool.
// Array and response fields are kept as jsonb.
type PostgresStore struct {
	pool *pgxpool.Pool
	opts options
}

// OpenPostgres connects to dsn, checks the connection and applies the schema.
func OpenPostgres(ctx context.Context, dsn string, opts ...Option) (*PostgresStore, error) {
	o := newOptions(opts)

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: postgres config: %w", ErrOpen, err)
	}
	cfg.MaxConns = int32(o.maxConns) //nolint:gosec // bounded by config validation

	ctx, cancel := context.WithTimeout(ctx, o.queryTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: postgres connect: %w", ErrOpen, err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: postgres ping: %w", ErrOpen, err)
	}
	for _, stmt := range postgresSchema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			pool.Close()
			return nil, fmt.Errorf("%w: postgres schema: %w", ErrOpen, err)
		}
	}
	return &PostgresStore{pool: pool, opts: o}, nil
}

func (s *PostgresStore) timeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.opts.queryTimeout)
}

// Import implements Importer. Rows are upserted in a single batch inside one transaction.
func (s *PostgresStore) Import(ctx context.Context, d *dataset.Dataset) (err error) {
	defer observe(DriverPostgres, "import", time.Now(), &err)

	batch := &pgx.Batch{}
	for _, c := range d.CompanyList() {
		batch.Queue(`
			INSERT INTO companies (id, name, address, industry, score, size, years)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (id) DO UPDATE SET name=EXCLUDED.name, address=EXCLUDED.address,
				industry=EXCLUDED.industry, score=EXCLUDED.score, size=EXCLUDED.size, years=EXCLUDED.years`,
			c.ID, c.Name, c.Address, c.Industry, c.Score, c.Size, c.Years)
	}
	for _, dep := range d.DepartmentList() {
		batch.Queue(`
			INSERT INTO departments (id, company_id, name) VALUES ($1, $2, $3)
			ON CONFLICT (id) DO UPDATE SET company_id=EXCLUDED.company_id, name=EXCLUDED.name`,
			dep.ID, dep.CompanyID, dep.Name)
	}
	for _, op := range d.OpAreaList() {
		kpis, projects, initiatives, encErr := encodeOpAreaLists(op)
		if encErr != nil {
			return encErr
		}
		batch.Queue(`
			INSERT INTO op_areas (id, company_id, department_id, name, description, kpis, projects, special_initiatives)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (id) DO UPDATE SET company_id=EXCLUDED.company_id, department_id=EXCLUDED.department_id,
				name=EXCLUDED.name, description=EXCLUDED.description, kpis=EXCLUDED.kpis,
				projects=EXCLUDED.projects, special_initiatives=EXCLUDED.special_initiatives`,
			op.ID, op.CompanyID, op.DepartmentID, op.Name, op.Description, kpis, projects, initiatives)
	}
	for _, e := range d.Employees {
		batch.Queue(`
			INSERT INTO employees (id, name, phone, email, role, company_id, department_id, operational_area_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (id) DO UPDATE SET name=EXCLUDED.name, phone=EXCLUDED.phone, email=EXCLUDED.email,
				role=EXCLUDED.role, company_id=EXCLUDED.company_id, department_id=EXCLUDED.department_id,
				operational_area_id=EXCLUDED.operational_area_id`,
			e.ID, e.Name, e.Phone, e.Email, e.Role, e.CompanyID, e.DepartmentID, e.OperationalAreaID)
	}
	for _, a := range d.Assessments {
		responses, encErr := marshalJSON(a.Responses)
		if encErr != nil {
			return encErr
		}
		batch.Queue(`
			INSERT INTO assessments (id, date, employee_id, company_id, department_id, operational_area_id, score, responses)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (id) DO UPDATE SET date=EXCLUDED.date, employee_id=EXCLUDED.employee_id,
				company_id=EXCLUDED.company_id, department_id=EXCLUDED.department_id,
				operational_area_id=EXCLUDED.operational_area_id, score=EXCLUDED.score, responses=EXCLUDED.responses`,
			a.ID, a.Date, a.EmployeeID, a.CompanyID, a.DepartmentID, a.OperationalAreaID, a.Score, responses)
	}

	err = pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if batch.Len() == 0 {
			return nil
		}
		return tx.SendBatch(ctx, batch).Close()
	})
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}
	recordImport(DriverPostgres, d)
	return nil
}

// ListCompanies implements Store.
func (s *PostgresStore) ListCompanies(ctx context.Context) (out []model.Company, err error) {
	defer observe(DriverPostgres, "list_companies", time.Now(), &err)
	ctx, cancel := s.timeout(ctx)
	defer cancel()

	rows, err := s.pool.Query(ctx,
		`SELECT id, name, address, industry, score, size, years FROM companies ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	out, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Company, error) {
		var c model.Company
		err := row.Scan(&c.ID, &c.Name, &c.Address, &c.Industry, &c.Score, &c.Size, &c.Years)
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	return out, nil
}

// GetCompany implements Store.
func (s *PostgresStore) GetCompany(ctx context.Context, companyID string) (c model.Company, err error) {
	defer observe(DriverPostgres, "get_company", time.Now(), &err)
	ctx, cancel := s.timeout(ctx)
	defer cancel()

	err = s.pool.QueryRow(ctx,
		`SELECT id, name, address, industry, score, size, years FROM companies WHERE id = $1`, companyID).
		Scan(&c.ID, &c.Name, &c.Address, &c.Industry, &c.Score, &c.Size, &c.Years)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Company{}, notFound("company", companyID)
	}
	if err != nil {
		return model.Company{}, fmt.Errorf("get company: %w", err)
	}
	return c, nil
}

// ListDepartments implements Store.
func (s *PostgresStore) ListDepartments(ctx context.Context, companyID string) (out []model.Department, err error) {
	defer observe(DriverPostgres, "list_departments", time.Now(), &err)
	ctx, cancel := s.timeout(ctx)
	defer cancel()

	rows, err := s.pool.Query(ctx,
		`SELECT id, company_id, name FROM departments WHERE company_id = $1 ORDER BY seq`, companyID)
	if err != nil {
		return nil, fmt.Errorf("list departments: %w", err)
	}
	out, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Department, error) {
		var d model.Department
		err := row.Scan(&d.ID, &d.CompanyID, &d.Name)
		return d, err
	})
	if err != nil {
		return nil, fmt.Errorf("list departments: %w", err)
	}
	return out, nil
}

// GetDepartment implements Store.
func (s *PostgresStore) GetDepartment(ctx context.Context, companyID, departmentID string) (d model.Department, err error) {
	defer observe(DriverPostgres, "get_department", time.Now(), &err)
	ctx, cancel := s.timeout(ctx)
	defer cancel()

	err = s.pool.QueryRow(ctx,
		`SELECT id, company_id, name FROM departments WHERE id = $1 AND company_id = $2`, departmentID, companyID).
		Scan(&d.ID, &d.CompanyID, &d.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Department{}, notFound("department", departmentID)
	}
	if err != nil {
		return model.Department{}, fmt.Errorf("get department: %w", err)
	}
	return d, nil
}

const postgresOpAreaColumns = `id, company_id, department_id, name, description, kpis, projects, special_initiatives`

// ListOpAreas implements Store.
func (s *PostgresStore) ListOpAreas(ctx context.Context, companyID, departmentID string) (out []model.OpArea, err error) {
	defer observe(DriverPostgres, "list_op_areas", time.Now(), &err)
	ctx, cancel := s.timeout(ctx)
	defer cancel()

	rows, err := s.pool.Query(ctx, `SELECT `+postgresOpAreaColumns+` FROM op_areas
		WHERE company_id = $1 AND department_id = $2 ORDER BY seq`, companyID, departmentID)
	if err != nil {
		return nil, fmt.Errorf("list operational areas: %w", err)
	}
	out, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.OpArea, error) {
		return scanOpArea(row.Scan)
	})
	if err != nil {
		return nil, fmt.Errorf("list operational areas: %w", err)
	}
	return out, nil
}

// GetOpArea implements Store.
func (s *PostgresStore) GetOpArea(ctx context.Context, companyID, departmentID, opAreaID string) (o model.OpArea, err error) {
	defer observe(DriverPostgres, "get_op_area", time.Now(), &err)
	ctx, cancel := s.timeout(ctx)
	defer cancel()

	row := s.pool.QueryRow(ctx, `SELECT `+postgresOpAreaColumns+` FROM op_areas
		WHERE id = $1 AND company_id = $2 AND department_id = $3`, opAreaID, companyID, departmentID)
	o, err = scanOpArea(row.Scan)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.OpArea{}, notFound("operational area", opAreaID)
	}
	if err != nil {
		return model.OpArea{}, fmt.Errorf("get operational area: %w", err)
	}
	return o, nil
}

// ListAssessments implements Store.
func (s *PostgresStore) ListAssessments(ctx context.Context, opAreaID string) (out []model.Assessment, err error) {
	defer observe(DriverPostgres, "list_assessments", time.Now(), &err)
	ctx, cancel := s.timeout(ctx)
	defer cancel()

	rows, err := s.pool.Query(ctx, `
		SELECT id, date, employee_id, company_id, department_id, operational_area_id, score, responses
		FROM assessments WHERE operational_area_id = $1 ORDER BY seq`, opAreaID)
	if err != nil {
		return nil, fmt.Errorf("list assessments: %w", err)
	}
	out, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Assessment, error) {
		var (
			a         model.Assessment
			responses []byte
		)
		if err := row.Scan(&a.ID, &a.Date, &a.EmployeeID, &a.CompanyID, &a.DepartmentID,
			&a.OperationalAreaID, &a.Score, &responses); err != nil {
			return model.Assessment{}, err
		}
		a.Date = a.Date.UTC()
		if err := unmarshalJSON(responses, &a.Responses); err != nil {
			return model.Assessment{}, fmt.Errorf("assessment %q responses: %w", a.ID, err)
		}
		return a, nil
	})
	if err != nil {
		return nil, fmt.Errorf("list assessments: %w", err)
	}
	return out, nil
}

// CountAssessments implements Store.
func (s *PostgresStore) CountAssessments(ctx context.Context, opAreaID string) (n int, err error) {
	defer observe(DriverPostgres, "count_assessments", time.Now(), &err)
	ctx, cancel := s.timeout(ctx)
	defer cancel()

	if err = s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM assessments WHERE operational_area_id = $1`, opAreaID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count assessments: %w", err)
	}
	return n, nil
}

// GetEmployee implements Store.
func (s *PostgresStore) GetEmployee(ctx context.Context, employeeID string) (e model.Employee, err error) {
	defer observe(DriverPostgres, "get_employee", time.Now(), &err)
	ctx, cancel := s.timeout(ctx)
	defer cancel()

	err = s.pool.QueryRow(ctx, `
		SELECT id, name, phone, email, role, company_id, department_id, operational_area_id
		FROM employees WHERE id = $1`, employeeID).
		Scan(&e.ID, &e.Name, &e.Phone, &e.Email, &e.Role, &e.CompanyID, &e.DepartmentID, &e.OperationalAreaID)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Employee{}, notFound("employee", employeeID)
	}
	if err != nil {
		return model.Employee{}, fmt.Errorf("get employee: %w", err)
	}
	return e, nil
}

// Close implements Store.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
