package dataset

import (
	"encoding/binary"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/okian/assay/internal/domain/model"
	"github.com/okian/assay/internal/domain/scoring"
)

// Default generator sizes.
const (
	defaultCompanies   = 2
	defaultDepartments = 3
	defaultOpAreas     = 2
	defaultEmployees   = 5
	defaultAssessments = 8
	assessmentSpread   = 180 * 24 * time.Hour
)

// Question is one entry of the synthetic questionnaire.
type Question struct {
	Text    string
	Type    model.QuestionType
	Options []string
}

// Questionnaire is the fixed question set used by Generate.
var Questionnaire = []Question{
	{
		Text:    "How clearly are the goals of your operational area communicated?",
		Type:    model.QuestionSingle,
		Options: []string{"Very clearly", "Mostly clearly", "Somewhat unclear", "Not at all"},
	},
	{
		Text:    "How often do you receive feedback on your work?",
		Type:    model.QuestionSingle,
		Options: []string{"Weekly", "Monthly", "Quarterly", "Rarely"},
	},
	{
		Text:    "Which tools do you use to track KPIs?",
		Type:    model.QuestionMulti,
		Options: []string{"Spreadsheets", "BI dashboards", "Project tracker", "Paper reports", "None"},
	},
	{
		Text:    "How confident are you in meeting this quarter's targets?",
		Type:    model.QuestionSingle,
		Options: []string{"Very confident", "Confident", "Unsure", "Not confident"},
	},
	{
		Text:    "Which areas need more investment?",
		Type:    model.QuestionMulti,
		Options: []string{"Training", "Staffing", "Tooling", "Process documentation"},
	},
}

var (
	industries = []string{"Manufacturing", "Logistics", "Retail", "Healthcare", "Finance"}
	deptNames  = []string{"Operations", "Finance", "Sales", "Human Resources", "Engineering", "Customer Support"}
	opNames    = []string{"Procurement", "Quality Control", "Payroll", "Field Sales", "Onboarding", "Maintenance", "Dispatch"}
	roles      = []string{"Analyst", "Coordinator", "Supervisor", "Manager", "Specialist"}
	firstNames = []string{"Alex", "Sam", "Jordan", "Taylor", "Morgan", "Casey", "Riley", "Jamie"}
	lastNames  = []string{"Reyes", "Okafor", "Novak", "Tanaka", "Silva", "Larsen", "Haddad", "Kowalski"}
)

// GenerateOptions sizes a synthetic dataset. Per-parent counts apply to every
// parent: Departments per company, OpAreas per department, Employees and
// Assessments per operational area. Zero or negative counts fall back to
// defaults, except Assessments where zero is kept and only negative is replaced.
type GenerateOptions struct {
	Companies   int
	Departments int
	OpAreas     int
	Employees   int
	Assessments int
	Seed        uint64
	// Now anchors assessment dates; they fall in the preceding six months.
	Now time.Time
	// Scorer computes response scores; nil uses the default ladder.
	Scorer *scoring.Scorer
}

func (o *GenerateOptions) defaults() {
	if o.Companies <= 0 {
		o.Companies = defaultCompanies
	}
	if o.Departments <= 0 {
		o.Departments = defaultDepartments
	}
	if o.OpAreas <= 0 {
		o.OpAreas = defaultOpAreas
	}
	if o.Employees <= 0 {
		o.Employees = defaultEmployees
	}
	if o.Assessments < 0 {
		o.Assessments = defaultAssessments
	}
	if o.Now.IsZero() {
		o.Now = time.Now().UTC()
	}
	if o.Scorer == nil {
		o.Scorer = scoring.NewScorer()
	}
}

type generator struct {
	src *rand.ChaCha8
	rng *rand.Rand
	opt GenerateOptions
}

// Generate builds a synthetic, valid dataset. The same options and seed always
// yield the same dataset.
func Generate(opts GenerateOptions) (*Dataset, error) {
	opts.defaults()

	var seed [32]byte
	binary.LittleEndian.PutUint64(seed[:8], opts.Seed)
	src := rand.NewChaCha8(seed)
	g := &generator{src: src, rng: rand.New(src), opt: opts}

	d := &Dataset{}
	for ci := 0; ci < opts.Companies; ci++ {
		c, err := g.company(ci)
		if err != nil {
			return nil, err
		}
		for di := 0; di < opts.Departments; di++ {
			dep, err := g.department(di)
			if err != nil {
				return nil, err
			}
			for oi := 0; oi < opts.OpAreas; oi++ {
				op, err := g.opArea(oi)
				if err != nil {
					return nil, err
				}
				staff, err := g.employees(c.ID, dep.ID, op.ID)
				if err != nil {
					return nil, err
				}
				d.Employees = append(d.Employees, staff...)

				for ai := 0; ai < opts.Assessments; ai++ {
					a, err := g.assessment(c.ID, dep.ID, op.ID, staff[ai%len(staff)].ID)
					if err != nil {
						return nil, err
					}
					d.Assessments = append(d.Assessments, a)
				}
				dep.OperationalAreas = append(dep.OperationalAreas, op)
			}
			c.Departments = append(c.Departments, dep)
		}
		d.Companies = append(d.Companies, c)
	}
	return d, nil
}

func (g *generator) id() (string, error) {
	u, err := uuid.NewRandomFromReader(g.src)
	if err != nil {
		return "", fmt.Errorf("generate id: %w", err)
	}
	return u.String(), nil
}

func pick[T any](rng *rand.Rand, xs []T) T {
	return xs[rng.IntN(len(xs))]
}

func (g *generator) company(i int) (CompanyEntry, error) {
	id, err := g.id()
	if err != nil {
		return CompanyEntry{}, err
	}
	return CompanyEntry{Company: model.Company{
		ID:       id,
		Name:     fmt.Sprintf("%s %s Group", pick(g.rng, lastNames), pick(g.rng, industries)),
		Address:  fmt.Sprintf("%d Market Street", 10+i*7+g.rng.IntN(90)),
		Industry: pick(g.rng, industries),
		Score:    fmt.Sprintf("%d", 50+g.rng.IntN(50)),
		Size:     fmt.Sprintf("%d", 20+g.rng.IntN(2000)),
		Years:    fmt.Sprintf("%d", 1+g.rng.IntN(60)),
	}}, nil
}

func (g *generator) department(i int) (DepartmentEntry, error) {
	id, err := g.id()
	if err != nil {
		return DepartmentEntry{}, err
	}
	return DepartmentEntry{Department: model.Department{
		ID:   id,
		Name: deptNames[i%len(deptNames)],
	}}, nil
}

func (g *generator) opArea(i int) (model.OpArea, error) {
	id, err := g.id()
	if err != nil {
		return model.OpArea{}, err
	}
	name := opNames[(i+g.rng.IntN(len(opNames)))%len(opNames)]
	return model.OpArea{
		ID:                 id,
		Name:               name,
		Description:        "Day-to-day " + name + " activities",
		KPIs:               []string{"Cycle time", "Error rate"},
		Projects:           []string{name + " process review"},
		SpecialInitiatives: []string{"Cross-training"},
	}, nil
}

func (g *generator) employees(companyID, departmentID, opAreaID string) ([]model.Employee, error) {
	out := make([]model.Employee, 0, g.opt.Employees)
	for i := 0; i < g.opt.Employees; i++ {
		id, err := g.id()
		if err != nil {
			return nil, err
		}
		first, last := pick(g.rng, firstNames), pick(g.rng, lastNames)
		out = append(out, model.Employee{
			ID:                id,
			Name:              first + " " + last,
			Phone:             fmt.Sprintf("+1-555-%04d", g.rng.IntN(10000)),
			Email:             fmt.Sprintf("%s.%s.%d@example.com", first, last, g.rng.IntN(1000)),
			Role:              pick(g.rng, roles),
			CompanyID:         companyID,
			DepartmentID:      departmentID,
			OperationalAreaID: opAreaID,
		})
	}
	return out, nil
}

func (g *generator) assessment(companyID, departmentID, opAreaID, employeeID string) (model.Assessment, error) {
	id, err := g.id()
	if err != nil {
		return model.Assessment{}, err
	}
	a := model.Assessment{
		ID:                id,
		Date:              g.opt.Now.Add(-time.Duration(g.rng.Int64N(int64(assessmentSpread)))).Truncate(time.Minute),
		EmployeeID:        employeeID,
		CompanyID:         companyID,
		DepartmentID:      departmentID,
		OperationalAreaID: opAreaID,
		Responses:         make([]model.Response, 0, len(Questionnaire)),
	}
	for _, q := range Questionnaire {
		r := model.Response{
			Question: q.Text,
			Answer:   g.answer(q),
			Options:  append([]string(nil), q.Options...),
			Type:     q.Type,
		}
		r.Score = g.opt.Scorer.ResponseScore(r)
		a.Score += r.Score
		a.Responses = append(a.Responses, r)
	}
	return a, nil
}

// answer picks one option for single-select questions and a non-empty,
// ascending subset for multi-select ones.
func (g *generator) answer(q Question) []int {
	if q.Type != model.QuestionMulti {
		return []int{g.rng.IntN(len(q.Options))}
	}
	var picked []int
	for i := range q.Options {
		if g.rng.IntN(2) == 0 {
			picked = append(picked, i)
		}
	}
	if len(picked) == 0 {
		picked = []int{g.rng.IntN(len(q.Options))}
	}
	return picked
}
