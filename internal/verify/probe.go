package verify

import (
	"github.com/okian/assay/internal/dataset"
	"github.com/okian/assay/internal/domain/model"
	"github.com/okian/assay/internal/domain/report"
	"github.com/okian/assay/internal/domain/scoring"
)

// Probe is one operational area to check together with what the server
// should answer for it.
type Probe struct {
	CompanyID    string
	DepartmentID string
	OpAreaID     string
	OpAreaName   string

	Expected      report.AggregateReport
	AssessmentIDs []string
}

// BuildProbes computes the expected aggregate of every operational area in d.
// Assessments keep dataset order, which is the order every store returns.
func BuildProbes(d *dataset.Dataset, scorer *scoring.Scorer) []Probe {
	byOpArea := make(map[string][]model.Assessment)
	for _, a := range d.Assessments {
		byOpArea[a.OperationalAreaID] = append(byOpArea[a.OperationalAreaID], a)
	}

	ops := d.OpAreaList()
	probes := make([]Probe, 0, len(ops))
	for _, op := range ops {
		assessments := byOpArea[op.ID]
		ids := make([]string, len(assessments))
		for i, a := range assessments {
			ids[i] = a.ID
		}
		probes = append(probes, Probe{
			CompanyID:     op.CompanyID,
			DepartmentID:  op.DepartmentID,
			OpAreaID:      op.ID,
			OpAreaName:    op.Name,
			Expected:      report.BuildAggregate(assessments, scorer),
			AssessmentIDs: ids,
		})
	}
	return probes
}

func (p Probe) path() string {
	return "/api/companies/" + p.CompanyID + "/departments/" + p.DepartmentID + "/op-areas/" + p.OpAreaID
}
