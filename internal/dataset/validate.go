package dataset

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"
)

// Validate checks struct tags, id uniqueness and references between records.
// All problems are joined into one error wrapping ErrInvalidDataset.
func (d *Dataset) Validate() error {
	var errs []error

	if err := validator.New().Struct(d); err != nil {
		errs = append(errs, err)
	}

	companies := map[string]bool{}
	departments := map[string]string{}
	opAreas := map[string][2]string{}
	for _, c := range d.Companies {
		if companies[c.ID] {
			errs = append(errs, fmt.Errorf("duplicate company id %q", c.ID))
		}
		companies[c.ID] = true
		for _, dep := range c.Departments {
			if _, ok := departments[dep.ID]; ok {
				errs = append(errs, fmt.Errorf("duplicate department id %q", dep.ID))
			}
			departments[dep.ID] = c.ID
			for _, op := range dep.OperationalAreas {
				if _, ok := opAreas[op.ID]; ok {
					errs = append(errs, fmt.Errorf("duplicate operational area id %q", op.ID))
				}
				opAreas[op.ID] = [2]string{c.ID, dep.ID}
			}
		}
	}

	employees := map[string]bool{}
	for _, e := range d.Employees {
		if employees[e.ID] {
			errs = append(errs, fmt.Errorf("duplicate employee id %q", e.ID))
		}
		employees[e.ID] = true
		if e.OperationalAreaID != "" {
			if _, ok := opAreas[e.OperationalAreaID]; !ok {
				errs = append(errs, fmt.Errorf("employee %q: unknown operational area %q", e.ID, e.OperationalAreaID))
			}
		}
	}

	seen := map[string]bool{}
	for _, a := range d.Assessments {
		if seen[a.ID] {
			errs = append(errs, fmt.Errorf("duplicate assessment id %q", a.ID))
		}
		seen[a.ID] = true

		parents, ok := opAreas[a.OperationalAreaID]
		switch {
		case !ok:
			errs = append(errs, fmt.Errorf("assessment %q: unknown operational area %q", a.ID, a.OperationalAreaID))
		case parents[0] != a.CompanyID || parents[1] != a.DepartmentID:
			errs = append(errs, fmt.Errorf("assessment %q: operational area %q is not under %s/%s",
				a.ID, a.OperationalAreaID, a.CompanyID, a.DepartmentID))
		}
		if a.EmployeeID != "" && !employees[a.EmployeeID] {
			errs = append(errs, fmt.Errorf("assessment %q: unknown employee %q", a.ID, a.EmployeeID))
		}
		if !finite(a.Score) {
			errs = append(errs, fmt.Errorf("assessment %q: score %v is not finite", a.ID, a.Score))
		}
		for i, r := range a.Responses {
			if !finite(r.Score) {
				errs = append(errs, fmt.Errorf("assessment %q response %d: score %v is not finite", a.ID, i, r.Score))
			}
			if !r.Type.Valid() {
				errs = append(errs, fmt.Errorf("assessment %q response %d: unknown question type %q", a.ID, i, r.Type))
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidDataset, errors.Join(errs...))
	}
	return nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
