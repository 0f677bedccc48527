package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/okian/assay/internal/adapters/repository"
	"github.com/okian/assay/internal/domain/model"
	"github.com/okian/assay/internal/domain/report"
	"github.com/okian/assay/pkg/logger"
	"github.com/okian/assay/pkg/metrics"
)

// opAreaContext is an operational area with its parents and assessments.
type opAreaContext struct {
	company     model.Company
	department  model.Department
	opArea      model.OpArea
	assessments []model.Assessment
}

// loadOpArea fetches an operational area, its parents and its assessments in
// parallel. Any missing level yields ErrNotFound.
func (s *Service) loadOpArea(ctx context.Context, companyID, departmentID, opAreaID string) (opAreaContext, error) {
	store, err := s.backend()
	if err != nil {
		return opAreaContext{}, err
	}

	var out opAreaContext
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.lookupConcurrency)
	g.Go(func() (err error) {
		out.company, err = store.GetCompany(gctx, companyID)
		return err
	})
	g.Go(func() (err error) {
		out.department, err = store.GetDepartment(gctx, companyID, departmentID)
		return err
	})
	g.Go(func() (err error) {
		out.opArea, err = store.GetOpArea(gctx, companyID, departmentID, opAreaID)
		return err
	})
	g.Go(func() (err error) {
		out.assessments, err = store.ListAssessments(gctx, opAreaID)
		return err
	})
	if err := g.Wait(); err != nil {
		return opAreaContext{}, err
	}
	return out, nil
}

// employees resolves the respondents of assessments. Missing employees are
// logged and left out of the map; other store errors are returned.
func (s *Service) employees(ctx context.Context, assessments []model.Assessment) (map[string]model.Employee, error) {
	store, err := s.backend()
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(assessments))
	for _, a := range assessments {
		if a.EmployeeID != "" && !slices.Contains(ids, a.EmployeeID) {
			ids = append(ids, a.EmployeeID)
		}
	}

	found := make([]*model.Employee, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.lookupConcurrency)
	for i, id := range ids {
		g.Go(func() error {
			e, err := store.GetEmployee(gctx, id)
			if errors.Is(err, repository.ErrNotFound) {
				s.logger.Warn(gctx, "assessment employee not found", logger.String("employeeID", id))
				return nil
			}
			if err != nil {
				return err
			}
			found[i] = &e
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string]model.Employee, len(ids))
	for _, e := range found {
		if e != nil {
			out[e.ID] = *e
		}
	}
	return out, nil
}

// OpAreaDetails returns an operational area with its assessments, newest first.
func (s *Service) OpAreaDetails(ctx context.Context, companyID, departmentID, opAreaID string) (OpAreaDetails, error) {
	oc, err := s.loadOpArea(ctx, companyID, departmentID, opAreaID)
	if err != nil {
		return OpAreaDetails{}, err
	}
	staff, err := s.employees(ctx, oc.assessments)
	if err != nil {
		return OpAreaDetails{}, err
	}

	sorted := slices.Clone(oc.assessments)
	slices.SortStableFunc(sorted, func(a, b model.Assessment) int {
		return b.Date.Compare(a.Date)
	})

	rows := make([]AssessmentRow, len(sorted))
	for i, a := range sorted {
		rows[i] = AssessmentRow{
			ID:        a.ID,
			Label:     report.RespondentLabel(i),
			Date:      a.Date,
			DateLabel: report.FormatDate(a.Date),
			Role:      staff[a.EmployeeID].Role,
			Score:     a.Score,
		}
	}

	return OpAreaDetails{
		CompanyName:    report.Capitalize(oc.company.Name),
		DepartmentName: report.Capitalize(oc.department.Name),
		OpArea:         oc.opArea,
		Assessments:    rows,
	}, nil
}

// AggregateReport aggregates every assessment of an operational area into
// per-question statistics.
func (s *Service) AggregateReport(ctx context.Context, companyID, departmentID, opAreaID string) (AggregateView, error) {
	ctx, span := s.tracer.Start(ctx, "AggregateReport")
	defer span.End()
	span.SetAttributes(
		attribute.String("assay.company_id", companyID),
		attribute.String("assay.department_id", departmentID),
		attribute.String("assay.op_area_id", opAreaID),
	)

	oc, err := s.loadOpArea(ctx, companyID, departmentID, opAreaID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load operational area")
		return AggregateView{}, err
	}

	start := time.Now()
	rep := report.BuildAggregate(oc.assessments, s.scorer)
	took := time.Since(start)

	metrics.RecordAggregation(rep.TotalAssessments, len(rep.Questions), float64(took.Microseconds())/1000)
	s.reportsBuilt.Add(1)
	span.SetAttributes(
		attribute.Int("assay.assessments", rep.TotalAssessments),
		attribute.Int("assay.questions", len(rep.Questions)),
	)
	s.logger.Debug(ctx, "aggregate report built",
		logger.String("opAreaID", opAreaID),
		logger.Int("assessments", rep.TotalAssessments),
		logger.Int("questions", len(rep.Questions)),
		logger.Duration("took", took),
	)

	return AggregateView{
		CompanyName:     report.Capitalize(oc.company.Name),
		DepartmentName:  report.Capitalize(oc.department.Name),
		OpAreaName:      report.Capitalize(oc.opArea.Name),
		AggregateReport: rep,
	}, nil
}

// Assessment returns the individual responses view of one assessment. The
// assessment must belong to the given operational area.
func (s *Service) Assessment(ctx context.Context, companyID, departmentID, opAreaID, assessmentID string) (report.AssessmentView, error) {
	ctx, span := s.tracer.Start(ctx, "Assessment")
	defer span.End()
	span.SetAttributes(
		attribute.String("assay.op_area_id", opAreaID),
		attribute.String("assay.assessment_id", assessmentID),
	)

	oc, err := s.loadOpArea(ctx, companyID, departmentID, opAreaID)
	if err != nil {
		span.RecordError(err)
		return report.AssessmentView{}, err
	}

	idx := slices.IndexFunc(oc.assessments, func(a model.Assessment) bool { return a.ID == assessmentID })
	if idx < 0 {
		err := fmt.Errorf("assessment %q: %w", assessmentID, repository.ErrNotFound)
		span.RecordError(err)
		return report.AssessmentView{}, err
	}
	a := oc.assessments[idx]

	var employee *model.Employee
	if a.EmployeeID != "" {
		staff, err := s.employees(ctx, []model.Assessment{a})
		if err != nil {
			return report.AssessmentView{}, err
		}
		if e, ok := staff[a.EmployeeID]; ok {
			employee = &e
		}
	}

	metrics.RecordReportBuilt("assessment")
	s.reportsBuilt.Add(1)
	return report.BuildAssessmentView(a, employee), nil
}
