package service

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/okian/assay/internal/domain/directory"
	"github.com/okian/assay/internal/domain/model"
)

func companyName(c model.Company) string       { return c.Name }
func departmentName(d model.Department) string { return d.Name }
func opAreaName(o model.OpArea) string         { return o.Name }

// suggest returns a hint only when a non-blank search filtered everything out.
func suggest[T any](s *Service, all, matched []T, term string, name directory.NameFunc[T]) string {
	if len(matched) > 0 || len(all) == 0 {
		return ""
	}
	names := make([]string, len(all))
	for i, it := range all {
		names[i] = name(it)
	}
	return directory.Suggest(names, term, s.suggestDistance)
}

// Companies lists companies sorted by name and filtered by search.
func (s *Service) Companies(ctx context.Context, search string) (CompanyListing, error) {
	store, err := s.backend()
	if err != nil {
		return CompanyListing{}, err
	}
	all, err := store.ListCompanies(ctx)
	if err != nil {
		return CompanyListing{}, err
	}
	all = directory.SortByName(all, companyName)
	matched := directory.Filter(all, search, companyName)
	return CompanyListing{
		Companies:  matched,
		Suggestion: suggest(s, all, matched, search, companyName),
	}, nil
}

// Company returns one company.
func (s *Service) Company(ctx context.Context, companyID string) (model.Company, error) {
	store, err := s.backend()
	if err != nil {
		return model.Company{}, err
	}
	return store.GetCompany(ctx, companyID)
}

// Departments lists a company's departments, each with its operational area count.
func (s *Service) Departments(ctx context.Context, companyID, search string) (DepartmentListing, error) {
	store, err := s.backend()
	if err != nil {
		return DepartmentListing{}, err
	}
	company, err := store.GetCompany(ctx, companyID)
	if err != nil {
		return DepartmentListing{}, err
	}
	all, err := store.ListDepartments(ctx, companyID)
	if err != nil {
		return DepartmentListing{}, err
	}
	all = directory.SortByName(all, departmentName)
	matched := directory.Filter(all, search, departmentName)

	rows := make([]DepartmentSummary, len(matched))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.lookupConcurrency)
	for i, d := range matched {
		g.Go(func() error {
			ops, err := store.ListOpAreas(gctx, companyID, d.ID)
			if err != nil {
				return err
			}
			rows[i] = DepartmentSummary{Department: d, OpAreaCount: len(ops)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return DepartmentListing{}, err
	}

	return DepartmentListing{
		Company:     company,
		Departments: rows,
		Suggestion:  suggest(s, all, matched, search, departmentName),
	}, nil
}

// OpAreas lists a department's operational areas, each with its assessment count.
func (s *Service) OpAreas(ctx context.Context, companyID, departmentID, search string) (OpAreaListing, error) {
	store, err := s.backend()
	if err != nil {
		return OpAreaListing{}, err
	}

	var (
		company    model.Company
		department model.Department
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		company, err = store.GetCompany(gctx, companyID)
		return err
	})
	g.Go(func() (err error) {
		department, err = store.GetDepartment(gctx, companyID, departmentID)
		return err
	})
	if err := g.Wait(); err != nil {
		return OpAreaListing{}, err
	}

	all, err := store.ListOpAreas(ctx, companyID, departmentID)
	if err != nil {
		return OpAreaListing{}, err
	}
	all = directory.SortByName(all, opAreaName)
	matched := directory.Filter(all, search, opAreaName)

	rows := make([]OpAreaSummary, len(matched))
	g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(s.lookupConcurrency)
	for i, o := range matched {
		g.Go(func() error {
			n, err := store.CountAssessments(gctx, o.ID)
			if err != nil {
				return err
			}
			rows[i] = OpAreaSummary{OpArea: o, AssessmentCount: n}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return OpAreaListing{}, err
	}

	return OpAreaListing{
		Company:    company,
		Department: department,
		OpAreas:    rows,
		Suggestion: suggest(s, all, matched, search, opAreaName),
	}, nil
}
