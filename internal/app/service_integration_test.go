package service_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/assay/internal/adapters/repository"
	service "github.com/okian/assay/internal/app"
	"github.com/okian/assay/internal/dataset"
)

func TestServiceIntegration(t *testing.T) {
	Convey("Given a generated dataset written to a seed file", t, func() {
		dir := t.TempDir()
		d, err := dataset.Generate(dataset.GenerateOptions{
			Companies:   2,
			Departments: 2,
			OpAreas:     2,
			Employees:   3,
			Assessments: 6,
			Seed:        7,
			Now:         time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC),
		})
		So(err, ShouldBeNil)

		seedPath := filepath.Join(dir, "seed.yaml")
		f, err := os.Create(seedPath)
		So(err, ShouldBeNil)
		So(d.Encode(f), ShouldBeNil)
		So(f.Close(), ShouldBeNil)

		Convey("When a sqlite-backed service starts from it", func() {
			svc := service.New(
				service.WithStoreDriver(repository.DriverSQLite, filepath.Join(dir, "assay.db")),
				service.WithSeedFile(seedPath),
				service.WithLookupConcurrency(2),
			)
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			So(svc.Start(ctx), ShouldBeNil)
			defer svc.Stop()

			Convey("Then the hierarchy should be browsable end-to-end", func() {
				companies, err := svc.Companies(ctx, "")
				So(err, ShouldBeNil)
				So(len(companies.Companies), ShouldEqual, 2)

				c := companies.Companies[0]
				deps, err := svc.Departments(ctx, c.ID, "")
				So(err, ShouldBeNil)
				So(len(deps.Departments), ShouldEqual, 2)
				So(deps.Departments[0].OpAreaCount, ShouldEqual, 2)

				dep := deps.Departments[0]
				ops, err := svc.OpAreas(ctx, c.ID, dep.ID, "")
				So(err, ShouldBeNil)
				So(len(ops.OpAreas), ShouldEqual, 2)
				So(ops.OpAreas[0].AssessmentCount, ShouldEqual, 6)

				op := ops.OpAreas[0]
				details, err := svc.OpAreaDetails(ctx, c.ID, dep.ID, op.ID)
				So(err, ShouldBeNil)
				So(len(details.Assessments), ShouldEqual, 6)
				for i := 1; i < len(details.Assessments); i++ {
					So(details.Assessments[i-1].Date.Before(details.Assessments[i].Date), ShouldBeFalse)
				}
				So(details.Assessments[0].Role, ShouldNotBeBlank)

				agg, err := svc.AggregateReport(ctx, c.ID, dep.ID, op.ID)
				So(err, ShouldBeNil)
				So(agg.TotalAssessments, ShouldEqual, 6)
				So(len(agg.Questions), ShouldEqual, len(dataset.Questionnaire))
				for _, q := range agg.Questions {
					So(q.Respondents, ShouldEqual, 6)
				}

				view, err := svc.Assessment(ctx, c.ID, dep.ID, op.ID, details.Assessments[0].ID)
				So(err, ShouldBeNil)
				So(len(view.Responses), ShouldEqual, len(dataset.Questionnaire))
			})
		})
	})
}
