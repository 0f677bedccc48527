package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/assay/internal/adapters/repository"
	service "github.com/okian/assay/internal/app"
	"github.com/okian/assay/internal/config"
	"github.com/okian/assay/internal/dataset"
	"github.com/okian/assay/internal/domain/model"
	"github.com/okian/assay/internal/domain/report"
	"github.com/okian/assay/internal/verify"
)

// run executes the root command with args and returns stdout, stderr and the error.
func run(args ...string) (string, string, error) {
	var stdout, stderr bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func generateSeed(t *testing.T, dir string) (*dataset.Dataset, string) {
	t.Helper()
	d, err := dataset.Generate(dataset.GenerateOptions{
		Companies:   1,
		Departments: 1,
		OpAreas:     1,
		Employees:   2,
		Assessments: 4,
		Seed:        11,
		Now:         time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := d.Encode(&buf); err != nil {
		t.Fatal(err)
	}
	return d, writeFile(t, dir, "seed.yaml", buf.String())
}

func TestRootCommand(t *testing.T) {
	Convey("Given the root command", t, func() {
		cmd := NewRootCommand()

		Convey("Then it exposes the subcommands and the config flag", func() {
			names := make([]string, 0, len(cmd.Commands()))
			for _, c := range cmd.Commands() {
				names = append(names, c.Name())
			}
			So(names, ShouldContain, "serve")
			So(names, ShouldContain, "report")
			So(names, ShouldContain, "seed")
			So(names, ShouldContain, "verify")
			So(cmd.PersistentFlags().Lookup("config"), ShouldNotBeNil)
		})

		Convey("Then a broken config file fails every command", func() {
			dir := t.TempDir()
			cfgPath := writeFile(t, dir, "config.yaml", "store_driver: mongo\n")
			_, _, err := run("seed", "--config", cfgPath)
			So(errors.Is(err, config.ErrInvalidConfig), ShouldBeTrue)
		})
	})
}

func TestSeedCommand(t *testing.T) {
	Convey("Given the seed command", t, func() {
		dir := t.TempDir()
		cfgPath := writeFile(t, dir, "config.yaml", "log_level: error\n")
		sizes := []string{"--companies", "1", "--departments", "2", "--op-areas", "1",
			"--employees", "2", "--assessments", "3", "--seed", "5"}

		Convey("When writing to a file", func() {
			out := filepath.Join(dir, "data.yaml")
			_, _, err := run(append([]string{"seed", "--config", cfgPath, "--out", out}, sizes...)...)
			So(err, ShouldBeNil)

			Convey("Then the file holds a valid dataset of the requested size", func() {
				d, err := dataset.Load(out)
				So(err, ShouldBeNil)
				So(d.Companies, ShouldHaveLength, 1)
				So(d.DepartmentList(), ShouldHaveLength, 2)
				So(d.Employees, ShouldHaveLength, 4)
				So(d.Assessments, ShouldHaveLength, 6)
			})
		})

		Convey("When writing to stdout", func() {
			stdout, _, err := run(append([]string{"seed", "--config", cfgPath}, sizes...)...)
			So(err, ShouldBeNil)

			Convey("Then stdout decodes as a dataset", func() {
				d, err := dataset.Decode(strings.NewReader(stdout))
				So(err, ShouldBeNil)
				So(d.Validate(), ShouldBeNil)
				So(d.Assessments, ShouldHaveLength, 6)
			})
		})

		Convey("When importing into sqlite", func() {
			dbPath := filepath.Join(dir, "assay.db")
			sqliteCfg := writeFile(t, dir, "sqlite.yaml",
				"log_level: error\nstore_driver: sqlite\nstore_dsn: "+dbPath+"\n")
			_, _, err := run(append([]string{"seed", "--config", sqliteCfg, "--out", filepath.Join(dir, "x.yaml"), "--import"}, sizes...)...)
			So(err, ShouldBeNil)

			Convey("Then the store holds the dataset", func() {
				store, err := repository.OpenSQLite(context.Background(), dbPath)
				So(err, ShouldBeNil)
				defer func() { _ = store.Close() }()

				companies, err := store.ListCompanies(context.Background())
				So(err, ShouldBeNil)
				So(companies, ShouldHaveLength, 1)
			})
		})

		Convey("When importing with the memory driver", func() {
			_, _, err := run(append([]string{"seed", "--config", cfgPath, "--out", filepath.Join(dir, "x.yaml"), "--import"}, sizes...)...)

			Convey("Then it is refused", func() {
				So(errors.Is(err, ErrNoPersistentStore), ShouldBeTrue)
			})
		})
	})
}

func TestReportCommand(t *testing.T) {
	Convey("Given a config seeding the memory store", t, func() {
		dir := t.TempDir()
		d, seedPath := generateSeed(t, dir)
		cfgPath := writeFile(t, dir, "config.yaml", "log_level: error\nseed_file: "+seedPath+"\n")

		op := d.OpAreaList()[0]
		args := []string{"report", "--config", cfgPath,
			"--company", op.CompanyID, "--department", op.DepartmentID, "--op-area", op.ID}

		Convey("When printing the report", func() {
			stdout, _, err := run(args...)

			Convey("Then every question is listed under the header", func() {
				So(err, ShouldBeNil)
				So(stdout, ShouldContainSubstring, op.Name)
				So(stdout, ShouldContainSubstring, "4 assessments")
				for _, q := range dataset.Questionnaire {
					So(stdout, ShouldContainSubstring, q.Text)
				}
				So(stdout, ShouldContainSubstring, "Average score:")
			})
		})

		Convey("When printing JSON", func() {
			stdout, _, err := run(append(args, "--json")...)
			So(err, ShouldBeNil)

			Convey("Then it decodes as an aggregate view", func() {
				var view service.AggregateView
				So(json.Unmarshal([]byte(stdout), &view), ShouldBeNil)
				So(view.TotalAssessments, ShouldEqual, 4)
				So(view.Questions, ShouldHaveLength, len(dataset.Questionnaire))
			})
		})

		Convey("When the operational area does not exist", func() {
			_, _, err := run("report", "--config", cfgPath,
				"--company", op.CompanyID, "--department", op.DepartmentID, "--op-area", "missing")

			Convey("Then the not found error surfaces", func() {
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When a required flag is missing", func() {
			_, _, err := run("report", "--config", cfgPath, "--company", op.CompanyID)
			So(err, ShouldNotBeNil)
		})
	})
}

func TestNewHandler(t *testing.T) {
	Convey("Given a started service behind the full handler", t, func() {
		dir := t.TempDir()
		d, _ := generateSeed(t, dir)

		svc := service.New(service.WithSeed(d))
		So(svc.Start(context.Background()), ShouldBeNil)
		defer svc.Stop()

		cfg := config.New()
		h := newHandler(context.Background(), svc, cfg)

		get := func(path string) *httptest.ResponseRecorder {
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, http.NoBody))
			return w
		}

		Convey("Then every surface is routed", func() {
			So(get("/").Code, ShouldEqual, http.StatusOK)
			So(get("/api-docs").Code, ShouldEqual, http.StatusOK)
			So(get("/openapi.yaml").Code, ShouldEqual, http.StatusOK)
			So(get("/dashboard").Code, ShouldEqual, http.StatusOK)
			So(get("/healthz").Code, ShouldEqual, http.StatusOK)

			w := get("/api/companies")
			So(w.Code, ShouldEqual, http.StatusOK)
			var listing service.CompanyListing
			So(json.NewDecoder(w.Body).Decode(&listing), ShouldBeNil)
			So(listing.Companies, ShouldHaveLength, 1)
		})

		Convey("Then unknown ids are 404", func() {
			So(get("/api/companies/nope").Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestVerifyCommand(t *testing.T) {
	Convey("Given a server started from a seed dataset", t, func() {
		dir := t.TempDir()
		d, seedPath := generateSeed(t, dir)

		svc := service.New(service.WithSeed(d))
		So(svc.Start(context.Background()), ShouldBeNil)
		defer svc.Stop()

		srv := httptest.NewServer(newHandler(context.Background(), svc, config.New()))
		defer srv.Close()

		Convey("When verifying with the same scoring", func() {
			cfgPath := writeFile(t, dir, "config.yaml", "log_level: error\n")
			stdout, _, err := run("verify", "--config", cfgPath, "--url", srv.URL+"/", "--dataset", seedPath)

			Convey("Then every operational area passes", func() {
				So(err, ShouldBeNil)
				So(stdout, ShouldContainSubstring, "PASS")
				So(stdout, ShouldContainSubstring, "1 op areas, 1 passed, 0 failed")
			})
		})

		Convey("When verifying with a different top score", func() {
			cfgPath := writeFile(t, dir, "config.yaml", "log_level: error\nsingle_top_score: 6\n")
			stdout, _, err := run("verify", "--config", cfgPath, "--url", srv.URL, "--dataset", seedPath)

			Convey("Then the option points are reported as mismatches", func() {
				So(errors.Is(err, verify.ErrMismatch), ShouldBeTrue)
				So(stdout, ShouldContainSubstring, "FAIL")
				So(stdout, ShouldContainSubstring, d.OpAreaList()[0].Name)
			})
		})

		Convey("When no dataset is known", func() {
			cfgPath := writeFile(t, dir, "config.yaml", "log_level: error\n")
			_, _, err := run("verify", "--config", cfgPath, "--url", srv.URL)
			So(err, ShouldNotBeNil)
		})
	})
}

func TestReportPrinter(t *testing.T) {
	Convey("Given an aggregate view", t, func() {
		avg := 2.5
		view := service.AggregateView{
			CompanyName:    "Acme",
			DepartmentName: "Operations",
			OpAreaName:     "Dispatch",
			AggregateReport: report.AggregateReport{
				TotalAssessments: 2,
				Questions: []report.QuestionReport{{
					Question:  "Which tools?",
					Type:      model.QuestionMulti,
					SelectAll: true,
					Hint:      "Select all that apply",
					Rows: []report.OptionRow{
						{Label: "Spreadsheets", Points: 1, Percent: 75, People: "3 people", Color: "#86efac", Highlighted: true},
						{Label: "None", Points: 1, Percent: 25, People: "1 person", Color: "#fde047"},
					},
					AverageScore: &avg,
					AverageLabel: "2.50",
				}},
			},
		}

		Convey("When printed", func() {
			var buf bytes.Buffer
			So(newReportPrinter(&buf).Print(view), ShouldBeNil)
			out := buf.String()

			Convey("Then the header, rows and average are shown", func() {
				So(out, ShouldContainSubstring, "Dispatch")
				So(out, ShouldContainSubstring, "Acme / Operations")
				So(out, ShouldContainSubstring, "2 assessments")
				So(out, ShouldContainSubstring, "1. Which tools?")
				So(out, ShouldContainSubstring, "(select all)")
				So(out, ShouldContainSubstring, " 75% ")
				So(out, ShouldContainSubstring, "1 person")
				So(out, ShouldContainSubstring, "Average score: 2.50")
			})
		})

		Convey("When it has no questions", func() {
			var buf bytes.Buffer
			So(newReportPrinter(&buf).Print(service.AggregateView{}), ShouldBeNil)
			So(buf.String(), ShouldContainSubstring, "No responses recorded.")
		})
	})

	Convey("Bars are clamped to their width", t, func() {
		So([]rune(bar(0)), ShouldHaveLength, barWidth)
		So([]rune(bar(150)), ShouldHaveLength, barWidth)
		So(bar(100), ShouldEqual, strings.Repeat("█", barWidth))
		So(bar(50), ShouldStartWith, strings.Repeat("█", barWidth/2)+"░")
	})
}
