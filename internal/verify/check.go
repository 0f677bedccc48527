package verify

import (
	"fmt"

	"github.com/okian/assay/internal/domain/report"
)

// compareReports lists every difference between the expected and served
// aggregate reports.
func compareReports(want, got report.AggregateReport) []string {
	var problems []string
	if want.TotalAssessments != got.TotalAssessments {
		problems = append(problems, fmt.Sprintf("total assessments: want %d, got %d", want.TotalAssessments, got.TotalAssessments))
	}
	if len(want.Questions) != len(got.Questions) {
		return append(problems, fmt.Sprintf("questions: want %d, got %d", len(want.Questions), len(got.Questions)))
	}

	for i, wq := range want.Questions {
		gq := got.Questions[i]
		if wq.Question != gq.Question {
			problems = append(problems, fmt.Sprintf("question %d: want %q, got %q", i, wq.Question, gq.Question))
			continue
		}
		problems = append(problems, compareQuestion(wq, gq)...)
	}
	return problems
}

func compareQuestion(want, got report.QuestionReport) []string {
	var problems []string
	prefix := fmt.Sprintf("%q", want.Question)

	if want.Type != got.Type {
		problems = append(problems, fmt.Sprintf("%s type: want %s, got %s", prefix, want.Type, got.Type))
	}
	if want.Respondents != got.Respondents {
		problems = append(problems, fmt.Sprintf("%s respondents: want %d, got %d", prefix, want.Respondents, got.Respondents))
	}
	if want.Selections != got.Selections {
		problems = append(problems, fmt.Sprintf("%s selections: want %d, got %d", prefix, want.Selections, got.Selections))
	}
	if want.AverageLabel != got.AverageLabel {
		problems = append(problems, fmt.Sprintf("%s average: want %s, got %s", prefix, want.AverageLabel, got.AverageLabel))
	}
	if len(want.Rows) != len(got.Rows) {
		return append(problems, fmt.Sprintf("%s options: want %d, got %d", prefix, len(want.Rows), len(got.Rows)))
	}

	for j, wr := range want.Rows {
		gr := got.Rows[j]
		if wr.Label != gr.Label || wr.Count != gr.Count || wr.Percent != gr.Percent || wr.Points != gr.Points {
			problems = append(problems, fmt.Sprintf("%s option %d: want %s/%d/%d%%/%g, got %s/%d/%d%%/%g",
				prefix, j, wr.Label, wr.Count, wr.Percent, wr.Points, gr.Label, gr.Count, gr.Percent, gr.Points))
		}
	}
	return problems
}
