package report

import (
	"github.com/okian/assay/internal/domain/aggregate"
	"github.com/okian/assay/internal/domain/model"
	"github.com/okian/assay/internal/domain/scoring"
)

// OptionRow is one line of a question's option table.
type OptionRow struct {
	Index       int     `json:"index"`
	Label       string  `json:"label"`
	Points      float64 `json:"points"`
	Count       int     `json:"count"`
	Percent     int     `json:"percent"`
	People      string  `json:"people"`
	Color       string  `json:"color"`
	Highlighted bool    `json:"highlighted"`
}

// QuestionReport is the aggregate view of a single question.
type QuestionReport struct {
	Question     string             `json:"question"`
	Type         model.QuestionType `json:"type"`
	SelectAll    bool               `json:"select_all"`
	Hint         string             `json:"hint,omitempty"`
	Rows         []OptionRow        `json:"rows"`
	Respondents  int                `json:"respondents"`
	Selections   int                `json:"selections"`
	AverageScore *float64           `json:"average_score"`
	AverageLabel string             `json:"average_label"`
	Chart        Series             `json:"chart"`
}

// AggregateReport is the aggregate view over a set of assessments.
type AggregateReport struct {
	TotalAssessments int              `json:"total_assessments"`
	Questions        []QuestionReport `json:"questions"`
}

// BuildAggregate runs the aggregation over assessments and shapes every
// bucket into a QuestionReport, in first-occurrence order. A nil scorer uses
// the default ladder.
func BuildAggregate(assessments []model.Assessment, scorer *scoring.Scorer) AggregateReport {
	if scorer == nil {
		scorer = scoring.NewScorer()
	}
	agg := aggregate.Aggregate(assessments)

	out := AggregateReport{
		TotalAssessments: agg.Assessments(),
		Questions:        make([]QuestionReport, 0, agg.Len()),
	}
	for _, b := range agg.Buckets() {
		out.Questions = append(out.Questions, BuildQuestion(b, scorer))
	}
	return out
}

// BuildQuestion shapes one bucket into its table rows, average and chart.
func BuildQuestion(b *aggregate.Bucket, scorer *scoring.Scorer) QuestionReport {
	counts := b.AnswerCounts()
	percents := b.OptionPercentages()

	rows := make([]OptionRow, len(b.Options))
	for i, opt := range b.Options {
		rows[i] = OptionRow{
			Index:       i,
			Label:       opt,
			Points:      scorer.Points(b.Type, i),
			Count:       counts[i],
			Percent:     percents[i],
			People:      PeopleLabel(counts[i]),
			Color:       ColorFor(i),
			Highlighted: b.Selected(i),
		}
	}

	q := QuestionReport{
		Question:    b.Question,
		Type:        b.Type,
		SelectAll:   b.Type == model.QuestionMulti,
		Rows:        rows,
		Respondents: b.Count,
		Selections:  b.TotalSelections(),
		Chart:       ToChartSeries(b),
	}
	if q.SelectAll {
		q.Hint = selectAllHint
	}

	avg, err := b.AverageScore()
	if err == nil {
		q.AverageScore = &avg
	}
	q.AverageLabel = FormatAverage(avg, err == nil)

	return q
}
