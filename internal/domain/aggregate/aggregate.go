// Package aggregate folds assessment responses into per-question statistics.
//
// Everything here is a pure function of its input: no I/O, no shared state,
// nothing cached between calls. An Aggregation is rebuilt from scratch each
// time the assessment collection changes.
package aggregate

import (
	"slices"

	"github.com/okian/assay/internal/domain/model"
)

// Bucket accumulates every response to one question text.
//
// Options and Type come from the first response seen for the question and
// are never reconciled against later ones, even if a later assessment asked
// the same text with a different option list.
type Bucket struct {
	Question   string             `json:"question"`
	Answers    [][]int            `json:"answers"`
	Options    []string           `json:"options"`
	TotalScore float64            `json:"total_score"`
	Count      int                `json:"count"`
	Type       model.QuestionType `json:"type"`
}

// Aggregation maps question text to its bucket, remembering first-seen order.
type Aggregation struct {
	order       []string
	buckets     map[string]*Bucket
	assessments int
}

// Aggregate folds assessments into per-question buckets.
// Nil or empty input yields an empty Aggregation.
func Aggregate(assessments []model.Assessment) *Aggregation {
	agg := &Aggregation{
		buckets:     make(map[string]*Bucket),
		assessments: len(assessments),
	}

	for i := range assessments {
		for _, r := range assessments[i].Responses {
			agg.add(r)
		}
	}

	return agg
}

func (a *Aggregation) add(r model.Response) {
	b, ok := a.buckets[r.Question]
	if !ok {
		a.buckets[r.Question] = &Bucket{
			Question:   r.Question,
			Answers:    [][]int{slices.Clone(r.Answer)},
			Options:    slices.Clone(r.Options),
			TotalScore: r.Score,
			Count:      1,
			Type:       r.Type,
		}
		a.order = append(a.order, r.Question)
		return
	}

	b.Answers = append(b.Answers, slices.Clone(r.Answer))
	b.TotalScore += r.Score
	b.Count++
}

// Len returns the number of distinct questions.
func (a *Aggregation) Len() int { return len(a.order) }

// Assessments returns how many assessments were folded, including ones
// without responses.
func (a *Aggregation) Assessments() int { return a.assessments }

// Questions returns question texts in first-occurrence order.
func (a *Aggregation) Questions() []string { return slices.Clone(a.order) }

// Bucket returns the bucket for a question text.
func (a *Aggregation) Bucket(question string) (*Bucket, bool) {
	b, ok := a.buckets[question]
	return b, ok
}

// Buckets returns all buckets in first-occurrence order.
func (a *Aggregation) Buckets() []*Bucket {
	out := make([]*Bucket, 0, len(a.order))
	for _, q := range a.order {
		out = append(out, a.buckets[q])
	}
	return out
}
