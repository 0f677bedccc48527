// Package scoring maps selected answer options to point values.
package scoring

import "github.com/okian/assay/internal/domain/model"

// Default scoring configuration constants.
const (
	defaultSingleTopScore = 4 // ranked ladder 4,3,2,1 for option indices 0..3
	multiSelectionPoints  = 1
)

// Option applies a configuration option to the Scorer.
type Option func(*Scorer)

// WithSingleTopScore sets the points awarded to option index 0 of a
// single-select question. Lower options score one point less per index.
func WithSingleTopScore(top int) Option {
	return func(s *Scorer) {
		if top > 0 {
			s.singleTop = float64(top)
		}
	}
}

// Scorer computes point values for question options. It holds no mutable
// state and is safe for concurrent use.
type Scorer struct {
	singleTop float64
}

// NewScorer creates a scorer with configuration options.
func NewScorer(opts ...Option) *Scorer {
	s := &Scorer{
		singleTop: defaultSingleTopScore,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Points returns the value of selecting optionIndex on a question of type t.
//
// Single-select options are ranked: index 0 is worth the top score and each
// following index one point less. Indices are not bounds-checked, so an index
// past the ladder yields zero or negative points. Multi-select options are
// all worth one point. Unknown types score zero.
func (s *Scorer) Points(t model.QuestionType, optionIndex int) float64 {
	switch t {
	case model.QuestionSingle:
		return s.singleTop - float64(optionIndex)
	case model.QuestionMulti:
		return multiSelectionPoints
	default:
		return 0
	}
}

// ResponseScore sums Points over every selected index of r.
func (s *Scorer) ResponseScore(r model.Response) float64 {
	var total float64
	for _, idx := range r.Answer {
		total += s.Points(r.Type, idx)
	}
	return total
}

// TopScore returns the points of the best single-select option.
func (s *Scorer) TopScore() float64 { return s.singleTop }

var defaultScorer = NewScorer()

// Points scores optionIndex with the default ladder (4,3,2,1).
func Points(t model.QuestionType, optionIndex int) float64 {
	return defaultScorer.Points(t, optionIndex)
}
