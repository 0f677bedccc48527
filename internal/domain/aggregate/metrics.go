package aggregate

import (
	"errors"
	"math"
)

// ErrNoResponses is returned when a statistic needs at least one response.
var ErrNoResponses = errors.New("bucket has no responses")

// percentScale converts a ratio to a percentage.
const percentScale = 100

// AverageScore returns TotalScore / Count.
// A bucket with Count == 0 has no average; ErrNoResponses is returned rather
// than a made-up zero.
func (b *Bucket) AverageScore() (float64, error) {
	if b.Count <= 0 {
		return math.NaN(), ErrNoResponses
	}
	return b.TotalScore / float64(b.Count), nil
}

// AnswerCounts tallies how often each option index was selected across all
// answers. The result has one entry per option, zero for unpicked options.
// Indices outside the option list are not counted.
func (b *Bucket) AnswerCounts() []int {
	counts := make([]int, len(b.Options))
	for _, answer := range b.Answers {
		for _, idx := range answer {
			if idx < 0 || idx >= len(counts) {
				continue
			}
			counts[idx]++
		}
	}
	return counts
}

// TotalSelections returns the number of selected indices across all answers.
// It is the percentage denominator: a multi-select respondent contributes one
// per selected option, so it can exceed Count.
func (b *Bucket) TotalSelections() int {
	var n int
	for _, answer := range b.Answers {
		n += len(answer)
	}
	return n
}

// OptionPercentage returns option i's share of all selections, rounded to the
// nearest whole percent. It is 0 when nothing was selected or i is not an
// option of this bucket.
func (b *Bucket) OptionPercentage(i int) int {
	if i < 0 || i >= len(b.Options) {
		return 0
	}
	return percentages(b.AnswerCounts(), b.TotalSelections())[i]
}

// OptionPercentages returns OptionPercentage for every option in order.
func (b *Bucket) OptionPercentages() []int {
	return percentages(b.AnswerCounts(), b.TotalSelections())
}

// Selected reports whether any respondent picked option i.
func (b *Bucket) Selected(i int) bool {
	for _, answer := range b.Answers {
		for _, idx := range answer {
			if idx == i {
				return true
			}
		}
	}
	return false
}

func percentages(counts []int, total int) []int {
	out := make([]int, len(counts))
	if total == 0 {
		return out
	}
	for i, c := range counts {
		out[i] = int(math.Round(float64(c) / float64(total) * percentScale))
	}
	return out
}
