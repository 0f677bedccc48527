// Package report shapes aggregated assessment data into chart- and
// table-ready view models.
package report

import "github.com/okian/assay/internal/domain/aggregate"

// Palette holds the option colours, reused cyclically by option index.
var Palette = [...]string{"#86efac", "#fde047", "#93c5fd", "#fca5a5"}

// ColorFor returns the palette colour for option index i.
func ColorFor(i int) string {
	n := len(Palette)
	return Palette[((i%n)+n)%n]
}

// Series is the data behind one pie chart.
type Series struct {
	Labels []string `json:"labels"`
	Values []int    `json:"values"`
	Colors []string `json:"colors"`
}

// ToChartSeries turns a bucket into a pie chart series: one slice per option,
// sized by how often the option was picked.
func ToChartSeries(b *aggregate.Bucket) Series {
	labels := make([]string, len(b.Options))
	colors := make([]string, len(b.Options))
	for i, opt := range b.Options {
		labels[i] = opt
		colors[i] = ColorFor(i)
	}
	return Series{
		Labels: labels,
		Values: b.AnswerCounts(),
		Colors: colors,
	}
}

// Total returns the sum of all slice values.
func (s Series) Total() int {
	var n int
	for _, v := range s.Values {
		n += v
	}
	return n
}
