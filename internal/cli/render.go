package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	service "github.com/okian/assay/internal/app"
	"github.com/okian/assay/internal/domain/report"
)

const barWidth = 20

// reportPrinter renders aggregate reports for a terminal. Colours are only
// emitted when the writer supports them.
type reportPrinter struct {
	w        io.Writer
	renderer *lipgloss.Renderer

	title  lipgloss.Style
	muted  lipgloss.Style
	strong lipgloss.Style
	box    lipgloss.Style
}

func newReportPrinter(w io.Writer) *reportPrinter {
	r := lipgloss.NewRenderer(w)
	return &reportPrinter{
		w:        w,
		renderer: r,
		title:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		muted:    r.NewStyle().Foreground(lipgloss.Color("8")),
		strong:   r.NewStyle().Bold(true),
		box:      r.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1),
	}
}

// Print writes the report header followed by one block per question.
func (p *reportPrinter) Print(v service.AggregateView) error {
	var b strings.Builder

	header := strings.Join([]string{
		p.title.Render(v.OpAreaName),
		p.muted.Render(v.CompanyName + " / " + v.DepartmentName),
		fmt.Sprintf("%d assessments", v.TotalAssessments),
	}, "\n")
	b.WriteString(p.box.Render(header))
	b.WriteString("\n\n")

	if len(v.Questions) == 0 {
		b.WriteString(p.muted.Render("No responses recorded."))
		b.WriteString("\n")
	}
	for i, q := range v.Questions {
		p.question(&b, i+1, q)
	}

	_, err := io.WriteString(p.w, b.String())
	return err
}

func (p *reportPrinter) question(b *strings.Builder, n int, q report.QuestionReport) {
	kind := "single choice"
	if q.SelectAll {
		kind = "select all"
	}
	fmt.Fprintf(b, "%s %s\n", p.strong.Render(fmt.Sprintf("%d. %s", n, q.Question)), p.muted.Render("("+kind+")"))
	if q.Hint != "" {
		b.WriteString("   " + p.muted.Render(q.Hint) + "\n")
	}

	width := 0
	for _, row := range q.Rows {
		width = max(width, lipgloss.Width(row.Label))
	}

	for _, row := range q.Rows {
		swatch := p.renderer.NewStyle().Foreground(lipgloss.Color(row.Color)).Render("■")
		labelStyle := p.renderer.NewStyle()
		if row.Highlighted {
			labelStyle = p.strong
		}
		label := labelStyle.Width(width).Render(row.Label)
		fmt.Fprintf(b, "   %s %s %4s pts %3d%% %s %s\n",
			swatch, label, formatPoints(row.Points), row.Percent, bar(row.Percent), p.muted.Render(row.People))
	}
	fmt.Fprintf(b, "   Average score: %s\n\n", q.AverageLabel)
}

func formatPoints(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// bar draws percent as a fixed-width horizontal bar.
func bar(percent int) string {
	filled := min(max(percent, 0), 100) * barWidth / 100
	return strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
}
