package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/okian/assay/internal/dataset"
	"github.com/okian/assay/internal/verify"
)

type verifyOptions struct {
	url     string
	dataset string
	workers int
	timeout time.Duration
	rounds  int
	verbose bool
}

func newVerifyCommand(root *rootOptions) *cobra.Command {
	opts := &verifyOptions{}

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check a running server's reports against a seed dataset",
		Long: `Verify computes the aggregate report of every operational area in the
dataset locally, fetches the same reports from a running server and lists
every difference. It exits non-zero when any report differs.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := root.setup(cmd)
			if err != nil {
				return err
			}

			path := opts.dataset
			if path == "" {
				path = cfg.SeedFile
			}
			if path == "" {
				return errors.New("verify: --dataset is required when no seed_file is configured")
			}
			d, err := dataset.Load(path)
			if err != nil {
				return err
			}

			probes := verify.BuildProbes(d, newScorer(cfg))
			summary, err := verify.Run(cmd.Context(), verify.Config{
				BaseURL: strings.TrimRight(opts.url, "/"),
				Workers: opts.workers,
				Timeout: opts.timeout,
				Rounds:  opts.rounds,
				Verbose: opts.verbose,
			}, probes)
			if err != nil && !errors.Is(err, verify.ErrMismatch) {
				return err
			}

			printSummary(cmd.OutOrStdout(), summary)
			return err
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.url, "url", verify.DefaultBaseURL, "base URL of the running server")
	f.StringVar(&opts.dataset, "dataset", "", "seed dataset to compare against (defaults to seed_file)")
	f.IntVar(&opts.workers, "workers", 4, "concurrent probes")
	f.DurationVar(&opts.timeout, "timeout", verify.DefaultTimeout, "per request timeout")
	f.IntVar(&opts.rounds, "rounds", verify.DefaultRounds, "times every probe is repeated")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "log every probe")
	return cmd
}

func printSummary(w io.Writer, s verify.Summary) {
	r := lipgloss.NewRenderer(w)
	pass := r.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	fail := r.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	muted := r.NewStyle().Foreground(lipgloss.Color("8"))

	var b strings.Builder
	if s.Failed == 0 {
		b.WriteString(pass.Render("PASS"))
	} else {
		b.WriteString(fail.Render("FAIL"))
	}
	fmt.Fprintf(&b, " %d op areas, %d passed, %d failed\n", s.Probes, s.Passed, s.Failed)
	b.WriteString(muted.Render(fmt.Sprintf("%d requests in %s, p50 %s, p95 %s",
		s.Requests, s.Duration.Round(time.Millisecond), s.P50, s.P95)))
	b.WriteString("\n")

	for _, f := range s.Failures {
		fmt.Fprintf(&b, "\n%s %s\n", fail.Render(f.OpAreaName), muted.Render("("+f.OpAreaID+")"))
		for _, p := range f.Problems {
			b.WriteString("  - " + p + "\n")
		}
	}
	_, _ = io.WriteString(w, b.String())
}
