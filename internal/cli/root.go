// Package cli wires the assay command line: the HTTP server, terminal
// reports, dataset generation and verification of a running server.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	service "github.com/okian/assay/internal/app"
	"github.com/okian/assay/internal/config"
	"github.com/okian/assay/internal/domain/scoring"
	"github.com/okian/assay/pkg/logger"
)

// rootOptions holds flags shared by every subcommand.
type rootOptions struct {
	configFile string
}

// NewRootCommand builds the assay command tree.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "assay",
		Short: "Assessment response aggregation and reporting",
		Long: `Assay stores completed assessments per company, department and
operational area, and aggregates their responses into per-question reports.

Configuration is layered: defaults, then the YAML file given by --config or
ASSAY_CONFIG, then ASSAY_* environment variables.`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "YAML config file (overrides ASSAY_CONFIG)")

	cmd.AddCommand(
		newServeCommand(opts),
		newReportCommand(opts),
		newSeedCommand(opts),
		newVerifyCommand(opts),
	)
	return cmd
}

// Execute runs the root command with ctx.
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}

// setup loads configuration and initialises the global logger on the
// command's error stream.
func (o *rootOptions) setup(cmd *cobra.Command) (*config.Config, logger.Logger, error) {
	ctx := cmd.Context()

	cfg, err := config.Load(ctx, config.WithFile(o.configFile))
	if err != nil {
		return nil, nil, err
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat), logger.WithWriter(cmd.ErrOrStderr())); err != nil {
		return nil, nil, err
	}
	log := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	return cfg, log, nil
}

// serviceOptions maps configuration onto service options.
func serviceOptions(cfg *config.Config, log logger.Logger) []service.Option {
	return []service.Option{
		service.WithLogger(log),
		service.WithStoreDriver(cfg.StoreDriver, cfg.StoreDSN),
		service.WithSeedFile(cfg.SeedFile),
		service.WithScorer(newScorer(cfg)),
		service.WithLookupConcurrency(cfg.LookupConcurrency),
		service.WithSuggestDistance(cfg.SuggestDistance),
	}
}

func newScorer(cfg *config.Config) *scoring.Scorer {
	return scoring.NewScorer(scoring.WithSingleTopScore(cfg.SingleTopScore))
}
