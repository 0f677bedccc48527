package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/assay/internal/adapters/repository"
	"github.com/okian/assay/internal/config"
	"github.com/okian/assay/internal/dataset"
	"github.com/okian/assay/pkg/logger"
)

// ErrNoPersistentStore is returned by seed --import with the memory driver.
var ErrNoPersistentStore = errors.New("import needs a sqlite or postgres store")

type seedOptions struct {
	out        string
	importData bool
	gen        dataset.GenerateOptions
}

func newSeedCommand(root *rootOptions) *cobra.Command {
	opts := &seedOptions{}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Generate a synthetic dataset",
		Long: `Generate writes a deterministic synthetic dataset as YAML. The same
--seed and sizes always produce the same file. With --import the dataset is
also imported into the configured store.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := root.setup(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			gen := opts.gen
			gen.Scorer = newScorer(cfg)
			gen.Now = time.Now().UTC()
			d, err := dataset.Generate(gen)
			if err != nil {
				return err
			}

			if err := writeDataset(cmd, opts.out, d); err != nil {
				return err
			}
			log.Info(ctx, "dataset generated",
				logger.String("out", opts.out),
				logger.Int("companies", len(d.Companies)),
				logger.Int("employees", len(d.Employees)),
				logger.Int("assessments", len(d.Assessments)),
			)

			if opts.importData {
				return importDataset(ctx, cfg, d, log)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.out, "out", "o", "-", `output file, "-" for stdout`)
	f.BoolVar(&opts.importData, "import", false, "also import into the configured store")
	f.IntVar(&opts.gen.Companies, "companies", 2, "number of companies")
	f.IntVar(&opts.gen.Departments, "departments", 3, "departments per company")
	f.IntVar(&opts.gen.OpAreas, "op-areas", 2, "operational areas per department")
	f.IntVar(&opts.gen.Employees, "employees", 5, "employees per operational area")
	f.IntVar(&opts.gen.Assessments, "assessments", 8, "assessments per operational area")
	f.Uint64Var(&opts.gen.Seed, "seed", 1, "random seed")
	return cmd
}

func writeDataset(cmd *cobra.Command, out string, d *dataset.Dataset) (err error) {
	if out == "-" {
		return d.Encode(cmd.OutOrStdout())
	}
	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("seed: %w", cerr)
		}
	}()
	return d.Encode(f)
}

func importDataset(ctx context.Context, cfg *config.Config, d *dataset.Dataset, log logger.Logger) error {
	if cfg.StoreDriver == repository.DriverMemory {
		return ErrNoPersistentStore
	}
	backend, err := repository.Open(ctx, cfg.StoreDriver, cfg.StoreDSN)
	if err != nil {
		return err
	}
	defer func() {
		if err := backend.Close(); err != nil {
			log.Warn(ctx, "closing store failed", logger.Error(err))
		}
	}()

	if err := backend.Import(ctx, d); err != nil {
		return err
	}
	log.Info(ctx, "dataset imported", logger.String("driver", cfg.StoreDriver))
	return nil
}
