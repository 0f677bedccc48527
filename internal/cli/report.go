package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	service "github.com/okian/assay/internal/app"
)

type reportOptions struct {
	company    string
	department string
	opArea     string
	asJSON     bool
}

func newReportCommand(root *rootOptions) *cobra.Command {
	opts := &reportOptions{}

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the aggregate report of an operational area",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := root.setup(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			svc := service.New(serviceOptions(cfg, log)...)
			if err := svc.Start(ctx); err != nil {
				return err
			}
			defer svc.Stop()

			view, err := svc.AggregateReport(ctx, opts.company, opts.department, opts.opArea)
			if err != nil {
				return err
			}

			if opts.asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(view)
			}
			return newReportPrinter(cmd.OutOrStdout()).Print(view)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.company, "company", "", "company id")
	f.StringVar(&opts.department, "department", "", "department id")
	f.StringVar(&opts.opArea, "op-area", "", "operational area id")
	f.BoolVar(&opts.asJSON, "json", false, "print the report as JSON")
	for _, name := range []string{"company", "department", "op-area"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}
