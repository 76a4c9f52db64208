package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nwp-workflow/taskgen/app"
	"github.com/nwp-workflow/taskgen/config"
	"github.com/nwp-workflow/taskgen/core/ledger"
	"github.com/nwp-workflow/taskgen/pkg/export"
)

func newHistoryCmd(cfgPath *string) *cobra.Command {
	var (
		q      ledger.Query
		since  time.Duration
		format string
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show previously generated groupings from the ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if since > 0 {
				q.Start = time.Now().Add(-since)
			}
			recs, err := app.History(cmd.Context(), cfg, q)
			if err != nil {
				return err
			}
			switch format {
			case "csv":
				return export.WriteCSV(cmd.OutOrStdout(), recs)
			case "json":
				return export.WriteJSON(cmd.OutOrStdout(), recs)
			case "text":
				for _, r := range recs {
					if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\t%s\n",
						r.Timestamp.Format(time.RFC3339), r.RunID, r.Run, r.Task, r.Vars.FhrLabel); err != nil {
						return err
					}
				}
				return nil
			default:
				return app.Encode(cmd.OutOrStdout(), recs, format)
			}
		},
	}
	f := cmd.Flags()
	f.StringVar(&q.Run, "run", "", "filter by run")
	f.StringVar(&q.Task, "task", "", "filter by task")
	f.StringVar(&q.RunID, "run-id", "", "filter by generation id")
	f.DurationVar(&since, "since", 0, "only show records newer than this")
	f.StringVarP(&format, "format", "f", "text", "output format (text, csv, yaml or json)")
	return cmd
}
