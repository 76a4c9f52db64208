package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nwp-workflow/taskgen/app"
	"github.com/nwp-workflow/taskgen/config"
	"github.com/nwp-workflow/taskgen/infra/logger"
)

func newGenerateCmd(cfgPath *string) *cobra.Command {
	var format, output string
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the metatask document of every configured task",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if cmd.Flags().Changed("format") {
				cfg.Output.Format = format
			}
			if cmd.Flags().Changed("output") {
				cfg.Output.Path = output
			}
			if err := cfg.Output.Validate(); err != nil {
				return err
			}
			return runGenerate(ctx, cmd, cfg)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "yaml", "document format (yaml or json)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "document path (default stdout)")
	return cmd
}

func runGenerate(ctx context.Context, cmd *cobra.Command, cfg *config.Config) error {
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("main").Errorf("service close: %v", err)
		}
	}()
	return svc.Run(ctx, cmd.OutOrStdout())
}
