package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/nwp-workflow/taskgen/core/hms"
)

func newHMSCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "hms HH:MM:SS FACTOR",
		Short:   "Multiply a walltime by a factor",
		Example: "  taskgen hms 00:15:00 2.5",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			factor, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("factor: %w", err)
			}
			out, err := hms.Multiply(args[0], factor)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
			return err
		},
	}
}
