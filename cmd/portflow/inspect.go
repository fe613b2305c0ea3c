package main

import (
	"github.com/aretw0/portflow/internal/cli"
	"github.com/aretw0/portflow/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [file]",
	Short: "Show processor status and port details",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.RunInspect(cmd.Context(), cmd.OutOrStdout(), options(cmd, args), tui.NewRenderer())
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}
