package main

import (
	"github.com/aretw0/portflow/internal/cli"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch [file]",
	Short: "Re-evaluate a definition file whenever it changes",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		debounce, _ := cmd.Flags().GetDuration("debounce")
		return cli.RunWatch(cmd.Context(), cmd.OutOrStdout(), options(cmd, args), debounce)
	},
}

func init() {
	watchCmd.Flags().Duration("debounce", cli.WatchDebounce, "Quiet period before re-evaluating")
	rootCmd.AddCommand(watchCmd)
}
