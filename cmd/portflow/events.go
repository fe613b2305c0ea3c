package main

import (
	"github.com/aretw0/portflow/internal/cli"
	"github.com/spf13/cobra"
)

var eventsCmd = &cobra.Command{
	Use:   "events [file]",
	Short: "Stream lifecycle events of one evaluation",
	Long:  `Builds the network, evaluates it once and prints every lifecycle event as a JSON line.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.RunEvents(cmd.Context(), cmd.OutOrStdout(), options(cmd, args))
	},
}

func init() {
	rootCmd.AddCommand(eventsCmd)
}
