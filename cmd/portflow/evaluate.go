package main

import (
	"github.com/aretw0/portflow/internal/cli"
	"github.com/spf13/cobra"
)

var evaluateCmd = &cobra.Command{
	Use:     "evaluate [file]",
	Aliases: []string{"eval"},
	Short:   "Run one evaluation pass",
	Long:    `Evaluates every invalid, ready processor in topological order and lists them.`,
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.RunEvaluate(cmd.Context(), cmd.OutOrStdout(), options(cmd, args))
	},
}

func init() {
	rootCmd.AddCommand(evaluateCmd)
}
