package main

import (
	"github.com/aretw0/portflow/internal/cli"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Check the network for consistency",
	Long: `Reports every problem in the definition at once: unknown classes, dangling
port references, over-full inports, bad metadata and cycles.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.RunValidate(cmd.Context(), cmd.OutOrStdout(), options(cmd, args))
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
