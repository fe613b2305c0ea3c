package main

import (
	"github.com/aretw0/portflow/internal/cli"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check <from> <to>",
	Short: "Check whether a connection would create a cycle",
	Long: `Reports whether connecting the outport <from> to the inport <to>
(both written processor/port) would close a cycle. Exits non-zero if it would.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.RunCheck(cmd.Context(), cmd.OutOrStdout(), options(cmd, nil), args[0], args[1])
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
