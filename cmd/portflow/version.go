package main

import (
	"strings"

	"github.com/aretw0/portflow"
	"github.com/aretw0/portflow/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of portflow",
	Run: func(cmd *cobra.Command, args []string) {
		tui.PrintBanner(cmd.OutOrStdout(), strings.TrimSpace(portflow.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
