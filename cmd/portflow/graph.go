package main

import (
	"github.com/aretw0/portflow/internal/cli"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph [file]",
	Short: "Export the network as a Mermaid diagram",
	Long:  `Outputs a Mermaid flowchart (graph LR) of processors and connections, styled by readiness.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		evaluate, _ := cmd.Flags().GetBool("evaluate")
		return cli.RunGraph(cmd.Context(), cmd.OutOrStdout(), options(cmd, args), evaluate)
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().Bool("evaluate", false, "Run one evaluation pass before drawing")
}
