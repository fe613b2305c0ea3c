package main

import (
	"github.com/aretw0/portflow/internal/cli"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve [file]",
	Short: "Start the HTTP server",
	Long: `Serves the network over a JSON API described by /openapi.yaml, with
Prometheus metrics on /metrics.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var cfg cli.ServeConfig
		port, _ := cmd.Flags().GetString("port")
		cfg.Addr = ":" + port
		cfg.Validate, _ = cmd.Flags().GetBool("validate-requests")
		cfg.AutoEvaluate, _ = cmd.Flags().GetBool("auto-evaluate")
		return cli.Serve(cmd.Context(), cmd.OutOrStdout(), options(cmd, args), cfg)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	serveCmd.Flags().Bool("validate-requests", false, "Validate requests against the OpenAPI document")
	serveCmd.Flags().Bool("auto-evaluate", true, "Evaluate whenever the network changes")
}
