package main

import (
	"github.com/aretw0/portflow/internal/cli"
	"github.com/aretw0/portflow/pkg/schema"
	"github.com/spf13/cobra"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Manage stored networks",
	Long:  `Lists, imports, exports and deletes networks in the store selected by --store.`,
}

var storeListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List stored networks",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.RunStoreList(cmd.Context(), cmd.OutOrStdout(), options(cmd, nil))
	},
}

var storeImportCmd = &cobra.Command{
	Use:   "import <file> [name]",
	Short: "Validate a definition file and store it",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := ""
		if len(args) > 1 {
			name = args[1]
		}
		return cli.RunStoreImport(cmd.Context(), cmd.OutOrStdout(), options(cmd, nil), args[0], name)
	},
}

var storeExportCmd = &cobra.Command{
	Use:   "export <name>",
	Short: "Print a stored definition",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		return cli.RunStoreExport(cmd.Context(), cmd.OutOrStdout(), options(cmd, nil), args[0], schema.Format(format))
	},
}

var storeDeleteCmd = &cobra.Command{
	Use:     "delete <name>",
	Aliases: []string{"rm"},
	Short:   "Delete a stored network",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.RunStoreDelete(cmd.Context(), cmd.OutOrStdout(), options(cmd, nil), args[0])
	},
}

func init() {
	rootCmd.AddCommand(storeCmd)
	storeCmd.AddCommand(storeListCmd, storeImportCmd, storeExportCmd, storeDeleteCmd)
	storeExportCmd.Flags().String("format", string(schema.FormatYAML), "Output format: yaml or json")
}
