package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/portflow/internal/cli"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "portflow",
	Short: "Portflow is a processor and port network engine",
	Long: `Portflow builds networks of processors connected through typed ports,
checks them for cycles and capacity problems, and evaluates them in
topological order.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	flags := rootCmd.PersistentFlags()
	flags.StringP("file", "f", "", "Network definition file (YAML or JSON)")
	flags.StringP("network", "n", "", "Stored network name, used when --file is empty")
	flags.Bool("debug", false, "Log lifecycle events to stderr")
	flags.String("store", cli.StoreFile, "Definition store: file, sqlite, redis or memory")
	flags.String("store-dir", "", "Directory of the file store (default .portflow/networks)")
	flags.String("sqlite-path", "", "Database of the sqlite store (default .portflow/networks.db)")
	flags.String("redis-addr", "", "Redis address for --store=redis")
	flags.StringSlice("redact", nil, "Metadata key patterns masked before saving to the store")
}

// options reads the persistent flags. A positional argument stands in for
// --file when the flag is unset.
func options(cmd *cobra.Command, args []string) cli.Options {
	flags := cmd.Flags()
	var opts cli.Options
	opts.File, _ = flags.GetString("file")
	opts.Network, _ = flags.GetString("network")
	opts.Debug, _ = flags.GetBool("debug")
	opts.Store, _ = flags.GetString("store")
	opts.StoreDir, _ = flags.GetString("store-dir")
	opts.SQLitePath, _ = flags.GetString("sqlite-path")
	opts.RedisAddr, _ = flags.GetString("redis-addr")
	opts.Redact, _ = flags.GetStringSlice("redact")
	opts.EncryptionKey = os.Getenv(cli.EncryptionKeyEnv)

	if !flags.Changed("file") && opts.Network == "" && len(args) > 0 {
		opts.File = args[0]
	}
	return opts
}
