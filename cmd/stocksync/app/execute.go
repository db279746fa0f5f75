package app

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Execute runs the stocksync CLI application with the given arguments.
// This is the main entry point called from main.go.
func (a *App) Execute(ctx context.Context, args []string) error {
	rootCmd := a.createRootCommand()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

// ExitOnError prints the error and exits with a non-zero status.
func ExitOnError(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

// createRootCommand creates the root cobra command with all subcommands.
func (a *App) createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "stocksync",
		Short:   "Supplier inventory reconciliation for the shop catalog",
		Version: a.version,
		Long: `Stocksync reconciles stock quantities reported by supplier inventory
feeds against the shop catalog at a specific fulfillment location, and
pushes corrected quantities back in idempotent bulk writes.

Each configured supplier/location pair runs as an independent pipeline:
catalog listing, supplier fetch, reconciliation, bulk update.`,
		PersistentPreRunE: a.setupCommand,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output (shortcut for --log-level=debug)")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "minimal output (shortcut for --log-level=warn)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: trace, debug, info, warn, error (overrides -v/-q)")
	rootCmd.PersistentFlags().String("suppliers", "", "suppliers file (default ./"+DefaultSuppliersFile+")")

	rootCmd.SetVersionTemplate("stocksync {{.Version}}\n")

	rootCmd.AddCommand(a.newSyncCommand())
	rootCmd.AddCommand(a.newLocationsCommand())
	rootCmd.AddCommand(a.newVerifyCommand())
	rootCmd.AddCommand(a.newVersionCommand())

	return rootCmd
}

// setupCommand is called before any command runs.
func (a *App) setupCommand(cmd *cobra.Command, _ []string) error {
	verbose, _ := cmd.Flags().GetBool("verbose")
	quiet, _ := cmd.Flags().GetBool("quiet")
	logLevel, _ := cmd.Flags().GetString("log-level")
	suppliersFile, _ := cmd.Flags().GetString("suppliers")

	a.config.UpdateFromFlags(verbose, quiet, logLevel, suppliersFile)

	// Reinitialize logger with updated config
	logger := NewLogger(a.config)
	a.logger = &logger

	return a.config.LoadSuppliers()
}
