// Package main provides relatedctl, an operator CLI for the related-content
// resolver.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var opts globalOptions

	cmd := &cobra.Command{
		Use:   "relatedctl",
		Short: "Inspect related-content resolution",
		Long: `Inspect related-content resolution against the configured database.

Examples:
  relatedctl migrate                          # Create or widen content tables
  relatedctl probe homestays                  # Show what a collection can be matched on
  relatedctl resolve destinations shillong    # Resolve the bundle of one record
  relatedctl token --subject ops              # Mint an admin token for /api/_admin
`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to app.yaml (default: search . and ../..)")
	cmd.PersistentFlags().BoolVar(&opts.verbose, "verbose", false, "Log resolver activity to stderr")

	cmd.AddCommand(migrateCmd(&opts), probeCmd(&opts), resolveCmd(&opts), tokenCmd(&opts))
	return cmd
}
