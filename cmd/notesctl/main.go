package main

import (
	"context"
	"fmt"
	"notes-marketplace/internal/app"
	"notes-marketplace/internal/logger"
	"os"

	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:           "notesctl",
		Short:         "notesctl - operate the notes marketplace catalog and entitlements",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(listingsCmd())
	rootCmd.AddCommand(accessCmd())
	rootCmd.AddCommand(grantCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(tokenCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// withApp loads the same configuration as the API and hands fn a wired App.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := app.LoadConfig(ctx)
	if err != nil {
		return err
	}

	log := logger.Init("notesctl", cfg.Environment.Name, cfg.Log.Level, "console")
	defer logger.Sync()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	return fn(ctx, a)
}
