package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/HendryAvila/habit-tracker/internal/updater"
	"github.com/spf13/cobra"
)

func (a *app) newUpdater() *updater.Updater {
	opts := append([]updater.Option{updater.WithLogger(a.logger)}, a.updaterOpts...)
	return updater.New(opts...)
}

func newUpdateCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "update",
		Short: "Update habit-tracker to the latest release",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			out := cmd.OutOrStdout()

			fmt.Fprintln(out, "🔍 Checking for updates...")
			result, err := a.newUpdater().Apply(ctx, a.version)
			if errors.Is(err, updater.ErrUpToDate) {
				fmt.Fprintf(out, "✅ Already at the latest version (v%s)\n", result.CurrentVersion)
				return nil
			}
			if err != nil {
				if result != nil && result.ReleaseURL != "" {
					return fmt.Errorf("update failed: %w (download manually from %s)", err, result.ReleaseURL)
				}
				return fmt.Errorf("update failed: %w", err)
			}

			fmt.Fprintf(out, "✅ Updated v%s → v%s. Restart habit-tracker to use the new version.\n",
				result.CurrentVersion, result.LatestVersion)
			return nil
		},
	}
}

func newVersionCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "habit-tracker v%s\n", a.version)
		},
	}
}
