package cli

import (
	"context"
	"fmt"
	"io"

	habitserver "github.com/HendryAvila/habit-tracker/internal/server"
	"github.com/HendryAvila/habit-tracker/internal/updater"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCommand(a *app) *cobra.Command {
	var noUpdateCheck bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server on stdio",
		Long: `Run a Model Context Protocol server on stdin/stdout so AI assistants can
log activities and read the dashboard. Add it to your assistant's MCP config:

  {
    "mcpServers": {
      "habit-tracker": {
        "command": "habit-tracker",
        "args": ["serve"]
      }
    }
  }`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.openStore()
			if err != nil {
				return err
			}

			srv := habitserver.New(habitserver.Deps{
				Store:    s,
				Reporter: a.reporter,
				Days:     a.cfg.View.Days,
				Logger:   a.logger,
			})

			if !noUpdateCheck {
				// stderr only: stdout carries the MCP transport.
				go checkForUpdates(cmd.Context(), a.newUpdater(), a.version, cmd.ErrOrStderr())
			}

			a.logger.Info("serving MCP on stdio", zap.String("store", s.Path()))
			return server.ServeStdio(srv)
		},
	}

	cmd.Flags().BoolVar(&noUpdateCheck, "no-update-check", false, "skip the background release check")
	return cmd
}

// checkForUpdates prints a notice when a newer release exists. Failures
// are ignored.
func checkForUpdates(ctx context.Context, u *updater.Updater, version string, w io.Writer) {
	if ctx == nil {
		ctx = context.Background()
	}
	result := u.Check(ctx, version)
	if !result.UpdateAvailable {
		return
	}
	fmt.Fprintf(w,
		"\n  📦 Update available: v%s → v%s\n"+
			"     Run: habit-tracker update\n"+
			"     Release: %s\n\n",
		result.CurrentVersion, result.LatestVersion, result.ReleaseURL,
	)
}
