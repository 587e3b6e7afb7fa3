// habit-tracker: a personal activity log with a terminal dashboard.
//
// Usage:
//
//	habit-tracker log 1.5 read    # Log 1.5 hours of reading
//	habit-tracker view            # Dashboard for the last 365 days
//	habit-tracker view 30         # Streak window of 30 days
//	habit-tracker serve           # MCP server on stdio
//	habit-tracker update          # Update to the latest release
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/HendryAvila/habit-tracker/internal/cli"
	"github.com/HendryAvila/habit-tracker/internal/server"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.Execute(ctx, server.Version)
	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
