package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/HendryAvila/habit-tracker/internal/report"
	"github.com/HendryAvila/habit-tracker/internal/store"
	"github.com/mark3labs/mcp-go/mcp"
)

// StatsTool handles the habit_stats MCP tool.
type StatsTool struct {
	store       store.Store
	reporter    *report.Reporter
	defaultDays int
}

// NewStatsTool creates a StatsTool.
func NewStatsTool(s store.Store, r *report.Reporter, defaultDays int) *StatsTool {
	return &StatsTool{store: s, reporter: r, defaultDays: defaultDays}
}

// Definition returns the MCP tool definition for habit_stats.
func (t *StatsTool) Definition() mcp.Tool {
	return mcp.NewTool("habit_stats",
		mcp.WithDescription(
			"Return the dashboard numbers as JSON (streak, summary, per-day and per-month hours) "+
				"for further analysis.",
		),
		mcp.WithNumber("days",
			mcp.Description(fmt.Sprintf("Trailing window for the streak (default: %d)", t.defaultDays)),
		),
	)
}

// Handle processes the habit_stats tool call.
func (t *StatsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	days, err := intArg(req, "days", t.defaultDays)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("'days' must be a whole number: %v", err)), nil
	}
	if days < 0 {
		return mcp.NewToolResultError(fmt.Sprintf("'days' cannot be negative, got %d", days)), nil
	}

	acts, err := currentActivities(t.store)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to read activities: %v", err)), nil
	}
	d := t.reporter.Build(acts, days)
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode stats: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
