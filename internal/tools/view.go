package tools

import (
	"context"
	"fmt"

	"github.com/HendryAvila/habit-tracker/internal/report"
	"github.com/HendryAvila/habit-tracker/internal/store"
	"github.com/mark3labs/mcp-go/mcp"
)

// ViewTool handles the habit_view MCP tool.
type ViewTool struct {
	store       store.Store
	reporter    *report.Reporter
	defaultDays int
}

// NewViewTool creates a ViewTool. defaultDays is used when the request
// does not carry a days argument.
func NewViewTool(s store.Store, r *report.Reporter, defaultDays int) *ViewTool {
	return &ViewTool{store: s, reporter: r, defaultDays: defaultDays}
}

// Definition returns the MCP tool definition for habit_view.
func (t *ViewTool) Definition() mcp.Tool {
	return mcp.NewTool("habit_view",
		mcp.WithDescription(
			"Render the activity dashboard as text: current streak, totals, "+
				"a 7-day bar chart and the last three months.",
		),
		mcp.WithNumber("days",
			mcp.Description(fmt.Sprintf("Trailing window for the streak (default: %d)", t.defaultDays)),
		),
	)
}

// Handle processes the habit_view tool call.
func (t *ViewTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
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
	return mcp.NewToolResultText(d.String()), nil
}
