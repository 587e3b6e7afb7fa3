package tools

import (
	"context"
	"fmt"

	"github.com/HendryAvila/habit-tracker/internal/store"
	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"
)

// LogTool handles the habit_log MCP tool.
type LogTool struct {
	store  store.Store
	logger *zap.Logger
}

// NewLogTool creates a LogTool writing to store.
func NewLogTool(s store.Store, logger *zap.Logger) *LogTool {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogTool{store: s, logger: logger.With(zap.String("mod", "tools.log"))}
}

// Definition returns the MCP tool definition for habit_log.
func (t *LogTool) Definition() mcp.Tool {
	return mcp.NewTool("habit_log",
		mcp.WithDescription(
			"Log time spent on an activity. The entry is stamped with the current time "+
				"and appended to the user's activity log.",
		),
		mcp.WithNumber("hours",
			mcp.Required(),
			mcp.Description("Hours spent, decimals allowed (e.g. 1.5)"),
		),
		mcp.WithString("description",
			mcp.Required(),
			mcp.Description("What was done (e.g. 'read', 'morning run')"),
		),
	)
}

// Handle processes the habit_log tool call.
func (t *LogTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	hours, ok, err := floatArg(req, "hours")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("'hours' must be a number: %v", err)), nil
	}
	if !ok {
		return mcp.NewToolResultError("'hours' is required"), nil
	}

	// Stored as given, like the CLI: an empty description is a valid entry.
	description, ok := req.GetArguments()["description"].(string)
	if !ok {
		return mcp.NewToolResultError("'description' is required"), nil
	}

	a, err := t.store.Append(hours, description)
	if err != nil {
		t.logger.Error("append failed", zap.Error(err))
		return mcp.NewToolResultError(fmt.Sprintf("failed to log activity: %v", err)), nil
	}
	t.logger.Debug("activity logged", zap.String("id", a.ID), zap.Float64("hours", a.Hours))

	return mcp.NewToolResultText(fmt.Sprintf(
		"Activity logged successfully!\n%.1f hrs: %s (%s)",
		a.Hours, a.Description, a.Timestamp.Format("2006-01-02 15:04 MST"),
	)), nil
}
