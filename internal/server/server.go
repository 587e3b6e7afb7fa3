// Package server wires the MCP components and creates the server instance.
//
// This is the composition root for `habit-tracker serve`: it receives the
// already opened store and injects it into the tools, prompts and
// resources. No business logic lives here, only wiring.
package server

import (
	"github.com/HendryAvila/habit-tracker/internal/prompts"
	"github.com/HendryAvila/habit-tracker/internal/report"
	"github.com/HendryAvila/habit-tracker/internal/resources"
	"github.com/HendryAvila/habit-tracker/internal/store"
	"github.com/HendryAvila/habit-tracker/internal/tools"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

// Name is the MCP server name announced to clients.
const Name = "habit-tracker"

// Version is set at build time via ldflags.
var Version = "dev"

// Deps are the shared dependencies of every handler.
type Deps struct {
	Store    store.Store
	Reporter *report.Reporter
	// Days is the default streak window for view/stats.
	Days   int
	Logger *zap.Logger
}

// New creates the MCP server with all tools, prompts and resources
// registered. The caller owns the store and closes it.
func New(deps Deps) *server.MCPServer {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	reporter := deps.Reporter
	if reporter == nil {
		reporter = report.New()
	}

	s := server.NewMCPServer(
		Name,
		Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	// --- Tools ---

	logTool := tools.NewLogTool(deps.Store, logger)
	s.AddTool(logTool.Definition(), logTool.Handle)

	viewTool := tools.NewViewTool(deps.Store, reporter, deps.Days)
	s.AddTool(viewTool.Definition(), viewTool.Handle)

	statsTool := tools.NewStatsTool(deps.Store, reporter, deps.Days)
	s.AddTool(statsTool.Definition(), statsTool.Handle)

	// --- Prompts ---

	reviewPrompt := prompts.NewReviewPrompt(deps.Days)
	s.AddPrompt(reviewPrompt.Definition(), reviewPrompt.Handle)

	logPrompt := prompts.NewLogPrompt()
	s.AddPrompt(logPrompt.Definition(), logPrompt.Handle)

	// --- Resources ---

	resourceHandler := resources.NewHandler(deps.Store, reporter, deps.Days)
	s.AddResource(resourceHandler.DashboardResource(), resourceHandler.HandleDashboard)
	s.AddResource(resourceHandler.ActivitiesResource(), resourceHandler.HandleActivities)

	logger.Debug("mcp server ready", zap.String("mod", "server"), zap.String("store", deps.Store.Path()))
	return s
}

// serverInstructions tells the assistant how to use the tools.
func serverInstructions() string {
	return `You have access to habit-tracker, the user's personal activity log.

## Tools

- habit_log: record time spent on something (hours + description). Call it when
  the user tells you what they did ("I read for an hour", "ran 30 minutes").
  Convert minutes to decimal hours. One call per activity.
- habit_view: the text dashboard (streak, totals, last 7 days, last 3 months).
  Show it verbatim when the user asks how they are doing.
- habit_stats: the same numbers as JSON, for your own analysis.

## Rules

- Entries are permanent: there is no edit or delete. Confirm ambiguous
  durations with the user before logging.
- The streak counts consecutive days with at least one entry, ending today.
- Never invent activities the user did not mention.`
}
