// Package resources implements MCP resource handlers.
//
// Resources provide read-only data that the host can consume for context.
// They use URI-based addressing (habit://...) following MCP conventions.
package resources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/HendryAvila/habit-tracker/internal/activity"
	"github.com/HendryAvila/habit-tracker/internal/report"
	"github.com/HendryAvila/habit-tracker/internal/store"
	"github.com/mark3labs/mcp-go/mcp"
)

const (
	DashboardURI  = "habit://dashboard"
	ActivitiesURI = "habit://activities"
)

// Handler manages the habit resource endpoints.
type Handler struct {
	store    store.Store
	reporter *report.Reporter
	days     int
}

// NewHandler creates a resource Handler with its dependencies.
func NewHandler(s store.Store, r *report.Reporter, days int) *Handler {
	return &Handler{store: s, reporter: r, days: days}
}

// DashboardResource returns the MCP resource definition for the dashboard.
func (h *Handler) DashboardResource() mcp.Resource {
	return mcp.NewResource(
		DashboardURI,
		"Activity Dashboard",
		mcp.WithResourceDescription("Current streak, totals, last 7 days and monthly overview"),
		mcp.WithMIMEType("text/plain"),
	)
}

// HandleDashboard renders the dashboard with the configured window.
func (h *Handler) HandleDashboard(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	res, err := h.store.Load()
	if err != nil {
		return errorResource(req.Params.URI, err.Error()), nil
	}
	d := h.reporter.Build(res.Activities, h.days)
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "text/plain",
			Text:     d.String(),
		},
	}, nil
}

// ActivitiesResource returns the MCP resource definition for the raw log.
func (h *Handler) ActivitiesResource() mcp.Resource {
	return mcp.NewResource(
		ActivitiesURI,
		"Activity Log",
		mcp.WithResourceDescription("Every logged activity in logging order"),
		mcp.WithMIMEType("application/json"),
	)
}

// HandleActivities returns the full activity sequence as JSON.
func (h *Handler) HandleActivities(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	res, err := h.store.Load()
	if err != nil {
		return errorResource(req.Params.URI, err.Error()), nil
	}
	acts := res.Activities
	if acts == nil {
		acts = []activity.Activity{}
	}
	data, err := json.MarshalIndent(acts, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling activities: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// errorResource returns a plain-text resource carrying an error message.
func errorResource(uri, message string) []mcp.ResourceContents {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "text/plain",
			Text:     fmt.Sprintf("Error: %s", message),
		},
	}
}
