// Package prompts implements MCP prompt handlers.
//
// MCP prompts are user-triggered workflows (like slash commands) that
// instruct the AI to execute a specific sequence. Unlike tools (which
// the AI calls), prompts are initiated by the user.
package prompts

import (
	"context"
	"fmt"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"
)

// ReviewPrompt handles the habit-review MCP prompt.
// It asks the AI to read the dashboard and comment on consistency.
type ReviewPrompt struct {
	defaultDays int
}

// NewReviewPrompt creates a ReviewPrompt.
func NewReviewPrompt(defaultDays int) *ReviewPrompt {
	return &ReviewPrompt{defaultDays: defaultDays}
}

// Definition returns the MCP prompt definition for registration.
func (p *ReviewPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("habit-review",
		mcp.WithPromptDescription(
			"Review your logged activity: streak, where the hours went "+
				"and what to focus on next.",
		),
		mcp.WithArgument("days",
			mcp.ArgumentDescription(fmt.Sprintf("Streak window in days. Default: %d", p.defaultDays)),
		),
	)
}

// Handle processes the habit-review prompt request.
func (p *ReviewPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	days := p.defaultDays
	if raw, ok := req.Params.Arguments["days"]; ok && raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("days must be a non-negative integer, got %q", raw)
		}
		days = n
	}

	return &mcp.GetPromptResult{
		Description: "Activity review",
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(fmt.Sprintf(
					"Please run `habit_stats` with days=%d to read my activity log.\n\n"+
						"Then:\n"+
						"1. Tell me my current streak and how it compares to my active days\n"+
						"2. Point out the strongest and weakest days of the last week\n"+
						"3. Compare the months in the overview\n"+
						"4. Suggest one small, concrete goal for the coming week",
					days,
				)),
			},
		},
	}, nil
}
