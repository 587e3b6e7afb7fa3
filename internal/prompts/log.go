package prompts

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// LogPrompt handles the habit-log MCP prompt.
// It turns a free-form note about the day into habit_log calls.
type LogPrompt struct{}

// NewLogPrompt creates a LogPrompt.
func NewLogPrompt() *LogPrompt {
	return &LogPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *LogPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("habit-log",
		mcp.WithPromptDescription(
			"Describe what you did in your own words and have it logged as activities.",
		),
		mcp.WithArgument("note",
			mcp.RequiredArgument(),
			mcp.ArgumentDescription("What you did and roughly how long, e.g. 'read for an hour, ran 30 min'"),
		),
	)
}

// Handle processes the habit-log prompt request.
func (p *LogPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	note := req.Params.Arguments["note"]
	if note == "" {
		return nil, fmt.Errorf("note is required")
	}

	return &mcp.GetPromptResult{
		Description: "Log activities from a note",
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(fmt.Sprintf(
					"Here is what I did today:\n\n%s\n\n"+
						"Split it into separate activities and call `habit_log` once per activity "+
						"with the hours (decimals allowed) and a short description. "+
						"If a duration is unclear, ask me before logging it. "+
						"Finish by running `habit_view` with days=7.",
					note,
				)),
			},
		},
	}, nil
}
