package prompts

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
)

func promptReq(args map[string]string) mcp.GetPromptRequest {
	req := mcp.GetPromptRequest{}
	req.Params.Arguments = args
	return req
}

func promptText(t *testing.T, r *mcp.GetPromptResult) string {
	t.Helper()
	if len(r.Messages) != 1 {
		t.Fatalf("got %d messages, want 1", len(r.Messages))
	}
	tc, ok := r.Messages[0].Content.(mcp.TextContent)
	if !ok {
		t.Fatalf("content is %T, want mcp.TextContent", r.Messages[0].Content)
	}
	return tc.Text
}

func TestReviewPrompt(t *testing.T) {
	p := NewReviewPrompt(365)
	if def := p.Definition(); def.Name != "habit-review" {
		t.Errorf("prompt name = %q, want habit-review", def.Name)
	}

	tests := []struct {
		name string
		args map[string]string
		want string
	}{
		{"default window", nil, "days=365"},
		{"explicit window", map[string]string{"days": "14"}, "days=14"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := p.Handle(context.Background(), promptReq(tt.args))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if text := promptText(t, result); !strings.Contains(text, tt.want) {
				t.Errorf("prompt missing %q:\n%s", tt.want, text)
			}
		})
	}
}

func TestReviewPrompt_RejectsBadDays(t *testing.T) {
	for _, days := range []string{"soon", "-3"} {
		if _, err := NewReviewPrompt(30).Handle(context.Background(), promptReq(map[string]string{"days": days})); err == nil {
			t.Errorf("days=%q: expected error", days)
		}
	}
}

func TestLogPrompt(t *testing.T) {
	p := NewLogPrompt()
	if def := p.Definition(); def.Name != "habit-log" {
		t.Errorf("prompt name = %q, want habit-log", def.Name)
	}

	result, err := p.Handle(context.Background(), promptReq(map[string]string{"note": "ran 30 min"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	text := promptText(t, result)
	if !strings.Contains(text, "ran 30 min") || !strings.Contains(text, "habit_log") {
		t.Errorf("unexpected prompt:\n%s", text)
	}

	if _, err := p.Handle(context.Background(), promptReq(nil)); err == nil {
		t.Error("expected error without note")
	}
}
