// Package tools implements the MCP tool handlers exposed by `habit-tracker serve`.
//
// Each tool follows the same shape:
// - a struct holding its dependencies (store.Store, report.Reporter)
// - Definition() returns the mcp.Tool schema
// - Handle() processes the request and returns a result
//
// Handler failures are returned as tool errors (IsError results), never as
// Go errors, so the assistant sees the message.
package tools

import (
	"strconv"
	"strings"

	"github.com/HendryAvila/habit-tracker/internal/activity"
	"github.com/HendryAvila/habit-tracker/internal/store"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/spf13/cast"
)

// floatArg extracts a number argument. Clients differ in whether they
// send numbers or numeric strings, so both are accepted.
func floatArg(req mcp.CallToolRequest, key string) (float64, bool, error) {
	v, ok := req.GetArguments()[key]
	if !ok || v == nil {
		return 0, false, nil
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, true, err
	}
	return f, true, nil
}

// intArg extracts an integer argument, returning defaultVal when the key
// is missing. Strings are parsed as base-10 integers.
func intArg(req mcp.CallToolRequest, key string, defaultVal int) (int, error) {
	v, ok := req.GetArguments()[key]
	if !ok || v == nil {
		return defaultVal, nil
	}
	if str, isString := v.(string); isString {
		return strconv.Atoi(strings.TrimSpace(str))
	}
	return cast.ToIntE(v)
}

// currentActivities reloads the store so entries written by other
// processes since the server started are included.
func currentActivities(s store.Store) ([]activity.Activity, error) {
	res, err := s.Load()
	if err != nil {
		return nil, err
	}
	return res.Activities, nil
}
