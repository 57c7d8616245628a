package server

import (
	"context"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/zillow/mcp-mockserver/mcp"
)

// EchoToolName is the single tool the mock server advertises.
const EchoToolName = "echo"

func newEchoTool() mcp.Tool {
	return mcp.NewTool(EchoToolName,
		mcp.WithDescription("Echoes back the input"),
		mcp.WithString("message", mcp.Required()),
	)
}

func handleEcho(_ context.Context, arguments gjson.Result) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText("Echo: " + argumentText(arguments.Get("message"))), nil
}

// argumentText renders an argument value as text. Strings are used as-is, a
// missing or null value is empty and anything else is written as compact JSON.
func argumentText(value gjson.Result) string {
	switch value.Type {
	case gjson.String:
		return value.Str
	case gjson.Null:
		return ""
	default:
		return string(pretty.Ugly([]byte(value.Raw)))
	}
}
