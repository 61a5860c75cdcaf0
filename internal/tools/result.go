package tools

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/giantswarm/mcp-monitoring/internal/instrumentation"
	"github.com/giantswarm/mcp-monitoring/internal/server"
)

// Invocation kinds, used as the "kind" metric label.
const (
	KindTool     = "tool"
	KindResource = "resource"
	KindPrompt   = "prompt"
)

// MIMETypeJSON is the MIME type of every JSON resource
const MIMETypeJSON = "application/json"

// NewCallID returns a correlation id for the log lines of one invocation
func NewCallID() string {
	return uuid.NewString()
}

// ParamError reports an invalid or missing tool parameter. Parameter errors
// are always returned in-band, whatever the error policy.
func ParamError(name, msg string) *mcp.CallToolResult {
	instrumentation.ObserveCall(KindTool, name, instrumentation.OutcomeError)
	return mcp.NewToolResultError("Error: " + msg)
}

// ToolText returns a successful tool result
func ToolText(name, text string) *mcp.CallToolResult {
	instrumentation.ObserveCall(KindTool, name, instrumentation.OutcomeSuccess)
	return mcp.NewToolResultText(text)
}

// ToolFailure applies the error policy to a failed tool call. With the
// report policy the caller gets "<action>: <err>" as an error result; with
// the propagate policy err is returned to the MCP framework.
func ToolFailure(sc *server.ServerContext, name, action string, err error) (*mcp.CallToolResult, error) {
	instrumentation.ObserveCall(KindTool, name, instrumentation.OutcomeError)
	sc.Logger().Error("Tool call failed", "tool", name, "error", err.Error())

	if sc.ErrorPolicy().Propagates() {
		return nil, fmt.Errorf("%s: %w", action, err)
	}
	return mcp.NewToolResultError(fmt.Sprintf("%s: %v", action, err)), nil
}

// ResourceText returns the contents of a successful resource read
func ResourceText(uri, mimeType, text string) []mcp.ResourceContents {
	instrumentation.ObserveCall(KindResource, uri, instrumentation.OutcomeSuccess)
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: mimeType,
			Text:     text,
		},
	}
}

// ResourceFailure applies the error policy to a failed resource read. The
// report policy returns the message as plain text contents.
func ResourceFailure(sc *server.ServerContext, uri, action string, err error) ([]mcp.ResourceContents, error) {
	instrumentation.ObserveCall(KindResource, uri, instrumentation.OutcomeError)
	sc.Logger().Error("Resource read failed", "uri", uri, "error", err.Error())

	if sc.ErrorPolicy().Propagates() {
		return nil, fmt.Errorf("%s: %w", action, err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "text/plain",
			Text:     fmt.Sprintf("%s: %v", action, err),
		},
	}, nil
}

// PromptText wraps generated prompt text as a single user message
func PromptText(name, description, text string) *mcp.GetPromptResult {
	instrumentation.ObserveCall(KindPrompt, name, instrumentation.OutcomeSuccess)
	return mcp.NewGetPromptResult(description, []mcp.PromptMessage{
		mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(text)),
	})
}

// PromptFailure records a prompt that could not be generated and returns
// the error for the MCP framework.
func PromptFailure(sc *server.ServerContext, name, action string, err error) (*mcp.GetPromptResult, error) {
	instrumentation.ObserveCall(KindPrompt, name, instrumentation.OutcomeError)
	sc.Logger().Error("Prompt generation failed", "prompt", name, "error", err.Error())
	return nil, fmt.Errorf("%s: %w", action, err)
}
