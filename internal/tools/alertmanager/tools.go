package alertmanager

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/common/model"

	"github.com/giantswarm/mcp-monitoring/internal/server"
	"github.com/giantswarm/mcp-monitoring/internal/tools"
)

const defaultCreatedBy = "mcp-server"

// Register creates the Alertmanager client and registers the Alertmanager
// tools with the MCP server
func Register(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	client, err := NewClient(sc.AlertmanagerConfig(), sc.Config().Timeout, sc.Logger())
	if err != nil {
		return fmt.Errorf("failed to create Alertmanager client: %w", err)
	}

	RegisterAlertmanagerTools(s, sc, client)
	return nil
}

// RegisterAlertmanagerTools registers Alertmanager-related tools with the MCP server
func RegisterAlertmanagerTools(s *mcpserver.MCPServer, sc *server.ServerContext, client *Client) {
	// alertmanager_get_alerts tool
	getAlertsTool := mcp.NewTool("alertmanager_get_alerts",
		mcp.WithDescription("Get alerts from Alertmanager"),
		mcp.WithBoolean("active",
			mcp.DefaultBool(true),
			mcp.Description("Only return active alerts (default: true)"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
	)

	s.AddTool(getAlertsTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleGetAlerts(ctx, request, client, sc)
	})

	// alertmanager_silence tool
	silenceTool := mcp.NewTool("alertmanager_silence",
		mcp.WithDescription("Create a silence for an alert in Alertmanager"),
		mcp.WithString("alert_name",
			mcp.Required(),
			mcp.Description("Name of the alert to silence (exact match on the alertname label)"),
		),
		mcp.WithString("duration",
			mcp.Required(),
			mcp.Description("Silence duration in whole hours (e.g., '2h')"),
		),
		mcp.WithString("reason",
			mcp.Required(),
			mcp.Description("Why the alert is silenced; stored as the silence comment"),
		),
		mcp.WithString("created_by",
			mcp.DefaultString(defaultCreatedBy),
			mcp.Description("Author recorded on the silence (default: mcp-server)"),
		),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(false),
	)

	s.AddTool(silenceTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleCreateSilence(ctx, request, client, sc)
	})
}

// handleGetAlerts handles the alertmanager_get_alerts tool
func handleGetAlerts(ctx context.Context, request mcp.CallToolRequest, client *Client, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	const name = "alertmanager_get_alerts"

	active := request.GetBool("active", true)
	sc.Logger().Debug("Listing alerts", "url", client.URL(), "active", active)

	alerts, err := client.ListAlerts(ctx, active)
	if err != nil {
		return tools.ToolFailure(sc, name, "Error getting alerts from Alertmanager", err)
	}

	text, err := tools.FormatJSON(alerts)
	if err != nil {
		return tools.ToolFailure(sc, name, "Error getting alerts from Alertmanager", err)
	}

	return tools.ToolText(name, text), nil
}

// handleCreateSilence handles the alertmanager_silence tool
func handleCreateSilence(ctx context.Context, request mcp.CallToolRequest, client *Client, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	const name = "alertmanager_silence"

	params := make(map[string]string, 3)
	for _, key := range []string{"alert_name", "duration", "reason"} {
		value := request.GetString(key, "")
		if value == "" {
			return tools.ParamError(name, key+" parameter is required and must be a string"), nil
		}
		params[key] = value
	}
	createdBy := request.GetString("created_by", defaultCreatedBy)
	if createdBy == "" {
		createdBy = defaultCreatedBy
	}

	callID := tools.NewCallID()
	sc.Logger().Info("Creating silence", "call_id", callID,
		"alert", params["alert_name"], "duration", params["duration"], "created_by", createdBy)

	matchers := []*model.Matcher{AlertNameMatcher(params["alert_name"])}
	result, err := client.CreateSilence(ctx, matchers, params["duration"], createdBy, params["reason"])
	if errors.Is(err, ErrInvalidDuration) {
		return tools.ParamError(name, err.Error()), nil
	}
	if err != nil {
		return tools.ToolFailure(sc, name, "Error creating silence", err)
	}

	text, err := tools.FormatJSON(result)
	if err != nil {
		return tools.ToolFailure(sc, name, "Error creating silence", err)
	}

	sc.Logger().Debug("Silence created", "call_id", callID)
	return tools.ToolText(name, text), nil
}
