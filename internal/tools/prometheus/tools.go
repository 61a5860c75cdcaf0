package prometheus

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/giantswarm/mcp-monitoring/internal/server"
	"github.com/giantswarm/mcp-monitoring/internal/tools"
)

// maxListedMetrics caps list_metrics output
const maxListedMetrics = 100

// Register creates the Prometheus client and registers the Prometheus
// tools, resources and prompts with the MCP server
func Register(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	client, err := NewClient(sc.PrometheusConfig(), sc.Config().Timeout, sc.Logger())
	if err != nil {
		return fmt.Errorf("failed to create Prometheus client: %w", err)
	}

	RegisterPrometheusTools(s, sc, client)
	RegisterPrometheusResources(s, sc, client)
	RegisterPrometheusPrompts(s, sc, client)
	return nil
}

// RegisterPrometheusTools registers Prometheus-related tools with the MCP server
func RegisterPrometheusTools(s *mcpserver.MCPServer, sc *server.ServerContext, client *Client) {
	// prometheus_query tool
	queryTool := mcp.NewTool("prometheus_query",
		mcp.WithDescription("Execute a PromQL query against Prometheus and return the JSON formatted result"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("PromQL query string (e.g., 'up', 'cpu_usage_percent')"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
	)

	s.AddTool(queryTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handlePrometheusQuery(ctx, request, client, sc)
	})

	// prometheus_health tool
	healthTool := mcp.NewTool("prometheus_health",
		mcp.WithDescription("Check Prometheus server health status"),
		mcp.WithReadOnlyHintAnnotation(true),
	)

	s.AddTool(healthTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handlePrometheusHealth(ctx, request, client, sc)
	})

	// Fixed-query tools
	fixedQueries := []struct {
		name        string
		description string
		query       string
	}{
		{"prometheus_cpu", "Get current CPU usage across all instances", cpuUsageQuery},
		{"prometheus_memory", "Get current memory usage across all instances", memoryUsageQuery},
		{"prometheus_services", "Check which services are up/down", servicesUpQuery},
	}

	for _, fq := range fixedQueries {
		tool := mcp.NewTool(fq.name,
			mcp.WithDescription(fq.description),
			mcp.WithReadOnlyHintAnnotation(true),
		)
		s.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return runQueryTool(ctx, fq.name, fq.query, client, sc)
		})
	}

	// execute_range_query tool
	executeRangeQueryTool := mcp.NewTool("execute_range_query",
		mcp.WithDescription("Execute a PromQL range query with start time, end time, and step interval"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("PromQL query string"),
		),
		mcp.WithString("start",
			mcp.Required(),
			mcp.Description("Start time as RFC3339 or Unix timestamp"),
		),
		mcp.WithString("end",
			mcp.Required(),
			mcp.Description("End time as RFC3339 or Unix timestamp"),
		),
		mcp.WithString("step",
			mcp.Required(),
			mcp.Description("Query resolution step width (e.g., '15s', '1m', '1h')"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
	)

	s.AddTool(executeRangeQueryTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleExecuteRangeQuery(ctx, request, client, sc)
	})

	// list_metrics tool
	listMetricsTool := mcp.NewTool("list_metrics",
		mcp.WithDescription("List all available metrics in Prometheus"),
		mcp.WithReadOnlyHintAnnotation(true),
	)

	s.AddTool(listMetricsTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleListMetrics(ctx, request, client, sc)
	})
}

// handlePrometheusQuery handles the prometheus_query tool
func handlePrometheusQuery(ctx context.Context, request mcp.CallToolRequest, client *Client, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	query := request.GetString("query", "")
	if query == "" {
		return tools.ParamError("prometheus_query", "query parameter is required and must be a string"), nil
	}

	return runQueryTool(ctx, "prometheus_query", query, client, sc)
}

// runQueryTool executes query and returns the response body as indented JSON
func runQueryTool(ctx context.Context, name, query string, client *Client, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	callID := tools.NewCallID()
	sc.Logger().Debug("Executing PromQL query", "tool", name, "call_id", callID, "query", query)

	result, err := client.Query(ctx, query)
	if err != nil {
		return tools.ToolFailure(sc, name, "Error executing query", err)
	}

	text, err := tools.FormatJSON(result)
	if err != nil {
		return tools.ToolFailure(sc, name, "Error executing query", err)
	}

	sc.Logger().Debug("PromQL query completed", "tool", name, "call_id", callID, "bytes", len(result))
	return tools.ToolText(name, text), nil
}

// handlePrometheusHealth handles the prometheus_health tool
func handlePrometheusHealth(ctx context.Context, request mcp.CallToolRequest, client *Client, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	sc.Logger().Debug("Checking Prometheus health", "url", client.URL())

	status, err := client.Health(ctx)
	if err != nil {
		return tools.ToolFailure(sc, "prometheus_health", "Error checking health", err)
	}

	text, err := tools.MarshalJSON(status)
	if err != nil {
		return tools.ToolFailure(sc, "prometheus_health", "Error checking health", err)
	}

	return tools.ToolText("prometheus_health", text), nil
}

// handleExecuteRangeQuery handles the execute_range_query tool
func handleExecuteRangeQuery(ctx context.Context, request mcp.CallToolRequest, client *Client, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	const name = "execute_range_query"

	params := make(map[string]string, 4)
	for _, key := range []string{"query", "start", "end", "step"} {
		value := request.GetString(key, "")
		if value == "" {
			return tools.ParamError(name, key+" parameter is required and must be a string"), nil
		}
		params[key] = value
	}

	sc.Logger().Debug("Executing PromQL range query",
		"query", params["query"], "start", params["start"], "end", params["end"], "step", params["step"])

	result, err := client.QueryRange(ctx, params["query"], params["start"], params["end"], params["step"])
	if err != nil {
		return tools.ToolFailure(sc, name, "Error executing range query", err)
	}

	text, err := tools.MarshalJSON(result)
	if err != nil {
		return tools.ToolFailure(sc, name, "Error executing range query", err)
	}

	return tools.ToolText(name, text), nil
}

// handleListMetrics handles the list_metrics tool
func handleListMetrics(ctx context.Context, request mcp.CallToolRequest, client *Client, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	sc.Logger().Debug("Listing metrics")

	metrics, err := client.ListMetrics(ctx)
	if err != nil {
		return tools.ToolFailure(sc, "list_metrics", "Error listing metrics", err)
	}

	return tools.ToolText("list_metrics", formatMetricList(metrics)), nil
}

func formatMetricList(metrics []string) string {
	if len(metrics) == 0 {
		return "No metrics found"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d metrics:\n", len(metrics))
	for i, metric := range metrics {
		if i == maxListedMetrics {
			fmt.Fprintf(&b, "... and %d more metrics\n", len(metrics)-maxListedMetrics)
			break
		}
		fmt.Fprintf(&b, "%d. %s\n", i+1, metric)
	}
	return b.String()
}
