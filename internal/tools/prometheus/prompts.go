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

const (
	defaultAlertTimeRange      = "1h"
	defaultPerformanceDuration = "24h"
)

const alertAnalysisTemplate = `Analyze this Prometheus alert:

Alert: %s
Time Range: %s
Data: %s

Please provide:
1. Root cause analysis
2. Impact assessment
3. Recommended actions
4. Prevention strategies
`

const performanceAnalysisTemplate = `Performance Analysis for %s (Last %s):

Metrics: %s

Please analyze:
1. Performance trends
2. Bottlenecks identification
3. Capacity planning recommendations
4. Optimization opportunities
`

// RegisterPrometheusPrompts registers the analysis prompt templates
func RegisterPrometheusPrompts(s *mcpserver.MCPServer, sc *server.ServerContext, client *Client) {
	alertPrompt := mcp.NewPrompt("analyze_alert_prompt",
		mcp.WithPromptDescription("Generate an analysis prompt for a specific alert, including its current ALERTS series"),
		mcp.WithArgument("alert_name",
			mcp.ArgumentDescription("Name of the alert to analyze"),
			mcp.RequiredArgument(),
		),
		mcp.WithArgument("timerange",
			mcp.ArgumentDescription("Time range to consider (default: 1h)"),
		),
	)
	s.AddPrompt(alertPrompt, func(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		return handleAnalyzeAlertPrompt(ctx, request, client, sc)
	})

	performancePrompt := mcp.NewPrompt("performance_analysis_prompt",
		mcp.WithPromptDescription("Generate a performance analysis prompt for a service with CPU, memory, request and error rates"),
		mcp.WithArgument("service",
			mcp.ArgumentDescription("Service name; pods are matched by this prefix"),
			mcp.RequiredArgument(),
		),
		mcp.WithArgument("duration",
			mcp.ArgumentDescription("Period to analyze (default: 24h)"),
		),
	)
	s.AddPrompt(performancePrompt, func(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		return handlePerformanceAnalysisPrompt(ctx, request, client, sc)
	})
}

// handleAnalyzeAlertPrompt handles the analyze_alert_prompt prompt
func handleAnalyzeAlertPrompt(ctx context.Context, request mcp.GetPromptRequest, client *Client, sc *server.ServerContext) (*mcp.GetPromptResult, error) {
	const name = "analyze_alert_prompt"

	alertName := promptArgument(request, "alert_name", "")
	if alertName == "" {
		return tools.PromptFailure(sc, name, "Error generating alert analysis", fmt.Errorf("alert_name argument is required"))
	}
	timeRange := promptArgument(request, "timerange", defaultAlertTimeRange)

	data, err := client.Query(ctx, alertQuery(alertName))
	if err != nil {
		if sc.ErrorPolicy().Propagates() {
			return tools.PromptFailure(sc, name, "Error generating alert analysis", err)
		}
		sc.Logger().Warn("Alert query failed, embedding error marker", "alert", alertName, "error", err.Error())
		data = tools.ErrorMarker(err)
	}

	text, err := tools.FormatJSON(data)
	if err != nil {
		return tools.PromptFailure(sc, name, "Error generating alert analysis", err)
	}

	return tools.PromptText(name, "Analysis of alert "+alertName,
		AlertAnalysisPrompt(alertName, timeRange, text)), nil
}

// handlePerformanceAnalysisPrompt handles the performance_analysis_prompt prompt
func handlePerformanceAnalysisPrompt(ctx context.Context, request mcp.GetPromptRequest, client *Client, sc *server.ServerContext) (*mcp.GetPromptResult, error) {
	const name = "performance_analysis_prompt"

	service := promptArgument(request, "service", "")
	if service == "" {
		return tools.PromptFailure(sc, name, "Error generating performance analysis", fmt.Errorf("service argument is required"))
	}
	duration := promptArgument(request, "duration", defaultPerformanceDuration)

	metrics := tools.QueryAll(ctx, client.Query, serviceQueries(service))

	text, err := tools.MarshalJSON(metrics)
	if err != nil {
		return tools.PromptFailure(sc, name, "Error generating performance analysis", err)
	}

	return tools.PromptText(name, "Performance analysis of "+service,
		PerformanceAnalysisPrompt(service, duration, text)), nil
}

// AlertAnalysisPrompt renders the alert analysis template
func AlertAnalysisPrompt(alertName, timeRange, data string) string {
	return fmt.Sprintf(alertAnalysisTemplate, alertName, timeRange, data)
}

// PerformanceAnalysisPrompt renders the performance analysis template
func PerformanceAnalysisPrompt(service, duration, metrics string) string {
	return fmt.Sprintf(performanceAnalysisTemplate, service, duration, metrics)
}

func promptArgument(request mcp.GetPromptRequest, key, fallback string) string {
	if v := strings.TrimSpace(request.Params.Arguments[key]); v != "" {
		return v
	}
	return fallback
}
