package prometheus

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/giantswarm/mcp-monitoring/internal/server"
	"github.com/giantswarm/mcp-monitoring/internal/tools"
)

const (
	firingAlertsURI      = "prometheus://alerts/firing"
	metricURIPrefix      = "prometheus://metrics/"
	metricURITemplate    = metricURIPrefix + "{metric_name}"
	dashboardOverviewURI = "prometheus://dashboard/overview"
)

// RegisterPrometheusResources registers the read-only Prometheus resources
func RegisterPrometheusResources(s *mcpserver.MCPServer, sc *server.ServerContext, client *Client) {
	firingAlerts := mcp.NewResource(firingAlertsURI, "Firing alerts",
		mcp.WithResourceDescription("Currently firing alerts, from the ALERTS series"),
		mcp.WithMIMEType(tools.MIMETypeJSON),
	)
	s.AddResource(firingAlerts, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleFiringAlerts(ctx, request, client, sc)
	})

	metric := mcp.NewResourceTemplate(metricURITemplate, "Metric",
		mcp.WithTemplateDescription("Current value of a specific metric"),
		mcp.WithTemplateMIMEType(tools.MIMETypeJSON),
	)
	s.AddResourceTemplate(metric, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleMetric(ctx, request, client, sc)
	})

	overview := mcp.NewResource(dashboardOverviewURI, "Dashboard overview",
		mcp.WithResourceDescription("CPU, memory and disk usage plus the number of firing alerts"),
		mcp.WithMIMEType(tools.MIMETypeJSON),
	)
	s.AddResource(overview, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleDashboardOverview(ctx, request, client, sc)
	})
}

// handleFiringAlerts handles the firing alerts resource
func handleFiringAlerts(ctx context.Context, request mcp.ReadResourceRequest, client *Client, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	return readQueryResource(ctx, request.Params.URI, firingAlertsQuery, client, sc)
}

// handleMetric handles the metric resource template
func handleMetric(ctx context.Context, request mcp.ReadResourceRequest, client *Client, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	uri := request.Params.URI

	name, err := metricName(request)
	if err != nil {
		return tools.ResourceFailure(sc, uri, "Error reading metric", err)
	}

	return readQueryResource(ctx, uri, name, client, sc)
}

// handleDashboardOverview handles the dashboard overview resource
func handleDashboardOverview(ctx context.Context, request mcp.ReadResourceRequest, client *Client, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	uri := request.Params.URI
	sc.Logger().Debug("Building dashboard overview", "queries", len(dashboardQueries))

	overview := tools.QueryAll(ctx, client.Query, dashboardQueries)

	text, err := tools.MarshalJSON(overview)
	if err != nil {
		return tools.ResourceFailure(sc, uri, "Error building dashboard overview", err)
	}

	return tools.ResourceText(uri, tools.MIMETypeJSON, text), nil
}

func readQueryResource(ctx context.Context, uri, query string, client *Client, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	sc.Logger().Debug("Reading resource", "uri", uri, "query", query)

	result, err := client.Query(ctx, query)
	if err != nil {
		return tools.ResourceFailure(sc, uri, "Error reading resource", err)
	}

	text, err := tools.FormatJSON(result)
	if err != nil {
		return tools.ResourceFailure(sc, uri, "Error reading resource", err)
	}

	return tools.ResourceText(uri, tools.MIMETypeJSON, text), nil
}

// metricName extracts {metric_name} from the template arguments, falling
// back to the request URI.
func metricName(request mcp.ReadResourceRequest) (string, error) {
	if v, ok := request.Params.Arguments["metric_name"]; ok {
		switch name := v.(type) {
		case string:
			if name != "" {
				return name, nil
			}
		case []string:
			if len(name) > 0 && name[0] != "" {
				return name[0], nil
			}
		case []interface{}:
			if len(name) > 0 {
				if s, ok := name[0].(string); ok && s != "" {
					return s, nil
				}
			}
		}
	}

	raw, ok := strings.CutPrefix(request.Params.URI, metricURIPrefix)
	if !ok || raw == "" {
		return "", fmt.Errorf("no metric name in %q", request.Params.URI)
	}
	name, err := url.PathUnescape(raw)
	if err != nil {
		return "", fmt.Errorf("invalid metric name in %q: %w", request.Params.URI, err)
	}
	return name, nil
}
