// Package cmd provides the command-line interface for the MCP monitoring server.
//
// This package implements the Cobra CLI framework to provide commands for:
// - Starting the MCP server with various transport options (stdio, sse, http)
// - Printing the version
//
// The serve command, which is also the root command's default action, loads
// the configuration, registers the Prometheus and Alertmanager tools,
// resources and prompts, and runs the selected transport until it is
// interrupted. HTTP transports additionally serve Prometheus metrics of the
// server itself on /metrics.
//
// Environment Variables:
//   - PROMETHEUS_URL: Prometheus server URL (default http://localhost:9090)
//   - PROMETHEUS_USERNAME, PROMETHEUS_PASSWORD: Optional basic auth
//   - PROMETHEUS_TOKEN: Optional bearer token
//   - PROMETHEUS_ORGID: Optional X-Scope-OrgID for multi-tenant setups
//   - ALERTMANAGER_URL: Alertmanager URL (default http://localhost:9093)
//   - ALERTMANAGER_USERNAME, ALERTMANAGER_PASSWORD, ALERTMANAGER_TOKEN: Optional auth
//   - PROMETHEUS_TIMEOUT: Upstream request timeout in seconds (default 30)
//   - MCP_ERROR_POLICY: "report" (default) or "propagate"
//   - MCP_DEBUG: Enable debug logging
//
// Command-line flags override the environment.
//
// Example usage:
//
//	mcp-monitoring --prometheus-url http://prometheus:9090
//	mcp-monitoring serve --transport sse --http-addr :8080
//	mcp-monitoring serve --transport streamable-http --error-policy propagate
package cmd
