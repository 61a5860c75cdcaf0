// Package instrumentation holds the server's own telemetry: Prometheus
// metrics about upstream requests and MCP invocations, and OpenTelemetry
// tracing of upstream requests.
package instrumentation
