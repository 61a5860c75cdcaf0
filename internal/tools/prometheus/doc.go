// Package prometheus provides MCP tools, resources and prompts backed by a
// Prometheus server.
//
// Tools:
//   - prometheus_query: Execute a PromQL instant query
//   - prometheus_health: Probe the /-/healthy endpoint
//   - prometheus_cpu, prometheus_memory: Node CPU and memory usage in percent
//   - prometheus_services: The "up" series of every target
//   - execute_range_query: Execute PromQL range queries with time bounds
//   - list_metrics: List all available metric names
//
// Resources:
//   - prometheus://alerts/firing
//   - prometheus://metrics/{metric_name}
//   - prometheus://dashboard/overview
//
// Prompts:
//   - analyze_alert_prompt: {"alert_name": "HighMemoryUsage", "timerange": "2h"}
//   - performance_analysis_prompt: {"service": "api", "duration": "24h"}
//
// Instant query results are returned exactly as Prometheus sent them, only
// re-indented. Aggregate views run their queries concurrently and report a
// failed query as {"error": "..."} in its own slot.
package prometheus
