package instrumentation

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricNamespace prefixes every metric exported by the server.
const MetricNamespace = "mcp_monitoring"

var (
	// Registry holds the server's own metrics. It is separate from the
	// default registry so tests and embedders get a clean set.
	Registry = prometheus.NewRegistry()

	upstreamRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: prometheus.BuildFQName(MetricNamespace, "upstream", "requests_total"),
			Help: "Total number of requests sent to upstream APIs, per upstream, path and status code.",
		},
		[]string{"upstream", "target_path", "code"},
	)

	upstreamFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: prometheus.BuildFQName(MetricNamespace, "upstream", "requests_failed_total"),
			Help: "Total number of upstream requests that failed before a response was received.",
		},
		[]string{"upstream", "target_path"},
	)

	upstreamDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:                        prometheus.BuildFQName(MetricNamespace, "upstream", "request_duration_seconds"),
			Help:                        "Duration of upstream API requests, per upstream and path, in seconds.",
			Buckets:                     prometheus.ExponentialBuckets(0.01, 2, 12),
			NativeHistogramBucketFactor: 1.1,
		},
		[]string{"upstream", "target_path"},
	)

	handlerCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: prometheus.BuildFQName(MetricNamespace, "mcp", "calls_total"),
			Help: "Total number of MCP tool, resource and prompt invocations, per kind, name and outcome.",
		},
		[]string{"kind", "name", "outcome"},
	)
)

func init() {
	Registry.MustRegister(
		upstreamRequests,
		upstreamFailures,
		upstreamDuration,
		handlerCalls,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// ObserveUpstreamResponse records an upstream request that produced a response.
func ObserveUpstreamResponse(upstream, path string, code int, elapsed time.Duration) {
	upstreamRequests.WithLabelValues(upstream, path, strconv.Itoa(code)).Inc()
	upstreamDuration.WithLabelValues(upstream, path).Observe(elapsed.Seconds())
}

// ObserveUpstreamFailure records an upstream request that failed at the
// transport level.
func ObserveUpstreamFailure(upstream, path string, elapsed time.Duration) {
	upstreamFailures.WithLabelValues(upstream, path).Inc()
	upstreamDuration.WithLabelValues(upstream, path).Observe(elapsed.Seconds())
}

// Outcome labels for ObserveCall.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// ObserveCall records one MCP invocation.
func ObserveCall(kind, name, outcome string) {
	handlerCalls.WithLabelValues(kind, name, outcome).Inc()
}

// Handler exposes Registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{Registry: Registry})
}
