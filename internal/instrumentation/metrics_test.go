package instrumentation

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveUpstream(t *testing.T) {
	before := testutil.ToFloat64(upstreamRequests.WithLabelValues("prometheus", "/api/v1/query", "200"))
	ObserveUpstreamResponse("prometheus", "/api/v1/query", http.StatusOK, 10*time.Millisecond)
	after := testutil.ToFloat64(upstreamRequests.WithLabelValues("prometheus", "/api/v1/query", "200"))
	assert.Equal(t, before+1, after)

	before = testutil.ToFloat64(upstreamFailures.WithLabelValues("alertmanager", "/api/v1/alerts"))
	ObserveUpstreamFailure("alertmanager", "/api/v1/alerts", time.Second)
	after = testutil.ToFloat64(upstreamFailures.WithLabelValues("alertmanager", "/api/v1/alerts"))
	assert.Equal(t, before+1, after)
}

func TestObserveCall(t *testing.T) {
	before := testutil.ToFloat64(handlerCalls.WithLabelValues("tool", "prometheus_query", OutcomeError))
	ObserveCall("tool", "prometheus_query", OutcomeError)
	assert.Equal(t, before+1, testutil.ToFloat64(handlerCalls.WithLabelValues("tool", "prometheus_query", OutcomeError)))
}

func TestHandler(t *testing.T) {
	ObserveUpstreamResponse("prometheus", "/-/healthy", http.StatusOK, time.Millisecond)

	srv := httptest.NewServer(Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "mcp_monitoring_upstream_requests_total")
}

func TestSetupTracingDisabled(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	t.Setenv("OTEL_EXPORTER_OTLP_TRACES_ENDPOINT", "")

	shutdown, err := SetupTracing(context.Background(), "mcp-monitoring", "test")
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
	assert.False(t, TracingEnabled())
}
