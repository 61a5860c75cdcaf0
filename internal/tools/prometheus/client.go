package prometheus

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	v1 "github.com/prometheus/client_golang/api/prometheus/v1"
	"github.com/prometheus/common/model"

	"github.com/giantswarm/mcp-monitoring/internal/server"
	"github.com/giantswarm/mcp-monitoring/internal/upstream"
)

const (
	queryEndpoint   = "/api/v1/query"
	healthyEndpoint = "/-/healthy"
)

// Health status values reported by Health.
const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

// Client talks to the Prometheus HTTP API. Instant queries return the raw
// response body; range queries and metric discovery go through the typed
// v1 API.
type Client struct {
	http   *upstream.Client
	api    v1.API
	logger server.Logger
}

// NewClient creates a Prometheus client for config with the given per-call timeout
func NewClient(config server.EndpointConfig, timeout time.Duration, logger server.Logger) (*Client, error) {
	httpClient, err := upstream.New("prometheus", config, timeout, logger)
	if err != nil {
		return nil, err
	}

	logger.Debug("Successfully created Prometheus client", "address", httpClient.BaseURL())

	return &Client{
		http:   httpClient,
		api:    v1.NewAPI(httpClient.API()),
		logger: logger,
	}, nil
}

// URL returns the Prometheus base URL
func (c *Client) URL() string {
	return c.http.BaseURL()
}

// Query executes an instant PromQL query and returns the response body
// unchanged, envelope included.
func (c *Client) Query(ctx context.Context, promql string) (json.RawMessage, error) {
	result, err := c.http.GetJSON(ctx, queryEndpoint, url.Values{"query": {promql}})
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	return result, nil
}

// HealthStatus is the outcome of a liveness probe
type HealthStatus struct {
	Status string `json:"status"`
	URL    string `json:"url"`
}

// Healthy reports whether the probe returned 200
func (h *HealthStatus) Healthy() bool {
	return h.Status == StatusHealthy
}

// Health probes the liveness endpoint. Any status other than 200 is reported
// as unhealthy; only a failure to get a response is returned as an error.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	resp, _, err := c.http.Get(ctx, healthyEndpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to check health: %w", err)
	}

	status := StatusUnhealthy
	if resp.StatusCode == http.StatusOK {
		status = StatusHealthy
	}

	return &HealthStatus{
		Status: status,
		URL:    c.http.BaseURL(),
	}, nil
}

// QueryResult represents the result of a range query
type QueryResult struct {
	ResultType string      `json:"resultType"`
	Result     model.Value `json:"result"`
	Warnings   []string    `json:"warnings,omitempty"`
}

// QueryRange executes a range PromQL query
func (c *Client) QueryRange(ctx context.Context, query, start, end, step string) (*QueryResult, error) {
	startTime, err := parseTime(start)
	if err != nil {
		return nil, fmt.Errorf("invalid start time: %w", err)
	}

	endTime, err := parseTime(end)
	if err != nil {
		return nil, fmt.Errorf("invalid end time: %w", err)
	}

	if endTime.Before(startTime) {
		return nil, fmt.Errorf("end time %s is before start time %s", end, start)
	}

	stepDuration, err := model.ParseDuration(step)
	if err != nil {
		return nil, fmt.Errorf("invalid step duration: %w", err)
	}
	if stepDuration <= 0 {
		return nil, fmt.Errorf("invalid step duration: must be positive")
	}

	ctx, cancel := context.WithTimeout(ctx, c.http.Timeout())
	defer cancel()

	queryRange := v1.Range{
		Start: startTime,
		End:   endTime,
		Step:  time.Duration(stepDuration),
	}

	result, warnings, err := c.api.QueryRange(ctx, query, queryRange)
	if err != nil {
		return nil, fmt.Errorf("failed to execute range query: %w", err)
	}

	if len(warnings) > 0 {
		c.logger.Warn("Range query returned warnings", "query", query, "warnings", strings.Join(warnings, "; "))
	}

	return &QueryResult{
		ResultType: result.Type().String(),
		Result:     result,
		Warnings:   warnings,
	}, nil
}

// ListMetrics lists all available metric names
func (c *Client) ListMetrics(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.http.Timeout())
	defer cancel()

	labelValues, warnings, err := c.api.LabelValues(ctx, model.MetricNameLabel, nil, time.Time{}, time.Time{})
	if err != nil {
		return nil, fmt.Errorf("failed to list metrics: %w", err)
	}

	if len(warnings) > 0 {
		c.logger.Warn("List metrics returned warnings", "warnings", strings.Join(warnings, "; "))
	}

	metrics := make([]string, len(labelValues))
	for i, labelValue := range labelValues {
		metrics[i] = string(labelValue)
	}

	return metrics, nil
}

// parseTime accepts RFC3339 or a Unix timestamp in (fractional) seconds
func parseTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	secs, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("%q is neither RFC3339 nor a Unix timestamp", s)
	}
	whole := int64(secs)
	return time.Unix(whole, int64((secs-float64(whole))*float64(time.Second))).UTC(), nil
}
