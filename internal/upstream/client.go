package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/prometheus/client_golang/api"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/giantswarm/mcp-monitoring/internal/instrumentation"
	"github.com/giantswarm/mcp-monitoring/internal/server"
)

// ErrInvalidJSON is returned when an upstream answers 2xx with a body that
// is not valid JSON.
var ErrInvalidJSON = errors.New("upstream returned invalid JSON")

// maxErrorBody bounds how much of a failed response body ends up in errors.
const maxErrorBody = 512

// StatusError is returned when an upstream answers with a non-2xx status.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s %s: unexpected status %d %s", e.Method, e.Path, e.StatusCode, http.StatusText(e.StatusCode))
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// Client is a small HTTP client for one upstream API. It reuses the
// Prometheus API client for URL building and request execution, and adds
// authentication, per-call timeouts, status checks and instrumentation.
type Client struct {
	name    string
	client  api.Client
	baseURL string
	timeout time.Duration
	logger  server.Logger
}

// New creates a client for the API at config.URL. name identifies the
// upstream in logs, metrics and spans.
func New(name string, config server.EndpointConfig, timeout time.Duration, logger server.Logger) (*Client, error) {
	baseURL := strings.TrimRight(config.URL, "/")
	if baseURL == "" {
		return nil, fmt.Errorf("%s URL is empty", name)
	}
	if timeout <= 0 {
		return nil, fmt.Errorf("%s timeout must be positive", name)
	}

	logger.Debug("Creating upstream client", "upstream", name, "url", baseURL, "timeout", timeout.String())

	config.URL = baseURL
	apiClient, err := api.NewClient(api.Config{
		Address:      baseURL,
		RoundTripper: newRoundTripper(api.DefaultRoundTripper, config, logger),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create %s client: %w", name, err)
	}

	return &Client{
		name:    name,
		client:  apiClient,
		baseURL: baseURL,
		timeout: timeout,
		logger:  logger,
	}, nil
}

// Name returns the upstream name
func (c *Client) Name() string {
	return c.name
}

// BaseURL returns the base URL without trailing slash
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Timeout returns the per-call timeout
func (c *Client) Timeout() time.Duration {
	return c.timeout
}

// API returns the underlying Prometheus API client, for use with the typed
// v1 API.
func (c *Client) API() api.Client {
	return c.client
}

// Get performs a GET request without interpreting the status code.
func (c *Client) Get(ctx context.Context, path string, params url.Values) (*http.Response, []byte, error) {
	return c.do(ctx, http.MethodGet, path, params, nil)
}

// GetJSON performs a GET request and returns the JSON body verbatim.
func (c *Client) GetJSON(ctx context.Context, path string, params url.Values) (json.RawMessage, error) {
	resp, body, err := c.do(ctx, http.MethodGet, path, params, nil)
	if err != nil {
		return nil, err
	}
	return checkJSON(http.MethodGet, path, resp, body)
}

// PostJSON encodes payload as JSON, POSTs it and returns the JSON body verbatim.
func (c *Client) PostJSON(ctx context.Context, path string, payload interface{}) (json.RawMessage, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request body: %w", err)
	}
	resp, body, err := c.do(ctx, http.MethodPost, path, nil, data)
	if err != nil {
		return nil, err
	}
	return checkJSON(http.MethodPost, path, resp, body)
}

func (c *Client) do(ctx context.Context, method, path string, params url.Values, payload []byte) (*http.Response, []byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	ctx, span := instrumentation.Tracer().Start(ctx, method+" "+path,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("upstream", c.name),
			attribute.String("http.request.method", method),
			attribute.String("url.path", path),
		),
	)
	defer span.End()

	u := c.client.URL(path, nil)
	if len(params) > 0 {
		u.RawQuery = params.Encode()
	}

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), reqBody)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create %s request: %w", c.name, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("Sending upstream request", "upstream", c.name, "method", method, "path", path)

	start := time.Now()
	resp, body, err := c.client.Do(ctx, req)
	elapsed := time.Since(start)
	if err != nil {
		instrumentation.ObserveUpstreamFailure(c.name, path, elapsed)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, nil, fmt.Errorf("%s request %s %s failed: %w", c.name, method, path, err)
	}

	instrumentation.ObserveUpstreamResponse(c.name, path, resp.StatusCode, elapsed)
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	if resp.StatusCode/100 != 2 {
		span.SetStatus(codes.Error, resp.Status)
	}

	return resp, body, nil
}

func checkJSON(method, path string, resp *http.Response, body []byte) (json.RawMessage, error) {
	if resp.StatusCode/100 != 2 {
		excerpt := strings.TrimSpace(string(body))
		if len(excerpt) > maxErrorBody {
			excerpt = excerpt[:maxErrorBody] + "..."
		}
		return nil, &StatusError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       excerpt,
		}
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("%s %s: %w", method, path, ErrInvalidJSON)
	}
	return json.RawMessage(body), nil
}
