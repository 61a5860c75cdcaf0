package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giantswarm/mcp-monitoring/internal/server"
)

// TestLogger implements server.Logger for testing
type TestLogger struct{}

func (l *TestLogger) Debug(msg string, args ...interface{}) {}
func (l *TestLogger) Info(msg string, args ...interface{})  {}
func (l *TestLogger) Warn(msg string, args ...interface{})  {}
func (l *TestLogger) Error(msg string, args ...interface{}) {}

func newTestClient(t *testing.T, config server.EndpointConfig, timeout time.Duration) *Client {
	t.Helper()
	c, err := New("test", config, timeout, &TestLogger{})
	require.NoError(t, err)
	return c
}

func TestNewValidation(t *testing.T) {
	_, err := New("prometheus", server.EndpointConfig{}, time.Second, &TestLogger{})
	require.Error(t, err)

	_, err = New("prometheus", server.EndpointConfig{URL: "http://localhost:9090"}, 0, &TestLogger{})
	require.Error(t, err)

	c, err := New("prometheus", server.EndpointConfig{URL: "http://localhost:9090///"}, time.Second, &TestLogger{})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9090", c.BaseURL())
	assert.Equal(t, "prometheus", c.Name())
	assert.Equal(t, time.Second, c.Timeout())
	assert.NotNil(t, c.API())
}

func TestGetJSON(t *testing.T) {
	var requests int
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/prefix/api/v1/query", r.URL.Path)
		assert.Equal(t, `up{job="node"}`, r.URL.Query().Get("query"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"success","data":{"resultType":"vector","result":[]}}`))
	}))
	defer mockServer.Close()

	c := newTestClient(t, server.EndpointConfig{URL: mockServer.URL + "/prefix/"}, time.Second)

	body, err := c.GetJSON(context.Background(), "/api/v1/query", url.Values{"query": {`up{job="node"}`}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"success","data":{"resultType":"vector","result":[]}}`, string(body))
	assert.Equal(t, 1, requests)
}

func TestGetJSONStatusError(t *testing.T) {
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"status":"error","error":"parse error"}`))
	}))
	defer mockServer.Close()

	c := newTestClient(t, server.EndpointConfig{URL: mockServer.URL}, time.Second)

	_, err := c.GetJSON(context.Background(), "/api/v1/query", nil)
	require.Error(t, err)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusBadRequest, statusErr.StatusCode)
	assert.Equal(t, "/api/v1/query", statusErr.Path)
	assert.Contains(t, err.Error(), "parse error")
}

func TestGetJSONInvalidBody(t *testing.T) {
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Prometheus is Healthy."))
	}))
	defer mockServer.Close()

	c := newTestClient(t, server.EndpointConfig{URL: mockServer.URL}, time.Second)

	_, err := c.GetJSON(context.Background(), "/api/v1/query", nil)
	require.ErrorIs(t, err, ErrInvalidJSON)
}

func TestGetTimeout(t *testing.T) {
	release := make(chan struct{})
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer mockServer.Close()
	defer close(release)

	c := newTestClient(t, server.EndpointConfig{URL: mockServer.URL}, 50*time.Millisecond)

	start := time.Now()
	_, err := c.GetJSON(context.Background(), "/api/v1/query", nil)
	require.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestGetConnectionFailure(t *testing.T) {
	mockServer := httptest.NewServer(http.NotFoundHandler())
	addr := mockServer.URL
	mockServer.Close()

	c := newTestClient(t, server.EndpointConfig{URL: addr}, time.Second)

	_, _, err := c.Get(context.Background(), "/-/healthy", nil)
	require.Error(t, err)
}

func TestPostJSON(t *testing.T) {
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)

		var payload map[string]string
		assert.NoError(t, json.Unmarshal(body, &payload))
		assert.Equal(t, "value", payload["key"])

		w.Write([]byte(`{"status":"success","data":{"silenceId":"abc"}}`))
	}))
	defer mockServer.Close()

	c := newTestClient(t, server.EndpointConfig{URL: mockServer.URL}, time.Second)

	body, err := c.PostJSON(context.Background(), "/api/v1/silences", map[string]string{"key": "value"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"success","data":{"silenceId":"abc"}}`, string(body))
}

func TestAuthenticationHeaders(t *testing.T) {
	tests := []struct {
		name   string
		config server.EndpointConfig
		check  func(t *testing.T, r *http.Request)
	}{
		{
			name:   "bearer token",
			config: server.EndpointConfig{Token: "secret"},
			check: func(t *testing.T, r *http.Request) {
				assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
			},
		},
		{
			name:   "basic auth",
			config: server.EndpointConfig{Username: "admin", Password: "pass"},
			check: func(t *testing.T, r *http.Request) {
				user, pass, ok := r.BasicAuth()
				assert.True(t, ok)
				assert.Equal(t, "admin", user)
				assert.Equal(t, "pass", pass)
			},
		},
		{
			name:   "token wins over basic auth",
			config: server.EndpointConfig{Token: "secret", Username: "admin", Password: "pass"},
			check: func(t *testing.T, r *http.Request) {
				assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
			},
		},
		{
			name:   "org id",
			config: server.EndpointConfig{OrgID: "tenant-a"},
			check: func(t *testing.T, r *http.Request) {
				assert.Equal(t, "tenant-a", r.Header.Get("X-Scope-OrgID"))
				assert.Empty(t, r.Header.Get("Authorization"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				tt.check(t, r)
				w.Write([]byte(`{}`))
			}))
			defer mockServer.Close()

			config := tt.config
			config.URL = mockServer.URL
			c := newTestClient(t, config, time.Second)

			_, err := c.GetJSON(context.Background(), "/api/v1/alerts", nil)
			require.NoError(t, err)
		})
	}
}
