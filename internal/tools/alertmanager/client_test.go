package alertmanager

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/common/model"
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

var fixedNow = time.Date(2024, 3, 1, 12, 30, 0, 0, time.FixedZone("CET", 3600))

func newTestClient(t *testing.T, url string) *Client {
	t.Helper()
	client, err := NewClient(server.EndpointConfig{URL: url}, 5*time.Second, &TestLogger{})
	require.NoError(t, err)
	client.now = func() time.Time { return fixedNow }
	return client
}

func TestParseHours(t *testing.T) {
	valid := map[string]time.Duration{
		"1h":   time.Hour,
		"2h":   2 * time.Hour,
		"24h":  24 * time.Hour,
		"168h": 168 * time.Hour,
	}
	for input, expected := range valid {
		d, err := ParseHours(input)
		require.NoError(t, err, input)
		assert.Equal(t, expected, d, input)
	}

	invalid := []string{"", "0h", "2", "h", "2d", "1.5h", "-1h", "2h30m", " 2h", "2H", "99999999999999999999h"}
	for _, input := range invalid {
		_, err := ParseHours(input)
		require.Error(t, err, input)
		assert.True(t, errors.Is(err, ErrInvalidDuration), input)
	}
}

func TestListAlerts(t *testing.T) {
	const body = `{"status":"success","data":[{"labels":{"alertname":"HighMemoryUsage"},"status":{"state":"active"}}]}`

	tests := []struct {
		name       string
		activeOnly bool
		rawQuery   string
	}{
		{name: "active only", activeOnly: true, rawQuery: "active=true"},
		{name: "all alerts", activeOnly: false, rawQuery: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var requests int
			mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				requests++
				assert.Equal(t, http.MethodGet, r.Method)
				assert.Equal(t, "/api/v1/alerts", r.URL.Path)
				assert.Equal(t, tt.rawQuery, r.URL.RawQuery)
				w.Write([]byte(body))
			}))
			defer mockServer.Close()

			alerts, err := newTestClient(t, mockServer.URL).ListAlerts(context.Background(), tt.activeOnly)
			require.NoError(t, err)
			assert.Equal(t, 1, requests)
			assert.JSONEq(t, body, string(alerts))
		})
	}
}

func TestListAlertsError(t *testing.T) {
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer mockServer.Close()

	_, err := newTestClient(t, mockServer.URL).ListAlerts(context.Background(), true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list alerts")
}

func TestCreateSilence(t *testing.T) {
	var (
		requests int
		received map[string]json.RawMessage
	)
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/silences", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &received))

		w.Write([]byte(`{"status":"success","data":{"silenceId":"4f2b6a2e"}}`))
	}))
	defer mockServer.Close()

	client := newTestClient(t, mockServer.URL)
	result, err := client.CreateSilence(context.Background(),
		[]*model.Matcher{AlertNameMatcher("HighMemoryUsage")}, "2h", "oncall", "maintenance window")
	require.NoError(t, err)
	assert.Equal(t, 1, requests)
	assert.JSONEq(t, `{"status":"success","data":{"silenceId":"4f2b6a2e"}}`, string(result))

	assert.ElementsMatch(t, []string{"matchers", "startsAt", "endsAt", "createdBy", "comment"}, keys(received))
	assert.JSONEq(t, `[{"name":"alertname","value":"HighMemoryUsage","isRegex":false}]`, string(received["matchers"]))
	assert.JSONEq(t, `"oncall"`, string(received["createdBy"]))
	assert.JSONEq(t, `"maintenance window"`, string(received["comment"]))

	var startsAt, endsAt time.Time
	require.NoError(t, json.Unmarshal(received["startsAt"], &startsAt))
	require.NoError(t, json.Unmarshal(received["endsAt"], &endsAt))
	assert.Equal(t, time.UTC, startsAt.Location())
	assert.True(t, startsAt.Equal(fixedNow))
	assert.Equal(t, 2*time.Hour, endsAt.Sub(startsAt))
}

func TestCreateSilenceRejectsInput(t *testing.T) {
	var requests int
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))
	defer mockServer.Close()

	client := newTestClient(t, mockServer.URL)
	matchers := []*model.Matcher{AlertNameMatcher("HighMemoryUsage")}

	_, err := client.CreateSilence(context.Background(), matchers, "2 hours", "oncall", "test")
	require.ErrorIs(t, err, ErrInvalidDuration)

	_, err = client.CreateSilence(context.Background(), nil, "2h", "oncall", "test")
	require.Error(t, err)

	_, err = client.CreateSilence(context.Background(), []*model.Matcher{AlertNameMatcher("")}, "2h", "oncall", "test")
	require.Error(t, err)

	assert.Equal(t, 0, requests)
}

func TestNewSilence(t *testing.T) {
	client := newTestClient(t, "http://localhost:9093")

	silence, err := client.NewSilence([]*model.Matcher{AlertNameMatcher("DiskFull")}, "12h", "mcp-server", "disk replacement")
	require.NoError(t, err)
	assert.Equal(t, fixedNow.UTC(), silence.StartsAt)
	assert.Equal(t, fixedNow.UTC().Add(12*time.Hour), silence.EndsAt)
	require.Len(t, silence.Matchers, 1)
	assert.Equal(t, model.LabelName("alertname"), silence.Matchers[0].Name)
	assert.False(t, silence.Matchers[0].IsRegex)
}

func keys(m map[string]json.RawMessage) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
