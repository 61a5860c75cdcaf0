package alertmanager

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giantswarm/mcp-monitoring/internal/server"
)

func newTestServerContext(t *testing.T, alertmanagerURL string, policy server.ErrorPolicy) *server.ServerContext {
	t.Helper()
	sc, err := server.NewServerContext(context.Background(),
		server.WithConfig(server.Config{
			Alertmanager: server.EndpointConfig{URL: alertmanagerURL},
			ErrorPolicy:  policy,
		}),
		server.WithLogger(&TestLogger{}),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc
}

func callToolRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.Len(t, result.Content, 1)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestRegister(t *testing.T) {
	s := mcpserver.NewMCPServer("test", "1.0.0", mcpserver.WithToolCapabilities(true))
	sc := newTestServerContext(t, "http://localhost:9093", "")
	require.NoError(t, Register(s, sc))

	msg := json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"tools/list","params":{}}`)
	resp, ok := s.HandleMessage(context.Background(), msg).(mcp.JSONRPCResponse)
	require.True(t, ok)

	data, err := json.Marshal(resp.Result)
	require.NoError(t, err)
	var list mcp.ListToolsResult
	require.NoError(t, json.Unmarshal(data, &list))

	names := make([]string, 0, len(list.Tools))
	for _, tool := range list.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{"alertmanager_get_alerts", "alertmanager_silence"}, names)
}

func TestHandleGetAlerts(t *testing.T) {
	const body = `{"status":"success","data":[]}`

	tests := []struct {
		name     string
		args     map[string]interface{}
		rawQuery string
	}{
		{name: "default is active only", args: nil, rawQuery: "active=true"},
		{name: "explicit active", args: map[string]interface{}{"active": true}, rawQuery: "active=true"},
		{name: "all alerts", args: map[string]interface{}{"active": false}, rawQuery: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, tt.rawQuery, r.URL.RawQuery)
				w.Write([]byte(body))
			}))
			defer mockServer.Close()

			sc := newTestServerContext(t, mockServer.URL, "")
			result, err := handleGetAlerts(context.Background(),
				callToolRequest("alertmanager_get_alerts", tt.args), newTestClient(t, mockServer.URL), sc)
			require.NoError(t, err)
			assert.False(t, result.IsError)
			assert.JSONEq(t, body, resultText(t, result))
		})
	}
}

func TestHandleGetAlertsErrorPolicy(t *testing.T) {
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusBadGateway)
	}))
	defer mockServer.Close()

	client := newTestClient(t, mockServer.URL)
	request := callToolRequest("alertmanager_get_alerts", nil)

	report := newTestServerContext(t, mockServer.URL, server.ErrorPolicyReport)
	result, err := handleGetAlerts(context.Background(), request, client, report)
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.True(t, strings.HasPrefix(resultText(t, result), "Error getting alerts from Alertmanager: "))

	propagate := newTestServerContext(t, mockServer.URL, server.ErrorPolicyPropagate)
	result, err = handleGetAlerts(context.Background(), request, client, propagate)
	require.Error(t, err)
	assert.Nil(t, result)
}

func TestHandleCreateSilence(t *testing.T) {
	var received Silence
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &received))
		w.Write([]byte(`{"status":"success","data":{"silenceId":"abc"}}`))
	}))
	defer mockServer.Close()

	sc := newTestServerContext(t, mockServer.URL, "")
	result, err := handleCreateSilence(context.Background(),
		callToolRequest("alertmanager_silence", map[string]interface{}{
			"alert_name": "HighMemoryUsage",
			"duration":   "2h",
			"reason":     "planned maintenance",
		}), newTestClient(t, mockServer.URL), sc)
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Contains(t, resultText(t, result), `"silenceId": "abc"`)

	require.Len(t, received.Matchers, 1)
	assert.Equal(t, "alertname", string(received.Matchers[0].Name))
	assert.Equal(t, "HighMemoryUsage", received.Matchers[0].Value)
	assert.False(t, received.Matchers[0].IsRegex)
	assert.Equal(t, "mcp-server", received.CreatedBy)
	assert.Equal(t, "planned maintenance", received.Comment)
	assert.Equal(t, "2h0m0s", received.EndsAt.Sub(received.StartsAt).String())
}

func TestHandleCreateSilenceInvalidInput(t *testing.T) {
	var requests int
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))
	defer mockServer.Close()

	tests := []struct {
		name     string
		args     map[string]interface{}
		contains string
	}{
		{
			name:     "missing alert name",
			args:     map[string]interface{}{"duration": "2h", "reason": "x"},
			contains: "alert_name parameter is required",
		},
		{
			name:     "missing reason",
			args:     map[string]interface{}{"alert_name": "A", "duration": "2h"},
			contains: "reason parameter is required",
		},
		{
			name:     "days are not accepted",
			args:     map[string]interface{}{"alert_name": "A", "duration": "1d", "reason": "x"},
			contains: "invalid silence duration",
		},
		{
			name:     "zero hours",
			args:     map[string]interface{}{"alert_name": "A", "duration": "0h", "reason": "x"},
			contains: "invalid silence duration",
		},
	}

	for _, policy := range []server.ErrorPolicy{server.ErrorPolicyReport, server.ErrorPolicyPropagate} {
		sc := newTestServerContext(t, mockServer.URL, policy)
		client := newTestClient(t, mockServer.URL)

		for _, tt := range tests {
			t.Run(string(policy)+"/"+tt.name, func(t *testing.T) {
				result, err := handleCreateSilence(context.Background(),
					callToolRequest("alertmanager_silence", tt.args), client, sc)
				require.NoError(t, err)
				assert.True(t, result.IsError)
				assert.Contains(t, resultText(t, result), tt.contains)
			})
		}
	}

	assert.Equal(t, 0, requests)
}
