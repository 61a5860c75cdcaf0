// Package alertmanager provides MCP tools for the Alertmanager v1 API.
//
// Tools:
//   - alertmanager_get_alerts: List alerts, active only unless active=false
//   - alertmanager_silence: Silence one alert by name for a number of hours
//
// Silence durations are whole hours ("2h"); anything else is rejected with
// ErrInvalidDuration before a request is sent.
package alertmanager
