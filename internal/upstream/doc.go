// Package upstream provides the HTTP client shared by the Prometheus and
// Alertmanager integrations.
//
// A Client is bound to one base URL. It supports:
//   - Bearer token or basic authentication
//   - Multi-tenant organization ID headers (X-Scope-OrgID)
//   - A per-call timeout derived from the caller's context
//   - Non-2xx responses surfaced as *StatusError
//   - Request metrics and OpenTelemetry spans
package upstream
