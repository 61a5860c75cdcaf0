// Package tools holds the pieces shared by the MCP tool, resource and prompt
// handlers: JSON formatting, ordered aggregates of concurrent queries, and
// result constructors that apply the server's error policy.
//
// Error policy:
//   - report: upstream failures become in-band content (an IsError tool
//     result, a plain-text resource, or an {"error": ...} slot in a prompt)
//   - propagate: the handler returns the error and the MCP framework answers
//     with a protocol-level error
//
// Failed sections of an aggregate are always reported inline.
package tools
