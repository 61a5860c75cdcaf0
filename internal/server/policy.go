package server

import (
	"fmt"
	"strings"
)

// ErrorPolicy decides how tool, resource and prompt handlers surface a
// failed upstream call.
type ErrorPolicy string

const (
	// ErrorPolicyReport turns failures into in-band content for the caller.
	ErrorPolicyReport ErrorPolicy = "report"
	// ErrorPolicyPropagate returns failures to the MCP framework, which
	// answers with a protocol-level error.
	ErrorPolicyPropagate ErrorPolicy = "propagate"
)

// ParseErrorPolicy parses a policy name. The empty string selects the default.
func ParseErrorPolicy(s string) (ErrorPolicy, error) {
	switch ErrorPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", ErrorPolicyReport:
		return ErrorPolicyReport, nil
	case ErrorPolicyPropagate:
		return ErrorPolicyPropagate, nil
	default:
		return "", fmt.Errorf("unsupported error policy %q (supported: %s, %s)", s, ErrorPolicyReport, ErrorPolicyPropagate)
	}
}

// Propagates reports whether failures should be returned as errors
func (p ErrorPolicy) Propagates() bool {
	return p == ErrorPolicyPropagate
}
