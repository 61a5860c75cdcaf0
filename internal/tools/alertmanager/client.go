package alertmanager

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/url"
	"regexp"
	"strconv"
	"time"

	"github.com/prometheus/common/model"

	"github.com/giantswarm/mcp-monitoring/internal/server"
	"github.com/giantswarm/mcp-monitoring/internal/upstream"
)

const (
	alertsEndpoint   = "/api/v1/alerts"
	silencesEndpoint = "/api/v1/silences"
)

// ErrInvalidDuration is returned for silence durations that are not a
// positive number of hours such as "2h".
var ErrInvalidDuration = errors.New("invalid silence duration")

var hoursPattern = regexp.MustCompile(`^(\d+)h$`)

// ParseHours parses a silence duration of the form "<n>h" with n > 0
func ParseHours(s string) (time.Duration, error) {
	m := hoursPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("%w: %q, expected a whole number of hours like \"2h\"", ErrInvalidDuration, s)
	}
	hours, err := strconv.Atoi(m[1])
	if err != nil || hours <= 0 {
		return 0, fmt.Errorf("%w: %q, expected a positive number of hours", ErrInvalidDuration, s)
	}
	if int64(hours) > math.MaxInt64/int64(time.Hour) {
		return 0, fmt.Errorf("%w: %q is too long", ErrInvalidDuration, s)
	}
	return time.Duration(hours) * time.Hour, nil
}

// Silence is the body of a silence creation request
type Silence struct {
	Matchers  []*model.Matcher `json:"matchers"`
	StartsAt  time.Time        `json:"startsAt"`
	EndsAt    time.Time        `json:"endsAt"`
	CreatedBy string           `json:"createdBy"`
	Comment   string           `json:"comment"`
}

// Client talks to the Alertmanager v1 HTTP API
type Client struct {
	http   *upstream.Client
	logger server.Logger
	now    func() time.Time
}

// NewClient creates an Alertmanager client for config with the given per-call timeout
func NewClient(config server.EndpointConfig, timeout time.Duration, logger server.Logger) (*Client, error) {
	httpClient, err := upstream.New("alertmanager", config, timeout, logger)
	if err != nil {
		return nil, err
	}

	logger.Debug("Successfully created Alertmanager client", "address", httpClient.BaseURL())

	return &Client{
		http:   httpClient,
		logger: logger,
		now:    time.Now,
	}, nil
}

// URL returns the Alertmanager base URL
func (c *Client) URL() string {
	return c.http.BaseURL()
}

// ListAlerts returns the alert list as sent by Alertmanager. With activeOnly
// the request carries active=true; otherwise no filter is sent.
func (c *Client) ListAlerts(ctx context.Context, activeOnly bool) (json.RawMessage, error) {
	var params url.Values
	if activeOnly {
		params = url.Values{"active": {"true"}}
	}

	result, err := c.http.GetJSON(ctx, alertsEndpoint, params)
	if err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}
	return result, nil
}

// NewSilence builds a silence starting now (UTC) and lasting duration
func (c *Client) NewSilence(matchers []*model.Matcher, duration, createdBy, comment string) (*Silence, error) {
	d, err := ParseHours(duration)
	if err != nil {
		return nil, err
	}
	if len(matchers) == 0 {
		return nil, errors.New("at least one matcher is required")
	}
	for _, m := range matchers {
		if err := m.Validate(); err != nil {
			return nil, fmt.Errorf("invalid matcher: %w", err)
		}
	}

	start := c.now().UTC()
	return &Silence{
		Matchers:  matchers,
		StartsAt:  start,
		EndsAt:    start.Add(d),
		CreatedBy: createdBy,
		Comment:   comment,
	}, nil
}

// CreateSilence creates a silence for matchers and returns Alertmanager's
// response body
func (c *Client) CreateSilence(ctx context.Context, matchers []*model.Matcher, duration, createdBy, comment string) (json.RawMessage, error) {
	silence, err := c.NewSilence(matchers, duration, createdBy, comment)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("Creating silence",
		"matchers", len(silence.Matchers), "starts_at", silence.StartsAt, "ends_at", silence.EndsAt, "created_by", createdBy)

	result, err := c.http.PostJSON(ctx, silencesEndpoint, silence)
	if err != nil {
		return nil, fmt.Errorf("failed to create silence: %w", err)
	}
	return result, nil
}

// AlertNameMatcher matches alerts by their alertname label exactly
func AlertNameMatcher(alertName string) *model.Matcher {
	return &model.Matcher{
		Name:    model.AlertNameLabel,
		Value:   alertName,
		IsRegex: false,
	}
}
