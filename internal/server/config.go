package server

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DefaultPrometheusURL   = "http://localhost:9090"
	DefaultAlertmanagerURL = "http://localhost:9093"
	DefaultTimeoutSeconds  = 30
)

// Configuration keys shared by the viper instance and the flag bindings.
const (
	KeyPrometheusURL        = "prometheus.url"
	KeyPrometheusUsername   = "prometheus.username"
	KeyPrometheusPassword   = "prometheus.password"
	KeyPrometheusToken      = "prometheus.token"
	KeyPrometheusOrgID      = "prometheus.orgid"
	KeyAlertmanagerURL      = "alertmanager.url"
	KeyAlertmanagerUsername = "alertmanager.username"
	KeyAlertmanagerPassword = "alertmanager.password"
	KeyAlertmanagerToken    = "alertmanager.token"
	KeyTimeout              = "timeout"
	KeyErrorPolicy          = "error_policy"
	KeyDebug                = "debug"
)

var envBindings = map[string]string{
	KeyPrometheusURL:        "PROMETHEUS_URL",
	KeyPrometheusUsername:   "PROMETHEUS_USERNAME",
	KeyPrometheusPassword:   "PROMETHEUS_PASSWORD",
	KeyPrometheusToken:      "PROMETHEUS_TOKEN",
	KeyPrometheusOrgID:      "PROMETHEUS_ORGID",
	KeyAlertmanagerURL:      "ALERTMANAGER_URL",
	KeyAlertmanagerUsername: "ALERTMANAGER_USERNAME",
	KeyAlertmanagerPassword: "ALERTMANAGER_PASSWORD",
	KeyAlertmanagerToken:    "ALERTMANAGER_TOKEN",
	KeyTimeout:              "PROMETHEUS_TIMEOUT",
	KeyErrorPolicy:          "MCP_ERROR_POLICY",
	KeyDebug:                "MCP_DEBUG",
}

// EndpointConfig holds the connection settings of one upstream HTTP API
type EndpointConfig struct {
	URL      string
	Username string
	Password string
	Token    string
	OrgID    string
}

// Config is the complete runtime configuration. It is built once, before
// the clients, and never mutated afterwards.
type Config struct {
	Prometheus   EndpointConfig
	Alertmanager EndpointConfig
	Timeout      time.Duration
	ErrorPolicy  ErrorPolicy
	Debug        bool
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{
		Prometheus:   EndpointConfig{URL: DefaultPrometheusURL},
		Alertmanager: EndpointConfig{URL: DefaultAlertmanagerURL},
		Timeout:      DefaultTimeoutSeconds * time.Second,
		ErrorPolicy:  ErrorPolicyReport,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.Prometheus.URL == "" {
		c.Prometheus.URL = def.Prometheus.URL
	}
	if c.Alertmanager.URL == "" {
		c.Alertmanager.URL = def.Alertmanager.URL
	}
	if c.Timeout == 0 {
		c.Timeout = def.Timeout
	}
	if c.ErrorPolicy == "" {
		c.ErrorPolicy = def.ErrorPolicy
	}
	c.Prometheus.URL = strings.TrimRight(c.Prometheus.URL, "/")
	c.Alertmanager.URL = strings.TrimRight(c.Alertmanager.URL, "/")
	return c
}

// Validate checks the configuration for values the clients cannot work with
func (c Config) Validate() error {
	if err := validateURL("prometheus", c.Prometheus.URL); err != nil {
		return err
	}
	if err := validateURL("alertmanager", c.Alertmanager.URL); err != nil {
		return err
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be a positive number of seconds, got %s", c.Timeout)
	}
	if _, err := ParseErrorPolicy(string(c.ErrorPolicy)); err != nil {
		return err
	}
	return nil
}

func validateURL(name, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid %s URL %q: %w", name, raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid %s URL %q: scheme must be http or https", name, raw)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid %s URL %q: missing host", name, raw)
	}
	return nil
}

// NewViper returns a viper instance with defaults and environment bindings
// registered for every configuration key.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyPrometheusURL, DefaultPrometheusURL)
	v.SetDefault(KeyAlertmanagerURL, DefaultAlertmanagerURL)
	v.SetDefault(KeyTimeout, DefaultTimeoutSeconds)
	v.SetDefault(KeyErrorPolicy, string(ErrorPolicyReport))
	v.SetDefault(KeyDebug, false)

	for key, env := range envBindings {
		// BindEnv only fails when called without a key.
		_ = v.BindEnv(key, env)
	}
	return v
}

// BindFlags maps command-line flags onto configuration keys. Flags take
// precedence over environment variables once they are set.
func BindFlags(v *viper.Viper, flags *pflag.FlagSet, bindings map[string]string) error {
	for key, flagName := range bindings {
		flag := flags.Lookup(flagName)
		if flag == nil {
			return fmt.Errorf("unknown flag %q for key %q", flagName, key)
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("failed to bind flag %q: %w", flagName, err)
		}
	}
	return nil
}

// LoadConfig reads the configuration from v and validates it
func LoadConfig(v *viper.Viper) (Config, error) {
	timeoutRaw := v.GetString(KeyTimeout)
	timeoutSeconds := v.GetInt(KeyTimeout)
	if timeoutSeconds <= 0 {
		return Config{}, fmt.Errorf("timeout must be a positive number of seconds, got %q", timeoutRaw)
	}

	policy, err := ParseErrorPolicy(v.GetString(KeyErrorPolicy))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Prometheus: EndpointConfig{
			URL:      v.GetString(KeyPrometheusURL),
			Username: v.GetString(KeyPrometheusUsername),
			Password: v.GetString(KeyPrometheusPassword),
			Token:    v.GetString(KeyPrometheusToken),
			OrgID:    v.GetString(KeyPrometheusOrgID),
		},
		Alertmanager: EndpointConfig{
			URL:      v.GetString(KeyAlertmanagerURL),
			Username: v.GetString(KeyAlertmanagerUsername),
			Password: v.GetString(KeyAlertmanagerPassword),
			Token:    v.GetString(KeyAlertmanagerToken),
		},
		Timeout:     time.Duration(timeoutSeconds) * time.Second,
		ErrorPolicy: policy,
		Debug:       v.GetBool(KeyDebug),
	}.withDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
