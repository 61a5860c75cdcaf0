package server

import (
	"context"
	"sync"
)

// Logger interface for structured logging
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

// ServerContext holds the server configuration and shared resources
type ServerContext struct {
	ctx    context.Context
	cancel context.CancelFunc
	mutex  sync.RWMutex

	// Configuration
	debugMode bool
	logger    Logger
	config    Config
}

// ServerOption is a functional option for configuring ServerContext
type ServerOption func(*ServerContext)

// WithDebugMode sets whether debug logging is enabled
func WithDebugMode(enabled bool) ServerOption {
	return func(sc *ServerContext) {
		sc.debugMode = enabled
	}
}

// WithLogger sets the logger for the server context
func WithLogger(logger Logger) ServerOption {
	return func(sc *ServerContext) {
		sc.logger = logger
	}
}

// WithConfig sets the upstream and policy configuration
func WithConfig(config Config) ServerOption {
	return func(sc *ServerContext) {
		sc.config = config
	}
}

// NewServerContext creates a new server context with the given options.
// Missing configuration fields are filled from DefaultConfig and the result
// is validated, so a ServerContext always carries usable endpoints.
func NewServerContext(ctx context.Context, opts ...ServerOption) (*ServerContext, error) {
	serverCtx, cancel := context.WithCancel(ctx)

	sc := &ServerContext{
		ctx:    serverCtx,
		cancel: cancel,
	}

	for _, opt := range opts {
		opt(sc)
	}

	if sc.logger == nil {
		sc.logger = &noopLogger{}
	}

	sc.config = sc.config.withDefaults()
	if err := sc.config.Validate(); err != nil {
		cancel()
		return nil, err
	}

	return sc, nil
}

// Context returns the context associated with the server
func (sc *ServerContext) Context() context.Context {
	sc.mutex.RLock()
	defer sc.mutex.RUnlock()
	return sc.ctx
}

// IsDebugMode returns whether debug logging is enabled
func (sc *ServerContext) IsDebugMode() bool {
	sc.mutex.RLock()
	defer sc.mutex.RUnlock()
	return sc.debugMode
}

// Logger returns the configured logger
func (sc *ServerContext) Logger() Logger {
	sc.mutex.RLock()
	defer sc.mutex.RUnlock()
	return sc.logger
}

// Config returns the full configuration
func (sc *ServerContext) Config() Config {
	sc.mutex.RLock()
	defer sc.mutex.RUnlock()
	return sc.config
}

// PrometheusConfig returns the Prometheus endpoint configuration
func (sc *ServerContext) PrometheusConfig() EndpointConfig {
	sc.mutex.RLock()
	defer sc.mutex.RUnlock()
	return sc.config.Prometheus
}

// AlertmanagerConfig returns the Alertmanager endpoint configuration
func (sc *ServerContext) AlertmanagerConfig() EndpointConfig {
	sc.mutex.RLock()
	defer sc.mutex.RUnlock()
	return sc.config.Alertmanager
}

// ErrorPolicy returns how handlers surface upstream failures
func (sc *ServerContext) ErrorPolicy() ErrorPolicy {
	sc.mutex.RLock()
	defer sc.mutex.RUnlock()
	return sc.config.ErrorPolicy
}

// SetDebugMode dynamically sets whether debug logging is enabled
func (sc *ServerContext) SetDebugMode(enabled bool) {
	sc.mutex.Lock()
	defer sc.mutex.Unlock()
	sc.debugMode = enabled
}

// Shutdown gracefully shuts down the server context
func (sc *ServerContext) Shutdown() error {
	sc.mutex.Lock()
	defer sc.mutex.Unlock()

	if sc.cancel != nil {
		sc.cancel()
		sc.cancel = nil
	}

	return nil
}

// noopLogger is a logger that does nothing
type noopLogger struct{}

func (l *noopLogger) Debug(msg string, args ...interface{}) {}
func (l *noopLogger) Info(msg string, args ...interface{})  {}
func (l *noopLogger) Warn(msg string, args ...interface{})  {}
func (l *noopLogger) Error(msg string, args ...interface{}) {}
