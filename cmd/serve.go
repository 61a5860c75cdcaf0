package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/giantswarm/mcp-monitoring/internal/instrumentation"
	"github.com/giantswarm/mcp-monitoring/internal/server"
	"github.com/giantswarm/mcp-monitoring/internal/tools/alertmanager"
	"github.com/giantswarm/mcp-monitoring/internal/tools/prometheus"
)

const (
	serverName      = "mcp-monitoring"
	shutdownTimeout = 30 * time.Second
	metricsPath     = "/metrics"
)

// Supported transports
const (
	transportStdio          = "stdio"
	transportSSE            = "sse"
	transportStreamableHTTP = "streamable-http"
)

// configFlags maps configuration keys to the flags that override them
var configFlags = map[string]string{
	server.KeyPrometheusURL:   "prometheus-url",
	server.KeyAlertmanagerURL: "alertmanager-url",
	server.KeyTimeout:         "timeout",
	server.KeyErrorPolicy:     "error-policy",
	server.KeyDebug:           "debug",
}

type serveOptions struct {
	transport       string
	httpAddr        string
	sseEndpoint     string
	messageEndpoint string
	httpEndpoint    string
}

// newServeCmd creates the Cobra command for starting the MCP server.
func newServeCmd() *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP monitoring server",
		Long: `Start the MCP monitoring server to provide tools, resources and prompts
for Prometheus and Alertmanager via the Model Context Protocol.

Supports multiple transport types:
  - stdio: Standard input/output (default)
  - sse: Server-Sent Events over HTTP
  - streamable-http: Streamable HTTP transport

Environment Variables:
  PROMETHEUS_URL        - Prometheus server URL (default: http://localhost:9090)
  PROMETHEUS_USERNAME   - Optional: Basic auth username
  PROMETHEUS_PASSWORD   - Optional: Basic auth password
  PROMETHEUS_TOKEN      - Optional: Bearer token for authentication
  PROMETHEUS_ORGID      - Optional: Organization ID for multi-tenant setups
  ALERTMANAGER_URL      - Alertmanager URL (default: http://localhost:9093)
  ALERTMANAGER_USERNAME - Optional: Basic auth username
  ALERTMANAGER_PASSWORD - Optional: Basic auth password
  ALERTMANAGER_TOKEN    - Optional: Bearer token for authentication
  PROMETHEUS_TIMEOUT    - Upstream request timeout in seconds (default: 30)
  MCP_ERROR_POLICY      - report or propagate (default: report)
  MCP_DEBUG             - Enable debug logging

Flags take precedence over environment variables.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Flags(), opts)
		},
	}

	addServeFlags(cmd.Flags(), opts)

	return cmd
}

func addServeFlags(flags *pflag.FlagSet, opts *serveOptions) {
	// Configuration flags, read through viper
	flags.String("prometheus-url", server.DefaultPrometheusURL, "Prometheus server URL")
	flags.String("alertmanager-url", server.DefaultAlertmanagerURL, "Alertmanager URL")
	flags.Int("timeout", server.DefaultTimeoutSeconds, "Upstream request timeout in seconds")
	flags.String("error-policy", string(server.ErrorPolicyReport), "How upstream failures are returned: report or propagate")
	flags.Bool("debug", false, "Enable debug logging")

	// Transport flags
	flags.StringVar(&opts.transport, "transport", transportStdio, "Transport type: stdio, sse, or streamable-http")
	flags.StringVar(&opts.httpAddr, "http-addr", ":8080", "HTTP server address (for sse and streamable-http transports)")
	flags.StringVar(&opts.sseEndpoint, "sse-endpoint", "/sse", "SSE endpoint path (for sse transport)")
	flags.StringVar(&opts.messageEndpoint, "message-endpoint", "/message", "Message endpoint path (for sse transport)")
	flags.StringVar(&opts.httpEndpoint, "http-endpoint", "/mcp", "HTTP endpoint path (for streamable-http transport)")
}

// loadConfig resolves the configuration from defaults, environment and flags
func loadConfig(flags *pflag.FlagSet) (server.Config, error) {
	v := server.NewViper()
	if err := server.BindFlags(v, flags, configFlags); err != nil {
		return server.Config{}, err
	}
	return server.LoadConfig(v)
}

// newMCPServer creates the MCP server and registers every tool, resource
// and prompt
func newMCPServer(sc *server.ServerContext, version string) (*mcpserver.MCPServer, error) {
	mcpSrv := mcpserver.NewMCPServer(serverName, version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithResourceCapabilities(false, false),
		mcpserver.WithPromptCapabilities(false),
		mcpserver.WithRecovery(),
	)

	if err := prometheus.Register(mcpSrv, sc); err != nil {
		return nil, fmt.Errorf("failed to register Prometheus tools: %w", err)
	}
	if err := alertmanager.Register(mcpSrv, sc); err != nil {
		return nil, fmt.Errorf("failed to register Alertmanager tools: %w", err)
	}

	return mcpSrv, nil
}

// runServe contains the main server logic with support for multiple transports
func runServe(flags *pflag.FlagSet, opts *serveOptions) error {
	config, err := loadConfig(flags)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := server.NewZerologLogger(config.Debug)

	// Setup graceful shutdown - listen for both SIGINT and SIGTERM
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	shutdownTracing, err := instrumentation.SetupTracing(shutdownCtx, serverName, rootCmd.Version)
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			logger.Error("Error during tracer shutdown", "error", err.Error())
		}
	}()

	// Create server context
	serverContext, err := server.NewServerContext(shutdownCtx,
		server.WithDebugMode(config.Debug),
		server.WithLogger(logger),
		server.WithConfig(config),
	)
	if err != nil {
		return fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() {
		if err := serverContext.Shutdown(); err != nil {
			logger.Error("Error during server context shutdown", "error", err.Error())
		}
	}()

	logEndpoint(logger, "Prometheus", config.Prometheus)
	logEndpoint(logger, "Alertmanager", config.Alertmanager)
	logger.Info("Server configuration",
		"timeout", config.Timeout.String(),
		"error_policy", string(config.ErrorPolicy),
		"tracing", instrumentation.TracingEnabled())

	mcpSrv, err := newMCPServer(serverContext, rootCmd.Version)
	if err != nil {
		return err
	}

	logger.Info("Starting MCP monitoring server", "transport", opts.transport)

	// Start the appropriate server based on transport type
	switch opts.transport {
	case transportStdio:
		return runStdioServer(mcpSrv, logger)
	case transportSSE:
		return runSSEServer(shutdownCtx, mcpSrv, logger, opts)
	case transportStreamableHTTP:
		return runStreamableHTTPServer(shutdownCtx, mcpSrv, logger, opts)
	default:
		return fmt.Errorf("unsupported transport type: %s (supported: stdio, sse, streamable-http)", opts.transport)
	}
}

func logEndpoint(logger server.Logger, name string, config server.EndpointConfig) {
	auth := "none"
	switch {
	case config.Token != "":
		auth = "bearer token"
	case config.Username != "" && config.Password != "":
		auth = "basic auth"
	}

	args := []interface{}{"url", config.URL, "authentication", auth}
	if config.Username != "" && config.Token == "" {
		args = append(args, "username", config.Username)
	}
	if config.OrgID != "" {
		args = append(args, "org_id", config.OrgID)
	}
	logger.Info(name+" configuration", args...)
}

// runStdioServer runs the server with STDIO transport
func runStdioServer(mcpSrv *mcpserver.MCPServer, logger server.Logger) error {
	// ServeStdio handles SIGINT and SIGTERM itself and returns once stdin closes
	if err := mcpserver.ServeStdio(mcpSrv); err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}

	logger.Info("Server gracefully stopped")
	return nil
}

// runSSEServer runs the server with SSE transport
func runSSEServer(ctx context.Context, mcpSrv *mcpserver.MCPServer, logger server.Logger, opts *serveOptions) error {
	logger.Debug("Initializing SSE server",
		"address", opts.httpAddr, "sse_endpoint", opts.sseEndpoint, "message_endpoint", opts.messageEndpoint)

	// Create SSE server with custom endpoints
	sseServer := mcpserver.NewSSEServer(mcpSrv,
		mcpserver.WithSSEEndpoint(opts.sseEndpoint),
		mcpserver.WithMessageEndpoint(opts.messageEndpoint),
	)

	mux := newHTTPMux()
	mux.Handle(opts.sseEndpoint, sseServer)
	mux.Handle(opts.messageEndpoint, sseServer)

	return serveHTTP(ctx, logger, "SSE", opts.httpAddr, mux, sseServer.Shutdown)
}

// runStreamableHTTPServer runs the server with Streamable HTTP transport
func runStreamableHTTPServer(ctx context.Context, mcpSrv *mcpserver.MCPServer, logger server.Logger, opts *serveOptions) error {
	// Create Streamable HTTP server with custom endpoint
	httpServer := mcpserver.NewStreamableHTTPServer(mcpSrv,
		mcpserver.WithEndpointPath(opts.httpEndpoint),
	)

	mux := newHTTPMux()
	mux.Handle(opts.httpEndpoint, httpServer)

	return serveHTTP(ctx, logger, "Streamable HTTP", opts.httpAddr, mux, httpServer.Shutdown)
}

// newHTTPMux returns a mux serving the server's own metrics
func newHTTPMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle(metricsPath, instrumentation.Handler())
	return mux
}

// serveHTTP serves handler on addr until ctx is done, then closes the MCP
// sessions with closeSessions and shuts the listener down
func serveHTTP(ctx context.Context, logger server.Logger, name, addr string, handler http.Handler,
	closeSessions func(context.Context) error) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		// Streaming requests end when ctx is cancelled.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	logger.Info(name+" server starting", "address", addr, "metrics", metricsPath)

	// Start server in goroutine
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverDone <- err
		}
	}()

	// Wait for either shutdown signal or server completion
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received, stopping " + name + " server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := closeSessions(shutdownCtx); err != nil {
			logger.Warn("Error closing MCP sessions", "error", err.Error())
		}
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("error shutting down %s server: %w", name, err)
		}
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("%s server stopped with error: %w", name, err)
		}
		logger.Info(name + " server stopped normally")
	}

	logger.Info(name + " server gracefully stopped")
	return nil
}
