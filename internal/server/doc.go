// Package server provides the core server infrastructure for the MCP monitoring server.
//
// This package contains:
// - ServerContext: Configuration and shared resources management
// - Config: Prometheus and Alertmanager endpoints, request timeout and error policy
// - Logger interface: Structured logging abstraction, backed by zerolog
//
// Configuration is assembled with viper from defaults, environment variables
// and command-line flags, validated once, and handed to the ServerContext
// before any client is built:
//
//	v := server.NewViper()
//	cfg, err := server.LoadConfig(v)
//	serverContext, err := server.NewServerContext(ctx,
//	    server.WithConfig(cfg),
//	    server.WithLogger(server.NewZerologLogger(cfg.Debug)),
//	)
package server
