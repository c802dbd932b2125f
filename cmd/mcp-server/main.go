// Command mcp-server exposes exprtree tools as an HTTP endpoint for AI
// agent frameworks.
//
// Usage:
//
//	mcp-server --addr :8080
//
// Tool call endpoint: POST /tool
// Schema endpoint:    GET  /schema
// Health endpoint:    GET  /health
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/njchilds90/exprtree/internal/config"
	"github.com/njchilds90/exprtree/internal/server"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := pflag.NewFlagSet("mcp-server", pflag.ContinueOnError)
	cfgFile := fs.String("config", "", "config file (default: ./exprtree.yaml)")
	fs.String("addr", config.DefaultAddr, "Listen address")
	fs.String("log-level", config.DefaultLogLevel, "Log level (debug|info|warn|error)")
	fs.String("log-format", config.DefaultLogFormat, "Log format (text|json)")
	fs.Int64("max-body-bytes", config.DefaultMaxBodyBytes, "Maximum request body size")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, _, err := config.Load(*cfgFile, fs)
	if err != nil {
		return err
	}
	logger := cfg.Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("routes",
		"tool", "POST /tool",
		"schema", "GET /schema",
		"health", "GET /health")
	return server.New(cfg, logger).Serve(ctx)
}
