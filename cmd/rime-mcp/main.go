// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// rime-mcp is an MCP (Model Context Protocol) server that bridges between
// MCP clients (like Claude Desktop, VS Code) and Snowflake Cortex Agents.
//
// It speaks JSON-RPC to MCP clients over stdio or streamable HTTP and calls
// the Snowflake Cortex Agents REST API, exposing agentic analytics over the
// configured semantic model and Cortex Search service as MCP tools.
//
// Usage:
//
//	rime-mcp                                  # stdio transport
//	rime-mcp --transport http --port 8000     # streamable HTTP on /mcp
//
// Claude Desktop configuration (claude_desktop_config.json):
//
//	{
//	  "mcpServers": {
//	    "rime": {
//	      "command": "/path/to/rime-mcp",
//	      "env": {
//	        "SNOWFLAKE_ACCOUNT_URL": "https://myorg-myaccount.snowflakecomputing.com",
//	        "SNOWFLAKE_PAT": "...",
//	        "SEMANTIC_MODEL_FILE": "@db.schema.stage/model.yaml",
//	        "CORTEX_SEARCH_SERVICE": "db.schema.search_service"
//	      }
//	    }
//	  }
//	}
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/teradata-labs/rime/internal/version"
	"github.com/teradata-labs/rime/pkg/config"
	"github.com/teradata-labs/rime/pkg/mcp/server"
	"github.com/teradata-labs/rime/pkg/mcp/transport"
)

const serverName = "rime-mcp"

func main() {
	transportMode := flag.String("transport", "stdio", "MCP transport (stdio or http)")
	host := flag.String("host", envOr("MCP_HOST", "127.0.0.1"), "Listen host for the http transport")
	port := flag.String("port", envOr("MCP_PORT", "8000"), "Listen port for the http transport")
	cfgFile := flag.String("config", "", "Config file path (defaults to ~/.rime/config.yaml)")
	logFile := flag.String("log-file", "", "Log file path (overrides config; defaults to stderr)")
	logLevel := flag.String("log-level", "", "Log level: debug, info, warn, error (overrides config)")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.Get())
		return
	}

	cfg, err := config.Load(*cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Configure logging -- CRITICAL: never write to stdout (that's the MCP transport)
	logger := setupLogger(
		firstNonEmpty(*logFile, cfg.Logging.File),
		firstNonEmpty(*logLevel, cfg.Logging.Level),
	)
	defer func() { _ = logger.Sync() }()

	logger.Info("starting rime-mcp server",
		zap.String("transport", *transportMode),
		zap.String("version", version.Get()),
	)

	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	// Connect the bridge to Snowflake Cortex Agents
	bridge, err := server.NewCortexBridge(cfg.CortexConfig(), server.WithBridgeLogger(logger))
	if err != nil {
		logger.Fatal("failed to create cortex bridge", zap.Error(err))
	}

	// Create MCP server with bridge as provider
	mcpServer := server.NewMCPServer(serverName, version.Get(), logger,
		server.WithToolProvider(bridge),
	)

	// Set up signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
		cancel()
	}()

	var runErr error
	switch *transportMode {
	case "stdio":
		runErr = runStdio(ctx, mcpServer, logger)
	case "http":
		runErr = runHTTP(ctx, mcpServer, logger, net.JoinHostPort(*host, *port))
	default:
		logger.Fatal("unknown transport", zap.String("transport", *transportMode))
	}

	if runErr != nil {
		if ctx.Err() != nil {
			logger.Info("server stopped gracefully")
		} else {
			logger.Error("server error", zap.Error(runErr))
			os.Exit(1)
		}
	}
}

// runStdio serves MCP over stdin/stdout until the client disconnects or the
// context is cancelled.
func runStdio(ctx context.Context, mcpServer *server.MCPServer, logger *zap.Logger) error {
	stdioTransport := transport.NewStdioServerTransport(os.Stdin, os.Stdout)
	logger.Info("MCP server ready, awaiting client on stdio")
	return mcpServer.Serve(ctx, stdioTransport)
}

// runHTTP serves MCP over the streamable HTTP transport on the /mcp endpoint
// until the context is cancelled.
func runHTTP(ctx context.Context, mcpServer *server.MCPServer, logger *zap.Logger, addr string) error {
	handler, err := transport.NewStreamableHTTPServer(transport.StreamableHTTPServerConfig{
		Handler: func(msg []byte) ([]byte, error) {
			return mcpServer.HandleMessage(ctx, msg)
		},
		Logger:     logger,
		SessionTTL: transport.DefaultSessionTTL,
	})
	if err != nil {
		return fmt.Errorf("creating HTTP transport: %w", err)
	}
	defer handler.Close()

	transport.WarnIfNotLocalhost(logger, addr)

	mux := http.NewServeMux()
	mux.Handle("/mcp", handler)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("MCP server listening", zap.String("addr", addr), zap.String("path", "/mcp"))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down HTTP server: %w", err)
		}
		return ctx.Err()
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server: %w", err)
		}
		return nil
	}
}

// setupLogger creates a zap logger that writes to a file (or stderr if no file specified).
// IMPORTANT: The logger must NEVER write to stdout because stdout is the MCP stdio transport.
func setupLogger(logFile, logLevel string) *zap.Logger {
	logger, err := buildLogger(logFile, logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to setup logger: %v\n", err)
		os.Exit(1)
	}
	return logger
}

// buildLogger is the testable core of setupLogger. It returns an error instead
// of calling os.Exit so tests can exercise all code paths.
func buildLogger(logFile, logLevel string) (*zap.Logger, error) {
	level := parseLogLevel(logLevel)

	var output zapcore.WriteSyncer
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600) // #nosec G304 -- log file path from CLI flag
		if err != nil {
			return nil, fmt.Errorf("open log file %s: %w", logFile, err)
		}
		output = zapcore.AddSync(f)
	} else {
		// Write to stderr (not stdout!) as a fallback
		output = zapcore.AddSync(os.Stderr)
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "ts"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		output,
		level,
	)

	return zap.New(core), nil
}

// parseLogLevel converts a string log level to a zapcore.Level.
func parseLogLevel(logLevel string) zapcore.Level {
	switch logLevel {
	case "debug":
		return zap.DebugLevel
	case "warn":
		return zap.WarnLevel
	case "error":
		return zap.ErrorLevel
	default:
		return zap.InfoLevel
	}
}

// envOr returns the value of the environment variable key, or fallback when
// unset or empty.
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// firstNonEmpty returns the first non-empty string.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
