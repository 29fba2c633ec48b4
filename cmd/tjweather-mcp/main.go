package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/pflag"

	"tjweather/internal/config"
)

func main() {
	configFile := pflag.StringP("config", "c", "", "path to an additional env config file")
	httpAddr := pflag.String("http", "", "serve streamable HTTP on this address instead of stdio (e.g. :8080)")
	ginMode := pflag.String("gin-mode", gin.ReleaseMode, "gin mode for the HTTP transport (debug|release|test)")
	pflag.Parse()

	// Load configuration
	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger; stdout belongs to the stdio transport
	logger := cfg.NewLogger(os.Stderr)
	slog.SetDefault(logger) // Set as default logger for the application

	for _, w := range cfg.Warnings {
		logger.Warn(w)
	}
	if err := cfg.Err(); err != nil {
		logger.Warn("configuration incomplete, tool calls will fail", "error", err)
	}

	// Create app
	app, err := NewApp(cfg, *ginMode, logger)
	if err != nil {
		log.Fatalf("Failed to create app: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *httpAddr != "" {
		logger.Info("starting server", "transport", "http", "addr", *httpAddr)
		err = app.RunHTTP(ctx, *httpAddr)
	} else {
		logger.Info("starting server", "transport", "stdio")
		err = app.RunStdio(ctx)
	}
	if err != nil && ctx.Err() == nil {
		logger.Error("server failed", "error", err)
		stop()
		os.Exit(1)
	}
}
