package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"tjweather/internal/config"
	"tjweather/internal/fields"
	"tjweather/internal/mcpserver"
	"tjweather/internal/providers/tjweather"
	"tjweather/internal/weather"
)

const shutdownTimeout = 5 * time.Second

// App encapsulates application dependencies
type App struct {
	router *gin.Engine
	server *mcp.Server
	logger *slog.Logger
	cfg    *config.Config
}

// NewApp creates a new application with injected dependencies
func NewApp(cfg *config.Config, ginMode string, logger *slog.Logger) (*App, error) {
	weatherSvc := weather.NewWeatherService(cfg, weather.Options{
		Catalog:       fields.MCP,
		DefaultFields: mcpserver.DefaultFields,
	}, logger)

	server, err := mcpserver.NewServer(weatherSvc, tjweather.Version, logger)
	if err != nil {
		return nil, err
	}

	// Set Gin mode
	gin.SetMode(ginMode)

	// Create Gin router
	router := gin.New()

	// Add middleware
	router.Use(gin.Recovery())

	app := &App{
		router: router,
		server: server,
		logger: logger,
		cfg:    cfg,
	}

	// Register routes
	app.registerRoutes()

	return app, nil
}

// RunStdio serves a single MCP session over stdin/stdout until the client
// disconnects or ctx is done.
func (app *App) RunStdio(ctx context.Context) error {
	return app.server.Run(ctx, &mcp.StdioTransport{})
}

// RunHTTP serves the streamable HTTP transport until ctx is done.
func (app *App) RunHTTP(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           app.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
