package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// registerRoutes sets up all HTTP endpoints
func (app *App) registerRoutes() {
	// Health check endpoint
	app.router.GET("/ping", app.handlePing)

	// MCP streamable HTTP transport; every session shares one server
	handler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return app.server
	}, nil)
	app.router.Any("/mcp", gin.WrapH(handler))
}
