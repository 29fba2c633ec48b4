package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tjweather/internal/providers/tjweather"
)

// PingResponse represents the response for the ping endpoint
type PingResponse struct {
	Message string `json:"message"`
	Version string `json:"version"`
	// Configured is false while the API key or an endpoint is missing.
	Configured bool `json:"configured"`
}

// handlePing is a health check endpoint
func (app *App) handlePing(c *gin.Context) {
	c.JSON(http.StatusOK, PingResponse{
		Message:    "pong",
		Version:    tjweather.Version,
		Configured: app.cfg.Err() == nil,
	})
}
