//go:build integration

package tjweather

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"tjweather/internal/config"
	"tjweather/internal/forecast"
)

// Requires API_KEY in the environment or in a .env file.
func TestClient_Query_Integration(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Err(); err != nil {
		t.Skipf("configuration incomplete: %v", err)
	}

	req, err := forecast.Build(forecast.Input{
		Location: "116.23128,40.22077",
		Fields:   "t2m,ws100m",
		Days:     "1",
	})
	if err != nil {
		t.Fatalf("Failed to build request: %v", err)
	}

	client := NewClient(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))

	t.Logf("Making API call to TJWeather...")
	env, err := client.Query(context.Background(), req)
	if err != nil {
		t.Fatalf("Failed to query forecast: %v", err)
	}

	body, err := env.Indented()
	if err != nil {
		t.Fatalf("Failed to indent response: %v", err)
	}
	t.Logf("Raw API Response:\n%s", body)

	if err := env.Err(); err != nil {
		t.Fatalf("Upstream error: %v", err)
	}
	if !env.HasData() {
		t.Fatal("No forecast rows")
	}

	fields := env.Data.Units.Fields()
	if len(fields) != 2 {
		t.Errorf("Expected units for 2 fields, got %v", fields)
	}
	t.Logf("Init time: %s, rows: %d", env.Data.TimeInit, len(env.Data.Data))
}
