package tjweather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"tjweather/internal/config"
	"tjweather/internal/forecast"
)

// API Docs: https://api.tjweather.com
// Sample request: https://api.tjweather.com/beta?key=KEY&loc=116.23128,40.22077&fields=t2m&fcst_days=3&fcst_hours=0&t_res=1h&tz=8&grid=1
const (
	requestTimeout = 30 * time.Second
)

// Version is sent in the User-Agent header.
var Version = "1.0.0"

type Client struct {
	httpClient *http.Client
	apiKey     string
	jsonURL    string
	ncURL      string
	userAgent  string
	logger     *slog.Logger
}

// NewClient creates a client for the endpoints and key in cfg.
func NewClient(cfg *config.Config, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: requestTimeout},
		apiKey:     cfg.APIKey,
		jsonURL:    cfg.JSONEndpoint,
		ncURL:      cfg.NCEndpoint,
		userAgent:  "tjweather/" + Version,
		logger:     logger.With("component", "tjweather-client"),
	}
}

// Query fetches forecast data as JSON. Error statuses that still carry a JSON
// envelope are returned as the envelope; check Envelope.Err for the code.
func (c *Client) Query(ctx context.Context, req forecast.Request) (*Envelope, error) {
	params := req.Params()
	params.Del("download")
	params.Del("filename")

	body, status, err := c.get(ctx, c.jsonURL, params)
	if err != nil {
		return nil, &TransportError{Op: "weather query", Err: err}
	}

	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		if status < 200 || status > 299 {
			return nil, &TransportError{Op: "weather query", Err: fmt.Errorf("fetch returned status %d: %s", status, string(body))}
		}
		return nil, &TransportError{Op: "weather query", Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	env.Raw = body

	c.logger.Debug("weather query completed",
		"status", status,
		"code", env.Code,
		"rows", rowCount(&env),
	)

	return &env, nil
}

// Download fetches the NetCDF payload for req. The bytes are returned as-is.
func (c *Client) Download(ctx context.Context, req forecast.Request) ([]byte, error) {
	params := req.Params()
	params.Set("download", "true")
	if req.Filename != "" {
		params.Set("filename", req.Filename)
	}

	body, status, err := c.get(ctx, c.ncURL, params)
	if err != nil {
		return nil, &TransportError{Op: "NetCDF download failed", Err: err}
	}

	if status < 200 || status > 299 {
		var env struct {
			Message string `json:"message"`
		}
		msg := fmt.Sprintf("status %d", status)
		if json.Unmarshal(body, &env) == nil && env.Message != "" {
			msg = env.Message
		}
		return nil, &TransportError{Op: "NetCDF download failed", Err: errors.New(msg)}
	}

	c.logger.Debug("NetCDF download completed", "bytes", len(body))

	return body, nil
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values) ([]byte, int, error) {
	// Build URL with query parameters
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to parse endpoint URL: %w", err)
	}

	q := u.Query()
	for k, vs := range params {
		q[k] = vs
	}
	q.Set("key", c.apiKey)
	u.RawQuery = q.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("User-Agent", c.userAgent)
	httpReq.Header.Set("Content-Type", "application/json")

	c.logger.Debug("sending request",
		"endpoint", endpoint,
		"loc", params.Get("loc"),
		"fields", params.Get("fields"),
	)

	// Make the HTTP request
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, 0, err
	}
	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response: %w", err)
	}

	return body, resp.StatusCode, nil
}

func rowCount(env *Envelope) int {
	if env.Data == nil {
		return 0
	}
	return len(env.Data.Data)
}
