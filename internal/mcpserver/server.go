// Package mcpserver exposes the forecast service as MCP tools.
package mcpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"tjweather/internal/fields"
	"tjweather/internal/forecast"
	"tjweather/internal/weather"
)

const (
	Name = "tjweather-mcp"

	// DefaultFields is the field list used when a weather_query call omits fields.
	DefaultFields = "ws100m"
)

// QueryInput is the argument object of weather_query. Days, hours and
// timezone accept a number or a string; text that does not start with an
// integer falls back to the default.
type QueryInput struct {
	Location   string `json:"location"`
	Fields     string `json:"fields,omitempty"`
	Days       any    `json:"days,omitempty"`
	Hours      any    `json:"hours,omitempty"`
	Resolution string `json:"resolution,omitempty"`
	Timezone   any    `json:"timezone,omitempty"`
	Grid       string `json:"grid,omitempty"`
}

// FieldsInfoInput is the argument object of weather_fields_info.
type FieldsInfoInput struct {
	Region string `json:"region,omitempty"`
}

type handlers struct {
	svc    weather.Service
	logger *slog.Logger
}

// NewServer creates an MCP server with the weather tools registered. svc
// should validate against the fields.MCP catalog.
func NewServer(svc weather.Service, version string, logger *slog.Logger) (*mcp.Server, error) {
	h := &handlers{
		svc:    svc,
		logger: logger.With("component", "mcp-server"),
	}

	querySchema, err := queryInputSchema()
	if err != nil {
		return nil, err
	}
	infoSchema, err := fieldsInfoInputSchema()
	if err != nil {
		return nil, err
	}

	// Arguments are decoded by the handlers so that malformed input is
	// reported as a tool error instead of an invalid params fault.
	server := mcp.NewServer(&mcp.Implementation{Name: Name, Version: version}, nil)
	server.AddTool(&mcp.Tool{
		Name:        "weather_query",
		Description: "Query TJWeather forecast data",
		InputSchema: querySchema,
	}, toolHandler(h, "weather_query", h.weatherQuery))
	server.AddTool(&mcp.Tool{
		Name:        "weather_fields_info",
		Description: "Describe the supported forecast fields",
		InputSchema: infoSchema,
	}, toolHandler(h, "weather_fields_info", h.fieldsInfo))

	return server, nil
}

func queryInputSchema() (*jsonschema.Schema, error) {
	schema, err := jsonschema.For[QueryInput](nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build weather_query schema: %w", err)
	}
	props := schema.Properties
	props["location"].Description = "coordinates as longitude,latitude (e.g. 116.23128,40.22077)"
	props["fields"].Description = "comma-separated field codes (e.g. ws100m,t2m,rh2m). Common: ws100m (100m wind speed), t2m (2m temperature), rh2m (2m humidity), tp (precipitation), ssrd (irradiance)"
	props["fields"].Default = json.RawMessage(`"` + DefaultFields + `"`)
	props["days"] = numberSchema("forecast days (0-45)", forecast.DefaultDays)
	props["hours"] = numberSchema("additional forecast hours", forecast.DefaultHours)
	props["timezone"] = numberSchema("timezone offset (-12 to 12)", forecast.DefaultTimezone)
	props["resolution"].Description = "temporal resolution: 15min or 1h"
	props["resolution"].Default = json.RawMessage(`"` + forecast.DefaultResolution + `"`)
	props["grid"].Description = "grid size: 1, 3, 5 or 7"
	props["grid"].Default = json.RawMessage(`"` + forecast.DefaultGrid + `"`)
	return schema, nil
}

func numberSchema(description string, def int) *jsonschema.Schema {
	return &jsonschema.Schema{
		Types:       []string{"number", "string"},
		Description: description,
		Default:     json.RawMessage(strconv.Itoa(def)),
	}
}

func fieldsInfoInputSchema() (*jsonschema.Schema, error) {
	schema, err := jsonschema.For[FieldsInfoInput](nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build weather_fields_info schema: %w", err)
	}
	region := schema.Properties["region"]
	region.Description = "field region"
	region.Enum = []any{string(fields.RegionGlobal), string(fields.RegionChina)}
	region.Default = json.RawMessage(`"` + string(fields.RegionGlobal) + `"`)
	return schema, nil
}

// toolHandler decodes the call arguments into In before calling fn. Unknown
// keys and mistyped values come back as an error result.
func toolHandler[In any](h *handlers, name string, fn func(context.Context, In) *mcp.CallToolResult) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var in In
		if err := decodeArguments(req.Params.Arguments, &in); err != nil {
			h.logger.Warn("rejected tool arguments", "tool", name, "error", err)
			return errorResult(err), nil
		}
		return fn(ctx, in), nil
	}
}

func decodeArguments(raw json.RawMessage, v any) error {
	if len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

func (h *handlers) weatherQuery(ctx context.Context, in QueryInput) *mcp.CallToolResult {
	res, err := h.svc.Query(ctx, in.forecastInput())
	if err != nil {
		h.logger.Warn("weather_query failed", "location", in.Location, "error", err)
		return errorResult(err)
	}

	// Upstream error envelopes are passed through; the caller branches on code.
	text, err := res.Envelope.Indented()
	if err != nil {
		return errorResult(err)
	}
	return textResult(text)
}

func (h *handlers) fieldsInfo(_ context.Context, in FieldsInfoInput) *mcp.CallToolResult {
	region := fields.Region(in.Region)
	if region == "" {
		region = fields.RegionGlobal
	}

	b, err := json.MarshalIndent(fields.InfoFor(region), "", "  ")
	if err != nil {
		return errorResult(err)
	}
	return textResult(string(b))
}

func (in QueryInput) forecastInput() forecast.Input {
	return forecast.Input{
		Location:   in.Location,
		Fields:     in.Fields,
		Days:       numberText(in.Days),
		Hours:      numberText(in.Hours),
		Resolution: in.Resolution,
		Timezone:   numberText(in.Timezone),
		Grid:       in.Grid,
	}
}

// numberText renders a decoded JSON value as the text Build parses. Values
// other than numbers and strings are treated as absent.
func numberText(v any) string {
	switch n := v.(type) {
	case float64:
		return forecast.FormatNumber(n)
	case string:
		return n
	default:
		return ""
	}
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

// errorResult reports a failure as tool output rather than a protocol error.
func errorResult(err error) *mcp.CallToolResult {
	b, _ := json.MarshalIndent(struct {
		Error   bool   `json:"error"`
		Message string `json:"message"`
	}{Error: true, Message: err.Error()}, "", "  ")

	res := textResult(string(b))
	res.IsError = true
	return res
}
