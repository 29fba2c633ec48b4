package weather

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"tjweather/internal/config"
	"tjweather/internal/fields"
	"tjweather/internal/forecast"
	"tjweather/internal/location"
	"tjweather/internal/providers/tjweather"
	"tjweather/internal/timezone"
)

// TimezoneAuto asks for the timezone offset to be derived from the location.
const TimezoneAuto = "auto"

type ForecastProvider interface {
	// Query fetches forecast data as a JSON envelope
	Query(ctx context.Context, req forecast.Request) (*tjweather.Envelope, error)
	// Download fetches the NetCDF payload
	Download(ctx context.Context, req forecast.Request) ([]byte, error)
}

type TimezoneResolver interface {
	OffsetHours(latitude, longitude float64, at time.Time) (int, error)
}

// Service validates front-end input and performs a single upstream call.
type Service interface {
	// Prepare validates in against the service's catalog and builds the request.
	Prepare(in forecast.Input) (forecast.Request, error)
	Query(ctx context.Context, in forecast.Input) (*QueryResult, error)
	Download(ctx context.Context, in forecast.Input) (*DownloadResult, error)
}

// QueryResult carries the request that was sent and the envelope received.
// A non-200 envelope code is not an error here; use Envelope.Err.
type QueryResult struct {
	Request  forecast.Request
	Envelope *tjweather.Envelope
}

// DownloadResult carries the NetCDF payload and the local file it belongs in.
type DownloadResult struct {
	Request forecast.Request
	Data    []byte
	File    string
}

// Options selects the catalog and field default of a front-end. With no
// DefaultFields an empty field list is validated as given.
type Options struct {
	Catalog       *fields.Catalog
	DefaultFields string
}

type weatherService struct {
	forecastProvider ForecastProvider
	timezones        func() (TimezoneResolver, error)
	cfg              *config.Config
	opts             Options
	now              func() time.Time
	logger           *slog.Logger
}

// NewWeatherService creates a service backed by the TJWeather API. The
// timezone database is only loaded when a request asks for "auto".
func NewWeatherService(cfg *config.Config, opts Options, logger *slog.Logger) Service {
	timezones := func() (TimezoneResolver, error) {
		return timezone.NewService()
	}
	return NewWeatherServiceWithProvider(tjweather.NewClient(cfg, logger), timezones, cfg, opts, logger)
}

// NewWeatherServiceWithProvider creates a service with custom providers.
// This is useful for testing with mock providers
func NewWeatherServiceWithProvider(
	forecastProvider ForecastProvider,
	timezones func() (TimezoneResolver, error),
	cfg *config.Config,
	opts Options,
	logger *slog.Logger,
) Service {
	if opts.Catalog == nil {
		opts.Catalog = fields.CLI
	}
	return &weatherService{
		forecastProvider: forecastProvider,
		timezones:        timezones,
		cfg:              cfg,
		opts:             opts,
		now:              time.Now,
		logger:           logger.With("component", "weather-service", "catalog", opts.Catalog.Name()),
	}
}

func (s *weatherService) Prepare(in forecast.Input) (forecast.Request, error) {
	if in.Fields == "" {
		in.Fields = s.opts.DefaultFields
	}

	coords, err := location.Parse(in.Location)
	if err != nil {
		s.logger.Debug("rejected location", "location", in.Location, "error", err)
		return forecast.Request{}, err
	}

	if err := s.opts.Catalog.Validate(fields.Split(in.Fields)).Err(); err != nil {
		s.logger.Debug("rejected fields", "fields", in.Fields, "error", err)
		return forecast.Request{}, err
	}

	if strings.EqualFold(strings.TrimSpace(in.Timezone), TimezoneAuto) {
		in.Timezone = s.resolveTimezone(coords.Latitude, coords.SignedLongitude())
	}

	return forecast.Build(in)
}

// resolveTimezone returns the offset for the coordinates as text. On failure
// the value is left for Build to replace with the default offset.
func (s *weatherService) resolveTimezone(latitude, longitude float64) string {
	if s.timezones == nil {
		return TimezoneAuto
	}
	resolver, err := s.timezones()
	if err != nil {
		s.logger.Warn("timezone lookup unavailable", "error", err)
		return TimezoneAuto
	}
	offset, err := resolver.OffsetHours(latitude, longitude, s.now())
	if err != nil {
		s.logger.Warn("failed to determine timezone",
			"latitude", latitude,
			"longitude", longitude,
			"error", err,
		)
		return TimezoneAuto
	}

	s.logger.Debug("determined timezone for location",
		"latitude", latitude,
		"longitude", longitude,
		"offset", offset,
	)
	return strconv.Itoa(offset)
}

func (s *weatherService) Query(ctx context.Context, in forecast.Input) (*QueryResult, error) {
	if err := s.cfg.Err(); err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}

	in.Download = false
	in.Filename = ""
	req, err := s.Prepare(in)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("querying forecast",
		"location", req.Location.String(),
		"fields", req.Fields,
		"days", req.Days,
		"hours", req.Hours,
	)

	env, err := s.forecastProvider.Query(ctx, req)
	if err != nil {
		s.logger.Error("failed to get forecast from provider", "error", err)
		return nil, err
	}

	return &QueryResult{Request: req, Envelope: env}, nil
}

func (s *weatherService) Download(ctx context.Context, in forecast.Input) (*DownloadResult, error) {
	if err := s.cfg.Err(); err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}

	in.Download = true
	req, err := s.Prepare(in)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("downloading NetCDF",
		"location", req.Location.String(),
		"fields", req.Fields,
		"grid", req.Grid,
	)

	data, err := s.forecastProvider.Download(ctx, req)
	if err != nil {
		s.logger.Error("failed to download NetCDF from provider", "error", err)
		return nil, err
	}

	return &DownloadResult{
		Request: req,
		Data:    data,
		File:    req.OutputFile(s.now()),
	}, nil
}
