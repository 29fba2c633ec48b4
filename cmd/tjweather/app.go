package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"tjweather/internal/config"
	"tjweather/internal/fields"
	"tjweather/internal/location"
	"tjweather/internal/output"
	"tjweather/internal/providers/tjweather"
	"tjweather/internal/weather"
)

const (
	appName        = "tjweather"
	appDescription = "TJWeather API command-line tool"
	appHomepage    = "https://github.com/fengyu/tjweather"
)

// App encapsulates the command dependencies
type App struct {
	stdout io.Writer
	stderr io.Writer

	newLoader func(file string) *config.Loader
	homeDir   func() (string, error)

	// global flags
	verbose    bool
	configFile string
	noColor    bool

	cfg       *config.Config
	logger    *slog.Logger
	presenter *output.Presenter
	palette   palette
}

type palette struct {
	info    *color.Color
	success *color.Color
	warn    *color.Color
	fail    *color.Color
	muted   *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		info:    color.New(color.FgBlue),
		success: color.New(color.FgGreen),
		warn:    color.New(color.FgYellow),
		fail:    color.New(color.FgRed),
		muted:   color.New(color.FgHiBlack),
	}
	for _, c := range []*color.Color{p.info, p.success, p.warn, p.fail, p.muted} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// NewApp creates an application writing to the given streams
func NewApp(stdout, stderr io.Writer) *App {
	return &App{
		stdout:    stdout,
		stderr:    stderr,
		newLoader: config.NewLoader,
		homeDir:   os.UserHomeDir,
		palette:   newPalette(false),
	}
}

// Run executes the command line and returns the process exit code.
func (app *App) Run(ctx context.Context, args []string) int {
	root := app.rootCommand()
	root.SetArgs(args)
	root.SetOut(app.stdout)
	root.SetErr(app.stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		app.reportError(err)
		return 1
	}
	return 0
}

func (app *App) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           appName,
		Short:         appDescription,
		Version:       tjweather.Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return app.setup()
		},
	}

	flags := root.PersistentFlags()
	flags.BoolVarP(&app.verbose, "verbose", "v", false, "verbose output")
	flags.StringVarP(&app.configFile, "config", "c", "", "path to an additional env config file")
	flags.BoolVar(&app.noColor, "no-color", false, "disable colored output")

	root.AddCommand(
		app.queryCommand(),
		app.downloadCommand(),
		app.initCommand(),
		app.configCommand(),
		app.fieldsCommand(),
		app.versionCommand(),
	)
	return root
}

// setup loads the configuration snapshot and builds the logger.
func (app *App) setup() error {
	useColor := !app.noColor && !color.NoColor
	app.palette = newPalette(useColor)
	app.presenter = output.NewPresenter(useColor)

	cfg, err := app.newLoader(app.configFile).Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if app.verbose {
		cfg = cfg.WithLogLevel("debug")
	}
	app.cfg = cfg
	app.logger = cfg.NewLogger(app.stderr)

	for _, w := range cfg.Warnings {
		app.logger.Warn(w)
	}
	app.logger.Debug("configuration loaded", "sources", cfg.Sources)
	return nil
}

func (app *App) weatherService() weather.Service {
	// The --fields flag carries the default, so an explicit empty list is
	// validated rather than replaced.
	return weather.NewWeatherService(app.cfg, weather.Options{Catalog: fields.CLI}, app.logger)
}

// reportError prints err with hints for the errors users can fix.
func (app *App) reportError(err error) {
	_, _ = app.palette.fail.Fprintf(app.stderr, "Error: %v\n", err)

	var invalidFields *fields.InvalidFieldsError
	switch {
	case errors.Is(err, location.ErrInvalidLocation):
		_, _ = app.palette.warn.Fprintln(app.stderr, "Expected format: longitude,latitude (e.g. 116.23128,40.22077)")
		_, _ = app.palette.warn.Fprintln(app.stderr, "Longitude range: [-180,180] or [0,360]")
		_, _ = app.palette.warn.Fprintln(app.stderr, "Latitude range: [-90,90]")
	case errors.As(err, &invalidFields):
		_, _ = app.palette.info.Fprintln(app.stderr, "Common fields: ws100m, t2m, rh2m, tp, ssrd (see 'tjweather fields')")
	case errors.Is(err, config.ErrMissingAPIKey):
		_, _ = app.palette.info.Fprintln(app.stderr, "Run 'tjweather init' to create a config file")
	}
}

func (app *App) println(c *color.Color, a ...any) {
	_, _ = c.Fprintln(app.stdout, a...)
}

func (app *App) printf(c *color.Color, format string, a ...any) {
	_, _ = c.Fprintf(app.stdout, format, a...)
}
