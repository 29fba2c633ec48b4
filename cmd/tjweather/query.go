package main

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"tjweather/internal/forecast"
	"tjweather/internal/output"
	"tjweather/internal/weather"
)

// addRequestFlags registers the flags shared by query and download. -h is
// taken by --hours, so help is registered without a shorthand.
func addRequestFlags(flags *pflag.FlagSet, in *forecast.Input) {
	flags.Bool("help", false, "help for this command")
	flags.StringVarP(&in.Location, "location", "l", "", "coordinates as longitude,latitude (e.g. 116.23128,40.22077)")
	flags.StringVarP(&in.Fields, "fields", "f", "t2m", "comma-separated field codes (e.g. ws100m,t2m,rh2m)")
	flags.StringVarP(&in.Days, "days", "d", fmt.Sprint(forecast.DefaultDays), "forecast days")
	flags.StringVarP(&in.Hours, "hours", "h", fmt.Sprint(forecast.DefaultHours), "additional forecast hours")
	flags.StringVarP(&in.Resolution, "resolution", "r", forecast.DefaultResolution, "temporal resolution (15min|1h)")
	flags.StringVarP(&in.Timezone, "timezone", "t", fmt.Sprint(forecast.DefaultTimezone), "timezone offset (-12 to 12) or "+weather.TimezoneAuto)
	flags.StringVarP(&in.Grid, "grid", "g", forecast.DefaultGrid, "grid size (1|3|5|7)")
}

func (app *App) queryCommand() *cobra.Command {
	var (
		in     forecast.Input
		format string
		file   string
	)

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Query weather data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.runQuery(cmd.Context(), in, format, file)
		},
	}

	addRequestFlags(cmd.Flags(), &in)
	cmd.Flags().StringVar(&format, "format", string(output.FormatTable), "output format (json|table|csv)")
	cmd.Flags().StringVarP(&file, "output", "o", "", "write the result to a file")
	_ = cmd.MarkFlagRequired("location")

	return cmd
}

func (app *App) runQuery(ctx context.Context, in forecast.Input, format, file string) error {
	f, err := output.ParseFormat(format)
	if err != nil {
		return err
	}

	svc := app.weatherService()
	if app.verbose {
		if req, err := svc.Prepare(in); err == nil {
			app.println(app.palette.info, "Query parameters:")
			app.printRequest(req)
			app.printf(app.palette.muted, "  Format: %s\n\n", f)
		}
	}

	_, _ = app.palette.info.Fprintln(app.stderr, "Querying weather data...")
	res, err := svc.Query(ctx, in)
	if err != nil {
		return err
	}

	env := res.Envelope
	if err := env.Err(); err != nil {
		return err
	}
	if !env.HasData() {
		app.println(app.palette.warn, "no data found")
		return nil
	}

	if file == "" {
		return app.presenter.Render(app.stdout, f, env)
	}

	var buf bytes.Buffer
	if err := output.NewPresenter(false).Render(&buf, f, env); err != nil {
		return err
	}
	if err := os.WriteFile(file, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	app.printf(app.palette.success, "Results saved to: %s\n", file)
	return nil
}

func (app *App) printRequest(req forecast.Request) {
	w := app.stdout
	_, _ = fmt.Fprintf(w, "  Location: %s\n", req.Location)
	_, _ = fmt.Fprintf(w, "  Fields: %s\n", req.Fields)
	_, _ = fmt.Fprintf(w, "  Days: %d\n", req.Days)
	_, _ = fmt.Fprintf(w, "  Hours: %d\n", req.Hours)
	_, _ = fmt.Fprintf(w, "  Resolution: %s\n", req.Resolution)
	_, _ = fmt.Fprintf(w, "  Timezone: %d\n", req.Timezone)
	_, _ = fmt.Fprintf(w, "  Grid: %s\n", req.Grid)
}
