package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tjweather/internal/forecast"
)

func (app *App) downloadCommand() *cobra.Command {
	var (
		in   forecast.Input
		file string
	)

	cmd := &cobra.Command{
		Use:   "download",
		Short: "Download weather data as NetCDF",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.runDownload(cmd.Context(), in, file)
		},
	}

	addRequestFlags(cmd.Flags(), &in)
	cmd.Flags().StringVarP(&file, "output", "o", "", "local file path (default: generated from the request)")
	cmd.Flags().StringVar(&in.Filename, "filename", "", "file name requested from the API")
	_ = cmd.MarkFlagRequired("location")

	return cmd
}

func (app *App) runDownload(ctx context.Context, in forecast.Input, file string) error {
	svc := app.weatherService()
	if app.verbose {
		if req, err := svc.Prepare(in); err == nil {
			app.println(app.palette.info, "NetCDF download parameters:")
			app.printRequest(req)
			_, _ = fmt.Fprintln(app.stdout)
		}
	}

	_, _ = app.palette.info.Fprintln(app.stderr, "Downloading NetCDF data...")
	res, err := svc.Download(ctx, in)
	if err != nil {
		return err
	}

	if file == "" {
		file = res.File
	}
	if err := os.WriteFile(file, res.Data, 0o644); err != nil {
		return fmt.Errorf("failed to write NetCDF file: %w", err)
	}

	app.printf(app.palette.success, "NetCDF file downloaded: %s\n", file)
	app.printf(app.palette.info, "File size: %.2f MB\n", float64(len(res.Data))/1024/1024)

	if app.verbose {
		req := res.Request
		app.printf(app.palette.muted, "Fields: %s\n", req.Fields)
		app.printf(app.palette.muted, "Time range: %d days %d hours\n", req.Days, req.Hours)
		app.printf(app.palette.muted, "Resolution: %s\n", req.Resolution)
	}
	return nil
}
