package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tjweather/internal/config"
	"tjweather/internal/fields"
	"tjweather/internal/providers/tjweather"
)

func (app *App) initCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the user configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			home, err := app.homeDir()
			if err != nil {
				return fmt.Errorf("failed to find home directory: %w", err)
			}

			path, created, err := config.InitUserConfig(home, force)
			if err != nil {
				return fmt.Errorf("initialization failed: %w", err)
			}
			if !created {
				app.printf(app.palette.warn, "Configuration file already exists: %s\n", path)
				app.println(app.palette.info, "Use --force to overwrite it")
				return nil
			}

			app.println(app.palette.success, "✓ Configuration file created")
			app.printf(app.palette.info, "Edit %s and set your API key\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing configuration file")
	return cmd
}

func (app *App) configCommand() *cobra.Command {
	var showSecret bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the current configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := app.cfg

			app.println(app.palette.info, "Current configuration:")
			app.printf(app.palette.muted, "  NC_ENDPOINT: %s\n", cfg.NCEndpoint)
			app.printf(app.palette.muted, "  JSON_ENDPOINT: %s\n", cfg.JSONEndpoint)
			if showSecret {
				app.printf(app.palette.muted, "  API_KEY: %s\n", cfg.APIKey)
			} else {
				app.printf(app.palette.muted, "  API_KEY: %s\n", cfg.MaskedAPIKey())
			}
			app.println(app.palette.muted)

			if problems := cfg.Validate(); len(problems) > 0 {
				app.println(app.palette.fail, "Configuration problems:")
				for _, p := range problems {
					app.printf(app.palette.fail, "  - %v\n", p)
				}
			} else {
				app.println(app.palette.success, "Configuration is valid")
			}

			if app.verbose {
				app.println(app.palette.muted, "Priority: environment > --config file > ./.env > ~/.config/tjweather/.env")
				for _, src := range cfg.Sources {
					app.printf(app.palette.muted, "Loaded: %s\n", src)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&showSecret, "show-secret", "s", false, "show the API key")
	return cmd
}

func (app *App) fieldsCommand() *cobra.Command {
	var region string

	cmd := &cobra.Command{
		Use:   "fields",
		Short: "List the supported field codes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var regions []fields.Region
			switch region {
			case "all":
				regions = []fields.Region{fields.RegionGlobal, fields.RegionChina}
			case string(fields.RegionGlobal), string(fields.RegionChina):
				regions = []fields.Region{fields.Region(region)}
			default:
				return fmt.Errorf("unknown region %q (use global, china or all)", region)
			}
			return app.presenter.Fields(app.stdout, fields.CLI, regions...)
		},
	}

	cmd.Flags().StringVar(&region, "region", "all", "field region (global|china|all)")
	return cmd
}

func (app *App) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			app.println(app.palette.info, appName)
			app.printf(app.palette.muted, "Version: %s\n", tjweather.Version)
			app.printf(app.palette.muted, "Description: %s\n", appDescription)
			app.printf(app.palette.muted, "Homepage: %s\n", appHomepage)
		},
	}
}
