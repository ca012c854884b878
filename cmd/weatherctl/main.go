// Command weatherctl fetches the forecast once and renders the weather widget
// in the terminal or as JSON.
//
// Usage:
//
//	go run ./cmd/weatherctl show
//	go run ./cmd/weatherctl json --lat -33.9249 --lon 18.4241 --name "Cape Town"
//
// Defaults come from the same environment variables as the dashboard service.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/couchcryptid/weather-dashboard-service/internal/adapter/openmeteo"
	"github.com/couchcryptid/weather-dashboard-service/internal/config"
	"github.com/couchcryptid/weather-dashboard-service/internal/domain"
	"github.com/couchcryptid/weather-dashboard-service/internal/observability"
	"github.com/couchcryptid/weather-dashboard-service/internal/render"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

type options struct {
	name     string
	lat      float64
	lon      float64
	timezone string
	pastDays int
	baseURL  string
	timeout  time.Duration
	retries  int
	width    int
	verbose  bool
}

func newRootCmd(out io.Writer) *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:          "weatherctl",
		Short:        "Fetch the forecast and render the weather widget",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.applyDefaults(cmd)
		},
	}
	root.SetOut(out)

	flags := root.PersistentFlags()
	flags.StringVar(&opts.name, "name", "", "location name shown on the widget")
	flags.Float64Var(&opts.lat, "lat", 0, "latitude in degrees")
	flags.Float64Var(&opts.lon, "lon", 0, "longitude in degrees")
	flags.StringVar(&opts.timezone, "timezone", "", "IANA timezone or \"auto\"")
	flags.IntVar(&opts.pastDays, "past-days", 0, "days of history to include in the hourly chart")
	flags.StringVar(&opts.baseURL, "base-url", "", "Open-Meteo API root")
	flags.DurationVar(&opts.timeout, "timeout", 0, "request timeout")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log API requests to stderr")

	show := &cobra.Command{
		Use:   "show",
		Short: "Render the widget in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := opts.fetchDashboard(cmd.Context())
			if err != nil {
				return err
			}
			return render.Terminal(cmd.OutOrStdout(), d, true, opts.width)
		},
	}
	show.Flags().IntVar(&opts.width, "width", 80, "terminal width in columns")

	asJSON := &cobra.Command{
		Use:   "json",
		Short: "Print the widget's view state as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := opts.fetchDashboard(cmd.Context())
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(d)
		},
	}

	root.AddCommand(show, asJSON)
	return root
}

// applyDefaults fills every flag the user did not set from the environment config.
func (o *options) applyDefaults(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if !flags.Changed("name") {
		o.name = cfg.LocationName
	}
	if !flags.Changed("lat") {
		o.lat = cfg.Latitude
	}
	if !flags.Changed("lon") {
		o.lon = cfg.Longitude
	}
	if !flags.Changed("timezone") {
		o.timezone = cfg.Timezone
	}
	if !flags.Changed("past-days") {
		o.pastDays = cfg.PastDays
	}
	if !flags.Changed("base-url") {
		o.baseURL = cfg.OpenMeteoBaseURL
	}
	if !flags.Changed("timeout") {
		o.timeout = cfg.OpenMeteoTimeout
	}
	o.retries = cfg.OpenMeteoRetries

	if o.lat < -90 || o.lat > 90 || o.lon < -180 || o.lon > 180 {
		return fmt.Errorf("coordinate %.4f,%.4f out of range", o.lat, o.lon)
	}
	if o.pastDays < 0 || o.pastDays > 92 {
		return fmt.Errorf("--past-days must be between 0 and 92, got %d", o.pastDays)
	}
	if o.timeout <= 0 {
		return fmt.Errorf("--timeout must be positive, got %s", o.timeout)
	}
	return nil
}

func (o *options) fetchDashboard(ctx context.Context) (domain.Dashboard, error) {
	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	client := openmeteo.NewClient(o.baseURL, o.timeout, o.retries, observability.NewMetricsWithRegistry(prometheus.NewRegistry()), logger)
	f, err := client.Forecast(ctx, domain.Location{
		Name:       o.name,
		Coordinate: domain.Coordinate{Lat: o.lat, Lon: o.lon},
		Timezone:   o.timezone,
		PastDays:   o.pastDays,
	})
	if err != nil {
		return domain.Dashboard{}, fmt.Errorf("fetch forecast: %w", err)
	}
	return domain.BuildDashboard(f), nil
}
