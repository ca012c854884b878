package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the dashboard.
type Metrics struct {
	RefreshRunning  prometheus.Gauge
	LastSuccess     prometheus.Gauge
	RefreshAttempts *prometheus.CounterVec // labels: outcome={success,error,incomplete}

	// Open-Meteo client metrics.
	ForecastRequests    *prometheus.CounterVec // labels: outcome={success,error}
	ForecastAPIDuration prometheus.Histogram
	ForecastCache       *prometheus.CounterVec // labels: result={hit,miss}

	// Snapshot sink metrics.
	SinkErrors *prometheus.CounterVec // labels: sink={kafka,sqlite}

	// Current readings, exported for scraping alongside the widget.
	Temperature prometheus.Gauge
	Humidity    prometheus.Gauge
	WindSpeed   prometheus.Gauge
}

// NewMetrics creates and registers all dashboard metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	return NewMetricsWithRegistry(prometheus.DefaultRegisterer)
}

// NewMetricsWithRegistry creates all dashboard metrics and registers them with reg.
func NewMetricsWithRegistry(reg prometheus.Registerer) *Metrics {
	m := newMetrics()
	reg.MustRegister(
		m.RefreshRunning,
		m.LastSuccess,
		m.RefreshAttempts,
		m.ForecastRequests,
		m.ForecastAPIDuration,
		m.ForecastCache,
		m.SinkErrors,
		m.Temperature,
		m.Humidity,
		m.WindSpeed,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		RefreshRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "weather_dashboard",
			Name:      "refresh_running",
			Help:      "1 when the refresh loop is active, 0 when shut down.",
		}),
		LastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "weather_dashboard",
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful forecast refresh.",
		}),
		RefreshAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weather_dashboard",
			Name:      "refresh_attempts_total",
			Help:      "Forecast refresh attempts by outcome.",
		}, []string{"outcome"}),
		ForecastRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weather_dashboard",
			Name:      "forecast_requests_total",
			Help:      "Open-Meteo API requests by outcome.",
		}, []string{"outcome"}),
		ForecastAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "weather_dashboard",
			Name:      "forecast_api_duration_seconds",
			Help:      "Open-Meteo API request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		ForecastCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weather_dashboard",
			Name:      "forecast_cache_total",
			Help:      "Forecast cache lookups by result.",
		}, []string{"result"}),
		SinkErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weather_dashboard",
			Name:      "sink_errors_total",
			Help:      "Snapshot sink failures by sink.",
		}, []string{"sink"}),
		Temperature: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "weather_dashboard",
			Name:      "temperature_celsius",
			Help:      "Current temperature at 2 m.",
		}),
		Humidity: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "weather_dashboard",
			Name:      "relative_humidity_percent",
			Help:      "Current relative humidity at 2 m.",
		}),
		WindSpeed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "weather_dashboard",
			Name:      "wind_speed_meters_per_second",
			Help:      "Current wind speed at 10 m.",
		}),
	}
}
