package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/weather-dashboard-service/internal/domain"
	"github.com/couchcryptid/weather-dashboard-service/internal/observability"
)

const (
	initialBackoff = time.Second
	maxBackoff     = time.Minute
)

// SnapshotSink receives every successfully fetched forecast.
type SnapshotSink interface {
	SaveSnapshot(ctx context.Context, f domain.Forecast) error
}

// SnapshotSource returns the most recently stored forecast for a coordinate.
type SnapshotSource interface {
	LatestSnapshot(ctx context.Context, c domain.Coordinate) (domain.Forecast, error)
}

type namedSink struct {
	name string
	sink SnapshotSink
}

// Service keeps the widget's view state current by polling a forecast provider.
type Service struct {
	provider domain.ForecastProvider
	location domain.Location
	interval time.Duration
	clock    clockwork.Clock
	logger   *slog.Logger
	metrics  *observability.Metrics
	sinks    []namedSink
	latest   atomic.Pointer[domain.Dashboard]
}

// New creates a Service that refreshes loc every interval.
func New(provider domain.ForecastProvider, loc domain.Location, interval time.Duration, clk clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Service {
	if clk == nil {
		clk = clockwork.NewRealClock()
	}
	return &Service{
		provider: provider,
		location: loc,
		interval: interval,
		clock:    clk,
		logger:   logger,
		metrics:  metrics,
	}
}

// AddSink registers a sink that receives every fetched forecast. Not safe to
// call once Run has started.
func (s *Service) AddSink(name string, sink SnapshotSink) {
	s.sinks = append(s.sinks, namedSink{name: name, sink: sink})
}

// Seed loads the last stored snapshot so the widget has something to show
// before the first fetch completes. A missing snapshot is not an error.
func (s *Service) Seed(ctx context.Context, src SnapshotSource) error {
	f, err := src.LatestSnapshot(ctx, s.location.Coordinate)
	if errors.Is(err, domain.ErrNoSnapshot) {
		return nil
	}
	if err != nil {
		return err
	}
	f.Location.Name = s.location.Name
	s.store(f)
	s.logger.Info("seeded dashboard from snapshot", "fetched_at", f.FetchedAt)
	return nil
}

// Dashboard returns the latest view state. The boolean is false until a
// forecast has been loaded.
func (s *Service) Dashboard() (domain.Dashboard, bool) {
	d := s.latest.Load()
	if d == nil {
		return domain.Dashboard{}, false
	}
	return domain.MarkStale(*d, 2*s.interval), true
}

// CheckReadiness returns nil once a forecast has been loaded.
func (s *Service) CheckReadiness(_ context.Context) error {
	if s.latest.Load() == nil {
		return errors.New("no forecast loaded yet")
	}
	return nil
}

// Run fetches immediately, then every interval, until the context is cancelled.
// Failed fetches are retried with exponential backoff capped at the interval.
func (s *Service) Run(ctx context.Context) error {
	s.logger.Info("refresher started",
		"location", s.location.Name,
		"coordinate", s.location.Coordinate.String(),
		"interval", s.interval,
	)
	s.metrics.RefreshRunning.Set(1)
	defer s.metrics.RefreshRunning.Set(0)

	backoff := initialBackoff
	for {
		wait := s.interval
		if err := s.Refresh(ctx); err != nil {
			if ctx.Err() != nil {
				s.logger.Info("refresher stopping", "reason", ctx.Err())
				return nil
			}
			wait = min(backoff, s.interval)
			backoff = nextBackoff(backoff, maxBackoff)
		} else {
			backoff = initialBackoff
		}

		if !sleepWithContext(ctx, s.clock, wait) {
			s.logger.Info("refresher stopping", "reason", ctx.Err())
			return nil
		}
	}
}

// Refresh performs one fetch and, on success, replaces the view state and
// forwards the forecast to every sink. On failure the previous view state is kept.
func (s *Service) Refresh(ctx context.Context) error {
	f, err := s.provider.Forecast(ctx, s.location)
	if err != nil {
		outcome := "error"
		if errors.Is(err, domain.ErrIncompleteForecast) {
			outcome = "incomplete"
		}
		s.metrics.RefreshAttempts.WithLabelValues(outcome).Inc()
		if ctx.Err() == nil {
			s.logger.Warn("forecast refresh failed", "error", err, "outcome", outcome)
		}
		return err
	}

	s.metrics.RefreshAttempts.WithLabelValues("success").Inc()
	s.store(f)
	s.publish(ctx, f)

	s.logger.Debug("forecast refreshed",
		"temperature", f.Current.Temperature,
		"hourly_points", len(f.Hourly),
	)
	return nil
}

func (s *Service) store(f domain.Forecast) {
	d := domain.BuildDashboard(f)
	s.latest.Store(&d)

	s.metrics.LastSuccess.Set(float64(f.FetchedAt.Unix()))
	s.metrics.Temperature.Set(f.Current.Temperature)
	s.metrics.Humidity.Set(f.Current.Humidity)
	s.metrics.WindSpeed.Set(f.Current.WindSpeed)
}

func (s *Service) publish(ctx context.Context, f domain.Forecast) {
	for _, ns := range s.sinks {
		if err := ns.sink.SaveSnapshot(ctx, f); err != nil {
			s.metrics.SinkErrors.WithLabelValues(ns.name).Inc()
			s.logger.Warn("snapshot sink failed", "sink", ns.name, "error", err)
		}
	}
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, clk clockwork.Clock, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}

	timer := clk.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.Chan():
		return true
	}
}
