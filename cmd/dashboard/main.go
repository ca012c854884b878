package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"

	httpadapter "github.com/couchcryptid/weather-dashboard-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/weather-dashboard-service/internal/adapter/kafka"
	"github.com/couchcryptid/weather-dashboard-service/internal/adapter/openmeteo"
	"github.com/couchcryptid/weather-dashboard-service/internal/adapter/sqlite"
	"github.com/couchcryptid/weather-dashboard-service/internal/config"
	"github.com/couchcryptid/weather-dashboard-service/internal/dashboard"
	"github.com/couchcryptid/weather-dashboard-service/internal/domain"
	"github.com/couchcryptid/weather-dashboard-service/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()
	clk := clockwork.NewRealClock()

	client := openmeteo.NewClient(cfg.OpenMeteoBaseURL, cfg.OpenMeteoTimeout, cfg.OpenMeteoRetries, metrics, logger)
	provider := openmeteo.NewCachedProvider(client, cfg.CacheSize, cfg.CacheTTL, clk, metrics)

	loc := domain.Location{
		Name:       cfg.LocationName,
		Coordinate: domain.Coordinate{Lat: cfg.Latitude, Lon: cfg.Longitude},
		Timezone:   cfg.Timezone,
		PastDays:   cfg.PastDays,
	}
	svc := dashboard.New(provider, loc, cfg.RefreshInterval, clk, logger, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Optional snapshot store (SNAPSHOT_DB_PATH).
	var store *sqlite.Store
	if cfg.SnapshotDBPath != "" {
		store, err = sqlite.Open(ctx, cfg.SnapshotDBPath)
		if err != nil {
			logger.Error("failed to open snapshot store", "error", err, "path", cfg.SnapshotDBPath)
			os.Exit(1)
		}
		if err := svc.Seed(ctx, store); err != nil {
			logger.Warn("failed to seed dashboard from snapshot store", "error", err)
		}
		svc.AddSink("sqlite", store)
		logger.Info("snapshot store enabled", "path", cfg.SnapshotDBPath)
	}

	// Optional snapshot publishing (KAFKA_BROKERS).
	var publisher *kafkaadapter.Publisher
	if cfg.KafkaEnabled() {
		publisher = kafkaadapter.NewPublisher(cfg, logger)
		svc.AddSink("kafka", publisher)
		logger.Info("kafka snapshot publishing enabled", "topic", cfg.KafkaTopic)
	} else {
		logger.Info("kafka snapshot publishing disabled")
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, svc, logger)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start refresh loop.
	refreshDone := make(chan struct{})
	go func() {
		defer close(refreshDone)
		if err := svc.Run(ctx); err != nil {
			logger.Error("refresher error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	// Sinks are closed only after the refresher stops writing to them.
	select {
	case <-refreshDone:
	case <-shutdownCtx.Done():
		logger.Warn("refresher did not stop before shutdown timeout")
	}
	if publisher != nil {
		if err := publisher.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}
	if store != nil {
		if err := store.Close(); err != nil {
			logger.Error("snapshot store close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
