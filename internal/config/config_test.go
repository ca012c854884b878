package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "Gqeberha", cfg.LocationName)
	assert.InDelta(t, -33.9611, cfg.Latitude, 1e-9)
	assert.InDelta(t, 25.6149, cfg.Longitude, 1e-9)
	assert.Equal(t, "Africa/Johannesburg", cfg.Timezone)
	assert.Equal(t, 1, cfg.PastDays)
	assert.Equal(t, "https://api.open-meteo.com/v1", cfg.OpenMeteoBaseURL)
	assert.Equal(t, 5*time.Second, cfg.OpenMeteoTimeout)
	assert.Equal(t, 2, cfg.OpenMeteoRetries)
	assert.Equal(t, 10*time.Minute, cfg.RefreshInterval)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 100, cfg.CacheSize)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.False(t, cfg.KafkaEnabled())
	assert.Equal(t, "weather-snapshots", cfg.KafkaTopic)
	assert.Empty(t, cfg.SnapshotDBPath)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("WEATHER_LOCATION_NAME", "Cape Town")
	t.Setenv("WEATHER_LATITUDE", "-33.9249")
	t.Setenv("WEATHER_LONGITUDE", "18.4241")
	t.Setenv("WEATHER_TIMEZONE", "auto")
	t.Setenv("WEATHER_PAST_DAYS", "0")
	t.Setenv("OPENMETEO_BASE_URL", "http://localhost:8081/v1")
	t.Setenv("OPENMETEO_TIMEOUT", "2s")
	t.Setenv("OPENMETEO_RETRIES", "0")
	t.Setenv("REFRESH_INTERVAL", "1m")
	t.Setenv("CACHE_TTL", "30s")
	t.Setenv("CACHE_SIZE", "5")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_TOPIC", "snapshots")
	t.Setenv("SNAPSHOT_DB_PATH", "/tmp/weather.db")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "Cape Town", cfg.LocationName)
	assert.InDelta(t, -33.9249, cfg.Latitude, 1e-9)
	assert.InDelta(t, 18.4241, cfg.Longitude, 1e-9)
	assert.Equal(t, "auto", cfg.Timezone)
	assert.Equal(t, 0, cfg.PastDays)
	assert.Equal(t, "http://localhost:8081/v1", cfg.OpenMeteoBaseURL)
	assert.Equal(t, 2*time.Second, cfg.OpenMeteoTimeout)
	assert.Equal(t, 0, cfg.OpenMeteoRetries)
	assert.Equal(t, time.Minute, cfg.RefreshInterval)
	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
	assert.Equal(t, 5, cfg.CacheSize)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.KafkaEnabled())
	assert.Equal(t, "snapshots", cfg.KafkaTopic)
	assert.Equal(t, "/tmp/weather.db", cfg.SnapshotDBPath)
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_InvalidValues(t *testing.T) {
	cases := []struct {
		key   string
		value string
	}{
		{"WEATHER_LATITUDE", "north"},
		{"WEATHER_LATITUDE", "91"},
		{"WEATHER_LONGITUDE", "-181"},
		{"WEATHER_PAST_DAYS", "93"},
		{"WEATHER_PAST_DAYS", "-1"},
		{"OPENMETEO_TIMEOUT", "bad"},
		{"OPENMETEO_TIMEOUT", "-1s"},
		{"OPENMETEO_RETRIES", "-2"},
		{"REFRESH_INTERVAL", "0s"},
		{"CACHE_TTL", "soon"},
		{"CACHE_SIZE", "0"},
	}
	for _, tc := range cases {
		t.Run(tc.key+"="+tc.value, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.key)
		})
	}
}
