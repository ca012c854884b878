package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Widget location.
	LocationName string
	Latitude     float64
	Longitude    float64
	Timezone     string
	PastDays     int

	// Open-Meteo client configuration.
	OpenMeteoBaseURL string
	OpenMeteoTimeout time.Duration
	OpenMeteoRetries int

	RefreshInterval time.Duration
	CacheTTL        time.Duration
	CacheSize       int

	// Optional snapshot sinks. Empty values disable them.
	KafkaBrokers   []string
	KafkaTopic     string
	SnapshotDBPath string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	lat, err := parseFloat("WEATHER_LATITUDE", "-33.9611")
	if err != nil {
		return nil, err
	}
	lon, err := parseFloat("WEATHER_LONGITUDE", "25.6149")
	if err != nil {
		return nil, err
	}
	pastDays, err := parseInt("WEATHER_PAST_DAYS", "1")
	if err != nil {
		return nil, err
	}
	retries, err := parseInt("OPENMETEO_RETRIES", "2")
	if err != nil {
		return nil, err
	}
	cacheSize, err := parseInt("CACHE_SIZE", "100")
	if err != nil {
		return nil, err
	}

	timeout, err := parsePositiveDuration("OPENMETEO_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}
	refresh, err := parsePositiveDuration("REFRESH_INTERVAL", "10m")
	if err != nil {
		return nil, err
	}
	cacheTTL, err := parsePositiveDuration("CACHE_TTL", "5m")
	if err != nil {
		return nil, err
	}

	var brokers []string
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		brokers = sharedcfg.ParseBrokers(v)
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		LocationName: sharedcfg.EnvOrDefault("WEATHER_LOCATION_NAME", "Gqeberha"),
		Latitude:     lat,
		Longitude:    lon,
		Timezone:     sharedcfg.EnvOrDefault("WEATHER_TIMEZONE", "Africa/Johannesburg"),
		PastDays:     pastDays,

		OpenMeteoBaseURL: sharedcfg.EnvOrDefault("OPENMETEO_BASE_URL", "https://api.open-meteo.com/v1"),
		OpenMeteoTimeout: timeout,
		OpenMeteoRetries: retries,

		RefreshInterval: refresh,
		CacheTTL:        cacheTTL,
		CacheSize:       cacheSize,

		KafkaBrokers:   brokers,
		KafkaTopic:     sharedcfg.EnvOrDefault("KAFKA_TOPIC", "weather-snapshots"),
		SnapshotDBPath: os.Getenv("SNAPSHOT_DB_PATH"),
	}

	if cfg.Latitude < -90 || cfg.Latitude > 90 {
		return nil, errors.New("WEATHER_LATITUDE must be between -90 and 90")
	}
	if cfg.Longitude < -180 || cfg.Longitude > 180 {
		return nil, errors.New("WEATHER_LONGITUDE must be between -180 and 180")
	}
	if cfg.PastDays < 0 || cfg.PastDays > 92 {
		return nil, errors.New("WEATHER_PAST_DAYS must be between 0 and 92")
	}
	if cfg.Timezone == "" {
		return nil, errors.New("WEATHER_TIMEZONE is required")
	}
	if cfg.OpenMeteoRetries < 0 {
		return nil, errors.New("OPENMETEO_RETRIES must not be negative")
	}
	if cfg.CacheSize <= 0 {
		return nil, errors.New("CACHE_SIZE must be positive")
	}
	if len(cfg.KafkaBrokers) > 0 && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_TOPIC is required when KAFKA_BROKERS is set")
	}

	return cfg, nil
}

// KafkaEnabled reports whether snapshots should be published to Kafka.
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

func parseFloat(key, def string) (float64, error) {
	v, err := strconv.ParseFloat(sharedcfg.EnvOrDefault(key, def), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func parseInt(key, def string) (int, error) {
	v, err := strconv.Atoi(sharedcfg.EnvOrDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}
