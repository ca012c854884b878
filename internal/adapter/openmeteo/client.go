package openmeteo

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/couchcryptid/weather-dashboard-service/internal/domain"
	"github.com/couchcryptid/weather-dashboard-service/internal/observability"
)

const (
	// DefaultBaseURL is the public Open-Meteo API root.
	DefaultBaseURL = "https://api.open-meteo.com/v1"

	forecastEndpoint = "/forecast"
	userAgent        = "weather-dashboard/1.0"
)

// currentVariables is the order the widget requests current readings in.
var currentVariables = []string{
	"precipitation",
	"temperature_2m",
	"rain",
	"cloud_cover",
	"relative_humidity_2m",
	"is_day",
	"wind_speed_10m",
	"wind_direction_10m",
	"wind_gusts_10m",
	"showers",
}

// Client implements domain.ForecastProvider using the Open-Meteo forecast API.
type Client struct {
	http    *resty.Client
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewClient creates an Open-Meteo client. Server errors and 429s are retried
// up to retries times.
func NewClient(baseURL string, timeout time.Duration, retries int, metrics *observability.Metrics, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	rc := resty.New().
		SetBaseURL(strings.TrimSuffix(baseURL, "/")).
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept", "application/json").
		SetTimeout(timeout).
		SetRetryCount(retries).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return r.StatusCode() == http.StatusTooManyRequests || r.StatusCode() >= http.StatusInternalServerError
		})

	rc.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		logger.Debug("open-meteo response",
			"status", resp.StatusCode(),
			"duration", resp.Time(),
			"bytes", len(resp.Body()),
		)
		return nil
	})

	return &Client{http: rc, metrics: metrics, logger: logger}
}

// Forecast fetches current conditions and hourly temperatures for loc.
func (c *Client) Forecast(ctx context.Context, loc domain.Location) (domain.Forecast, error) {
	var (
		body   response
		errMsg apiError
	)

	start := time.Now()
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(queryParams(loc)).
		SetResult(&body).
		SetError(&errMsg).
		Get(forecastEndpoint)
	c.metrics.ForecastAPIDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		c.metrics.ForecastRequests.WithLabelValues("error").Inc()
		return domain.Forecast{}, fmt.Errorf("forecast request: %w", err)
	}
	if resp.IsError() {
		c.metrics.ForecastRequests.WithLabelValues("error").Inc()
		reason := errMsg.Reason
		if reason == "" {
			reason = resp.String()
		}
		return domain.Forecast{}, fmt.Errorf("open-meteo API error: status %d: %s", resp.StatusCode(), reason)
	}
	c.metrics.ForecastRequests.WithLabelValues("success").Inc()

	return mapResponse(loc, body)
}

func queryParams(loc domain.Location) map[string]string {
	return map[string]string{
		"latitude":        strconv.FormatFloat(loc.Coordinate.Lat, 'f', -1, 64),
		"longitude":       strconv.FormatFloat(loc.Coordinate.Lon, 'f', -1, 64),
		"hourly":          "temperature_2m",
		"current":         strings.Join(currentVariables, ","),
		"timezone":        loc.Timezone,
		"past_days":       strconv.Itoa(loc.PastDays),
		"timeformat":      "unixtime",
		"wind_speed_unit": "ms",
	}
}

// mapResponse converts the API body into a domain forecast. Hourly arrays of
// unequal length are truncated to the shorter one and null readings skipped.
func mapResponse(loc domain.Location, body response) (domain.Forecast, error) {
	if body.Current == nil || body.Hourly == nil {
		return domain.Forecast{}, domain.ErrIncompleteForecast
	}

	if body.Timezone != "" {
		loc.Timezone = body.Timezone
	}

	cur := body.Current
	current := domain.CurrentConditions{
		Time:          time.Unix(cur.Time, 0).UTC(),
		Temperature:   valueOrZero(cur.Temperature),
		Precipitation: valueOrZero(cur.Precipitation),
		Rain:          valueOrZero(cur.Rain),
		Showers:       valueOrZero(cur.Showers),
		CloudCover:    valueOrZero(cur.CloudCover),
		Humidity:      valueOrZero(cur.Humidity),
		IsDay:         valueOrZero(cur.IsDay) == 1,
		WindSpeed:     valueOrZero(cur.WindSpeed),
		WindDirection: valueOrZero(cur.WindDirection),
		WindGusts:     valueOrZero(cur.WindGusts),
	}

	n := min(len(body.Hourly.Time), len(body.Hourly.Temperature))
	hourly := make([]domain.HourlyPoint, 0, n)
	for i := range n {
		temp := body.Hourly.Temperature[i]
		if temp == nil {
			continue
		}
		hourly = append(hourly, domain.HourlyPoint{
			Time:        time.Unix(body.Hourly.Time[i], 0).UTC(),
			Temperature: *temp,
		})
	}

	return domain.Forecast{
		Location:             loc,
		UTCOffsetSeconds:     body.UTCOffsetSeconds,
		TimezoneAbbreviation: body.TimezoneAbbreviation,
		Current:              current,
		Hourly:               hourly,
		FetchedAt:            domain.Now(),
	}, nil
}
