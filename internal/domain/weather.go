package domain

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrIncompleteForecast is returned when a provider response lacks the
	// current or hourly block.
	ErrIncompleteForecast = errors.New("incomplete forecast")

	// ErrNoSnapshot is returned by snapshot stores with nothing saved for a location.
	ErrNoSnapshot = errors.New("no snapshot")
)

// Coordinate is a WGS-84 latitude/longitude pair.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// String renders the coordinate as "lat,lon" with four decimals.
func (c Coordinate) String() string {
	return fmt.Sprintf("%.4f,%.4f", c.Lat, c.Lon)
}

// Location identifies the fixed point the widget reports on.
type Location struct {
	Name       string     `json:"name"`
	Coordinate Coordinate `json:"coordinate"`
	Timezone   string     `json:"timezone"`
	PastDays   int        `json:"past_days"`
}

// CurrentConditions holds the scalar readings of the "current" block.
type CurrentConditions struct {
	Time          time.Time `json:"time"`
	Temperature   float64   `json:"temperature"`
	Precipitation float64   `json:"precipitation"`
	Rain          float64   `json:"rain"`
	Showers       float64   `json:"showers"`
	CloudCover    float64   `json:"cloud_cover"`
	Humidity      float64   `json:"humidity"`
	IsDay         bool      `json:"is_day"`
	WindSpeed     float64   `json:"wind_speed"`
	WindDirection float64   `json:"wind_direction"`
	WindGusts     float64   `json:"wind_gusts"`
}

// HourlyPoint is one hourly temperature reading.
type HourlyPoint struct {
	Time        time.Time `json:"time"`
	Temperature float64   `json:"temperature"`
}

// Forecast is a provider response mapped into domain types. All times are UTC.
type Forecast struct {
	Location             Location          `json:"location"`
	UTCOffsetSeconds     int               `json:"utc_offset_seconds"`
	TimezoneAbbreviation string            `json:"timezone_abbreviation,omitempty"`
	Current              CurrentConditions `json:"current"`
	Hourly               []HourlyPoint     `json:"hourly"`
	FetchedAt            time.Time         `json:"fetched_at"`
}

// Zone returns a fixed zone for the forecast's UTC offset.
func (f Forecast) Zone() *time.Location {
	name := f.TimezoneAbbreviation
	if name == "" {
		name = f.Location.Timezone
	}
	return time.FixedZone(name, f.UTCOffsetSeconds)
}

// ForecastProvider fetches forecasts for a location.
type ForecastProvider interface {
	Forecast(ctx context.Context, loc Location) (Forecast, error)
}
