package domain

import (
	"fmt"
	"strconv"
	"time"
)

// Tile labels in display order.
const (
	TileTemperature   = "Temperature"
	TileHumidity      = "Humidity"
	TileWindSpeed     = "Wind Speed"
	TilePrecipitation = "Precipitation"
)

const (
	dashboardTitle = "Current Weather"
	hourlyTitle    = "Hourly Temperature"
)

// Tile is one formatted scalar reading.
type Tile struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// ChartPoint is one point of the hourly temperature chart.
type ChartPoint struct {
	Label string  `json:"time"`
	Temp  float64 `json:"temp"`
}

// Dashboard is the view state rendered by the widget.
type Dashboard struct {
	Title       string       `json:"title"`
	Location    string       `json:"location,omitempty"`
	Tiles       []Tile       `json:"tiles"`
	HourlyTitle string       `json:"hourly_title"`
	Chart       []ChartPoint `json:"chart"`
	ObservedAt  time.Time    `json:"observed_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
	Stale       bool         `json:"stale"`
}

// BuildDashboard maps a forecast into view state.
func BuildDashboard(f Forecast) Dashboard {
	zone := f.Zone()
	c := f.Current

	chart := make([]ChartPoint, 0, len(f.Hourly))
	for _, p := range f.Hourly {
		chart = append(chart, ChartPoint{
			Label: HourLabel(p.Time, zone),
			Temp:  p.Temperature,
		})
	}

	return Dashboard{
		Title:    dashboardTitle,
		Location: f.Location.Name,
		Tiles: []Tile{
			{Label: TileTemperature, Value: FormatTemperature(c.Temperature)},
			{Label: TileHumidity, Value: FormatHumidity(c.Humidity)},
			{Label: TileWindSpeed, Value: FormatWindSpeed(c.WindSpeed)},
			{Label: TilePrecipitation, Value: FormatPrecipitation(c.Precipitation)},
		},
		HourlyTitle: hourlyTitle,
		Chart:       chart,
		ObservedAt:  c.Time.In(zone),
		UpdatedAt:   f.FetchedAt,
	}
}

// MarkStale flags the dashboard when it was last updated more than maxAge ago.
// A non-positive maxAge never marks it stale.
func MarkStale(d Dashboard, maxAge time.Duration) Dashboard {
	d.Stale = maxAge > 0 && !d.UpdatedAt.IsZero() && clock.Since(d.UpdatedAt) > maxAge
	return d
}

// HourLabel renders t as "<hour>:00" in zone, e.g. "0:00" or "13:00".
func HourLabel(t time.Time, zone *time.Location) string {
	return strconv.Itoa(t.In(zone).Hour()) + ":00"
}

// FormatTemperature renders degrees Celsius with one decimal place.
func FormatTemperature(v float64) string {
	return fmt.Sprintf("%.1f°C", v)
}

// FormatHumidity renders relative humidity in percent.
func FormatHumidity(v float64) string {
	return formatShortest(v) + "%"
}

// FormatWindSpeed renders wind speed in metres per second.
func FormatWindSpeed(v float64) string {
	return formatShortest(v) + " m/s"
}

// FormatPrecipitation renders precipitation in millimetres.
func FormatPrecipitation(v float64) string {
	return formatShortest(v) + " mm"
}

func formatShortest(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
