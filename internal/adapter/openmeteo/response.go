package openmeteo

// Open-Meteo API response types for timeformat=unixtime.
// Pointers distinguish absent blocks and variables from zero readings.

type response struct {
	Latitude             float64       `json:"latitude"`
	Longitude            float64       `json:"longitude"`
	UTCOffsetSeconds     int           `json:"utc_offset_seconds"`
	Timezone             string        `json:"timezone"`
	TimezoneAbbreviation string        `json:"timezone_abbreviation"`
	Current              *currentBlock `json:"current"`
	Hourly               *hourlyBlock  `json:"hourly"`
}

type currentBlock struct {
	Time          int64    `json:"time"`
	Interval      int      `json:"interval"`
	Precipitation *float64 `json:"precipitation"`
	Temperature   *float64 `json:"temperature_2m"`
	Rain          *float64 `json:"rain"`
	CloudCover    *float64 `json:"cloud_cover"`
	Humidity      *float64 `json:"relative_humidity_2m"`
	IsDay         *float64 `json:"is_day"`
	WindSpeed     *float64 `json:"wind_speed_10m"`
	WindDirection *float64 `json:"wind_direction_10m"`
	WindGusts     *float64 `json:"wind_gusts_10m"`
	Showers       *float64 `json:"showers"`
}

type hourlyBlock struct {
	Time        []int64    `json:"time"`
	Temperature []*float64 `json:"temperature_2m"`
}

// apiError is the body Open-Meteo returns with 4xx responses.
type apiError struct {
	Error  bool   `json:"error"`
	Reason string `json:"reason"`
}

func valueOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
