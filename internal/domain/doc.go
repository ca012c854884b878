// Package domain models the weather readings shown on the dashboard widget and
// the view state derived from them.
//
// # Data Source
//
// Readings come from the Open-Meteo forecast API
// (https://open-meteo.com/en/docs). A single request returns a "current" block
// of scalar variables and an "hourly" block of parallel arrays. The service asks
// for unix timestamps (timeformat=unixtime), so every time in the response is
// in UTC and the location's offset is carried separately as utc_offset_seconds.
//
// # Units
//
//	Temperature:   degrees Celsius (API default)
//	Humidity:      percent relative humidity at 2 m
//	Wind speed:    metres per second (requested with wind_speed_unit=ms)
//	Precipitation: millimetres over the preceding hour
//
// # View State
//
// [BuildDashboard] turns a [Forecast] into a [Dashboard]: four formatted tiles
// and a series of hourly chart points. Formatting rules:
//
//	Temperature:   one decimal place         21.5°C
//	Humidity:      shortest representation   65%
//	Wind speed:    shortest representation   3.4 m/s
//	Precipitation: shortest representation   0.2 mm
//
// Chart labels are the local hour of each point followed by ":00", without a
// leading zero ("0:00", "7:00", "13:00"). Local means the forecast location's
// offset, not the offset of the host running the service.
//
// Missing current variables render as zero. A response missing either the
// current or the hourly block is rejected with [ErrIncompleteForecast].
package domain
