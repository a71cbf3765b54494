package models

import "time"

// WeatherReport is the current weather for a place.
type WeatherReport struct {
	City        string    `json:"city"`
	Temperature float64   `json:"temperature_c"`
	Humidity    int       `json:"humidity_pct"`
	Condition   string    `json:"condition"`
	FetchedAt   time.Time `json:"fetched_at"`
}
