package domain

import (
	"fmt"
	"math"
	"time"
)

// WeatherStatus tells whether a WeatherModel is the placeholder or real data.
type WeatherStatus string

const (
	WeatherLoading  WeatherStatus = "loading"
	WeatherResolved WeatherStatus = "resolved"
)

// LoadingIcon is shown while the first fetch is in flight.
const LoadingIcon = "https://openweathermap.org/img/wn/03d@2x.png"

// WeatherModel is the normalized weather display model. It is either the
// loading placeholder or fully resolved, never partially populated.
type WeatherModel struct {
	Status      WeatherStatus `json:"status"`
	Temperature float64       `json:"temperature"`
	Unit        string        `json:"unit"`
	Description string        `json:"description"`
	Icon        string        `json:"icon"`
	IsDay       bool          `json:"is_day"`
	FetchedAt   time.Time     `json:"fetched_at,omitempty"`
}

// LoadingWeather returns the placeholder shown before the first successful fetch.
func LoadingWeather(unit string) WeatherModel {
	return WeatherModel{
		Status:      WeatherLoading,
		Unit:        NormalizeUnit(unit),
		Description: "Loading weather...",
		Icon:        LoadingIcon,
		IsDay:       true,
	}
}

// NewResolvedWeather builds a resolved model. Description falls back to
// "Unknown" so the resolved variant is always complete.
func NewResolvedWeather(temp float64, unit, description, icon string, isDay bool, fetchedAt time.Time) WeatherModel {
	if description == "" {
		description = "Unknown"
	}
	if icon == "" {
		icon = LoadingIcon
	}
	return WeatherModel{
		Status:      WeatherResolved,
		Temperature: temp,
		Unit:        NormalizeUnit(unit),
		Description: description,
		Icon:        icon,
		IsDay:       isDay,
		FetchedAt:   fetchedAt,
	}
}

// Resolved reports whether the model holds real data.
func (w WeatherModel) Resolved() bool {
	return w.Status == WeatherResolved
}

// TemperatureLabel renders the rounded temperature with its unit, ex: "72°F".
// The placeholder renders "--°F".
func (w WeatherModel) TemperatureLabel() string {
	if !w.Resolved() {
		return "--°" + w.Unit
	}
	return fmt.Sprintf("%d°%s", int(math.Round(w.Temperature)), w.Unit)
}

// Stale reports whether a resolved model is older than ttl at now.
func (w WeatherModel) Stale(now time.Time, ttl time.Duration) bool {
	if !w.Resolved() || w.FetchedAt.IsZero() {
		return true
	}
	return now.Sub(w.FetchedAt) > ttl
}
