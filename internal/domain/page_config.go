package domain

import (
	"net/url"
	"strings"
)

// Temperature units
const (
	UnitCelsius    = "C"
	UnitFahrenheit = "F"
)

const (
	DefaultTitle      = "New Tab"
	DefaultBackground = "none"
)

// PageConfig is the per-page configuration read once from the query string.
type PageConfig struct {
	Title      string
	Background string
	Pinned     string // bookmark document URL, empty when not configured
	Unit       string // always UnitCelsius or UnitFahrenheit
}

// ParsePageConfig reads title, background, pinned and unit from query parameters.
func ParsePageConfig(q url.Values) PageConfig {
	cfg := PageConfig{
		Title:      DefaultTitle,
		Background: DefaultBackground,
		Unit:       NormalizeUnit(q.Get("unit")),
	}

	if v := strings.TrimSpace(q.Get("title")); v != "" {
		cfg.Title = v
	}
	if v := strings.TrimSpace(q.Get("background")); v != "" {
		cfg.Background = v
	}
	cfg.Pinned = strings.TrimSpace(q.Get("pinned"))

	return cfg
}

// HasPinned reports whether a pinned bookmark source was configured.
func (c PageConfig) HasPinned() bool {
	return c.Pinned != ""
}

// NormalizeUnit maps "c" (any case) to Celsius and anything else to Fahrenheit.
func NormalizeUnit(raw string) string {
	if strings.EqualFold(strings.TrimSpace(raw), UnitCelsius) {
		return UnitCelsius
	}
	return UnitFahrenheit
}
