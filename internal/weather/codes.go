package weather

import "fmt"

// condition is the display description and icon family for a WMO weather code.
type condition struct {
	description string
	icon        string // icon code without day/night suffix
}

// wmoConditions maps WMO weather interpretation codes (as returned by
// Open-Meteo) to descriptions and OpenWeatherMap icon codes.
var wmoConditions = map[int]condition{
	0:  {"Clear sky", "01"},
	1:  {"Mainly clear", "02"},
	2:  {"Partly cloudy", "03"},
	3:  {"Overcast", "04"},
	45: {"Fog", "50"},
	48: {"Depositing rime fog", "50"},
	51: {"Light drizzle", "09"},
	53: {"Moderate drizzle", "09"},
	55: {"Dense drizzle", "09"},
	56: {"Light freezing drizzle", "09"},
	57: {"Dense freezing drizzle", "09"},
	61: {"Slight rain", "10"},
	63: {"Moderate rain", "10"},
	65: {"Heavy rain", "10"},
	66: {"Light freezing rain", "13"},
	67: {"Heavy freezing rain", "13"},
	71: {"Slight snow fall", "13"},
	73: {"Moderate snow fall", "13"},
	75: {"Heavy snow fall", "13"},
	77: {"Snow grains", "13"},
	80: {"Slight rain showers", "09"},
	81: {"Moderate rain showers", "09"},
	82: {"Violent rain showers", "09"},
	85: {"Slight snow showers", "13"},
	86: {"Heavy snow showers", "13"},
	95: {"Thunderstorm", "11"},
	96: {"Thunderstorm with slight hail", "11"},
	99: {"Thunderstorm with heavy hail", "11"},
}

const iconURLTemplate = "https://openweathermap.org/img/wn/%s%s@2x.png"

// Describe returns the description and icon URL for a WMO code.
// Unknown codes map to "Unknown" with the cloud icon.
func Describe(code int, isDay bool) (description, icon string) {
	c, ok := wmoConditions[code]
	if !ok {
		c = condition{"Unknown", "03"}
	}
	suffix := "n"
	if isDay {
		suffix = "d"
	}
	return c.description, fmt.Sprintf(iconURLTemplate, c.icon, suffix)
}
