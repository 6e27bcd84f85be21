// Package weather retrieves current conditions for the configured location
// and normalizes them into domain.WeatherModel.
package weather

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/MrSnakeDoc/newtab/internal/domain"
	"github.com/MrSnakeDoc/newtab/internal/utils"
)

// ErrProviderStatus is returned when the provider answers with a non-2xx status.
var ErrProviderStatus = errors.New("weather provider returned an error status")

// Provider returns the current weather in the requested unit.
type Provider interface {
	Current(ctx context.Context, unit string) (domain.WeatherModel, error)
}

// OpenMeteoOptions configures the Open-Meteo provider.
type OpenMeteoOptions struct {
	BaseURL   string        // ex: https://api.open-meteo.com
	Latitude  float64       // fixed location
	Longitude float64       // fixed location
	Timeout   time.Duration // per-call timeout
}

// OpenMeteo fetches current conditions from the Open-Meteo forecast API.
// Each Current call performs exactly one HTTP request and never retries.
type OpenMeteo struct {
	opts    OpenMeteoOptions
	client  *http.Client
	timeNow func() time.Time
}

var _ Provider = (*OpenMeteo)(nil)

// NewOpenMeteo creates the provider. A nil client uses a client with opts.Timeout.
func NewOpenMeteo(opts OpenMeteoOptions, client *http.Client) *OpenMeteo {
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	return &OpenMeteo{
		opts:    opts,
		client:  client,
		timeNow: time.Now,
	}
}

// openMeteoResponse is the subset of the forecast response we read.
type openMeteoResponse struct {
	Current *struct {
		Temperature *float64 `json:"temperature_2m"`
		WeatherCode *int     `json:"weather_code"`
		IsDay       *int     `json:"is_day"`
	} `json:"current"`
}

// Current performs one provider call and returns a resolved model.
func (p *OpenMeteo) Current(ctx context.Context, unit string) (domain.WeatherModel, error) {
	unit = domain.NormalizeUnit(unit)

	ctx, cancel := context.WithTimeout(ctx, p.opts.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.requestURL(unit), http.NoBody)
	if err != nil {
		return domain.WeatherModel{}, fmt.Errorf("failed to create weather request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return domain.WeatherModel{}, fmt.Errorf("failed to fetch weather: %w", err)
	}
	defer utils.Close(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return domain.WeatherModel{}, fmt.Errorf("%w: %d", ErrProviderStatus, resp.StatusCode)
	}

	var payload openMeteoResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&payload); err != nil {
		return domain.WeatherModel{}, fmt.Errorf("failed to decode weather response: %w", err)
	}

	return p.normalize(payload, unit)
}

func (p *OpenMeteo) normalize(payload openMeteoResponse, unit string) (domain.WeatherModel, error) {
	cur := payload.Current
	if cur == nil || cur.Temperature == nil || cur.WeatherCode == nil {
		return domain.WeatherModel{}, errors.New("weather response is missing current conditions")
	}

	isDay := true
	if cur.IsDay != nil {
		isDay = *cur.IsDay == 1
	}

	description, icon := Describe(*cur.WeatherCode, isDay)
	return domain.NewResolvedWeather(*cur.Temperature, unit, description, icon, isDay, p.timeNow()), nil
}

func (p *OpenMeteo) requestURL(unit string) string {
	tempUnit := "fahrenheit"
	if unit == domain.UnitCelsius {
		tempUnit = "celsius"
	}

	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(p.opts.Latitude, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(p.opts.Longitude, 'f', -1, 64))
	q.Set("current", "temperature_2m,weather_code,is_day")
	q.Set("temperature_unit", tempUnit)
	q.Set("timezone", "auto")

	return p.opts.BaseURL + "/v1/forecast?" + q.Encode()
}
