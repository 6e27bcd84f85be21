package weather

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MrSnakeDoc/newtab/internal/domain"
	"github.com/MrSnakeDoc/newtab/internal/index"
	"github.com/MrSnakeDoc/newtab/internal/logger"
)

func newProviderServer(t *testing.T, status int, body string, gotQuery *string) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/forecast" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if gotQuery != nil {
			*gotQuery = r.URL.RawQuery
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(ts.Close)
	return ts
}

func TestOpenMeteoCurrent(t *testing.T) {
	var query string
	ts := newProviderServer(t, http.StatusOK,
		`{"current":{"time":"2026-10-18T15:00","temperature_2m":71.6,"weather_code":61,"is_day":0}}`, &query)

	p := NewOpenMeteo(OpenMeteoOptions{BaseURL: ts.URL + "/", Latitude: 40.5, Longitude: -74.25, Timeout: time.Second}, nil)

	got, err := p.Current(context.Background(), "f")
	if err != nil {
		t.Fatalf("Current() error = %v", err)
	}

	if !got.Resolved() {
		t.Fatal("Current() returned an unresolved model")
	}
	if got.Temperature != 71.6 || got.Unit != "F" {
		t.Errorf("temperature = %v%s, want 71.6F", got.Temperature, got.Unit)
	}
	if got.Description != "Slight rain" {
		t.Errorf("Description = %q, want Slight rain", got.Description)
	}
	if got.Icon != "https://openweathermap.org/img/wn/10n@2x.png" {
		t.Errorf("Icon = %q", got.Icon)
	}
	if got.IsDay {
		t.Error("IsDay should be false for is_day=0")
	}

	for _, want := range []string{"latitude=40.5", "longitude=-74.25", "temperature_unit=fahrenheit"} {
		if !strings.Contains(query, want) {
			t.Errorf("query %q missing %q", query, want)
		}
	}
}

func TestOpenMeteoCelsius(t *testing.T) {
	var query string
	ts := newProviderServer(t, http.StatusOK,
		`{"current":{"temperature_2m":21.2,"weather_code":0,"is_day":1}}`, &query)

	p := NewOpenMeteo(OpenMeteoOptions{BaseURL: ts.URL}, nil)
	got, err := p.Current(context.Background(), "C")
	if err != nil {
		t.Fatalf("Current() error = %v", err)
	}
	if got.Unit != "C" || !strings.Contains(query, "temperature_unit=celsius") {
		t.Errorf("unit = %q, query = %q", got.Unit, query)
	}
	if got.TemperatureLabel() != "21°C" {
		t.Errorf("TemperatureLabel() = %q", got.TemperatureLabel())
	}
}

func TestOpenMeteoErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		isErr  error
	}{
		{name: "server error", status: http.StatusInternalServerError, body: `{"error":true}`, isErr: ErrProviderStatus},
		{name: "malformed json", status: http.StatusOK, body: `{"current":`},
		{name: "missing current", status: http.StatusOK, body: `{}`},
		{name: "missing temperature", status: http.StatusOK, body: `{"current":{"weather_code":1}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newProviderServer(t, tt.status, tt.body, nil)
			p := NewOpenMeteo(OpenMeteoOptions{BaseURL: ts.URL}, nil)

			_, err := p.Current(context.Background(), "F")
			if err == nil {
				t.Fatal("Current() should fail")
			}
			if tt.isErr != nil && !errors.Is(err, tt.isErr) {
				t.Errorf("Current() error = %v, want %v", err, tt.isErr)
			}
		})
	}
}

func TestDescribeUnknownCode(t *testing.T) {
	desc, icon := Describe(1234, true)
	if desc != "Unknown" || icon != "https://openweathermap.org/img/wn/03d@2x.png" {
		t.Errorf("Describe(1234) = %q, %q", desc, icon)
	}
}

type countingProvider struct {
	calls atomic.Int32
	err   error
}

func (p *countingProvider) Current(_ context.Context, unit string) (domain.WeatherModel, error) {
	p.calls.Add(1)
	if p.err != nil {
		return domain.WeatherModel{}, p.err
	}
	return domain.NewResolvedWeather(10, unit, "Overcast", "icon", true, time.Now()), nil
}

func TestCachedServesFreshSnapshot(t *testing.T) {
	provider := &countingProvider{}
	idx := index.NewMemoryIndex()
	c := NewCached(provider, idx, nil, time.Minute, logger.Nop())

	for i := 0; i < 3; i++ {
		if _, err := c.Current(context.Background(), "C"); err != nil {
			t.Fatalf("Current() error = %v", err)
		}
	}
	if got := provider.calls.Load(); got != 1 {
		t.Errorf("provider called %d times, want 1", got)
	}

	// A different unit is a different snapshot.
	if _, err := c.Current(context.Background(), "F"); err != nil {
		t.Fatalf("Current() error = %v", err)
	}
	if got := provider.calls.Load(); got != 2 {
		t.Errorf("provider called %d times, want 2", got)
	}
}

func TestCachedRefetchesStaleSnapshot(t *testing.T) {
	provider := &countingProvider{}
	idx := index.NewMemoryIndex()
	idx.UpdateWeather(domain.NewResolvedWeather(1, "F", "Clear sky", "icon", true, time.Now().Add(-time.Hour)))

	c := NewCached(provider, idx, nil, time.Minute, logger.Nop())
	m, err := c.Current(context.Background(), "F")
	if err != nil {
		t.Fatalf("Current() error = %v", err)
	}
	if m.Temperature != 10 {
		t.Errorf("stale snapshot served: %+v", m)
	}
	if provider.calls.Load() != 1 {
		t.Errorf("provider called %d times, want 1", provider.calls.Load())
	}
}

func TestCachedPropagatesProviderError(t *testing.T) {
	provider := &countingProvider{err: errors.New("boom")}
	c := NewCached(provider, index.NewMemoryIndex(), nil, time.Minute, logger.Nop())

	if _, err := c.Current(context.Background(), "F"); err == nil {
		t.Error("Current() should return the provider error")
	}
}
