package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.ListenPort != ":8080" {
		t.Errorf("ListenPort = %v, want :8080", cfg.ListenPort)
	}
	if cfg.SearchURL != "https://search.balls.workers.dev/?q=%s" {
		t.Errorf("SearchURL = %v, want the default search template", cfg.SearchURL)
	}
	if cfg.RenderWait != 1500*time.Millisecond {
		t.Errorf("RenderWait = %v, want 1.5s", cfg.RenderWait)
	}
	if cfg.CacheEnabled() {
		t.Error("CacheEnabled() should be false without NEWTAB_REDIS_ADDR")
	}
	if cfg.BookmarkFile != "" {
		t.Errorf("BookmarkFile = %q, want empty", cfg.BookmarkFile)
	}
	if cfg.ProxyAllowPrivate {
		t.Error("ProxyAllowPrivate should default to false")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("NEWTAB_LISTEN_PORT", ":9090")
	t.Setenv("NEWTAB_WEATHER_LATITUDE", "48.85")
	t.Setenv("NEWTAB_WEATHER_LONGITUDE", "2.35")
	t.Setenv("NEWTAB_REDIS_ADDR", "localhost:6379")
	t.Setenv("NEWTAB_ALLOWED_CIDRS", "10.0.0.0/8, 127.0.0.1")
	t.Setenv("NEWTAB_PROXY_BASE_URL", "https://tab.example.com")
	t.Setenv("NEWTAB_PROXY_ALLOW_PRIVATE", "true")

	cfg := Load()

	if cfg.ListenPort != ":9090" {
		t.Errorf("ListenPort = %v, want :9090", cfg.ListenPort)
	}
	if cfg.WeatherLatitude != 48.85 || cfg.WeatherLongitude != 2.35 {
		t.Errorf("weather location = (%v, %v), want (48.85, 2.35)", cfg.WeatherLatitude, cfg.WeatherLongitude)
	}
	if !cfg.CacheEnabled() {
		t.Error("CacheEnabled() should be true when NEWTAB_REDIS_ADDR is set")
	}
	if len(cfg.AllowedCIDRS) != 2 {
		t.Errorf("AllowedCIDRS = %v, want 2 entries", cfg.AllowedCIDRS)
	}
	if cfg.ProxyBaseURL != "https://tab.example.com" {
		t.Errorf("ProxyBaseURL = %q, want https://tab.example.com", cfg.ProxyBaseURL)
	}
	if !cfg.ProxyAllowPrivate {
		t.Error("ProxyAllowPrivate should be true when NEWTAB_PROXY_ALLOW_PRIVATE=true")
	}
}

func TestLoadPanicsOnSearchURLWithoutPlaceholder(t *testing.T) {
	t.Setenv("NEWTAB_SEARCH_URL", "https://duckduckgo.com/")

	defer func() {
		if r := recover(); r == nil {
			t.Error("Load() should have panicked")
		}
	}()
	Load()
}

func TestLoadPanicsOnMissingRedisPassword(t *testing.T) {
	t.Setenv("NEWTAB_REDIS_ADDR", "localhost:6379")
	t.Setenv("NEWTAB_REDIS_PASSWORD_REQUIRED", "true")

	defer func() {
		if r := recover(); r == nil {
			t.Error("Load() should have panicked")
		}
	}()
	Load()
}

func TestMustDuration(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		value    string
		def      time.Duration
		expected time.Duration
	}{
		{
			name:     "valid duration",
			key:      "TEST_DURATION",
			value:    "5s",
			def:      1 * time.Second,
			expected: 5 * time.Second,
		},
		{
			name:     "invalid duration uses default",
			key:      "TEST_DURATION_INVALID",
			value:    "invalid",
			def:      10 * time.Second,
			expected: 10 * time.Second,
		},
		{
			name:     "missing variable uses default",
			key:      "TEST_DURATION_MISSING",
			value:    "",
			def:      15 * time.Second,
			expected: 15 * time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				t.Setenv(tt.key, tt.value)
			}

			result := mustDuration(tt.key, tt.def)
			if result != tt.expected {
				t.Errorf("mustDuration() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestMustBool(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		value    string
		def      bool
		expected bool
	}{
		{name: "true value", key: "TEST_BOOL", value: "true", def: false, expected: true},
		{name: "false value", key: "TEST_BOOL_FALSE", value: "false", def: true, expected: false},
		{name: "invalid value uses default", key: "TEST_BOOL_INVALID", value: "invalid", def: true, expected: true},
		{name: "missing variable uses default", key: "TEST_BOOL_MISSING", value: "", def: false, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				t.Setenv(tt.key, tt.value)
			}

			result := mustBool(tt.key, tt.def)
			if result != tt.expected {
				t.Errorf("mustBool() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestGetenvFloat(t *testing.T) {
	t.Setenv("TEST_FLOAT", "not-a-float")
	if got := getenvFloat("TEST_FLOAT", 1.5); got != 1.5 {
		t.Errorf("getenvFloat() with invalid value = %v, want default 1.5", got)
	}

	t.Setenv("TEST_FLOAT", "-3.25")
	if got := getenvFloat("TEST_FLOAT", 1.5); got != -3.25 {
		t.Errorf("getenvFloat() = %v, want -3.25", got)
	}
}

func TestSplitAndTrim(t *testing.T) {
	got := splitAndTrim(` "a.example.com", 'b.example.com' ,, c `)
	want := []string{"a.example.com", "b.example.com", "c"}
	if len(got) != len(want) {
		t.Fatalf("splitAndTrim() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("splitAndTrim()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}
