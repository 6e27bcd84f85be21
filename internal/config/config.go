package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	// Page
	SiteName   string        // suffix rendered after the page title (ex: "newtab")
	SearchURL  string        // search engine template, %s is replaced by the escaped query
	Timezone   string        // IANA zone for the clock, "Local" uses the host zone
	RenderWait time.Duration // max time a page render waits for weather/bookmarks

	// Default bookmarks
	BookmarkFile   string        // path to a homepage-style bookmarks.yaml (optional, empty = built-in default)
	ReloadInterval time.Duration // interval to reload the bookmark file (default: 24h)

	// Weather
	WeatherURL             string        // provider base URL
	WeatherLatitude        float64       // fixed location
	WeatherLongitude       float64       // fixed location
	WeatherTimeout         time.Duration // timeout for a single provider call
	WeatherRefreshInterval time.Duration // background warm-up interval
	WeatherCacheTTL        time.Duration // how long a snapshot is served without refetching

	// Proxy
	ProxyTimeout      time.Duration // upstream timeout for /api/fetchData
	ProxyMaxBytes     int           // max upstream body size
	PinnedCacheTTL    time.Duration // cache TTL for proxied documents
	ProxyRateBurst    int           // token bucket size per client IP
	ProxyRatePerMin   int           // token refill per client IP per minute
	ProxyRateMaxEntry int           // max tracked client IPs
	ProxyBaseURL      string        // optional remote newtab whose /api/fetchData loads pinned lists
	ProxyAllowPrivate bool          // true => the proxy may reach loopback/LAN addresses

	// Redis (optional, empty addr disables the cache)
	RedisAddr             string        // ex: "localhost:6379"
	RedisUser             string        // optional
	RedisPassword         string        // optional
	RedisPasswordRequired bool          // true => require password, false => allow empty password
	RedisDB               int           // Redis DB number
	RedisDT               time.Duration // Redis dial timeout (ex: 5s)
	RedisRT               time.Duration // Redis read timeout (ex: 3s)
	RedisWT               time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait          time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout      time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize         int           // Redis connection pool size
	RedisConnectTimeout   time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval    time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold    int           // warn after this many attempts

	AllowedHosts []string // optional, restrict /reload to specific Host headers
	AllowedCIDRS []string // optional, restrict admin endpoints to specific IPs/CIDRs
	TrustProxy   bool     // true => trust X-Forwarded-For headers (e.g. cloudflared)
}

func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      getenv("NEWTAB_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("NEWTAB_SHUTDOWN_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  getenv("NEWTAB_LOG_LEVEL", "info"),
		PrettyLog: mustBool("NEWTAB_PRETTY_LOG", true),

		// Page
		SiteName:   getenv("NEWTAB_SITE_NAME", "newtab"),
		SearchURL:  getenv("NEWTAB_SEARCH_URL", "https://search.balls.workers.dev/?q=%s"),
		Timezone:   getenv("NEWTAB_TIMEZONE", "Local"),
		RenderWait: mustDuration("NEWTAB_RENDER_WAIT", 1500*time.Millisecond),

		// Default bookmarks
		BookmarkFile:   getenv("NEWTAB_BOOKMARK_FILE", ""),
		ReloadInterval: mustDuration("NEWTAB_RELOAD_SOURCE_INTERVAL", 24*time.Hour),

		// Weather
		WeatherURL:             getenv("NEWTAB_WEATHER_URL", "https://api.open-meteo.com"),
		WeatherLatitude:        getenvFloat("NEWTAB_WEATHER_LATITUDE", 40.7128),
		WeatherLongitude:       getenvFloat("NEWTAB_WEATHER_LONGITUDE", -74.0060),
		WeatherTimeout:         mustDuration("NEWTAB_WEATHER_TIMEOUT", 5*time.Second),
		WeatherRefreshInterval: mustDuration("NEWTAB_WEATHER_REFRESH_INTERVAL", 10*time.Minute),
		WeatherCacheTTL:        mustDuration("NEWTAB_WEATHER_CACHE_TTL", 15*time.Minute),

		// Proxy
		ProxyTimeout:      mustDuration("NEWTAB_PROXY_TIMEOUT", 5*time.Second),
		ProxyMaxBytes:     getenvInt("NEWTAB_PROXY_MAX_BYTES", 1<<20),
		PinnedCacheTTL:    mustDuration("NEWTAB_PINNED_CACHE_TTL", 5*time.Minute),
		ProxyRateBurst:    getenvInt("NEWTAB_PROXY_RATE_BURST", 20),
		ProxyRatePerMin:   getenvInt("NEWTAB_PROXY_RATE_PER_MIN", 60),
		ProxyRateMaxEntry: getenvInt("NEWTAB_PROXY_RATE_MAX_ENTRIES", 4096),
		ProxyBaseURL:      getenv("NEWTAB_PROXY_BASE_URL", ""),
		ProxyAllowPrivate: mustBool("NEWTAB_PROXY_ALLOW_PRIVATE", false),

		// Redis settings
		RedisAddr:             getenv("NEWTAB_REDIS_ADDR", ""),
		RedisUser:             getenv("NEWTAB_REDIS_USERNAME", "default"),
		RedisPasswordRequired: mustBool("NEWTAB_REDIS_PASSWORD_REQUIRED", false),
		RedisPassword:         getenv("NEWTAB_REDIS_PASSWORD", ""),
		RedisDB:               getenvInt("NEWTAB_REDIS_DB", 0),
		RedisDT:               mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:               mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:               mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:          mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:      mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:         getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout:   mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:    mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:    getenvInt("REDIS_WARN_THRESHOLD", 3),

		// Access restrictions
		AllowedHosts: splitAndTrim(getenv("NEWTAB_ALLOWED_HOSTS", "")),
		AllowedCIDRS: parseAllowedIPs(getenv("NEWTAB_ALLOWED_CIDRS", "")),
		TrustProxy:   mustBool("NEWTAB_TRUST_PROXY", false),
	}

	if !strings.Contains(cfg.SearchURL, "%s") {
		panic(fmt.Sprintf("❌ FATAL: NEWTAB_SEARCH_URL must contain %%s, got %q", cfg.SearchURL))
	}

	// Validate Redis password configuration
	if cfg.RedisAddr != "" && cfg.RedisPasswordRequired && cfg.RedisPassword == "" {
		panic("❌ FATAL: NEWTAB_REDIS_PASSWORD is required when NEWTAB_REDIS_PASSWORD_REQUIRED=true")
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		cfgCopy.RedisPassword = "***REDACTED***"
		if cfg.RedisUser != "" {
			cfgCopy.RedisUser = "***REDACTED***"
		}
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
}

// CacheEnabled reports whether a Redis address was configured.
func (c *Config) CacheEnabled() bool {
	return c.RedisAddr != ""
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getenvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func parseAllowedIPs(allowed string) []string {
	if allowed == "" {
		return nil
	}
	ips := make([]string, 0, 4)
	for _, ip := range splitAndTrim(allowed) {
		if ip != "" {
			ips = append(ips, ip)
		}
	}
	return ips
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
