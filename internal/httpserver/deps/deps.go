package deps

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/newtab/internal/clock"
	"github.com/MrSnakeDoc/newtab/internal/index"
	"github.com/MrSnakeDoc/newtab/internal/logger"
	"github.com/MrSnakeDoc/newtab/internal/page"
	"github.com/MrSnakeDoc/newtab/internal/proxy"
	"github.com/MrSnakeDoc/newtab/internal/weather"
)

// DocumentFlusher drops every cached proxied document.
type DocumentFlusher interface {
	FlushDocuments(ctx context.Context) (int, error)
}

type Deps struct {
	Logger    logger.Logger
	StartTime time.Time
	Version   string
	Commit    string
	BuildDate string
	GoVersion string
	TimeNow   func() time.Time // for testing, defaults to time.Now

	AllowedHosts []string // Host headers allowed on admin endpoints
	AllowedCIDRS []string // IPs allowed on admin endpoints
	TrustProxy   bool     // true if running behind a trusted reverse proxy (e.g., cloudflared)

	SiteName   string        // shown in the page title
	SearchURL  string        // search engine template with a single %s
	RenderWait time.Duration // how long the page waits for its producers

	Page      page.Deps      // shared by every page instance
	Renderer  *page.Renderer // page HTML
	Weather   weather.Provider
	Fetcher   proxy.Source // in-process proxy behind /api/fetchData
	Clock     *clock.Ticker
	Proxy     ProxyLimits
	Documents DocumentFlusher // nil without Redis

	RedisClient  *redis.Client      // nil when Redis is disabled
	MemoryIndex  *index.MemoryIndex // default bookmarks + weather snapshots
	BookmarkFile string             // default bookmark file, empty when built-in defaults are used

	WeatherRefreshTrigger chan struct{} // manual weather refresh
	BookmarkReloadTrigger chan struct{} // manual bookmark reload (nil without a bookmark file)
}

// ProxyLimits configures the per-client rate limit of /api/fetchData.
type ProxyLimits struct {
	Burst      int
	PerMin     int
	MaxEntries int
}

// Now returns the current time from TimeNow when set.
func (d Deps) Now() time.Time {
	if d.TimeNow != nil {
		return d.TimeNow()
	}
	return time.Now()
}
