package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/newtab/internal/httpserver/deps"
	"github.com/MrSnakeDoc/newtab/internal/logger"
)

type healthzResponse struct {
	Status        string  `json:"status"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	Version       string  `json:"version,omitempty"`
	Commit        string  `json:"commit,omitempty"`
	BuildDate     string  `json:"build_date,omitempty"`
	GoVersion     string  `json:"go_version,omitempty"`
}

func Healthz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		writeJSON(w, http.StatusOK, healthzResponse{
			Status:        "ok",
			Version:       d.Version,
			Commit:        d.Commit,
			BuildDate:     d.BuildDate,
			GoVersion:     d.GoVersion,
			UptimeSeconds: d.Now().Sub(d.StartTime).Seconds(),
		})
	}
}

type readyzResponse struct {
	Ready     bool `json:"ready"`
	Bookmarks int  `json:"bookmarks"`
}

// Readyz is ready once a default bookmark set is loaded. Weather and Redis
// only degrade the page, so they are reported by /infra instead.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		count := d.MemoryIndex.BookmarkCount()
		status := http.StatusOK
		if count == 0 {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, readyzResponse{Ready: count > 0, Bookmarks: count})
	}
}

type componentStatus struct {
	OK         bool   `json:"ok"`
	Loaded     *int   `json:"loaded,omitempty"`
	LastUpdate string `json:"last_update,omitempty"`
	Source     string `json:"source,omitempty"`
	Mode       string `json:"mode,omitempty"`
	Impact     string `json:"impact,omitempty"`
	Error      string `json:"error,omitempty"`
}

type infraResponse struct {
	Mode       string                     `json:"mode"`
	Components map[string]componentStatus `json:"components"`
}

// Infra reports the state of every component backing the page.
func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bookmarkCount := d.MemoryIndex.BookmarkCount()
		weatherCount := d.MemoryIndex.WeatherCount()

		source := "built-in"
		if d.BookmarkFile != "" {
			source = d.BookmarkFile
		}

		components := map[string]componentStatus{
			"bookmarks": {
				OK:         bookmarkCount > 0,
				Loaded:     &bookmarkCount,
				LastUpdate: formatTime(d.MemoryIndex.GetLastBookmarkReload()),
				Source:     source,
			},
			"weather": {
				OK:         weatherCount > 0,
				Loaded:     &weatherCount,
				LastUpdate: formatTime(d.MemoryIndex.GetLastWeatherUpdate()),
				Impact:     impactIf(weatherCount == 0, "placeholder-until-provider-answers"),
			},
			"redis": checkRedis(r.Context(), d),
		}

		writeJSON(w, http.StatusOK, infraResponse{
			Mode:       determineMode(components),
			Components: components,
		})
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.Format("2006-01-02 15:04:05")
}

func impactIf(cond bool, impact string) string {
	if cond {
		return impact
	}
	return ""
}

func determineMode(components map[string]componentStatus) string {
	if !components["bookmarks"].OK {
		return "critical"
	}
	if !components["weather"].OK {
		return "degraded"
	}
	if redis := components["redis"]; !redis.OK && redis.Mode != "disabled" {
		return "degraded"
	}
	return "optimal"
}

func checkRedis(ctx context.Context, d deps.Deps) componentStatus {
	if d.RedisClient == nil {
		return componentStatus{
			OK:     true,
			Mode:   "disabled",
			Impact: "memory-only-cache",
		}
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := d.RedisClient.Ping(ctx).Err(); err != nil {
		return componentStatus{
			OK:     false,
			Mode:   "degraded",
			Impact: "shared-cache-disabled",
			Error:  err.Error(),
		}
	}

	return componentStatus{OK: true, Mode: "optimal"}
}

type reloadResponse struct {
	Weather          string `json:"weather"`
	Bookmarks        string `json:"bookmarks"`
	DocumentsFlushed int    `json:"documents_flushed"`
}

// Reload triggers a weather refresh and a default bookmark reload, and drops
// cached proxied documents so pinned lists are fetched again.
func Reload(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := reloadResponse{
			Weather:   trigger(d, d.WeatherRefreshTrigger, "weather", r.RemoteAddr),
			Bookmarks: trigger(d, d.BookmarkReloadTrigger, "bookmarks", r.RemoteAddr),
		}

		if d.Documents != nil {
			n, err := d.Documents.FlushDocuments(r.Context())
			if err != nil {
				d.Logger.Warn("failed to flush cached documents", logger.Error(err))
			}
			resp.DocumentsFlushed = n
		}

		status := http.StatusAccepted
		if resp.Weather != "triggered" && resp.Bookmarks != "triggered" {
			status = http.StatusTooManyRequests
		}
		writeJSON(w, status, resp)
	}
}

// trigger does a non-blocking send. A full channel means a reload is pending.
func trigger(d deps.Deps, ch chan struct{}, name, remote string) string {
	if ch == nil {
		return "disabled"
	}
	select {
	case ch <- struct{}{}:
		d.Logger.Info("manual reload triggered via endpoint",
			logger.String("component", name),
			logger.String("remote_ip", remote))
		return "triggered"
	default:
		d.Logger.Warn("reload already in progress",
			logger.String("component", name),
			logger.String("remote_ip", remote))
		return "pending"
	}
}
