package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"github.com/MrSnakeDoc/newtab/internal/domain"
	"github.com/MrSnakeDoc/newtab/internal/httpserver/deps"
	"github.com/MrSnakeDoc/newtab/internal/logger"
	"github.com/MrSnakeDoc/newtab/internal/proxy"
	"github.com/MrSnakeDoc/newtab/internal/sources/pinned"
)

// FetchData proxies GET ?url= to the remote document and answers
// {"body": "<text>"}.
func FetchData(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		target := strings.TrimSpace(r.URL.Query().Get("url"))
		if target == "" {
			writeError(w, http.StatusBadRequest, "missing url parameter")
			return
		}

		body, err := d.Fetcher.FetchBody(r.Context(), target)
		if err != nil {
			status := fetchErrorStatus(err)
			d.Logger.Info("proxy fetch failed",
				logger.String("url", target),
				logger.Int("status", status),
				logger.Error(err))
			writeError(w, status, err.Error())
			return
		}

		w.Header().Set("Cache-Control", "no-store")
		writeJSON(w, http.StatusOK, proxy.Envelope{Body: body})
	}
}

func fetchErrorStatus(err error) int {
	switch {
	case errors.Is(err, proxy.ErrUnsupportedURL):
		return http.StatusBadRequest
	case errors.Is(err, proxy.ErrForbiddenHost):
		return http.StatusForbidden
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		// ErrUpstreamStatus, ErrTooLarge and transport errors.
		return http.StatusBadGateway
	}
}

// Weather answers the current weather model for ?unit= (C or F).
func Weather(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		unit := domain.NormalizeUnit(r.URL.Query().Get("unit"))

		m, err := d.Weather.Current(r.Context(), unit)
		if err != nil {
			d.Logger.Warn("weather unavailable",
				logger.String("unit", unit),
				logger.Error(err))
			writeError(w, http.StatusServiceUnavailable, "weather unavailable")
			return
		}

		w.Header().Set("Cache-Control", "no-store")
		writeJSON(w, http.StatusOK, m)
	}
}

// BookmarkSchema publishes the JSON Schema of pinned bookmark documents.
func BookmarkSchema(d deps.Deps) http.HandlerFunc {
	raw, err := json.MarshalIndent(pinned.Schema(), "", "  ")
	if err != nil {
		d.Logger.Error("failed to marshal bookmark schema", logger.Error(err))
	}

	return func(w http.ResponseWriter, r *http.Request) {
		if err != nil {
			writeError(w, http.StatusInternalServerError, "schema unavailable")
			return
		}
		w.Header().Set("Content-Type", "application/schema+json")
		w.Header().Set("Cache-Control", "public, max-age=3600")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(raw)
	}
}
