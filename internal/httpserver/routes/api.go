package routes

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MrSnakeDoc/newtab/internal/httpserver/deps"
	"github.com/MrSnakeDoc/newtab/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/newtab/internal/httpserver/mw"
)

func init() { Register(registerAPI) }

const apiTimeout = 15 * time.Second

func registerAPI(r chi.Router, d deps.Deps) {
	r.Route("/api", func(api chi.Router) {
		api.With(
			middleware.Timeout(apiTimeout),
			mw.RateLimit(mw.RateLimitConfig{
				Burst:             d.Proxy.Burst,
				RefillPerIPPerMin: d.Proxy.PerMin,
				MaxEntries:        d.Proxy.MaxEntries,
				TrustProxy:        d.TrustProxy,
			}),
		).Get("/fetchData", handlers.FetchData(d))

		api.With(middleware.Timeout(apiTimeout)).Get("/weather", handlers.Weather(d))
		api.Get("/schema/bookmarks", handlers.BookmarkSchema(d))

		// Streams until the client disconnects, so no timeout here.
		api.Get("/clock", handlers.Clock(d))
	})
}
