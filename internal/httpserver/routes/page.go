package routes

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MrSnakeDoc/newtab/internal/httpserver/deps"
	"github.com/MrSnakeDoc/newtab/internal/httpserver/handlers"
)

func init() { Register(registerPage) }

// pageTimeout leaves room for rendering after the producers' wait.
const pageTimeout = 5 * time.Second

func registerPage(r chi.Router, d deps.Deps) {
	r.With(middleware.Timeout(d.RenderWait+pageTimeout)).Get("/", handlers.Index(d))
	r.With(middleware.Timeout(pageTimeout)).Get("/search", handlers.Search(d))
}
