package handlers

import (
	"bytes"
	"context"
	"net/http"

	"github.com/MrSnakeDoc/newtab/internal/domain"
	"github.com/MrSnakeDoc/newtab/internal/httpserver/deps"
	"github.com/MrSnakeDoc/newtab/internal/logger"
	"github.com/MrSnakeDoc/newtab/internal/page"
)

// Index renders the new tab page. Configuration is read once from the query
// string, the producers are mounted for the lifetime of the request, and the
// page is rendered when both data producers settled or RenderWait elapsed.
// Whatever is still loading is finished client-side.
func Index(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg := domain.ParsePageConfig(r.URL.Query())

		ctrl := page.NewController(cfg, d.Page)
		if err := ctrl.Mount(r.Context()); err != nil {
			d.Logger.Error("failed to mount page", logger.Error(err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		defer ctrl.Teardown()

		waitCtx := r.Context()
		if d.RenderWait > 0 {
			var cancel context.CancelFunc
			waitCtx, cancel = context.WithTimeout(waitCtx, d.RenderWait)
			defer cancel()
		}
		if err := ctrl.Wait(waitCtx); err != nil {
			d.Logger.Debug("rendering before all producers settled",
				logger.String("view_id", ctrl.ID()),
				logger.Error(err))
		}

		var buf bytes.Buffer
		if err := d.Renderer.Render(&buf, ctrl.ID(), ctrl.Snapshot()); err != nil {
			d.Logger.Error("failed to render page",
				logger.String("view_id", ctrl.ID()),
				logger.Error(err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.WriteHeader(http.StatusOK)
		if _, err := buf.WriteTo(w); err != nil {
			d.Logger.Debug("failed to write response", logger.Error(err))
		}
	}
}
