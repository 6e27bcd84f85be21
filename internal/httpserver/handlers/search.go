package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/MrSnakeDoc/newtab/internal/domain"
	"github.com/MrSnakeDoc/newtab/internal/httpserver/deps"
	"github.com/MrSnakeDoc/newtab/internal/logger"
)

const pinnedLookupTimeout = 3 * time.Second

// Search routes a search bar submission: https:// input is opened directly,
// "@name" jumps to a bookmark, anything else goes to the search engine.
func Search(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		query := strings.TrimSpace(q.Get("q"))

		var bookmarks []domain.Bookmark
		if strings.HasPrefix(query, domain.BookmarkShortcutPrefix) {
			bookmarks = searchBookmarks(r.Context(), d, strings.TrimSpace(q.Get("pinned")))
		}

		res := domain.ResolveSearch(query, d.SearchURL, bookmarks)
		switch res.Kind {
		case domain.SearchEmpty:
			d.Logger.Debug("empty query, redirecting to page")
			http.Redirect(w, r, "/", http.StatusFound)
			return
		case domain.SearchBookmark:
			d.Logger.Info("resolved bookmark shortcut",
				logger.String("query", query),
				logger.String("url", res.Target))
		default:
			d.Logger.Debug("search request",
				logger.String("kind", string(res.Kind)),
				logger.String("query", query))
		}

		http.Redirect(w, r, res.Target, http.StatusFound)
	}
}

// searchBookmarks returns the pinned set when one is given and loads,
// followed by the default set.
func searchBookmarks(ctx context.Context, d deps.Deps, pinned string) []domain.Bookmark {
	var out []domain.Bookmark

	if pinned != "" && d.Page.Bookmarks != nil {
		ctx, cancel := context.WithTimeout(ctx, pinnedLookupTimeout)
		defer cancel()
		list, err := d.Page.Bookmarks.Load(ctx, pinned)
		if err != nil {
			d.Logger.Warn("pinned bookmarks unavailable for shortcut",
				logger.String("pinned", pinned),
				logger.Error(err))
		} else {
			out = append(out, list...)
		}
	}

	out = append(out, pageDefaults(d)...)

	d.Logger.Debug("bookmark shortcut candidates", logger.Int("count", len(out)))
	return out
}

func pageDefaults(d deps.Deps) []domain.Bookmark {
	if d.MemoryIndex == nil {
		return domain.DefaultBookmarks()
	}
	return d.MemoryIndex.GetBookmarks()
}
