package index

import (
	"sync"
	"time"

	"github.com/MrSnakeDoc/newtab/internal/domain"
)

// MemoryIndex holds the process-wide state shared by every page view: the
// default bookmark set and the latest weather snapshot per unit.
// It is the primary source; Redis is only a warm cache behind it.
type MemoryIndex struct {
	mu                 sync.RWMutex
	bookmarks          []domain.Bookmark               // default pinned set, display order
	weather            map[string]domain.WeatherModel // unit -> latest snapshot
	lastBookmarkReload time.Time                      // Timestamp of last default bookmarks reload
	lastWeatherUpdate  time.Time                      // Timestamp of last weather snapshot
}

// NewMemoryIndex creates an index seeded with domain.DefaultBookmarks.
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{
		bookmarks: domain.DefaultBookmarks(),
		weather:   make(map[string]domain.WeatherModel, 2),
	}
}

// ─────────────────────────────────────────────────────────────────
// Default bookmarks
// ─────────────────────────────────────────────────────────────────

// UpdateBookmarks replaces the default bookmark set wholesale.
func (idx *MemoryIndex) UpdateBookmarks(bookmarks []domain.Bookmark) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.bookmarks = domain.CloneBookmarks(bookmarks)
	idx.lastBookmarkReload = time.Now()
}

// GetBookmarks returns a copy of the default bookmark set.
func (idx *MemoryIndex) GetBookmarks() []domain.Bookmark {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return domain.CloneBookmarks(idx.bookmarks)
}

// BookmarkCount returns the number of default bookmarks.
func (idx *MemoryIndex) BookmarkCount() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return len(idx.bookmarks)
}

// GetLastBookmarkReload returns the timestamp of the last bookmarks reload.
func (idx *MemoryIndex) GetLastBookmarkReload() time.Time {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return idx.lastBookmarkReload
}

// ─────────────────────────────────────────────────────────────────
// Weather snapshots
// ─────────────────────────────────────────────────────────────────

// UpdateWeather stores a resolved snapshot under its unit. Placeholders are ignored.
func (idx *MemoryIndex) UpdateWeather(model domain.WeatherModel) {
	if !model.Resolved() {
		return
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.weather[model.Unit] = model
	idx.lastWeatherUpdate = time.Now()
}

// GetWeather returns the latest snapshot for unit.
func (idx *MemoryIndex) GetWeather(unit string) (domain.WeatherModel, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	m, ok := idx.weather[domain.NormalizeUnit(unit)]
	return m, ok
}

// WeatherCount returns how many units have a snapshot.
func (idx *MemoryIndex) WeatherCount() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return len(idx.weather)
}

// GetLastWeatherUpdate returns the timestamp of the last stored snapshot.
func (idx *MemoryIndex) GetLastWeatherUpdate() time.Time {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return idx.lastWeatherUpdate
}
