// Package page owns one new tab page instance: its view-state record, the
// producers that fill it, and the HTML rendering of a snapshot.
package page

import (
	"sync"

	"github.com/MrSnakeDoc/newtab/internal/clock"
	"github.com/MrSnakeDoc/newtab/internal/domain"
)

// BookmarkStatus is the lifecycle of the bookmark slot.
type BookmarkStatus string

const (
	BookmarksDefault BookmarkStatus = "default" // no pinned source configured
	BookmarksLoading BookmarkStatus = "loading"
	BookmarksReady   BookmarkStatus = "ready"
	BookmarksFailed  BookmarkStatus = "failed" // defaults retained
)

// WeatherState is the lifecycle of the weather slot.
type WeatherState string

const (
	WeatherStateLoading WeatherState = "loading"
	WeatherStateReady   WeatherState = "ready"
	WeatherStateFailed  WeatherState = "failed" // placeholder retained
)

// ViewState is the single state record of a page instance. Every slot has
// exactly one writer method, called only by the producer owning that slot.
type ViewState struct {
	mu sync.RWMutex

	config     domain.PageConfig
	background domain.Background

	bookmarks      []domain.Bookmark
	bookmarkStatus BookmarkStatus
	bookmarkErr    error

	weather      domain.WeatherModel
	weatherState WeatherState
	weatherErr   error

	tick clock.Tick
}

// Snapshot is an immutable copy of a ViewState.
type Snapshot struct {
	Config         domain.PageConfig
	Background     domain.Background
	Bookmarks      []domain.Bookmark
	BookmarkStatus BookmarkStatus
	BookmarkErr    error
	Weather        domain.WeatherModel
	WeatherState   WeatherState
	WeatherErr     error
	Clock          clock.Tick
}

// NewViewState seeds the record from the page configuration and the default
// bookmark set.
func NewViewState(cfg domain.PageConfig, defaults []domain.Bookmark) *ViewState {
	return &ViewState{
		config:         cfg,
		background:     domain.ResolveBackground(cfg.Background),
		bookmarks:      domain.CloneBookmarks(defaults),
		bookmarkStatus: BookmarksDefault,
		weather:        domain.LoadingWeather(cfg.Unit),
		weatherState:   WeatherStateLoading,
		tick:           clock.Tick{Time: clock.Placeholder},
	}
}

// Config returns the immutable page configuration.
func (s *ViewState) Config() domain.PageConfig {
	return s.config
}

// Snapshot copies the current state.
func (s *ViewState) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Config:         s.config,
		Background:     s.background,
		Bookmarks:      domain.CloneBookmarks(s.bookmarks),
		BookmarkStatus: s.bookmarkStatus,
		BookmarkErr:    s.bookmarkErr,
		Weather:        s.weather,
		WeatherState:   s.weatherState,
		WeatherErr:     s.weatherErr,
		Clock:          s.tick,
	}
}

// bookmark slot writers, owned by the bookmark producer

func (s *ViewState) bookmarksLoading() {
	s.mu.Lock()
	s.bookmarkStatus = BookmarksLoading
	s.mu.Unlock()
}

func (s *ViewState) bookmarksLoaded(list []domain.Bookmark) {
	s.mu.Lock()
	s.bookmarks = domain.CloneBookmarks(list)
	s.bookmarkStatus = BookmarksReady
	s.bookmarkErr = nil
	s.mu.Unlock()
}

func (s *ViewState) bookmarksFailed(err error) {
	s.mu.Lock()
	s.bookmarkStatus = BookmarksFailed
	s.bookmarkErr = err
	s.mu.Unlock()
}

// weather slot writers, owned by the weather producer

func (s *ViewState) weatherLoaded(m domain.WeatherModel) {
	s.mu.Lock()
	s.weather = m
	s.weatherState = WeatherStateReady
	s.weatherErr = nil
	s.mu.Unlock()
}

func (s *ViewState) weatherFailed(err error) {
	s.mu.Lock()
	s.weatherState = WeatherStateFailed
	s.weatherErr = err
	s.mu.Unlock()
}

// clock slot writer, owned by the ticker

func (s *ViewState) clockTicked(t clock.Tick) {
	s.mu.Lock()
	s.tick = t
	s.mu.Unlock()
}
