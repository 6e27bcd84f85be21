package page

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MrSnakeDoc/newtab/internal/clock"
	"github.com/MrSnakeDoc/newtab/internal/domain"
	"github.com/MrSnakeDoc/newtab/internal/logger"
)

// ErrAlreadyMounted is returned by a second Mount call.
var ErrAlreadyMounted = errors.New("page controller already mounted")

// WeatherSource provides the current weather for a unit.
type WeatherSource interface {
	Current(ctx context.Context, unit string) (domain.WeatherModel, error)
}

// BookmarkSource loads the pinned bookmark document at a URL.
type BookmarkSource interface {
	Load(ctx context.Context, rawURL string) ([]domain.Bookmark, error)
}

// DefaultBookmarks provides the bookmark set shown when nothing is pinned.
type DefaultBookmarks interface {
	GetBookmarks() []domain.Bookmark
}

// Deps are shared by every page instance.
type Deps struct {
	Weather        WeatherSource
	Bookmarks      BookmarkSource
	Defaults       DefaultBookmarks // nil means domain.DefaultBookmarks()
	Ticker         *clock.Ticker
	Logger         logger.Logger
	WeatherTimeout time.Duration
	PinnedTimeout  time.Duration
}

// Controller drives one page instance from mount to teardown.
type Controller struct {
	id     string
	state  *ViewState
	deps   Deps
	logger logger.Logger

	mu      sync.Mutex
	mounted bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	settled chan struct{}
	once    sync.Once
}

// NewController creates an unmounted controller for cfg.
func NewController(cfg domain.PageConfig, deps Deps) *Controller {
	defaults := domain.DefaultBookmarks()
	if deps.Defaults != nil {
		defaults = deps.Defaults.GetBookmarks()
	}
	if deps.Ticker == nil {
		deps.Ticker = clock.NewTicker(time.Local)
	}
	if deps.Logger == nil {
		deps.Logger = logger.Nop()
	}

	id := uuid.NewString()
	return &Controller{
		id:      id,
		state:   NewViewState(cfg, defaults),
		deps:    deps,
		logger:  deps.Logger.With(logger.String("view_id", id)),
		settled: make(chan struct{}),
	}
}

// ID identifies this page instance in logs.
func (c *Controller) ID() string { return c.id }

// State exposes the view-state record for read-only use.
func (c *Controller) State() *ViewState { return c.state }

// Mount starts the producers: the bookmark loader when a pinned source is
// configured, the weather fetch, and the clock. They run with no mutual
// ordering until they finish or Teardown is called.
func (c *Controller) Mount(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mounted {
		return ErrAlreadyMounted
	}
	c.mounted = true

	ctx, c.cancel = context.WithCancel(ctx)
	cfg := c.state.Config()

	c.logger.Debug("mounting page",
		logger.String("unit", cfg.Unit),
		logger.Bool("pinned", cfg.HasPinned()))

	var data sync.WaitGroup

	if cfg.HasPinned() && c.deps.Bookmarks != nil {
		c.state.bookmarksLoading()
		data.Add(1)
		c.spawn(func() {
			defer data.Done()
			c.loadBookmarks(ctx, cfg.Pinned)
		})
	}

	data.Add(1)
	c.spawn(func() {
		defer data.Done()
		c.loadWeather(ctx, cfg.Unit)
	})

	c.spawn(func() {
		c.deps.Ticker.Run(ctx, c.state.clockTicked)
	})

	c.spawn(func() {
		data.Wait()
		close(c.settled)
	})

	return nil
}

func (c *Controller) spawn(fn func()) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		fn()
	}()
}

func (c *Controller) loadBookmarks(ctx context.Context, rawURL string) {
	if c.deps.PinnedTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.deps.PinnedTimeout)
		defer cancel()
	}

	list, err := c.deps.Bookmarks.Load(ctx, rawURL)
	if err != nil {
		c.logger.Warn("pinned bookmarks unavailable, keeping defaults",
			logger.String("pinned", rawURL),
			logger.Error(err))
		c.state.bookmarksFailed(err)
		return
	}
	c.state.bookmarksLoaded(list)
}

func (c *Controller) loadWeather(ctx context.Context, unit string) {
	if c.deps.Weather == nil {
		c.state.weatherFailed(errors.New("weather source not configured"))
		return
	}
	if c.deps.WeatherTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.deps.WeatherTimeout)
		defer cancel()
	}

	m, err := c.deps.Weather.Current(ctx, unit)
	if err != nil {
		c.logger.Warn("weather unavailable, keeping placeholder", logger.Error(err))
		c.state.weatherFailed(err)
		return
	}
	c.state.weatherLoaded(m)
}

// Wait blocks until the bookmark and weather producers have settled or ctx
// is done. It returns ctx.Err() in the latter case.
func (c *Controller) Wait(ctx context.Context) error {
	select {
	case <-c.settled:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Snapshot copies the current view state.
func (c *Controller) Snapshot() Snapshot {
	return c.state.Snapshot()
}

// Teardown cancels every producer and waits for them to exit. Safe to call
// more than once, and before Mount.
func (c *Controller) Teardown() {
	c.once.Do(func() {
		c.mu.Lock()
		cancel := c.cancel
		c.mu.Unlock()
		if cancel != nil {
			cancel()
		}
		c.wg.Wait()
		c.logger.Debug("page torn down")
	})
}
