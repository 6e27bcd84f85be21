package weather

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/newtab/internal/domain"
	"github.com/MrSnakeDoc/newtab/internal/logger"
)

// SnapshotIndex is the in-memory home of the latest snapshot per unit.
type SnapshotIndex interface {
	GetWeather(unit string) (domain.WeatherModel, bool)
	UpdateWeather(model domain.WeatherModel)
}

// SnapshotStore is the shared (Redis) cache of snapshots. Optional.
type SnapshotStore interface {
	GetWeather(ctx context.Context, unit string) (domain.WeatherModel, bool, error)
	SaveWeather(ctx context.Context, model domain.WeatherModel, ttl time.Duration) error
}

// Cached serves fresh snapshots from the memory index, then the store, and
// only calls the provider when both are stale or empty.
type Cached struct {
	provider Provider
	index    SnapshotIndex
	store    SnapshotStore
	ttl      time.Duration
	logger   logger.Logger
	timeNow  func() time.Time
}

var _ Provider = (*Cached)(nil)

// NewCached wraps provider. store may be nil when no Redis is configured.
func NewCached(provider Provider, idx SnapshotIndex, store SnapshotStore, ttl time.Duration, log logger.Logger) *Cached {
	return &Cached{
		provider: provider,
		index:    idx,
		store:    store,
		ttl:      ttl,
		logger:   log,
		timeNow:  time.Now,
	}
}

// Current returns a fresh cached snapshot or fetches a new one.
func (c *Cached) Current(ctx context.Context, unit string) (domain.WeatherModel, error) {
	unit = domain.NormalizeUnit(unit)
	now := c.timeNow()

	if m, ok := c.index.GetWeather(unit); ok && !m.Stale(now, c.ttl) {
		return m, nil
	}

	if c.store != nil {
		m, ok, err := c.store.GetWeather(ctx, unit)
		switch {
		case err != nil:
			c.logger.Warn("failed to read weather from cache",
				logger.String("unit", unit),
				logger.Error(err))
		case ok && !m.Stale(now, c.ttl):
			c.index.UpdateWeather(m)
			return m, nil
		}
	}

	return c.Refresh(ctx, unit)
}

// Refresh always calls the provider and writes the result back to the caches.
func (c *Cached) Refresh(ctx context.Context, unit string) (domain.WeatherModel, error) {
	m, err := c.provider.Current(ctx, unit)
	if err != nil {
		return domain.WeatherModel{}, err
	}

	c.index.UpdateWeather(m)

	if c.store != nil {
		if err := c.store.SaveWeather(ctx, m, c.ttl); err != nil {
			c.logger.Warn("failed to save weather to cache",
				logger.String("unit", m.Unit),
				logger.Error(err))
		}
	}

	return m, nil
}
