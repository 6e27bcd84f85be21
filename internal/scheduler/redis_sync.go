package scheduler

import (
	"context"

	"github.com/MrSnakeDoc/newtab/internal/domain"
	"github.com/MrSnakeDoc/newtab/internal/logger"
)

// WeatherSnapshots lists the weather snapshots held in the shared cache.
type WeatherSnapshots interface {
	GetAllWeather(ctx context.Context) ([]domain.WeatherModel, error)
}

// WeatherIndex receives weather snapshots.
type WeatherIndex interface {
	UpdateWeather(model domain.WeatherModel)
}

// RedisSyncer warms the memory index from Redis on startup
type RedisSyncer struct {
	store  WeatherSnapshots
	index  WeatherIndex
	logger logger.Logger
}

// NewRedisSyncer creates a new Redis syncer
func NewRedisSyncer(
	store WeatherSnapshots,
	idx WeatherIndex,
	log logger.Logger,
) *RedisSyncer {
	return &RedisSyncer{
		store:  store,
		index:  idx,
		logger: log,
	}
}

// Sync loads weather snapshots from Redis into the memory index
func (rs *RedisSyncer) Sync(ctx context.Context) error {
	rs.logger.Info("syncing weather from redis to memory")

	snapshots, err := rs.store.GetAllWeather(ctx)
	if err != nil {
		return err
	}

	if len(snapshots) == 0 {
		rs.logger.Info("no weather found in redis")
		return nil
	}

	for _, m := range snapshots {
		rs.index.UpdateWeather(m)
	}

	rs.logger.Info("synced weather from redis",
		logger.Int("count", len(snapshots)))

	return nil
}
