package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/MrSnakeDoc/newtab/internal/domain"
	"github.com/MrSnakeDoc/newtab/internal/logger"
)

// WeatherRefreshFunc fetches a fresh snapshot for unit and stores it.
type WeatherRefreshFunc func(ctx context.Context, unit string) (domain.WeatherModel, error)

// WeatherRefresher keeps the weather snapshots of both units warm so page
// loads are served from memory.
type WeatherRefresher struct {
	refresh       WeatherRefreshFunc
	logger        logger.Logger
	interval      time.Duration
	timeout       time.Duration
	stopCh        chan struct{}
	stopOnce      sync.Once
	manualTrigger chan struct{}
}

// NewWeatherRefresher creates a new weather refresher
func NewWeatherRefresher(
	refresh WeatherRefreshFunc,
	log logger.Logger,
	interval time.Duration,
	timeout time.Duration,
	manualTrigger chan struct{},
) *WeatherRefresher {
	return &WeatherRefresher{
		refresh:       refresh,
		logger:        log,
		interval:      interval,
		timeout:       timeout,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start returns at once. The loop refreshes first, then on every interval
// or manual trigger. A failed first refresh is logged only: the page still
// works with the placeholder and retries on demand.
func (wr *WeatherRefresher) Start(ctx context.Context) error {
	ticker := time.NewTicker(wr.interval)
	go func() {
		defer ticker.Stop()
		if err := wr.RefreshAll(ctx); err != nil {
			wr.logger.Warn("initial weather refresh failed", logger.Error(err))
		}
		for {
			select {
			case <-ticker.C:
				if err := wr.RefreshAll(ctx); err != nil {
					wr.logger.Error("failed to refresh weather",
						logger.Error(err))
				}
			case <-wr.manualTrigger:
				wr.logger.Info("manual weather refresh triggered")
				if err := wr.RefreshAll(ctx); err != nil {
					wr.logger.Error("failed to refresh weather",
						logger.Error(err))
				}
			case <-wr.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the refresher
func (wr *WeatherRefresher) Stop() {
	wr.stopOnce.Do(func() { close(wr.stopCh) })
}

// RefreshAll refreshes both units. Errors are joined; one unit failing does
// not skip the other.
func (wr *WeatherRefresher) RefreshAll(ctx context.Context) error {
	var errs []error
	for _, unit := range []string{domain.UnitFahrenheit, domain.UnitCelsius} {
		rctx, cancel := wr.withTimeout(ctx)
		m, err := wr.refresh(rctx, unit)
		cancel()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		wr.logger.Debug("weather refreshed",
			logger.String("unit", unit),
			logger.String("temperature", m.TemperatureLabel()),
			logger.String("description", m.Description))
	}
	return errors.Join(errs...)
}

func (wr *WeatherRefresher) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if wr.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, wr.timeout)
}
