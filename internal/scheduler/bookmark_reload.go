package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/MrSnakeDoc/newtab/internal/domain"
	"github.com/MrSnakeDoc/newtab/internal/logger"
	"github.com/MrSnakeDoc/newtab/internal/sources/homepage"
)

// BookmarkIndex receives the default bookmark set.
type BookmarkIndex interface {
	UpdateBookmarks(bookmarks []domain.Bookmark)
}

// BookmarkReloader handles periodic reloading of the default bookmark file
type BookmarkReloader struct {
	loader        *homepage.Loader
	mapper        *homepage.Mapper
	index         BookmarkIndex
	logger        logger.Logger
	interval      time.Duration
	stopCh        chan struct{}
	stopOnce      sync.Once
	manualTrigger chan struct{}
}

// NewBookmarkReloader creates a new bookmark reloader
func NewBookmarkReloader(
	bookmarkFile string,
	idx BookmarkIndex,
	log logger.Logger,
	interval time.Duration,
	manualTrigger chan struct{},
) *BookmarkReloader {
	return &BookmarkReloader{
		loader:        homepage.NewLoader(bookmarkFile),
		mapper:        homepage.NewMapper(),
		index:         idx,
		logger:        log,
		interval:      interval,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start begins the periodic reload process
func (br *BookmarkReloader) Start(ctx context.Context) error {
	// Load immediately on start
	if err := br.Reload(ctx); err != nil {
		return fmt.Errorf("initial bookmark reload failed: %w", err)
	}

	ticker := time.NewTicker(br.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := br.Reload(ctx); err != nil {
					br.logger.Error("failed to reload bookmarks",
						logger.Error(err))
				}
			case <-br.manualTrigger:
				br.logger.Info("manual bookmark reload triggered")
				if err := br.Reload(ctx); err != nil {
					br.logger.Error("failed to reload bookmarks",
						logger.Error(err))
				}
			case <-br.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the reloader
func (br *BookmarkReloader) Stop() {
	br.stopOnce.Do(func() { close(br.stopCh) })
}

// Reload reads the bookmark file and replaces the default set. On error the
// previous set stays in place.
func (br *BookmarkReloader) Reload(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	br.logger.Info("reloading default bookmarks",
		logger.String("file", br.loader.Path()))

	config, err := br.loader.Load()
	if err != nil {
		return fmt.Errorf("failed to load bookmarks: %w", err)
	}

	bookmarks, err := br.mapper.MapBookmarks(config)
	if err != nil {
		return fmt.Errorf("failed to map bookmarks: %w", err)
	}

	br.index.UpdateBookmarks(bookmarks)

	br.logger.Info("loaded default bookmarks",
		logger.Int("count", len(bookmarks)))

	return nil
}
