package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/newtab/internal/clock"
	"github.com/MrSnakeDoc/newtab/internal/config"
	"github.com/MrSnakeDoc/newtab/internal/httpserver"
	"github.com/MrSnakeDoc/newtab/internal/httpserver/deps"
	"github.com/MrSnakeDoc/newtab/internal/index"
	"github.com/MrSnakeDoc/newtab/internal/logger"
	"github.com/MrSnakeDoc/newtab/internal/page"
	"github.com/MrSnakeDoc/newtab/internal/proxy"
	"github.com/MrSnakeDoc/newtab/internal/redis"
	"github.com/MrSnakeDoc/newtab/internal/scheduler"
	"github.com/MrSnakeDoc/newtab/internal/sources/pinned"
	redisstore "github.com/MrSnakeDoc/newtab/internal/store/redis"
	"github.com/MrSnakeDoc/newtab/internal/version"
	"github.com/MrSnakeDoc/newtab/internal/weather"
)

type App struct {
	cfg              *config.Config
	logger           logger.Logger
	server           *httpserver.Server
	redisClient      *goredis.Client
	memIndex         *index.MemoryIndex
	weatherRefresher *scheduler.WeatherRefresher
	bookmarkReloader *scheduler.BookmarkReloader
}

func New() *App {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	loc, err := clock.LoadLocation(cfg.Timezone)
	if err != nil {
		loggerClient.Fatal("invalid NEWTAB_TIMEZONE",
			logger.String("timezone", cfg.Timezone),
			logger.Error(err))
	}

	memIndex := index.NewMemoryIndex()

	// Redis is optional: without it every cache lives in memory only.
	var (
		redisClient *goredis.Client
		snapshots   weather.SnapshotStore
		docCache    proxy.DocumentCache
		documents   deps.DocumentFlusher
	)
	if cfg.CacheEnabled() {
		redisClient = connectRedis(cfg, loggerClient)
	} else {
		loggerClient.Info("redis not configured, caching in memory only")
	}
	if redisClient != nil {
		store := redisstore.NewStore(redisClient)
		snapshots, docCache, documents = store, store, store

		// Warm the memory index so the first page load skips the provider.
		syncer := scheduler.NewRedisSyncer(store, memIndex, loggerClient)
		if err := syncer.Sync(context.Background()); err != nil {
			loggerClient.Warn("failed to sync weather from redis on startup",
				logger.Error(err))
		}
	}

	provider := weather.NewOpenMeteo(weather.OpenMeteoOptions{
		BaseURL:   cfg.WeatherURL,
		Latitude:  cfg.WeatherLatitude,
		Longitude: cfg.WeatherLongitude,
		Timeout:   cfg.WeatherTimeout,
	}, nil)
	loggerClient.Info("weather provider configured",
		logger.String("url", cfg.WeatherURL),
		logger.Float64("latitude", cfg.WeatherLatitude),
		logger.Float64("longitude", cfg.WeatherLongitude))
	cachedWeather := weather.NewCached(provider, memIndex, snapshots, cfg.WeatherCacheTTL, loggerClient)

	fetcher := proxy.NewFetcher(proxy.Options{
		Timeout:      cfg.ProxyTimeout,
		MaxBytes:     int64(cfg.ProxyMaxBytes),
		CacheTTL:     cfg.PinnedCacheTTL,
		AllowPrivate: cfg.ProxyAllowPrivate,
	}, docCache, loggerClient)
	if cfg.ProxyAllowPrivate {
		loggerClient.Warn("proxy may fetch loopback and private addresses")
	}

	// Pinned lists go through the in-process proxy unless a remote newtab
	// instance is configured to fetch them.
	var pinnedSource proxy.Source = fetcher
	if cfg.ProxyBaseURL != "" {
		loggerClient.Info("loading pinned bookmarks through remote proxy",
			logger.String("base_url", cfg.ProxyBaseURL))
		pinnedSource = proxy.NewClient(cfg.ProxyBaseURL, cfg.ProxyTimeout)
	}

	renderer, err := page.NewRenderer(cfg.SiteName)
	if err != nil {
		loggerClient.Fatal("failed to build page renderer", logger.Error(err))
	}

	ticker := clock.NewTicker(loc)

	weatherTrigger := make(chan struct{}, 1)
	weatherRefresher := scheduler.NewWeatherRefresher(
		cachedWeather.Refresh,
		loggerClient,
		cfg.WeatherRefreshInterval,
		cfg.WeatherTimeout,
		weatherTrigger,
	)

	// Initialize bookmark reloader (if bookmark file is configured)
	var bookmarkReloader *scheduler.BookmarkReloader
	var bookmarkReloadTrigger chan struct{}
	if cfg.BookmarkFile != "" {
		loggerClient.Info("bookmark file configured, initializing bookmark reloader",
			logger.String("file", cfg.BookmarkFile))
		bookmarkReloadTrigger = make(chan struct{}, 1)
		bookmarkReloader = scheduler.NewBookmarkReloader(
			cfg.BookmarkFile,
			memIndex,
			loggerClient,
			cfg.ReloadInterval,
			bookmarkReloadTrigger,
		)
	} else {
		loggerClient.Info("bookmark file not configured, using the built-in default")
	}

	build := version.Current()
	d := deps.Deps{
		Logger:       loggerClient,
		StartTime:    time.Now(),
		Version:      build.Version,
		Commit:       build.Commit,
		BuildDate:    build.BuildDate,
		GoVersion:    build.GoVersion,
		TimeNow:      time.Now,
		AllowedHosts: cfg.AllowedHosts,
		AllowedCIDRS: cfg.AllowedCIDRS,
		TrustProxy:   cfg.TrustProxy,
		SiteName:     cfg.SiteName,
		SearchURL:    cfg.SearchURL,
		RenderWait:   cfg.RenderWait,
		Page: page.Deps{
			Weather:        cachedWeather,
			Bookmarks:      pinned.NewLoader(pinnedSource, loggerClient),
			Defaults:       memIndex,
			Ticker:         ticker,
			Logger:         loggerClient,
			WeatherTimeout: cfg.WeatherTimeout,
			PinnedTimeout:  cfg.ProxyTimeout,
		},
		Renderer:  renderer,
		Weather:   cachedWeather,
		Fetcher:   fetcher,
		Clock:     ticker,
		Documents: documents,
		Proxy: deps.ProxyLimits{
			Burst:      cfg.ProxyRateBurst,
			PerMin:     cfg.ProxyRatePerMin,
			MaxEntries: cfg.ProxyRateMaxEntry,
		},
		RedisClient:           redisClient,
		MemoryIndex:           memIndex,
		BookmarkFile:          cfg.BookmarkFile,
		WeatherRefreshTrigger: weatherTrigger,
		BookmarkReloadTrigger: bookmarkReloadTrigger,
	}

	server := httpserver.New(cfg, loggerClient, d)

	return &App{
		cfg:              cfg,
		logger:           loggerClient,
		server:           server,
		redisClient:      redisClient,
		memIndex:         memIndex,
		weatherRefresher: weatherRefresher,
		bookmarkReloader: bookmarkReloader,
	}
}

// connectRedis returns nil when Redis cannot be reached: the page keeps
// working from memory.
func connectRedis(cfg *config.Config, log logger.Logger) *goredis.Client {
	client, err := redis.Connect(context.Background(), redis.ConnectOptions{
		Addr:           cfg.RedisAddr,
		User:           cfg.RedisUser,
		Password:       cfg.RedisPassword,
		DB:             cfg.RedisDB,
		DialTimeout:    cfg.RedisDT,
		ReadTimeout:    cfg.RedisRT,
		WriteTimeout:   cfg.RedisWT,
		PoolSize:       cfg.RedisPoolSize,
		ConnectTimeout: cfg.RedisConnectTimeout,
		RetryInterval:  cfg.RedisRetryInterval,
		MaxWait:        cfg.RedisMaxWait,
		PingTimeout:    cfg.RedisPingTimeout,
		WarnThreshold:  cfg.RedisWarnThreshold,
	}, log)
	if err != nil {
		log.Warn("redis unavailable, continuing with memory-only caches",
			logger.Error(err))
		return nil
	}
	log.Info("redis initialized successfully")
	return client
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting newtab v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Info(version.Current().String())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load the default bookmark set before serving (if enabled)
	if a.bookmarkReloader != nil {
		if err := a.bookmarkReloader.Start(ctx); err != nil {
			return fmt.Errorf("failed to start bookmark reloader: %w", err)
		}
		a.logger.Info("bookmark reloader started",
			logger.Duration("interval", a.cfg.ReloadInterval))
	}

	if err := a.weatherRefresher.Start(ctx); err != nil {
		return fmt.Errorf("failed to start weather refresher: %w", err)
	}
	a.logger.Info("weather refresher started",
		logger.Duration("interval", a.cfg.WeatherRefreshInterval))

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	a.weatherRefresher.Stop()
	if a.bookmarkReloader != nil {
		a.bookmarkReloader.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warnf("failed to close redis: %v", err)
		} else {
			a.logger.Info("✅ Redis closed cleanly")
		}
	}

	_ = a.logger.Sync()
	a.logger.Info("✅ newtab stopped cleanly")
	return nil
}
