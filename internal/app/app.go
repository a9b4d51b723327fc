package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/MrSnakeDoc/utmgen/internal/campaign"
	"github.com/MrSnakeDoc/utmgen/internal/config"
	"github.com/MrSnakeDoc/utmgen/internal/httpserver"
	"github.com/MrSnakeDoc/utmgen/internal/httpserver/deps"
	"github.com/MrSnakeDoc/utmgen/internal/index"
	"github.com/MrSnakeDoc/utmgen/internal/logger"
	"github.com/MrSnakeDoc/utmgen/internal/redis"
	"github.com/MrSnakeDoc/utmgen/internal/scheduler"
	"github.com/MrSnakeDoc/utmgen/internal/session"
	"github.com/MrSnakeDoc/utmgen/internal/store"
	"github.com/MrSnakeDoc/utmgen/internal/store/memory"
	redisstore "github.com/MrSnakeDoc/utmgen/internal/store/redis"
	"github.com/MrSnakeDoc/utmgen/internal/version"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	redisClient *goredis.Client
	catalog     *index.CatalogIndex
	reloader    *scheduler.CatalogReloader  // nil with the built-in catalog
	watcher     *scheduler.CatalogWatcher   // nil unless the catalog file is watched
	collector   *scheduler.SessionCollector // nil with the redis store (keys expire on their own)
}

func New() (*App, error) {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	a := &App{
		cfg:     cfg,
		logger:  loggerClient,
		catalog: index.NewCatalogIndex(),
	}

	sessionStore, err := a.newSessionStore()
	if err != nil {
		return nil, err
	}

	// Catalog file is optional; without it the built-in catalog is served and /reload answers 409.
	var reloadTrigger chan struct{}
	if cfg.CatalogFile != "" {
		loggerClient.Info("catalog file configured, initializing catalog reloader",
			logger.String("file", cfg.CatalogFile))
		reloadTrigger = make(chan struct{}, 1)
		a.reloader = scheduler.NewCatalogReloader(
			cfg.CatalogFile,
			a.catalog,
			loggerClient,
			cfg.ReloadInterval,
			reloadTrigger,
		)

		if cfg.CatalogWatch {
			w, err := scheduler.NewCatalogWatcher(cfg.CatalogFile, reloadTrigger, loggerClient)
			if err != nil {
				return nil, err
			}
			a.watcher = w
		}
	} else {
		loggerClient.Info("no catalog file configured, serving built-in catalog",
			logger.Int("lead_sources", a.catalog.Count()))
	}

	sessions := session.NewManager(session.Options{
		HashKey:  []byte(cfg.CookieHashKey),
		BlockKey: []byte(cfg.CookieBlockKey),
		Secure:   cfg.CookieSecure,
		MaxAge:   cfg.SessionTTL,
	}, loggerClient)

	// Dependencies passed to routes
	d := deps.Deps{
		Logger:           loggerClient,
		StartTime:        time.Now(),
		Version:          version.Version,
		Commit:           version.Commit,
		BuildDate:        version.BuildDate,
		GoVersion:        version.GoVersion,
		TimeNow:          time.Now,
		AllowedHosts:     cfg.AllowedHosts,
		AllowedCIDRS:     cfg.AllowedCIDRS,
		TrustProxy:       cfg.TrustProxy,
		CatalogFile:      cfg.CatalogFile,
		Catalog:          a.catalog,
		Store:            sessionStore,
		Sessions:         sessions,
		Campaigns:        campaign.NewService(sessionStore, a.catalog, loggerClient),
		RateBurst:        cfg.RateBurst,
		RateRefillPerMin: cfg.RateRefillPerMin,
		ReloadTrigger:    reloadTrigger,
	}

	a.server = httpserver.New(cfg, loggerClient, d)
	return a, nil
}

// newSessionStore connects the configured backend. Redis fails fast once the retry window is spent.
func (a *App) newSessionStore() (store.SessionStore, error) {
	cfg := a.cfg

	if cfg.SessionStore != config.StoreRedis {
		mem := memory.NewStore()
		a.collector = scheduler.NewSessionCollector(mem, a.logger, cfg.GCInterval, cfg.SessionTTL)
		a.logger.Info("using in-memory session store",
			logger.Duration("idle_ttl", cfg.SessionTTL))
		return mem, nil
	}

	a.logger.Infof("Connecting to Redis at %s", cfg.RedisAddr)
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
	}, a.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	a.redisClient = client
	a.logger.Info("Redis initialized successfully")

	return redisstore.NewSessionStore(client, cfg.SessionTTL), nil
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting utmgen v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Info(version.String())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Registered first so a partial start still releases the watcher and Redis.
	defer a.stopBackground()
	if err := a.startBackground(ctx); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := a.server.Start(); err != nil {
			return fmt.Errorf("http server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("⏳ Shutting down gracefully...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
		defer cancel()
		if err := a.server.Stop(shutdownCtx); err != nil {
			return fmt.Errorf("failed to stop server: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	a.logger.Info("✅ utmgen stopped cleanly")
	_ = a.logger.Sync()
	return nil
}

func (a *App) startBackground(ctx context.Context) error {
	if a.reloader != nil {
		if err := a.reloader.Start(ctx); err != nil {
			return fmt.Errorf("failed to start catalog reloader: %w", err)
		}
		a.logger.Info("catalog reloader started",
			logger.Duration("interval", a.cfg.ReloadInterval))
	}

	if a.watcher != nil {
		if err := a.watcher.Start(ctx); err != nil {
			// Periodic and manual reloads still work.
			a.logger.Warn("catalog file watch disabled", logger.Error(err))
			a.watcher = nil
		}
	}

	if a.collector != nil {
		a.collector.Start(ctx)
		a.logger.Info("session collector started",
			logger.Duration("interval", a.cfg.GCInterval))
	}
	return nil
}

func (a *App) stopBackground() {
	if a.watcher != nil {
		a.watcher.Stop()
	}
	if a.reloader != nil {
		a.reloader.Stop()
	}
	if a.collector != nil {
		a.collector.Stop()
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warnf("failed to close redis: %v", err)
		} else {
			a.logger.Info("✅ Redis closed cleanly")
		}
	}
}
