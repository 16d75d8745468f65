package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/filmorate/internal/catalog"
	"github.com/iliyamo/filmorate/internal/config"
	"github.com/iliyamo/filmorate/internal/database"
	"github.com/iliyamo/filmorate/internal/handler"
	"github.com/iliyamo/filmorate/internal/logger"
	"github.com/iliyamo/filmorate/internal/middleware"
	"github.com/iliyamo/filmorate/internal/queue"
	"github.com/iliyamo/filmorate/internal/repository"
	"github.com/iliyamo/filmorate/internal/router"
	"github.com/iliyamo/filmorate/internal/service"
	"github.com/iliyamo/filmorate/internal/validation"
)

func main() {
	_ = godotenv.Load() // a missing .env is fine; the environment wins

	cfg, err := config.Load()
	if err != nil {
		logger.Init("info", false)
		logger.Fatal("load config", err)
	}
	logger.Init(cfg.LogLevel, cfg.Development())
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore := openStore(ctx, cfg)
	defer closeStore()

	rdb := openRedis(ctx)
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
	}

	var (
		events service.EventPublisher = queue.NopPublisher{}
		bg     sync.WaitGroup
	)
	if cfg.Queue.Enabled {
		events = queue.NewPublisher(cfg.Queue.URL, cfg.Queue.Name)
		consumer := queue.NewConsumer(cfg.Queue.URL, cfg.Queue.Name, cfg.Queue.LogDir)
		bg.Add(1)
		go func() {
			defer bg.Done()
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("activity consumer stopped", "error", err)
			}
		}()
		logger.Info("activity events enabled", "queue", cfg.Queue.Name, "log_dir", cfg.Queue.LogDir)
	}

	gate := service.NewGate(catalog.Default)
	users := service.NewUserService(store, gate, cfg.BcryptCost)
	films := service.NewFilmService(store, gate)
	rel := service.NewRelationshipManager(store, store, events)
	ranking := service.NewRankingEngine(store)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validation.EchoValidator{}
	e.Use(
		middleware.RequestID(),
		middleware.RequestLogger(),
		middleware.Metrics(),
		middleware.NewRateLimiter(config.LoadRateLimitConfig(), rdb),
	)

	router.RegisterRoutes(e, router.Handlers{
		Users:   handler.NewUserHandler(users, rel),
		Films:   handler.NewFilmHandler(films, rel, ranking),
		Catalog: handler.NewCatalogHandler(catalog.Default),
		Auth:    handler.NewAuthHandler(cfg, users),
		Health:  handler.Health(store),
	}, router.Auth{Enabled: cfg.AuthEnabled, JWTSecret: cfg.JWTSecret})

	addr := ":" + cfg.Port
	go func() {
		logger.Info("listening", "addr", addr, "env", cfg.Env, "storage", cfg.Storage, "auth", cfg.AuthEnabled)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", "error", err)
	}
	bg.Wait()
}

// openStore returns the configured entity store and its cleanup func.
// MySQL is migrated and seeded with the catalog before use.
func openStore(ctx context.Context, cfg config.Config) (repository.Store, func()) {
	if cfg.Storage != config.StorageMySQL {
		logger.Info("using in-memory store")
		return repository.NewMemoryStore(), func() {}
	}

	if err := database.Migrate(database.DSN(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName), "up"); err != nil {
		logger.Fatal("migrate database", err)
	}
	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		logger.Fatal("open database", err)
	}
	seedCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := database.SeedCatalog(seedCtx, db, catalog.Default); err != nil {
		_ = db.Close()
		logger.Fatal("seed catalog", err)
	}
	logger.Info("using mysql store", "host", cfg.DBHost, "db", cfg.DBName)
	return repository.NewMySQLStore(db), func() { _ = db.Close() }
}

// openRedis connects when rate limiting is enabled. A failed connection
// is logged and the limiter falls back to per-process buckets.
func openRedis(ctx context.Context) *redis.Client {
	if !config.LoadRateLimitConfig().Enabled {
		return nil
	}
	rdb, err := config.NewRedisClient(ctx)
	if err != nil {
		logger.Warn("redis unavailable, rate limiting per process", "error", err)
		return nil
	}
	return rdb
}
