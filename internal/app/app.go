package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/hamzzaahhhhh-spec/neet-ai-app/internal/data/db"
	httpx "github.com/hamzzaahhhhh-spec/neet-ai-app/internal/http"
	"github.com/hamzzaahhhhh-spec/neet-ai-app/internal/observability"
	"github.com/hamzzaahhhhh-spec/neet-ai-app/internal/platform/envutil"
	"github.com/hamzzaahhhhh-spec/neet-ai-app/internal/platform/logger"
	"github.com/hamzzaahhhhh-spec/neet-ai-app/internal/platform/redisx"
	"github.com/hamzzaahhhhh-spec/neet-ai-app/internal/services"
)

const ServiceName = "papergen"

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Redis    goredis.UniversalClient
	Router   *gin.Engine
	Cfg      Config
	Repos    Repos
	Services Services
	Clients  Clients

	closers []func() error
	cancel  context.CancelFunc
}

// NewLogger builds the process logger from LOG_MODE.
func NewLogger() (*logger.Logger, error) {
	log, err := logger.New(envutil.String("LOG_MODE", "development", nil))
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return log, nil
}

// New connects Postgres and Redis, migrates, and wires everything.
func New(ctx context.Context, log *logger.Logger) (*App, error) {
	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)

	shutdownOtel := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: ServiceName,
		Environment: cfg.Environment,
		Version:     cfg.Version,
	}, observability.OtelSettingsFromEnv(log))

	pg, err := db.NewPostgresService(db.DSN(log), log)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}
	if err := db.AutoMigrateAll(pg.DB()); err != nil {
		_ = pg.Close()
		return nil, fmt.Errorf("postgres automigrate: %w", err)
	}

	rdb, err := redisx.NewClient(redisx.ConfigFromEnv(log), log)
	if err != nil {
		_ = pg.Close()
		return nil, fmt.Errorf("init redis: %w", err)
	}

	clients, err := wireClients(cfg, log)
	if err != nil {
		_ = rdb.Close()
		_ = pg.Close()
		return nil, err
	}

	a, err := Build(ctx, log, cfg, pg.DB(), rdb, clients)
	if err != nil {
		_ = rdb.Close()
		_ = pg.Close()
		return nil, err
	}
	a.closers = append(a.closers,
		func() error { return shutdownOtel(context.WithoutCancel(ctx)) },
		rdb.Close,
		pg.Close,
	)
	return a, nil
}

// Build wires repos, services and the router over existing connections.
func Build(ctx context.Context, log *logger.Logger, cfg Config, theDB *gorm.DB, rdb goredis.UniversalClient, clients Clients) (*App, error) {
	reposet := wireRepos(theDB, log)

	serviceset, err := wireServices(theDB, rdb, log, cfg, reposet, clients)
	if err != nil {
		return nil, err
	}
	if _, err := services.SeedDefaultTopicWeights(ctx, reposet.TopicWeight, serviceset.Catalog, log); err != nil {
		return nil, fmt.Errorf("seed topic weights: %w", err)
	}

	handlerset := wireHandlers(log, theDB, rdb, serviceset)
	router := wireRouter(log, cfg, handlerset)

	return &App{
		Log:      log,
		DB:       theDB,
		Redis:    rdb,
		Router:   router,
		Cfg:      cfg,
		Repos:    reposet,
		Services: serviceset,
		Clients:  clients,
	}, nil
}

// Start runs the source warm-up and, when enabled, the daily scheduler.
func (a *App) Start(ctx context.Context) {
	if a == nil || a.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	if a.Clients.Warmup != nil {
		go a.Clients.Warmup(ctx)
	}
	if a.Cfg.SchedulerEnabled {
		services.NewDailyScheduler(
			a.Services.Generation,
			a.Cfg.Location,
			services.DefaultScheduleHour,
			services.DefaultScheduleMinute,
			a.Log,
		).Start(ctx)
	}
}

// Run serves HTTP until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Router == nil {
		return fmt.Errorf("app not initialized")
	}
	srv := &httpx.Server{Engine: a.Router}
	a.Log.Info("HTTP server listening", "port", a.Cfg.Port)
	return srv.Run(ctx, ":"+a.Cfg.Port, a.Cfg.ShutdownTimeout)
}

func (a *App) Close() error {
	if a == nil {
		return nil
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	var errs []error
	for _, c := range a.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	if a.Log != nil {
		a.Log.Sync()
	}
	return errors.Join(errs...)
}
