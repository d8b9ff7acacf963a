package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/shiva/propdispatch/config"
	"github.com/shiva/propdispatch/internal/handler"
	"github.com/shiva/propdispatch/internal/repository"
	"github.com/shiva/propdispatch/internal/service"
	"github.com/shiva/propdispatch/pkg/cache"
	"github.com/shiva/propdispatch/pkg/db"
	"github.com/shiva/propdispatch/pkg/logger"
)

// stores groups the storage contracts the services depend on.
type stores struct {
	requests  service.RequestStore
	assigner  service.Assigner
	jobs      service.JobStore
	providers service.ProviderStore
	stats     service.StatsStore
	health    map[string]handler.HealthCheck
	close     func()
}

func main() {
	// ── Load configuration ──────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zlog, err := logger.New(cfg.Log.Level, cfg.Log.Format, cfg.Log.ServiceName)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zlog.Sync()

	ctx := context.Background()

	// ── Connect storage ─────────────────────────────────
	st, err := openStores(ctx, cfg, zlog)
	if err != nil {
		zlog.Fatal("failed to open storage", zap.String("driver", cfg.Storage.Driver), zap.Error(err))
	}
	defer st.close()

	// ── Initialize layers ───────────────────────────────
	classifier := service.NewClassifier(cfg.Dispatch.Rules)
	selector := service.NewProviderSelector(classifier, st.providers, service.SelectorOptions{
		DistanceAware:  cfg.Dispatch.DistanceAware,
		DistanceWeight: cfg.Dispatch.DistanceWeight,
	}, zlog)
	dispatchSvc := service.NewDispatchService(st.requests, st.assigner, selector, classifier, st.stats, nil, zlog)
	scheduleSvc := service.NewScheduleService(st.jobs, st.providers, cfg.Dispatch.Location)
	routeSvc, err := service.NewRouteOptimizer(scheduleSvc, st.providers, cfg.Dispatch.RouteStrategy)
	if err != nil {
		zlog.Fatal("failed to build route optimizer", zap.Error(err))
	}
	providerSvc := service.NewProviderService(st.providers, st.stats)

	dispatchHandler := handler.NewDispatchHandler(dispatchSvc, zlog)
	scheduleHandler := handler.NewScheduleHandler(scheduleSvc, routeSvc, nil, zlog)
	providerHandler := handler.NewProviderHandler(providerSvc, zlog)
	healthHandler := handler.NewHealthHandler(cfg.Storage.Driver, st.health)

	// ── Setup router ────────────────────────────────────
	var authSecret []byte
	if cfg.Auth.Enabled {
		authSecret = []byte(cfg.Auth.JWTSecret)
	}
	h := newRouter(handlers{
		dispatch:  dispatchHandler,
		schedules: scheduleHandler,
		providers: providerHandler,
		health:    healthHandler,
	}, authSecret, zlog)

	// ── Start HTTP server ───────────────────────────────
	srv := &http.Server{
		Addr:         cfg.Server.ServerAddr(),
		Handler:      h,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in a goroutine so we can listen for shutdown signals.
	go func() {
		zlog.Info("server listening",
			zap.String("addr", cfg.Server.ServerAddr()),
			zap.String("storage", cfg.Storage.Driver),
			zap.String("route_strategy", cfg.Dispatch.RouteStrategy),
			zap.Bool("auth", cfg.Auth.Enabled))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Fatal("server error", zap.Error(err))
		}
	}()

	// ── Graceful shutdown ───────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zlog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("server forced to shutdown", zap.Error(err))
		return
	}

	zlog.Info("server gracefully stopped")
}

// openStores connects the configured storage driver.
func openStores(ctx context.Context, cfg *config.Config, zlog *zap.Logger) (*stores, error) {
	if cfg.Storage.Driver == config.StorageMemory {
		mem := repository.NewDemoMemoryStore(time.Now())
		zlog.Warn("using in-memory storage with demo data; state is lost on exit")
		return &stores{
			requests:  mem,
			assigner:  mem,
			jobs:      mem,
			providers: mem,
			stats:     mem,
			health:    map[string]handler.HealthCheck{},
			close:     func() {},
		}, nil
	}

	pgPool, err := db.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		return nil, err
	}
	zlog.Info("postgres connected", zap.String("host", cfg.Postgres.Host))

	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		pgPool.Close()
		return nil, err
	}
	zlog.Info("redis connected", zap.String("addr", cfg.Redis.Addr()))

	requests := repository.NewMaintenanceRepository(pgPool)
	return &stores{
		requests:  requests,
		assigner:  repository.NewAssignmentRepository(pgPool),
		jobs:      requests,
		providers: repository.NewProviderRepository(pgPool),
		stats:     repository.NewStatsRepository(pgPool, redisClient, cfg.Dispatch.StatsCacheTTL, zlog),
		health:    healthChecks(pgPool, redisClient),
		close: func() {
			redisClient.Close()
			pgPool.Close()
		},
	}, nil
}

func healthChecks(pgPool *pgxpool.Pool, redisClient *redis.Client) map[string]handler.HealthCheck {
	return map[string]handler.HealthCheck{
		"postgres": func(ctx context.Context) error { return db.HealthCheck(ctx, pgPool) },
		"redis":    func(ctx context.Context) error { return cache.HealthCheck(ctx, redisClient) },
	}
}
