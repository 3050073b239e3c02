package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/jcmexdev/bizops-dashboard/internal/backend"
	"github.com/jcmexdev/bizops-dashboard/internal/config"
	"github.com/jcmexdev/bizops-dashboard/internal/coordinator"
	sagasqlite "github.com/jcmexdev/bizops-dashboard/internal/coordinator/sagalog/sqlite"
	"github.com/jcmexdev/bizops-dashboard/internal/gateway/httpx"
	"github.com/jcmexdev/bizops-dashboard/internal/pkg/cache"
	"github.com/jcmexdev/bizops-dashboard/internal/pkg/telemetry"
	"github.com/jcmexdev/bizops-dashboard/internal/session"
	sessionsqlite "github.com/jcmexdev/bizops-dashboard/internal/session/sqlite"
	"github.com/jcmexdev/bizops-dashboard/internal/wilayah"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger := telemetry.InitLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdown, err := telemetry.SetupTracer(ctx, telemetry.TracerConfig{
		ServiceName: cfg.Tracing.ServiceName,
		Endpoint:    cfg.Tracing.Endpoint,
		Environment: cfg.Tracing.Environment,
	})
	if err != nil {
		logger.Error("failed to initialise tracer", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			logger.Error("tracer shutdown error", "error", err)
		}
	}()

	if dir := filepath.Dir(cfg.SQLite.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logger.Error("failed to create data directory", "dir", dir, "error", err)
			os.Exit(1)
		}
	}
	db, err := sagasqlite.OpenDB(cfg.SQLite.Path)
	if err != nil {
		logger.Error("failed to open database", "path", cfg.SQLite.Path, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	sagaRepo, err := sagasqlite.New(db)
	if err != nil {
		logger.Error("failed to prepare saga log", "error", err)
		os.Exit(1)
	}
	sessionRepo, err := sessionsqlite.New(db)
	if err != nil {
		logger.Error("failed to prepare session store", "error", err)
		os.Exit(1)
	}
	sessions := session.NewRegistry(
		session.WithSessionPersisters(func(id string) session.Persister { return sessionRepo.For(id) }),
		session.WithRegistryLogger(logger),
	)

	api := backend.New(cfg.Backend.BaseURL,
		backend.WithTimeout(cfg.Backend.Timeout),
		backend.WithTokenSource(session.Tokens{}),
		backend.WithLogger(logger),
	)

	var regionCache cache.Cache
	if cfg.Redis.Addr != "" {
		regionCache = cache.NewRedisCache(cfg.Redis.Addr, wilayah.Namespace)
	} else {
		regionCache = cache.NewMemoryCache(wilayah.Namespace)
	}
	defer regionCache.Close()
	regions := wilayah.NewCachedSource(
		wilayah.NewHTTPSource(cfg.Wilayah.UpstreamURL, wilayah.WithHTTPLogger(logger)),
		regionCache, logger)

	var actionOpts []coordinator.Option
	if cfg.TransitionGuard {
		actionOpts = append(actionOpts, coordinator.WithTransitionGuard())
	}

	handler := httpx.NewHandler(httpx.Deps{
		Orders:        api.Orders,
		Deliveries:    api.Deliveries,
		Auth:          api.Auth,
		Sessions:      sessions,
		SagaLog:       sagaRepo,
		Regions:       regions,
		RegionWait:    cfg.Wilayah.Wait,
		ActionOptions: actionOpts,
		Logger:        logger,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpx.NewRouter(handler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown error", "error", err)
		}
	}()

	logger.Info("dashboard gateway running", "addr", cfg.HTTPAddr, "backend", cfg.Backend.BaseURL)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
}
