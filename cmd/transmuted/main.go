// Command transmuted runs the transmute registry behind an HTTP API: loading
// configuration, connecting to Postgres and Redis, rehydrating persisted
// edges, wiring the observer fan-out, and serving until an interrupt.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/nyxwell/transmute/internal/cache"
	"github.com/nyxwell/transmute/internal/config"
	"github.com/nyxwell/transmute/internal/httpapi"
	"github.com/nyxwell/transmute/internal/logging"
	"github.com/nyxwell/transmute/internal/observer"
	"github.com/nyxwell/transmute/internal/storage"
	"github.com/nyxwell/transmute/pkg/builtin"
	"github.com/nyxwell/transmute/pkg/transmute"
	"github.com/robfig/cron/v3"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	appLogger := logging.New(cfg.Logging.Format, cfg.Logging.Level)
	appLogger.InfoContext(context.Background(), "starting transmute server",
		"port", cfg.Server.Port, "host", cfg.Server.Host)

	dbCfg := &storage.Config{
		DSN:             cfg.Database.URL,
		MaxOpenConns:    cfg.Database.MaxConnections,
		MaxIdleConns:    cfg.Database.MinConnections,
		ConnMaxLifetime: cfg.Database.MaxConnLifetime,
		ConnMaxIdleTime: cfg.Database.MaxIdleTime,
		Debug:           cfg.Logging.Level == "debug",
	}
	db, err := storage.NewDB(dbCfg)
	if err != nil {
		appLogger.ErrorContext(context.Background(), "failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer storage.Close(db)

	var planCache *cache.PlanCache
	if redisCache, err := cache.New(cfg.Redis, 10*time.Minute); err != nil {
		appLogger.WarnContext(context.Background(), "plan cache disabled: failed to connect to redis", "error", err)
	} else {
		planCache = redisCache
		defer planCache.Close()
		appLogger.InfoContext(context.Background(), "plan cache connected")
	}

	var wsHub *observer.Hub
	if cfg.Observer.EnableWebSocket {
		wsHub = observer.NewHub(appLogger)
		appLogger.InfoContext(context.Background(), "websocket hub started")
	}

	obsManager := observer.NewManager(observer.WithLogger(appLogger))
	eventRepo := storage.NewEventRepository(db)

	if cfg.Observer.EnableDatabase {
		if err := obsManager.Register(observer.NewDatabaseObserver(eventRepo)); err != nil {
			appLogger.ErrorContext(context.Background(), "failed to register database observer", "error", err)
		}
	}
	if cfg.Observer.EnableLogger {
		if err := obsManager.Register(observer.NewLoggerObserver(appLogger)); err != nil {
			appLogger.ErrorContext(context.Background(), "failed to register logger observer", "error", err)
		}
	}
	if cfg.Observer.EnableWebSocket && wsHub != nil {
		if err := obsManager.Register(observer.NewWebSocketObserver(wsHub)); err != nil {
			appLogger.ErrorContext(context.Background(), "failed to register websocket observer", "error", err)
		}
	}
	appLogger.InfoContext(context.Background(), "observers registered", "count", obsManager.Count())

	registry := transmute.NewRegistry(
		transmute.WithObserver(obsManager),
		transmute.WithRetryBudget(transmute.DefaultRetryBudget),
	)

	functions := storage.NewFunctionRegistry()
	for name, fn := range builtin.Funcs() {
		functions.Register(name, fn)
	}

	edgeRepo := storage.NewEdgeRepository(db)
	rehydrateCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	n, err := edgeRepo.Rehydrate(rehydrateCtx, registry, functions)
	cancel()
	if err != nil {
		appLogger.ErrorContext(context.Background(), "failed to rehydrate persisted edges", "error", err)
		os.Exit(1)
	}
	appLogger.InfoContext(context.Background(), "rehydrated persisted edges", "count", n)

	apiKeys := storage.NewAPIKeyRepository(db, cfg.Auth.BcryptCost)

	server := httpapi.NewServer(httpapi.Deps{
		Registry:      registry,
		Edges:         edgeRepo,
		APIKeys:       apiKeys,
		Functions:     functions,
		PlanCache:     planCache,
		Hub:           wsHub,
		Logger:        appLogger,
		JWTSecret:     cfg.Auth.JWTSecret,
		JWTSessionTTL: time.Duration(cfg.Auth.JWTExpirationHours) * time.Hour,
	})

	housekeeping := cron.New()
	if _, err := housekeeping.AddFunc("@every 10m", housekeepingJob(appLogger, planCache, obsManager)); err != nil {
		appLogger.ErrorContext(context.Background(), "failed to schedule housekeeping job", "error", err)
	} else {
		housekeeping.Start()
		defer housekeeping.Stop()
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      server.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		appLogger.InfoContext(context.Background(), "http server listening", "addr", httpServer.Addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			appLogger.ErrorContext(context.Background(), "server error", "error", err)
			os.Exit(1)
		}
	case sig := <-shutdown:
		appLogger.InfoContext(context.Background(), "shutdown initiated", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			appLogger.ErrorContext(context.Background(), "graceful shutdown failed", "error", err)
			_ = httpServer.Close()
		}
		appLogger.InfoContext(context.Background(), "server stopped")
	}
}

// housekeepingJob returns the periodic task robfig/cron/v3 runs: reporting
// the plan cache's size and notifying observers, the one piece of
// scheduling a long-lived server needs that the synchronous core has no
// opinion about. Individual entries expire on their own via redis TTLs;
// this just keeps the operator-visible side of that honest.
func housekeepingJob(logger *logging.Logger, planCache *cache.PlanCache, obs *observer.Manager) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		metadata := map[string]any{}
		if planCache != nil {
			count, err := planCache.Stats(ctx)
			if err != nil {
				logger.WarnContext(ctx, "housekeeping: failed to read plan cache stats", "error", err)
			} else {
				metadata["plan_cache_entries"] = count
			}
		}

		logger.InfoContext(ctx, "housekeeping tick", "plan_cache_entries", metadata["plan_cache_entries"])
		obs.Notify(ctx, transmute.Event{
			Type:        transmute.EventHousekeeping,
			ExecutionID: uuid.NewString(),
			Timestamp:   time.Now(),
			Metadata:    metadata,
		})
	}
}
