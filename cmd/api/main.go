package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lead_scoring_backend/internal/events"
	apphttp "lead_scoring_backend/internal/http"
	"lead_scoring_backend/internal/http/router"
	"lead_scoring_backend/internal/scheduler"
	"lead_scoring_backend/internal/scoring"
	"lead_scoring_backend/internal/scoring/locker"
	"lead_scoring_backend/internal/scoring/repository"
	"lead_scoring_backend/migrations"
	"lead_scoring_backend/platform/config"
	"lead_scoring_backend/platform/db"
	"lead_scoring_backend/platform/logger"
	"lead_scoring_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	if cfg.MigrationsEnabled {
		if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
			return db.RunMigrations(ctx, pool, migrations.FS)
		}); err != nil {
			log.Error("failed to run database migrations", "error", err)
			panic("failed to run database migrations: " + err.Error())
		}
		log.Info("database migrations complete")
	}

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	recalc, locks, closeRedis := initRedis(cfg, log)
	if closeRedis != nil {
		defer closeRedis()
	}
	// In-flight event handlers finish before Redis and the pool close.
	defer eventBus.Wait()

	// Shared validator instance for dependency injection
	val := validator.New()

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	scoringModule := scoring.NewModule(repository.New(pool), eventBus, val, cfg, locks, recalc, log)

	if _, err := scoringModule.Service().SeedDefaults(ctx); err != nil {
		log.Error("failed to seed scoring config", "error", err)
		panic("failed to seed scoring config: " + err.Error())
	}

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   db.NewPoolAdapter(pool),
		EventBus: eventBus,
		Modules: []apphttp.Module{
			scoringModule,
		},
	}

	engine := router.New(app)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", "error", err)
		}
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

// initRedis wires the job queue client and the distributed score lock.
// Without REDIS_URL both are nil: batches run in-process and locks are process-local.
func initRedis(cfg *config.Config, log *logger.Logger) (scheduler.RecalculationScheduler, locker.Locker, func()) {
	if !cfg.IsSchedulerEnabled() {
		log.Warn("REDIS_URL not configured; score locks are process-local and recalculations run in-process")
		return nil, nil, nil
	}

	queueClient, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize scheduler client", "error", err)
		return nil, nil, nil
	}

	redisClient, err := scheduler.NewRedisClient(cfg)
	if err != nil {
		log.Error("failed to initialize redis lock client", "error", err)
		return queueClient, nil, func() { _ = queueClient.Close() }
	}

	locks := locker.NewRedisLocker(redisClient, cfg.GetScoreLockTTL(), func(key string, err error) {
		log.Warn("score lock release failed", "key", key, "error", err)
	})

	return queueClient, locks, func() {
		_ = queueClient.Close()
		_ = redisClient.Close()
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
