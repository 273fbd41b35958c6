package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lead_scoring_backend/internal/events"
	"lead_scoring_backend/internal/scheduler"
	"lead_scoring_backend/internal/scoring"
	"lead_scoring_backend/internal/scoring/locker"
	"lead_scoring_backend/internal/scoring/repository"
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

	log := logger.New(cfg.Env)
	log.Info("starting scheduler", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

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

	redisClient, err := scheduler.NewRedisClient(cfg)
	if err != nil {
		log.Error("failed to initialize redis lock client", "error", err)
		panic("failed to initialize redis lock client: " + err.Error())
	}
	defer func() { _ = redisClient.Close() }()

	queueClient, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize scheduler client", "error", err)
		panic("failed to initialize scheduler client: " + err.Error())
	}
	defer func() { _ = queueClient.Close() }()

	eventBus := events.NewInMemoryBus(log)
	defer eventBus.Wait()

	// Worker-side scoring wiring (no HTTP handlers required). Score locks live in
	// Redis so the worker and the API never interleave writes to the same lead.
	locks := locker.NewRedisLocker(redisClient, cfg.GetScoreLockTTL(), func(key string, err error) {
		log.Warn("score lock release failed", "key", key, "error", err)
	})
	scoringModule := scoring.NewModule(repository.New(pool), eventBus, validator.New(), cfg, locks, queueClient, log)

	periodic := scheduler.NewPeriodicRecalculation(queueClient, log, cfg.GetRecalcInterval())
	go periodic.Run(ctx)

	worker, err := scheduler.NewWorker(cfg, scoringModule.Service(), log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	worker.Run(ctx)
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return errors.New(name + ": invalid retry attempts")
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
