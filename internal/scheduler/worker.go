package scheduler

import (
	"context"
	"fmt"

	"lead_scoring_backend/internal/scoring/domain"
	"lead_scoring_backend/internal/scoring/service"
	"lead_scoring_backend/internal/scoring/transport"
	"lead_scoring_backend/platform/apperr"
	"lead_scoring_backend/platform/config"
	"lead_scoring_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// ScoringRunner is the part of the scoring service the worker drives.
type ScoringRunner interface {
	CalculateScore(ctx context.Context, leadID uuid.UUID, opts service.CalculateOptions) (*transport.LeadScoreResponse, error)
	RecalculateAll(ctx context.Context, reason domain.ChangeReason) (*transport.RecalculateResponse, error)
}

type Worker struct {
	server  *asynq.Server
	mux     *asynq.ServeMux
	scoring ScoringRunner
	log     *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, scoring ScoringRunner, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 4
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	w := newWorker(scoring, log)
	w.server = server
	return w, nil
}

func newWorker(scoring ScoringRunner, log *logger.Logger) *Worker {
	mux := asynq.NewServeMux()
	w := &Worker{
		mux:     mux,
		scoring: scoring,
		log:     log,
	}

	mux.HandleFunc(TaskRecalculateAll, w.handleRecalculateAll)
	mux.HandleFunc(TaskCalculateLead, w.handleCalculateLead)

	return w
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

func (w *Worker) handleRecalculateAll(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseRecalculateAllPayload(task)
	if err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	result, err := w.scoring.RecalculateAll(ctx, domain.ChangeReason(payload.Reason))
	if err != nil {
		return withRetryPolicy(err)
	}

	w.log.Info("score recalculation task finished",
		"reason", result.Reason,
		"requested_by", payload.RequestedBy,
		"processed", result.Processed,
		"updated", result.UpdatedCount,
		"failed", len(result.Errors),
	)
	return nil
}

func (w *Worker) handleCalculateLead(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseCalculateLeadPayload(task)
	if err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	leadID, err := uuid.Parse(payload.LeadID)
	if err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	opts := service.CalculateOptions{Reason: domain.ChangeReason(payload.Reason)}
	if _, err := w.scoring.CalculateScore(ctx, leadID, opts); err != nil {
		return withRetryPolicy(err)
	}
	return nil
}

// withRetryPolicy marks errors that a retry cannot fix.
func withRetryPolicy(err error) error {
	switch apperr.GetKind(err) {
	case apperr.KindNotFound, apperr.KindValidation, apperr.KindConfiguration:
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	default:
		return err
	}
}
