package scheduler

import (
	"context"
	"time"

	"lead_scoring_backend/internal/scoring/domain"
	"lead_scoring_backend/platform/logger"
)

// PeriodicRecalculation enqueues an automatic batch recalculation on a fixed interval.
type PeriodicRecalculation struct {
	scheduler RecalculationScheduler
	log       *logger.Logger
	interval  time.Duration
}

func NewPeriodicRecalculation(scheduler RecalculationScheduler, log *logger.Logger, interval time.Duration) *PeriodicRecalculation {
	return &PeriodicRecalculation{
		scheduler: scheduler,
		log:       log,
		interval:  interval,
	}
}

// Run blocks until ctx is done. A non-positive interval disables it.
func (p *PeriodicRecalculation) Run(ctx context.Context) {
	if p == nil || p.scheduler == nil || p.interval <= 0 {
		return
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.enqueue(ctx)
		}
	}
}

func (p *PeriodicRecalculation) enqueue(ctx context.Context) {
	err := p.scheduler.EnqueueRecalculateAll(ctx, RecalculateAllPayload{
		Reason:      string(domain.ReasonAutomaticCalculation),
		RequestedBy: domain.SystemActor,
	})
	if err != nil {
		p.log.Warn("periodic score recalculation enqueue failed", "error", err)
		return
	}
	p.log.Info("periodic score recalculation enqueued", "interval", p.interval.String())
}
