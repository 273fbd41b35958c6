// Package scoring provides the lead qualification scoring module.
package scoring

import (
	"context"
	"fmt"

	"lead_scoring_backend/internal/events"
	apphttp "lead_scoring_backend/internal/http"
	"lead_scoring_backend/internal/scheduler"
	"lead_scoring_backend/internal/scoring/domain"
	"lead_scoring_backend/internal/scoring/handler"
	"lead_scoring_backend/internal/scoring/locker"
	"lead_scoring_backend/internal/scoring/repository"
	"lead_scoring_backend/internal/scoring/service"
	"lead_scoring_backend/platform/config"
	"lead_scoring_backend/platform/httpkit"
	"lead_scoring_backend/platform/logger"
	"lead_scoring_backend/platform/validator"
)

// Module represents the scoring domain module
type Module struct {
	handler *handler.Handler
	service *service.Service
	recalc  scheduler.RecalculationScheduler
	log     *logger.Logger
}

// NewModule creates a new scoring module with all dependencies wired.
// recalc may be nil, in which case config-triggered batches run in-process.
func NewModule(repo repository.ScoringRepository, eventBus events.Bus, val *validator.Validator, cfg config.ScoringConfig, locks locker.Locker, recalc scheduler.RecalculationScheduler, log *logger.Logger) *Module {
	svc := service.New(repo, locks, eventBus, log, service.Options{
		RecalcWorkers: cfg.GetRecalcWorkers(),
		PhoneRegion:   cfg.GetPhoneDefaultRegion(),
		RubricPath:    cfg.GetRubricPath(),
	})

	h := handler.New(svc, val)
	if recalc != nil {
		h.SetRecalculationScheduler(recalc)
	}

	m := &Module{
		handler: h,
		service: svc,
		recalc:  recalc,
		log:     log,
	}
	m.RegisterHandlers(eventBus)
	return m
}

// Name returns the module name for logging
func (m *Module) Name() string {
	return "scoring"
}

// Service returns the service layer for external use
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterHandlers subscribes the module to the domain events it reacts to.
func (m *Module) RegisterHandlers(bus events.Bus) {
	if bus == nil {
		return
	}
	bus.Subscribe(events.ScoringConfigUpdated{}.EventName(), events.HandlerFunc(m.onConfigUpdated))
	bus.Subscribe(events.LeadScoreChanged{}.EventName(), events.HandlerFunc(m.onScoreChanged))
}

func (m *Module) onConfigUpdated(ctx context.Context, event events.Event) error {
	e, ok := event.(events.ScoringConfigUpdated)
	if !ok {
		return fmt.Errorf("unexpected event type %T", event)
	}

	if m.recalc != nil {
		err := m.recalc.EnqueueRecalculateAll(ctx, scheduler.RecalculateAllPayload{
			Reason:      string(domain.ReasonConfigUpdate),
			RequestedBy: e.UpdatedBy,
		})
		if err != nil {
			return fmt.Errorf("enqueue config recalculation: %w", err)
		}
		m.log.Info("config recalculation enqueued", "dimension", e.Dimension, "updated_by", e.UpdatedBy)
		return nil
	}

	result, err := m.service.RecalculateAll(ctx, domain.ReasonConfigUpdate)
	if err != nil {
		return fmt.Errorf("config recalculation: %w", err)
	}
	m.log.Info("config recalculation finished", "dimension", e.Dimension, "changed", result.ChangedCount, "failed", len(result.Errors))
	return nil
}

func (m *Module) onScoreChanged(_ context.Context, event events.Event) error {
	e, ok := event.(events.LeadScoreChanged)
	if !ok {
		return fmt.Errorf("unexpected event type %T", event)
	}
	if e.QualificationStatus == string(domain.StatusHotLead) && e.OldScore < e.NewScore {
		m.log.Info("lead scored as hot", "lead_id", e.LeadID, "score", e.NewScore, "reason", e.Reason)
	}
	return nil
}

// RegisterRoutes registers the module's routes
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected)

	m.handler.RegisterAdminRoutes(ctx.Admin, httpkit.NewRecalculationRateLimiter(m.log).RateLimit())
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
