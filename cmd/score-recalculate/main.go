package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"lead_scoring_backend/internal/scoring/domain"
	"lead_scoring_backend/internal/scoring/repository"
	"lead_scoring_backend/internal/scoring/service"
	"lead_scoring_backend/platform/config"
	"lead_scoring_backend/platform/db"
	"lead_scoring_backend/platform/logger"

	"github.com/google/uuid"
)

// score-recalculate rescores leads once and exits.
// With lead ids as arguments only those leads are rescored; otherwise every lead is.
// RECALC_REASON selects automatic_calculation (default) or config_update.
func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)

	reason := domain.ChangeReason(strings.TrimSpace(os.Getenv("RECALC_REASON")))
	if reason == "" {
		reason = domain.ReasonAutomaticCalculation
	}
	log.Info("starting score recalculation", "reason", string(reason))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	// No event bus: a one-shot run has nobody to notify in-process.
	svc := service.New(repository.New(pool), nil, nil, log, service.Options{
		RecalcWorkers: cfg.GetRecalcWorkers(),
		PhoneRegion:   cfg.GetPhoneDefaultRegion(),
		RubricPath:    cfg.GetRubricPath(),
	})

	if ids := os.Args[1:]; len(ids) > 0 {
		return recalculateLeads(ctx, svc, log, reason, ids)
	}

	result, err := svc.RecalculateAll(ctx, reason)
	if err != nil {
		log.Error("score recalculation aborted", "error", err)
		return 1
	}
	for _, leadErr := range result.Errors {
		log.Warn("lead not rescored", "leadId", leadErr.LeadID, "kind", leadErr.Kind, "error", leadErr.Message)
	}
	if len(result.Errors) > 0 {
		return 2
	}
	return 0
}

func recalculateLeads(ctx context.Context, svc *service.Service, log *logger.Logger, reason domain.ChangeReason, ids []string) int {
	failed := 0
	for _, raw := range ids {
		leadID, err := uuid.Parse(raw)
		if err != nil {
			log.Error("invalid lead id", "value", raw)
			failed++
			continue
		}

		score, err := svc.CalculateScore(ctx, leadID, service.CalculateOptions{Reason: reason, Actor: domain.SystemActor})
		if err != nil {
			log.Error("lead not rescored", "leadId", leadID, "error", err)
			failed++
			continue
		}
		log.Info("lead rescored", "leadId", leadID, "score", score.TotalScore, "status", score.QualificationStatus)
	}

	if failed > 0 {
		return 2
	}
	return 0
}
