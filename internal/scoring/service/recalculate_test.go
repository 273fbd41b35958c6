package service

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"lead_scoring_backend/internal/scoring/domain"
	"lead_scoring_backend/platform/apperr"
)

func TestRecalculateAllIsolatesFailures(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	ids := make([]uuid.UUID, 0, 6)
	for i := 0; i < 6; i++ {
		ids = append(ids, repo.addLead(midLead()))
	}
	faulted := ids[2]
	repo.failLead[faulted] = errStorageDown

	result, err := svc.RecalculateAll(ctx, domain.ReasonAutomaticCalculation)
	if err != nil {
		t.Fatalf("recalculate: %v", err)
	}
	if result.Processed != 6 || result.UpdatedCount != 5 || result.ChangedCount != 5 {
		t.Fatalf("expected 6 processed, 5 updated and changed, got %+v", result)
	}
	if len(result.Errors) != 1 || result.Errors[0].LeadID != faulted {
		t.Fatalf("expected exactly the faulted lead in errors, got %+v", result.Errors)
	}
	if result.Errors[0].Kind != apperr.KindPersistence.String() {
		t.Fatalf("expected persistence kind, got %s", result.Errors[0].Kind)
	}
	for _, id := range ids {
		_, scored := repo.scores[id]
		if id == faulted && scored {
			t.Fatalf("faulted lead must not be scored")
		}
		if id != faulted && !scored {
			t.Fatalf("lead %s was not scored", id)
		}
	}
}

func TestRecalculateAllIsIdempotent(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	ctx := context.Background()
	for i := 0; i < 4; i++ {
		repo.addLead(hotLead())
	}

	if _, err := svc.RecalculateAll(ctx, domain.ReasonAutomaticCalculation); err != nil {
		t.Fatalf("first run: %v", err)
	}
	historyBefore := len(repo.history)

	result, err := svc.RecalculateAll(ctx, domain.ReasonAutomaticCalculation)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if result.UpdatedCount != 4 || result.ChangedCount != 0 || len(result.Errors) != 0 {
		t.Fatalf("expected 4 unchanged successes, got %+v", result)
	}
	if len(repo.history) != historyBefore {
		t.Fatalf("expected no new history rows, got %d -> %d", historyBefore, len(repo.history))
	}
}

func TestRecalculateAllUsesConfigUpdateReason(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	ctx := context.Background()
	leadID := repo.addLead(midLead())

	if _, err := svc.CalculateScore(ctx, leadID, CalculateOptions{}); err != nil {
		t.Fatalf("calculate: %v", err)
	}
	need := repo.configs[domain.DimensionNeed]
	need.IsActive = false
	repo.configs[domain.DimensionNeed] = need

	if _, err := svc.RecalculateAll(ctx, domain.ReasonConfigUpdate); err != nil {
		t.Fatalf("recalculate: %v", err)
	}
	history := repo.historyFor(leadID)
	if len(history) != 2 {
		t.Fatalf("expected a config_update row, got %d rows", len(history))
	}
	if h := history[1]; h.ChangeReason != string(domain.ReasonConfigUpdate) || h.ChangedBy != domain.SystemActor || h.NewScore != 50 {
		t.Fatalf("unexpected row: %+v", h)
	}
}

func TestRecalculateAllRejectsInvalidReason(t *testing.T) {
	svc := newTestService(newFakeRepo())
	for _, reason := range []domain.ChangeReason{"", domain.ReasonManualAdjustment, domain.ReasonInitialCalculation, "nightly"} {
		if _, err := svc.RecalculateAll(context.Background(), reason); !apperr.Is(err, apperr.KindValidation) {
			t.Fatalf("reason %q: expected validation error, got %v", reason, err)
		}
	}
}

func TestRecalculateAllStopsOnCancelledContext(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	repo.addLead(midLead())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := svc.RecalculateAll(ctx, domain.ReasonAutomaticCalculation)
	if err == nil {
		t.Fatalf("expected context error")
	}
	if result == nil || result.Processed != 0 {
		t.Fatalf("expected no lead processed, got %+v", result)
	}
}
