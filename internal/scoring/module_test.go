package scoring

import (
	"context"
	"errors"
	"testing"
	"time"

	"lead_scoring_backend/internal/events"
	"lead_scoring_backend/internal/scheduler"
	"lead_scoring_backend/platform/logger"
	"lead_scoring_backend/platform/validator"
)

type testConfig struct{}

func (testConfig) GetRecalcWorkers() int          { return 2 }
func (testConfig) GetScoreLockTTL() time.Duration { return time.Second }
func (testConfig) GetRubricPath() string          { return "" }
func (testConfig) GetPhoneDefaultRegion() string  { return "FR" }

type recordingQueue struct {
	payloads []scheduler.RecalculateAllPayload
	err      error
}

func (q *recordingQueue) EnqueueRecalculateAll(_ context.Context, payload scheduler.RecalculateAllPayload) error {
	q.payloads = append(q.payloads, payload)
	return q.err
}

func TestConfigUpdateEnqueuesRecalculation(t *testing.T) {
	bus := events.NewInMemoryBus(logger.Nop())
	queue := &recordingQueue{}
	NewModule(nil, bus, validator.New(), testConfig{}, nil, queue, logger.Nop())

	err := bus.PublishSync(context.Background(), events.ScoringConfigUpdated{
		BaseEvent: events.NewBaseEvent(),
		Dimension: "budget",
		UpdatedBy: "admin-1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(queue.payloads) != 1 {
		t.Fatalf("expected one enqueued batch, got %d", len(queue.payloads))
	}
	if queue.payloads[0].Reason != "config_update" || queue.payloads[0].RequestedBy != "admin-1" {
		t.Fatalf("unexpected payload %+v", queue.payloads[0])
	}
}

func TestConfigUpdateEnqueueFailureSurfaces(t *testing.T) {
	bus := events.NewInMemoryBus(logger.Nop())
	queue := &recordingQueue{err: errors.New("redis down")}
	NewModule(nil, bus, validator.New(), testConfig{}, nil, queue, logger.Nop())

	err := bus.PublishSync(context.Background(), events.ScoringConfigUpdated{BaseEvent: events.NewBaseEvent(), Dimension: "need"})
	if err == nil {
		t.Fatal("expected enqueue failure to be reported")
	}
}

func TestScoreChangedHandlerAcceptsEvent(t *testing.T) {
	bus := events.NewInMemoryBus(logger.Nop())
	NewModule(nil, bus, validator.New(), testConfig{}, nil, &recordingQueue{}, logger.Nop())

	err := bus.PublishSync(context.Background(), events.LeadScoreChanged{
		BaseEvent:           events.NewBaseEvent(),
		LeadID:              "lead-1",
		OldScore:            70,
		NewScore:            95,
		QualificationStatus: "hot_lead",
		Reason:              "automatic_calculation",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
