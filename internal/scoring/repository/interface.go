package repository

import (
	"context"

	"github.com/google/uuid"

	"lead_scoring_backend/internal/scoring/domain"
)

// LeadReader reads lead snapshots. The scoring engine never writes leads.
type LeadReader interface {
	GetLead(ctx context.Context, id uuid.UUID) (domain.Lead, error)
	// ListLeadIDs pages live lead ids in id order, starting strictly after the cursor.
	ListLeadIDs(ctx context.Context, after uuid.UUID, limit int) ([]uuid.UUID, error)
}

// ConfigStore persists scoring_config rows.
type ConfigStore interface {
	ListConfigs(ctx context.Context) ([]domain.DimensionConfig, error)
	UpsertConfig(ctx context.Context, cfg domain.DimensionConfig) (domain.DimensionConfig, error)
	// InsertDefaults writes the configs whose dimension has no row yet and returns how many were inserted.
	InsertDefaults(ctx context.Context, configs []domain.DimensionConfig) (int, error)
}

// ScoreStore persists scores and their history.
type ScoreStore interface {
	GetScore(ctx context.Context, leadID uuid.UUID) (LeadScoring, error)
	// SaveScore writes the score and its history row in one transaction.
	SaveScore(ctx context.Context, params SaveScoreParams) (LeadScoring, error)
	ListHistory(ctx context.Context, leadID uuid.UUID) ([]HistoryEntry, error)
}

// AnalyticsReader reads the score population for reporting.
type AnalyticsReader interface {
	ListScores(ctx context.Context, filter ScoreFilter) ([]LeadScoring, error)
}

// ScoringRepository is the full persistence surface of the scoring service.
type ScoringRepository interface {
	LeadReader
	ConfigStore
	ScoreStore
	AnalyticsReader
}

var _ ScoringRepository = (*Repository)(nil)
