package repository

import (
	"time"

	"github.com/google/uuid"
)

// LeadScoring is the persisted score of one lead.
type LeadScoring struct {
	ID                  uuid.UUID
	LeadID              uuid.UUID
	TotalScore          int
	BudgetScore         int
	AuthorityScore      int
	NeedScore           int
	TimelineScore       int
	QualificationStatus string
	ConfidenceLevel     int
	ManualAdjustment    int
	Notes               *string
	AssignedTo          *string
	Version             int
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// HistoryEntry is one append-only score change record.
type HistoryEntry struct {
	ID           uuid.UUID
	OperationID  uuid.UUID
	LeadID       uuid.UUID
	OldScore     int
	NewScore     int
	ScoreChange  int
	ChangeReason string
	ChangedBy    string
	Details      map[string]any
	CreatedAt    time.Time
}

// SaveScoreParams describes one atomic score write.
// ExpectedVersion 0 creates the row; any other value updates it only if the stored version matches.
type SaveScoreParams struct {
	Score           LeadScoring
	ExpectedVersion int
	History         *HistoryEntry
}

// ScoreFilter narrows analytics reads.
type ScoreFilter struct {
	From       time.Time
	To         time.Time
	Status     string
	AssignedTo string
}
