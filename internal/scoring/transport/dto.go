package transport

import (
	"time"

	"github.com/google/uuid"
)

// ── Requests ──────────────────────────────────────────────────────────────────

// CalculateScoreRequest is the optional body of a calculate call.
type CalculateScoreRequest struct {
	ResetAdjustment bool `json:"resetAdjustment"`
}

// AdjustScoreRequest applies a manual delta to an existing score.
type AdjustScoreRequest struct {
	Delta *int   `json:"delta" validate:"required,min=-50,max=50"`
	Notes string `json:"notes" validate:"max=1000"`
}

// RangeRuleDTO is one bucket of a range rule table.
type RangeRuleDTO struct {
	Min   float64  `json:"min"`
	Max   *float64 `json:"max,omitempty"`
	Score int      `json:"score" validate:"min=0,max=25"`
}

// RuleTableDTO is a tagged rule table: "range" uses Ranges, "category" uses Values.
type RuleTableDTO struct {
	Type   string         `json:"type" validate:"required,oneof=range category"`
	Ranges []RangeRuleDTO `json:"ranges,omitempty" validate:"omitempty,dive"`
	Values map[string]int `json:"values,omitempty"`
}

// ThresholdsDTO holds reporting cutoffs.
type ThresholdsDTO struct {
	Qualified int `json:"qualified" validate:"min=0,max=100"`
	HotLead   int `json:"hotLead" validate:"min=0,max=100"`
}

// UpdateDimensionConfigRequest patches one dimension. Omitted fields keep their value.
type UpdateDimensionConfigRequest struct {
	Weight     *int           `json:"weight" validate:"omitempty,min=0,max=100"`
	IsActive   *bool          `json:"isActive"`
	Rules      *RuleTableDTO  `json:"rules" validate:"omitempty"`
	Thresholds *ThresholdsDTO `json:"thresholds" validate:"omitempty"`
	Bonuses    map[string]int `json:"bonusRules"`
}

// AnalyticsQuery selects the score population to summarize.
type AnalyticsQuery struct {
	From       time.Time `form:"from" validate:"required"`
	To         time.Time `form:"to" validate:"required"`
	Status     string    `form:"status" validate:"omitempty,oneof=unqualified to_review qualified hot_lead"`
	AssignedTo string    `form:"assignedTo" validate:"omitempty,max=200"`
}

// ── Responses ─────────────────────────────────────────────────────────────────

// LeadScoreResponse is the persisted score of a lead.
type LeadScoreResponse struct {
	ID                  uuid.UUID `json:"id"`
	LeadID              uuid.UUID `json:"leadId"`
	TotalScore          int       `json:"totalScore"`
	BudgetScore         int       `json:"budgetScore"`
	AuthorityScore      int       `json:"authorityScore"`
	NeedScore           int       `json:"needScore"`
	TimelineScore       int       `json:"timelineScore"`
	QualificationStatus string    `json:"qualificationStatus"`
	ConfidenceLevel     int       `json:"confidenceLevel"`
	ManualAdjustment    int       `json:"manualAdjustment"`
	Notes               *string   `json:"notes,omitempty"`
	AssignedTo          *string   `json:"assignedTo,omitempty"`
	Version             int       `json:"version"`
	CreatedAt           time.Time `json:"createdAt"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

// HistoryEntryResponse is one score change.
type HistoryEntryResponse struct {
	ID           uuid.UUID      `json:"id"`
	LeadID       uuid.UUID      `json:"leadId"`
	OldScore     int            `json:"oldScore"`
	NewScore     int            `json:"newScore"`
	ScoreChange  int            `json:"scoreChange"`
	ChangeReason string         `json:"changeReason"`
	ChangedBy    string         `json:"changedBy"`
	Details      map[string]any `json:"details,omitempty"`
	Timestamp    time.Time      `json:"timestamp"`
}

// HistoryResponse lists a lead's score changes oldest first.
type HistoryResponse struct {
	Items []HistoryEntryResponse `json:"items"`
}

// LeadErrorResponse names a lead that failed during a batch.
type LeadErrorResponse struct {
	LeadID  uuid.UUID `json:"leadId"`
	Kind    string    `json:"kind"`
	Message string    `json:"message"`
}

// RecalculateResponse summarizes a batch recalculation.
type RecalculateResponse struct {
	Reason       string              `json:"reason"`
	Processed    int                 `json:"processed"`
	UpdatedCount int                 `json:"updatedCount"`
	ChangedCount int                 `json:"changedCount"`
	Errors       []LeadErrorResponse `json:"errors"`
	DurationMs   int64               `json:"durationMs"`
}

// RecalculateQueuedResponse is returned when the batch was handed to the job queue.
type RecalculateQueuedResponse struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}

// DimensionConfigResponse is the configuration of one dimension.
type DimensionConfigResponse struct {
	Dimension  string         `json:"dimension"`
	Weight     int            `json:"weight"`
	IsActive   bool           `json:"isActive"`
	Rules      RuleTableDTO   `json:"rules"`
	Thresholds ThresholdsDTO  `json:"thresholds"`
	Bonuses    map[string]int `json:"bonusRules"`
	UpdatedBy  string         `json:"updatedBy,omitempty"`
	UpdatedAt  *time.Time     `json:"updatedAt,omitempty"`
}

// ScoringConfigResponse lists every configured dimension.
type ScoringConfigResponse struct {
	Dimensions []DimensionConfigResponse `json:"dimensions"`
}

// BANTBreakdown holds per-dimension averages.
type BANTBreakdown struct {
	Budget    float64 `json:"budget"`
	Authority float64 `json:"authority"`
	Need      float64 `json:"need"`
	Timeline  float64 `json:"timeline"`
}

// DistributionBucket is one qualification band of the histogram.
type DistributionBucket struct {
	Status     string  `json:"status"`
	Min        int     `json:"min"`
	Max        int     `json:"max"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// AnalyticsResponse summarizes the score population of a window.
type AnalyticsResponse struct {
	From              time.Time            `json:"from"`
	To                time.Time            `json:"to"`
	TotalLeads        int                  `json:"totalLeads"`
	QualifiedCount    int                  `json:"qualifiedCount"`
	HotLeadCount      int                  `json:"hotLeadCount"`
	QualificationRate float64              `json:"qualificationRate"`
	HotLeadRate       float64              `json:"hotLeadRate"`
	AverageScore      float64              `json:"averageScore"`
	AverageConfidence float64              `json:"averageConfidence"`
	BANT              BANTBreakdown        `json:"bantBreakdown"`
	Distribution      []DistributionBucket `json:"distribution"`
	Recommendations   []string             `json:"recommendations"`
}
