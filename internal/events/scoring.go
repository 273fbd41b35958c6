package events

// ScoringConfigUpdated is published after an administrator changes a dimension's configuration.
type ScoringConfigUpdated struct {
	BaseEvent
	Dimension string `json:"dimension"`
	UpdatedBy string `json:"updatedBy"`
}

// EventName implements Event.
func (ScoringConfigUpdated) EventName() string { return "scoring.config_updated" }

// LeadScoreChanged is published after a lead's total score changed and was persisted.
type LeadScoreChanged struct {
	BaseEvent
	LeadID              string `json:"leadId"`
	OldScore            int    `json:"oldScore"`
	NewScore            int    `json:"newScore"`
	QualificationStatus string `json:"qualificationStatus"`
	Reason              string `json:"reason"`
	ChangedBy           string `json:"changedBy"`
}

// EventName implements Event.
func (LeadScoreChanged) EventName() string { return "scoring.lead_score_changed" }
