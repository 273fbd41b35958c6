package domain

// ChangeReason tags a score history row.
type ChangeReason string

const (
	ReasonInitialCalculation   ChangeReason = "initial_calculation"
	ReasonAutomaticCalculation ChangeReason = "automatic_calculation"
	ReasonConfigUpdate         ChangeReason = "config_update"
	ReasonManualAdjustment     ChangeReason = "manual_adjustment"
)

// IsRecalculation reports whether r may label a recalculation of an existing score.
func (r ChangeReason) IsRecalculation() bool {
	return r == ReasonAutomaticCalculation || r == ReasonConfigUpdate
}

// SystemActor is recorded as changedBy for automatic score changes.
const SystemActor = "system"
