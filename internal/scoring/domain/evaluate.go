package domain

import "lead_scoring_backend/platform/phone"

// EvalOptions carries evaluation inputs that are not part of the lead or configuration.
type EvalOptions struct {
	// PhoneRegion is the ISO region used to judge national phone numbers.
	PhoneRegion string
}

func (o EvalOptions) region() string {
	if o.PhoneRegion == "" {
		return phone.DefaultRegion
	}
	return o.PhoneRegion
}

// Evaluate returns the raw [0,25] sub-score of one dimension.
// An inactive or unknown dimension scores 0.
func Evaluate(lead Lead, cfg DimensionConfig, opts EvalOptions) int {
	if !cfg.IsActive {
		return 0
	}
	switch cfg.Dimension {
	case DimensionBudget:
		return EvaluateBudget(lead, cfg)
	case DimensionAuthority:
		return EvaluateAuthority(lead, cfg, opts)
	case DimensionNeed:
		return EvaluateNeed(lead, cfg)
	case DimensionTimeline:
		return EvaluateTimeline(lead, cfg)
	default:
		return 0
	}
}

// EvaluateBudget buckets the estimated property value.
func EvaluateBudget(lead Lead, cfg DimensionConfig) int {
	score := DefaultBudgetScore
	if lead.HasEstimate() {
		if table, ok := cfg.Rules.(RangeTable); ok {
			if s, found := table.Lookup(*lead.EstimatedValue); found {
				score = s
			}
		}
		score += cfg.Bonus(BonusEstimatePresent)
	}
	if lead.HasPropertyDetails() {
		score += cfg.Bonus(BonusPropertyDetails)
	}
	return clamp(score, 0, MaxDimensionScore)
}

// EvaluateAuthority scores the ownership status.
func EvaluateAuthority(lead Lead, cfg DimensionConfig, opts EvalOptions) int {
	score := lookupCategory(cfg, lead.OwnershipStatus, DefaultAuthorityScore)
	if lead.ExpertContactOptIn {
		score += cfg.Bonus(BonusExpertContact)
	}
	if phone.IsPossible(lead.Phone, opts.region()) {
		score += cfg.Bonus(BonusPhoneProvided)
	}
	return clamp(score, 0, MaxDimensionScore)
}

// EvaluateNeed scores the stated project motivation.
func EvaluateNeed(lead Lead, cfg DimensionConfig) int {
	score := lookupCategory(cfg, lead.ProjectType, DefaultNeedScore)
	if lead.IsDetailedSubmission() {
		score += cfg.Bonus(BonusDetailedSubmission)
	}
	return clamp(score, 0, MaxDimensionScore)
}

// EvaluateTimeline scores the desired timeframe.
func EvaluateTimeline(lead Lead, cfg DimensionConfig) int {
	score := lookupCategory(cfg, lead.Timeline, DefaultTimelineScore)
	if contains(nearTermTimelines, normalizeKey(lead.Timeline)) {
		score += cfg.Bonus(BonusNearTerm)
	}
	return clamp(score, 0, MaxDimensionScore)
}

func lookupCategory(cfg DimensionConfig, key string, fallback int) int {
	table, ok := cfg.Rules.(CategoryTable)
	if !ok {
		return fallback
	}
	if score, found := table.Lookup(key); found {
		return score
	}
	return fallback
}
