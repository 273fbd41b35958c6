package domain

import (
	"math"

	"lead_scoring_backend/platform/apperr"
)

// Breakdown is the result of scoring one lead against one configuration snapshot.
type Breakdown struct {
	Total         int
	Budget        int
	Authority     int
	Need          int
	Timeline      int
	Contributions map[Dimension]float64
	Confidence    int
}

// SubScore returns the raw sub-score of d.
func (b Breakdown) SubScore(d Dimension) int {
	switch d {
	case DimensionBudget:
		return b.Budget
	case DimensionAuthority:
		return b.Authority
	case DimensionNeed:
		return b.Need
	case DimensionTimeline:
		return b.Timeline
	default:
		return 0
	}
}

// Aggregate scores lead against the active dimensions of set.
// The result depends only on its arguments.
func Aggregate(lead Lead, set ConfigSet, opts EvalOptions) (Breakdown, error) {
	active := set.Active()
	if len(active) == 0 {
		return Breakdown{}, apperr.Configuration("no active scoring dimension is configured").
			With("leadId", lead.ID.String())
	}

	out := Breakdown{Contributions: make(map[Dimension]float64, len(active))}
	var sum float64
	for _, cfg := range active {
		raw := Evaluate(lead, cfg, opts)
		weight := cfg.Weight
		if weight < 0 {
			weight = 0
		}
		contribution := float64(raw) * float64(weight) / DefaultWeight
		out.Contributions[cfg.Dimension] = contribution
		sum += contribution

		switch cfg.Dimension {
		case DimensionBudget:
			out.Budget = raw
		case DimensionAuthority:
			out.Authority = raw
		case DimensionNeed:
			out.Need = raw
		case DimensionTimeline:
			out.Timeline = raw
		}
	}

	if sum > MaxTotalScore {
		sum = MaxTotalScore
	}
	out.Total = ClampTotal(int(math.Round(sum)))
	out.Confidence = Confidence(lead)
	return out, nil
}
