// Package domain holds the pure scoring model: configuration, BANT evaluators,
// confidence, qualification bands and the aggregator. Nothing here performs I/O.
package domain

import "strings"

// Dimension is one of the four BANT factors.
type Dimension string

const (
	DimensionBudget    Dimension = "budget"
	DimensionAuthority Dimension = "authority"
	DimensionNeed      Dimension = "need"
	DimensionTimeline  Dimension = "timeline"
)

// Dimensions lists every dimension in canonical order.
var Dimensions = []Dimension{DimensionBudget, DimensionAuthority, DimensionNeed, DimensionTimeline}

const (
	// MaxDimensionScore caps every raw sub-score, bonuses included.
	MaxDimensionScore = 25
	// DefaultWeight is the nominal contribution of a dimension; four of them sum to 100.
	DefaultWeight = 25
	// MaxTotalScore caps the aggregated score.
	MaxTotalScore = 100
)

// ParseDimension accepts a dimension name case-insensitively.
func ParseDimension(value string) (Dimension, bool) {
	d := Dimension(strings.ToLower(strings.TrimSpace(value)))
	for _, known := range Dimensions {
		if d == known {
			return d, true
		}
	}
	return "", false
}

func clamp(value, lo, hi int) int {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}

// ClampTotal bounds a total score to [0, 100].
func ClampTotal(value int) int {
	return clamp(value, 0, MaxTotalScore)
}
