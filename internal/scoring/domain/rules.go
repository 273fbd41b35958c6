package domain

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// RuleKind tags the shape of a rule table.
type RuleKind string

const (
	RuleKindRange    RuleKind = "range"
	RuleKindCategory RuleKind = "category"
)

// RuleTable is a lookup table mapping a lead attribute to a base sub-score.
// Implementations are RangeTable and CategoryTable.
type RuleTable interface {
	Kind() RuleKind
	Validate() error
}

// RangeRule scores values in [Min, Max). A nil Max is unbounded.
type RangeRule struct {
	Min   float64  `json:"min" yaml:"min"`
	Max   *float64 `json:"max,omitempty" yaml:"max,omitempty"`
	Score int      `json:"score" yaml:"score"`
}

func (r RangeRule) contains(value float64) bool {
	if value < r.Min {
		return false
	}
	return r.Max == nil || value < *r.Max
}

// RangeTable buckets a numeric attribute.
type RangeTable struct {
	Ranges []RangeRule
}

func (RangeTable) Kind() RuleKind { return RuleKindRange }

// Validate requires non-empty, sorted, non-overlapping ranges with scores in [0,25].
func (t RangeTable) Validate() error {
	if len(t.Ranges) == 0 {
		return fmt.Errorf("range table has no ranges")
	}
	for i, r := range t.Ranges {
		if math.IsNaN(r.Min) || math.IsInf(r.Min, 0) {
			return fmt.Errorf("range %d: min must be finite", i)
		}
		if r.Max != nil && *r.Max <= r.Min {
			return fmt.Errorf("range %d: max must be greater than min", i)
		}
		if r.Score < 0 || r.Score > MaxDimensionScore {
			return fmt.Errorf("range %d: score %d outside [0,%d]", i, r.Score, MaxDimensionScore)
		}
		if i == 0 {
			continue
		}
		prev := t.Ranges[i-1]
		if prev.Max == nil {
			return fmt.Errorf("range %d follows an unbounded range", i)
		}
		if r.Min < *prev.Max {
			return fmt.Errorf("range %d overlaps range %d", i, i-1)
		}
	}
	return nil
}

// Lookup returns the score of the first range containing value.
func (t RangeTable) Lookup(value float64) (int, bool) {
	for _, r := range t.Ranges {
		if r.contains(value) {
			return r.Score, true
		}
	}
	return 0, false
}

// CategoryTable maps a categorical attribute, matched case-insensitively.
type CategoryTable struct {
	Values map[string]int
}

func (CategoryTable) Kind() RuleKind { return RuleKindCategory }

// Validate requires at least one entry, non-blank keys and scores in [0,25].
func (t CategoryTable) Validate() error {
	if len(t.Values) == 0 {
		return fmt.Errorf("category table has no values")
	}
	seen := make(map[string]struct{}, len(t.Values))
	for key, score := range t.Values {
		norm := normalizeKey(key)
		if norm == "" {
			return fmt.Errorf("category table has a blank key")
		}
		if _, dup := seen[norm]; dup {
			return fmt.Errorf("category %q is defined twice", norm)
		}
		seen[norm] = struct{}{}
		if score < 0 || score > MaxDimensionScore {
			return fmt.Errorf("category %q: score %d outside [0,%d]", key, score, MaxDimensionScore)
		}
	}
	return nil
}

// Lookup returns the score for key.
func (t CategoryTable) Lookup(key string) (int, bool) {
	norm := normalizeKey(key)
	if norm == "" {
		return 0, false
	}
	if score, ok := t.Values[norm]; ok {
		return score, true
	}
	for k, score := range t.Values {
		if normalizeKey(k) == norm {
			return score, true
		}
	}
	return 0, false
}

// RuleTableSpec is the serialized form of a rule table stored in scoring_config.rules
// and in the rubric document.
type RuleTableSpec struct {
	Type   RuleKind       `json:"type" yaml:"type"`
	Ranges []RangeRule    `json:"ranges,omitempty" yaml:"ranges,omitempty"`
	Values map[string]int `json:"values,omitempty" yaml:"values,omitempty"`
}

// Decode builds and validates the table described by the spec.
func (s RuleTableSpec) Decode() (RuleTable, error) {
	var table RuleTable
	switch RuleKind(strings.ToLower(string(s.Type))) {
	case RuleKindRange:
		if len(s.Values) > 0 {
			return nil, fmt.Errorf("range table must not define values")
		}
		ranges := append([]RangeRule(nil), s.Ranges...)
		sort.SliceStable(ranges, func(i, j int) bool { return ranges[i].Min < ranges[j].Min })
		table = RangeTable{Ranges: ranges}
	case RuleKindCategory:
		if len(s.Ranges) > 0 {
			return nil, fmt.Errorf("category table must not define ranges")
		}
		values := make(map[string]int, len(s.Values))
		for k, v := range s.Values {
			norm := normalizeKey(k)
			if _, dup := values[norm]; dup {
				return nil, fmt.Errorf("category %q is defined twice", norm)
			}
			values[norm] = v
		}
		table = CategoryTable{Values: values}
	case "":
		return nil, fmt.Errorf("rule table type is required")
	default:
		return nil, fmt.Errorf("unknown rule table type %q", s.Type)
	}
	if err := table.Validate(); err != nil {
		return nil, err
	}
	return table, nil
}

// EncodeRuleTable returns the serialized form of table.
func EncodeRuleTable(table RuleTable) RuleTableSpec {
	switch t := table.(type) {
	case RangeTable:
		return RuleTableSpec{Type: RuleKindRange, Ranges: t.Ranges}
	case CategoryTable:
		return RuleTableSpec{Type: RuleKindCategory, Values: t.Values}
	default:
		return RuleTableSpec{}
	}
}
