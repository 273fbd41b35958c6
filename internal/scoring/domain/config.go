package domain

import (
	"fmt"
	"sort"
	"time"

	"lead_scoring_backend/platform/apperr"
)

// Named bonuses recognised per dimension.
const (
	BonusEstimatePresent    = "estimate_present"
	BonusPropertyDetails    = "property_details"
	BonusExpertContact      = "expert_contact"
	BonusPhoneProvided      = "phone_provided"
	BonusDetailedSubmission = "detailed_submission"
	BonusNearTerm           = "near_term"
)

var knownBonuses = map[Dimension][]string{
	DimensionBudget:    {BonusEstimatePresent, BonusPropertyDetails},
	DimensionAuthority: {BonusExpertContact, BonusPhoneProvided},
	DimensionNeed:      {BonusDetailedSubmission},
	DimensionTimeline:  {BonusNearTerm},
}

// KnownBonuses returns the bonus names a dimension accepts.
func KnownBonuses(d Dimension) []string {
	return append([]string(nil), knownBonuses[d]...)
}

// ExpectedRuleKind returns the rule table shape a dimension requires.
func ExpectedRuleKind(d Dimension) RuleKind {
	if d == DimensionBudget {
		return RuleKindRange
	}
	return RuleKindCategory
}

// Default reporting cutoffs, aligned with the qualification bands.
const (
	DefaultQualifiedThreshold = 51
	DefaultHotLeadThreshold   = 76
)

// Thresholds are reporting cutoffs. The classifier does not read them.
type Thresholds struct {
	Qualified int `json:"qualified" yaml:"qualified"`
	HotLead   int `json:"hotLead" yaml:"hot_lead"`
}

// IsZero reports whether no cutoff was configured.
func (t Thresholds) IsZero() bool {
	return t.Qualified == 0 && t.HotLead == 0
}

func (t Thresholds) validate() error {
	if t.IsZero() {
		return nil
	}
	if t.Qualified < 0 || t.HotLead > MaxTotalScore || t.Qualified >= t.HotLead {
		return fmt.Errorf("thresholds must satisfy 0 <= qualified < hotLead <= %d", MaxTotalScore)
	}
	return nil
}

// DimensionConfig is the configuration of one scoring dimension.
type DimensionConfig struct {
	Dimension  Dimension
	Weight     int
	IsActive   bool
	Rules      RuleTable
	Thresholds Thresholds
	Bonuses    map[string]int
	UpdatedBy  string
	UpdatedAt  time.Time
}

// Bonus returns the configured value of a named bonus, zero when absent.
func (c DimensionConfig) Bonus(name string) int {
	return c.Bonuses[name]
}

// Validate checks the configuration shape. Malformed tables fail here, not during scoring.
func (c DimensionConfig) Validate() error {
	fail := func(format string, args ...any) error {
		return apperr.Validation(fmt.Sprintf(format, args...)).With("dimension", string(c.Dimension))
	}

	if _, ok := ParseDimension(string(c.Dimension)); !ok {
		return fail("unknown dimension %q", c.Dimension)
	}
	if c.Weight < 0 || c.Weight > MaxTotalScore {
		return fail("weight %d outside [0,%d]", c.Weight, MaxTotalScore)
	}
	if c.Rules == nil {
		return fail("rules are required")
	}
	if want := ExpectedRuleKind(c.Dimension); c.Rules.Kind() != want {
		return fail("%s requires a %s rule table, got %s", c.Dimension, want, c.Rules.Kind())
	}
	if err := c.Rules.Validate(); err != nil {
		return fail("invalid rules: %v", err)
	}
	if err := c.Thresholds.validate(); err != nil {
		return fail("%v", err)
	}
	allowed := knownBonuses[c.Dimension]
	for name, value := range c.Bonuses {
		if !contains(allowed, name) {
			return fail("unknown bonus %q", name)
		}
		if value < 0 || value > MaxDimensionScore {
			return fail("bonus %q value %d outside [0,%d]", name, value, MaxDimensionScore)
		}
	}
	return nil
}

// ConfigSet is an immutable snapshot of every configured dimension.
type ConfigSet map[Dimension]DimensionConfig

// NewConfigSet indexes configs by dimension, rejecting duplicates.
func NewConfigSet(configs []DimensionConfig) (ConfigSet, error) {
	set := make(ConfigSet, len(configs))
	for _, c := range configs {
		if _, dup := set[c.Dimension]; dup {
			return nil, apperr.Validation("dimension configured twice").With("dimension", string(c.Dimension))
		}
		set[c.Dimension] = c
	}
	return set, nil
}

// Validate checks every dimension in the set.
func (s ConfigSet) Validate() error {
	for _, d := range s.dimensions() {
		if err := s[d].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Active returns active dimensions in canonical order.
func (s ConfigSet) Active() []DimensionConfig {
	active := make([]DimensionConfig, 0, len(s))
	for _, d := range Dimensions {
		if c, ok := s[d]; ok && c.IsActive {
			active = append(active, c)
		}
	}
	return active
}

// List returns every configured dimension in canonical order.
func (s ConfigSet) List() []DimensionConfig {
	list := make([]DimensionConfig, 0, len(s))
	for _, d := range s.dimensions() {
		list = append(list, s[d])
	}
	return list
}

// With returns a copy of the set with c replacing its dimension.
func (s ConfigSet) With(c DimensionConfig) ConfigSet {
	next := make(ConfigSet, len(s)+1)
	for d, existing := range s {
		next[d] = existing
	}
	next[c.Dimension] = c
	return next
}

// ReportingThresholds returns the first configured thresholds in canonical order,
// or the band-aligned defaults.
func (s ConfigSet) ReportingThresholds() Thresholds {
	for _, c := range s.Active() {
		if !c.Thresholds.IsZero() {
			return c.Thresholds
		}
	}
	return Thresholds{Qualified: DefaultQualifiedThreshold, HotLead: DefaultHotLeadThreshold}
}

func (s ConfigSet) dimensions() []Dimension {
	dims := make([]Dimension, 0, len(s))
	for d := range s {
		dims = append(dims, d)
	}
	order := make(map[Dimension]int, len(Dimensions))
	for i, d := range Dimensions {
		order[d] = i
	}
	sort.Slice(dims, func(i, j int) bool {
		oi, iok := order[dims[i]]
		oj, jok := order[dims[j]]
		if iok && jok {
			return oi < oj
		}
		if iok != jok {
			return iok
		}
		return dims[i] < dims[j]
	})
	return dims
}

func contains(values []string, v string) bool {
	for _, value := range values {
		if value == v {
			return true
		}
	}
	return false
}
