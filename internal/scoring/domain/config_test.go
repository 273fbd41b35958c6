package domain

import (
	"strings"
	"testing"

	"lead_scoring_backend/platform/apperr"
)

func TestDefaultConfigSetIsComplete(t *testing.T) {
	set := DefaultConfigSet()
	for _, d := range Dimensions {
		cfg, ok := set[d]
		if !ok {
			t.Fatalf("expected %s to be configured", d)
		}
		if !cfg.IsActive || cfg.Weight != DefaultWeight {
			t.Fatalf("expected %s active with weight %d, got active=%v weight=%d", d, DefaultWeight, cfg.IsActive, cfg.Weight)
		}
		if cfg.Rules.Kind() != ExpectedRuleKind(d) {
			t.Fatalf("expected %s rules of kind %s, got %s", d, ExpectedRuleKind(d), cfg.Rules.Kind())
		}
	}
	th := set.ReportingThresholds()
	if th.Qualified != 51 || th.HotLead != 76 {
		t.Fatalf("expected thresholds 51/76, got %d/%d", th.Qualified, th.HotLead)
	}
}

func TestDimensionConfigValidate(t *testing.T) {
	base := DefaultConfigSet()

	cases := map[string]func(c *DimensionConfig){
		"negative weight":    func(c *DimensionConfig) { c.Weight = -1 },
		"missing rules":      func(c *DimensionConfig) { c.Rules = nil },
		"wrong table shape":  func(c *DimensionConfig) { c.Rules = CategoryTable{Values: map[string]int{"x": 1}} },
		"unknown bonus":      func(c *DimensionConfig) { c.Bonuses = map[string]int{"near_term": 2} },
		"bonus over cap":     func(c *DimensionConfig) { c.Bonuses = map[string]int{BonusPropertyDetails: 26} },
		"inverted threshold": func(c *DimensionConfig) { c.Thresholds = Thresholds{Qualified: 80, HotLead: 60} },
		"empty ranges":       func(c *DimensionConfig) { c.Rules = RangeTable{} },
	}

	for name, mutate := range cases {
		cfg := base[DimensionBudget]
		mutate(&cfg)
		err := cfg.Validate()
		if !apperr.Is(err, apperr.KindValidation) {
			t.Fatalf("%s: expected validation error, got %v", name, err)
		}
	}
}

func TestRuleTableSpecDecode(t *testing.T) {
	upper := 100.0
	if _, err := (RuleTableSpec{Type: RuleKindRange, Ranges: []RangeRule{{Min: 0, Max: &upper, Score: 5}, {Min: 50, Score: 10}}}).Decode(); err == nil {
		t.Fatalf("expected overlapping ranges to be rejected")
	}
	if _, err := (RuleTableSpec{Type: "lookup"}).Decode(); err == nil {
		t.Fatalf("expected unknown table type to be rejected")
	}
	if _, err := (RuleTableSpec{Type: RuleKindCategory, Values: map[string]int{"A": 1, "a": 2}}).Decode(); err == nil {
		t.Fatalf("expected duplicate normalized keys to be rejected")
	}

	table, err := (RuleTableSpec{Type: RuleKindRange, Ranges: []RangeRule{{Min: 100, Score: 20}, {Min: 0, Max: &upper, Score: 5}}}).Decode()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rt := table.(RangeTable)
	if score, ok := rt.Lookup(42); !ok || score != 5 {
		t.Fatalf("expected unsorted input to be ordered, got %d %v", score, ok)
	}
}

func TestParseRubricRejectsMalformedDocuments(t *testing.T) {
	docs := map[string]string{
		"empty":             "",
		"unknown field":     "dimensions:\n  - dimension: need\n    colour: red\n",
		"unknown dimension": "dimensions:\n  - dimension: mood\n    rules: {type: category, values: {a: 1}}\n",
		"wrong kind":        "dimensions:\n  - dimension: budget\n    rules: {type: category, values: {a: 1}}\n",
	}
	for name, doc := range docs {
		if _, err := ParseRubric([]byte(doc)); err == nil {
			t.Fatalf("%s: expected error", name)
		} else if !apperr.Is(err, apperr.KindValidation) {
			t.Fatalf("%s: expected validation error, got %v", name, err)
		}
	}
}

func TestParseRubricDefaultsWeightAndActive(t *testing.T) {
	doc := strings.Join([]string{
		"dimensions:",
		"  - dimension: need",
		"    rules:",
		"      type: category",
		"      values: {vente_urgente: 25}",
	}, "\n")

	set, err := ParseRubric([]byte(doc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cfg := set[DimensionNeed]
	if cfg.Weight != DefaultWeight || !cfg.IsActive {
		t.Fatalf("expected weight %d and active, got %d %v", DefaultWeight, cfg.Weight, cfg.IsActive)
	}
}
