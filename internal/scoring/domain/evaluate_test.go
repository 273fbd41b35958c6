package domain

import "testing"

func TestEvaluateDefaultsForMissingFields(t *testing.T) {
	set := DefaultConfigSet()
	lead := Lead{}

	if got := EvaluateBudget(lead, set[DimensionBudget]); got != DefaultBudgetScore {
		t.Fatalf("expected budget default %d, got %d", DefaultBudgetScore, got)
	}
	if got := EvaluateAuthority(lead, set[DimensionAuthority], EvalOptions{}); got != DefaultAuthorityScore {
		t.Fatalf("expected authority default %d, got %d", DefaultAuthorityScore, got)
	}
	if got := EvaluateNeed(lead, set[DimensionNeed]); got != DefaultNeedScore {
		t.Fatalf("expected need default %d, got %d", DefaultNeedScore, got)
	}
	if got := EvaluateTimeline(lead, set[DimensionTimeline]); got != DefaultTimelineScore {
		t.Fatalf("expected timeline default %d, got %d", DefaultTimelineScore, got)
	}
}

func TestEvaluateDefaultsForUnmappedValues(t *testing.T) {
	set := DefaultConfigSet()
	lead := Lead{OwnershipStatus: "usufruitier", ProjectType: "autre", Timeline: "jamais"}

	if got := EvaluateAuthority(lead, set[DimensionAuthority], EvalOptions{}); got != DefaultAuthorityScore {
		t.Fatalf("expected authority default %d, got %d", DefaultAuthorityScore, got)
	}
	if got := EvaluateNeed(lead, set[DimensionNeed]); got != DefaultNeedScore {
		t.Fatalf("expected need default %d, got %d", DefaultNeedScore, got)
	}
	if got := EvaluateTimeline(lead, set[DimensionTimeline]); got != DefaultTimelineScore {
		t.Fatalf("expected timeline default %d, got %d", DefaultTimelineScore, got)
	}
}

func TestEvaluateBudgetRanges(t *testing.T) {
	cfg := DefaultConfigSet()[DimensionBudget]
	cases := []struct {
		value float64
		want  int
	}{
		{1, 10},
		{149999, 10},
		{150000, 15},
		{299999.99, 15},
		{300000, 20},
		{320000, 20},
		{500000, 25},
		{4_000_000, 25},
	}

	for _, tc := range cases {
		lead := Lead{EstimatedValue: floatPtr(tc.value)}
		if got := EvaluateBudget(lead, cfg); got != tc.want {
			t.Fatalf("value %.2f: expected %d, got %d", tc.value, tc.want, got)
		}
	}
}

func TestEvaluateBudgetPropertyDetailsBonus(t *testing.T) {
	cfg := DefaultConfigSet()[DimensionBudget]
	lead := Lead{EstimatedValue: floatPtr(200000), Surface: floatPtr(75), Rooms: intPtr(3)}

	if got := EvaluateBudget(lead, cfg); got != 18 {
		t.Fatalf("expected 15 + 3 bonus = 18, got %d", got)
	}

	lead.Rooms = nil
	if got := EvaluateBudget(lead, cfg); got != 15 {
		t.Fatalf("expected no bonus without rooms, got %d", got)
	}
}

func TestEvaluateAuthorityBonuses(t *testing.T) {
	cfg := DefaultConfigSet()[DimensionAuthority]
	lead := Lead{OwnershipStatus: "Heritier", ExpertContactOptIn: true, Phone: "+33 6 12 34 56 78"}

	if got := EvaluateAuthority(lead, cfg, EvalOptions{PhoneRegion: "FR"}); got != 20 {
		t.Fatalf("expected 15 + 3 + 2 = 20, got %d", got)
	}

	lead.Phone = "pas de téléphone"
	if got := EvaluateAuthority(lead, cfg, EvalOptions{PhoneRegion: "FR"}); got != 18 {
		t.Fatalf("expected free text phone to earn no bonus, got %d", got)
	}
}

func TestEvaluateNeedDetailedSubmissionBonus(t *testing.T) {
	cfg := DefaultConfigSet()[DimensionNeed]
	lead := Lead{ProjectType: "investissement", RecordType: RecordTypeDetailed}

	if got := EvaluateNeed(lead, cfg); got != 18 {
		t.Fatalf("expected 15 + 3 = 18, got %d", got)
	}
}

func TestEvaluateTimelineNearTermBonus(t *testing.T) {
	cfg := DefaultConfigSet()[DimensionTimeline]
	cases := map[string]int{
		"immediate":    25,
		"3_mois":       22,
		"6_mois":       15,
		"plus_12_mois": 5,
	}
	for timeline, want := range cases {
		if got := EvaluateTimeline(Lead{Timeline: timeline}, cfg); got != want {
			t.Fatalf("timeline %s: expected %d, got %d", timeline, want, got)
		}
	}
}

func TestEvaluateInactiveDimensionScoresZero(t *testing.T) {
	cfg := DefaultConfigSet()[DimensionNeed]
	cfg.IsActive = false

	if got := Evaluate(referenceLead(), cfg, EvalOptions{}); got != 0 {
		t.Fatalf("expected 0 for inactive dimension, got %d", got)
	}
	if got := Evaluate(referenceLead(), DimensionConfig{}, EvalOptions{}); got != 0 {
		t.Fatalf("expected 0 for absent config, got %d", got)
	}
}
