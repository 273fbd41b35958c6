package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"lead_scoring_backend/internal/scoring/domain"
	"lead_scoring_backend/internal/scoring/repository"
	"lead_scoring_backend/internal/scoring/transport"
	"lead_scoring_backend/platform/apperr"
)

func scoreRow(total, budget, authority, need, timeline, confidence int) repository.LeadScoring {
	return repository.LeadScoring{
		TotalScore:          total,
		BudgetScore:         budget,
		AuthorityScore:      authority,
		NeedScore:           need,
		TimelineScore:       timeline,
		ConfidenceLevel:     confidence,
		QualificationStatus: string(domain.Classify(total)),
	}
}

func TestBuildSummary(t *testing.T) {
	scores := []repository.LeadScoring{
		scoreRow(10, 10, 10, 0, 10, 80),
		scoreRow(30, 10, 10, 5, 10, 80),
		scoreRow(60, 20, 20, 10, 20, 80),
		scoreRow(80, 25, 25, 10, 25, 80),
		scoreRow(90, 25, 25, 20, 25, 80),
	}

	got := BuildSummary(scores, domain.Thresholds{Qualified: 51, HotLead: 76})

	if got.TotalLeads != 5 || got.QualifiedCount != 3 || got.HotLeadCount != 2 {
		t.Fatalf("unexpected counts: %+v", got)
	}
	if got.QualificationRate != 60 || got.HotLeadRate != 40 {
		t.Fatalf("expected rates 60/40, got %v/%v", got.QualificationRate, got.HotLeadRate)
	}
	if got.AverageScore != 54 || got.AverageConfidence != 80 {
		t.Fatalf("expected averages 54/80, got %v/%v", got.AverageScore, got.AverageConfidence)
	}
	if got.BANT.Budget != 18 || got.BANT.Need != 9 {
		t.Fatalf("unexpected BANT breakdown: %+v", got.BANT)
	}

	wantCounts := []int{1, 1, 1, 2}
	for i, b := range got.Distribution {
		if b.Count != wantCounts[i] {
			t.Fatalf("band %s: expected %d, got %d", b.Status, wantCounts[i], b.Count)
		}
	}
	if got.Distribution[3].Percentage != 40 {
		t.Fatalf("expected hot band 40%%, got %v", got.Distribution[3].Percentage)
	}

	if len(got.Recommendations) != 2 {
		t.Fatalf("expected 2 recommendations, got %v", got.Recommendations)
	}
	if !strings.Contains(got.Recommendations[0], "need") || !strings.Contains(got.Recommendations[1], "hot") {
		t.Fatalf("unexpected recommendations: %v", got.Recommendations)
	}
}

func TestBuildSummaryFlagsWeakPopulation(t *testing.T) {
	scores := []repository.LeadScoring{
		scoreRow(10, 5, 5, 0, 0, 20),
		scoreRow(20, 5, 5, 5, 5, 40),
		scoreRow(40, 10, 10, 10, 10, 60),
	}

	got := BuildSummary(scores, domain.Thresholds{Qualified: 51, HotLead: 76})

	// low qualification, lowest band share, four weak dimensions, low confidence
	if len(got.Recommendations) != 7 {
		t.Fatalf("expected 7 recommendations, got %d: %v", len(got.Recommendations), got.Recommendations)
	}
	if got.Distribution[0].Percentage != 66.7 {
		t.Fatalf("expected lowest band 66.7%%, got %v", got.Distribution[0].Percentage)
	}
}

func TestBuildSummaryEmpty(t *testing.T) {
	got := BuildSummary(nil, domain.Thresholds{Qualified: 51, HotLead: 76})
	if got.TotalLeads != 0 || got.QualificationRate != 0 || len(got.Distribution) != 4 {
		t.Fatalf("unexpected empty summary: %+v", got)
	}
	if len(got.Recommendations) != 1 {
		t.Fatalf("expected a single no-data recommendation, got %v", got.Recommendations)
	}
}

func TestBuildSummaryUsesConfiguredThreshold(t *testing.T) {
	scores := []repository.LeadScoring{scoreRow(45, 10, 10, 15, 10, 70), scoreRow(60, 15, 15, 15, 15, 70)}
	got := BuildSummary(scores, domain.Thresholds{Qualified: 40, HotLead: 90})
	if got.QualifiedCount != 2 || got.HotLeadCount != 0 {
		t.Fatalf("expected threshold 40 to qualify both, got %+v", got)
	}
}

func TestGetAnalyticsValidatesWindow(t *testing.T) {
	svc := newTestService(newFakeRepo())
	ctx := context.Background()
	now := time.Now()

	queries := map[string]transport.AnalyticsQuery{
		"missing window":  {},
		"inverted window": {From: now, To: now.Add(-time.Hour)},
		"unknown status":  {From: now.Add(-time.Hour), To: now, Status: "lost"},
	}
	for name, q := range queries {
		if _, err := svc.GetAnalytics(ctx, q); !apperr.Is(err, apperr.KindValidation) {
			t.Fatalf("%s: expected validation error, got %v", name, err)
		}
	}
}

func TestGetAnalytics(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	repo.addLead(hotLead())
	repo.addLead(midLead())
	if _, err := svc.RecalculateAll(ctx, domain.ReasonAutomaticCalculation); err != nil {
		t.Fatalf("recalculate: %v", err)
	}

	now := time.Now()
	got, err := svc.GetAnalytics(ctx, transport.AnalyticsQuery{From: now.Add(-time.Hour), To: now.Add(time.Hour)})
	if err != nil {
		t.Fatalf("analytics: %v", err)
	}
	if got.TotalLeads != 2 || got.QualifiedCount != 2 || got.HotLeadCount != 1 {
		t.Fatalf("unexpected summary: %+v", got)
	}
	if got.AverageScore != 80 {
		t.Fatalf("expected average 80, got %v", got.AverageScore)
	}

	got, err = svc.GetAnalytics(ctx, transport.AnalyticsQuery{From: now.Add(-time.Hour), To: now.Add(time.Hour), Status: "hot_lead"})
	if err != nil {
		t.Fatalf("analytics: %v", err)
	}
	if got.TotalLeads != 1 {
		t.Fatalf("expected status filter to keep one lead, got %d", got.TotalLeads)
	}
}
