package service

import (
	"context"
	"fmt"
	"math"

	"lead_scoring_backend/internal/scoring/domain"
	"lead_scoring_backend/internal/scoring/repository"
	"lead_scoring_backend/internal/scoring/transport"
	"lead_scoring_backend/platform/apperr"
)

// Recommendation triggers.
const (
	lowQualificationRate = 30.0
	lowestBandShareLimit = 50.0
	weakDimensionAverage = 10.0
	lowConfidenceAverage = 50.0
	strongHotLeadShare   = 20.0
)

// GetAnalytics summarizes the scores updated inside the requested window. It never writes.
func (s *Service) GetAnalytics(ctx context.Context, q transport.AnalyticsQuery) (*transport.AnalyticsResponse, error) {
	if q.From.IsZero() || q.To.IsZero() {
		return nil, apperr.Validation("from and to are required")
	}
	if q.From.After(q.To) {
		return nil, apperr.Validation("from must not be after to").
			With("from", q.From).
			With("to", q.To)
	}
	if q.Status != "" && !domain.QualificationStatus(q.Status).Valid() {
		return nil, apperr.Validation("unknown qualification status").With("status", q.Status)
	}

	scores, err := s.repo.ListScores(ctx, repository.ScoreFilter{
		From:       q.From,
		To:         q.To,
		Status:     q.Status,
		AssignedTo: q.AssignedTo,
	})
	if err != nil {
		return nil, configErr(err, "list lead scores")
	}

	thresholds := domain.DefaultConfigSet().ReportingThresholds()
	configs, err := s.repo.ListConfigs(ctx)
	if err != nil {
		return nil, configErr(err, "list scoring config")
	}
	if set, err := domain.NewConfigSet(configs); err == nil && len(set) > 0 {
		thresholds = set.ReportingThresholds()
	}

	summary := BuildSummary(scores, thresholds)
	summary.From = q.From
	summary.To = q.To
	return &summary, nil
}

// BuildSummary aggregates a score population. Rates and averages are rounded to one decimal.
func BuildSummary(scores []repository.LeadScoring, thresholds domain.Thresholds) transport.AnalyticsResponse {
	out := transport.AnalyticsResponse{
		TotalLeads:      len(scores),
		Distribution:    make([]transport.DistributionBucket, len(domain.Bands)),
		Recommendations: []string{},
	}
	for i, b := range domain.Bands {
		out.Distribution[i] = transport.DistributionBucket{Status: string(b.Status), Min: b.Min, Max: b.Max}
	}
	if len(scores) == 0 {
		out.Recommendations = append(out.Recommendations, "No scored leads in this period.")
		return out
	}

	var sumTotal, sumConfidence, sumBudget, sumAuthority, sumNeed, sumTimeline int
	for _, s := range scores {
		sumTotal += s.TotalScore
		sumConfidence += s.ConfidenceLevel
		sumBudget += s.BudgetScore
		sumAuthority += s.AuthorityScore
		sumNeed += s.NeedScore
		sumTimeline += s.TimelineScore

		if s.TotalScore >= thresholds.Qualified {
			out.QualifiedCount++
		}
		if s.TotalScore >= thresholds.HotLead {
			out.HotLeadCount++
		}
		for i, b := range domain.Bands {
			if s.TotalScore >= b.Min && s.TotalScore <= b.Max {
				out.Distribution[i].Count++
				break
			}
		}
	}

	n := len(scores)
	out.QualificationRate = percent(out.QualifiedCount, n)
	out.HotLeadRate = percent(out.HotLeadCount, n)
	out.AverageScore = average(sumTotal, n)
	out.AverageConfidence = average(sumConfidence, n)
	out.BANT = transport.BANTBreakdown{
		Budget:    average(sumBudget, n),
		Authority: average(sumAuthority, n),
		Need:      average(sumNeed, n),
		Timeline:  average(sumTimeline, n),
	}
	for i := range out.Distribution {
		out.Distribution[i].Percentage = percent(out.Distribution[i].Count, n)
	}

	out.Recommendations = recommendations(out)
	return out
}

func recommendations(summary transport.AnalyticsResponse) []string {
	recs := make([]string, 0)

	if summary.QualificationRate < lowQualificationRate {
		recs = append(recs, fmt.Sprintf("Qualification rate is %.1f%%, below %.0f%%: review lead sources and intake form targeting.", summary.QualificationRate, lowQualificationRate))
	}
	if lowest := summary.Distribution[0]; lowest.Percentage > lowestBandShareLimit {
		recs = append(recs, fmt.Sprintf("%.1f%% of leads fall in the %s band: tighten acquisition campaigns.", lowest.Percentage, lowest.Status))
	}

	dims := []struct {
		name string
		avg  float64
	}{
		{string(domain.DimensionBudget), summary.BANT.Budget},
		{string(domain.DimensionAuthority), summary.BANT.Authority},
		{string(domain.DimensionNeed), summary.BANT.Need},
		{string(domain.DimensionTimeline), summary.BANT.Timeline},
	}
	for _, d := range dims {
		if d.avg < weakDimensionAverage {
			recs = append(recs, fmt.Sprintf("Average %s score is %.1f/%d: collect more %s information during intake.", d.name, d.avg, domain.MaxDimensionScore, d.name))
		}
	}

	if summary.AverageConfidence < lowConfidenceAverage {
		recs = append(recs, fmt.Sprintf("Average data completeness is %.1f%%: promote the detailed estimate form.", summary.AverageConfidence))
	}
	if summary.HotLeadRate >= strongHotLeadShare {
		recs = append(recs, fmt.Sprintf("%.1f%% of leads are hot: prioritize same-day follow-up.", summary.HotLeadRate))
	}
	return recs
}

func percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return round1(float64(part) / float64(whole) * 100)
}

func average(sum, n int) float64 {
	if n == 0 {
		return 0
	}
	return round1(float64(sum) / float64(n))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
