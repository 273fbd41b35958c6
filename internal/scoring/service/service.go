// Package service orchestrates lead scoring: calculation, manual adjustment,
// batch recalculation, configuration administration and analytics.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"lead_scoring_backend/internal/events"
	"lead_scoring_backend/internal/scoring/domain"
	"lead_scoring_backend/internal/scoring/locker"
	"lead_scoring_backend/internal/scoring/repository"
	"lead_scoring_backend/internal/scoring/transport"
	"lead_scoring_backend/platform/apperr"
	"lead_scoring_backend/platform/logger"
	"lead_scoring_backend/platform/sanitize"
)

const (
	// MinAdjustment and MaxAdjustment bound a single manual delta.
	MinAdjustment = -50
	MaxAdjustment = 50

	maxNotesLength       = 1000
	defaultRecalcWorkers = 8
	leadPageSize         = 500
)

// Options tune the service.
type Options struct {
	RecalcWorkers int
	PhoneRegion   string
	RubricPath    string
}

// Service provides the scoring operations.
type Service struct {
	repo     repository.ScoringRepository
	locks    locker.Locker
	eventBus events.Bus
	log      *logger.Logger
	opts     Options
}

// New creates a scoring service. A nil locker falls back to an in-process keyed mutex.
func New(repo repository.ScoringRepository, locks locker.Locker, eventBus events.Bus, log *logger.Logger, opts Options) *Service {
	if locks == nil {
		locks = locker.NewKeyedMutex()
	}
	if log == nil {
		log = logger.Nop()
	}
	if opts.RecalcWorkers < 1 {
		opts.RecalcWorkers = defaultRecalcWorkers
	}
	return &Service{repo: repo, locks: locks, eventBus: eventBus, log: log, opts: opts}
}

// CalculateOptions controls a single calculation.
type CalculateOptions struct {
	// Reason labels the history row when an existing score changes. Defaults to automatic_calculation.
	Reason domain.ChangeReason
	// ResetAdjustment drops the accumulated manual adjustment.
	ResetAdjustment bool
	Actor           string
}

type outcome struct {
	score   repository.LeadScoring
	changed bool
}

// CalculateScore scores a lead against the current configuration and persists the result.
func (s *Service) CalculateScore(ctx context.Context, leadID uuid.UUID, opts CalculateOptions) (*transport.LeadScoreResponse, error) {
	if opts.Reason == "" {
		opts.Reason = domain.ReasonAutomaticCalculation
	}
	if !opts.Reason.IsRecalculation() {
		return nil, apperr.Validation("invalid calculation reason").With("reason", string(opts.Reason))
	}

	set, err := s.loadConfigSet(ctx)
	if err != nil {
		return nil, err
	}

	out, err := s.calculate(ctx, leadID, set, opts)
	if err != nil {
		return nil, err
	}
	resp := toScoreResponse(out.score)
	return &resp, nil
}

func (s *Service) calculate(ctx context.Context, leadID uuid.UUID, set domain.ConfigSet, opts CalculateOptions) (outcome, error) {
	unlock, err := s.lockLead(ctx, leadID)
	if err != nil {
		return outcome{}, err
	}
	defer unlock()

	lead, err := s.repo.GetLead(ctx, leadID)
	if err != nil {
		return outcome{}, persistence(err, "load lead", leadID)
	}

	breakdown, err := domain.Aggregate(lead, set, domain.EvalOptions{PhoneRegion: s.opts.PhoneRegion})
	if err != nil {
		return outcome{}, err
	}

	actor := opts.Actor
	if actor == "" {
		actor = domain.SystemActor
	}

	existing, err := s.repo.GetScore(ctx, leadID)
	switch {
	case apperr.Is(err, apperr.KindNotFound):
		return s.create(ctx, leadID, breakdown, actor)
	case err != nil:
		return outcome{}, persistence(err, "load lead score", leadID)
	}

	manual := existing.ManualAdjustment
	if opts.ResetAdjustment {
		manual = 0
	}
	total := domain.ClampTotal(breakdown.Total + manual)

	next := existing
	applyBreakdown(&next, breakdown, total)
	next.ManualAdjustment = manual

	if sameScore(existing, next) {
		return outcome{score: existing}, nil
	}

	var history *repository.HistoryEntry
	if total != existing.TotalScore {
		history = newHistory(leadID, existing.TotalScore, total, opts.Reason, actor, breakdownDetails(breakdown, manual))
	}

	saved, err := s.repo.SaveScore(ctx, repository.SaveScoreParams{
		Score:           next,
		ExpectedVersion: existing.Version,
		History:         history,
	})
	if err != nil {
		return outcome{}, persistence(err, "save lead score", leadID)
	}
	if history != nil {
		s.publishChange(ctx, saved, history)
	}
	return outcome{score: saved, changed: history != nil}, nil
}

func (s *Service) create(ctx context.Context, leadID uuid.UUID, breakdown domain.Breakdown, actor string) (outcome, error) {
	var score repository.LeadScoring
	score.LeadID = leadID
	applyBreakdown(&score, breakdown, breakdown.Total)

	history := newHistory(leadID, 0, score.TotalScore, domain.ReasonInitialCalculation, actor, breakdownDetails(breakdown, 0))
	saved, err := s.repo.SaveScore(ctx, repository.SaveScoreParams{Score: score, History: history})
	if err != nil {
		return outcome{}, persistence(err, "create lead score", leadID)
	}
	s.publishChange(ctx, saved, history)
	return outcome{score: saved, changed: true}, nil
}

// AdjustScore applies a manual delta on top of the current total.
// The adjustment is always recorded, even when delta is zero.
func (s *Service) AdjustScore(ctx context.Context, leadID uuid.UUID, delta int, notes, actor string) (*transport.LeadScoreResponse, error) {
	if delta < MinAdjustment || delta > MaxAdjustment {
		return nil, apperr.Validation(fmt.Sprintf("delta must be between %d and %d", MinAdjustment, MaxAdjustment)).
			With("leadId", leadID.String()).
			With("delta", delta)
	}
	if actor == "" {
		return nil, apperr.Validation("actor is required").With("leadId", leadID.String())
	}

	unlock, err := s.lockLead(ctx, leadID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	existing, err := s.repo.GetScore(ctx, leadID)
	if err != nil {
		return nil, persistence(err, "load lead score", leadID)
	}

	total := domain.ClampTotal(existing.TotalScore + delta)
	next := existing
	next.TotalScore = total
	next.QualificationStatus = string(domain.Classify(total))
	next.ManualAdjustment = existing.ManualAdjustment + delta

	cleanNotes := sanitize.Text(notes, maxNotesLength)
	if cleanNotes != "" {
		next.Notes = &cleanNotes
	}

	history := newHistory(leadID, existing.TotalScore, total, domain.ReasonManualAdjustment, actor, map[string]any{
		"delta":            delta,
		"notes":            cleanNotes,
		"manualAdjustment": next.ManualAdjustment,
	})

	saved, err := s.repo.SaveScore(ctx, repository.SaveScoreParams{
		Score:           next,
		ExpectedVersion: existing.Version,
		History:         history,
	})
	if err != nil {
		return nil, persistence(err, "adjust lead score", leadID)
	}
	if total != existing.TotalScore {
		s.publishChange(ctx, saved, history)
	}

	resp := toScoreResponse(saved)
	return &resp, nil
}

// GetScore returns the persisted score of a lead.
func (s *Service) GetScore(ctx context.Context, leadID uuid.UUID) (*transport.LeadScoreResponse, error) {
	score, err := s.repo.GetScore(ctx, leadID)
	if err != nil {
		return nil, persistence(err, "load lead score", leadID)
	}
	resp := toScoreResponse(score)
	return &resp, nil
}

// ListHistory returns the lead's score changes in write order.
func (s *Service) ListHistory(ctx context.Context, leadID uuid.UUID) (*transport.HistoryResponse, error) {
	entries, err := s.repo.ListHistory(ctx, leadID)
	if err != nil {
		return nil, persistence(err, "list score history", leadID)
	}
	if len(entries) == 0 {
		if _, err := s.repo.GetLead(ctx, leadID); err != nil {
			return nil, persistence(err, "load lead", leadID)
		}
	}

	items := make([]transport.HistoryEntryResponse, 0, len(entries))
	for _, h := range entries {
		items = append(items, transport.HistoryEntryResponse{
			ID:           h.ID,
			LeadID:       h.LeadID,
			OldScore:     h.OldScore,
			NewScore:     h.NewScore,
			ScoreChange:  h.ScoreChange,
			ChangeReason: h.ChangeReason,
			ChangedBy:    h.ChangedBy,
			Details:      h.Details,
			Timestamp:    h.CreatedAt,
		})
	}
	return &transport.HistoryResponse{Items: items}, nil
}

func (s *Service) lockLead(ctx context.Context, leadID uuid.UUID) (func(), error) {
	unlock, err := s.locks.Lock(ctx, leadID.String())
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "acquire lead score lock", err).With("leadId", leadID.String())
	}
	return unlock, nil
}

func (s *Service) publishChange(ctx context.Context, score repository.LeadScoring, h *repository.HistoryEntry) {
	s.log.WithContext(ctx).ScoreChanged(score.LeadID.String(), h.OldScore, h.NewScore, h.ChangeReason, h.ChangedBy)
	if s.eventBus == nil {
		return
	}
	s.eventBus.Publish(ctx, events.LeadScoreChanged{
		BaseEvent:           events.NewBaseEvent(),
		LeadID:              score.LeadID.String(),
		OldScore:            h.OldScore,
		NewScore:            h.NewScore,
		QualificationStatus: score.QualificationStatus,
		Reason:              h.ChangeReason,
		ChangedBy:           h.ChangedBy,
	})
}

func applyBreakdown(score *repository.LeadScoring, b domain.Breakdown, total int) {
	total = domain.ClampTotal(total)
	score.TotalScore = total
	score.BudgetScore = b.Budget
	score.AuthorityScore = b.Authority
	score.NeedScore = b.Need
	score.TimelineScore = b.Timeline
	score.ConfidenceLevel = b.Confidence
	score.QualificationStatus = string(domain.Classify(total))
}

func sameScore(a, b repository.LeadScoring) bool {
	return a.TotalScore == b.TotalScore &&
		a.BudgetScore == b.BudgetScore &&
		a.AuthorityScore == b.AuthorityScore &&
		a.NeedScore == b.NeedScore &&
		a.TimelineScore == b.TimelineScore &&
		a.ConfidenceLevel == b.ConfidenceLevel &&
		a.QualificationStatus == b.QualificationStatus &&
		a.ManualAdjustment == b.ManualAdjustment
}

func newHistory(leadID uuid.UUID, oldScore, newScore int, reason domain.ChangeReason, actor string, details map[string]any) *repository.HistoryEntry {
	return &repository.HistoryEntry{
		OperationID:  uuid.New(),
		LeadID:       leadID,
		OldScore:     oldScore,
		NewScore:     newScore,
		ScoreChange:  newScore - oldScore,
		ChangeReason: string(reason),
		ChangedBy:    actor,
		Details:      details,
	}
}

func breakdownDetails(b domain.Breakdown, manual int) map[string]any {
	return map[string]any{
		"computedTotal":    b.Total,
		"budget":           b.Budget,
		"authority":        b.Authority,
		"need":             b.Need,
		"timeline":         b.Timeline,
		"confidence":       b.Confidence,
		"manualAdjustment": manual,
	}
}

// persistence keeps typed errors and wraps anything else as a persistence failure.
func persistence(err error, op string, leadID uuid.UUID) error {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	return apperr.Persistence("storage operation failed", err).WithOp(op).With("leadId", leadID.String())
}

func toScoreResponse(s repository.LeadScoring) transport.LeadScoreResponse {
	return transport.LeadScoreResponse{
		ID:                  s.ID,
		LeadID:              s.LeadID,
		TotalScore:          s.TotalScore,
		BudgetScore:         s.BudgetScore,
		AuthorityScore:      s.AuthorityScore,
		NeedScore:           s.NeedScore,
		TimelineScore:       s.TimelineScore,
		QualificationStatus: s.QualificationStatus,
		ConfidenceLevel:     s.ConfidenceLevel,
		ManualAdjustment:    s.ManualAdjustment,
		Notes:               s.Notes,
		AssignedTo:          s.AssignedTo,
		Version:             s.Version,
		CreatedAt:           s.CreatedAt,
		UpdatedAt:           s.UpdatedAt,
	}
}
