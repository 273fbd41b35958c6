package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"lead_scoring_backend/platform/apperr"
)

const scoreColumns = `id, lead_id, total_score, budget_score, authority_score, need_score, timeline_score,
	qualification_status, confidence_level, manual_adjustment, notes, assigned_to, version, created_at, updated_at`

func scanScore(row pgx.Row) (LeadScoring, error) {
	var s LeadScoring
	err := row.Scan(
		&s.ID, &s.LeadID, &s.TotalScore, &s.BudgetScore, &s.AuthorityScore, &s.NeedScore, &s.TimelineScore,
		&s.QualificationStatus, &s.ConfidenceLevel, &s.ManualAdjustment, &s.Notes, &s.AssignedTo, &s.Version,
		&s.CreatedAt, &s.UpdatedAt,
	)
	return s, err
}

func (r *Repository) GetScore(ctx context.Context, leadID uuid.UUID) (LeadScoring, error) {
	s, err := scanScore(r.pool.QueryRow(ctx, `SELECT `+scoreColumns+` FROM lead_scoring WHERE lead_id = $1`, leadID))
	if errors.Is(err, pgx.ErrNoRows) {
		return LeadScoring{}, apperr.NotFound("lead score not found").With("leadId", leadID.String())
	}
	if err != nil {
		return LeadScoring{}, fmt.Errorf("get lead score: %w", err)
	}
	return s, nil
}

// SaveScore commits the score row and its optional history row together.
// A version mismatch, or a concurrent first insert, returns a conflict error.
func (r *Repository) SaveScore(ctx context.Context, params SaveScoreParams) (LeadScoring, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return LeadScoring{}, fmt.Errorf("begin score tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	s := params.Score
	var row pgx.Row
	if params.ExpectedVersion == 0 {
		row = tx.QueryRow(ctx, `
			INSERT INTO lead_scoring (
				lead_id, total_score, budget_score, authority_score, need_score, timeline_score,
				qualification_status, confidence_level, manual_adjustment, notes, assigned_to
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			ON CONFLICT (lead_id) DO NOTHING
			RETURNING `+scoreColumns,
			s.LeadID, s.TotalScore, s.BudgetScore, s.AuthorityScore, s.NeedScore, s.TimelineScore,
			s.QualificationStatus, s.ConfidenceLevel, s.ManualAdjustment, s.Notes, s.AssignedTo,
		)
	} else {
		row = tx.QueryRow(ctx, `
			UPDATE lead_scoring SET
				total_score = $2, budget_score = $3, authority_score = $4, need_score = $5, timeline_score = $6,
				qualification_status = $7, confidence_level = $8, manual_adjustment = $9, notes = $10, assigned_to = $11,
				version = version + 1, updated_at = now()
			WHERE lead_id = $1 AND version = $12
			RETURNING `+scoreColumns,
			s.LeadID, s.TotalScore, s.BudgetScore, s.AuthorityScore, s.NeedScore, s.TimelineScore,
			s.QualificationStatus, s.ConfidenceLevel, s.ManualAdjustment, s.Notes, s.AssignedTo,
			params.ExpectedVersion,
		)
	}

	saved, err := scanScore(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return LeadScoring{}, apperr.Conflict("lead score was modified concurrently").
			With("leadId", s.LeadID.String()).
			With("expectedVersion", params.ExpectedVersion)
	}
	if err != nil {
		return LeadScoring{}, fmt.Errorf("save lead score: %w", err)
	}

	if h := params.History; h != nil {
		details := h.Details
		if details == nil {
			details = map[string]any{}
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO lead_score_history (
				operation_id, lead_id, old_score, new_score, score_change, change_reason, changed_by, details
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (operation_id) DO NOTHING
		`, h.OperationID, h.LeadID, h.OldScore, h.NewScore, h.ScoreChange, h.ChangeReason, h.ChangedBy, details)
		if err != nil {
			return LeadScoring{}, fmt.Errorf("append score history: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return LeadScoring{}, fmt.Errorf("commit score tx: %w", err)
	}
	return saved, nil
}

// ListHistory returns the lead's history in write order.
func (r *Repository) ListHistory(ctx context.Context, leadID uuid.UUID) ([]HistoryEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, operation_id, lead_id, old_score, new_score, score_change, change_reason, changed_by, details, created_at
		FROM lead_score_history
		WHERE lead_id = $1
		ORDER BY seq ASC
	`, leadID)
	if err != nil {
		return nil, fmt.Errorf("list score history: %w", err)
	}
	defer rows.Close()

	entries := make([]HistoryEntry, 0)
	for rows.Next() {
		var h HistoryEntry
		if err := rows.Scan(
			&h.ID, &h.OperationID, &h.LeadID, &h.OldScore, &h.NewScore, &h.ScoreChange,
			&h.ChangeReason, &h.ChangedBy, &h.Details, &h.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan score history: %w", err)
		}
		entries = append(entries, h)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return entries, nil
}

// ListScores returns scores last updated inside the filter window.
func (r *Repository) ListScores(ctx context.Context, filter ScoreFilter) ([]LeadScoring, error) {
	var status, assignedTo *string
	if filter.Status != "" {
		status = &filter.Status
	}
	if filter.AssignedTo != "" {
		assignedTo = &filter.AssignedTo
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+scoreColumns+`
		FROM lead_scoring
		WHERE updated_at >= $1 AND updated_at <= $2
			AND ($3::text IS NULL OR qualification_status = $3)
			AND ($4::text IS NULL OR assigned_to = $4)
		ORDER BY updated_at DESC
	`, filter.From, filter.To, status, assignedTo)
	if err != nil {
		return nil, fmt.Errorf("list lead scores: %w", err)
	}
	defer rows.Close()

	scores := make([]LeadScoring, 0)
	for rows.Next() {
		s, err := scanScore(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lead score: %w", err)
		}
		scores = append(scores, s)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return scores, nil
}
