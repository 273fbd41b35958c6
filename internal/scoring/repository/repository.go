// Package repository provides pgx-backed persistence for lead scoring.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"lead_scoring_backend/internal/scoring/domain"
	"lead_scoring_backend/platform/apperr"
)

const leadNotFoundMsg = "lead not found"

// Repository implements ScoringRepository on PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new scoring repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) GetLead(ctx context.Context, id uuid.UUID) (domain.Lead, error) {
	var lead domain.Lead
	err := r.pool.QueryRow(ctx, `
		SELECT id, record_type, email, first_name, last_name, phone, expert_contact_opt_in,
			property_type, address, city, surface::float8, rooms, bedrooms, bathrooms, construction_year, amenities,
			ownership_status, project_type, timeline, estimated_value::float8, created_at
		FROM leads
		WHERE id = $1 AND deleted_at IS NULL
	`, id).Scan(
		&lead.ID, &lead.RecordType, &lead.Email, &lead.FirstName, &lead.LastName, &lead.Phone, &lead.ExpertContactOptIn,
		&lead.PropertyType, &lead.Address, &lead.City, &lead.Surface, &lead.Rooms, &lead.Bedrooms, &lead.Bathrooms,
		&lead.ConstructionYear, &lead.Amenities,
		&lead.OwnershipStatus, &lead.ProjectType, &lead.Timeline, &lead.EstimatedValue, &lead.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Lead{}, apperr.NotFound(leadNotFoundMsg).With("leadId", id.String())
	}
	if err != nil {
		return domain.Lead{}, fmt.Errorf("get lead: %w", err)
	}
	return lead, nil
}

func (r *Repository) ListLeadIDs(ctx context.Context, after uuid.UUID, limit int) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id FROM leads
		WHERE deleted_at IS NULL AND id > $1
		ORDER BY id
		LIMIT $2
	`, after, limit)
	if err != nil {
		return nil, fmt.Errorf("list lead ids: %w", err)
	}
	defer rows.Close()

	ids := make([]uuid.UUID, 0, limit)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan lead id: %w", err)
		}
		ids = append(ids, id)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return ids, nil
}
