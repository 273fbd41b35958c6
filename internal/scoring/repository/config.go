package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"lead_scoring_backend/internal/scoring/domain"
	"lead_scoring_backend/platform/apperr"
)

const configColumns = `dimension, weight, is_active, rules, thresholds, bonus_rules, updated_by, updated_at`

func (r *Repository) ListConfigs(ctx context.Context) ([]domain.DimensionConfig, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+configColumns+` FROM scoring_config ORDER BY dimension`)
	if err != nil {
		return nil, fmt.Errorf("list scoring config: %w", err)
	}
	defer rows.Close()

	configs := make([]domain.DimensionConfig, 0, len(domain.Dimensions))
	for rows.Next() {
		cfg, err := scanConfig(rows)
		if err != nil {
			return nil, err
		}
		configs = append(configs, cfg)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return configs, nil
}

func (r *Repository) UpsertConfig(ctx context.Context, cfg domain.DimensionConfig) (domain.DimensionConfig, error) {
	rules, thresholds, bonuses, err := encodeConfig(cfg)
	if err != nil {
		return domain.DimensionConfig{}, err
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO scoring_config (dimension, weight, is_active, rules, thresholds, bonus_rules, updated_by, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now())
		ON CONFLICT (dimension) DO UPDATE SET
			weight = EXCLUDED.weight,
			is_active = EXCLUDED.is_active,
			rules = EXCLUDED.rules,
			thresholds = EXCLUDED.thresholds,
			bonus_rules = EXCLUDED.bonus_rules,
			updated_by = EXCLUDED.updated_by,
			updated_at = now()
		RETURNING `+configColumns,
		string(cfg.Dimension), cfg.Weight, cfg.IsActive, rules, thresholds, bonuses, actorOrSystem(cfg.UpdatedBy),
	)
	return scanConfig(row)
}

func (r *Repository) InsertDefaults(ctx context.Context, configs []domain.DimensionConfig) (int, error) {
	batch := &pgx.Batch{}
	for _, cfg := range configs {
		rules, thresholds, bonuses, err := encodeConfig(cfg)
		if err != nil {
			return 0, err
		}
		batch.Queue(`
			INSERT INTO scoring_config (dimension, weight, is_active, rules, thresholds, bonus_rules, updated_by)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (dimension) DO NOTHING
		`, string(cfg.Dimension), cfg.Weight, cfg.IsActive, rules, thresholds, bonuses, domain.SystemActor)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	inserted := 0
	for range configs {
		tag, err := results.Exec()
		if err != nil {
			return inserted, fmt.Errorf("seed scoring config: %w", err)
		}
		inserted += int(tag.RowsAffected())
	}
	return inserted, nil
}

func scanConfig(row pgx.Row) (domain.DimensionConfig, error) {
	var (
		cfg        domain.DimensionConfig
		dimension  string
		rulesJSON  []byte
		thresholds []byte
		bonuses    []byte
	)
	if err := row.Scan(&dimension, &cfg.Weight, &cfg.IsActive, &rulesJSON, &thresholds, &bonuses, &cfg.UpdatedBy, &cfg.UpdatedAt); err != nil {
		return domain.DimensionConfig{}, fmt.Errorf("scan scoring config: %w", err)
	}
	cfg.Dimension = domain.Dimension(dimension)

	var spec domain.RuleTableSpec
	if err := json.Unmarshal(rulesJSON, &spec); err != nil {
		return domain.DimensionConfig{}, malformed(dimension, err)
	}
	table, err := spec.Decode()
	if err != nil {
		return domain.DimensionConfig{}, malformed(dimension, err)
	}
	cfg.Rules = table

	if len(thresholds) > 0 {
		if err := json.Unmarshal(thresholds, &cfg.Thresholds); err != nil {
			return domain.DimensionConfig{}, malformed(dimension, err)
		}
	}
	if len(bonuses) > 0 {
		if err := json.Unmarshal(bonuses, &cfg.Bonuses); err != nil {
			return domain.DimensionConfig{}, malformed(dimension, err)
		}
	}
	return cfg, nil
}

func encodeConfig(cfg domain.DimensionConfig) (rules, thresholds, bonuses []byte, err error) {
	if rules, err = json.Marshal(domain.EncodeRuleTable(cfg.Rules)); err != nil {
		return nil, nil, nil, fmt.Errorf("encode rules: %w", err)
	}
	if thresholds, err = json.Marshal(cfg.Thresholds); err != nil {
		return nil, nil, nil, fmt.Errorf("encode thresholds: %w", err)
	}
	bonusMap := cfg.Bonuses
	if bonusMap == nil {
		bonusMap = map[string]int{}
	}
	if bonuses, err = json.Marshal(bonusMap); err != nil {
		return nil, nil, nil, fmt.Errorf("encode bonus rules: %w", err)
	}
	return rules, thresholds, bonuses, nil
}

func malformed(dimension string, err error) error {
	return apperr.Wrap(apperr.KindValidation, "malformed scoring configuration", err).With("dimension", dimension)
}

func actorOrSystem(actor string) string {
	if actor == "" {
		return domain.SystemActor
	}
	return actor
}
