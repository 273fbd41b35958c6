package service

import (
	"context"
	"fmt"
	"os"

	"lead_scoring_backend/internal/events"
	"lead_scoring_backend/internal/scoring/domain"
	"lead_scoring_backend/internal/scoring/transport"
	"lead_scoring_backend/platform/apperr"
)

// GetConfig returns every configured dimension.
func (s *Service) GetConfig(ctx context.Context) (*transport.ScoringConfigResponse, error) {
	configs, err := s.repo.ListConfigs(ctx)
	if err != nil {
		return nil, configErr(err, "list scoring config")
	}
	set, err := domain.NewConfigSet(configs)
	if err != nil {
		return nil, err
	}

	resp := &transport.ScoringConfigResponse{Dimensions: make([]transport.DimensionConfigResponse, 0, len(set))}
	for _, cfg := range set.List() {
		resp.Dimensions = append(resp.Dimensions, toDimensionResponse(cfg))
	}
	return resp, nil
}

// UpdateDimensionConfig patches one dimension after validating the resulting configuration set.
func (s *Service) UpdateDimensionConfig(ctx context.Context, dimension string, req transport.UpdateDimensionConfigRequest, actor string) (*transport.DimensionConfigResponse, error) {
	dim, ok := domain.ParseDimension(dimension)
	if !ok {
		return nil, apperr.Validation("unknown dimension").With("dimension", dimension)
	}

	configs, err := s.repo.ListConfigs(ctx)
	if err != nil {
		return nil, configErr(err, "list scoring config")
	}
	set, err := domain.NewConfigSet(configs)
	if err != nil {
		return nil, err
	}

	cfg, exists := set[dim]
	if !exists {
		cfg = domain.DefaultConfigSet()[dim]
	}
	if err := applyPatch(&cfg, req); err != nil {
		return nil, err
	}
	cfg.UpdatedBy = actor

	next := set.With(cfg)
	if err := next.Validate(); err != nil {
		return nil, err
	}
	if len(next.Active()) == 0 {
		return nil, apperr.Validation("at least one dimension must remain active").With("dimension", string(dim))
	}

	saved, err := s.repo.UpsertConfig(ctx, cfg)
	if err != nil {
		return nil, configErr(err, "save scoring config")
	}

	s.log.WithContext(ctx).Info("scoring config updated", "dimension", string(dim), "updated_by", actor)
	if s.eventBus != nil {
		s.eventBus.Publish(ctx, events.ScoringConfigUpdated{
			BaseEvent: events.NewBaseEvent(),
			Dimension: string(dim),
			UpdatedBy: actor,
		})
	}

	resp := toDimensionResponse(saved)
	return &resp, nil
}

// SeedDefaults stores the default rubric for every dimension not yet configured.
func (s *Service) SeedDefaults(ctx context.Context) (int, error) {
	set, err := s.rubric()
	if err != nil {
		return 0, err
	}
	inserted, err := s.repo.InsertDefaults(ctx, set.List())
	if err != nil {
		return 0, configErr(err, "seed scoring config")
	}
	if inserted > 0 {
		s.log.Info("scoring config seeded", "dimensions", inserted)
	}
	return inserted, nil
}

func (s *Service) rubric() (domain.ConfigSet, error) {
	if s.opts.RubricPath == "" {
		return domain.DefaultConfigSet(), nil
	}
	data, err := os.ReadFile(s.opts.RubricPath)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindConfiguration, "read rubric file", err).With("path", s.opts.RubricPath)
	}
	return domain.ParseRubric(data)
}

// loadConfigSet reads and validates the configuration snapshot used for one scoring pass.
func (s *Service) loadConfigSet(ctx context.Context) (domain.ConfigSet, error) {
	configs, err := s.repo.ListConfigs(ctx)
	if err != nil {
		return nil, configErr(err, "list scoring config")
	}
	if len(configs) == 0 {
		return nil, apperr.Configuration("scoring configuration is empty")
	}
	set, err := domain.NewConfigSet(configs)
	if err != nil {
		return nil, err
	}
	if err := set.Validate(); err != nil {
		return nil, err
	}
	return set, nil
}

func applyPatch(cfg *domain.DimensionConfig, req transport.UpdateDimensionConfigRequest) error {
	if req.Weight != nil {
		cfg.Weight = *req.Weight
	}
	if req.IsActive != nil {
		cfg.IsActive = *req.IsActive
	}
	if req.Rules != nil {
		spec := domain.RuleTableSpec{Type: domain.RuleKind(req.Rules.Type), Values: req.Rules.Values}
		for _, r := range req.Rules.Ranges {
			spec.Ranges = append(spec.Ranges, domain.RangeRule{Min: r.Min, Max: r.Max, Score: r.Score})
		}
		table, err := spec.Decode()
		if err != nil {
			return apperr.Validation(fmt.Sprintf("invalid rules: %v", err)).With("dimension", string(cfg.Dimension))
		}
		cfg.Rules = table
	}
	if req.Thresholds != nil {
		cfg.Thresholds = domain.Thresholds{Qualified: req.Thresholds.Qualified, HotLead: req.Thresholds.HotLead}
	}
	if req.Bonuses != nil {
		cfg.Bonuses = req.Bonuses
	}
	return nil
}

func toDimensionResponse(cfg domain.DimensionConfig) transport.DimensionConfigResponse {
	spec := domain.EncodeRuleTable(cfg.Rules)
	rules := transport.RuleTableDTO{Type: string(spec.Type), Values: spec.Values}
	for _, r := range spec.Ranges {
		rules.Ranges = append(rules.Ranges, transport.RangeRuleDTO{Min: r.Min, Max: r.Max, Score: r.Score})
	}

	bonuses := cfg.Bonuses
	if bonuses == nil {
		bonuses = map[string]int{}
	}
	resp := transport.DimensionConfigResponse{
		Dimension:  string(cfg.Dimension),
		Weight:     cfg.Weight,
		IsActive:   cfg.IsActive,
		Rules:      rules,
		Thresholds: transport.ThresholdsDTO{Qualified: cfg.Thresholds.Qualified, HotLead: cfg.Thresholds.HotLead},
		Bonuses:    bonuses,
		UpdatedBy:  cfg.UpdatedBy,
	}
	if !cfg.UpdatedAt.IsZero() {
		updatedAt := cfg.UpdatedAt
		resp.UpdatedAt = &updatedAt
	}
	return resp
}

func configErr(err error, op string) error {
	if apperr.GetKind(err) != apperr.KindUnknown {
		return err
	}
	return apperr.Persistence("storage operation failed", err).WithOp(op)
}
