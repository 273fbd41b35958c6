package domain

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"lead_scoring_backend/platform/apperr"
)

// Fallback sub-scores used when a lead attribute is missing or unmapped.
const (
	DefaultBudgetScore    = 8
	DefaultAuthorityScore = 5
	DefaultNeedScore      = 8
	DefaultTimelineScore  = 10
)

// Timeline categories that earn the near_term bonus.
var nearTermTimelines = []string{"immediate", "3_mois"}

//go:embed rubric.yaml
var defaultRubric []byte

// DefaultRubric returns the embedded rubric document.
func DefaultRubric() []byte {
	return append([]byte(nil), defaultRubric...)
}

type rubricDocument struct {
	Dimensions []rubricEntry `yaml:"dimensions"`
}

type rubricEntry struct {
	Dimension  string         `yaml:"dimension"`
	Weight     *int           `yaml:"weight"`
	Active     *bool          `yaml:"active"`
	Rules      RuleTableSpec  `yaml:"rules"`
	Thresholds Thresholds     `yaml:"thresholds"`
	Bonuses    map[string]int `yaml:"bonuses"`
}

// ParseRubric decodes and validates a rubric document.
func ParseRubric(data []byte) (ConfigSet, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var doc rubricDocument
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, apperr.Wrap(apperr.KindValidation, "invalid rubric document", err)
	}
	if len(doc.Dimensions) == 0 {
		return nil, apperr.Validation("rubric defines no dimensions")
	}

	configs := make([]DimensionConfig, 0, len(doc.Dimensions))
	for _, entry := range doc.Dimensions {
		dim, ok := ParseDimension(entry.Dimension)
		if !ok {
			return nil, apperr.Validation(fmt.Sprintf("unknown dimension %q", entry.Dimension)).With("dimension", entry.Dimension)
		}
		rules, err := entry.Rules.Decode()
		if err != nil {
			return nil, apperr.Wrap(apperr.KindValidation, "invalid rules", err).With("dimension", string(dim))
		}
		weight := DefaultWeight
		if entry.Weight != nil {
			weight = *entry.Weight
		}
		active := true
		if entry.Active != nil {
			active = *entry.Active
		}
		configs = append(configs, DimensionConfig{
			Dimension:  dim,
			Weight:     weight,
			IsActive:   active,
			Rules:      rules,
			Thresholds: entry.Thresholds,
			Bonuses:    entry.Bonuses,
		})
	}

	set, err := NewConfigSet(configs)
	if err != nil {
		return nil, err
	}
	if err := set.Validate(); err != nil {
		return nil, err
	}
	return set, nil
}

// DefaultConfigSet parses the embedded rubric.
func DefaultConfigSet() ConfigSet {
	set, err := ParseRubric(defaultRubric)
	if err != nil {
		panic(fmt.Sprintf("embedded rubric is invalid: %v", err))
	}
	return set
}
