package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Record types tag how much detail the prospect submitted.
const (
	RecordTypeQuick    = "quick_estimate"
	RecordTypeDetailed = "detailed_estimate"
)

// Lead is the read-only snapshot the evaluators score.
// Optional numeric attributes are pointers so "missing" differs from zero.
type Lead struct {
	ID         uuid.UUID
	RecordType string

	Email              string
	FirstName          string
	LastName           string
	Phone              string
	ExpertContactOptIn bool

	PropertyType     string
	Address          string
	City             string
	Surface          *float64
	Rooms            *int
	Bedrooms         *int
	Bathrooms        *int
	ConstructionYear *int
	Amenities        []string

	OwnershipStatus string
	ProjectType     string
	Timeline        string
	EstimatedValue  *float64

	CreatedAt time.Time
}

// HasEstimate reports whether a positive property value estimate is present.
func (l Lead) HasEstimate() bool {
	return l.EstimatedValue != nil && *l.EstimatedValue > 0
}

// HasPropertyDetails reports whether both surface and room count were supplied.
func (l Lead) HasPropertyDetails() bool {
	return l.Surface != nil && *l.Surface > 0 && l.Rooms != nil && *l.Rooms > 0
}

// IsDetailedSubmission reports whether the lead came from the detailed estimate form.
func (l Lead) IsDetailedSubmission() bool {
	return strings.EqualFold(strings.TrimSpace(l.RecordType), RecordTypeDetailed)
}

func normalizeKey(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
