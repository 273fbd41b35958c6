package domain

import (
	"math"
	"strings"
)

// ConfidenceFieldCount is the number of lead fields inspected by Confidence.
const ConfidenceFieldCount = 15

// Confidence returns the share of essential and optional fields populated, in [0,100].
// It is advisory and never affects qualification.
func Confidence(lead Lead) int {
	populated := 0
	for _, ok := range []bool{
		// essential
		filled(lead.Email),
		filled(lead.FirstName),
		filled(lead.LastName),
		filled(lead.PropertyType),
		filled(lead.Address),
		filled(lead.City),
		lead.Surface != nil,
		lead.Rooms != nil,
		// optional
		filled(lead.Phone),
		lead.Bedrooms != nil,
		lead.Bathrooms != nil,
		lead.ConstructionYear != nil,
		filled(lead.OwnershipStatus),
		filled(lead.ProjectType),
		filled(lead.Timeline),
	} {
		if ok {
			populated++
		}
	}
	return int(math.Round(float64(populated) / ConfidenceFieldCount * 100))
}

func filled(value string) bool {
	return strings.TrimSpace(value) != ""
}
