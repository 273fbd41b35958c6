package domain

// QualificationStatus is the band a total score falls into.
type QualificationStatus string

const (
	StatusUnqualified QualificationStatus = "unqualified"
	StatusToReview    QualificationStatus = "to_review"
	StatusQualified   QualificationStatus = "qualified"
	StatusHotLead     QualificationStatus = "hot_lead"
)

// Band is a closed score interval mapped to a status.
type Band struct {
	Status QualificationStatus
	Min    int
	Max    int
}

// Bands lists the qualification bands in ascending order. They partition [0,100].
var Bands = []Band{
	{Status: StatusUnqualified, Min: 0, Max: 25},
	{Status: StatusToReview, Min: 26, Max: 50},
	{Status: StatusQualified, Min: 51, Max: 75},
	{Status: StatusHotLead, Min: 76, Max: 100},
}

// Classify maps a total score to its band. Out-of-range totals are clamped first.
func Classify(total int) QualificationStatus {
	total = ClampTotal(total)
	for _, b := range Bands {
		if total <= b.Max {
			return b.Status
		}
	}
	return StatusHotLead
}

// Rank returns the ascending position of a status, or -1 when unknown.
func (s QualificationStatus) Rank() int {
	for i, b := range Bands {
		if b.Status == s {
			return i
		}
	}
	return -1
}

// Valid reports whether s is a known status.
func (s QualificationStatus) Valid() bool {
	return s.Rank() >= 0
}
