package domain

import "github.com/google/uuid"

func floatPtr(v float64) *float64 { return &v }

func intPtr(v int) *int { return &v }

func referenceLead() Lead {
	return Lead{
		ID:              uuid.MustParse("5b0e7c9e-3d7f-4f44-9a55-2f3b8f1e6a10"),
		RecordType:      RecordTypeQuick,
		Email:           "claire.martin@example.fr",
		FirstName:       "Claire",
		LastName:        "Martin",
		Phone:           "06 12 34 56 78",
		PropertyType:    "appartement",
		City:            "Lyon",
		OwnershipStatus: "proprietaire_unique",
		ProjectType:     "vente_urgente",
		Timeline:        "immediate",
		EstimatedValue:  floatPtr(320000),
	}
}
