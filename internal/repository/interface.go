package repository

import (
	"context"

	"github.com/shivamgupta214/outfox-health-assessment/internal/domain"
)

// HospitalRepository stores charge rows and ratings and answers provider
// lookups.
type HospitalRepository interface {
	InsertHospitalData(ctx context.Context, rows []domain.HospitalData) (int, error)
	UpsertRatings(ctx context.Context, rows []domain.StarRating) (int, error)
	// FindProviders returns rows whose DRG definition contains drg
	// (case-insensitive), restricted to zips when non-empty, cheapest
	// covered charges first. A provider may appear once per matching DRG.
	FindProviders(ctx context.Context, drg string, zips []string) ([]domain.Provider, error)
}
