package service

import (
	"context"
	"io"

	"github.com/shivamgupta214/outfox-health-assessment/internal/domain"
)

// NavigatorService backs the navigator API: CSV imports, provider search
// and plain-text answers for the chat socket.
type NavigatorService interface {
	ImportHospitalData(ctx context.Context, r io.Reader) (int, error)
	ImportRatings(ctx context.Context, r io.Reader) (int, error)
	SearchProviders(ctx context.Context, q domain.ProviderQuery) ([]domain.Provider, error)
	Answer(ctx context.Context, query string) string
}
