package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shivamgupta214/outfox-health-assessment/internal/domain"
)

var ErrCacheMiss = errors.New("cache miss")

// Key identifies a search independent of letter case and padding.
func Key(q domain.ProviderQuery) string {
	return fmt.Sprintf("providers:%s:%s:%s",
		strings.TrimSpace(q.ZipCode),
		strconv.FormatFloat(q.RadiusKM, 'f', -1, 64),
		strings.ToLower(strings.TrimSpace(q.MSDRG)))
}

// ProviderCache caches provider search results.
type ProviderCache interface {
	Get(ctx context.Context, q domain.ProviderQuery) ([]domain.Provider, error)
	Set(ctx context.Context, q domain.ProviderQuery, providers []domain.Provider, ttl time.Duration) error
	// Invalidate drops every cached search, used after an import.
	Invalidate(ctx context.Context) error
	Close() error
}
