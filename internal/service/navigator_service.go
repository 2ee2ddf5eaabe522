package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/shivamgupta214/outfox-health-assessment/internal/cache"
	"github.com/shivamgupta214/outfox-health-assessment/internal/domain"
	"github.com/shivamgupta214/outfox-health-assessment/internal/repository"
	"github.com/shivamgupta214/outfox-health-assessment/pkg/log"
)

const (
	// IrrelevantReply answers queries that name no procedure we hold data for.
	IrrelevantReply = "I can only help with hospital pricing and quality information. " +
		"Please ask about medical procedures, costs, or hospital ratings."

	answerLimit = 3
	// Radius applied when a chat query mentions a ZIP code.
	answerRadiusKM = 40.0
)

var ErrInvalidQuery = errors.New("invalid provider query")

var zipPattern = regexp.MustCompile(`\b\d{5}\b`)

// Words dropped before a chat query is matched against DRG definitions.
var stopWords = map[string]bool{
	"a": true, "an": true, "the": true, "for": true, "of": true, "in": true, "near": true,
	"me": true, "my": true, "to": true, "and": true, "or": true, "with": true, "is": true,
	"are": true, "what": true, "what's": true, "whats": true, "which": true, "who": true,
	"where": true, "show": true, "find": true, "list": true, "give": true, "has": true,
	"have": true, "best": true, "cheapest": true, "cheap": true, "lowest": true,
	"highest": true, "top": true, "rated": true, "rating": true, "ratings": true,
	"cost": true, "costs": true, "price": true, "prices": true, "hospital": true,
	"hospitals": true, "provider": true, "providers": true, "zip": true, "code": true,
	"please": true, "i": true, "need": true, "about": true, "on": true, "at": true,
}

type navigatorService struct {
	repo     repository.HospitalRepository
	cache    cache.ProviderCache
	cacheTTL time.Duration
	sf       singleflight.Group
}

// NewNavigatorService creates a NavigatorService backed by repo. A nil
// providerCache disables search caching.
func NewNavigatorService(repo repository.HospitalRepository, providerCache cache.ProviderCache, cacheTTL time.Duration) NavigatorService {
	return &navigatorService{
		repo:     repo,
		cache:    providerCache,
		cacheTTL: cacheTTL,
	}
}

func (s *navigatorService) ImportHospitalData(ctx context.Context, r io.Reader) (int, error) {
	rows, err := parseHospitalData(r)
	if err != nil {
		return 0, err
	}
	n, err := s.repo.InsertHospitalData(ctx, rows)
	if err != nil {
		return 0, fmt.Errorf("failed to store hospital data: %w", err)
	}
	l := log.Ctx(ctx)
	l.Info().Int(log.FieldRows, n).Msg("hospital data imported")
	s.invalidate(ctx)
	return n, nil
}

func (s *navigatorService) ImportRatings(ctx context.Context, r io.Reader) (int, error) {
	rows, err := parseRatings(r)
	if err != nil {
		return 0, err
	}
	n, err := s.repo.UpsertRatings(ctx, rows)
	if err != nil {
		return 0, fmt.Errorf("failed to store ratings: %w", err)
	}
	l := log.Ctx(ctx)
	l.Info().Int(log.FieldRows, n).Msg("star ratings imported")
	s.invalidate(ctx)
	return n, nil
}

// SearchProviders matches the DRG definition and restricts results to ZIP
// codes within the radius. Each provider appears once, at its cheapest row.
func (s *navigatorService) SearchProviders(ctx context.Context, q domain.ProviderQuery) ([]domain.Provider, error) {
	q.ZipCode = strings.TrimSpace(q.ZipCode)
	q.MSDRG = strings.TrimSpace(q.MSDRG)
	if q.ZipCode == "" || q.MSDRG == "" || q.RadiusKM <= 0 {
		return nil, ErrInvalidQuery
	}

	result, err, _ := s.sf.Do(cache.Key(q), func() (interface{}, error) {
		return s.searchProviders(ctx, q)
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Provider), nil
}

func (s *navigatorService) searchProviders(ctx context.Context, q domain.ProviderQuery) ([]domain.Provider, error) {
	l := log.Ctx(ctx)

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, q)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			l.Warn().Err(err).Msg("cache get error")
		}
	}

	zips := nearbyZipCodes(q.ZipCode, q.RadiusKM)
	l.Debug().
		Str(log.FieldZipCode, q.ZipCode).
		Float64(log.FieldRadiusKM, q.RadiusKM).
		Str(log.FieldMSDRG, q.MSDRG).
		Strs("zips", zips).
		Msg("searching providers")

	providers, err := s.repo.FindProviders(ctx, q.MSDRG, zips)
	if err != nil {
		return nil, fmt.Errorf("failed to find providers: %w", err)
	}
	providers = uniqueProviders(providers)

	if s.cache != nil {
		if err := s.cache.Set(ctx, q, providers, s.cacheTTL); err != nil {
			l.Warn().Err(err).Msg("cache set error")
		}
	}
	return providers, nil
}

// invalidate drops cached searches after new rows land.
func (s *navigatorService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		l := log.Ctx(ctx)
		l.Warn().Err(err).Msg("cache invalidate error")
	}
}

// Answer replies to a free-text chat query. Failures are reported in the
// reply itself since the socket carries plain text only.
func (s *navigatorService) Answer(ctx context.Context, query string) string {
	l := log.Ctx(ctx)
	query = strings.TrimSpace(query)
	terms, zip := queryTerms(query)
	if len(terms) == 0 {
		return IrrelevantReply
	}

	var zips []string
	if zip != "" {
		zips = nearbyZipCodes(zip, answerRadiusKM)
	}

	// Full phrase first, then single words.
	candidates := []string{strings.Join(terms, " ")}
	if len(terms) > 1 {
		candidates = append(candidates, terms...)
	}

	for _, drg := range candidates {
		providers, err := s.repo.FindProviders(ctx, drg, zips)
		if err != nil {
			l.Error().Err(err).Str("query", query).Msg("failed to answer query")
			return "Error: " + err.Error()
		}
		providers = uniqueProviders(providers)
		if len(providers) > 0 {
			return formatAnswer(query, providers)
		}
	}
	return IrrelevantReply
}

// queryTerms lowercases query, pulls out the first ZIP code and drops stop
// words and short tokens.
func queryTerms(query string) ([]string, string) {
	zip := zipPattern.FindString(query)
	var terms []string
	for _, word := range strings.Fields(strings.ToLower(query)) {
		word = strings.Trim(word, `.,;:!?"'()`)
		if len(word) < 3 || stopWords[word] || zipPattern.MatchString(word) {
			continue
		}
		terms = append(terms, word)
	}
	return terms, zip
}

func formatAnswer(query string, providers []domain.Provider) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Found %d providers for %q.", len(providers), query)
	for i, p := range providers {
		if i == answerLimit {
			break
		}
		fmt.Fprintf(&b, "\n%d. %s (%s, %s) - %s", i+1, p.ProviderName, p.ProviderCity, p.ProviderState, p.MSDRGDefinition)
		if p.AverageCoveredCharges != nil {
			fmt.Fprintf(&b, ", covered charges $%.2f", *p.AverageCoveredCharges)
		}
		if p.OverallRating != nil {
			fmt.Fprintf(&b, ", rating %d/10", *p.OverallRating)
		}
	}
	return b.String()
}

// uniqueProviders keeps the first row per provider. Input is sorted by
// covered charges so that row is the cheapest.
func uniqueProviders(in []domain.Provider) []domain.Provider {
	seen := make(map[int]bool, len(in))
	out := make([]domain.Provider, 0, len(in))
	for _, p := range in {
		if seen[p.ProviderID] {
			continue
		}
		seen[p.ProviderID] = true
		out = append(out, p)
	}
	return out
}
