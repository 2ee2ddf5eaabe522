package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shivamgupta214/outfox-health-assessment/internal/domain"
)

// ProviderClient queries GET /providers.
type ProviderClient struct {
	baseURL    string
	httpClient *http.Client
}

type providersResponse struct {
	Status string             `json:"status"`
	Data   *[]domain.Provider `json:"data"`
}

func NewProviderClient(baseURL string, timeout time.Duration) *ProviderClient {
	return &ProviderClient{
		baseURL:    baseURL,
		httpClient: newHTTPClient(timeout),
	}
}

// Search runs one provider search. All three fields are required.
func (c *ProviderClient) Search(ctx context.Context, q domain.ProviderQuery) ([]domain.Provider, error) {
	if strings.TrimSpace(q.ZipCode) == "" || q.RadiusKM <= 0 || strings.TrimSpace(q.MSDRG) == "" {
		return nil, ErrMissingSearchField
	}

	params := url.Values{}
	params.Set("zip_code", strings.TrimSpace(q.ZipCode))
	params.Set("radius_km", strconv.FormatFloat(q.RadiusKM, 'f', -1, 64))
	params.Set("ms_drg", strings.TrimSpace(q.MSDRG))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		joinURL(c.baseURL, "/providers")+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch providers: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp)
	}

	var out providersResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnexpectedResponse, err)
	}
	if out.Data == nil {
		return nil, ErrUnexpectedResponse
	}
	return *out.Data, nil
}

// RenderProviders formats a search outcome the way the providers screen
// shows it.
func RenderProviders(providers []domain.Provider, err error) string {
	switch {
	case errors.Is(err, ErrMissingSearchField):
		return MsgFillAllFields
	case errors.Is(err, ErrUnexpectedResponse):
		return MsgUnexpectedFormat
	case err != nil:
		return providersErrorPrefix + err.Error()
	case len(providers) == 0:
		return MsgNoProviders
	}

	var b strings.Builder
	for i, p := range providers {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s\n", p.ProviderName)
		fmt.Fprintf(&b, "  %s\n", p.MSDRGDefinition)
		fmt.Fprintf(&b, "  Location: %s, %s %s\n", p.ProviderCity, p.ProviderState, p.ProviderZipCode)
		fmt.Fprintf(&b, "  Avg. Covered Charges: %s\n", money(p.AverageCoveredCharges))
		fmt.Fprintf(&b, "  Avg. Total Payments: %s\n", money(p.AverageTotalPayments))
		fmt.Fprintf(&b, "  Star Rating: %s/10\n", intOrNA(p.OverallRating))
		fmt.Fprintf(&b, "  Total Discharges: %s\n", intOrNA(p.TotalDischarges))
	}
	return b.String()
}

func money(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("$%.2f", *v)
}

func intOrNA(v *int) string {
	if v == nil || *v == 0 {
		return "N/A"
	}
	return strconv.Itoa(*v)
}
