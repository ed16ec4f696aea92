package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

// coinQuoteResponse is the shape of the upstream quote endpoint.
type coinQuoteResponse struct {
	Quote struct {
		Symbol string  `json:"symbol"`
		USD    float64 `json:"usd"`
	} `json:"quote"`
	Error *struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// HTTPRateSource fetches the USD-per-coin rate from an external quote API.
type HTTPRateSource struct {
	apiURL     string
	httpClient *http.Client
}

// NewHTTPRateSource creates a rate source against the given quote endpoint.
func NewHTTPRateSource(apiURL string) *HTTPRateSource {
	return &HTTPRateSource{
		apiURL: apiURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// CoinUSDRate fetches the current rate. Callers treat any error as a signal to
// fall back to the configured rate.
func (s *HTTPRateSource) CoinUSDRate(ctx context.Context) (decimal.Decimal, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.apiURL, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to build rate request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to fetch rate: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("rate feed returned status %d", resp.StatusCode)
	}

	var quote coinQuoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&quote); err != nil {
		return decimal.Zero, fmt.Errorf("failed to decode rate response: %w", err)
	}
	if quote.Error != nil {
		return decimal.Zero, fmt.Errorf("rate feed error: %s", quote.Error.Description)
	}

	rate := decimal.NewFromFloat(quote.Quote.USD)
	if !rate.IsPositive() {
		return decimal.Zero, fmt.Errorf("rate feed returned non-positive rate %s", rate)
	}

	return rate, nil
}
