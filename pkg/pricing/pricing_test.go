package pricing

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Denizbukut/TCG-sub001/pkg/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type staticRate struct {
	rate decimal.Decimal
	err  error
}

func (s staticRate) CoinUSDRate(ctx context.Context) (decimal.Decimal, error) {
	return s.rate, s.err
}

func TestFloor(t *testing.T) {
	ctx := context.Background()

	t.Run("Uses Fallback Without A Source", func(t *testing.T) {
		calc := NewCalculator(nil, decimal.RequireFromString("1"), testLogger())

		// Rare level 2: 0.5 USD * 2 / 1 USD-per-coin = 1 coin = 100 cents.
		assert.Equal(t, int64(100), calc.Floor(ctx, models.RarityRare, 2))
	})

	t.Run("Scales With Rarity And Level", func(t *testing.T) {
		calc := NewCalculator(staticRate{rate: decimal.RequireFromString("1")}, decimal.RequireFromString("1"), testLogger())

		assert.Equal(t, int64(20), calc.Floor(ctx, models.RarityCommon, 1))
		assert.Equal(t, int64(200), calc.Floor(ctx, models.RarityEpic, 1))
		assert.Equal(t, int64(600), calc.Floor(ctx, models.RarityLegendary, 3))
	})

	t.Run("Unknown Rarity Falls Back To Common Floor", func(t *testing.T) {
		calc := NewCalculator(nil, decimal.RequireFromString("1"), testLogger())

		assert.Equal(t, int64(20), calc.Floor(ctx, models.Rarity("mythic"), 1))
	})

	t.Run("Rounds Up", func(t *testing.T) {
		// 0.2 USD at 1.40 USD-per-coin = 0.142857... coins = 14.2857 cents.
		calc := NewCalculator(nil, decimal.RequireFromString("1.40"), testLogger())

		assert.Equal(t, int64(15), calc.Floor(ctx, models.RarityCommon, 1))
	})

	t.Run("Feed Error Uses Fallback", func(t *testing.T) {
		calc := NewCalculator(staticRate{err: assert.AnError}, decimal.RequireFromString("1"), testLogger())

		assert.Equal(t, int64(100), calc.Floor(ctx, models.RarityRare, 2))
	})

	t.Run("Non Positive Feed Rate Uses Fallback", func(t *testing.T) {
		calc := NewCalculator(staticRate{rate: decimal.Zero}, decimal.RequireFromString("1"), testLogger())

		assert.Equal(t, int64(100), calc.Floor(ctx, models.RarityRare, 2))
	})
}

func TestHTTPRateSource(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"quote": {"symbol": "COIN", "usd": 1.37}}`))
		}))
		defer server.Close()

		rate, err := NewHTTPRateSource(server.URL).CoinUSDRate(context.Background())

		require.NoError(t, err)
		assert.True(t, rate.Equal(decimal.RequireFromString("1.37")))
	})

	t.Run("Upstream Error Payload", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"error": {"code": "THROTTLED", "description": "rate limited"}}`))
		}))
		defer server.Close()

		_, err := NewHTTPRateSource(server.URL).CoinUSDRate(context.Background())

		assert.ErrorContains(t, err, "rate limited")
	})

	t.Run("Non 200 Status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		_, err := NewHTTPRateSource(server.URL).CoinUSDRate(context.Background())

		assert.ErrorContains(t, err, "status 503")
	})

	t.Run("Zero Rate Rejected", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"quote": {"symbol": "COIN", "usd": 0}}`))
		}))
		defer server.Close()

		_, err := NewHTTPRateSource(server.URL).CoinUSDRate(context.Background())

		assert.ErrorContains(t, err, "non-positive")
	})
}
