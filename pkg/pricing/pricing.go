// Package pricing computes listing price floors. Floors are defined in USD per
// rarity tier and level, then converted into coin cents with the current
// USD-per-coin exchange rate. When the rate feed is unavailable the
// calculator degrades to a configured fallback rate instead of failing the
// request.
package pricing

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/Denizbukut/TCG-sub001/pkg/models"
)

// RateSource provides the current USD value of one coin.
type RateSource interface {
	CoinUSDRate(ctx context.Context) (decimal.Decimal, error)
}

// floorMultipliers define the per-level USD floor for each rarity tier.
var floorMultipliers = map[models.Rarity]decimal.Decimal{
	models.RarityCommon:    decimal.RequireFromString("0.2"),
	models.RarityRare:      decimal.RequireFromString("0.5"),
	models.RarityEpic:      decimal.RequireFromString("1.0"),
	models.RarityLegendary: decimal.RequireFromString("2.0"),
}

// Calculator converts rarity and level into a floor price in coin cents.
type Calculator struct {
	rates        RateSource
	fallbackRate decimal.Decimal
	logger       *slog.Logger
}

// NewCalculator creates a Calculator. fallbackRate is the USD-per-coin rate
// used when the feed cannot be reached; it must be positive.
func NewCalculator(rates RateSource, fallbackRate decimal.Decimal, logger *slog.Logger) *Calculator {
	return &Calculator{rates: rates, fallbackRate: fallbackRate, logger: logger}
}

// Floor returns the minimum acceptable price, in coin cents, for a card of the
// given rarity at the given level.
func (c *Calculator) Floor(ctx context.Context, rarity models.Rarity, level int) int64 {
	multiplier, ok := floorMultipliers[rarity]
	if !ok {
		multiplier = floorMultipliers[models.RarityCommon]
	}
	usdFloor := multiplier.Mul(decimal.NewFromInt(int64(level)))

	rate := c.rate(ctx)
	coins := usdFloor.Div(rate)

	// Round up: a price exactly below the floor must never pass validation
	// because of truncation.
	return coins.Shift(2).Ceil().IntPart()
}

func (c *Calculator) rate(ctx context.Context) decimal.Decimal {
	if c.rates == nil {
		return c.fallbackRate
	}
	rate, err := c.rates.CoinUSDRate(ctx)
	if err != nil || !rate.IsPositive() {
		if c.logger != nil {
			c.logger.Warn("rate feed unavailable, using fallback rate",
				slog.String("fallback", c.fallbackRate.String()),
				slog.Any("error", err))
		}
		return c.fallbackRate
	}
	return rate
}
