// Package antifraud suppresses repeat-abuse bonuses between cooperating
// accounts. It is a read-only windowed query over the append-only trade
// ledger; it never blocks the purchase itself, only the bonus side-effect.
package antifraud

import (
	"context"
	"fmt"
	"time"

	"github.com/Denizbukut/TCG-sub001/pkg/clock"
	"github.com/Denizbukut/TCG-sub001/pkg/storage"
)

// DefaultWindow is the sliding window within which a repeat trade between the
// same pair withholds the bonus.
const DefaultWindow = 24 * time.Hour

// Checker answers whether a (buyer, seller) pair is eligible for bonus points.
type Checker struct {
	ledger storage.TradeLedger
	clock  clock.Clock
	window time.Duration
}

// NewChecker creates a Checker over the given ledger. A non-positive window
// falls back to DefaultWindow.
func NewChecker(ledger storage.TradeLedger, clk clock.Clock, window time.Duration) *Checker {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Checker{ledger: ledger, clock: clk, window: window}
}

// MayAward reports whether the bonus may be granted: true iff no trade between
// this exact (seller, buyer) pair exists within the window.
func (c *Checker) MayAward(ctx context.Context, buyer, seller string) (bool, error) {
	since := c.clock.Now().Add(-c.window)
	count, err := c.ledger.CountPairTrades(ctx, seller, buyer, since)
	if err != nil {
		return false, fmt.Errorf("failed to count pair trades: %w", err)
	}
	return count == 0, nil
}
