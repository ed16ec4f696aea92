// Package market owns the listing lifecycle and the purchase saga. Every
// state change is composed from independent single-row conditional writes; the
// only true mutual-exclusion points are those writes themselves.
package market

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Denizbukut/TCG-sub001/pkg/antifraud"
	"github.com/Denizbukut/TCG-sub001/pkg/clock"
	"github.com/Denizbukut/TCG-sub001/pkg/pricing"
	"github.com/Denizbukut/TCG-sub001/pkg/reconcile"
	"github.com/Denizbukut/TCG-sub001/pkg/storage"
)

// ErrPriceTooLow is returned when a listing price is below the computed floor.
var ErrPriceTooLow = errors.New("price below floor")

// ErrSellThrottled is returned when a seller has hit the consecutive-sales cap
// and must buy something before listing again.
var ErrSellThrottled = errors.New("too many consecutive sales, purchase required")

// ErrListingLimitReached is returned when a seller already has the maximum
// number of active listings.
var ErrListingLimitReached = errors.New("active listing limit reached")

// ErrSelfPurchase is returned when a buyer attempts to buy their own listing.
var ErrSelfPurchase = errors.New("cannot purchase own listing")

// ErrPaymentRejected is returned when the payment reference for a purchase
// cannot be verified as settled.
var ErrPaymentRejected = errors.New("payment not verified")

// PaymentVerifier confirms that the buyer's payment for a listing has settled.
// The actual payment-provider call happens outside this service; by the time a
// purchase saga starts, the payment must already be externally verified.
type PaymentVerifier interface {
	// Verify returns nil when the payment identified by reference covers the
	// price, storage.ErrInsufficientFunds when it does not.
	Verify(ctx context.Context, buyer, seller string, price int64, reference string) error
}

// AcceptAllVerifier approves every payment. Useful for local development and
// tests.
type AcceptAllVerifier struct{}

// Verify approves the payment.
func (AcceptAllVerifier) Verify(ctx context.Context, buyer, seller string, price int64, reference string) error {
	return nil
}

// Config carries the marketplace tunables.
type Config struct {
	// MaxActiveListings caps a seller's concurrently active listings.
	MaxActiveListings int
	// SellThrottleCap is the number of consecutive sales after which a seller
	// must make a purchase before listing again.
	SellThrottleCap int64
	// LeaseTTL is how long a buyer's exclusive lock on a listing lasts.
	LeaseTTL time.Duration
	// SideEffectRetries bounds per-step retries of post-finalize writes.
	SideEffectRetries int
	// BonusTickets is the reward credited to a buyer per purchase, unless the
	// anti-fraud throttle withholds it.
	BonusTickets int64
	// DefaultPageSize and MaxPageSize bound ListListings pages.
	DefaultPageSize int
	MaxPageSize     int
}

// DefaultConfig returns the production tunables.
func DefaultConfig() Config {
	return Config{
		MaxActiveListings: 3,
		SellThrottleCap:   3,
		LeaseTTL:          30 * time.Second,
		SideEffectRetries: 3,
		BonusTickets:      1,
		DefaultPageSize:   20,
		MaxPageSize:       50,
	}
}

// Service implements the marketplace operations.
type Service struct {
	store    storage.MarketStore
	clock    clock.Clock
	pricing  *pricing.Calculator
	fraud    *antifraud.Checker
	queue    reconcile.Queue
	payments PaymentVerifier
	logger   *slog.Logger
	cfg      Config
}

// New creates a marketplace service.
func New(store storage.MarketStore, clk clock.Clock, calc *pricing.Calculator, fraud *antifraud.Checker, queue reconcile.Queue, payments PaymentVerifier, logger *slog.Logger, cfg Config) *Service {
	return &Service{
		store:    store,
		clock:    clk,
		pricing:  calc,
		fraud:    fraud,
		queue:    queue,
		payments: payments,
		logger:   logger,
		cfg:      cfg,
	}
}

// scoreWeights define the per-level score delta of a sale for each rarity.
var scoreWeights = map[string]int64{
	"common":    1,
	"rare":      2,
	"epic":      5,
	"legendary": 10,
}

func scoreDelta(rarity string, level int) int64 {
	weight, ok := scoreWeights[rarity]
	if !ok {
		weight = 1
	}
	return weight * int64(level)
}
