package storage

import (
	"context"

	"github.com/Denizbukut/TCG-sub001/pkg/models"
)

// TicketTier selects which ticket balance a draw consumes.
type TicketTier string

const (
	TierStandard TicketTier = "standard"
	TierElite    TicketTier = "elite"
)

// PlayerStore defines the interface for the per-user balance rows. Each method
// is an independent single-row atomic update; callers compose them into sagas
// and must not assume any cross-row ordering.
type PlayerStore interface {
	// GetPlayer retrieves a user's balance row by their user ID.
	GetPlayer(ctx context.Context, userID string) (*models.Player, error)

	// CreatePlayer creates a new balance row for a user.
	CreatePlayer(ctx context.Context, player *models.Player) (*models.Player, error)

	// AdjustScore applies a score delta atomically. Negative deltas are
	// clamped so the stored score never drops below zero.
	AdjustScore(ctx context.Context, userID string, delta int64) error

	// AddTickets credits draw tickets atomically.
	AddTickets(ctx context.Context, userID string, tickets, eliteTickets int64) error

	// SpendTicket atomically decrements one ticket of the given tier.
	// Returns ErrNoTickets when the balance is zero.
	SpendTicket(ctx context.Context, userID string, tier TicketTier) error

	// IncrementSales bumps the seller's consecutive-sales counter.
	IncrementSales(ctx context.Context, userID string) error

	// ResetSales zeroes the buyer's consecutive-sales counter.
	ResetSales(ctx context.Context, userID string) error
}
