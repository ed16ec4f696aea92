package storage

import (
	"context"
)

// InventoryStore defines the interface for per-user card holdings. Withdraw and
// deposit are each a single conditional write on one (user, card, level) row.
type InventoryStore interface {
	// WithdrawCard removes one copy of the card at the given level from the
	// user's holdings. Returns ErrCardNotOwned when no copy exists.
	WithdrawCard(ctx context.Context, userID, cardID string, level int) error

	// DepositCard adds one copy of the card at the given level to the user's
	// holdings, creating the slot on first use.
	DepositCard(ctx context.Context, userID, cardID string, level int) error
}
