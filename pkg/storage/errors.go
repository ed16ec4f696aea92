package storage

import (
	"errors"
	"fmt"
	"time"
)

// ErrListingNotFound is returned when no listing exists for the given ID.
var ErrListingNotFound = errors.New("listing not found")

// ErrListingNotActive is returned when a state transition requires an ACTIVE
// listing and the row is in some other state.
var ErrListingNotActive = errors.New("listing not active")

// ErrAlreadySold is returned when the finalize CAS loses: some other buyer has
// already won the listing.
var ErrAlreadySold = errors.New("listing already sold")

// ErrNotOwnerOrNotActive is returned when a seller-side mutation (cancel, price
// update) does not match both the owner and the ACTIVE status.
var ErrNotOwnerOrNotActive = errors.New("listing not owned by caller or not active")

// ErrPlayerNotFound is returned when no balance row exists for the given user.
var ErrPlayerNotFound = errors.New("player not found")

// ErrCardNotOwned is returned when an inventory withdrawal finds no copy of the
// card at the requested level.
var ErrCardNotOwned = errors.New("card not owned")

// ErrCardNotFound is returned when no catalog entry exists for the given card.
var ErrCardNotFound = errors.New("card not found")

// ErrNoTickets is returned when a draw attempts to spend a ticket the player
// does not have.
var ErrNoTickets = errors.New("no tickets left")

// ErrQuotaExceeded is returned when a reservation would push a quota counter
// past its cap.
var ErrQuotaExceeded = errors.New("quota exceeded")

// ErrInsufficientFunds is returned when the buyer cannot cover the listing price.
var ErrInsufficientFunds = errors.New("insufficient funds")

// ErrListingLocked is returned when another buyer holds a live lease on the
// listing. Remaining reports how long the lease still has to run.
type ErrListingLocked struct {
	Remaining time.Duration
}

func (e *ErrListingLocked) Error() string {
	return fmt.Sprintf("listing reserved by another buyer for %ds", int(e.Remaining.Seconds()))
}
