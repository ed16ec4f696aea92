package market

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/Denizbukut/TCG-sub001/pkg/models"
	"github.com/Denizbukut/TCG-sub001/pkg/reconcile"
	"github.com/Denizbukut/TCG-sub001/pkg/storage"
)

// CreateListing validates the seller's request, inserts the listing, and
// withdraws the card from the seller's holdings.
//
// All preconditions run before any write. The two writes that follow are not
// atomic with each other: when the inventory withdrawal fails after the
// listing row exists, the listing is deleted again as a compensating action,
// so a listing never offers a card the seller does not hold.
func (s *Service) CreateListing(ctx context.Context, seller, cardID string, level int, price int64) (*models.Listing, error) {
	player, err := s.store.GetPlayer(ctx, seller)
	if err != nil {
		return nil, err
	}
	if player.SalesSincePurchase >= s.cfg.SellThrottleCap {
		return nil, ErrSellThrottled
	}

	active, err := s.store.CountActiveBySeller(ctx, seller)
	if err != nil {
		return nil, fmt.Errorf("failed to count active listings: %w", err)
	}
	if active >= s.cfg.MaxActiveListings {
		return nil, ErrListingLimitReached
	}

	card, err := s.store.GetCard(ctx, cardID)
	if err != nil {
		return nil, err
	}

	floor := s.pricing.Floor(ctx, card.Rarity, level)
	if price < floor {
		return nil, fmt.Errorf("%w: price %d, floor %d", ErrPriceTooLow, price, floor)
	}

	now := s.clock.Now()
	listing := &models.Listing{
		Id:        uuid.New().String(),
		Seller:    seller,
		CardId:    card.CardId,
		CardName:  card.Name,
		Rarity:    card.Rarity,
		Level:     level,
		Price:     price,
		Status:    models.ACTIVE,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.store.InsertListing(ctx, listing); err != nil {
		return nil, fmt.Errorf("failed to insert listing: %w", err)
	}

	if err := s.store.WithdrawCard(ctx, seller, cardID, level); err != nil {
		// Compensating delete: the listing must not survive a failed
		// withdrawal.
		if delErr := s.store.DeleteListing(ctx, listing.Id); delErr != nil {
			s.logger.Error("failed to roll back listing after withdrawal failure",
				slog.String("listing_id", listing.Id),
				slog.Any("error", delErr))
		}
		return nil, err
	}

	return listing, nil
}

// LockListing takes the time-boxed exclusive lock on a listing for a buyer who
// is about to pay. Expired leases are reclaimed lazily inside the store call.
func (s *Service) LockListing(ctx context.Context, listingID string) (*models.Listing, error) {
	return s.store.LockListing(ctx, listingID, s.clock.Now(), s.cfg.LeaseTTL)
}

// CancelListing takes an ACTIVE listing off the market and returns the card to
// the seller's holdings.
func (s *Service) CancelListing(ctx context.Context, seller, listingID string) error {
	listing, err := s.store.CancelListing(ctx, listingID, seller)
	if err != nil {
		return err
	}

	if err := s.retryStep(ctx, "return_card", func() error {
		return s.store.DepositCard(ctx, seller, listing.CardId, listing.Level)
	}); err != nil {
		// The listing row is already gone; queue the deposit so the card is
		// not lost.
		s.enqueueTask(ctx, &reconcile.Task{
			Step:      reconcile.StepDepositCard,
			ListingId: listing.Id,
			UserId:    seller,
			CardId:    listing.CardId,
			Level:     listing.Level,
		})
	}

	return nil
}

// UpdatePrice changes the price of the seller's ACTIVE listing, re-validating
// the floor.
func (s *Service) UpdatePrice(ctx context.Context, seller, listingID string, newPrice int64) error {
	listing, err := s.store.GetListing(ctx, listingID)
	if err != nil {
		return err
	}

	floor := s.pricing.Floor(ctx, listing.Rarity, listing.Level)
	if newPrice < floor {
		return fmt.Errorf("%w: price %d, floor %d", ErrPriceTooLow, newPrice, floor)
	}

	return s.store.UpdateListingPrice(ctx, listingID, seller, newPrice, s.clock.Now())
}

// ListListings returns one page of ACTIVE listings, clamping the page size to
// the configured bounds.
func (s *Service) ListListings(ctx context.Context, q storage.ListingQuery) (*storage.ListingPage, error) {
	if q.PageSize <= 0 {
		q.PageSize = s.cfg.DefaultPageSize
	}
	if q.PageSize > s.cfg.MaxPageSize {
		q.PageSize = s.cfg.MaxPageSize
	}
	if q.Page < 1 {
		q.Page = 1
	}
	return s.store.ListListings(ctx, q)
}
