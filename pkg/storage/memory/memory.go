// Package memory provides a mutex-guarded in-memory implementation of the
// storage interfaces with the same single-row CAS semantics as the DynamoDB
// store. It backs the concurrency property tests and local development.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Denizbukut/TCG-sub001/pkg/models"
	"github.com/Denizbukut/TCG-sub001/pkg/storage"
)

// Store is an in-memory Storage implementation. Every mutation holds the
// mutex for exactly one row operation, mirroring the conditional-write
// granularity of the real row store: no cross-row atomicity.
type Store struct {
	mu        sync.Mutex
	listings  map[string]*models.Listing
	players   map[string]*models.Player
	inventory map[string]int64 // userID + "/" + cardKey -> quantity
	trades    []models.TradeRecord
	quotas    map[string]*models.QuotaRow
	cards     map[string]*models.Card
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		listings:  make(map[string]*models.Listing),
		players:   make(map[string]*models.Player),
		inventory: make(map[string]int64),
		quotas:    make(map[string]*models.QuotaRow),
		cards:     make(map[string]*models.Card),
	}
}

// Make sure we conform to the interface
var _ storage.Storage = (*Store)(nil)

func slotKey(userID, cardID string, level int) string {
	return fmt.Sprintf("%s/%s#%d", userID, cardID, level)
}

// SeedCard inserts a catalog entry.
func (s *Store) SeedCard(card models.Card) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := card
	s.cards[card.CardId] = &c
}

// InsertListing creates a new listing row.
func (s *Store) InsertListing(ctx context.Context, listing *models.Listing) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.listings[listing.Id]; ok {
		return fmt.Errorf("listing %s already exists", listing.Id)
	}
	cp := *listing
	s.listings[listing.Id] = &cp
	return nil
}

// GetListing retrieves a listing by its ID.
func (s *Store) GetListing(ctx context.Context, listingID string) (*models.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.listings[listingID]
	if !ok {
		return nil, storage.ErrListingNotFound
	}
	cp := *l
	return &cp, nil
}

// DeleteListing removes a listing row unconditionally.
func (s *Store) DeleteListing(ctx context.Context, listingID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.listings, listingID)
	return nil
}

// LockListing performs the ACTIVE->LOCKED lease CAS, taking over a stale lease
// in the same call.
func (s *Store) LockListing(ctx context.Context, listingID string, now time.Time, ttl time.Duration) (*models.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.listings[listingID]
	if !ok {
		return nil, storage.ErrListingNotFound
	}

	switch l.Status {
	case models.ACTIVE:
	case models.LOCKED:
		if remaining := l.LockRemaining(now); remaining > 0 {
			return nil, &storage.ErrListingLocked{Remaining: remaining}
		}
		// Stale lease, fall through to take it over.
	case models.SOLD:
		return nil, storage.ErrAlreadySold
	default:
		return nil, storage.ErrListingNotActive
	}

	expires := now.Add(ttl)
	l.Status = models.LOCKED
	l.LockExpiresAt = &expires
	l.UpdatedAt = now
	cp := *l
	return &cp, nil
}

// FinalizeListing performs the (ACTIVE|LOCKED)->SOLD CAS.
func (s *Store) FinalizeListing(ctx context.Context, listingID, buyer string, now time.Time) (*models.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.listings[listingID]
	if !ok {
		return nil, storage.ErrListingNotFound
	}
	switch l.Status {
	case models.ACTIVE, models.LOCKED:
	case models.SOLD:
		return nil, storage.ErrAlreadySold
	default:
		return nil, storage.ErrListingNotActive
	}

	soldAt := now
	l.Status = models.SOLD
	l.Buyer = buyer
	l.SoldAt = &soldAt
	l.LockExpiresAt = nil
	l.UpdatedAt = now
	cp := *l
	return &cp, nil
}

// CancelListing removes the listing iff it is ACTIVE and owned by seller.
func (s *Store) CancelListing(ctx context.Context, listingID, seller string) (*models.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.listings[listingID]
	if !ok || l.Seller != seller || l.Status != models.ACTIVE {
		return nil, storage.ErrNotOwnerOrNotActive
	}
	delete(s.listings, listingID)
	cp := *l
	return &cp, nil
}

// UpdateListingPrice sets a new price iff the listing is ACTIVE and owned by
// seller.
func (s *Store) UpdateListingPrice(ctx context.Context, listingID, seller string, newPrice int64, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.listings[listingID]
	if !ok || l.Seller != seller || l.Status != models.ACTIVE {
		return storage.ErrNotOwnerOrNotActive
	}
	l.Price = newPrice
	l.UpdatedAt = now
	return nil
}

// CountActiveBySeller counts the seller's ACTIVE listings.
func (s *Store) CountActiveBySeller(ctx context.Context, seller string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, l := range s.listings {
		if l.Seller == seller && l.Status == models.ACTIVE {
			count++
		}
	}
	return count, nil
}

// ListListings retrieves one page of ACTIVE listings matching the query.
func (s *Store) ListListings(ctx context.Context, q storage.ListingQuery) (*storage.ListingPage, error) {
	s.mu.Lock()
	var matches []models.Listing
	for _, l := range s.listings {
		if l.Status != models.ACTIVE {
			continue
		}
		if q.MinPrice > 0 && l.Price < q.MinPrice {
			continue
		}
		if q.MaxPrice > 0 && l.Price > q.MaxPrice {
			continue
		}
		if q.Rarity != "" && l.Rarity != q.Rarity {
			continue
		}
		if q.Search != "" && !strings.Contains(l.CardName, q.Search) {
			continue
		}
		matches = append(matches, *l)
	}
	s.mu.Unlock()

	switch q.Sort {
	case storage.SortPriceAsc:
		sort.SliceStable(matches, func(i, j int) bool { return matches[i].Price < matches[j].Price })
	case storage.SortPriceDesc:
		sort.SliceStable(matches, func(i, j int) bool { return matches[i].Price > matches[j].Price })
	default:
		sort.SliceStable(matches, func(i, j int) bool { return matches[i].CreatedAt.After(matches[j].CreatedAt) })
	}

	page := q.Page
	if page < 1 {
		page = 1
	}
	start := (page - 1) * q.PageSize
	end := start + q.PageSize
	if start > len(matches) {
		start = len(matches)
	}
	if end > len(matches) {
		end = len(matches)
	}

	return &storage.ListingPage{
		Listings: matches[start:end],
		Page:     page,
		PageSize: q.PageSize,
		Total:    len(matches),
	}, nil
}

// GetPlayer retrieves a user's balance row.
func (s *Store) GetPlayer(ctx context.Context, userID string) (*models.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.players[userID]
	if !ok {
		return nil, storage.ErrPlayerNotFound
	}
	cp := *p
	return &cp, nil
}

// CreatePlayer creates a new balance row.
func (s *Store) CreatePlayer(ctx context.Context, player *models.Player) (*models.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.players[player.UserId]; ok {
		return nil, fmt.Errorf("player %s already exists", player.UserId)
	}
	cp := *player
	s.players[player.UserId] = &cp
	return player, nil
}

// AdjustScore applies a score delta, clamped at zero.
func (s *Store) AdjustScore(ctx context.Context, userID string, delta int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.players[userID]
	if !ok {
		return storage.ErrPlayerNotFound
	}
	p.Score += delta
	if p.Score < 0 {
		p.Score = 0
	}
	p.Version++
	return nil
}

// AddTickets credits draw tickets.
func (s *Store) AddTickets(ctx context.Context, userID string, tickets, eliteTickets int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.players[userID]
	if !ok {
		return storage.ErrPlayerNotFound
	}
	p.Tickets += tickets
	p.EliteTickets += eliteTickets
	p.Version++
	return nil
}

// SpendTicket decrements one ticket of the given tier.
func (s *Store) SpendTicket(ctx context.Context, userID string, tier storage.TicketTier) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.players[userID]
	if !ok {
		return storage.ErrPlayerNotFound
	}
	if tier == storage.TierElite {
		if p.EliteTickets < 1 {
			return storage.ErrNoTickets
		}
		p.EliteTickets--
	} else {
		if p.Tickets < 1 {
			return storage.ErrNoTickets
		}
		p.Tickets--
	}
	p.Version++
	return nil
}

// IncrementSales bumps the seller's consecutive-sales counter.
func (s *Store) IncrementSales(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.players[userID]
	if !ok {
		return storage.ErrPlayerNotFound
	}
	p.SalesSincePurchase++
	p.Version++
	return nil
}

// ResetSales zeroes the buyer's consecutive-sales counter.
func (s *Store) ResetSales(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.players[userID]
	if !ok {
		return storage.ErrPlayerNotFound
	}
	p.SalesSincePurchase = 0
	p.Version++
	return nil
}

// WithdrawCard removes one copy of the card from the user's holdings.
func (s *Store) WithdrawCard(ctx context.Context, userID, cardID string, level int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := slotKey(userID, cardID, level)
	if s.inventory[key] < 1 {
		return storage.ErrCardNotOwned
	}
	s.inventory[key]--
	return nil
}

// DepositCard adds one copy of the card to the user's holdings.
func (s *Store) DepositCard(ctx context.Context, userID, cardID string, level int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inventory[slotKey(userID, cardID, level)]++
	return nil
}

// CardCount reports the user's copy count for a card at a level.
func (s *Store) CardCount(userID, cardID string, level int) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inventory[slotKey(userID, cardID, level)]
}

// AppendTrade writes one trade record.
func (s *Store) AppendTrade(ctx context.Context, trade *models.TradeRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.trades {
		if t.TradeId == trade.TradeId {
			return nil
		}
	}
	trade.PairKey = models.TradePairKey(trade.Seller, trade.Buyer)
	trade.TsEpoch = trade.Timestamp.UnixNano()
	s.trades = append(s.trades, *trade)
	return nil
}

// CountPairTrades counts trades between the exact pair since the given time.
func (s *Store) CountPairTrades(ctx context.Context, seller, buyer string, since time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pair := models.TradePairKey(seller, buyer)
	count := 0
	for _, t := range s.trades {
		if t.PairKey == pair && !t.Timestamp.Before(since) {
			count++
		}
	}
	return count, nil
}

// ReserveQuota atomically increments the counter iff it is below cap.
func (s *Store) ReserveQuota(ctx context.Context, subject, day string, cap int64) (int64, error) {
	if cap < 1 {
		return 0, storage.ErrQuotaExceeded
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	key := models.QuotaKey(subject, day)
	row, ok := s.quotas[key]
	if !ok {
		row = &models.QuotaRow{QuotaKey: key, Subject: subject, Day: day, Cap: cap}
		s.quotas[key] = row
	}
	if row.Reserved >= cap {
		return 0, storage.ErrQuotaExceeded
	}
	row.Reserved++
	return row.Reserved, nil
}

// ConfirmQuota records that a reservation was consumed.
func (s *Store) ConfirmQuota(ctx context.Context, subject, day string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.quotas[models.QuotaKey(subject, day)]
	if !ok {
		return fmt.Errorf("no quota row for %s on %s", subject, day)
	}
	row.Confirmed++
	return nil
}

// ReleaseQuota backs out one reservation.
func (s *Store) ReleaseQuota(ctx context.Context, subject, day string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.quotas[models.QuotaKey(subject, day)]
	if !ok || row.Reserved < 1 {
		return fmt.Errorf("no reservation to release for %s on %s", subject, day)
	}
	row.Reserved--
	return nil
}

// GetQuotaReserved reads the current reserved count.
func (s *Store) GetQuotaReserved(ctx context.Context, subject, day string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.quotas[models.QuotaKey(subject, day)]
	if !ok {
		return 0, nil
	}
	return row.Reserved, nil
}

// GetCard retrieves a catalog entry.
func (s *Store) GetCard(ctx context.Context, cardID string) (*models.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.cards[cardID]
	if !ok {
		return nil, storage.ErrCardNotFound
	}
	cp := *c
	return &cp, nil
}

// ListCardsByRarity retrieves all catalog entries of the given rarity.
func (s *Store) ListCardsByRarity(ctx context.Context, rarity models.Rarity) ([]models.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var cards []models.Card
	for _, c := range s.cards {
		if c.Rarity == rarity {
			cards = append(cards, *c)
		}
	}
	sort.Slice(cards, func(i, j int) bool { return cards[i].CardId < cards[j].CardId })
	return cards, nil
}
