package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Denizbukut/TCG-sub001/pkg/models"
	"github.com/Denizbukut/TCG-sub001/pkg/storage"
)

func seedListing(t *testing.T, store *Store) *models.Listing {
	t.Helper()
	listing := &models.Listing{
		Id:        uuid.New().String(),
		Seller:    "seller1",
		CardId:    "card-1",
		CardName:  "Blue Dragon",
		Rarity:    models.RarityRare,
		Level:     2,
		Price:     500,
		Status:    models.ACTIVE,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, store.InsertListing(context.Background(), listing))
	return listing
}

func TestConcurrentFinalize(t *testing.T) {
	store := New()
	listing := seedListing(t, store)
	now := time.Now().UTC()

	const buyers = 50
	var wg sync.WaitGroup
	winners := make(chan string, buyers)

	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			buyer := uuid.New().String()
			if _, err := store.FinalizeListing(context.Background(), listing.Id, buyer, now); err == nil {
				winners <- buyer
			}
		}(i)
	}
	wg.Wait()
	close(winners)

	var winnerCount int
	var winner string
	for w := range winners {
		winnerCount++
		winner = w
	}
	require.Equal(t, 1, winnerCount, "exactly one concurrent finalize must win")

	final, err := store.GetListing(context.Background(), listing.Id)
	require.NoError(t, err)
	assert.Equal(t, models.SOLD, final.Status)
	assert.Equal(t, winner, final.Buyer)
}

func TestConcurrentQuotaReserve(t *testing.T) {
	store := New()
	const quotaCap = 100
	const attempts = 150

	var wg sync.WaitGroup
	var mu sync.Mutex
	var granted, rejected int

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.ReserveQuota(context.Background(), "legendary-draws", "2026-08-29", quotaCap)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				granted++
			case errors.Is(err, storage.ErrQuotaExceeded):
				rejected++
			default:
				t.Errorf("unexpected reserve error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, quotaCap, granted)
	assert.Equal(t, attempts-quotaCap, rejected)

	reserved, err := store.GetQuotaReserved(context.Background(), "legendary-draws", "2026-08-29")
	require.NoError(t, err)
	assert.Equal(t, int64(quotaCap), reserved)
}

func TestQuotaDayRollover(t *testing.T) {
	store := New()

	for i := 0; i < 3; i++ {
		_, err := store.ReserveQuota(context.Background(), "legendary-draws", "2026-08-29", 3)
		require.NoError(t, err)
	}
	_, err := store.ReserveQuota(context.Background(), "legendary-draws", "2026-08-29", 3)
	assert.ErrorIs(t, err, storage.ErrQuotaExceeded)

	// A new day key starts from a fresh counter.
	reserved, err := store.ReserveQuota(context.Background(), "legendary-draws", "2026-08-30", 3)
	require.NoError(t, err)
	assert.Equal(t, int64(1), reserved)
}

func TestConcurrentWithdrawLastCopy(t *testing.T) {
	store := New()
	require.NoError(t, store.DepositCard(context.Background(), "user1", "card-1", 2))

	const contenders = 20
	var wg sync.WaitGroup
	var mu sync.Mutex
	var withdrawn int

	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := store.WithdrawCard(context.Background(), "user1", "card-1", 2); err == nil {
				mu.Lock()
				withdrawn++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, withdrawn, "a single copy must only be withdrawn once")
	assert.Zero(t, store.CardCount("user1", "card-1", 2))
}

func TestLeaseLifecycle(t *testing.T) {
	store := New()
	listing := seedListing(t, store)
	now := time.Now().UTC()
	ttl := 30 * time.Second

	locked, err := store.LockListing(context.Background(), listing.Id, now, ttl)
	require.NoError(t, err)
	assert.Equal(t, models.LOCKED, locked.Status)

	// A second buyer inside the TTL is rejected with the remaining time.
	_, err = store.LockListing(context.Background(), listing.Id, now.Add(10*time.Second), ttl)
	var lockedErr *storage.ErrListingLocked
	require.ErrorAs(t, err, &lockedErr)
	assert.Equal(t, 20*time.Second, lockedErr.Remaining)

	// After expiry the lease is taken over, not blocked.
	relocked, err := store.LockListing(context.Background(), listing.Id, now.Add(31*time.Second), ttl)
	require.NoError(t, err)
	assert.Equal(t, models.LOCKED, relocked.Status)
	assert.True(t, relocked.LockExpiresAt.After(now.Add(31*time.Second)))

	// The lock holder's purchase still finalizes.
	sold, err := store.FinalizeListing(context.Background(), listing.Id, "buyer1", now.Add(40*time.Second))
	require.NoError(t, err)
	assert.Equal(t, models.SOLD, sold.Status)
}

func TestCancelListing(t *testing.T) {
	store := New()
	listing := seedListing(t, store)

	t.Run("Wrong Owner", func(t *testing.T) {
		_, err := store.CancelListing(context.Background(), listing.Id, "somebody-else")
		assert.ErrorIs(t, err, storage.ErrNotOwnerOrNotActive)
	})

	t.Run("Owner Cancels", func(t *testing.T) {
		removed, err := store.CancelListing(context.Background(), listing.Id, listing.Seller)
		require.NoError(t, err)
		assert.Equal(t, listing.CardId, removed.CardId)

		_, err = store.GetListing(context.Background(), listing.Id)
		assert.ErrorIs(t, err, storage.ErrListingNotFound)
	})
}

func TestAppendTradeIdempotent(t *testing.T) {
	store := New()
	trade := &models.TradeRecord{
		TradeId:   uuid.New().String(),
		Seller:    "seller1",
		Buyer:     "buyer1",
		CardId:    "card-1",
		Price:     500,
		Timestamp: time.Now().UTC(),
	}

	require.NoError(t, store.AppendTrade(context.Background(), trade))
	require.NoError(t, store.AppendTrade(context.Background(), trade))

	count, err := store.CountPairTrades(context.Background(), "seller1", "buyer1", trade.Timestamp.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
