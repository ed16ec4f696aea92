package market

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Denizbukut/TCG-sub001/pkg/antifraud"
	"github.com/Denizbukut/TCG-sub001/pkg/clock"
	"github.com/Denizbukut/TCG-sub001/pkg/models"
	"github.com/Denizbukut/TCG-sub001/pkg/pricing"
	"github.com/Denizbukut/TCG-sub001/pkg/reconcile"
	"github.com/Denizbukut/TCG-sub001/pkg/storage"
	"github.com/Denizbukut/TCG-sub001/pkg/storage/memory"
)

// captureQueue records every enqueued reconciliation task.
type captureQueue struct {
	mu    sync.Mutex
	tasks []*reconcile.Task
}

func (q *captureQueue) Enqueue(ctx context.Context, task *reconcile.Task) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.tasks = append(q.tasks, task)
	return nil
}

func (q *captureQueue) Tasks() []*reconcile.Task {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]*reconcile.Task(nil), q.tasks...)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestService wires a marketplace service over the in-memory store with a
// fixed clock and a USD-per-coin rate of exactly 1.
func newTestService(t *testing.T, store storage.MarketStore, queue reconcile.Queue) (*Service, *clock.Fixed) {
	t.Helper()
	clk := clock.NewFixed(time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC))
	calc := pricing.NewCalculator(nil, decimal.NewFromInt(1), testLogger())
	fraud := antifraud.NewChecker(store, clk, antifraud.DefaultWindow)
	if queue == nil {
		queue = &reconcile.NoOpQueue{}
	}
	cfg := DefaultConfig()
	cfg.SideEffectRetries = 1 // No backoff loops in tests.
	svc := New(store, clk, calc, fraud, queue, AcceptAllVerifier{}, testLogger(), cfg)
	return svc, clk
}

func seedPlayer(t *testing.T, store *memory.Store, userID string) {
	t.Helper()
	_, err := store.CreatePlayer(context.Background(), &models.Player{UserId: userID, Tickets: 3, Version: 1})
	require.NoError(t, err)
}

func seedCardCopy(t *testing.T, store *memory.Store, userID, cardID string, rarity models.Rarity, level int) {
	t.Helper()
	store.SeedCard(models.Card{CardId: cardID, Name: "Blue Dragon", Rarity: rarity})
	require.NoError(t, store.DepositCard(context.Background(), userID, cardID, level))
}

func TestCreateListing(t *testing.T) {
	// Rare at level 2 with a rate of 1 puts the floor at 100 cents.
	const floor = int64(100)

	t.Run("Success", func(t *testing.T) {
		store := memory.New()
		svc, _ := newTestService(t, store, nil)
		seedPlayer(t, store, "seller1")
		seedCardCopy(t, store, "seller1", "card-1", models.RarityRare, 2)

		listing, err := svc.CreateListing(context.Background(), "seller1", "card-1", 2, floor)

		require.NoError(t, err)
		assert.Equal(t, models.ACTIVE, listing.Status)
		assert.Equal(t, "Blue Dragon", listing.CardName)
		// The listed copy left the seller's holdings.
		assert.Zero(t, store.CardCount("seller1", "card-1", 2))
	})

	t.Run("Price Below Floor", func(t *testing.T) {
		store := memory.New()
		svc, _ := newTestService(t, store, nil)
		seedPlayer(t, store, "seller1")
		seedCardCopy(t, store, "seller1", "card-1", models.RarityRare, 2)

		_, err := svc.CreateListing(context.Background(), "seller1", "card-1", 2, floor-1)

		assert.ErrorIs(t, err, ErrPriceTooLow)
		assert.Equal(t, int64(1), store.CardCount("seller1", "card-1", 2))
	})

	t.Run("Card Not Owned Rolls Back Listing", func(t *testing.T) {
		store := memory.New()
		svc, _ := newTestService(t, store, nil)
		seedPlayer(t, store, "seller1")
		store.SeedCard(models.Card{CardId: "card-1", Name: "Blue Dragon", Rarity: models.RarityRare})

		_, err := svc.CreateListing(context.Background(), "seller1", "card-1", 2, floor)

		assert.ErrorIs(t, err, storage.ErrCardNotOwned)
		// The compensating delete must leave no listing behind.
		page, listErr := svc.ListListings(context.Background(), storage.ListingQuery{})
		require.NoError(t, listErr)
		assert.Zero(t, page.Total)
	})

	t.Run("Sell Throttled", func(t *testing.T) {
		store := memory.New()
		svc, _ := newTestService(t, store, nil)
		_, err := store.CreatePlayer(context.Background(), &models.Player{UserId: "seller1", SalesSincePurchase: 3, Version: 1})
		require.NoError(t, err)
		seedCardCopy(t, store, "seller1", "card-1", models.RarityRare, 2)

		_, err = svc.CreateListing(context.Background(), "seller1", "card-1", 2, floor)

		assert.ErrorIs(t, err, ErrSellThrottled)
	})

	t.Run("Listing Limit Reached", func(t *testing.T) {
		store := memory.New()
		svc, _ := newTestService(t, store, nil)
		seedPlayer(t, store, "seller1")
		store.SeedCard(models.Card{CardId: "card-1", Name: "Blue Dragon", Rarity: models.RarityRare})
		for i := 0; i < 3; i++ {
			require.NoError(t, store.DepositCard(context.Background(), "seller1", "card-1", 2))
			_, err := svc.CreateListing(context.Background(), "seller1", "card-1", 2, floor)
			require.NoError(t, err)
		}
		require.NoError(t, store.DepositCard(context.Background(), "seller1", "card-1", 2))

		_, err := svc.CreateListing(context.Background(), "seller1", "card-1", 2, floor)

		assert.ErrorIs(t, err, ErrListingLimitReached)
	})

	t.Run("Unknown Player", func(t *testing.T) {
		store := memory.New()
		svc, _ := newTestService(t, store, nil)

		_, err := svc.CreateListing(context.Background(), "ghost", "card-1", 2, floor)

		assert.ErrorIs(t, err, storage.ErrPlayerNotFound)
	})
}

func TestCancelListing(t *testing.T) {
	store := memory.New()
	svc, _ := newTestService(t, store, nil)
	seedPlayer(t, store, "seller1")
	seedCardCopy(t, store, "seller1", "card-1", models.RarityRare, 2)

	listing, err := svc.CreateListing(context.Background(), "seller1", "card-1", 2, 100)
	require.NoError(t, err)

	t.Run("Wrong Owner", func(t *testing.T) {
		err := svc.CancelListing(context.Background(), "somebody-else", listing.Id)
		assert.ErrorIs(t, err, storage.ErrNotOwnerOrNotActive)
	})

	t.Run("Owner Cancels And Card Returns", func(t *testing.T) {
		require.NoError(t, svc.CancelListing(context.Background(), "seller1", listing.Id))

		assert.Equal(t, int64(1), store.CardCount("seller1", "card-1", 2))

		page, err := svc.ListListings(context.Background(), storage.ListingQuery{})
		require.NoError(t, err)
		assert.Zero(t, page.Total)
	})
}

func TestUpdatePrice(t *testing.T) {
	store := memory.New()
	svc, _ := newTestService(t, store, nil)
	seedPlayer(t, store, "seller1")
	seedCardCopy(t, store, "seller1", "card-1", models.RarityRare, 2)

	listing, err := svc.CreateListing(context.Background(), "seller1", "card-1", 2, 100)
	require.NoError(t, err)

	t.Run("Below Floor", func(t *testing.T) {
		err := svc.UpdatePrice(context.Background(), "seller1", listing.Id, 50)
		assert.ErrorIs(t, err, ErrPriceTooLow)
	})

	t.Run("Success", func(t *testing.T) {
		require.NoError(t, svc.UpdatePrice(context.Background(), "seller1", listing.Id, 250))

		updated, err := store.GetListing(context.Background(), listing.Id)
		require.NoError(t, err)
		assert.Equal(t, int64(250), updated.Price)
	})

	t.Run("Wrong Owner", func(t *testing.T) {
		err := svc.UpdatePrice(context.Background(), "somebody-else", listing.Id, 250)
		assert.ErrorIs(t, err, storage.ErrNotOwnerOrNotActive)
	})
}

func TestListListingsClampsPageSize(t *testing.T) {
	store := memory.New()
	svc, _ := newTestService(t, store, nil)
	seedPlayer(t, store, "seller1")
	store.SeedCard(models.Card{CardId: "card-1", Name: "Blue Dragon", Rarity: models.RarityRare})
	for i := 0; i < 3; i++ {
		require.NoError(t, store.DepositCard(context.Background(), "seller1", "card-1", 2))
		_, err := svc.CreateListing(context.Background(), "seller1", "card-1", 2, int64(100+i))
		require.NoError(t, err)
	}

	page, err := svc.ListListings(context.Background(), storage.ListingQuery{PageSize: 500})
	require.NoError(t, err)
	assert.Equal(t, 50, page.PageSize)

	page, err = svc.ListListings(context.Background(), storage.ListingQuery{})
	require.NoError(t, err)
	assert.Equal(t, 20, page.PageSize)
	assert.Equal(t, 3, page.Total)
}

func TestConcurrentCreateLastCopy(t *testing.T) {
	store := memory.New()
	svc, _ := newTestService(t, store, nil)
	seedPlayer(t, store, "seller1")
	seedCardCopy(t, store, "seller1", "card-1", models.RarityRare, 2)

	const attempts = 10
	var wg sync.WaitGroup
	var mu sync.Mutex
	var created int

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.CreateListing(context.Background(), "seller1", "card-1", 2, 100); err == nil {
				mu.Lock()
				created++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, created, "a single copy must back at most one listing")
	page, err := svc.ListListings(context.Background(), storage.ListingQuery{})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)
}

func TestScoreDelta(t *testing.T) {
	cases := []struct {
		rarity string
		level  int
		want   int64
	}{
		{"common", 1, 1},
		{"rare", 2, 4},
		{"epic", 3, 15},
		{"legendary", 2, 20},
		{"unknown", 5, 5},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprintf("%s level %d", tc.rarity, tc.level), func(t *testing.T) {
			assert.Equal(t, tc.want, scoreDelta(tc.rarity, tc.level))
		})
	}
}
