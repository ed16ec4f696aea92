package antifraud

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Denizbukut/TCG-sub001/pkg/clock"
	"github.com/Denizbukut/TCG-sub001/pkg/models"
	"github.com/Denizbukut/TCG-sub001/pkg/storage/memory"
)

func recordTrade(t *testing.T, store *memory.Store, id, seller, buyer string, at time.Time) {
	t.Helper()
	err := store.AppendTrade(context.Background(), &models.TradeRecord{
		TradeId:   id,
		Seller:    seller,
		Buyer:     buyer,
		CardId:    "c1",
		Price:     500,
		Timestamp: at,
	})
	require.NoError(t, err)
}

func TestMayAward(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)

	t.Run("First Trade Between Pair", func(t *testing.T) {
		store := memory.New()
		checker := NewChecker(store, clock.NewFixed(now), DefaultWindow)

		ok, err := checker.MayAward(context.Background(), "buyer1", "seller1")

		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("Repeat Trade Inside Window", func(t *testing.T) {
		store := memory.New()
		recordTrade(t, store, "t1", "seller1", "buyer1", now.Add(-time.Hour))
		checker := NewChecker(store, clock.NewFixed(now), DefaultWindow)

		ok, err := checker.MayAward(context.Background(), "buyer1", "seller1")

		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Prior Trade At Exactly Window Edge Still Counts", func(t *testing.T) {
		store := memory.New()
		recordTrade(t, store, "t1", "seller1", "buyer1", now.Add(-DefaultWindow))
		checker := NewChecker(store, clock.NewFixed(now), DefaultWindow)

		ok, err := checker.MayAward(context.Background(), "buyer1", "seller1")

		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Prior Trade Just Outside Window", func(t *testing.T) {
		store := memory.New()
		recordTrade(t, store, "t1", "seller1", "buyer1", now.Add(-DefaultWindow-time.Second))
		checker := NewChecker(store, clock.NewFixed(now), DefaultWindow)

		ok, err := checker.MayAward(context.Background(), "buyer1", "seller1")

		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("Pair Is Directional By Key Not Role", func(t *testing.T) {
		store := memory.New()
		recordTrade(t, store, "t1", "seller1", "buyer1", now.Add(-time.Hour))
		checker := NewChecker(store, clock.NewFixed(now), DefaultWindow)

		// Roles swapped: seller1 buying from buyer1 is a different pair key.
		ok, err := checker.MayAward(context.Background(), "seller1", "buyer1")

		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("Other Pairs Do Not Interfere", func(t *testing.T) {
		store := memory.New()
		recordTrade(t, store, "t1", "seller1", "buyer2", now.Add(-time.Hour))
		recordTrade(t, store, "t2", "seller2", "buyer1", now.Add(-time.Hour))
		checker := NewChecker(store, clock.NewFixed(now), DefaultWindow)

		ok, err := checker.MayAward(context.Background(), "buyer1", "seller1")

		require.NoError(t, err)
		assert.True(t, ok)
	})
}
