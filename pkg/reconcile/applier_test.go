package reconcile

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Denizbukut/TCG-sub001/pkg/models"
	"github.com/Denizbukut/TCG-sub001/pkg/storage/memory"
)

func newTestApplier(t *testing.T) (*Applier, *memory.Store) {
	t.Helper()
	store := memory.New()
	_, err := store.CreatePlayer(context.Background(), &models.Player{UserId: "user1", Score: 10, SalesSincePurchase: 2, Version: 1})
	require.NoError(t, err)
	return NewApplier(store, slog.New(slog.NewTextHandler(io.Discard, nil))), store
}

func TestApply(t *testing.T) {
	ctx := context.Background()

	t.Run("Deposit Card", func(t *testing.T) {
		applier, store := newTestApplier(t)

		err := applier.Apply(ctx, &Task{TaskId: "t1", Step: StepDepositCard, UserId: "user1", CardId: "c1", Level: 2})

		require.NoError(t, err)
		assert.Equal(t, int64(1), store.CardCount("user1", "c1", 2))
	})

	t.Run("Adjust Score", func(t *testing.T) {
		applier, store := newTestApplier(t)

		err := applier.Apply(ctx, &Task{TaskId: "t1", Step: StepAdjustScore, UserId: "user1", ScoreDelta: 4})

		require.NoError(t, err)
		player, err := store.GetPlayer(ctx, "user1")
		require.NoError(t, err)
		assert.Equal(t, int64(14), player.Score)
	})

	t.Run("Increment Sales", func(t *testing.T) {
		applier, store := newTestApplier(t)

		err := applier.Apply(ctx, &Task{TaskId: "t1", Step: StepIncrementSales, UserId: "user1"})

		require.NoError(t, err)
		player, err := store.GetPlayer(ctx, "user1")
		require.NoError(t, err)
		assert.Equal(t, int64(3), player.SalesSincePurchase)
	})

	t.Run("Reset Sales", func(t *testing.T) {
		applier, store := newTestApplier(t)

		err := applier.Apply(ctx, &Task{TaskId: "t1", Step: StepResetSales, UserId: "user1"})

		require.NoError(t, err)
		player, err := store.GetPlayer(ctx, "user1")
		require.NoError(t, err)
		assert.Zero(t, player.SalesSincePurchase)
	})

	t.Run("Award Bonus", func(t *testing.T) {
		applier, store := newTestApplier(t)

		err := applier.Apply(ctx, &Task{TaskId: "t1", Step: StepAwardBonus, UserId: "user1", Tickets: 1})

		require.NoError(t, err)
		player, err := store.GetPlayer(ctx, "user1")
		require.NoError(t, err)
		assert.Equal(t, int64(1), player.Tickets)
	})

	t.Run("Refund Ticket", func(t *testing.T) {
		applier, store := newTestApplier(t)

		err := applier.Apply(ctx, &Task{TaskId: "t1", Step: StepRefundTicket, UserId: "user1", Elite: 1})

		require.NoError(t, err)
		player, err := store.GetPlayer(ctx, "user1")
		require.NoError(t, err)
		assert.Equal(t, int64(1), player.EliteTickets)
	})

	t.Run("Append Trade Is Idempotent Across Redelivery", func(t *testing.T) {
		applier, store := newTestApplier(t)
		soldAt := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
		task := &Task{TaskId: "t1", Step: StepAppendTrade, Seller: "seller1", Buyer: "user1", CardId: "c1", Price: 500, SoldAt: soldAt}

		require.NoError(t, applier.Apply(ctx, task))
		require.NoError(t, applier.Apply(ctx, task))

		count, err := store.CountPairTrades(ctx, "seller1", "user1", time.Time{})
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("Unknown Step", func(t *testing.T) {
		applier, _ := newTestApplier(t)

		err := applier.Apply(ctx, &Task{TaskId: "t1", Step: Step("mint_card")})

		assert.ErrorContains(t, err, "unknown reconciliation step")
	})
}
