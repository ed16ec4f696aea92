package reconcile

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Denizbukut/TCG-sub001/pkg/models"
	"github.com/Denizbukut/TCG-sub001/pkg/storage"
)

// Applier re-applies queued side-effect steps against the store. It is used by
// the reconciliation worker, not by the request path.
type Applier struct {
	Store  storage.MarketStore
	Logger *slog.Logger
}

// NewApplier creates an Applier.
func NewApplier(store storage.MarketStore, logger *slog.Logger) *Applier {
	return &Applier{Store: store, Logger: logger}
}

// Apply runs one task. Returning an error leaves the message on the queue for
// another attempt.
func (a *Applier) Apply(ctx context.Context, task *Task) error {
	a.Logger.Info("applying reconciliation task",
		slog.String("task_id", task.TaskId),
		slog.String("step", string(task.Step)),
		slog.String("listing_id", task.ListingId))

	switch task.Step {
	case StepDepositCard:
		return a.Store.DepositCard(ctx, task.UserId, task.CardId, task.Level)
	case StepAdjustScore:
		return a.Store.AdjustScore(ctx, task.UserId, task.ScoreDelta)
	case StepIncrementSales:
		return a.Store.IncrementSales(ctx, task.UserId)
	case StepResetSales:
		return a.Store.ResetSales(ctx, task.UserId)
	case StepAppendTrade:
		// The task ID doubles as the trade ID so that re-application cannot
		// write the record twice: the ledger put is conditioned on the ID
		// not existing.
		return a.Store.AppendTrade(ctx, &models.TradeRecord{
			TradeId:   task.TaskId,
			Seller:    task.Seller,
			Buyer:     task.Buyer,
			CardId:    task.CardId,
			Price:     task.Price,
			Timestamp: task.SoldAt,
		})
	case StepAwardBonus, StepRefundTicket:
		return a.Store.AddTickets(ctx, task.UserId, task.Tickets, task.Elite)
	default:
		return fmt.Errorf("unknown reconciliation step %q", task.Step)
	}
}
