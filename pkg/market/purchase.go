package market

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Denizbukut/TCG-sub001/pkg/models"
	"github.com/Denizbukut/TCG-sub001/pkg/reconcile"
	"github.com/Denizbukut/TCG-sub001/pkg/storage"
)

// PurchaseResult reports a completed sale. Partial marks a sale whose listing
// transition committed but where one or more side-effect writes are still
// pending reconciliation.
type PurchaseResult struct {
	Listing      *models.Listing
	Tickets      int64
	EliteTickets int64
	Score        int64
	BonusAwarded bool
	Partial      bool
	FailedSteps  []string
}

// sagaStep is one independent post-finalize write. Steps commit individually;
// a step that exhausts its retries is queued for reconciliation without
// affecting the others.
type sagaStep struct {
	name string
	run  func() error
	task *reconcile.Task
}

// Purchase runs the purchase saga for a buyer who has already paid.
//
// The finalize CAS is pinned as the first mutation: no balance or inventory
// write happens until the listing is irrevocably SOLD, so a losing concurrent
// caller has nothing to compensate. Everything after the CAS is best-effort
// and individually retried; a persistent failure downgrades the result to
// partial success, never to a rollback, and never re-attempts the CAS.
func (s *Service) Purchase(ctx context.Context, buyer, listingID, paymentRef string) (*PurchaseResult, error) {
	listing, err := s.store.GetListing(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing.Status == models.SOLD {
		return nil, storage.ErrAlreadySold
	}
	if listing.Seller == buyer {
		return nil, ErrSelfPurchase
	}
	if _, err := s.store.GetPlayer(ctx, buyer); err != nil {
		return nil, err
	}

	// Payment settles outside this service and must be verified before any
	// mutation here begins.
	if err := s.payments.Verify(ctx, buyer, listing.Seller, listing.Price, paymentRef); err != nil {
		// Keep the verifier's sentinel visible so callers can tell an
		// insufficient-funds rejection from a bad reference.
		return nil, fmt.Errorf("%w: %w", ErrPaymentRejected, err)
	}

	// The bonus decision reads the ledger before this sale's record exists;
	// after the append, the pair would always look like a repeat trade.
	allowBonus, err := s.fraud.MayAward(ctx, buyer, listing.Seller)
	if err != nil {
		s.logger.Error("anti-fraud check failed, withholding bonus",
			slog.String("listing_id", listingID),
			slog.Any("error", err))
		allowBonus = false
	}

	// The single linearization point. Exactly one concurrent caller gets past
	// this line for a given listing.
	sold, err := s.store.FinalizeListing(ctx, listingID, buyer, s.clock.Now())
	if err != nil {
		return nil, err
	}

	result := &PurchaseResult{Listing: sold, BonusAwarded: allowBonus}
	for _, step := range s.purchaseSteps(ctx, sold, buyer, allowBonus) {
		if err := s.retryStep(ctx, step.name, step.run); err != nil {
			s.logger.Error("purchase side-effect failed, queueing for reconciliation",
				slog.String("listing_id", sold.Id),
				slog.String("step", step.name),
				slog.Any("error", err))
			s.enqueueTask(ctx, step.task)
			result.Partial = true
			result.FailedSteps = append(result.FailedSteps, step.name)
		}
	}

	// Best-effort read of the buyer's updated totals.
	if player, err := s.store.GetPlayer(ctx, buyer); err == nil {
		result.Tickets = player.Tickets
		result.EliteTickets = player.EliteTickets
		result.Score = player.Score
	}

	return result, nil
}

// purchaseSteps builds the independent side-effect list for a finalized sale.
// Order is irrelevant: each step is its own single-row write.
func (s *Service) purchaseSteps(ctx context.Context, sold *models.Listing, buyer string, allowBonus bool) []sagaStep {
	delta := scoreDelta(string(sold.Rarity), sold.Level)
	tradeID := uuid.New().String()
	now := s.clock.Now()

	steps := []sagaStep{
		{
			name: "deposit_card",
			run:  func() error { return s.store.DepositCard(ctx, buyer, sold.CardId, sold.Level) },
			task: &reconcile.Task{
				Step: reconcile.StepDepositCard, ListingId: sold.Id,
				UserId: buyer, CardId: sold.CardId, Level: sold.Level,
			},
		},
		{
			name: "debit_seller_score",
			run:  func() error { return s.store.AdjustScore(ctx, sold.Seller, -delta) },
			task: &reconcile.Task{
				Step: reconcile.StepAdjustScore, ListingId: sold.Id,
				UserId: sold.Seller, ScoreDelta: -delta,
			},
		},
		{
			name: "credit_buyer_score",
			run:  func() error { return s.store.AdjustScore(ctx, buyer, delta) },
			task: &reconcile.Task{
				Step: reconcile.StepAdjustScore, ListingId: sold.Id,
				UserId: buyer, ScoreDelta: delta,
			},
		},
		{
			name: "increment_seller_sales",
			run:  func() error { return s.store.IncrementSales(ctx, sold.Seller) },
			task: &reconcile.Task{
				Step: reconcile.StepIncrementSales, ListingId: sold.Id,
				UserId: sold.Seller,
			},
		},
		{
			name: "reset_buyer_sales",
			run:  func() error { return s.store.ResetSales(ctx, buyer) },
			task: &reconcile.Task{
				Step: reconcile.StepResetSales, ListingId: sold.Id,
				UserId: buyer,
			},
		},
		{
			name: "append_trade",
			run: func() error {
				return s.store.AppendTrade(ctx, &models.TradeRecord{
					TradeId:   tradeID,
					Seller:    sold.Seller,
					Buyer:     buyer,
					CardId:    sold.CardId,
					Price:     sold.Price,
					Timestamp: now,
				})
			},
			task: &reconcile.Task{
				TaskId: tradeID, Step: reconcile.StepAppendTrade, ListingId: sold.Id,
				Seller: sold.Seller, Buyer: buyer, CardId: sold.CardId,
				Price: sold.Price, SoldAt: now,
			},
		},
	}

	if allowBonus {
		steps = append(steps, sagaStep{
			name: "award_bonus",
			run:  func() error { return s.store.AddTickets(ctx, buyer, s.cfg.BonusTickets, 0) },
			task: &reconcile.Task{
				Step: reconcile.StepAwardBonus, ListingId: sold.Id,
				UserId: buyer, Tickets: s.cfg.BonusTickets,
			},
		})
	}

	return steps
}

// retryStep runs one side-effect with bounded retries and exponential backoff.
func (s *Service) retryStep(ctx context.Context, name string, run func() error) error {
	var err error
	for attempt := 0; attempt < s.cfg.SideEffectRetries; attempt++ {
		if err = run(); err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return err
		case <-time.After(stepBackoff(attempt)):
		}
	}
	return err
}

const (
	stepBaseDelay = 50 * time.Millisecond
	stepMaxDelay  = 1 * time.Second
)

// stepBackoff returns the exponential backoff duration for a retry attempt:
// stepBaseDelay * 2^attempt, capped at stepMaxDelay.
func stepBackoff(attempt int) time.Duration {
	if attempt < 0 {
		return stepBaseDelay
	}
	if attempt > 10 {
		return stepMaxDelay
	}
	backoff := stepBaseDelay * time.Duration(1<<attempt)
	if backoff > stepMaxDelay {
		return stepMaxDelay
	}
	return backoff
}

// enqueueTask hands a failed side-effect to the reconciliation queue. The sale
// is already final; losing the task is logged as critical because only the
// out-of-band worker can repair the gap now.
func (s *Service) enqueueTask(ctx context.Context, task *reconcile.Task) {
	if task.TaskId == "" {
		task.TaskId = uuid.New().String()
	}
	task.EnqueuedAt = s.clock.Now()
	if err := s.queue.Enqueue(ctx, task); err != nil {
		s.logger.Error("CRITICAL: failed to enqueue reconciliation task",
			slog.String("task_id", task.TaskId),
			slog.String("step", string(task.Step)),
			slog.String("listing_id", task.ListingId),
			slog.Any("error", err))
	}
}
