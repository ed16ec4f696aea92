// Package reconcile carries failed post-finalize saga side-effects to an
// out-of-band worker. Once a sale is finalized it is never rolled back; a
// side-effect that keeps failing is queued here and re-applied later, never in
// a way that re-invokes the finalize CAS.
package reconcile

import (
	"context"
	"time"
)

// Step identifies which saga side-effect a task re-applies.
type Step string

const (
	StepDepositCard    Step = "deposit_card"
	StepAdjustScore    Step = "adjust_score"
	StepIncrementSales Step = "increment_sales"
	StepResetSales     Step = "reset_sales"
	StepAppendTrade    Step = "append_trade"
	StepAwardBonus     Step = "award_bonus"
	StepRefundTicket   Step = "refund_ticket"
)

// Task is one queued side-effect. Re-application is at-least-once; every step
// it names is an independent single-row write that is safe to repeat from the
// reconciler's point of view (the sale itself is already final).
type Task struct {
	TaskId     string    `json:"task_id"`
	Step       Step      `json:"step"`
	ListingId  string    `json:"listing_id"`
	UserId     string    `json:"user_id"`
	CardId     string    `json:"card_id,omitempty"`
	Level      int       `json:"level,omitempty"`
	ScoreDelta int64     `json:"score_delta,omitempty"`
	Tickets    int64     `json:"tickets,omitempty"`
	Elite      int64     `json:"elite,omitempty"`
	Seller     string    `json:"seller,omitempty"`
	Buyer      string    `json:"buyer,omitempty"`
	Price      int64     `json:"price,omitempty"`
	SoldAt     time.Time `json:"sold_at,omitempty"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// Queue defines the interface for handing tasks to the reconciliation worker.
type Queue interface {
	// Enqueue submits a task for out-of-band re-application.
	Enqueue(ctx context.Context, task *Task) error
}

// NoOpQueue is a queue that drops every task. Useful in tests.
type NoOpQueue struct{}

// Enqueue does nothing.
func (q *NoOpQueue) Enqueue(ctx context.Context, task *Task) error {
	return nil
}
