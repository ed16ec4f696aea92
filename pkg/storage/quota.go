package storage

import (
	"context"
)

// QuotaStore defines the interface for the shared daily usage counters. The
// (subject, day) row is the single serialization point for that day's budget,
// so the increment must be one indivisible operation, never read-then-write.
type QuotaStore interface {
	// ReserveQuota atomically increments the counter iff reserved < cap,
	// creating the row on first use. Returns the post-increment count, or
	// ErrQuotaExceeded when the cap is reached.
	ReserveQuota(ctx context.Context, subject, day string, cap int64) (int64, error)

	// ConfirmQuota records that a reservation was consumed. Pure accounting;
	// the reserved count already reflects usage.
	ConfirmQuota(ctx context.Context, subject, day string) error

	// ReleaseQuota backs out one reservation that was never consumed.
	ReleaseQuota(ctx context.Context, subject, day string) error

	// GetQuotaReserved reads the current reserved count, zero if no row exists.
	GetQuotaReserved(ctx context.Context, subject, day string) (int64, error)
}
