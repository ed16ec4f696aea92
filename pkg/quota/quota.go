// Package quota enforces shared daily caps with a reserve/confirm two-phase
// counter. The (subject, day) row is a deliberate serialization point: all
// reservation traffic for one day funnels through a single atomic
// increment-if-below-cap, which is what makes the cap overrun-proof.
package quota

import (
	"context"

	"github.com/Denizbukut/TCG-sub001/pkg/clock"
	"github.com/Denizbukut/TCG-sub001/pkg/models"
	"github.com/Denizbukut/TCG-sub001/pkg/storage"
)

// Reservation is the outcome of a successful reserve: the post-increment count
// and the remaining budget for the day.
type Reservation struct {
	Subject   string
	Day       string
	Count     int64
	Remaining int64
}

// Service wraps the quota rows with day-key handling. Days roll over by key
// in UTC; no explicit reset is needed.
type Service struct {
	store storage.QuotaStore
	clock clock.Clock
	cap   int64
}

// New creates a quota service with the given daily cap.
func New(store storage.QuotaStore, clk clock.Clock, cap int64) *Service {
	return &Service{store: store, clock: clk, cap: cap}
}

// Reserve takes one unit of today's budget for the subject. Returns
// storage.ErrQuotaExceeded when the day's cap is spent.
func (s *Service) Reserve(ctx context.Context, subject string) (*Reservation, error) {
	day := models.DayKey(s.clock.Now())
	count, err := s.store.ReserveQuota(ctx, subject, day, s.cap)
	if err != nil {
		return nil, err
	}
	return &Reservation{
		Subject:   subject,
		Day:       day,
		Count:     count,
		Remaining: s.cap - count,
	}, nil
}

// Confirm marks a reservation as consumed. Accounting only; the reserved count
// already holds the unit.
func (s *Service) Confirm(ctx context.Context, r *Reservation) error {
	return s.store.ConfirmQuota(ctx, r.Subject, r.Day)
}

// Release backs out a reservation that was never consumed, freeing the unit
// for other callers the same day.
func (s *Service) Release(ctx context.Context, r *Reservation) error {
	return s.store.ReleaseQuota(ctx, r.Subject, r.Day)
}

// Remaining reports today's unreserved budget for the subject without taking
// any of it.
func (s *Service) Remaining(ctx context.Context, subject string) (int64, error) {
	day := models.DayKey(s.clock.Now())
	reserved, err := s.store.GetQuotaReserved(ctx, subject, day)
	if err != nil {
		return 0, err
	}
	remaining := s.cap - reserved
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

// Cap returns the configured daily cap.
func (s *Service) Cap() int64 {
	return s.cap
}
