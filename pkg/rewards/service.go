package rewards

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/google/uuid"

	"github.com/Denizbukut/TCG-sub001/pkg/clock"
	"github.com/Denizbukut/TCG-sub001/pkg/models"
	"github.com/Denizbukut/TCG-sub001/pkg/quota"
	"github.com/Denizbukut/TCG-sub001/pkg/reconcile"
	"github.com/Denizbukut/TCG-sub001/pkg/storage"
)

// ErrUnknownTable is returned when a draw names a table that does not exist.
var ErrUnknownTable = errors.New("unknown reward table")

// LegendarySubject is the quota-counter subject capping legendary drops per
// day across all players.
const LegendarySubject = "legendary-draws"

// DrawResult is the outcome of one ticket draw.
type DrawResult struct {
	Rarity     models.Rarity
	Card       *models.Card
	Downgraded bool
}

// Service runs the ticket-draw flow: spend a ticket, pick an outcome from the
// tier's weighted table, enforce the global daily legendary cap, and credit
// the drawn card.
type Service struct {
	store  storage.DrawStore
	quota  *quota.Service
	tables map[string]*Table
	queue  reconcile.Queue
	clock  clock.Clock
	logger *slog.Logger
	roll   func() float64
}

// New creates a draw service. roll must return uniform values in [0,100); nil
// uses math/rand.
func New(store storage.DrawStore, quotaSvc *quota.Service, tables map[string]*Table, queue reconcile.Queue, clk clock.Clock, logger *slog.Logger, roll func() float64) *Service {
	if roll == nil {
		roll = func() float64 { return rand.Float64() * 100 }
	}
	return &Service{
		store:  store,
		quota:  quotaSvc,
		tables: tables,
		queue:  queue,
		clock:  clk,
		logger: logger,
		roll:   roll,
	}
}

// Draw spends one ticket of the table's tier and returns the drawn card.
//
// Legendary outcomes reserve a unit of the shared daily cap before any card is
// credited; when the cap is spent the outcome is downgraded rather than
// failing the draw. The reservation is confirmed once the card lands in the
// player's inventory and released if it does not.
func (s *Service) Draw(ctx context.Context, userID, tableID string) (*DrawResult, error) {
	table, ok := s.tables[tableID]
	if !ok {
		return nil, ErrUnknownTable
	}

	tier := storage.TierStandard
	if tableID == TableElite {
		tier = storage.TierElite
	}

	if err := s.store.SpendTicket(ctx, userID, tier); err != nil {
		return nil, err
	}

	outcome := table.Pick(s.roll())
	result := &DrawResult{Rarity: outcome.Rarity}

	var reservation *quota.Reservation
	if outcome.Rarity == models.RarityLegendary {
		res, err := s.quota.Reserve(ctx, LegendarySubject)
		switch {
		case errors.Is(err, storage.ErrQuotaExceeded):
			result.Rarity = table.Downgrade()
			result.Downgraded = true
			s.logger.Info("legendary cap reached, downgrading draw",
				slog.String("user_id", userID),
				slog.String("downgrade", string(result.Rarity)))
		case err != nil:
			return nil, fmt.Errorf("failed to reserve legendary quota: %w", err)
		default:
			reservation = res
		}
	}

	card, err := s.pickCard(ctx, result.Rarity)
	if err != nil {
		s.releaseReservation(ctx, reservation)
		s.refundTicket(ctx, userID, tier)
		return nil, err
	}

	if err := s.store.DepositCard(ctx, userID, card.CardId, 1); err != nil {
		s.releaseReservation(ctx, reservation)
		s.refundTicket(ctx, userID, tier)
		return nil, fmt.Errorf("failed to credit drawn card: %w", err)
	}

	if reservation != nil {
		if err := s.quota.Confirm(ctx, reservation); err != nil {
			// The unit is already counted in reserved; confirmation is
			// accounting only, so the draw still succeeds.
			s.logger.Error("failed to confirm legendary reservation", slog.Any("error", err))
		}
	}

	result.Card = card
	return result, nil
}

func (s *Service) pickCard(ctx context.Context, rarity models.Rarity) (*models.Card, error) {
	cards, err := s.store.ListCardsByRarity(ctx, rarity)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s cards: %w", rarity, err)
	}
	if len(cards) == 0 {
		return nil, fmt.Errorf("no %s cards in catalog", rarity)
	}
	card := cards[int(s.roll())%len(cards)]
	return &card, nil
}

// refundTicket gives back the ticket consumed by a draw that failed after the
// spend. A refund that cannot be written is queued for reconciliation so the
// ticket is not silently lost.
func (s *Service) refundTicket(ctx context.Context, userID string, tier storage.TicketTier) {
	var tickets, elite int64 = 1, 0
	if tier == storage.TierElite {
		tickets, elite = 0, 1
	}

	err := s.store.AddTickets(ctx, userID, tickets, elite)
	if err == nil {
		return
	}
	s.logger.Error("ticket refund failed, queueing for reconciliation",
		slog.String("user_id", userID),
		slog.Any("error", err))

	task := &reconcile.Task{
		TaskId:     uuid.New().String(),
		Step:       reconcile.StepRefundTicket,
		UserId:     userID,
		Tickets:    tickets,
		Elite:      elite,
		EnqueuedAt: s.clock.Now(),
	}
	if err := s.queue.Enqueue(ctx, task); err != nil {
		s.logger.Error("CRITICAL: failed to enqueue ticket refund",
			slog.String("task_id", task.TaskId),
			slog.String("user_id", userID),
			slog.Any("error", err))
	}
}

func (s *Service) releaseReservation(ctx context.Context, r *quota.Reservation) {
	if r == nil {
		return
	}
	if err := s.quota.Release(ctx, r); err != nil {
		s.logger.Error("failed to release legendary reservation", slog.Any("error", err))
	}
}
