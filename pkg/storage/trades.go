package storage

import (
	"context"
	"time"

	"github.com/Denizbukut/TCG-sub001/pkg/models"
)

// TradeLedger defines the interface for the append-only trade ledger.
type TradeLedger interface {
	// AppendTrade writes one trade record. Records are never updated.
	AppendTrade(ctx context.Context, trade *models.TradeRecord) error

	// CountPairTrades counts trades between the exact (seller, buyer) pair
	// with a timestamp at or after since.
	CountPairTrades(ctx context.Context, seller, buyer string, since time.Time) (int, error)
}
