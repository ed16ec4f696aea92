package storage

import (
	"context"

	"github.com/Denizbukut/TCG-sub001/pkg/models"
)

// CardReader defines the interface for the read-only card catalog.
type CardReader interface {
	// GetCard retrieves a catalog entry by card ID.
	GetCard(ctx context.Context, cardID string) (*models.Card, error)

	// ListCardsByRarity retrieves all catalog entries of the given rarity.
	ListCardsByRarity(ctx context.Context, rarity models.Rarity) ([]models.Card, error)
}
