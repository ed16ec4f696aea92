package mapping

import (
	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"
	"github.com/shopspring/decimal"

	"github.com/Denizbukut/TCG-sub001/pkg/api"
	"github.com/Denizbukut/TCG-sub001/pkg/market"
	"github.com/Denizbukut/TCG-sub001/pkg/models"
	"github.com/Denizbukut/TCG-sub001/pkg/rewards"
	"github.com/Denizbukut/TCG-sub001/pkg/storage"
)

// ToApiListing converts a domain Listing model to an API Listing model.
func ToApiListing(l *models.Listing) *api.Listing {
	out := &api.Listing{
		Id:            toApiUUID(l.Id),
		Seller:        l.Seller,
		CardId:        l.CardId,
		CardName:      l.CardName,
		Rarity:        api.Rarity(l.Rarity),
		Level:         l.Level,
		Price:         CentsToPrice(l.Price),
		Status:        api.ListingStatus(l.Status),
		LockExpiresAt: l.LockExpiresAt,
		SoldAt:        l.SoldAt,
		CreatedAt:     l.CreatedAt,
	}
	if l.Buyer != "" {
		out.Buyer = &l.Buyer
	}
	return out
}

// ToApiListingPage converts a domain listing page to its API model.
func ToApiListingPage(page *storage.ListingPage) *api.ListingPage {
	out := &api.ListingPage{
		Listings: make([]api.Listing, 0, len(page.Listings)),
		Page:     page.Page,
		PageSize: page.PageSize,
		Total:    page.Total,
	}
	for i := range page.Listings {
		out.Listings = append(out.Listings, *ToApiListing(&page.Listings[i]))
	}
	return out
}

// ToApiPurchaseResult converts a domain purchase result to its API model.
func ToApiPurchaseResult(res *market.PurchaseResult) *api.PurchaseResult {
	out := &api.PurchaseResult{
		ListingId:    toApiUUID(res.Listing.Id),
		Tickets:      res.Tickets,
		EliteTickets: res.EliteTickets,
		Score:        res.Score,
		BonusAwarded: res.BonusAwarded,
	}
	if res.Partial {
		out.Partial = &res.Partial
		out.FailedSteps = &res.FailedSteps
	}
	return out
}

// ToApiDrawResult converts a domain draw result to its API model.
func ToApiDrawResult(res *rewards.DrawResult) *api.DrawResult {
	out := &api.DrawResult{
		Rarity:   api.Rarity(res.Rarity),
		CardId:   res.Card.CardId,
		CardName: res.Card.Name,
	}
	if res.Downgraded {
		out.Downgraded = &res.Downgraded
	}
	return out
}

// ToApiPlayer converts a domain Player model to an API Player model.
func ToApiPlayer(p *models.Player) *api.Player {
	return &api.Player{
		UserId:             p.UserId,
		Tickets:            p.Tickets,
		EliteTickets:       p.EliteTickets,
		Score:              p.Score,
		SalesSincePurchase: p.SalesSincePurchase,
	}
}

// ToDomainNewPlayer converts an API NewPlayer model to a domain Player model.
func ToDomainNewPlayer(np *api.NewPlayer) *models.Player {
	return &models.Player{
		UserId:  np.UserId,
		Tickets: 3, // Seed new players with 3 standard tickets.
		Version: 1,
	}
}

// PriceToCents parses a decimal coin price string into integer cents.
func PriceToCents(price string) (int64, error) {
	d, err := decimal.NewFromString(price)
	if err != nil {
		return 0, err
	}
	return d.Shift(2).IntPart(), nil
}

// CentsToPrice renders integer cents as a decimal coin price string.
func CentsToPrice(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}

func toApiUUID(id string) openapi_types.UUID {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil
	}
	return parsed
}
