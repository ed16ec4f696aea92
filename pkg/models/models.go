package models

import (
	"time"
)

// ListingStatus defines the possible states of a marketplace listing.
type ListingStatus string

const (
	ACTIVE    ListingStatus = "ACTIVE"
	LOCKED    ListingStatus = "LOCKED"
	SOLD      ListingStatus = "SOLD"
	CANCELLED ListingStatus = "CANCELLED"
)

// Rarity is the rarity tier of a card.
type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

// Listing represents a resale offer for one owned card at a fixed price.
// Prices are stored in coin cents to keep DynamoDB comparisons numeric.
// It includes dynamodbav tags for marshalling.
type Listing struct {
	Id            string        `dynamodbav:"id"`
	Seller        string        `dynamodbav:"seller"`
	CardId        string        `dynamodbav:"card_id"`
	CardName      string        `dynamodbav:"card_name"`
	Rarity        Rarity        `dynamodbav:"rarity"`
	Level         int           `dynamodbav:"level"`
	Price         int64         `dynamodbav:"price"`
	Status        ListingStatus `dynamodbav:"status"`
	LockExpiresAt *time.Time    `dynamodbav:"lock_expires_at,omitempty"`
	Buyer         string        `dynamodbav:"buyer,omitempty"`
	SoldAt        *time.Time    `dynamodbav:"sold_at,omitempty"`
	CreatedAt     time.Time     `dynamodbav:"created_at"`
	UpdatedAt     time.Time     `dynamodbav:"updated_at"`
}

// LockRemaining reports how long the current lease still has to run at the
// given instant. Zero or negative means the lease is stale.
func (l *Listing) LockRemaining(now time.Time) time.Duration {
	if l.Status != LOCKED || l.LockExpiresAt == nil {
		return 0
	}
	return l.LockExpiresAt.Sub(now)
}

// Player represents the per-user balance row: draw tickets, score, and the
// consecutive-sales counter used by the sell throttle. Version backs the
// optimistic-lock writes.
type Player struct {
	UserId             string    `json:"user_id" dynamodbav:"user_id"`
	Tickets            int64     `json:"tickets" dynamodbav:"tickets"`
	EliteTickets       int64     `json:"elite_tickets" dynamodbav:"elite_tickets"`
	Score              int64     `json:"score" dynamodbav:"score"`
	SalesSincePurchase int64     `json:"sales_since_purchase" dynamodbav:"sales_since_purchase"`
	Version            int64     `json:"version" dynamodbav:"version"`
	CreatedAt          time.Time `json:"created_at" dynamodbav:"created_at"`
}

// Card is the catalog entry for a card design. Levels belong to owned copies,
// not to the catalog.
type Card struct {
	CardId string `dynamodbav:"card_id"`
	Name   string `dynamodbav:"name"`
	Rarity Rarity `dynamodbav:"rarity"`
}

// InventorySlot is one (user, card, level) holding with a copy count.
type InventorySlot struct {
	UserId   string `dynamodbav:"user_id"`
	CardKey  string `dynamodbav:"card_key"`
	CardId   string `dynamodbav:"card_id"`
	Level    int    `dynamodbav:"level"`
	Quantity int64  `dynamodbav:"quantity"`
}

// TradeRecord is a single entry in the append-only trade ledger, written once
// per completed sale. PairKey is the GSI partition key for the anti-fraud
// window query; TsEpoch is its numeric sort key. RFC3339 strings do not order
// lexicographically across fractional-second lengths, so the range condition
// compares epoch nanoseconds instead.
type TradeRecord struct {
	TradeId   string    `dynamodbav:"trade_id"`
	Seller    string    `dynamodbav:"seller"`
	Buyer     string    `dynamodbav:"buyer"`
	CardId    string    `dynamodbav:"card_id"`
	Price     int64     `dynamodbav:"price"`
	Timestamp time.Time `dynamodbav:"timestamp"`
	TsEpoch   int64     `dynamodbav:"ts_epoch"`
	PairKey   string    `dynamodbav:"pair_key"`
}

// TradePairKey builds the ledger GSI partition key for a (seller, buyer) pair.
func TradePairKey(seller, buyer string) string {
	return seller + "#" + buyer
}

// QuotaRow is a shared daily usage counter. The row is keyed by subject and
// calendar day and is the single serialization point for that day's budget.
type QuotaRow struct {
	QuotaKey  string `dynamodbav:"quota_key"`
	Subject   string `dynamodbav:"subject"`
	Day       string `dynamodbav:"day"`
	Reserved  int64  `dynamodbav:"reserved"`
	Confirmed int64  `dynamodbav:"confirmed"`
	Cap       int64  `dynamodbav:"cap"`
}

// QuotaKey builds the counter row key for a subject on a calendar day.
func QuotaKey(subject, day string) string {
	return subject + "#" + day
}

// DayKey formats an instant as the calendar-day key used by quota rows. Days
// roll over in UTC.
func DayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
