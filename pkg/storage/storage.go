package storage

// Storage defines the root interface for the entire data layer.
// It composes all available storage operations. Components should depend on the
// more granular interfaces (MarketStore, DrawStore, etc.) instead of this one.
type Storage interface {
	MarketStore
	DrawStore
}

// MarketStore defines the complete set of operations needed by the marketplace
// service: the listing lifecycle plus the balance, inventory, and ledger writes
// that make up the purchase saga.
type MarketStore interface {
	ListingStore
	PlayerStore
	InventoryStore
	TradeLedger
	CardReader
}

// DrawStore defines the operations needed by the ticket-draw flow.
type DrawStore interface {
	PlayerStore
	InventoryStore
	QuotaStore
	CardReader
}
