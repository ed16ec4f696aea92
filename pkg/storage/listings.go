package storage

import (
	"context"
	"time"

	"github.com/Denizbukut/TCG-sub001/pkg/models"
)

// ListingSort selects the ordering of ListListings results.
type ListingSort string

const (
	SortPriceAsc  ListingSort = "price_asc"
	SortPriceDesc ListingSort = "price_desc"
	SortNewest    ListingSort = "newest"
)

// ListingQuery carries the filters, sort, and page window for ListListings.
// Price bounds are in coin cents; zero values mean "no bound".
type ListingQuery struct {
	MinPrice int64
	MaxPrice int64
	Rarity   models.Rarity
	Search   string
	Sort     ListingSort
	Page     int
	PageSize int
}

// ListingPage is one page of ACTIVE listings plus the total match count.
type ListingPage struct {
	Listings []models.Listing
	Page     int
	PageSize int
	Total    int
}

// ListingReader defines the interface for reading listing data.
type ListingReader interface {
	// GetListing retrieves a listing by its ID.
	GetListing(ctx context.Context, listingID string) (*models.Listing, error)

	// ListListings retrieves one page of ACTIVE listings matching the query.
	ListListings(ctx context.Context, q ListingQuery) (*ListingPage, error)

	// CountActiveBySeller counts the seller's ACTIVE listings.
	CountActiveBySeller(ctx context.Context, seller string) (int, error)
}

// ListingManager defines the interface for the listing state machine. Every
// mutation is a single-row conditional write; there is no multi-row atomicity
// anywhere in this interface.
type ListingManager interface {
	// InsertListing creates a new ACTIVE listing row.
	InsertListing(ctx context.Context, listing *models.Listing) error

	// DeleteListing removes a listing row unconditionally. It exists as the
	// compensating action for a failed inventory withdrawal after insert.
	DeleteListing(ctx context.Context, listingID string) error

	// LockListing attempts the ACTIVE->LOCKED lease CAS with the given TTL.
	// A stale lease (LOCKED but expired at now) is taken over in the same
	// call. Returns *ErrListingLocked while another lease is live.
	LockListing(ctx context.Context, listingID string, now time.Time, ttl time.Duration) (*models.Listing, error)

	// FinalizeListing attempts the (ACTIVE|LOCKED)->SOLD CAS. This is the
	// single linearization point of a sale: exactly one concurrent caller
	// succeeds, all others get ErrAlreadySold.
	FinalizeListing(ctx context.Context, listingID, buyer string, now time.Time) (*models.Listing, error)

	// CancelListing removes the listing iff it is ACTIVE and owned by seller,
	// returning the removed row. Returns ErrNotOwnerOrNotActive otherwise.
	CancelListing(ctx context.Context, listingID, seller string) (*models.Listing, error)

	// UpdateListingPrice sets a new price iff the listing is ACTIVE and owned
	// by seller.
	UpdateListingPrice(ctx context.Context, listingID, seller string, newPrice int64, now time.Time) error
}

// ListingStore combines the reader and manager interfaces.
type ListingStore interface {
	ListingReader
	ListingManager
}
