package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/Denizbukut/TCG-sub001/pkg/api"
	"github.com/Denizbukut/TCG-sub001/pkg/mapping"
	"github.com/Denizbukut/TCG-sub001/pkg/market"
	"github.com/Denizbukut/TCG-sub001/pkg/models"
	"github.com/Denizbukut/TCG-sub001/pkg/storage"
)

// CreateListing handles the logic for creating a new listing.
func (h *ApiHandler) CreateListing(w http.ResponseWriter, r *http.Request) {
	// Decode the request body.
	var newListing api.NewListing
	if err := json.NewDecoder(r.Body).Decode(&newListing); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	priceCents, err := mapping.PriceToCents(newListing.Price)
	if err != nil {
		http.Error(w, fmt.Sprintf("Invalid price: %v", err), http.StatusBadRequest)
		return
	}

	// Call the marketplace service to create the listing.
	createdListing, err := h.Market.CreateListing(r.Context(), newListing.Seller, newListing.CardId, newListing.Level, priceCents)
	if err != nil {
		switch {
		case errors.Is(err, market.ErrPriceTooLow):
			http.Error(w, "Price is below the minimum for this card", http.StatusUnprocessableEntity)
		case errors.Is(err, market.ErrSellThrottled):
			http.Error(w, "Too many consecutive sales, purchase something first", http.StatusTooManyRequests)
		case errors.Is(err, market.ErrListingLimitReached):
			http.Error(w, "Active listing limit reached", http.StatusConflict)
		case errors.Is(err, storage.ErrCardNotOwned):
			http.Error(w, "Card not in inventory", http.StatusUnprocessableEntity)
		case errors.Is(err, storage.ErrCardNotFound):
			http.Error(w, "Card not found", http.StatusNotFound)
		case errors.Is(err, storage.ErrPlayerNotFound):
			http.Error(w, "Player not found", http.StatusNotFound)
		default:
			http.Error(w, fmt.Sprintf("Failed to create listing: %v", err), http.StatusInternalServerError)
		}
		return
	}

	// Map the domain model response back to the API model and respond.
	apiListing := mapping.ToApiListing(createdListing)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(apiListing); err != nil {
		http.Error(w, fmt.Sprintf("Failed to write response: %v", err), http.StatusInternalServerError)
	}
}

// ListListings handles the logic for browsing active listings.
func (h *ApiHandler) ListListings(w http.ResponseWriter, r *http.Request, params api.ListListingsParams) {
	q := storage.ListingQuery{}
	if params.Rarity != nil {
		q.Rarity = models.Rarity(*params.Rarity)
	}
	if params.Search != nil {
		q.Search = *params.Search
	}
	if params.MinPrice != nil {
		cents, err := mapping.PriceToCents(*params.MinPrice)
		if err != nil {
			http.Error(w, fmt.Sprintf("Invalid min_price: %v", err), http.StatusBadRequest)
			return
		}
		q.MinPrice = cents
	}
	if params.MaxPrice != nil {
		cents, err := mapping.PriceToCents(*params.MaxPrice)
		if err != nil {
			http.Error(w, fmt.Sprintf("Invalid max_price: %v", err), http.StatusBadRequest)
			return
		}
		q.MaxPrice = cents
	}
	if params.Sort != nil {
		q.Sort = storage.ListingSort(*params.Sort)
	}
	if params.Page != nil {
		q.Page = *params.Page
	}
	if params.PageSize != nil {
		q.PageSize = *params.PageSize
	}

	page, err := h.Market.ListListings(r.Context(), q)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to retrieve listings: %v", err), http.StatusInternalServerError)
		return
	}

	apiPage := mapping.ToApiListingPage(page)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(apiPage); err != nil {
		http.Error(w, fmt.Sprintf("Failed to write response: %v", err), http.StatusInternalServerError)
	}
}

// LockListingById handles the logic for reserving a listing ahead of payment.
func (h *ApiHandler) LockListingById(w http.ResponseWriter, r *http.Request, listingId openapi_types.UUID) {
	locked, err := h.Market.LockListing(r.Context(), listingId.String())
	if err != nil {
		var lockedErr *storage.ErrListingLocked
		switch {
		case errors.Is(err, storage.ErrListingNotFound):
			http.Error(w, "Listing not found", http.StatusNotFound)
		case errors.As(err, &lockedErr):
			http.Error(w, lockedErr.Error(), http.StatusConflict)
		case errors.Is(err, storage.ErrAlreadySold), errors.Is(err, storage.ErrListingNotActive):
			http.Error(w, "Listing is no longer available", http.StatusConflict)
		default:
			http.Error(w, fmt.Sprintf("Failed to lock listing: %v", err), http.StatusInternalServerError)
		}
		return
	}

	result := api.LockResult{
		ListingId:     listingId,
		LockExpiresAt: *locked.LockExpiresAt,
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(result); err != nil {
		http.Error(w, fmt.Sprintf("Failed to write response: %v", err), http.StatusInternalServerError)
	}
}

// PurchaseListingById handles the logic for buying a listing.
func (h *ApiHandler) PurchaseListingById(w http.ResponseWriter, r *http.Request, listingId openapi_types.UUID) {
	// Decode the request body.
	var req api.PurchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	if req.Buyer == "" {
		http.Error(w, "buyer is required", http.StatusBadRequest)
		return
	}

	result, err := h.Market.Purchase(r.Context(), req.Buyer, listingId.String(), req.PaymentReference)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrListingNotFound):
			http.Error(w, "Listing not found", http.StatusNotFound)
		case errors.Is(err, storage.ErrAlreadySold):
			http.Error(w, "Listing already sold", http.StatusConflict)
		case errors.Is(err, market.ErrSelfPurchase):
			http.Error(w, "Cannot purchase your own listing", http.StatusUnprocessableEntity)
		case errors.Is(err, storage.ErrInsufficientFunds):
			http.Error(w, "Insufficient funds", http.StatusPaymentRequired)
		case errors.Is(err, market.ErrPaymentRejected):
			http.Error(w, "Payment could not be verified", http.StatusPaymentRequired)
		case errors.Is(err, storage.ErrPlayerNotFound):
			http.Error(w, "Player not found", http.StatusNotFound)
		default:
			http.Error(w, fmt.Sprintf("Failed to purchase listing: %v", err), http.StatusInternalServerError)
		}
		return
	}

	apiResult := mapping.ToApiPurchaseResult(result)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(apiResult); err != nil {
		http.Error(w, fmt.Sprintf("Failed to write response: %v", err), http.StatusInternalServerError)
	}
}

// CancelListingById handles the logic for cancelling a listing.
func (h *ApiHandler) CancelListingById(w http.ResponseWriter, r *http.Request, listingId openapi_types.UUID) {
	// Decode the request body.
	var req api.CancelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	if err := h.Market.CancelListing(r.Context(), req.Seller, listingId.String()); err != nil {
		switch {
		case errors.Is(err, storage.ErrListingNotFound):
			http.Error(w, "Listing not found", http.StatusNotFound)
		case errors.Is(err, storage.ErrNotOwnerOrNotActive):
			http.Error(w, "Listing is not yours or no longer active", http.StatusConflict)
		default:
			http.Error(w, fmt.Sprintf("Failed to cancel listing: %v", err), http.StatusInternalServerError)
		}
		return
	}

	// Respond with a success status.
	w.WriteHeader(http.StatusNoContent)
}

// UpdateListingPriceById handles the logic for re-pricing a listing.
func (h *ApiHandler) UpdateListingPriceById(w http.ResponseWriter, r *http.Request, listingId openapi_types.UUID) {
	// Decode the request body.
	var req api.UpdatePriceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	priceCents, err := mapping.PriceToCents(req.Price)
	if err != nil {
		http.Error(w, fmt.Sprintf("Invalid price: %v", err), http.StatusBadRequest)
		return
	}

	if err := h.Market.UpdatePrice(r.Context(), req.Seller, listingId.String(), priceCents); err != nil {
		switch {
		case errors.Is(err, storage.ErrListingNotFound):
			http.Error(w, "Listing not found", http.StatusNotFound)
		case errors.Is(err, market.ErrPriceTooLow):
			http.Error(w, "Price is below the minimum for this card", http.StatusUnprocessableEntity)
		case errors.Is(err, storage.ErrNotOwnerOrNotActive):
			http.Error(w, "Listing is not yours or no longer active", http.StatusConflict)
		default:
			http.Error(w, fmt.Sprintf("Failed to update price: %v", err), http.StatusInternalServerError)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
