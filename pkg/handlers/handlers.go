package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Denizbukut/TCG-sub001/pkg/api"
	"github.com/Denizbukut/TCG-sub001/pkg/mapping"
	"github.com/Denizbukut/TCG-sub001/pkg/market"
	"github.com/Denizbukut/TCG-sub001/pkg/quota"
	"github.com/Denizbukut/TCG-sub001/pkg/rewards"
	"github.com/Denizbukut/TCG-sub001/pkg/storage"
)

// ApiHandler implements the generated server interface.
// It holds our application's dependencies: the marketplace and draw services
// plus direct storage access for the plain read endpoints.
type ApiHandler struct {
	Market *market.Service
	Draws  *rewards.Service
	Quota  *quota.Service
	Store  storage.Storage
}

// NewApiHandler creates a new ApiHandler.
func NewApiHandler(marketSvc *market.Service, draws *rewards.Service, quotaSvc *quota.Service, store storage.Storage) *ApiHandler {
	return &ApiHandler{Market: marketSvc, Draws: draws, Quota: quotaSvc, Store: store}
}

// Make sure we conform to the interface
var _ api.ServerInterface = (*ApiHandler)(nil)

// CreatePlayer handles the logic for registering a new player.
func (h *ApiHandler) CreatePlayer(w http.ResponseWriter, r *http.Request) {
	// Decode the request body.
	var newPlayer api.NewPlayer
	if err := json.NewDecoder(r.Body).Decode(&newPlayer); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	if newPlayer.UserId == "" {
		http.Error(w, "user_id is required", http.StatusBadRequest)
		return
	}

	// Map the API request to our internal domain model.
	domainPlayer := mapping.ToDomainNewPlayer(&newPlayer)

	// Call the storage layer to create the balance row.
	createdPlayer, err := h.Store.CreatePlayer(r.Context(), domainPlayer)
	if err != nil {
		if strings.Contains(err.Error(), "already exists") { // This is a simplistic check.
			http.Error(w, "Player with this user ID already exists", http.StatusConflict)
		} else {
			http.Error(w, fmt.Sprintf("Failed to create player: %v", err), http.StatusInternalServerError)
		}
		return
	}

	// Map the domain model response back to the API model and respond.
	apiPlayer := mapping.ToApiPlayer(createdPlayer)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(apiPlayer); err != nil {
		http.Error(w, fmt.Sprintf("Failed to write response: %v", err), http.StatusInternalServerError)
	}
}

// GetPlayerByUserId handles the logic for retrieving a player's balances.
func (h *ApiHandler) GetPlayerByUserId(w http.ResponseWriter, r *http.Request, userId string) {
	// Call the storage layer to get the balance row.
	domainPlayer, err := h.Store.GetPlayer(r.Context(), userId)
	if err != nil {
		if errors.Is(err, storage.ErrPlayerNotFound) {
			http.Error(w, "Player not found", http.StatusNotFound)
		} else {
			http.Error(w, fmt.Sprintf("Failed to retrieve player: %v", err), http.StatusInternalServerError)
		}
		return
	}

	// Map the domain model to the API model and respond.
	apiPlayer := mapping.ToApiPlayer(domainPlayer)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(apiPlayer); err != nil {
		http.Error(w, fmt.Sprintf("Failed to write response: %v", err), http.StatusInternalServerError)
	}
}

// GetQuotaStatus handles the logic for reading a subject's remaining daily quota.
func (h *ApiHandler) GetQuotaStatus(w http.ResponseWriter, r *http.Request, subject string) {
	remaining, err := h.Quota.Remaining(r.Context(), subject)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to read quota: %v", err), http.StatusInternalServerError)
		return
	}

	status := api.QuotaStatus{
		Subject:   subject,
		Cap:       h.Quota.Cap(),
		Remaining: remaining,
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(status); err != nil {
		http.Error(w, fmt.Sprintf("Failed to write response: %v", err), http.StatusInternalServerError)
	}
}

// DrawReward handles the logic for a ticket draw.
func (h *ApiHandler) DrawReward(w http.ResponseWriter, r *http.Request) {
	// Decode the request body.
	var req api.DrawRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	if req.UserId == "" {
		http.Error(w, "user_id is required", http.StatusBadRequest)
		return
	}

	result, err := h.Draws.Draw(r.Context(), req.UserId, req.Table)
	if err != nil {
		switch {
		case errors.Is(err, rewards.ErrUnknownTable):
			http.Error(w, "Unknown reward table", http.StatusBadRequest)
		case errors.Is(err, storage.ErrPlayerNotFound):
			http.Error(w, "Player not found", http.StatusNotFound)
		case errors.Is(err, storage.ErrNoTickets):
			http.Error(w, "No tickets left", http.StatusUnprocessableEntity)
		default:
			http.Error(w, fmt.Sprintf("Failed to draw: %v", err), http.StatusInternalServerError)
		}
		return
	}

	apiResult := mapping.ToApiDrawResult(result)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(apiResult); err != nil {
		http.Error(w, fmt.Sprintf("Failed to write response: %v", err), http.StatusInternalServerError)
	}
}
