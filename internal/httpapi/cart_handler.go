package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/SPLSaul/DulceTentacionApp2.0/internal/domain"
)

// CartService is the synchronizer surface the façade exposes.
type CartService interface {
	Snapshot() *domain.Cart
	Busy() bool
	LastError() string
	ClearError()
	Fetch(ctx context.Context) error
	FetchWithRetry(ctx context.Context) error
	UpdateQuantity(ctx context.Context, itemID int64, quantity int) error
	RemoveItem(ctx context.Context, itemID int64) error
	Clear(ctx context.Context) error
}

type CartHandler struct {
	carts CartService
}

func NewCartHandler(carts CartService) *CartHandler {
	return &CartHandler{carts: carts}
}

type CartStateDTO struct {
	Cart      *domain.Cart `json:"cart"`
	Busy      bool         `json:"busy"`
	LastError string       `json:"lastError,omitempty"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

// GetCart returns the observable cart state without touching the network.
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, CartStateDTO{
		Cart:      h.carts.Snapshot(),
		Busy:      h.carts.Busy(),
		LastError: h.carts.LastError(),
	})
}

// Refresh re-fetches the remote cart; ?retry=1 selects the bounded-retry
// variant.
func (h *CartHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var err error
	if r.URL.Query().Get("retry") == "1" {
		err = h.carts.FetchWithRetry(r.Context())
	} else {
		err = h.carts.Fetch(r.Context())
	}
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, CartStateDTO{
		Cart:      h.carts.Snapshot(),
		Busy:      h.carts.Busy(),
		LastError: h.carts.LastError(),
	})
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	itemID, err := strconv.ParseInt(chi.URLParam(r, "itemID"), 10, 64)
	if err != nil || itemID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_item_id", "item id must be a positive integer")
		return
	}

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Quantity < 1 || req.Quantity > 99 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 99")
		return
	}

	if err := h.carts.UpdateQuantity(r.Context(), itemID, req.Quantity); err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, h.carts.Snapshot())
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := strconv.ParseInt(chi.URLParam(r, "itemID"), 10, 64)
	if err != nil || itemID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_item_id", "item id must be a positive integer")
		return
	}

	if err := h.carts.RemoveItem(r.Context(), itemID); err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, h.carts.Snapshot())
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.carts.Clear(r.Context()); err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, h.carts.Snapshot())
}

// DismissError clears the last reported error message.
func (h *CartHandler) DismissError(w http.ResponseWriter, r *http.Request) {
	h.carts.ClearError()
	w.WriteHeader(http.StatusNoContent)
}
