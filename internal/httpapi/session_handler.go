package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
)

// UserBinder is the slice of the synchronizer that session changes drive.
type UserBinder interface {
	SetUser(ctx context.Context, userID int64) error
}

// SessionHandler binds the storefront to a user. Authentication itself is
// external; only the resulting identifier passes through here.
type SessionHandler struct {
	carts     UserBinder
	checkouts CheckoutService
}

func NewSessionHandler(carts UserBinder, checkouts CheckoutService) *SessionHandler {
	return &SessionHandler{carts: carts, checkouts: checkouts}
}

type SetUserRequestDTO struct {
	UserID int64 `json:"userId"`
}

// SetUser rebinds the synchronizer and abandons any in-flight checkout; a
// stale attempt must never outlive the session that started it.
func (h *SessionHandler) SetUser(w http.ResponseWriter, r *http.Request) {
	var req SetUserRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	h.checkouts.Reset()
	if err := h.carts.SetUser(r.Context(), req.UserID); err != nil {
		handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
