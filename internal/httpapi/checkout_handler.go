package httpapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/SPLSaul/DulceTentacionApp2.0/internal/checkout"
	"github.com/SPLSaul/DulceTentacionApp2.0/internal/domain"
)

// CheckoutService is the orchestrator surface the façade exposes.
type CheckoutService interface {
	State() checkout.State
	Methods() []domain.PaymentMethod
	StartCheckout(ctx context.Context) error
	ConfirmPayment(ctx context.Context, paymentMethodID string) error
	LoadPaymentMethods(ctx context.Context) ([]domain.PaymentMethod, error)
	Reset()
}

type CheckoutHandler struct {
	checkouts CheckoutService
}

func NewCheckoutHandler(checkouts CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{checkouts: checkouts}
}

type ConfirmRequestDTO struct {
	PaymentMethodID string `json:"paymentMethodId"`
}

// GetState returns the state machine's current phase and payload.
func (h *CheckoutHandler) GetState(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.checkouts.State())
}

func (h *CheckoutHandler) Start(w http.ResponseWriter, r *http.Request) {
	if err := h.checkouts.StartCheckout(r.Context()); err != nil {
		// The state already carries the failure; invalid-state and
		// precondition errors still get their own status code.
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, h.checkouts.State())
}

func (h *CheckoutHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	var req ConfirmRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.PaymentMethodID == "" {
		respondError(w, http.StatusBadRequest, "invalid_payment_method", "paymentMethodId is required")
		return
	}

	if err := h.checkouts.ConfirmPayment(r.Context(), req.PaymentMethodID); err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, h.checkouts.State())
}

func (h *CheckoutHandler) Reset(w http.ResponseWriter, r *http.Request) {
	h.checkouts.Reset()
	respondJSON(w, http.StatusOK, h.checkouts.State())
}

func (h *CheckoutHandler) PaymentMethods(w http.ResponseWriter, r *http.Request) {
	methods, err := h.checkouts.LoadPaymentMethods(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, methods)
}
