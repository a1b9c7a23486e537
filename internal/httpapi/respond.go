package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/SPLSaul/DulceTentacionApp2.0/internal/cartsync"
	"github.com/SPLSaul/DulceTentacionApp2.0/internal/checkout"
	"github.com/SPLSaul/DulceTentacionApp2.0/internal/remote"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// handleServiceError maps the failure taxonomy to HTTP status codes for the
// presentation layer.
func handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, cartsync.ErrNotIdentified):
		respondError(w, http.StatusUnauthorized, "not_identified", err.Error())
	case errors.Is(err, cartsync.ErrItemNotFound):
		respondError(w, http.StatusNotFound, "item_not_found", err.Error())
	case errors.Is(err, checkout.ErrInvalidState):
		respondError(w, http.StatusConflict, "invalid_state", err.Error())
	case errors.Is(err, checkout.ErrEmptyCart):
		respondError(w, http.StatusConflict, "empty_cart", err.Error())
	case errors.Is(err, context.Canceled):
		respondError(w, http.StatusServiceUnavailable, "canceled", "operation superseded")
	default:
		if re := remote.AsError(err); re != nil {
			switch re.Kind {
			case remote.KindTransient:
				respondError(w, http.StatusBadGateway, "upstream_error", re.Message)
			case remote.KindNetwork:
				respondError(w, http.StatusGatewayTimeout, "network_error", re.Message)
			default:
				respondError(w, re.Status, "upstream_rejected", re.Message)
			}
			return
		}
		respondError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}
