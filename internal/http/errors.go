// Package httpapi exposes the HTTP API layer of the service.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/stocksentry/stocksentry/internal/store"
)

// jsonError represents a JSON error payload.
type jsonError struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// WriteJSONError writes a JSON error payload with the given status code.
func WriteJSONError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(jsonError{Error: message, Details: details})
}

// writeStoreError maps store sentinel errors onto HTTP statuses; anything
// unrecognized is a persistence failure.
func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		WriteJSONError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, store.ErrDuplicateID):
		WriteJSONError(w, http.StatusConflict, "duplicate_id", err.Error())
	case errors.Is(err, store.ErrInsufficientStock):
		WriteJSONError(w, http.StatusConflict, "insufficient_stock", err.Error())
	default:
		WriteJSONError(w, http.StatusInternalServerError, "persistence_error", err.Error())
	}
}
