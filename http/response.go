package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/collagery/collagery"
)

// ErrorResponse is the JSON error body: {"error": "<message>"}.
type ErrorResponse struct {
	Error string `json:"error"`
}

// WriteError writes a JSON error response.
func WriteError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(ErrorResponse{Error: message}); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

// HandleError maps an error to the nearest taxonomy status code. Anything
// outside the known sentinels is an upstream or internal failure and becomes
// a 500 with a generic message; stored-error details never leak to callers.
func HandleError(w http.ResponseWriter, r *http.Request, err error) {
	slog.Error("request error", "error", err, "request_id", RequestIDFromContext(r.Context()))

	switch {
	case errors.Is(err, collagery.ErrNotFound):
		WriteError(w, http.StatusNotFound, "post not found")
	case errors.Is(err, collagery.ErrInvalidInput):
		WriteError(w, http.StatusBadRequest, "invalid request")
	case errors.Is(err, collagery.ErrUnauthorized):
		WriteError(w, http.StatusUnauthorized, "unauthorized")
	default:
		WriteError(w, http.StatusInternalServerError, "internal error")
	}
}

// WriteJSON writes a JSON response.
func WriteJSON(w http.ResponseWriter, code int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	return json.NewEncoder(w).Encode(data)
}
