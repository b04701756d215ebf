package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"jobpay-engine/internal/insights"
)

type APIError struct {
	Error struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		RequestID string `json:"request_id,omitempty"`
	} `json:"error"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	var e APIError
	e.Error.Code = code
	e.Error.Message = message
	e.Error.RequestID = RequestIDFrom(r.Context())
	WriteJSON(w, status, e)
}

// writeLoadError maps dataset load failures onto the error envelope.
func writeLoadError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, insights.ErrSourceUnavailable):
		WriteError(w, r, http.StatusServiceUnavailable, "source_unavailable", err.Error())
	case errors.Is(err, insights.ErrNoUsableData):
		WriteError(w, r, http.StatusUnprocessableEntity, "no_usable_data", err.Error())
	default:
		WriteError(w, r, http.StatusInternalServerError, "internal_error", err.Error())
	}
}
