package httpapi

import (
	"net/http"

	"jobpay-engine/internal/store"
)

type DBHandler struct {
	Store *store.DB
}

func (h DBHandler) Checkpoint(w http.ResponseWriter, r *http.Request) {
	if !isLocal(r) {
		WriteError(w, r, http.StatusForbidden, "forbidden", "forbidden")
		return
	}
	if h.Store == nil {
		WriteError(w, r, http.StatusConflict, "no_store", "the sqlite store is not open")
		return
	}

	if err := h.Store.Checkpoint(r.Context()); err != nil {
		WriteError(w, r, http.StatusInternalServerError, "checkpoint_failed", err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
