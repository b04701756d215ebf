package httpapi

import (
	"encoding/json"
	"net/http"

	"jobpay-engine/internal/insights"
)

// maxImportBytes bounds a POST /postings body.
const maxImportBytes = 32 << 20

type PostingsHandler struct {
	Importer *insights.Importer
}

// Import accepts a JSON array of posting documents.
func (h PostingsHandler) Import(w http.ResponseWriter, r *http.Request) {
	if h.Importer == nil {
		WriteError(w, r, http.StatusConflict, "import_unavailable", insights.ErrNoStore.Error())
		return
	}

	var docs []map[string]any
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxImportBytes))
	if err := dec.Decode(&docs); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", "expected a JSON array of objects: "+err.Error())
		return
	}
	if dec.More() {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", "trailing data")
		return
	}

	added, err := h.Importer.Import(r.Context(), docs, RequestIDFrom(r.Context()))
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "import_failed", err.Error())
		return
	}
	writeJSON(w, map[string]any{
		"ok":       true,
		"received": len(docs),
		"added":    added,
	})
}
