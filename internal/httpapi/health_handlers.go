package httpapi

import (
	"net/http"
	"time"

	"jobpay-engine/internal/insights"
)

type HealthHandler struct {
	Service *insights.Service
}

// Health reports liveness only; it never touches the source.
func (h HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"ok":   true,
		"time": time.Now().Format(time.RFC3339),
	}
	if h.Service != nil {
		resp["source"] = h.Service.Source().Name()
		if snap, ok := h.Service.Cache().Peek(h.Service.Source().Name()); ok {
			resp["cached_at"] = snap.FetchedAt.Format(time.RFC3339)
		}
	}
	writeJSON(w, resp)
}
