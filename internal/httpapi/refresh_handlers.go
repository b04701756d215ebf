package httpapi

import (
	"errors"
	"net/http"

	"jobpay-engine/internal/cache"
	"jobpay-engine/internal/insights"
)

type RefreshHandler struct {
	Refresher *insights.Refresher
	Service   *insights.Service
}

type refreshStatusResponse struct {
	insights.RefreshStatus
	Cache cache.Stats `json:"cache"`
}

func (h RefreshHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, refreshStatusResponse{
		RefreshStatus: h.Refresher.Status(),
		Cache:         h.Service.Cache().Stats(),
	})
}

// Run reloads synchronously so the caller sees the outcome.
func (h RefreshHandler) Run(w http.ResponseWriter, r *http.Request) {
	ds, err := h.Refresher.RunOnce(r.Context(), RequestIDFrom(r.Context()))
	if errors.Is(err, insights.ErrRefreshRunning) {
		WriteError(w, r, http.StatusConflict, "refresh_running", err.Error())
		return
	}
	if err != nil {
		writeLoadError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{
		"ok":         true,
		"source":     ds.Source,
		"count":      len(ds.Records),
		"dropped":    ds.Dropped(),
		"fetched_at": ds.FetchedAt,
	})
}
