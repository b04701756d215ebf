package httpapi

import (
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"jobpay-engine/internal/aggregate"
	"jobpay-engine/internal/config"
	"jobpay-engine/internal/domain"
	"jobpay-engine/internal/export"
	"jobpay-engine/internal/filter"
	"jobpay-engine/internal/insights"
)

type DatasetHandler struct {
	Service *insights.Service
	CfgVal  *atomic.Value // stores config.Config
}

func (h DatasetHandler) cfg() config.Config {
	if h.CfgVal != nil {
		if cfg, ok := h.CfgVal.Load().(config.Config); ok {
			return cfg
		}
	}
	var cfg config.Config
	config.ApplyDefaults(&cfg)
	return cfg
}

// view loads the dataset and applies the request's criteria. It writes the
// error response itself and returns ok=false on failure.
func (h DatasetHandler) view(w http.ResponseWriter, r *http.Request) (insights.View, bool) {
	ds, err := h.Service.Load(r.Context())
	if err != nil {
		writeLoadError(w, r, err)
		return insights.View{}, false
	}
	c, err := parseCriteria(r.URL.Query(), ds)
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, "bad_request", err.Error())
		return insights.View{}, false
	}
	return ds.View(c), true
}

type optionsResponse struct {
	filter.Options
	Source    string    `json:"source"`
	RawCount  int       `json:"raw_count"`
	Count     int       `json:"count"`
	Dropped   int       `json:"dropped"`
	FetchedAt time.Time `json:"fetched_at"`
}

func (h DatasetHandler) Options(w http.ResponseWriter, r *http.Request) {
	ds, err := h.Service.Load(r.Context())
	if err != nil {
		writeLoadError(w, r, err)
		return
	}
	writeJSON(w, optionsResponse{
		Options:   ds.Options(),
		Source:    ds.Source,
		RawCount:  ds.RawCount,
		Count:     len(ds.Records),
		Dropped:   ds.Dropped(),
		FetchedAt: ds.FetchedAt,
	})
}

type jobsResponse struct {
	Criteria criteriaJSON             `json:"criteria"`
	Count    int                      `json:"count"`
	Empty    bool                     `json:"empty"`
	Records  []domain.CanonicalRecord `json:"records"`
}

func (h DatasetHandler) Jobs(w http.ResponseWriter, r *http.Request) {
	v, ok := h.view(w, r)
	if !ok {
		return
	}
	writeJSON(w, jobsResponse{
		Criteria: toCriteriaJSON(v.Criteria),
		Count:    len(v.Records),
		Empty:    v.Empty,
		Records:  v.Records,
	})
}

type summaryResponse struct {
	aggregate.Summary
	Empty bool `json:"empty"`
}

func (h DatasetHandler) Summary(w http.ResponseWriter, r *http.Request) {
	v, ok := h.view(w, r)
	if !ok {
		return
	}
	writeJSON(w, summaryResponse{
		Summary: aggregate.Summarize(v.Records, h.cfg().Analysis.Outliers),
		Empty:   v.Empty,
	})
}

func (h DatasetHandler) Keywords(w http.ResponseWriter, r *http.Request) {
	v, ok := h.view(w, r)
	if !ok {
		return
	}
	writeJSON(w, map[string]any{
		"keywords": aggregate.GroupByKeywords(v.Records, h.cfg().Analysis.Keywords),
		"empty":    v.Empty,
	})
}

// clampCompanies keeps n inside the range the company chart supports.
func clampCompanies(n int) int {
	if n < config.MinTopCompanies {
		return config.MinTopCompanies
	}
	if n > config.MaxTopCompanies {
		return config.MaxTopCompanies
	}
	return n
}

func (h DatasetHandler) Companies(w http.ResponseWriter, r *http.Request) {
	n := h.cfg().Analysis.TopCompanies
	if s := strings.TrimSpace(r.URL.Query().Get("n")); s != "" {
		parsed, err := strconv.Atoi(s)
		if err != nil {
			WriteError(w, r, http.StatusBadRequest, "bad_request", "n must be an integer")
			return
		}
		n = parsed
	}
	n = clampCompanies(n)

	v, ok := h.view(w, r)
	if !ok {
		return
	}
	writeJSON(w, map[string]any{
		"n":         n,
		"companies": aggregate.TopCompanies(v.Records, n),
		"empty":     v.Empty,
	})
}

func (h DatasetHandler) Cities(w http.ResponseWriter, r *http.Request) {
	v, ok := h.view(w, r)
	if !ok {
		return
	}
	writeJSON(w, map[string]any{
		"cities": aggregate.GroupByCity(v.Records),
		"empty":  v.Empty,
	})
}

func (h DatasetHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	v, ok := h.view(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.FileName+`"`)
	_ = export.WriteCSV(w, v.Records)
}
