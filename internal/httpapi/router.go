package httpapi

import "net/http"

// NewMux returns the raw mux so main() can still attach /shutdown (needs srv+token).
func NewMux(d Deps) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: HealthHandler{Service: d.Service}.Health,
	}))

	// Dataset views
	dh := DatasetHandler{Service: d.Service, CfgVal: d.CfgVal}
	mux.HandleFunc("/options", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: dh.Options,
	}))
	mux.HandleFunc("/jobs", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: dh.Jobs,
	}))
	mux.HandleFunc("/summary", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: dh.Summary,
	}))
	mux.HandleFunc("/keywords", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: dh.Keywords,
	}))
	mux.HandleFunc("/companies", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: dh.Companies,
	}))
	mux.HandleFunc("/cities", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: dh.Cities,
	}))
	mux.HandleFunc("/export.csv", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: dh.ExportCSV,
	}))

	// Refresh
	rh := RefreshHandler{Refresher: d.Refresher, Service: d.Service}
	mux.HandleFunc("/refresh", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: rh.Run,
	}))
	mux.HandleFunc("/refresh/status", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: rh.Status,
	}))

	// Import
	ph := PostingsHandler{Importer: d.Importer}
	mux.HandleFunc("/postings", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: ph.Import,
	}))

	// Config
	ch := ConfigHandler{
		CfgVal:      d.CfgVal,
		UserCfgPath: d.UserCfgPath,
		LoadCfg:     d.LoadCfg,
		Hub:         d.Hub,
	}
	mux.HandleFunc("/config", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Get,
		http.MethodPut: ch.Put,
	}))
	mux.HandleFunc("/config/path", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Path,
	}))
	mux.HandleFunc("/config/validate", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Validate,
	}))

	// Secrets (use cfgVal, NOT a snapshot cfg)
	sh := SecretsHandler{CfgVal: d.CfgVal}
	mux.HandleFunc("/secrets/source", methodMux(map[string]http.HandlerFunc{
		http.MethodPost:   sh.SetSourcePassword,
		http.MethodDelete: sh.DeleteSourcePassword,
	}))
	mux.HandleFunc("/secrets/redis", methodMux(map[string]http.HandlerFunc{
		http.MethodPost:   sh.SetRedisPassword,
		http.MethodDelete: sh.DeleteRedisPassword,
	}))

	// SSE events
	eh := EventsHandler{Hub: d.Hub}
	mux.HandleFunc("/events", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: eh.ServeSSE,
	}))

	// DB maintenance
	dbh := DBHandler{Store: d.Store}
	mux.HandleFunc("/db/checkpoint", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: dbh.Checkpoint,
	}))

	return mux
}
