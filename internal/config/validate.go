package config

import (
	"fmt"
	"strings"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

var sourceKinds = map[string]bool{
	"file": true, "sqlite": true, "postgres": true, "http": true, "html": true, "multi": true,
}

// NormalizeAndValidate returns a normalized copy of cfg and the problems
// found in it.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	var out = cfg
	var res Validation

	trimList := func(xs []string) []string {
		seen := map[string]bool{}
		var ys []string
		for _, x := range xs {
			x = strings.TrimSpace(x)
			if x == "" {
				continue
			}
			key := strings.ToLower(x)
			if seen[key] {
				continue
			}
			seen[key] = true
			ys = append(ys, x)
		}
		return ys
	}

	out.Analysis.Keywords = trimList(out.Analysis.Keywords)

	if len(out.Cities.Aliases) > 0 {
		aliases := make(map[string]string, len(out.Cities.Aliases))
		for k, v := range out.Cities.Aliases {
			k = strings.ToLower(strings.TrimSpace(k))
			v = strings.TrimSpace(v)
			if k == "" || v == "" {
				res.addWarn("cities.aliases: dropping empty entry %q -> %q", k, v)
				continue
			}
			aliases[k] = v
		}
		out.Cities.Aliases = aliases
	}

	// ---- Validation rules ----

	if out.App.Port <= 0 || out.App.Port > 65535 {
		res.addErr("app.port must be 1..65535")
	}

	if out.App.RetentionDays < 0 {
		res.addErr("app.retention_days must be >= 0")
	}

	validateSource(&res, "source", out.Source)

	if out.Cache.TTLSeconds < 0 {
		res.addErr("cache.ttl_seconds must be >= 0")
	} else if out.Cache.TTLSeconds > 0 && out.Cache.TTLSeconds < 30 {
		res.addWarn("cache.ttl_seconds is very low (%d) and will hit the source on almost every request.", out.Cache.TTLSeconds)
	}
	if out.Cache.RedisDB < 0 {
		res.addErr("cache.redis_db must be >= 0")
	}

	if out.Normalize.Workers < 0 {
		res.addErr("normalize.workers must be >= 0")
	}

	if len(out.Analysis.Keywords) == 0 {
		res.addWarn("analysis.keywords is empty; the keyword view will always be empty.")
	}
	if out.Analysis.TopCompanies < 0 {
		res.addErr("analysis.top_companies must be >= 0")
	} else if out.Analysis.TopCompanies > 0 && (out.Analysis.TopCompanies < MinTopCompanies || out.Analysis.TopCompanies > MaxTopCompanies) {
		res.addWarn("analysis.top_companies=%d is outside %d..%d and will be clamped.", out.Analysis.TopCompanies, MinTopCompanies, MaxTopCompanies)
	}
	if out.Analysis.Outliers < 0 {
		res.addErr("analysis.outliers must be >= 0")
	}

	if out.Refresh.Enabled && out.Refresh.IntervalSeconds <= 0 {
		res.addErr("refresh.interval_seconds must be > 0 when refresh.enabled=true")
	}
	if out.Refresh.Enabled && out.Cache.TTLSeconds > 0 && out.Refresh.IntervalSeconds < out.Cache.TTLSeconds {
		res.addWarn("refresh.interval_seconds (%d) is shorter than cache.ttl_seconds (%d); refreshes will mostly hit the cache.", out.Refresh.IntervalSeconds, out.Cache.TTLSeconds)
	}

	return out, res
}

const (
	MinTopCompanies = 5
	MaxTopCompanies = 25
)

func validateSource(res *Validation, path string, s Source) {
	kind := strings.ToLower(strings.TrimSpace(s.Kind))
	if !sourceKinds[kind] {
		res.addErr("%s.kind %q is not one of file, sqlite, postgres, http, html, multi", path, s.Kind)
		return
	}

	switch kind {
	case "file":
		if strings.TrimSpace(s.Path) == "" {
			res.addErr("%s.path is required when kind=file", path)
		}
	case "postgres":
		if strings.TrimSpace(s.DSN) == "" {
			res.addErr("%s.dsn is required when kind=postgres", path)
		}
	case "http":
		if strings.TrimSpace(s.URL) == "" {
			res.addErr("%s.url is required when kind=http", path)
		}
	case "html":
		if strings.TrimSpace(s.URL) == "" {
			res.addErr("%s.url is required when kind=html", path)
		}
		if strings.TrimSpace(s.HTML.Card) == "" {
			res.addErr("%s.html.card selector is required when kind=html", path)
		}
		if strings.TrimSpace(s.HTML.Salary) == "" {
			res.addWarn("%s.html.salary is empty; every scraped posting will be dropped.", path)
		}
	case "multi":
		if len(s.Sources) == 0 {
			res.addErr("%s.sources must list at least one source when kind=multi", path)
		}
		for i, sub := range s.Sources {
			if strings.EqualFold(sub.Kind, "multi") {
				res.addErr("%s.sources[%d] cannot itself be multi", path, i)
				continue
			}
			validateSource(res, fmt.Sprintf("%s.sources[%d]", path, i), sub)
		}
	}

	if s.RequestsPerSecond < 0 {
		res.addErr("%s.requests_per_second must be >= 0", path)
	}
	if s.TimeoutSeconds < 0 {
		res.addErr("%s.timeout_seconds must be >= 0", path)
	}
}
