package aggregate

import (
	"sort"

	"jobpay-engine/internal/domain"
	"jobpay-engine/internal/filter"
)

// DefaultKeywords are the title keywords tracked by the keyword view.
var DefaultKeywords = []string{
	"Operator", "Forklift", "Lead", "Supervisor", "Manager",
	"Associate", "Technician", "Driver", "Picker", "Packer",
}

type KeywordStat struct {
	Keyword  string  `json:"keyword"`
	Count    int     `json:"count"`
	MeanRate float64 `json:"mean_rate"`
}

// GroupByKeywords counts the records whose title contains each keyword,
// ignoring case. Keywords without matches are left out; the rest are ordered
// by descending count, ties in keyword order.
func GroupByKeywords(recs []domain.CanonicalRecord, keywords []string) []KeywordStat {
	out := []KeywordStat{}
	for _, kw := range keywords {
		needle := filter.Fold(kw)
		var rates []float64
		for _, r := range recs {
			if filter.TitleContains(r, needle) {
				rates = append(rates, r.HourlyRate)
			}
		}
		if len(rates) == 0 {
			continue
		}
		out = append(out, KeywordStat{Keyword: kw, Count: len(rates), MeanRate: meanOf(rates)})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

type CompanyCount struct {
	Company string `json:"company"`
	Count   int    `json:"count"`
}

// CompanyGroups is the n most frequent companies, most frequent first, and
// the records belonging to them in input order.
type CompanyGroups struct {
	Companies []CompanyCount           `json:"companies"`
	Records   []domain.CanonicalRecord `json:"records"`
}

// TopCompanies ranks companies by posting count, ties by first appearance.
// Records without a company are not ranked.
func TopCompanies(recs []domain.CanonicalRecord, n int) CompanyGroups {
	out := CompanyGroups{Companies: []CompanyCount{}, Records: []domain.CanonicalRecord{}}
	if n <= 0 {
		return out
	}

	idx := map[string]int{}
	var counts []CompanyCount
	for _, r := range recs {
		if r.Company == "" {
			continue
		}
		i, ok := idx[r.Company]
		if !ok {
			i = len(counts)
			idx[r.Company] = i
			counts = append(counts, CompanyCount{Company: r.Company})
		}
		counts[i].Count++
	}
	sort.SliceStable(counts, func(i, j int) bool { return counts[i].Count > counts[j].Count })
	if n < len(counts) {
		counts = counts[:n]
	}

	top := make(map[string]bool, len(counts))
	for _, c := range counts {
		top[c.Company] = true
	}
	for _, r := range recs {
		if top[r.Company] {
			out.Records = append(out.Records, r)
		}
	}
	out.Companies = append(out.Companies, counts...)
	return out
}

// CityStat describes the rate distribution of one city and pay period.
type CityStat struct {
	City       string           `json:"city"`
	PayPeriod  domain.PayPeriod `json:"pay_period"`
	Count      int              `json:"count"`
	MinRate    float64          `json:"min_rate"`
	MaxRate    float64          `json:"max_rate"`
	MeanRate   float64          `json:"mean_rate"`
	MedianRate float64          `json:"median_rate"`
}

// GroupByCity returns one CityStat per (city, pay period) pair, sorted by
// city then pay period.
func GroupByCity(recs []domain.CanonicalRecord) []CityStat {
	type key struct {
		city   string
		period domain.PayPeriod
	}
	rates := map[key][]float64{}
	var keys []key
	for _, r := range recs {
		k := key{r.City, r.PayPeriod}
		if _, ok := rates[k]; !ok {
			keys = append(keys, k)
		}
		rates[k] = append(rates[k], r.HourlyRate)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].city != keys[j].city {
			return keys[i].city < keys[j].city
		}
		return keys[i].period < keys[j].period
	})

	out := make([]CityStat, 0, len(keys))
	for _, k := range keys {
		xs := rates[k]
		st := CityStat{City: k.city, PayPeriod: k.period, Count: len(xs), MinRate: xs[0], MaxRate: xs[0]}
		for _, x := range xs {
			st.MinRate = min(st.MinRate, x)
			st.MaxRate = max(st.MaxRate, x)
		}
		st.MeanRate = meanOf(xs)
		st.MedianRate = medianOf(xs)
		out = append(out, st)
	}
	return out
}
