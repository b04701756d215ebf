package filter

import (
	"sort"

	"jobpay-engine/internal/domain"
)

// Options are the choices a client can offer for building Criteria.
type Options struct {
	Cities     []string           `json:"cities"`
	PayPeriods []domain.PayPeriod `json:"pay_periods"`
	MinRate    float64            `json:"min_rate"`
	MaxRate    float64            `json:"max_rate"`
}

func OptionsFor(recs []domain.CanonicalRecord) Options {
	lo, hi := RateBounds(recs)
	return Options{
		Cities:     Cities(recs),
		PayPeriods: PayPeriodsOf(recs),
		MinRate:    lo,
		MaxRate:    hi,
	}
}

// Cities returns the distinct canonical cities, sorted.
func Cities(recs []domain.CanonicalRecord) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, r := range recs {
		if seen[r.City] {
			continue
		}
		seen[r.City] = true
		out = append(out, r.City)
	}
	sort.Strings(out)
	return out
}

// PayPeriodsOf returns the distinct pay periods present, sorted by label.
func PayPeriodsOf(recs []domain.CanonicalRecord) []domain.PayPeriod {
	seen := map[domain.PayPeriod]bool{}
	out := []domain.PayPeriod{}
	for _, r := range recs {
		if seen[r.PayPeriod] {
			continue
		}
		seen[r.PayPeriod] = true
		out = append(out, r.PayPeriod)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
