// Package filter narrows the canonical dataset down to one view.
package filter

import (
	"math"
	"strings"

	"golang.org/x/text/cases"

	"jobpay-engine/internal/domain"
)

// AllCities disables the city predicate.
const AllCities = "-- All Cities --"

// Criteria selects a view. The zero value matches nothing because no pay
// period is accepted; start from Defaults for a match-all view.
type Criteria struct {
	City       string
	PayPeriods []domain.PayPeriod
	Keyword    string
	MinRate    float64
	MaxRate    float64
}

// Defaults returns criteria matching every record of recs: all cities, every
// pay period present, and the full rate range.
func Defaults(recs []domain.CanonicalRecord) Criteria {
	lo, hi := RateBounds(recs)
	return Criteria{
		City:       AllCities,
		PayPeriods: PayPeriodsOf(recs),
		MinRate:    lo,
		MaxRate:    hi,
	}
}

// Apply returns the records matching every predicate of c, in input order.
// Predicates run city, pay period, rate range, then keyword. recs is not
// modified.
func Apply(recs []domain.CanonicalRecord, c Criteria) []domain.CanonicalRecord {
	accepted := make(map[domain.PayPeriod]struct{}, len(c.PayPeriods))
	for _, p := range c.PayPeriods {
		accepted[p] = struct{}{}
	}
	kw := Fold(c.Keyword)

	out := make([]domain.CanonicalRecord, 0)
	for _, r := range recs {
		if c.City != AllCities && r.City != c.City {
			continue
		}
		if _, ok := accepted[r.PayPeriod]; !ok {
			continue
		}
		if r.HourlyRate < c.MinRate || r.HourlyRate > c.MaxRate {
			continue
		}
		if kw != "" && !TitleContains(r, kw) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Fold case-folds s for caseless comparisons.
func Fold(s string) string {
	return cases.Fold().String(s)
}

// TitleContains reports whether the record's title contains the already
// folded needle. A missing title never matches.
func TitleContains(r domain.CanonicalRecord, foldedNeedle string) bool {
	if r.Title == nil {
		return false
	}
	return strings.Contains(Fold(*r.Title), foldedNeedle)
}

// RateBounds returns the smallest and largest hourly rate in recs, or 0, 0
// for an empty slice.
func RateBounds(recs []domain.CanonicalRecord) (lo, hi float64) {
	if len(recs) == 0 {
		return 0, 0
	}
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, r := range recs {
		lo = math.Min(lo, r.HourlyRate)
		hi = math.Max(hi, r.HourlyRate)
	}
	return lo, hi
}
