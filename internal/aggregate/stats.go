// Package aggregate holds the summary functions behind the reporting views.
// Every function accepts an empty slice and returns a zero result for it.
package aggregate

import (
	"sort"

	"jobpay-engine/internal/domain"
)

// DefaultOutliers is how many top-paying records Summarize reports.
const DefaultOutliers = 10

// Rates returns the hourly rates of recs in order.
func Rates(recs []domain.CanonicalRecord) []float64 {
	out := make([]float64, len(recs))
	for i, r := range recs {
		out[i] = r.HourlyRate
	}
	return out
}

func Mean(recs []domain.CanonicalRecord) float64 {
	return meanOf(Rates(recs))
}

func Median(recs []domain.CanonicalRecord) float64 {
	return medianOf(Rates(recs))
}

// TopN returns the n highest-paid records, highest first. Ties keep input
// order. n larger than len(recs) returns all of them.
func TopN(recs []domain.CanonicalRecord, n int) []domain.CanonicalRecord {
	if n <= 0 || len(recs) == 0 {
		return []domain.CanonicalRecord{}
	}
	sorted := append([]domain.CanonicalRecord(nil), recs...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].HourlyRate > sorted[j].HourlyRate
	})
	if n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted
}

// Summary is the headline block of a view.
type Summary struct {
	Count      int                      `json:"count"`
	MeanRate   float64                  `json:"mean_rate"`
	MedianRate float64                  `json:"median_rate"`
	Outliers   []domain.CanonicalRecord `json:"outliers"`
}

func Summarize(recs []domain.CanonicalRecord, outliers int) Summary {
	if outliers <= 0 {
		outliers = DefaultOutliers
	}
	rates := Rates(recs)
	return Summary{
		Count:      len(recs),
		MeanRate:   meanOf(rates),
		MedianRate: medianOf(rates),
		Outliers:   TopN(recs, outliers),
	}
}

func meanOf(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func medianOf(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	s := append([]float64(nil), xs...)
	sort.Float64s(s)
	mid := len(s) / 2
	if len(s)%2 == 1 {
		return s[mid]
	}
	return (s[mid-1] + s[mid]) / 2
}
