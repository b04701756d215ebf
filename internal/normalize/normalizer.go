// Package normalize turns raw postings into the canonical dataset.
package normalize

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"jobpay-engine/internal/domain"
	"jobpay-engine/internal/location"
	"jobpay-engine/internal/logger"
	"jobpay-engine/internal/salary"
)

// Below this many records the pass runs on the calling goroutine.
const parallelThreshold = 512

type Normalizer struct {
	cities  *location.Canonicalizer
	workers int
}

// New returns a Normalizer. workers <= 0 means GOMAXPROCS.
func New(cities *location.Canonicalizer, workers int) *Normalizer {
	if cities == nil {
		cities = location.NewCanonicalizer(nil)
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Normalizer{cities: cities, workers: workers}
}

// Record normalizes a single posting. ok is false when the salary does not
// yield a positive hourly rate; such records are never kept.
func (n *Normalizer) Record(raw domain.RawRecord) (rec domain.CanonicalRecord, ok bool) {
	res := salary.Parse(raw.Salary)
	if !res.HasRate || !(res.HourlyRate > 0) {
		return domain.CanonicalRecord{}, false
	}

	original, city := n.cities.Resolve(raw.Location)

	benefits := raw.Benefits
	if benefits == nil {
		benefits = []string{}
	}

	return domain.CanonicalRecord{
		Title:        raw.Title,
		Company:      raw.Company,
		Location:     raw.Location,
		Salary:       raw.Salary,
		Benefits:     benefits,
		URL:          raw.URL,
		HourlyRate:   res.HourlyRate,
		PayPeriod:    res.PayPeriod,
		OriginalCity: original,
		City:         city,
	}, true
}

// Normalize maps every record through Record and drops the unusable ones.
// Output order follows input order.
func (n *Normalizer) Normalize(ctx context.Context, raws []domain.RawRecord) ([]domain.CanonicalRecord, error) {
	slots := make([]domain.CanonicalRecord, len(raws))
	kept := make([]bool, len(raws))

	run := func(lo, hi int) error {
		for i := lo; i < hi; i++ {
			if i%256 == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}
			slots[i], kept[i] = n.Record(raws[i])
		}
		return nil
	}

	if len(raws) < parallelThreshold || n.workers == 1 {
		if err := run(0, len(raws)); err != nil {
			return nil, err
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(n.workers)

		chunk := (len(raws) + n.workers - 1) / n.workers
		for lo := 0; lo < len(raws); lo += chunk {
			lo, hi := lo, min(lo+chunk, len(raws))
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				return run(lo, hi)
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	out := make([]domain.CanonicalRecord, 0, len(raws))
	for i := range slots {
		if kept[i] {
			out = append(out, slots[i])
		}
	}

	log := logger.For("normalize")
	log.Debug().Int("in", len(raws)).Int("kept", len(out)).Int("dropped", len(raws)-len(out)).Msg("normalized")
	return out, nil
}
