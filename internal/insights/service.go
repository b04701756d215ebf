// Package insights loads the canonical dataset and derives the views served
// to clients.
package insights

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"jobpay-engine/internal/cache"
	"jobpay-engine/internal/domain"
	"jobpay-engine/internal/filter"
	"jobpay-engine/internal/logger"
	"jobpay-engine/internal/normalize"
	"jobpay-engine/internal/source"
)

var (
	// ErrSourceUnavailable wraps a failed fetch. Load returns it together
	// with an empty dataset.
	ErrSourceUnavailable = errors.New("source unavailable")
	// ErrNoUsableData means no record survived normalization.
	ErrNoUsableData = errors.New("no usable salary data")
)

// Dataset is the canonical record set of one fetch.
type Dataset struct {
	Source    string                   `json:"source"`
	Records   []domain.CanonicalRecord `json:"records"`
	RawCount  int                      `json:"raw_count"`
	FetchedAt time.Time                `json:"fetched_at"`
}

// Dropped is the number of raw records without a usable salary.
func (d Dataset) Dropped() int { return d.RawCount - len(d.Records) }

func (d Dataset) Options() filter.Options { return filter.OptionsFor(d.Records) }

// Defaults returns the match-all criteria for d.
func (d Dataset) Defaults() filter.Criteria { return filter.Defaults(d.Records) }

// View is a filtered slice of the dataset. Empty is a normal outcome, not an
// error.
type View struct {
	Criteria filter.Criteria          `json:"-"`
	Records  []domain.CanonicalRecord `json:"records"`
	Empty    bool                     `json:"empty"`
}

func (d Dataset) View(c filter.Criteria) View {
	recs := filter.Apply(d.Records, c)
	return View{Criteria: c, Records: recs, Empty: len(recs) == 0}
}

type Service struct {
	src   source.Source
	cache *cache.SourceCache
	norm  *normalize.Normalizer

	mu   sync.Mutex
	last Dataset
}

func NewService(src source.Source, c *cache.SourceCache, norm *normalize.Normalizer) *Service {
	if c == nil {
		c = cache.New(cache.Config{})
	}
	if norm == nil {
		norm = normalize.New(nil, 0)
	}
	return &Service{src: src, cache: c, norm: norm}
}

func (s *Service) Source() source.Source { return s.src }

func (s *Service) Cache() *cache.SourceCache { return s.cache }

// Load returns the canonical dataset, fetching through the cache.
func (s *Service) Load(ctx context.Context) (Dataset, error) {
	name := s.src.Name()
	empty := Dataset{Source: name, Records: []domain.CanonicalRecord{}}

	snap, err := s.cache.GetSnapshot(ctx, name, s.src.FetchAll)
	if err != nil {
		return empty, fmt.Errorf("%w: %s: %w", ErrSourceUnavailable, name, err)
	}

	if ds, ok := s.memo(name, snap.FetchedAt); ok {
		return ds, nil
	}

	recs, err := s.norm.Normalize(ctx, snap.Records)
	if err != nil {
		return empty, err
	}

	ds := Dataset{
		Source:    name,
		Records:   recs,
		RawCount:  len(snap.Records),
		FetchedAt: snap.FetchedAt,
	}
	if len(recs) == 0 {
		ds.Records = []domain.CanonicalRecord{}
		return ds, fmt.Errorf("%w: %d records from %s", ErrNoUsableData, len(snap.Records), name)
	}

	log := logger.For("insights")
	log.Info().Str("source", name).Int("raw", ds.RawCount).Int("kept", len(recs)).Msg("dataset loaded")

	s.mu.Lock()
	s.last = ds
	s.mu.Unlock()
	return ds, nil
}

// memo returns the previous dataset when it came from the same fetch, so
// cache hits skip normalization.
func (s *Service) memo(name string, fetchedAt time.Time) (Dataset, bool) {
	if s.cache.TTL() <= 0 {
		return Dataset{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last.Source == name && !s.last.FetchedAt.IsZero() && s.last.FetchedAt.Equal(fetchedAt) {
		return s.last, true
	}
	return Dataset{}, false
}

// Invalidate drops the cached fetch so the next Load hits the source.
func (s *Service) Invalidate(ctx context.Context) {
	s.cache.Invalidate(ctx, s.src.Name())
	s.mu.Lock()
	s.last = Dataset{}
	s.mu.Unlock()
}

// Refresh is Invalidate followed by Load.
func (s *Service) Refresh(ctx context.Context) (Dataset, error) {
	s.Invalidate(ctx)
	return s.Load(ctx)
}
