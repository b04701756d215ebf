package source

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"jobpay-engine/internal/domain"
)

// MultiSource fetches its children in parallel and concatenates the results
// in child order. Any child failure fails the whole fetch.
type MultiSource struct {
	name     string
	children []Source
}

func NewMulti(name string, children ...Source) *MultiSource {
	return &MultiSource{name: name, children: children}
}

func (m *MultiSource) Name() string { return m.name }

func (m *MultiSource) FetchAll(ctx context.Context) ([]domain.RawRecord, error) {
	results := make([][]domain.RawRecord, len(m.children))

	g, gctx := errgroup.WithContext(ctx)
	for i, child := range m.children {
		g.Go(func() error {
			recs, err := child.FetchAll(gctx)
			if err != nil {
				return fmt.Errorf("%s: %w", child.Name(), err)
			}
			results[i] = recs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var n int
	for _, r := range results {
		n += len(r)
	}
	out := make([]domain.RawRecord, 0, n)
	for _, r := range results {
		out = append(out, r...)
	}
	return out, nil
}

func (m *MultiSource) Close() error {
	var errs []error
	for _, c := range m.children {
		if err := Close(c); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
