package source

import (
	"context"
	"time"

	"jobpay-engine/internal/config"
	"jobpay-engine/internal/domain"
	"jobpay-engine/internal/scrape"
)

// HTMLSource scrapes job cards from a listing page.
type HTMLSource struct {
	name    string
	url     string
	sel     config.HTMLSelectors
	scraper *scrape.Scraper
}

func NewHTML(name, url string, sel config.HTMLSelectors, timeout time.Duration, reqPerSec float64) *HTMLSource {
	return &HTMLSource{
		name:    name,
		url:     url,
		sel:     sel,
		scraper: scrape.NewScraper(timeout, scrape.NewHostLimiter(reqPerSec, 1)),
	}
}

func (s *HTMLSource) Name() string { return s.name }

func (s *HTMLSource) FetchAll(ctx context.Context) ([]domain.RawRecord, error) {
	docs, err := s.scraper.FetchListing(ctx, s.url, s.sel)
	if err != nil {
		return nil, err
	}
	return RecordsFromDocuments(docs), nil
}
