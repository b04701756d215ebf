package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"jobpay-engine/internal/domain"
	"jobpay-engine/internal/scrape"
)

// maxFeedBytes bounds the JSON feed body.
const maxFeedBytes = 64 << 20

// HTTPSource GETs a JSON array of postings.
type HTTPSource struct {
	name string
	url  string
	hc   *http.Client
	lim  *scrape.HostLimiter
}

func NewHTTP(name, url string, timeout time.Duration, reqPerSec float64) *HTTPSource {
	return &HTTPSource{
		name: name,
		url:  url,
		hc:   &http.Client{Timeout: timeout},
		lim:  scrape.NewHostLimiter(reqPerSec, 1),
	}
}

func (s *HTTPSource) Name() string { return s.name }

func (s *HTTPSource) FetchAll(ctx context.Context) ([]domain.RawRecord, error) {
	if err := s.lim.WaitURL(ctx, s.url); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", scrape.UserAgent)
	req.Header.Set("Accept", "application/json")

	res, err := s.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get feed: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		b, _ := io.ReadAll(io.LimitReader(res.Body, 256))
		return nil, fmt.Errorf("feed status %d: %q", res.StatusCode, string(b))
	}

	var v any
	if err := json.NewDecoder(io.LimitReader(res.Body, maxFeedBytes)).Decode(&v); err != nil {
		return nil, fmt.Errorf("decode feed: %w", err)
	}
	docs, err := documentsOf(v)
	if err != nil {
		return nil, fmt.Errorf("feed: %w", err)
	}
	return RecordsFromDocuments(docs), nil
}
