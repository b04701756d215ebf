package scrape

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"

	"jobpay-engine/internal/config"
)

const UserAgent = "JobPay/1.0 (+local)"

type Scraper struct {
	hc  *http.Client
	lim *HostLimiter
}

func NewScraper(timeout time.Duration, lim *HostLimiter) *Scraper {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	if lim == nil {
		lim = NewHostLimiter(0, 1)
	}
	return &Scraper{
		hc:  &http.Client{Timeout: timeout},
		lim: lim,
	}
}

// FetchListing downloads pageURL and extracts one document per job card.
func (s *Scraper) FetchListing(ctx context.Context, pageURL string, sel config.HTMLSelectors) ([]map[string]any, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("listing url: %w", err)
	}
	if err := s.lim.WaitURL(ctx, pageURL); err != nil {
		return nil, err
	}

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	res, err := s.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get listing: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("listing status %d", res.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		return nil, fmt.Errorf("parse listing html: %w", err)
	}
	return ParseListing(doc, base, sel), nil
}

// ParseListing turns every sel.Card element into a posting document. Fields
// whose selector is empty or matches no text are left out of the document.
func ParseListing(doc *goquery.Document, base *url.URL, sel config.HTMLSelectors) []map[string]any {
	var out []map[string]any
	doc.Find(sel.Card).Each(func(_ int, card *goquery.Selection) {
		d := map[string]any{}

		text := func(selector string) string {
			if selector == "" {
				return ""
			}
			return CleanText(card.Find(selector).First().Text())
		}

		if t := text(sel.Title); t != "" {
			d["title"] = t
		}
		if c := text(sel.Company); c != "" {
			d["company"] = c
		}
		if l := NormalizeLocation(text(sel.Location)); l != "" {
			d["location"] = l
		}
		if s := NormalizeSalary(text(sel.Salary)); s != "" {
			d["salary"] = s
		}
		if sel.Benefits != "" {
			var benefits []any
			card.Find(sel.Benefits).Each(func(_ int, b *goquery.Selection) {
				if t := CleanText(b.Text()); t != "" {
					benefits = append(benefits, t)
				}
			})
			if len(benefits) > 0 {
				d["benefits"] = benefits
			}
		}
		if link := cardLink(card, sel.Link); link != "" {
			if u := ResolveURL(base, link); u != "" {
				d["url"] = u
			}
		}

		if len(d) > 0 {
			out = append(out, d)
		}
	})
	return out
}

func cardLink(card *goquery.Selection, selector string) string {
	if selector == "" {
		if href, ok := card.Attr("href"); ok {
			return href
		}
		selector = "a[href]"
	}
	href, _ := card.Find(selector).First().Attr("href")
	return href
}
