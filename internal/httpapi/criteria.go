package httpapi

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"jobpay-engine/internal/domain"
	"jobpay-engine/internal/filter"
	"jobpay-engine/internal/insights"
)

type criteriaJSON struct {
	City       string             `json:"city"`
	PayPeriods []domain.PayPeriod `json:"pay_periods"`
	Keyword    string             `json:"keyword"`
	MinRate    float64            `json:"min_rate"`
	MaxRate    float64            `json:"max_rate"`
}

func toCriteriaJSON(c filter.Criteria) criteriaJSON {
	periods := c.PayPeriods
	if periods == nil {
		periods = []domain.PayPeriod{}
	}
	return criteriaJSON{
		City:       c.City,
		PayPeriods: periods,
		Keyword:    c.Keyword,
		MinRate:    c.MinRate,
		MaxRate:    c.MaxRate,
	}
}

// parseCriteria starts from the match-all criteria of ds and applies the
// query parameters city, pay_period (repeatable or comma separated),
// keyword, min and max. A pay_period parameter with no values selects no
// pay period.
func parseCriteria(q url.Values, ds insights.Dataset) (filter.Criteria, error) {
	c := ds.Defaults()

	if v := strings.TrimSpace(q.Get("city")); v != "" {
		c.City = v
	}

	if vals, ok := q["pay_period"]; ok {
		periods := []domain.PayPeriod{}
		for _, v := range vals {
			for _, part := range strings.Split(v, ",") {
				part = strings.TrimSpace(part)
				if part == "" {
					continue
				}
				p, ok := domain.ParsePayPeriod(part)
				if !ok {
					return c, fmt.Errorf("unknown pay_period %q", part)
				}
				periods = append(periods, p)
			}
		}
		c.PayPeriods = periods
	}

	c.Keyword = strings.TrimSpace(q.Get("keyword"))

	var err error
	if c.MinRate, err = floatParam(q, "min", c.MinRate); err != nil {
		return c, err
	}
	if c.MaxRate, err = floatParam(q, "max", c.MaxRate); err != nil {
		return c, err
	}
	return c, nil
}

func floatParam(q url.Values, key string, def float64) (float64, error) {
	v := strings.TrimSpace(q.Get(key))
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def, fmt.Errorf("%s must be a number", key)
	}
	return f, nil
}
