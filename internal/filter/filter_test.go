package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobpay-engine/internal/domain"
)

func rec(title, city string, period domain.PayPeriod, rate float64) domain.CanonicalRecord {
	r := domain.CanonicalRecord{City: city, PayPeriod: period, HourlyRate: rate, Benefits: []string{}}
	if title != "" {
		r.Title = domain.StringPtr(title)
	}
	return r
}

func sample() []domain.CanonicalRecord {
	return []domain.CanonicalRecord{
		rec("Forklift Operator", "Edison", domain.PayPeriodHourly, 19),
		rec("Warehouse Associate", "South Brunswick", domain.PayPeriodHourly, 17.5),
		rec("Operations Manager", "Edison", domain.PayPeriodAnnual, 38.46),
		rec("", "Jersey City", domain.PayPeriodWeekly, 21),
		rec("forklift driver", "Jersey City", domain.PayPeriodAnnualInferred, 25),
	}
}

func TestApply_DefaultsMatchEverything(t *testing.T) {
	recs := sample()
	got := Apply(recs, Defaults(recs))
	assert.Equal(t, recs, got)
}

func TestApply_City(t *testing.T) {
	recs := sample()
	c := Defaults(recs)
	c.City = "Edison"

	got := Apply(recs, c)
	require.Len(t, got, 2)
	assert.Equal(t, "Forklift Operator", got[0].TitleText())
	assert.Equal(t, "Operations Manager", got[1].TitleText())
}

func TestApply_PayPeriods(t *testing.T) {
	recs := sample()
	c := Defaults(recs)
	c.PayPeriods = []domain.PayPeriod{domain.PayPeriodHourly}
	assert.Len(t, Apply(recs, c), 2)

	c.PayPeriods = nil
	got := Apply(recs, c)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	c.PayPeriods = []domain.PayPeriod{domain.PayPeriodMonthly}
	assert.Empty(t, Apply(recs, c))
}

func TestApply_RateRangeInclusive(t *testing.T) {
	recs := sample()
	c := Defaults(recs)
	c.MinRate, c.MaxRate = 19, 21

	got := Apply(recs, c)
	require.Len(t, got, 2)
	assert.Equal(t, 19.0, got[0].HourlyRate)
	assert.Equal(t, 21.0, got[1].HourlyRate)
}

func TestApply_Keyword(t *testing.T) {
	recs := sample()
	c := Defaults(recs)
	c.Keyword = "FORKLIFT"

	got := Apply(recs, c)
	require.Len(t, got, 2)
	assert.Equal(t, "Forklift Operator", got[0].TitleText())
	assert.Equal(t, "forklift driver", got[1].TitleText())

	// the untitled record never matches a keyword
	c.Keyword = ""
	c.City = "Jersey City"
	assert.Len(t, Apply(recs, c), 2)
	c.Keyword = "o"
	assert.Len(t, Apply(recs, c), 1)
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	recs := sample()
	before := append([]domain.CanonicalRecord(nil), recs...)

	c := Defaults(recs)
	c.City = "Edison"
	_ = Apply(recs, c)
	_ = Apply(recs, Defaults(recs))

	assert.Equal(t, before, recs)
}

func TestOptionsFor(t *testing.T) {
	opts := OptionsFor(sample())

	assert.Equal(t, []string{"Edison", "Jersey City", "South Brunswick"}, opts.Cities)
	assert.Equal(t, []domain.PayPeriod{
		domain.PayPeriodAnnual,
		domain.PayPeriodAnnualInferred,
		domain.PayPeriodHourly,
		domain.PayPeriodWeekly,
	}, opts.PayPeriods)
	assert.Equal(t, 17.5, opts.MinRate)
	assert.Equal(t, 38.46, opts.MaxRate)

	empty := OptionsFor(nil)
	assert.Empty(t, empty.Cities)
	assert.Zero(t, empty.MaxRate)
}
