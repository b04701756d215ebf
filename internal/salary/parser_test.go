package salary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobpay-engine/internal/domain"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		rate   float64
		period domain.PayPeriod
	}{
		{"annual range", "$45,000 - $50,000 a year", 47500.0 / 2080, domain.PayPeriodAnnual},
		{"hourly words", "$20 per hour", 20, domain.PayPeriodHourly},
		{"hourly abbreviation", "$15/hr", 15, domain.PayPeriodHourly},
		{"hourly range", "$18.50 - $21.50 an hour", 20, domain.PayPeriodHourly},
		{"bare large number", "52000", 25, domain.PayPeriodAnnualInferred},
		{"monthly", "$3,000 a month", 3000 / 173.33, domain.PayPeriodMonthly},
		{"weekly", "$800 a week", 20, domain.PayPeriodWeekly},
		{"year beats month", "$60,000 per year, paid monthly", 60000.0 / 2080, domain.PayPeriodAnnual},
		{"month beats week", "$4,000 per month, 40 hours per week", 2020 / 173.33, domain.PayPeriodMonthly},
		{"threshold is exclusive", "2000", 2000, domain.PayPeriodHourly},
		{"just over threshold", "2000.5", 2000.5 / 2080, domain.PayPeriodAnnualInferred},
		{"upper case keyword", "UP TO $40,000 YEARLY", 40000.0 / 2080, domain.PayPeriodAnnual},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseString(tt.in)
			require.True(t, got.HasRate)
			assert.Equal(t, tt.period, got.PayPeriod)
			assert.InDelta(t, tt.rate, got.HourlyRate, 1e-9)
		})
	}
}

func TestParse_NoDigits(t *testing.T) {
	for _, in := range []string{"Competitive", "DOE", "", "$ per hour", "negotiable yearly"} {
		got := ParseString(in)
		assert.False(t, got.HasRate, in)
		assert.Equal(t, domain.PayPeriodUnknown, got.PayPeriod, in)
	}
}

func TestParse_Nil(t *testing.T) {
	got := Parse(nil)
	assert.False(t, got.HasRate)
	assert.Equal(t, domain.PayPeriodUnknown, got.PayPeriod)

	got = Parse(domain.StringPtr("$45,000 - $50,000 a year"))
	assert.InDelta(t, 22.836, got.HourlyRate, 0.001)
}

func TestNumbers(t *testing.T) {
	assert.Equal(t, []float64{45000, 50000}, Numbers("$45000 - $50000"))
	assert.Equal(t, []float64{20.5}, Numbers("20.5"))
	assert.Equal(t, []float64{3, 4}, Numbers("3.x4"))
	assert.Empty(t, Numbers("no figures"))
}

func TestRulesOrder(t *testing.T) {
	want := []domain.PayPeriod{
		domain.PayPeriodAnnual,
		domain.PayPeriodMonthly,
		domain.PayPeriodWeekly,
		domain.PayPeriodAnnualInferred,
		domain.PayPeriodHourly,
	}
	got := make([]domain.PayPeriod, 0, len(Rules))
	for _, r := range Rules {
		got = append(got, r.Period)
	}
	assert.Equal(t, want, got)

	last := Rules[len(Rules)-1]
	assert.True(t, last.Match("anything", 0), "hourly is the fallback")
}
