package domain

// PayPeriod classifies the cadence a salary text was quoted in.
type PayPeriod string

const (
	PayPeriodHourly         PayPeriod = "Hourly"
	PayPeriodWeekly         PayPeriod = "Weekly"
	PayPeriodMonthly        PayPeriod = "Monthly"
	PayPeriodAnnual         PayPeriod = "Annual"
	PayPeriodAnnualInferred PayPeriod = "Annual (Inferred)"
	PayPeriodUnknown        PayPeriod = "Unknown"
)

// PayPeriods lists every label, Unknown last.
var PayPeriods = []PayPeriod{
	PayPeriodHourly,
	PayPeriodWeekly,
	PayPeriodMonthly,
	PayPeriodAnnual,
	PayPeriodAnnualInferred,
	PayPeriodUnknown,
}

func (p PayPeriod) String() string { return string(p) }

// ParsePayPeriod matches a label exactly. ok is false for unknown text.
func ParsePayPeriod(s string) (PayPeriod, bool) {
	for _, p := range PayPeriods {
		if string(p) == s {
			return p, true
		}
	}
	return "", false
}
