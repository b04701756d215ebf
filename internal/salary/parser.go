// Package salary turns free-text compensation strings into an hourly rate.
package salary

import (
	"regexp"
	"strconv"
	"strings"

	"jobpay-engine/internal/domain"
)

const (
	HoursPerYear  = 2080.0 // 40h x 52wk
	HoursPerMonth = 173.33
	HoursPerWeek  = 40.0

	// Bare figures above this cannot be hourly pay.
	InferredAnnualThreshold = 2000.0
)

var numberRe = regexp.MustCompile(`\d+\.?\d*`)

// Result is the outcome of Parse. HasRate is false when no figure could be
// read; PayPeriod is Unknown in that case.
type Result struct {
	HourlyRate float64
	PayPeriod  domain.PayPeriod
	HasRate    bool
}

// Rule is one step of the classification. Match sees the lower-cased,
// comma-free text and the mean of all figures found in it.
type Rule struct {
	Period  domain.PayPeriod
	Match   func(text string, avg float64) bool
	Convert func(avg float64) float64
}

// Rules is evaluated in order; the first match wins.
var Rules = []Rule{
	{
		Period:  domain.PayPeriodAnnual,
		Match:   contains("year"),
		Convert: per(HoursPerYear),
	},
	{
		Period:  domain.PayPeriodMonthly,
		Match:   contains("month"),
		Convert: per(HoursPerMonth),
	},
	{
		Period:  domain.PayPeriodWeekly,
		Match:   contains("week"),
		Convert: per(HoursPerWeek),
	},
	{
		Period:  domain.PayPeriodAnnualInferred,
		Match:   func(_ string, avg float64) bool { return avg > InferredAnnualThreshold },
		Convert: per(HoursPerYear),
	},
	{
		Period:  domain.PayPeriodHourly,
		Match:   func(string, float64) bool { return true },
		Convert: func(avg float64) float64 { return avg },
	},
}

func contains(word string) func(string, float64) bool {
	return func(text string, _ float64) bool { return strings.Contains(text, word) }
}

func per(hours float64) func(float64) float64 {
	return func(avg float64) float64 { return avg / hours }
}

var unknown = Result{PayPeriod: domain.PayPeriodUnknown}

// Parse reads a salary text such as "$45,000 - $50,000 a year". A range
// resolves to the mean of every figure in the text.
func Parse(text *string) Result {
	if text == nil || *text == "" {
		return unknown
	}
	return ParseString(*text)
}

// ParseString is Parse for callers holding a plain string.
func ParseString(text string) Result {
	s := strings.ReplaceAll(strings.ToLower(text), ",", "")

	nums := Numbers(s)
	if len(nums) == 0 {
		return unknown
	}
	avg := mean(nums)

	for _, r := range Rules {
		if r.Match(s, avg) {
			return Result{HourlyRate: r.Convert(avg), PayPeriod: r.Period, HasRate: true}
		}
	}
	return unknown
}

// Numbers returns every unsigned decimal figure in s, in order.
func Numbers(s string) []float64 {
	matches := numberRe.FindAllString(s, -1)
	out := make([]float64, 0, len(matches))
	for _, m := range matches {
		f, err := strconv.ParseFloat(m, 64)
		if err != nil {
			continue
		}
		out = append(out, f)
	}
	return out
}

func mean(xs []float64) float64 {
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}
