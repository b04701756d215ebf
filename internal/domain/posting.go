package domain

import "fmt"

// RawRecord is a job posting as it comes out of a source. Nil pointers mean
// the field was missing or not text.
type RawRecord struct {
	Title    *string  `json:"title"`
	Company  string   `json:"company"`
	Location *string  `json:"location"`
	Salary   *string  `json:"salary"`
	Benefits []string `json:"benefits"` // nil when missing or not list-shaped
	URL      string   `json:"url"`
}

// CanonicalRecord is a RawRecord that survived normalization.
// HourlyRate is always > 0.
type CanonicalRecord struct {
	Title        *string   `json:"title"`
	Company      string    `json:"company"`
	Location     *string   `json:"location"`
	Salary       *string   `json:"salary"`
	Benefits     []string  `json:"benefits"`
	URL          string    `json:"url"`
	HourlyRate   float64   `json:"hourly_rate"`
	PayPeriod    PayPeriod `json:"pay_period"`
	OriginalCity string    `json:"original_city"`
	City         string    `json:"city"`
}

// TitleText returns the title or "" when it is missing.
func (c CanonicalRecord) TitleText() string {
	if c.Title == nil {
		return ""
	}
	return *c.Title
}

// SalaryText returns the salary text or "" when it is missing.
func (c CanonicalRecord) SalaryText() string {
	if c.Salary == nil {
		return ""
	}
	return *c.Salary
}

// AsRaw drops the derived fields so a canonical record can be fed back
// through normalization.
func (c CanonicalRecord) AsRaw() RawRecord {
	return RawRecord{
		Title:    c.Title,
		Company:  c.Company,
		Location: c.Location,
		Salary:   c.Salary,
		Benefits: c.Benefits,
		URL:      c.URL,
	}
}

// RawRecordFromDocument maps a loosely typed document (decoded JSON, YAML or
// a database row) onto a RawRecord. Fields of the wrong type are treated as
// missing rather than coerced.
func RawRecordFromDocument(doc map[string]any) RawRecord {
	return RawRecord{
		Title:    optString(doc["title"]),
		Company:  plainString(doc["company"]),
		Location: optString(doc["location"]),
		Salary:   optString(doc["salary"]),
		Benefits: stringList(doc["benefits"]),
		URL:      plainString(doc["url"]),
	}
}

// Document is the inverse of RawRecordFromDocument; missing fields are
// omitted.
func (r RawRecord) Document() map[string]any {
	doc := map[string]any{
		"company": r.Company,
		"url":     r.URL,
	}
	if r.Title != nil {
		doc["title"] = *r.Title
	}
	if r.Location != nil {
		doc["location"] = *r.Location
	}
	if r.Salary != nil {
		doc["salary"] = *r.Salary
	}
	if r.Benefits != nil {
		doc["benefits"] = r.Benefits
	}
	return doc
}

func optString(v any) *string {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	return &s
}

func plainString(v any) string {
	s, _ := v.(string)
	return s
}

func stringList(v any) []string {
	switch xs := v.(type) {
	case []string:
		out := make([]string, len(xs))
		copy(out, xs)
		return out
	case []any:
		out := make([]string, 0, len(xs))
		for _, x := range xs {
			if s, ok := x.(string); ok {
				out = append(out, s)
				continue
			}
			out = append(out, fmt.Sprint(x))
		}
		return out
	default:
		return nil
	}
}

// StringPtr is a small helper for building records in code and tests.
func StringPtr(s string) *string { return &s }
