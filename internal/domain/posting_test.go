package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRawRecordFromDocument(t *testing.T) {
	doc := map[string]any{
		"title":    "Forklift Operator",
		"company":  "Acme Logistics",
		"location": "Edison Township, NJ",
		"salary":   "$20 an hour",
		"benefits": []any{"401(k)", "Dental insurance"},
		"url":      "https://example.com/job/1",
	}

	r := RawRecordFromDocument(doc)
	require.NotNil(t, r.Title)
	assert.Equal(t, "Forklift Operator", *r.Title)
	assert.Equal(t, "Acme Logistics", r.Company)
	require.NotNil(t, r.Salary)
	assert.Equal(t, "$20 an hour", *r.Salary)
	assert.Equal(t, []string{"401(k)", "Dental insurance"}, r.Benefits)
}

func TestRawRecordFromDocument_MalformedFields(t *testing.T) {
	doc := map[string]any{
		"title":    42,
		"salary":   45000.0,
		"benefits": "Health insurance",
	}

	r := RawRecordFromDocument(doc)
	assert.Nil(t, r.Title)
	assert.Nil(t, r.Salary, "non-string salary is treated as missing")
	assert.Nil(t, r.Location)
	assert.Nil(t, r.Benefits, "non-list benefits are treated as missing")
	assert.Empty(t, r.Company)
}

func TestDocumentRoundTripKeepsMissingFieldsMissing(t *testing.T) {
	r := RawRecord{Company: "Acme", Salary: StringPtr("$18/hr")}
	doc := r.Document()

	_, hasTitle := doc["title"]
	assert.False(t, hasTitle)
	assert.Equal(t, r, RawRecordFromDocument(doc))
}

func TestParsePayPeriod(t *testing.T) {
	p, ok := ParsePayPeriod("Annual (Inferred)")
	require.True(t, ok)
	assert.Equal(t, PayPeriodAnnualInferred, p)

	_, ok = ParsePayPeriod("annual")
	assert.False(t, ok)
}
