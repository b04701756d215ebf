// Package export serializes a view to CSV.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"jobpay-engine/internal/domain"
)

// FileName is the suggested download name for a filtered export.
const FileName = "warehouse_jobs_filtered.csv"

// Columns is the fixed column order of the export.
var Columns = []string{
	"title", "company", "city", "original_city", "pay_period",
	"benefits", "salary", "hourly_rate", "url",
}

// WriteCSV writes a header row and one row per record. Missing text fields
// are written as empty cells; benefits are joined with ", ".
func WriteCSV(w io.Writer, recs []domain.CanonicalRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for i, r := range recs {
		if err := cw.Write(Row(r)); err != nil {
			return fmt.Errorf("write csv row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Row renders one record in Columns order.
func Row(r domain.CanonicalRecord) []string {
	return []string{
		r.TitleText(),
		r.Company,
		r.City,
		r.OriginalCity,
		r.PayPeriod.String(),
		strings.Join(r.Benefits, ", "),
		r.SalaryText(),
		formatRate(r.HourlyRate),
		r.URL,
	}
}

// formatRate prints the shortest exact form and always keeps a decimal point,
// so 20 is written as "20.0".
func formatRate(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
