package scrape

import "strings"

func CleanText(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimSpace(s)
}

// NormalizeLocation cleans a scraped location, drops a leading label and
// repeated comma segments ("Edison, NJ, Edison" -> "Edison, NJ").
func NormalizeLocation(loc string) string {
	loc = CleanText(loc)
	if loc == "" {
		return ""
	}

	low := strings.ToLower(loc)
	for _, label := range []string{"job location:", "locations:", "location:"} {
		if strings.HasPrefix(low, label) {
			loc = strings.TrimSpace(loc[len(label):])
			break
		}
	}

	parts := strings.Split(loc, ",")
	seen := map[string]bool{}
	var out []string
	for _, p := range parts {
		p = CleanText(p)
		if p == "" {
			continue
		}
		k := strings.ToLower(p)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, p)
	}
	return strings.Join(out, ", ")
}

// NormalizeSalary drops a leading "Salary:" / "Pay:" label.
func NormalizeSalary(s string) string {
	s = CleanText(s)
	low := strings.ToLower(s)
	for _, label := range []string{"salary:", "pay:", "compensation:"} {
		if strings.HasPrefix(low, label) {
			return strings.TrimSpace(s[len(label):])
		}
	}
	return s
}
