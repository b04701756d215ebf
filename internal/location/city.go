// Package location extracts a city from free-text locations and resolves
// known spelling variants to one canonical name.
package location

import "strings"

const UnknownCity = "Unknown"

// DefaultAliases maps lower-cased raw city forms to their canonical name.
var DefaultAliases = map[string]string{
	"south brunswick township": "South Brunswick",
	"north brunswick township": "North Brunswick",
	"edison township":          "Edison",
	"new brunswick city":       "New Brunswick",
	"jersey city":              "Jersey City",
}

// ExtractCity returns the first comma-delimited segment of loc, trimmed.
// A missing location yields UnknownCity.
func ExtractCity(loc *string) string {
	if loc == nil {
		return UnknownCity
	}
	city, _, _ := strings.Cut(*loc, ",")
	return strings.TrimSpace(city)
}

// Canonicalizer resolves city aliases. The table is fixed at construction
// and safe to share between goroutines.
type Canonicalizer struct {
	aliases map[string]string
}

// NewCanonicalizer copies DefaultAliases and then extra on top of it.
// Keys of extra are lower-cased.
func NewCanonicalizer(extra map[string]string) *Canonicalizer {
	m := make(map[string]string, len(DefaultAliases)+len(extra))
	for k, v := range DefaultAliases {
		m[k] = v
	}
	for k, v := range extra {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" || strings.TrimSpace(v) == "" {
			continue
		}
		m[k] = strings.TrimSpace(v)
	}
	return &Canonicalizer{aliases: m}
}

// Canonicalize looks name up case-insensitively. Unmapped names are returned
// unchanged.
func (c *Canonicalizer) Canonicalize(name string) string {
	if canon, ok := c.aliases[strings.ToLower(name)]; ok {
		return canon
	}
	return name
}

// Resolve is ExtractCity followed by Canonicalize.
func (c *Canonicalizer) Resolve(loc *string) (original, canonical string) {
	original = ExtractCity(loc)
	return original, c.Canonicalize(original)
}

// Aliases returns a copy of the table.
func (c *Canonicalizer) Aliases() map[string]string {
	out := make(map[string]string, len(c.aliases))
	for k, v := range c.aliases {
		out[k] = v
	}
	return out
}
