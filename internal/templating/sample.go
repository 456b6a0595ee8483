package templating

import "strings"

// Deterministic placeholder values for block previews in the editor UI.
// Keyed by exact variable name first, then by substring heuristics, so a
// preview never shows raw {{placeholder}} text for common variables.
var sampleValues = map[string]string{
	"companyName":        "Summit Exteriors",
	"customerName":       "Jordan Avery",
	"phone":              "(555) 014-2289",
	"email":              "hello@summitexteriors.example",
	"address":            "418 Ridgeline Dr, Boulder, CO",
	"serviceType":        "Roof Replacement",
	"estimateTotal":      "$12,450",
	"crewName":           "Crew A",
	"brand.primaryColor": "#1f6f54",
	"brand.accentColor":  "#f4a340",
	"heroHeadline":       "Your project, handled end to end",
	"ctaLabel":           "Book a free consultation",
}

// SampleValue returns a deterministic preview value for a template variable.
// Exact matches win; otherwise a value is picked from the key's shape. The
// same key always yields the same value.
func SampleValue(key string) string {
	if v, ok := sampleValues[key]; ok {
		return v
	}

	lower := strings.ToLower(key)
	switch {
	case strings.Contains(lower, "color"):
		return "#1f6f54"
	case strings.Contains(lower, "name"):
		return "Jordan Avery"
	case strings.Contains(lower, "phone"):
		return "(555) 014-2289"
	case strings.Contains(lower, "email"):
		return "hello@summitexteriors.example"
	case strings.Contains(lower, "price"), strings.Contains(lower, "total"), strings.Contains(lower, "amount"):
		return "$1,200"
	case strings.Contains(lower, "date"):
		return "March 14, 2026"
	case strings.Contains(lower, "url"), strings.Contains(lower, "link"):
		return "https://example.com"
	default:
		return "Sample " + key
	}
}

// SampleValues builds a preview value map for the given variable names.
func SampleValues(keys []string) map[string]string {
	out := make(map[string]string, len(keys))
	for _, k := range keys {
		out[k] = SampleValue(k)
	}
	return out
}

// ExtractVariables lists the distinct placeholder keys referenced by a
// template string, in first-appearance order.
func ExtractVariables(template string) []string {
	var keys []string
	seen := map[string]struct{}{}

	rest := template
	for {
		open := strings.Index(rest, "{{")
		if open < 0 {
			break
		}
		close := strings.Index(rest[open+2:], "}}")
		if close < 0 {
			break
		}
		close += open + 2

		key := strings.TrimSpace(rest[open+2 : close])
		if key != "" {
			if _, ok := seen[key]; !ok {
				seen[key] = struct{}{}
				keys = append(keys, key)
			}
		}
		rest = rest[close+2:]
	}
	return keys
}
