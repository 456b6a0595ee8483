package templating

import "strings"

// Substitute replaces every {{ key }} placeholder in template with the value
// from values. Whitespace inside the braces is ignored. Unknown keys pass
// through verbatim, braces included.
//
// A present key always substitutes, even when its value is "" or "0". Treating
// falsy values as missing is a known regression class in template engines and
// is explicitly guarded by tests.
//
// Dotted keys (e.g. "brand.primaryColor") are opaque strings, not nested
// lookups.
func Substitute(template string, values map[string]string) string {
	if template == "" || !strings.Contains(template, "{{") {
		return template
	}

	var b strings.Builder
	b.Grow(len(template))

	rest := template
	for {
		open := strings.Index(rest, "{{")
		if open < 0 {
			b.WriteString(rest)
			break
		}
		close := strings.Index(rest[open+2:], "}}")
		if close < 0 {
			b.WriteString(rest)
			break
		}
		close += open + 2

		key := strings.TrimSpace(rest[open+2 : close])
		if v, ok := values[key]; ok {
			b.WriteString(rest[:open])
			b.WriteString(v)
		} else {
			// Unknown key: keep the raw placeholder text unchanged.
			b.WriteString(rest[:close+2])
		}
		rest = rest[close+2:]
	}
	return b.String()
}

// RenderedContent is the result of re-rendering a stored block.
type RenderedContent struct {
	HTML string `json:"html"`
	CSS  string `json:"css"`
}

// RegenerateContent re-renders a stored block's HTML and CSS against the
// block's remembered variable values. Substitution is applied to each string
// independently.
func RegenerateContent(html, css string, values map[string]string) RenderedContent {
	return RenderedContent{
		HTML: Substitute(html, values),
		CSS:  Substitute(css, values),
	}
}
