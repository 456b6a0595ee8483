package templating

import "testing"

func TestSubstituteBasic(t *testing.T) {
	got := Substitute("Hello {{name}}!", map[string]string{"name": "Jordan"})
	if got != "Hello Jordan!" {
		t.Fatalf("got %q", got)
	}
}

func TestSubstituteWhitespaceInsideBraces(t *testing.T) {
	got := Substitute("{{  name  }} / {{name}}", map[string]string{"name": "x"})
	if got != "x / x" {
		t.Fatalf("got %q", got)
	}
}

func TestSubstituteEmptyStringAndZeroValues(t *testing.T) {
	// Present keys must substitute even when the value is "" or "0".
	if got := Substitute("{{title}}", map[string]string{"title": ""}); got != "" {
		t.Fatalf("empty-string value: got %q", got)
	}
	if got := Substitute("{{count}}", map[string]string{"count": "0"}); got != "0" {
		t.Fatalf("zero value: got %q", got)
	}
}

func TestSubstituteUnknownKeyPassesThrough(t *testing.T) {
	got := Substitute("{{missing}}", map[string]string{})
	if got != "{{missing}}" {
		t.Fatalf("got %q", got)
	}
}

func TestSubstituteDottedKeysAreOpaque(t *testing.T) {
	got := Substitute("color: {{brand.primaryColor}};", map[string]string{"brand.primaryColor": "#123456"})
	if got != "color: #123456;" {
		t.Fatalf("got %q", got)
	}
}

func TestSubstituteIdempotent(t *testing.T) {
	tmpl := "{{a}} and {{b}} and {{missing}}"
	values := map[string]string{"a": "one", "b": "two"}

	once := Substitute(tmpl, values)
	twice := Substitute(once, values)
	if once != twice {
		t.Fatalf("not idempotent: %q vs %q", once, twice)
	}
}

func TestSubstituteUnterminatedPlaceholder(t *testing.T) {
	got := Substitute("start {{open and no close", map[string]string{"open": "x"})
	if got != "start {{open and no close" {
		t.Fatalf("got %q", got)
	}
}

func TestRegenerateContent(t *testing.T) {
	out := RegenerateContent(
		"<h1>{{headline}}</h1>",
		".hero { color: {{brand.primaryColor}}; }",
		map[string]string{"headline": "Welcome", "brand.primaryColor": "#fff"},
	)
	if out.HTML != "<h1>Welcome</h1>" {
		t.Fatalf("html: %q", out.HTML)
	}
	if out.CSS != ".hero { color: #fff; }" {
		t.Fatalf("css: %q", out.CSS)
	}
}

func TestSampleValueDeterministic(t *testing.T) {
	if SampleValue("companyName") != SampleValue("companyName") {
		t.Fatal("sample values must be deterministic")
	}
	if SampleValue("accentColor") != "#1f6f54" {
		t.Fatalf("color heuristic: got %q", SampleValue("accentColor"))
	}
	if SampleValue("weirdKey") != "Sample weirdKey" {
		t.Fatalf("fallback: got %q", SampleValue("weirdKey"))
	}
}

func TestExtractVariables(t *testing.T) {
	keys := ExtractVariables("{{a}} {{ b }} {{a}} tail")
	if len(keys) != 2 || keys[0] != "a" || keys[1] != "b" {
		t.Fatalf("got %v", keys)
	}
}
