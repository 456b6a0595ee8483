package pages

import (
	"reflect"
	"testing"
)

func sampleSections() []Section {
	return []Section{
		{
			ID:      "s1",
			Type:    "hero",
			Order:   0,
			Visible: true,
			Content: map[string]any{"headline": "Welcome"},
		},
		{
			ID:       "s2",
			Type:     "pricing",
			Order:    1,
			Visible:  true,
			Settings: map[string]any{"columns": 2},
			Content:  map[string]any{"intro": "Our rates", "footnote": "tax extra"},
		},
	}
}

func TestMergeAIContentOnlyMatchingSection(t *testing.T) {
	sections := sampleSections()
	merged := MergeAIContent(sections, AIContent{"pricing": {"title": "X"}})

	if len(merged) != 2 {
		t.Fatalf("length changed: %d", len(merged))
	}

	// Non-matching section passes through completely unchanged.
	if !reflect.DeepEqual(merged[0], sections[0]) {
		t.Fatalf("hero section changed: %+v", merged[0])
	}

	p := merged[1]
	if p.Content["title"] != "X" {
		t.Fatalf("generated key missing: %+v", p.Content)
	}
	if p.Content["intro"] != "Our rates" || p.Content["footnote"] != "tax extra" {
		t.Fatalf("original keys lost: %+v", p.Content)
	}
	if p.Settings[SettingAIGenerated] != true {
		t.Fatalf("provenance flag missing: %+v", p.Settings)
	}
	if p.Settings["columns"] != 2 {
		t.Fatalf("original settings lost: %+v", p.Settings)
	}
}

func TestMergeAIContentGeneratedKeysWin(t *testing.T) {
	sections := []Section{{ID: "s1", Type: "hero", Content: map[string]any{"headline": "Old"}}}
	merged := MergeAIContent(sections, AIContent{"hero": {"headline": "New"}})
	if merged[0].Content["headline"] != "New" {
		t.Fatalf("generated key must win: %+v", merged[0].Content)
	}
}

func TestMergeAIContentSameTypeTwice(t *testing.T) {
	sections := []Section{
		{ID: "a", Type: "gallery", Content: map[string]any{"cols": 3}},
		{ID: "b", Type: "gallery", Content: map[string]any{"cols": 4}},
	}
	merged := MergeAIContent(sections, AIContent{"gallery": {"caption": "Work"}})

	for i, s := range merged {
		if s.Content["caption"] != "Work" {
			t.Fatalf("section %d missing payload: %+v", i, s.Content)
		}
	}
	if merged[0].Content["cols"] != 3 || merged[1].Content["cols"] != 4 {
		t.Fatalf("per-section content lost: %+v", merged)
	}
}

func TestMergeAIContentPure(t *testing.T) {
	sections := sampleSections()
	content := AIContent{"pricing": {"title": "X"}}

	first := MergeAIContent(sections, content)
	second := MergeAIContent(sections, content)

	if !reflect.DeepEqual(first, second) {
		t.Fatal("merge is not deterministic")
	}

	// Inputs unmodified after the call.
	if !reflect.DeepEqual(sections, sampleSections()) {
		t.Fatalf("input sections mutated: %+v", sections)
	}
	if _, ok := sections[1].Content["title"]; ok {
		t.Fatal("input content map mutated")
	}
	if _, ok := sections[1].Settings[SettingAIGenerated]; ok {
		t.Fatal("input settings map mutated")
	}
}

func TestMergeAIContentNoContent(t *testing.T) {
	sections := sampleSections()
	merged := MergeAIContent(sections, nil)
	if !reflect.DeepEqual(merged, sections) {
		t.Fatal("nil content must pass sections through unchanged")
	}
}
