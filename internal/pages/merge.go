package pages

// SettingAIGenerated marks a section whose content was touched by generation.
// The editor UI reads this flag to badge AI-populated sections.
const SettingAIGenerated = "aiGenerated"

// MergeAIContent merges generated per-section content into template sections.
//
// For each section whose type has an entry in content, the merged section's
// content is the shallow union of the original content and the generated
// content, generated keys winning on conflict, and the section's settings gain
// the SettingAIGenerated flag. Sections with no matching entry pass through
// unchanged.
//
// Sections are matched by type, not id: two sections sharing a type both
// receive the same payload independently.
//
// The function is pure: it never mutates its inputs and identical inputs
// always produce identical outputs.
func MergeAIContent(sections []Section, content AIContent) []Section {
	out := make([]Section, len(sections))
	for i, s := range sections {
		generated, ok := content[s.Type]
		if !ok {
			out[i] = s
			continue
		}

		merged := s
		merged.Content = make(map[string]any, len(s.Content)+len(generated))
		for k, v := range s.Content {
			merged.Content[k] = v
		}
		for k, v := range generated {
			merged.Content[k] = v
		}

		merged.Settings = make(map[string]any, len(s.Settings)+1)
		for k, v := range s.Settings {
			merged.Settings[k] = v
		}
		merged.Settings[SettingAIGenerated] = true

		out[i] = merged
	}
	return out
}
