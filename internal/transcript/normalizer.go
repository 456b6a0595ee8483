package transcript

import (
	"strings"
)

// Entry is a single speaker-attributed, time-coded utterance.
//
// Invariant: StartTime <= EndTime for well-formed cues. Entries are emitted in
// source (block) order; the normalizer never re-sorts, even when the source
// stream carries out-of-order timestamps.
type Entry struct {
	Speaker   string  `json:"speaker"`
	StartTime float64 `json:"start_time"`
	EndTime   float64 `json:"end_time"`
	Text      string  `json:"text"`
}

const unknownSpeaker = "Unknown"

const timestampArrow = "-->"

// Normalize parses subtitle-formatted text (WebVTT/SRT-style cue blocks) into
// ordered entries. It is pure and total: malformed blocks are skipped, never
// surfaced as errors, and unparsable input yields an empty slice.
func Normalize(raw string) []Entry {
	entries := []Entry{}
	for _, block := range splitBlocks(raw) {
		e, ok := parseBlock(block)
		if !ok {
			continue
		}
		entries = append(entries, e)
	}
	return entries
}

// splitBlocks splits on blank-line boundaries and drops blocks with fewer than
// two non-empty lines (a cue needs at least a timestamp line and a text line).
func splitBlocks(raw string) [][]string {
	normalized := strings.ReplaceAll(raw, "\r\n", "\n")
	var blocks [][]string
	for _, chunk := range strings.Split(normalized, "\n\n") {
		var lines []string
		for _, line := range strings.Split(chunk, "\n") {
			if strings.TrimSpace(line) == "" {
				continue
			}
			lines = append(lines, line)
		}
		if len(lines) < 2 {
			continue
		}
		blocks = append(blocks, lines)
	}
	return blocks
}

func parseBlock(lines []string) (Entry, bool) {
	arrowIdx := -1
	for i, line := range lines {
		if strings.Contains(line, timestampArrow) {
			arrowIdx = i
			break
		}
	}
	if arrowIdx < 0 || arrowIdx == len(lines)-1 {
		return Entry{}, false
	}

	start, end := parseTimestampLine(lines[arrowIdx])

	text := strings.TrimSpace(strings.Join(lines[arrowIdx+1:], " "))
	if text == "" {
		return Entry{}, false
	}

	speaker, text := attributeSpeaker(text)

	return Entry{
		Speaker:   speaker,
		StartTime: start,
		EndTime:   end,
		Text:      text,
	}, true
}

func parseTimestampLine(line string) (float64, float64) {
	parts := strings.SplitN(line, timestampArrow, 2)
	if len(parts) != 2 {
		return 0, 0
	}
	return parseTimestamp(parts[0]), parseTimestamp(parts[1])
}

// parseTimestamp accepts H:MM:SS.mmm (hours form) and MM:SS.mmm (minutes
// form), with either '.' or ',' as the sub-second separator. Any other shape
// yields 0; cue ordering is preserved regardless.
func parseTimestamp(s string) float64 {
	s = strings.TrimSpace(s)
	// Trailing cue settings ("00:00:05.000 align:start") are ignored.
	if i := strings.IndexByte(s, ' '); i >= 0 {
		s = s[:i]
	}
	s = strings.ReplaceAll(s, ",", ".")

	groups := strings.Split(s, ":")
	nums := make([]float64, 0, len(groups))
	for _, g := range groups {
		n, ok := parseNumber(g)
		if !ok {
			return 0
		}
		nums = append(nums, n)
	}

	switch len(nums) {
	case 3:
		return nums[0]*3600 + nums[1]*60 + nums[2]
	case 2:
		return nums[0]*60 + nums[1]
	default:
		return 0
	}
}

func parseNumber(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	var whole, frac float64
	var fracScale float64 = 1
	seenDot := false
	for _, r := range s {
		switch {
		case r == '.' && !seenDot:
			seenDot = true
		case r >= '0' && r <= '9':
			d := float64(r - '0')
			if seenDot {
				fracScale /= 10
				frac += d * fracScale
			} else {
				whole = whole*10 + d
			}
		default:
			return 0, false
		}
	}
	return whole + frac, true
}

// attributeSpeaker resolves the speaker for an utterance:
//   - "<v Name>body" voice tags win; the closing "</v>" is stripped from body.
//   - "Name: body" wins when the prefix is under 30 chars of letters/spaces.
//   - otherwise the speaker is Unknown and the text is kept verbatim.
func attributeSpeaker(text string) (string, string) {
	if strings.HasPrefix(text, "<v ") {
		if close := strings.IndexByte(text, '>'); close > 3 {
			speaker := strings.TrimSpace(text[3:close])
			body := strings.TrimSpace(text[close+1:])
			body = strings.TrimSpace(strings.TrimSuffix(body, "</v>"))
			if speaker != "" && body != "" {
				return speaker, body
			}
		}
	}

	if colon := strings.IndexByte(text, ':'); colon > 0 && colon < 30 {
		prefix := text[:colon]
		if isSpeakerName(prefix) {
			body := strings.TrimSpace(text[colon+1:])
			if body != "" {
				return strings.TrimSpace(prefix), body
			}
		}
	}

	return unknownSpeaker, text
}

func isSpeakerName(s string) bool {
	if strings.TrimSpace(s) == "" {
		return false
	}
	for _, r := range s {
		isLetter := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		if !isLetter && r != ' ' {
			return false
		}
	}
	return true
}
