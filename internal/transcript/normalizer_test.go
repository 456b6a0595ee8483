package transcript

import "testing"

func TestNormalizeVoiceTagCue(t *testing.T) {
	raw := "1\n00:00:01.000 --> 00:00:05.000\n<v Alice>Hello there"

	entries := Normalize(raw)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	e := entries[0]
	if e.Speaker != "Alice" {
		t.Fatalf("expected speaker Alice, got %q", e.Speaker)
	}
	if e.StartTime != 1 || e.EndTime != 5 {
		t.Fatalf("expected times 1..5, got %v..%v", e.StartTime, e.EndTime)
	}
	if e.Text != "Hello there" {
		t.Fatalf("expected text %q, got %q", "Hello there", e.Text)
	}
}

func TestNormalizeVoiceTagWithClosingTag(t *testing.T) {
	raw := "00:00:01.000 --> 00:00:02.000\n<v Bob>Sure thing</v>"

	entries := Normalize(raw)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Speaker != "Bob" || entries[0].Text != "Sure thing" {
		t.Fatalf("got %+v", entries[0])
	}
}

func TestNormalizeColonPrefixSpeaker(t *testing.T) {
	raw := "2\n00:01:00.000 --> 00:01:04.500\nJohn Smith: we can start Tuesday"

	entries := Normalize(raw)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	e := entries[0]
	if e.Speaker != "John Smith" {
		t.Fatalf("expected speaker John Smith, got %q", e.Speaker)
	}
	if e.Text != "we can start Tuesday" {
		t.Fatalf("got text %q", e.Text)
	}
	if e.StartTime != 60 || e.EndTime != 64.5 {
		t.Fatalf("got times %v..%v", e.StartTime, e.EndTime)
	}
}

func TestNormalizeUnknownSpeaker(t *testing.T) {
	// URL-like prefix contains non-letters, so no speaker is attributed.
	raw := "00:00:01.000 --> 00:00:02.000\nhttp://example.com is the site"

	entries := Normalize(raw)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Speaker != "Unknown" {
		t.Fatalf("expected Unknown, got %q", entries[0].Speaker)
	}
	if entries[0].Text != "http://example.com is the site" {
		t.Fatalf("text must be kept verbatim, got %q", entries[0].Text)
	}
}

func TestNormalizeDropsBlockWithoutArrow(t *testing.T) {
	raw := "WEBVTT\nKind: captions\n\n00:00:01.000 --> 00:00:02.000\nhi"

	entries := Normalize(raw)
	if len(entries) != 1 {
		t.Fatalf("expected header block dropped, got %d entries", len(entries))
	}
	if entries[0].Text != "hi" {
		t.Fatalf("got %+v", entries[0])
	}
}

func TestNormalizeDropsEmptyBodyBlock(t *testing.T) {
	raw := "1\n00:00:01.000 --> 00:00:02.000\n\n\n2\n00:00:03.000 --> 00:00:04.000\nstill here"

	entries := Normalize(raw)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].StartTime != 3 {
		t.Fatalf("expected surviving cue at t=3, got %v", entries[0].StartTime)
	}
}

func TestNormalizeTwoGroupTimestampAndComma(t *testing.T) {
	raw := "01:30,500 --> 01:31,250\nshort form"

	entries := Normalize(raw)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].StartTime != 90.5 {
		t.Fatalf("expected 90.5, got %v", entries[0].StartTime)
	}
	if entries[0].EndTime != 91.25 {
		t.Fatalf("expected 91.25, got %v", entries[0].EndTime)
	}
}

func TestNormalizeMalformedTimestampYieldsZero(t *testing.T) {
	raw := "abc --> def\nwords anyway"

	entries := Normalize(raw)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].StartTime != 0 || entries[0].EndTime != 0 {
		t.Fatalf("expected zero times, got %v..%v", entries[0].StartTime, entries[0].EndTime)
	}
}

func TestNormalizeMultiLineBodyJoinedBySpace(t *testing.T) {
	raw := "1\n00:00:01.000 --> 00:00:06.000\nfirst line\nsecond line"

	entries := Normalize(raw)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Text != "first line second line" {
		t.Fatalf("got %q", entries[0].Text)
	}
}

func TestNormalizePreservesSourceOrder(t *testing.T) {
	// Out-of-order cues are emitted as-is; the normalizer does not sort.
	raw := "1\n00:00:10.000 --> 00:00:11.000\nlater cue\n\n2\n00:00:01.000 --> 00:00:02.000\nearlier cue"

	entries := Normalize(raw)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].StartTime != 10 || entries[1].StartTime != 1 {
		t.Fatalf("source order not preserved: %v, %v", entries[0].StartTime, entries[1].StartTime)
	}
}

func TestNormalizeEmptyAndGarbageInput(t *testing.T) {
	if got := Normalize(""); len(got) != 0 {
		t.Fatalf("expected no entries for empty input, got %d", len(got))
	}
	if got := Normalize("no cues at all, just prose"); len(got) != 0 {
		t.Fatalf("expected no entries for garbage input, got %d", len(got))
	}
}
