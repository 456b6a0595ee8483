// Package media wraps the external video-hosting and speech-to-text
// providers. Embed/playback and the STT model itself are out of scope; these
// clients only fetch recording references and subtitle text over HTTP.
package media

import "context"

// Recording is a hosted recording reference at the video provider.
type Recording struct {
	ExternalVideoID string `json:"external_video_id"`
	URL             string `json:"url"`
	DurationSeconds int    `json:"duration_seconds"`
}

// RecordingProvider resolves finished recordings by room reference.
type RecordingProvider interface {
	RecordingByRoom(ctx context.Context, roomRef string) (Recording, error)
}

// TranscriptionProvider turns a hosted recording into subtitle-formatted text.
// A single logical request per stage: providers that process asynchronously
// are expected to block (with internal polling) until the text is available
// or ctx expires.
type TranscriptionProvider interface {
	Transcribe(ctx context.Context, externalVideoID string) (string, error)
}
