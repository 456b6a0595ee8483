package pipeline

import (
	"fieldservice-platform/internal/consultations"
)

// Stage order for monotonicity checks. The error status sits outside the
// ladder: it is reachable from any non-terminal stage and carries no rank.
var stageRank = map[consultations.PipelineStatus]int{
	consultations.PipelineIdle:           0,
	consultations.PipelineRecordingReady: 1,
	consultations.PipelineUploading:      2,
	consultations.PipelineTranscribing:   3,
	consultations.PipelineAnalyzing:      4,
	consultations.PipelineGenerating:     5,
	consultations.PipelineReady:          6,
}

// IsTerminal reports whether pollers should stop polling at this status.
// Terminal here means poll-terminal: ready and error still accept transitions
// triggered by explicit regenerate or accept calls.
func IsTerminal(s consultations.PipelineStatus) bool {
	switch s {
	case consultations.PipelineReady, consultations.PipelineError, consultations.PipelineIdle:
		return true
	default:
		return false
	}
}

// canAdvance reports whether a transition from -> to is legal outside the
// explicit regenerate path. Forward moves and same-stage re-assertions are
// legal; error is legal from any stage; leaving error forward is legal once a
// stage is re-invoked.
func canAdvance(from, to consultations.PipelineStatus) bool {
	if to == consultations.PipelineError {
		return true
	}
	if from == consultations.PipelineError {
		// A retried stage re-enters the ladder at any rank.
		_, ok := stageRank[to]
		return ok
	}
	fromRank, okFrom := stageRank[from]
	toRank, okTo := stageRank[to]
	if !okFrom || !okTo {
		return false
	}
	return toRank >= fromRank
}
