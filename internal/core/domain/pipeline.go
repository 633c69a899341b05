package domain

// PipelineState tracks a chunk's progress through the pipeline.
// Transitions are driven exclusively by the pipeline service.
type PipelineState string

// Pipeline states. Terminal states are StateDone and StateFailed.
const (
	StatePending       PipelineState = "pending"
	StateCacheHit      PipelineState = "cache_hit"
	StateRouted        PipelineState = "routed"
	StateInferred      PipelineState = "inferred"
	StatePostProcessed PipelineState = "post_processed"
	StateVerified      PipelineState = "verified"
	StateFallbackRetry PipelineState = "fallback_retry"
	StateFailed        PipelineState = "failed"
	StateDone          PipelineState = "done"
)

// Terminal returns true for states the pipeline never leaves.
func (s PipelineState) Terminal() bool {
	return s == StateDone || s == StateFailed
}

// ChunkResult is the terminal outcome for one chunk.
type ChunkResult struct {
	// Ordinal is the chunk's position within the document.
	Ordinal int

	// Text is the verified simplification, or the safe-fallback message.
	Text string

	// State is the terminal pipeline state, StateDone or StateFailed.
	State PipelineState

	// Trace records the states the chunk moved through, in order,
	// ending with State. Diagnostic only; never parsed.
	Trace []PipelineState

	// SafeFallback is true when Text is the fixed safe non-answer
	// rather than a verified simplification.
	SafeFallback bool

	// FromCache is true when the result was served from the cache.
	FromCache bool

	// Route is the last route used, empty for cache hits.
	Route Route

	// Attempts is the number of provider calls made for this chunk.
	Attempts int

	// Warnings carries chunk-level warnings (truncation, fallback notices).
	Warnings []string
}
