package driven

import "time"

// TelemetryEvent is one pipeline observation. Events never carry raw user
// text: only identifiers, outcomes and timings leave the process.
type TelemetryEvent struct {
	// Kind names the event: "cache_hit", "routed", "provider_call",
	// "verification", "fallback", "safe_fallback".
	Kind string

	// DocumentID and ChunkID identify the pipeline unit.
	DocumentID string
	ChunkID    string

	// Provider is the inference backend involved, if any.
	Provider string

	// Outcome is a short machine-readable result ("pass", "fail",
	// "timeout", "hit", "miss").
	Outcome string

	// Attempt is the attempt number for provider calls.
	Attempt int

	// Duration is how long the observed operation took.
	Duration time.Duration
}

// TelemetrySink receives pipeline events.
// This is an optional service - when nil, events are dropped.
// Implementations must be safe for concurrent use and must not block
// the pipeline: slow sinks should buffer or drop.
type TelemetrySink interface {
	// Record accepts one event.
	Record(event TelemetryEvent)

	// Flush drains any buffered events. Called on shutdown.
	Flush()
}
