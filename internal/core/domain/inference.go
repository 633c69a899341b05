package domain

import "time"

// InferencePath selects which provider class handles a chunk.
type InferencePath string

// Inference paths in escalation order.
const (
	// PathLocal is the local model service. Cheap, lower capability.
	PathLocal InferencePath = "local"

	// PathRemote is the remote LLM API. Higher capability and scrutiny.
	PathRemote InferencePath = "remote"
)

// PromptTier selects how strict the simplification prompt is.
type PromptTier string

// Prompt tiers in escalation order.
const (
	TierStandard PromptTier = "standard"
	TierStrict   PromptTier = "strict"
)

// Route is a routing decision: which path to call with which prompt tier.
type Route struct {
	Path InferencePath
	Tier PromptTier
}

// Escalate returns the next stricter route. Escalation is monotone:
// standard tier tightens before the path switches, and a remote/strict
// route stays remote/strict. It never de-escalates.
func (r Route) Escalate() Route {
	switch {
	case r.Tier == TierStandard:
		return Route{Path: r.Path, Tier: TierStrict}
	case r.Path == PathLocal:
		return Route{Path: PathRemote, Tier: TierStrict}
	default:
		return r
	}
}

// StricterOrEqual reports whether r is at least as strict as other.
// Used to assert escalation monotonicity across retries.
func (r Route) StricterOrEqual(other Route) bool {
	if r.Path == PathLocal && other.Path == PathRemote {
		return false
	}
	if r.Path == other.Path && r.Tier == TierStandard && other.Tier == TierStrict {
		return false
	}
	return true
}

// InferenceRequest is one provider call attempt. A new request is created
// per attempt and never mutated.
type InferenceRequest struct {
	// ChunkID references the chunk being simplified.
	ChunkID string

	// Text is the source chunk text.
	Text string

	// TargetLang is the language the output must be written in.
	TargetLang Language

	// Level is the requested simplification level.
	Level Level

	// Tier is the prompt strictness tier for this attempt.
	Tier PromptTier

	// Attempt is the 1-based attempt number.
	Attempt int
}

// InferenceResult is the raw output of one provider call.
// It is consumed exactly once by the post-processor.
type InferenceResult struct {
	// ChunkID references the chunk that was simplified.
	ChunkID string

	// Provider is the name of the provider that produced the text.
	Provider string

	// Text is the raw generated simplification.
	Text string

	// Latency is how long the provider call took.
	Latency time.Duration
}
