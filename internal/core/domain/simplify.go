package domain

// MaxInputChars is the hard per-request size ceiling on input text.
const MaxInputChars = 40000

// SimplifyRequest is the transport-independent request contract.
type SimplifyRequest struct {
	// Text is the complex text to simplify.
	Text string

	// SourceLang is the declared input language. Empty means auto-detect.
	SourceLang Language

	// TargetLang is the language the output must be written in.
	TargetLang Language

	// Level is the requested simplification level.
	Level Level
}

// Validate rejects malformed requests before any processing happens.
// Validation failures are never retried.
func (r SimplifyRequest) Validate() error {
	if len(r.Text) == 0 {
		return ErrEmptyInput
	}
	if len(r.Text) > MaxInputChars {
		return ErrInputTooLarge
	}
	if !r.TargetLang.IsValid() {
		return ErrInvalidInput
	}
	if r.SourceLang != "" && !r.SourceLang.IsValid() {
		return ErrInvalidInput
	}
	if !r.Level.IsValid() {
		return ErrInvalidInput
	}
	return nil
}

// SimplifyResponse is the transport-independent response contract.
// It always carries some text per chunk: verified content or an explicit
// safe-fallback notice, never a silent gap.
type SimplifyResponse struct {
	// SimplifiedText is the recombined document in original chunk order.
	SimplifiedText string

	// KeyPoints is an optional short extractive summary for long inputs.
	KeyPoints []string

	// Warnings aggregates chunk- and document-level warnings.
	Warnings []string

	// Chunks holds the per-chunk terminal results in ordinal order.
	Chunks []ChunkResult
}
