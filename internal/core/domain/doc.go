// Package domain defines the core business entities for KlarText.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: One user submission moving through the pipeline
//   - Chunk: A bounded, sentence-aligned slice of a document
//   - RiskProfile: Routing input computed per chunk
//   - InferenceRequest/InferenceResult: One provider call attempt
//   - VerificationReport: Outcome of the fidelity checks
//   - CacheEntry: A verified, reusable simplification
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
