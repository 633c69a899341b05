// Package services implements the core simplification pipeline: risk-based
// routing between inference paths, the bounded-retry fallback controller,
// ordinal-order recombination, and the Pipeline orchestrator that ties them
// to the chunker, cache, post-processor and verifier.
//
// Services depend only on domain types and driven ports; all I/O concretions
// live in the adapters packages.
package services
