// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the pipeline to function:
//
//   - Provider: One inference backend (local model service or remote API)
//   - CacheStore: Verified-result cache persistence
//   - ConfigStore: Application configuration
//   - PromptStore: Simplification prompt templates
//
// # Optional Interfaces
//
// These can be nil - the pipeline degrades gracefully:
//
//   - EmbeddingService: Vector embeddings. Without it, the semantic
//     similarity gate is disabled and verification relies on the
//     deterministic checks only.
//   - TelemetrySink: Pipeline events. Without it, events are dropped.
//   - TTSService: Text-to-speech. Without it, /v1/tts is unavailable.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
