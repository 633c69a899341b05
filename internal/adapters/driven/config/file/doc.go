// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data to the local filesystem.
//
// Adapters:
//   - ConfigStore: TOML-based configuration storage
//   - PromptStore: user-editable simplification prompt templates
//
// The package also maps the flat ConfigStore keys onto the typed Settings
// used to wire the pipeline.
package file
