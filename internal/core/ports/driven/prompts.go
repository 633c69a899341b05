package driven

import "github.com/klartext/klartext/internal/core/domain"

// PromptStore provides access to simplification prompt templates.
// Implementations may load prompts from files, embed them in the binary,
// or fetch them from a remote configuration service.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// Returns the prompt content and any error encountered.
	// If the prompt is not found, implementations should return a sensible
	// default or an error, depending on whether the prompt is required.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	// This is useful when prompts may have been edited on disk.
	Reload()
}

// PromptName builds the well-known prompt name for a level, language and
// tier combination, e.g. "simplify_easy_de_strict". Prompt templates expect
// a single %s placeholder for the source text.
func PromptName(level domain.Level, lang domain.Language, tier domain.PromptTier) string {
	return "simplify_" + string(level) + "_" + string(lang) + "_" + string(tier)
}
