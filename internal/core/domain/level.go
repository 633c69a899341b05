package domain

// Level selects how aggressively text is simplified.
type Level string

// Supported simplification levels.
const (
	// LevelVeryEasy produces very short sentences, defines uncommon words
	// and prefers bullet points over prose.
	LevelVeryEasy Level = "very_easy"

	// LevelEasy produces short sentences with clear structure and
	// minimal jargon.
	LevelEasy Level = "easy"

	// LevelMedium produces plain language with normal sentence length.
	LevelMedium Level = "medium"
)

// IsValid returns true if the level is supported.
func (l Level) IsValid() bool {
	switch l {
	case LevelVeryEasy, LevelEasy, LevelMedium:
		return true
	}
	return false
}

// String returns the level name.
func (l Level) String() string {
	return string(l)
}

// LevelPolicy holds the formatting rules a level imposes on output text.
type LevelPolicy struct {
	// MaxSentenceWords is the sentence length ceiling enforced by the
	// post-processor.
	MaxSentenceWords int

	// UseBullets converts enumerations into bullet lists.
	UseBullets bool

	// ExpandGlossary inserts short explanations after flagged terms.
	ExpandGlossary bool

	// ParagraphSpacing inserts a blank line between paragraphs.
	ParagraphSpacing bool

	// MaxOutputChars is the hard ceiling on processed output size.
	// Output beyond this is truncated with a warning.
	MaxOutputChars int
}

// levelPolicies encodes the formatting rules per level.
var levelPolicies = map[Level]LevelPolicy{
	LevelVeryEasy: {
		MaxSentenceWords: 10,
		UseBullets:       true,
		ExpandGlossary:   true,
		ParagraphSpacing: true,
		MaxOutputChars:   8000,
	},
	LevelEasy: {
		MaxSentenceWords: 15,
		UseBullets:       false,
		ExpandGlossary:   true,
		ParagraphSpacing: false,
		MaxOutputChars:   8000,
	},
	LevelMedium: {
		MaxSentenceWords: 25,
		UseBullets:       false,
		ExpandGlossary:   false,
		ParagraphSpacing: false,
		MaxOutputChars:   10000,
	},
}

// Policy returns the formatting rules for the level.
// Unknown levels get the easy policy.
func (l Level) Policy() LevelPolicy {
	if p, ok := levelPolicies[l]; ok {
		return p
	}
	return levelPolicies[LevelEasy]
}
