package domain

// Language identifies a supported natural language.
type Language string

// Supported languages.
const (
	LanguageGerman  Language = "de"
	LanguageEnglish Language = "en"
)

// IsValid returns true if the language is supported.
func (l Language) IsValid() bool {
	switch l {
	case LanguageGerman, LanguageEnglish:
		return true
	}
	return false
}

// String returns the language code.
func (l Language) String() string {
	return string(l)
}

// safeFallbackMessages are the fixed notices emitted when a chunk cannot be
// simplified within the retry budget. They are honest non-answers: the user
// always sees that a passage was skipped, never silently altered text.
var safeFallbackMessages = map[Language]string{
	LanguageGerman:  "Dieser Abschnitt konnte nicht sicher vereinfacht werden. Bitte lesen Sie den Originaltext.",
	LanguageEnglish: "This passage could not be safely simplified. Please read the original text.",
}

// SafeFallbackMessage returns the fixed safe non-answer for the language.
// Unknown languages fall back to English.
func SafeFallbackMessage(lang Language) string {
	if msg, ok := safeFallbackMessages[lang]; ok {
		return msg
	}
	return safeFallbackMessages[LanguageEnglish]
}
