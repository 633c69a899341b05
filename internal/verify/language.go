package verify

import (
	"strings"

	"github.com/klartext/klartext/internal/core/domain"
)

// Stopword profiles for language scoring. Function words are frequent and
// language-specific, which makes them a cheap and reliable signal without
// an external language-identification model.
var stopwordsDE = map[string]bool{
	"der": true, "die": true, "das": true, "und": true, "ist": true,
	"sie": true, "nicht": true, "ein": true, "eine": true, "mit": true,
	"auf": true, "für": true, "von": true, "dem": true, "den": true,
	"zu": true, "im": true, "dass": true, "wir": true, "ich": true,
	"werden": true, "wird": true, "sind": true, "müssen": true,
	"haben": true, "bei": true, "oder": true, "auch": true, "des": true,
	"sich": true, "als": true, "an": true, "nach": true, "bis": true,
	"dann": true, "wenn": true, "aber": true, "diese": true, "dieser": true,
}

var stopwordsEN = map[string]bool{
	"the": true, "and": true, "is": true, "you": true, "not": true,
	"a": true, "an": true, "with": true, "on": true, "for": true,
	"of": true, "to": true, "in": true, "that": true, "we": true,
	"i": true, "will": true, "are": true, "must": true, "have": true,
	"at": true, "or": true, "also": true, "this": true, "these": true,
	"your": true, "be": true, "by": true, "it": true, "if": true,
	"then": true, "but": true, "as": true, "from": true, "can": true,
}

// DetectLanguage scores text against the stopword profiles and returns the
// better-matching language. Returns false when the text carries no signal
// (no stopwords of either language).
func DetectLanguage(text string) (domain.Language, bool) {
	deScore, enScore := languageScores(text)
	if deScore == 0 && enScore == 0 {
		return "", false
	}
	if deScore >= enScore {
		return domain.LanguageGerman, true
	}
	return domain.LanguageEnglish, true
}

// languageScores counts German and English stopword hits in text.
func languageScores(text string) (de, en int) {
	for _, field := range strings.Fields(strings.ToLower(text)) {
		word := strings.Trim(field, ".,:;!?()\"'-")
		if stopwordsDE[word] {
			de++
		}
		if stopwordsEN[word] {
			en++
		}
	}
	return de, en
}
