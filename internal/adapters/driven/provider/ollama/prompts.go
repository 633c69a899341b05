package ollama

import (
	"github.com/klartext/klartext/internal/core/domain"
)

// Built-in prompt templates, used when no prompt store is configured or a
// named prompt is missing. Each template takes the source text as its single
// placeholder.

const promptHeaderDE = `Du schreibst Texte in Einfacher Sprache um.
Regeln:
- Behalte alle Zahlen, Daten und Verneinungen exakt bei.
- Erfinde nichts dazu und lasse nichts Wichtiges weg.
- Antworte nur mit dem umgeschriebenen Text, ohne Erklärungen.`

const promptHeaderEN = `You rewrite text in easy language.
Rules:
- Keep all numbers, dates and negations exactly as they are.
- Do not invent anything and do not drop important content.
- Reply with the rewritten text only, no explanations.`

var levelRulesDE = map[domain.Level]string{
	domain.LevelVeryEasy: `- Sehr kurze Sätze, höchstens 10 Wörter pro Satz.
- Ein Gedanke pro Satz. Nutze Aufzählungen mit "-".
- Erkläre schwere Wörter in Klammern.`,
	domain.LevelEasy: `- Kurze Sätze, höchstens 15 Wörter pro Satz.
- Vermeide Fachwörter und Amtsdeutsch.`,
	domain.LevelMedium: `- Klare Alltagssprache, höchstens 25 Wörter pro Satz.
- Fachwörter nur wenn nötig.`,
}

var levelRulesEN = map[domain.Level]string{
	domain.LevelVeryEasy: `- Very short sentences, at most 10 words each.
- One idea per sentence. Use bullet points with "-".
- Explain difficult words in brackets.`,
	domain.LevelEasy: `- Short sentences, at most 15 words each.
- Avoid jargon and official language.`,
	domain.LevelMedium: `- Clear everyday language, at most 25 words per sentence.
- Use technical terms only when necessary.`,
}

const strictSuffixDE = `- WICHTIG: Jede Zahl und jedes Datum aus dem Original muss wörtlich erhalten bleiben.
- WICHTIG: Verneinungen (nicht, kein, verboten) dürfen nie wegfallen oder umgedreht werden.
- Bleibe so nah wie möglich am Original.`

const strictSuffixEN = `- IMPORTANT: every number and date from the original must be preserved verbatim.
- IMPORTANT: negations (not, no, forbidden) must never be dropped or reversed.
- Stay as close to the original as possible.`

// defaultPrompt assembles the built-in template for a level, language and
// tier combination.
func defaultPrompt(level domain.Level, lang domain.Language, tier domain.PromptTier) string {
	header := promptHeaderEN
	rules := levelRulesEN[level]
	strict := strictSuffixEN
	if lang == domain.LanguageGerman {
		header = promptHeaderDE
		rules = levelRulesDE[level]
		strict = strictSuffixDE
	}
	if rules == "" {
		rules = levelRulesEN[domain.LevelEasy]
		if lang == domain.LanguageGerman {
			rules = levelRulesDE[domain.LevelEasy]
		}
	}

	tmpl := header + "\n" + rules
	if tier == domain.TierStrict {
		tmpl += "\n" + strict
	}

	if lang == domain.LanguageGerman {
		return tmpl + "\n\nOriginaltext:\n%s\n\nEinfacher Text:"
	}
	return tmpl + "\n\nOriginal text:\n%s\n\nEasy text:"
}
