package openai

import (
	"github.com/klartext/klartext/internal/core/domain"
)

// Built-in system prompts, used when no prompt store is configured or a
// named prompt is missing.

const systemBaseDE = `Du schreibst Texte in Einfacher Sprache um.
Behalte alle Zahlen, Daten und Verneinungen exakt bei.
Erfinde nichts dazu und lasse nichts Wichtiges weg.
Antworte nur mit dem umgeschriebenen Text.`

const systemBaseEN = `You rewrite text in easy language.
Keep all numbers, dates and negations exactly as they are.
Do not invent anything and do not drop important content.
Reply with the rewritten text only.`

var systemLevelDE = map[domain.Level]string{
	domain.LevelVeryEasy: "Sehr kurze Sätze, höchstens 10 Wörter. Ein Gedanke pro Satz. Nutze Aufzählungen. Erkläre schwere Wörter in Klammern.",
	domain.LevelEasy:     "Kurze Sätze, höchstens 15 Wörter. Vermeide Fachwörter und Amtsdeutsch.",
	domain.LevelMedium:   "Klare Alltagssprache, höchstens 25 Wörter pro Satz.",
}

var systemLevelEN = map[domain.Level]string{
	domain.LevelVeryEasy: "Very short sentences, at most 10 words. One idea per sentence. Use bullet points. Explain difficult words in brackets.",
	domain.LevelEasy:     "Short sentences, at most 15 words. Avoid jargon and official language.",
	domain.LevelMedium:   "Clear everyday language, at most 25 words per sentence.",
}

const systemStrictDE = "WICHTIG: Jede Zahl und jedes Datum muss wörtlich erhalten bleiben. Verneinungen dürfen nie wegfallen oder umgedreht werden. Bleibe nah am Original."

const systemStrictEN = "IMPORTANT: every number and date must be preserved verbatim. Negations must never be dropped or reversed. Stay close to the original."

// defaultSystemPrompt assembles the built-in system message for a level,
// language and tier combination.
func defaultSystemPrompt(level domain.Level, lang domain.Language, tier domain.PromptTier) string {
	base := systemBaseEN
	rules := systemLevelEN[level]
	strict := systemStrictEN
	if lang == domain.LanguageGerman {
		base = systemBaseDE
		rules = systemLevelDE[level]
		strict = systemStrictDE
	}
	if rules == "" {
		rules = systemLevelEN[domain.LevelEasy]
		if lang == domain.LanguageGerman {
			rules = systemLevelDE[domain.LevelEasy]
		}
	}

	prompt := base + "\n" + rules
	if tier == domain.TierStrict {
		prompt += "\n" + strict
	}
	return prompt
}
