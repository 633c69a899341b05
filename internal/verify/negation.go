package verify

import "strings"

// Negation markers per language family. The check is a heuristic at chunk
// granularity: the presence or absence of negation must match between
// source and output, it does not attempt clause-level alignment.
var negationMarkers = map[string]bool{
	// German
	"nicht": true, "kein": true, "keine": true, "keinen": true,
	"keinem": true, "keiner": true, "keines": true, "nie": true,
	"niemals": true, "nichts": true, "ohne": true, "weder": true,
	"niemand": true, "verboten": true, "untersagt": true,
	// English
	"not": true, "no": true, "never": true, "none": true,
	"nothing": true, "without": true, "neither": true, "nor": true,
	"nobody": true, "forbidden": true, "prohibited": true,
}

// CountNegations returns the number of negation markers in text.
// English contractions ("don't", "can't") count via their n't suffix.
func CountNegations(text string) int {
	count := 0
	for _, field := range strings.Fields(strings.ToLower(text)) {
		word := strings.Trim(field, ".,:;!?()\"'-")
		if negationMarkers[word] || strings.HasSuffix(word, "n't") {
			count++
		}
	}
	return count
}
