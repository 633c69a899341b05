// Package postprocess applies deterministic cleanup rules to raw model
// output: sentence length enforcement, glossary expansion, list formatting
// and size capping. It never alters factual content, only formatting.
package postprocess

import (
	"strings"

	"github.com/klartext/klartext/internal/core/domain"
)

// Processor applies the level's formatting rules to raw provider output.
// Apply is a pure function of (text, level) and the glossary snapshot.
type Processor struct {
	glossary *Glossary
}

// Option configures the processor.
type Option func(*Processor)

// WithGlossary sets the glossary used for term expansion.
func WithGlossary(g *Glossary) Option {
	return func(p *Processor) {
		p.glossary = g
	}
}

// New creates a processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Apply transforms raw output according to the level policy and returns the
// processed text plus any formatting warnings. No external calls happen here.
func (p *Processor) Apply(raw string, level domain.Level) (string, []string) {
	policy := level.Policy()

	text := strings.TrimSpace(raw)
	if text == "" {
		return "", nil
	}

	var warnings []string

	text = normaliseBullets(text)
	text = splitLongSentences(text, policy.MaxSentenceWords)

	if policy.ExpandGlossary && p.glossary != nil {
		text = p.glossary.Expand(text)
	}

	if policy.UseBullets {
		text = oneSentencePerLine(text)
	}
	if policy.ParagraphSpacing {
		text = spaceParagraphs(text)
	}

	if len(text) > policy.MaxOutputChars {
		text = truncateAtSentence(text, policy.MaxOutputChars)
		warnings = append(warnings, "output_truncated")
	}

	return text, warnings
}

// clause separators tried in order when a sentence must be shortened.
var clauseSeparators = []string{
	", ",
	" und ", " aber ", " oder ", " denn ", " weil ",
	" and ", " but ", " or ", " because ",
}

// splitLongSentences breaks sentences over the word bound at clause
// boundaries. Words, digits and dates are carried over verbatim: only
// punctuation between clauses changes.
func splitLongSentences(text string, maxWords int) string {
	if maxWords <= 0 {
		return text
	}

	lines := strings.Split(text, "\n")
	for li, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || (isBulletLine(trimmed) && len(strings.Fields(trimmed)) <= maxWords) {
			continue
		}

		var out []string
		for _, sent := range splitIntoSentences(trimmed) {
			out = append(out, breakSentence(sent, maxWords)...)
		}
		lines[li] = strings.Join(out, " ")
	}
	return strings.Join(lines, "\n")
}

// breakSentence splits one sentence at its best clause boundary until every
// piece fits the word bound, or no separator remains to split on.
func breakSentence(sent string, maxWords int) []string {
	if len(strings.Fields(sent)) <= maxWords {
		return []string{sent}
	}

	for _, sep := range clauseSeparators {
		idx := middlemostIndex(sent, sep)
		if idx < 0 {
			continue
		}

		left := strings.TrimSpace(sent[:idx])
		right := strings.TrimSpace(sent[idx+len(sep):])
		if left == "" || right == "" {
			continue
		}

		// The connective word stays with the second clause so no word
		// is lost; a bare comma is dropped.
		if sep != ", " {
			right = strings.TrimSpace(sep) + " " + right
		}
		left = ensureTerminator(left)
		right = ensureTerminator(capitaliseFirst(right))

		var out []string
		out = append(out, breakSentence(left, maxWords)...)
		out = append(out, breakSentence(right, maxWords)...)
		return out
	}

	// No clause boundary found: leave the sentence alone rather than
	// cutting mid-phrase.
	return []string{sent}
}

// middlemostIndex returns the index of the separator occurrence closest to
// the middle of the sentence, or -1 if absent. Splitting near the middle
// keeps both halves under the bound in fewer recursions.
func middlemostIndex(s, sep string) int {
	mid := len(s) / 2
	best := -1
	bestDist := len(s)

	for idx := strings.Index(s, sep); idx >= 0; {
		dist := idx - mid
		if dist < 0 {
			dist = -dist
		}
		if dist < bestDist {
			best = idx
			bestDist = dist
		}
		next := strings.Index(s[idx+1:], sep)
		if next < 0 {
			break
		}
		idx = idx + 1 + next
	}
	return best
}

// splitIntoSentences splits on terminator+space. This is intentionally
// simpler than the chunker's segmentation: it runs on model output, which
// rarely contains abbreviations after post-prompting. Ordinal dates like
// "3. März" are kept intact.
func splitIntoSentences(text string) []string {
	var out []string
	start := 0
	for i := 0; i < len(text); i++ {
		b := text[i]
		if b != '.' && b != '!' && b != '?' {
			continue
		}
		if i+1 < len(text) && text[i+1] != ' ' {
			continue
		}
		if b == '.' && isOrdinalBefore(text, i) {
			continue
		}
		piece := strings.TrimSpace(text[start : i+1])
		if piece != "" {
			out = append(out, piece)
		}
		start = i + 1
	}
	if rest := strings.TrimSpace(text[start:]); rest != "" {
		out = append(out, rest)
	}
	return out
}

// isOrdinalBefore reports whether the period at index i terminates a short
// digit group ("3. März", "am 12. Mai") rather than a sentence.
func isOrdinalBefore(text string, i int) bool {
	digits := 0
	for j := i - 1; j >= 0 && text[j] >= '0' && text[j] <= '9'; j-- {
		digits++
	}
	if digits == 0 || digits > 2 {
		return false
	}
	before := i - digits - 1
	return before < 0 || text[before] == ' '
}

func ensureTerminator(s string) string {
	if s == "" {
		return s
	}
	switch s[len(s)-1] {
	case '.', '!', '?', ':':
		return s
	}
	return s + "."
}

func capitaliseFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	if r[0] >= 'a' && r[0] <= 'z' {
		r[0] = r[0] - 'a' + 'A'
	}
	return string(r)
}

// normaliseBullets rewrites "*", "•" and "–" list markers to "- ".
func normaliseBullets(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		trimmed := strings.TrimLeft(line, " \t")
		for _, marker := range []string{"* ", "• ", "– ", "— "} {
			if strings.HasPrefix(trimmed, marker) {
				lines[i] = "- " + strings.TrimPrefix(trimmed, marker)
				break
			}
		}
	}
	return strings.Join(lines, "\n")
}

func isBulletLine(line string) bool {
	return strings.HasPrefix(line, "- ")
}

// oneSentencePerLine puts each sentence of a prose line on its own line.
// Bullet lines and headings are kept as they are.
func oneSentencePerLine(text string) string {
	lines := strings.Split(text, "\n")
	var out []string
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || isBulletLine(trimmed) || strings.HasPrefix(trimmed, "#") {
			out = append(out, line)
			continue
		}
		out = append(out, splitIntoSentences(trimmed)...)
	}
	return strings.Join(out, "\n")
}

// spaceParagraphs guarantees a blank line between consecutive text lines
// that represent separate paragraphs (non-bullet, non-empty).
func spaceParagraphs(text string) string {
	lines := strings.Split(text, "\n")
	var out []string
	for i, line := range lines {
		out = append(out, line)
		if i == len(lines)-1 {
			continue
		}
		cur := strings.TrimSpace(line)
		next := strings.TrimSpace(lines[i+1])
		if cur != "" && next != "" && !isBulletLine(cur) && !isBulletLine(next) {
			out = append(out, "")
		}
	}
	return strings.Join(out, "\n")
}

// truncateAtSentence cuts text at the last sentence boundary before limit.
// Falls back to a hard cut when no boundary exists.
func truncateAtSentence(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	cut := text[:limit]
	for i := len(cut) - 1; i >= 0; i-- {
		switch cut[i] {
		case '.', '!', '?':
			return strings.TrimSpace(cut[:i+1])
		}
	}
	return strings.TrimSpace(cut)
}
