// Package chunker splits documents into ordered, sentence-aligned chunks.
package chunker

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/klartext/klartext/internal/core/domain"
)

// DefaultMaxWords is the default chunk size bound in words.
const DefaultMaxWords = 120

// Chunker splits text at sentence boundaries into bounded chunks.
// Splitting is a pure function: no I/O, no shared state.
type Chunker struct {
	maxWords int
}

// Option configures the chunker.
type Option func(*Chunker)

// WithMaxWords sets the chunk size bound in words.
func WithMaxWords(n int) Option {
	return func(c *Chunker) {
		if n > 0 {
			c.maxWords = n
		}
	}
}

// New creates a chunker with the given options.
func New(opts ...Option) *Chunker {
	c := &Chunker{maxWords: DefaultMaxWords}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// MaxWords returns the configured chunk size bound.
func (c *Chunker) MaxWords() int {
	return c.maxWords
}

// Split produces the ordered chunk sequence for a document.
//
// Chunk boundaries always fall on sentence boundaries. A single sentence
// longer than the word bound becomes its own oversized chunk and is
// reported as a warning, not an error. Concatenating the chunk texts in
// order reconstructs the input modulo whitespace normalisation.
//
// Empty input (after trimming) returns domain.ErrEmptyInput and no chunks.
func (c *Chunker) Split(doc *domain.Document) ([]domain.Chunk, []string, error) {
	if strings.TrimSpace(doc.Text) == "" {
		return nil, nil, domain.ErrEmptyInput
	}

	sentences := splitSentences(doc.Text)

	var (
		chunks   []domain.Chunk
		warnings []string
	)

	var (
		current      []sentence
		currentWords int
	)

	flush := func() {
		if len(current) == 0 {
			return
		}
		texts := make([]string, len(current))
		sentWords := 0
		for i, s := range current {
			texts[i] = s.text
			sentWords += s.words
		}
		chunk := domain.Chunk{
			ID:            uuid.New().String(),
			DocumentID:    doc.ID,
			Ordinal:       len(chunks),
			Text:          strings.Join(texts, " "),
			Offset:        current[0].offset,
			SentenceCount: len(current),
			WordCount:     sentWords,
		}
		chunks = append(chunks, chunk)
		current = current[:0]
		currentWords = 0
	}

	for _, s := range sentences {
		if s.words > c.maxWords {
			// Oversized sentence: close the open chunk, then emit the
			// sentence alone. It cannot be split further at a sentence
			// boundary, so the bound is relaxed with a warning.
			flush()
			current = append(current, s)
			currentWords = s.words
			flush()
			warnings = append(warnings,
				fmt.Sprintf("oversized_sentence_chunk_%d", len(chunks)-1))
			continue
		}

		if currentWords+s.words > c.maxWords {
			flush()
		}
		current = append(current, s)
		currentWords += s.words
	}
	flush()

	return chunks, warnings, nil
}

// sentence is one segmented sentence with its position in the source text.
type sentence struct {
	text   string
	offset int
	words  int
}

// abbreviations that end with a period but do not end a sentence.
// Lowercased for comparison; covers the common German and English cases.
var abbreviations = map[string]bool{
	// German
	"z.b":  true,
	"bzw":  true,
	"ca":   true,
	"dr":   true,
	"evtl": true,
	"ggf":  true,
	"inkl": true,
	"nr":   true,
	"str":  true,
	"usw":  true,
	"vgl":  true,
	"d.h":  true,
	"u.a":  true,
	// English
	"e.g": true,
	"i.e": true,
	"mr":  true,
	"mrs": true,
	"ms":  true,
	"st":  true,
	"vs":  true,
	"etc": true,
	// Shared
	"prof":   true,
	"approx": true,
}

// splitSentences segments text on sentence terminators (. ! ?) followed by
// whitespace or end of input. Periods after common abbreviations and after
// short digit groups (German ordinal dates like "3. März") do not split.
func splitSentences(text string) []sentence {
	var out []sentence

	// Byte offsets are safe here: all terminators are single-byte ASCII.
	start := 0

	for i := 0; i < len(text); i++ {
		ch := text[i]
		if ch != '.' && ch != '!' && ch != '?' {
			continue
		}

		// Consume runs of terminators ("..." or "?!").
		end := i
		for end+1 < len(text) && isTerminator(text[end+1]) {
			end++
		}

		// Must be followed by whitespace or end of input.
		if end+1 < len(text) && !isSpace(text[end+1]) {
			i = end
			continue
		}

		if ch == '.' && end == i && !endsSentence(text[start:i]) {
			continue
		}

		if s, ok := makeSentence(text, start, end+1); ok {
			out = append(out, s)
		}
		i = end
		start = end + 1
	}

	// Trailing text without a terminator is its own sentence.
	if s, ok := makeSentence(text, start, len(text)); ok {
		out = append(out, s)
	}

	return out
}

// makeSentence trims the slice [start, end) and records its offset.
func makeSentence(text string, start, end int) (sentence, bool) {
	raw := text[start:end]
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return sentence{}, false
	}
	offset := start + strings.Index(raw, trimmed[:1])
	return sentence{
		text:   trimmed,
		offset: offset,
		words:  len(strings.Fields(trimmed)),
	}, true
}

// endsSentence decides whether a period after the given prefix is a real
// sentence boundary rather than an abbreviation or ordinal number.
func endsSentence(prefix string) bool {
	fields := strings.Fields(prefix)
	if len(fields) == 0 {
		return false
	}
	last := strings.ToLower(strings.Trim(fields[len(fields)-1], "(\"'"))

	// Short digit groups are ordinals: "3. März", "am 1. Mai".
	if len(last) <= 2 && isDigits(last) {
		return false
	}
	return !abbreviations[strings.TrimSuffix(last, ".")] && !abbreviations[last]
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func isTerminator(b byte) bool {
	return b == '.' || b == '!' || b == '?'
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}
