package chunker

import (
	"errors"
	"strings"
	"testing"

	"github.com/klartext/klartext/internal/core/domain"
)

func TestNew(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		c := New()
		if c.maxWords != DefaultMaxWords {
			t.Errorf("expected maxWords %d, got %d", DefaultMaxWords, c.maxWords)
		}
	})

	t.Run("custom max words", func(t *testing.T) {
		c := New(WithMaxWords(40))
		if c.maxWords != 40 {
			t.Errorf("expected maxWords 40, got %d", c.maxWords)
		}
	})

	t.Run("zero value ignored", func(t *testing.T) {
		c := New(WithMaxWords(0))
		if c.maxWords != DefaultMaxWords {
			t.Errorf("expected default maxWords, got %d", c.maxWords)
		}
	})
}

func TestSplit_EmptyInput(t *testing.T) {
	c := New()
	doc := &domain.Document{ID: "doc-1", Text: "   \n\t "}

	chunks, warnings, err := c.Split(doc)
	if !errors.Is(err, domain.ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
	if len(chunks) != 0 {
		t.Errorf("expected 0 chunks, got %d", len(chunks))
	}
	if len(warnings) != 0 {
		t.Errorf("expected no warnings, got %v", warnings)
	}
}

func TestSplit_SingleSentence(t *testing.T) {
	c := New()
	doc := &domain.Document{
		ID:   "doc-1",
		Text: "Der Antragsteller muss die erforderlichen Unterlagen fristgerecht einreichen.",
	}

	chunks, warnings, err := c.Split(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Ordinal != 0 {
		t.Errorf("expected ordinal 0, got %d", chunks[0].Ordinal)
	}
	if chunks[0].SentenceCount != 1 {
		t.Errorf("expected 1 sentence, got %d", chunks[0].SentenceCount)
	}
	if chunks[0].WordCount != 8 {
		t.Errorf("expected 8 words, got %d", chunks[0].WordCount)
	}
	if chunks[0].Text != doc.Text {
		t.Errorf("chunk text differs from input: %q", chunks[0].Text)
	}
}

func TestSplit_BoundariesOnSentences(t *testing.T) {
	c := New(WithMaxWords(8))
	doc := &domain.Document{
		ID:   "doc-1",
		Text: "Das ist der erste Satz. Das ist der zweite Satz. Das ist der dritte Satz.",
	}

	chunks, _, err := c.Split(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, ch := range chunks {
		if ch.Ordinal != i {
			t.Errorf("chunk %d: expected ordinal %d, got %d", i, i, ch.Ordinal)
		}
		if ch.WordCount > 8 {
			t.Errorf("chunk %d exceeds word bound: %d words", i, ch.WordCount)
		}
		if !strings.HasSuffix(ch.Text, ".") {
			t.Errorf("chunk %d does not end at a sentence boundary: %q", i, ch.Text)
		}
	}
}

func TestSplit_Coverage(t *testing.T) {
	// Concatenating chunk texts reconstructs the input modulo whitespace.
	inputs := []string{
		"One. Two! Three? Four.",
		"Pay by March 3rd, 2024. The fee is 15 euros.\n\nA new paragraph starts here.",
		"Sie müssen z.B. die Unterlagen am 3. März abgeben. Danach ist es zu spät.",
		"No terminator at all just words",
	}

	c := New(WithMaxWords(5))
	for _, input := range inputs {
		doc := &domain.Document{ID: "doc-1", Text: input}
		chunks, _, err := c.Split(doc)
		if err != nil {
			t.Fatalf("input %q: unexpected error: %v", input, err)
		}

		var parts []string
		for _, ch := range chunks {
			parts = append(parts, ch.Text)
		}
		got := domain.NormalizeText(strings.Join(parts, " "))
		want := domain.NormalizeText(input)
		if got != want {
			t.Errorf("coverage broken for %q:\n got %q\nwant %q", input, got, want)
		}
	}
}

func TestSplit_AbbreviationsDoNotSplit(t *testing.T) {
	c := New()
	doc := &domain.Document{
		ID:   "doc-1",
		Text: "Sie brauchen z.B. einen Ausweis. Kommen Sie am 3. März vorbei.",
	}

	chunks, _, err := c.Split(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].SentenceCount != 2 {
		t.Errorf("expected 2 sentences, got %d", chunks[0].SentenceCount)
	}
}

func TestSplit_OversizedSentence(t *testing.T) {
	long := "Dieser Satz ist sehr lang und hat viel mehr Wörter als die Grenze erlaubt weil er einfach nicht aufhört."
	c := New(WithMaxWords(5))
	doc := &domain.Document{
		ID:   "doc-1",
		Text: "Kurzer Satz. " + long + " Noch ein Satz.",
	}

	chunks, warnings, err := c.Split(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(warnings) != 1 {
		t.Fatalf("expected 1 warning, got %v", warnings)
	}
	if !strings.HasPrefix(warnings[0], "oversized_sentence_chunk_") {
		t.Errorf("unexpected warning: %q", warnings[0])
	}

	found := false
	for _, ch := range chunks {
		if ch.Text == long {
			found = true
			if ch.SentenceCount != 1 {
				t.Errorf("oversized chunk should hold exactly one sentence, got %d", ch.SentenceCount)
			}
		}
	}
	if !found {
		t.Error("oversized sentence was not emitted as its own chunk")
	}
}

func TestSplit_OrdinalsContiguous(t *testing.T) {
	c := New(WithMaxWords(6))
	doc := &domain.Document{
		ID:   "doc-1",
		Text: "A b c d e. F g h i j. K l m n o. P q r s t.",
	}

	chunks, _, err := c.Split(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, ch := range chunks {
		if ch.Ordinal != i {
			t.Fatalf("ordinals not contiguous at %d: got %d", i, ch.Ordinal)
		}
		if ch.DocumentID != "doc-1" {
			t.Errorf("chunk %d has wrong document id %q", i, ch.DocumentID)
		}
	}
}
