package verify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/klartext/klartext/internal/core/domain"
)

func report(t *testing.T, v *Verifier, source, output string, lang domain.Language) domain.VerificationReport {
	t.Helper()
	chunk := domain.Chunk{ID: "chunk-1", Text: source}
	return v.Verify(context.Background(), chunk, output, lang)
}

func TestVerify_CleanPass(t *testing.T) {
	v := New()
	r := report(t, v,
		"Der Antragsteller muss die Unterlagen fristgerecht einreichen.",
		"Sie müssen die Papiere rechtzeitig abgeben.",
		domain.LanguageGerman)

	assert.True(t, r.Passed())
	assert.Empty(t, r.FailedChecks())
}

func TestVerify_ChangedDigitFails(t *testing.T) {
	v := New()
	r := report(t, v,
		"You must reply within 15 days.",
		"You must reply within 50 days.",
		domain.LanguageEnglish)

	require.False(t, r.Passed())
	check, ok := r.Check(domain.CheckNumbers)
	require.True(t, ok)
	assert.False(t, check.Passed)
	assert.Contains(t, check.Note, "missing")
	assert.Contains(t, check.Note, "invented")
}

func TestVerify_InventedNumberFails(t *testing.T) {
	v := New()
	r := report(t, v,
		"You must bring your passport.",
		"You must bring your passport and 2 photos.",
		domain.LanguageEnglish)

	require.False(t, r.Passed())
	check, _ := r.Check(domain.CheckNumbers)
	assert.Contains(t, check.Note, "invented")
}

func TestVerify_OmittedDateFails(t *testing.T) {
	v := New()
	r := report(t, v,
		"Pay by March 3rd, 2024.",
		"Pay the fee soon.",
		domain.LanguageEnglish)

	require.False(t, r.Passed())
	check, ok := r.Check(domain.CheckDates)
	require.True(t, ok)
	assert.False(t, check.Passed)
}

func TestVerify_EquivalentDateFormatsPass(t *testing.T) {
	v := New()

	tests := []struct {
		name   string
		source string
		output string
		lang   domain.Language
	}{
		{"german named to numeric", "Zahlen Sie bis zum 3. März 2024.", "Zahlen Sie bis 03.03.2024.", domain.LanguageGerman},
		{"english named to iso", "Pay by March 3rd, 2024.", "Pay by 2024-03-03 at the latest.", domain.LanguageEnglish},
		{"yearless matches stated year", "Kommen Sie am 3. März.", "Kommen Sie am 03.03.2024 vorbei.", domain.LanguageGerman},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := report(t, v, tt.source, tt.output, tt.lang)
			check, ok := r.Check(domain.CheckDates)
			require.True(t, ok)
			assert.True(t, check.Passed, "note: %s", check.Note)
		})
	}
}

func TestVerify_ThousandsSeparatorsEquivalent(t *testing.T) {
	v := New()
	r := report(t, v,
		"Die Gebühr beträgt 1.000,50 Euro.",
		"Die Gebühr ist 1000,50 Euro.",
		domain.LanguageGerman)

	check, ok := r.Check(domain.CheckNumbers)
	require.True(t, ok)
	assert.True(t, check.Passed, "note: %s", check.Note)
}

func TestVerify_DroppedNegationFails(t *testing.T) {
	v := New()
	r := report(t, v,
		"Sie dürfen das Formular nicht unterschreiben.",
		"Sie dürfen das Formular unterschreiben.",
		domain.LanguageGerman)

	require.False(t, r.Passed())
	check, ok := r.Check(domain.CheckNegation)
	require.True(t, ok)
	assert.False(t, check.Passed)
}

func TestVerify_WrongLanguageFails(t *testing.T) {
	v := New()
	r := report(t, v,
		"Der Antrag muss vollständig sein und alle Angaben enthalten.",
		"The application must be complete and contain all the required details.",
		domain.LanguageGerman)

	require.False(t, r.Passed())
	check, ok := r.Check(domain.CheckLanguage)
	require.True(t, ok)
	assert.False(t, check.Passed)
}

func TestVerify_DenylistFails(t *testing.T) {
	v := New(WithDenylist([]string{"verbotenes wort"}))
	r := report(t, v,
		"Der Antrag ist einfach.",
		"Der Antrag ist ein verbotenes Wort wert.",
		domain.LanguageGerman)

	require.False(t, r.Passed())
	check, ok := r.Check(domain.CheckPolicy)
	require.True(t, ok)
	assert.False(t, check.Passed)
}

// stubEmbedder returns fixed vectors per text.
type stubEmbedder struct {
	vectors map[string][]float32
	err     error
}

func (s *stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.vectors[text], nil
}
func (s *stubEmbedder) Dimensions() int              { return 3 }
func (s *stubEmbedder) ModelName() string            { return "stub" }
func (s *stubEmbedder) Ping(_ context.Context) error { return nil }
func (s *stubEmbedder) Close() error                 { return nil }

func TestVerify_SimilarityGate(t *testing.T) {
	source := "Der Hund läuft im Park."
	output := "Ein Hund ist im Park."

	t.Run("high similarity passes", func(t *testing.T) {
		emb := &stubEmbedder{vectors: map[string][]float32{
			source: {1, 0, 0},
			output: {1, 0.1, 0},
		}}
		v := New(WithEmbedder(emb))
		r := report(t, v, source, output, domain.LanguageGerman)
		check, ok := r.Check(domain.CheckSimilarity)
		require.True(t, ok)
		assert.True(t, check.Passed)
		assert.True(t, r.Passed())
	})

	t.Run("mid similarity warns but passes report", func(t *testing.T) {
		emb := &stubEmbedder{vectors: map[string][]float32{
			source: {1, 0, 0},
			output: {1, 1.6, 0}, // cosine ~0.53
		}}
		v := New(WithEmbedder(emb), WithSimilarityFloors(0.55, 0.35))
		r := report(t, v, source, output, domain.LanguageGerman)
		assert.True(t, r.Passed())
		assert.NotEmpty(t, r.Warnings)
	})

	t.Run("below hard floor fails report", func(t *testing.T) {
		emb := &stubEmbedder{vectors: map[string][]float32{
			source: {1, 0, 0},
			output: {0, 1, 0},
		}}
		v := New(WithEmbedder(emb), WithSimilarityFloors(0.55, 0.35))
		r := report(t, v, source, output, domain.LanguageGerman)
		assert.False(t, r.Passed())
	})

	t.Run("embedder failure skips check", func(t *testing.T) {
		emb := &stubEmbedder{err: errors.New("connection refused")}
		v := New(WithEmbedder(emb))
		r := report(t, v, source, output, domain.LanguageGerman)
		assert.True(t, r.Passed())
	})
}

func TestExtractNumbers(t *testing.T) {
	tests := []struct {
		text string
		want []string
	}{
		{"15 days and 3 nights", []string{"15", "3"}},
		{"1.000,50 Euro", []string{"1000.5"}},
		{"1,000.50 euros", []string{"1000.5"}},
		{"no numbers here", nil},
		{"Pay by 2024-03-03.", nil}, // date digits excluded
	}

	for _, tt := range tests {
		got := ExtractNumbers(tt.text)
		assert.Equal(t, tt.want, got, "text %q", tt.text)
	}
}

func TestDetectLanguage(t *testing.T) {
	lang, ok := DetectLanguage("Der Hund und die Katze sind im Haus.")
	require.True(t, ok)
	assert.Equal(t, domain.LanguageGerman, lang)

	lang, ok = DetectLanguage("The dog and the cat are in the house.")
	require.True(t, ok)
	assert.Equal(t, domain.LanguageEnglish, lang)

	_, ok = DetectLanguage("12345")
	assert.False(t, ok)
}
