package postprocess

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/klartext/klartext/internal/core/domain"
)

func TestApply_EmptyInput(t *testing.T) {
	p := New()
	out, warnings := p.Apply("   ", domain.LevelEasy)
	if out != "" {
		t.Errorf("expected empty output, got %q", out)
	}
	if len(warnings) != 0 {
		t.Errorf("expected no warnings, got %v", warnings)
	}
}

func TestApply_SplitsLongSentences(t *testing.T) {
	p := New()
	raw := "Sie müssen die Unterlagen abgeben, und Sie müssen den Termin im Amt rechtzeitig vereinbaren und bestätigen lassen."

	out, _ := p.Apply(raw, domain.LevelVeryEasy)

	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		for _, sent := range splitIntoSentences(line) {
			words := len(strings.Fields(sent))
			if words > domain.LevelVeryEasy.Policy().MaxSentenceWords {
				t.Errorf("sentence exceeds bound (%d words): %q", words, sent)
			}
		}
	}
}

func TestApply_PreservesDigits(t *testing.T) {
	p := New()
	raw := "Sie zahlen 15 Euro bis zum 3. März 2024, sonst kommen 5 Euro Mahngebühr dazu und der Antrag verfällt."

	out, _ := p.Apply(raw, domain.LevelEasy)

	for _, token := range []string{"15", "3.", "2024", "5"} {
		if !strings.Contains(out, token) {
			t.Errorf("token %q lost during post-processing:\n%s", token, out)
		}
	}
}

func TestApply_GlossaryExpansion(t *testing.T) {
	g := NewGlossary()
	p := New(WithGlossary(g))

	out, _ := p.Apply("Der Antragsteller bekommt einen Bescheid.", domain.LevelEasy)

	if !strings.Contains(out, "Antragsteller (die Person, die etwas beantragt)") {
		t.Errorf("glossary term not expanded:\n%s", out)
	}
}

func TestApply_GlossaryDisabledForMedium(t *testing.T) {
	g := NewGlossary()
	p := New(WithGlossary(g))

	out, _ := p.Apply("Der Antragsteller bekommt einen Bescheid.", domain.LevelMedium)

	if strings.Contains(out, "(die Person") {
		t.Errorf("medium level should not expand glossary terms:\n%s", out)
	}
}

func TestApply_BulletNormalisation(t *testing.T) {
	p := New()
	raw := "Das brauchen Sie:\n* Ausweis\n• Formular\n– Foto"

	out, _ := p.Apply(raw, domain.LevelVeryEasy)

	for _, want := range []string{"- Ausweis", "- Formular", "- Foto"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected bullet %q in output:\n%s", want, out)
		}
	}
}

func TestApply_Truncation(t *testing.T) {
	p := New()
	raw := strings.Repeat("Das ist ein kurzer Satz. ", 1000)

	out, warnings := p.Apply(raw, domain.LevelEasy)

	max := domain.LevelEasy.Policy().MaxOutputChars
	if len(out) > max {
		t.Errorf("output exceeds ceiling: %d > %d", len(out), max)
	}
	found := false
	for _, w := range warnings {
		if w == "output_truncated" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected output_truncated warning, got %v", warnings)
	}
}

func TestBreakSentence_KeepsAllWords(t *testing.T) {
	sent := "Die Behörde prüft den Antrag, und sie schickt dann einen Bescheid an die angegebene Adresse."

	pieces := breakSentence(sent, 8)
	if len(pieces) < 2 {
		t.Fatalf("expected sentence to be split, got %v", pieces)
	}

	joined := domain.NormalizeText(strings.Join(pieces, " "))
	for _, word := range strings.Fields(domain.NormalizeText(sent)) {
		word = strings.Trim(word, ".,")
		if !strings.Contains(joined, word) {
			t.Errorf("word %q lost in split: %v", word, pieces)
		}
	}
}

func TestGlossary_Expand(t *testing.T) {
	g := NewGlossary()

	t.Run("first occurrence only", func(t *testing.T) {
		out := g.Expand("Der Antragsteller ruft an. Der Antragsteller wartet.")
		if strings.Count(out, "(die Person, die etwas beantragt)") != 1 {
			t.Errorf("expected exactly one expansion:\n%s", out)
		}
	})

	t.Run("existing parenthesis not doubled", func(t *testing.T) {
		out := g.Expand("Der Antragsteller (also Sie) wartet.")
		if strings.Contains(out, "(die Person") {
			t.Errorf("should not expand before existing parenthesis:\n%s", out)
		}
	})

	t.Run("whole word match", func(t *testing.T) {
		out := g.Expand("Die Antragstellerin wartet.")
		if strings.Contains(out, "(die Person") {
			t.Errorf("partial word should not match:\n%s", out)
		}
	})
}

func TestGlossary_Lookup(t *testing.T) {
	g := NewGlossary()
	if _, ok := g.Lookup("antragsteller"); !ok {
		t.Error("case-insensitive lookup failed")
	}
	if _, ok := g.Lookup("nonexistent"); ok {
		t.Error("unexpected hit for unknown term")
	}
}

func TestGlossary_ExpandDuringReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "glossary.toml")
	if err := os.WriteFile(path, []byte("Sachbearbeiter = \"die Person im Amt\"\n"), 0600); err != nil {
		t.Fatal(err)
	}

	g, err := LoadGlossary(path)
	if err != nil {
		t.Fatal(err)
	}

	done := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
					g.Expand("Der Sachbearbeiter prüft den Bescheid des Antragstellers.")
				}
			}
		}()
	}

	for i := 0; i < 50; i++ {
		content := fmt.Sprintf("Sachbearbeiter = \"die Person im Amt\"\nZusatz%d = \"ein Begriff\"\n", i)
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatal(err)
		}
		if err := g.loadFile(); err != nil {
			t.Fatal(err)
		}
	}
	close(done)
	wg.Wait()

	if _, ok := g.Lookup("Zusatz49"); !ok {
		t.Error("term from last reload missing")
	}
	out := g.Expand("Der Sachbearbeiter antwortet.")
	if !strings.Contains(out, "(die Person im Amt)") {
		t.Errorf("file term not expanded after reloads:\n%s", out)
	}
}
