package postprocess

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/fsnotify/fsnotify"
	"github.com/pelletier/go-toml/v2"

	"github.com/klartext/klartext/internal/logger"
)

// Glossary maps technical terms to short plain-language explanations.
// Expansion inserts the explanation in parentheses after the first
// occurrence of a term, the way easy-language guidelines recommend.
//
// A glossary can be backed by a TOML file and reloaded on change, so
// editors can extend it without restarting the service. Reloads replace
// the term map and ordering wholesale under the lock, never mutating
// them in place, so readers work on an immutable snapshot.
type Glossary struct {
	mu    sync.RWMutex
	path  string
	terms map[string]string
	// ordered keeps terms longest-first so "Aufenthaltstitel" matches
	// before "Titel".
	ordered []string
}

// defaultTerms ships a small built-in glossary for common bureaucratic
// vocabulary. File-based terms override these.
var defaultTerms = map[string]string{
	// German
	"Antragsteller": "die Person, die etwas beantragt",
	"fristgerecht":  "rechtzeitig, vor dem letzten Tag",
	"Bescheid":      "ein Brief vom Amt mit einer Entscheidung",
	"Widerspruch":   "sagen, dass man eine Entscheidung nicht akzeptiert",
	"Vollmacht":     "eine Erlaubnis, für eine andere Person zu handeln",
	// English
	"applicant":   "the person who asks for something",
	"deadline":    "the last day to do something",
	"appeal":      "asking to change a decision",
	"eligibility": "whether the rules allow you to get something",
}

// NewGlossary creates a glossary from the built-in defaults.
func NewGlossary() *Glossary {
	terms := make(map[string]string, len(defaultTerms))
	for term, explanation := range defaultTerms {
		terms[term] = explanation
	}
	return &Glossary{terms: terms, ordered: orderedTerms(terms)}
}

// LoadGlossary creates a glossary from a TOML file of term = "explanation"
// pairs merged over the built-in defaults. A missing file is not an error:
// the defaults are used and the path is remembered for Watch.
func LoadGlossary(path string) (*Glossary, error) {
	g := NewGlossary()
	g.path = path

	if err := g.loadFile(); err != nil {
		if os.IsNotExist(err) {
			return g, nil
		}
		return nil, fmt.Errorf("load glossary: %w", err)
	}
	return g, nil
}

// loadFile merges the TOML file contents over the current terms. The
// merged map and its ordering are built fresh and swapped in under the
// lock; the previous snapshot stays valid for in-flight Expand calls.
func (g *Glossary) loadFile() error {
	if g.path == "" {
		return nil
	}
	data, err := os.ReadFile(g.path)
	if err != nil {
		return err
	}

	fileTerms := make(map[string]string)
	if err := toml.Unmarshal(data, &fileTerms); err != nil {
		return fmt.Errorf("parse %s: %w", g.path, err)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	merged := make(map[string]string, len(g.terms)+len(fileTerms))
	for term, explanation := range g.terms {
		merged[term] = explanation
	}
	for term, explanation := range fileTerms {
		merged[term] = explanation
	}
	g.terms = merged
	g.ordered = orderedTerms(merged)
	return nil
}

// Watch reloads the glossary file whenever it changes on disk.
// Blocks until the context is cancelled; run it in its own goroutine.
func (g *Glossary) Watch(ctx context.Context) error {
	if g.path == "" {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(g.path); err != nil {
		return fmt.Errorf("watch %s: %w", g.path, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if err := g.loadFile(); err != nil {
				logger.Warn("Glossary reload failed: %v", err)
				continue
			}
			logger.Info("Glossary reloaded from %s (%d terms)", g.path, g.Len())
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Glossary watcher error: %v", err)
		}
	}
}

// Len returns the number of known terms.
func (g *Glossary) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.terms)
}

// Lookup returns the explanation for a term, matched case-insensitively.
func (g *Glossary) Lookup(term string) (string, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	for t, e := range g.terms {
		if strings.EqualFold(t, term) {
			return e, true
		}
	}
	return "", false
}

// Expand inserts "(explanation)" after the first occurrence of each known
// term. Terms already followed by a parenthesis are left alone, so a model
// that explained the word itself is not double-annotated.
func (g *Glossary) Expand(text string) string {
	g.mu.RLock()
	ordered := g.ordered
	terms := g.terms
	g.mu.RUnlock()

	for _, term := range ordered {
		idx := indexWord(text, term)
		if idx < 0 {
			continue
		}
		end := idx + len(term)
		rest := strings.TrimLeft(text[end:], " ")
		if strings.HasPrefix(rest, "(") {
			continue
		}
		text = text[:end] + " (" + terms[term] + ")" + text[end:]
	}
	return text
}

// orderedTerms builds the longest-first term ordering for a term map.
// Always returns a fresh slice so published orderings are never mutated.
func orderedTerms(terms map[string]string) []string {
	ordered := make([]string, 0, len(terms))
	for term := range terms {
		ordered = append(ordered, term)
	}
	sort.Slice(ordered, func(i, j int) bool {
		if len(ordered[i]) != len(ordered[j]) {
			return len(ordered[i]) > len(ordered[j])
		}
		return ordered[i] < ordered[j]
	})
	return ordered
}

// indexWord finds term as a whole word, case-insensitively.
func indexWord(text, term string) int {
	lowerText := strings.ToLower(text)
	lowerTerm := strings.ToLower(term)

	from := 0
	for {
		idx := strings.Index(lowerText[from:], lowerTerm)
		if idx < 0 {
			return -1
		}
		idx += from

		beforeOK := idx == 0 || !isWordRune(rune(lowerText[idx-1]))
		afterIdx := idx + len(lowerTerm)
		afterOK := afterIdx >= len(lowerText) || !isWordRune(rune(lowerText[afterIdx]))
		if beforeOK && afterOK {
			return idx
		}
		from = idx + 1
	}
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
