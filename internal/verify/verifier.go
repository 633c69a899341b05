// Package verify runs fidelity checks comparing a source chunk to its
// simplified output: number and date preservation, negation preservation,
// target-language conformance, a content policy filter and an optional
// semantic similarity gate.
//
// The verifier is pure given its inputs and the embedding collaborator's
// output. It never retries; retry policy lives in the fallback controller.
package verify

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/klartext/klartext/internal/core/domain"
	"github.com/klartext/klartext/internal/core/ports/driven"
	"github.com/klartext/klartext/internal/logger"
)

// Default similarity thresholds. Both are tunable configuration, not
// hard-coded policy; these are only the fallback values.
const (
	DefaultSimilarityWarnFloor = 0.55
	DefaultSimilarityHardFloor = 0.35
)

// defaultDenylist seeds the policy filter. The full list comes from
// configuration.
var defaultDenylist = []string{}

// Verifier runs the ordered check set.
type Verifier struct {
	embedder driven.EmbeddingService

	similarityEnabled bool
	warnFloor         float64
	hardFloor         float64
	denylist          []string
}

// Option configures the verifier.
type Option func(*Verifier)

// WithEmbedder enables the semantic similarity gate using the given
// embedding service.
func WithEmbedder(svc driven.EmbeddingService) Option {
	return func(v *Verifier) {
		v.embedder = svc
		v.similarityEnabled = svc != nil
	}
}

// WithSimilarityFloors sets the warning and hard-failure thresholds for
// the similarity gate.
func WithSimilarityFloors(warn, hard float64) Option {
	return func(v *Verifier) {
		if warn > 0 {
			v.warnFloor = warn
		}
		if hard > 0 {
			v.hardFloor = hard
		}
	}
}

// WithDenylist sets the disallowed-content terms for the policy filter.
func WithDenylist(terms []string) Option {
	return func(v *Verifier) {
		v.denylist = terms
	}
}

// New creates a verifier with the given options.
func New(opts ...Option) *Verifier {
	v := &Verifier{
		warnFloor: DefaultSimilarityWarnFloor,
		hardFloor: DefaultSimilarityHardFloor,
		denylist:  defaultDenylist,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Verify compares the source chunk against the processed output and
// produces the verification report that drives fallback decisions.
func (v *Verifier) Verify(ctx context.Context, chunk domain.Chunk, output string, targetLang domain.Language) domain.VerificationReport {
	report := domain.VerificationReport{ChunkID: chunk.ID}

	report.Checks = append(report.Checks,
		v.checkNumbers(chunk.Text, output),
		v.checkDates(chunk.Text, output),
		v.checkNegation(chunk.Text, output),
		v.checkLanguage(output, targetLang),
		v.checkPolicy(output),
	)

	if v.similarityEnabled && v.embedder != nil {
		check, warning := v.checkSimilarity(ctx, chunk.Text, output)
		report.Checks = append(report.Checks, check)
		if warning != "" {
			report.Warnings = append(report.Warnings, warning)
		}
	}

	logger.Debug("Verification chunk=%s passed=%t failed=%v",
		chunk.ID, report.Passed(), report.FailedChecks())

	return report
}

// checkNumbers verifies every source number appears in the output and no
// number was invented.
func (v *Verifier) checkNumbers(source, output string) domain.CheckResult {
	srcNums := ExtractNumbers(source)
	outNums := ExtractNumbers(output)

	missing := difference(srcNums, outNums)
	invented := difference(outNums, srcNums)

	check := domain.CheckResult{Name: domain.CheckNumbers, Mandatory: true, Passed: true}
	switch {
	case len(missing) > 0 && len(invented) > 0:
		check.Passed = false
		check.Note = fmt.Sprintf("missing %v, invented %v", missing, invented)
	case len(missing) > 0:
		check.Passed = false
		check.Note = fmt.Sprintf("missing %v", missing)
	case len(invented) > 0:
		check.Passed = false
		check.Note = fmt.Sprintf("invented %v", invented)
	}
	return check
}

// checkDates verifies date preservation with the same containment rule as
// numbers. Dates without a stated year match the same date with any year.
func (v *Verifier) checkDates(source, output string) domain.CheckResult {
	srcDates, _ := ExtractDates(source)
	outDates, _ := ExtractDates(output)

	check := domain.CheckResult{Name: domain.CheckDates, Mandatory: true, Passed: true}

	missing := datesNotIn(srcDates, outDates)
	invented := datesNotIn(outDates, srcDates)
	switch {
	case len(missing) > 0:
		check.Passed = false
		check.Note = fmt.Sprintf("missing %v", missing)
	case len(invented) > 0:
		check.Passed = false
		check.Note = fmt.Sprintf("invented %v", invented)
	}
	return check
}

// checkNegation verifies negation presence matches between source and
// output at chunk granularity.
func (v *Verifier) checkNegation(source, output string) domain.CheckResult {
	srcCount := CountNegations(source)
	outCount := CountNegations(output)

	check := domain.CheckResult{Name: domain.CheckNegation, Mandatory: true, Passed: true}
	if (srcCount == 0) != (outCount == 0) {
		check.Passed = false
		check.Note = fmt.Sprintf("source has %d negation markers, output has %d", srcCount, outCount)
	}
	return check
}

// checkLanguage verifies the output is written in the target language.
// Outputs too short to carry a stopword signal pass with a note.
func (v *Verifier) checkLanguage(output string, targetLang domain.Language) domain.CheckResult {
	check := domain.CheckResult{Name: domain.CheckLanguage, Mandatory: true, Passed: true}

	detected, ok := DetectLanguage(output)
	if !ok {
		check.Note = "no language signal, skipped"
		return check
	}
	if detected != targetLang {
		check.Passed = false
		check.Note = fmt.Sprintf("detected %s, want %s", detected, targetLang)
	}
	return check
}

// checkPolicy rejects output containing disallowed terms.
func (v *Verifier) checkPolicy(output string) domain.CheckResult {
	check := domain.CheckResult{Name: domain.CheckPolicy, Mandatory: true, Passed: true}

	lower := strings.ToLower(output)
	for _, term := range v.denylist {
		if term == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(term)) {
			check.Passed = false
			check.Note = "disallowed content"
			return check
		}
	}
	return check
}

// checkSimilarity gates on cosine similarity between source and output
// embeddings. Below the warn floor it degrades to a soft warning; only
// below the hard floor does it fail the report. Embedding errors skip the
// check: a broken collaborator must not fail an otherwise verified chunk.
func (v *Verifier) checkSimilarity(ctx context.Context, source, output string) (domain.CheckResult, string) {
	check := domain.CheckResult{Name: domain.CheckSimilarity, Mandatory: false, Passed: true}

	srcVec, err := v.embedder.Embed(ctx, source)
	if err != nil {
		logger.Warn("Similarity check skipped: %v", err)
		check.Note = "embedding unavailable, skipped"
		return check, ""
	}
	outVec, err := v.embedder.Embed(ctx, output)
	if err != nil {
		logger.Warn("Similarity check skipped: %v", err)
		check.Note = "embedding unavailable, skipped"
		return check, ""
	}

	score := cosine(srcVec, outVec)
	check.Note = fmt.Sprintf("score %.3f", score)

	switch {
	case score < v.hardFloor:
		check.Mandatory = true
		check.Passed = false
		return check, ""
	case score < v.warnFloor:
		check.Passed = false
		return check, fmt.Sprintf("low_semantic_similarity_%.2f", score)
	}
	return check, ""
}

// cosine computes cosine similarity between two vectors.
// Mismatched or empty vectors score zero.
func cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// difference returns the multiset elements of a not present in b.
func difference(a, b []string) []string {
	counts := make(map[string]int, len(b))
	for _, x := range b {
		counts[x]++
	}
	var out []string
	for _, x := range a {
		if counts[x] > 0 {
			counts[x]--
			continue
		}
		out = append(out, x)
	}
	sort.Strings(out)
	return out
}

// datesNotIn returns dates from a with no equivalent in b. A date with an
// unstated year (year 0000) matches the same month and day in any year.
func datesNotIn(a, b []string) []string {
	var out []string
	for _, d := range a {
		if !dateIn(d, b) {
			out = append(out, d)
		}
	}
	return out
}

func dateIn(d string, set []string) bool {
	for _, other := range set {
		if d == other || sameDayMonth(d, other) {
			return true
		}
	}
	return false
}

// sameDayMonth matches when the month-day parts agree and at least one
// side has no stated year.
func sameDayMonth(a, b string) bool {
	if len(a) != 10 || len(b) != 10 {
		return false
	}
	if a[:4] != "0000" && b[:4] != "0000" {
		return false
	}
	return a[4:] == b[4:]
}
