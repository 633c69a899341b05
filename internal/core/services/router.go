package services

import (
	"strings"

	"github.com/klartext/klartext/internal/core/domain"
	"github.com/klartext/klartext/internal/logger"
	"github.com/klartext/klartext/internal/verify"
)

// DefaultComplexityThreshold routes chunks scoring above it to the remote
// path even without restricted-domain or PII flags.
const DefaultComplexityThreshold = 0.6

// Router computes a risk profile per chunk and selects the inference path
// and prompt tier. It only decides: no network or inference call happens
// here, which keeps routing deterministic and trivially testable.
type Router struct {
	complexityThreshold float64
}

// NewRouter creates a router with the given complexity threshold.
// A non-positive threshold selects the default.
func NewRouter(complexityThreshold float64) *Router {
	if complexityThreshold <= 0 {
		complexityThreshold = DefaultComplexityThreshold
	}
	return &Router{complexityThreshold: complexityThreshold}
}

// Classify computes the risk profile for a chunk.
func (r *Router) Classify(chunk domain.Chunk, declaredLang domain.Language) domain.RiskProfile {
	text := strings.ToLower(chunk.Text)

	profile := domain.RiskProfile{
		HasPII:     hasPII(chunk.Text),
		Complexity: complexityScore(chunk),
	}

	for _, cd := range []domain.ContentDomain{domain.DomainLegal, domain.DomainMedical, domain.DomainFinancial} {
		if matchesAnyKeyword(text, domainKeywords[cd]) {
			profile.Domains = append(profile.Domains, cd)
		}
	}

	if detected, ok := verify.DetectLanguage(chunk.Text); ok {
		profile.DetectedLang = detected
	} else {
		profile.DetectedLang = declaredLang
	}

	return profile
}

// Route selects the inference path and prompt tier for a chunk given its
// risk profile. The policy is deterministic:
//
//   - PII or restricted domain: remote path, strict tier
//   - complexity above threshold: remote path, standard tier
//   - otherwise: local path, standard tier
func (r *Router) Route(profile domain.RiskProfile) domain.Route {
	switch {
	case profile.HasPII || profile.Restricted():
		return domain.Route{Path: domain.PathRemote, Tier: domain.TierStrict}
	case profile.Complexity > r.complexityThreshold:
		return domain.Route{Path: domain.PathRemote, Tier: domain.TierStandard}
	default:
		return domain.Route{Path: domain.PathLocal, Tier: domain.TierStandard}
	}
}

// RouteChunk classifies and routes in one step, logging the decision.
func (r *Router) RouteChunk(chunk domain.Chunk, declaredLang domain.Language) (domain.RiskProfile, domain.Route) {
	profile := r.Classify(chunk, declaredLang)
	route := r.Route(profile)
	logger.Debug("Routing chunk=%s ordinal=%d path=%s tier=%s pii=%t domains=%v complexity=%.2f",
		chunk.ID, chunk.Ordinal, route.Path, route.Tier, profile.HasPII, profile.Domains, profile.Complexity)
	return profile, route
}

// domainKeywords flag restricted subject matter. The lists cover the common
// German and English vocabulary of official letters; they are heuristics,
// not classifiers, and err on the side of flagging.
var domainKeywords = map[domain.ContentDomain][]string{
	domain.DomainLegal: {
		// German
		"gesetz", "paragraph", "klage", "gericht", "anwalt", "frist",
		"widerspruch", "bescheid", "verordnung", "vertrag", "kündigung",
		"vollmacht", "haftung",
		// English
		"law", "lawsuit", "court", "lawyer", "attorney", "legal",
		"contract", "liability", "regulation", "statute",
	},
	domain.DomainMedical: {
		// German
		"diagnose", "arzt", "ärztin", "medikament", "dosierung",
		"krankenkasse", "behandlung", "impfung", "rezept", "symptom",
		// English
		"diagnosis", "doctor", "medication", "dosage", "treatment",
		"vaccine", "prescription", "symptom", "therapy",
	},
	domain.DomainFinancial: {
		// German
		"kredit", "zinsen", "darlehen", "steuer", "mahnung", "schulden",
		"insolvenz", "rate", "überweisung", "konto",
		// English
		"credit", "interest", "loan", "tax", "debt", "mortgage",
		"insolvency", "installment", "account", "invoice",
	},
}

func matchesAnyKeyword(lowerText string, keywords []string) bool {
	for _, kw := range keywords {
		if containsWord(lowerText, kw) {
			return true
		}
	}
	return false
}

// containsWord matches kw at word start, so "frist" also hits
// "fristgerecht" but "rate" does not hit "heirate".
func containsWord(lowerText, kw string) bool {
	idx := 0
	for {
		i := strings.Index(lowerText[idx:], kw)
		if i < 0 {
			return false
		}
		i += idx
		if i == 0 || !isLetter(lowerText[i-1]) {
			return true
		}
		idx = i + 1
	}
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || b >= 0x80
}

// complexityScore estimates structural difficulty in [0,1] from average
// sentence length and the share of long words.
func complexityScore(chunk domain.Chunk) float64 {
	words := strings.Fields(chunk.Text)
	if len(words) == 0 {
		return 0
	}

	sentences := chunk.SentenceCount
	if sentences <= 0 {
		sentences = 1
	}
	avgLen := float64(len(words)) / float64(sentences)

	long := 0
	for _, w := range words {
		if len([]rune(strings.Trim(w, ".,:;!?()\"'"))) >= 12 {
			long++
		}
	}
	longRatio := float64(long) / float64(len(words))

	// Average sentence length saturates at 30 words.
	lenScore := avgLen / 30.0
	if lenScore > 1 {
		lenScore = 1
	}

	score := 0.6*lenScore + 0.4*minFloat(longRatio*3, 1)
	if score > 1 {
		score = 1
	}
	return score
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
