package domain

// ContentDomain flags sensitive subject matter detected in a chunk.
type ContentDomain string

// Restricted content domains. Chunks in these domains are routed to the
// higher-scrutiny inference path.
const (
	DomainLegal     ContentDomain = "legal"
	DomainMedical   ContentDomain = "medical"
	DomainFinancial ContentDomain = "financial"
)

// RiskProfile is the routing input computed once per chunk.
// It is derived purely from the chunk text and request metadata.
type RiskProfile struct {
	// Domains lists the restricted content domains detected in the chunk.
	Domains []ContentDomain

	// HasPII is true when the chunk appears to contain personally
	// identifying information (emails, phone numbers, IBANs).
	HasPII bool

	// Complexity scores structural difficulty in [0,1], from average
	// sentence length and long-word ratio.
	Complexity float64

	// DetectedLang is the language the chunk text appears to be in.
	DetectedLang Language
}

// Restricted returns true if any restricted content domain was detected.
func (p RiskProfile) Restricted() bool {
	return len(p.Domains) > 0
}

// HasDomain returns true if the given content domain was detected.
func (p RiskProfile) HasDomain(d ContentDomain) bool {
	for _, got := range p.Domains {
		if got == d {
			return true
		}
	}
	return false
}
