package domain

// Verification check names, in execution order.
const (
	CheckNumbers    = "numbers"
	CheckDates      = "dates"
	CheckNegation   = "negation"
	CheckLanguage   = "language"
	CheckPolicy     = "policy"
	CheckSimilarity = "similarity"
)

// CheckResult is the outcome of a single fidelity check.
type CheckResult struct {
	// Name identifies the check.
	Name string

	// Passed is true if the check found no fidelity problem.
	Passed bool

	// Mandatory is true if a failure of this check fails the whole report.
	// Non-mandatory failures degrade to warnings.
	Mandatory bool

	// Note is a short diagnostic, empty on a clean pass.
	Note string
}

// VerificationReport is the outcome of all fidelity checks for one chunk.
// It drives the fallback controller's retry decisions.
type VerificationReport struct {
	// ChunkID references the verified chunk.
	ChunkID string

	// Checks holds per-check results in execution order.
	Checks []CheckResult

	// Warnings carries soft findings that do not fail the report.
	Warnings []string
}

// Passed returns true if every mandatory check passed.
func (r VerificationReport) Passed() bool {
	for _, c := range r.Checks {
		if c.Mandatory && !c.Passed {
			return false
		}
	}
	return true
}

// FailedChecks returns the names of mandatory checks that failed.
func (r VerificationReport) FailedChecks() []string {
	var failed []string
	for _, c := range r.Checks {
		if c.Mandatory && !c.Passed {
			failed = append(failed, c.Name)
		}
	}
	return failed
}

// Check returns the result for the named check.
func (r VerificationReport) Check(name string) (CheckResult, bool) {
	for _, c := range r.Checks {
		if c.Name == name {
			return c, true
		}
	}
	return CheckResult{}, false
}
