package services

import "regexp"

// PII detection patterns. A match routes the chunk to the remote path with
// the strict tier; the text itself is never logged.
var (
	reEmail = regexp.MustCompile(`\b[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}\b`)

	// Phone numbers: international or national prefix followed by at
	// least 7 digits allowing spaces, slashes and dashes as separators.
	rePhone = regexp.MustCompile(`(\+\d{1,3}|\b0)[\d\s/-]{6,}\d`)

	// IBANs: two letters, two check digits, 11 to 30 alphanumerics.
	reIBAN = regexp.MustCompile(`\b[A-Z]{2}\d{2}[A-Z0-9]{11,30}\b`)
)

// hasPII reports whether text appears to contain personally identifying
// information.
func hasPII(text string) bool {
	return reEmail.MatchString(text) || reIBAN.MatchString(text) || rePhone.MatchString(text)
}
