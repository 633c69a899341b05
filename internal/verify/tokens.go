package verify

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Number and date extraction for the fidelity checks. Extraction is
// heuristic but deterministic: the same text always yields the same token
// sets, and semantically equivalent renderings ("3. März 2024",
// "03.03.2024", "2024-03-03") canonicalise to the same token.

// monthNames covers German and English month names. Spellings shared by
// both languages (april, august, september, november) appear once.
var monthNames = map[string]int{
	"januar": 1, "februar": 2, "märz": 3, "april": 4, "mai": 5,
	"juni": 6, "juli": 7, "august": 8, "september": 9, "oktober": 10,
	"november": 11, "dezember": 12,
	"january": 1, "february": 2, "march": 3, "may": 5, "june": 6,
	"july": 7, "october": 10, "december": 12,
}

var (
	// "3. März 2024" / "3. März"
	reDateDENamed = regexp.MustCompile(`(?i)\b(\d{1,2})\.\s*(januar|februar|märz|april|mai|juni|juli|august|september|oktober|november|dezember)(?:\s+(\d{4}))?`)

	// "March 3rd, 2024" / "March 3"
	reDateENNamed = regexp.MustCompile(`(?i)\b(january|february|march|april|may|june|july|august|september|october|november|december)\s+(\d{1,2})(?:st|nd|rd|th)?(?:,?\s*(\d{4}))?`)

	// "03.03.2024" / "3.3.24"
	reDateNumericDE = regexp.MustCompile(`\b(\d{1,2})\.(\d{1,2})\.(\d{2,4})\b`)

	// "2024-03-03"
	reDateISO = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`)

	// Digit groups with optional thousands separators and decimal part.
	reNumber = regexp.MustCompile(`\d+(?:[.,]\d+)*`)
)

// dateToken is the canonical "year-month-day" form; year 0 means the year
// was not stated.
func dateToken(year, month, day int) string {
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day)
}

// ExtractDates returns the canonical date tokens found in text.
// The returned spans mark the matched regions so number extraction can
// skip digits that belong to dates.
func ExtractDates(text string) (tokens []string, spans [][2]int) {
	appendMatch := func(loc []int, year, month, day int) {
		if month < 1 || month > 12 || day < 1 || day > 31 {
			return
		}
		tokens = append(tokens, dateToken(year, month, day))
		spans = append(spans, [2]int{loc[0], loc[1]})
	}

	for _, m := range reDateISO.FindAllStringSubmatchIndex(text, -1) {
		year := atoi(text[m[2]:m[3]])
		month := atoi(text[m[4]:m[5]])
		day := atoi(text[m[6]:m[7]])
		appendMatch(m, year, month, day)
	}

	for _, m := range reDateNumericDE.FindAllStringSubmatchIndex(text, -1) {
		if covered(spans, m[0]) {
			continue
		}
		day := atoi(text[m[2]:m[3]])
		month := atoi(text[m[4]:m[5]])
		year := normaliseYear(atoi(text[m[6]:m[7]]))
		appendMatch(m, year, month, day)
	}

	for _, m := range reDateDENamed.FindAllStringSubmatchIndex(text, -1) {
		if covered(spans, m[0]) {
			continue
		}
		day := atoi(text[m[2]:m[3]])
		month := monthNumber(text[m[4]:m[5]])
		year := 0
		if m[6] >= 0 {
			year = atoi(text[m[6]:m[7]])
		}
		appendMatch(m, year, month, day)
	}

	for _, m := range reDateENNamed.FindAllStringSubmatchIndex(text, -1) {
		if covered(spans, m[0]) {
			continue
		}
		month := monthNumber(text[m[2]:m[3]])
		day := atoi(text[m[4]:m[5]])
		year := 0
		if m[6] >= 0 {
			year = atoi(text[m[6]:m[7]])
		}
		appendMatch(m, year, month, day)
	}

	return tokens, spans
}

// ExtractNumbers returns the canonical number tokens found in text,
// excluding digits that are part of extracted dates.
func ExtractNumbers(text string) []string {
	_, dateSpans := ExtractDates(text)

	var out []string
	for _, m := range reNumber.FindAllStringIndex(text, -1) {
		if covered(dateSpans, m[0]) {
			continue
		}
		out = append(out, canonicalNumber(text[m[0]:m[1]]))
	}
	return out
}

// canonicalNumber strips grouping separators and normalises the decimal
// separator to a period. Heuristic: the last separator starts the decimal
// part unless exactly three digits follow it, in which case it is treated
// as a thousands separator ("1.000" and "1,000" both mean one thousand).
func canonicalNumber(s string) string {
	intPart, fracPart := s, ""
	if lastSep := strings.LastIndexAny(s, ".,"); lastSep >= 0 {
		if after := s[lastSep+1:]; len(after) != 3 {
			intPart, fracPart = s[:lastSep], after
		}
	}

	canon := strings.TrimLeft(stripSeparators(intPart), "0")
	if canon == "" {
		canon = "0"
	}
	if fracPart = strings.TrimRight(fracPart, "0"); fracPart != "" {
		canon += "." + fracPart
	}
	return canon
}

func stripSeparators(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func normaliseYear(y int) int {
	if y < 100 {
		return 2000 + y
	}
	return y
}

func monthNumber(name string) int {
	return monthNames[strings.ToLower(name)]
}

func covered(spans [][2]int, pos int) bool {
	for _, s := range spans {
		if pos >= s[0] && pos < s[1] {
			return true
		}
	}
	return false
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
