package extract

import (
	"regexp"
	"strings"
)

// Ordered date patterns; the first pattern matching anywhere in the text
// wins, later candidates are never consulted. The raw match is returned
// unchanged, not normalized to one calendar representation.
var datePatterns = []*regexp.Regexp{
	// delivery-style anchor, optional time of day
	regexp.MustCompile(`(?i)(?:order\s+)?delivered on\s+([A-Za-z]+\s+\d{1,2}(?:,\s*\d{1,2}:\d{2}\s*[APMapm]+)?)`),
	// DD/DD/DDDD or DD-DD-DDDD; day-month-year vs month-day-year is not
	// distinguished, the digit string is returned as-is
	regexp.MustCompile(`\b(\d{2}[/-]\d{2}[/-]\d{4})\b`),
	// DD Month YYYY
	regexp.MustCompile(`\b(\d{2}\s*[A-Za-z]{3,9}\s*\d{4})\b`),
	// Month DD, YYYY
	regexp.MustCompile(`\b([A-Za-z]{3,9}\s*\d{1,2},?\s*\d{4})\b`),
}

// Date finds a transaction date in recognized text.
func Date(text string) (string, bool) {
	for _, pattern := range datePatterns {
		if m := pattern.FindStringSubmatch(text); m != nil {
			return strings.TrimSpace(m[1]), true
		}
	}
	return "", false
}
