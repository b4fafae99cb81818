package extract

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	// anchored total: "Bill Total", optional filler, optional currency
	// marker, then a separator-grouped numeral
	reBillTotal = regexp.MustCompile(`(?i)bill\s*total[^0-9₹$]*(?:₹|\$|rs\.?)?\s?(\d{1,3}(?:,\d{3})*(?:\.\d{2})?)`)

	// generic candidate: optional currency prefix and a numeral group;
	// numerals without a decimal component are valid (e.g. "500")
	reAmountCandidate = regexp.MustCompile(`(?i)(?:rs\.?|₹|\$)?\s?\d{1,3}(?:,\d{3})*(?:\.\d{2})?`)

	reCurrencyPrefix = regexp.MustCompile(`(?i)^(?:rs\.?|₹|\$)\s?`)

	reValidAmount = regexp.MustCompile(`^\d+(\.\d{2})?$`)
)

// Amount finds the transaction total in recognized text. The anchored
// "Bill Total" search wins when present; otherwise the numerically largest
// candidate is taken, since the total is typically the largest number on a
// receipt dominated by per-item line amounts. The returned string contains
// only digits and at most one decimal point.
func Amount(text string) (string, bool) {
	if m := reBillTotal.FindStringSubmatch(text); m != nil {
		return strings.ReplaceAll(m[1], ",", ""), true
	}

	candidates := reAmountCandidate.FindAllString(text, -1)
	if len(candidates) == 0 {
		return "", false
	}

	best := ""
	bestVal := 0.0
	found := false
	for _, cand := range candidates {
		cleaned := reCurrencyPrefix.ReplaceAllString(strings.TrimSpace(cand), "")
		cleaned = strings.ReplaceAll(cleaned, ",", "")
		if !reValidAmount.MatchString(cleaned) {
			continue // non-numeric artifact
		}
		val, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			continue
		}
		if !found || val > bestVal {
			best, bestVal, found = cleaned, val, true
		}
	}
	return best, found
}
