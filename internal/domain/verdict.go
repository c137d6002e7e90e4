package domain

import (
	"strconv"
	"strings"
)

// Verdict is the pass/fail outcome of a meat analysis
type Verdict string

const (
	VerdictPass Verdict = "Pass"
	VerdictFail Verdict = "Fail"
)

// TPCLimit is the highest total plate count (cfu/g) a meat sample may carry and still pass
const TPCLimit = 100000

// Summary is the wording printed on the report for the verdict
func (v Verdict) Summary() string {
	switch v {
	case VerdictPass:
		return "Satisfactory"
	case VerdictFail:
		return "Unsatisfactory"
	default:
		return ""
	}
}

// MeatVerdict judges a meat sample by its total plate count and pathogen
// findings. A missing TPC with no positive pathogen yields an empty verdict.
func MeatVerdict(tpc *float64, pathogens ...*string) Verdict {
	for _, p := range pathogens {
		if p != nil && IsPositive(*p) {
			return VerdictFail
		}
	}
	if tpc == nil {
		return ""
	}
	if *tpc <= TPCLimit {
		return VerdictPass
	}
	return VerdictFail
}

// IsPositive reports whether a pathogen reading indicates presence
func IsPositive(reading string) bool {
	switch strings.ToLower(strings.TrimSpace(reading)) {
	case "positive", "detected", "present":
		return true
	}
	return false
}

// ParseCount reads a colony count as entered by analysts. "Nil" and
// "not detected" read as zero; thousands separators are ignored.
func ParseCount(s string) (float64, bool) {
	v := strings.ToLower(strings.TrimSpace(s))
	switch v {
	case "":
		return 0, false
	case "nil", "nd", "not detected", "negative":
		return 0, true
	}
	v = strings.ReplaceAll(v, ",", "")
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
