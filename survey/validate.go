package survey

import (
	"regexp"
	"strings"
)

// Questionnaires freely intermix real question markers (Q1, SQ1a, BVT11)
// with coding and administrative tokens that share the same surface syntax
// (RegionCode2, STEP1, PAGE3). The prefix filter below separates the two.

// goodPrefixes are alphabetic prefixes always accepted as question markers.
var goodPrefixes = map[string]bool{
	"Q": true, "SQ": true, "S": true,
	"A": true, "B": true, "C": true, "D": true,
	"F": true, "P": true, "T": true,
	"QA": true, "QB": true, "QC": true, "QD": true,
	"BV": true, "BVT": true,
	"DM": true, "DEM": true, "PR": true,
}

// badPrefixes are administrative/process prefixes never accepted.
var badPrefixes = map[string]bool{
	"STEP": true, "PAGE": true, "ITEM": true, "NOTE": true,
	"PART": true, "INTRO": true, "DISPLAY": true, "QUOTA": true,
	"SECTION": true, "TABLE": true,
}

var alphaPrefixRe = regexp.MustCompile(`^[A-Za-z]+`)
var lowerUpperRe = regexp.MustCompile(`[a-z][A-Z]`)

// IsQuestionNumber reports whether qn looks like a real question identifier
// rather than a variable name or an administrative marker.
//
// Three tiers: known-good prefixes are always accepted, known-bad prefixes
// are always rejected, and anything else is rejected when the prefix is
// longer than 5 characters or contains a lower-to-upper case transition
// (RegionCode, SegCode and friends).
func IsQuestionNumber(qn string) bool {
	alpha := alphaPrefixRe.FindString(qn)
	if alpha == "" {
		return false
	}

	if goodPrefixes[strings.ToUpper(alpha)] {
		return true
	}
	if badPrefixes[strings.ToUpper(alpha)] {
		return false
	}

	if len(alpha) > 5 {
		return false
	}
	if lowerUpperRe.MatchString(alpha) {
		return false
	}
	return true
}
