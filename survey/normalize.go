package survey

import (
	"fmt"
	"regexp"
	"strings"
)

// Question-type vocabulary. Extraction responses arrive in many notations
// ("5-point scale x 3", "5점 척도", "Top 3", "S") and downstream consumers
// need the canonical forms ("5pt x 3", "5pt", "Top3", "SA").

var (
	gridPtRe      = regexp.MustCompile(`(?i)^(\d+)\s*pt\s*x\s*(\d+)$`)
	simplePtRe    = regexp.MustCompile(`(?i)^(\d+)\s*pt$`)
	topRankRe     = regexp.MustCompile(`(?i)^(?:top|rank)\s*(\d+)$`)
	koreanRankRe  = regexp.MustCompile(`^(\d+)\s*순위$`)
	pointGridRe   = regexp.MustCompile(`(?i)^(\d+)\s*-?\s*point\s*(?:scale)?\s*x\s*(\d+)`)
	pointScaleRe  = regexp.MustCompile(`(?i)^(\d+)\s*-?\s*point(?:\s*scale)?$`)
	koreanGridRe  = regexp.MustCompile(`(?i)^(\d+)\s*점\s*척도?\s*x\s*(\d+)`)
	koreanScaleRe = regexp.MustCompile(`^(\d+)\s*점\s*척도?$`)
)

var standardTypes = map[string]bool{
	"SA": true, "MA": true, "OE": true, "NUMERIC": true,
	"SCALE": true, "RANK": true, "GRID": true, "MATRIX": true,
}

// NormalizeType canonicalises a raw question-type string. Detailed scale and
// ranking notations are preserved with their counts ("5pt x 3", "Top3")
// because downstream reporting needs them. Unknown notations are returned
// verbatim; empty input returns "".
func NormalizeType(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	// Detailed formats first, so "5pt x 3" never collapses to "SCALE".
	if m := gridPtRe.FindStringSubmatch(raw); m != nil {
		return fmt.Sprintf("%spt x %s", m[1], m[2])
	}
	if m := simplePtRe.FindStringSubmatch(raw); m != nil {
		return m[1] + "pt"
	}
	if m := topRankRe.FindStringSubmatch(raw); m != nil {
		return "Top" + m[1]
	}
	if m := koreanRankRe.FindStringSubmatch(raw); m != nil {
		return "Top" + m[1]
	}

	upper := strings.ToUpper(raw)
	if standardTypes[upper] {
		return upper
	}
	if upper == "S" {
		return "SA"
	}
	if upper == "M" {
		return "MA"
	}

	// Variant notations reduce to the detailed forms.
	if m := pointGridRe.FindStringSubmatch(raw); m != nil {
		return fmt.Sprintf("%spt x %s", m[1], m[2])
	}
	if m := pointScaleRe.FindStringSubmatch(raw); m != nil {
		return m[1] + "pt"
	}
	if m := koreanGridRe.FindStringSubmatch(raw); m != nil {
		return fmt.Sprintf("%spt x %s", m[1], m[2])
	}
	if m := koreanScaleRe.FindStringSubmatch(raw); m != nil {
		return m[1] + "pt"
	}

	lower := strings.ToLower(raw)
	switch {
	case strings.Contains(lower, "단수"), strings.Contains(lower, "single"), strings.Contains(lower, "select one"):
		return "SA"
	case strings.Contains(lower, "복수"), strings.Contains(lower, "multiple"), strings.Contains(lower, "select all"):
		return "MA"
	case strings.Contains(lower, "주관"),
		strings.Contains(lower, "open") && !strings.Contains(lower, "open/sa"):
		return "OE"
	case lower == "open/sa":
		return "OE"
	case strings.Contains(lower, "numeric"), strings.Contains(lower, "숫자"):
		return "NUMERIC"
	case strings.Contains(lower, "rating"), strings.Contains(lower, "likert"), strings.Contains(lower, "척도"):
		return "SCALE"
	case strings.Contains(lower, "순위"):
		return "RANK"
	case strings.Contains(lower, "grid"):
		return "GRID"
	case strings.Contains(lower, "matrix"):
		return "MATRIX"
	}

	return raw
}
