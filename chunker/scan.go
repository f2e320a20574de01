// Package chunker splits annotated questionnaire text into pieces that fit
// a language-model context window, cutting only at section and question
// boundaries so no question is ever torn in half. It also carries the fast
// regex scan used to estimate question density per chunk.
package chunker

import (
	"regexp"
	"strings"

	"github.com/hazyhaar/surveypipe/survey"
)

// Question-number line patterns. A questionnaire mixes conventions, so three
// shapes are tried in order:
//
//	C  bracket header      [SC2. SENSITIVE INDUSTRY (MA)]
//	A  punctuation-ended   Q1. text / SQ1a) text / A1-1: text
//	B  space-bracket       Q2 [S] text / BVT11 [MA] text
var (
	patternA = regexp.MustCompile(`^(?:\*\*)?([A-Za-z]+[a-z]*\d+[a-z]?(?:-\d+)*|[A-Za-z]+\d+[A-Za-z])[.\):]\s*(.*)`)
	patternB = regexp.MustCompile(`^(?:\*\*)?([A-Za-z]+[a-z]*\d+[a-z]?(?:-\d+)*|[A-Za-z]+\d+[A-Za-z])\s+\[([^\]]+)\]\s*(.*)`)
	patternC = regexp.MustCompile(`^\[([A-Za-z]+\d+[a-z]?)\.?\s+([^\]]*)\]`)

	trailingParenRe = regexp.MustCompile(`\s*\([^)]*\)\s*$`)

	// Type notations hide inside brackets or parens anywhere in the text.
	typeRe = regexp.MustCompile(`[\[\(]\s*(.*?)\s*[\]\)]`)
)

var typeKeywordsExact = map[string]bool{
	"sa": true, "단수": true, "select one": true,
	"ma": true, "복수": true, "select all": true,
	"oe": true, "open": true, "오픈": true, "open/sa": true,
	"numeric": true,
}

var typeKeywordsPartial = []string{"scale", "pt", "척도", "top", "rank", "순위"}

// Hint is one question found by the regex scan. It carries just enough for
// density estimation and boundary detection, not full extraction.
type Hint struct {
	Number string `json:"question_number"`
	Text   string `json:"question_text"`
	Type   string `json:"question_type,omitempty"`
}

// extractType pulls a question-type notation such as "(SA)" or "[5pt x 3]"
// out of text, scanning bracket groups from the end since types usually
// trail the question. Returns the text before the matched group and the
// type, or the input unchanged and "".
func extractType(text string) (string, string) {
	matches := typeRe.FindAllStringSubmatchIndex(text, -1)
	for i := len(matches) - 1; i >= 0; i-- {
		m := matches[i]
		potential := text[m[2]:m[3]]
		lower := strings.ToLower(strings.TrimSpace(potential))
		if typeKeywordsExact[lower] {
			return strings.TrimSpace(text[:m[0]]), strings.TrimSpace(potential)
		}
		for _, kw := range typeKeywordsPartial {
			if strings.Contains(lower, kw) {
				return strings.TrimSpace(text[:m[0]]), strings.TrimSpace(potential)
			}
		}
	}
	return text, ""
}

// matchQuestionLine tries patterns C, A, B against one line. The number must
// pass survey.IsQuestionNumber so variable names (RegionCode2) and process
// markers (STEP1) never count as questions.
func matchQuestionLine(line string) (Hint, bool) {
	stripped := strings.TrimSpace(line)

	if m := patternC.FindStringSubmatch(stripped); m != nil {
		if !survey.IsQuestionNumber(m[1]) {
			return Hint{}, false
		}
		rest := m[2]
		_, qtype := extractType(rest)
		text := strings.TrimSpace(trailingParenRe.ReplaceAllString(rest, ""))
		return Hint{Number: m[1], Text: text, Type: qtype}, true
	}

	if m := patternA.FindStringSubmatch(stripped); m != nil {
		if !survey.IsQuestionNumber(m[1]) {
			return Hint{}, false
		}
		return Hint{Number: m[1], Text: m[2]}, true
	}

	if m := patternB.FindStringSubmatch(stripped); m != nil {
		if !survey.IsQuestionNumber(m[1]) {
			return Hint{}, false
		}
		return Hint{Number: m[1], Text: m[3], Type: strings.TrimSpace(m[2])}, true
	}

	return Hint{}, false
}

// ScanQuestions runs the regex scan over annotated text. Lines that start a
// question open a new hint; plain continuation lines extend its text, while
// list items, tables, and section banners are skipped since they are answer
// options rather than question wording.
func ScanQuestions(text string) []Hint {
	var hints []Hint
	var current *Hint

	flush := func() {
		if current == nil {
			return
		}
		cleaned, qtype := extractType(current.Text)
		current.Text = strings.TrimSpace(cleaned)
		if current.Type == "" {
			current.Type = qtype
		}
		hints = append(hints, *current)
		current = nil
	}

	for _, line := range strings.Split(text, "\n") {
		if h, ok := matchQuestionLine(line); ok {
			flush()
			hc := h
			current = &hc
			continue
		}
		if current == nil {
			continue
		}
		stripped := strings.TrimSpace(line)
		if stripped == "" ||
			strings.HasPrefix(stripped, "===") ||
			strings.HasPrefix(stripped, "|") ||
			strings.HasPrefix(stripped, "#.") ||
			strings.HasPrefix(stripped, "- ") {
			continue
		}
		current.Text += " " + stripped
	}
	flush()

	return hints
}
