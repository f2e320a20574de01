// Package skiplogic builds and analyzes the skip-logic graph of a survey:
// free-text conditions and targets are parsed into structured references,
// questions become nodes, and sequential flow, skip rules, and filter
// dependencies become edges.
//
// The parsers are heuristic by nature: questionnaires phrase routing in
// free text ("Q1=1 또는 2 응답자 → Q5로 이동"). Parse failure is therefore a
// value, never an error: callers surface unresolved rules to the user
// instead of aborting.
package skiplogic

import (
	"regexp"
	"strings"
)

// End is the sentinel node representing survey termination.
const End = "END"

// questionIDRe matches question identifiers: Q1, SQ1a, Q2_1, SC2, BVT11.
var questionIDRe = regexp.MustCompile(`(?i)\b[A-Za-z]+\d+[a-z]?(?:[-_]\d+)*\b`)

// endRe matches the end-of-survey vocabulary, in English and Korean.
var endRe = regexp.MustCompile(`(?i)종료|terminate|end\s*(survey|interview|questionnaire)|screen\s*out|탈락`)

// conditionRe captures "<QID> = <code list>" (or ≠). The code list may be
// separated by commas, slashes, "or"/"and", Korean particles, or range
// dashes: "Q1=1 또는 2", "Q3=3,4", "Q5 = 1~3".
var conditionRe = regexp.MustCompile(`(?i)([A-Za-z]+\d+[a-z]?(?:[-_]\d+)*)\s*[=≠]\s*([\d,~\-\s또는or/and및]+)`)

// codeSplitRe splits the captured code list into individual tokens.
var codeSplitRe = regexp.MustCompile(`(?i)[,\s또는or/and및~\-]+`)

// ConditionRef is the structured form of a skip/filter condition: one source
// question and the answer codes that satisfy it (OR semantics across codes).
//
// Multi-question "&"-joined conditions reduce to the first matched
// question/codes pair; the remainder is ignored. This mirrors how the
// questionnaires in the field actually phrase routing and keeps the parser
// predictable.
type ConditionRef struct {
	QuestionID string   `json:"question_id"`
	Codes      []string `json:"candidate_codes"`
	Raw        string   `json:"raw_text"`
	Parsed     bool     `json:"parsed"`
}

// ParseCondition extracts the question id and answer codes from a free-text
// condition. Codes are returned in the order found, duplicates preserved.
// Parsed is false for empty input, a missing comparator, or a code list with
// no digit tokens.
func ParseCondition(text string) ConditionRef {
	if strings.TrimSpace(text) == "" {
		return ConditionRef{Raw: text}
	}

	m := conditionRe.FindStringSubmatch(text)
	if m == nil {
		return ConditionRef{Raw: text}
	}

	qid := strings.ToUpper(m[1])
	var codes []string
	for _, tok := range codeSplitRe.Split(strings.TrimSpace(m[2]), -1) {
		tok = strings.TrimSpace(tok)
		if tok != "" && isDigits(tok) {
			codes = append(codes, tok)
		}
	}

	if len(codes) == 0 {
		return ConditionRef{QuestionID: qid, Raw: text}
	}
	return ConditionRef{QuestionID: qid, Codes: codes, Raw: text, Parsed: true}
}

// ParseTarget extracts a question id or the End sentinel from a skip-rule
// target text. The end-of-survey vocabulary wins over any question-shaped
// token ("응답 후 설문 종료" terminates even though it contains digits).
// Returns "" when nothing matches.
func ParseTarget(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}

	if endRe.MatchString(text) {
		return End
	}

	if m := questionIDRe.FindString(text); m != "" {
		return strings.ToUpper(m)
	}

	return ""
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
