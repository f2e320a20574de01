package extract

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/hazyhaar/surveypipe/survey"
)

// payload is the JSON envelope the model is asked to return.
type payload struct {
	Questions []json.RawMessage `json:"questions"`
}

// rawQuestion mirrors the prompt's output schema with every field loosely
// typed, so one malformed question never sinks the chunk.
type rawQuestion struct {
	Number       json.RawMessage `json:"question_number"`
	Text         json.RawMessage `json:"question_text"`
	Type         json.RawMessage `json:"question_type"`
	Options      []rawOption     `json:"answer_options"`
	SkipLogic    []rawSkip       `json:"skip_logic"`
	Filter       json.RawMessage `json:"filter"`
	ResponseBase json.RawMessage `json:"response_base"`
	Instructions json.RawMessage `json:"instructions"`
}

type rawOption struct {
	Code  json.RawMessage `json:"code"`
	Label json.RawMessage `json:"label"`
}

type rawSkip struct {
	Condition json.RawMessage `json:"condition"`
	Target    json.RawMessage `json:"target"`
}

// asString coerces a raw JSON value to a string: JSON strings unquote,
// numbers keep their literal text, null and anything else become "".
func asString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	t := strings.TrimSpace(string(raw))
	if t == "null" || strings.HasPrefix(t, "{") || strings.HasPrefix(t, "[") {
		return ""
	}
	return t
}

// validateQuestion checks and normalizes one model-extracted question.
// A question needs a number and text, and the number must pass the
// question-number filter; the model occasionally extracts variable
// definitions (RegionCode1) despite the prompt. Returns nil on rejection.
func validateQuestion(raw json.RawMessage) *survey.Question {
	var rq rawQuestion
	if err := json.Unmarshal(raw, &rq); err != nil {
		return nil
	}

	number := strings.TrimSpace(asString(rq.Number))
	text := strings.TrimSpace(asString(rq.Text))
	if number == "" || text == "" {
		return nil
	}
	if !survey.IsQuestionNumber(number) {
		return nil
	}

	q := &survey.Question{
		Number:       number,
		Text:         text,
		Type:         survey.NormalizeType(asString(rq.Type)),
		Filter:       asString(rq.Filter),
		ResponseBase: asString(rq.ResponseBase),
		Instructions: asString(rq.Instructions),
	}

	for _, opt := range rq.Options {
		label := asString(opt.Label)
		if len(opt.Label) == 0 {
			continue
		}
		q.Options = append(q.Options, survey.AnswerOption{
			Code:  asString(opt.Code),
			Label: label,
		})
	}

	for _, sl := range rq.SkipLogic {
		if len(sl.Condition) == 0 && len(sl.Target) == 0 {
			continue
		}
		q.SkipRules = append(q.SkipRules, survey.SkipRule{
			Condition: asString(sl.Condition),
			Target:    asString(sl.Target),
		})
	}

	return q
}

var codeBlockRe = regexp.MustCompile("```(?:json)?\\s*(\\{[\\s\\S]*?\\})\\s*```")

// extractJSON recovers the payload from a response that is not clean JSON:
// first from a fenced code block, then from the outermost brace pair.
func extractJSON(text string) (*payload, bool) {
	if m := codeBlockRe.FindStringSubmatch(text); m != nil {
		var p payload
		if err := json.Unmarshal([]byte(m[1]), &p); err == nil {
			return &p, true
		}
	}

	first := strings.Index(text, "{")
	last := strings.LastIndex(text, "}")
	if first != -1 && last > first {
		var p payload
		if err := json.Unmarshal([]byte(text[first:last+1]), &p); err == nil {
			return &p, true
		}
	}

	return nil, false
}

// parseResponse turns a raw model response into validated questions.
// Clean JSON is tried first, then the salvage paths. Rejected questions are
// dropped silently; a completely unparseable response yields nil, false.
func parseResponse(content string) ([]survey.Question, bool) {
	var p payload
	if err := json.Unmarshal([]byte(content), &p); err != nil {
		recovered, ok := extractJSON(content)
		if !ok {
			return nil, false
		}
		p = *recovered
	}

	var questions []survey.Question
	for _, raw := range p.Questions {
		if q := validateQuestion(raw); q != nil {
			questions = append(questions, *q)
		}
	}
	return questions, true
}
