package skiplogic

import (
	"strings"

	"github.com/hazyhaar/surveypipe/survey"
)

// RuleStatus classifies a skip rule after target resolution.
type RuleStatus string

const (
	// StatusResolved means the target parsed and names a known question.
	StatusResolved RuleStatus = "Resolved"
	// StatusEnd means the target parsed to survey termination.
	StatusEnd RuleStatus = "END"
	// StatusNotFound means the target parsed but no such question exists.
	StatusNotFound RuleStatus = "Not Found"
	// StatusUnresolved means the target text could not be parsed at all.
	StatusUnresolved RuleStatus = "Unresolved"
)

// DetailRow is one skip rule with its resolution status, for display.
type DetailRow struct {
	Source       string     `json:"source"`
	Condition    string     `json:"condition"`
	TargetText   string     `json:"target_text"`
	ParsedTarget string     `json:"parsed_target"`
	Status       RuleStatus `json:"status"`
}

// DetailRows lists every skip rule of every question with its parse status.
// Unresolved rules are surfaced here rather than dropped.
func DetailRows(questions []survey.Question, g *Graph) []DetailRow {
	nodeSet := make(map[string]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		nodeSet[strings.ToUpper(n)] = true
	}

	var rows []DetailRow
	for _, q := range questions {
		for _, rule := range q.SkipRules {
			parsed := ParseTarget(rule.Target)
			var status RuleStatus
			switch {
			case parsed == "":
				status = StatusUnresolved
				parsed = rule.Target
			case parsed == End:
				status = StatusEnd
			case nodeSet[strings.ToUpper(parsed)]:
				status = StatusResolved
			default:
				status = StatusNotFound
			}
			rows = append(rows, DetailRow{
				Source:       q.Number,
				Condition:    rule.Condition,
				TargetText:   rule.Target,
				ParsedTarget: parsed,
				Status:       status,
			})
		}
	}
	return rows
}
