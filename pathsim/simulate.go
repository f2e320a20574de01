package pathsim

import (
	"github.com/hazyhaar/surveypipe/skiplogic"
	"github.com/hazyhaar/surveypipe/survey"
)

// UnparsedCondition is a skip rule whose condition text yielded no
// question/code pair.
type UnparsedCondition struct {
	QuestionID string `json:"question_number"`
	Condition  string `json:"condition"`
}

// SimulationResult bundles everything one survey simulation produces.
type SimulationResult struct {
	Paths          []Path              `json:"all_paths"`
	Scenarios      []TestScenario      `json:"test_scenarios"`
	Analysis       skiplogic.Analysis  `json:"graph_analysis"`
	TotalQuestions int                 `json:"total_questions"`
	TotalSkipRules int                 `json:"total_skip_rules"`
	Unparsed       []UnparsedCondition `json:"unparsed_conditions,omitempty"`
}

// TotalPaths returns the number of enumerated paths.
func (r *SimulationResult) TotalPaths() int { return len(r.Paths) }

// MaxPathLength returns the longest path's step count, 0 when empty.
func (r *SimulationResult) MaxPathLength() int {
	max := 0
	for _, p := range r.Paths {
		if len(p.Steps) > max {
			max = len(p.Steps)
		}
	}
	return max
}

// MinPathLength returns the shortest path's step count, 0 when empty.
func (r *SimulationResult) MinPathLength() int {
	if len(r.Paths) == 0 {
		return 0
	}
	min := len(r.Paths[0].Steps)
	for _, p := range r.Paths[1:] {
		if len(p.Steps) < min {
			min = len(p.Steps)
		}
	}
	return min
}

// BranchCoveragePercent is the share of skip rules verified by at least one
// scenario. A survey without skip rules is trivially fully covered.
func (r *SimulationResult) BranchCoveragePercent() float64 {
	if r.TotalSkipRules == 0 {
		return 100.0
	}
	covered := make(map[string]bool)
	for _, s := range r.Scenarios {
		for _, b := range s.VerifiedBranches {
			covered[b] = true
		}
	}
	pct := float64(len(covered)) / float64(r.TotalSkipRules) * 100
	if pct > 100 {
		pct = 100
	}
	return pct
}

// Simulate runs the full pipeline on a question list: graph build, structural
// analysis, exhaustive path enumeration, and scenario synthesis.
func Simulate(questions []survey.Question) *SimulationResult {
	if len(questions) == 0 {
		return &SimulationResult{}
	}

	g := skiplogic.BuildGraph(questions)

	var unparsed []UnparsedCondition
	for _, q := range questions {
		for _, rule := range q.SkipRules {
			if ref := skiplogic.ParseCondition(rule.Condition); !ref.Parsed {
				unparsed = append(unparsed, UnparsedCondition{QuestionID: q.Number, Condition: rule.Condition})
			}
		}
	}

	return &SimulationResult{
		Paths:          EnumeratePaths(questions, g, DefaultMaxPaths),
		Scenarios:      GenerateScenarios(questions, g),
		Analysis:       skiplogic.Analyze(g, questions),
		TotalQuestions: len(questions),
		TotalSkipRules: g.TotalSkipRules,
		Unparsed:       unparsed,
	}
}
