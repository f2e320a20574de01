package pathsim

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hazyhaar/surveypipe/skiplogic"
	"github.com/hazyhaar/surveypipe/survey"
)

// requiredScenarios is how many scenarios get REQUIRED priority; the greedy
// cover emits the highest-yield scenarios first, so the head of the list is
// the minimum worth running.
const requiredScenarios = 5

// Scenario priorities.
const (
	PriorityRequired    = "REQUIRED"
	PriorityRecommended = "RECOMMENDED"
)

// TestScenario is one answer combination to run against a fielded survey,
// with the path it should produce and the skip branches it verifies.
type TestScenario struct {
	ID               int               `json:"scenario_id"`
	Description      string            `json:"description"`
	AnswerSelections map[string]string `json:"answer_selections"`
	ExpectedPath     []string          `json:"expected_path"`
	VerifiedBranches []string          `json:"verified_branches"`
	Priority         string            `json:"priority"`
}

type branch struct {
	source string
	target string
	label  string
}

func (b branch) id() string { return b.source + "->" + b.target }

// GenerateScenarios builds a test-scenario suite by greedy set cover over
// skip branches: each round picks the single-answer selection covering the
// most uncovered branches, until every branch is covered. A survey without
// skip logic gets one sequential scenario.
func GenerateScenarios(questions []survey.Question, g *skiplogic.Graph) []TestScenario {
	if len(questions) == 0 {
		return nil
	}

	var branches []branch
	for _, e := range g.Edges {
		if e.Kind == skiplogic.EdgeSkip {
			branches = append(branches, branch{source: e.Source, target: e.Target, label: e.Label})
		}
	}

	if len(branches) == 0 {
		path := TracePath(questions, g, nil)
		return []TestScenario{{
			ID:               1,
			Description:      "Sequential path (no skip logic)",
			AnswerSelections: map[string]string{},
			ExpectedPath:     path.QuestionNumbers(),
			VerifiedBranches: []string{},
			Priority:         PriorityRequired,
		}}
	}

	uncovered := make(map[int]bool, len(branches))
	for i := range branches {
		uncovered[i] = true
	}

	var scenarios []TestScenario
	for len(uncovered) > 0 {
		bestSelections, bestCovered := pickBest(branches, uncovered)

		for i := range bestCovered {
			delete(uncovered, i)
		}

		path := TracePath(questions, g, bestSelections)

		covered := make([]int, 0, len(bestCovered))
		for i := range bestCovered {
			covered = append(covered, i)
		}
		sort.Ints(covered)
		verified := make([]string, len(covered))
		for i, idx := range covered {
			verified[i] = branches[idx].id()
		}

		id := len(scenarios) + 1
		priority := PriorityRequired
		if id > requiredScenarios {
			priority = PriorityRecommended
		}
		scenarios = append(scenarios, TestScenario{
			ID:               id,
			Description:      fmt.Sprintf("Test %s (%d branches)", describeSelections(bestSelections), len(verified)),
			AnswerSelections: bestSelections,
			ExpectedPath:     path.QuestionNumbers(),
			VerifiedBranches: verified,
			Priority:         priority,
		})
	}

	return scenarios
}

// pickBest evaluates, for each uncovered branch, the selection triggering it
// and the set of uncovered branches that selection also covers, returning
// the widest. Branch order is document order, so ties resolve the same way
// on every run.
func pickBest(branches []branch, uncovered map[int]bool) (map[string]string, map[int]bool) {
	indices := make([]int, 0, len(uncovered))
	for i := range uncovered {
		indices = append(indices, i)
	}
	sort.Ints(indices)

	var bestSelections map[string]string
	bestCovered := make(map[int]bool)

	for _, idx := range indices {
		b := branches[idx]
		ref := skiplogic.ParseCondition(b.label)

		selections := make(map[string]string, 1)
		if ref.Parsed && len(ref.Codes) > 0 {
			selections[ref.QuestionID] = ref.Codes[0]
		} else {
			// Unparseable condition: pin an arbitrary code on the source so
			// the traced path at least reaches it.
			selections[b.source] = "1"
		}

		covered := make(map[int]bool)
		for _, j := range indices {
			other := branches[j]
			otherRef := skiplogic.ParseCondition(other.label)
			// A branch is covered when the selection answers its parsed
			// condition, or, failing that, when its source question is
			// visited by this candidate's trigger. The fallback applies
			// whenever the condition's question is absent from the
			// selections, parsed or not.
			code, selected := selections[otherRef.QuestionID]
			if otherRef.Parsed && selected {
				if containsCode(otherRef.Codes, code) {
					covered[j] = true
				}
			} else if other.source == b.source {
				covered[j] = true
			}
		}
		if len(covered) == 0 {
			covered[idx] = true
		}

		if len(covered) > len(bestCovered) {
			bestCovered = covered
			bestSelections = selections
		}
	}

	if len(bestCovered) == 0 {
		idx := indices[0]
		bestCovered[idx] = true
		bestSelections = map[string]string{branches[idx].source: "1"}
	}
	return bestSelections, bestCovered
}

func describeSelections(selections map[string]string) string {
	keys := make([]string, 0, len(selections))
	for k := range selections {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + selections[k]
	}
	return strings.Join(parts, ", ")
}
