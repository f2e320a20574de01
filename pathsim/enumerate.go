// Package pathsim enumerates respondent paths through a questionnaire's
// skip-logic graph, traces the path implied by a concrete answer set, and
// synthesizes a minimal test-scenario suite covering every skip branch.
// Pure algorithms, no external services.
package pathsim

import (
	"fmt"
	"strings"

	"github.com/hazyhaar/surveypipe/skiplogic"
	"github.com/hazyhaar/surveypipe/survey"
)

// DefaultMaxPaths caps exhaustive enumeration. Surveys with heavy branching
// explode combinatorially; past this cap the path list is a sample.
const DefaultMaxPaths = 500

// descriptionSteps limits how many question ids a path description spells
// out before eliding.
const descriptionSteps = 8

// PathStep is one visited question on a simulated path.
type PathStep struct {
	QuestionID     string `json:"question_number"`
	Text           string `json:"question_text"`
	Type           string `json:"question_type"`
	SelectedAnswer string `json:"selected_answer,omitempty"`
	SkipTo         string `json:"skip_triggered,omitempty"`
	Terminal       bool   `json:"is_terminal"`
}

// Path is one complete route from the first question to a terminal state.
type Path struct {
	ID          int        `json:"path_id"`
	Steps       []PathStep `json:"steps"`
	Description string     `json:"description"`
}

// QuestionNumbers returns the visited question ids in order.
func (p *Path) QuestionNumbers() []string {
	out := make([]string, len(p.Steps))
	for i, s := range p.Steps {
		out[i] = s.QuestionID
	}
	return out
}

type walker struct {
	nodes    []string
	nodeSet  map[string]bool
	byNumber map[string]*survey.Question
	index    map[string]int
	skips    map[string][]skiplogic.Edge
}

func newWalker(questions []survey.Question, g *skiplogic.Graph) *walker {
	w := &walker{
		nodeSet:  make(map[string]bool, len(questions)),
		byNumber: make(map[string]*survey.Question, len(questions)),
		index:    make(map[string]int, len(questions)),
		skips:    g.SkipEdges(),
	}
	for i := range questions {
		q := &questions[i]
		w.nodes = append(w.nodes, q.Number)
		w.nodeSet[q.Number] = true
		w.byNumber[q.Number] = q
		w.index[q.Number] = i
	}
	return w
}

// next returns the question after qn in document order, or "" at the end.
func (w *walker) next(qn string) string {
	idx, ok := w.index[qn]
	if !ok || idx+1 >= len(w.nodes) {
		return ""
	}
	return w.nodes[idx+1]
}

func (w *walker) step(qn, answer, skipTo string) PathStep {
	text, qtype := "", "Unknown"
	if q, ok := w.byNumber[qn]; ok {
		text = truncateRunes(q.Text, 100)
		if q.Type != "" {
			qtype = q.Type
		}
	}
	return PathStep{
		QuestionID:     qn,
		Text:           text,
		Type:           qtype,
		SelectedAnswer: answer,
		SkipTo:         skipTo,
	}
}

// EnumeratePaths walks every route through the questionnaire by DFS. At each
// question it explores the sequential fall-through and every skip branch.
// A question already visited on the current route ends the path as a loop.
// At most maxPaths paths are produced; maxPaths <= 0 produces none.
func EnumeratePaths(questions []survey.Question, g *skiplogic.Graph, maxPaths int) []Path {
	if len(questions) == 0 {
		return nil
	}

	w := newWalker(questions, g)
	var paths []Path

	record := func(steps []PathStep, desc string) {
		steps[len(steps)-1].Terminal = true
		cp := make([]PathStep, len(steps))
		copy(cp, steps)
		paths = append(paths, Path{ID: len(paths) + 1, Steps: cp, Description: desc})
	}

	var dfs func(qn string, steps []PathStep, visited map[string]bool) []PathStep
	dfs = func(qn string, steps []PathStep, visited map[string]bool) []PathStep {
		if len(paths) >= maxPaths {
			return steps
		}

		if qn == skiplogic.End || !w.nodeSet[qn] {
			if len(steps) > 0 {
				record(steps, elidedDescription(steps))
			}
			return steps
		}

		if visited[qn] {
			if len(steps) > 0 {
				record(steps, joinIDs(steps)+" (loop)")
			}
			return steps
		}
		visited[qn] = true
		defer delete(visited, qn)

		nextQn := w.next(qn)

		// Sequential fall-through is always a branch, even when skip rules
		// exist: a respondent whose answer matches no condition continues.
		steps = append(steps, w.step(qn, "", ""))
		if nextQn != "" {
			steps = dfs(nextQn, steps, visited)
		} else {
			record(steps, joinIDs(steps))
		}
		steps = steps[:len(steps)-1]

		for _, e := range w.skips[qn] {
			if len(paths) >= maxPaths {
				break
			}
			steps = append(steps, w.step(qn, "", e.Target))
			steps = dfs(e.Target, steps, visited)
			steps = steps[:len(steps)-1]
		}
		return steps
	}

	dfs(w.nodes[0], nil, make(map[string]bool))
	return paths
}

func joinIDs(steps []PathStep) string {
	ids := make([]string, len(steps))
	for i, s := range steps {
		ids[i] = s.QuestionID
	}
	return strings.Join(ids, " -> ")
}

// elidedDescription spells out the first descriptionSteps ids and appends a
// step count for longer paths.
func elidedDescription(steps []PathStep) string {
	ids := make([]string, 0, descriptionSteps)
	for i, s := range steps {
		if i == descriptionSteps {
			break
		}
		ids = append(ids, s.QuestionID)
	}
	desc := strings.Join(ids, " -> ")
	if len(steps) > descriptionSteps {
		desc += fmt.Sprintf(" ... (%d steps)", len(steps))
	}
	return desc
}

func truncateRunes(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
