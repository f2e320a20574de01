package pathsim

import (
	"github.com/hazyhaar/surveypipe/skiplogic"
	"github.com/hazyhaar/surveypipe/survey"
)

// TracePath follows the single route a concrete answer set produces.
// selections maps question id to the chosen answer code ({"Q1": "1"}).
// Questions without a selection, or whose selection matches no skip
// condition, fall through sequentially. The walk is deterministic: skip
// edges are tried in graph order and the first match wins. A revisited
// question stops the walk, so cyclic graphs always terminate.
func TracePath(questions []survey.Question, g *skiplogic.Graph, selections map[string]string) Path {
	if len(questions) == 0 {
		return Path{Description: "Empty"}
	}

	w := newWalker(questions, g)
	var steps []PathStep
	visited := make(map[string]bool)
	qn := w.nodes[0]

	for qn != "" && w.nodeSet[qn] && !visited[qn] {
		visited[qn] = true
		selected := selections[qn]

		skipTo := ""
		if selected != "" {
			for _, e := range w.skips[qn] {
				ref := skiplogic.ParseCondition(e.Label)
				if !ref.Parsed {
					// The label is truncated for display and may cut the
					// condition mid-token. Target text often restates the
					// condition ("Q1=1이면 Q5로 이동"), so retry on it.
					ref = skiplogic.ParseCondition(e.RawTarget)
				}
				if ref.Parsed && containsCode(ref.Codes, selected) {
					skipTo = e.Target
					break
				}
			}
		}

		steps = append(steps, w.step(qn, selected, skipTo))

		if skipTo != "" {
			if skipTo == skiplogic.End {
				break
			}
			qn = skipTo
			continue
		}
		qn = w.next(qn)
		if qn == "" {
			break
		}
	}

	if len(steps) > 0 {
		steps[len(steps)-1].Terminal = true
	}
	return Path{Steps: steps, Description: elidedDescription(steps)}
}

func containsCode(codes []string, code string) bool {
	for _, c := range codes {
		if c == code {
			return true
		}
	}
	return false
}
