package skiplogic

import (
	"github.com/hazyhaar/surveypipe/survey"
)

// maxReportedCycles caps the cycle lists included in an Analysis. Detection
// itself is never capped; HasCycle reflects every cycle found.
const maxReportedCycles = 10

// Analysis is the result of structural graph analysis.
type Analysis struct {
	// Unreachable questions: not visited by a forward walk from the first
	// question over sequential and skip edges.
	Unreachable []string `json:"unreachable_questions"`
	// HasCycle is true when any directed cycle exists.
	HasCycle bool `json:"has_cycle"`
	// Cycles lists up to maxReportedCycles cycles, each as the node sequence
	// from the cycle entry back to itself (first node repeated last).
	Cycles [][]string `json:"cycles,omitempty"`
	// Terminals are questions from which the survey can end: sources of
	// edges into End, plus the document's last question.
	Terminals []string `json:"terminal_points"`
}

// Analyze computes reachability, cycles, and terminal points. Filter edges
// are excluded throughout; they model display conditions, not forward flow.
// Safe on any input shape: empty lists, self-loops, and fully cyclic graphs
// all produce results rather than errors.
func Analyze(g *Graph, questions []survey.Question) Analysis {
	if len(questions) == 0 {
		return Analysis{}
	}

	order := make([]string, 0, len(questions))
	for _, q := range questions {
		order = append(order, q.Number)
	}

	adj := make(map[string][]string, len(order)+1)
	for _, n := range order {
		adj[n] = nil
	}
	adj[End] = nil
	for _, e := range g.Edges {
		if e.Kind == EdgeFilter {
			continue
		}
		if _, ok := adj[e.Source]; ok {
			adj[e.Source] = append(adj[e.Source], e.Target)
		}
	}

	// Reachability: BFS from the first question.
	reachable := map[string]bool{order[0]: true}
	queue := []string{order[0]}
	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]
		for _, next := range adj[curr] {
			if !reachable[next] {
				reachable[next] = true
				queue = append(queue, next)
			}
		}
	}

	var unreachable []string
	for _, n := range order {
		if !reachable[n] {
			unreachable = append(unreachable, n)
		}
	}

	// Cycle detection: white/gray/black DFS. A gray neighbor closes a
	// cycle; the cycle is the suffix of the current path from that node.
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int, len(order)+1)
	for _, n := range order {
		color[n] = white
	}
	color[End] = white

	var cycles [][]string
	var dfs func(node string, path []string)
	dfs = func(node string, path []string) {
		color[node] = gray
		for _, next := range adj[node] {
			if _, known := color[next]; !known {
				continue
			}
			switch color[next] {
			case gray:
				start := -1
				for i, p := range path {
					if p == next {
						start = i
						break
					}
				}
				if start >= 0 {
					cycle := append(append([]string(nil), path[start:]...), next)
					cycles = append(cycles, cycle)
				}
			case white:
				dfs(next, append(path, next))
			}
		}
		color[node] = black
	}

	for _, n := range order {
		if color[n] == white {
			dfs(n, []string{n})
		}
	}

	// Terminal points: sources of skip edges into End, plus the last
	// question, since finishing the document is itself a terminal state.
	var terminals []string
	seen := make(map[string]bool)
	for _, e := range g.Edges {
		if e.Target == End && e.Kind == EdgeSkip && !seen[e.Source] {
			seen[e.Source] = true
			terminals = append(terminals, e.Source)
		}
	}
	last := order[len(order)-1]
	if !seen[last] {
		terminals = append(terminals, last)
	}

	reported := cycles
	if len(reported) > maxReportedCycles {
		reported = reported[:maxReportedCycles]
	}

	return Analysis{
		Unreachable: unreachable,
		HasCycle:    len(cycles) > 0,
		Cycles:      reported,
		Terminals:   terminals,
	}
}
