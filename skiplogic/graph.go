package skiplogic

import (
	"strings"

	"github.com/hazyhaar/surveypipe/survey"
)

// EdgeKind classifies graph edges.
type EdgeKind string

const (
	// EdgeSequential is the default document-order transition.
	EdgeSequential EdgeKind = "sequential"
	// EdgeSkip is an explicit skip rule.
	EdgeSkip EdgeKind = "skip"
	// EdgeFilter is a reverse dependency: the source question gates whether
	// the target question is shown. Informational only; filter edges do not
	// participate in reachability or path enumeration.
	EdgeFilter EdgeKind = "filter"
)

// Edge is one directed edge of the skip-logic graph. Target may be the End
// sentinel. RawTarget keeps the unparsed target text of skip edges.
type Edge struct {
	Source    string   `json:"source"`
	Target    string   `json:"target"`
	Kind      EdgeKind `json:"kind"`
	Label     string   `json:"label,omitempty"`
	RawTarget string   `json:"raw_target,omitempty"`
}

// UnparsedTarget records a skip rule whose target text could not be parsed.
type UnparsedTarget struct {
	Source    string `json:"source"`
	RawTarget string `json:"raw_target"`
}

// Graph is the skip-logic graph of one questionnaire. It is a pure
// projection of a question list: built fresh on each call, never mutated.
type Graph struct {
	// Nodes in document order; End is appended only when a skip rule
	// resolved to it.
	Nodes      []string          `json:"nodes"`
	NodeTypes  map[string]string `json:"node_types"`
	NodeLabels map[string]string `json:"node_labels"`
	Edges      []Edge            `json:"edges"`

	QuestionsWithSkip int              `json:"questions_with_skip"`
	TotalSkipRules    int              `json:"total_skip_rules"`
	UniqueTargets     int              `json:"unique_targets"`
	Unparsed          []UnparsedTarget `json:"unparsed_targets,omitempty"`
}

// SkipEdges returns the graph's skip edges grouped by source, in edge order.
func (g *Graph) SkipEdges() map[string][]Edge {
	out := make(map[string][]Edge)
	for _, e := range g.Edges {
		if e.Kind == EdgeSkip {
			out[e.Source] = append(out[e.Source], e)
		}
	}
	return out
}

// BuildGraph builds the skip-logic graph from a question list.
//
// Sequential edges connect each question to its successor in list order.
// Skip edges come from parsed skip-rule targets; rules whose target cannot
// be parsed are recorded in Unparsed and produce no edge. Filter edges run
// from the first question referenced in a filter condition to the filtered
// question. Edge multiplicity and self-loops are legal data.
func BuildGraph(questions []survey.Question) *Graph {
	g := &Graph{
		NodeTypes:  make(map[string]string),
		NodeLabels: make(map[string]string),
	}
	if len(questions) == 0 {
		return g
	}

	for _, q := range questions {
		g.Nodes = append(g.Nodes, q.Number)
		qtype := q.Type
		if qtype == "" {
			qtype = "Unknown"
		}
		g.NodeTypes[q.Number] = qtype
		g.NodeLabels[q.Number] = truncate(q.Text, 40)
	}

	// Case-insensitive lookup: skip targets often drift in casing relative
	// to the canonical ids ("q5" vs "Q5").
	norm := make(map[string]string, len(g.Nodes))
	for _, n := range g.Nodes {
		norm[strings.ToUpper(n)] = n
	}

	for i := 0; i < len(questions)-1; i++ {
		g.Edges = append(g.Edges, Edge{
			Source: questions[i].Number,
			Target: questions[i+1].Number,
			Kind:   EdgeSequential,
		})
	}

	hasEnd := false
	targets := make(map[string]bool)

	for _, q := range questions {
		if len(q.SkipRules) == 0 {
			continue
		}
		g.QuestionsWithSkip++
		for _, rule := range q.SkipRules {
			g.TotalSkipRules++
			parsed := ParseTarget(rule.Target)
			if parsed == "" {
				g.Unparsed = append(g.Unparsed, UnparsedTarget{Source: q.Number, RawTarget: rule.Target})
				continue
			}
			resolved := parsed
			if parsed == End {
				hasEnd = true
			} else if canonical, ok := norm[parsed]; ok {
				resolved = canonical
			}
			targets[resolved] = true
			g.Edges = append(g.Edges, Edge{
				Source:    q.Number,
				Target:    resolved,
				Kind:      EdgeSkip,
				Label:     truncate(rule.Condition, 30),
				RawTarget: rule.Target,
			})
		}
	}

	for _, q := range questions {
		if strings.TrimSpace(q.Filter) == "" {
			continue
		}
		ref := questionIDRe.FindString(q.Filter)
		if ref == "" {
			continue
		}
		source := strings.ToUpper(ref)
		if canonical, ok := norm[source]; ok {
			source = canonical
		}
		g.Edges = append(g.Edges, Edge{
			Source:    source,
			Target:    q.Number,
			Kind:      EdgeFilter,
			Label:     truncate(q.Filter, 30),
			RawTarget: q.Filter,
		})
	}

	if hasEnd {
		g.Nodes = append(g.Nodes, End)
		g.NodeTypes[End] = End
		g.NodeLabels[End] = "End"
	}
	g.UniqueTargets = len(targets)

	return g
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
