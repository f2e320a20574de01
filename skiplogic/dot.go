package skiplogic

import (
	"fmt"
	"strings"
)

// ViewMode selects which nodes and edges a DOT export includes.
type ViewMode string

const (
	// ViewSkipOnly renders only questions involved in skip or filter logic.
	ViewSkipOnly ViewMode = "skip_only"
	// ViewFullFlow renders the whole questionnaire including sequential flow.
	ViewFullFlow ViewMode = "full_flow"
)

var nodeColors = map[string]string{
	"SA":      "#B3D9FF",
	"MA":      "#B3FFB3",
	"OE":      "#FFFFB3",
	"NUMERIC": "#FFD9B3",
	"SCALE":   "#D9B3FF",
	"MATRIX":  "#B3FFE0",
	"Unknown": "#E8E8E8",
	End:       "#FF6B6B",
}

var edgeStyles = map[EdgeKind]string{
	EdgeSequential: `color="#CCCCCC", style="solid", penwidth=1.0`,
	EdgeSkip:       `color="#0066CC", style="bold", penwidth=2.0`,
	EdgeFilter:     `color="#CC6600", style="dashed", penwidth=1.5`,
}

// DOT renders the graph as a Graphviz digraph. orientation is "TB" or "LR".
func DOT(g *Graph, mode ViewMode, orientation string) string {
	if orientation != "LR" {
		orientation = "TB"
	}

	var b strings.Builder
	b.WriteString("digraph SkipLogic {\n")
	fmt.Fprintf(&b, "  rankdir=%s;\n", orientation)
	b.WriteString("  node [shape=box, style=\"filled,rounded\", fontsize=10, fontname=\"Arial\"];\n")
	b.WriteString("  edge [fontsize=8, fontname=\"Arial\"];\n\n")

	relevantNodes := make(map[string]bool)
	var relevantEdges []Edge
	if mode == ViewSkipOnly {
		for _, e := range g.Edges {
			if e.Kind == EdgeSkip || e.Kind == EdgeFilter {
				relevantNodes[e.Source] = true
				relevantNodes[e.Target] = true
				relevantEdges = append(relevantEdges, e)
			}
		}
	} else {
		for _, n := range g.Nodes {
			relevantNodes[n] = true
		}
		relevantEdges = g.Edges
	}

	for _, node := range g.Nodes {
		if !relevantNodes[node] {
			continue
		}
		qtype := g.NodeTypes[node]
		if qtype == "" {
			qtype = "Unknown"
		}
		color := nodeColorFor(qtype)
		fmt.Fprintf(&b, "  %q [label=\"%s\\n%s\", fillcolor=%q];\n", node, node, qtype, color)
	}
	b.WriteString("\n")

	for _, e := range relevantEdges {
		attrs := edgeStyles[e.Kind]
		if attrs == "" {
			attrs = edgeStyles[EdgeSequential]
		}
		if e.Label != "" {
			attrs += fmt.Sprintf(", label=%q", e.Label)
		}
		fmt.Fprintf(&b, "  %q -> %q [%s];\n", e.Source, e.Target, attrs)
	}

	b.WriteString("}")
	return b.String()
}

// nodeColorFor maps a question type to a fill color, matching scale and grid
// notations ("5pt", "5pt x 3") onto the scale color.
func nodeColorFor(qtype string) string {
	if c, ok := nodeColors[qtype]; ok {
		return c
	}
	if strings.Contains(qtype, "pt") {
		return nodeColors["SCALE"]
	}
	if strings.HasPrefix(qtype, "Top") {
		return "#FFB3D9"
	}
	return nodeColors["Unknown"]
}
