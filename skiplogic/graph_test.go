package skiplogic

import (
	"reflect"
	"testing"

	"github.com/hazyhaar/surveypipe/survey"
)

// linear returns n questions Q1..Qn with no skip logic.
func linear(n int) []survey.Question {
	qs := make([]survey.Question, 0, n)
	for i := 1; i <= n; i++ {
		qs = append(qs, survey.Question{
			Number: "Q" + string(rune('0'+i)),
			Text:   "question",
			Type:   "SA",
		})
	}
	return qs
}

func TestBuildGraphEmpty(t *testing.T) {
	g := BuildGraph(nil)
	if len(g.Nodes) != 0 || len(g.Edges) != 0 {
		t.Errorf("empty input: got %d nodes, %d edges", len(g.Nodes), len(g.Edges))
	}
}

func TestBuildGraphSequential(t *testing.T) {
	g := BuildGraph(linear(3))

	if want := []string{"Q1", "Q2", "Q3"}; !reflect.DeepEqual(g.Nodes, want) {
		t.Errorf("Nodes = %v, want %v", g.Nodes, want)
	}
	if len(g.Edges) != 2 {
		t.Fatalf("edges = %d, want 2 sequential", len(g.Edges))
	}
	for _, e := range g.Edges {
		if e.Kind != EdgeSequential {
			t.Errorf("unexpected edge kind %s", e.Kind)
		}
	}
	if g.TotalSkipRules != 0 || g.QuestionsWithSkip != 0 {
		t.Error("linear survey should have no skip counters")
	}
}

func TestBuildGraphSkip(t *testing.T) {
	qs := linear(5)
	qs[0].SkipRules = []survey.SkipRule{{Condition: "Q1=2", Target: "Q5로 이동"}}

	g := BuildGraph(qs)

	var skips []Edge
	for _, e := range g.Edges {
		if e.Kind == EdgeSkip {
			skips = append(skips, e)
		}
	}
	if len(skips) != 1 {
		t.Fatalf("skip edges = %d, want 1", len(skips))
	}
	if skips[0].Source != "Q1" || skips[0].Target != "Q5" {
		t.Errorf("skip edge %s->%s, want Q1->Q5", skips[0].Source, skips[0].Target)
	}
	if skips[0].RawTarget != "Q5로 이동" {
		t.Errorf("RawTarget = %q", skips[0].RawTarget)
	}
	if g.QuestionsWithSkip != 1 || g.TotalSkipRules != 1 || g.UniqueTargets != 1 {
		t.Errorf("counters = %d/%d/%d, want 1/1/1",
			g.QuestionsWithSkip, g.TotalSkipRules, g.UniqueTargets)
	}
}

func TestBuildGraphEndSentinel(t *testing.T) {
	qs := linear(2)
	qs[0].SkipRules = []survey.SkipRule{{Condition: "Q1=9", Target: "설문 종료"}}

	g := BuildGraph(qs)

	if g.Nodes[len(g.Nodes)-1] != End {
		t.Errorf("END node not appended: %v", g.Nodes)
	}

	// Without a resolved END target the sentinel must be absent.
	g2 := BuildGraph(linear(2))
	for _, n := range g2.Nodes {
		if n == End {
			t.Error("END node present without any skip to END")
		}
	}
}

func TestBuildGraphCaseNormalization(t *testing.T) {
	qs := []survey.Question{
		{Number: "q1", Text: "a", SkipRules: []survey.SkipRule{{Condition: "q1=1", Target: "go to Q2"}}},
		{Number: "q2", Text: "b"},
	}
	g := BuildGraph(qs)

	for _, e := range g.Edges {
		if e.Kind == EdgeSkip && e.Target != "q2" {
			t.Errorf("skip target %q not resolved to canonical id q2", e.Target)
		}
	}
}

func TestBuildGraphUnparsedTarget(t *testing.T) {
	qs := linear(2)
	qs[0].SkipRules = []survey.SkipRule{{Condition: "Q1=1", Target: "어딘가로"}}

	g := BuildGraph(qs)

	if len(g.Unparsed) != 1 {
		t.Fatalf("Unparsed = %d entries, want 1", len(g.Unparsed))
	}
	if g.Unparsed[0].Source != "Q1" || g.Unparsed[0].RawTarget != "어딘가로" {
		t.Errorf("unexpected unparsed entry %+v", g.Unparsed[0])
	}
	for _, e := range g.Edges {
		if e.Kind == EdgeSkip {
			t.Error("unparsed target must not produce an edge")
		}
	}
	// Still counted as a rule.
	if g.TotalSkipRules != 1 {
		t.Errorf("TotalSkipRules = %d, want 1", g.TotalSkipRules)
	}
}

func TestBuildGraphFilterEdge(t *testing.T) {
	qs := linear(3)
	qs[2].Filter = "Q1=1 응답자만"

	g := BuildGraph(qs)

	var filters []Edge
	for _, e := range g.Edges {
		if e.Kind == EdgeFilter {
			filters = append(filters, e)
		}
	}
	if len(filters) != 1 {
		t.Fatalf("filter edges = %d, want 1", len(filters))
	}
	if filters[0].Source != "Q1" || filters[0].Target != "Q3" {
		t.Errorf("filter edge %s->%s, want Q1->Q3 (reverse dependency)",
			filters[0].Source, filters[0].Target)
	}
}

func TestBuildGraphSelfLoopAllowed(t *testing.T) {
	qs := linear(2)
	qs[0].SkipRules = []survey.SkipRule{{Condition: "Q1=1", Target: "Q1로 돌아감"}}

	g := BuildGraph(qs)

	found := false
	for _, e := range g.Edges {
		if e.Kind == EdgeSkip && e.Source == "Q1" && e.Target == "Q1" {
			found = true
		}
	}
	if !found {
		t.Error("self-loop skip edge was filtered out; it is legal data")
	}
}

func TestBuildGraphIdempotent(t *testing.T) {
	qs := linear(4)
	qs[0].SkipRules = []survey.SkipRule{{Condition: "Q1=2", Target: "Q4"}}
	qs[1].Filter = "Q1=1"

	a, b := BuildGraph(qs), BuildGraph(qs)
	if !reflect.DeepEqual(a, b) {
		t.Error("BuildGraph is not deterministic on identical input")
	}
}

func TestDetailRows(t *testing.T) {
	qs := linear(3)
	qs[0].SkipRules = []survey.SkipRule{
		{Condition: "Q1=1", Target: "Q3"},
		{Condition: "Q1=2", Target: "설문 종료"},
		{Condition: "Q1=3", Target: "Q99"},
		{Condition: "Q1=4", Target: "???"},
	}
	g := BuildGraph(qs)

	rows := DetailRows(qs, g)
	if len(rows) != 4 {
		t.Fatalf("rows = %d, want 4", len(rows))
	}
	wantStatus := []RuleStatus{StatusResolved, StatusEnd, StatusNotFound, StatusUnresolved}
	for i, want := range wantStatus {
		if rows[i].Status != want {
			t.Errorf("row %d status = %s, want %s", i, rows[i].Status, want)
		}
	}
}
