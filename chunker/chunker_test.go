package chunker

import (
	"strings"
	"testing"

	"github.com/hazyhaar/surveypipe/survey"
)

func plainPara(text string) survey.ContentItem {
	return survey.ContentItem{Paragraph: &survey.Paragraph{Text: text, ListLevel: -1}}
}

func boldPara(text string) survey.ContentItem {
	return survey.ContentItem{Paragraph: &survey.Paragraph{Text: text, Bold: true, ListLevel: -1}}
}

func optionTable() survey.ContentItem {
	return survey.ContentItem{Table: &survey.Table{Rows: [][]string{
		{"1", "Male"},
		{"2", "Female"},
	}}}
}

func TestScanQuestionsPatterns(t *testing.T) {
	text := strings.Join([]string{
		"Q1. What is your gender?",
		"#. Male",
		"#. Female",
		"Q2 [S] How old are you?",
		"[SC2. SENSITIVE INDUSTRY (MA)]",
		"| 1 | Advertising |",
	}, "\n")

	hints := ScanQuestions(text)
	if len(hints) != 3 {
		t.Fatalf("hints = %d, want 3", len(hints))
	}

	if hints[0].Number != "Q1" || hints[0].Text != "What is your gender?" {
		t.Errorf("pattern A hint = %+v", hints[0])
	}
	if hints[1].Number != "Q2" || hints[1].Type != "S" {
		t.Errorf("pattern B hint = %+v", hints[1])
	}
	if hints[2].Number != "SC2" || hints[2].Type != "MA" || hints[2].Text != "SENSITIVE INDUSTRY" {
		t.Errorf("pattern C hint = %+v", hints[2])
	}
}

func TestScanQuestionsContinuation(t *testing.T) {
	text := strings.Join([]string{
		"Q1. What is your overall opinion",
		"of this product?",
		"#. Good",
		"=== Next Section ===",
	}, "\n")

	hints := ScanQuestions(text)
	if len(hints) != 1 {
		t.Fatalf("hints = %d, want 1", len(hints))
	}
	if want := "What is your overall opinion of this product?"; hints[0].Text != want {
		t.Errorf("text = %q, want %q", hints[0].Text, want)
	}
}

func TestScanQuestionsTypeFromText(t *testing.T) {
	hints := ScanQuestions("Q3. Rate your satisfaction [5pt]")
	if len(hints) != 1 {
		t.Fatalf("hints = %d, want 1", len(hints))
	}
	if hints[0].Type != "5pt" || hints[0].Text != "Rate your satisfaction" {
		t.Errorf("hint = %+v", hints[0])
	}
}

func TestScanQuestionsRejectsNonQuestions(t *testing.T) {
	text := strings.Join([]string{
		"RegionCode2. Seoul metro area",
		"STEP1. Allocate respondents by quota",
		"PAGE3: header",
	}, "\n")

	if hints := ScanQuestions(text); len(hints) != 0 {
		t.Errorf("hints = %+v, want none for metadata lines", hints)
	}
}

func TestIsQuestionStart(t *testing.T) {
	cases := []struct {
		name string
		item survey.ContentItem
		want bool
	}{
		{"bold paragraph", boldPara("Demographics"), true},
		{"numbered line", plainPara("Q5. Where do you live?"), true},
		{"bracket header", plainPara("[SC1. REGION (SA)]"), true},
		{"plain text", plainPara("Please read carefully."), false},
		{"table", optionTable(), false},
		{"list item with number", survey.ContentItem{Paragraph: &survey.Paragraph{Text: "Q9. item", Bold: true, ListLevel: 0}}, true},
	}
	for _, tc := range cases {
		if got := isQuestionStart(tc.item); got != tc.want {
			t.Errorf("%s: isQuestionStart = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestChunkSectionsEmpty(t *testing.T) {
	if got := ChunkSections(nil, MaxChunkChars); got != nil {
		t.Errorf("empty input produced %d chunks", len(got))
	}
}

func TestChunkSectionsSingleChunk(t *testing.T) {
	sections := []survey.Section{
		{Heading: "Screening", Content: []survey.ContentItem{plainPara("Q1. Age?"), optionTable()}},
		{Heading: "Main", Content: []survey.ContentItem{plainPara("Q2. Brand?")}},
	}

	chunks := ChunkSections(sections, MaxChunkChars)
	if len(chunks) != 1 {
		t.Fatalf("chunks = %d, want 1", len(chunks))
	}
	for _, want := range []string{"=== Screening ===", "=== Main ===", "Q1. Age?"} {
		if !strings.Contains(chunks[0], want) {
			t.Errorf("chunk missing %q", want)
		}
	}
}

func TestChunkSectionsFlushAtLimit(t *testing.T) {
	long := strings.Repeat("x", 60)
	sections := []survey.Section{
		{Heading: "A", Content: []survey.ContentItem{plainPara(long)}},
		{Heading: "B", Content: []survey.ContentItem{plainPara(long)}},
	}

	chunks := ChunkSections(sections, 100)
	if len(chunks) != 2 {
		t.Fatalf("chunks = %d, want one per section at this limit", len(chunks))
	}
	if !strings.Contains(chunks[0], "=== A ===") || !strings.Contains(chunks[1], "=== B ===") {
		t.Error("sections landed in the wrong chunks")
	}
}

func TestChunkSectionsSplitsOversizedSection(t *testing.T) {
	section := survey.Section{
		Heading: "Main",
		Content: []survey.ContentItem{
			plainPara("Q1. First question with some length to it?"),
			optionTable(),
			plainPara("Q2. Second question, also fairly long text?"),
			optionTable(),
		},
	}

	chunks := ChunkSections([]survey.Section{section}, 80)
	if len(chunks) != 2 {
		t.Fatalf("chunks = %d, want 2", len(chunks))
	}
	if !strings.Contains(chunks[0], "Q1.") || strings.Contains(chunks[0], "Q2.") {
		t.Errorf("first chunk boundaries wrong:\n%s", chunks[0])
	}
	// Tables stay attached to their question.
	if !strings.Contains(chunks[0], "| 1 | Male |") || !strings.Contains(chunks[1], "| 1 | Male |") {
		t.Error("answer table detached from its question")
	}
	if !strings.Contains(chunks[1], "Main (continued)") {
		t.Errorf("continuation heading missing:\n%s", chunks[1])
	}
}

func TestMaxQuestionsForModel(t *testing.T) {
	if got := MaxQuestionsForModel("gemini-2.5-pro"); got != 400 {
		t.Errorf("gemini ceiling = %d, want 400", got)
	}
	if got := MaxQuestionsForModel("gpt-4o"); got != 80 {
		t.Errorf("default ceiling = %d, want 80", got)
	}
}

func TestRechunkPassthrough(t *testing.T) {
	chunks := []string{"Q1. one\nQ2. two"}
	hints := [][]Hint{ScanQuestions(chunks[0])}

	newChunks, newHints := Rechunk(chunks, hints, 80)
	if len(newChunks) != 1 || newChunks[0] != chunks[0] {
		t.Errorf("under-ceiling chunk was modified: %v", newChunks)
	}
	if len(newHints[0]) != 2 {
		t.Errorf("hints = %d, want 2", len(newHints[0]))
	}
}

func TestRechunkSplitsAtQuestionBoundary(t *testing.T) {
	var lines []string
	for _, qn := range []string{"Q1", "Q2", "Q3", "Q4", "Q5"} {
		lines = append(lines, qn+". Question text here?", "some continuation")
	}
	chunk := strings.Join(lines, "\n")
	hints := [][]Hint{ScanQuestions(chunk)}

	newChunks, newHints := Rechunk([]string{chunk}, hints, 2)

	if len(newChunks) != 3 {
		t.Fatalf("chunks = %d, want 3 (2+2+1 questions)", len(newChunks))
	}
	for i, h := range newHints {
		if len(h) > 2 {
			t.Errorf("chunk %d has %d questions, ceiling is 2", i, len(h))
		}
	}
	// Every sub-chunk starts at a question boundary except possibly the first.
	for i, c := range newChunks[1:] {
		first := strings.SplitN(c, "\n", 2)[0]
		if _, ok := matchQuestionLine(first); !ok {
			t.Errorf("sub-chunk %d does not start at a question line: %q", i+1, first)
		}
	}
}
