package survey

import (
	"strings"
	"testing"
)

func TestIsQuestionNumber(t *testing.T) {
	tests := []struct {
		qn    string
		valid bool
	}{
		{"Q1", true},
		{"SQ1a", true},
		{"SC2", true},
		{"BVT11", true},
		{"QPID100", true},
		{"A1-1", true},
		{"DM3", true},
		{"RegionCode2", false},
		{"SegCode15", false},
		{"STEP1", false},
		{"Step2", false},
		{"PAGE3", false},
		{"QUOTA1", false},
		{"INTRO1", false},
		{"1234", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsQuestionNumber(tt.qn); got != tt.valid {
			t.Errorf("IsQuestionNumber(%q) = %v, want %v", tt.qn, got, tt.valid)
		}
	}
}

func TestNormalizeType(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"", ""},
		{"SA", "SA"},
		{"sa", "SA"},
		{"S", "SA"},
		{"M", "MA"},
		{"5pt", "5pt"},
		{"5 pt", "5pt"},
		{"5pt x 3", "5pt x 3"},
		{"5PT X 3", "5pt x 3"},
		{"Top3", "Top3"},
		{"Rank 3", "Top3"},
		{"3순위", "Top3"},
		{"5-point scale", "5pt"},
		{"7-point scale x 8", "7pt x 8"},
		{"5점 척도", "5pt"},
		{"5점척도x3", "5pt x 3"},
		{"select one", "SA"},
		{"Select all that apply", "MA"},
		{"open-ended", "OE"},
		{"open/sa", "OE"},
		// "open/sa" maps only on exact match; longer strings containing it
		// are kept verbatim.
		{"open/sa variant", "open/sa variant"},
		{"숫자 입력", "NUMERIC"},
		{"Likert", "SCALE"},
		{"matrix", "MATRIX"},
		{"something else", "something else"},
	}

	for _, tt := range tests {
		if got := NormalizeType(tt.raw); got != tt.want {
			t.Errorf("NormalizeType(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestRenderParagraph(t *testing.T) {
	tests := []struct {
		name string
		p    Paragraph
		want string
	}{
		{"plain", Paragraph{Text: "hello", ListLevel: -1}, "hello"},
		{"bold", Paragraph{Text: "Q1. Gender?", Bold: true, ListLevel: -1}, "**Q1. Gender?**"},
		{"caps", Paragraph{Text: "SHOW CARD", AllCaps: true, ListLevel: -1}, "[CAPS]SHOW CARD[/CAPS]"},
		{"bullet", Paragraph{Text: "Male", ListLevel: 0}, "  - Male"},
		{"numbered nested", Paragraph{Text: "Female", ListLevel: 1, NumberedList: true}, "    #. Female"},
		{"indent", Paragraph{Text: "note", IndentLevel: 2, ListLevel: -1}, "    note"},
		{"styled", Paragraph{Text: "Part A", Style: "Heading1", ListLevel: -1}, "Part A  [style:Heading1]"},
	}

	for _, tt := range tests {
		if got := RenderParagraph(&tt.p); got != tt.want {
			t.Errorf("%s: RenderParagraph = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestRenderTable(t *testing.T) {
	tbl := Table{Rows: [][]string{{"code", "label"}, {"1", "Male"}, {"2", "Female"}}}
	got := RenderTable(&tbl)

	for _, want := range []string{"| code | label |", "| --- | --- |", "| 1 | Male |", "| 2 | Female |"} {
		if !strings.Contains(got, want) {
			t.Errorf("RenderTable missing %q in:\n%s", want, got)
		}
	}

	if RenderTable(&Table{}) != "" {
		t.Error("empty table should render empty")
	}
}

func TestRenderSection(t *testing.T) {
	sec := Section{
		Heading: "Screening",
		Content: []ContentItem{
			{Paragraph: &Paragraph{Text: "Q1. Gender?", Bold: true, ListLevel: -1}},
			{Table: &Table{Rows: [][]string{{"1", "Male"}, {"2", "Female"}}}},
			{Paragraph: &Paragraph{Text: "", ListLevel: -1}}, // empty: skipped
		},
	}

	got := RenderSection(&sec)
	if !strings.Contains(got, "=== Screening ===") {
		t.Errorf("missing heading marker:\n%s", got)
	}
	if !strings.Contains(got, "**Q1. Gender?**") {
		t.Errorf("missing bold question:\n%s", got)
	}
	if !strings.Contains(got, "| 1 | Male |") {
		t.Errorf("missing table row:\n%s", got)
	}
}

func TestSectionAccessors(t *testing.T) {
	sec := Section{Content: []ContentItem{
		{Paragraph: &Paragraph{Text: "a", ListLevel: -1}},
		{Table: &Table{Rows: [][]string{{"1"}}}},
		{Paragraph: &Paragraph{Text: "b", ListLevel: -1}},
	}}

	if n := len(sec.Paragraphs()); n != 2 {
		t.Errorf("Paragraphs() = %d items, want 2", n)
	}
	if n := len(sec.Tables()); n != 1 {
		t.Errorf("Tables() = %d items, want 1", n)
	}
}
