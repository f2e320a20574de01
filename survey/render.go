package survey

import (
	"strings"
)

// Annotated-text rendering. Formatting metadata (bold, list level, indent,
// caps, tables) is preserved as lightweight markup so a language model can
// see the questionnaire's structure:
//
//	=== Heading ===       section heading
//	**text**              bold paragraph
//	[CAPS]TEXT[/CAPS]     all-caps paragraph
//	  #. item / - item    numbered / bullet list items
//	[style:Name]          non-default paragraph style
//	| a | b |             tables in markdown form

// plainStyles are paragraph styles that carry no structural information.
var plainStyles = map[string]bool{
	"":                       true,
	"Normal":                 true,
	"Body Text":              true,
	"Body":                   true,
	"List Paragraph":         true,
	"Default Paragraph Font": true,
}

// RenderParagraph converts one paragraph to annotated text.
func RenderParagraph(p *Paragraph) string {
	prefix := ""
	text := p.Text

	if p.ListLevel >= 0 {
		indent := strings.Repeat("  ", p.ListLevel)
		if p.NumberedList {
			prefix = indent + "  #. "
		} else {
			prefix = indent + "  - "
		}
	} else if p.IndentLevel > 0 {
		prefix = strings.Repeat("  ", p.IndentLevel)
	}

	if p.Bold && text != "" {
		text = "**" + text + "**"
	}
	if p.AllCaps && text != "" {
		text = "[CAPS]" + text + "[/CAPS]"
	}

	styleHint := ""
	if !plainStyles[p.Style] {
		styleHint = "  [style:" + p.Style + "]"
	}

	return prefix + text + styleHint
}

// RenderTable converts a table to a markdown-style table block, with a
// separator line after the first row.
func RenderTable(t *Table) string {
	if len(t.Rows) == 0 {
		return ""
	}

	lines := []string{""}
	for i, row := range t.Rows {
		lines = append(lines, "| "+strings.Join(row, " | ")+" |")
		if i == 0 {
			seps := make([]string, len(row))
			for j := range seps {
				seps[j] = "---"
			}
			lines = append(lines, "| "+strings.Join(seps, " | ")+" |")
		}
	}
	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

// RenderSection converts one section to annotated text, preserving the
// original paragraph/table order.
func RenderSection(s *Section) string {
	var lines []string

	if s.Heading != "" {
		lines = append(lines, "\n=== "+s.Heading+" ===\n")
	}

	for _, item := range s.Content {
		var rendered string
		switch {
		case item.Paragraph != nil:
			rendered = RenderParagraph(item.Paragraph)
		case item.Table != nil:
			rendered = RenderTable(item.Table)
		}
		if strings.TrimSpace(rendered) != "" {
			lines = append(lines, rendered)
		}
	}

	return strings.Join(lines, "\n")
}

// RenderSections converts a section list to one annotated-text document.
func RenderSections(sections []Section) string {
	var parts []string
	for i := range sections {
		rendered := RenderSection(&sections[i])
		if strings.TrimSpace(rendered) != "" {
			parts = append(parts, rendered)
		}
	}
	return strings.Join(parts, "\n")
}
