package chunker

import (
	"github.com/hazyhaar/surveypipe/survey"
)

// MaxChunkChars is the default chunk ceiling in characters, roughly 50K
// tokens. Large-context models handle most questionnaires in one call at
// this size.
const MaxChunkChars = 200000

// estimateItemSize approximates the rendered size of one content item.
// Paragraphs carry a flat annotation overhead; table cells add separator
// characters.
func estimateItemSize(item survey.ContentItem) int {
	if item.Paragraph != nil {
		return len(item.Paragraph.Text) + 10
	}
	if item.Table != nil {
		size := 0
		for _, row := range item.Table.Rows {
			for _, cell := range row {
				size += len(cell)
			}
			size += len(row) * 3
		}
		return size
	}
	return 0
}

func estimateSectionSize(s survey.Section) int {
	size := len(s.Heading)
	for _, item := range s.Content {
		size += estimateItemSize(item)
	}
	return size
}

// isQuestionStart reports whether a content item begins a new question:
// a bold non-list paragraph at zero indent, or a line matching one of the
// question-number patterns.
func isQuestionStart(item survey.ContentItem) bool {
	p := item.Paragraph
	if p == nil {
		return false
	}
	if p.Bold && p.ListLevel < 0 && p.IndentLevel == 0 {
		return true
	}
	_, ok := matchQuestionLine(p.Text)
	return ok
}

// splitSection breaks a single oversized section at question starts,
// keeping answer tables attached to the question they belong to. Follow-on
// pieces get a "(continued)" heading.
func splitSection(s survey.Section, maxChars int) []string {
	var chunks []string
	var items []survey.ContentItem
	size := 0
	heading := s.Heading

	continued := "(continued)"
	if s.Heading != "" {
		continued = s.Heading + " (continued)"
	}

	for _, item := range s.Content {
		itemSize := estimateItemSize(item)
		if isQuestionStart(item) && size+itemSize > maxChars && len(items) > 0 {
			chunks = append(chunks, survey.RenderSection(&survey.Section{Heading: heading, Content: items}))
			items = nil
			size = 0
			heading = continued
		}
		items = append(items, item)
		size += itemSize
	}
	if len(items) > 0 {
		chunks = append(chunks, survey.RenderSection(&survey.Section{Heading: heading, Content: items}))
	}
	return chunks
}

// ChunkSections renders sections into annotated-text chunks of at most
// maxChars characters. Whole sections are packed greedily; a section too
// large on its own is split at question boundaries via splitSection.
func ChunkSections(sections []survey.Section, maxChars int) []string {
	if len(sections) == 0 {
		return nil
	}

	var chunks []string
	var pending []survey.Section
	size := 0

	flush := func() {
		if len(pending) > 0 {
			chunks = append(chunks, survey.RenderSections(pending))
			pending = nil
			size = 0
		}
	}

	for _, s := range sections {
		sectionSize := estimateSectionSize(s)
		switch {
		case sectionSize > maxChars:
			flush()
			chunks = append(chunks, splitSection(s, maxChars)...)
		case size+sectionSize > maxChars:
			flush()
			pending = append(pending, s)
			size = sectionSize
		default:
			pending = append(pending, s)
			size += sectionSize
		}
	}
	flush()

	return chunks
}
