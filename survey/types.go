// Package survey defines the data model shared by the surveypipe pipeline:
// structured questions as produced by extraction, and annotated document
// sections as produced by the loaders.
//
// Everything here is plain data. Question lists are ordered: the list order
// is the questionnaire's administration order and defines the default
// sequential flow when no skip rule fires.
package survey

// AnswerOption is one selectable response option of a question.
type AnswerOption struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

// SkipRule routes a respondent past one or more questions based on a prior
// answer. Both fields are free text as found in the document; they are
// parsed on demand by the skiplogic package and parsing may fail; a
// malformed rule is data, not an error.
type SkipRule struct {
	Condition string `json:"condition"`
	Target    string `json:"target"`
}

// Question is one extracted survey question.
type Question struct {
	Number       string         `json:"question_number"`
	Text         string         `json:"question_text"`
	Type         string         `json:"question_type,omitempty"`
	Options      []AnswerOption `json:"answer_options,omitempty"`
	SkipRules    []SkipRule     `json:"skip_logic,omitempty"`
	Filter       string         `json:"filter,omitempty"`
	ResponseBase string         `json:"response_base,omitempty"`
	Instructions string         `json:"instructions,omitempty"`
}

// Document is a fully extracted questionnaire.
type Document struct {
	Filename  string     `json:"filename"`
	Questions []Question `json:"questions"`
}

// Paragraph is a text block with the formatting metadata the loaders
// preserve. ListLevel is -1 when the paragraph is not a list item.
type Paragraph struct {
	Text         string `json:"text"`
	Style        string `json:"style,omitempty"`
	Bold         bool   `json:"bold,omitempty"`
	Italic       bool   `json:"italic,omitempty"`
	AllCaps      bool   `json:"all_caps,omitempty"`
	IndentLevel  int    `json:"indent_level,omitempty"`
	ListLevel    int    `json:"list_level"`
	NumberedList bool   `json:"numbered_list,omitempty"`
}

// Table is a document table as rows of cell strings. The first row is
// treated as the header when rendering.
type Table struct {
	Rows [][]string `json:"rows"`
}

// ContentItem is either a paragraph or a table; exactly one field is set.
type ContentItem struct {
	Paragraph *Paragraph `json:"paragraph,omitempty"`
	Table     *Table     `json:"table,omitempty"`
}

// Section is a logical document section: a heading plus its content items in
// original order.
type Section struct {
	Heading string        `json:"heading,omitempty"`
	Content []ContentItem `json:"content"`
}

// Paragraphs returns the section's paragraph items in order.
func (s *Section) Paragraphs() []*Paragraph {
	var out []*Paragraph
	for _, c := range s.Content {
		if c.Paragraph != nil {
			out = append(out, c.Paragraph)
		}
	}
	return out
}

// Tables returns the section's table items in order.
func (s *Section) Tables() []*Table {
	var out []*Table
	for _, c := range s.Content {
		if c.Table != nil {
			out = append(out, c.Table)
		}
	}
	return out
}
