// Package docload reads questionnaire documents into annotated sections.
// DOCX is the primary format since formatting metadata (bold runs, list
// levels, tables) carries real meaning in questionnaires; PDF is a
// text-only fallback.
package docload

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/hazyhaar/surveypipe/survey"
)

// indentTwipsPerLevel converts w:ind left values (twentieths of a point)
// into indent levels. 720 twips is half an inch, one typical tab stop.
const indentTwipsPerLevel = 720

// ParseDOCX parses a .docx file into sections split at heading paragraphs.
func ParseDOCX(path string) ([]survey.Section, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open docx: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	return ParseDOCXReader(f, info.Size())
}

// ParseDOCXReader parses DOCX content from any ReaderAt, such as an
// uploaded file held in memory.
func ParseDOCXReader(r io.ReaderAt, size int64) ([]survey.Section, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}

	numbered := loadNumbering(zr)

	docFile := findZipFile(zr, "word/document.xml")
	if docFile == nil {
		return nil, fmt.Errorf("word/document.xml not found in archive")
	}
	rc, err := docFile.Open()
	if err != nil {
		return nil, fmt.Errorf("open document.xml: %w", err)
	}
	defer rc.Close()

	return parseDocument(rc, numbered)
}

func findZipFile(zr *zip.Reader, name string) *zip.File {
	for _, f := range zr.File {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// numberingTable answers whether a (numId, ilvl) pair is a numbered list as
// opposed to a bulleted one.
type numberingTable map[int]map[int]string

func (t numberingTable) isNumbered(numID, ilvl int) bool {
	levels, ok := t[numID]
	if !ok {
		return false
	}
	fmtVal, ok := levels[ilvl]
	if !ok {
		return false
	}
	return fmtVal != "bullet"
}

type numberingXML struct {
	AbstractNums []struct {
		ID     int `xml:"abstractNumId,attr"`
		Levels []struct {
			Ilvl   int `xml:"ilvl,attr"`
			NumFmt struct {
				Val string `xml:"val,attr"`
			} `xml:"numFmt"`
		} `xml:"lvl"`
	} `xml:"abstractNum"`
	Nums []struct {
		NumID       int `xml:"numId,attr"`
		AbstractRef struct {
			Val int `xml:"val,attr"`
		} `xml:"abstractNumId"`
	} `xml:"num"`
}

// loadNumbering reads word/numbering.xml and resolves the numId →
// abstractNum indirection. Missing or malformed numbering data degrades to
// "everything is a bullet list".
func loadNumbering(zr *zip.Reader) numberingTable {
	table := make(numberingTable)

	f := findZipFile(zr, "word/numbering.xml")
	if f == nil {
		return table
	}
	rc, err := f.Open()
	if err != nil {
		return table
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return table
	}
	var numbering numberingXML
	if err := xml.Unmarshal(data, &numbering); err != nil {
		return table
	}

	abstract := make(map[int]map[int]string, len(numbering.AbstractNums))
	for _, a := range numbering.AbstractNums {
		levels := make(map[int]string, len(a.Levels))
		for _, lvl := range a.Levels {
			levels[lvl.Ilvl] = lvl.NumFmt.Val
		}
		abstract[a.ID] = levels
	}
	for _, n := range numbering.Nums {
		if levels, ok := abstract[n.AbstractRef.Val]; ok {
			table[n.NumID] = levels
		}
	}
	return table
}

func parseDocument(r io.Reader, numbered numberingTable) ([]survey.Section, error) {
	dec := xml.NewDecoder(r)

	var sections []survey.Section
	var current survey.Section

	flush := func() {
		if current.Heading != "" || len(current.Content) > 0 {
			sections = append(sections, current)
		}
		current = survey.Section{}
	}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse document.xml: %w", err)
		}

		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch se.Name.Local {
		case "p":
			p, err := parseParagraph(dec, numbered)
			if err != nil {
				return nil, err
			}
			if p == nil {
				continue
			}
			if strings.Contains(p.Style, "Heading") {
				flush()
				current.Heading = p.Text
			} else {
				current.Content = append(current.Content, survey.ContentItem{Paragraph: p})
			}
		case "tbl":
			t, err := parseTable(dec)
			if err != nil {
				return nil, err
			}
			if len(t.Rows) > 0 {
				current.Content = append(current.Content, survey.ContentItem{Table: t})
			}
		}
	}

	flush()
	return sections, nil
}

// attrVal returns the w:val attribute of an element, "" when absent.
func attrVal(se xml.StartElement) string {
	for _, a := range se.Attr {
		if a.Name.Local == "val" {
			return a.Value
		}
	}
	return ""
}

// onOff interprets toggle elements like <w:b/> or <w:b w:val="0"/>.
func onOff(se xml.StartElement) bool {
	v := attrVal(se)
	return v != "0" && v != "false" && v != "none"
}

type docxRun struct {
	text   string
	bold   bool
	italic bool
	caps   bool
	strike bool
}

// parseParagraph consumes one w:p element. Returns nil for empty paragraphs
// and for fully struck-through ones (deleted content left visible in the
// draft).
func parseParagraph(dec *xml.Decoder, numbered numberingTable) (*survey.Paragraph, error) {
	style := ""
	ilvl, numID := 0, 0
	hasNum := false
	indentLeft := 0
	var runs []docxRun

	depth := 1
	inPPr := false
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("parse paragraph: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "pPr":
				inPPr = true
				depth++
			case "pStyle":
				if inPPr {
					style = attrVal(t)
				}
				depth++
			case "ilvl":
				if inPPr {
					ilvl, _ = strconv.Atoi(attrVal(t))
				}
				depth++
			case "numId":
				if inPPr {
					numID, _ = strconv.Atoi(attrVal(t))
					hasNum = numID != 0
				}
				depth++
			case "ind":
				if inPPr {
					for _, a := range t.Attr {
						if a.Name.Local == "left" {
							indentLeft, _ = strconv.Atoi(a.Value)
						}
					}
				}
				depth++
			case "r":
				run, err := parseRun(dec)
				if err != nil {
					return nil, err
				}
				runs = append(runs, run)
			default:
				depth++
			}
		case xml.EndElement:
			if t.Name.Local == "pPr" {
				inPPr = false
			}
			depth--
		}
	}

	var text strings.Builder
	allBold, allItalic, allCaps, allStrike := true, true, true, true
	hasRuns := false
	for _, run := range runs {
		text.WriteString(run.text)
		if strings.TrimSpace(run.text) == "" {
			continue
		}
		hasRuns = true
		allBold = allBold && run.bold
		allItalic = allItalic && run.italic
		allCaps = allCaps && run.caps
		allStrike = allStrike && run.strike
	}
	if !hasRuns {
		allBold, allItalic, allCaps, allStrike = false, false, false, false
	}

	trimmed := strings.TrimSpace(text.String())
	if trimmed == "" {
		return nil, nil
	}
	if allStrike && hasRuns {
		return nil, nil
	}

	listLevel := -1
	numberedList := false
	if hasNum {
		listLevel = ilvl
		numberedList = numbered.isNumbered(numID, ilvl)
	}
	styleName := style
	if styleName == "" {
		styleName = "Normal"
	}

	return &survey.Paragraph{
		Text:         trimmed,
		Style:        styleName,
		Bold:         allBold,
		Italic:       allItalic,
		AllCaps:      allCaps,
		IndentLevel:  indentLeft / indentTwipsPerLevel,
		ListLevel:    listLevel,
		NumberedList: numberedList,
	}, nil
}

// parseRun consumes one w:r element, collecting its text and formatting.
func parseRun(dec *xml.Decoder) (docxRun, error) {
	var run docxRun
	var text strings.Builder

	depth := 1
	inT := false
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return run, fmt.Errorf("parse run: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "b":
				run.bold = onOff(t)
			case "i":
				run.italic = onOff(t)
			case "caps":
				run.caps = onOff(t)
			case "strike":
				run.strike = onOff(t)
			case "t":
				inT = true
			case "tab":
				text.WriteString("\t")
			}
			depth++
		case xml.CharData:
			if inT {
				text.Write(t)
			}
		case xml.EndElement:
			if t.Name.Local == "t" {
				inT = false
			}
			depth--
		}
	}

	run.text = text.String()
	return run, nil
}

// parseTable consumes one w:tbl element into cell text rows. Cell text is
// the concatenation of all runs inside the cell.
func parseTable(dec *xml.Decoder) (*survey.Table, error) {
	table := &survey.Table{}
	var row []string
	var cell strings.Builder

	depth := 1
	inT := false
	cellDepth := 0
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("parse table: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "tr":
				row = nil
			case "tc":
				cell.Reset()
				cellDepth = depth
			case "t":
				inT = true
			}
			depth++
		case xml.CharData:
			if inT && cellDepth > 0 {
				cell.Write(t)
			}
		case xml.EndElement:
			depth--
			switch t.Name.Local {
			case "t":
				inT = false
			case "tc":
				if depth == cellDepth {
					row = append(row, strings.TrimSpace(cell.String()))
					cellDepth = 0
				}
			case "tr":
				if len(row) > 0 {
					table.Rows = append(table.Rows, row)
				}
			}
		}
	}

	return table, nil
}
