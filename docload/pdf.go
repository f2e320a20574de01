package docload

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"unicode"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/hazyhaar/surveypipe/survey"
)

// ParsePDF extracts questionnaire text from a PDF, one section per page.
// PDF carries no usable formatting metadata, so every line becomes a plain
// paragraph; question detection falls back to the number patterns alone.
func ParsePDF(path string) ([]survey.Section, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	ctx, err := api.ReadValidateAndOptimize(f, conf)
	if err != nil {
		return nil, fmt.Errorf("pdfcpu read: %w", err)
	}

	var sections []survey.Section
	for pageNr := 1; pageNr <= ctx.PageCount; pageNr++ {
		pageText := extractPageText(ctx, pageNr)
		if pageText == "" {
			continue
		}

		section := survey.Section{Heading: fmt.Sprintf("Page %d", pageNr)}
		for _, line := range strings.Split(pageText, "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			section.Content = append(section.Content, survey.ContentItem{
				Paragraph: &survey.Paragraph{Text: line, Style: "Normal", ListLevel: -1},
			})
		}
		if len(section.Content) > 0 {
			sections = append(sections, section)
		}
	}

	if len(sections) == 0 {
		return nil, fmt.Errorf("no text content found in PDF")
	}
	return sections, nil
}

func extractPageText(ctx *model.Context, pageNr int) string {
	r, err := pdfcpu.ExtractPageContent(ctx, pageNr)
	if err != nil {
		return ""
	}
	data, err := io.ReadAll(r)
	if err != nil || len(data) == 0 {
		return ""
	}
	return textFromContentStream(data)
}

var pdfStringRe = regexp.MustCompile(`\(([^)]*)\)`)

// textFromContentStream walks PDF content stream operators and keeps line
// structure: text-show operators append to the current line, line-motion
// operators (', T*, TD) start a new one.
func textFromContentStream(data []byte) string {
	var sb strings.Builder

	for _, line := range bytes.Split(data, []byte{'\n'}) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}

		switch {
		case bytes.HasSuffix(line, []byte("Tj")) || bytes.HasSuffix(line, []byte("TJ")):
			writeStrings(&sb, line)
		case bytes.HasSuffix(line, []byte("'")) && bytes.Contains(line, []byte("(")):
			sb.WriteByte('\n')
			writeStrings(&sb, line)
		case bytes.HasSuffix(line, []byte("TD")), bytes.Equal(line, []byte("T*")):
			sb.WriteByte('\n')
		case bytes.HasSuffix(line, []byte("Td")):
			sb.WriteByte(' ')
		}
	}

	return cleanPageText(sb.String())
}

func writeStrings(sb *strings.Builder, line []byte) {
	for _, m := range pdfStringRe.FindAllSubmatch(line, -1) {
		if text := decodePDFString(m[1]); text != "" {
			sb.WriteString(text)
		}
	}
}

// decodePDFString handles basic PDF escape sequences including octal.
func decodePDFString(raw []byte) string {
	var sb strings.Builder
	for i := 0; i < len(raw); i++ {
		if raw[i] != '\\' || i+1 >= len(raw) {
			sb.WriteByte(raw[i])
			continue
		}
		i++
		switch raw[i] {
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		case '\\', '(', ')':
			sb.WriteByte(raw[i])
		default:
			if raw[i] >= '0' && raw[i] <= '7' {
				val := int(raw[i] - '0')
				for n := 0; n < 2 && i+1 < len(raw) && raw[i+1] >= '0' && raw[i+1] <= '7'; n++ {
					i++
					val = val*8 + int(raw[i]-'0')
				}
				sb.WriteByte(byte(val))
			} else {
				sb.WriteByte(raw[i])
			}
		}
	}
	return sb.String()
}

// cleanPageText collapses runs of spaces within lines but keeps newlines,
// and drops non-printable characters.
func cleanPageText(text string) string {
	var sb strings.Builder
	prevSpace := false
	for _, r := range text {
		switch {
		case r == '\n':
			sb.WriteByte('\n')
			prevSpace = true
		case unicode.IsSpace(r):
			if !prevSpace && sb.Len() > 0 {
				sb.WriteByte(' ')
				prevSpace = true
			}
		case unicode.IsPrint(r):
			sb.WriteRune(r)
			prevSpace = false
		}
	}
	return strings.TrimSpace(sb.String())
}
