package document

import (
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// TableFormat selects how table elements serialize their text.
const (
	TableFormatMarkdown = "markdown"
	TableFormatHTML     = "html"
)

// Parser turns markdown produced by the conversion service into document
// elements. Construction is cheap; the goldmark instance is reusable.
type Parser struct {
	md          goldmark.Markdown
	tableFormat string
}

// NewParser creates a markdown parser with table support. tableFormat is
// TableFormatMarkdown or TableFormatHTML.
func NewParser(tableFormat string) *Parser {
	return &Parser{
		md: goldmark.New(
			goldmark.WithExtensions(extension.Table),
		),
		tableFormat: tableFormat,
	}
}

// Parse converts one page of markdown into elements, stamping each with
// the given page number. A zero page records absent provenance.
func (p *Parser) Parse(content []byte, page int) []Element {
	if len(strings.TrimSpace(string(content))) == 0 {
		return nil
	}

	reader := text.NewReader(content)
	doc := p.md.Parser().Parse(reader)

	var elements []Element
	for node := doc.FirstChild(); node != nil; node = node.NextSibling() {
		switch n := node.(type) {
		case *ast.Heading:
			headingText := extractText(n, content)
			if headingText == "" {
				continue
			}
			elements = append(elements, Element{
				Label: LabelHeading,
				Level: n.Level,
				Text:  headingText,
				Page:  page,
			})

		case *ast.List:
			listText := extractListText(n, content)
			if listText == "" {
				continue
			}
			elements = append(elements, Element{
				Label: LabelList,
				Text:  listText,
				Page:  page,
			})

		case *east.Table:
			tableText := p.renderTable(n, content)
			if tableText == "" {
				continue
			}
			elements = append(elements, Element{
				Label: LabelTable,
				Text:  tableText,
				Page:  page,
			})

		case *ast.FencedCodeBlock:
			elements = append(elements, codeElement(n.Lines(), content, page)...)

		case *ast.CodeBlock:
			elements = append(elements, codeElement(n.Lines(), content, page)...)

		default:
			// Paragraphs, blockquotes and anything unrecognized flatten
			// to paragraph text.
			body := extractText(node, content)
			if body == "" {
				continue
			}
			elements = append(elements, Element{
				Label: LabelParagraph,
				Text:  body,
				Page:  page,
			})
		}
	}
	return elements
}

func codeElement(lines *text.Segments, content []byte, page int) []Element {
	var builder strings.Builder
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		builder.Write(line.Value(content))
	}
	body := strings.TrimRight(builder.String(), "\n")
	if body == "" {
		return nil
	}
	return []Element{{Label: LabelCode, Text: body, Page: page}}
}

// renderTable serializes a table node row-wise in the configured format.
func (p *Parser) renderTable(table ast.Node, content []byte) string {
	var rows [][]string
	for row := table.FirstChild(); row != nil; row = row.NextSibling() {
		switch row.(type) {
		case *east.TableHeader, *east.TableRow:
			var cells []string
			for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
				cells = append(cells, extractText(cell, content))
			}
			rows = append(rows, cells)
		}
	}
	if len(rows) == 0 {
		return ""
	}

	if p.tableFormat == TableFormatHTML {
		var builder strings.Builder
		builder.WriteString("<table>")
		for _, cells := range rows {
			builder.WriteString("<tr>")
			for _, cell := range cells {
				fmt.Fprintf(&builder, "<td>%s</td>", cell)
			}
			builder.WriteString("</tr>")
		}
		builder.WriteString("</table>")
		return builder.String()
	}

	lines := make([]string, len(rows))
	for i, cells := range rows {
		lines[i] = strings.Join(cells, " | ")
	}
	return strings.Join(lines, "\n")
}

// extractListText flattens a list into "- item" lines, including items of
// nested lists.
func extractListText(list ast.Node, content []byte) string {
	var lines []string
	_ = ast.Walk(list, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if _, ok := node.(*ast.ListItem); ok {
			itemText := extractItemText(node, content)
			if itemText != "" {
				lines = append(lines, "- "+itemText)
			}
		}
		return ast.WalkContinue, nil
	})
	return strings.Join(lines, "\n")
}

// extractItemText collects the direct text of a list item, skipping any
// nested lists so their items are not duplicated.
func extractItemText(item ast.Node, content []byte) string {
	var builder strings.Builder
	for child := item.FirstChild(); child != nil; child = child.NextSibling() {
		if _, ok := child.(*ast.List); ok {
			continue
		}
		part := extractText(child, content)
		if part == "" {
			continue
		}
		if builder.Len() > 0 {
			builder.WriteString(" ")
		}
		builder.WriteString(part)
	}
	return builder.String()
}

// extractText collects the plain text of a node and its children.
func extractText(n ast.Node, content []byte) string {
	var builder strings.Builder
	_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := node.(type) {
		case *ast.Text:
			builder.Write(v.Segment.Value(content))
			if v.SoftLineBreak() || v.HardLineBreak() {
				builder.WriteString(" ")
			}
		case *ast.String:
			builder.Write(v.Value)
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(builder.String())
}
