package document

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHeadingsAndParagraphs(t *testing.T) {
	parser := NewParser(TableFormatMarkdown)

	elements := parser.Parse([]byte("# Introduction\n\nFirst paragraph.\n\n## Details\n\nSecond paragraph."), 1)
	require.Len(t, elements, 4)

	assert.Equal(t, LabelHeading, elements[0].Label)
	assert.Equal(t, 1, elements[0].Level)
	assert.Equal(t, "Introduction", elements[0].Text)
	assert.Equal(t, 1, elements[0].Page)

	assert.Equal(t, LabelParagraph, elements[1].Label)
	assert.Equal(t, "First paragraph.", elements[1].Text)

	assert.Equal(t, LabelHeading, elements[2].Label)
	assert.Equal(t, 2, elements[2].Level)
	assert.Equal(t, "Details", elements[2].Text)

	assert.Equal(t, LabelParagraph, elements[3].Label)
	assert.Equal(t, "Second paragraph.", elements[3].Text)
}

func TestParseList(t *testing.T) {
	parser := NewParser(TableFormatMarkdown)

	elements := parser.Parse([]byte("- alpha\n- beta\n- gamma\n"), 2)
	require.Len(t, elements, 1)

	assert.Equal(t, LabelList, elements[0].Label)
	assert.Equal(t, "- alpha\n- beta\n- gamma", elements[0].Text)
	assert.Equal(t, 2, elements[0].Page)
}

func TestParseNestedList(t *testing.T) {
	parser := NewParser(TableFormatMarkdown)

	elements := parser.Parse([]byte("- outer\n  - inner one\n  - inner two\n"), 1)
	require.Len(t, elements, 1)
	assert.Equal(t, LabelList, elements[0].Label)

	lines := strings.Split(elements[0].Text, "\n")
	assert.Equal(t, []string{"- outer", "- inner one", "- inner two"}, lines)
}

func TestParseTableMarkdown(t *testing.T) {
	parser := NewParser(TableFormatMarkdown)

	markdown := "| Name | Value |\n| --- | --- |\n| a | 1 |\n| b | 2 |\n"
	elements := parser.Parse([]byte(markdown), 3)
	require.Len(t, elements, 1)

	assert.Equal(t, LabelTable, elements[0].Label)
	assert.Equal(t, "Name | Value\na | 1\nb | 2", elements[0].Text)
	assert.Equal(t, 3, elements[0].Page)
}

func TestParseTableHTML(t *testing.T) {
	parser := NewParser(TableFormatHTML)

	markdown := "| Name | Value |\n| --- | --- |\n| a | 1 |\n"
	elements := parser.Parse([]byte(markdown), 1)
	require.Len(t, elements, 1)

	assert.Equal(t, LabelTable, elements[0].Label)
	assert.Equal(t, "<table><tr><td>Name</td><td>Value</td></tr><tr><td>a</td><td>1</td></tr></table>", elements[0].Text)
}

func TestParseCodeBlock(t *testing.T) {
	parser := NewParser(TableFormatMarkdown)

	elements := parser.Parse([]byte("```\nfmt.Println(\"hi\")\n```\n"), 1)
	require.Len(t, elements, 1)
	assert.Equal(t, LabelCode, elements[0].Label)
	assert.Equal(t, "fmt.Println(\"hi\")", elements[0].Text)
}

func TestParseEmptyContent(t *testing.T) {
	parser := NewParser(TableFormatMarkdown)

	assert.Empty(t, parser.Parse(nil, 1))
	assert.Empty(t, parser.Parse([]byte("   \n\n  "), 1))
}

func TestParseZeroPageRecordsAbsentProvenance(t *testing.T) {
	parser := NewParser(TableFormatMarkdown)

	elements := parser.Parse([]byte("Plain text."), 0)
	require.Len(t, elements, 1)
	assert.Equal(t, 0, elements[0].Page)
}
