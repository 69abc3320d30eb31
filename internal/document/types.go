// Package document defines the structured document model produced by the
// PDF conversion boundary and consumed by the chunker, plus the markdown
// parser that builds it.
package document

// ElementLabel is the closed set of structural labels recognized by the
// pipeline. Anything a parser cannot classify is labeled a paragraph.
type ElementLabel string

const (
	LabelHeading   ElementLabel = "heading"
	LabelParagraph ElementLabel = "paragraph"
	LabelList      ElementLabel = "list"
	LabelTable     ElementLabel = "table"
	LabelCode      ElementLabel = "code"
)

// Element is one structural unit of a converted document.
type Element struct {
	Label ElementLabel
	// Level is the heading level; zero for non-headings.
	Level int
	Text  string
	// Page is the originating page number. Zero means provenance is
	// unavailable.
	Page int
}

// Document is the ordered element sequence for one converted PDF. It is
// read-only to the chunker and discarded after chunking.
type Document struct {
	Elements []Element
}
