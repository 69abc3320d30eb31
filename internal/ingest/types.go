// Package ingest holds the chunk model and failure taxonomy shared by
// every stage of the ingestion pipeline. It is a leaf package so that the
// chunker, embedder, vector store and orchestrator can all classify
// failures without import cycles.
package ingest

// ContentType classifies what kind of document content a chunk carries.
type ContentType string

const (
	ContentTypeText  ContentType = "text"
	ContentTypeTable ContentType = "table"
	ContentTypeList  ContentType = "list"
)

// InferContentType maps the structural labels of a chunk's contributing
// elements to a ContentType. The label set is closed: "table" wins over
// "list", which wins over everything else; unrecognized labels fall back
// to text.
func InferContentType(labels []string) ContentType {
	hasList := false
	for _, label := range labels {
		switch label {
		case "table":
			return ContentTypeTable
		case "list":
			hasList = true
		}
	}
	if hasList {
		return ContentTypeList
	}
	return ContentTypeText
}

// Chunk is one unit of retrievable text produced by the chunker.
type Chunk struct {
	// Text is the non-empty chunk content.
	Text string
	// SourceFile is the originating filename, constant across one run.
	SourceFile string
	// Index is the zero-based position in emission order. Indices form a
	// contiguous range starting at 0 within one document.
	Index int
	// HeadingContext is the " > "-joined ancestor heading path, empty if
	// the chunk has no ancestor headings.
	HeadingContext string
	// ContentType is inferred from the labels of contributing elements.
	ContentType ContentType
	// PageNumber is the page of the first contributing element. Zero
	// means provenance is unavailable.
	PageNumber int
}

// Payload renders the chunk metadata as a vector store point payload.
// page_number is omitted entirely when provenance is absent.
func (c Chunk) Payload() map[string]any {
	payload := map[string]any{
		"text":            c.Text,
		"source_file":     c.SourceFile,
		"chunk_index":     int64(c.Index),
		"heading_context": c.HeadingContext,
		"content_type":    string(c.ContentType),
	}
	if c.PageNumber > 0 {
		payload["page_number"] = int64(c.PageNumber)
	}
	return payload
}
