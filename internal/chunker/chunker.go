// Package chunker segments a structured document into ordered chunks
// sized near the configured token target, carrying heading context,
// content type and page provenance for each chunk.
package chunker

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"pdfingest/internal/config"
	"pdfingest/internal/document"
	"pdfingest/internal/ingest"
)

const (
	// runesPerToken approximates the embedding tokenizer (~4 chars per
	// token), consistent with the token estimate used for stats.
	runesPerToken = 4
	// minChunkRunes is the threshold below which a chunk is merged into
	// its neighbor.
	minChunkRunes = 50
)

// Chunker converts documents into chunk sequences.
type Chunker struct {
	cfg config.ChunkingConfig
}

// New creates a chunker with the given chunking configuration.
func New(cfg config.ChunkingConfig) *Chunker {
	return &Chunker{cfg: cfg}
}

// headingInfo tracks one level of the heading hierarchy.
type headingInfo struct {
	level int
	text  string
}

// rawChunk is a chunk under construction, before size constraints and
// final indexing are applied.
type rawChunk struct {
	headingPath []string
	texts       []string
	labels      []string
	page        int
}

func (r *rawChunk) empty() bool {
	return len(r.texts) == 0
}

func (r *rawChunk) text() string {
	return strings.Join(r.texts, "\n\n")
}

// ChunkDocument segments doc into ordered chunks. The returned chunk
// indices form a contiguous range starting at 0 in emission order.
// A nil document or empty source filename is an invalid input; any other
// failure is reported as a chunking failure.
func (c *Chunker) ChunkDocument(doc *document.Document, sourceFile string) ([]ingest.Chunk, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: document must not be nil", ingest.ErrInvalidInput)
	}
	if sourceFile == "" {
		return nil, fmt.Errorf("%w: source filename must not be empty", ingest.ErrInvalidInput)
	}
	if c.cfg.TargetChunkSize <= 0 {
		return nil, fmt.Errorf("%w: target chunk size %d is not positive", ingest.ErrChunking, c.cfg.TargetChunkSize)
	}

	raw := c.buildSections(doc)
	raw = c.applySizeConstraints(raw)

	chunks := make([]ingest.Chunk, 0, len(raw))
	for i, r := range raw {
		text := strings.TrimSpace(r.text())
		if text == "" {
			continue
		}
		headingContext := ""
		if c.cfg.IncludeHeadingContext {
			headingContext = strings.Join(r.headingPath, " > ")
		}
		chunks = append(chunks, ingest.Chunk{
			Text:           text,
			SourceFile:     sourceFile,
			Index:          i,
			HeadingContext: headingContext,
			ContentType:    ingest.InferContentType(r.labels),
			PageNumber:     r.page,
		})
	}

	// Re-index after empty-text drops so indices stay contiguous.
	for i := range chunks {
		chunks[i].Index = i
	}
	return chunks, nil
}

// buildSections walks the element sequence, cutting a new section at each
// heading. Headings feed the heading stack only; their text never enters
// chunk content.
func (c *Chunker) buildSections(doc *document.Document) []rawChunk {
	var sections []rawChunk
	var stack []headingInfo
	current := rawChunk{}

	for _, element := range doc.Elements {
		if element.Label == document.LabelHeading {
			if !current.empty() {
				sections = append(sections, current)
			}
			for len(stack) > 0 && stack[len(stack)-1].level >= element.Level {
				stack = stack[:len(stack)-1]
			}
			stack = append(stack, headingInfo{level: element.Level, text: element.Text})
			current = rawChunk{headingPath: headingPath(stack)}
			continue
		}

		if strings.TrimSpace(element.Text) == "" {
			continue
		}
		if current.empty() && current.headingPath == nil {
			// Content before the first heading keeps an empty path.
			current.headingPath = []string{}
		}
		if current.empty() && element.Page > 0 {
			current.page = element.Page
		}
		current.texts = append(current.texts, element.Text)
		current.labels = append(current.labels, string(element.Label))
	}

	if !current.empty() {
		sections = append(sections, current)
	}
	return sections
}

func headingPath(stack []headingInfo) []string {
	path := make([]string, len(stack))
	for i, h := range stack {
		path[i] = h.text
	}
	return path
}

// applySizeConstraints merges undersized sections into their successor
// and splits oversized ones, keeping table-only chunks intact when
// configured.
func (c *Chunker) applySizeConstraints(sections []rawChunk) []rawChunk {
	if len(sections) == 0 {
		return sections
	}
	maxRunes := c.cfg.TargetChunkSize * runesPerToken

	var result []rawChunk
	i := 0
	for i < len(sections) {
		current := sections[i]

		// Merge small sections forward while the result stays in budget.
		for utf8.RuneCountInString(current.text()) < minChunkRunes && i+1 < len(sections) {
			next := sections[i+1]
			mergedRunes := utf8.RuneCountInString(current.text()) + utf8.RuneCountInString(next.text())
			if mergedRunes > maxRunes {
				break
			}
			current = mergeChunks(current, next)
			i++
		}

		if utf8.RuneCountInString(current.text()) > maxRunes && !c.keepIntact(current) {
			result = append(result, c.splitChunk(current, maxRunes)...)
		} else {
			result = append(result, current)
		}
		i++
	}
	return result
}

// keepIntact reports whether a chunk must not be split. Table-only
// chunks stay whole when KeepTablesIntact is set, even above the target
// size, so rows are never severed from their header.
func (c *Chunker) keepIntact(r rawChunk) bool {
	if !c.cfg.KeepTablesIntact || len(r.labels) == 0 {
		return false
	}
	for _, label := range r.labels {
		if label != string(document.LabelTable) {
			return false
		}
	}
	return true
}

// mergeChunks folds b into a. The merged chunk keeps a's page even when
// a has no provenance: page provenance always comes from the first
// contributing element.
func mergeChunks(a, b rawChunk) rawChunk {
	return rawChunk{
		headingPath: a.headingPath,
		texts:       append(append([]string{}, a.texts...), b.texts...),
		labels:      append(append([]string{}, a.labels...), b.labels...),
		page:        a.page,
	}
}

// splitChunk splits an oversized chunk at paragraph, newline or sentence
// boundaries, carrying the configured token overlap into each successor.
func (c *Chunker) splitChunk(r rawChunk, maxRunes int) []rawChunk {
	overlapRunes := c.cfg.ChunkOverlap * runesPerToken
	if overlapRunes >= maxRunes {
		overlapRunes = 0
	}

	runes := []rune(r.text())
	var splits []rawChunk
	start := 0
	for start < len(runes) {
		end := start + maxRunes
		if end >= len(runes) {
			splits = append(splits, r.withText(string(runes[start:])))
			break
		}

		window := string(runes[start:end])
		splitPoint := end
		if boundary := strings.LastIndex(window, "\n\n"); boundary != -1 {
			splitPoint = start + utf8.RuneCountInString(window[:boundary]) + 2
		} else if boundary := strings.LastIndex(window, "\n"); boundary != -1 {
			splitPoint = start + utf8.RuneCountInString(window[:boundary]) + 1
		} else if boundary := strings.LastIndex(window, ". "); boundary != -1 {
			splitPoint = start + utf8.RuneCountInString(window[:boundary]) + 2
		}
		if splitPoint <= start {
			splitPoint = end
		}

		splits = append(splits, r.withText(string(runes[start:splitPoint])))

		next := splitPoint - overlapRunes
		if next <= start {
			next = splitPoint
		}
		start = next
	}
	return splits
}

func (r rawChunk) withText(text string) rawChunk {
	return rawChunk{
		headingPath: r.headingPath,
		texts:       []string{strings.TrimSpace(text)},
		labels:      r.labels,
		page:        r.page,
	}
}
