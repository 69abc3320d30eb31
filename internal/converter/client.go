// Package converter is the boundary to the external PDF conversion
// service. The service owns layout analysis and table detection; this
// client only uploads the file, checks the conversion status and parses
// the returned per-page markdown into the structured document model.
package converter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"pdfingest/internal/config"
	"pdfingest/internal/contextutil"
	"pdfingest/internal/document"
	"pdfingest/internal/ingest"
)

// Client converts PDF files through the conversion service.
type Client struct {
	baseURL   string
	pageLimit int
	parser    *document.Parser
	client    *http.Client
}

// NewClient creates a conversion client from the PDF and chunking config.
func NewClient(cfg *config.Config) *Client {
	return &Client{
		baseURL:   cfg.PDF.ConverterURL,
		pageLimit: cfg.PDF.PageLimit,
		parser:    document.NewParser(cfg.Chunking.TableFormat),
		client:    &http.Client{Timeout: 120 * time.Second},
	}
}

// convertResponse is the conversion service response. Status is one of
// "success", "partial" or "failure"; anything but "success" is treated as
// a conversion failure.
type convertResponse struct {
	Status string        `json:"status"`
	Error  string        `json:"error,omitempty"`
	Pages  []convertPage `json:"pages"`
}

type convertPage struct {
	Page     int    `json:"page"`
	Markdown string `json:"markdown"`
}

// Convert uploads the PDF at path and returns the structured document.
func (c *Client) Convert(ctx context.Context, path string) (*document.Document, error) {
	logger := contextutil.LoggerFromContext(ctx)

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %v", ingest.ErrConversion, path, err)
	}
	defer func() {
		_ = file.Close()
	}()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("%w: building upload: %v", ingest.ErrConversion, err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ingest.ErrConversion, path, err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("%w: building upload: %v", ingest.ErrConversion, err)
	}

	url := fmt.Sprintf("%s/v1/convert", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return nil, fmt.Errorf("%w: creating request: %v", ingest.ErrConversion, err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: sending request: %v", ingest.ErrConversion, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: bad status %d: %s", ingest.ErrConversion, resp.StatusCode, string(raw))
	}

	var converted convertResponse
	if err := json.NewDecoder(resp.Body).Decode(&converted); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", ingest.ErrConversion, err)
	}

	// A partial conversion is not usable output.
	if converted.Status != "success" {
		if converted.Error != "" {
			return nil, fmt.Errorf("%w: status %q: %s", ingest.ErrConversion, converted.Status, converted.Error)
		}
		return nil, fmt.Errorf("%w: status %q", ingest.ErrConversion, converted.Status)
	}

	doc := &document.Document{}
	for i, page := range converted.Pages {
		if c.pageLimit > 0 && i >= c.pageLimit {
			break
		}
		doc.Elements = append(doc.Elements, c.parser.Parse([]byte(page.Markdown), page.Page)...)
	}

	logger.InfoContext(ctx, "converted pdf",
		"path", path, "pages", len(converted.Pages), "elements", len(doc.Elements))
	return doc, nil
}
