package converter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdfingest/internal/config"
	"pdfingest/internal/document"
	"pdfingest/internal/ingest"
)

func writeTempPDF(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sample.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4 test"), 0644))
	return path
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := &config.Config{}
	cfg.PDF.ConverterURL = server.URL
	cfg.Chunking.TableFormat = document.TableFormatMarkdown
	return NewClient(cfg)
}

func TestConvertSuccess(t *testing.T) {
	var gotPath string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, r.ParseMultipartForm(1<<20))
		_, header, err := r.FormFile("file")
		require.NoError(t, err)
		assert.Equal(t, "sample.pdf", header.Filename)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": "success",
			"pages": []map[string]any{
				{"page": 1, "markdown": "# Title\n\nIntro paragraph."},
				{"page": 2, "markdown": "More text."},
			},
		})
	})

	doc, err := client.Convert(context.Background(), writeTempPDF(t))
	require.NoError(t, err)
	assert.Equal(t, "/v1/convert", gotPath)
	require.Len(t, doc.Elements, 3)

	assert.Equal(t, document.LabelHeading, doc.Elements[0].Label)
	assert.Equal(t, 1, doc.Elements[0].Page)
	assert.Equal(t, "More text.", doc.Elements[2].Text)
	assert.Equal(t, 2, doc.Elements[2].Page)
}

func TestConvertPartialStatusIsFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": "partial",
			"error":  "page 3 could not be parsed",
			"pages":  []map[string]any{{"page": 1, "markdown": "text"}},
		})
	})

	_, err := client.Convert(context.Background(), writeTempPDF(t))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ingest.ErrConversion))
	assert.Contains(t, err.Error(), "partial")
}

func TestConvertFailureStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "failure"})
	})

	_, err := client.Convert(context.Background(), writeTempPDF(t))
	assert.True(t, errors.Is(err, ingest.ErrConversion))
}

func TestConvertBadHTTPStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := client.Convert(context.Background(), writeTempPDF(t))
	assert.True(t, errors.Is(err, ingest.ErrConversion))
}

func TestConvertMissingFile(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request should be sent for a missing file")
	})

	_, err := client.Convert(context.Background(), filepath.Join(t.TempDir(), "missing.pdf"))
	assert.True(t, errors.Is(err, ingest.ErrConversion))
}

func TestConvertPageLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": "success",
			"pages": []map[string]any{
				{"page": 1, "markdown": "Page one."},
				{"page": 2, "markdown": "Page two."},
				{"page": 3, "markdown": "Page three."},
			},
		})
	}))
	t.Cleanup(server.Close)

	cfg := &config.Config{}
	cfg.PDF.ConverterURL = server.URL
	cfg.PDF.PageLimit = 2
	cfg.Chunking.TableFormat = document.TableFormatMarkdown

	doc, err := NewClient(cfg).Convert(context.Background(), writeTempPDF(t))
	require.NoError(t, err)
	require.Len(t, doc.Elements, 2)
	assert.Equal(t, 2, doc.Elements[1].Page)
}
