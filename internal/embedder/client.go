// Package embedder batch-converts chunk texts into fixed-dimension
// vectors through an OpenAI-compatible embeddings server, with an
// explicit process-lifetime model cache.
package embedder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"pdfingest/internal/config"
	"pdfingest/internal/contextutil"
	"pdfingest/internal/ingest"
)

// Client generates embeddings for batches of texts.
type Client struct {
	cfg    config.EmbeddingConfig
	cache  *ModelCache
	loader *Loader
	client *http.Client
}

// NewClient creates an embeddings client. The cache is owned by the
// caller so tests can construct a client with a fresh one.
func NewClient(cfg config.EmbeddingConfig, cache *ModelCache) *Client {
	return &Client{
		cfg:    cfg,
		cache:  cache,
		loader: NewLoader(cfg.BaseURL),
		client: &http.Client{Timeout: 120 * time.Second},
	}
}

type embeddingsRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingData struct {
	Embedding []float64 `json:"embedding"`
}

type embeddingsResponse struct {
	Data []embeddingData `json:"data"`
}

// GenerateEmbeddings produces one vector per input text, in input order,
// processed in batches of the configured batch size. Vectors are
// L2-normalized when the configuration requests it. An empty input is an
// invalid input; every other failure is an embedding failure.
func (c *Client) GenerateEmbeddings(ctx context.Context, texts []string, showProgress bool) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("%w: cannot generate embeddings for empty text list", ingest.ErrInvalidInput)
	}
	logger := contextutil.LoggerFromContext(ctx)

	if _, err := c.cache.Load(func() (*ModelHandle, error) {
		if err := c.loader.EnsureLoaded(ctx, c.cfg.ModelName, c.cfg.Device); err != nil {
			return nil, err
		}
		return &ModelHandle{Name: c.cfg.ModelName, Device: c.cfg.Device}, nil
	}); err != nil {
		return nil, fmt.Errorf("%w: loading model %q: %v", ingest.ErrEmbedding, c.cfg.ModelName, err)
	}

	batches := (len(texts) + c.cfg.BatchSize - 1) / c.cfg.BatchSize
	vectors := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += c.cfg.BatchSize {
		end := start + c.cfg.BatchSize
		if end > len(texts) {
			end = len(texts)
		}

		batch, err := c.embedBatch(ctx, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ingest.ErrEmbedding, err)
		}
		vectors = append(vectors, batch...)

		if showProgress {
			logger.InfoContext(ctx, "embedding progress",
				"batch", start/c.cfg.BatchSize+1, "batches", batches, "texts", len(vectors))
		}
	}
	return vectors, nil
}

// GenerateSingleEmbedding embeds one text via a single-element batch.
func (c *Client) GenerateSingleEmbedding(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("%w: cannot generate embedding for empty text", ingest.ErrInvalidInput)
	}
	vectors, err := c.GenerateEmbeddings(ctx, []string{text}, false)
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (c *Client) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	body, err := json.Marshal(embeddingsRequest{Model: c.cfg.ModelName, Input: texts})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/embeddings", c.cfg.BaseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("bad status %d: %s", resp.StatusCode, string(raw))
	}

	var decoded embeddingsResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(decoded.Data) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(decoded.Data))
	}

	vectors := make([][]float32, len(decoded.Data))
	for i, data := range decoded.Data {
		if len(data.Embedding) != c.cfg.VectorDimensions {
			return nil, fmt.Errorf("embedding %d has dimension %d, expected %d",
				i, len(data.Embedding), c.cfg.VectorDimensions)
		}
		vec := make([]float32, len(data.Embedding))
		for j, v := range data.Embedding {
			vec[j] = float32(v)
		}
		if c.cfg.NormalizeEmbeddings {
			normalize(vec)
		}
		vectors[i] = vec
	}
	return vectors, nil
}

// normalize scales vec to unit L2 norm in place. Zero vectors are left
// untouched.
func normalize(vec []float32) {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return
	}
	norm := float32(math.Sqrt(sum))
	for i := range vec {
		vec[i] /= norm
	}
}
