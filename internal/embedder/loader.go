package embedder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Loader loads models into the embeddings server via its /models/load
// endpoint and waits for the load to complete.
type Loader struct {
	baseURL      string
	client       *http.Client
	pollInterval time.Duration
	maxAttempts  int
}

// NewLoader creates a model loader for the given server.
func NewLoader(baseURL string) *Loader {
	return &Loader{
		baseURL:      baseURL,
		client:       &http.Client{Timeout: 30 * time.Second},
		pollInterval: time.Second,
		maxAttempts:  30,
	}
}

type loadModelRequest struct {
	Model  string `json:"model"`
	Device string `json:"device,omitempty"`
}

type loadModelResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type modelStatus struct {
	ID      string `json:"id"`
	InCache bool   `json:"in_cache"`
	Status  struct {
		Value    string `json:"value"`
		ExitCode *int   `json:"exit_code,omitempty"`
		Failed   *bool  `json:"failed,omitempty"`
	} `json:"status"`
}

type modelsResponse struct {
	Data []modelStatus `json:"data"`
}

// IsLoaded checks whether the model is already resident on the server.
func (l *Loader) IsLoaded(ctx context.Context, modelName string) (bool, error) {
	models, err := l.listModels(ctx)
	if err != nil {
		return false, err
	}
	for _, model := range models.Data {
		if model.ID == modelName {
			return model.InCache, nil
		}
	}
	return false, nil
}

// EnsureLoaded loads the model if it is not already resident, then polls
// until the server reports it in cache or failed. The load endpoint
// acknowledges immediately; actual loading is asynchronous.
func (l *Loader) EnsureLoaded(ctx context.Context, modelName, device string) error {
	loaded, err := l.IsLoaded(ctx, modelName)
	if err == nil && loaded {
		return nil
	}
	// A status check failure here may be transient; the load attempt
	// below will surface a real connectivity problem.

	body, err := json.Marshal(loadModelRequest{Model: modelName, Device: device})
	if err != nil {
		return fmt.Errorf("failed to marshal load request: %w", err)
	}

	url := fmt.Sprintf("%s/models/load", l.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create load request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send load request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("bad status %d: %s", resp.StatusCode, string(raw))
	}

	var loadResp loadModelResponse
	if err := json.NewDecoder(resp.Body).Decode(&loadResp); err != nil {
		return fmt.Errorf("failed to decode load response: %w", err)
	}
	if !loadResp.Success {
		return fmt.Errorf("model load failed: %s", loadResp.Error)
	}

	return l.waitForModel(ctx, modelName)
}

func (l *Loader) waitForModel(ctx context.Context, modelName string) error {
	for attempt := 0; attempt < l.maxAttempts; attempt++ {
		models, err := l.listModels(ctx)
		if err == nil {
			for _, model := range models.Data {
				if model.ID != modelName {
					continue
				}
				if model.InCache {
					return nil
				}
				if model.Status.Failed != nil && *model.Status.Failed {
					exitCode := 0
					if model.Status.ExitCode != nil {
						exitCode = *model.Status.ExitCode
					}
					return fmt.Errorf("model load failed with exit code %d", exitCode)
				}
				break
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(l.pollInterval):
		}
	}
	return fmt.Errorf("model %s did not load within %d attempts", modelName, l.maxAttempts)
}

func (l *Loader) listModels(ctx context.Context) (*modelsResponse, error) {
	url := fmt.Sprintf("%s/models", l.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create status request: %w", err)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to check model status: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("bad status %d: %s", resp.StatusCode, string(raw))
	}

	var models modelsResponse
	if err := json.NewDecoder(resp.Body).Decode(&models); err != nil {
		return nil, fmt.Errorf("failed to decode models response: %w", err)
	}
	return &models, nil
}
