package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github/niyamr/legisrag/models"
)

// OllamaEmbedder generates embeddings through an Ollama-compatible HTTP
// endpoint. Transient failures (transport errors, 429, 5xx) are retried with
// exponential backoff; anything else is surfaced to the caller at once.
type OllamaEmbedder struct {
	httpClient *http.Client
	baseURL    string
	model      string

	maxAttempts int
	baseDelay   time.Duration
	maxDelay    time.Duration
}

// NewOllamaEmbedder creates an embedder against baseURL using model.
func NewOllamaEmbedder(client *http.Client, baseURL, model string) *OllamaEmbedder {
	return &OllamaEmbedder{
		httpClient:  client,
		baseURL:     baseURL,
		model:       model,
		maxAttempts: 3,
		baseDelay:   200 * time.Millisecond,
		maxDelay:    5 * time.Second,
	}
}

// Embed returns the embedding vector for text.
func (e *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	var lastErr error
	delay := e.baseDelay

	for attempt := 0; attempt < e.maxAttempts; attempt++ {
		vector, retryable, err := e.embedOnce(ctx, text)
		if err == nil {
			return vector, nil
		}
		lastErr = err
		if !retryable {
			return nil, err
		}
		if attempt == e.maxAttempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
		if delay > e.maxDelay {
			delay = e.maxDelay
		}
	}
	return nil, fmt.Errorf("embedding failed after %d attempts: %w", e.maxAttempts, lastErr)
}

// embedOnce performs a single call. The second return value reports whether
// the failure is worth retrying.
func (e *OllamaEmbedder) embedOnce(ctx context.Context, text string) ([]float32, bool, error) {
	reqBody, err := json.Marshal(models.OllamaEmbedRequest{
		Model:  e.model,
		Prompt: text,
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to marshal embed request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/api/embeddings", bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, false, fmt.Errorf("failed to create embed request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(httpReq)
	if err != nil {
		return nil, true, fmt.Errorf("failed to call embedding api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		retryable := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return nil, retryable, fmt.Errorf("embedding api returned status %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	var embedResp models.OllamaEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&embedResp); err != nil {
		return nil, false, fmt.Errorf("failed to decode embedding response: %w", err)
	}
	if len(embedResp.Embedding) == 0 {
		return nil, false, fmt.Errorf("embedding api returned an empty vector")
	}
	return embedResp.Embedding, false, nil
}
