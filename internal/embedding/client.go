// Package embedding provides a client for the remote embeddings endpoint and
// the cosine-similarity math used by the recommendation pipeline.
package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"
)

// DefaultTimeout is the embeddings request timeout.
const DefaultTimeout = 30 * time.Second

// Config holds the embeddings endpoint configuration.
type Config struct {
	APIURL    string
	APIKey    string
	Model     string
	Dimension int
	Timeout   time.Duration
}

// Client calls the remote embeddings endpoint. It is safe for concurrent use.
type Client struct {
	config     Config
	httpClient *http.Client
}

// NewClient creates an embeddings client from the given configuration.
func NewClient(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Client{
		config:     cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// Dimension returns the configured embedding dimensionality.
func (c *Client) Dimension() int {
	return c.config.Dimension
}

type embedRequest struct {
	Input string `json:"input"`
	Model string `json:"model"`
}

type embedResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
	Embedding []float64 `json:"embedding"`
}

// Embed generates an embedding vector for the given text. Transport and
// parse failures are returned to the caller, which decides whether the
// failure is fatal or degrades to a zero vector.
func (c *Client) Embed(ctx context.Context, text string) ([]float64, error) {
	payload, err := json.Marshal(embedRequest{Input: text, Model: c.config.Model})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal embedding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.APIURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read embedding response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embedding endpoint returned HTTP %d", resp.StatusCode)
	}

	var parsed embedResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse embedding response: %w", err)
	}

	// Response format: {"data": [{"embedding": [...]}]}, with a flat
	// {"embedding": [...]} accepted as a fallback.
	vector := parsed.Embedding
	if len(parsed.Data) > 0 && len(parsed.Data[0].Embedding) > 0 {
		vector = parsed.Data[0].Embedding
	}
	if len(vector) == 0 {
		return nil, fmt.Errorf("no embedding returned from endpoint")
	}

	return vector, nil
}

// CosineSimilarity returns the cosine similarity of two vectors clamped to
// [0, 1]. If either vector has zero norm (or the lengths differ) it returns 0.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}

	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	return math.Max(0, math.Min(1, sim))
}
