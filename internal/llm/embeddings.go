package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// EmbeddingsClient generates dense vectors via an OpenAI-compatible
// embeddings API.
type EmbeddingsClient struct {
	Model        string
	ExpectedSize int // every returned vector is validated against this
	api          *openai.Client
}

// NewEmbeddingsClient creates a new embeddings client. expectedSize is the
// configured vector dimension; a response vector of any other length is
// rejected rather than truncated or padded.
func NewEmbeddingsClient(baseURL, apiKey, model string, expectedSize int, timeout time.Duration) *EmbeddingsClient {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = strings.TrimSuffix(baseURL, "/")
	cfg.HTTPClient = &http.Client{Timeout: timeout}

	return &EmbeddingsClient{
		Model:        model,
		ExpectedSize: expectedSize,
		api:          openai.NewClientWithConfig(cfg),
	}
}

// EmbedTexts generates embeddings for the given texts, one vector per input,
// in input order.
func (c *EmbeddingsClient) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("empty input array")
	}

	resp, err := c.api.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(c.Model),
		Input: texts,
	})
	if err != nil {
		return nil, fmt.Errorf("embeddings request failed: %w", err)
	}

	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(resp.Data))
	}

	result := make([][]float32, len(resp.Data))
	for i, data := range resp.Data {
		if len(data.Embedding) != c.ExpectedSize {
			return nil, fmt.Errorf("embedding %d has size %d, expected %d", i, len(data.Embedding), c.ExpectedSize)
		}
		vec := make([]float32, len(data.Embedding))
		copy(vec, data.Embedding)
		result[i] = vec
	}

	return result, nil
}
