package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// embeddingsStub serves an OpenAI-compatible embeddings endpoint returning
// one vector of the given dimension per input text.
func embeddingsStub(t *testing.T, dim int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embeddings" {
			t.Errorf("unexpected path %q", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		var req struct {
			Input []string `json:"input"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)

		data := make([]map[string]any, len(req.Input))
		for i := range req.Input {
			vec := make([]float32, dim)
			for j := range vec {
				vec[j] = float32(i + 1)
			}
			data[i] = map[string]any{"object": "embedding", "index": i, "embedding": vec}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"object": "list", "data": data})
	}))
}

func TestEmbeddingsClient_EmbedTexts(t *testing.T) {
	srv := embeddingsStub(t, 384)
	defer srv.Close()

	client := NewEmbeddingsClient(srv.URL, "test-key", "all-MiniLM-L6-v2", 384, 5*time.Second)
	vectors, err := client.EmbedTexts(context.Background(), []string{"first chunk", "second chunk"})
	if err != nil {
		t.Fatalf("EmbedTexts() error = %v", err)
	}
	if len(vectors) != 2 {
		t.Fatalf("got %d vectors, want 2", len(vectors))
	}
	for i, vec := range vectors {
		if len(vec) != 384 {
			t.Errorf("vector %d has dim %d, want 384", i, len(vec))
		}
	}
	if vectors[0][0] != 1 || vectors[1][0] != 2 {
		t.Error("vectors not returned in input order")
	}
}

func TestEmbeddingsClient_EmbedTexts_DimensionMismatch(t *testing.T) {
	srv := embeddingsStub(t, 512)
	defer srv.Close()

	client := NewEmbeddingsClient(srv.URL, "test-key", "all-MiniLM-L6-v2", 384, 5*time.Second)
	if _, err := client.EmbedTexts(context.Background(), []string{"text"}); err == nil {
		t.Error("expected error for dimension mismatch, got nil")
	}
}

func TestEmbeddingsClient_EmbedTexts_EmptyInput(t *testing.T) {
	client := NewEmbeddingsClient("http://localhost:1", "test-key", "all-MiniLM-L6-v2", 384, time.Second)
	if _, err := client.EmbedTexts(context.Background(), nil); err == nil {
		t.Error("expected error for empty input, got nil")
	}
}

func TestEmbeddingsClient_EmbedTexts_Unreachable(t *testing.T) {
	client := NewEmbeddingsClient("http://127.0.0.1:1", "test-key", "all-MiniLM-L6-v2", 384, 500*time.Millisecond)
	if _, err := client.EmbedTexts(context.Background(), []string{"text"}); err == nil {
		t.Error("expected error for unreachable server, got nil")
	}
}
