package vectorstore

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_vector_store.go -package=mocks lci-chatbot/internal/vectorstore VectorStore

import "context"

// Point represents a vector point with metadata.
type Point struct {
	ID   string
	Vec  []float32
	Meta map[string]any
}

// SearchResult represents a search result from vector search.
type SearchResult struct {
	PointID string
	Score   float32
	Meta    map[string]any
}

// ScrollPoint represents a point returned by a payload scroll (no score).
type ScrollPoint struct {
	PointID string
	Meta    map[string]any
}

// VectorStore defines the interface for vector storage operations.
type VectorStore interface {
	// Upsert inserts or updates points in the collection.
	Upsert(ctx context.Context, collection string, points []Point) error

	// Search performs a similarity search. Results are ordered by descending
	// score, contain at most k entries, and every entry scores at least
	// scoreThreshold. Filters are exact-match payload conditions, all of
	// which must hold.
	Search(ctx context.Context, collection string, query []float32, k int, scoreThreshold float32, filters map[string]any) ([]SearchResult, error)

	// Scroll returns up to limit points matching the filters, payload only.
	// Used for neighbor lookups and full exports.
	Scroll(ctx context.Context, collection string, filters map[string]any, limit int) ([]ScrollPoint, error)

	// Delete removes points by their IDs.
	Delete(ctx context.Context, collection string, ids []string) error
}
