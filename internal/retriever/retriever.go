package retriever

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_embedder.go -package=mocks lci-chatbot/internal/retriever Embedder

import (
	"context"

	"lci-chatbot/internal/contextutil"
	"lci-chatbot/internal/vectorstore"
)

// Embedder maps texts to fixed-dimension vectors.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Result is one retrieved chunk with its similarity score and payload
// metadata.
type Result struct {
	ChunkID    int
	Text       string
	Similarity float32
	SourceFile string
	Meta       map[string]any
}

// Neighbor is an adjacent chunk attached as auxiliary context.
type Neighbor struct {
	ChunkID int
	Text    string
}

// ExpandedResult pairs a search hit with its adjacent chunks.
type ExpandedResult struct {
	Result
	Before []Neighbor
	After  []Neighbor
}

// Options tunes retrieval defaults. KeywordBoost is the hybrid blend
// weight, in [0, 1].
type Options struct {
	DefaultTopK    int
	KeywordBoost   float32
	ScoreThreshold float32
}

// Retriever answers top-K similarity queries over the chunk collection.
//
// Retrieval is soft-fail: an unreachable embedder or vector index yields an
// empty result set, never an error. Callers treat empty as "no retrieval
// available" and degrade to answering without context.
type Retriever struct {
	embedder   Embedder
	store      vectorstore.VectorStore
	collection string
	opts       Options
}

// New creates a retriever over the given collection.
func New(embedder Embedder, store vectorstore.VectorStore, collection string, opts Options) *Retriever {
	if opts.DefaultTopK <= 0 {
		opts.DefaultTopK = 3
	}
	return &Retriever{
		embedder:   embedder,
		store:      store,
		collection: collection,
		opts:       opts,
	}
}

// Search returns up to topK chunks most similar to the query, ordered by
// descending similarity, every entry scoring at least scoreThreshold and
// matching all exact-match metadata filters. topK of zero uses the
// configured default.
func (r *Retriever) Search(ctx context.Context, query string, topK int, scoreThreshold float32, filters map[string]any) []Result {
	logger := contextutil.LoggerFromContext(ctx)

	if topK <= 0 {
		topK = r.opts.DefaultTopK
	}

	vector, ok := r.embedQuery(ctx, query)
	if !ok {
		return nil
	}

	hits, err := r.store.Search(ctx, r.collection, vector, topK, scoreThreshold, filters)
	if err != nil {
		logger.WarnContext(ctx, "vector search unavailable, returning no context", "error", err)
		return nil
	}

	results := make([]Result, 0, len(hits))
	for _, hit := range hits {
		results = append(results, resultFromHit(hit))
	}

	logger.InfoContext(ctx, "vector search completed",
		"query_length", len(query),
		"results", len(results),
		"top_k", topK,
	)
	return results
}

// SearchWithContext runs Search and attaches up to windowOffset adjacent
// chunks on each side of every hit, scoped to the hit's source file.
// Missing neighbors are omitted.
func (r *Retriever) SearchWithContext(ctx context.Context, query string, topK int, scoreThreshold float32, windowOffset int) []ExpandedResult {
	logger := contextutil.LoggerFromContext(ctx)

	hits := r.Search(ctx, query, topK, scoreThreshold, nil)
	expanded := make([]ExpandedResult, 0, len(hits))

	for _, hit := range hits {
		item := ExpandedResult{Result: hit}
		for offset := windowOffset; offset >= 1; offset-- {
			if neighbor, ok := r.fetchNeighbor(ctx, hit.SourceFile, hit.ChunkID-offset); ok {
				item.Before = append(item.Before, neighbor)
			}
		}
		for offset := 1; offset <= windowOffset; offset++ {
			if neighbor, ok := r.fetchNeighbor(ctx, hit.SourceFile, hit.ChunkID+offset); ok {
				item.After = append(item.After, neighbor)
			}
		}
		expanded = append(expanded, item)
	}

	logger.DebugContext(ctx, "context window expansion completed",
		"hits", len(hits),
		"window_offset", windowOffset,
	)
	return expanded
}

func (r *Retriever) embedQuery(ctx context.Context, query string) ([]float32, bool) {
	logger := contextutil.LoggerFromContext(ctx)

	vectors, err := r.embedder.EmbedTexts(ctx, []string{query})
	if err != nil {
		logger.WarnContext(ctx, "embedding provider unavailable, returning no context", "error", err)
		return nil, false
	}
	if len(vectors) == 0 {
		logger.WarnContext(ctx, "embedding provider returned no vector for query")
		return nil, false
	}
	return vectors[0], true
}

func (r *Retriever) fetchNeighbor(ctx context.Context, sourceFile string, chunkID int) (Neighbor, bool) {
	if chunkID < 1 || sourceFile == "" {
		return Neighbor{}, false
	}

	logger := contextutil.LoggerFromContext(ctx)
	points, err := r.store.Scroll(ctx, r.collection, map[string]any{
		"source_file": sourceFile,
		"chunk_id":    chunkID,
	}, 1)
	if err != nil {
		logger.WarnContext(ctx, "neighbor lookup failed", "chunk_id", chunkID, "error", err)
		return Neighbor{}, false
	}
	if len(points) == 0 {
		return Neighbor{}, false
	}

	text, _ := points[0].Meta["text"].(string)
	return Neighbor{ChunkID: chunkID, Text: text}, true
}

func resultFromHit(hit vectorstore.SearchResult) Result {
	text, _ := hit.Meta["text"].(string)
	sourceFile, _ := hit.Meta["source_file"].(string)
	return Result{
		ChunkID:    metaInt(hit.Meta, "chunk_id"),
		Text:       text,
		Similarity: hit.Score,
		SourceFile: sourceFile,
		Meta:       hit.Meta,
	}
}

// metaInt reads an integer payload value regardless of the numeric type the
// store handed back.
func metaInt(meta map[string]any, key string) int {
	switch v := meta[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}
