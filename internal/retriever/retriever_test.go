package retriever

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"go.uber.org/mock/gomock"

	retrievermocks "lci-chatbot/internal/retriever/mocks"
	"lci-chatbot/internal/vectorstore"
	storemocks "lci-chatbot/internal/vectorstore/mocks"
)

const testCollection = "lci_knowledge_base"

func init() {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func newTestRetriever(t *testing.T, opts Options) (*Retriever, *retrievermocks.MockEmbedder, *storemocks.MockVectorStore) {
	t.Helper()
	ctrl := gomock.NewController(t)
	embedder := retrievermocks.NewMockEmbedder(ctrl)
	store := storemocks.NewMockVectorStore(ctrl)
	return New(embedder, store, testCollection, opts), embedder, store
}

func queryVector() [][]float32 {
	return [][]float32{{0.1, 0.2, 0.3}}
}

func TestSearch_MapsResults(t *testing.T) {
	r, embedder, store := newTestRetriever(t, Options{DefaultTopK: 3})
	ctx := context.Background()

	embedder.EXPECT().EmbedTexts(gomock.Any(), []string{"learning patterns"}).Return(queryVector(), nil)
	store.EXPECT().Search(gomock.Any(), testCollection, queryVector()[0], 2, float32(0.5), nil).Return([]vectorstore.SearchResult{
		{
			PointID: "p1",
			Score:   0.92,
			Meta: map[string]any{
				"chunk_id":    int64(7),
				"text":        "Sequence is the first learning pattern.",
				"source_file": "book.pdf",
			},
		},
		{
			PointID: "p2",
			Score:   0.81,
			Meta: map[string]any{
				"chunk_id":    int64(12),
				"text":        "Precision follows as the second pattern.",
				"source_file": "book.pdf",
			},
		},
	}, nil)

	results := r.Search(ctx, "learning patterns", 2, 0.5, nil)

	if len(results) != 2 {
		t.Fatalf("Search() returned %d results, want 2", len(results))
	}
	if results[0].ChunkID != 7 || results[0].Similarity != 0.92 {
		t.Errorf("results[0] = %+v, want chunk 7 score 0.92", results[0])
	}
	if results[0].Text != "Sequence is the first learning pattern." {
		t.Errorf("results[0].Text = %q", results[0].Text)
	}
	if results[1].SourceFile != "book.pdf" {
		t.Errorf("results[1].SourceFile = %q, want book.pdf", results[1].SourceFile)
	}
}

func TestSearch_DefaultTopK(t *testing.T) {
	r, embedder, store := newTestRetriever(t, Options{DefaultTopK: 3})
	ctx := context.Background()

	embedder.EXPECT().EmbedTexts(gomock.Any(), gomock.Any()).Return(queryVector(), nil)
	store.EXPECT().Search(gomock.Any(), testCollection, gomock.Any(), 3, float32(0), nil).Return(nil, nil)

	if results := r.Search(ctx, "anything", 0, 0, nil); len(results) != 0 {
		t.Errorf("Search() returned %d results, want 0", len(results))
	}
}

func TestSearch_SoftFailOnEmbedderError(t *testing.T) {
	r, embedder, _ := newTestRetriever(t, Options{DefaultTopK: 3})

	// The vector store must not be called when embedding fails.
	embedder.EXPECT().EmbedTexts(gomock.Any(), gomock.Any()).Return(nil, errors.New("connection refused"))

	results := r.Search(context.Background(), "query", 3, 0, nil)
	if results != nil {
		t.Errorf("Search() = %v, want nil on embedder failure", results)
	}
}

func TestSearch_SoftFailOnStoreError(t *testing.T) {
	r, embedder, store := newTestRetriever(t, Options{DefaultTopK: 3})

	embedder.EXPECT().EmbedTexts(gomock.Any(), gomock.Any()).Return(queryVector(), nil)
	store.EXPECT().Search(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, errors.New("qdrant unreachable"))

	results := r.Search(context.Background(), "query", 3, 0, nil)
	if results != nil {
		t.Errorf("Search() = %v, want nil on store failure", results)
	}
}

func TestSearch_FiltersForwarded(t *testing.T) {
	r, embedder, store := newTestRetriever(t, Options{DefaultTopK: 3})
	filters := map[string]any{"has_definition": true}

	embedder.EXPECT().EmbedTexts(gomock.Any(), gomock.Any()).Return(queryVector(), nil)
	store.EXPECT().Search(gomock.Any(), testCollection, gomock.Any(), 3, float32(0.2), filters).Return(nil, nil)

	r.Search(context.Background(), "definitions", 3, 0.2, filters)
}

func TestSearchWithContext(t *testing.T) {
	r, embedder, store := newTestRetriever(t, Options{DefaultTopK: 3})
	ctx := context.Background()

	embedder.EXPECT().EmbedTexts(gomock.Any(), gomock.Any()).Return(queryVector(), nil)
	store.EXPECT().Search(gomock.Any(), testCollection, gomock.Any(), 1, float32(0), nil).Return([]vectorstore.SearchResult{
		{
			PointID: "p5",
			Score:   0.9,
			Meta: map[string]any{
				"chunk_id":    int64(5),
				"text":        "the hit chunk",
				"source_file": "book.pdf",
			},
		},
	}, nil)

	// Preceding neighbor exists, following neighbor does not.
	store.EXPECT().Scroll(gomock.Any(), testCollection, map[string]any{
		"source_file": "book.pdf",
		"chunk_id":    4,
	}, 1).Return([]vectorstore.ScrollPoint{
		{PointID: "p4", Meta: map[string]any{"chunk_id": int64(4), "text": "the chunk before"}},
	}, nil)
	store.EXPECT().Scroll(gomock.Any(), testCollection, map[string]any{
		"source_file": "book.pdf",
		"chunk_id":    6,
	}, 1).Return(nil, nil)

	expanded := r.SearchWithContext(ctx, "query", 1, 0, 1)

	if len(expanded) != 1 {
		t.Fatalf("SearchWithContext() returned %d results, want 1", len(expanded))
	}
	if len(expanded[0].Before) != 1 || expanded[0].Before[0].Text != "the chunk before" {
		t.Errorf("Before = %+v, want one neighbor with text 'the chunk before'", expanded[0].Before)
	}
	if len(expanded[0].After) != 0 {
		t.Errorf("After = %+v, want empty for missing neighbor", expanded[0].After)
	}
}

func TestSearchWithContext_FirstChunkHasNoPredecessor(t *testing.T) {
	r, embedder, store := newTestRetriever(t, Options{DefaultTopK: 3})

	embedder.EXPECT().EmbedTexts(gomock.Any(), gomock.Any()).Return(queryVector(), nil)
	store.EXPECT().Search(gomock.Any(), testCollection, gomock.Any(), 1, float32(0), nil).Return([]vectorstore.SearchResult{
		{
			PointID: "p1",
			Score:   0.9,
			Meta: map[string]any{
				"chunk_id":    int64(1),
				"text":        "first chunk",
				"source_file": "book.pdf",
			},
		},
	}, nil)

	// Chunk ids start at 1, so only the following neighbor is looked up.
	store.EXPECT().Scroll(gomock.Any(), testCollection, map[string]any{
		"source_file": "book.pdf",
		"chunk_id":    2,
	}, 1).Return([]vectorstore.ScrollPoint{
		{PointID: "p2", Meta: map[string]any{"chunk_id": int64(2), "text": "second chunk"}},
	}, nil)

	expanded := r.SearchWithContext(context.Background(), "query", 1, 0, 1)

	if len(expanded) != 1 {
		t.Fatalf("SearchWithContext() returned %d results, want 1", len(expanded))
	}
	if len(expanded[0].Before) != 0 {
		t.Errorf("Before = %+v, want empty before first chunk", expanded[0].Before)
	}
	if len(expanded[0].After) != 1 {
		t.Errorf("After = %+v, want one neighbor", expanded[0].After)
	}
}

func TestMetaInt(t *testing.T) {
	tests := []struct {
		name string
		meta map[string]any
		want int
	}{
		{name: "int64", meta: map[string]any{"chunk_id": int64(9)}, want: 9},
		{name: "int", meta: map[string]any{"chunk_id": 4}, want: 4},
		{name: "float64", meta: map[string]any{"chunk_id": float64(3)}, want: 3},
		{name: "missing", meta: map[string]any{}, want: 0},
		{name: "wrong type", meta: map[string]any{"chunk_id": "7"}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := metaInt(tt.meta, "chunk_id"); got != tt.want {
				t.Errorf("metaInt() = %d, want %d", got, tt.want)
			}
		})
	}
}
