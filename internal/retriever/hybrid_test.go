package retriever

import (
	"context"
	"testing"

	"go.uber.org/mock/gomock"

	"lci-chatbot/internal/vectorstore"
)

func hybridHits() []vectorstore.SearchResult {
	return []vectorstore.SearchResult{
		{
			PointID: "p1",
			Score:   0.90,
			Meta: map[string]any{
				"chunk_id":    int64(1),
				"text":        "Completely unrelated prose about weather.",
				"source_file": "book.pdf",
			},
		},
		{
			PointID: "p2",
			Score:   0.80,
			Meta: map[string]any{
				"chunk_id":    int64(2),
				"text":        "Learning patterns shape how students approach tasks.",
				"source_file": "book.pdf",
			},
		},
	}
}

func TestHybridSearch_LexicalBoostReranks(t *testing.T) {
	r, embedder, store := newTestRetriever(t, Options{DefaultTopK: 3, KeywordBoost: 0.5})
	ctx := context.Background()

	// Over-fetches twice the requested top_k before re-ranking.
	embedder.EXPECT().EmbedTexts(gomock.Any(), gomock.Any()).Return(queryVector(), nil)
	store.EXPECT().Search(gomock.Any(), testCollection, gomock.Any(), 4, float32(0), nil).Return(hybridHits(), nil)

	// p1: blended = 0.5*0.90 + 0.5*0.0 = 0.45
	// p2: blended = 0.5*0.80 + 0.5*1.0 = 0.90
	results := r.HybridSearch(ctx, "learning patterns", 2, 0, nil)

	if len(results) != 2 {
		t.Fatalf("HybridSearch() returned %d results, want 2", len(results))
	}
	if results[0].ChunkID != 2 {
		t.Errorf("results[0].ChunkID = %d, want lexical match ranked first", results[0].ChunkID)
	}
	if results[1].ChunkID != 1 {
		t.Errorf("results[1].ChunkID = %d, want 1", results[1].ChunkID)
	}
}

func TestHybridSearch_ZeroBoostKeepsVectorOrder(t *testing.T) {
	r, embedder, store := newTestRetriever(t, Options{DefaultTopK: 3, KeywordBoost: 0})
	ctx := context.Background()

	embedder.EXPECT().EmbedTexts(gomock.Any(), gomock.Any()).Return(queryVector(), nil)
	store.EXPECT().Search(gomock.Any(), testCollection, gomock.Any(), 4, float32(0), nil).Return(hybridHits(), nil)

	results := r.HybridSearch(ctx, "learning patterns", 2, 0, nil)

	if len(results) != 2 {
		t.Fatalf("HybridSearch() returned %d results, want 2", len(results))
	}
	if results[0].ChunkID != 1 || results[1].ChunkID != 2 {
		t.Errorf("order = %d,%d, want vector order 1,2", results[0].ChunkID, results[1].ChunkID)
	}
}

func TestHybridSearch_TruncatesToTopK(t *testing.T) {
	r, embedder, store := newTestRetriever(t, Options{DefaultTopK: 3, KeywordBoost: 0.3})

	embedder.EXPECT().EmbedTexts(gomock.Any(), gomock.Any()).Return(queryVector(), nil)
	store.EXPECT().Search(gomock.Any(), testCollection, gomock.Any(), 2, float32(0), nil).Return(hybridHits(), nil)

	results := r.HybridSearch(context.Background(), "learning patterns", 1, 0, nil)
	if len(results) != 1 {
		t.Errorf("HybridSearch() returned %d results, want 1", len(results))
	}
}

func TestHybridSearch_SoftFailPropagates(t *testing.T) {
	r, embedder, _ := newTestRetriever(t, Options{DefaultTopK: 3, KeywordBoost: 0.3})

	embedder.EXPECT().EmbedTexts(gomock.Any(), gomock.Any()).Return(nil, context.DeadlineExceeded)

	if results := r.HybridSearch(context.Background(), "query", 3, 0, nil); results != nil {
		t.Errorf("HybridSearch() = %v, want nil when retrieval is unavailable", results)
	}
}

func TestLexicalOverlap(t *testing.T) {
	tests := []struct {
		name  string
		query string
		text  string
		want  float32
	}{
		{
			name:  "full overlap",
			query: "learning patterns",
			text:  "Learning patterns shape behavior.",
			want:  1.0,
		},
		{
			name:  "half overlap",
			query: "learning patterns",
			text:  "patterns of weather",
			want:  0.5,
		},
		{
			name:  "no overlap",
			query: "learning patterns",
			text:  "unrelated prose",
			want:  0,
		},
		{
			name:  "case insensitive",
			query: "SEQUENCE",
			text:  "sequence comes first",
			want:  1.0,
		},
		{
			name:  "duplicate query terms count once",
			query: "data data structure",
			text:  "data only here",
			want:  0.5,
		},
		{
			name:  "empty query",
			query: "",
			text:  "anything",
			want:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := lexicalOverlap(distinctTerms(tt.query), tt.text); got != tt.want {
				t.Errorf("lexicalOverlap(%q, %q) = %v, want %v", tt.query, tt.text, got, tt.want)
			}
		})
	}
}

func TestDistinctTerms(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{name: "simple", query: "learning patterns", want: []string{"learning", "patterns"}},
		{name: "duplicates removed", query: "the the cat", want: []string{"the", "cat"}},
		{name: "punctuation stripped", query: "what is LCI?", want: []string{"what", "is", "lci"}},
		{name: "empty", query: "", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := distinctTerms(tt.query)
			if len(got) != len(tt.want) {
				t.Fatalf("distinctTerms(%q) = %v, want %v", tt.query, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("distinctTerms(%q)[%d] = %q, want %q", tt.query, i, got[i], tt.want[i])
				}
			}
		})
	}
}
