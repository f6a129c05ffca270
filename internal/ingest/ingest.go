package ingest

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"

	"lci-chatbot/internal/chunker"
	"lci-chatbot/internal/contextutil"
	"lci-chatbot/internal/extract"
	"lci-chatbot/internal/storage"
	"lci-chatbot/internal/vectorstore"
)

// upsertBatchSize bounds the number of points sent to the vector index per
// upsert call.
const upsertBatchSize = 100

// Embedder maps texts to fixed-dimension vectors.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Report summarizes one ingestion run.
type Report struct {
	SourceFile string
	DocumentID string
	Extractor  string
	Chunks     int
	Tokens     int
	Vectors    int
}

// Pipeline runs the one-time/batch ingestion flow: extract document text,
// chunk it, embed the chunks, and persist both the vectors and the chunk
// records. Re-ingesting a source file replaces the previous generation
// wholesale, in the vector index and the database both.
type Pipeline struct {
	chunker    *chunker.Chunker
	embedder   Embedder
	store      vectorstore.VectorStore
	collection string
	docRepo    storage.DocumentStore
	chunkRepo  storage.ChunkStore
}

// NewPipeline creates an ingestion pipeline.
func NewPipeline(
	chk *chunker.Chunker,
	embedder Embedder,
	store vectorstore.VectorStore,
	collection string,
	docRepo storage.DocumentStore,
	chunkRepo storage.ChunkStore,
) *Pipeline {
	return &Pipeline{
		chunker:    chk,
		embedder:   embedder,
		store:      store,
		collection: collection,
		docRepo:    docRepo,
		chunkRepo:  chunkRepo,
	}
}

// Run ingests the document at path. The returned report reflects what was
// actually persisted.
func (p *Pipeline) Run(ctx context.Context, path string) (Report, error) {
	logger := contextutil.LoggerFromContext(ctx)
	sourceFile := filepath.Base(path)

	text, extractorName, err := extract.Text(path)
	if err != nil {
		return Report{}, fmt.Errorf("failed to extract %s: %w", sourceFile, err)
	}

	chunks := p.chunker.Build(ctx, text)
	if len(chunks) == 0 {
		logger.WarnContext(ctx, "document produced no chunks", "source_file", sourceFile)
		return Report{SourceFile: sourceFile, Extractor: extractorName}, nil
	}

	logger.InfoContext(ctx, "document chunked",
		"source_file", sourceFile,
		"extractor", extractorName,
		"chunks", len(chunks),
	)

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}

	vectors, err := p.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return Report{}, fmt.Errorf("failed to embed chunks: %w", err)
	}

	// A count mismatch between chunks and vectors would pair vectors with
	// the wrong payloads. Truncate both sides to the minimum; stale
	// uncorrelated pairs must never be served.
	if len(vectors) != len(chunks) {
		n := min(len(vectors), len(chunks))
		logger.WarnContext(ctx, "embedding count mismatch, truncating to minimum",
			"chunks", len(chunks),
			"vectors", len(vectors),
			"kept", n,
		)
		chunks = chunks[:n]
		vectors = vectors[:n]
	}

	if err := p.replaceGeneration(ctx, sourceFile); err != nil {
		return Report{}, err
	}

	stats := p.chunker.ComputeStats(chunks, sourceFile, extractorName)
	doc := &storage.DocumentRecord{
		ID:             uuid.New().String(),
		SourceFile:     sourceFile,
		Extractor:      extractorName,
		TotalChunks:    stats.TotalChunks,
		TotalTokens:    stats.TotalTokens,
		WindowSize:     stats.WindowSize,
		StepSize:       stats.StepSize,
		Overlap:        stats.Overlap,
		TokenPrecision: stats.CounterLevel,
	}
	if err := p.docRepo.Upsert(ctx, doc); err != nil {
		return Report{}, fmt.Errorf("failed to persist document: %w", err)
	}

	records := make([]*storage.ChunkRecord, len(chunks))
	points := make([]vectorstore.Point, len(chunks))
	for i, chunk := range chunks {
		id := uuid.New().String()
		records[i] = chunkRecord(id, doc.ID, chunk)
		points[i] = vectorstore.Point{
			ID:   id,
			Vec:  vectors[i],
			Meta: chunkPayload(chunk, sourceFile),
		}
	}

	if err := p.chunkRepo.InsertBatch(ctx, records); err != nil {
		return Report{}, fmt.Errorf("failed to persist chunks: %w", err)
	}

	for start := 0; start < len(points); start += upsertBatchSize {
		end := min(start+upsertBatchSize, len(points))
		if err := p.store.Upsert(ctx, p.collection, points[start:end]); err != nil {
			return Report{}, fmt.Errorf("failed to upsert vectors [%d:%d]: %w", start, end, err)
		}
	}

	logger.InfoContext(ctx, "ingestion completed",
		"source_file", sourceFile,
		"document_id", doc.ID,
		"chunks", len(chunks),
		"tokens", stats.TotalTokens,
	)

	return Report{
		SourceFile: sourceFile,
		DocumentID: doc.ID,
		Extractor:  extractorName,
		Chunks:     len(chunks),
		Tokens:     stats.TotalTokens,
		Vectors:    len(points),
	}, nil
}

// replaceGeneration removes the previous generation's vector points for a
// source file, if any. The database side is replaced by the document
// upsert's cascade.
func (p *Pipeline) replaceGeneration(ctx context.Context, sourceFile string) error {
	logger := contextutil.LoggerFromContext(ctx)

	prev, err := p.docRepo.GetBySourceFile(ctx, sourceFile)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to look up previous generation: %w", err)
	}

	ids, err := p.chunkRepo.ListIDsByDocument(ctx, prev.ID)
	if err != nil {
		return fmt.Errorf("failed to list previous generation chunks: %w", err)
	}
	if len(ids) == 0 {
		return nil
	}

	if err := p.store.Delete(ctx, p.collection, ids); err != nil {
		return fmt.Errorf("failed to delete previous generation vectors: %w", err)
	}

	logger.InfoContext(ctx, "previous generation removed",
		"source_file", sourceFile,
		"points", len(ids),
	)
	return nil
}

func chunkRecord(id, documentID string, chunk chunker.Chunk) *storage.ChunkRecord {
	return &storage.ChunkRecord{
		ID:              id,
		DocumentID:      documentID,
		ChunkID:         chunk.ID,
		Text:            chunk.Text,
		TokenCount:      chunk.TokenCount,
		CharCount:       chunk.CharCount,
		Preview:         chunk.Preview,
		SizeCategory:    chunk.SizeCategory,
		EstimatedPages:  chunk.EstimatedPages,
		HasTable:        chunk.HasTable,
		HasDefinition:   chunk.HasDefinition,
		HasExample:      chunk.HasExample,
		HasChapter:      chunk.HasChapter,
		HasNumberedList: chunk.HasNumberedList,
	}
}

// chunkPayload denormalizes chunk metadata into the vector point payload so
// query-time consumers never need a database round trip.
func chunkPayload(chunk chunker.Chunk, sourceFile string) map[string]any {
	return map[string]any{
		"chunk_id":            chunk.ID,
		"text":                chunk.Text,
		"token_count":         chunk.TokenCount,
		"char_count":          chunk.CharCount,
		"preview":             chunk.Preview,
		"chunk_size_category": chunk.SizeCategory,
		"source_file":         sourceFile,
		"has_table":           chunk.HasTable,
		"has_definition":      chunk.HasDefinition,
		"has_example":         chunk.HasExample,
		"has_chapter":         chunk.HasChapter,
		"has_numbered_list":   chunk.HasNumberedList,
	}
}
