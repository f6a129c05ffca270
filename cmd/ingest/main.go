package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"lci-chatbot/internal/chunker"
	"lci-chatbot/internal/config"
	"lci-chatbot/internal/ingest"
	"lci-chatbot/internal/llm"
	"lci-chatbot/internal/storage"
	"lci-chatbot/internal/vectorstore"
)

func main() {
	exportPath := flag.String("export", "", "write all indexed chunk payloads to this JSON file after ingesting")
	exportLimit := flag.Int("export-limit", 10000, "maximum number of points to export")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] [file...]\n\nIngests documents into the knowledge base. Flags:\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 && *exportPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel})
	slog.SetDefault(slog.New(handler))

	db, err := storage.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := storage.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	ctx := context.Background()
	vectorStore, err := vectorstore.NewQdrantStore(cfg.QdrantURL)
	if err != nil {
		log.Fatalf("Failed to create Qdrant client: %v", err)
	}
	if err := vectorStore.EnsureCollection(ctx, cfg.QdrantCollection, cfg.EmbeddingDim); err != nil {
		log.Fatalf("Failed to ensure Qdrant collection: %v", err)
	}

	embedder := llm.NewEmbeddingsClient(cfg.EmbeddingBaseURL, cfg.EmbeddingAPIKey, cfg.EmbeddingModel, cfg.EmbeddingDim, cfg.LLMTimeout)

	counter := chunker.NewTokenCounter()
	slog.Info("Token counter ready", "precision", counter.Precision())

	pipeline := ingest.NewPipeline(
		chunker.NewChunker(chunker.Params{
			WindowSize: cfg.ChunkWindowSize,
			StepSize:   cfg.ChunkStepSize,
			MinContent: cfg.ChunkMinChars,
			MinChunks:  cfg.ChunkMinTarget,
			MaxChunks:  cfg.ChunkMaxTarget,
		}, counter),
		embedder,
		vectorStore,
		cfg.QdrantCollection,
		storage.NewDocumentRepo(db),
		storage.NewChunkRepo(db),
	)

	failed := 0
	for _, path := range flag.Args() {
		report, err := pipeline.Run(ctx, path)
		if err != nil {
			slog.Error("Ingest failed", "path", path, "error", err)
			failed++
			continue
		}
		slog.Info("Ingest completed",
			"source_file", report.SourceFile,
			"extractor", report.Extractor,
			"chunks", report.Chunks,
			"tokens", report.Tokens,
			"vectors", report.Vectors,
		)
	}

	if *exportPath != "" {
		if err := exportChunks(ctx, vectorStore, cfg.QdrantCollection, *exportPath, *exportLimit); err != nil {
			log.Fatalf("Export failed: %v", err)
		}
	}

	if failed > 0 {
		os.Exit(1)
	}
}

// exportChunks scrolls the collection and writes every chunk payload to a
// JSON file for offline inspection.
func exportChunks(ctx context.Context, store vectorstore.VectorStore, collection, path string, limit int) error {
	points, err := store.Scroll(ctx, collection, nil, limit)
	if err != nil {
		return fmt.Errorf("failed to scroll collection: %w", err)
	}

	chunks := make([]map[string]any, 0, len(points))
	for _, point := range points {
		chunks = append(chunks, point.Meta)
	}

	payload, err := json.MarshalIndent(map[string]any{
		"collection": collection,
		"count":      len(chunks),
		"chunks":     chunks,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode export: %w", err)
	}

	if err := os.WriteFile(path, payload, 0644); err != nil {
		return fmt.Errorf("failed to write export file: %w", err)
	}
	slog.Info("Export written", "path", path, "chunks", len(chunks))
	return nil
}
