package main

import (
	"context"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"

	"lci-chatbot/internal/autofill"
	"lci-chatbot/internal/chat"
	"lci-chatbot/internal/config"
	"lci-chatbot/internal/http"
	"lci-chatbot/internal/llm"
	"lci-chatbot/internal/retriever"
	"lci-chatbot/internal/storage"
	"lci-chatbot/internal/vectorstore"
)

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Configure structured logging with configurable level and format
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)

	// Initialize database
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
	slog.Info("Database initialized", "path", cfg.DBPath)

	templateRepo := storage.NewTemplateRepo(db)
	canvasRepo := storage.NewCanvasRepo(db)

	// Initialize Qdrant vector store
	ctx := context.Background()
	vectorStore, err := vectorstore.NewQdrantStore(cfg.QdrantURL)
	if err != nil {
		log.Fatalf("Failed to create Qdrant client: %v", err)
	}

	// Ensure collection exists with correct vector size
	if err := vectorStore.EnsureCollection(ctx, cfg.QdrantCollection, cfg.EmbeddingDim); err != nil {
		log.Fatalf("Failed to ensure Qdrant collection: %v", err)
	}
	slog.Info("Qdrant collection ready", "collection", cfg.QdrantCollection, "vector_size", cfg.EmbeddingDim)

	// An unreachable embedding server degrades retrieval at request time
	// instead of blocking startup, so chat keeps answering without context.
	embedder := llm.NewEmbeddingsClient(cfg.EmbeddingBaseURL, cfg.EmbeddingAPIKey, cfg.EmbeddingModel, cfg.EmbeddingDim, cfg.LLMTimeout)
	if _, err := embedder.EmbedTexts(ctx, []string{"test"}); err != nil {
		slog.Warn("Embedding client not reachable, retrieval will be degraded", "error", err)
	} else {
		slog.Info("Embedding client validated", "vector_size", cfg.EmbeddingDim)
	}

	llmClient := llm.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, cfg.LLMProvider, cfg.LLMTimeout)

	chunkRetriever := retriever.New(embedder, vectorStore, cfg.QdrantCollection, retriever.Options{
		DefaultTopK:    cfg.DefaultTopK,
		KeywordBoost:   float32(cfg.KeywordBoost),
		ScoreThreshold: float32(cfg.ScoreThreshold),
	})

	autofillStore := autofill.NewStore()
	autofillService := autofill.NewService(llmClient, autofillStore)

	// Context providers run in this order for every chat turn.
	chatService := chat.NewService(
		llmClient,
		chat.NewHistoryStore(cfg.HistoryWindow),
		cfg.LLMProvider,
		chat.InlineProvider{},
		chat.TemplateProvider{Store: templateRepo},
		chat.CanvasProvider{Store: canvasRepo},
		chat.SearchProvider{
			Searcher:       chunkRetriever,
			DefaultTopK:    cfg.DefaultTopK,
			ScoreThreshold: float32(cfg.ScoreThreshold),
			KeywordBoost:   float32(cfg.KeywordBoost),
		},
		chat.IdentifierProvider{},
		chat.AutofillProvider{Store: autofillStore},
	)
	slog.Info("Chat service initialized", "provider", cfg.LLMProvider, "model", cfg.LLMModel)

	deps := &http.Deps{
		ChatService:     chatService,
		AutofillService: autofillService,
		AutofillStore:   autofillStore,
		Provider:        cfg.LLMProvider,
		Model:           cfg.LLMModel,
	}
	router := http.NewRouter(deps)

	// Start API server
	addr := ":" + cfg.APIPort
	slog.Info("Starting API server", "addr", addr)
	slog.Debug("LLM configuration", "base_url", cfg.LLMBaseURL, "model", cfg.LLMModel)
	if err := nethttp.ListenAndServe(addr, router); err != nil {
		log.Fatalf("API server failed to start: %v", err)
	}
}
