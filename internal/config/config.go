package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	// LLM (Mistral or any OpenAI-compatible chat completions API)
	LLMBaseURL  string
	LLMModel    string
	LLMAPIKey   string
	LLMProvider string
	LLMTimeout  time.Duration

	// Embeddings (OpenAI-compatible embeddings API)
	EmbeddingBaseURL string
	EmbeddingModel   string
	EmbeddingAPIKey  string
	EmbeddingDim     int

	// Qdrant
	QdrantURL        string
	QdrantCollection string

	// SQLite
	DBPath string

	// Chunking
	ChunkWindowSize int
	ChunkOverlap    int
	ChunkStepSize   int
	ChunkMinChars   int
	ChunkMinTarget  int
	ChunkMaxTarget  int

	// Retrieval
	DefaultTopK    int
	KeywordBoost   float64
	ScoreThreshold float64

	// Conversation
	HistoryWindow int

	// Server
	APIPort   string
	LogLevel  slog.Level
	LogFormat string
}

// Load reads configuration from environment variables and returns a Config.
// A .env file in the current directory or a parent directory is loaded first;
// variables already set in the environment take precedence over .env values.
func Load() (*Config, error) {
	_ = godotenv.Load()

	// Walk up from the working directory looking for a .env at the project root.
	if wd, err := os.Getwd(); err == nil {
		dir := wd
		for i := 0; i < 5; i++ {
			envPath := filepath.Join(dir, ".env")
			if _, err := os.Stat(envPath); err == nil {
				_ = godotenv.Load(envPath)
				break
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}

	cfg := &Config{
		LLMBaseURL:  getEnv("LLM_BASE_URL", "https://api.mistral.ai/v1"),
		LLMModel:    getEnv("LLM_MODEL", "mistral-tiny"),
		LLMAPIKey:   getEnv("LLM_API_KEY", ""),
		LLMProvider: getEnv("LLM_PROVIDER", "mistral"),

		EmbeddingBaseURL: getEnv("EMBEDDING_BASE_URL", "http://localhost:8081/v1"),
		EmbeddingModel:   getEnv("EMBEDDING_MODEL", "all-MiniLM-L6-v2"),
		EmbeddingAPIKey:  getEnv("EMBEDDING_API_KEY", "dummy-key"),

		QdrantURL:        getEnv("QDRANT_URL", "http://localhost:6333"),
		QdrantCollection: getEnv("QDRANT_COLLECTION", "lci_knowledge_base"),

		DBPath: getEnv("DB_PATH", "./data/lci-chatbot.db"),

		APIPort:   getEnv("API_PORT", "8000"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}

	var err error
	if cfg.LLMTimeout, err = getDuration("LLM_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}

	// all-MiniLM-L6-v2 produces 384-dimension vectors. The collection is
	// created with this size and every embedding is validated against it.
	if cfg.EmbeddingDim, err = getInt("EMBEDDING_DIM", 384); err != nil {
		return nil, err
	}
	if cfg.EmbeddingDim <= 0 {
		return nil, fmt.Errorf("EMBEDDING_DIM must be greater than 0")
	}

	if cfg.ChunkWindowSize, err = getInt("CHUNK_WINDOW_SIZE", 2000); err != nil {
		return nil, err
	}
	if cfg.ChunkOverlap, err = getInt("CHUNK_OVERLAP", 300); err != nil {
		return nil, err
	}
	if cfg.ChunkStepSize, err = getInt("CHUNK_STEP_SIZE", 600); err != nil {
		return nil, err
	}
	if cfg.ChunkMinChars, err = getInt("CHUNK_MIN_CHARS", 50); err != nil {
		return nil, err
	}
	if cfg.ChunkMinTarget, err = getInt("CHUNK_MIN_TARGET", 300); err != nil {
		return nil, err
	}
	if cfg.ChunkMaxTarget, err = getInt("CHUNK_MAX_TARGET", 500); err != nil {
		return nil, err
	}
	if cfg.ChunkWindowSize <= 0 || cfg.ChunkStepSize <= 0 {
		return nil, fmt.Errorf("CHUNK_WINDOW_SIZE and CHUNK_STEP_SIZE must be greater than 0")
	}
	if cfg.ChunkStepSize > cfg.ChunkWindowSize {
		return nil, fmt.Errorf("CHUNK_STEP_SIZE must not exceed CHUNK_WINDOW_SIZE")
	}

	if cfg.DefaultTopK, err = getInt("DEFAULT_TOP_K", 3); err != nil {
		return nil, err
	}
	if cfg.DefaultTopK <= 0 {
		return nil, fmt.Errorf("DEFAULT_TOP_K must be greater than 0")
	}
	if cfg.KeywordBoost, err = getFloat("KEYWORD_BOOST", 0.3); err != nil {
		return nil, err
	}
	if cfg.KeywordBoost < 0 || cfg.KeywordBoost > 1 {
		return nil, fmt.Errorf("KEYWORD_BOOST must be in [0, 1]")
	}
	if cfg.ScoreThreshold, err = getFloat("SCORE_THRESHOLD", 0.0); err != nil {
		return nil, err
	}
	if cfg.ScoreThreshold < 0 || cfg.ScoreThreshold > 1 {
		return nil, fmt.Errorf("SCORE_THRESHOLD must be in [0, 1]")
	}

	if cfg.HistoryWindow, err = getInt("HISTORY_WINDOW", 10); err != nil {
		return nil, err
	}
	if cfg.HistoryWindow <= 0 {
		return nil, fmt.Errorf("HISTORY_WINDOW must be greater than 0")
	}

	switch getEnv("LOG_LEVEL", "info") {
	case "debug":
		cfg.LogLevel = slog.LevelDebug
	case "info":
		cfg.LogLevel = slog.LevelInfo
	case "warn":
		cfg.LogLevel = slog.LevelWarn
	case "error":
		cfg.LogLevel = slog.LevelError
	default:
		return nil, fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error")
	}

	if cfg.LLMAPIKey == "" {
		return nil, fmt.Errorf("LLM_API_KEY is required")
	}

	dataDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return cfg, nil
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer: %w", key, err)
	}
	return v, nil
}

func getFloat(key string, defaultValue float64) (float64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid number: %w", key, err)
	}
	return v, nil
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid duration: %w", key, err)
	}
	return v, nil
}
