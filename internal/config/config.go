package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	LLMBaseURL         string
	LLMModelName       string
	LLMAPIKey          string
	EmbeddingBaseURL   string
	EmbeddingModelName string
	EmbeddingSize      int
	DBPath             string
	QdrantURL          string
	APIPort            string
	LogLevel           slog.Level
	LogFormat          string

	// Blob storage (download URL issuance). Optional: when BlobBucket is
	// empty, download URLs are omitted from source listings.
	BlobBucket       string
	BlobRegion       string
	BlobURLExpiryMin int

	Retrieval RetrievalConfig
}

// RetrievalConfig carries the tunable constants of the retrieval pipeline.
// The defaults reproduce the behavior the heuristics were tuned for, but none
// of them is load-bearing; all can be overridden through the environment.
type RetrievalConfig struct {
	// Per-complexity search breadth.
	SimpleTopK        int
	ModerateTopK      int
	ComplexTopK       int
	SimpleMaxChunks   int
	ModerateMaxChunks int
	ComplexMaxChunks  int

	// Adaptive acceptance threshold: RelevanceFloor applies until
	// MinAcceptedChunks candidates have been accepted, then RelevanceBar.
	RelevanceFloor    float64
	RelevanceBar      float64
	MinAcceptedChunks int

	// Context assembly budgets. Truncation always happens at chunk
	// boundaries. TokenBudget of 0 disables token counting.
	ContextCharBudget  int
	ContextTokenBudget int

	// Follow-up detection: threshold = FollowUpBaseThreshold -
	// min(FollowUpThresholdCap, messages*FollowUpThresholdStep).
	FollowUpBaseThreshold float64
	FollowUpThresholdStep float64
	FollowUpThresholdCap  float64

	// Neighbor-chunk expansion radius (0 disables expansion).
	NeighborRadius int
}

// DefaultRetrieval returns the default retrieval tuning.
func DefaultRetrieval() RetrievalConfig {
	return RetrievalConfig{
		SimpleTopK:            15,
		ModerateTopK:          20,
		ComplexTopK:           25,
		SimpleMaxChunks:       10,
		ModerateMaxChunks:     12,
		ComplexMaxChunks:      15,
		RelevanceFloor:        0.15,
		RelevanceBar:          0.20,
		MinAcceptedChunks:     5,
		ContextCharBudget:     12000,
		ContextTokenBudget:    0,
		FollowUpBaseThreshold: 0.25,
		FollowUpThresholdStep: 0.02,
		FollowUpThresholdCap:  0.15,
		NeighborRadius:        1,
	}
}

// Load reads configuration from environment variables and returns a Config struct.
// It applies defaults for optional fields and validates required fields.
// If a .env file exists in the current directory or project root, it will be loaded automatically.
// Environment variables already set take precedence over .env file values.
func Load() (*Config, error) {
	_ = godotenv.Load() // Try current directory

	// Walk up to find project root (where go.mod is) for a .env file.
	wd, err := os.Getwd()
	if err == nil {
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
		LLMBaseURL:         getEnv("LLM_BASE_URL", "http://localhost:8080"),
		LLMModelName:       getEnv("LLM_MODEL", "llama-3.1-8b-instant"),
		LLMAPIKey:          getEnv("LLM_API_KEY", "dummy-key"),
		EmbeddingBaseURL:   getEnv("EMBEDDING_BASE_URL", "http://localhost:8081"),
		EmbeddingModelName: getEnv("EMBEDDING_MODEL_NAME", "all-MiniLM-L6-v2"),
		DBPath:             getEnv("DB_PATH", "./data/edify.db"),
		QdrantURL:          getEnv("QDRANT_URL", "http://localhost:6333"),
		APIPort:            getEnv("API_PORT", "9000"),
		LogFormat:          getEnv("LOG_FORMAT", "text"),
		BlobBucket:         getEnv("BLOB_BUCKET", ""),
		BlobRegion:         getEnv("BLOB_REGION", "us-east-1"),
		Retrieval:          DefaultRetrieval(),
	}

	// EMBEDDING_SIZE must match the output dimension of the embeddings model
	// (e.g. 384 for all-MiniLM-L6-v2). If it changes, every namespace
	// collection must be recreated.
	sizeStr := getEnv("EMBEDDING_SIZE", "")
	if sizeStr == "" {
		return nil, fmt.Errorf("EMBEDDING_SIZE is required")
	}
	size, err := strconv.Atoi(sizeStr)
	if err != nil {
		return nil, fmt.Errorf("EMBEDDING_SIZE must be a valid integer: %w", err)
	}
	if size <= 0 {
		return nil, fmt.Errorf("EMBEDDING_SIZE must be greater than 0")
	}
	cfg.EmbeddingSize = size

	cfg.BlobURLExpiryMin, err = getEnvInt("BLOB_URL_EXPIRY_MINUTES", 120)
	if err != nil {
		return nil, err
	}

	if err := loadRetrieval(&cfg.Retrieval); err != nil {
		return nil, err
	}

	cfg.LogLevel, err = parseLogLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}

	dataDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return cfg, nil
}

// loadRetrieval applies environment overrides to the retrieval tuning.
func loadRetrieval(rc *RetrievalConfig) error {
	var err error
	if rc.SimpleTopK, err = getEnvInt("SEARCH_TOP_K_SIMPLE", rc.SimpleTopK); err != nil {
		return err
	}
	if rc.ModerateTopK, err = getEnvInt("SEARCH_TOP_K_MODERATE", rc.ModerateTopK); err != nil {
		return err
	}
	if rc.ComplexTopK, err = getEnvInt("SEARCH_TOP_K_COMPLEX", rc.ComplexTopK); err != nil {
		return err
	}
	if rc.SimpleMaxChunks, err = getEnvInt("MAX_CHUNKS_SIMPLE", rc.SimpleMaxChunks); err != nil {
		return err
	}
	if rc.ModerateMaxChunks, err = getEnvInt("MAX_CHUNKS_MODERATE", rc.ModerateMaxChunks); err != nil {
		return err
	}
	if rc.ComplexMaxChunks, err = getEnvInt("MAX_CHUNKS_COMPLEX", rc.ComplexMaxChunks); err != nil {
		return err
	}
	if rc.MinAcceptedChunks, err = getEnvInt("MIN_ACCEPTED_CHUNKS", rc.MinAcceptedChunks); err != nil {
		return err
	}
	if rc.ContextCharBudget, err = getEnvInt("CONTEXT_CHAR_BUDGET", rc.ContextCharBudget); err != nil {
		return err
	}
	if rc.ContextTokenBudget, err = getEnvInt("CONTEXT_TOKEN_BUDGET", rc.ContextTokenBudget); err != nil {
		return err
	}
	if rc.NeighborRadius, err = getEnvInt("NEIGHBOR_RADIUS", rc.NeighborRadius); err != nil {
		return err
	}
	if rc.RelevanceFloor, err = getEnvFloat("RELEVANCE_FLOOR", rc.RelevanceFloor); err != nil {
		return err
	}
	if rc.RelevanceBar, err = getEnvFloat("RELEVANCE_BAR", rc.RelevanceBar); err != nil {
		return err
	}
	if rc.FollowUpBaseThreshold, err = getEnvFloat("FOLLOWUP_BASE_THRESHOLD", rc.FollowUpBaseThreshold); err != nil {
		return err
	}
	if rc.FollowUpThresholdStep, err = getEnvFloat("FOLLOWUP_THRESHOLD_STEP", rc.FollowUpThresholdStep); err != nil {
		return err
	}
	if rc.FollowUpThresholdCap, err = getEnvFloat("FOLLOWUP_THRESHOLD_CAP", rc.FollowUpThresholdCap); err != nil {
		return err
	}
	return nil
}

// TopKFor returns the search breadth for a complexity tier name.
func (rc RetrievalConfig) TopKFor(complexity string) int {
	switch complexity {
	case "SIMPLE":
		return rc.SimpleTopK
	case "COMPLEX":
		return rc.ComplexTopK
	default:
		return rc.ModerateTopK
	}
}

// MaxChunksFor returns the final chunk cap for a complexity tier name.
func (rc RetrievalConfig) MaxChunksFor(complexity string) int {
	switch complexity {
	case "SIMPLE":
		return rc.SimpleMaxChunks
	case "COMPLEX":
		return rc.ComplexMaxChunks
	default:
		return rc.ModerateMaxChunks
	}
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid LOG_LEVEL %q", s)
	}
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer: %w", key, err)
	}
	return n, nil
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid number: %w", key, err)
	}
	return f, nil
}
