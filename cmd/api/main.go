package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"

	"github.com/Akshay-i95/edify-v3/internal/blob"
	"github.com/Akshay-i95/edify-v3/internal/config"
	"github.com/Akshay-i95/edify-v3/internal/followup"
	"github.com/Akshay-i95/edify-v3/internal/http"
	"github.com/Akshay-i95/edify-v3/internal/ingest"
	"github.com/Akshay-i95/edify-v3/internal/llm"
	"github.com/Akshay-i95/edify-v3/internal/namespace"
	"github.com/Akshay-i95/edify-v3/internal/rag"
	"github.com/Akshay-i95/edify-v3/internal/retrieval"
	"github.com/Akshay-i95/edify-v3/internal/storage"
	"github.com/Akshay-i95/edify-v3/internal/vectorstore"
)

//go:generate swagger generate spec -o swagger.json

// General API information
//
// This API is the backend for the Edify educational portal chatbot. It answers
// questions with retrieval-augmented generation over namespaced curriculum and
// policy content, and exposes ingestion endpoints for index maintenance.
//
// swagger:meta
//
// ---
// swagger: '2.0'
// info:
//   title: Edify AI API
//   description: |
//     RAG (Retrieval-Augmented Generation) API for the Edify educational
//     portal. Ask questions against grade-banded knowledge bases and manage
//     the indexed documents behind them.
//   version: 3.0.0
// schemes:
//   - http
//   - https
// consumes:
//   - application/json
// produces:
//   - application/json

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

	chunkRepo := storage.NewChunkRepo(db)

	ctx := context.Background()

	// Initialize Qdrant vector store and ensure every namespace collection
	vectorStore, err := vectorstore.NewQdrantStore(cfg.QdrantURL)
	if err != nil {
		log.Fatalf("Failed to create Qdrant client: %v", err)
	}
	for _, ns := range namespace.All() {
		if err := vectorStore.EnsureNamespace(ctx, ns, cfg.EmbeddingSize); err != nil {
			log.Fatalf("Failed to ensure namespace %s: %v", ns, err)
		}
	}
	slog.Info("Qdrant namespaces ready", "count", len(namespace.All()), "vector_size", cfg.EmbeddingSize)

	// Validate embedding client vector size (fail-fast)
	embedder := llm.NewEmbeddingsClient(cfg.EmbeddingBaseURL, cfg.LLMAPIKey, cfg.EmbeddingModelName, cfg.EmbeddingSize)
	testEmbeddings, err := embedder.EmbedTexts(ctx, []string{"test"})
	if err != nil {
		log.Fatalf("Failed to validate embedding client: %v", err)
	}
	if len(testEmbeddings) == 0 || len(testEmbeddings[0]) != cfg.EmbeddingSize {
		log.Fatalf("Embedding vector size mismatch: expected %d, got %d", cfg.EmbeddingSize, len(testEmbeddings[0]))
	}
	slog.Info("Embedding client validated", "vector_size", cfg.EmbeddingSize)

	// Download URL issuance is optional; without a bucket, sources simply
	// carry no links.
	var urls blob.URLResolver = blob.Disabled{}
	if cfg.BlobBucket != "" {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.BlobRegion))
		if err != nil {
			log.Fatalf("Failed to load AWS configuration: %v", err)
		}
		urls = blob.NewS3Resolver(awsCfg, cfg.BlobBucket, time.Duration(cfg.BlobURLExpiryMin)*time.Minute)
		slog.Info("Blob URL resolver enabled", "bucket", cfg.BlobBucket, "region", cfg.BlobRegion)
	}

	llmClient := llm.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModelName)
	retriever := retrieval.New(embedder, vectorStore)
	detector := followup.NewDetector(
		embedder,
		cfg.Retrieval.FollowUpBaseThreshold,
		cfg.Retrieval.FollowUpThresholdStep,
		cfg.Retrieval.FollowUpThresholdCap,
	)

	engine, err := rag.NewEngine(retriever, llmClient, detector, chunkRepo, urls, cfg.Retrieval)
	if err != nil {
		log.Fatalf("Failed to create query engine: %v", err)
	}
	slog.Info("Query engine initialized")

	ingestPipeline := ingest.NewPipeline(embedder, vectorStore, chunkRepo)

	deps := &http.Deps{
		Engine:        engine,
		Ingest:        ingestPipeline,
		DB:            db,
		Vectors:       vectorStore,
		URLs:          urls,
		EmbeddingSize: cfg.EmbeddingSize,
	}
	router := http.NewRouter(deps)

	addr := ":" + cfg.APIPort
	server := &nethttp.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Shut down cleanly on SIGINT/SIGTERM so in-flight queries finish.
	shutdownCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-shutdownCtx.Done()
		slog.Info("Shutting down API server")
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(timeoutCtx); err != nil {
			slog.Error("Graceful shutdown failed", "error", err)
		}
	}()

	slog.Info("Starting API server", "addr", addr)
	slog.Debug("LLM configuration", "base_url", cfg.LLMBaseURL, "model", cfg.LLMModelName)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
		log.Fatalf("API server failed: %v", err)
	}
}
