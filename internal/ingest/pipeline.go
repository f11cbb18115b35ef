package ingest

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_embedder.go -package=mocks github.com/Akshay-i95/edify-v3/internal/ingest Embedder

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Akshay-i95/edify-v3/internal/contextutil"
	"github.com/Akshay-i95/edify-v3/internal/namespace"
	"github.com/Akshay-i95/edify-v3/internal/storage"
	"github.com/Akshay-i95/edify-v3/internal/vectorstore"
)

// ErrInvalidDocument marks ingestion requests rejected before any store was
// touched.
var ErrInvalidDocument = errors.New("invalid document")

// Embedder abstracts the embeddings client for ingestion.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// ChunkInput is one pre-chunked document section submitted for indexing.
// Extraction and chunking happen upstream; the pipeline only embeds and
// stores.
type ChunkInput struct {
	ChunkIndex       int    `json:"chunk_index"`
	ContentType      string `json:"content_type,omitempty"`
	Grade            string `json:"grade,omitempty"`
	Department       string `json:"department,omitempty"`
	ExtractionMethod string `json:"extraction_method,omitempty"`
	VideoURL         string `json:"video_url,omitempty"`
	Text             string `json:"text"`
}

// Pipeline writes document chunks into both halves of the index: vector
// points for retrieval and relational records for neighbor expansion.
type Pipeline struct {
	embedder Embedder
	vectors  vectorstore.VectorStore
	records  storage.ChunkStore
}

// NewPipeline creates an ingestion pipeline.
func NewPipeline(embedder Embedder, vectors vectorstore.VectorStore, records storage.ChunkStore) *Pipeline {
	return &Pipeline{embedder: embedder, vectors: vectors, records: records}
}

// UpsertDocument replaces all chunks of a document. Any previously indexed
// chunks for the filename are removed first, so re-ingesting a document never
// leaves stale sections behind. Embeddings are generated in a single batch
// call. Returns the number of chunks indexed.
func (p *Pipeline) UpsertDocument(ctx context.Context, ns, filename string, chunks []ChunkInput) (int, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if !namespace.Valid(ns) {
		return 0, fmt.Errorf("%w: unknown namespace %q", ErrInvalidDocument, ns)
	}
	if strings.TrimSpace(filename) == "" {
		return 0, fmt.Errorf("%w: filename must not be empty", ErrInvalidDocument)
	}

	kept := make([]ChunkInput, 0, len(chunks))
	for _, c := range chunks {
		if strings.TrimSpace(c.Text) == "" {
			continue
		}
		kept = append(kept, c)
	}
	if len(kept) == 0 {
		return 0, fmt.Errorf("%w: document %s has no non-empty chunks", ErrInvalidDocument, filename)
	}

	if err := p.DeleteDocument(ctx, ns, filename); err != nil {
		return 0, fmt.Errorf("failed to clear existing chunks for %s: %w", filename, err)
	}

	texts := make([]string, len(kept))
	for i, c := range kept {
		texts[i] = c.Text
	}
	embeddings, err := p.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("failed to embed chunks: %w", err)
	}
	if len(embeddings) != len(kept) {
		return 0, fmt.Errorf("embedding count mismatch: expected %d, got %d", len(kept), len(embeddings))
	}

	points := make([]vectorstore.Point, len(kept))
	for i, c := range kept {
		id := uuid.New().String()

		record := &storage.ChunkRecord{
			ID:               id,
			Namespace:        ns,
			Filename:         filename,
			ChunkIndex:       c.ChunkIndex,
			ContentType:      c.ContentType,
			Grade:            c.Grade,
			Department:       c.Department,
			ExtractionMethod: c.ExtractionMethod,
			VideoURL:         c.VideoURL,
			Text:             c.Text,
		}
		if err := p.records.Insert(ctx, record); err != nil {
			return 0, fmt.Errorf("failed to insert chunk record: %w", err)
		}

		// Payload keys mirror the retrieval side, which lifts them back into
		// typed candidate fields.
		points[i] = vectorstore.Point{
			ID:  id,
			Vec: embeddings[i],
			Meta: map[string]any{
				"text":              c.Text,
				"filename":          filename,
				"chunk_index":       c.ChunkIndex,
				"content_type":      c.ContentType,
				"grade":             c.Grade,
				"department":        c.Department,
				"extraction_method": c.ExtractionMethod,
				"video_url":         c.VideoURL,
			},
		}
	}

	if err := p.vectors.Upsert(ctx, ns, points); err != nil {
		return 0, fmt.Errorf("failed to upsert vectors: %w", err)
	}

	logger.InfoContext(ctx, "document indexed",
		"namespace", ns, "filename", filename, "chunks", len(kept))
	return len(kept), nil
}

// DeleteDocument removes every chunk of a document from both stores.
func (p *Pipeline) DeleteDocument(ctx context.Context, ns, filename string) error {
	if !namespace.Valid(ns) {
		return fmt.Errorf("%w: unknown namespace %q", ErrInvalidDocument, ns)
	}
	if err := p.vectors.DeleteByFilename(ctx, ns, filename); err != nil {
		return fmt.Errorf("failed to delete vectors for %s: %w", filename, err)
	}
	if err := p.records.DeleteByFilename(ctx, ns, filename); err != nil {
		return fmt.Errorf("failed to delete chunk records for %s: %w", filename, err)
	}
	return nil
}
