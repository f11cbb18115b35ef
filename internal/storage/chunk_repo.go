package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_chunk_store.go -package=mocks github.com/Akshay-i95/edify-v3/internal/storage ChunkStore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a record is not found.
	ErrNotFound = errors.New("record not found")
)

// ChunkStore defines the interface for chunk record operations.
type ChunkStore interface {
	// Insert inserts a single chunk record.
	// The record ID must be set (UUID) before calling this method.
	Insert(ctx context.Context, chunk *ChunkRecord) error
	// DeleteByFilename deletes all chunk records for a document in a namespace.
	DeleteByFilename(ctx context.Context, namespace, filename string) error
	// GetByID gets a chunk record by its ID. Returns ErrNotFound if not found.
	GetByID(ctx context.Context, id string) (*ChunkRecord, error)
	// Neighbors returns the chunks within radius positions of chunkIndex in
	// the same document, ordered by chunk_index. The anchor chunk itself is
	// excluded.
	Neighbors(ctx context.Context, namespace, filename string, chunkIndex, radius int) ([]ChunkRecord, error)
}

// ChunkRepo provides methods for chunk record operations.
// It implements the ChunkStore interface.
type ChunkRepo struct {
	db *sql.DB
}

// NewChunkRepo creates a new ChunkRepo.
func NewChunkRepo(db *sql.DB) *ChunkRepo {
	return &ChunkRepo{db: db}
}

const chunkColumns = "id, namespace, filename, chunk_index, content_type, grade, department, extraction_method, video_url, text"

// Insert inserts a single chunk record.
// The record ID must be set (UUID) before calling this method.
func (r *ChunkRepo) Insert(ctx context.Context, chunk *ChunkRecord) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO chunks ("+chunkColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		chunk.ID, chunk.Namespace, chunk.Filename, chunk.ChunkIndex,
		chunk.ContentType, chunk.Grade, chunk.Department, chunk.ExtractionMethod,
		chunk.VideoURL, chunk.Text,
	)
	if err != nil {
		return fmt.Errorf("failed to insert chunk: %w", err)
	}
	return nil
}

// DeleteByFilename deletes all chunk records for a document in a namespace.
// Used when re-ingesting a document to remove old chunks before inserting
// new ones.
func (r *ChunkRepo) DeleteByFilename(ctx context.Context, namespace, filename string) error {
	_, err := r.db.ExecContext(ctx,
		"DELETE FROM chunks WHERE namespace = ? AND filename = ?",
		namespace, filename,
	)
	if err != nil {
		return fmt.Errorf("failed to delete chunks by filename: %w", err)
	}
	return nil
}

// GetByID gets a chunk record by its ID. Returns ErrNotFound if not found.
func (r *ChunkRepo) GetByID(ctx context.Context, id string) (*ChunkRecord, error) {
	var chunk ChunkRecord
	err := r.db.QueryRowContext(ctx,
		"SELECT "+chunkColumns+" FROM chunks WHERE id = ?",
		id,
	).Scan(&chunk.ID, &chunk.Namespace, &chunk.Filename, &chunk.ChunkIndex,
		&chunk.ContentType, &chunk.Grade, &chunk.Department, &chunk.ExtractionMethod,
		&chunk.VideoURL, &chunk.Text)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query chunk: %w", err)
	}

	return &chunk, nil
}

// Neighbors returns the chunks within radius positions of chunkIndex in the
// same document, ordered by chunk_index. The anchor chunk itself is excluded.
// Returns an empty slice if no neighbors exist (not an error).
func (r *ChunkRepo) Neighbors(ctx context.Context, namespace, filename string, chunkIndex, radius int) ([]ChunkRecord, error) {
	if radius <= 0 {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx,
		"SELECT "+chunkColumns+" FROM chunks WHERE namespace = ? AND filename = ? AND chunk_index BETWEEN ? AND ? AND chunk_index != ? ORDER BY chunk_index",
		namespace, filename, chunkIndex-radius, chunkIndex+radius, chunkIndex,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query neighbor chunks: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var neighbors []ChunkRecord
	for rows.Next() {
		var chunk ChunkRecord
		if err := rows.Scan(&chunk.ID, &chunk.Namespace, &chunk.Filename, &chunk.ChunkIndex,
			&chunk.ContentType, &chunk.Grade, &chunk.Department, &chunk.ExtractionMethod,
			&chunk.VideoURL, &chunk.Text); err != nil {
			return nil, fmt.Errorf("failed to scan neighbor chunk: %w", err)
		}
		neighbors = append(neighbors, chunk)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return neighbors, nil
}
