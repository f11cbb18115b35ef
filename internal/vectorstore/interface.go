package vectorstore

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_vector_store.go -package=mocks github.com/Akshay-i95/edify-v3/internal/vectorstore VectorStore

import "context"

// Point represents a vector point with metadata. The chunk text itself is
// carried in the payload so search results are self-contained.
type Point struct {
	ID   string
	Vec  []float32
	Meta map[string]any
}

// SearchResult represents a single match from a similarity search.
type SearchResult struct {
	PointID string
	Score   float32
	Text    string
	Meta    map[string]any
}

// VectorStore defines the interface for the namespace-partitioned vector
// index. A namespace is an independent partition: point IDs are unique only
// within a namespace, and queries never cross namespaces implicitly.
type VectorStore interface {
	// EnsureNamespace creates the namespace partition if it does not exist
	// and validates the vector size if it does.
	EnsureNamespace(ctx context.Context, namespace string, vectorSize int) error

	// Upsert inserts or updates points in the namespace.
	Upsert(ctx context.Context, namespace string, points []Point) error

	// Search performs a top-k cosine similarity search with optional
	// metadata filters (exact-match on payload fields such as "grade").
	Search(ctx context.Context, namespace string, query []float32, k int, filters map[string]any) ([]SearchResult, error)

	// DeleteByFilename removes every point belonging to a source document.
	// Used by the ingestion path for delete-then-reinsert updates.
	DeleteByFilename(ctx context.Context, namespace, filename string) error
}
