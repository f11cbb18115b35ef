package retrieval

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_embedder.go -package=mocks github.com/Akshay-i95/edify-v3/internal/retrieval Embedder

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/Akshay-i95/edify-v3/internal/contextutil"
	"github.com/Akshay-i95/edify-v3/internal/query"
	"github.com/Akshay-i95/edify-v3/internal/vectorstore"
)

// Search strategy tags carried on candidates. When multiple strategies find
// the same chunk, the higher-priority strategy's tag and score win.
const (
	StrategyPrimary = "PRIMARY"
	StrategyKeyword = "KEYWORD"
	StrategyFuzzy   = "FUZZY"
)

// fuzzyScorePenalty discounts matches found through a corrected query, since
// the correction itself is a guess.
const fuzzyScorePenalty = 0.95

// Embedder abstracts the embeddings client for retrieval.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Candidate is a retrieved chunk with its retrieval provenance. The
// similarity score is the raw vector score; enhanced relevance is filled in
// later by the ranking stage.
type Candidate struct {
	ID                string
	Namespace         string
	Filename          string
	ChunkIndex        int
	ContentType       string
	Grade             string
	VideoURL          string
	Text              string
	SimilarityScore   float64
	EnhancedRelevance float64
	SearchStrategy    string
}

// Retriever runs multi-strategy vector retrieval against a single namespace.
type Retriever struct {
	embedder Embedder
	store    vectorstore.VectorStore
}

// New creates a Retriever.
func New(embedder Embedder, store vectorstore.VectorStore) *Retriever {
	return &Retriever{embedder: embedder, store: store}
}

// strategySpec is one planned search pass.
type strategySpec struct {
	name    string
	text    string
	limit   int
	penalty float64
}

// plan builds the strategy list for a query, in priority order.
// The primary semantic pass always runs. Category passes run for each
// detected category, a keyword pass runs when core keywords exist, and a
// fuzzy pass runs only when a correction actually changed the query.
func plan(processedQuery string, topK int) []strategySpec {
	specs := []strategySpec{
		{name: StrategyPrimary, text: processedQuery, limit: topK, penalty: 1.0},
	}

	for _, cat := range query.DetectCategories(processedQuery) {
		specs = append(specs, strategySpec{
			name:    cat.Name + "_BOOST",
			text:    processedQuery + " " + cat.BoostTerms,
			limit:   topK,
			penalty: 1.0,
		})
	}

	if keywords := query.CoreKeywords(processedQuery); len(keywords) > 0 {
		specs = append(specs, strategySpec{
			name:    StrategyKeyword,
			text:    strings.Join(keywords, " "),
			limit:   topK / 2,
			penalty: 1.0,
		})
	}

	if corrected, applied := query.FuzzyCorrect(processedQuery); applied {
		specs = append(specs, strategySpec{
			name:    StrategyFuzzy,
			text:    corrected,
			limit:   topK,
			penalty: fuzzyScorePenalty,
		})
	}

	return specs
}

// Retrieve runs all applicable strategies concurrently against the namespace
// and merges their results in strategy priority order. A chunk found by more
// than one strategy keeps the tag and score of the highest-priority strategy
// that found it. Individual strategy failures are logged and skipped; only a
// failing primary embedding call fails the whole retrieval.
func (r *Retriever) Retrieve(ctx context.Context, namespace, processedQuery string, topK int, filters map[string]any) ([]Candidate, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if topK <= 0 {
		return nil, fmt.Errorf("topK must be greater than 0")
	}

	specs := plan(processedQuery, topK)

	// One embeddings call covers every strategy's query text.
	texts := make([]string, len(specs))
	for i, spec := range specs {
		texts[i] = spec.text
	}
	vectors, err := r.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to embed strategy queries: %w", err)
	}
	if len(vectors) != len(specs) {
		return nil, fmt.Errorf("expected %d query vectors, got %d", len(specs), len(vectors))
	}

	// Fan out the searches; results come back slotted by strategy index so
	// the merge below stays in priority order.
	resultsBySpec := make([][]vectorstore.SearchResult, len(specs))
	var wg sync.WaitGroup
	for i, spec := range specs {
		wg.Add(1)
		go func(i int, spec strategySpec) {
			defer wg.Done()
			results, err := r.store.Search(ctx, namespace, vectors[i], spec.limit, filters)
			if err != nil {
				logger.WarnContext(ctx, "search strategy failed, skipping",
					"strategy", spec.name, "namespace", namespace, "error", err)
				return
			}
			resultsBySpec[i] = results
		}(i, spec)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var candidates []Candidate
	for i, spec := range specs {
		for _, result := range resultsBySpec[i] {
			if seen[result.PointID] {
				continue
			}
			seen[result.PointID] = true
			candidate := candidateFromResult(result, namespace)
			candidate.SearchStrategy = spec.name
			candidate.SimilarityScore *= spec.penalty
			candidates = append(candidates, candidate)
		}
	}

	logger.DebugContext(ctx, "retrieval completed",
		"namespace", namespace, "strategies", len(specs), "candidates", len(candidates))
	return candidates, nil
}

// candidateFromResult lifts payload metadata into typed candidate fields.
func candidateFromResult(result vectorstore.SearchResult, namespace string) Candidate {
	candidate := Candidate{
		ID:              result.PointID,
		Namespace:       namespace,
		Text:            result.Text,
		SimilarityScore: float64(result.Score),
	}
	if v, ok := result.Meta["filename"].(string); ok {
		candidate.Filename = v
	}
	switch v := result.Meta["chunk_index"].(type) {
	case int64:
		candidate.ChunkIndex = int(v)
	case float64:
		candidate.ChunkIndex = int(v)
	}
	if v, ok := result.Meta["content_type"].(string); ok {
		candidate.ContentType = v
	}
	if v, ok := result.Meta["grade"].(string); ok {
		candidate.Grade = v
	}
	if v, ok := result.Meta["video_url"].(string); ok {
		candidate.VideoURL = v
	}
	return candidate
}
