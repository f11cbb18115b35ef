package rag

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_engine.go -package=mocks github.com/Akshay-i95/edify-v3/internal/rag Engine,Retriever,Generator,FollowUpDetector

import (
	"context"
	"fmt"
	"strings"

	"github.com/Akshay-i95/edify-v3/internal/blob"
	"github.com/Akshay-i95/edify-v3/internal/config"
	"github.com/Akshay-i95/edify-v3/internal/contextutil"
	"github.com/Akshay-i95/edify-v3/internal/followup"
	"github.com/Akshay-i95/edify-v3/internal/llm"
	"github.com/Akshay-i95/edify-v3/internal/namespace"
	"github.com/Akshay-i95/edify-v3/internal/query"
	"github.com/Akshay-i95/edify-v3/internal/ranking"
	"github.com/Akshay-i95/edify-v3/internal/retrieval"
	"github.com/Akshay-i95/edify-v3/internal/storage"
)

// neighborStrategy tags chunks pulled in by neighbor expansion rather than
// retrieval. They pad the context but never count as evidence.
const neighborStrategy = "NEIGHBOR"

// excerptLength bounds source excerpts in responses.
const excerptLength = 200

// Retriever runs multi-strategy retrieval against one namespace.
type Retriever interface {
	Retrieve(ctx context.Context, namespace, processedQuery string, topK int, filters map[string]any) ([]retrieval.Candidate, error)
}

// Generator is the generation gateway.
type Generator interface {
	Generate(ctx context.Context, userQuery, assembledContext string, history []llm.Message, role string) (llm.GenerationResult, error)
}

// FollowUpDetector scores conversational continuity.
type FollowUpDetector interface {
	Detect(ctx context.Context, currentQuery string, history []llm.Message) (followup.Result, error)
}

// Engine is the query-answering pipeline.
type Engine interface {
	// Query answers a question with retrieval-augmented generation.
	Query(ctx context.Context, req QueryRequest) (QueryResponse, error)
}

type engine struct {
	retriever Retriever
	generator Generator
	detector  FollowUpDetector
	chunks    storage.ChunkStore
	urls      blob.URLResolver
	scorer    *ranking.Scorer
	assembler *Assembler
	cfg       config.RetrievalConfig
}

// NewEngine creates the query engine.
func NewEngine(
	retriever Retriever,
	generator Generator,
	detector FollowUpDetector,
	chunks storage.ChunkStore,
	urls blob.URLResolver,
	cfg config.RetrievalConfig,
) (Engine, error) {
	assembler, err := NewAssembler(cfg.ContextCharBudget, cfg.ContextTokenBudget)
	if err != nil {
		return nil, WrapError(err, "failed to create context assembler")
	}
	if urls == nil {
		urls = blob.Disabled{}
	}
	return &engine{
		retriever: retriever,
		generator: generator,
		detector:  detector,
		chunks:    chunks,
		urls:      urls,
		scorer:    ranking.NewScorer(cfg.RelevanceFloor, cfg.RelevanceBar, cfg.MinAcceptedChunks),
		assembler: assembler,
		cfg:       cfg,
	}, nil
}

// Query runs the full pipeline: casual short-circuit, complexity
// classification, follow-up detection, preprocessing, namespace resolution,
// multi-strategy retrieval, scoring, diversity selection, neighbor expansion,
// assembly, generation, and confidence estimation. Every backend failure path
// ends in a natural-language answer; only malformed input and cancellation
// surface as errors.
func (e *engine) Query(ctx context.Context, req QueryRequest) (QueryResponse, error) {
	logger := contextutil.LoggerFromContext(ctx)

	original := strings.TrimSpace(req.Query)
	if original == "" {
		return QueryResponse{}, &ValidationError{Field: "query", Message: "query must not be empty"}
	}

	if isCasual, reply := query.DetectCasual(original); isCasual {
		logger.DebugContext(ctx, "casual query short-circuit")
		return QueryResponse{Answer: reply, Sources: []Source{}, Confidence: 1.0}, nil
	}

	complexity := query.Classify(original)
	logger.InfoContext(ctx, "query started",
		"complexity", complexity, "history_len", len(req.History), "role", req.Role)

	if len(req.Namespaces) > 0 {
		if allowed, denial := namespace.ValidateAccess(original, req.Namespaces); !allowed {
			logger.InfoContext(ctx, "grade access denied", "namespaces", req.Namespaces)
			return QueryResponse{
				Answer:     denial,
				Sources:    []Source{},
				Complexity: string(complexity),
			}, nil
		}
	}

	fu, err := e.detector.Detect(ctx, original, req.History)
	if err != nil {
		// The detector degrades internally; an error here is unexpected but
		// still must not block answering.
		logger.WarnContext(ctx, "follow-up detection failed", "error", err)
		fu = followup.Result{}
	}

	processed := query.Preprocess(original)
	searchQuery := followup.EnhanceQuery(processed, fu)

	targets := req.Namespaces
	if len(targets) == 0 {
		targets = []string{namespace.Resolve(original, processed)}
	}

	pool := e.retrieve(ctx, targets, searchQuery, complexity)
	if err := ctx.Err(); err != nil {
		return QueryResponse{}, err
	}

	maxChunks := e.cfg.MaxChunksFor(string(complexity))
	ranked := e.scorer.Rank(pool, searchQuery, maxChunks)
	selected := ranking.Select(ranked, maxChunks, strings.EqualFold(req.Role, "admin"))

	if len(selected) == 0 {
		logger.InfoContext(ctx, "no chunks accepted", "pool_size", len(pool))
		return QueryResponse{
			Answer:     NoResultsAnswer(fu.IsFollowUp),
			Sources:    []Source{},
			Confidence: ranking.Confidence(complexity, nil, 0),
			IsFollowUp: fu.IsFollowUp,
			Complexity: string(complexity),
			Namespaces: targets,
		}, nil
	}

	assembled := e.assembler.Assemble(e.expandNeighbors(ctx, selected))

	answer, model, err := e.generate(ctx, original, assembled, req.History, req.Role)
	if err != nil {
		return QueryResponse{}, err
	}

	scores := make([]float64, len(selected))
	for i, c := range selected {
		scores[i] = c.EnhancedRelevance
	}

	resp := QueryResponse{
		Answer:     answer,
		Sources:    e.formatSources(ctx, selected),
		Confidence: ranking.Confidence(complexity, scores, len(selected)),
		IsFollowUp: fu.IsFollowUp,
		Complexity: string(complexity),
		Namespaces: targets,
		ChunkCount: len(selected),
		Model:      model,
	}
	logger.InfoContext(ctx, "query completed",
		"chunks", resp.ChunkCount, "confidence", resp.Confidence, "is_follow_up", resp.IsFollowUp)
	return resp, nil
}

// retrieve fans the search query out across the target namespaces. A failing
// namespace contributes nothing; all-namespace failure is indistinguishable
// from empty evidence by design.
func (e *engine) retrieve(ctx context.Context, targets []string, searchQuery string, complexity query.Complexity) []retrieval.Candidate {
	logger := contextutil.LoggerFromContext(ctx)
	topK := e.cfg.TopKFor(string(complexity))

	var pool []retrieval.Candidate
	for _, ns := range targets {
		if !namespace.Valid(ns) {
			logger.WarnContext(ctx, "skipping unknown namespace", "namespace", ns)
			continue
		}
		candidates, err := e.retriever.Retrieve(ctx, ns, searchQuery, topK, nil)
		if err != nil {
			logger.WarnContext(ctx, "retrieval failed for namespace", "namespace", ns, "error", err)
			continue
		}
		pool = append(pool, candidates...)
	}
	return pool
}

// generate calls the generation gateway and validates its output, falling
// back to deterministic extraction from the assembled context when the model
// is unavailable or the answer fails validation. Only cancellation surfaces
// as an error.
func (e *engine) generate(ctx context.Context, userQuery, assembled string, history []llm.Message, role string) (string, string, error) {
	logger := contextutil.LoggerFromContext(ctx)

	result, err := e.generator.Generate(ctx, userQuery, assembled, history, role)
	if err != nil {
		if ctx.Err() != nil {
			return "", "", ctx.Err()
		}
		logger.WarnContext(ctx, "generation failed, using extraction fallback", "error", err)
		return e.fallbackAnswer(assembled), "", nil
	}

	if !ValidAnswer(result.Text, userQuery) {
		logger.WarnContext(ctx, "generated answer failed validation, using extraction fallback",
			"answer_length", len(result.Text))
		return e.fallbackAnswer(assembled), "", nil
	}

	return result.Text, result.Model, nil
}

func (e *engine) fallbackAnswer(assembled string) string {
	if fb := ExtractFallback(assembled); fb != "" {
		return fb
	}
	return NoResultsAnswer(false)
}

// expandNeighbors pulls adjacent chunks of each selected chunk from the
// record store so the generation context reads continuously across chunk
// boundaries. Expansion only pads the context; evidence counts, confidence,
// and sources stay based on the selected set.
func (e *engine) expandNeighbors(ctx context.Context, selected []retrieval.Candidate) []retrieval.Candidate {
	if e.cfg.NeighborRadius <= 0 || e.chunks == nil {
		return selected
	}
	logger := contextutil.LoggerFromContext(ctx)

	positionKey := func(ns, filename string, index int) string {
		return fmt.Sprintf("%s\x00%s\x00%d", ns, filename, index)
	}

	seen := make(map[string]bool, len(selected))
	for _, c := range selected {
		seen[positionKey(c.Namespace, c.Filename, c.ChunkIndex)] = true
	}

	expanded := make([]retrieval.Candidate, len(selected))
	copy(expanded, selected)
	for _, c := range selected {
		neighbors, err := e.chunks.Neighbors(ctx, c.Namespace, c.Filename, c.ChunkIndex, e.cfg.NeighborRadius)
		if err != nil {
			logger.WarnContext(ctx, "neighbor expansion failed",
				"filename", c.Filename, "chunk_index", c.ChunkIndex, "error", err)
			continue
		}
		for _, n := range neighbors {
			key := positionKey(n.Namespace, n.Filename, n.ChunkIndex)
			if seen[key] {
				continue
			}
			seen[key] = true
			expanded = append(expanded, retrieval.Candidate{
				ID:             n.ID,
				Namespace:      n.Namespace,
				Filename:       n.Filename,
				ChunkIndex:     n.ChunkIndex,
				ContentType:    n.ContentType,
				Grade:          n.Grade,
				VideoURL:       n.VideoURL,
				Text:           n.Text,
				SearchStrategy: neighborStrategy,
			})
		}
	}
	return expanded
}

// formatSources builds the per-document source list, best chunk per document,
// with display names and optional download URLs.
func (e *engine) formatSources(ctx context.Context, selected []retrieval.Candidate) []Source {
	logger := contextutil.LoggerFromContext(ctx)

	best := make(map[string]retrieval.Candidate)
	var order []string
	for _, c := range selected {
		existing, ok := best[c.Filename]
		if !ok {
			order = append(order, c.Filename)
			best[c.Filename] = c
		} else if c.EnhancedRelevance > existing.EnhancedRelevance {
			best[c.Filename] = c
		}
	}

	sources := make([]Source, 0, len(order))
	for _, filename := range order {
		c := best[filename]
		url, err := e.urls.ResolveURL(ctx, filename)
		if err != nil {
			logger.WarnContext(ctx, "failed to resolve download URL", "filename", filename, "error", err)
			url = ""
		}
		sources = append(sources, Source{
			Filename:    filename,
			DisplayName: displayName(filename),
			Score:       c.EnhancedRelevance,
			Excerpt:     excerpt(c.Text),
			DownloadURL: url,
			VideoURL:    c.VideoURL,
		})
	}
	return sources
}

// displayName turns a stored filename into a readable title:
// "assessment_guide_v2.pdf" becomes "Assessment Guide V2".
func displayName(filename string) string {
	name := filename
	if i := strings.LastIndex(name, "."); i > 0 {
		name = name[:i]
	}
	name = strings.NewReplacer("_", " ", "-", " ").Replace(name)
	words := strings.Fields(name)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// excerpt returns the start of a chunk, cut at a word boundary.
func excerpt(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	if len(text) <= excerptLength {
		return text
	}
	cut := text[:excerptLength]
	if i := strings.LastIndex(cut, " "); i > 0 {
		cut = cut[:i]
	}
	return cut + "..."
}
