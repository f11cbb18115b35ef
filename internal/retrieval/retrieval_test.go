package retrieval

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/Akshay-i95/edify-v3/internal/vectorstore"
)

type fakeEmbedder struct {
	err error
}

func (f *fakeEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	vecs := make([][]float32, len(texts))
	for i := range texts {
		vecs[i] = []float32{float32(i), 1}
	}
	return vecs, nil
}

// fakeStore returns canned results keyed by the strategy index encoded in the
// query vector's first component.
type fakeStore struct {
	mu        sync.Mutex
	results   map[int][]vectorstore.SearchResult
	failSlots map[int]bool
	calls     []searchCall
}

type searchCall struct {
	namespace string
	slot      int
	k         int
}

func (f *fakeStore) Search(ctx context.Context, namespace string, query []float32, k int, filters map[string]any) ([]vectorstore.SearchResult, error) {
	slot := int(query[0])
	f.mu.Lock()
	f.calls = append(f.calls, searchCall{namespace: namespace, slot: slot, k: k})
	f.mu.Unlock()
	if f.failSlots[slot] {
		return nil, errors.New("search unavailable")
	}
	return f.results[slot], nil
}

func (f *fakeStore) EnsureNamespace(ctx context.Context, namespace string, vectorSize int) error {
	return nil
}

func (f *fakeStore) Upsert(ctx context.Context, namespace string, points []vectorstore.Point) error {
	return nil
}

func (f *fakeStore) DeleteByFilename(ctx context.Context, namespace, filename string) error {
	return nil
}

func result(id, filename string, score float32) vectorstore.SearchResult {
	return vectorstore.SearchResult{
		PointID: id,
		Score:   score,
		Text:    "text for " + id,
		Meta:    map[string]any{"filename": filename, "chunk_index": int64(0)},
	}
}

func TestRetrievePrimaryOnly(t *testing.T) {
	store := &fakeStore{results: map[int][]vectorstore.SearchResult{
		0: {result("a", "a.pdf", 0.9), result("b", "b.pdf", 0.8)},
	}}
	r := New(&fakeEmbedder{}, store)

	got, err := r.Retrieve(context.Background(), "kb-msp", "lesson plan structure", 10, nil)
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(got))
	}
	if got[0].SearchStrategy != StrategyPrimary {
		t.Errorf("strategy = %q, want %q", got[0].SearchStrategy, StrategyPrimary)
	}
	if got[0].Namespace != "kb-msp" {
		t.Errorf("namespace = %q, want kb-msp", got[0].Namespace)
	}
}

func TestRetrieveFirstStrategyWins(t *testing.T) {
	// "assesment" triggers the fuzzy pass; chunk "a" appears in both the
	// primary and fuzzy results and must keep the primary tag and score.
	store := &fakeStore{results: map[int][]vectorstore.SearchResult{
		0: {result("a", "a.pdf", 0.9)},
	}}
	q := "assesment criteria documentation overview summary information"
	r := New(&fakeEmbedder{}, store)

	// Mirror results into every slot so the duplicate shows up everywhere.
	specs := plan(q, 10)
	for i := 1; i < len(specs); i++ {
		store.results[i] = []vectorstore.SearchResult{result("a", "a.pdf", 0.7)}
	}

	got, err := r.Retrieve(context.Background(), "kb-msp", q, 10, nil)
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 deduplicated candidate, got %d", len(got))
	}
	if got[0].SearchStrategy != StrategyPrimary {
		t.Errorf("strategy = %q, want %q", got[0].SearchStrategy, StrategyPrimary)
	}
	if got[0].SimilarityScore != 0.9 {
		t.Errorf("score = %v, want 0.9 (primary score, no penalty)", got[0].SimilarityScore)
	}
}

func TestRetrieveFuzzyPenalty(t *testing.T) {
	q := "assesment criteria documentation overview summary information"
	specs := plan(q, 10)

	fuzzySlot := -1
	for i, spec := range specs {
		if spec.name == StrategyFuzzy {
			fuzzySlot = i
		}
	}
	if fuzzySlot < 0 {
		t.Fatal("expected a fuzzy strategy for a misspelled query")
	}

	store := &fakeStore{results: map[int][]vectorstore.SearchResult{
		fuzzySlot: {result("f", "f.pdf", 0.8)},
	}}
	r := New(&fakeEmbedder{}, store)

	got, err := r.Retrieve(context.Background(), "kb-msp", q, 10, nil)
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(got))
	}
	want := 0.8 * fuzzyScorePenalty
	if diff := got[0].SimilarityScore - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("score = %v, want %v", got[0].SimilarityScore, want)
	}
	if got[0].SearchStrategy != StrategyFuzzy {
		t.Errorf("strategy = %q, want %q", got[0].SearchStrategy, StrategyFuzzy)
	}
}

func TestRetrieveStrategyFailureIsNotFatal(t *testing.T) {
	q := "assessment criteria documentation overview summary information"
	specs := plan(q, 10)
	if len(specs) < 2 {
		t.Fatalf("expected at least 2 strategies, got %d", len(specs))
	}

	store := &fakeStore{
		results:   map[int][]vectorstore.SearchResult{0: {result("a", "a.pdf", 0.9)}},
		failSlots: map[int]bool{1: true},
	}
	r := New(&fakeEmbedder{}, store)

	got, err := r.Retrieve(context.Background(), "kb-msp", q, 10, nil)
	if err != nil {
		t.Fatalf("Retrieve() should tolerate a failing strategy, got error %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 candidate from surviving strategies, got %d", len(got))
	}
}

func TestRetrieveEmbedderFailureIsFatal(t *testing.T) {
	r := New(&fakeEmbedder{err: errors.New("embeddings down")}, &fakeStore{})
	if _, err := r.Retrieve(context.Background(), "kb-msp", "anything", 10, nil); err == nil {
		t.Fatal("expected error when embedding fails")
	}
}

func TestRetrieveInvalidTopK(t *testing.T) {
	r := New(&fakeEmbedder{}, &fakeStore{})
	if _, err := r.Retrieve(context.Background(), "kb-msp", "anything", 0, nil); err == nil {
		t.Fatal("expected error for topK = 0")
	}
}

func TestPlanStrategies(t *testing.T) {
	tests := []struct {
		name           string
		query          string
		wantStrategies []string
	}{
		{
			name:           "plain query gets primary and keyword passes",
			query:          "lesson checklist documentation planning",
			wantStrategies: []string{StrategyPrimary, StrategyKeyword},
		},
		{
			name:           "holiday query adds a category pass",
			query:          "when is the diwali holiday vacation break",
			wantStrategies: []string{StrategyPrimary, "HOLIDAY_BOOST", StrategyKeyword},
		},
		{
			name:           "misspelled query adds a fuzzy pass",
			query:          "assesment rubric documentation overview material",
			wantStrategies: []string{StrategyPrimary, StrategyKeyword, StrategyFuzzy},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			specs := plan(tt.query, 20)
			var names []string
			for _, spec := range specs {
				names = append(names, spec.name)
			}
			if strings.Join(names, ",") != strings.Join(tt.wantStrategies, ",") {
				t.Errorf("strategies = %v, want %v", names, tt.wantStrategies)
			}
		})
	}
}

func TestPlanKeywordLimitIsHalved(t *testing.T) {
	specs := plan("lesson checklist documentation planning", 20)
	for _, spec := range specs {
		if spec.name == StrategyKeyword && spec.limit != 10 {
			t.Errorf("keyword limit = %d, want 10", spec.limit)
		}
		if spec.name == StrategyPrimary && spec.limit != 20 {
			t.Errorf("primary limit = %d, want 20", spec.limit)
		}
	}
}

func TestRetrieveSearchesRequestedNamespace(t *testing.T) {
	store := &fakeStore{results: map[int][]vectorstore.SearchResult{}}
	r := New(&fakeEmbedder{}, store)

	if _, err := r.Retrieve(context.Background(), "edipedia-preschools", "circle time ideas activities", 10, nil); err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	for _, call := range store.calls {
		if call.namespace != "edipedia-preschools" {
			t.Errorf("searched namespace %q, want edipedia-preschools", call.namespace)
		}
	}
	if len(store.calls) == 0 {
		t.Fatal("expected at least one search call")
	}
}

func TestCandidateFromResultMeta(t *testing.T) {
	res := vectorstore.SearchResult{
		PointID: "p1",
		Score:   0.75,
		Text:    "body",
		Meta: map[string]any{
			"filename":     "handbook.pdf",
			"chunk_index":  int64(7),
			"content_type": "table",
			"grade":        "grade7",
			"video_url":    "https://example.com/v",
		},
	}
	c := candidateFromResult(res, "kb-msp")
	if c.Filename != "handbook.pdf" || c.ChunkIndex != 7 || c.ContentType != "table" ||
		c.Grade != "grade7" || c.VideoURL != "https://example.com/v" {
		t.Errorf("unexpected candidate: %+v", c)
	}
	if fmt.Sprintf("%.2f", c.SimilarityScore) != "0.75" {
		t.Errorf("score = %v, want 0.75", c.SimilarityScore)
	}
}
