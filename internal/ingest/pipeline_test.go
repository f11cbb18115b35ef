package ingest

import (
	"context"
	"errors"
	"testing"

	"github.com/Akshay-i95/edify-v3/internal/namespace"
	"github.com/Akshay-i95/edify-v3/internal/storage"
	"github.com/Akshay-i95/edify-v3/internal/vectorstore"
)

type fakeEmbedder struct {
	err   error
	calls [][]string
}

func (f *fakeEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	f.calls = append(f.calls, texts)
	if f.err != nil {
		return nil, f.err
	}
	vecs := make([][]float32, len(texts))
	for i := range texts {
		vecs[i] = []float32{float32(i), 1}
	}
	return vecs, nil
}

type fakeVectorStore struct {
	upserts map[string][]vectorstore.Point
	deletes []string
	err     error
}

func newFakeVectorStore() *fakeVectorStore {
	return &fakeVectorStore{upserts: map[string][]vectorstore.Point{}}
}

func (f *fakeVectorStore) EnsureNamespace(ctx context.Context, ns string, size int) error {
	return nil
}

func (f *fakeVectorStore) Upsert(ctx context.Context, ns string, points []vectorstore.Point) error {
	if f.err != nil {
		return f.err
	}
	f.upserts[ns] = append(f.upserts[ns], points...)
	return nil
}

func (f *fakeVectorStore) Search(ctx context.Context, ns string, query []float32, k int, filters map[string]any) ([]vectorstore.SearchResult, error) {
	return nil, nil
}

func (f *fakeVectorStore) DeleteByFilename(ctx context.Context, ns, filename string) error {
	f.deletes = append(f.deletes, ns+"/"+filename)
	return nil
}

type fakeRecordStore struct {
	inserted []storage.ChunkRecord
	deletes  []string
}

func (f *fakeRecordStore) Insert(ctx context.Context, c *storage.ChunkRecord) error {
	f.inserted = append(f.inserted, *c)
	return nil
}

func (f *fakeRecordStore) DeleteByFilename(ctx context.Context, ns, filename string) error {
	f.deletes = append(f.deletes, ns+"/"+filename)
	return nil
}

func (f *fakeRecordStore) GetByID(ctx context.Context, id string) (*storage.ChunkRecord, error) {
	return nil, storage.ErrNotFound
}

func (f *fakeRecordStore) Neighbors(ctx context.Context, ns, filename string, idx, radius int) ([]storage.ChunkRecord, error) {
	return nil, nil
}

func sampleChunks() []ChunkInput {
	return []ChunkInput{
		{ChunkIndex: 0, ContentType: "policy", Grade: "grade7", Text: "Homework policy overview for middle school."},
		{ChunkIndex: 1, ContentType: "policy", Grade: "grade7", Text: "Late submissions lose one grade band per day."},
	}
}

func TestUpsertDocument(t *testing.T) {
	embedder := &fakeEmbedder{}
	vectors := newFakeVectorStore()
	records := &fakeRecordStore{}
	p := NewPipeline(embedder, vectors, records)

	n, err := p.UpsertDocument(context.Background(), namespace.KBMSP, "homework_policy.pdf", sampleChunks())
	if err != nil {
		t.Fatalf("UpsertDocument() error = %v", err)
	}
	if n != 2 {
		t.Errorf("indexed %d chunks, want 2", n)
	}

	// One batch embedding call covering every chunk text.
	if len(embedder.calls) != 1 || len(embedder.calls[0]) != 2 {
		t.Errorf("embedder calls = %v, want one batch of 2", embedder.calls)
	}

	points := vectors.upserts[namespace.KBMSP]
	if len(points) != 2 {
		t.Fatalf("upserted %d points, want 2", len(points))
	}
	if points[0].Meta["filename"] != "homework_policy.pdf" {
		t.Errorf("point meta filename = %v", points[0].Meta["filename"])
	}
	if points[1].Meta["chunk_index"] != 1 {
		t.Errorf("point meta chunk_index = %v, want 1", points[1].Meta["chunk_index"])
	}
	if points[0].Meta["text"] == "" {
		t.Error("point payload must carry the chunk text")
	}

	if len(records.inserted) != 2 {
		t.Fatalf("inserted %d records, want 2", len(records.inserted))
	}
	if records.inserted[0].ID != points[0].ID {
		t.Error("record and point for the same chunk must share an ID")
	}
	if records.inserted[0].Namespace != namespace.KBMSP {
		t.Errorf("record namespace = %q", records.inserted[0].Namespace)
	}

	// Re-ingestion clears both stores first.
	if len(vectors.deletes) != 1 || len(records.deletes) != 1 {
		t.Errorf("deletes: vectors %v, records %v; want one each", vectors.deletes, records.deletes)
	}
}

func TestUpsertDocumentSkipsEmptyChunks(t *testing.T) {
	embedder := &fakeEmbedder{}
	p := NewPipeline(embedder, newFakeVectorStore(), &fakeRecordStore{})

	chunks := append(sampleChunks(), ChunkInput{ChunkIndex: 2, Text: "   "})
	n, err := p.UpsertDocument(context.Background(), namespace.KBMSP, "homework_policy.pdf", chunks)
	if err != nil {
		t.Fatalf("UpsertDocument() error = %v", err)
	}
	if n != 2 {
		t.Errorf("indexed %d chunks, want 2 after dropping the blank one", n)
	}
}

func TestUpsertDocumentValidation(t *testing.T) {
	p := NewPipeline(&fakeEmbedder{}, newFakeVectorStore(), &fakeRecordStore{})

	if _, err := p.UpsertDocument(context.Background(), "nope", "a.pdf", sampleChunks()); !errors.Is(err, ErrInvalidDocument) {
		t.Errorf("unknown namespace: err = %v, want ErrInvalidDocument", err)
	}
	if _, err := p.UpsertDocument(context.Background(), namespace.KBMSP, "  ", sampleChunks()); !errors.Is(err, ErrInvalidDocument) {
		t.Errorf("blank filename: err = %v, want ErrInvalidDocument", err)
	}
	if _, err := p.UpsertDocument(context.Background(), namespace.KBMSP, "a.pdf", nil); !errors.Is(err, ErrInvalidDocument) {
		t.Errorf("empty chunk list: err = %v, want ErrInvalidDocument", err)
	}
}

func TestUpsertDocumentEmbedFailure(t *testing.T) {
	vectors := newFakeVectorStore()
	records := &fakeRecordStore{}
	p := NewPipeline(&fakeEmbedder{err: errors.New("embed down")}, vectors, records)

	if _, err := p.UpsertDocument(context.Background(), namespace.KBMSP, "a.pdf", sampleChunks()); err == nil {
		t.Fatal("embedding failure must surface as an error")
	}
	if len(vectors.upserts) != 0 || len(records.inserted) != 0 {
		t.Error("no chunks should be stored when embedding fails")
	}
}

func TestDeleteDocument(t *testing.T) {
	vectors := newFakeVectorStore()
	records := &fakeRecordStore{}
	p := NewPipeline(&fakeEmbedder{}, vectors, records)

	if err := p.DeleteDocument(context.Background(), namespace.KBPSP, "old.pdf"); err != nil {
		t.Fatalf("DeleteDocument() error = %v", err)
	}
	want := namespace.KBPSP + "/old.pdf"
	if len(vectors.deletes) != 1 || vectors.deletes[0] != want {
		t.Errorf("vector deletes = %v, want [%s]", vectors.deletes, want)
	}
	if len(records.deletes) != 1 || records.deletes[0] != want {
		t.Errorf("record deletes = %v, want [%s]", records.deletes, want)
	}
}
