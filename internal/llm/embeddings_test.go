package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newEmbeddingsServer(t *testing.T, dim, count int) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/embeddings", func(w http.ResponseWriter, r *http.Request) {
		var req EmbeddingsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		n := count
		if n < 0 {
			n = len(req.Input)
		}
		resp := EmbeddingsResponse{}
		for i := 0; i < n; i++ {
			vec := make([]float64, dim)
			for j := range vec {
				vec[j] = float64(i) + 0.1
			}
			resp.Data = append(resp.Data, EmbeddingData{Embedding: vec})
		}
		_ = json.NewEncoder(w).Encode(resp)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestEmbedTexts(t *testing.T) {
	srv := newEmbeddingsServer(t, 4, -1)
	client := NewEmbeddingsClient(srv.URL, "key", "model", 4)

	got, err := client.EmbedTexts(context.Background(), []string{"one", "two"})
	if err != nil {
		t.Fatalf("EmbedTexts returned error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 embeddings, got %d", len(got))
	}
	for i, vec := range got {
		if len(vec) != 4 {
			t.Errorf("embedding %d has dimension %d, want 4", i, len(vec))
		}
	}
}

func TestEmbedTextsEmptyInput(t *testing.T) {
	client := NewEmbeddingsClient("http://unused", "key", "model", 4)
	if _, err := client.EmbedTexts(context.Background(), nil); err == nil {
		t.Fatal("expected error for empty input")
	}
}

func TestEmbedTextsSizeMismatch(t *testing.T) {
	srv := newEmbeddingsServer(t, 3, -1)
	client := NewEmbeddingsClient(srv.URL, "key", "model", 4)

	if _, err := client.EmbedTexts(context.Background(), []string{"one"}); err == nil {
		t.Fatal("expected error for dimension mismatch")
	}
}

func TestEmbedTextsCountMismatch(t *testing.T) {
	srv := newEmbeddingsServer(t, 4, 1)
	client := NewEmbeddingsClient(srv.URL, "key", "model", 4)

	if _, err := client.EmbedTexts(context.Background(), []string{"one", "two"}); err == nil {
		t.Fatal("expected error when embedding count does not match input count")
	}
}
