package config

import (
	"path/filepath"
	"testing"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("EMBEDDING_SIZE", "384")
	t.Setenv("DB_PATH", filepath.Join(t.TempDir(), "edify.db"))
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.EmbeddingSize != 384 {
		t.Errorf("EmbeddingSize = %d, want 384", cfg.EmbeddingSize)
	}
	if cfg.APIPort != "9000" {
		t.Errorf("APIPort = %q, want %q", cfg.APIPort, "9000")
	}
	if cfg.Retrieval.ContextCharBudget != 12000 {
		t.Errorf("ContextCharBudget = %d, want 12000", cfg.Retrieval.ContextCharBudget)
	}
	if cfg.Retrieval.RelevanceFloor >= cfg.Retrieval.RelevanceBar {
		t.Errorf("RelevanceFloor (%f) should be below RelevanceBar (%f)",
			cfg.Retrieval.RelevanceFloor, cfg.Retrieval.RelevanceBar)
	}
}

func TestLoadMissingEmbeddingSize(t *testing.T) {
	t.Setenv("EMBEDDING_SIZE", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when EMBEDDING_SIZE is missing")
	}
}

func TestLoadInvalidEmbeddingSize(t *testing.T) {
	t.Setenv("EMBEDDING_SIZE", "not-a-number")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for non-numeric EMBEDDING_SIZE")
	}

	t.Setenv("EMBEDDING_SIZE", "-5")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for negative EMBEDDING_SIZE")
	}
}

func TestLoadRetrievalOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SEARCH_TOP_K_COMPLEX", "40")
	t.Setenv("RELEVANCE_FLOOR", "0.1")
	t.Setenv("CONTEXT_CHAR_BUDGET", "8000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.Retrieval.ComplexTopK != 40 {
		t.Errorf("ComplexTopK = %d, want 40", cfg.Retrieval.ComplexTopK)
	}
	if cfg.Retrieval.RelevanceFloor != 0.1 {
		t.Errorf("RelevanceFloor = %f, want 0.1", cfg.Retrieval.RelevanceFloor)
	}
	if cfg.Retrieval.ContextCharBudget != 8000 {
		t.Errorf("ContextCharBudget = %d, want 8000", cfg.Retrieval.ContextCharBudget)
	}
}

func TestTopKForComplexityTiers(t *testing.T) {
	rc := DefaultRetrieval()

	tests := []struct {
		complexity string
		wantTopK   int
		wantMax    int
	}{
		{"SIMPLE", 15, 10},
		{"MODERATE", 20, 12},
		{"COMPLEX", 25, 15},
		{"unknown", 20, 12}, // falls back to moderate
	}

	for _, tt := range tests {
		if got := rc.TopKFor(tt.complexity); got != tt.wantTopK {
			t.Errorf("TopKFor(%q) = %d, want %d", tt.complexity, got, tt.wantTopK)
		}
		if got := rc.MaxChunksFor(tt.complexity); got != tt.wantMax {
			t.Errorf("MaxChunksFor(%q) = %d, want %d", tt.complexity, got, tt.wantMax)
		}
	}
}

func TestLoadInvalidLogLevel(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("LOG_LEVEL", "verbose")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for invalid LOG_LEVEL")
	}
}
