package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newChatServer(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/chat/completions", handler)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestGenerate(t *testing.T) {
	var gotReq ChatRequest
	srv := newChatServer(t, func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		resp := ChatResponse{
			Model: "test-model",
			Choices: []ChatChoice{
				{Message: ChatChoiceMessage{Role: "assistant", Content: "Exit tickets are a formative assessment tool."}},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	})

	client := NewClient(srv.URL, "key", "test-model")
	result, err := client.Generate(context.Background(), "what are exit tickets",
		"Source: assessment.pdf\nExit tickets are short reflections.",
		[]Message{{Role: "user", Content: "earlier question"}, {Role: "assistant", Content: "earlier answer"}},
		"teacher")
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	if result.Text != "Exit tickets are a formative assessment tool." {
		t.Errorf("unexpected answer text: %q", result.Text)
	}
	if result.Model != "test-model" {
		t.Errorf("unexpected model: %q", result.Model)
	}

	// system + 2 history + 1 user
	if len(gotReq.Messages) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(gotReq.Messages))
	}
	if gotReq.Messages[0].Role != "system" {
		t.Errorf("first message should be system, got %q", gotReq.Messages[0].Role)
	}
	if gotReq.Messages[3].Role != "user" {
		t.Errorf("last message should be user, got %q", gotReq.Messages[3].Role)
	}
}

func TestGenerateDropsNonChatRoles(t *testing.T) {
	var gotReq ChatRequest
	srv := newChatServer(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotReq)
		_ = json.NewEncoder(w).Encode(ChatResponse{
			Choices: []ChatChoice{{Message: ChatChoiceMessage{Content: "ok"}}},
		})
	})

	client := NewClient(srv.URL, "key", "m")
	_, err := client.Generate(context.Background(), "q", "ctx",
		[]Message{{Role: "system", Content: "injected"}, {Role: "user", Content: "hello"}}, "")
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	for _, m := range gotReq.Messages[1:] {
		if m.Role == "system" {
			t.Error("caller-supplied system messages must not be forwarded")
		}
	}
}

func TestGenerateBadStatus(t *testing.T) {
	srv := newChatServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	})

	client := NewClient(srv.URL, "key", "m")
	if _, err := client.Generate(context.Background(), "q", "ctx", nil, ""); err == nil {
		t.Fatal("expected error for non-200 status")
	}
}

func TestGenerateTimeout(t *testing.T) {
	srv := newChatServer(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_ = json.NewEncoder(w).Encode(ChatResponse{
			Choices: []ChatChoice{{Message: ChatChoiceMessage{Content: "late"}}},
		})
	})

	client := NewClient(srv.URL, "key", "m")
	client.Timeout = 20 * time.Millisecond
	if _, err := client.Generate(context.Background(), "q", "ctx", nil, ""); err == nil {
		t.Fatal("expected timeout error")
	}
}

func TestGenerateNoChoices(t *testing.T) {
	srv := newChatServer(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(ChatResponse{})
	})

	client := NewClient(srv.URL, "key", "m")
	if _, err := client.Generate(context.Background(), "q", "ctx", nil, ""); err == nil {
		t.Fatal("expected error when no choices returned")
	}
}

func TestSplitReasoning(t *testing.T) {
	tests := []struct {
		name          string
		content       string
		wantText      string
		wantReasoning string
	}{
		{"no reasoning", "plain answer", "plain answer", ""},
		{"with think block", "<think>step 1</think>the answer", "the answer", "step 1"},
		{"unclosed block", "<think>partial", "<think>partial", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, reasoning := splitReasoning(tt.content)
			if text != tt.wantText {
				t.Errorf("text = %q, want %q", text, tt.wantText)
			}
			if reasoning != tt.wantReasoning {
				t.Errorf("reasoning = %q, want %q", reasoning, tt.wantReasoning)
			}
		})
	}
}
