package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Akshay-i95/edify-v3/internal/llm"
	"github.com/Akshay-i95/edify-v3/internal/rag"
)

type stubEngine struct {
	resp rag.QueryResponse
	err  error
	got  rag.QueryRequest
}

func (s *stubEngine) Query(ctx context.Context, req rag.QueryRequest) (rag.QueryResponse, error) {
	s.got = req
	if s.err != nil {
		return rag.QueryResponse{}, s.err
	}
	return s.resp, nil
}

func postQuery(t *testing.T, handler http.Handler, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/query", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestQueryHandler(t *testing.T) {
	engine := &stubEngine{resp: rag.QueryResponse{
		Answer:     "Formative assessment uses quick checks during a lesson.",
		Sources:    []rag.Source{{Filename: "guide.pdf", DisplayName: "Guide"}},
		Confidence: 0.7,
		ChunkCount: 3,
	}}
	handler := NewQueryHandler(engine)

	rec := postQuery(t, handler, rag.QueryRequest{Query: "what is formative assessment", Role: "teacher"})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
	}
	var resp rag.QueryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Answer != engine.resp.Answer || resp.ChunkCount != 3 {
		t.Errorf("unexpected response: %+v", resp)
	}
	if engine.got.Role != "teacher" {
		t.Errorf("role %q not forwarded to engine", engine.got.Role)
	}
}

func TestQueryHandlerMethodNotAllowed(t *testing.T) {
	handler := NewQueryHandler(&stubEngine{})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/query", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestQueryHandlerInvalidBody(t *testing.T) {
	handler := NewQueryHandler(&stubEngine{})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/query", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestQueryHandlerErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{
			name:       "validation error",
			err:        &rag.ValidationError{Field: "query", Message: "query must not be empty"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "vector store outage",
			err:        errors.New("failed to search qdrant collection"),
			wantStatus: http.StatusServiceUnavailable,
		},
		{
			name:       "embedding outage",
			err:        errors.New("failed to embed strategy queries: connection refused"),
			wantStatus: http.StatusBadGateway,
		},
		{
			name:       "cancellation",
			err:        context.Canceled,
			wantStatus: http.StatusServiceUnavailable,
		},
		{
			name:       "unknown error",
			err:        errors.New("something unexpected"),
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewQueryHandler(&stubEngine{err: tt.err})
			rec := postQuery(t, handler, rag.QueryRequest{Query: "anything"})
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			var errResp ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &errResp); err != nil {
				t.Fatalf("error body is not JSON: %v", err)
			}
			if errResp.Error == "" {
				t.Error("error body must carry a message")
			}
		})
	}
}

func TestQueryHandlerTrimsLongHistory(t *testing.T) {
	engine := &stubEngine{}
	handler := NewQueryHandler(engine)

	req := rag.QueryRequest{Query: "q"}
	for i := 0; i < maxHistoryMessages+10; i++ {
		req.History = append(req.History, llm.Message{Role: "user", Content: "old"})
	}
	rec := postQuery(t, handler, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	if len(engine.got.History) != maxHistoryMessages {
		t.Errorf("history length = %d, want %d", len(engine.got.History), maxHistoryMessages)
	}
}
