package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/Akshay-i95/edify-v3/internal/contextutil"
	"github.com/Akshay-i95/edify-v3/internal/rag"
)

// maxHistoryMessages bounds the conversation history a client may submit.
const maxHistoryMessages = 50

// QueryHandler handles HTTP requests for chatbot queries.
type QueryHandler struct {
	engine rag.Engine
}

// NewQueryHandler creates a new QueryHandler.
func NewQueryHandler(engine rag.Engine) *QueryHandler {
	return &QueryHandler{engine: engine}
}

// ServeHTTP answers a chatbot query.
//
// swagger:route POST /api/v1/query query
//
// # Ask the chatbot a question
//
// Runs the retrieval-augmented pipeline: namespace resolution, multi-strategy
// retrieval, answer generation, and confidence estimation. Conversation
// history travels with the request; the backend holds no session state.
//
// ---
// consumes:
// - application/json
// produces:
// - application/json
// responses:
//
//	'200':
//	  description: Answer with sources and confidence
//	'400':
//	  description: Bad request (empty query or malformed body)
//	'502':
//	  description: External service error (LLM or embedding service)
//	'503':
//	  description: Vector store unavailable
func (h *QueryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req rag.QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if len(req.History) > maxHistoryMessages {
		req.History = req.History[len(req.History)-maxHistoryMessages:]
	}

	resp, err := h.engine.Query(ctx, req)
	if err != nil {
		writeEngineError(w, r, err, "Failed to process query")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}
