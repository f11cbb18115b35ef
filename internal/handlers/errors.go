package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/Akshay-i95/edify-v3/internal/contextutil"
	"github.com/Akshay-i95/edify-v3/internal/ingest"
	"github.com/Akshay-i95/edify-v3/internal/rag"
)

// ErrorResponse represents an error response.
//
// swagger:model ErrorResponse
type ErrorResponse struct {
	Error string `json:"error"`
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: message})
}

// writeEngineError maps pipeline errors to HTTP status codes. Validation
// failures are the caller's fault; backend outages map to gateway statuses so
// load balancers can distinguish them from application bugs.
func writeEngineError(w http.ResponseWriter, r *http.Request, err error, defaultMsg string) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)
	logger.ErrorContext(ctx, "request failed", "error", err)

	var validationErr *rag.ValidationError
	switch {
	case errors.As(err, &validationErr):
		writeError(w, http.StatusBadRequest, validationErr.Message)
		return
	case errors.Is(err, rag.ErrInvalidInput), errors.Is(err, ingest.ErrInvalidDocument):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusServiceUnavailable, "Request cancelled")
		return
	}

	errMsg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errMsg, "vector"), strings.Contains(errMsg, "qdrant"),
		strings.Contains(errMsg, "failed to search"):
		writeError(w, http.StatusServiceUnavailable, "Vector store unavailable")
	case strings.Contains(errMsg, "embed"), strings.Contains(errMsg, "llm"):
		writeError(w, http.StatusBadGateway, "External service error")
	default:
		writeError(w, http.StatusInternalServerError, defaultMsg)
	}
}
