package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/Akshay-i95/edify-v3/internal/contextutil"
	"github.com/Akshay-i95/edify-v3/internal/ingest"
)

// DocumentsHandler handles document ingestion and removal.
type DocumentsHandler struct {
	pipeline *ingest.Pipeline
}

// NewDocumentsHandler creates a new DocumentsHandler.
func NewDocumentsHandler(pipeline *ingest.Pipeline) *DocumentsHandler {
	return &DocumentsHandler{pipeline: pipeline}
}

// UpsertRequest is the payload for indexing a document's chunks.
//
// swagger:model UpsertRequest
type UpsertRequest struct {
	Namespace string              `json:"namespace"`
	Filename  string              `json:"filename"`
	Chunks    []ingest.ChunkInput `json:"chunks"`
}

// UpsertResponse reports the outcome of an ingestion request.
//
// swagger:model UpsertResponse
type UpsertResponse struct {
	Filename      string `json:"filename"`
	ChunksIndexed int    `json:"chunks_indexed"`
}

// Upsert indexes a document's chunks, replacing any previous version.
//
// swagger:route POST /api/v1/documents upsertDocument
func (h *DocumentsHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var req UpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	n, err := h.pipeline.UpsertDocument(ctx, req.Namespace, req.Filename, req.Chunks)
	if err != nil {
		writeEngineError(w, r, err, "Failed to index document")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(UpsertResponse{Filename: req.Filename, ChunksIndexed: n}); err != nil {
		logger.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

// Delete removes all chunks of a document. Namespace and filename arrive as
// query parameters since DELETE bodies are unreliable across proxies.
//
// swagger:route DELETE /api/v1/documents deleteDocument
func (h *DocumentsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	ns := r.URL.Query().Get("namespace")
	filename := r.URL.Query().Get("filename")
	if ns == "" || filename == "" {
		writeError(w, http.StatusBadRequest, "namespace and filename query parameters are required")
		return
	}

	if err := h.pipeline.DeleteDocument(ctx, ns, filename); err != nil {
		writeEngineError(w, r, err, "Failed to delete document")
		return
	}

	logger.InfoContext(ctx, "document deleted", "namespace", ns, "filename", filename)
	w.WriteHeader(http.StatusNoContent)
}
