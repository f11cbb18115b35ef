package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/Akshay-i95/edify-v3/internal/blob"
	"github.com/Akshay-i95/edify-v3/internal/contextutil"
)

// SourcesHandler issues download URLs for source documents outside the query
// flow, for clients that render a document list of their own.
type SourcesHandler struct {
	urls blob.URLResolver
}

// NewSourcesHandler creates a new SourcesHandler.
func NewSourcesHandler(urls blob.URLResolver) *SourcesHandler {
	if urls == nil {
		urls = blob.Disabled{}
	}
	return &SourcesHandler{urls: urls}
}

// DownloadURLResponse carries a time-limited download link.
//
// swagger:model DownloadURLResponse
type DownloadURLResponse struct {
	Filename    string `json:"filename"`
	DownloadURL string `json:"download_url"`
}

// DownloadURL resolves a time-limited download URL for a document.
//
// swagger:route GET /api/v1/sources/url sourceDownloadURL
func (h *SourcesHandler) DownloadURL(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	filename := r.URL.Query().Get("filename")
	if filename == "" {
		writeError(w, http.StatusBadRequest, "filename query parameter is required")
		return
	}

	url, err := h.urls.ResolveURL(ctx, filename)
	if err != nil {
		logger.ErrorContext(ctx, "failed to resolve download URL", "filename", filename, "error", err)
		writeError(w, http.StatusBadGateway, "Failed to resolve download URL")
		return
	}
	if url == "" {
		writeError(w, http.StatusNotFound, "Downloads are not configured")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(DownloadURLResponse{Filename: filename, DownloadURL: url}); err != nil {
		logger.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}
