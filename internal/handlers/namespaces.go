package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/Akshay-i95/edify-v3/internal/contextutil"
	"github.com/Akshay-i95/edify-v3/internal/namespace"
)

// NamespacesHandler lists the content namespaces clients can request.
type NamespacesHandler struct{}

// NewNamespacesHandler creates a new NamespacesHandler.
func NewNamespacesHandler() *NamespacesHandler {
	return &NamespacesHandler{}
}

// NamespaceInfo describes one namespace in the listing.
//
// swagger:model NamespaceInfo
type NamespaceInfo struct {
	Name        string   `json:"name"`
	DisplayName string   `json:"display_name"`
	Description string   `json:"description"`
	Grades      []string `json:"grades,omitempty"`
}

// ServeHTTP lists all known namespaces.
//
// swagger:route GET /api/v1/namespaces listNamespaces
func (h *NamespacesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	names := namespace.All()
	infos := make([]NamespaceInfo, 0, len(names))
	for _, name := range names {
		info, ok := namespace.Lookup(name)
		if !ok {
			continue
		}
		infos = append(infos, NamespaceInfo{
			Name:        info.Name,
			DisplayName: info.DisplayName,
			Description: info.Description,
			Grades:      info.Grades,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(infos); err != nil {
		logger.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}
