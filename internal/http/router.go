package http

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Akshay-i95/edify-v3/internal/blob"
	"github.com/Akshay-i95/edify-v3/internal/handlers"
	"github.com/Akshay-i95/edify-v3/internal/ingest"
	"github.com/Akshay-i95/edify-v3/internal/rag"
	"github.com/Akshay-i95/edify-v3/internal/vectorstore"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	Engine        rag.Engine
	Ingest        *ingest.Pipeline
	DB            *sql.DB
	Vectors       vectorstore.VectorStore
	URLs          blob.URLResolver
	EmbeddingSize int
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(LoggerMiddleware)
	r.Use(CORS)

	queryHandler := handlers.NewQueryHandler(deps.Engine)
	documentsHandler := handlers.NewDocumentsHandler(deps.Ingest)
	namespacesHandler := handlers.NewNamespacesHandler()
	sourcesHandler := handlers.NewSourcesHandler(deps.URLs)
	healthHandler := handlers.NewHealthHandler(deps.DB, deps.Vectors, deps.EmbeddingSize)

	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodGet, "/health", healthHandler)

		r.Route("/v1", func(r chi.Router) {
			r.Method(http.MethodPost, "/query", queryHandler)
			r.Method(http.MethodGet, "/namespaces", namespacesHandler)
			r.Post("/documents", documentsHandler.Upsert)
			r.Delete("/documents", documentsHandler.Delete)
			r.Get("/sources/url", sourcesHandler.DownloadURL)
		})
	})

	return r
}
