package api

import (
	"net/http"

	"github.com/klauspost/compress/gzhttp"

	"github.com/rubiojr/hackfinder/pkg/metrics"
)

// RegisterRoutes mounts the API on mux. JSON responses are gzip
// compressed for clients that accept it.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	gz := func(h http.HandlerFunc) http.Handler { return gzhttp.GzipHandler(h) }

	mux.Handle("GET /api/search", gz(s.HandleSearch))
	mux.Handle("GET /api/categories", gz(s.HandleCategories))
	mux.Handle("GET /api/categories/{name}", gz(s.HandleCategoryHacks))
	mux.Handle("GET /api/hacks/{id}", gz(s.HandleHack))
	mux.Handle("GET /api/hacks/{id}/similar", gz(s.HandleSimilar))
	mux.Handle("GET /api/stats", gz(s.HandleStats))
	mux.HandleFunc("GET /health", s.HandleHealth)
	mux.Handle("GET /metrics", metrics.Handler())

	if s.importEnabled() {
		mux.HandleFunc("POST /api/hacks", s.authMiddleware(s.HandleImport))
	}
}

// Handler returns the API as a standalone handler with CORS and request
// metrics applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return metrics.Middleware(CorsMiddleware(mux))
}
