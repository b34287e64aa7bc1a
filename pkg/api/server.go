// Package api serves the hack index over HTTP as JSON.
package api

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rubiojr/hackfinder/pkg/ingest"
	"github.com/rubiojr/hackfinder/pkg/log"
	"github.com/rubiojr/hackfinder/pkg/storage"
)

type Server struct {
	index    *storage.Index
	importer *ingest.Importer
	apiKey   string
	logger   *log.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithImporter enables POST /api/hacks for requests bearing apiKey. An
// empty key leaves the endpoint disabled.
func WithImporter(importer *ingest.Importer, apiKey string) Option {
	return func(s *Server) {
		s.importer = importer
		s.apiKey = apiKey
	}
}

func NewServer(index *storage.Index, opts ...Option) *Server {
	s := &Server{
		index:  index,
		logger: log.ForService("api"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Server) importEnabled() bool {
	return s.importer != nil && s.apiKey != ""
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Errorf("encoding JSON response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, error, message string) {
	response := ErrorResponse{
		Error:   error,
		Message: message,
	}
	s.writeJSON(w, status, response)
}

func (s *Server) authMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			s.writeError(w, http.StatusUnauthorized, "missing_auth", "Authorization header required")
			return
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			s.writeError(w, http.StatusUnauthorized, "invalid_auth", "Authorization header must be 'Bearer <token>'")
			return
		}

		if subtle.ConstantTimeCompare([]byte(parts[1]), []byte(s.apiKey)) != 1 {
			s.writeError(w, http.StatusUnauthorized, "invalid_token", "Invalid API token")
			return
		}

		next(w, r)
	}
}

func CorsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
