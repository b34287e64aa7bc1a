package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/rubiojr/hackfinder/pkg/core"
	"github.com/rubiojr/hackfinder/pkg/pagination"
	"github.com/rubiojr/hackfinder/pkg/search"
	"github.com/rubiojr/hackfinder/pkg/storage"
	"github.com/rubiojr/hackfinder/pkg/version"
)

const (
	defaultCategoryLimit = 20
	maxCategoryLimit     = 100
	defaultSimilarLimit  = 6
	maxSimilarLimit      = 20
	maxImportBody        = 32 << 20
)

func (s *Server) HandleSearch(w http.ResponseWriter, r *http.Request) {
	params, err := search.ParseParams(r.URL.Query())
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid parameter", err.Error())
		return
	}

	// API requires a query or a category
	if params.Mode() == search.ModeIdle {
		s.writeError(w, http.StatusBadRequest, "Missing query parameter", "Query parameter 'query' or 'category' is required")
		return
	}

	s.search(w, r, params)
}

func (s *Server) HandleCategoryHacks(w http.ResponseWriter, r *http.Request) {
	params, err := search.ParseParams(r.URL.Query())
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid parameter", err.Error())
		return
	}

	params.Query = ""
	params.Category = r.PathValue("name")
	if params.Category == "" {
		s.writeError(w, http.StatusBadRequest, "Invalid path", "Category name is required")
		return
	}

	s.search(w, r, params)
}

func (s *Server) search(w http.ResponseWriter, r *http.Request, params search.Params) {
	var (
		page *core.ResultPage
		err  error
	)
	if params.Mode() == search.ModeTextQuery {
		page, err = s.index.SearchByText(r.Context(), params.Query, params.Page, params.PageSize)
	} else {
		page, err = s.index.SearchByCategory(r.Context(), params.Category, params.Page, params.PageSize)
	}
	if err != nil {
		s.logger.Errorf("search %+v: %v", params, err)
		s.writeError(w, http.StatusInternalServerError, "Search failed", err.Error())
		return
	}

	totalPages := pagination.TotalPages(page.Total, params.PageSize)
	hits := page.Results
	if hits == nil {
		hits = []core.Hack{}
	}

	response := SearchResponse{
		Query:      params.Query,
		Category:   params.Category,
		Total:      page.Total,
		Page:       params.Page,
		PageSize:   params.PageSize,
		TotalPages: totalPages,
		HasMore:    params.Page < totalPages,
		Hits:       hits,
	}
	if params.Mode() == search.ModeTextQuery {
		response.Category = ""
	}

	s.writeJSON(w, http.StatusOK, response)
}

func (s *Server) HandleCategories(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r, defaultCategoryLimit, maxCategoryLimit)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid parameter", err.Error())
		return
	}

	categories, err := s.index.TopCategories(r.Context(), limit)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "Failed to list categories", err.Error())
		return
	}
	if categories == nil {
		categories = []core.CategoryCount{}
	}

	s.writeJSON(w, http.StatusOK, CategoriesResponse{Categories: categories, Count: len(categories)})
}

func (s *Server) HandleHack(w http.ResponseWriter, r *http.Request) {
	hack, err := s.index.Get(r.Context(), r.PathValue("id"))
	if storage.IsNotFound(err) {
		s.writeError(w, http.StatusNotFound, "Hack not found", fmt.Sprintf("Hack '%s' does not exist", r.PathValue("id")))
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "Failed to get hack", err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, hack)
}

func (s *Server) HandleSimilar(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r, defaultSimilarLimit, maxSimilarLimit)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid parameter", err.Error())
		return
	}

	id := r.PathValue("id")
	hacks, err := s.index.Similar(r.Context(), id, limit)
	if storage.IsNotFound(err) {
		s.writeError(w, http.StatusNotFound, "Hack not found", fmt.Sprintf("Hack '%s' does not exist", id))
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "Failed to find similar hacks", err.Error())
		return
	}
	if hacks == nil {
		hacks = []core.Hack{}
	}

	s.writeJSON(w, http.StatusOK, HacksResponse{Hacks: hacks, Count: len(hacks)})
}

func (s *Server) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.index.Stats(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "Failed to get stats", err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, stats)
}

func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	health := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
		Version:   version.APIVersion(),
	}

	s.writeJSON(w, http.StatusOK, health)
}

func (s *Server) HandleImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImportBody)

	var req ImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, http.StatusRequestEntityTooLarge, "request_too_large", err.Error())
			return
		}
		s.writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if len(req.Hacks) == 0 {
		s.writeError(w, http.StatusBadRequest, "empty_request", "No hacks provided")
		return
	}

	res, err := s.importer.ImportHacks(r.Context(), req.Hacks, "api")
	if err != nil {
		s.logger.Errorf("import: %v", err)
		s.writeError(w, http.StatusInternalServerError, "import_failed", err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, ImportResponse{Read: res.Read, Stored: res.Stored, Skipped: res.Skipped})
}

func parseLimit(r *http.Request, def, limitMax int) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > limitMax {
		return 0, fmt.Errorf("limit must be between 1 and %d, got %q", limitMax, raw)
	}
	return n, nil
}
