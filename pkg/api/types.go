package api

import (
	"time"

	"github.com/rubiojr/hackfinder/pkg/core"
)

// SearchResponse is one page of hacks matching a query or filed under a
// category.
type SearchResponse struct {
	Query      string      `json:"query,omitempty"`
	Category   string      `json:"category,omitempty"`
	Total      int         `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"page_size"`
	TotalPages int         `json:"total_pages"`
	HasMore    bool        `json:"has_more"`
	Hits       []core.Hack `json:"hits"`
}

type CategoriesResponse struct {
	Categories []core.CategoryCount `json:"categories"`
	Count      int                  `json:"count"`
}

type HacksResponse struct {
	Hacks []core.Hack `json:"hacks"`
	Count int         `json:"count"`
}

type ImportRequest struct {
	Hacks []core.Hack `json:"hacks"`
}

type ImportResponse struct {
	Read    int `json:"read"`
	Stored  int `json:"stored"`
	Skipped int `json:"skipped"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
}
