package search

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rubiojr/hackfinder/pkg/pagination"
)

// MaxPageSize bounds the page size a client may ask for.
const MaxPageSize = 50

// ErrInvalidParam is wrapped by every ParseParams validation error.
var ErrInvalidParam = errors.New("invalid parameter")

// Params is a search request as received over HTTP.
type Params struct {
	// Query is the free-text query ("query", or "q" for short).
	Query string
	// Category selects category browsing when Query is empty.
	Category string
	// Page is 1-based. Defaults to 1.
	Page int
	// PageSize defaults to pagination.DefaultPageSize and must not exceed
	// MaxPageSize.
	PageSize int
}

// Mode returns the mode the parameters ask for.
func (p Params) Mode() Mode {
	switch {
	case p.Query != "":
		return ModeTextQuery
	case p.Category != "":
		return ModeCategory
	}
	return ModeIdle
}

// ParseParams parses and validates HTTP query parameters.
//
// Supported parameters:
//   - query (or q): free-text query
//   - category: category name
//   - page: page number, at least 1
//   - page_size: results per page, 1..MaxPageSize
//
// Unlike a lenient parser, malformed or out of range numbers are errors
// so the API can answer 400 instead of silently serving another page.
func ParseParams(values map[string][]string) (Params, error) {
	params := Params{
		Page:     1,
		PageSize: pagination.DefaultPageSize,
	}

	params.Query = strings.TrimSpace(first(values, "query"))
	if params.Query == "" {
		params.Query = strings.TrimSpace(first(values, "q"))
	}
	params.Category = strings.TrimSpace(first(values, "category"))

	if s := first(values, "page"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			return params, fmt.Errorf("%w: page must be an integer >= 1, got %q", ErrInvalidParam, s)
		}
		params.Page = n
	}

	if s := first(values, "page_size"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > MaxPageSize {
			return params, fmt.Errorf("%w: page_size must be between 1 and %d, got %q", ErrInvalidParam, MaxPageSize, s)
		}
		params.PageSize = n
	}

	return params, nil
}

func first(values map[string][]string, key string) string {
	if v := values[key]; len(v) > 0 {
		return v[0]
	}
	return ""
}
