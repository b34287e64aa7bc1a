package search

import (
	"errors"
	"fmt"

	"github.com/rubiojr/hackfinder/pkg/pagination"
)

var (
	// ErrEmptyQuery rejects a blank text query. It never reaches the backend.
	ErrEmptyQuery = errors.New("empty query")
	// ErrEmptyCategory rejects a blank category name.
	ErrEmptyCategory = errors.New("empty category")
	// ErrInvalidPage rejects navigation outside [1, TotalPages].
	ErrInvalidPage = pagination.ErrInvalidPage
	// ErrInvalidTransition rejects an unknown mode.
	ErrInvalidTransition = errors.New("invalid mode transition")
	// ErrMalformedResponse is reported when a backend returns neither a
	// page nor an error.
	ErrMalformedResponse = errors.New("malformed backend response")
)

// FetchError records a failed backend call. The wrapped error is the
// backend's, unchanged.
type FetchError struct {
	Mode Mode
	Term string
	Page int
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s search for %q (page %d) failed: %v", e.Mode, e.Term, e.Page, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
