// Package pagination tracks the current page of a result set whose total
// size is reported by a search backend.
//
// A Coordinator owns three numbers: the fixed page size, the total number
// of matches and the current page. The current page always lies in
// [1, TotalPages()], and GoToPage is the only way to move it.
package pagination

import (
	"errors"
	"fmt"
)

// DefaultPageSize is used when a Coordinator is created with a
// non-positive page size.
const DefaultPageSize = 10

// ErrInvalidPage is returned when a requested page lies outside
// [1, TotalPages()].
var ErrInvalidPage = errors.New("invalid page")

// TotalPages returns the number of pages needed to show total results with
// pageSize results per page. There is always at least one page, even for an
// empty result set.
func TotalPages(total, pageSize int) int {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if total <= 0 {
		return 1
	}
	return (total + pageSize - 1) / pageSize
}

// Coordinator holds pagination state. It is not safe for concurrent use;
// the owner serializes access.
type Coordinator struct {
	pageSize int
	total    int
	page     int
}

// New returns a Coordinator on page 1 of an empty result set.
func New(pageSize int) *Coordinator {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Coordinator{pageSize: pageSize, page: 1}
}

// PageSize returns the fixed page size.
func (c *Coordinator) PageSize() int { return c.pageSize }

// CurrentPage returns the current 1-based page.
func (c *Coordinator) CurrentPage() int { return c.page }

// Total returns the number of matches across all pages.
func (c *Coordinator) Total() int { return c.total }

// TotalPages returns the page count for the current total.
func (c *Coordinator) TotalPages() int { return TotalPages(c.total, c.pageSize) }

// Validate reports whether page n can be navigated to, without changing
// state.
func (c *Coordinator) Validate(n int) error {
	if n < 1 || n > c.TotalPages() {
		return fmt.Errorf("%w: %d (want 1..%d)", ErrInvalidPage, n, c.TotalPages())
	}
	return nil
}

// GoToPage moves to page n. An out of range page returns ErrInvalidPage and
// leaves the current page untouched.
func (c *Coordinator) GoToPage(n int) error {
	if err := c.Validate(n); err != nil {
		return err
	}
	c.page = n
	return nil
}

// SetTotal records the total number of matches. Negative totals are
// treated as zero. The current page is not adjusted; callers follow up with
// GoToPage.
func (c *Coordinator) SetTotal(total int) {
	if total < 0 {
		total = 0
	}
	c.total = total
}

// Reset returns to page 1 of an empty result set.
func (c *Coordinator) Reset() {
	c.total = 0
	c.page = 1
}

// HasNext reports whether a page follows the current one.
func (c *Coordinator) HasNext() bool { return c.page < c.TotalPages() }

// HasPrev reports whether a page precedes the current one.
func (c *Coordinator) HasPrev() bool { return c.page > 1 }

// Offset returns the number of results preceding the current page.
func (c *Coordinator) Offset() int { return Offset(c.page, c.pageSize) }

// Offset returns the number of results preceding page when pages hold
// pageSize results.
func Offset(page, pageSize int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * pageSize
}
