package search

import (
	"fmt"

	"github.com/rubiojr/hackfinder/pkg/core"
)

// State is a snapshot of a Controller for presentation. Exactly one of
// Query and Category is set outside ModeIdle.
type State struct {
	Mode       Mode        `json:"mode"`
	Query      string      `json:"query,omitempty"`
	Category   string      `json:"category,omitempty"`
	Page       int         `json:"page"`
	PageSize   int         `json:"page_size"`
	Total      int         `json:"total"`
	TotalPages int         `json:"total_pages"`
	Loading    bool        `json:"loading"`
	Err        error       `json:"-"`
	Results    []core.Hack `json:"results"`
	// Fetched is set once a response has been applied for the current
	// query or category.
	Fetched bool `json:"fetched"`
}

// Term returns the active payload: the query in text mode, the category in
// category mode.
func (s State) Term() string {
	if s.Mode == ModeCategory {
		return s.Category
	}
	return s.Query
}

// HighlightQuery is the query result cards highlight. Category browsing
// highlights nothing.
func (s State) HighlightQuery() string {
	if s.Mode == ModeTextQuery {
		return s.Query
	}
	return ""
}

// HasNext reports whether a following page exists.
func (s State) HasNext() bool { return s.Page < s.TotalPages }

// HasPrev reports whether a preceding page exists.
func (s State) HasPrev() bool { return s.Page > 1 }

// Status returns the one-line pagination summary, e.g.
// "Page 2 of 5 · 47 results".
func (s State) Status() string {
	noun := "results"
	if s.Total == 1 {
		noun = "result"
	}
	return fmt.Sprintf("Page %d of %d · %d %s", s.Page, s.TotalPages, s.Total, noun)
}

// Notice tells the presentation layer which placeholder, if any, to show
// instead of (or above) the result list.
type Notice int

const (
	// NoticeNone: show the results (or the error).
	NoticeNone Notice = iota
	// NoticePrompt: nothing has been searched yet.
	NoticePrompt
	// NoticeLoading: a request for the active mode is pending.
	NoticeLoading
	// NoticeNoResults: the search succeeded and matched nothing.
	NoticeNoResults
)

// Notice derives the empty-state rule from the snapshot.
func (s State) Notice() Notice {
	switch {
	case s.Mode == ModeIdle:
		return NoticePrompt
	case s.Loading:
		return NoticeLoading
	case s.Err != nil:
		return NoticeNone
	case !s.Fetched:
		return NoticePrompt
	case len(s.Results) == 0:
		return NoticeNoResults
	}
	return NoticeNone
}

// Message returns the user-facing text of the notice.
func (n Notice) Message() string {
	switch n {
	case NoticePrompt:
		return "Type your favourite IKEA product and press Enter to give it a new file!"
	case NoticeLoading:
		return "Searching…"
	case NoticeNoResults:
		return "No results found. Try a different query."
	}
	return ""
}

func (n Notice) String() string {
	switch n {
	case NoticePrompt:
		return "prompt"
	case NoticeLoading:
		return "loading"
	case NoticeNoResults:
		return "no_results"
	}
	return "none"
}
