package core

import "strings"

// Hack is a single search result: one furniture hack as returned by a
// search backend. Hacks are immutable once received; the result page that
// produced them owns them.
//
// JSON field names follow the wire format of the search API so a Hack can
// be decoded straight from a backend response or a crawler dump.
type Hack struct {
	ID         string   `json:"id"`
	Title      string   `json:"title,omitempty"`
	URL        string   `json:"url"`
	Content    string   `json:"content,omitempty"`
	Excerpt    string   `json:"excerpt,omitempty"`
	Source     string   `json:"source,omitempty"`
	Author     string   `json:"author,omitempty"`
	Date       string   `json:"date,omitempty"`
	Categories []string `json:"categories"`
	Tags       []string `json:"tags,omitempty"`
	ImageURL   string   `json:"image_url,omitempty"`
}

// UntitledHack is displayed in place of an empty title.
const UntitledHack = "Untitled hack"

// Body returns the text snippets are extracted from: the full content when
// present, otherwise the excerpt. An empty string means no text is
// available.
func (h Hack) Body() string {
	if h.Content != "" {
		return h.Content
	}
	return h.Excerpt
}

// DisplayTitle returns the title, or UntitledHack when the title is blank.
func (h Hack) DisplayTitle() string {
	if strings.TrimSpace(h.Title) == "" {
		return UntitledHack
	}
	return h.Title
}

// Day returns the calendar-day prefix (YYYY-MM-DD) of the publication date.
func (h Hack) Day() string {
	if len(h.Date) > 10 {
		return h.Date[:10]
	}
	return h.Date
}

// Key identifies the hack within a result set, falling back to the URL for
// hacks without an ID.
func (h Hack) Key() string {
	if h.ID != "" {
		return h.ID
	}
	return h.URL
}

// ResultPage is one page of results plus the total number of matches
// across all pages.
type ResultPage struct {
	Results []Hack `json:"results"`
	Total   int    `json:"total"`
}

// CategoryCount is a category name with the number of hacks filed under it.
type CategoryCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}
