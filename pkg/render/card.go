// Package render turns search state into presentation-ready result cards
// and draws them on a terminal.
//
// A Card carries everything a surface needs to draw one result: the
// highlighted title, the highlighted snippet and the meta lines. The web
// components and the terminal browser both build on it, so a result looks
// the same wherever it is shown.
package render

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/rubiojr/hackfinder/pkg/core"
	"github.com/rubiojr/hackfinder/pkg/search"
	"github.com/rubiojr/hackfinder/pkg/snippet"
)

// metaSep joins the parts of a meta line.
const metaSep = " · "

// Card is one rendered search result.
type Card struct {
	ID       string            `json:"id"`
	URL      string            `json:"url"`
	Title    []snippet.Segment `json:"title"`
	Snippet  []snippet.Segment `json:"snippet"`
	ImageURL string            `json:"image_url,omitempty"`
	// Origin is "source · url".
	Origin string `json:"origin"`
	// Byline is "author · day", empty when neither is known.
	Byline     string   `json:"byline,omitempty"`
	Categories []string `json:"categories,omitempty"`
	Tags       []string `json:"tags,omitempty"`
}

// NewCard renders h for query. An empty query renders without highlights
// and with a snippet taken from the start of the text.
func NewCard(h core.Hack, query string, opts snippet.Options) Card {
	text := snippet.ExtractWithOptions(h.Body(), query, opts)
	return Card{
		ID:         h.Key(),
		URL:        h.URL,
		Title:      snippet.Highlight(h.DisplayTitle(), query),
		Snippet:    snippet.Highlight(text, query),
		ImageURL:   h.ImageURL,
		Origin:     joinMeta(h.Source, h.URL),
		Byline:     joinMeta(h.Author, h.Day()),
		Categories: h.Categories,
		Tags:       h.Tags,
	}
}

// Cards renders the current results of st. Only text queries are
// highlighted; a category name is not searched for in the cards.
func Cards(st search.State, opts snippet.Options) []Card {
	cards := make([]Card, 0, len(st.Results))
	for _, h := range st.Results {
		cards = append(cards, NewCard(h, st.HighlightQuery(), opts))
	}
	return cards
}

// TitleText returns the plain card title.
func (c Card) TitleText() string {
	return snippet.Join(c.Title)
}

// CategoryLabel formats a category name for display.
func CategoryLabel(name string) string {
	return cases.Title(language.English).String(strings.TrimSpace(name))
}

func joinMeta(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, metaSep)
}
