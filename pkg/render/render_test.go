package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rubiojr/hackfinder/pkg/core"
	"github.com/rubiojr/hackfinder/pkg/search"
	"github.com/rubiojr/hackfinder/pkg/snippet"
)

var billy = core.Hack{
	ID:         "billy-desk",
	Title:      "BILLY standing desk",
	URL:        "https://example.com/billy",
	Content:    "Turn a BILLY bookcase into a standing desk with two brackets.",
	Source:     "ikeahackers",
	Author:     "Alex",
	Date:       "2023-05-01T10:00:00",
	Categories: []string{"home office"},
	Tags:       []string{"billy"},
}

func TestNewCardHighlights(t *testing.T) {
	c := NewCard(billy, "desk", snippet.DefaultOptions())

	assert.Equal(t, "billy-desk", c.ID)
	assert.Equal(t, "BILLY standing desk", c.TitleText())
	assert.True(t, snippet.HasMatch(c.Title))
	assert.True(t, snippet.HasMatch(c.Snippet))
	assert.Equal(t, billy.Content, snippet.Join(c.Snippet))
	assert.Equal(t, "ikeahackers · https://example.com/billy", c.Origin)
	assert.Equal(t, "Alex · 2023-05-01", c.Byline)
}

func TestNewCardFallbacks(t *testing.T) {
	c := NewCard(core.Hack{URL: "https://example.com/x"}, "desk", snippet.DefaultOptions())

	assert.Equal(t, core.UntitledHack, c.TitleText())
	assert.False(t, snippet.HasMatch(c.Title))
	assert.Equal(t, snippet.Placeholder, snippet.Join(c.Snippet))
	assert.Equal(t, "https://example.com/x", c.Origin)
	assert.Empty(t, c.Byline)
	assert.Equal(t, "https://example.com/x", c.ID)
}

func TestCardsHighlightOnlyTextQueries(t *testing.T) {
	st := search.State{Mode: search.ModeCategory, Category: "desk", Results: []core.Hack{billy}}
	cards := Cards(st, snippet.DefaultOptions())
	require.Len(t, cards, 1)
	assert.False(t, snippet.HasMatch(cards[0].Title), "category mode must not highlight")

	st = search.State{Mode: search.ModeTextQuery, Query: "billy", Results: []core.Hack{billy}}
	cards = Cards(st, snippet.DefaultOptions())
	assert.True(t, snippet.HasMatch(cards[0].Title))
}

func TestCategoryLabel(t *testing.T) {
	assert.Equal(t, "Home Office", CategoryLabel(" home office "))
	assert.Equal(t, "Lighting", CategoryLabel("LIGHTING"))
}

func TestTerminalCard(t *testing.T) {
	out := Terminal{Width: 60}.Card(NewCard(billy, "desk", snippet.DefaultOptions()), 3)

	for _, want := range []string{"3. ", "BILLY standing", "Home Office", "#billy", "2023-05-01"} {
		assert.Contains(t, out, want)
	}
}

func TestTerminalResults(t *testing.T) {
	term := Terminal{}

	idle := term.Results(search.State{Mode: search.ModeIdle, Page: 1, PageSize: 10, TotalPages: 1}, snippet.DefaultOptions())
	assert.Contains(t, idle, search.NoticePrompt.Message())
	assert.NotContains(t, idle, "Page")

	empty := term.Results(search.State{
		Mode: search.ModeTextQuery, Query: "sofa", Page: 1, PageSize: 10, TotalPages: 1, Fetched: true,
	}, snippet.DefaultOptions())
	assert.Contains(t, empty, search.NoticeNoResults.Message())
	assert.Contains(t, empty, "Page 1 of 1 · 0 results")

	st := search.State{
		Mode: search.ModeTextQuery, Query: "desk", Page: 2, PageSize: 10, TotalPages: 2, Total: 11,
		Fetched: true, Results: []core.Hack{billy},
	}
	full := term.Results(st, snippet.DefaultOptions())
	assert.Contains(t, full, "11. ")
	assert.Contains(t, full, "Page 2 of 2 · 11 results")
	assert.Equal(t, 1, strings.Count(full, "BILLY standing"))
}

func TestTerminalCategories(t *testing.T) {
	out := Terminal{}.Categories([]core.CategoryCount{{Name: "lighting", Count: 12}})
	assert.Contains(t, out, "Lighting")
	assert.Contains(t, out, "(12)")
}
