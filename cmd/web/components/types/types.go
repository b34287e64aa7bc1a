package types

import (
	"github.com/rubiojr/hackfinder/pkg/core"
	"github.com/rubiojr/hackfinder/pkg/render"
)

// PageData holds the data for page templates
type PageData struct {
	Title   string
	Version string

	Mode     string
	Query    string
	Category string

	Cards      []render.Card
	Categories []core.CategoryCount

	// Notice is the empty-state message shown instead of results.
	Notice  string
	Loading bool
	Status  string
	Error   string

	CurrentPage int
	TotalPages  int
	HasPrevPage bool
	HasNextPage bool

	// Hack and Similar feed the single hack page.
	Hack    *core.Hack
	Similar []render.Card
}
