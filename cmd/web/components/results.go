package components

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"github.com/rubiojr/hackfinder/cmd/web/components/types"
	"github.com/rubiojr/hackfinder/pkg/core"
	"github.com/rubiojr/hackfinder/pkg/render"
	"github.com/rubiojr/hackfinder/pkg/snippet"
)

// Segments renders highlighted text, wrapping matches in <mark>.
func Segments(segs []snippet.Segment) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		for _, s := range segs {
			if s.Text == "" {
				continue
			}
			if s.Match {
				if err := raw(w, "<mark>"); err != nil {
					return err
				}
			}
			if err := text(w, s.Text); err != nil {
				return err
			}
			if s.Match {
				if err := raw(w, "</mark>"); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// Card renders one result card.
func Card(c render.Card) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := raw(w, `<article class="card">`); err != nil {
			return err
		}
		if c.ImageURL != "" {
			if err := raw(w, `<img loading="lazy" alt="" src="`, safeURL(c.ImageURL), `">`); err != nil {
				return err
			}
		}
		if err := raw(w, `<div><h2><a target="_blank" rel="noopener noreferrer" href="`, safeURL(c.URL), `">`); err != nil {
			return err
		}
		if err := Segments(c.Title).Render(ctx, w); err != nil {
			return err
		}
		if err := raw(w, `</a></h2><p class="meta">`); err != nil {
			return err
		}
		if err := text(w, c.Origin); err != nil {
			return err
		}
		if err := raw(w, `</p>`); err != nil {
			return err
		}
		if c.Byline != "" {
			if err := raw(w, `<p class="meta">`); err != nil {
				return err
			}
			if err := text(w, c.Byline); err != nil {
				return err
			}
			if err := raw(w, `</p>`); err != nil {
				return err
			}
		}
		if err := raw(w, `<p class="snippet">`); err != nil {
			return err
		}
		if err := Segments(c.Snippet).Render(ctx, w); err != nil {
			return err
		}
		if err := raw(w, `</p>`); err != nil {
			return err
		}
		if len(c.Categories) > 0 {
			if err := categoryLinks(w, c.Categories, ""); err != nil {
				return err
			}
		}
		if len(c.Tags) > 0 {
			if err := raw(w, `<p class="meta">#`); err != nil {
				return err
			}
			if err := text(w, strings.Join(c.Tags, " #")); err != nil {
				return err
			}
			if err := raw(w, `</p>`); err != nil {
				return err
			}
		}
		return raw(w, `<p class="meta"><a href="`, attr(HackURL(c.ID)), `">Similar hacks</a></p></div></article>`)
	})
}

func categoryLinks(w io.Writer, names []string, active string) error {
	if err := raw(w, `<ul class="chips">`); err != nil {
		return err
	}
	for _, name := range names {
		class := ""
		if strings.EqualFold(name, active) {
			class = ` class="active"`
		}
		if err := raw(w, `<li><a`, class, ` data-action="category" data-category="`, attr(name),
			`" href="`, attr(CategoryURL(name)), `">`); err != nil {
			return err
		}
		if err := text(w, render.CategoryLabel(name)); err != nil {
			return err
		}
		if err := raw(w, `</a></li>`); err != nil {
			return err
		}
	}
	return raw(w, `</ul>`)
}

// CategoryList renders the top categories with their counts.
func CategoryList(cats []core.CategoryCount, active string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if len(cats) == 0 {
			return nil
		}
		if err := raw(w, `<ul class="chips">`); err != nil {
			return err
		}
		for _, c := range cats {
			class := ""
			if strings.EqualFold(c.Name, active) {
				class = ` class="active"`
			}
			if err := raw(w, `<li><a`, class, ` data-action="category" data-category="`, attr(c.Name),
				`" href="`, attr(CategoryURL(c.Name)), `">`); err != nil {
				return err
			}
			if err := text(w, fmt.Sprintf("%s (%d)", render.CategoryLabel(c.Name), c.Count)); err != nil {
				return err
			}
			if err := raw(w, `</a></li>`); err != nil {
				return err
			}
		}
		return raw(w, `</ul>`)
	})
}

// Results renders the result area: error, notice or cards, and the pager.
// It is the fragment live sessions replace on every state change.
func Results(data types.PageData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if data.Error != "" {
			if err := raw(w, `<p class="error">`); err != nil {
				return err
			}
			if err := text(w, data.Error); err != nil {
				return err
			}
			if err := raw(w, `</p>`); err != nil {
				return err
			}
		}
		if data.Notice != "" {
			if err := raw(w, `<p class="notice">`); err != nil {
				return err
			}
			if err := text(w, data.Notice); err != nil {
				return err
			}
			return raw(w, `</p>`)
		}
		for _, c := range data.Cards {
			if err := Card(c).Render(ctx, w); err != nil {
				return err
			}
		}
		if data.Status == "" {
			return nil
		}
		return Pager(data).Render(ctx, w)
	})
}

// Pager renders the previous/next links and the status line.
func Pager(data types.PageData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := raw(w, `<nav class="pager"><span>`); err != nil {
			return err
		}
		if data.HasPrevPage {
			prev := data.CurrentPage - 1
			if err := raw(w, `<a data-action="prev" data-page="`, strconv.Itoa(prev), `" href="`,
				attr(PageURL(data, prev)), `">&larr; Previous</a>`); err != nil {
				return err
			}
		}
		if err := raw(w, `</span><span>`); err != nil {
			return err
		}
		if err := text(w, data.Status); err != nil {
			return err
		}
		if err := raw(w, `</span><span>`); err != nil {
			return err
		}
		if data.HasNextPage {
			next := data.CurrentPage + 1
			if err := raw(w, `<a data-action="next" data-page="`, strconv.Itoa(next), `" href="`,
				attr(PageURL(data, next)), `">Next &rarr;</a>`); err != nil {
				return err
			}
		}
		return raw(w, `</span></nav>`)
	})
}
