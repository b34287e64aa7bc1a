package components

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/rubiojr/hackfinder/cmd/web/components/types"
)

// Index is the search page.
func Index(data types.PageData) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := raw(w, `<form class="search" action="/" method="get">`,
			`<input type="search" name="q" autofocus placeholder="BILLY, KALLAX, LACK…" value="`, attr(data.Query), `">`,
			`<button type="submit">Search</button></form>`); err != nil {
			return err
		}
		if err := CategoryList(data.Categories, data.Category).Render(ctx, w); err != nil {
			return err
		}
		if err := raw(w, `<section id="results">`); err != nil {
			return err
		}
		if err := Results(data).Render(ctx, w); err != nil {
			return err
		}
		return raw(w, `</section>`)
	})
	return Layout(data, true, body)
}

// HackPage shows a single hack and the hacks similar to it.
func HackPage(data types.PageData) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if data.Error != "" {
			if err := raw(w, `<p class="error">`); err != nil {
				return err
			}
			if err := text(w, data.Error); err != nil {
				return err
			}
			return raw(w, `</p>`)
		}
		if len(data.Cards) > 0 {
			if err := Card(data.Cards[0]).Render(ctx, w); err != nil {
				return err
			}
		}
		if err := raw(w, `<h3>Similar hacks</h3>`); err != nil {
			return err
		}
		if len(data.Similar) == 0 {
			return raw(w, `<p class="notice">Nothing similar yet.</p>`)
		}
		for _, c := range data.Similar {
			if err := Card(c).Render(ctx, w); err != nil {
				return err
			}
		}
		return nil
	})
	return Layout(data, false, body)
}
