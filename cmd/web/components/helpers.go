package components

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"github.com/rubiojr/hackfinder/cmd/web/components/types"
	"github.com/rubiojr/hackfinder/pkg/render"
	"github.com/rubiojr/hackfinder/pkg/search"
	"github.com/rubiojr/hackfinder/pkg/snippet"
)

// FromState fills the result fields of a page from a controller snapshot.
func FromState(data types.PageData, st search.State, opts snippet.Options) types.PageData {
	data.Mode = st.Mode.String()
	data.Query = st.Query
	data.Category = st.Category
	data.Cards = render.Cards(st, opts)
	data.Notice = st.Notice().Message()
	data.Loading = st.Loading
	data.CurrentPage = st.Page
	data.TotalPages = st.TotalPages
	data.HasPrevPage = st.HasPrev()
	data.HasNextPage = st.HasNext()
	if st.Fetched {
		data.Status = st.Status()
	}
	if st.Err != nil {
		data.Error = FormatSearchError(st.Err)
	}
	return data
}

// RenderString renders c to a string, for fragments pushed over live
// sessions.
func RenderString(ctx context.Context, c templ.Component) (string, error) {
	var b strings.Builder
	if err := c.Render(ctx, &b); err != nil {
		return "", err
	}
	return b.String(), nil
}

// PageURL links to page n of the search described by data.
func PageURL(data types.PageData, n int) string {
	q := url.Values{}
	switch {
	case data.Query != "":
		q.Set("q", data.Query)
	case data.Category != "":
		q.Set("category", data.Category)
	}
	q.Set("page", strconv.Itoa(n))
	return "/?" + q.Encode()
}

// CategoryURL links to the first page of a category.
func CategoryURL(name string) string {
	return "/?" + url.Values{"category": {name}}.Encode()
}

// HackURL links to the page of a single hack.
func HackURL(id string) string {
	return "/hack/" + url.PathEscape(id)
}

// FormatSearchError converts search errors into user-friendly messages.
func FormatSearchError(err error) string {
	var fe *search.FetchError
	if errors.As(err, &fe) && fe.Mode == search.ModeCategory {
		return fmt.Sprintf("Could not load the %q category. Please try again.", fe.Term)
	}
	return "Search failed. Please try again in a moment."
}

// text writes escaped text.
func text(w io.Writer, s string) error {
	_, err := io.WriteString(w, templ.EscapeString(s))
	return err
}

// raw writes trusted markup.
func raw(w io.Writer, parts ...string) error {
	for _, p := range parts {
		if _, err := io.WriteString(w, p); err != nil {
			return err
		}
	}
	return nil
}

// attr escapes an attribute value.
func attr(s string) string {
	return templ.EscapeString(s)
}

// safeURL sanitizes an external URL for use in href or src.
func safeURL(s string) string {
	return templ.EscapeString(string(templ.URL(s)))
}
