package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rubiojr/hackfinder/pkg/core"
	"github.com/rubiojr/hackfinder/pkg/search"
	"github.com/rubiojr/hackfinder/pkg/snippet"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))

	markStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("235")).
			Background(lipgloss.Color("214"))

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1).
			Margin(0, 0, 1, 0)

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)

	categoryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("32"))

	statusStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("33"))

	noticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true).
			Margin(1, 0)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))
)

// Terminal draws cards and state on a terminal. Width 0 disables
// wrapping.
type Terminal struct {
	Width int
}

// Segments renders segs with matches marked.
func Segments(segs []snippet.Segment, base lipgloss.Style) string {
	var b strings.Builder
	for _, s := range segs {
		if s.Text == "" {
			continue
		}
		if s.Match {
			b.WriteString(markStyle.Render(s.Text))
		} else {
			b.WriteString(base.Render(s.Text))
		}
	}
	return b.String()
}

// Card renders one result card, numbered n.
func (t Terminal) Card(c Card, n int) string {
	var content strings.Builder

	content.WriteString(fmt.Sprintf("%d. ", n))
	content.WriteString(Segments(c.Title, titleStyle))
	content.WriteString("\n")
	content.WriteString(metaStyle.Render(c.Origin))
	if c.Byline != "" {
		content.WriteString("\n" + metaStyle.Render(c.Byline))
	}
	content.WriteString("\n\n")
	content.WriteString(Segments(c.Snippet, lipgloss.NewStyle()))

	if len(c.Categories) > 0 {
		labels := make([]string, len(c.Categories))
		for i, name := range c.Categories {
			labels[i] = CategoryLabel(name)
		}
		content.WriteString("\n\n" + categoryStyle.Render(strings.Join(labels, ", ")))
	}
	if len(c.Tags) > 0 {
		content.WriteString("\n" + metaStyle.Render("#"+strings.Join(c.Tags, " #")))
	}

	style := cardStyle
	if t.Width > 4 {
		style = style.Width(t.Width - 2)
	}
	return style.Render(content.String())
}

// Status renders the "Page X of Y · N results" line.
func (t Terminal) Status(st search.State) string {
	return statusStyle.Render(st.Status())
}

// Notice renders the empty-state message of st, or "" when results
// should be shown instead.
func (t Terminal) Notice(st search.State) string {
	if st.Notice() == search.NoticeNone {
		return ""
	}
	return noticeStyle.Render(st.Notice().Message())
}

// Error renders the last fetch error of st, or "".
func (t Terminal) Error(st search.State) string {
	if st.Err == nil {
		return ""
	}
	return errorStyle.Render("Error: " + st.Err.Error())
}

// Results renders the full result view of st: notice or cards, then the
// status line.
func (t Terminal) Results(st search.State, opts snippet.Options) string {
	var out strings.Builder
	if e := t.Error(st); e != "" {
		out.WriteString(e + "\n")
	}
	if n := t.Notice(st); n != "" {
		out.WriteString(n + "\n")
	}
	if st.Notice() == search.NoticeNone {
		first := (st.Page-1)*st.PageSize + 1
		for i, c := range Cards(st, opts) {
			out.WriteString(t.Card(c, first+i))
			out.WriteString("\n")
		}
	}
	if st.Fetched {
		out.WriteString(t.Status(st))
		out.WriteString("\n")
	}
	return out.String()
}

// Categories renders a category list with counts.
func (t Terminal) Categories(cats []core.CategoryCount) string {
	var out strings.Builder
	for _, c := range cats {
		out.WriteString(fmt.Sprintf("%s %s\n", categoryStyle.Render(CategoryLabel(c.Name)), metaStyle.Render(fmt.Sprintf("(%d)", c.Count))))
	}
	return out.String()
}
