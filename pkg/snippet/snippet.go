package snippet

import (
	"strings"
	"unicode/utf8"
)

const (
	// DefaultWindow is the maximum excerpt length in characters.
	DefaultWindow = 260
	// DefaultContextBefore is how many characters precede the first
	// occurrence of the query in the excerpt.
	DefaultContextBefore = 80

	// Ellipsis marks text cut from either end of an excerpt.
	Ellipsis = "…"
	// Placeholder replaces the excerpt of a result without any text.
	Placeholder = "No description available yet."
)

// Options controls excerpt extraction. Lengths are in characters (runes).
type Options struct {
	// Window is the excerpt length. Non-positive means DefaultWindow.
	Window int
	// ContextBefore is the lead-in kept before the match. Negative means
	// DefaultContextBefore; zero puts the match at the start of the window.
	ContextBefore int
}

// DefaultOptions returns the options used by Extract.
func DefaultOptions() Options {
	return Options{Window: DefaultWindow, ContextBefore: DefaultContextBefore}
}

func (o Options) normalized() Options {
	if o.Window <= 0 {
		o.Window = DefaultWindow
	}
	if o.ContextBefore < 0 {
		o.ContextBefore = DefaultContextBefore
	}
	return o
}

// Extract returns an excerpt of text centered on the first occurrence of
// query, using DefaultOptions.
func Extract(text, query string) string {
	return ExtractWithOptions(text, query, DefaultOptions())
}

// ExtractWithOptions returns an excerpt of at most opts.Window characters
// of text (plus ellipsis markers).
//
// With an empty query, or a query that does not occur in text, the excerpt
// is the start of text, suffixed with Ellipsis when truncated. Otherwise
// the window starts opts.ContextBefore characters before the first
// case-insensitive occurrence and is shifted left when it would run past
// the end, so it spans min(Window, len(text)) characters. The window is
// trimmed of surrounding whitespace and marked with Ellipsis on each side
// where text was cut. Empty text yields Placeholder. Invalid UTF-8 bytes
// count as one character each and are copied through unchanged.
func ExtractWithOptions(text, query string, opts Options) string {
	if text == "" {
		return Placeholder
	}
	opts = opts.normalized()

	n := utf8.RuneCountInString(text)
	if query == "" {
		return truncate(text, n, opts.Window)
	}

	loc := matcher(query).FindStringIndex(text)
	if loc == nil {
		return truncate(text, n, opts.Window)
	}

	idx := utf8.RuneCountInString(text[:loc[0]])
	start := max(idx-opts.ContextBefore, 0)
	end := start + opts.Window
	if end > n {
		end = n
		start = max(end-opts.Window, 0)
	}

	excerpt := strings.TrimSpace(text[runeOffset(text, start):runeOffset(text, end)])
	if start > 0 {
		excerpt = Ellipsis + excerpt
	}
	if end < n {
		excerpt += Ellipsis
	}
	return excerpt
}

func truncate(text string, n, window int) string {
	if n <= window {
		return text
	}
	return text[:runeOffset(text, window)] + Ellipsis
}

// runeOffset returns the byte offset of the i-th character of s. Invalid
// UTF-8 bytes count as one character each, matching utf8.RuneCountInString,
// and are kept as they are.
func runeOffset(s string, i int) int {
	off := 0
	for ; i > 0 && off < len(s); i-- {
		_, size := utf8.DecodeRuneInString(s[off:])
		off += size
	}
	return off
}
