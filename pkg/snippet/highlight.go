// Package snippet derives the relevance context shown for a search result:
// a bounded excerpt centered on the first query occurrence, and the
// segmentation of a text into matching and non-matching runs used to
// highlight the query.
//
// Everything here is a pure function of its inputs. Both the extractor and
// the highlighter match the query literally and case-insensitively through
// the same matcher, so the window picked by Extract always contains the
// occurrence Highlight marks first.
package snippet

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Segment is a run of text that either matches the query or does not.
type Segment struct {
	Text  string `json:"text"`
	Match bool   `json:"match"`
}

// matcher compiles a literal, case-insensitive pattern for query.
// QuoteMeta output always compiles.
func matcher(query string) *regexp.Regexp {
	return regexp.MustCompile("(?i)" + regexp.QuoteMeta(query))
}

// Highlight splits text into segments around every case-insensitive
// occurrence of query.
//
// Segments alternate non-match / match, starting and ending with a
// non-match segment that may be empty, so the i-th segment is a match
// exactly when i is odd. Overlapping occurrences are merged into a single
// match segment. Concatenating the segments always yields text.
//
// If text or query is empty the whole text is returned as one non-match
// segment.
func Highlight(text, query string) []Segment {
	if text == "" || query == "" {
		return []Segment{{Text: text}}
	}

	spans := matchSpans(text, matcher(query))
	segments := make([]Segment, 0, 2*len(spans)+1)
	prev := 0
	for _, sp := range spans {
		segments = append(segments,
			Segment{Text: text[prev:sp[0]]},
			Segment{Text: text[sp[0]:sp[1]], Match: true},
		)
		prev = sp[1]
	}
	return append(segments, Segment{Text: text[prev:]})
}

// HasMatch reports whether any segment is a match.
func HasMatch(segments []Segment) bool {
	for _, s := range segments {
		if s.Match {
			return true
		}
	}
	return false
}

// Join concatenates the segment texts.
func Join(segments []Segment) string {
	var b strings.Builder
	for _, s := range segments {
		b.WriteString(s.Text)
	}
	return b.String()
}

// matchSpans returns the byte spans covered by occurrences of re in text.
// The scan restarts one rune after each match start so overlapping
// occurrences are found; overlapping spans are merged, touching spans are
// kept apart.
func matchSpans(text string, re *regexp.Regexp) [][2]int {
	var spans [][2]int
	for pos := 0; pos < len(text); {
		loc := re.FindStringIndex(text[pos:])
		if loc == nil || loc[1] == loc[0] {
			break
		}
		start, end := pos+loc[0], pos+loc[1]
		if n := len(spans); n > 0 && start < spans[n-1][1] {
			if end > spans[n-1][1] {
				spans[n-1][1] = end
			}
		} else {
			spans = append(spans, [2]int{start, end})
		}
		_, size := utf8.DecodeRuneInString(text[start:])
		pos = start + size
	}
	return spans
}
