package snippet

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHighlight(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		query string
		want  []Segment
	}{
		{
			name:  "empty query",
			text:  "BILLY bookcase",
			query: "",
			want:  []Segment{{Text: "BILLY bookcase"}},
		},
		{
			name:  "empty text",
			text:  "",
			query: "billy",
			want:  []Segment{{Text: ""}},
		},
		{
			name:  "no match",
			text:  "BILLY bookcase",
			query: "sofa",
			want:  []Segment{{Text: "BILLY bookcase"}},
		},
		{
			name:  "case insensitive, every occurrence",
			text:  "Desk and another DESK",
			query: "desk",
			want: []Segment{
				{Text: ""},
				{Text: "Desk", Match: true},
				{Text: " and another "},
				{Text: "DESK", Match: true},
				{Text: ""},
			},
		},
		{
			name:  "metacharacters are literal",
			text:  "cost (approx.) $20",
			query: "(approx.)",
			want: []Segment{
				{Text: "cost "},
				{Text: "(approx.)", Match: true},
				{Text: " $20"},
			},
		},
		{
			name:  "overlapping occurrences merge",
			text:  "aaa",
			query: "aa",
			want: []Segment{
				{Text: ""},
				{Text: "aaa", Match: true},
				{Text: ""},
			},
		},
		{
			name:  "touching occurrences stay apart",
			text:  "abab",
			query: "ab",
			want: []Segment{
				{Text: ""},
				{Text: "ab", Match: true},
				{Text: ""},
				{Text: "ab", Match: true},
				{Text: ""},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Highlight(tt.text, tt.query))
		})
	}
}

// Property: segments are lossless and alternate non-match / match.
func TestHighlightLosslessAndAlternating(t *testing.T) {
	cases := [][2]string{
		{"IKEA KALLAX hack: kallax + LACK = kallaX", "kallax"},
		{"ü Ü ü", "ü"},
		{"a.b.c", "."},
		{"[x] [X]", "[x]"},
		{"nothing here", "zzz"},
		{"aaaa", "a"},
		{"Standing desk, desk riser", "desk"},
	}

	for _, c := range cases {
		segments := Highlight(c[0], c[1])
		require.Equal(t, c[0], Join(segments))
		require.Equal(t, 1, len(segments)%2, "odd number of segments for %q", c[0])

		for i, s := range segments {
			assert.Equal(t, i%2 == 1, s.Match, "segment %d of %q", i, c[0])
			if s.Match {
				assert.True(t, strings.EqualFold(s.Text, c[1]) || len(s.Text) > len(c[1]))
			}
		}
	}
}

func TestHighlightAgreesWithExtract(t *testing.T) {
	text := strings.Repeat("filler ", 60) + "HEMNES dresser" + strings.Repeat(" tail", 60)

	excerpt := Extract(text, "hemnes")
	segments := Highlight(excerpt, "hemnes")
	require.True(t, HasMatch(segments))
	assert.Equal(t, "HEMNES", segments[1].Text)
}

func TestHasMatch(t *testing.T) {
	assert.False(t, HasMatch(nil))
	assert.False(t, HasMatch(Highlight("abc", "")))
	assert.True(t, HasMatch(Highlight("abc", "B")))
}
