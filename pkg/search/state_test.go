package search

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rubiojr/hackfinder/pkg/core"
)

func TestNotice(t *testing.T) {
	hits := []core.Hack{{ID: "1"}}

	tests := []struct {
		name  string
		state State
		want  Notice
	}{
		{"idle", State{Mode: ModeIdle}, NoticePrompt},
		{"idle with leftovers", State{Mode: ModeIdle, Fetched: true}, NoticePrompt},
		{"loading", State{Mode: ModeTextQuery, Query: "desk", Loading: true}, NoticeLoading},
		{"loading over results", State{Mode: ModeTextQuery, Loading: true, Fetched: true, Results: hits}, NoticeLoading},
		{"not fetched yet", State{Mode: ModeCategory, Category: "Lighting"}, NoticePrompt},
		{"error", State{Mode: ModeTextQuery, Err: errors.New("x")}, NoticeNone},
		{"no results", State{Mode: ModeTextQuery, Fetched: true}, NoticeNoResults},
		{"results", State{Mode: ModeCategory, Fetched: true, Results: hits}, NoticeNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.state.Notice())
		})
	}
}

func TestNoticeMessages(t *testing.T) {
	assert.Equal(t, "Type your favourite IKEA product and press Enter to give it a new file!", NoticePrompt.Message())
	assert.Equal(t, "No results found. Try a different query.", NoticeNoResults.Message())
	assert.Empty(t, NoticeNone.Message())
	assert.Equal(t, "no_results", NoticeNoResults.String())
}

func TestStateTerm(t *testing.T) {
	assert.Equal(t, "desk", State{Mode: ModeTextQuery, Query: "desk"}.Term())
	assert.Equal(t, "Lighting", State{Mode: ModeCategory, Category: "Lighting"}.Term())
	assert.Equal(t, "", State{Mode: ModeCategory, Category: "Lighting"}.HighlightQuery())
	assert.Equal(t, "desk", State{Mode: ModeTextQuery, Query: "desk"}.HighlightQuery())
}

func TestStatus(t *testing.T) {
	s := State{Page: 1, TotalPages: 1, Total: 1}
	assert.Equal(t, "Page 1 of 1 · 1 result", s.Status())
	assert.False(t, s.HasNext())
	assert.False(t, s.HasPrev())

	s = State{Page: 2, TotalPages: 3, Total: 25}
	assert.Equal(t, "Page 2 of 3 · 25 results", s.Status())
	assert.True(t, s.HasNext())
	assert.True(t, s.HasPrev())
}

func TestModeText(t *testing.T) {
	for _, m := range []Mode{ModeIdle, ModeTextQuery, ModeCategory} {
		parsed, err := ParseMode(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, parsed)
	}

	_, err := ParseMode("browse")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	data, err := json.Marshal(State{Mode: ModeCategory, Category: "Lighting"})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"mode":"category"`)

	var decoded struct {
		Mode Mode `json:"mode"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"mode":"text"}`), &decoded))
	assert.Equal(t, ModeTextQuery, decoded.Mode)
}
