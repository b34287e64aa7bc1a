package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rubiojr/hackfinder/pkg/core"
	"github.com/rubiojr/hackfinder/pkg/search"
	"github.com/rubiojr/hackfinder/pkg/snippet"
)

type memBackend struct {
	hacks []core.Hack
	fail  error
}

func (b *memBackend) page(match func(core.Hack) bool, page, pageSize int) (*core.ResultPage, error) {
	if b.fail != nil {
		return nil, b.fail
	}
	var all []core.Hack
	for _, h := range b.hacks {
		if match(h) {
			all = append(all, h)
		}
	}
	start := min((page-1)*pageSize, len(all))
	end := min(start+pageSize, len(all))
	return &core.ResultPage{Results: all[start:end], Total: len(all)}, nil
}

func (b *memBackend) SearchByText(_ context.Context, query string, page, pageSize int) (*core.ResultPage, error) {
	return b.page(func(h core.Hack) bool {
		return strings.Contains(strings.ToLower(h.Title), strings.ToLower(query))
	}, page, pageSize)
}

func (b *memBackend) SearchByCategory(_ context.Context, category string, page, pageSize int) (*core.ResultPage, error) {
	return b.page(func(h core.Hack) bool {
		for _, c := range h.Categories {
			if strings.EqualFold(c, category) {
				return true
			}
		}
		return false
	}, page, pageSize)
}

func (b *memBackend) TopCategories(_ context.Context, limit int) ([]core.CategoryCount, error) {
	cats := []core.CategoryCount{{Name: "workspace", Count: 5}, {Name: "lighting", Count: 1}}
	return cats[:min(limit, len(cats))], nil
}

func newBackend() *memBackend {
	b := &memBackend{}
	for i := range 5 {
		b.hacks = append(b.hacks, core.Hack{
			ID: fmt.Sprintf("desk-%d", i), Title: fmt.Sprintf("Desk hack %d", i),
			URL: fmt.Sprintf("https://example.com/desk/%d", i), Categories: []string{"Workspace"},
		})
	}
	b.hacks = append(b.hacks, core.Hack{
		ID: "lamp", Title: "LACK lamp", URL: "https://example.com/lamp", Categories: []string{"Lighting"},
	})
	return b
}

func newModel(t *testing.T, b *memBackend) *Model {
	t.Helper()
	m := New(context.Background(), b, Options{PageSize: 2, Snippet: snippet.DefaultOptions()})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return m
}

// run executes cmd and feeds its message back into the model.
func run(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	require.NotNil(t, cmd, "expected a command")
	msg := cmd()
	m.Update(msg)
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestIdleScreenListsCategories(t *testing.T) {
	m := newModel(t, newBackend())
	run(t, m, m.loadCategories())

	view := m.View()
	assert.Contains(t, view, search.NoticePrompt.Message())
	assert.Contains(t, view, "Workspace (5)")
	assert.Contains(t, view, "Lighting (1)")
	assert.Equal(t, search.ModeIdle, m.State().Mode)
}

func TestSubmitQueryAndPage(t *testing.T) {
	m := newModel(t, newBackend())

	m.input.SetValue("desk")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.True(t, m.State().Loading)
	assert.Contains(t, m.View(), search.NoticeLoading.Message())

	run(t, m, cmd)
	st := m.State()
	require.Equal(t, search.ModeTextQuery, st.Mode)
	assert.Equal(t, 5, st.Total)
	assert.Equal(t, 3, st.TotalPages)
	assert.Len(t, st.Results, 2)
	assert.Contains(t, m.View(), "Page 1 of 3 · 5 results")
	assert.Equal(t, focusResults, m.focus)

	_, cmd = m.Update(key("n"))
	run(t, m, cmd)
	assert.Equal(t, 2, m.State().Page)

	_, cmd = m.Update(key("p"))
	run(t, m, cmd)
	assert.Equal(t, 1, m.State().Page)

	_, cmd = m.Update(key("p"))
	assert.Nil(t, cmd)
	assert.Contains(t, m.View(), "That page does not exist.")
}

func TestEmptyQueryShowsMessage(t *testing.T) {
	m := newModel(t, newBackend())

	m.input.SetValue("   ")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Equal(t, search.ModeIdle, m.State().Mode)
	assert.Contains(t, m.View(), "Type something to search for.")
}

func TestCategoryShortcut(t *testing.T) {
	m := newModel(t, newBackend())
	run(t, m, m.loadCategories())

	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	require.Equal(t, focusResults, m.focus)

	_, cmd := m.Update(key("2"))
	run(t, m, cmd)
	st := m.State()
	assert.Equal(t, search.ModeCategory, st.Mode)
	assert.Equal(t, "lighting", st.Category)
	assert.Equal(t, 1, st.Total)
	assert.Contains(t, m.View(), "category Lighting")

	_, cmd = m.Update(key("9"))
	assert.Nil(t, cmd)

	m.Update(key("x"))
	assert.Equal(t, search.ModeIdle, m.State().Mode)
}

func TestStaleResponseIgnored(t *testing.T) {
	m := newModel(t, newBackend())
	run(t, m, m.loadCategories())

	m.input.SetValue("lack")
	_, stale := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, stale)

	_, fresh := m.Update(key("1"))
	require.NotNil(t, fresh)

	run(t, m, stale)
	st := m.State()
	assert.Equal(t, search.ModeCategory, st.Mode)
	assert.True(t, st.Loading)
	assert.Empty(t, st.Results)

	run(t, m, fresh)
	st = m.State()
	assert.Equal(t, "workspace", st.Category)
	assert.Equal(t, 5, st.Total)
	assert.Len(t, st.Results, 2)
}

func TestInFlightQueryDropped(t *testing.T) {
	m := newModel(t, newBackend())

	m.input.SetValue("desk")
	_, first := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, first)

	m.setFocus(focusInput)
	m.input.SetValue("lack")
	_, second := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, second)

	run(t, m, first)
	st := m.State()
	assert.Equal(t, "desk", st.Query)
	assert.Equal(t, 5, st.Total)
}

func TestFetchErrorKeepsQuery(t *testing.T) {
	b := newBackend()
	b.fail = errors.New("backend down")
	m := newModel(t, b)

	m.input.SetValue("desk")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	run(t, m, cmd)

	st := m.State()
	require.Error(t, st.Err)
	assert.Equal(t, "desk", st.Query)
	assert.Contains(t, m.View(), "backend down")
}

func TestEscClearsQuery(t *testing.T) {
	m := newModel(t, newBackend())

	m.input.SetValue("desk")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	run(t, m, cmd)

	m.setFocus(focusInput)
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, search.ModeIdle, m.State().Mode)
	assert.Empty(t, m.input.Value())

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, focusResults, m.focus)
}

func TestInitialQuery(t *testing.T) {
	m := New(context.Background(), newBackend(), Options{PageSize: 2, Query: "lack"})
	require.NotNil(t, m.Init())

	st := m.State()
	assert.Equal(t, search.ModeTextQuery, st.Mode)
	assert.True(t, st.Loading)
	assert.Equal(t, "lack", m.input.Value())
}
