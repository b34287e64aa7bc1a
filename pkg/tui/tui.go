// Package tui is the interactive terminal browser: a search box over a
// scrollable list of result cards, driven by a search.Controller.
//
// Backend calls run as bubbletea commands off the update loop. Their
// responses come back as messages and are applied with Controller.Complete
// inside Update, so the controller only changes on the update goroutine.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rubiojr/hackfinder/pkg/core"
	"github.com/rubiojr/hackfinder/pkg/log"
	"github.com/rubiojr/hackfinder/pkg/render"
	"github.com/rubiojr/hackfinder/pkg/search"
	"github.com/rubiojr/hackfinder/pkg/snippet"
)

const (
	headerHeight = 3
	footerHeight = 2

	// DefaultCategories is how many categories the idle screen offers.
	DefaultCategories = 9
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))

	modeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	messageStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	shortcutStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("33"))
)

type focus int

const (
	focusInput focus = iota
	focusResults
)

// responseMsg carries a backend response back to the update loop.
type responseMsg search.Response

type categoriesMsg struct {
	cats []core.CategoryCount
	err  error
}

// Options configures the browser.
type Options struct {
	PageSize int
	Snippet  snippet.Options
	// Query is searched for on start when set.
	Query string
	// Categories is how many top categories the idle screen lists.
	Categories int
}

// Model is the bubbletea model of the browser.
type Model struct {
	ctx     context.Context
	backend search.Backend
	ctrl    *search.Controller
	opts    Options
	logger  *log.Logger

	input    textinput.Model
	viewport viewport.Model
	ready    bool
	width    int
	focus    focus

	categories []core.CategoryCount
	message    string
}

// New returns a browser searching backend. ctx bounds every backend call.
func New(ctx context.Context, backend search.Backend, opts Options) *Model {
	if opts.Categories <= 0 {
		opts.Categories = DefaultCategories
	}
	logger := log.ForService("tui")

	in := textinput.New()
	in.Prompt = "Search: "
	in.Placeholder = "BILLY, KALLAX, LACK…"
	in.CharLimit = 200
	in.Focus()

	return &Model{
		ctx:     ctx,
		backend: backend,
		ctrl:    search.NewController(backend, search.WithPageSize(opts.PageSize), search.WithLogger(logger)),
		opts:    opts,
		logger:  logger,
		input:   in,
		focus:   focusInput,
	}
}

// Run starts the browser in the alternate screen and blocks until the
// user quits or ctx is cancelled.
func Run(ctx context.Context, backend search.Backend, opts Options) error {
	p := tea.NewProgram(New(ctx, backend, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("running browser: %w", err)
	}
	return nil
}

// State returns the controller snapshot, for tests.
func (m *Model) State() search.State {
	return m.ctrl.State()
}

func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, m.loadCategories()}
	if q := strings.TrimSpace(m.opts.Query); q != "" {
		m.input.SetValue(q)
		cmds = append(cmds, m.submit(q))
	}
	return tea.Batch(cmds...)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case responseMsg:
		if m.ctrl.Complete(search.Response(msg)) {
			m.viewport.GotoTop()
		}
		m.refresh()
		return m, nil

	case categoriesMsg:
		if msg.err != nil {
			m.logger.Warnf("loading categories: %v", msg.err)
		} else {
			m.categories = msg.cats
		}
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	if m.focus == focusInput {
		switch msg.Type {
		case tea.KeyEnter:
			return m, m.submit(m.input.Value())
		case tea.KeyEsc:
			if m.input.Value() == "" {
				m.setFocus(focusResults)
				return m, nil
			}
			m.input.SetValue("")
			m.ctrl.ClearQuery()
			m.message = ""
			m.refresh()
			return m, nil
		case tea.KeyTab:
			m.setFocus(focusResults)
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	switch key := msg.String(); key {
	case "q":
		return m, tea.Quit
	case "/", "tab":
		m.setFocus(focusInput)
		return m, textinput.Blink
	case "n", "right":
		return m, m.navigate(m.ctrl.NextPage)
	case "p", "left":
		return m, m.navigate(m.ctrl.PrevPage)
	case "r":
		return m, m.fetch(m.ctrl.Refresh())
	case "esc", "x":
		m.ctrl.ClearCategory()
		m.ctrl.ClearQuery()
		m.input.SetValue("")
		m.message = ""
		m.refresh()
		return m, nil
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		if i := int(key[0] - '1'); i < len(m.categories) {
			return m, m.selectCategory(m.categories[i].Name)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *Model) submit(query string) tea.Cmd {
	req, err := m.ctrl.SubmitTextQuery(query)
	if err != nil {
		m.message = userMessage(err)
		m.refresh()
		return nil
	}
	m.message = ""
	m.setFocus(focusResults)
	m.refresh()
	return m.fetch(req)
}

func (m *Model) selectCategory(name string) tea.Cmd {
	req, err := m.ctrl.SelectCategory(name)
	if err != nil {
		m.message = userMessage(err)
		m.refresh()
		return nil
	}
	m.input.SetValue("")
	m.message = ""
	m.refresh()
	return m.fetch(req)
}

func (m *Model) navigate(step func() (*search.Request, error)) tea.Cmd {
	req, err := step()
	if err != nil {
		m.message = userMessage(err)
		m.refresh()
		return nil
	}
	m.message = ""
	m.refresh()
	return m.fetch(req)
}

// fetch executes req off the update loop. A nil request fetches nothing.
func (m *Model) fetch(req *search.Request) tea.Cmd {
	if req == nil {
		return nil
	}
	r := *req
	return func() tea.Msg {
		return responseMsg(m.ctrl.Execute(m.ctx, r))
	}
}

func (m *Model) loadCategories() tea.Cmd {
	lister, ok := m.backend.(search.CategoryLister)
	if !ok {
		return nil
	}
	limit := m.opts.Categories
	return func() tea.Msg {
		cats, err := lister.TopCategories(m.ctx, limit)
		return categoriesMsg{cats: cats, err: err}
	}
}

func (m *Model) setFocus(f focus) {
	m.focus = f
	if f == focusInput {
		m.input.Focus()
	} else {
		m.input.Blur()
	}
}

func (m *Model) resize(width, height int) {
	m.width = width
	h := max(height-headerHeight-footerHeight, 1)
	if !m.ready {
		m.viewport = viewport.New(width, h)
		m.ready = true
	} else {
		m.viewport.Width = width
		m.viewport.Height = h
	}
	m.refresh()
}

func (m *Model) refresh() {
	if m.ready {
		m.viewport.SetContent(m.body())
	}
}

func (m *Model) terminal() render.Terminal {
	if m.width > 4 {
		return render.Terminal{Width: m.width - 2}
	}
	return render.Terminal{}
}

func (m *Model) body() string {
	st := m.ctrl.State()
	if st.Mode != search.ModeIdle {
		return m.terminal().Results(st, m.opts.Snippet)
	}

	var b strings.Builder
	b.WriteString(m.terminal().Notice(st))
	b.WriteString("\n")
	if len(m.categories) > 0 {
		b.WriteString("\nOr browse a category:\n\n")
		for i, c := range m.categories {
			fmt.Fprintf(&b, "  %s %s (%d)\n", shortcutStyle.Render(fmt.Sprintf("%d", i+1)), render.CategoryLabel(c.Name), c.Count)
		}
	}
	return b.String()
}

func (m *Model) modeLine() string {
	st := m.ctrl.State()
	switch st.Mode {
	case search.ModeTextQuery:
		return fmt.Sprintf("searching %q", st.Query)
	case search.ModeCategory:
		return "category " + render.CategoryLabel(st.Category)
	}
	return ""
}

func (m *Model) help() string {
	if m.focus == focusInput {
		return "enter search · esc clear · tab results · ctrl+c quit"
	}
	return "n/p page · 1-9 category · r refresh · x clear · / search · q quit"
}

func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("hackfinder"))
	if mode := m.modeLine(); mode != "" {
		b.WriteString("  " + modeStyle.Render(mode))
	}
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	if m.ready {
		b.WriteString(m.viewport.View())
	} else {
		b.WriteString(m.body())
	}

	b.WriteString("\n")
	if m.message != "" {
		b.WriteString(messageStyle.Render(m.message) + "  ")
	}
	b.WriteString(helpStyle.Render(m.help()))
	return b.String()
}

func userMessage(err error) string {
	switch {
	case errors.Is(err, search.ErrEmptyQuery):
		return "Type something to search for."
	case errors.Is(err, search.ErrEmptyCategory):
		return "Pick a category to browse."
	case errors.Is(err, search.ErrInvalidPage):
		return "That page does not exist."
	}
	return err.Error()
}
