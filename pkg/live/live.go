// Package live serves interactive search sessions over WebSockets.
//
// Every connection owns one search.Controller. The browser sends actions
// (search, pick a category, change page, clear) and receives the full
// view state after every change: once when a request starts, and again
// when its response is applied. Fetches run on their own goroutines and
// are funnelled back into the session loop, which is the only code that
// touches the controller or writes to the socket.
package live

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rubiojr/hackfinder/pkg/log"
	"github.com/rubiojr/hackfinder/pkg/pagination"
	"github.com/rubiojr/hackfinder/pkg/realtime"
	"github.com/rubiojr/hackfinder/pkg/render"
	"github.com/rubiojr/hackfinder/pkg/search"
	"github.com/rubiojr/hackfinder/pkg/snippet"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// Actions understood by a session.
const (
	ActionSearch   = "search"
	ActionCategory = "category"
	ActionClear    = "clear"
	ActionPage     = "page"
	ActionNext     = "next"
	ActionPrev     = "prev"
	ActionRefresh  = "refresh"
)

// Message types sent to the browser.
const (
	TypeHello        = "hello"
	TypeState        = "state"
	TypeError        = "error"
	TypeIndexUpdated = realtime.TypeIndexUpdated
)

// Action is a message from the browser.
type Action struct {
	Action   string `json:"action"`
	Query    string `json:"query,omitempty"`
	Category string `json:"category,omitempty"`
	Page     int    `json:"page,omitempty"`
}

// View is the browser-facing projection of a search.State.
type View struct {
	Mode       string        `json:"mode"`
	Query      string        `json:"query,omitempty"`
	Category   string        `json:"category,omitempty"`
	Page       int           `json:"page"`
	TotalPages int           `json:"total_pages"`
	Total      int           `json:"total"`
	Loading    bool          `json:"loading"`
	HasPrev    bool          `json:"has_prev"`
	HasNext    bool          `json:"has_next"`
	Notice     string        `json:"notice"`
	Message    string        `json:"message,omitempty"`
	Status     string        `json:"status,omitempty"`
	Error      string        `json:"error,omitempty"`
	Cards      []render.Card `json:"cards"`
}

// Message is sent to the browser.
type Message struct {
	Type    string               `json:"type"`
	Session string               `json:"session,omitempty"`
	View    *View                `json:"view,omitempty"`
	HTML    string               `json:"html,omitempty"`
	Error   string               `json:"error,omitempty"`
	Index   *realtime.IndexEvent `json:"index,omitempty"`
}

// Renderer renders the result area of a session server-side. Its output
// is sent along with every state message.
type Renderer func(ctx context.Context, st search.State) (string, error)

// Handler upgrades requests to live sessions.
type Handler struct {
	backend  search.Backend
	hub      *realtime.Hub
	pageSize int
	snippet  snippet.Options
	render   Renderer
	upgrader websocket.Upgrader
	logger   *log.Logger
}

// Option configures a Handler.
type Option func(*Handler)

// WithHub subscribes every session to index updates. Sessions showing
// results refresh them when the index changes.
func WithHub(hub *realtime.Hub) Option {
	return func(h *Handler) { h.hub = hub }
}

// WithPageSize sets the page size of every session's controller.
func WithPageSize(n int) Option {
	return func(h *Handler) { h.pageSize = n }
}

// WithSnippetOptions sets the snippet window used for cards.
func WithSnippetOptions(opts snippet.Options) Option {
	return func(h *Handler) { h.snippet = opts }
}

// WithRenderer enables server-side HTML rendering of results.
func WithRenderer(r Renderer) Option {
	return func(h *Handler) { h.render = r }
}

// NewHandler returns a live session handler searching backend.
func NewHandler(backend search.Backend, opts ...Option) *Handler {
	h := &Handler{
		backend:  backend,
		pageSize: pagination.DefaultPageSize,
		snippet:  snippet.DefaultOptions(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
		logger: log.ForService("live"),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already answered the client.
		h.logger.Debugf("upgrade failed: %v", err)
		return
	}
	defer func() { _ = conn.Close() }()

	s := newSession(h, conn)
	s.run(r.Context())
}

func newView(st search.State, opts snippet.Options) *View {
	v := &View{
		Mode:       st.Mode.String(),
		Query:      st.Query,
		Category:   st.Category,
		Page:       st.Page,
		TotalPages: st.TotalPages,
		Total:      st.Total,
		Loading:    st.Loading,
		HasPrev:    st.HasPrev(),
		HasNext:    st.HasNext(),
		Notice:     st.Notice().String(),
		Message:    st.Notice().Message(),
		Cards:      render.Cards(st, opts),
	}
	if st.Fetched {
		v.Status = st.Status()
	}
	if st.Err != nil {
		v.Error = st.Err.Error()
	}
	return v
}
