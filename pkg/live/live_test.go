package live

import (
	"context"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rubiojr/hackfinder/pkg/core"
	"github.com/rubiojr/hackfinder/pkg/realtime"
	"github.com/rubiojr/hackfinder/pkg/search"
)

type memBackend struct {
	hacks []core.Hack
}

func (b *memBackend) page(match func(core.Hack) bool, page, pageSize int) *core.ResultPage {
	var all []core.Hack
	for _, h := range b.hacks {
		if match(h) {
			all = append(all, h)
		}
	}
	start := min((page-1)*pageSize, len(all))
	end := min(start+pageSize, len(all))
	return &core.ResultPage{Results: all[start:end], Total: len(all)}
}

func (b *memBackend) SearchByText(_ context.Context, query string, page, pageSize int) (*core.ResultPage, error) {
	return b.page(func(h core.Hack) bool {
		return strings.Contains(strings.ToLower(h.Title), strings.ToLower(query))
	}, page, pageSize), nil
}

func (b *memBackend) SearchByCategory(_ context.Context, category string, page, pageSize int) (*core.ResultPage, error) {
	return b.page(func(h core.Hack) bool {
		for _, c := range h.Categories {
			if strings.EqualFold(c, category) {
				return true
			}
		}
		return false
	}, page, pageSize), nil
}

func newBackend(desks int) *memBackend {
	b := &memBackend{}
	for i := range desks {
		b.hacks = append(b.hacks, core.Hack{
			ID: fmt.Sprintf("desk-%d", i), Title: fmt.Sprintf("Desk hack %d", i),
			URL: fmt.Sprintf("https://example.com/desk/%d", i), Categories: []string{"Workspace"},
		})
	}
	return b
}

type client struct {
	t    *testing.T
	conn *websocket.Conn
}

func dial(t *testing.T, h *Handler) *client {
	t.Helper()
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return &client{t: t, conn: conn}
}

func (c *client) send(a Action) {
	c.t.Helper()
	require.NoError(c.t, c.conn.WriteJSON(a))
}

func (c *client) read() Message {
	c.t.Helper()
	require.NoError(c.t, c.conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg Message
	require.NoError(c.t, c.conn.ReadJSON(&msg))
	return msg
}

// settled reads until a state message with no request pending.
func (c *client) settled() Message {
	c.t.Helper()
	for {
		msg := c.read()
		if msg.Type == TypeState && !msg.View.Loading {
			return msg
		}
	}
}

func TestSessionHandshake(t *testing.T) {
	c := dial(t, NewHandler(newBackend(3)))

	hello := c.read()
	assert.Equal(t, TypeHello, hello.Type)
	assert.NotEmpty(t, hello.Session)

	st := c.read()
	require.Equal(t, TypeState, st.Type)
	assert.Equal(t, hello.Session, st.Session)
	assert.Equal(t, "idle", st.View.Mode)
	assert.Equal(t, search.NoticePrompt.String(), st.View.Notice)
	assert.Equal(t, search.NoticePrompt.Message(), st.View.Message)
	assert.Empty(t, st.View.Status)
}

func TestSessionSearchAndPaging(t *testing.T) {
	c := dial(t, NewHandler(newBackend(12), WithPageSize(5)))
	c.read()
	c.read()

	c.send(Action{Action: ActionSearch, Query: "desk"})
	msg := c.settled()
	v := msg.View
	assert.Equal(t, "text", v.Mode)
	assert.Equal(t, 12, v.Total)
	assert.Equal(t, 3, v.TotalPages)
	assert.Len(t, v.Cards, 5)
	assert.True(t, v.HasNext)
	assert.False(t, v.HasPrev)
	assert.Equal(t, "Page 1 of 3 · 12 results", v.Status)

	c.send(Action{Action: ActionPage, Page: 3})
	v = c.settled().View
	assert.Equal(t, 3, v.Page)
	assert.Len(t, v.Cards, 2)

	c.send(Action{Action: ActionPrev})
	assert.Equal(t, 2, c.settled().View.Page)

	c.send(Action{Action: ActionPage, Page: 9})
	errMsg := c.read()
	assert.Equal(t, TypeError, errMsg.Type)
	assert.Equal(t, "That page does not exist.", errMsg.Error)

	c.send(Action{Action: ActionClear})
	v = c.settled().View
	assert.Equal(t, "idle", v.Mode)
	assert.Empty(t, v.Cards)
}

func TestSessionCategoryAndErrors(t *testing.T) {
	c := dial(t, NewHandler(newBackend(2)))
	c.read()
	c.read()

	c.send(Action{Action: ActionSearch, Query: "   "})
	msg := c.read()
	assert.Equal(t, TypeError, msg.Type)
	assert.Equal(t, "Type something to search for.", msg.Error)

	c.send(Action{Action: "dance"})
	msg = c.read()
	assert.Equal(t, TypeError, msg.Type)
	assert.Contains(t, msg.Error, "dance")

	c.send(Action{Action: ActionCategory, Category: "workspace"})
	v := c.settled().View
	assert.Equal(t, "category", v.Mode)
	assert.Equal(t, "workspace", v.Category)
	assert.Empty(t, v.Query)
	assert.Equal(t, 2, v.Total)
	for _, card := range v.Cards {
		for _, seg := range card.Title {
			assert.False(t, seg.Match, "category results are not highlighted")
		}
	}

	c.send(Action{Action: ActionSearch, Query: "sofa"})
	v = c.settled().View
	assert.Equal(t, "text", v.Mode)
	assert.Empty(t, v.Category)
	assert.Equal(t, search.NoticeNoResults.String(), v.Notice)
}

func TestSessionRefreshesOnIndexUpdate(t *testing.T) {
	backend := newBackend(1)
	hub := realtime.NewHub(4)
	c := dial(t, NewHandler(backend, WithHub(hub)))
	c.read()
	c.read()

	c.send(Action{Action: ActionSearch, Query: "desk"})
	require.Equal(t, 1, c.settled().View.Total)

	require.Eventually(t, func() bool { return hub.Size() == 1 }, 2*time.Second, 10*time.Millisecond)

	// Mutated before the broadcast, read by the refresh it triggers.
	backend.hacks = append(backend.hacks, core.Hack{ID: "new", Title: "New desk", URL: "https://example.com/new"})
	hub.Broadcast(realtime.NewIndexUpdated(1, "drop.jsonl"))

	msg := c.read()
	require.Equal(t, TypeIndexUpdated, msg.Type)
	assert.Equal(t, 1, msg.Index.Imported)
	assert.Equal(t, "drop.jsonl", msg.Index.Origin)

	assert.Equal(t, 2, c.settled().View.Total)
}

func TestSessionRenderer(t *testing.T) {
	render := func(_ context.Context, st search.State) (string, error) {
		return fmt.Sprintf("<p>%d results</p>", st.Total), nil
	}
	c := dial(t, NewHandler(newBackend(4), WithRenderer(render)))
	c.read()
	assert.Equal(t, "<p>0 results</p>", c.read().HTML)

	c.send(Action{Action: ActionSearch, Query: "desk"})
	assert.Equal(t, "<p>4 results</p>", c.settled().HTML)
}
