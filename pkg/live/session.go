package live

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/rubiojr/hackfinder/pkg/log"
	"github.com/rubiojr/hackfinder/pkg/metrics"
	"github.com/rubiojr/hackfinder/pkg/realtime"
	"github.com/rubiojr/hackfinder/pkg/search"
)

type session struct {
	id      string
	h       *Handler
	conn    *websocket.Conn
	ctrl    *search.Controller
	results chan search.Response
	logger  *log.Logger
}

func newSession(h *Handler, conn *websocket.Conn) *session {
	return &session{
		id:      uuid.NewString(),
		h:       h,
		conn:    conn,
		ctrl:    search.NewController(h.backend, search.WithPageSize(h.pageSize)),
		results: make(chan search.Response, 4),
		logger:  h.logger,
	}
}

func (s *session) run(parent context.Context) {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	metrics.SessionOpened()
	defer metrics.SessionClosed()
	s.logger.Debugf("%s: session opened", s.id)
	defer s.logger.Debugf("%s: session closed", s.id)

	var events <-chan realtime.Event
	if s.h.hub != nil {
		id, ch := s.h.hub.Register()
		defer s.h.hub.Unregister(id)
		events = ch
	}

	actions := make(chan Action)
	readErr := make(chan error, 1)
	go s.readLoop(ctx, actions, readErr)

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	if err := s.write(Message{Type: TypeHello, Session: s.id}); err != nil {
		return
	}
	if err := s.sendState(ctx); err != nil {
		return
	}

	for {
		var err error
		select {
		case <-ctx.Done():
			return
		case rerr := <-readErr:
			if !websocket.IsCloseError(rerr, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debugf("%s: read: %v", s.id, rerr)
			}
			return
		case a := <-actions:
			err = s.handle(ctx, a)
		case resp := <-s.results:
			s.ctrl.Complete(resp)
			err = s.sendState(ctx)
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			err = s.indexUpdated(ctx, ev)
		case <-ping.C:
			if err := s.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			err = s.conn.WriteMessage(websocket.PingMessage, nil)
		}
		if err != nil {
			s.logger.Debugf("%s: write: %v", s.id, err)
			return
		}
	}
}

func (s *session) readLoop(ctx context.Context, actions chan<- Action, readErr chan<- error) {
	s.conn.SetReadLimit(maxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var a Action
		if err := s.conn.ReadJSON(&a); err != nil {
			readErr <- err
			return
		}
		_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
		select {
		case actions <- a:
		case <-ctx.Done():
			return
		}
	}
}

// handle applies a browser action to the controller.
func (s *session) handle(ctx context.Context, a Action) error {
	var (
		req *search.Request
		err error
	)
	switch a.Action {
	case ActionSearch:
		req, err = s.ctrl.SubmitTextQuery(a.Query)
	case ActionCategory:
		req, err = s.ctrl.SelectCategory(a.Category)
	case ActionClear:
		if s.ctrl.State().Mode == search.ModeCategory {
			s.ctrl.ClearCategory()
		} else {
			s.ctrl.ClearQuery()
		}
	case ActionPage:
		req, err = s.ctrl.GoToPage(a.Page)
	case ActionNext:
		req, err = s.ctrl.NextPage()
	case ActionPrev:
		req, err = s.ctrl.PrevPage()
	case ActionRefresh:
		req = s.ctrl.Refresh()
	default:
		err = fmt.Errorf("unknown action %q", a.Action)
	}

	if err != nil {
		return s.write(Message{Type: TypeError, Error: userError(err)})
	}
	s.dispatch(ctx, req)
	return s.sendState(ctx)
}

func (s *session) indexUpdated(ctx context.Context, ev realtime.Event) error {
	index := ev.Index
	if err := s.write(Message{Type: TypeIndexUpdated, Index: &index}); err != nil {
		return err
	}
	req := s.ctrl.Refresh()
	if req == nil {
		return nil
	}
	s.dispatch(ctx, req)
	return s.sendState(ctx)
}

// dispatch executes req in the background and queues its response for
// the session loop. A nil req is ignored.
func (s *session) dispatch(ctx context.Context, req *search.Request) {
	if req == nil {
		return
	}
	go func() {
		resp := s.ctrl.Execute(ctx, *req)
		select {
		case s.results <- resp:
		case <-ctx.Done():
		}
	}()
}

func (s *session) sendState(ctx context.Context) error {
	st := s.ctrl.State()
	msg := Message{Type: TypeState, Session: s.id, View: newView(st, s.h.snippet)}
	if s.h.render != nil {
		html, err := s.h.render(ctx, st)
		if err != nil {
			s.logger.Errorf("%s: rendering results: %v", s.id, err)
		} else {
			msg.HTML = html
		}
	}
	return s.write(msg)
}

func (s *session) write(msg Message) error {
	if err := s.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return s.conn.WriteJSON(msg)
}

func userError(err error) string {
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
