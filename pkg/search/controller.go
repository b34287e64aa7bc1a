package search

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/rubiojr/hackfinder/pkg/core"
	"github.com/rubiojr/hackfinder/pkg/log"
	"github.com/rubiojr/hackfinder/pkg/metrics"
	"github.com/rubiojr/hackfinder/pkg/pagination"
)

// Request asks a Backend for one page. ID is the generation number the
// controller uses to recognize the matching Response.
type Request struct {
	ID       uint64 `json:"id"`
	Mode     Mode   `json:"mode"`
	Term     string `json:"term"`
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
}

// Response is the outcome of executing a Request. Exactly one of Page and
// Err is set.
type Response struct {
	Request Request
	Page    *core.ResultPage
	Err     error
}

// Option configures a Controller.
type Option func(*Controller)

// WithPageSize fixes the page size for the controller's lifetime.
func WithPageSize(n int) Option {
	return func(c *Controller) {
		c.pager = pagination.New(n)
	}
}

// WithLogger replaces the default "search" logger.
func WithLogger(l *log.Logger) Option {
	return func(c *Controller) {
		c.logger = l
	}
}

// Controller is the search-state machine of one session. It is safe for
// concurrent use, but callers are expected to funnel Complete calls through
// a single owner so the user sees responses in a sensible order.
type Controller struct {
	mu      sync.Mutex
	backend Backend
	pager   *pagination.Coordinator
	logger  *log.Logger

	mode    Mode
	term    string
	results []core.Hack
	err     error
	fetched bool

	generation uint64
	pending    map[Mode]uint64
}

// NewController returns an idle controller that fetches from backend.
func NewController(backend Backend, opts ...Option) *Controller {
	c := &Controller{
		backend: backend,
		pager:   pagination.New(pagination.DefaultPageSize),
		logger:  log.ForService("search"),
		pending: make(map[Mode]uint64),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Backend returns the backend requests are executed against.
func (c *Controller) Backend() Backend { return c.backend }

// SetMode switches to mode with payload (the query or the category name;
// ignored for ModeIdle). Changing either mode or payload clears the result
// set and the error and returns to page 1; a request pending for the old
// payload will be discarded when it completes. Entering category mode
// always resets, even for the category already shown. Re-entering text
// or idle mode with the same payload changes nothing.
func (c *Controller) SetMode(mode Mode, payload string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.setMode(mode, payload)
}

func (c *Controller) setMode(mode Mode, payload string) error {
	payload = strings.TrimSpace(payload)
	switch mode {
	case ModeIdle:
		payload = ""
	case ModeTextQuery:
		if payload == "" {
			return ErrEmptyQuery
		}
	case ModeCategory:
		if payload == "" {
			return ErrEmptyCategory
		}
	default:
		return fmt.Errorf("%w: %s", ErrInvalidTransition, mode)
	}

	if mode == c.mode && payload == c.term && mode != ModeCategory {
		return nil
	}

	c.logger.Debugf("mode %s(%q) -> %s(%q)", c.mode, c.term, mode, payload)
	delete(c.pending, c.mode)
	c.mode = mode
	c.term = payload
	c.results = nil
	c.err = nil
	c.fetched = false
	c.pager.Reset()
	return nil
}

// SubmitTextQuery enters text mode with query and returns the request for
// its first page. A blank query returns ErrEmptyQuery and changes nothing.
// An active category is cleared first. If a text request is already
// pending the call is dropped: nil request, nil error, no state change.
func (c *Controller) SubmitTextQuery(query string) (*Request, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.busy(ModeTextQuery) {
		return nil, nil
	}
	if c.mode == ModeCategory {
		c.clearTo(ModeIdle)
	}
	if err := c.setMode(ModeTextQuery, query); err != nil {
		return nil, err
	}
	return c.begin(1), nil
}

// SelectCategory enters category mode for name, clearing any text query,
// and returns the request for the first page. A pending category request
// drops the call like SubmitTextQuery.
func (c *Controller) SelectCategory(name string) (*Request, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyCategory
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.busy(ModeCategory) {
		return nil, nil
	}
	if err := c.setMode(ModeCategory, name); err != nil {
		return nil, err
	}
	return c.begin(1), nil
}

// ClearCategory leaves category mode for idle. It does nothing in other
// modes.
func (c *Controller) ClearCategory() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mode == ModeCategory {
		c.clearTo(ModeIdle)
	}
}

// ClearQuery leaves text mode for idle. It does nothing in other modes.
func (c *Controller) ClearQuery() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mode == ModeTextQuery {
		c.clearTo(ModeIdle)
	}
}

func (c *Controller) clearTo(mode Mode) {
	// Idle takes no payload, so this cannot fail.
	_ = c.setMode(mode, "")
}

// GoToPage returns the request for page n of the active search. A page
// outside [1, TotalPages] returns ErrInvalidPage. While idle, or while a
// request is pending for the active mode, the call returns nil, nil. The
// current page moves only when the response is applied.
func (c *Controller) GoToPage(n int) (*Request, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.pager.Validate(n); err != nil {
		return nil, err
	}
	if c.mode == ModeIdle || c.busy(c.mode) {
		return nil, nil
	}
	return c.begin(n), nil
}

// NextPage is GoToPage(current+1).
func (c *Controller) NextPage() (*Request, error) {
	c.mu.Lock()
	n := c.pager.CurrentPage() + 1
	c.mu.Unlock()
	return c.GoToPage(n)
}

// PrevPage is GoToPage(current-1).
func (c *Controller) PrevPage() (*Request, error) {
	c.mu.Lock()
	n := c.pager.CurrentPage() - 1
	c.mu.Unlock()
	return c.GoToPage(n)
}

// Refresh re-requests the current page of the active search.
func (c *Controller) Refresh() *Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mode == ModeIdle || c.busy(c.mode) {
		return nil
	}
	return c.begin(c.pager.CurrentPage())
}

func (c *Controller) busy(mode Mode) bool {
	if _, ok := c.pending[mode]; ok {
		c.logger.Debugf("dropping %s request: one is already in flight", mode)
		return true
	}
	return false
}

func (c *Controller) begin(page int) *Request {
	c.generation++
	c.pending[c.mode] = c.generation
	c.err = nil
	return &Request{
		ID:       c.generation,
		Mode:     c.mode,
		Term:     c.term,
		Page:     page,
		PageSize: c.pager.PageSize(),
	}
}

// Execute performs req against the backend. It reads no controller state
// besides the backend and may run on any goroutine.
func (c *Controller) Execute(ctx context.Context, req Request) Response {
	start := time.Now()

	var page *core.ResultPage
	var err error
	switch req.Mode {
	case ModeTextQuery:
		page, err = c.backend.SearchByText(ctx, req.Term, req.Page, req.PageSize)
	case ModeCategory:
		page, err = c.backend.SearchByCategory(ctx, req.Term, req.Page, req.PageSize)
	default:
		err = fmt.Errorf("%w: nothing to fetch in %s mode", ErrInvalidTransition, req.Mode)
	}
	if err == nil && page == nil {
		err = ErrMalformedResponse
	}

	metrics.ObserveBackend(req.Mode.String(), time.Since(start), err)
	if err != nil {
		c.logger.Debugf("request %d (%s %q page %d) failed: %v", req.ID, req.Mode, req.Term, req.Page, err)
		return Response{Request: req, Err: err}
	}
	return Response{Request: req, Page: page}
}

// Complete applies resp if it answers the pending request of the active
// mode and reports whether it did. Stale responses change nothing.
//
// A failed response sets the error and keeps the previous results and
// pagination. A successful one replaces the results, the total and the
// current page.
func (c *Controller) Complete(resp Response) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	req := resp.Request
	if pending, ok := c.pending[req.Mode]; !ok || pending != req.ID || req.Mode != c.mode {
		c.logger.Debugf("discarding stale response %d (%s %q)", req.ID, req.Mode, req.Term)
		metrics.RecordCompletion(req.Mode.String(), metrics.OutcomeDiscarded)
		return false
	}
	delete(c.pending, req.Mode)

	err := resp.Err
	if err == nil && resp.Page == nil {
		err = ErrMalformedResponse
	}
	if err != nil {
		c.err = &FetchError{Mode: req.Mode, Term: req.Term, Page: req.Page, Err: err}
		c.logger.Warnf("%v", c.err)
		metrics.RecordCompletion(req.Mode.String(), metrics.OutcomeFailed)
		return true
	}

	c.results = resp.Page.Results
	c.pager.SetTotal(resp.Page.Total)
	if err := c.pager.GoToPage(req.Page); err != nil {
		last := c.pager.TotalPages()
		c.logger.Warnf("page %d no longer exists for %s %q, showing page %d", req.Page, req.Mode, req.Term, last)
		_ = c.pager.GoToPage(last)
	}
	c.fetched = true
	metrics.RecordCompletion(req.Mode.String(), metrics.OutcomeApplied)
	return true
}

// Run executes req and applies the response. A nil request is a no-op.
func (c *Controller) Run(ctx context.Context, req *Request) bool {
	if req == nil {
		return false
	}
	return c.Complete(c.Execute(ctx, *req))
}

// State returns a snapshot of the controller.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := State{
		Mode:       c.mode,
		Page:       c.pager.CurrentPage(),
		PageSize:   c.pager.PageSize(),
		Total:      c.pager.Total(),
		TotalPages: c.pager.TotalPages(),
		Err:        c.err,
		Results:    slices.Clone(c.results),
		Fetched:    c.fetched,
	}
	_, s.Loading = c.pending[c.mode]
	switch c.mode {
	case ModeTextQuery:
		s.Query = c.term
	case ModeCategory:
		s.Category = c.term
	}
	return s
}
