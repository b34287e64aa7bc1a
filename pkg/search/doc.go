// Package search implements hackfinder's search-state controller.
//
// # Overview
//
// A Controller owns the state of one search session: which mode is active
// (idle, free-text query or category browsing), the active query or
// category, the current page of results and its pagination metadata, and
// the lifecycle of the requests that fetch those pages from a Backend.
//
// The two query modes are mutually exclusive. The state is a single tagged
// value, a Mode plus one payload string, sharing one result set and one
// pagination.Coordinator. Switching modes or payloads clears the visible
// results and returns to page 1.
//
// # Request lifecycle
//
// Operations that need data (SubmitTextQuery, SelectCategory, GoToPage)
// update the state synchronously and hand back a *Request. The caller
// executes it, on any goroutine, and feeds the Response back through
// Complete:
//
//	req, err := ctrl.SubmitTextQuery("standing desk")
//	if err != nil {
//		return err // ErrEmptyQuery
//	}
//	if req != nil {
//		ctrl.Complete(ctrl.Execute(ctx, *req))
//	}
//	state := ctrl.State()
//
// Run does both steps for synchronous callers.
//
// At most one request per mode is pending. A new request for a mode that
// already has one pending is dropped and the operation returns a nil
// request without error. Every request carries a generation number;
// Complete applies a response only if it answers the pending request of
// the active mode, so responses that resolve after the user moved on are
// discarded.
//
// # Errors
//
// Local rejections (ErrEmptyQuery, ErrEmptyCategory, ErrInvalidPage,
// ErrInvalidTransition) leave the state unchanged. A failed fetch is
// recorded as a *FetchError in State.Err while the previous results and
// pagination stay visible.
package search
