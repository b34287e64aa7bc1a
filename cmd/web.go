package cmd

import (
	"context"
	"fmt"
	"net/http"

	"github.com/a-h/templ"
	"github.com/klauspost/compress/gzhttp"

	"github.com/rubiojr/hackfinder/cmd/web/components"
	"github.com/rubiojr/hackfinder/cmd/web/components/types"
	"github.com/rubiojr/hackfinder/pkg/config"
	"github.com/rubiojr/hackfinder/pkg/live"
	"github.com/rubiojr/hackfinder/pkg/log"
	"github.com/rubiojr/hackfinder/pkg/realtime"
	"github.com/rubiojr/hackfinder/pkg/render"
	"github.com/rubiojr/hackfinder/pkg/search"
	"github.com/rubiojr/hackfinder/pkg/snippet"
	"github.com/rubiojr/hackfinder/pkg/version"
)

const (
	homeCategories = 12
	similarHacks   = 6
)

// WebServer serves the HTML interface.
type WebServer struct {
	backend Backend
	config  *config.Config
	snippet snippet.Options
	hub     *realtime.Hub
	logger  *log.Logger
}

func newWebServer(backend Backend, cfg *config.Config, hub *realtime.Hub) *WebServer {
	return &WebServer{
		backend: backend,
		config:  cfg,
		snippet: cfg.SnippetOptions(),
		hub:     hub,
		logger:  log.ForService("web"),
	}
}

// RegisterRoutes mounts the web UI on mux.
func (s *WebServer) RegisterRoutes(mux *http.ServeMux) {
	mux.Handle("GET /{$}", gzhttp.GzipHandler(http.HandlerFunc(s.handleHome)))
	mux.Handle("GET /hack/{id}", gzhttp.GzipHandler(http.HandlerFunc(s.handleHack)))
	mux.Handle("GET /live", s.liveHandler())
}

// liveHandler serves the WebSocket sessions behind the search page.
// Results are pushed as HTML rendered with the same components as the
// page itself.
func (s *WebServer) liveHandler() *live.Handler {
	renderResults := func(ctx context.Context, st search.State) (string, error) {
		data := components.FromState(types.PageData{}, st, s.snippet)
		return components.RenderString(ctx, components.Results(data))
	}
	opts := []live.Option{
		live.WithPageSize(s.config.PageSize),
		live.WithSnippetOptions(s.snippet),
		live.WithRenderer(renderResults),
	}
	if s.hub != nil {
		opts = append(opts, live.WithHub(s.hub))
	}
	return live.NewHandler(s.backend, opts...)
}

func (s *WebServer) pageData(title string) types.PageData {
	return types.PageData{
		Title:   title,
		Version: version.APIVersion(),
	}
}

// handleHome renders the search page. Searches given in the URL are run
// server side so the page works without JavaScript.
func (s *WebServer) handleHome(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	data := s.pageData("hackfinder")

	params, err := search.ParseParams(r.URL.Query())
	if err != nil {
		data.Error = "Invalid parameters. Check the page number and try again."
		s.render(w, r, http.StatusBadRequest, components.Index(data))
		return
	}

	ctrl := search.NewController(s.backend, search.WithPageSize(s.config.PageSize))
	var req *search.Request
	switch params.Mode() {
	case search.ModeTextQuery:
		req, _ = ctrl.SubmitTextQuery(params.Query)
		data.Title = params.Query + " - hackfinder"
	case search.ModeCategory:
		req, _ = ctrl.SelectCategory(params.Category)
		data.Title = render.CategoryLabel(params.Category) + " - hackfinder"
	}
	ctrl.Run(ctx, req)

	status := http.StatusOK
	if params.Page > 1 && params.Mode() != search.ModeIdle && ctrl.State().Err == nil {
		req, err := ctrl.GoToPage(params.Page)
		if err != nil {
			data.Error = "That page does not exist."
			status = http.StatusNotFound
		} else {
			ctrl.Run(ctx, req)
		}
	}

	data = components.FromState(data, ctrl.State(), s.snippet)

	cats, err := s.backend.TopCategories(ctx, homeCategories)
	if err != nil {
		s.logger.Warnf("loading categories: %v", err)
	}
	data.Categories = cats

	s.render(w, r, status, components.Index(data))
}

// handleHack renders a single hack with the hacks similar to it.
func (s *WebServer) handleHack(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")

	hack, err := s.backend.Get(ctx, id)
	if isNotFound(err) {
		data := s.pageData("Not found - hackfinder")
		data.Error = fmt.Sprintf("No hack with ID %q.", id)
		s.render(w, r, http.StatusNotFound, components.HackPage(data))
		return
	}
	if err != nil {
		s.logger.Errorf("loading hack %s: %v", id, err)
		data := s.pageData("Error - hackfinder")
		data.Error = "Could not load this hack. Please try again in a moment."
		s.render(w, r, http.StatusBadGateway, components.HackPage(data))
		return
	}

	data := s.pageData(hack.DisplayTitle() + " - hackfinder")
	data.Hack = hack
	data.Cards = []render.Card{render.NewCard(*hack, "", s.snippet)}

	similar, err := s.backend.Similar(ctx, id, similarHacks)
	if err != nil {
		s.logger.Warnf("finding hacks similar to %s: %v", id, err)
	}
	for _, h := range similar {
		data.Similar = append(data.Similar, render.NewCard(h, "", s.snippet))
	}

	s.render(w, r, http.StatusOK, components.HackPage(data))
}

func (s *WebServer) render(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	html, err := components.RenderString(r.Context(), c)
	if err != nil {
		http.Error(w, fmt.Sprintf("Template error: %v", err), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write([]byte(html)); err != nil {
		s.logger.Debugf("writing response: %v", err)
	}
}
