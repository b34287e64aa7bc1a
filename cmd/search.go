package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/rubiojr/hackfinder/pkg/config"
	"github.com/rubiojr/hackfinder/pkg/render"
	"github.com/rubiojr/hackfinder/pkg/search"
	"github.com/urfave/cli/v3"
)

// SearchCommand creates the search command
func SearchCommand() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Search hacks by text, or browse a category",
		ArgsUsage: "QUERY...",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "category",
				Usage: "Browse a category instead of searching",
			},
			&cli.IntFlag{
				Name:  "page",
				Usage: "Page to show",
				Value: 1,
			},
			&cli.IntFlag{
				Name:  "width",
				Usage: "Wrap cards at this width (0 disables wrapping)",
				Value: 0,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print the result page as JSON",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg, err := loadConfig(c.String("config"))
			if err != nil {
				return err
			}
			backend, closeBackend, err := openBackend(cfg)
			if err != nil {
				return err
			}
			defer closeBackend()

			st, err := runSearch(ctx, backend, cfg, strings.Join(c.Args().Slice(), " "), c.String("category"), c.Int("page"))
			if err != nil {
				return err
			}

			if c.Bool("json") {
				if st.Err != nil {
					return st.Err
				}
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(st)
			}
			fmt.Print(render.Terminal{Width: c.Int("width")}.Results(st, cfg.SnippetOptions()))
			if st.Err != nil {
				return st.Err
			}
			return nil
		},
	}
}

// runSearch drives a controller through one search: the first page, then
// the requested page once the total is known. Fetch failures are left in
// the returned state.
func runSearch(ctx context.Context, backend search.Backend, cfg *config.Config, query, category string, page int) (search.State, error) {
	ctrl := search.NewController(backend, search.WithPageSize(cfg.PageSize))

	var req *search.Request
	var err error
	if category != "" {
		req, err = ctrl.SelectCategory(category)
	} else {
		req, err = ctrl.SubmitTextQuery(query)
	}
	if err != nil {
		return search.State{}, userError(err)
	}
	ctrl.Run(ctx, req)

	if page > 1 && ctrl.State().Err == nil {
		req, err := ctrl.GoToPage(page)
		if err != nil {
			return search.State{}, userError(err)
		}
		ctrl.Run(ctx, req)
	}
	return ctrl.State(), nil
}
