package cmd

import (
	"context"
	"fmt"

	"github.com/rubiojr/hackfinder/pkg/render"
	"github.com/urfave/cli/v3"
)

// SimilarCommand creates the similar command
func SimilarCommand() *cli.Command {
	return &cli.Command{
		Name:      "similar",
		Usage:     "Show hacks similar to a given hack",
		ArgsUsage: "HACK_ID",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of results",
				Value: 6,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			id := c.Args().First()
			if id == "" {
				return fmt.Errorf("a hack ID is required")
			}

			cfg, err := loadConfig(c.String("config"))
			if err != nil {
				return err
			}
			backend, closeBackend, err := openBackend(cfg)
			if err != nil {
				return err
			}
			defer closeBackend()

			hacks, err := backend.Similar(ctx, id, c.Int("limit"))
			if isNotFound(err) {
				return fmt.Errorf("no hack with ID %q", id)
			}
			if err != nil {
				return fmt.Errorf("finding similar hacks: %w", err)
			}
			if len(hacks) == 0 {
				fmt.Println("Nothing similar yet.")
				return nil
			}

			term := render.Terminal{}
			for i, h := range hacks {
				fmt.Println(term.Card(render.NewCard(h, "", cfg.SnippetOptions()), i+1))
			}
			return nil
		},
	}
}
