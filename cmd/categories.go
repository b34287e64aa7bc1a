package cmd

import (
	"context"
	"fmt"

	"github.com/rubiojr/hackfinder/pkg/render"
	"github.com/urfave/cli/v3"
)

// CategoriesCommand creates the categories command
func CategoriesCommand() *cli.Command {
	return &cli.Command{
		Name:  "categories",
		Usage: "List the most used categories",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of categories",
				Value: 20,
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

			cats, err := backend.TopCategories(ctx, c.Int("limit"))
			if err != nil {
				return fmt.Errorf("listing categories: %w", err)
			}
			if len(cats) == 0 {
				fmt.Println("No categories found")
				return nil
			}
			fmt.Print(render.Terminal{}.Categories(cats))
			return nil
		},
	}
}
