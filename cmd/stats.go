package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
)

// StatsCommand creates the stats command
func StatsCommand() *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Show index statistics",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print statistics as JSON",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return showStats(ctx, c.String("config"), c.Bool("json"))
		},
	}
}

// showStats displays index statistics
func showStats(ctx context.Context, configPath string, asJSON bool) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	idx, err := openIndex(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := idx.Close(); err != nil {
			fmt.Printf("Warning: failed to close index: %v\n", err)
		}
	}()

	stats, err := idx.Stats(ctx)
	if err != nil {
		return fmt.Errorf("getting stats: %w", err)
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	}

	top, err := idx.TopCategories(ctx, 10)
	if err != nil {
		return fmt.Errorf("listing categories: %w", err)
	}
	formatStats(stats, top)
	return nil
}
