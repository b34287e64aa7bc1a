package cmd

import (
	"context"
	"fmt"

	"github.com/rubiojr/hackfinder/pkg/storage"
	"github.com/urfave/cli/v3"
)

// OptimizeCommand creates the optimize command
func OptimizeCommand() *cli.Command {
	return &cli.Command{
		Name:  "optimize",
		Usage: "Index optimization and maintenance commands",
		Commands: []*cli.Command{
			{
				Name:  "check",
				Usage: "Run integrity checks on the index",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "quick",
						Usage: "Skip deep FTS5-specific integrity checks",
						Value: false,
					},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					return withIndex(c.String("config"), func(idx *storage.Index) error {
						return checkIndex(ctx, idx, !c.Bool("quick"))
					})
				},
			},
			{
				Name:  "fts-rebuild",
				Usage: "Rebuild the FTS5 index",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Force rebuild without checking first (skips integrity check)",
						Value: false,
					},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					return withIndex(c.String("config"), func(idx *storage.Index) error {
						return rebuildFTS(ctx, idx, c.Bool("force"))
					})
				},
			},
			{
				Name:  "analyze",
				Usage: "Run ANALYZE to update query planner statistics",
				Action: func(ctx context.Context, c *cli.Command) error {
					return withIndex(c.String("config"), func(idx *storage.Index) error {
						fmt.Println("Running ANALYZE...")
						if err := idx.Analyze(ctx); err != nil {
							return fmt.Errorf("analyzing index: %w", err)
						}
						fmt.Println("✓ ANALYZE completed successfully")
						return nil
					})
				},
			},
			{
				Name:  "vacuum",
				Usage: "Run VACUUM to defragment the index",
				Action: func(ctx context.Context, c *cli.Command) error {
					return withIndex(c.String("config"), func(idx *storage.Index) error {
						fmt.Println("Running VACUUM, this may take a while for large indexes...")
						if err := idx.Vacuum(ctx); err != nil {
							return fmt.Errorf("vacuuming index: %w", err)
						}
						fmt.Println("✓ VACUUM completed successfully")
						return nil
					})
				},
			},
			{
				Name:  "checkpoint",
				Usage: "Run WAL checkpoint to flush changes",
				Action: func(ctx context.Context, c *cli.Command) error {
					return withIndex(c.String("config"), func(idx *storage.Index) error {
						fmt.Println("Running WAL checkpoint...")
						if err := idx.Checkpoint(ctx); err != nil {
							return fmt.Errorf("checkpointing index: %w", err)
						}
						fmt.Println("✓ WAL checkpoint completed successfully")
						return nil
					})
				},
			},
			{
				Name:  "all",
				Usage: "Run all optimization operations (FTS merge, analyze, checkpoint)",
				Action: func(ctx context.Context, c *cli.Command) error {
					return withIndex(c.String("config"), func(idx *storage.Index) error {
						fmt.Println("Running all optimization operations...")
						if err := idx.Optimize(ctx); err != nil {
							return fmt.Errorf("optimizing index: %w", err)
						}
						fmt.Println("All optimization operations completed successfully")
						return nil
					})
				},
			},
		},
	}
}

// withIndex opens the configured index for the duration of fn.
func withIndex(configPath string, fn func(*storage.Index) error) error {
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
	return fn(idx)
}

// checkIndex runs integrity checks on the index
func checkIndex(ctx context.Context, idx *storage.Index, deepFTS bool) error {
	fmt.Print("Running integrity check")
	if !deepFTS {
		fmt.Println(" (quick mode, skipping FTS checks)...")
	} else {
		fmt.Println("...")
	}

	problems, err := idx.Check(ctx, deepFTS)
	if err != nil {
		return err
	}
	if len(problems) > 0 {
		for _, p := range problems {
			fmt.Printf("✗ %s\n", p)
		}
		fmt.Println("\nTo fix FTS index corruption, run: hackfinder optimize fts-rebuild")
		return fmt.Errorf("integrity check failed: %d problem(s)", len(problems))
	}

	fmt.Println("✓ Index passed integrity checks")
	return nil
}

// rebuildFTS rebuilds the FTS5 index, skipping healthy indexes unless
// forced.
func rebuildFTS(ctx context.Context, idx *storage.Index, force bool) error {
	if !force {
		fmt.Print("Checking FTS index... ")
		problems, err := idx.Check(ctx, true)
		if err != nil {
			return err
		}
		if len(problems) == 0 {
			fmt.Println("✓ OK (no rebuild needed)")
			return nil
		}
		fmt.Printf("✗ NEEDS REBUILD - %s\n", problems[0])
	}

	fmt.Print("Rebuilding FTS index... ")
	n, err := idx.RebuildFTS(ctx)
	if err != nil {
		fmt.Printf("✗ FAILED - %v\n", err)
		return err
	}
	fmt.Printf("✓ OK (%s hacks indexed)\n", formatNumber(n))
	return nil
}
