package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/rubiojr/hackfinder/pkg/config"
	"github.com/rubiojr/hackfinder/pkg/log"
	"github.com/rubiojr/hackfinder/pkg/tui"
	"github.com/urfave/cli/v3"
)

// BrowseCommand creates the browse command
func BrowseCommand() *cli.Command {
	return &cli.Command{
		Name:      "browse",
		Usage:     "Browse hacks interactively in the terminal",
		ArgsUsage: "[QUERY...]",
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg, err := loadConfig(c.String("config"))
			if err != nil {
				return err
			}

			// Log lines would corrupt the screen.
			logPath, err := config.GetDefaultLogPath()
			if err != nil {
				return err
			}
			if err := log.SetOutputFile(logPath); err != nil {
				return fmt.Errorf("redirecting log output: %w", err)
			}

			backend, closeBackend, err := openBackend(cfg)
			if err != nil {
				return err
			}
			defer closeBackend()

			return tui.Run(ctx, backend, tui.Options{
				PageSize: cfg.PageSize,
				Snippet:  cfg.SnippetOptions(),
				Query:    strings.Join(c.Args().Slice(), " "),
			})
		},
	}
}
