package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/rubiojr/hackfinder/pkg/ingest"
	"github.com/urfave/cli/v3"
)

// ImportCommand creates the import command
func ImportCommand() *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "Import crawler dumps (JSON array or JSON lines, optionally .gz or .zst) into the index",
		ArgsUsage: "FILE... (use - for stdin)",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "batch-size",
				Usage: "Hacks written per transaction",
				Value: ingest.DefaultBatchSize,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			files := c.Args().Slice()
			if len(files) == 0 {
				return fmt.Errorf("at least one file is required (use - for stdin)")
			}
			return importFiles(ctx, c.String("config"), files, c.Int("batch-size"))
		},
	}
}

// importFiles imports each file in turn, stopping at the first failure.
func importFiles(ctx context.Context, configPath string, files []string, batchSize int) error {
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

	importer := ingest.NewImporter(idx, ingest.WithBatchSize(batchSize))

	var total ingest.Result
	for _, file := range files {
		var res ingest.Result
		if file == "-" {
			res, err = importer.ImportReader(ctx, os.Stdin, "stdin")
		} else {
			res, err = importer.ImportFile(ctx, file)
		}
		if err != nil {
			return err
		}
		fmt.Printf("%s: read %d, stored %d, skipped %d\n", file, res.Read, res.Stored, res.Skipped)
		total.Read += res.Read
		total.Stored += res.Stored
		total.Skipped += res.Skipped
	}

	if len(files) > 1 {
		fmt.Printf("\nTotal: read %d, stored %d, skipped %d\n", total.Read, total.Stored, total.Skipped)
	}
	return nil
}
