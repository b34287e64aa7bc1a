package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/rubiojr/hackfinder/pkg/db"
	"github.com/rubiojr/hackfinder/pkg/storage"
	"github.com/urfave/cli/v3"
)

// MigrateCommand creates the migrate command
func MigrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Run database migrations",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "status",
				Usage: "Show migration status without applying migrations",
				Value: false,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return RunMigrations(c.String("config"), c.Bool("status"))
		},
	}
}

// RunMigrations handles the migration process (exported for testing)
func RunMigrations(configPath string, statusOnly bool) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	if _, err := os.Stat(cfg.IndexPath); os.IsNotExist(err) {
		fmt.Printf("Index does not exist, will be created on first use: %s\n", cfg.IndexPath)
		return nil
	}

	idx, err := storage.OpenWithoutMigrations(cfg.IndexPath)
	if err != nil {
		return fmt.Errorf("opening index: %w", err)
	}
	defer func() {
		if err := idx.Close(); err != nil {
			fmt.Printf("Warning: failed to close index: %v\n", err)
		}
	}()

	migrationManager := db.NewMigrationManager(idx.DB())
	fmt.Printf("=== Index: %s ===\n", idx.Path())

	if statusOnly {
		if err := showMigrationStatus(migrationManager); err != nil {
			return fmt.Errorf("showing migration status: %w", err)
		}
		fmt.Println("\nMigration status check completed")
		return nil
	}

	applied, err := migrationManager.ApplyPendingMigrations()
	if err != nil {
		return fmt.Errorf("applying migrations: %w", err)
	}
	if applied == 0 {
		fmt.Println("Index is up to date")
	} else {
		fmt.Printf("Applied %d migration(s)\n", applied)
	}
	return nil
}

// showMigrationStatus displays the current migration status
func showMigrationStatus(manager *db.MigrationManager) error {
	status, err := manager.GetMigrationStatus()
	if err != nil {
		return err
	}

	fmt.Printf("Applied migrations: %d\n", len(status.Applied))
	for _, migration := range status.Applied {
		appliedTime := "unknown"
		if migration.AppliedAt != nil {
			appliedTime = migration.AppliedAt.Format("2006-01-02 15:04:05")
		}
		fmt.Printf("  ✓ %03d: %s (applied: %s)\n", migration.Version, migration.Name, appliedTime)
	}

	fmt.Printf("Pending migrations: %d\n", len(status.Pending))
	for _, migration := range status.Pending {
		fmt.Printf("  • %03d: %s\n", migration.Version, migration.Name)
	}

	if len(status.Pending) == 0 {
		fmt.Println("  (none - index is up to date)")
	}

	return nil
}
