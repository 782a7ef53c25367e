package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/rubiojr/docsearch/pkg/config"
	"github.com/rubiojr/docsearch/pkg/db"
	"github.com/rubiojr/docsearch/pkg/storage"
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
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	dbPath := cfg.DBPath()
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		fmt.Printf("Database does not exist, will be created on first use: %s\n", dbPath)
		return nil
	}

	store, err := storage.OpenWithoutMigrations(dbPath)
	if err != nil {
		return fmt.Errorf("opening document store: %w", err)
	}
	defer closeStore(store)

	manager := store.Migrations()
	if statusOnly {
		if err := showMigrationStatus(manager); err != nil {
			return fmt.Errorf("showing migration status: %w", err)
		}
		fmt.Println("\nMigration status check completed")
		return nil
	}

	applied, err := manager.ApplyPendingMigrations()
	if err != nil {
		return fmt.Errorf("applying migrations: %w", err)
	}
	fmt.Printf("Applied %d migrations\n", applied)
	fmt.Println("\nAll migrations completed successfully")
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
		fmt.Println("  (none - database is up to date)")
	}

	return nil
}
