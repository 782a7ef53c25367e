package cmd

import (
	"context"
	"fmt"

	"github.com/rubiojr/docsearch/pkg/storage"
	"github.com/urfave/cli/v3"
)

// OptimizeCommand creates the optimize command
func OptimizeCommand() *cli.Command {
	return &cli.Command{
		Name:  "optimize",
		Usage: "Database optimization and maintenance commands",
		Commands: []*cli.Command{
			{
				Name:  "analyze",
				Usage: "Run ANALYZE to update query planner statistics",
				Action: func(ctx context.Context, c *cli.Command) error {
					return runMaintenance(c.String("config"), "ANALYZE", (*storage.Store).Analyze)
				},
			},
			{
				Name:  "vacuum",
				Usage: "Run VACUUM to defragment the database",
				Action: func(ctx context.Context, c *cli.Command) error {
					return runMaintenance(c.String("config"), "VACUUM", (*storage.Store).Vacuum)
				},
			},
			{
				Name:  "checkpoint",
				Usage: "Run WAL checkpoint to flush changes",
				Action: func(ctx context.Context, c *cli.Command) error {
					return runMaintenance(c.String("config"), "WAL checkpoint", (*storage.Store).WALCheckpoint)
				},
			},
			{
				Name:  "all",
				Usage: "Run all optimization operations (optimize, analyze, checkpoint)",
				Action: func(ctx context.Context, c *cli.Command) error {
					return optimizeAll(c.String("config"))
				},
			},
		},
	}
}

func runMaintenance(configPath, name string, op func(*storage.Store) error) error {
	_, store, err := openStore(configPath)
	if err != nil {
		return err
	}
	defer closeStore(store)

	fmt.Printf("Running %s...\n", name)
	if err := op(store); err != nil {
		return fmt.Errorf("running %s: %w", name, err)
	}
	fmt.Printf("✓ %s completed\n", name)
	return nil
}

// optimizeAll runs all optimization operations
func optimizeAll(configPath string) error {
	_, store, err := openStore(configPath)
	if err != nil {
		return err
	}
	defer closeStore(store)

	steps := []struct {
		name string
		op   func(*storage.Store) error
	}{
		{"PRAGMA optimize", (*storage.Store).Optimize},
		{"ANALYZE", (*storage.Store).Analyze},
		{"WAL checkpoint", (*storage.Store).WALCheckpoint},
	}

	fmt.Println("Running all optimization operations...")
	fmt.Println()
	for _, step := range steps {
		fmt.Printf("Running %s...\n", step.name)
		if err := step.op(store); err != nil {
			return fmt.Errorf("running %s: %w", step.name, err)
		}
		fmt.Printf("✓ %s completed\n", step.name)
	}
	fmt.Println()
	fmt.Println("All optimization operations completed")
	return nil
}
