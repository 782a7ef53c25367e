package cmd

import (
	"context"
	"fmt"

	"github.com/rubiojr/docsearch/pkg/content"
	"github.com/rubiojr/docsearch/pkg/log"
	"github.com/rubiojr/docsearch/pkg/storage"
	"github.com/urfave/cli/v3"
)

// ImportCommand creates the import command
func ImportCommand() *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Import the markdown content directory into the document store",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "dir",
				Usage: "Content directory (defaults to content_dir from the config)",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Parse the content directory without writing to the store",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return runImport(ctx, c.String("config"), c.String("dir"), c.Bool("dry-run"))
		},
	}
}

func runImport(ctx context.Context, configPath, dir string, dryRun bool) error {
	cfg, store, err := openStore(configPath)
	if err != nil {
		return err
	}
	defer closeStore(store)

	if dir == "" {
		dir = cfg.ContentDir
	}

	if dryRun {
		docs, err := content.LoadDir(dir)
		if err != nil {
			return err
		}
		for _, d := range docs {
			fmt.Printf("%-10s %-8s %s\n", d.Visibility, d.Type, d.Slug)
		}
		fmt.Printf("%d documents found in %s\n", len(docs), dir)
		return nil
	}

	res, err := importDir(ctx, store, dir)
	if err != nil {
		return err
	}
	fmt.Printf("Imported %d documents from %s (%d removed)\n", res.Stored, dir, res.Removed)
	return nil
}

// importDir loads every markdown file under dir and makes the store match it.
func importDir(ctx context.Context, store *storage.Store, dir string) (storage.SyncResult, error) {
	docs, err := content.LoadDir(dir)
	if err != nil {
		return storage.SyncResult{}, fmt.Errorf("loading content: %w", err)
	}

	res, err := store.Sync(ctx, docs)
	if err != nil {
		return storage.SyncResult{}, fmt.Errorf("storing documents: %w", err)
	}
	log.ForService("import").Debugf("synced %s: %d stored, %d removed", dir, res.Stored, res.Removed)
	return res, nil
}
