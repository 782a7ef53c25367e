package cmd

import (
	"fmt"

	"github.com/rubiojr/docsearch/pkg/config"
	"github.com/rubiojr/docsearch/pkg/content"
	"github.com/rubiojr/docsearch/pkg/log"
	"github.com/rubiojr/docsearch/pkg/storage"
)

// openStore loads the configuration and opens the document store it points
// to. The caller must close the store with closeStore.
func openStore(configPath string) (*config.Config, *storage.Store, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	store, err := storage.Open(cfg.DBPath())
	if err != nil {
		return nil, nil, fmt.Errorf("opening document store: %w", err)
	}
	return cfg, store, nil
}

func closeStore(store *storage.Store) {
	if err := store.Close(); err != nil {
		log.ForService("storage").Warnf("failed to close document store: %v", err)
	}
}

func newResolver(cfg *config.Config) content.URLResolver {
	return content.NewPatternResolver(cfg.Routes)
}
