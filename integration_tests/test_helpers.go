package integration_tests

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/rubiojr/docsearch/pkg/api"
	"github.com/rubiojr/docsearch/pkg/config"
	"github.com/rubiojr/docsearch/pkg/content"
	"github.com/rubiojr/docsearch/pkg/storage"
)

// testSite is a small content tree covering every document type and status.
var testSite = map[string]string{
	"docs/introduction.md": `---
title: Introduction
date: 2024-01-01
---
Welcome to the project. This guide walks through the basics.
`,
	"docs/setup.md": `---
title: Setup
date: 2024-03-01
excerpt: A short intro to setting things up
---
# Setup

Install the binary and run ` + "`docsearch init`" + `.
`,
	"posts/release-notes.md": `---
title: Release notes
date: 2024-02-01
---
The intro screen was redesigned. Search is now **faster**.
`,
	"docs/roadmap.md": `---
title: Roadmap intro
status: draft
---
Not ready.
`,
	"about.md": `---
title: About
status: unlisted
---
Intro to the team.
`,
}

// writeSite creates files under a fresh content directory and returns it.
func writeSite(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for rel, body := range files {
		p := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatalf("creating %s: %v", filepath.Dir(p), err)
		}
		if err := os.WriteFile(p, []byte(body), 0644); err != nil {
			t.Fatalf("writing %s: %v", p, err)
		}
	}
	return dir
}

// CreateTestConfig returns a configuration rooted in temporary directories.
func CreateTestConfig(t *testing.T, contentDir string) *config.Config {
	t.Helper()
	cfg, err := config.Parse([]byte("storage_dir = \"" + filepath.ToSlash(t.TempDir()) + "\"\n"))
	if err != nil {
		t.Fatalf("parsing config: %v", err)
	}
	cfg.ContentDir = contentDir
	return cfg
}

// importSite loads contentDir into a new store.
func importSite(t *testing.T, cfg *config.Config) *storage.Store {
	t.Helper()
	store, err := storage.Open(cfg.DBPath())
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	docs, err := content.LoadDir(cfg.ContentDir)
	if err != nil {
		t.Fatalf("loading content: %v", err)
	}
	if _, err := store.Sync(context.Background(), docs); err != nil {
		t.Fatalf("syncing store: %v", err)
	}
	return store
}

// startAPI serves the JSON API over store.
func startAPI(t *testing.T, cfg *config.Config, store *storage.Store) *httptest.Server {
	t.Helper()
	server := api.NewServer(store, content.NewPatternResolver(cfg.Routes), cfg.Search)
	mux := http.NewServeMux()
	server.RegisterRoutes(mux)
	ts := httptest.NewServer(api.Wrap(mux))
	t.Cleanup(ts.Close)
	return ts
}
