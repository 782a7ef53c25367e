package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestParseAppliesDefaults(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	cfg, err := Parse([]byte(`content_dir = "site"`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if cfg.ContentDir != "site" {
		t.Errorf("ContentDir: expected site, got %q", cfg.ContentDir)
	}
	if cfg.Search.MinQueryLength != 3 {
		t.Errorf("MinQueryLength: expected 3, got %d", cfg.Search.MinQueryLength)
	}
	if cfg.Search.PageSize != 10 || cfg.Search.JSONPageSize != 8 {
		t.Errorf("page sizes: expected 10/8, got %d/%d", cfg.Search.PageSize, cfg.Search.JSONPageSize)
	}
	if cfg.Search.ExcerptLength != 150 {
		t.Errorf("ExcerptLength: expected 150, got %d", cfg.Search.ExcerptLength)
	}
	if cfg.Client.Debounce.Duration != 300*time.Millisecond {
		t.Errorf("Debounce: expected 300ms, got %s", cfg.Client.Debounce)
	}
	if cfg.Routes["doc"] != "/docs/{slug}" {
		t.Errorf("expected default doc route, got %q", cfg.Routes["doc"])
	}
	if cfg.Addr() != "localhost:8080" {
		t.Errorf("Addr: expected localhost:8080, got %q", cfg.Addr())
	}
}

func TestParseOverrides(t *testing.T) {
	data := []byte(`
storage_dir = "/tmp/ds"

[server]
port = "9000"

[search]
min_query_length = 4
json_page_size = 5

[client]
debounce = "150ms"

[routes]
guide = "/guides/{slug}"
`)
	cfg, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if cfg.StorageDir != "/tmp/ds" {
		t.Errorf("StorageDir: got %q", cfg.StorageDir)
	}
	if cfg.DBPath() != filepath.Join("/tmp/ds", "docsearch.db") {
		t.Errorf("DBPath: got %q", cfg.DBPath())
	}
	if cfg.Search.MinQueryLength != 4 || cfg.Search.JSONPageSize != 5 {
		t.Errorf("search overrides not applied: %+v", cfg.Search)
	}
	if cfg.Client.Debounce.Duration != 150*time.Millisecond {
		t.Errorf("Debounce: got %s", cfg.Client.Debounce)
	}
	if cfg.Client.BaseURL != "http://localhost:9000" {
		t.Errorf("BaseURL: got %q", cfg.Client.BaseURL)
	}
	if _, ok := cfg.Routes["doc"]; ok {
		t.Errorf("explicit routes table should replace defaults, got %v", cfg.Routes)
	}
	if cfg.Routes["guide"] != "/guides/{slug}" {
		t.Errorf("guide route: got %q", cfg.Routes["guide"])
	}
}

func TestParseInvalidDuration(t *testing.T) {
	if _, err := Parse([]byte("storage_dir = \"/tmp\"\n[client]\ndebounce = \"soon\"\n")); err == nil {
		t.Fatal("expected error for invalid duration")
	}
}

func TestSaveTemplateConfigRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.toml")

	cfg := &Config{StorageDir: filepath.Join(dir, "data")}
	if err := cfg.SaveTemplateConfig(path); err != nil {
		t.Fatalf("SaveTemplateConfig: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if loaded.StorageDir != cfg.StorageDir {
		t.Errorf("StorageDir: expected %q, got %q", cfg.StorageDir, loaded.StorageDir)
	}
	if loaded.Routes["post"] != "/blog/{slug}" {
		t.Errorf("expected post route from template, got %q", loaded.Routes["post"])
	}
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if _, err := os.Stat(cfg.StorageDir); err != nil {
		t.Errorf("expected default storage dir to exist: %v", err)
	}
}
