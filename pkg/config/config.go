package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed config.toml.sample
var configTemplate string

const (
	DefaultMinQueryLength = 3
	DefaultPageSize       = 10
	DefaultJSONPageSize   = 8
	DefaultExcerptLength  = 150
	DefaultDebounce       = 300 * time.Millisecond
)

type Config struct {
	StorageDir string            `toml:"storage_dir"`
	ContentDir string            `toml:"content_dir"`
	Server     ServerConfig      `toml:"server"`
	Search     SearchConfig      `toml:"search"`
	Client     ClientConfig      `toml:"client"`
	Routes     map[string]string `toml:"routes"`
}

type ServerConfig struct {
	Host string `toml:"host"`
	Port string `toml:"port"`
}

type SearchConfig struct {
	MinQueryLength int `toml:"min_query_length"`
	PageSize       int `toml:"page_size"`
	JSONPageSize   int `toml:"json_page_size"`
	ExcerptLength  int `toml:"excerpt_length"`
}

// DefaultSearchConfig returns the search settings used when none are configured.
func DefaultSearchConfig() SearchConfig {
	return SearchConfig{
		MinQueryLength: DefaultMinQueryLength,
		PageSize:       DefaultPageSize,
		JSONPageSize:   DefaultJSONPageSize,
		ExcerptLength:  DefaultExcerptLength,
	}
}

type ClientConfig struct {
	BaseURL  string   `toml:"base_url"`
	Debounce Duration `toml:"debounce"`
}

type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

func GetDefaultConfig() (*Config, error) {
	storageDir, err := GetDefaultStorageDir()
	if err != nil {
		return nil, fmt.Errorf("getting default storage directory: %w", err)
	}
	cfg := &Config{StorageDir: storageDir}
	cfg.applyDefaults()
	return cfg, nil
}

func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return GetDefaultConfig()
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	return Parse(data)
}

// Parse decodes TOML configuration and fills in defaults for anything left unset.
func Parse(data []byte) (*Config, error) {
	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if config.StorageDir == "" {
		storageDir, err := GetDefaultStorageDir()
		if err != nil {
			return nil, fmt.Errorf("getting default storage directory: %w", err)
		}
		config.StorageDir = storageDir
	}

	config.applyDefaults()
	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.ContentDir == "" {
		c.ContentDir = "content"
	}
	if c.Server.Host == "" {
		c.Server.Host = "localhost"
	}
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Search.MinQueryLength <= 0 {
		c.Search.MinQueryLength = DefaultMinQueryLength
	}
	if c.Search.PageSize <= 0 {
		c.Search.PageSize = DefaultPageSize
	}
	if c.Search.JSONPageSize <= 0 {
		c.Search.JSONPageSize = DefaultJSONPageSize
	}
	if c.Search.ExcerptLength <= 0 {
		c.Search.ExcerptLength = DefaultExcerptLength
	}
	if c.Client.BaseURL == "" {
		c.Client.BaseURL = "http://" + c.Server.Host + ":" + c.Server.Port
	}
	if c.Client.Debounce.Duration <= 0 {
		c.Client.Debounce = Duration{DefaultDebounce}
	}
	if c.Routes == nil {
		c.Routes = map[string]string{
			"doc":  "/docs/{slug}",
			"page": "/{slug}",
			"post": "/blog/{slug}",
		}
	}
}

// DBPath is the SQLite document store inside StorageDir.
func (c *Config) DBPath() string {
	return filepath.Join(c.StorageDir, "docsearch.db")
}

// Addr returns the host:port the web server listens on.
func (c *Config) Addr() string {
	return c.Server.Host + ":" + c.Server.Port
}

func (c *Config) SaveConfig(configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	return os.WriteFile(configPath, data, 0644)
}

// SaveTemplateConfig writes the commented sample configuration, pointing
// storage_dir at this config's storage directory.
func (c *Config) SaveTemplateConfig(configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	template := strings.Replace(configTemplate, "/home/user/.local/share/docsearch", c.StorageDir, 1)
	return os.WriteFile(configPath, []byte(template), 0644)
}

// GetDefaultStorageDir returns $XDG_DATA_HOME/docsearch (or ~/.local/share/docsearch),
// creating it if needed.
func GetDefaultStorageDir() (string, error) {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting user home directory: %w", err)
		}
		dataDir = filepath.Join(homeDir, ".local", "share")
	}

	dir := filepath.Join(dataDir, "docsearch")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating storage directory %s: %w", dir, err)
	}

	return dir, nil
}

// GetConfigDir returns $XDG_CONFIG_HOME/docsearch (or ~/.config/docsearch).
func GetConfigDir() (string, error) {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting user home directory: %w", err)
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	dir := filepath.Join(configDir, "docsearch")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	return dir, nil
}

func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.toml"), nil
}
