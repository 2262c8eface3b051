package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"dorkwright/pkg/logger"
)

// Config holds all configuration options for the search crawler and
// the downloader.
type Config struct {
	Search   SearchConfig   `yaml:"search" json:"search"`
	Download DownloadConfig `yaml:"download" json:"download"`
	Logging  logger.Config  `yaml:"logging" json:"logging"`
}

// SearchConfig controls the browser-driven result crawl.
type SearchConfig struct {
	MaxPages       int           `yaml:"max_pages" json:"max_pages"`
	InterPageDelay time.Duration `yaml:"inter_page_delay" json:"inter_page_delay"`
	PageTimeout    time.Duration `yaml:"page_timeout" json:"page_timeout"`
	UserAgent      string        `yaml:"user_agent" json:"user_agent"`
	Headless       bool          `yaml:"headless" json:"headless"`
	LinksFile      string        `yaml:"links_file" json:"links_file"`
}

// DownloadConfig controls the sequential file downloader.
type DownloadConfig struct {
	Directory      string        `yaml:"directory" json:"directory"`
	RequestTimeout time.Duration `yaml:"request_timeout" json:"request_timeout"`
}

// DefaultConfig returns a Config instance with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Search: SearchConfig{
			MaxPages:       10,
			InterPageDelay: 3 * time.Second,
			PageTimeout:    30 * time.Second,
			UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/140.0.0.0 Safari/537.36",
			Headless:       false,
			LinksFile:      "file_links.txt",
		},
		Download: DownloadConfig{
			Directory:      "downloads",
			RequestTimeout: 30 * time.Second,
		},
		Logging: logger.Config{
			Level: "info",
		},
	}
}

// LoadFromFile loads configuration from a YAML file. An empty path
// falls back to the standard locations; finding none is not an error.
func (c *Config) LoadFromFile(path string) error {
	if path == "" {
		path = findConfigFile()
		if path == "" {
			return nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

func findConfigFile() string {
	locations := []string{
		".dorkwright.yaml",
		".dorkwright.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "dorkwright", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".dorkwright.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// LoadFromEnv overrides configuration from DORKWRIGHT_* environment
// variables.
func (c *Config) LoadFromEnv() {
	if v := os.Getenv("DORKWRIGHT_MAX_PAGES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Search.MaxPages = n
		}
	}
	if v := os.Getenv("DORKWRIGHT_DELAY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			c.Search.InterPageDelay = time.Duration(n) * time.Second
		}
	}
	if v := os.Getenv("DORKWRIGHT_USER_AGENT"); v != "" {
		c.Search.UserAgent = v
	}
	if v := os.Getenv("DORKWRIGHT_HEADLESS"); v != "" {
		c.Search.Headless = strings.ToLower(v) == "true"
	}
	if v := os.Getenv("DORKWRIGHT_DOWNLOAD_DIR"); v != "" {
		c.Download.Directory = v
	}
	if v := os.Getenv("DORKWRIGHT_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// MergeFlags merges command line flag values into the configuration.
func (c *Config) MergeFlags(flags map[string]interface{}) {
	if pages, ok := flags["pages"].(int); ok && pages > 0 {
		c.Search.MaxPages = pages
	}
	if delay, ok := flags["delay"].(int); ok && delay >= 0 {
		c.Search.InterPageDelay = time.Duration(delay) * time.Second
	}
	if headless, ok := flags["headless"].(bool); ok {
		c.Search.Headless = headless
	}
	if output, ok := flags["output"].(string); ok && output != "" {
		c.Search.LinksFile = output
	}
	if dir, ok := flags["download-dir"].(string); ok && dir != "" {
		c.Download.Directory = dir
	}
	if level, ok := flags["log-level"].(string); ok && level != "" {
		c.Logging.Level = level
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	var errs []error

	if c.Search.MaxPages <= 0 {
		errs = append(errs, errors.New("max pages must be positive"))
	}
	if c.Search.InterPageDelay < 0 {
		errs = append(errs, errors.New("inter-page delay cannot be negative"))
	}
	if c.Search.PageTimeout <= 0 {
		errs = append(errs, errors.New("page timeout must be positive"))
	}
	if c.Search.LinksFile == "" {
		errs = append(errs, errors.New("links file is required"))
	}
	if c.Download.Directory == "" {
		errs = append(errs, errors.New("download directory is required"))
	}
	if c.Download.RequestTimeout <= 0 {
		errs = append(errs, errors.New("request timeout must be positive"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Save writes the configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Load loads configuration from all sources with proper precedence:
// command line flags > environment variables > .env file > config
// file > defaults.
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".dorkwright.env"))

	cfg := DefaultConfig()

	if err := cfg.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	cfg.LoadFromEnv()
	cfg.MergeFlags(flags)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}
